package grid

import "time"

// Drag gesture phases.
type Phase int

const (
	Idle Phase = iota
	Armed
	Dragging
	Resolving
)

// Block is the grid's view of a schedulable event: its column day, its
// start minute-of-day and its duration.
type Block struct {
	EventID     string
	Day         time.Time // midnight of the owning column
	StartMin    int
	DurationMin int
}

// Preview is the live ghost shown while dragging: the quantized candidate
// placement in the column currently under the pointer.
type Preview struct {
	ColumnIndex int
	Placement   Placement
	SnapMin     int
	FineMode    bool
}

// Proposal is the outcome of a resolved drag: old vs. new placement. NoOp
// marks a release at the exact original day and quantized time; no backend
// call is made and no confirmation prompt is shown.
type Proposal struct {
	EventID string
	From    Placement
	To      Placement
	NoOp    bool
}

// UpResult is what a pointer release yields: a click (gesture never left
// Armed), a move proposal, or neither (cancelled drag).
type UpResult struct {
	Clicked  bool
	Proposal *Proposal
}

// Engine is the drag-gesture state machine: Idle → Armed → Dragging →
// (Resolving) → Idle. A single Engine drives one grid surface; it is not
// safe for concurrent use and is meant to be fed from a single event loop.
type Engine struct {
	cfg  Config
	cols []Column
	now  func() time.Time

	phase Phase
	sess  session
}

// session is the ephemeral drag state, destroyed on release or restart.
type session struct {
	block Block

	downX, downY float64
	lastX, lastY float64

	snapMin      int
	fineMode     bool
	holdDeadline time.Time
	lastReset    time.Time

	curCol  int
	preview Preview
}

func NewEngine(cfg Config, cols []Column, now ...func() time.Time) *Engine {
	nowFn := time.Now
	if len(now) > 0 && now[0] != nil {
		nowFn = now[0]
	}
	return &Engine{cfg: cfg, cols: cols, now: nowFn}
}

func (e *Engine) Phase() Phase { return e.phase }

// SetColumns replaces the column geometry (e.g. after a viewport resize).
// Ignored mid-gesture.
func (e *Engine) SetColumns(cols []Column) {
	if e.phase == Idle {
		e.cols = cols
	}
}

// PointerDown arms a gesture on the given block. The gesture stays Armed
// until the movement threshold is exceeded, which is what distinguishes a
// click (open detail) from a drag.
func (e *Engine) PointerDown(b Block, x, y float64) {
	if e.phase != Idle {
		e.reset()
	}
	origin, ok := ColumnAt(e.cols, x)
	if !ok {
		return
	}
	e.phase = Armed
	e.sess = session{
		block:   b,
		downX:   x,
		downY:   y,
		lastX:   x,
		lastY:   y,
		snapMin: e.cfg.CoarseSnapMin,
		curCol:  origin,
	}
}

// PointerMove feeds pointer motion into the gesture. It returns the current
// preview and whether one should be rendered.
func (e *Engine) PointerMove(x, y float64) (Preview, bool) {
	switch e.phase {
	case Armed:
		if abs(x-e.sess.downX) < e.cfg.DragThresholdPx && abs(y-e.sess.downY) < e.cfg.DragThresholdPx {
			return Preview{}, false
		}
		e.phase = Dragging
		e.armHoldTimer(true)
	case Dragging:
		// any movement drops back to coarse snapping and re-arms the
		// fine-mode hold timer (debounced)
		if e.sess.fineMode {
			e.sess.fineMode = false
			e.sess.snapMin = e.cfg.CoarseSnapMin
		}
		e.armHoldTimer(false)
	default:
		return Preview{}, false
	}

	e.sess.lastX, e.sess.lastY = x, y
	return e.computePreview()
}

// Tick advances the hold timer; call it periodically (or once the hold delay
// elapses) while a drag is in progress. When the pointer has been still for
// the configured delay, snapping switches to the fine granularity.
func (e *Engine) Tick() (Preview, bool) {
	if e.phase != Dragging || e.sess.fineMode {
		return Preview{}, false
	}
	if e.now().Before(e.sess.holdDeadline) {
		return Preview{}, false
	}
	e.sess.fineMode = true
	e.sess.snapMin = e.cfg.FineSnapMin
	return e.computePreview()
}

// PointerUp resolves the gesture. An Armed release is a click; a Dragging
// release over a column yields a move proposal (NoOp when nothing changed);
// a release outside every column cancels.
func (e *Engine) PointerUp(x, y float64) UpResult {
	defer e.reset()

	switch e.phase {
	case Armed:
		return UpResult{Clicked: true}
	case Dragging:
		e.phase = Resolving
		if _, ok := ColumnAt(e.cols, x); !ok {
			return UpResult{} // released outside any recognized column
		}
		e.sess.lastX, e.sess.lastY = x, y
		preview, ok := e.computePreview()
		if !ok {
			return UpResult{}
		}
		from := e.blockPlacement()
		prop := Proposal{
			EventID: e.sess.block.EventID,
			From:    from,
			To:      preview.Placement,
			NoOp:    preview.Placement.equal(from),
		}
		return UpResult{Proposal: &prop}
	default:
		return UpResult{}
	}
}

// Cancel aborts the gesture (escape key or right-click, when enabled).
func (e *Engine) Cancel() {
	e.reset()
}

// DropOnCell is the secondary native drag-and-drop path: dropping a block
// onto a specific hour cell of a day column. Duration is preserved; fine
// snapping is bypassed.
func (e *Engine) DropOnCell(b Block, day time.Time, hour int) Proposal {
	startMin := ClampStart(hour*60, e.cfg)
	from := Placement{Day: b.Day, StartMin: b.StartMin, EndMin: b.StartMin + b.DurationMin}
	to := Placement{Day: day, StartMin: startMin, EndMin: startMin + b.DurationMin}
	return Proposal{
		EventID: b.EventID,
		From:    from,
		To:      to,
		NoOp:    to.equal(from),
	}
}

func (e *Engine) computePreview() (Preview, bool) {
	col, ok := ColumnAt(e.cols, e.sess.lastX)
	if !ok {
		return Preview{}, false
	}
	e.sess.curCol = col

	dy := e.sess.lastY - e.sess.downY
	raw := e.sess.block.StartMin + MinutesForPixels(dy, e.cfg.PixelsPerHour)
	start := Quantize(ClampStart(raw, e.cfg), e.sess.snapMin)
	start = ClampStart(start, e.cfg) // quantizing may round past the boundary

	e.sess.preview = Preview{
		ColumnIndex: col,
		Placement: Placement{
			Day:      e.cols[col].Day,
			StartMin: start,
			EndMin:   start + e.sess.block.DurationMin,
		},
		SnapMin:  e.sess.snapMin,
		FineMode: e.sess.fineMode,
	}
	return e.sess.preview, true
}

// armHoldTimer (re)arms the fine-mode hold timer. Resets are debounced so a
// jittery pointer does not spam timer restarts.
func (e *Engine) armHoldTimer(force bool) {
	now := e.now()
	if !force && now.Sub(e.sess.lastReset) < e.cfg.HoldResetDebounce {
		return
	}
	e.sess.lastReset = now
	e.sess.holdDeadline = now.Add(e.cfg.FineHoldDelay)
}

func (e *Engine) blockPlacement() Placement {
	b := e.sess.block
	return Placement{Day: b.Day, StartMin: b.StartMin, EndMin: b.StartMin + b.DurationMin}
}

func (e *Engine) reset() {
	e.phase = Idle
	e.sess = session{}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
