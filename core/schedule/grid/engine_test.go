package grid

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestEngine() (*Engine, *fakeClock, []Column) {
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	cols := WeekColumns(monday, 7, 0, 100)
	clock := &fakeClock{t: time.Date(2026, 9, 7, 12, 0, 0, 0, time.UTC)}
	return NewEngine(testCfg, cols, clock.now), clock, cols
}

// block on Tuesday, 10:00-11:00, under pointer x=150
func testBlock(cols []Column) Block {
	return Block{EventID: "evt1", Day: cols[1].Day, StartMin: 600, DurationMin: 60}
}

func TestEngine_clickVsDrag(t *testing.T) {
	e, _, cols := newTestEngine()
	b := testBlock(cols)

	// movement under the threshold stays a click
	e.PointerDown(b, 150, 300)
	if _, ok := e.PointerMove(152, 303); ok {
		t.Error("PointerMove() under threshold should not preview")
	}
	if e.Phase() != Armed {
		t.Errorf("Phase() = %v, want Armed", e.Phase())
	}
	res := e.PointerUp(152, 303)
	if !res.Clicked || res.Proposal != nil {
		t.Errorf("PointerUp() = %+v, want click", res)
	}
	if e.Phase() != Idle {
		t.Errorf("Phase() = %v, want Idle", e.Phase())
	}

	// crossing the threshold starts a drag
	e.PointerDown(b, 150, 300)
	if _, ok := e.PointerMove(150, 307); !ok {
		t.Fatal("PointerMove() past threshold should preview")
	}
	if e.Phase() != Dragging {
		t.Errorf("Phase() = %v, want Dragging", e.Phase())
	}
	res = e.PointerUp(150, 307)
	if res.Clicked || res.Proposal == nil {
		t.Fatalf("PointerUp() = %+v, want proposal", res)
	}
}

func TestEngine_dragCoarseSnap(t *testing.T) {
	e, _, cols := newTestEngine()
	b := testBlock(cols)

	e.PointerDown(b, 150, 300)

	// +7px = +7min; coarse snap pulls it back to 10:00
	preview, ok := e.PointerMove(150, 307)
	if !ok {
		t.Fatal("PointerMove() should preview")
	}
	if preview.Placement.StartMin != 600 || preview.SnapMin != 15 || preview.FineMode {
		t.Errorf("preview = %+v, want coarse 10:00", preview)
	}

	// releasing at the original quantized slot is a no-op
	res := e.PointerUp(150, 307)
	if res.Proposal == nil || !res.Proposal.NoOp {
		t.Errorf("PointerUp() = %+v, want no-op proposal", res)
	}
}

func TestEngine_dragCrossDay(t *testing.T) {
	e, _, cols := newTestEngine()
	b := testBlock(cols)

	e.PointerDown(b, 150, 300)

	// two columns right, one hour down
	preview, ok := e.PointerMove(350, 360)
	if !ok {
		t.Fatal("PointerMove() should preview")
	}
	if preview.ColumnIndex != 3 {
		t.Errorf("preview.ColumnIndex = %d, want 3", preview.ColumnIndex)
	}
	if preview.Placement.StartMin != 660 {
		t.Errorf("preview.StartMin = %d, want 660", preview.Placement.StartMin)
	}

	res := e.PointerUp(350, 360)
	if res.Proposal == nil {
		t.Fatal("PointerUp() should propose")
	}
	prop := res.Proposal
	if prop.NoOp {
		t.Error("cross-day move must not be a no-op")
	}
	if !prop.To.Day.Equal(cols[3].Day) || prop.To.StartMin != 660 || prop.To.EndMin != 720 {
		t.Errorf("proposal To = %+v", prop.To)
	}
	if !prop.From.Day.Equal(b.Day) || prop.From.StartMin != 600 {
		t.Errorf("proposal From = %+v", prop.From)
	}
}

func TestEngine_holdSwitchesToFineSnap(t *testing.T) {
	e, clock, cols := newTestEngine()
	b := testBlock(cols)

	e.PointerDown(b, 150, 300)
	e.PointerMove(150, 307) // start dragging; +7min

	// hold not yet elapsed
	if _, ok := e.Tick(); ok {
		t.Error("Tick() before the hold delay should not switch modes")
	}

	clock.advance(testCfg.FineHoldDelay + time.Millisecond)
	preview, ok := e.Tick()
	if !ok {
		t.Fatal("Tick() after the hold delay should switch to fine mode")
	}
	if !preview.FineMode || preview.SnapMin != 5 {
		t.Errorf("preview = %+v, want fine mode snap 5", preview)
	}
	// +7min now snaps to 10:05 instead of 10:00
	if preview.Placement.StartMin != 605 {
		t.Errorf("preview.StartMin = %d, want 605", preview.Placement.StartMin)
	}

	// moving again drops back to coarse
	clock.advance(testCfg.HoldResetDebounce + time.Millisecond)
	preview, ok = e.PointerMove(150, 308)
	if !ok {
		t.Fatal("PointerMove() should preview")
	}
	if preview.FineMode || preview.SnapMin != 15 {
		t.Errorf("preview = %+v, want coarse mode after movement", preview)
	}
}

func TestEngine_holdTimerDebounce(t *testing.T) {
	e, clock, cols := newTestEngine()
	b := testBlock(cols)

	e.PointerDown(b, 150, 300)
	e.PointerMove(150, 307)
	deadline := e.sess.holdDeadline

	// jitter within the debounce window must not restart the timer
	clock.advance(10 * time.Millisecond)
	e.PointerMove(150, 308)
	if !e.sess.holdDeadline.Equal(deadline) {
		t.Error("hold timer restarted within the debounce window")
	}

	// movement after the debounce window does
	clock.advance(testCfg.HoldResetDebounce)
	e.PointerMove(150, 309)
	if e.sess.holdDeadline.Equal(deadline) {
		t.Error("hold timer should restart after the debounce window")
	}
}

func TestEngine_clampsToVisibleRange(t *testing.T) {
	e, _, cols := newTestEngine()
	b := testBlock(cols)

	e.PointerDown(b, 150, 300)

	// way below the grid: clamped to 19:30
	preview, ok := e.PointerMove(150, 1200)
	if !ok {
		t.Fatal("PointerMove() should preview")
	}
	if preview.Placement.StartMin != 19*60+30 {
		t.Errorf("preview.StartMin = %d, want %d", preview.Placement.StartMin, 19*60+30)
	}

	// way above: clamped to 08:00
	preview, _ = e.PointerMove(150, -1200)
	if preview.Placement.StartMin != 8*60 {
		t.Errorf("preview.StartMin = %d, want %d", preview.Placement.StartMin, 8*60)
	}
}

func TestEngine_releaseOutsideColumnsCancels(t *testing.T) {
	e, _, cols := newTestEngine()
	b := testBlock(cols)

	e.PointerDown(b, 150, 300)
	e.PointerMove(150, 400)

	res := e.PointerUp(900, 400) // off-grid
	if res.Clicked || res.Proposal != nil {
		t.Errorf("PointerUp() off-grid = %+v, want cancelled", res)
	}
	if e.Phase() != Idle {
		t.Errorf("Phase() = %v, want Idle", e.Phase())
	}
}

func TestEngine_cancel(t *testing.T) {
	e, _, cols := newTestEngine()
	b := testBlock(cols)

	e.PointerDown(b, 150, 300)
	e.PointerMove(150, 400)
	e.Cancel()

	if e.Phase() != Idle {
		t.Errorf("Phase() = %v, want Idle", e.Phase())
	}
	if _, ok := e.PointerMove(150, 500); ok {
		t.Error("PointerMove() after Cancel() should be inert")
	}
}

func TestEngine_DropOnCell(t *testing.T) {
	e, _, cols := newTestEngine()
	b := Block{EventID: "evt1", Day: cols[0].Day, StartMin: 600, DurationMin: 90}

	// drop on Wednesday 14:00
	prop := e.DropOnCell(b, cols[2].Day, 14)
	if prop.NoOp {
		t.Error("DropOnCell() on another day must not be a no-op")
	}
	if !prop.To.Day.Equal(cols[2].Day) || prop.To.StartMin != 840 || prop.To.EndMin != 930 {
		t.Errorf("DropOnCell() To = %+v", prop.To)
	}

	// same day, same hour: no-op
	prop = e.DropOnCell(b, cols[0].Day, 10)
	if !prop.NoOp {
		t.Errorf("DropOnCell() = %+v, want no-op", prop)
	}

	// past the visible range: clamped
	prop = e.DropOnCell(b, cols[0].Day, 21)
	if prop.To.StartMin != 19*60+30 {
		t.Errorf("DropOnCell() clamped StartMin = %d, want %d", prop.To.StartMin, 19*60+30)
	}
}
