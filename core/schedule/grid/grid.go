// Package grid implements the interactive week-grid scheduling surface:
// column geometry, snap-to-grid quantization and the pointer-driven
// drag-to-reschedule gesture engine. All computation is synchronous and
// allocation-light; it is meant to run per pointer-move event.
package grid

import (
	"math"
	"time"

	"github.com/campushq/backoffice/core"
)

// minEndGapMin keeps at least this much room between a dragged start and the
// end of the visible hour range.
const minEndGapMin = 30

// Config is the per-view time-grid configuration: visible hour range, snap
// granularities and pointer geometry. It drives both the rendering scale and
// the snapping behavior of drag operations.
type Config struct {
	StartHour int
	EndHour   int

	CoarseSnapMin int
	FineSnapMin   int

	PixelsPerHour   float64
	DragThresholdPx float64

	FineHoldDelay     time.Duration
	HoldResetDebounce time.Duration

	AllowEscapeCancel bool
}

// DefaultConfig returns the configured grid defaults.
func DefaultConfig() Config {
	sc := core.Conf.Schedule
	return Config{
		StartHour:         sc.GridStartHour,
		EndHour:           sc.GridEndHour,
		CoarseSnapMin:     sc.CoarseSnapMinutes,
		FineSnapMin:       sc.FineSnapMinutes,
		PixelsPerHour:     sc.PixelsPerHour,
		DragThresholdPx:   sc.DragThresholdPx,
		FineHoldDelay:     sc.FineHoldDelay,
		HoldResetDebounce: sc.HoldResetDebounce,
		AllowEscapeCancel: sc.AllowEscapeCancel,
	}
}

// Column is one day column of the grid, hit-tested by pointer X against
// [MinX,MaxX).
type Column struct {
	Day  time.Time // midnight, grid timezone
	MinX float64
	MaxX float64
}

func (c Column) contains(x float64) bool { return x >= c.MinX && x < c.MaxX }

// WeekColumns lays out n equal-width day columns starting at weekStart.
func WeekColumns(weekStart time.Time, n int, originX, colWidth float64) []Column {
	cols := make([]Column, 0, n)
	day := weekStart
	for i := 0; i < n; i++ {
		minX := originX + float64(i)*colWidth
		cols = append(cols, Column{Day: day, MinX: minX, MaxX: minX + colWidth})
		day = day.AddDate(0, 0, 1)
	}
	return cols
}

// ColumnAt returns the index of the column under pointer X.
func ColumnAt(cols []Column, x float64) (int, bool) {
	for i, c := range cols {
		if c.contains(x) {
			return i, true
		}
	}
	return 0, false
}

// Quantize rounds min to the nearest multiple of snap.
func Quantize(min, snap int) int {
	if snap <= 0 {
		return min
	}
	return ((min + snap/2) / snap) * snap
}

// ClampStart clamps a candidate start-minute into the visible hour range,
// leaving at least minEndGapMin before the range's end boundary. Duration is
// preserved by the caller, never clipped.
func ClampStart(startMin int, cfg Config) int {
	lo := cfg.StartHour * 60
	hi := cfg.EndHour*60 - minEndGapMin
	if startMin < lo {
		return lo
	}
	if startMin > hi {
		return hi
	}
	return startMin
}

// MinutesForPixels converts a vertical pixel delta to minutes at the grid's
// fixed pixels-per-hour scale.
func MinutesForPixels(dy, pixelsPerHour float64) int {
	if pixelsPerHour <= 0 {
		return 0
	}
	return int(math.Round(dy / pixelsPerHour * 60))
}

// Placement is a concrete (day, start, end) position on the grid.
type Placement struct {
	Day      time.Time
	StartMin int
	EndMin   int
}

// Interval resolves the placement to absolute instants in the day's location.
func (p Placement) Interval() (start, end time.Time) {
	start = p.Day.Add(time.Duration(p.StartMin) * time.Minute)
	end = p.Day.Add(time.Duration(p.EndMin) * time.Minute)
	return start, end
}

func (p Placement) equal(o Placement) bool {
	return p.Day.Equal(o.Day) && p.StartMin == o.StartMin && p.EndMin == o.EndMin
}

// Gridlines lists the minute-of-day marks to render for orientation: hour and
// half-hour lines, plus sub-30-minute lines at the fine granularity when fine
// mode is active.
func Gridlines(cfg Config, fineMode bool) []int {
	step := 30
	if fineMode && cfg.FineSnapMin > 0 && cfg.FineSnapMin < 30 {
		step = cfg.FineSnapMin
	}
	lines := make([]int, 0, (cfg.EndHour-cfg.StartHour)*60/step+1)
	for m := cfg.StartHour * 60; m <= cfg.EndHour*60; m += step {
		lines = append(lines, m)
	}
	return lines
}
