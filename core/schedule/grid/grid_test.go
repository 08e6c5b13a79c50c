package grid

import (
	"testing"
	"time"
)

var testCfg = Config{
	StartHour:         8,
	EndHour:           20,
	CoarseSnapMin:     15,
	FineSnapMin:       5,
	PixelsPerHour:     60,
	DragThresholdPx:   5,
	FineHoldDelay:     2 * time.Second,
	HoldResetDebounce: 50 * time.Millisecond,
	AllowEscapeCancel: true,
}

func TestQuantize(t *testing.T) {
	tests := []struct {
		name      string
		min, snap int
		want      int
	}{
		{name: "10:07 coarse rounds down", min: 607, snap: 15, want: 600},
		{name: "10:08 coarse rounds up", min: 608, snap: 15, want: 615},
		{name: "10:07 fine rounds to 10:05", min: 607, snap: 5, want: 605},
		{name: "10:08 fine rounds to 10:10", min: 608, snap: 5, want: 610},
		{name: "exact multiple unchanged", min: 600, snap: 15, want: 600},
		{name: "zero snap is identity", min: 607, snap: 0, want: 607},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Quantize(tt.min, tt.snap); got != tt.want {
				t.Errorf("Quantize(%d, %d) = %d, want %d", tt.min, tt.snap, got, tt.want)
			}
		})
	}
}

func TestClampStart(t *testing.T) {
	tests := []struct {
		name string
		min  int
		want int
	}{
		{name: "before range clamps to start", min: 400, want: 8 * 60},
		{name: "at start unchanged", min: 8 * 60, want: 8 * 60},
		{name: "mid-range unchanged", min: 600, want: 600},
		{name: "19:50 clamps to 19:30", min: 19*60 + 50, want: 19*60 + 30},
		{name: "past end clamps to 19:30", min: 22 * 60, want: 19*60 + 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClampStart(tt.min, testCfg); got != tt.want {
				t.Errorf("ClampStart(%d) = %d, want %d", tt.min, got, tt.want)
			}
		})
	}
}

func TestMinutesForPixels(t *testing.T) {
	tests := []struct {
		name string
		dy   float64
		pph  float64
		want int
	}{
		{name: "one hour down", dy: 60, pph: 60, want: 60},
		{name: "half hour up", dy: -30, pph: 60, want: -30},
		{name: "rounds to nearest minute", dy: 10.4, pph: 60, want: 10},
		{name: "denser scale", dy: 60, pph: 120, want: 30},
		{name: "zero scale yields zero", dy: 60, pph: 0, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MinutesForPixels(tt.dy, tt.pph); got != tt.want {
				t.Errorf("MinutesForPixels(%v, %v) = %d, want %d", tt.dy, tt.pph, got, tt.want)
			}
		})
	}
}

func TestWeekColumns_ColumnAt(t *testing.T) {
	monday := time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)
	cols := WeekColumns(monday, 7, 40, 100)

	if len(cols) != 7 {
		t.Fatalf("WeekColumns() returned %d columns, want 7", len(cols))
	}
	if !cols[0].Day.Equal(monday) || !cols[6].Day.Equal(monday.AddDate(0, 0, 6)) {
		t.Errorf("WeekColumns() day range = %v .. %v", cols[0].Day, cols[6].Day)
	}

	tests := []struct {
		name    string
		x       float64
		wantIdx int
		wantOK  bool
	}{
		{name: "left of grid", x: 39.9, wantOK: false},
		{name: "first column left edge", x: 40, wantIdx: 0, wantOK: true},
		{name: "first column interior", x: 139.9, wantIdx: 0, wantOK: true},
		{name: "boundary belongs to next column", x: 140, wantIdx: 1, wantOK: true},
		{name: "last column", x: 700, wantIdx: 6, wantOK: true},
		{name: "right of grid", x: 740, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, ok := ColumnAt(cols, tt.x)
			if ok != tt.wantOK {
				t.Fatalf("ColumnAt(%v) ok = %v, want %v", tt.x, ok, tt.wantOK)
			}
			if ok && idx != tt.wantIdx {
				t.Errorf("ColumnAt(%v) = %d, want %d", tt.x, idx, tt.wantIdx)
			}
		})
	}
}

func TestGridlines(t *testing.T) {
	coarse := Gridlines(testCfg, false)
	if want := (20-8)*2 + 1; len(coarse) != want {
		t.Errorf("Gridlines(coarse) returned %d lines, want %d", len(coarse), want)
	}
	if coarse[0] != 8*60 || coarse[len(coarse)-1] != 20*60 {
		t.Errorf("Gridlines(coarse) range = %d .. %d", coarse[0], coarse[len(coarse)-1])
	}

	fine := Gridlines(testCfg, true)
	if want := (20-8)*12 + 1; len(fine) != want {
		t.Errorf("Gridlines(fine) returned %d lines, want %d", len(fine), want)
	}
	if fine[1]-fine[0] != testCfg.FineSnapMin {
		t.Errorf("Gridlines(fine) step = %d, want %d", fine[1]-fine[0], testCfg.FineSnapMin)
	}
}

func TestPlacement_Interval(t *testing.T) {
	day := time.Date(2026, 9, 8, 0, 0, 0, 0, time.UTC)
	p := Placement{Day: day, StartMin: 600, EndMin: 690}

	start, end := p.Interval()
	if !start.Equal(day.Add(10 * time.Hour)) {
		t.Errorf("Interval() start = %v", start)
	}
	if !end.Equal(day.Add(11*time.Hour + 30*time.Minute)) {
		t.Errorf("Interval() end = %v", end)
	}
}
