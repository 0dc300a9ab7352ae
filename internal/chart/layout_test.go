package chart

import (
	"math"
	"testing"
	"time"

	"candleterm/internal/ohlc"
)

func TestComputePositionsCount(t *testing.T) {
	tests := []struct {
		width, n int
	}{
		{100, 1},
		{100, 33},
		{100, 100},
		{50, 100},
		{70, 7},
		{1, 5},
	}
	for _, tt := range tests {
		got := ComputePositions(tt.width, tt.n)
		if len(got) != tt.n {
			t.Errorf("ComputePositions(%d, %d) returned %d positions, want %d",
				tt.width, tt.n, len(got), tt.n)
		}
		for i, p := range got {
			if p.Column < 0 || p.Column >= tt.width {
				t.Errorf("ComputePositions(%d, %d)[%d].Column = %d, outside [0, %d)",
					tt.width, tt.n, i, p.Column, tt.width)
			}
			if p.Width < 1 {
				t.Errorf("position %d has width %d, want >= 1", i, p.Width)
			}
		}
	}
}

func TestComputePositionsEmpty(t *testing.T) {
	if got := ComputePositions(100, 0); got != nil {
		t.Errorf("n=0 should yield no positions, got %v", got)
	}
	if got := ComputePositions(0, 10); got != nil {
		t.Errorf("zero width should yield no positions, got %v", got)
	}
}

func TestComputePositionsSingleCentered(t *testing.T) {
	got := ComputePositions(100, 1)
	if len(got) != 1 || got[0].Column != 50 {
		t.Errorf("single bar in width 100 should center at 50, got %v", got)
	}
}

func TestComputePositionsNoDrift(t *testing.T) {
	// The first column is always 0 and the last column stays within one
	// cell of W - spacing regardless of the bar count. A running
	// position += spacing accumulation would fail this for fractional
	// spacings and large n.
	for _, w := range []int{10, 50, 70, 100, 120, 313} {
		for _, n := range []int{2, 3, 7, 33, 100, 250, 999} {
			got := ComputePositions(w, n)
			if got[0].Column != 0 {
				t.Errorf("W=%d N=%d: first column = %d, want 0", w, n, got[0].Column)
			}
			spacing := float64(w) / float64(n)
			ideal := float64(w) - spacing
			last := float64(got[n-1].Column)
			if math.Abs(last-ideal) > 1 {
				t.Errorf("W=%d N=%d: last column %v drifted from %v", w, n, last, ideal)
			}
		}
	}
}

func TestComputePositionsKnownValues(t *testing.T) {
	got := ComputePositions(100, 33)
	if got[0].Column != 0 {
		t.Errorf("first column = %d, want 0", got[0].Column)
	}
	if last := got[32].Column; last < 95 || last >= 100 {
		t.Errorf("last column = %d, want in [95, 100)", last)
	}
}

func TestComputePositionsCollisions(t *testing.T) {
	got := ComputePositions(50, 100)
	if len(got) != 100 {
		t.Fatalf("want 100 positions, got %d", len(got))
	}
	seen := map[int]bool{}
	collided := false
	for _, p := range got {
		if p.Column >= 50 {
			t.Errorf("column %d outside viewport", p.Column)
		}
		if seen[p.Column] {
			collided = true
		}
		seen[p.Column] = true
	}
	if !collided {
		t.Error("100 bars in 50 columns must collide")
	}
}

func TestComputePositionsMonotonic(t *testing.T) {
	got := ComputePositions(80, 40)
	for i := 1; i < len(got); i++ {
		if got[i].Column < got[i-1].Column {
			t.Errorf("columns must be non-decreasing: [%d]=%d after [%d]=%d",
				i, got[i].Column, i-1, got[i-1].Column)
		}
	}
}

func testBars(n int) []ohlc.Bar {
	start := time.Date(2025, 11, 24, 14, 30, 0, 0, time.UTC)
	bars := make([]ohlc.Bar, n)
	for i := range bars {
		base := 100 + float64(i%10)
		bars[i] = ohlc.Bar{
			Timestamp: start.Add(time.Duration(i) * 30 * time.Minute),
			Open:      base,
			High:      base + 2,
			Low:       base - 2,
			Close:     base + 1,
			Volume:    1000,
		}
	}
	return bars
}

func TestVisibleWindow(t *testing.T) {
	bars := testBars(10)

	got := visibleWindow(bars, 4)
	if len(got) != 4 {
		t.Fatalf("want 4 bars, got %d", len(got))
	}
	// Most recent bars, chronological order preserved.
	if !got[0].Timestamp.Equal(bars[6].Timestamp) || !got[3].Timestamp.Equal(bars[9].Timestamp) {
		t.Error("window should hold the last 4 bars in order")
	}

	// Short history returned whole.
	if got := visibleWindow(bars, 50); len(got) != 10 {
		t.Errorf("capacity beyond history should return all bars, got %d", len(got))
	}

	if got := visibleWindow(bars, 0); got != nil {
		t.Errorf("zero capacity should return nothing, got %d bars", len(got))
	}
}

func TestPriceBounds(t *testing.T) {
	bars := []ohlc.Bar{
		{Open: 100, High: 110, Low: 95, Close: 105},
		{Open: 105, High: 120, Low: 100, Close: 115},
	}
	lo, hi := priceBounds(bars)
	// 2% of the 95..120 span on each side.
	if lo >= 95 || hi <= 120 {
		t.Errorf("bounds [%v, %v] should pad beyond [95, 120]", lo, hi)
	}
	if hi-120 < 0.4 || hi-120 > 0.6 {
		t.Errorf("upper margin = %v, want 0.5", hi-120)
	}
}

func TestPriceBoundsSkipsNonFinite(t *testing.T) {
	bars := []ohlc.Bar{
		{Open: 100, High: math.NaN(), Low: math.Inf(-1), Close: 100},
		{Open: 100, High: 105, Low: 95, Close: 100},
	}
	lo, hi := priceBounds(bars)
	if !isFinite(lo) || !isFinite(hi) {
		t.Fatalf("bounds [%v, %v] must be finite", lo, hi)
	}
	if lo > 95 || hi < 105 {
		t.Errorf("bounds [%v, %v] should cover the finite bar", lo, hi)
	}
}

func TestPriceBoundsFloorsAtZero(t *testing.T) {
	bars := []ohlc.Bar{{Open: 0.05, High: 10, Low: 0.01, Close: 5}}
	lo, _ := priceBounds(bars)
	if lo < 0 {
		t.Errorf("lower bound %v must not go negative", lo)
	}
}

func TestPriceToRowFlatRange(t *testing.T) {
	vp := Viewport{Width: 40, Height: 20, PriceMin: 100, PriceMax: 100}
	if got := vp.priceToRow(100); got != 10 {
		t.Errorf("flat range should map to the middle row, got %v", got)
	}
}

func TestPriceToRowClamps(t *testing.T) {
	vp := Viewport{Width: 40, Height: 20, PriceMin: 100, PriceMax: 200}
	if got := vp.priceToRow(math.NaN()); got != 0 {
		t.Errorf("NaN price should clamp to 0, got %v", got)
	}
	if got := vp.priceToRow(math.Inf(1)); got != 20 {
		t.Errorf("+Inf price should clamp to the top row, got %v", got)
	}
	if got := vp.priceToRow(50); got != 0 {
		t.Errorf("below-range price should clamp to 0, got %v", got)
	}
}

func TestGutterFor(t *testing.T) {
	if got := gutterFor(120); got != gutterWidth {
		t.Errorf("wide terminal gutter = %d, want %d", got, gutterWidth)
	}
	if got := gutterFor(70); got != narrowGutterWidth {
		t.Errorf("narrow terminal gutter = %d, want %d", got, narrowGutterWidth)
	}
}
