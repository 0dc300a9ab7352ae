package chart

import (
	"math"
	"strings"
	"testing"
	"time"

	"candleterm/internal/ohlc"
)

func gridString(grid [][]Cell) string {
	var b strings.Builder
	for _, row := range grid {
		b.WriteString(rowString(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func TestRenderGridShape(t *testing.T) {
	bars := testBars(50)
	r := NewRenderer(bars, ohlc.Interval30Min, 100, 30)
	grid := r.Render()

	vp := r.Viewport()
	wantRows := vp.Height + 3 // intraday axis
	if len(grid) != wantRows {
		t.Fatalf("grid has %d rows, want %d", len(grid), wantRows)
	}
	for i, row := range grid {
		if len(row) != vp.GutterWidth+vp.Width {
			t.Errorf("row %d width %d, want %d", i, len(row), vp.GutterWidth+vp.Width)
		}
	}
}

func TestRenderIdempotent(t *testing.T) {
	bars := testBars(80)
	a := gridString(NewRenderer(bars, ohlc.Interval30Min, 100, 30).Render())
	b := gridString(NewRenderer(bars, ohlc.Interval30Min, 100, 30).Render())
	if a != b {
		t.Error("identical inputs must render identical grids")
	}
}

func TestRenderResizeIndependence(t *testing.T) {
	// Rendering at one width must not leak into a later render at
	// another: each must independently start its candles at column 0.
	bars := testBars(200)

	for _, total := range []int{70, 120, 70} {
		r := NewRenderer(bars, ohlc.Interval30Min, total, 30)
		vp := r.Viewport()
		grid := r.Render()

		visible := visibleWindow(bars, vp.Width)
		positions := ComputePositions(vp.Width, len(visible))
		if positions[0].Column != 0 {
			t.Errorf("width %d: first position %d, want 0", total, positions[0].Column)
		}
		last := positions[len(positions)-1].Column
		spacing := float64(vp.Width) / float64(len(visible))
		if math.Abs(float64(last)-(float64(vp.Width)-spacing)) > 1 {
			t.Errorf("width %d: last position %d drifted", total, last)
		}

		// Something must actually be drawn in the rightmost planned column.
		found := false
		for y := 0; y < vp.Height; y++ {
			if grid[y][vp.GutterWidth+last].Rune != ' ' {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("width %d: nothing drawn at last planned column %d", total, last)
		}
	}
}

func TestRenderEmptyHistory(t *testing.T) {
	r := NewRenderer(nil, ohlc.Interval1Day, 100, 30)
	grid := r.Render()
	if len(grid) == 0 {
		t.Fatal("empty history should still yield a blank grid")
	}
	for _, row := range grid {
		for _, c := range row {
			if c.Rune != ' ' {
				t.Fatalf("blank chart expected, found %q", c.Rune)
			}
		}
	}
}

func TestRenderDegenerateAreas(t *testing.T) {
	bars := testBars(10)

	if grid := NewRenderer(bars, ohlc.Interval1Day, 0, 30).Render(); len(grid) != 0 {
		t.Error("zero width should render an empty grid")
	}
	if grid := NewRenderer(bars, ohlc.Interval1Day, 100, 0).Render(); len(grid) != 0 {
		t.Error("zero height should render an empty grid")
	}
	// Narrower than the gutter: usable width clamps to 0, no panic.
	if grid := NewRenderer(bars, ohlc.Interval1Day, 5, 30).Render(); len(grid) != 0 {
		t.Error("terminal narrower than the gutter should render an empty grid")
	}
}

func TestRenderSingleBarCentered(t *testing.T) {
	bars := testBars(1)
	r := NewRenderer(bars, ohlc.Interval1Day, 100, 30)
	vp := r.Viewport()
	grid := r.Render()

	mid := vp.Width / 2
	found := false
	for y := 0; y < vp.Height; y++ {
		if grid[y][vp.GutterWidth+mid].Rune != ' ' {
			found = true
		}
		// Nothing anywhere else in the body.
		for col := 0; col < vp.Width; col++ {
			if col != mid && grid[y][vp.GutterWidth+col].Rune != ' ' {
				t.Errorf("row %d col %d: unexpected glyph %q", y, col, grid[y][vp.GutterWidth+col].Rune)
			}
		}
	}
	if !found {
		t.Error("single bar should be drawn at the center column")
	}
}

func TestLatestOwnerResolvesCollisions(t *testing.T) {
	// More bars than columns: every column must be owned by the most
	// recent bar that rounded onto it.
	positions := ComputePositions(50, 100)
	owner := latestOwner(positions)

	for col, i := range owner {
		for j := i + 1; j < len(positions); j++ {
			if positions[j].Column == col {
				t.Errorf("column %d owned by bar %d, but later bar %d maps there", col, i, j)
			}
		}
	}
	if len(owner) > 50 {
		t.Errorf("owner map spans %d columns, viewport only has 50", len(owner))
	}
}

func TestRenderOneColumnShowsMostRecentBar(t *testing.T) {
	// A one-column body with a bearish bar followed by a bullish one:
	// temporal priority means only the later bar appears.
	ts := time.Date(2025, 11, 24, 0, 0, 0, 0, time.UTC)
	bars := []ohlc.Bar{
		{Timestamp: ts, Open: 200, High: 210, Low: 90, Close: 100},
		{Timestamp: ts.Add(24 * time.Hour), Open: 100, High: 210, Low: 90, Close: 200},
	}

	vp := Viewport{Width: 1, Height: 20, GutterWidth: 0, PriceMin: 90, PriceMax: 210}
	r := &Renderer{bars: bars, interval: ohlc.Interval1Day, vp: vp}
	grid := r.Render()

	sawGlyph := false
	for y := 0; y < vp.Height; y++ {
		c := grid[y][0]
		if c.Rune == ' ' {
			continue
		}
		sawGlyph = true
		if c.Tone == ToneBearish {
			t.Fatalf("row %d: older bar visible instead of the most recent one", y)
		}
	}
	if !sawGlyph {
		t.Fatal("the surviving bar should still be drawn")
	}
}

func TestRenderNonFiniteInputNoPanic(t *testing.T) {
	ts := time.Now()
	bars := []ohlc.Bar{
		{Timestamp: ts, Open: math.NaN(), High: math.Inf(1), Low: math.Inf(-1), Close: math.NaN()},
		{Timestamp: ts.Add(time.Hour), Open: 100, High: 105, Low: 95, Close: 101},
	}
	grid := NewRenderer(bars, ohlc.Interval1Hour, 100, 30).Render()
	if len(grid) == 0 {
		t.Fatal("expected a grid despite malformed bars")
	}
}

func TestRenderGutterCarriesPrices(t *testing.T) {
	bars := testBars(40)
	r := NewRenderer(bars, ohlc.Interval1Day, 100, 30)
	vp := r.Viewport()
	grid := r.Render()

	sawDigit := false
	for y := 0; y < vp.Height; y++ {
		for col := 0; col < vp.GutterWidth; col++ {
			if ch := grid[y][col].Rune; ch >= '0' && ch <= '9' {
				sawDigit = true
			}
		}
	}
	if !sawDigit {
		t.Error("gutter should carry price labels")
	}
}

func TestRenderNarrowTerminalUsesNarrowGutter(t *testing.T) {
	bars := testBars(40)
	wide := NewRenderer(bars, ohlc.Interval1Day, 100, 30).Viewport()
	narrow := NewRenderer(bars, ohlc.Interval1Day, 70, 30).Viewport()
	if wide.GutterWidth != gutterWidth || narrow.GutterWidth != narrowGutterWidth {
		t.Errorf("gutters = %d / %d, want %d / %d",
			wide.GutterWidth, narrow.GutterWidth, gutterWidth, narrowGutterWidth)
	}
	if wide.Width != 100-gutterWidth || narrow.Width != 70-narrowGutterWidth {
		t.Error("body width must be the terminal width minus the stored gutter")
	}
}
