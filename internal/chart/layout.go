// Package chart renders an OHLC bar series as a fixed-width grid of
// character cells: candles, a price gutter on the left, and a time axis
// underneath. Horizontal placement is owned by a single position planner so
// every layer (candles, ticks, labels) agrees on where each bar sits no
// matter how the terminal is resized.
package chart

import (
	"math"

	"candleterm/internal/ohlc"
)

// Gutter and terminal width thresholds. The gutter width is chosen exactly
// once per frame from the total terminal width and carried inside Viewport;
// no other layer may pick its own margin.
const (
	gutterWidth       = 12 // price label + " │ "
	narrowGutterWidth = 8
	narrowWidth       = 80 // below this, use the narrow gutter

	// MinTerminalWidth is the narrowest terminal the chart renders in.
	// Callers should show a placeholder below this.
	MinTerminalWidth = 60
)

// priceMargin widens the visible price range so extremes don't sit on the
// grid edge.
const priceMargin = 0.02

// CandlePosition is the discrete horizontal slot assigned to one visible
// bar. Column is 0-based within the chart body (gutter excluded). Width is
// reserved for multi-column candles and is currently always 1.
type CandlePosition struct {
	Column int
	Width  int
}

// Viewport is the per-frame layout configuration shared by every render
// layer: the usable chart body size, the gutter reserved for price labels,
// and the price range of the visible bars.
type Viewport struct {
	Width       int // chart body columns, gutter excluded
	Height      int // chart body rows, axis excluded
	GutterWidth int
	PriceMin    float64
	PriceMax    float64
}

// gutterFor returns the gutter width for a terminal of the given total
// width.
func gutterFor(totalWidth int) int {
	if totalWidth < narrowWidth {
		return narrowGutterWidth
	}
	return gutterWidth
}

// ComputePositions maps n bar indices onto discrete columns of a body
// width columns wide. Every column is derived from its index and the
// constant spacing in closed form; accumulating a running position instead
// would compound rounding error across the row and let the right edge
// drift. math.Round is the one rounding rule for every layer that places
// anything at a bar's column.
//
// When n exceeds width several indices share a column; that is expected,
// and the renderer resolves it by letting the later bar win.
func ComputePositions(width, n int) []CandlePosition {
	if n <= 0 || width <= 0 {
		return nil
	}
	if n == 1 {
		return []CandlePosition{{Column: width / 2, Width: 1}}
	}

	spacing := float64(width) / float64(n)
	positions := make([]CandlePosition, n)
	for i := range positions {
		col := int(math.Round(float64(i) * spacing))
		if col > width-1 {
			col = width - 1
		}
		positions[i] = CandlePosition{Column: col, Width: 1}
	}
	return positions
}

// visibleWindow returns the most recent min(capacity, len) bars in their
// original chronological order. A short history is returned whole; the
// left part of the chart simply stays blank.
func visibleWindow(bars []ohlc.Bar, capacity int) []ohlc.Bar {
	if capacity <= 0 {
		return nil
	}
	if len(bars) <= capacity {
		return bars
	}
	return bars[len(bars)-capacity:]
}

// priceBounds returns the [min, max] price range covered by the bars,
// widened by priceMargin and floored at zero. Non-finite highs and lows
// are skipped so a malformed bar cannot poison the whole range.
func priceBounds(bars []ohlc.Bar) (float64, float64) {
	lo := math.Inf(1)
	hi := math.Inf(-1)
	for _, b := range bars {
		if isFinite(b.Low) && b.Low < lo {
			lo = b.Low
		}
		if isFinite(b.High) && b.High > hi {
			hi = b.High
		}
	}
	if lo > hi {
		// No finite prices at all.
		return 0, 0
	}

	margin := (hi - lo) * priceMargin
	lo -= margin
	if lo < 0 {
		lo = 0
	}
	return lo, hi + margin
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// priceToRow converts a price to a fractional row coordinate measured from
// the bottom of the chart body in [0, Height]. A flat price range maps
// everything to the middle row rather than dividing by zero. The result is
// clamped so a non-finite price cannot escape the grid.
func (v Viewport) priceToRow(price float64) float64 {
	if v.PriceMax == v.PriceMin {
		return float64(v.Height) / 2
	}
	row := (price - v.PriceMin) / (v.PriceMax - v.PriceMin) * float64(v.Height)
	if math.IsNaN(row) || row < 0 {
		return 0
	}
	if row > float64(v.Height) {
		return float64(v.Height)
	}
	return row
}

// priceAtRow returns the price at a given row, used for gutter labels.
func (v Viewport) priceAtRow(row int) float64 {
	if v.Height == 0 {
		return v.PriceMin
	}
	return v.PriceMin + float64(row)*(v.PriceMax-v.PriceMin)/float64(v.Height)
}
