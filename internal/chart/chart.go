package chart

import (
	"fmt"

	"candleterm/internal/ohlc"
)

// priceLabelEvery is the vertical spacing of gutter price labels, in rows.
const priceLabelEvery = 4

// Renderer turns one immutable (bars, terminal size) snapshot into a
// character grid. It owns the per-frame Viewport (gutter width, body
// size, visible price range) and runs the window selection and position
// planning exactly once, handing the same positions to the candle layer
// and the axis layer so both live in one coordinate system.
//
// A Renderer is built fresh for every frame; rendering has no hidden state
// and identical inputs produce identical grids.
type Renderer struct {
	bars     []ohlc.Bar
	interval ohlc.Interval
	vp       Viewport
}

// NewRenderer plans a frame for the given bar history inside a terminal
// area of totalWidth x totalHeight cells. The axis rows and the price
// gutter are carved out of the area; whatever remains is the chart body.
// Degenerate areas clamp to zero rather than failing.
func NewRenderer(bars []ohlc.Bar, iv ohlc.Interval, totalWidth, totalHeight int) *Renderer {
	gutter := gutterFor(totalWidth)

	bodyWidth := totalWidth - gutter
	if bodyWidth < 0 {
		bodyWidth = 0
	}
	bodyHeight := totalHeight - axisHeight(iv)
	if bodyHeight < 0 {
		bodyHeight = 0
	}

	lo, hi := priceBounds(visibleWindow(bars, bodyWidth))

	return &Renderer{
		bars:     bars,
		interval: iv,
		vp: Viewport{
			Width:       bodyWidth,
			Height:      bodyHeight,
			GutterWidth: gutter,
			PriceMin:    lo,
			PriceMax:    hi,
		},
	}
}

// latestOwner resolves column collisions: when several bar indices round
// to the same column the most recent bar owns it. Earlier bars at that
// column are simply not drawn; a collision is expected when more bars than
// columns are positioned, not an error.
func latestOwner(positions []CandlePosition) map[int]int {
	owner := make(map[int]int, len(positions))
	for i, p := range positions {
		owner[p.Column] = i
	}
	return owner
}

// axisHeight returns the number of rows the time axis occupies: ticks and
// labels, plus a date row for intraday intervals.
func axisHeight(iv ohlc.Interval) int {
	if iv.Intraday() {
		return 3
	}
	return 2
}

// Viewport returns the frame's layout configuration.
func (r *Renderer) Viewport() Viewport { return r.vp }

// Render produces the full chart grid: body rows top to bottom with the
// price gutter on the left, followed by the time axis rows. A zero-sized
// body yields an empty grid; an empty bar history yields a blank body.
func (r *Renderer) Render() [][]Cell {
	if r.vp.Width <= 0 || r.vp.Height <= 0 {
		return nil
	}

	visible := visibleWindow(r.bars, r.vp.Width)
	positions := ComputePositions(r.vp.Width, len(visible))

	owner := latestOwner(positions)

	prices := make([]barPrices, len(visible))
	tones := make([]Tone, len(visible))
	for i, b := range visible {
		prices[i] = r.vp.makeBarPrices(b.Open, b.High, b.Low, b.Close)
		tones[i] = candleTone(prices[i])
	}

	fullWidth := r.vp.GutterWidth + r.vp.Width
	grid := make([][]Cell, 0, r.vp.Height+axisHeight(r.interval))

	for y := r.vp.Height; y >= 1; y-- {
		row := blankRow(fullWidth)
		if len(visible) > 0 {
			r.writeGutter(row, y)
		}
		for col, i := range owner {
			if ch := candleRune(prices[i], y); ch != runeVoid {
				row[r.vp.GutterWidth+col] = Cell{Rune: ch, Tone: tones[i]}
			}
		}
		grid = append(grid, row)
	}

	if len(visible) > 0 {
		grid = append(grid, axisRows(visible, positions, r.vp, r.interval)...)
	} else {
		for i := 0; i < axisHeight(r.interval); i++ {
			grid = append(grid, blankRow(fullWidth))
		}
	}
	return grid
}

// writeGutter writes the price gutter cells for body row y (counted from
// the bottom). Every priceLabelEvery-th row carries the price at that
// height; the rest just draw the axis line.
func (r *Renderer) writeGutter(row []Cell, y int) {
	if r.vp.GutterWidth == 0 {
		return
	}
	priceWidth := r.vp.GutterWidth - 3 // trailing " │ "
	var text string
	if y%priceLabelEvery == 0 {
		text = fmt.Sprintf("%*.2f │ ", priceWidth, r.vp.priceAtRow(y))
	} else {
		text = fmt.Sprintf("%*s │ ", priceWidth, "")
	}
	setText(row, 0, text, ToneAxis)
}
