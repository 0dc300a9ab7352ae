package chart

import "math"

// Candle glyphs. Fractional row thresholds at 0.25 and 0.75 pick between
// full, half, and transition forms for sub-cell precision.
const (
	runeVoid           = ' '
	runeBody           = '┃' // full body
	runeHalfBodyBottom = '╻' // body occupying the lower half
	runeHalfBodyTop    = '╹' // body occupying the upper half
	runeWick           = '│' // full wick
	runeTopTransition  = '╽' // body below, wick above
	runeBottomTransit  = '╿' // body above, wick below
	runeUpperWick      = '╷' // short wick, lower half
	runeLowerWick      = '╵' // short wick, upper half

	runeTick = '│' // axis tick mark
)

// Tone is the color category of a cell. The terminal layer maps tones to
// concrete styles; the engine itself never deals in colors.
type Tone uint8

// Cell color categories.
const (
	ToneNone Tone = iota
	ToneBullish
	ToneBearish
	ToneAxis
	ToneLabel
)

// Cell is one character cell of the rendered grid.
type Cell struct {
	Rune rune
	Tone Tone
}

// blankRow returns a row of width space cells.
func blankRow(width int) []Cell {
	row := make([]Cell, width)
	for i := range row {
		row[i] = Cell{Rune: runeVoid}
	}
	return row
}

// setText writes s into row starting at col, clipping to the row bounds.
func setText(row []Cell, col int, s string, tone Tone) {
	for _, r := range s {
		if col >= 0 && col < len(row) {
			row[col] = Cell{Rune: r, Tone: tone}
		}
		col++
	}
}

// candleTone returns the color category for a bar. A flat bar counts as
// bullish.
func candleTone(b barPrices) Tone {
	if b.close >= b.open {
		return ToneBullish
	}
	return ToneBearish
}

// barPrices carries one bar's prices converted once per frame; rows are
// cheap to test against after that.
type barPrices struct {
	open, close     float64
	highRow, lowRow float64 // wick extent, fractional rows
	topRow, botRow  float64 // body extent, fractional rows
}

// makeBarPrices converts a bar's prices to fractional row coordinates.
func (v Viewport) makeBarPrices(open, high, low, close float64) barPrices {
	top := open
	bot := close
	if close > open {
		top, bot = close, open
	}
	return barPrices{
		open:    open,
		close:   close,
		highRow: v.priceToRow(high),
		lowRow:  v.priceToRow(low),
		topRow:  v.priceToRow(top),
		botRow:  v.priceToRow(bot),
	}
}

// candleRune picks the glyph for one bar at row y, where y counts up from
// the bottom of the chart body (1-based). Three vertical zones are
// distinguished: the upper wick between the body top and the high, the
// body itself, and the lower wick between the low and the body bottom.
func candleRune(b barPrices, y int) rune {
	row := float64(y)

	switch {
	case math.Ceil(b.highRow) >= row && row >= math.Floor(b.topRow):
		// Upper wick zone.
		switch {
		case b.topRow-row > 0.75:
			return runeBody
		case b.topRow-row > 0.25:
			if b.highRow-row > 0.75 {
				return runeTopTransition
			}
			return runeHalfBodyBottom
		case b.highRow-row > 0.75:
			return runeWick
		case b.highRow-row > 0.25:
			return runeUpperWick
		}
		return runeVoid

	case math.Floor(b.topRow) >= row && row >= math.Ceil(b.botRow):
		// Body zone.
		return runeBody

	case math.Ceil(b.botRow) >= row && row >= math.Floor(b.lowRow):
		// Lower wick zone.
		switch {
		case b.botRow-row < 0.25:
			return runeBody
		case b.botRow-row < 0.75:
			if b.lowRow-row < 0.25 {
				return runeBottomTransit
			}
			return runeHalfBodyTop
		case b.lowRow-row < 0.25:
			return runeWick
		case b.lowRow-row < 0.75:
			return runeLowerWick
		}
		return runeVoid

	default:
		return runeVoid
	}
}
