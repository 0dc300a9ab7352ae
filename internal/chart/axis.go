package chart

import (
	"candleterm/internal/ohlc"
)

// Label density limits. maxLabelCap keeps a very wide terminal from turning
// the axis into noise; minLabels guarantees at least the two endpoints get
// context.
const (
	minLabels   = 2
	maxLabelCap = 10

	// labelPadding is the minimum spacing reserved between adjacent axis
	// labels when deciding how many fit.
	labelPadding = 2

	// dateSpacing is the minimum gap between two day labels on the date row.
	dateSpacing = 2
)

// labelStep returns which bar indices receive a tick and a label: every
// step-th visible bar, where step grows with the bar count so at most
// maxLabels labels appear.
func labelStep(n, width, labelWidth int) int {
	maxLabels := width / (labelWidth + labelPadding)
	if maxLabels < minLabels {
		maxLabels = minLabels
	}
	if maxLabels > maxLabelCap {
		maxLabels = maxLabelCap
	}
	if n <= maxLabels {
		return 1
	}
	return n / maxLabels
}

// centerAt returns the start column of a label of length l centered on col,
// clamped to the left edge. Clipping on the right is the writer's job.
func centerAt(col, l int) int {
	start := col - l/2
	if start < 0 {
		start = 0
	}
	return start
}

// axisRows renders the time axis under the chart body: a row of tick
// marks, a row of time labels, and for intraday intervals a third row
// marking day changes. Every row is full grid width (gutter included, left
// blank) and indexes into the identical positions slice the candle layer
// used; the axis never derives its own spacing.
func axisRows(visible []ohlc.Bar, positions []CandlePosition, vp Viewport, iv ohlc.Interval) [][]Cell {
	fullWidth := vp.GutterWidth + vp.Width

	tickRow := blankRow(fullWidth)
	labelRow := blankRow(fullWidth)

	step := labelStep(len(visible), vp.Width, iv.LabelWidth())
	layout := iv.LabelLayout()

	lastLabelEnd := -labelPadding
	for i, b := range visible {
		if i%step != 0 {
			continue
		}
		col := positions[i].Column
		tickRow[vp.GutterWidth+col] = Cell{Rune: runeTick, Tone: ToneAxis}

		text := b.Timestamp.Format(layout)
		start := centerAt(col, len(text))
		if start < lastLabelEnd+labelPadding {
			// Would run into the previous label; drop it, keep the tick.
			continue
		}
		setText(labelRow[vp.GutterWidth:], start, text, ToneLabel)
		lastLabelEnd = start + len(text)
	}

	rows := [][]Cell{tickRow, labelRow}
	if iv.Intraday() {
		rows = append(rows, dateRow(visible, positions, vp))
	}
	return rows
}

// dateRow marks day boundaries under the time labels for intraday
// intervals. A date is placed at the first bar of each new day, reusing
// that bar's planned column, and suppressed when it would crowd the
// previous date.
func dateRow(visible []ohlc.Bar, positions []CandlePosition, vp Viewport) []Cell {
	row := blankRow(vp.GutterWidth + vp.Width)

	lastEnd := -dateSpacing
	havePrev := false
	var prevY, prevD int
	var prevM = -1

	for i, b := range visible {
		y, m, d := b.Timestamp.Date()
		dayChange := havePrev && (y != prevY || int(m) != prevM || d != prevD)
		// The very first bar only gets a date when it opens the day.
		if !havePrev {
			dayChange = b.Timestamp.Hour() < 2
		}
		havePrev, prevY, prevM, prevD = true, y, int(m), d

		if !dayChange {
			continue
		}

		text := b.Timestamp.Format("02/01")
		start := centerAt(positions[i].Column, len(text))
		if start < lastEnd+dateSpacing {
			continue
		}
		setText(row[vp.GutterWidth:], start, text, ToneAxis)
		lastEnd = start + len(text)
	}
	return row
}
