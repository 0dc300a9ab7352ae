// Package ohlc defines the price-bar domain types shared by the data
// providers, the store, and the chart engine: a single OHLCV bar, the
// candle interval enumeration, and the Series aggregate that holds one
// symbol's chronological bar history.
package ohlc

import "time"

// Bar is a single OHLCV candle for one time bucket. Timestamps are
// monotonically increasing within a Series; numeric sanity (high covers
// open/close, low under both) is the producing provider's contract.
type Bar struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// Bullish reports whether the bar closed at or above its open. A flat bar
// (close == open) counts as bullish.
func (b Bar) Bullish() bool { return b.Close >= b.Open }

// Body returns the absolute open-to-close distance.
func (b Bar) Body() float64 {
	if b.Close > b.Open {
		return b.Close - b.Open
	}
	return b.Open - b.Close
}

// UpperWick returns the distance from the body top to the high.
func (b Bar) UpperWick() float64 {
	top := b.Open
	if b.Close > top {
		top = b.Close
	}
	return b.High - top
}

// LowerWick returns the distance from the low to the body bottom.
func (b Bar) LowerWick() float64 {
	bottom := b.Open
	if b.Close < bottom {
		bottom = b.Close
	}
	return bottom - b.Low
}

// ChangePercent returns the open-to-close change of this bar in percent.
func (b Bar) ChangePercent() float64 {
	if b.Open == 0 {
		return 0
	}
	return (b.Close - b.Open) / b.Open * 100
}

// ---------------------------------------------------------------------------
// Timeframe
// ---------------------------------------------------------------------------

// Timeframe is the total period of history a series covers. It is distinct
// from Interval: the interval is the width of one candle, the timeframe is
// how far back the series reaches.
type Timeframe int

// Lookback periods, shortest first.
const (
	TimeframeOneDay Timeframe = iota
	TimeframeThreeDays
	TimeframeFiveDays
	TimeframeOneWeek
	TimeframeTwoWeeks
	TimeframeOneMonth
	TimeframeTwoMonths
	TimeframeThreeMonths
	TimeframeSixMonths
	TimeframeOneYear
	TimeframeTwoYears
	TimeframeFiveYears
)

// Days returns the number of calendar days the timeframe spans.
func (t Timeframe) Days() int {
	switch t {
	case TimeframeOneDay:
		return 1
	case TimeframeThreeDays:
		return 3
	case TimeframeFiveDays:
		return 5
	case TimeframeOneWeek:
		return 7
	case TimeframeTwoWeeks:
		return 14
	case TimeframeOneMonth:
		return 30
	case TimeframeTwoMonths:
		return 60
	case TimeframeThreeMonths:
		return 90
	case TimeframeSixMonths:
		return 180
	case TimeframeOneYear:
		return 365
	case TimeframeTwoYears:
		return 730
	case TimeframeFiveYears:
		return 1825
	default:
		return 30
	}
}

// Label returns the short display form, e.g. "14D" or "2Y".
func (t Timeframe) Label() string {
	switch t {
	case TimeframeOneDay:
		return "1D"
	case TimeframeThreeDays:
		return "3D"
	case TimeframeFiveDays:
		return "5D"
	case TimeframeOneWeek:
		return "7D"
	case TimeframeTwoWeeks:
		return "14D"
	case TimeframeOneMonth:
		return "1M"
	case TimeframeTwoMonths:
		return "2M"
	case TimeframeThreeMonths:
		return "3M"
	case TimeframeSixMonths:
		return "6M"
	case TimeframeOneYear:
		return "1Y"
	case TimeframeTwoYears:
		return "2Y"
	case TimeframeFiveYears:
		return "5Y"
	default:
		return "?"
	}
}

// ---------------------------------------------------------------------------
// Interval
// ---------------------------------------------------------------------------

// Interval is the time width of one candle.
type Interval int

// Supported candle intervals, finest first.
const (
	Interval5Min Interval = iota
	Interval15Min
	Interval30Min
	Interval1Hour
	Interval4Hour
	Interval1Day
	Interval1Week
)

// Intervals lists every supported interval in cycling order.
func Intervals() []Interval {
	return []Interval{
		Interval5Min, Interval15Min, Interval30Min,
		Interval1Hour, Interval4Hour, Interval1Day, Interval1Week,
	}
}

// Label returns the short display form, e.g. "30m" or "1d".
func (iv Interval) Label() string {
	switch iv {
	case Interval5Min:
		return "5m"
	case Interval15Min:
		return "15m"
	case Interval30Min:
		return "30m"
	case Interval1Hour:
		return "1h"
	case Interval4Hour:
		return "4h"
	case Interval1Day:
		return "1d"
	case Interval1Week:
		return "1w"
	default:
		return "?"
	}
}

// YahooParam returns the interval string the Yahoo Finance chart API expects.
func (iv Interval) YahooParam() string {
	if iv == Interval1Week {
		return "1wk"
	}
	return iv.Label()
}

// DefaultTimeframe returns the lookback period loaded for this interval.
// The mapping targets a few hundred candles per fetch so the chart always
// has more history than a terminal is wide.
func (iv Interval) DefaultTimeframe() Timeframe {
	switch iv {
	case Interval5Min:
		return TimeframeOneWeek
	case Interval15Min:
		return TimeframeTwoWeeks
	case Interval30Min:
		return TimeframeOneMonth
	case Interval1Hour:
		return TimeframeSixMonths
	case Interval4Hour:
		return TimeframeOneYear
	case Interval1Day:
		return TimeframeTwoYears
	case Interval1Week:
		return TimeframeFiveYears
	default:
		return TimeframeOneMonth
	}
}

// Intraday reports whether several candles of this interval fit in one day.
func (iv Interval) Intraday() bool {
	return iv <= Interval4Hour
}

// Next returns the next finer-to-coarser interval, wrapping around.
func (iv Interval) Next() Interval {
	if iv >= Interval1Week {
		return Interval5Min
	}
	return iv + 1
}

// Previous returns the previous interval, wrapping around.
func (iv Interval) Previous() Interval {
	if iv <= Interval5Min {
		return Interval1Week
	}
	return iv - 1
}

// LabelLayout returns the time.Format layout for axis labels at this
// interval, and LabelWidth the rendered width of such a label. The two are
// kept adjacent so the axis spacing math and the formatting can never fall
// out of step.
func (iv Interval) LabelLayout() string {
	switch iv {
	case Interval5Min, Interval15Min, Interval30Min, Interval1Hour:
		return "15:04"
	case Interval4Hour:
		return "02/01 15h"
	case Interval1Week:
		return "02 Jan"
	default:
		return "02/01"
	}
}

// LabelWidth returns the character width of labels produced by LabelLayout.
func (iv Interval) LabelWidth() int {
	return len(iv.LabelLayout())
}

// ---------------------------------------------------------------------------
// Series
// ---------------------------------------------------------------------------

// Series is an immutable snapshot of one symbol's bar history at a given
// interval. A refresh replaces the whole Series; bars are never mutated in
// place.
type Series struct {
	Symbol    string
	Interval  Interval
	Timeframe Timeframe
	Bars      []Bar
}

// NewSeries creates an empty series using the interval's default timeframe.
func NewSeries(symbol string, iv Interval) *Series {
	return &Series{
		Symbol:    symbol,
		Interval:  iv,
		Timeframe: iv.DefaultTimeframe(),
	}
}

// Len returns the number of bars.
func (s *Series) Len() int { return len(s.Bars) }

// Empty reports whether the series has no bars.
func (s *Series) Empty() bool { return len(s.Bars) == 0 }

// Last returns the most recent bar, or a zero Bar and false when empty.
func (s *Series) Last() (Bar, bool) {
	if len(s.Bars) == 0 {
		return Bar{}, false
	}
	return s.Bars[len(s.Bars)-1], true
}

// TotalChangePercent returns the change from the first bar's open to the
// last bar's close over the whole series, in percent.
func (s *Series) TotalChangePercent() (float64, bool) {
	if len(s.Bars) == 0 {
		return 0, false
	}
	first := s.Bars[0]
	last := s.Bars[len(s.Bars)-1]
	if first.Open == 0 {
		return 0, false
	}
	return (last.Close - first.Open) / first.Open * 100, true
}

// DailyChangePercent returns the open-to-close change of the most recent
// trading day in the series, in percent. For daily and weekly intervals
// this is simply the last bar's change; for intraday intervals it spans
// every bar sharing the last bar's date.
func (s *Series) DailyChangePercent() (float64, bool) {
	last, ok := s.Last()
	if !ok {
		return 0, false
	}
	if !s.Interval.Intraday() {
		if last.Open == 0 {
			return 0, false
		}
		return last.ChangePercent(), true
	}

	y, m, d := last.Timestamp.Date()
	dayOpen := 0.0
	for _, b := range s.Bars {
		by, bm, bd := b.Timestamp.Date()
		if by == y && bm == m && bd == d {
			dayOpen = b.Open
			break
		}
	}
	if dayOpen == 0 {
		return 0, false
	}
	return (last.Close - dayOpen) / dayOpen * 100, true
}
