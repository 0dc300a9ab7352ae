// Package quote fetches OHLC bar history from market-data providers. The
// chart engine never talks to a provider directly: a provider hands back a
// validated, chronologically ordered Series snapshot and the rest of the
// application treats it as immutable.
package quote

import (
	"context"
	"errors"

	"candleterm/internal/ohlc"
)

// ErrNoData is returned when a provider reaches the API successfully but
// gets no bars back for the symbol.
var ErrNoData = errors.New("quote: no data for symbol")

// Provider fetches bar history for one symbol at a given candle interval.
// The lookback period is the interval's default timeframe. Bars are
// returned oldest first with strictly increasing timestamps, and rows with
// missing prices are dropped rather than fabricated.
type Provider interface {
	Bars(ctx context.Context, symbol string, iv ohlc.Interval) (*ohlc.Series, error)
}
