package quote

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"candleterm/internal/ohlc"
)

// AlpacaProvider fetches bars from the Alpaca market-data API. It requires
// API credentials and only covers US equities, but serves intraday history
// without the rate limiting Yahoo applies to anonymous clients.
type AlpacaProvider struct {
	client *marketdata.Client
	feed   marketdata.Feed
	log    *slog.Logger
}

// NewAlpacaProvider creates an AlpacaProvider with the given credentials.
// dataURL overrides the default API endpoint when non-empty.
func NewAlpacaProvider(apiKey, apiSecret, dataURL string, logger *slog.Logger) *AlpacaProvider {
	opts := marketdata.ClientOpts{
		APIKey:    apiKey,
		APISecret: apiSecret,
	}
	if dataURL != "" {
		opts.BaseURL = dataURL
	}
	return &AlpacaProvider{
		client: marketdata.NewClient(opts),
		feed:   marketdata.IEX,
		log:    logger.With("provider", "alpaca"),
	}
}

// timeFrameFor maps a candle interval onto the Alpaca bar timeframe.
func timeFrameFor(iv ohlc.Interval) marketdata.TimeFrame {
	switch iv {
	case ohlc.Interval5Min:
		return marketdata.NewTimeFrame(5, marketdata.Min)
	case ohlc.Interval15Min:
		return marketdata.NewTimeFrame(15, marketdata.Min)
	case ohlc.Interval30Min:
		return marketdata.NewTimeFrame(30, marketdata.Min)
	case ohlc.Interval1Hour:
		return marketdata.NewTimeFrame(1, marketdata.Hour)
	case ohlc.Interval4Hour:
		return marketdata.NewTimeFrame(4, marketdata.Hour)
	case ohlc.Interval1Week:
		return marketdata.NewTimeFrame(1, marketdata.Week)
	default:
		return marketdata.OneDay
	}
}

// Bars fetches bar history for the symbol over the interval's default
// timeframe.
func (p *AlpacaProvider) Bars(ctx context.Context, symbol string, iv ohlc.Interval) (*ohlc.Series, error) {
	// The SDK client doesn't thread contexts; honor cancellation up front.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	end := time.Now()
	start := end.AddDate(0, 0, -iv.DefaultTimeframe().Days())

	alpacaBars, err := p.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame: timeFrameFor(iv),
		Start:     start,
		End:       end,
		Feed:      p.feed,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %s bars: %w", symbol, err)
	}
	if len(alpacaBars) == 0 {
		return nil, ErrNoData
	}

	series := ohlc.NewSeries(symbol, iv)
	series.Bars = make([]ohlc.Bar, 0, len(alpacaBars))
	for _, ab := range alpacaBars {
		series.Bars = append(series.Bars, ohlc.Bar{
			Timestamp: ab.Timestamp,
			Open:      ab.Open,
			High:      ab.High,
			Low:       ab.Low,
			Close:     ab.Close,
			Volume:    int64(ab.Volume),
		})
	}

	p.log.Debug("fetched bars", "symbol", symbol, "interval", iv.Label(), "count", series.Len())
	return series, nil
}
