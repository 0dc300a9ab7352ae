package quote

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"candleterm/internal/ohlc"
	"candleterm/internal/util"
)

const yahooBaseURL = "https://query1.finance.yahoo.com"

// YahooProvider fetches bars from the Yahoo Finance v8 chart API. It needs
// no credentials, which makes it the default provider.
type YahooProvider struct {
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewYahooProvider creates a YahooProvider with a shared timeout client.
func NewYahooProvider(logger *slog.Logger) *YahooProvider {
	return &YahooProvider{
		baseURL: yahooBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		log:     logger.With("provider", "yahoo"),
	}
}

// ---------------------------------------------------------------------------
// Wire types (v8/finance/chart response)
// ---------------------------------------------------------------------------

type yahooResponse struct {
	Chart struct {
		Result []yahooResult `json:"result"`
		Error  *yahooError   `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type yahooResult struct {
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []yahooQuote `json:"quote"`
	} `json:"indicators"`
}

// yahooQuote arrays are index-aligned with Timestamp; individual entries
// may be null for buckets with no trades.
type yahooQuote struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

// ---------------------------------------------------------------------------
// Provider implementation
// ---------------------------------------------------------------------------

// Bars fetches bar history for the symbol over the interval's default
// timeframe. Transient request failures are retried with backoff.
func (p *YahooProvider) Bars(ctx context.Context, symbol string, iv ohlc.Interval) (*ohlc.Series, error) {
	reqURL := p.chartURL(symbol, iv)

	var resp yahooResponse
	err := util.Retry(ctx, 3, 500*time.Millisecond, func() error {
		return p.fetch(ctx, reqURL, &resp)
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %s bars: %w", symbol, err)
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo: %s: %s", resp.Chart.Error.Code, resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, ErrNoData
	}

	series := parseYahooResult(resp.Chart.Result[0], symbol, iv)
	if series.Empty() {
		return nil, ErrNoData
	}

	p.log.Debug("fetched bars", "symbol", symbol, "interval", iv.Label(), "count", series.Len())
	return series, nil
}

// chartURL builds the v8 chart endpoint URL for a symbol and interval.
func (p *YahooProvider) chartURL(symbol string, iv ohlc.Interval) string {
	now := time.Now()
	from := now.AddDate(0, 0, -iv.DefaultTimeframe().Days())

	q := url.Values{}
	q.Set("interval", iv.YahooParam())
	q.Set("period1", fmt.Sprintf("%d", from.Unix()))
	q.Set("period2", fmt.Sprintf("%d", now.Unix()))

	return fmt.Sprintf("%s/v8/finance/chart/%s?%s", p.baseURL, url.PathEscape(symbol), q.Encode())
}

func (p *YahooProvider) fetch(ctx context.Context, reqURL string, out *yahooResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	// Yahoo rejects requests without a browser-ish user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; candleterm)")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("yahoo: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// parseYahooResult converts one chart result into a Series, dropping rows
// with any missing price.
func parseYahooResult(res yahooResult, symbol string, iv ohlc.Interval) *ohlc.Series {
	series := ohlc.NewSeries(symbol, iv)
	if len(res.Indicators.Quote) == 0 {
		return series
	}
	q := res.Indicators.Quote[0]

	at := func(arr []*float64, i int) (float64, bool) {
		if i >= len(arr) || arr[i] == nil {
			return 0, false
		}
		return *arr[i], true
	}

	for i, ts := range res.Timestamp {
		open, ok := at(q.Open, i)
		if !ok {
			continue
		}
		high, ok := at(q.High, i)
		if !ok {
			continue
		}
		low, ok := at(q.Low, i)
		if !ok {
			continue
		}
		closeP, ok := at(q.Close, i)
		if !ok {
			continue
		}

		var volume int64
		if i < len(q.Volume) && q.Volume[i] != nil {
			volume = *q.Volume[i]
		}

		series.Bars = append(series.Bars, ohlc.Bar{
			Timestamp: time.Unix(ts, 0).UTC(),
			Open:      open,
			High:      high,
			Low:       low,
			Close:     closeP,
			Volume:    volume,
		})
	}
	return series
}
