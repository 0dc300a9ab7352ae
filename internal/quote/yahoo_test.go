package quote

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"candleterm/internal/ohlc"
)

// Compile-time interface checks.
var _ Provider = (*YahooProvider)(nil)
var _ Provider = (*AlpacaProvider)(nil)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const sampleChartResponse = `{
  "chart": {
    "result": [{
      "timestamp": [1764000000, 1764001800, 1764003600, 1764005400],
      "indicators": {
        "quote": [{
          "open":   [100.0, 101.5, null, 103.0],
          "high":   [102.0, 103.0, 104.0, 105.0],
          "low":    [99.0, 100.5, 101.0, 102.0],
          "close":  [101.5, 102.5, 103.5, 104.5],
          "volume": [1000, 1100, null, 1300]
        }]
      }
    }],
    "error": null
  }
}`

func newTestProvider(t *testing.T, handler http.HandlerFunc) *YahooProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	p := NewYahooProvider(discardLogger())
	p.baseURL = srv.URL
	return p
}

func TestYahooBarsParsesResponse(t *testing.T) {
	var gotPath string
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		io.WriteString(w, sampleChartResponse)
	})

	series, err := p.Bars(context.Background(), "AAPL", ohlc.Interval30Min)
	if err != nil {
		t.Fatalf("Bars: %v", err)
	}

	if !strings.HasPrefix(gotPath, "/v8/finance/chart/AAPL?") {
		t.Errorf("request path = %q", gotPath)
	}
	if !strings.Contains(gotPath, "interval=30m") {
		t.Errorf("request should carry interval=30m, got %q", gotPath)
	}

	// The third row has a null open and must be dropped.
	if series.Len() != 3 {
		t.Fatalf("got %d bars, want 3", series.Len())
	}
	if series.Bars[0].Open != 100.0 || series.Bars[0].Close != 101.5 {
		t.Errorf("first bar = %+v", series.Bars[0])
	}
	if series.Bars[2].Close != 104.5 || series.Bars[2].Volume != 1300 {
		t.Errorf("last bar = %+v", series.Bars[2])
	}
	// Chronological order preserved.
	for i := 1; i < series.Len(); i++ {
		if !series.Bars[i].Timestamp.After(series.Bars[i-1].Timestamp) {
			t.Error("timestamps must be strictly increasing")
		}
	}
	if series.Symbol != "AAPL" || series.Interval != ohlc.Interval30Min {
		t.Errorf("series metadata = %s/%s", series.Symbol, series.Interval.Label())
	}
}

func TestYahooBarsAPIError(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`)
	})

	if _, err := p.Bars(context.Background(), "NOPE", ohlc.Interval1Day); err == nil {
		t.Error("API error payload should surface as an error")
	}
}

func TestYahooBarsEmptyResult(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"chart":{"result":[{"timestamp":[],"indicators":{"quote":[{}]}}],"error":null}}`)
	})

	_, err := p.Bars(context.Background(), "EMPTY", ohlc.Interval1Day)
	if !errors.Is(err, ErrNoData) {
		t.Errorf("got %v, want ErrNoData", err)
	}
}

func TestYahooBarsHTTPFailureRetriesThenFails(t *testing.T) {
	attempts := 0
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	if _, err := p.Bars(context.Background(), "AAPL", ohlc.Interval1Day); err == nil {
		t.Error("persistent HTTP failure should return an error")
	}
	if attempts != 3 {
		t.Errorf("got %d attempts, want 3", attempts)
	}
}

func TestTimeFrameForCoversAllIntervals(t *testing.T) {
	// Each interval must map to a distinct Alpaca timeframe string.
	seen := map[string]bool{}
	for _, iv := range ohlc.Intervals() {
		tf := timeFrameFor(iv).String()
		if seen[tf] {
			t.Errorf("interval %s maps to duplicate timeframe %s", iv.Label(), tf)
		}
		seen[tf] = true
	}
}
