package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/parquet-go/parquet-go"

	"candleterm/internal/ohlc"
)

// ParquetStore caches fetched bar history as Parquet files on disk, one
// file per symbol and interval:
//
//	<DataDir>/bars/<SYMBOL>/<interval>.parquet
//
// The cache serves a chart instantly on startup while a fresh fetch runs
// in the background; a fetched series always replaces the cached one
// wholesale.
type ParquetStore struct {
	DataDir string
}

// NewParquetStore creates a ParquetStore rooted at the given directory.
func NewParquetStore(dataDir string) *ParquetStore {
	return &ParquetStore{DataDir: dataDir}
}

// barRecord is the on-disk Parquet schema for one bar.
type barRecord struct {
	Symbol    string  `parquet:"symbol"`
	Timestamp int64   `parquet:"timestamp,timestamp(millisecond)"` // Unix ms
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    int64   `parquet:"volume"`
}

func (s *ParquetStore) seriesPath(symbol string, iv ohlc.Interval) string {
	return filepath.Join(s.DataDir, "bars", symbol, iv.Label()+".parquet")
}

// WriteSeries replaces the cached bars for the series' symbol and interval.
func (s *ParquetStore) WriteSeries(series *ohlc.Series) error {
	if series == nil || series.Empty() {
		return nil
	}

	records := make([]barRecord, 0, series.Len())
	for _, b := range series.Bars {
		records = append(records, barRecord{
			Symbol:    series.Symbol,
			Timestamp: b.Timestamp.UnixMilli(),
			Open:      b.Open,
			High:      b.High,
			Low:       b.Low,
			Close:     b.Close,
			Volume:    b.Volume,
		})
	}

	path := s.seriesPath(series.Symbol, series.Interval)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := parquet.WriteFile(path, records); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// ReadSeries loads the cached bars for a symbol and interval. A missing
// cache file returns (nil, nil); the caller falls through to a live fetch.
func (s *ParquetStore) ReadSeries(symbol string, iv ohlc.Interval) (*ohlc.Series, error) {
	path := s.seriesPath(symbol, iv)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}

	records, err := parquet.ReadFile[barRecord](path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Timestamp < records[j].Timestamp })

	series := ohlc.NewSeries(symbol, iv)
	series.Bars = make([]ohlc.Bar, 0, len(records))
	for _, r := range records {
		series.Bars = append(series.Bars, ohlc.Bar{
			Timestamp: time.UnixMilli(r.Timestamp).UTC(),
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		})
	}
	return series, nil
}

// Symbols lists every symbol with cached bar data, sorted.
func (s *ParquetStore) Symbols() ([]string, error) {
	dir := filepath.Join(s.DataDir, "bars")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var symbols []string
	for _, e := range entries {
		if e.IsDir() {
			symbols = append(symbols, e.Name())
		}
	}
	sort.Strings(symbols)
	return symbols, nil
}
