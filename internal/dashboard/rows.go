package dashboard

import (
	"sort"

	"candleterm/internal/ohlc"
)

// Row is one rendered watchlist line's worth of data.
type Row struct {
	Symbol    string
	Name      string
	Price     float64
	ChangePct float64
	Volume    int64
	HasData   bool
}

// Sort modes for the watchlist, cycled by the UI.
const (
	SortBySymbol = iota
	SortByChange
	SortByPrice
	SortModeCount
)

// SortModeLabel names a sort mode for the header bar.
func SortModeLabel(mode int) string {
	switch mode {
	case SortByChange:
		return "change"
	case SortByPrice:
		return "price"
	default:
		return "symbol"
	}
}

// BuildRows assembles watchlist rows from the per-symbol daily series.
// Symbols without data yet still get a row so the list never jumps around
// while quotes load.
func BuildRows(symbols []string, names map[string]string, series map[string]*ohlc.Series, sortMode int) []Row {
	rows := make([]Row, 0, len(symbols))
	for _, sym := range symbols {
		row := Row{Symbol: sym, Name: names[sym]}
		if s := series[sym]; s != nil && !s.Empty() {
			last, _ := s.Last()
			row.Price = last.Close
			row.Volume = last.Volume
			row.HasData = true
			if pct, ok := s.DailyChangePercent(); ok {
				row.ChangePct = pct
			}
		}
		rows = append(rows, row)
	}

	sortRows(rows, sortMode)
	return rows
}

// sortRows orders rows for display. Rows without data sink to the bottom
// under every mode.
func sortRows(rows []Row, mode int) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.HasData != b.HasData {
			return a.HasData
		}
		switch mode {
		case SortByChange:
			return a.ChangePct > b.ChangePct
		case SortByPrice:
			return a.Price > b.Price
		default:
			return a.Symbol < b.Symbol
		}
	})
}
