// Package dashboard assembles and formats the watchlist view: one row per
// tracked ticker with its latest price and daily change.
package dashboard

import (
	"fmt"
	"strings"
)

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	start := len(s) % 3
	if start > 0 {
		b.WriteString(s[:start])
	}
	for i := start; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatPrice formats a price as $X.XX, switching to more decimals for
// sub-dollar prices so penny tickers don't render as $0.00.
func FormatPrice(p float64) string {
	if p == 0 {
		return "-"
	}
	if p < 1 {
		return fmt.Sprintf("$%.4f", p)
	}
	return fmt.Sprintf("$%.2f", p)
}

// FormatChange formats a percent change with an explicit sign and a
// direction arrow, e.g. "▲ +1.4%".
func FormatChange(pct float64) string {
	arrow := "▲"
	if pct < 0 {
		arrow = "▼"
	}
	return fmt.Sprintf("%s %+.2f%%", arrow, pct)
}

// FormatVolume formats a share volume with B/M/K suffixes.
func FormatVolume(v int64) string {
	f := float64(v)
	switch {
	case f >= 1e9:
		return fmt.Sprintf("%.1fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("%.1fM", f/1e6)
	case f >= 1e3:
		return fmt.Sprintf("%.1fK", f/1e3)
	default:
		return fmt.Sprintf("%.0f", f)
	}
}

// PadOrTrunc fits s into exactly width cells, padding with spaces or
// cutting on the right.
func PadOrTrunc(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) > width {
		return string(runes[:width])
	}
	return s + strings.Repeat(" ", width-len(runes))
}
