// Package util provides shared helpers for logging and retrying transient
// failures.
package util

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger creates a structured slog logger writing to w at the given
// level, in either "text" or "json" format. Unrecognised levels fall back
// to info, unrecognised formats to text. A TUI process should pass a log
// file writer here, never stdout: stdout belongs to the terminal renderer.
func NewLogger(w io.Writer, level, format string) *slog.Logger {
	var slevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slevel = slog.LevelDebug
	case "info":
		slevel = slog.LevelInfo
	case "warn":
		slevel = slog.LevelWarn
	case "error":
		slevel = slog.LevelError
	default:
		slevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: slevel}
	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}
