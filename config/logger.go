package config

import (
	"io"
	"log/slog"
)

// NewLogger creates a slog.Logger writing to w. level is one of debug, info,
// warn or error (anything else means info); format "json" selects the JSON
// handler, anything else the text handler. It does not set the global logger.
func NewLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl}
	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Logger builds the logger described by the log section.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	return NewLogger(c.Log.Level, c.Log.Format, w)
}
