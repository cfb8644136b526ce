package app

import (
	"io"
	"log/slog"
	"strings"
)

// newLogger builds the solver's slog.Logger from a Config. It does not set
// the global logger, so parallel runs keep isolated logger instances.
// Unrecognized level or format values fall back to info/text.
func newLogger(cfg *Config, outW io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(outW, handlerOpts)
	} else {
		handler = slog.NewTextHandler(outW, handlerOpts)
	}

	return slog.New(handler)
}
