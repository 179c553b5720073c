package app

import (
	"io"
	"log/slog"
)

// newLogger builds the logger of one App. The global logger is left alone so
// several App instances can log to different writers.
func newLogger(level, format string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: lvl, AddSource: lvl < slog.LevelInfo}
	var handler slog.Handler = slog.NewTextHandler(w, opts)
	if format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("app", "assetgrid")
}
