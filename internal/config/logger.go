package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the application logger. fallback receives output when
// no log file is configured. The returned closer releases the log file.
func (c LogConfig) NewLogger(fallback io.Writer) (*slog.Logger, io.Closer, error) {
	w := fallback
	var closer io.Closer = nopCloser{}
	if c.File != "" {
		f, err := os.OpenFile(c.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		w, closer = f, f
	}
	if w == nil {
		w = io.Discard
	}

	opts := &slog.HandlerOptions{Level: c.level()}
	var h slog.Handler
	if c.Format == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h), closer, nil
}

func (c LogConfig) level() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
