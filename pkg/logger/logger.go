package logger

import (
	"io"
	"log/slog"
	"strings"
)

// New builds a structured JSON logger writing to w. The dashboard owns
// the terminal while the server runs, so callers pass a log file or
// io.Discard rather than stdout.
func New(w io.Writer, lvl string, addSource bool) *slog.Logger {

	level := parseLevel(lvl)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
	}

	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLevel(level string) slog.Level {

	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
