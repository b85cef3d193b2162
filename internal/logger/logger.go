// Package logger configures the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds a logger writing to w. Development gets the text handler,
// every other environment gets JSON.
func New(w io.Writer, development bool, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if development {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// Init builds a stdout logger and installs it as the slog default.
func Init(development bool, level string) *slog.Logger {
	l := New(os.Stdout, development, level)
	slog.SetDefault(l)
	return l
}

// ParseLevel maps a level name onto slog; unknown names mean info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
