// Package logging provides the structured logger shared by the server and
// the request logging middleware.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Logger wraps slog.Logger with field helpers used across handlers.
type Logger struct {
	*slog.Logger
}

// NewLogger returns a colored human-readable logger in development and a JSON
// logger otherwise. LOG_LEVEL (debug, info, warn, error) sets the minimum level.
func NewLogger(isDevelopment bool) *Logger {
	level := levelFromEnv()

	var handler slog.Handler
	if isDevelopment {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	}

	return New(handler)
}

// New wraps an arbitrary slog handler.
func New(handler slog.Handler) *Logger {
	return &Logger{Logger: slog.New(handler)}
}

// NewDiscard returns a logger that drops everything. Useful in tests.
func NewDiscard() *Logger {
	return New(slog.DiscardHandler)
}

// WithFields returns a child logger with the given key/value pairs attached.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &Logger{Logger: l.With(args...)}
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
