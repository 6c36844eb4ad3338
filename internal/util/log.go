// Package util provides shared utility functions for logging and retries.
package util

import (
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a level name to its slog level. The second return is
// false for names it does not know; callers that reject bad input check
// it, callers that want a fallback ignore it and get "info".
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// NewLogger creates a structured JSON logger at the named level, falling
// back to "info" for names ParseLevel rejects.
func NewLogger(level string) *slog.Logger {
	slevel, _ := ParseLevel(level)

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slevel,
	})

	return slog.New(handler)
}

// SetDefault configures the provided logger as the default slog logger.
func SetDefault(logger *slog.Logger) {
	slog.SetDefault(logger)
}
