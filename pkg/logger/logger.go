// Package logger builds the service's structured loggers and scrubs
// credentials out of anything that is about to be logged.
package logger

import (
	"io"
	"strings"

	"cdr.dev/slog/v3"
	"cdr.dev/slog/v3/sloggers/sloghuman"
)

// New returns a human readable logger writing to w at the named level.
// Unknown level names fall back to info.
func New(w io.Writer, level string) slog.Logger {
	return slog.Make(sloghuman.Sink(w)).Leveled(ParseLevel(level))
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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
