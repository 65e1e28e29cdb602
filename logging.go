package govalid

import (
	"log/slog"
	"os"
)

// NewLogger returns a JSON slog.Logger writing to stdout at the given level,
// suitable for passing to NewDescriptorManager. A DescriptorManager given a
// nil logger falls back to slog.Default(), not to NewLogger.
func NewLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
}
