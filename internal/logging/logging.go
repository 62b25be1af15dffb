// Package logging builds the slog loggers used by the Lambda functions and the CLI.
package logging

import (
	"io"
	"log/slog"
	"strings"
)

// Format selects the handler encoding.
type Format string

const (
	// JSON is used in Lambda so CloudWatch can index fields.
	JSON Format = "json"
	// Text is used for local runs.
	Text Format = "text"
)

// New returns a logger writing to w at the named level ("debug", "info",
// "warn", "error"; anything else means info).
func New(w io.Writer, level string, format Format) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if format == Text {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// ParseLevel maps a level name to a slog.Level.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// Discard returns a logger that drops everything. Tests use it.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
