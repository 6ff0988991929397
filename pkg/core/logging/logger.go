// Package logging builds the structured loggers used by the command line.
// Logs always go to stderr (or a test writer) so stdout stays reserved for
// generated assembly and program output.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LoggerConfig holds configuration for creating loggers
type LoggerConfig struct {
	// Component name attached to every record
	Name string

	// Log level (debug, info, warn, error)
	Level string

	// Output format: "text" or "json" (default: text)
	Format string

	// Destination; nil means stderr
	Output io.Writer
}

// DefaultLoggerConfig returns a default configuration
func DefaultLoggerConfig(name string) LoggerConfig {
	return LoggerConfig{
		Name:   name,
		Level:  "warn",
		Format: "text",
	}
}

// NewLogger creates a logger from cfg
func NewLogger(cfg LoggerConfig) *slog.Logger {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var h slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		h = slog.NewJSONHandler(out, opts)
	} else {
		h = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(h)
	if cfg.Name != "" {
		logger = logger.With("component", cfg.Name)
	}
	return logger
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// ParseLevel maps a level name to slog.Level, defaulting to warn.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
