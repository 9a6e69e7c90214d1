// Package logging configures the process-wide slog logger and issues run
// identifiers that correlate a validation call across log lines.
package logging

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/oklog/ulid/v2"
)

// Supported log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Error definitions
var (
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
)

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, name)
	}
}

// Setup installs the process-wide default logger writing to stderr.
// Verdicts go to stdout; keeping diagnostics on stderr lets callers pipe
// the verdict cleanly.
func Setup(level, format string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case FormatText, "":
		handler = slog.NewTextHandler(os.Stderr, opts)
	case FormatJSON:
		handler = slog.NewJSONHandler(os.Stderr, opts)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

// GenerateRunID returns a ULID identifying one gate invocation.
func GenerateRunID() string {
	return ulid.Make().String()
}
