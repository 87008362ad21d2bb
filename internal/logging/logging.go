// Package logging provides the zerolog-based logging infrastructure shared by
// the CLI, the preload scheduler, and the dashboard host. Loggers travel
// through context.Context so library code never holds a global.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Output formats accepted by Config.Format.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config controls how the application logger is built.
type Config struct {
	// Level is a zerolog level name ("debug", "info", "warn", ...).
	Level string

	// Format selects console (human-readable) or json output.
	Format string

	// File, when set, duplicates log output to the given file in append mode.
	File string

	// Caller adds the caller file:line to every event.
	Caller bool
}

// NewLogger builds the application logger from cfg.
//
// Unparseable levels fall back to info rather than failing startup. The
// returned close function releases the log file handle when one was opened;
// it is always non-nil.
func NewLogger(cfg Config) (zerolog.Logger, func() error, error) {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var writers []io.Writer
	switch cfg.Format {
	case FormatJSON:
		writers = append(writers, os.Stderr)
	default:
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}

	closeFn := func() error { return nil }
	if cfg.File != "" {
		logFile, fileErr := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
		if fileErr != nil {
			return zerolog.Nop(), closeFn, fmt.Errorf("opening log file: %w", fileErr)
		}
		writers = append(writers, logFile)
		closeFn = logFile.Close
	}

	logCtx := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(lvl).
		Hook(TracingHook{}).
		With().
		Timestamp()
	if cfg.Caller {
		logCtx = logCtx.Caller()
	}

	return logCtx.Logger(), closeFn, nil
}

// ComponentLogger returns a child logger tagged with the given component name.
func ComponentLogger(logger zerolog.Logger, component string) zerolog.Logger {
	return logger.With().Str("component", component).Logger()
}

// FromContext extracts the logger embedded in ctx via zerolog's context
// support. When no logger was attached it returns a disabled logger, so
// callers can log unconditionally.
func FromContext(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
