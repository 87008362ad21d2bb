package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/campsight/campsight/internal/config"
	"github.com/campsight/campsight/internal/logging"
)

// setupLogging builds the application logger from cfg and the --debug flag,
// then stamps a trace ID and the logger onto the command context so every
// layer below logs through it. The returned close function releases the log
// file handle, if any.
func setupLogging(cmd *cobra.Command, cfg *config.Config) (func() error, error) {
	loggingCfg := cfg.Logging

	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = logging.FormatConsole
		loggingCfg.File = ""
	}

	// An empty format means auto-detect: human-readable console output on a
	// terminal, JSON when stderr is redirected.
	if loggingCfg.Format == "" {
		if isTerminal(os.Stderr) {
			loggingCfg.Format = logging.FormatConsole
		} else {
			loggingCfg.Format = logging.FormatJSON
		}
	}

	if loggingCfg.File != "" {
		if err := cfg.EnsureLogDir(); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Warning: could not create log directory: %v\n", err)
			loggingCfg.File = ""
		}
	}

	appLogger, closeFn, err := logging.NewLogger(loggingCfg.ToLoggingConfig())
	if err != nil {
		return closeFn, fmt.Errorf("setting up logging: %w", err)
	}
	logger = logging.ComponentLogger(appLogger, "cli")

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	ctx = appLogger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Debug().Ctx(ctx).Str("command", cmd.Name()).Msg("command started")

	return closeFn, nil
}

// cleanupLogging closes the log file handle opened by setupLogging.
func cleanupLogging(closeLogs func() error) error {
	if closeLogs == nil {
		return nil
	}
	return closeLogs()
}
