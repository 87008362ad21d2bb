package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campsight/campsight/internal/config"
	"github.com/campsight/campsight/pkg/version"
)

// NewConfigValidateCmd creates the config validate command for validating
// the effective configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration for syntax and semantic correctness.

This includes:
- Logging format values
- Preload concurrency, usage limit, and retry bounds
- The app.requires version constraint against this binary`,
		Example: `  # Validate current configuration
  campsight config validate

  # Validate and show the effective values
  campsight config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show the effective configuration values")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg := configFromCommand(cmd)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := cfg.CheckVersion(version.GetVersion()); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints the effective configuration values.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Default title: %s\n", cfg.App.DefaultTitle)
	if cfg.App.Requires != "" {
		cmd.Printf("  Requires: %s (binary %s)\n", cfg.App.Requires, version.GetVersion())
	}
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Logging format: %s\n", formatOrAuto(cfg.Logging.Format))
	if cfg.Logging.File != "" {
		cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	}
	cmd.Printf("  Preload concurrency: %d\n", cfg.Preload.Concurrency)
	cmd.Printf("  Preload usage limit: %d\n", cfg.Preload.UsageLimit)
	cmd.Printf("  Preload retries: %d\n", cfg.Preload.Retries)
	cmd.Printf("  Preload on startup: %t\n", cfg.Preload.OnStartupEnabled())
}

func formatOrAuto(format string) string {
	if format == "" {
		return "auto"
	}
	return format
}
