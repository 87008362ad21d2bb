// Package cli implements the campsight command tree. The root command wires
// configuration and logging; subcommands exercise the route registry and the
// preload scheduler, and "dash" hosts the interactive dashboard.
package cli

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/campsight/campsight/internal/config"
	"github.com/campsight/campsight/internal/preload"
	"github.com/campsight/campsight/internal/routes"
	"github.com/campsight/campsight/internal/views"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

type configKey struct{}

// configFromCommand returns the configuration loaded by the root command's
// PersistentPreRunE. Subcommands executed standalone (as tests do) fall back
// to the built-in defaults.
func configFromCommand(cmd *cobra.Command) *config.Config {
	if cfg, ok := cmd.Context().Value(configKey{}).(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

// workspace bundles the route registry and the preload scheduler built from
// one configuration. Commands construct it once per invocation; the registry
// is immutable after this point.
type workspace struct {
	cfg       *config.Config
	registry  *routes.Registry[views.Page]
	scheduler *preload.Scheduler[views.Page]
}

func newWorkspace(cfg *config.Config) (*workspace, error) {
	registry, err := views.NewRegistry(cfg)
	if err != nil {
		return nil, err
	}

	scheduler := preload.NewScheduler(registry,
		preload.WithConcurrency[views.Page](cfg.Preload.Concurrency),
		preload.WithUsageLimit[views.Page](cfg.Preload.UsageLimit),
	)

	return &workspace{cfg: cfg, registry: registry, scheduler: scheduler}, nil
}

// NewRootCmd creates the root Cobra command for the campsight CLI.
// It loads configuration (flags > environment > file > defaults), validates
// it, and wires logging plus a trace ID into the command context before any
// subcommand runs.
func NewRootCmd(ver string) *cobra.Command {
	var (
		configFlag string
		closeLogs  func() error
	)

	cmd := &cobra.Command{
		Use:     "campsight",
		Short:   "CampSight campaign workspace dashboard",
		Long:    "CampSight: Browse campaign, audience, and analytics views with lazy loading and preloading",
		Version: ver,
		Example: rootCmdExample,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			cfg, err := config.Load(ctx, config.ResolvePath(configFlag))
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.CheckVersion(ver); err != nil {
				return err
			}

			cmd.SetContext(context.WithValue(ctx, configKey{}, cfg))

			closeFn, err := setupLogging(cmd, cfg)
			if err != nil {
				return err
			}
			closeLogs = closeFn
			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return cleanupLogging(closeLogs)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&configFlag, "config", "", "path to config file (default ~/.campsight/config.yaml)")
	cmd.AddCommand(NewRoutesCmd(), NewPreloadCmd(), NewDashCmd(), newConfigCmd())

	return cmd
}

const rootCmdExample = `  # Open the interactive dashboard
  campsight dash

  # List registered routes and their load state
  campsight routes

  # Warm every route flagged as critical
  campsight preload

  # Warm specific routes ahead of navigation
  campsight preload /campaigns /analytics

  # Warm the most visited routes from an observed history
  campsight preload --history /campaigns --history /campaigns --history /settings

  # Initialize configuration
  campsight config init

  # Validate configuration
  campsight config validate`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigValidateCmd())
	return cmd
}
