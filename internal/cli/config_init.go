package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/campsight/campsight/internal/config"
)

// NewConfigInitCmd creates the config init command, which writes the built-in
// defaults to the configuration file.
func NewConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

The file is written to ~/.campsight/config.yaml. Override the directory with
CAMPSIGHT_HOME, or pick an exact file with the --config flag.`,
		Example: `  # Create the default configuration
  campsight config init

  # Create configuration, overwriting the existing file
  campsight config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")

	return cmd
}

func runConfigInit(cmd *cobra.Command, force bool) error {
	path, err := initTargetPath(cmd)
	if err != nil {
		return err
	}

	if err := config.WriteDefault(path, force); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration initialized successfully\n")
	cmd.Printf("Configuration file: %s\n", path)
	return nil
}

// initTargetPath resolves where init writes: the --config flag wins, then
// CAMPSIGHT_CONFIG, then the default location.
func initTargetPath(cmd *cobra.Command) (string, error) {
	// The config flag lives on the root command; standalone invocations
	// (tests) do not have it.
	flagValue, err := cmd.Flags().GetString("config")
	if err != nil {
		flagValue = ""
	}
	if path := config.ResolvePath(flagValue); path != "" {
		return path, nil
	}
	return config.DefaultPath()
}
