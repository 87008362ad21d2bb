// Package config loads and validates CampSight configuration. Settings are
// resolved with the precedence: CLI flags, then environment variables, then
// the YAML config file, then built-in defaults. Flags are applied by the CLI
// layer after Load returns; everything below that is handled here.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Masterminds/semver/v3"
	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/campsight/campsight/internal/logging"
)

// localOverlayName is the project-local config file discovered in the
// working directory and shallow-merged over the global config.
const localOverlayName = ".campsight.yaml"

// Config is the root CampSight configuration.
//
// YAML Location: ~/.campsight/config.yaml (override with CAMPSIGHT_HOME or
// the --config flag), plus an optional .campsight.yaml overlay in the
// working directory.
//
// Example:
//
//	app:
//	  default_title: CampSight
//	  requires: ">= 0.4.0"
//	logging:
//	  level: debug
//	  format: console
//	preload:
//	  concurrency: 4
//	  usage_limit: 3
type Config struct {
	App     AppConfig     `yaml:"app"`
	Logging LoggingConfig `yaml:"logging"`
	Preload PreloadConfig `yaml:"preload"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	// DefaultTitle is the title reported for paths that are not registered.
	DefaultTitle string `yaml:"default_title" env:"CAMPSIGHT_DEFAULT_TITLE"`

	// Requires is an optional semver constraint on the CampSight binary
	// version, e.g. ">= 0.4.0". Useful when a shared config file depends on
	// behavior introduced in a particular release. Empty means any version.
	Requires string `yaml:"requires,omitempty" env:"CAMPSIGHT_REQUIRES"`
}

// LoggingConfig holds the logging settings.
type LoggingConfig struct {
	// Level is a zerolog level name. Unknown values fall back to "info".
	Level string `yaml:"level" env:"CAMPSIGHT_LOG_LEVEL"`

	// Format is "console" or "json". Empty means auto-detect: console when
	// stderr is a terminal, json otherwise.
	Format string `yaml:"format" env:"CAMPSIGHT_LOG_FORMAT"`

	// File, when set, duplicates log output to this path in append mode.
	File string `yaml:"file,omitempty" env:"CAMPSIGHT_LOG_FILE"`

	// Caller adds file:line to every event.
	Caller bool `yaml:"caller,omitempty" env:"CAMPSIGHT_LOG_CALLER"`
}

// ToLoggingConfig bridges the YAML-facing logging section to the
// internal/logging package.
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:  lc.Level,
		Format: lc.Format,
		File:   lc.File,
		Caller: lc.Caller,
	}
}

// PreloadConfig holds the preload scheduler settings.
type PreloadConfig struct {
	// Concurrency bounds how many view loads run at once during a preload
	// batch. 0 means unbounded.
	Concurrency int `yaml:"concurrency" env:"CAMPSIGHT_PRELOAD_CONCURRENCY"`

	// UsageLimit is how many of the most-visited paths a usage-history
	// preload warms.
	UsageLimit int `yaml:"usage_limit" env:"CAMPSIGHT_PRELOAD_USAGE_LIMIT"`

	// Retries is the retry budget applied to each view loader. A loader is
	// invoked at most 1+Retries times before its view is marked failed.
	Retries int `yaml:"retries" env:"CAMPSIGHT_PRELOAD_RETRIES"`

	// OnStartup controls whether critical views are preloaded when the
	// dashboard starts. Default is true if not specified.
	OnStartup *bool `yaml:"on_startup,omitempty" env:"CAMPSIGHT_PRELOAD_ON_STARTUP"`
}

// OnStartupEnabled returns whether startup preloading is enabled.
// Returns true if OnStartup is nil (default behavior).
func (p PreloadConfig) OnStartupEnabled() bool {
	if p.OnStartup == nil {
		return true
	}
	return *p.OnStartup
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		App: AppConfig{
			DefaultTitle: "CampSight",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
		Preload: PreloadConfig{
			Concurrency: 4,
			UsageLimit:  3,
			Retries:     1,
		},
	}
}

// Load builds the effective configuration: defaults, overlaid by the YAML
// file at path, overlaid by the project-local .campsight.yaml when present,
// overlaid by environment variables.
//
// An empty path means the default location. A missing file is not an error
// in either case ("config init" must be able to target a file that does not
// exist yet); an unreadable or malformed one is.
func Load(ctx context.Context, path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		defaultPath, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err = yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// Not written yet. Defaults apply.
	default:
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	mergeLocalOverlay(ctx, cfg)

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// mergeLocalOverlay shallow-merges ./.campsight.yaml onto cfg when the file
// exists. Overlay parse failures are logged and skipped so a broken local
// file cannot take down the CLI.
func mergeLocalOverlay(ctx context.Context, cfg *Config) {
	data, err := os.ReadFile(localOverlayName)
	if err != nil {
		// Missing overlay is the common case.
		return
	}

	merged := *cfg
	if err := yaml.Unmarshal(data, &merged); err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "config").
			Str("overlay_path", localOverlayName).
			Err(err).
			Msg("failed to merge local config overlay, using global config")
		return
	}

	*cfg = merged
	logging.FromContext(ctx).Debug().
		Str("component", "config").
		Str("overlay_path", localOverlayName).
		Msg("applied local config overlay")
}

// ResolvePath determines the config file path. It checks (in order):
//  1. flagValue (--config CLI flag)
//  2. CAMPSIGHT_CONFIG env var
//
// Returns empty string when neither is set, which Load treats as the
// default location.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return os.Getenv("CAMPSIGHT_CONFIG")
}

// ConfigDir returns the path to the CampSight configuration directory.
func ConfigDir() (string, error) {
	if csHome := os.Getenv("CAMPSIGHT_HOME"); csHome != "" {
		return csHome, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".campsight"), nil
}

// DefaultPath returns the default config file path under ConfigDir.
func DefaultPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// WriteDefault writes the built-in configuration to path as YAML, creating
// parent directories as needed. An existing file is only replaced when force
// is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		}
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("marshalling default config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory %q: %w", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// EnsureLogDir ensures the parent directory of the configured log file
// exists. If no log file is configured, it does nothing.
func (c *Config) EnsureLogDir() error {
	if c.Logging.File == "" {
		return nil
	}
	logDir := filepath.Dir(c.Logging.File)
	if err := os.MkdirAll(logDir, 0700); err != nil {
		return fmt.Errorf("failed to create log directory %q: %w", logDir, err)
	}
	return nil
}

// Validate performs structural validation of the configuration.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("logging: invalid format %q (must be %q or %q)",
			c.Logging.Format, logging.FormatConsole, logging.FormatJSON)
	}

	if c.Preload.Concurrency < 0 {
		return fmt.Errorf("preload: concurrency must be non-negative, got %d", c.Preload.Concurrency)
	}
	if c.Preload.UsageLimit < 1 {
		return fmt.Errorf("preload: usage_limit must be at least 1, got %d", c.Preload.UsageLimit)
	}
	if c.Preload.Retries < 0 {
		return fmt.Errorf("preload: retries must be non-negative, got %d", c.Preload.Retries)
	}

	if c.App.Requires != "" {
		if _, err := semver.NewConstraint(c.App.Requires); err != nil {
			return fmt.Errorf("app: invalid requires constraint %q: %w", c.App.Requires, err)
		}
	}

	return nil
}

// CheckVersion reports whether the running binary version satisfies the
// configured app.requires constraint. Prerelease tags on the binary version
// (for example "0.4.0-dev") are ignored for the comparison, so development
// builds are judged by their release version.
func (c *Config) CheckVersion(version string) error {
	if c.App.Requires == "" {
		return nil
	}

	constraint, err := semver.NewConstraint(c.App.Requires)
	if err != nil {
		return fmt.Errorf("app: invalid requires constraint %q: %w", c.App.Requires, err)
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return fmt.Errorf("parsing binary version %q: %w", version, err)
	}
	if v.Prerelease() != "" {
		release, setErr := v.SetPrerelease("")
		if setErr != nil {
			return fmt.Errorf("normalizing binary version %q: %w", version, setErr)
		}
		v = &release
	}

	if !constraint.Check(v) {
		return fmt.Errorf("binary version %s does not satisfy configured requirement %q", version, c.App.Requires)
	}
	return nil
}
