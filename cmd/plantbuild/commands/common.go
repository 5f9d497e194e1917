package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/plantbuild/internal/config"
	foundationerrors "git.home.luguber.info/inful/plantbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/plantbuild/internal/observability"
)

// Global context passed to subcommands.
type Global struct {
	Logger *slog.Logger
}

// CLI definition & global flags - used by commands that need access to root config.
type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" default:"plantbuild.yaml" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log output format (text, json); overrides logging.format"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build    BuildCmd    `cmd:"" help:"Render every stale diagram once"`
	Discover DiscoverCmd `cmd:"" help:"List candidate diagrams with output paths and staleness"`
	Init     InitCmd     `cmd:"" help:"Write an example configuration and theme files"`
	Watch    WatchCmd    `cmd:"" help:"Build, then rebuild whenever sources change"`
}

// AfterApply runs after flag parsing; sets up logging once from flags and
// PLANTBUILD_LOG_LEVEL. The config file may refine it in LoadConfig.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := observability.ParseLevel(os.Getenv(config.EnvLogLevel))
	if c.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(observability.NewLogger(os.Stderr, level, c.LogFormat))
	return nil
}

// LoadConfig reads the configuration file. A missing file at the default
// location yields the defaults; any other load failure is a configuration
// error. Logging is reconfigured from the logging section unless overridden
// by flags.
func LoadConfig(root *CLI) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if _, statErr := os.Stat(root.Config); os.IsNotExist(statErr) && isDefaultConfigPath(root.Config) {
		slog.Debug("No configuration file, using defaults", "path", root.Config)
		cfg, err = config.Parse(nil)
	} else {
		cfg, err = config.Load(root.Config)
	}
	if err != nil {
		return nil, foundationerrors.ConfigError(fmt.Sprintf("failed to load configuration %s", root.Config)).
			WithCause(err).
			WithContext("path", root.Config).
			Build()
	}

	level := observability.ParseLevel(string(cfg.Logging.Level))
	if root.Verbose {
		level = slog.LevelDebug
	}
	format := string(cfg.Logging.Format)
	if root.LogFormat != "" {
		format = root.LogFormat
	}
	slog.SetDefault(observability.NewLogger(os.Stderr, level, format))
	return cfg, nil
}

// revalidate checks a configuration after command line overrides.
func revalidate(cfg *config.Config) error {
	if err := config.ValidateConfig(cfg); err != nil {
		return foundationerrors.ValidationError("invalid command line override").WithCause(err).Build()
	}
	return nil
}

func isDefaultConfigPath(path string) bool {
	abs, err := filepath.Abs(config.DefaultConfigFile)
	if err != nil {
		return false
	}
	return path == abs || path == config.DefaultConfigFile
}
