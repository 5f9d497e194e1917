package config

import (
	"fmt"
	"time"
)

const (
	defaultServer          = "https://www.plantuml.com/plantuml"
	defaultBinPath         = "/usr/local/bin/plantuml"
	defaultRenderTimeout   = 30 * time.Second
	defaultDiagramRoot     = "docs/diagrams"
	defaultInputFolder     = "src"
	defaultOutputFolder    = "out"
	defaultThemeFolder     = "include/themes/"
	defaultThemeLight      = "light.puml"
	defaultThemeDark       = "dark.puml"
	defaultMaxIncludeDepth = 64
)

// DefaultApplier applies defaults for a specific configuration domain.
type DefaultApplier interface {
	ApplyDefaults(cfg *Config) error
	Domain() string
}

// RenderDefaultApplier handles render configuration defaults.
type RenderDefaultApplier struct{}

func (RenderDefaultApplier) Domain() string { return "render" }

func (RenderDefaultApplier) ApplyDefaults(cfg *Config) error {
	// Unknown values are kept verbatim so validation can report them.
	if cfg.Render.Mode == "" {
		cfg.Render.Mode = RenderModeServer
	} else if m := NormalizeRenderMode(string(cfg.Render.Mode)); m != "" {
		cfg.Render.Mode = m
	}
	if cfg.Render.OutputFormat == "" {
		cfg.Render.OutputFormat = OutputFormatPNG
	} else if f := NormalizeOutputFormat(string(cfg.Render.OutputFormat)); f != "" {
		cfg.Render.OutputFormat = f
	}
	if cfg.Render.Server == "" {
		cfg.Render.Server = defaultServer
	}
	if cfg.Render.BinPath == "" {
		cfg.Render.BinPath = defaultBinPath
	}
	if cfg.Render.Timeout == "" {
		cfg.Render.Timeout = defaultRenderTimeout.String()
	}
	return nil
}

// RootsDefaultApplier handles diagram root defaults.
type RootsDefaultApplier struct{}

func (RootsDefaultApplier) Domain() string { return "roots" }

func (RootsDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Roots.DiagramRoot == "" && len(cfg.Roots.DiagramRoots) == 0 {
		cfg.Roots.DiagramRoot = defaultDiagramRoot
	}
	if cfg.Roots.InputFolder == "" {
		cfg.Roots.InputFolder = defaultInputFolder
	}
	if cfg.Roots.OutputFolder == "" {
		cfg.Roots.OutputFolder = defaultOutputFolder
	}
	return nil
}

// ThemeDefaultApplier handles theme file defaults.
type ThemeDefaultApplier struct{}

func (ThemeDefaultApplier) Domain() string { return "theme" }

func (ThemeDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Theme.Folder == "" {
		cfg.Theme.Folder = defaultThemeFolder
	}
	if cfg.Theme.Light == "" {
		cfg.Theme.Light = defaultThemeLight
	}
	if cfg.Theme.Dark == "" {
		cfg.Theme.Dark = defaultThemeDark
	}
	return nil
}

// BuildDefaultApplier handles build pass defaults.
type BuildDefaultApplier struct{}

func (BuildDefaultApplier) Domain() string { return "build" }

func (BuildDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Build.Concurrency <= 0 {
		cfg.Build.Concurrency = 1
	}
	if cfg.Build.MaxIncludeDepth <= 0 {
		cfg.Build.MaxIncludeDepth = defaultMaxIncludeDepth
	}
	if cfg.Build.MaxRetries < 0 {
		cfg.Build.MaxRetries = 0
	}
	if cfg.Build.RetryBackoff == "" {
		cfg.Build.RetryBackoff = RetryBackoffLinear
	} else if m := NormalizeRetryBackoff(string(cfg.Build.RetryBackoff)); m != "" {
		cfg.Build.RetryBackoff = m
	}
	if cfg.Build.RetryInitialDelay == "" {
		cfg.Build.RetryInitialDelay = "1s"
	}
	if cfg.Build.RetryMaxDelay == "" {
		cfg.Build.RetryMaxDelay = "30s"
	}
	return nil
}

// LoggingDefaultApplier handles logging defaults.
type LoggingDefaultApplier struct{}

func (LoggingDefaultApplier) Domain() string { return "logging" }

func (LoggingDefaultApplier) ApplyDefaults(cfg *Config) error {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = LogLevelInfo
	} else if l := NormalizeLogLevel(string(cfg.Logging.Level)); l != "" {
		cfg.Logging.Level = l
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = LogFormatText
	} else if f := NormalizeLogFormat(string(cfg.Logging.Format)); f != "" {
		cfg.Logging.Format = f
	}
	return nil
}

// defaultAppliers lists every domain applier in application order.
func defaultAppliers() []DefaultApplier {
	return []DefaultApplier{
		RenderDefaultApplier{},
		RootsDefaultApplier{},
		ThemeDefaultApplier{},
		BuildDefaultApplier{},
		LoggingDefaultApplier{},
	}
}

func applyDefaults(cfg *Config) error {
	for _, applier := range defaultAppliers() {
		if err := applier.ApplyDefaults(cfg); err != nil {
			return fmt.Errorf("%s defaults: %w", applier.Domain(), err)
		}
	}
	return nil
}
