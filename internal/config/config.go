package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the configuration file looked up when no path is given.
const DefaultConfigFile = "plantbuild.yaml"

// Config represents the plantbuild configuration.
type Config struct {
	Render  RenderConfig  `yaml:"render"`
	Roots   RootsConfig   `yaml:"roots"`
	Theme   ThemeConfig   `yaml:"theme"`
	Build   BuildConfig   `yaml:"build"`
	Logging LoggingConfig `yaml:"logging"`
}

// RenderConfig selects and parameterizes the rendering backend.
type RenderConfig struct {
	Mode                   RenderMode   `yaml:"mode"`
	Server                 string       `yaml:"server"`
	DisableSSLVerification bool         `yaml:"disable_ssl_certificate_validation"`
	BinPath                string       `yaml:"bin_path"`
	OutputFormat           OutputFormat `yaml:"output_format"`
	Timeout                string       `yaml:"timeout,omitempty"`
}

// RootsConfig describes where diagram sources live and where artifacts go.
type RootsConfig struct {
	DiagramRoot        string   `yaml:"diagram_root"`
	DiagramRoots       []string `yaml:"diagram_roots,omitempty"`
	AllowMultipleRoots bool     `yaml:"allow_multiple_roots"`
	InputFolder        string   `yaml:"input_folder"`
	OutputFolder       string   `yaml:"output_folder"`
	OutputInDir        bool     `yaml:"output_in_dir"`
	InputExtensions    string   `yaml:"input_extensions"`
	ExcludeDirs        []string `yaml:"exclude_dirs,omitempty"`
}

// ThemeConfig controls light/dark variant generation.
type ThemeConfig struct {
	Enabled bool   `yaml:"enabled"`
	Folder  string `yaml:"folder"`
	Light   string `yaml:"light"`
	Dark    string `yaml:"dark"`
}

// BuildConfig holds pass execution knobs.
type BuildConfig struct {
	Concurrency       int              `yaml:"concurrency,omitempty"`
	MaxIncludeDepth   int              `yaml:"max_include_depth,omitempty"`
	MaxRetries        int              `yaml:"max_retries,omitempty"`
	RetryBackoff      RetryBackoffMode `yaml:"retry_backoff,omitempty"`
	RetryInitialDelay string           `yaml:"retry_initial_delay,omitempty"`
	RetryMaxDelay     string           `yaml:"retry_max_delay,omitempty"`
	Report            string           `yaml:"report,omitempty"`
}

// LoggingConfig configures the slog handler installed by the CLI.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// defaultExcludedDirs are never descended into during discovery.
var defaultExcludedDirs = []string{".git", ".svn", ".hg"}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	if loaded, err := loadEnvFile(); err == nil {
		slog.Debug("Loaded environment variables", "file", loaded)
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse builds a configuration from raw YAML, expanding environment variables,
// applying env overrides and defaults, then validating the result.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyEnvOverrides(&cfg)

	if err := applyDefaults(&cfg); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}

	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied and no file involved.
func Default() *Config {
	var cfg Config
	_ = applyDefaults(&cfg)
	return &cfg
}

// AllRoots returns the configured diagram roots in declaration order, without
// duplicates or empty entries.
func (r RootsConfig) AllRoots() []string {
	seen := make(map[string]struct{}, 1+len(r.DiagramRoots))
	out := make([]string, 0, 1+len(r.DiagramRoots))
	for _, root := range append([]string{r.DiagramRoot}, r.DiagramRoots...) {
		root = strings.TrimSpace(root)
		if root == "" {
			continue
		}
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		out = append(out, root)
	}
	return out
}

// Extensions splits the comma separated extension filter. An empty result
// means every file is a candidate.
func (r RootsConfig) Extensions() []string {
	var out []string
	for _, ext := range strings.Split(r.InputExtensions, ",") {
		if ext = strings.TrimSpace(ext); ext != "" {
			out = append(out, ext)
		}
	}
	return out
}

// Excluded returns the set of directory names skipped during discovery.
func (r RootsConfig) Excluded() map[string]struct{} {
	set := make(map[string]struct{}, len(defaultExcludedDirs)+len(r.ExcludeDirs))
	for _, d := range defaultExcludedDirs {
		set[d] = struct{}{}
	}
	for _, d := range r.ExcludeDirs {
		if d = strings.TrimSpace(d); d != "" {
			set[d] = struct{}{}
		}
	}
	return set
}

// TimeoutDuration returns the parsed render timeout.
func (r RenderConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(r.Timeout)
	if err != nil || d <= 0 {
		return defaultRenderTimeout
	}
	return d
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	example := Default()
	example.Theme.Enabled = true
	// Theme fragments carry no @startuml; keep them out of discovery.
	themeTop, _, _ := strings.Cut(filepath.ToSlash(filepath.Clean(example.Theme.Folder)), "/")
	example.Roots.ExcludeDirs = []string{"node_modules", themeTop}

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal example config: %w", err)
	}

	header := "# plantbuild configuration\n# Values may reference environment variables as ${VAR}.\n\n"
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
