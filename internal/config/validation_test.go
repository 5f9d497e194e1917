package config

import (
	"strings"
	"testing"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"unknown render mode", func(c *Config) { c.Render.Mode = "cloud" }, "invalid render.mode"},
		{"unknown format", func(c *Config) { c.Render.OutputFormat = "gif" }, "invalid render.output_format"},
		{"relative server", func(c *Config) { c.Render.Server = "plantuml.local" }, "invalid render.server"},
		{"ftp server", func(c *Config) { c.Render.Server = "ftp://plantuml.local" }, "scheme"},
		{"local without binary", func(c *Config) {
			c.Render.Mode = RenderModeLocal
			c.Render.BinPath = " "
		}, "bin_path is required"},
		{"bad timeout", func(c *Config) { c.Render.Timeout = "soon" }, "render.timeout"},
		{"negative timeout", func(c *Config) { c.Render.Timeout = "-1s" }, "must be positive"},
		{"absolute output folder", func(c *Config) { c.Roots.OutputFolder = "/tmp/out" }, "must be relative"},
		{"escaping input folder", func(c *Config) { c.Roots.InputFolder = "../src" }, "inside the diagram root"},
		{"exclude path", func(c *Config) { c.Roots.ExcludeDirs = []string{"a/b"} }, "exclude_dirs"},
		{"theme same files", func(c *Config) {
			c.Theme.Enabled = true
			c.Theme.Dark = c.Theme.Light
		}, "must differ"},
		{"theme with directory", func(c *Config) {
			c.Theme.Enabled = true
			c.Theme.Light = "themes/light.puml"
		}, "without directories"},
		{"unknown backoff", func(c *Config) { c.Build.RetryBackoff = "random" }, "retry_backoff"},
		{"max below initial", func(c *Config) {
			c.Build.RetryInitialDelay = "10s"
			c.Build.RetryMaxDelay = "1s"
		}, "retry_max_delay"},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestDefaultsKeepUnknownValuesForValidation(t *testing.T) {
	cfg := &Config{Render: RenderConfig{Mode: "Bogus"}}
	if err := applyDefaults(cfg); err != nil {
		t.Fatalf("applyDefaults: %v", err)
	}
	if cfg.Render.Mode != "Bogus" {
		t.Fatalf("expected unknown mode to survive defaults, got %q", cfg.Render.Mode)
	}
	if err := ValidateConfig(cfg); err == nil {
		t.Fatal("expected validation error for unknown mode")
	}
}

func TestNormalizeEnums(t *testing.T) {
	if got := NormalizeRenderMode(" Remote "); got != RenderModeServer {
		t.Errorf("NormalizeRenderMode(remote) = %q", got)
	}
	if got := NormalizeOutputFormat(".SVG"); got != OutputFormatSVG {
		t.Errorf("NormalizeOutputFormat(.SVG) = %q", got)
	}
	if got := NormalizeRetryBackoff("bogus"); got != "" {
		t.Errorf("NormalizeRetryBackoff(bogus) = %q", got)
	}
	if got := NormalizeLogLevel("WARNING"); got != LogLevelWarn {
		t.Errorf("NormalizeLogLevel(WARNING) = %q", got)
	}
}
