package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "render:\n  mode: server\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, RenderModeServer, cfg.Render.Mode)
	assert.Equal(t, "https://www.plantuml.com/plantuml", cfg.Render.Server)
	assert.Equal(t, "/usr/local/bin/plantuml", cfg.Render.BinPath)
	assert.Equal(t, OutputFormatPNG, cfg.Render.OutputFormat)
	assert.Equal(t, 30*time.Second, cfg.Render.TimeoutDuration())
	assert.Equal(t, "docs/diagrams", cfg.Roots.DiagramRoot)
	assert.Equal(t, "src", cfg.Roots.InputFolder)
	assert.Equal(t, "out", cfg.Roots.OutputFolder)
	assert.False(t, cfg.Roots.OutputInDir)
	assert.Empty(t, cfg.Roots.Extensions())
	assert.Equal(t, "include/themes/", cfg.Theme.Folder)
	assert.Equal(t, "light.puml", cfg.Theme.Light)
	assert.Equal(t, "dark.puml", cfg.Theme.Dark)
	assert.Equal(t, 1, cfg.Build.Concurrency)
	assert.Equal(t, 64, cfg.Build.MaxIncludeDepth)
	assert.Equal(t, 0, cfg.Build.MaxRetries)
	assert.Equal(t, RetryBackoffLinear, cfg.Build.RetryBackoff)
	assert.Equal(t, LogLevelInfo, cfg.Logging.Level)
	assert.Equal(t, LogFormatText, cfg.Logging.Format)
}

func TestLoad_FullFile(t *testing.T) {
	path := writeConfig(t, `render:
  mode: LOCAL
  bin_path: /opt/plantuml/bin/plantuml
  output_format: SVG
  timeout: 5s
roots:
  diagram_root: diagrams
  input_folder: sources
  output_folder: rendered
  output_in_dir: true
  input_extensions: "puml, iuml"
  exclude_dirs: [node_modules, vendor]
theme:
  enabled: true
  light: day.puml
  dark: night.puml
build:
  concurrency: 4
  max_retries: 2
  retry_backoff: Exponential
  retry_initial_delay: 100ms
  retry_max_delay: 2s
  report: build-report.json
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, RenderModeLocal, cfg.Render.Mode)
	assert.Equal(t, OutputFormatSVG, cfg.Render.OutputFormat)
	assert.Equal(t, 5*time.Second, cfg.Render.TimeoutDuration())
	assert.Equal(t, []string{"puml", "iuml"}, cfg.Roots.Extensions())
	assert.True(t, cfg.Roots.OutputInDir)
	assert.True(t, cfg.Theme.Enabled)
	assert.Equal(t, "night.puml", cfg.Theme.Dark)
	assert.Equal(t, 4, cfg.Build.Concurrency)
	assert.Equal(t, RetryBackoffExponential, cfg.Build.RetryBackoff)
	assert.Equal(t, "build-report.json", cfg.Build.Report)
	assert.Equal(t, LogFormatJSON, cfg.Logging.Format)

	excluded := cfg.Roots.Excluded()
	for _, name := range []string{".git", ".svn", ".hg", "node_modules", "vendor"} {
		assert.Contains(t, excluded, name)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration file not found")
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("PUML_SERVER", "https://puml.internal.example")
	path := writeConfig(t, "render:\n  server: ${PUML_SERVER}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://puml.internal.example", cfg.Render.Server)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv(EnvRenderMode, "local")
	t.Setenv(EnvServer, "http://localhost:8080")
	t.Setenv(EnvLogLevel, "warning")
	path := writeConfig(t, "render:\n  mode: server\n  server: https://a.example\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, RenderModeLocal, cfg.Render.Mode)
	assert.Equal(t, "http://localhost:8080", cfg.Render.Server)
	assert.Equal(t, LogLevelWarn, cfg.Logging.Level)
}

func TestLoad_MultipleRootsRequireOptIn(t *testing.T) {
	content := "roots:\n  diagram_root: a\n  diagram_roots: [b]\n"

	_, err := Parse([]byte(content))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMultipleRoots))

	cfg, err := Parse([]byte(content + "  allow_multiple_roots: true\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, cfg.Roots.AllRoots())
}

func TestAllRoots_DeduplicatesAndSkipsEmpty(t *testing.T) {
	r := RootsConfig{DiagramRoot: "a", DiagramRoots: []string{"", "a", " b "}}
	assert.Equal(t, []string{"a", "b"}, r.AllRoots())
}

func TestExtensions(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"", nil},
		{"puml", []string{"puml"}},
		{"puml,,iuml ", []string{"puml", "iuml"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, RootsConfig{InputExtensions: tt.raw}.Extensions())
		})
	}
}

func TestInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultConfigFile)
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Theme.Enabled)
	assert.Contains(t, cfg.Roots.ExcludeDirs, "node_modules")
	assert.Contains(t, cfg.Roots.ExcludeDirs, "include", "theme folder is excluded from discovery")

	err = Init(path, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, Init(path, true))
}
