package commands

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/plantbuild/internal/build"
	"git.home.luguber.info/inful/plantbuild/internal/config"
	"git.home.luguber.info/inful/plantbuild/internal/diagram"
	foundationerrors "git.home.luguber.info/inful/plantbuild/internal/foundation/errors"
)

func TestApplyRenderOverrides(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, ApplyRenderOverrides(cfg, "remote", ".SVG", 3))
	assert.Equal(t, config.RenderModeServer, cfg.Render.Mode)
	assert.Equal(t, config.OutputFormatSVG, cfg.Render.OutputFormat)
	assert.Equal(t, 3, cfg.Build.Concurrency)

	err := ApplyRenderOverrides(config.Default(), "", "gif", 0)
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryValidation))
}

func TestLoadConfig_MissingDefaultUsesDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := LoadConfig(&CLI{Config: config.DefaultConfigFile})
	require.NoError(t, err)
	assert.Equal(t, config.RenderModeServer, cfg.Render.Mode)
}

func TestLoadConfig_MissingExplicitFileFails(t *testing.T) {
	_, err := LoadConfig(&CLI{Config: filepath.Join(t.TempDir(), "custom.yaml")})
	require.Error(t, err)
	assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryConfig))
}

func TestRunInit_ScaffoldsConfigAndThemes(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, RunInit(config.DefaultConfigFile, false))

	cfg, err := config.Load(config.DefaultConfigFile)
	require.NoError(t, err)
	themeDir := filepath.Join(cfg.Roots.DiagramRoot, cfg.Roots.InputFolder, cfg.Theme.Folder)
	assert.FileExists(t, filepath.Join(themeDir, cfg.Theme.Light))
	assert.FileExists(t, filepath.Join(themeDir, cfg.Theme.Dark))

	require.Error(t, RunInit(config.DefaultConfigFile, false))
	require.NoError(t, RunInit(config.DefaultConfigFile, true))
}

func TestBuildCmd_EndToEnd(t *testing.T) {
	t.Chdir(t.TempDir())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("PNG"))
	}))
	defer srv.Close()

	require.NoError(t, RunInit(config.DefaultConfigFile, false))
	src := filepath.Join("docs", "diagrams", "src", "flow.puml")
	require.NoError(t, os.WriteFile(src, []byte("@startuml flow\n!include include/themes/light.puml\nA -> B\n@enduml\n"), 0o600))
	t.Setenv(config.EnvServer, srv.URL)

	metricsFile := filepath.Join(t.TempDir(), "plantbuild.prom")
	cmd := &BuildCmd{MetricsFile: metricsFile}
	require.NoError(t, cmd.Run(&Global{}, &CLI{Config: config.DefaultConfigFile}))

	assert.FileExists(t, filepath.Join("docs", "diagrams", "out", "flow.png"))
	assert.FileExists(t, filepath.Join("docs", "diagrams", "out", "flow_dark.png"))
	data, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `plantbuild_documents_total{outcome="rendered"} 1`)
}

func TestPrintCandidates(t *testing.T) {
	var buf bytes.Buffer
	PrintCandidates(&buf, []build.Candidate{
		{Source: "/d/src/a.puml", Outputs: []string{"/d/out/a.png"}, Stale: []diagram.Variant{diagram.VariantLight}},
		{Source: "/d/src/b.puml", Outputs: []string{"/d/out/b.png"}},
		{Source: "/d/src/c.puml", Error: "unresolved include"},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "stale /d/src/a.puml -> /d/out/a.png", lines[0])
	assert.Equal(t, "ok    /d/src/b.puml -> /d/out/b.png", lines[1])
	assert.Equal(t, "error /d/src/c.puml (unresolved include)", lines[2])
	assert.Equal(t, "3 candidates, 1 stale", lines[3])
}
