package build

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/plantbuild/internal/diagram"
)

func TestPlan_ReportsStalenessWithoutRendering(t *testing.T) {
	root := t.TempDir()
	fresh := filepath.Join(root, "src", "fresh.puml")
	stale := filepath.Join(root, "src", "stale.puml")
	writeFile(t, fresh, "@startuml\nA -> B\n@enduml\n")
	writeFile(t, stale, "@startuml custom\nA -> B\n@enduml\n")
	writeFile(t, filepath.Join(root, "src", "broken.puml"), "@startuml\n!include nope.iuml\n@enduml\n")
	age(t, fresh, time.Hour)
	writeFile(t, filepath.Join(root, "out", "fresh.png"), "png")

	cfg := testConfig(root, "http://unused")
	cfg.Roots.InputExtensions = ".puml"
	candidates, err := Plan(context.Background(), cfg, false)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	byName := map[string]Candidate{}
	for _, c := range candidates {
		byName[filepath.Base(c.Source)] = c
	}

	assert.NotEmpty(t, byName["broken.puml"].Error)
	assert.Empty(t, byName["fresh.puml"].Stale)
	assert.False(t, byName["fresh.puml"].Explicit)

	custom := byName["stale.puml"]
	assert.True(t, custom.Explicit)
	assert.Equal(t, []string{filepath.Join(root, "out", "custom.png")}, custom.Outputs)
	assert.Equal(t, []diagram.Variant{diagram.VariantLight}, custom.Stale)
	assert.NoFileExists(t, filepath.Join(root, "out", "custom.png"))
}

func TestPlan_ForceMarksEverythingStale(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src", "a.puml")
	writeFile(t, src, "@startuml\nA -> B\n@enduml\n")
	age(t, src, time.Hour)
	writeFile(t, filepath.Join(root, "out", "a.png"), "png")

	cfg := testConfig(root, "http://unused")
	cfg.Theme.Enabled = true
	candidates, err := Plan(context.Background(), cfg, true)
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, []diagram.Variant{diagram.VariantLight, diagram.VariantDark}, candidates[0].Stale)
}
