package include

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/plantbuild/internal/config"
	"git.home.luguber.info/inful/plantbuild/internal/diagram"
	foundationerrors "git.home.luguber.info/inful/plantbuild/internal/foundation/errors"
)

func write(t *testing.T, path, content string, mtime time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	if !mtime.IsZero() {
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
}

func unitFor(dir, source string) *diagram.Unit {
	return &diagram.Unit{Name: "test.puml", Directory: dir, Source: diagram.SplitLines(source)}
}

func newResolver() *Resolver {
	return NewResolver(config.Default())
}

func TestResolve_PassthroughDirectives(t *testing.T) {
	dir := t.TempDir()
	src := "@startuml\n" +
		"!includeurl http://example.com/theme.puml\n" +
		"  !include https://example.com/other.puml  \n" +
		"!include <C4/C4_Container>\n" +
		"@enduml\n"
	u := unitFor(dir, src)

	out, err := newResolver().Resolve(u, false)
	require.NoError(t, err)
	assert.Equal(t, src, out)
	assert.True(t, u.IncTime.IsZero())
}

func TestResolve_FileInclude(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	write(t, filepath.Join(dir, "themes", "light.puml"), "' Theme content\nskinparam backgroundColor white", mtime)

	u := unitFor(dir, "@startuml\n!include themes/light.puml\nactor User\n@enduml\n")
	out, err := newResolver().Resolve(u, false)
	require.NoError(t, err)

	assert.Equal(t, "@startuml\n' Theme content\nskinparam backgroundColor white\nactor User\n@enduml\n", out)
	assert.True(t, u.IncTime.Equal(mtime))
	assert.True(t, u.SrcTime.Equal(mtime))
}

func TestResolve_NestedIncludesRelativeToIncludedFile(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "inc", "outer.puml"), "!include deeper/inner.puml\n", time.Time{})
	write(t, filepath.Join(dir, "inc", "deeper", "inner.puml"), "' inner\n", time.Time{})

	out, err := newResolver().Resolve(unitFor(dir, "!include inc/outer.puml\n"), false)
	require.NoError(t, err)
	assert.Equal(t, "' inner\n", out)
}

func TestResolve_DarkThemeSwap(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "themes", "light.puml"), "' Light theme\n", time.Time{})
	write(t, filepath.Join(dir, "themes", "dark.puml"), "' Dark theme content\n", time.Time{})
	src := "@startuml\n!include themes/light.puml\nactor User\n@enduml\n"

	r := newResolver()
	light, err := r.Resolve(unitFor(dir, src), false)
	require.NoError(t, err)
	assert.Contains(t, light, "Light theme")

	dark, err := r.Resolve(unitFor(dir, src), true)
	require.NoError(t, err)
	assert.Contains(t, dark, "Dark theme content")
	assert.NotContains(t, dark, "Light theme")
}

func TestResolve_IncludeSub(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "subs.puml"), "' header\n"+
		"!startsub A\nfirst content\n!endsub\n"+
		"!startsub B\nsecond content\n!endsub\n"+
		"!startsub C\nthird content\n!endsub\n' footer\n", time.Time{})

	out, err := newResolver().Resolve(unitFor(dir, "!includesub subs.puml!B\n"), false)
	require.NoError(t, err)
	assert.Equal(t, "second content\n", out)
}

func TestResolve_IncludeSubEndsAtEnduml(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "subs.puml"), "@startuml\n!startsub MYSUB\nactor User\n@enduml\n", time.Time{})

	out, err := newResolver().Resolve(unitFor(dir, "!includesub subs.puml!MYSUB\n"), false)
	require.NoError(t, err)
	assert.Equal(t, "actor User\n", out)
}

func TestResolve_IncludeSubMissingSectionIsEmpty(t *testing.T) {
	dir := t.TempDir()
	mtime := time.Date(2023, 3, 3, 0, 0, 0, 0, time.UTC)
	write(t, filepath.Join(dir, "subs.puml"), "!startsub OTHER\nother content\n!endsub\n", mtime)

	u := unitFor(dir, "existing content\n!includesub subs.puml!NONEXISTENT\n")
	out, err := newResolver().Resolve(u, false)
	require.NoError(t, err)
	assert.Equal(t, "existing content\n", out)
	assert.True(t, u.IncTime.Equal(mtime))
}

func TestResolve_IncludeSubResolvesNested(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "nested.puml"), "' Nested content\n", time.Time{})
	write(t, filepath.Join(dir, "subs.puml"), "!startsub MYSUB\n!include nested.puml\n!endsub\n", time.Time{})

	out, err := newResolver().Resolve(unitFor(dir, "!includesub subs.puml!MYSUB\n"), false)
	require.NoError(t, err)
	assert.Equal(t, "' Nested content\n", out)
}

func TestResolve_Errors(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "self.puml"), "!include self.puml\n", time.Time{})
	write(t, filepath.Join(dir, "a.puml"), "!include b.puml\n", time.Time{})
	write(t, filepath.Join(dir, "b.puml"), "!include a.puml\n", time.Time{})

	tests := []struct {
		name    string
		source  string
		want    error
		message string
	}{
		{"missing file", "!include nonexistent.puml\n", ErrUnresolved, "include could not be resolved"},
		{"missing sub file", "!includesub nope.puml!X\n", ErrUnresolved, "include could not be resolved"},
		{"sub without separator", "!includesub subs.puml\n", ErrInvalidIncludeSub, "invalid !includesub syntax"},
		{"sub with two separators", "!includesub a!b!c\n", ErrInvalidIncludeSub, "invalid !includesub syntax"},
		{"bare include", "!include\n", ErrUnknownInclude, "unknown include type"},
		{"include_once", "!include_once x.puml\n", ErrUnknownInclude, "unknown include type"},
		{"self include", "!include self.puml\n", ErrCircular, "circular include"},
		{"mutual include", "!include a.puml\n", ErrCircular, "circular include"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newResolver().Resolve(unitFor(dir, tt.source), false)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "expected %v, got %v", tt.want, err)
			assert.Contains(t, err.Error(), tt.message)
			assert.True(t, foundationerrors.HasCategory(err, foundationerrors.CategoryInclude))
			assert.False(t, foundationerrors.IsFatal(err))

			ce, ok := foundationerrors.AsClassified(err)
			require.True(t, ok)
			directive, _ := ce.Context().GetString("directive")
			assert.Equal(t, strings.TrimSpace(tt.source), directive)
		})
	}
}

func TestResolve_DepthCap(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		write(t, filepath.Join(dir, "l"+string(rune('0'+i))+".puml"), "!include l"+string(rune('1'+i))+".puml\n", time.Time{})
	}
	write(t, filepath.Join(dir, "l5.puml"), "leaf\n", time.Time{})

	cfg := config.Default()
	cfg.Build.MaxIncludeDepth = 3
	_, err := NewResolver(cfg).Resolve(unitFor(dir, "!include l0.puml\n"), false)
	require.ErrorIs(t, err, ErrDepthExceeded)

	cfg.Build.MaxIncludeDepth = 6
	out, err := NewResolver(cfg).Resolve(unitFor(dir, "!include l0.puml\n"), false)
	require.NoError(t, err)
	assert.Equal(t, "leaf\n", out)
}

func TestResolve_IncTimeResetAndMonotonic(t *testing.T) {
	dir := t.TempDir()
	older := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC)
	write(t, filepath.Join(dir, "new.puml"), "' new\n", newer)
	write(t, filepath.Join(dir, "old.puml"), "' old\n", older)

	u := unitFor(dir, "!include new.puml\n!include old.puml\n")
	u.IncTime = time.Date(2099, 1, 1, 0, 0, 0, 0, time.UTC)
	srcTime := time.Date(2021, 1, 1, 0, 0, 0, 0, time.UTC)
	u.SrcTime = srcTime

	_, err := newResolver().Resolve(u, false)
	require.NoError(t, err)
	assert.True(t, u.IncTime.Equal(newer), "IncTime is reset then raised to the newest include")
	assert.True(t, u.SrcTime.Equal(newer))

	u.Source = diagram.SplitLines("!include old.puml\n")
	_, err = newResolver().Resolve(u, false)
	require.NoError(t, err)
	assert.True(t, u.IncTime.Equal(older))
	assert.True(t, u.SrcTime.Equal(newer), "SrcTime never decreases")
}

func TestResolve_Deterministic(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "inc.puml"), "' x\n", time.Time{})
	src := "@startuml\n!include inc.puml\n@enduml\n"

	a, err := newResolver().Resolve(unitFor(dir, src), false)
	require.NoError(t, err)
	b, err := newResolver().Resolve(unitFor(dir, src), false)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
