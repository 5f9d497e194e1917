// Package include expands PlantUML include directives into a single text.
//
// Recognized directives, each on its own line:
//
//	!includeurl <url>          kept verbatim
//	!include http(s)://...     kept verbatim
//	!include <stdlib/path>     kept verbatim
//	!include <path>            replaced by the file content, resolved recursively
//	!includesub <path>!<name>  replaced by the named !startsub section
package include

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"git.home.luguber.info/inful/plantbuild/internal/config"
	"git.home.luguber.info/inful/plantbuild/internal/diagram"
	foundationerrors "git.home.luguber.info/inful/plantbuild/internal/foundation/errors"
)

// DefaultMaxDepth bounds include nesting when no limit is configured.
const DefaultMaxDepth = 64

const (
	directivePrefix    = "!include"
	subDirectivePrefix = "!includesub"
	startSub           = "!startsub"
	endSub             = "!endsub"
	endUML             = "@enduml"
)

var (
	reIncludeURL  = regexp.MustCompile(`^!includeurl\s+\S+\s*$`)
	reIncludeHTTP = regexp.MustCompile(`^!include\s+https?://\S+\s*$`)
	reIncludeStd  = regexp.MustCompile(`^!include\s+<\S+>\s*$`)
	reIncludeFile = regexp.MustCompile(`^!include\s+(\S+)\s*$`)
	reIncludeSub  = regexp.MustCompile(`^!includesub\s+(\S+)\s*$`)
)

// Resolver expands include directives for diagram units.
type Resolver struct {
	themeLight string
	themeDark  string
	maxDepth   int
}

// NewResolver builds a resolver from the theme and build configuration.
func NewResolver(cfg *config.Config) *Resolver {
	depth := cfg.Build.MaxIncludeDepth
	if depth <= 0 {
		depth = DefaultMaxDepth
	}
	return &Resolver{
		themeLight: cfg.Theme.Light,
		themeDark:  cfg.Theme.Dark,
		maxDepth:   depth,
	}
}

// resolution carries the state of one Resolve call.
type resolution struct {
	r     *Resolver
	unit  *diagram.Unit
	dark  bool
	stack []string
}

// Resolve expands the unit's source for the requested variant. IncTime is
// reset to zero first and raised by every included file; SrcTime is raised
// alongside and never lowered.
func (r *Resolver) Resolve(u *diagram.Unit, dark bool) (string, error) {
	u.IncTime = time.Time{}
	res := &resolution{r: r, unit: u, dark: dark, stack: []string{filepath.Clean(u.Path())}}

	var out strings.Builder
	if err := res.expand(&out, u.Source, u.Directory); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (res *resolution) expand(out *strings.Builder, lines []string, dir string) error {
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, directivePrefix) {
			out.WriteString(line)
			continue
		}
		if err := res.directive(out, line, trimmed, dir); err != nil {
			return err
		}
	}
	return nil
}

func (res *resolution) directive(out *strings.Builder, line, trimmed, dir string) error {
	switch {
	case reIncludeURL.MatchString(trimmed),
		reIncludeHTTP.MatchString(trimmed),
		reIncludeStd.MatchString(trimmed):
		out.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			out.WriteString("\n")
		}
		return nil

	case strings.HasPrefix(trimmed, subDirectivePrefix):
		m := reIncludeSub.FindStringSubmatch(trimmed)
		if m == nil || strings.Count(m[1], "!") != 1 {
			return res.fail(ErrInvalidIncludeSub, trimmed, "")
		}
		file, sub, _ := strings.Cut(m[1], "!")
		if file == "" || sub == "" {
			return res.fail(ErrInvalidIncludeSub, trimmed, "")
		}
		return res.includeSub(out, trimmed, res.target(dir, file), sub)

	default:
		m := reIncludeFile.FindStringSubmatch(trimmed)
		if m == nil {
			return res.fail(ErrUnknownInclude, trimmed, "")
		}
		return res.includeFile(out, trimmed, res.target(dir, m[1]))
	}
}

// target resolves a directive path against dir, swapping the light theme for
// the dark one when expanding the dark variant.
func (res *resolution) target(dir, p string) string {
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	p = filepath.Clean(p)
	if res.dark && res.r.themeLight != "" && filepath.Base(p) == res.r.themeLight {
		p = filepath.Join(filepath.Dir(p), res.r.themeDark)
	}
	return p
}

func (res *resolution) includeFile(out *strings.Builder, directive, path string) error {
	if err := res.enter(path, directive); err != nil {
		return err
	}
	defer res.leave()

	lines, err := res.read(path, directive)
	if err != nil {
		return err
	}
	if n := len(lines); n > 0 && !strings.HasSuffix(lines[n-1], "\n") {
		lines[n-1] += "\n"
	}
	return res.expand(out, lines, filepath.Dir(path))
}

func (res *resolution) includeSub(out *strings.Builder, directive, path, sub string) error {
	if err := res.enter(path+"!"+sub, directive); err != nil {
		return err
	}
	defer res.leave()

	lines, err := res.read(path, directive)
	if err != nil {
		return err
	}
	region := extractSub(lines, sub)
	if n := len(region); n > 0 && !strings.HasSuffix(region[n-1], "\n") {
		region[n-1] += "\n"
	}
	return res.expand(out, region, filepath.Dir(path))
}

// extractSub returns the lines between "!startsub name" and the next
// !endsub or @enduml, both exclusive. A missing section yields nil.
func extractSub(lines []string, name string) []string {
	var region []string
	inside := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if !inside {
			fields := strings.Fields(trimmed)
			if len(fields) == 2 && fields[0] == startSub && fields[1] == name {
				inside = true
			}
			continue
		}
		if strings.HasPrefix(trimmed, endSub) || strings.HasPrefix(trimmed, endUML) {
			break
		}
		region = append(region, line)
	}
	return region
}

func (res *resolution) enter(key, directive string) error {
	if slices.Contains(res.stack, key) {
		return res.fail(ErrCircular, directive, key)
	}
	if len(res.stack) > res.r.maxDepth {
		return res.fail(ErrDepthExceeded, directive, key)
	}
	res.stack = append(res.stack, key)
	return nil
}

func (res *resolution) leave() {
	res.stack = res.stack[:len(res.stack)-1]
}

// read loads an included file and raises the unit's include and source times.
func (res *resolution) read(path, directive string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return nil, res.fail(ErrUnresolved, directive, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, res.fail(ErrUnresolved, directive, path)
	}
	res.unit.TouchInclude(info.ModTime())
	res.unit.TouchSource(info.ModTime())
	return diagram.SplitLines(string(data)), nil
}

func (res *resolution) fail(kind error, directive, path string) error {
	msg := kind.Error()
	if path != "" {
		msg = fmt.Sprintf("%s: %s", msg, path)
	}
	b := foundationerrors.IncludeError(msg).
		WithCause(kind).
		WithContext("source", res.unit.Path()).
		WithContext("directive", directive)
	if path != "" {
		b = b.WithContext("path", path)
	}
	return b.Build()
}
