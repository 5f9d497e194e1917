// Package discovery walks configured diagram roots and produces one
// diagram.Unit per candidate source document.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/plantbuild/internal/config"
	"git.home.luguber.info/inful/plantbuild/internal/diagram"
	foundationerrors "git.home.luguber.info/inful/plantbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/plantbuild/internal/logfields"
)

// ErrRootWalkFailed wraps failures while walking a source directory.
var ErrRootWalkFailed = errors.New("failed to walk diagram root")

// Discoverer finds candidate documents below configured roots.
type Discoverer struct {
	roots      config.RootsConfig
	excluded   map[string]struct{}
	extensions []string
}

// New creates a discoverer for cfg.
func New(cfg *config.Config) *Discoverer {
	return &Discoverer{
		roots:      cfg.Roots,
		excluded:   cfg.Roots.Excluded(),
		extensions: cfg.Roots.Extensions(),
	}
}

// Roots resolves the configured roots. More than one root without
// allow_multiple_roots is a fatal configuration error.
func (d *Discoverer) Roots() ([]diagram.Root, error) {
	names := d.roots.AllRoots()
	if len(names) == 0 {
		return nil, foundationerrors.ConfigError("no diagram root configured").Build()
	}
	if len(names) > 1 && !d.roots.AllowMultipleRoots {
		return nil, foundationerrors.ConfigError("multiple diagram roots require roots.allow_multiple_roots").
			WithCause(config.ErrMultipleRoots).
			WithContext("roots", strings.Join(names, ",")).
			Build()
	}

	roots := make([]diagram.Root, 0, len(names))
	for _, name := range names {
		root, err := diagram.NewRoot(name, d.roots.InputFolder)
		if err != nil {
			return nil, foundationerrors.WrapError(err, foundationerrors.CategoryConfig, "invalid diagram root").
				Fatal().
				WithContext("root", name).
				Build()
		}
		roots = append(roots, root)
	}
	return roots, nil
}

// MatchesExtension reports whether name passes the extension filter. The
// filter is a literal suffix match; an empty filter matches everything.
func (d *Discoverer) MatchesExtension(name string) bool {
	if len(d.extensions) == 0 {
		return true
	}
	for _, ext := range d.extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// IsExcluded reports whether a directory with this name is skipped.
func (d *Discoverer) IsExcluded(name string) bool {
	_, ok := d.excluded[name]
	return ok
}

// Discover walks every root and returns the candidate units in walk order.
func (d *Discoverer) Discover(ctx context.Context) ([]*diagram.Unit, error) {
	roots, err := d.Roots()
	if err != nil {
		return nil, err
	}
	return d.DiscoverRoots(ctx, roots)
}

// DiscoverRoots walks the given roots in order.
func (d *Discoverer) DiscoverRoots(ctx context.Context, roots []diagram.Root) ([]*diagram.Unit, error) {
	var units []*diagram.Unit
	for _, root := range roots {
		found, err := d.DiscoverRoot(ctx, root)
		if err != nil {
			return nil, err
		}
		units = append(units, found...)
	}
	return units, nil
}

// DiscoverRoot walks a single root. A missing source directory yields no
// candidates.
func (d *Discoverer) DiscoverRoot(ctx context.Context, root diagram.Root) ([]*diagram.Unit, error) {
	if _, err := os.Stat(root.SrcDir); os.IsNotExist(err) {
		slog.Warn("Diagram source directory not found", logfields.Root(root.RootDir), logfields.Path(root.SrcDir))
		return nil, nil
	}

	var units []*diagram.Unit
	err := filepath.WalkDir(root.SrcDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if entry.IsDir() {
			if path != root.SrcDir && (d.IsExcluded(entry.Name()) || d.isOutputDir(root, path)) {
				slog.Debug("Skipping excluded directory", logfields.Path(path))
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() || !d.MatchesExtension(entry.Name()) {
			return nil
		}

		dir := filepath.Dir(path)
		outDir, err := root.OutDir(dir, d.roots.OutputFolder, d.roots.OutputInDir)
		if err != nil {
			return err
		}
		units = append(units, diagram.NewUnit(entry.Name(), dir, root, outDir))
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, foundationerrors.WrapError(fmt.Errorf("%w: %w", ErrRootWalkFailed, err), foundationerrors.CategoryFileSystem, "discovery failed").
			Fatal().
			WithContext("root", root.SrcDir).
			Build()
	}

	slog.Debug("Discovered diagram sources", logfields.Root(root.RootDir), logfields.Count(len(units)))
	return units, nil
}

// isOutputDir reports whether path is where artifacts of its parent (or of the
// whole root) are written, which happens when the input folder is empty.
func (d *Discoverer) isOutputDir(root diagram.Root, path string) bool {
	if filepath.Base(path) != d.roots.OutputFolder {
		return false
	}
	parentOut, err := root.OutDir(filepath.Dir(path), d.roots.OutputFolder, d.roots.OutputInDir)
	if err == nil && parentOut == path {
		return true
	}
	return path == filepath.Join(root.RootDir, d.roots.OutputFolder)
}

// Dirs returns every non-excluded directory below the roots' source
// directories, including the source directories themselves.
func (d *Discoverer) Dirs(roots []diagram.Root) ([]string, error) {
	var dirs []string
	for _, root := range roots {
		if _, err := os.Stat(root.SrcDir); err != nil {
			continue
		}
		err := filepath.WalkDir(root.SrcDir, func(path string, entry fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !entry.IsDir() {
				return nil
			}
			if path != root.SrcDir && (d.IsExcluded(entry.Name()) || d.isOutputDir(root, path)) {
				return filepath.SkipDir
			}
			dirs = append(dirs, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrRootWalkFailed, root.SrcDir, err)
		}
	}
	return dirs, nil
}

// SkipDir reports whether a directory found below one of roots is left out
// of discovery and watching, either by name or because it receives outputs.
func (d *Discoverer) SkipDir(roots []diagram.Root, path string) bool {
	if d.IsExcluded(filepath.Base(path)) {
		return true
	}
	for _, root := range roots {
		if d.isOutputDir(root, path) {
			return true
		}
	}
	return false
}
