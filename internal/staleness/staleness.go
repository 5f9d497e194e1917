// Package staleness decides whether a rendered artifact must be rebuilt from
// the modification times of its source, its includes and the artifact itself.
package staleness

import (
	"os"
	"time"

	"git.home.luguber.info/inful/plantbuild/internal/diagram"
)

// Tracker reads artifact times and evaluates staleness per variant.
type Tracker struct {
	theming bool
	force   bool
}

// New creates a tracker. With force every applicable variant is stale.
func New(theming, force bool) *Tracker {
	return &Tracker{theming: theming, force: force}
}

// ModTime returns the modification time of path, or the zero time when the
// file does not exist or cannot be inspected.
func ModTime(path string) time.Time {
	if path == "" {
		return time.Time{}
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return time.Time{}
	}
	return info.ModTime()
}

// Refresh populates ImgTime and, when theming, ImgTimeDark from disk.
func (t *Tracker) Refresh(u *diagram.Unit) {
	u.ImgTime = ModTime(u.OutFile)
	if t.theming {
		u.ImgTimeDark = ModTime(u.OutFileDark)
	} else {
		u.ImgTimeDark = time.Time{}
	}
}

// IsStale reports whether an artifact with image time img is older than its
// inputs. A missing artifact is always stale.
func IsStale(src, inc, img time.Time) bool {
	return img.IsZero() || src.After(img) || inc.After(img)
}

// Stale reports whether variant v of u needs rendering. Dark is only
// considered when theming is enabled, and a variant without output path is
// never stale.
func (t *Tracker) Stale(u *diagram.Unit, v diagram.Variant) bool {
	if v == diagram.VariantDark && !t.theming {
		return false
	}
	if u.Output(v) == "" {
		return false
	}
	if t.force {
		return true
	}
	return IsStale(u.SrcTime, u.IncTime, u.ImageTime(v))
}

// StaleVariants returns the variants of u that need rendering.
func (t *Tracker) StaleVariants(u *diagram.Unit) []diagram.Variant {
	var out []diagram.Variant
	for _, v := range diagram.Variants(t.theming) {
		if t.Stale(u, v) {
			out = append(out, v)
		}
	}
	return out
}
