package diagram

import (
	"path/filepath"
	"strings"
)

// StartMarker opens a diagram document.
const StartMarker = "@startuml"

// ScanMarker looks for the first line starting with the start marker and
// returns the output name it carries, if any. The first space of the right
// trimmed line must sit past index zero, so a marker indented by spaces is
// reported as carrying no name.
func ScanMarker(lines []string) (string, bool) {
	for _, line := range lines {
		if !strings.HasPrefix(strings.TrimSpace(line), StartMarker) {
			continue
		}
		line = strings.TrimRight(line, " \t\r\n")
		ws := strings.Index(line, " ")
		if ws <= 0 {
			return "", false
		}
		name := strings.TrimSpace(line[ws+1:])
		if name == "" {
			return "", false
		}
		return name, true
	}
	return "", false
}

// DefaultStem returns the source name without its final extension. A name
// without any dot yields an empty stem.
func DefaultStem(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return name[:idx]
}

// OutputNames returns the light and dark artifact file names for stem.
func OutputNames(stem, format string) (light, dark string) {
	return stem + "." + format, stem + darkSuffix + "." + format
}

// AssignOutputs sets OutFile (and OutFileDark when theming) from the start
// marker name or, lacking one, from the source name. It reports whether an
// explicit marker name was used. When no output name can be derived both
// paths stay empty.
func (u *Unit) AssignOutputs(format string, theming bool) bool {
	stem, explicit := ScanMarker(u.Source)
	if !explicit {
		stem = DefaultStem(u.Name)
	}
	u.OutFile, u.OutFileDark = "", ""
	if stem == "" {
		return explicit
	}
	light, dark := OutputNames(stem, format)
	u.OutFile = filepath.Join(u.OutDir, light)
	if theming {
		u.OutFileDark = filepath.Join(u.OutDir, dark)
	}
	return explicit
}

// HasOutput reports whether an output path could be derived.
func (u *Unit) HasOutput() bool {
	return u.OutFile != ""
}
