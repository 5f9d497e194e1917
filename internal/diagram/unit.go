// Package diagram holds the per-document build state shared by discovery,
// include resolution, staleness tracking and rendering.
package diagram

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Variant identifies one of the parallel render targets of a document.
type Variant string

const (
	VariantLight Variant = "light"
	VariantDark  Variant = "dark"
)

// darkSuffix is inserted before the extension of dark variant outputs.
const darkSuffix = "_dark"

// Variants returns the variants a pass has to consider.
func Variants(theming bool) []Variant {
	if theming {
		return []Variant{VariantLight, VariantDark}
	}
	return []Variant{VariantLight}
}

// Root is one configured diagram tree. RootDir is the absolute output base and
// SrcDir the directory that is walked for sources.
type Root struct {
	RootDir string
	SrcDir  string
}

// NewRoot resolves diagramRoot against the working directory and joins the
// input folder onto it.
func NewRoot(diagramRoot, inputFolder string) (Root, error) {
	abs, err := filepath.Abs(diagramRoot)
	if err != nil {
		return Root{}, fmt.Errorf("resolve diagram root %s: %w", diagramRoot, err)
	}
	return Root{RootDir: abs, SrcDir: filepath.Join(abs, inputFolder)}, nil
}

// OutDir computes where artifacts of sources in dir are written. With nested
// off the relative source path is placed under RootDir/outputFolder, with
// nested on outputFolder is placed under RootDir/<rel>.
func (r Root) OutDir(dir, outputFolder string, nested bool) (string, error) {
	rel, err := filepath.Rel(r.SrcDir, dir)
	if err != nil {
		return "", fmt.Errorf("relative path of %s: %w", dir, err)
	}
	if rel == "." {
		rel = ""
	}
	if nested {
		return filepath.Join(r.RootDir, rel, outputFolder), nil
	}
	return filepath.Join(r.RootDir, outputFolder, rel), nil
}

// Unit is the build state of one source document for a single pass.
type Unit struct {
	Name      string // file name
	Directory string // absolute containing directory
	RootDir   string
	OutDir    string

	// Output paths; empty means not applicable.
	OutFile     string
	OutFileDark string

	Source []string // raw lines, newline preserving

	Concat     string
	ConcatDark string

	Encoded     string
	EncodedDark string

	SrcTime     time.Time
	IncTime     time.Time
	ImgTime     time.Time
	ImgTimeDark time.Time
}

// NewUnit builds the unit for the document name inside directory.
func NewUnit(name, directory string, root Root, outDir string) *Unit {
	return &Unit{
		Name:      name,
		Directory: directory,
		RootDir:   root.RootDir,
		OutDir:    outDir,
	}
}

// Path returns the absolute source path.
func (u *Unit) Path() string {
	return filepath.Join(u.Directory, u.Name)
}

// Load reads the source lines and records the source modification time.
func (u *Unit) Load() error {
	info, err := os.Stat(u.Path())
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	data, err := os.ReadFile(u.Path())
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	u.Source = SplitLines(string(data))
	u.SrcTime = info.ModTime()
	return nil
}

// TouchSource raises SrcTime to t if t is later. SrcTime never decreases.
func (u *Unit) TouchSource(t time.Time) {
	if t.After(u.SrcTime) {
		u.SrcTime = t
	}
}

// TouchInclude raises IncTime to t if t is later.
func (u *Unit) TouchInclude(t time.Time) {
	if t.After(u.IncTime) {
		u.IncTime = t
	}
}

// Output returns the output path for v.
func (u *Unit) Output(v Variant) string {
	if v == VariantDark {
		return u.OutFileDark
	}
	return u.OutFile
}

// Text returns the include-resolved text for v.
func (u *Unit) Text(v Variant) string {
	if v == VariantDark {
		return u.ConcatDark
	}
	return u.Concat
}

// Payload returns the encoded text for v.
func (u *Unit) Payload(v Variant) string {
	if v == VariantDark {
		return u.EncodedDark
	}
	return u.Encoded
}

// ImageTime returns the existing artifact mtime for v.
func (u *Unit) ImageTime(v Variant) time.Time {
	if v == VariantDark {
		return u.ImgTimeDark
	}
	return u.ImgTime
}

// SetResolved stores the resolved text and payload for v.
func (u *Unit) SetResolved(v Variant, text, encoded string) {
	if v == VariantDark {
		u.ConcatDark, u.EncodedDark = text, encoded
		return
	}
	u.Concat, u.Encoded = text, encoded
}

// SetImageTime stores the artifact mtime for v.
func (u *Unit) SetImageTime(v Variant, t time.Time) {
	if v == VariantDark {
		u.ImgTimeDark = t
		return
	}
	u.ImgTime = t
}

// SplitLines splits text into lines keeping their terminators.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
