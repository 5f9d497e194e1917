package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDiagram    = "diagram"
	KeyRoot       = "root"
	KeyPath       = "path"
	KeyOutput     = "output"
	KeyVariant    = "variant"
	KeyDirective  = "directive"
	KeyMode       = "mode"
	KeyFormat     = "format"
	KeyURL        = "url"
	KeyStatus     = "status"
	KeyOutcome    = "outcome"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr     { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Diagram(name string) slog.Attr   { return slog.String(KeyDiagram, name) }
func Root(dir string) slog.Attr       { return slog.String(KeyRoot, dir) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Output(p string) slog.Attr       { return slog.String(KeyOutput, p) }
func Variant(v string) slog.Attr      { return slog.String(KeyVariant, v) }
func Directive(line string) slog.Attr { return slog.String(KeyDirective, line) }
func Mode(m string) slog.Attr         { return slog.String(KeyMode, m) }
func Format(f string) slog.Attr       { return slog.String(KeyFormat, f) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Status(code int) slog.Attr       { return slog.Int(KeyStatus, code) }
func Outcome(o string) slog.Attr      { return slog.String(KeyOutcome, o) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }

// Duration reports d in fractional milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000.0)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
