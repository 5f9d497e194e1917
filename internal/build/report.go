package build

import (
	"encoding/json"
	"fmt"
	"time"

	"git.home.luguber.info/inful/plantbuild/internal/diagram"
	"git.home.luguber.info/inful/plantbuild/internal/git"
	"git.home.luguber.info/inful/plantbuild/internal/metrics"
	"git.home.luguber.info/inful/plantbuild/internal/render"
)

// reportSchemaVersion is bumped when fields are removed or change meaning.
const reportSchemaVersion = 1

// DocumentResult records what a pass did with one source document.
type DocumentResult struct {
	Source    string                  `json:"source"`
	Outputs   []string                `json:"outputs,omitempty"`
	Rendered  []diagram.Variant       `json:"rendered,omitempty"`
	Outcome   metrics.DocumentOutcome `json:"outcome"`
	Directive string                  `json:"directive,omitempty"`
	Error     string                  `json:"error,omitempty"`

	err   error
	fatal bool
}

// Err returns the error that failed the document, if any.
func (d DocumentResult) Err() error { return d.err }

// Report captures the per-document outcomes of one pass.
type Report struct {
	SchemaVersion int                     `json:"schema_version"`
	BuildID       string                  `json:"build_id"`
	Mode          string                  `json:"mode"`
	Format        string                  `json:"format"`
	Force         bool                    `json:"force,omitempty"`
	Revisions     map[string]git.Revision `json:"revisions,omitempty"`
	Start         time.Time               `json:"start"`
	End           time.Time               `json:"end"`
	DurationMS    int64                   `json:"duration_ms"`
	Status        BuildStatus             `json:"status"`
	Documents     int                     `json:"documents"`
	Rendered      int                     `json:"rendered"`
	Skipped       int                     `json:"skipped"`
	Failed        int                     `json:"failed"`
	Variants      int                     `json:"variants"`
	Results       []DocumentResult        `json:"results"`
	Errors        []string                `json:"errors,omitempty"`
}

func newReport(buildID, mode, format string, force bool) *Report {
	return &Report{
		SchemaVersion: reportSchemaVersion,
		BuildID:       buildID,
		Mode:          mode,
		Format:        format,
		Force:         force,
		Start:         time.Now(),
	}
}

// add records a document result and updates the counters.
func (r *Report) add(res DocumentResult) {
	r.Results = append(r.Results, res)
	switch res.Outcome {
	case metrics.OutcomeRendered:
		r.Rendered++
	case metrics.OutcomeSkipped:
		r.Skipped++
	case metrics.OutcomeFailed:
		r.Failed++
	}
	r.Variants += len(res.Rendered)
	if res.Error != "" {
		r.Errors = append(r.Errors, res.Error)
	}
}

func (r *Report) finish(status BuildStatus) {
	r.End = time.Now()
	r.DurationMS = r.End.Sub(r.Start).Milliseconds()
	r.Status = status
}

// Summary returns a human-readable single-line summary.
func (r *Report) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("documents=%d rendered=%d skipped=%d failed=%d variants=%d duration=%s status=%s",
		r.Documents, r.Rendered, r.Skipped, r.Failed, r.Variants, dur.Truncate(time.Millisecond), r.Status)
}

// Write persists the report as indented JSON through an atomic rename.
func (r *Report) Write(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')
	if err := render.WriteFileAtomic(path, data); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
