package metrics

import "time"

// DocumentOutcome enumerates per-document results of a pass.
type DocumentOutcome string

const (
	OutcomeRendered DocumentOutcome = "rendered"
	OutcomeSkipped  DocumentOutcome = "skipped"
	OutcomeFailed   DocumentOutcome = "failed"
)

// PassOutcome enumerates final pass statuses.
type PassOutcome string

const (
	PassSuccess  PassOutcome = "success"
	PassPartial  PassOutcome = "partial" // some documents failed
	PassFailed   PassOutcome = "failed"
	PassCanceled PassOutcome = "canceled"
)

// Recorder defines observability hooks for build passes.
type Recorder interface {
	IncDocument(outcome DocumentOutcome)
	IncVariant(variant string, outcome DocumentOutcome)
	ObserveRenderDuration(mode, variant string, d time.Duration)
	ObservePassDuration(d time.Duration)
	IncPassOutcome(outcome PassOutcome)
	IncRetry(mode string)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncDocument(DocumentOutcome) {}
func (NoopRecorder) IncVariant(string, DocumentOutcome) {}
func (NoopRecorder) ObserveRenderDuration(string, string, time.Duration) {}
func (NoopRecorder) ObservePassDuration(time.Duration) {}
func (NoopRecorder) IncPassOutcome(PassOutcome) {}
func (NoopRecorder) IncRetry(string) {}
