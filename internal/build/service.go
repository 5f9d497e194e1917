package build

import (
	"context"
	"time"

	"git.home.luguber.info/inful/plantbuild/internal/config"
)

// BuildService is the canonical interface for executing build passes.
// The CLI commands and the watcher are thin wrappers over it.
type BuildService interface {
	// Run executes one pass: discover, resolve, compare, render.
	// The result is returned even when err is non-nil.
	Run(ctx context.Context, req BuildRequest) (*BuildResult, error)
}

// BuildRequest contains all inputs required to execute a pass.
type BuildRequest struct {
	// Config is the loaded configuration for this pass.
	Config *config.Config

	// Options provides optional behavior modifiers.
	Options BuildOptions
}

// BuildOptions provides optional configuration for pass behavior.
type BuildOptions struct {
	// Force renders every applicable variant regardless of modification times.
	Force bool

	// ReportPath overrides build.report; empty means use the config value.
	ReportPath string
}

// BuildResult contains the outcome of a pass.
type BuildResult struct {
	// Status indicates the overall outcome.
	Status BuildStatus

	// BuildID identifies the pass in logs and reports.
	BuildID string

	// Report holds the per-document outcomes.
	Report *Report

	// Documents is the count of discovered candidates.
	Documents int

	// Rendered, Skipped and Failed count documents by outcome.
	Rendered int
	Skipped  int
	Failed   int

	// Variants is the count of rendered artifacts.
	Variants int

	Duration  time.Duration
	StartTime time.Time
	EndTime   time.Time
}

// BuildStatus represents the outcome of a pass.
type BuildStatus string

const (
	// BuildStatusSuccess indicates every document was rendered or up to date.
	BuildStatusSuccess BuildStatus = "success"

	// BuildStatusPartial indicates some documents failed without aborting the pass.
	BuildStatusPartial BuildStatus = "partial"

	// BuildStatusFailed indicates the pass was aborted by a fatal error.
	BuildStatusFailed BuildStatus = "failed"

	// BuildStatusCancelled indicates the pass was cancelled.
	BuildStatusCancelled BuildStatus = "cancelled"
)

// IsTerminal returns true if the status represents a final state.
func (s BuildStatus) IsTerminal() bool {
	return s == BuildStatusSuccess || s == BuildStatusPartial ||
		s == BuildStatusFailed || s == BuildStatusCancelled
}

// IsSuccess returns true if no document failed.
func (s BuildStatus) IsSuccess() bool {
	return s == BuildStatusSuccess
}
