package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/plantbuild/internal/config"
	"git.home.luguber.info/inful/plantbuild/internal/diagram"
	"git.home.luguber.info/inful/plantbuild/internal/discovery"
	foundationerrors "git.home.luguber.info/inful/plantbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/plantbuild/internal/git"
	"git.home.luguber.info/inful/plantbuild/internal/include"
	"git.home.luguber.info/inful/plantbuild/internal/logfields"
	"git.home.luguber.info/inful/plantbuild/internal/metrics"
	"git.home.luguber.info/inful/plantbuild/internal/observability"
	"git.home.luguber.info/inful/plantbuild/internal/render"
	"git.home.luguber.info/inful/plantbuild/internal/retry"
	"git.home.luguber.info/inful/plantbuild/internal/staleness"
	"git.home.luguber.info/inful/plantbuild/internal/workspace"
)

// RendererFactory creates the render backend for a pass.
type RendererFactory func(cfg *config.Config, opts render.Options) (render.Renderer, error)

// DefaultBuildService is the standard implementation of BuildService.
// It orchestrates the pass: workspace → discovery → per-document processing → report.
type DefaultBuildService struct {
	// Optional dependencies that can be injected
	workspaceFactory func() *workspace.Manager
	rendererFactory  RendererFactory
	recorder         metrics.Recorder
}

// NewBuildService creates a new DefaultBuildService with default factories.
func NewBuildService() *DefaultBuildService {
	return &DefaultBuildService{
		workspaceFactory: func() *workspace.Manager {
			return workspace.NewManager("")
		},
		rendererFactory: render.New,
		recorder:        metrics.NoopRecorder{},
	}
}

// WithWorkspaceFactory allows injecting a custom workspace factory (for testing).
func (s *DefaultBuildService) WithWorkspaceFactory(factory func() *workspace.Manager) *DefaultBuildService {
	s.workspaceFactory = factory
	return s
}

// WithRendererFactory replaces the backend selection.
func (s *DefaultBuildService) WithRendererFactory(factory RendererFactory) *DefaultBuildService {
	s.rendererFactory = factory
	return s
}

// WithRecorder sets the metrics recorder.
func (s *DefaultBuildService) WithRecorder(recorder metrics.Recorder) *DefaultBuildService {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	s.recorder = recorder
	return s
}

// Run executes one build pass and writes the JSON report when a report path
// is configured.
func (s *DefaultBuildService) Run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	result, err := s.run(ctx, req)
	if result.Report != nil {
		observability.InfoContext(ctx, "Build pass complete",
			logfields.BuildID(result.BuildID),
			logfields.Outcome(string(result.Status)),
			slog.String("summary", result.Report.Summary()))
	}

	path := req.Options.ReportPath
	if path == "" && req.Config != nil {
		path = req.Config.Build.Report
	}
	if path == "" || result.Report == nil {
		return result, err
	}
	if werr := result.Report.Write(path); werr != nil {
		observability.WarnContext(ctx, "Failed to write build report", logfields.Path(path), logfields.Error(werr))
		if err == nil {
			err = foundationerrors.FileSystemError("failed to write build report").WithCause(werr).WithContext("path", path).Build()
		}
	}
	return result, err
}

func (s *DefaultBuildService) run(ctx context.Context, req BuildRequest) (*BuildResult, error) {
	startTime := time.Now()
	buildID := uuid.NewString()
	result := &BuildResult{StartTime: startTime, BuildID: buildID}

	ctx = observability.WithBuildID(ctx, buildID)

	if req.Config == nil {
		return s.finish(result, nil, BuildStatusFailed), foundationerrors.ConfigError("config required").Build()
	}
	cfg := req.Config
	report := newReport(buildID, string(cfg.Render.Mode), string(cfg.Render.OutputFormat), req.Options.Force)
	result.Report = report

	// Stage 1: workspace for staged renderer input
	var ws *workspace.Manager
	if cfg.Render.Mode == config.RenderModeLocal {
		ws = s.workspaceFactory()
		if err := ws.Create(); err != nil {
			return s.finish(result, report, BuildStatusFailed), foundationerrors.FileSystemError("failed to create workspace").
				WithCause(err).
				Build()
		}
		defer func() {
			if err := ws.Cleanup(); err != nil {
				observability.WarnContext(ctx, "Failed to clean up workspace", logfields.Error(err))
			}
		}()
	}

	renderer, err := s.rendererFactory(cfg, render.Options{
		Workspace: ws,
		Recorder:  s.recorder,
		Policy:    retry.FromConfig(cfg.Build),
	})
	if err != nil {
		return s.finish(result, report, BuildStatusFailed), err
	}

	// Stage 2: discovery
	discoverCtx := observability.WithStage(ctx, "discover")
	disc := discovery.New(cfg)
	roots, err := disc.Roots()
	if err != nil {
		observability.ErrorContext(discoverCtx, "Invalid diagram roots", logfields.Error(err))
		return s.finish(result, report, BuildStatusFailed), err
	}
	report.Revisions = readRevisions(discoverCtx, roots)
	units, err := disc.DiscoverRoots(discoverCtx, roots)
	if err != nil {
		if ctx.Err() != nil {
			return s.finish(result, report, BuildStatusCancelled), ctx.Err()
		}
		observability.ErrorContext(discoverCtx, "Discovery failed", logfields.Error(err))
		return s.finish(result, report, BuildStatusFailed), err
	}
	result.Documents = len(units)
	report.Documents = len(units)
	observability.InfoContext(discoverCtx, "Discovery complete", logfields.Count(len(units)))

	// Stage 3: per-document processing
	renderCtx := observability.WithStage(ctx, "render")
	proc := &processor{
		format:   string(cfg.Render.OutputFormat),
		theming:  cfg.Theme.Enabled,
		resolver: include.NewResolver(cfg),
		tracker:  staleness.New(cfg.Theme.Enabled, req.Options.Force),
		renderer: renderer,
		recorder: s.recorder,
	}
	results, fatal := s.processAll(renderCtx, proc, units, cfg.Build.Concurrency)

	var failures []error
	for _, res := range results {
		report.add(res)
		if res.err != nil && !res.fatal {
			failures = append(failures, res.err)
		}
	}

	switch {
	case fatal != nil:
		return s.finish(result, report, BuildStatusFailed), fatal
	case ctx.Err() != nil:
		return s.finish(result, report, BuildStatusCancelled), ctx.Err()
	case len(failures) > 0:
		s.finish(result, report, BuildStatusPartial)
		return result, fmt.Errorf("%w: %d of %d: %w", ErrDocumentsFailed, len(failures), len(units), errors.Join(failures...))
	}
	return s.finish(result, report, BuildStatusSuccess), nil
}

// readRevisions records the commit each root is checked out at. Roots outside
// a git working tree are left out.
func readRevisions(ctx context.Context, roots []diagram.Root) map[string]git.Revision {
	revisions := make(map[string]git.Revision)
	for _, root := range roots {
		rev, err := git.ReadRevision(root.RootDir)
		if err != nil {
			if !errors.Is(err, git.ErrNotRepository) {
				observability.DebugContext(ctx, "Cannot read root revision", logfields.Root(root.RootDir), logfields.Error(err))
			}
			continue
		}
		revisions[root.RootDir] = rev
	}
	if len(revisions) == 0 {
		return nil
	}
	return revisions
}

// processAll runs the processor over units with at most concurrency documents
// in flight. A fatal document error stops new documents from starting and is
// returned; in-flight documents finish under ctx. Results keep discovery order.
func (s *DefaultBuildService) processAll(ctx context.Context, proc *processor, units []*diagram.Unit, concurrency int) ([]DocumentResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	stopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	slots := make([]*DocumentResult, len(units))
	sem := make(chan struct{}, concurrency)
	var (
		wg       sync.WaitGroup
		once     sync.Once
		fatalErr error
	)

dispatch:
	for i, u := range units {
		select {
		case <-stopCtx.Done():
			break dispatch
		case sem <- struct{}{}: // Acquire semaphore
		}
		if stopCtx.Err() != nil {
			<-sem
			break dispatch
		}
		wg.Add(1)
		go func(i int, u *diagram.Unit) {
			defer wg.Done()
			defer func() { <-sem }() // Release semaphore
			res := proc.process(ctx, u)
			slots[i] = &res
			if res.fatal {
				once.Do(func() {
					fatalErr = res.err
					cancel()
				})
			}
		}(i, u)
	}
	wg.Wait()

	results := make([]DocumentResult, 0, len(units))
	for _, r := range slots {
		if r != nil {
			results = append(results, *r)
		}
	}
	return results, fatalErr
}

func (s *DefaultBuildService) finish(result *BuildResult, report *Report, status BuildStatus) *BuildResult {
	result.Status = status
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	if report != nil {
		report.finish(status)
		result.Rendered = report.Rendered
		result.Skipped = report.Skipped
		result.Failed = report.Failed
		result.Variants = report.Variants
	}
	s.recorder.ObservePassDuration(result.Duration)
	s.recorder.IncPassOutcome(passOutcome(status))
	return result
}

func passOutcome(status BuildStatus) metrics.PassOutcome {
	switch status {
	case BuildStatusSuccess:
		return metrics.PassSuccess
	case BuildStatusPartial:
		return metrics.PassPartial
	case BuildStatusCancelled:
		return metrics.PassCanceled
	default:
		return metrics.PassFailed
	}
}
