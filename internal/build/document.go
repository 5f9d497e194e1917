package build

import (
	"context"
	"log/slog"
	"time"

	"git.home.luguber.info/inful/plantbuild/internal/diagram"
	"git.home.luguber.info/inful/plantbuild/internal/encoding"
	foundationerrors "git.home.luguber.info/inful/plantbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/plantbuild/internal/include"
	"git.home.luguber.info/inful/plantbuild/internal/logfields"
	"git.home.luguber.info/inful/plantbuild/internal/metrics"
	"git.home.luguber.info/inful/plantbuild/internal/observability"
	"git.home.luguber.info/inful/plantbuild/internal/render"
	"git.home.luguber.info/inful/plantbuild/internal/staleness"
)

// processor moves a single unit through scan, resolve, compare and render.
type processor struct {
	format   string
	theming  bool
	resolver *include.Resolver
	tracker  *staleness.Tracker
	renderer render.Renderer
	recorder metrics.Recorder
}

func (p *processor) process(ctx context.Context, u *diagram.Unit) DocumentResult {
	ctx = observability.WithDiagram(ctx, u.Path())
	res := DocumentResult{Source: u.Path()}

	if err := u.Load(); err != nil {
		return p.failed(ctx, res, foundationerrors.WrapError(err, foundationerrors.CategoryFileSystem, "failed to read diagram source").
			WithContext("path", u.Path()).
			Build())
	}

	explicit := u.AssignOutputs(p.format, p.theming)
	if !u.HasOutput() {
		observability.WarnContext(ctx, "Skipping document without output name",
			logfields.Error(ErrNoOutputName))
		res.Outcome = metrics.OutcomeSkipped
		p.recorder.IncDocument(res.Outcome)
		return res
	}
	for _, v := range diagram.Variants(p.theming) {
		res.Outputs = append(res.Outputs, u.Output(v))
	}
	observability.DebugContext(ctx, "Output assigned",
		logfields.Output(u.OutFile),
		slog.Bool("explicit_name", explicit))

	if err := p.resolve(u); err != nil {
		return p.failed(ctx, res, err)
	}

	p.tracker.Refresh(u)
	stale := p.tracker.StaleVariants(u)
	if len(stale) == 0 {
		observability.DebugContext(ctx, "Up to date")
		for _, v := range diagram.Variants(p.theming) {
			p.recorder.IncVariant(string(v), metrics.OutcomeSkipped)
		}
		res.Outcome = metrics.OutcomeSkipped
		p.recorder.IncDocument(res.Outcome)
		return res
	}

	var firstErr error
	for _, v := range stale {
		if ctx.Err() != nil {
			break
		}
		start := time.Now()
		err := p.renderer.Render(ctx, render.NewRequest(u, v))
		if err != nil {
			p.recorder.IncVariant(string(v), metrics.OutcomeFailed)
			if foundationerrors.IsFatal(err) {
				res.fatal = true
				return p.failed(ctx, res, err)
			}
			observability.WarnContext(ctx, "Render failed",
				logfields.Variant(string(v)),
				logfields.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		p.recorder.IncVariant(string(v), metrics.OutcomeRendered)
		res.Rendered = append(res.Rendered, v)
		observability.InfoContext(ctx, "Rendered",
			logfields.Variant(string(v)),
			logfields.Output(u.Output(v)),
			logfields.Duration(time.Since(start)))
	}
	if firstErr != nil {
		return p.failed(ctx, res, firstErr)
	}

	res.Outcome = metrics.OutcomeRendered
	if len(res.Rendered) == 0 {
		res.Outcome = metrics.OutcomeSkipped
	}
	p.recorder.IncDocument(res.Outcome)
	return res
}

// resolve expands includes and encodes every variant. IncTime ends as the
// latest include time over all variants so an include change of either
// variant re-renders the document.
func (p *processor) resolve(u *diagram.Unit) error {
	var latest time.Time
	for _, v := range diagram.Variants(p.theming) {
		text, err := p.resolver.Resolve(u, v == diagram.VariantDark)
		if err != nil {
			return err
		}
		if u.IncTime.After(latest) {
			latest = u.IncTime
		}
		encoded, err := encoding.EncodeDiagram(text)
		if err != nil {
			return foundationerrors.InternalError("failed to encode diagram").
				WithCause(err).
				WithContext("path", u.Path()).
				WithContext("variant", string(v)).
				Build()
		}
		u.SetResolved(v, text, encoded)
	}
	u.IncTime = latest
	return nil
}

func (p *processor) failed(ctx context.Context, res DocumentResult, err error) DocumentResult {
	res.Outcome = metrics.OutcomeFailed
	res.err = err
	res.Error = err.Error()
	if ce, ok := foundationerrors.AsClassified(err); ok {
		if directive, ok := ce.Context().GetString("directive"); ok {
			res.Directive = directive
		}
		res.fatal = res.fatal || ce.IsFatal()
	}
	p.recorder.IncDocument(res.Outcome)
	if res.fatal {
		observability.ErrorContext(ctx, "Document failed fatally", logfields.Error(err))
	} else {
		observability.WarnContext(ctx, "Document failed",
			logfields.Directive(res.Directive),
			logfields.Error(err))
	}
	return res
}
