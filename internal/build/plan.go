package build

import (
	"context"

	"git.home.luguber.info/inful/plantbuild/internal/config"
	"git.home.luguber.info/inful/plantbuild/internal/diagram"
	"git.home.luguber.info/inful/plantbuild/internal/discovery"
	"git.home.luguber.info/inful/plantbuild/internal/include"
	"git.home.luguber.info/inful/plantbuild/internal/staleness"
)

// Candidate describes what a pass would do with one discovered document.
type Candidate struct {
	Source   string            `json:"source"`
	Outputs  []string          `json:"outputs,omitempty"`
	Explicit bool              `json:"explicit_name,omitempty"`
	Stale    []diagram.Variant `json:"stale,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// Plan discovers documents and evaluates their staleness without rendering.
// Document level problems are reported on the candidate, not returned.
func Plan(ctx context.Context, cfg *config.Config, force bool) ([]Candidate, error) {
	units, err := discovery.New(cfg).Discover(ctx)
	if err != nil {
		return nil, err
	}
	proc := &processor{
		format:   string(cfg.Render.OutputFormat),
		theming:  cfg.Theme.Enabled,
		resolver: include.NewResolver(cfg),
		tracker:  staleness.New(cfg.Theme.Enabled, force),
	}

	out := make([]Candidate, 0, len(units))
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out = append(out, proc.plan(u))
	}
	return out, nil
}

func (p *processor) plan(u *diagram.Unit) Candidate {
	c := Candidate{Source: u.Path()}
	if err := u.Load(); err != nil {
		c.Error = err.Error()
		return c
	}
	c.Explicit = u.AssignOutputs(p.format, p.theming)
	if !u.HasOutput() {
		c.Error = ErrNoOutputName.Error()
		return c
	}
	for _, v := range diagram.Variants(p.theming) {
		c.Outputs = append(c.Outputs, u.Output(v))
	}
	if err := p.resolve(u); err != nil {
		c.Error = err.Error()
		return c
	}
	p.tracker.Refresh(u)
	c.Stale = p.tracker.StaleVariants(u)
	return c
}
