package commands

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"git.home.luguber.info/inful/plantbuild/internal/build"
	"git.home.luguber.info/inful/plantbuild/internal/discovery"
	"git.home.luguber.info/inful/plantbuild/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	RenderMode  string        `name:"render-mode" help:"Render backend (server, local); overrides render.mode"`
	Format      string        `help:"Output format (png, svg); overrides render.output_format"`
	Interval    time.Duration `help:"Also run a pass on this interval (0 disables)" default:"0s"`
	Debounce    time.Duration `help:"Quiet window before a change triggers a pass" default:"500ms"`
	MetricsFile string        `name:"metrics-file" help:"Rewrite Prometheus metrics in textfile format after every pass"`
}

func (w *WatchCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return err
	}
	if err := ApplyRenderOverrides(cfg, w.RenderMode, w.Format, 0); err != nil {
		return err
	}

	disc := discovery.New(cfg)
	roots, err := disc.Roots()
	if err != nil {
		return err
	}
	dirs, err := disc.Dirs(roots)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, recorder := NewService(w.MetricsFile)
	configPath := root.Config
	pass := func(ctx context.Context, reason string) error {
		// Reload so edits to the config file apply to the next pass.
		if reloaded, err := LoadConfig(root); err == nil {
			if err := ApplyRenderOverrides(reloaded, w.RenderMode, w.Format, 0); err == nil {
				cfg = reloaded
			}
		} else {
			slog.Warn("Keeping previous configuration", "error", err)
		}
		result, err := svc.Run(ctx, build.BuildRequest{Config: cfg})
		WriteMetrics(recorder, w.MetricsFile)
		if result != nil {
			slog.Info("Pass finished",
				slog.String("reason", reason),
				slog.String("status", string(result.Status)),
				slog.Int("rendered", result.Rendered))
		}
		return err
	}

	runner := watch.NewRunner(pass, watch.Options{
		Dirs:     dirs,
		Files:    []string{configPath},
		SkipDir:  func(path string) bool { return disc.SkipDir(roots, path) },
		Debounce: w.Debounce,
		Interval: w.Interval,
	})
	return runner.Run(ctx)
}
