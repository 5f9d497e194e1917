package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"git.home.luguber.info/inful/plantbuild/internal/build"
	"git.home.luguber.info/inful/plantbuild/internal/config"
	"git.home.luguber.info/inful/plantbuild/internal/metrics"
)

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	RenderMode  string `name:"render-mode" help:"Render backend (server, local); overrides render.mode"`
	Format      string `help:"Output format (png, svg); overrides render.output_format"`
	Force       bool   `short:"f" help:"Render every diagram regardless of modification times"`
	Concurrency int    `help:"Documents processed in parallel; overrides build.concurrency"`
	Report      string `help:"Write a JSON build report to this path"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in textfile format to this path"`
}

func (b *BuildCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return err
	}
	if err := ApplyRenderOverrides(cfg, b.RenderMode, b.Format, b.Concurrency); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	svc, recorder := NewService(b.MetricsFile)
	result, runErr := svc.Run(ctx, build.BuildRequest{
		Config:  cfg,
		Options: build.BuildOptions{Force: b.Force, ReportPath: b.Report},
	})
	WriteMetrics(recorder, b.MetricsFile)

	if result != nil {
		fmt.Fprintf(os.Stdout, "%s: %d rendered, %d up to date, %d failed (%d documents)\n",
			result.Status, result.Rendered, result.Skipped, result.Failed, result.Documents)
	}
	return runErr
}

// ApplyRenderOverrides applies command line overrides and revalidates.
// Unrecognized values are kept verbatim so validation reports them.
func ApplyRenderOverrides(cfg *config.Config, mode, format string, concurrency int) error {
	if mode != "" {
		if m := config.NormalizeRenderMode(mode); m != "" {
			cfg.Render.Mode = m
		} else {
			cfg.Render.Mode = config.RenderMode(mode)
		}
	}
	if format != "" {
		if f := config.NormalizeOutputFormat(format); f != "" {
			cfg.Render.OutputFormat = f
		} else {
			cfg.Render.OutputFormat = config.OutputFormat(format)
		}
	}
	if concurrency > 0 {
		cfg.Build.Concurrency = concurrency
	}
	return revalidate(cfg)
}

// NewService builds the pass service, with a Prometheus recorder when a
// metrics file is requested.
func NewService(metricsFile string) (*build.DefaultBuildService, *metrics.PrometheusRecorder) {
	svc := build.NewBuildService()
	if metricsFile == "" {
		return svc, nil
	}
	recorder := metrics.NewPrometheusRecorder(nil)
	return svc.WithRecorder(recorder), recorder
}

// WriteMetrics exports the recorder to path; failures are logged only.
func WriteMetrics(recorder *metrics.PrometheusRecorder, path string) {
	if recorder == nil || path == "" {
		return
	}
	if err := recorder.WriteTextfile(path); err != nil {
		slog.Warn("Failed to write metrics file", "path", path, "error", err)
	}
}
