package render

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"git.home.luguber.info/inful/plantbuild/internal/config"
	foundationerrors "git.home.luguber.info/inful/plantbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/plantbuild/internal/logfields"
	"git.home.luguber.info/inful/plantbuild/internal/metrics"
	"git.home.luguber.info/inful/plantbuild/internal/workspace"
)

// LocalRenderer pipes resolved text through the plantuml executable:
// <bin_path> -t<format> -pipe -charset UTF-8.
type LocalRenderer struct {
	binPath   string
	format    config.OutputFormat
	timeout   time.Duration
	workspace *workspace.Manager
	recorder  metrics.Recorder
}

// NewLocalRenderer creates the local backend. Resolved text is staged in ws.
func NewLocalRenderer(cfg config.RenderConfig, opts Options) *LocalRenderer {
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &LocalRenderer{
		binPath:   cfg.BinPath,
		format:    cfg.OutputFormat,
		timeout:   cfg.TimeoutDuration(),
		workspace: opts.Workspace,
		recorder:  recorder,
	}
}

// Mode implements Renderer.
func (l *LocalRenderer) Mode() config.RenderMode { return config.RenderModeLocal }

// Args returns the command line arguments passed to the executable.
func (l *LocalRenderer) Args() []string {
	return []string{"-t" + string(l.format), "-pipe", "-charset", "UTF-8"}
}

// Render implements Renderer. Any failure of the executable is fatal.
func (l *LocalRenderer) Render(ctx context.Context, req Request) error {
	bin, err := exec.LookPath(l.binPath)
	if err != nil {
		return foundationerrors.RenderError("plantuml executable not available").
			Fatal().
			UserAction().
			WithCause(fmt.Errorf("%w: %w", ErrBinaryNotFound, err)).
			WithContext("bin_path", l.binPath).
			Build()
	}

	staged, err := l.workspace.WriteFile(stagedName(req), []byte(req.Text))
	if err != nil {
		return foundationerrors.FileSystemError("failed to stage diagram text").
			WithCause(err).
			WithContext("source", req.Source).
			Build()
	}
	stdin, err := os.Open(staged)
	if err != nil {
		return foundationerrors.FileSystemError("failed to open staged diagram text").
			WithCause(err).
			WithContext("staged", staged).
			Build()
	}
	defer func() { _ = stdin.Close() }()

	runCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, bin, l.Args()...)
	var stdout, stderr bytes.Buffer
	cmd.Stdin = stdin
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	slog.Debug("LocalRenderer invoking plantuml", logfields.Path(req.Source), logfields.Variant(string(req.Variant)))
	err = cmd.Run()
	l.recorder.ObserveRenderDuration(string(config.RenderModeLocal), string(req.Variant), time.Since(start))

	if errStr := strings.TrimSpace(stderr.String()); errStr != "" {
		slog.Warn("plantuml stderr", logfields.Path(req.Source), slog.String("error_output", errStr))
	}
	if err != nil {
		b := foundationerrors.RenderError("plantuml execution failed").
			Fatal().
			WithCause(fmt.Errorf("%w: %w", ErrBinaryFailed, err)).
			WithContext("source", req.Source).
			WithContext("variant", string(req.Variant))
		if errStr := strings.TrimSpace(stderr.String()); errStr != "" {
			b = b.WithContext("stderr", errStr)
		}
		return b.Build()
	}

	return writeOutput(req, stdout.Bytes())
}

// stagedName is the workspace file name used for a request.
func stagedName(req Request) string {
	return fmt.Sprintf("%s.%s.puml", filepath.Base(req.Source), req.Variant)
}
