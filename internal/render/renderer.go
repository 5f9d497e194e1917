// Package render turns resolved diagram text into artifacts through one of two
// interchangeable backends: a local plantuml executable or a PlantUML server.
package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/plantbuild/internal/config"
	"git.home.luguber.info/inful/plantbuild/internal/diagram"
	foundationerrors "git.home.luguber.info/inful/plantbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/plantbuild/internal/metrics"
	"git.home.luguber.info/inful/plantbuild/internal/retry"
	"git.home.luguber.info/inful/plantbuild/internal/workspace"
)

// Request describes one variant of one document to render.
type Request struct {
	Source  string          // source document path, for diagnostics
	Variant diagram.Variant // light or dark
	Text    string          // include-resolved diagram text
	Encoded string          // server payload of Text
	Output  string          // artifact path
}

// NewRequest builds the request for variant v of u.
func NewRequest(u *diagram.Unit, v diagram.Variant) Request {
	return Request{
		Source:  u.Path(),
		Variant: v,
		Text:    u.Text(v),
		Encoded: u.Payload(v),
		Output:  u.Output(v),
	}
}

// Renderer produces the artifact for a request.
//
// Contract: on success the artifact at req.Output is complete. Errors are
// classified; fatal ones abort the pass, others fail only this document.
type Renderer interface {
	Render(ctx context.Context, req Request) error
	Mode() config.RenderMode
}

// Options carries collaborators shared by the backends.
type Options struct {
	Workspace *workspace.Manager
	Recorder  metrics.Recorder
	Policy    retry.Policy
}

// New selects the backend configured by cfg.Render.Mode.
func New(cfg *config.Config, opts Options) (Renderer, error) {
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	switch cfg.Render.Mode {
	case config.RenderModeServer:
		return NewServerRenderer(cfg.Render, opts), nil
	case config.RenderModeLocal:
		if opts.Workspace == nil {
			return nil, foundationerrors.InternalError("local renderer requires a workspace").Build()
		}
		return NewLocalRenderer(cfg.Render, opts), nil
	default:
		return nil, foundationerrors.ConfigError(fmt.Sprintf("unknown render mode %q", cfg.Render.Mode)).
			WithCause(ErrUnknownMode).
			Build()
	}
}

// WriteFileAtomic writes data to path through a temp file in the same
// directory followed by a rename, creating parent directories as needed.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func writeOutput(req Request, data []byte) error {
	if err := WriteFileAtomic(req.Output, data); err != nil {
		return foundationerrors.FileSystemError("failed to write rendered output").
			WithCause(fmt.Errorf("%w: %w", ErrWriteOutput, err)).
			WithContext("output", req.Output).
			Build()
	}
	return nil
}
