package render

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"git.home.luguber.info/inful/plantbuild/internal/config"
	foundationerrors "git.home.luguber.info/inful/plantbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/plantbuild/internal/logfields"
	"git.home.luguber.info/inful/plantbuild/internal/metrics"
	"git.home.luguber.info/inful/plantbuild/internal/retry"
)

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 512

// ServerRenderer fetches artifacts from a PlantUML server with
// GET <server>/<format>/<encoded>.
type ServerRenderer struct {
	server   string
	format   config.OutputFormat
	client   *http.Client
	policy   retry.Policy
	recorder metrics.Recorder
}

// NewServerRenderer creates the remote backend. One http.Client is shared by
// all requests of the renderer.
func NewServerRenderer(cfg config.RenderConfig, opts Options) *ServerRenderer {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.DisableSSLVerification {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in via disable_ssl_certificate_validation
	}
	recorder := opts.Recorder
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &ServerRenderer{
		server:   strings.TrimRight(cfg.Server, "/"),
		format:   cfg.OutputFormat,
		client:   &http.Client{Transport: transport, Timeout: cfg.TimeoutDuration()},
		policy:   opts.Policy,
		recorder: recorder,
	}
}

// Mode implements Renderer.
func (s *ServerRenderer) Mode() config.RenderMode { return config.RenderModeServer }

// URL returns the request URL for an encoded payload.
func (s *ServerRenderer) URL(encoded string) string {
	return s.server + "/" + string(s.format) + "/" + encoded
}

// Render implements Renderer. A non-200 answer leaves the output untouched
// and returns a non-fatal error; transport failures are retried per policy
// and then returned as fatal network errors.
func (s *ServerRenderer) Render(ctx context.Context, req Request) error {
	url := s.URL(req.Encoded)
	start := time.Now()

	var body []byte
	attempt := 0
	err := s.policy.Do(ctx, func(ctx context.Context) error {
		if attempt > 0 {
			s.recorder.IncRetry(string(config.RenderModeServer))
		}
		attempt++
		var err error
		body, err = s.fetch(ctx, req, url)
		return err
	}, func(err error) bool {
		return errors.Is(err, ErrTransport) && ctx.Err() == nil
	})
	s.recorder.ObserveRenderDuration(string(config.RenderModeServer), string(req.Variant), time.Since(start))
	if err != nil {
		return err
	}

	slog.Debug("Server render complete",
		logfields.Path(req.Source),
		logfields.Variant(string(req.Variant)),
		logfields.Duration(time.Since(start)))
	return writeOutput(req, body)
}

func (s *ServerRenderer) fetch(ctx context.Context, req Request, url string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, foundationerrors.InternalError("failed to build render request").
			WithCause(err).
			WithContext("url", url).
			Build()
	}

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, foundationerrors.NetworkError("render server unreachable").
			WithCause(fmt.Errorf("%w: %w", ErrTransport, err)).
			WithContext("server", s.server).
			WithContext("source", req.Source).
			Build()
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, foundationerrors.RenderError(fmt.Sprintf("render server returned status %d", resp.StatusCode)).
			WithCause(ErrBadStatus).
			WithContext("status", resp.StatusCode).
			WithContext("source", req.Source).
			WithContext("variant", string(req.Variant)).
			WithContext("body", strings.TrimSpace(string(snippet))).
			Build()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, foundationerrors.NetworkError("failed to read render response").
			WithCause(fmt.Errorf("%w: %w", ErrTransport, err)).
			WithContext("server", s.server).
			Build()
	}
	return body, nil
}
