package metrics

import (
	"fmt"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "plantbuild"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry       *prom.Registry
	documents      *prom.CounterVec
	variants       *prom.CounterVec
	renderDuration *prom.HistogramVec
	passDuration   prom.Histogram
	passOutcome    *prom.CounterVec
	retries        *prom.CounterVec
}

// NewPrometheusRecorder constructs the collectors and registers them on reg
// (a fresh registry when nil).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		registry: reg,
		documents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Diagram documents processed by outcome",
		}, []string{"outcome"}),
		variants: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "variants_total",
			Help:      "Theme variants processed by variant and outcome",
		}, []string{"variant", "outcome"}),
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Duration of individual backend render calls",
			Buckets:   prom.DefBuckets,
		}, []string{"mode", "variant"}),
		passDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Total build pass duration",
			Buckets:   prom.DefBuckets,
		}),
		passOutcome: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "pass_outcomes_total",
			Help:      "Build passes by final status",
		}, []string{"outcome"}),
		retries: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "render_retries_total",
			Help:      "Render attempts retried after transient transport failures",
		}, []string{"mode"}),
	}
	reg.MustRegister(pr.documents, pr.variants, pr.renderDuration, pr.passDuration, pr.passOutcome, pr.retries)
	return pr
}

// Registry returns the registry the collectors live on.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	return p.registry
}

func (p *PrometheusRecorder) IncDocument(outcome DocumentOutcome) {
	if p == nil {
		return
	}
	p.documents.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncVariant(variant string, outcome DocumentOutcome) {
	if p == nil {
		return
	}
	p.variants.WithLabelValues(variant, string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveRenderDuration(mode, variant string, d time.Duration) {
	if p == nil {
		return
	}
	p.renderDuration.WithLabelValues(mode, variant).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObservePassDuration(d time.Duration) {
	if p == nil {
		return
	}
	p.passDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncPassOutcome(outcome PassOutcome) {
	if p == nil {
		return
	}
	p.passOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncRetry(mode string) {
	if p == nil {
		return
	}
	p.retries.WithLabelValues(mode).Inc()
}

// WriteTextfile writes the registry to path in the text exposition format,
// replacing any previous file atomically.
func (p *PrometheusRecorder) WriteTextfile(path string) error {
	if err := prom.WriteToTextfile(path, p.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
