package render

import (
	"sync/atomic"

	"git.home.luguber.info/inful/plantbuild/internal/metrics"
)

// countingRecorder counts retries and ignores everything else.
type countingRecorder struct {
	metrics.NoopRecorder
	retries atomic.Int32
}

func (c *countingRecorder) IncRetry(string) { c.retries.Add(1) }
