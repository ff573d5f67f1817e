package llm

import (
	"context"
	"time"

	"github.com/ppiankov/dialectica/internal/metrics"
)

// MeteredProvider records call counts, latency, and token usage for the
// wrapped provider. It sits closest to the real provider so cache hits and
// throttle waits do not distort the numbers.
type MeteredProvider struct {
	inner Provider
}

// NewMetered wraps inner with Prometheus instrumentation
func NewMetered(inner Provider) *MeteredProvider {
	return &MeteredProvider{inner: inner}
}

// Name returns the inner provider name
func (p *MeteredProvider) Name() string {
	return p.inner.Name()
}

// Generate delegates and records the outcome
func (p *MeteredProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := p.inner.Generate(ctx, req)
	metrics.LLMCallDuration.WithLabelValues(p.inner.Name()).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(p.inner.Name(), "error").Inc()
		return nil, err
	}

	metrics.LLMCallTotal.WithLabelValues(p.inner.Name(), "success").Inc()
	metrics.LLMTokensUsed.WithLabelValues(p.inner.Name()).Add(float64(resp.TokensUsed))

	return resp, nil
}

// IsAvailable delegates to the inner provider
func (p *MeteredProvider) IsAvailable(ctx context.Context) bool {
	return p.inner.IsAvailable(ctx)
}
