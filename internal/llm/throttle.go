package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// ThrottledProvider wraps a provider with a client-side token bucket so
// concurrent batch runs stay inside API rate quotas.
type ThrottledProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// NewThrottled wraps inner with a rate limiter
func NewThrottled(inner Provider, requestsPerSecond float64, burst int) *ThrottledProvider {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &ThrottledProvider{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Name returns the inner provider name
func (p *ThrottledProvider) Name() string {
	return p.inner.Name()
}

// Generate waits for limiter clearance before delegating
func (p *ThrottledProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}
	return p.inner.Generate(ctx, req)
}

// IsAvailable delegates to the inner provider
func (p *ThrottledProvider) IsAvailable(ctx context.Context) bool {
	return p.inner.IsAvailable(ctx)
}
