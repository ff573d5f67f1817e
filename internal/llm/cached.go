package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/ppiankov/dialectica/internal/cache"
	"github.com/ppiankov/dialectica/internal/metrics"
)

// CachedProvider memoizes Generate responses keyed by request fingerprint.
// Identical prompts across regeneration attempts and repeated batch runs
// reuse the stored response instead of calling the API again.
type CachedProvider struct {
	inner Provider
	cache cache.Cache
	ttl   time.Duration
}

// NewCached wraps inner with response caching. A nil cache disables
// memoization and every call passes through.
func NewCached(inner Provider, c cache.Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{
		inner: inner,
		cache: c,
		ttl:   ttl,
	}
}

// Name returns the inner provider name
func (p *CachedProvider) Name() string {
	return p.inner.Name()
}

// Generate returns a cached response when one exists, otherwise delegates
func (p *CachedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	key := cache.Key("llm:" + p.inner.Name() + ":" + req.Fingerprint())

	var hit Response
	if cache.GetJSON(p.cache, key, &hit) {
		metrics.CacheHitsTotal.WithLabelValues("llm").Inc()
		return &hit, nil
	}
	metrics.CacheMissesTotal.WithLabelValues("llm").Inc()

	resp, err := p.inner.Generate(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := cache.SetJSON(p.cache, key, resp, p.ttl); err != nil {
		slog.Debug("LLM cache write failed", "error", err)
	}

	return resp, nil
}

// IsAvailable delegates to the inner provider
func (p *CachedProvider) IsAvailable(ctx context.Context) bool {
	return p.inner.IsAvailable(ctx)
}
