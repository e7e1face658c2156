package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/amishk599/jobradar/internal/model"
)

// ProviderRateLimiter enforces a minimum delay between requests to the same
// search provider. Each provider gets its own token bucket with burst 1.
type ProviderRateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*rate.Limiter // key: provider name
	minDelay  time.Duration
	overrides map[string]time.Duration
}

// NewProviderRateLimiter creates a limiter that spaces consecutive requests to
// one provider by minDelay, or by the provider's entry in overrides.
func NewProviderRateLimiter(minDelay time.Duration, overrides map[string]time.Duration) *ProviderRateLimiter {
	return &ProviderRateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		minDelay:  minDelay,
		overrides: overrides,
	}
}

func (r *ProviderRateLimiter) limiterFor(provider string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lim, ok := r.limiters[provider]; ok {
		return lim
	}
	delay := r.minDelay
	if d, ok := r.overrides[provider]; ok {
		delay = d
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	lim := rate.NewLimiter(limit, 1)
	r.limiters[provider] = lim
	return lim
}

// Wait blocks until the provider may be called again.
// Returns an error if the context is cancelled while waiting.
func (r *ProviderRateLimiter) Wait(ctx context.Context, provider string) error {
	if err := r.limiterFor(provider).Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait for %s: %w", provider, err)
	}
	return nil
}

// LimitedProvider is a decorator that waits for the rate limiter before
// delegating to the wrapped provider.
type LimitedProvider struct {
	inner   model.SearchProvider
	limiter *ProviderRateLimiter
}

// NewLimitedProvider wraps a provider with per-provider rate limiting.
// Providers sharing a name should share the same limiter instance.
func NewLimitedProvider(inner model.SearchProvider, limiter *ProviderRateLimiter) *LimitedProvider {
	return &LimitedProvider{inner: inner, limiter: limiter}
}

func (p *LimitedProvider) Name() string {
	return p.inner.Name()
}

// Search waits for the limiter, then delegates.
func (p *LimitedProvider) Search(ctx context.Context, query string, recency model.Recency) ([]model.RawCandidate, error) {
	if err := p.limiter.Wait(ctx, p.inner.Name()); err != nil {
		return nil, err
	}
	return p.inner.Search(ctx, query, recency)
}
