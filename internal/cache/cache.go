// Package cache keeps provider results for a short time so repeated searches
// do not hit upstream search engines again.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/amishk599/jobradar/internal/model"
)

// DefaultTTL controls how long provider results stay cached.
const DefaultTTL = 15 * time.Minute

// Store is a byte cache with per-entry expiry.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
}

// Key builds a deterministic cache key from parts.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("jr:%x", hash[:12])
}

// Provider is a decorator that serves repeated queries from a Store.
// Only successful, non-empty results are cached.
type Provider struct {
	inner  model.SearchProvider
	store  Store
	ttl    time.Duration
	logger *slog.Logger
}

// NewProvider wraps inner with caching. ttl <= 0 uses DefaultTTL.
func NewProvider(inner model.SearchProvider, store Store, ttl time.Duration, logger *slog.Logger) *Provider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Provider{inner: inner, store: store, ttl: ttl, logger: logger}
}

func (p *Provider) Name() string {
	return p.inner.Name()
}

// Search returns cached results when present, otherwise delegates and stores
// the result. Store failures are logged and never fail the search.
func (p *Provider) Search(ctx context.Context, query string, recency model.Recency) ([]model.RawCandidate, error) {
	key := Key(p.inner.Name(), query, string(recency))

	data, ok, err := p.store.Get(ctx, key)
	if err != nil {
		p.logger.Debug("cache get failed", "provider", p.inner.Name(), "error", err)
	}
	if ok {
		var cached []model.RawCandidate
		if err := json.Unmarshal(data, &cached); err == nil {
			p.logger.Debug("cache hit", "provider", p.inner.Name(), "query", query)
			return cached, nil
		}
	}

	results, err := p.inner.Search(ctx, query, recency)
	if err != nil || len(results) == 0 {
		return results, err
	}

	data, err = json.Marshal(results)
	if err != nil {
		return results, nil
	}
	if err := p.store.Set(ctx, key, data, p.ttl); err != nil {
		p.logger.Debug("cache set failed", "provider", p.inner.Name(), "error", err)
	}
	return results, nil
}
