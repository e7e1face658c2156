package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/jobradar/internal/adapter"
	"github.com/amishk599/jobradar/internal/ai"
	"github.com/amishk599/jobradar/internal/cache"
	"github.com/amishk599/jobradar/internal/config"
	"github.com/amishk599/jobradar/internal/fetch"
	"github.com/amishk599/jobradar/internal/filter"
	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/query"
	"github.com/amishk599/jobradar/internal/ratelimit"
	"github.com/amishk599/jobradar/internal/retry"
	"github.com/amishk599/jobradar/internal/search"
	"github.com/amishk599/jobradar/internal/store"
)

const llmRetryDelay = 2 * time.Second

// pipeline is a wired Searcher plus the resources it holds open.
type pipeline struct {
	searcher *search.Searcher
	closers  []func() error
}

func (p *pipeline) Close() {
	for _, c := range p.closers {
		_ = c()
	}
}

func newBuilder(cfg *config.Config) *query.Builder {
	return query.NewBuilder(nil, cfg.Search.MaxQueries)
}

// newPlanner returns a Searcher that can only plan queries.
func newPlanner(cfg *config.Config, logger *slog.Logger) *search.Searcher {
	return search.New(search.Options{Builder: newBuilder(cfg)}, logger)
}

func setupCacheStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (cache.Store, func() error, error) {
	if !cfg.Cache.Enabled {
		return nil, nil, nil
	}
	if cfg.Cache.RedisURL != "" {
		rs, err := cache.DialRedis(ctx, cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using redis cache", "ttl", cfg.Cache.TTL.String())
		return rs, rs.Close, nil
	}
	logger.Info("using in-memory cache", "ttl", cfg.Cache.TTL.String(), "max_entries", cfg.Cache.MaxEntries)
	return cache.NewMemoryStore(cfg.Cache.MaxEntries), nil, nil
}

// buildPipeline wires providers through rate limiting and caching into a Searcher.
func buildPipeline(ctx context.Context, cfg *config.Config, httpClient *http.Client, logger *slog.Logger) (*pipeline, error) {
	p := &pipeline{}

	cacheStore, closeCache, err := setupCacheStore(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("setting up cache: %w", err)
	}
	if closeCache != nil {
		p.closers = append(p.closers, closeCache)
	}

	// Shared provider-level rate limiter; every search shares it.
	limiter := ratelimit.NewProviderRateLimiter(cfg.RateLimit.MinDelay, cfg.RateLimit.Overrides)
	decorate := func(sp model.SearchProvider) model.SearchProvider {
		sp = ratelimit.NewLimitedProvider(sp, limiter)
		if cacheStore != nil {
			sp = cache.NewProvider(sp, cacheStore, cfg.Cache.TTL, logger)
		}
		return sp
	}

	var providers []model.SearchProvider
	var direct []search.DirectSource
	for _, name := range cfg.Search.Providers {
		switch name {
		case config.ProviderDuckDuckGo:
			providers = append(providers, decorate(adapter.NewDuckDuckGoProvider(httpClient)))
		case config.ProviderGoogle:
			providers = append(providers, decorate(adapter.NewGoogleProvider(httpClient)))
		case config.ProviderRemoteRocketship:
			direct = append(direct, search.DirectSource{
				Provider:   decorate(adapter.NewRemoteRocketshipProvider(httpClient)),
				RemoteOnly: true,
			})
		default:
			logger.Warn("unsupported provider, skipping", "provider", name)
			continue
		}
		logger.Debug("registered provider", "provider", name, "min_delay", cfg.RateLimit.MinDelayFor(name).String())
	}

	if cfg.AI.Enabled && cfg.AI.GenerateJobs {
		llm := ai.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, &http.Client{Timeout: cfg.AI.Timeout})
		withRetry := retry.NewProvider(llm, cfg.AI.MaxRetries, llmRetryDelay, logger)
		gen := ai.NewJobGenerator(withRetry, ai.JobGenerationTemplate, cfg.AI.MaxJobs, logger)
		direct = append(direct, search.DirectSource{Provider: decorate(gen)})
		logger.Info("llm job generation enabled", "model", cfg.AI.Model)
	}

	if len(providers) == 0 && len(direct) == 0 {
		p.Close()
		return nil, fmt.Errorf("no search providers configured")
	}

	p.searcher = search.New(search.Options{
		Builder: newBuilder(cfg),
		Fetcher: fetch.New(fetch.Options{
			Timeout:       cfg.Search.FetchTimeout,
			PolitenessMin: cfg.Search.PolitenessMin,
			PolitenessMax: cfg.Search.PolitenessMax,
		}, logger),
		Filter: filter.New(filter.Options{
			ExtraSpamPhrases: cfg.Search.SpamPhrases,
			SnippetLength:    cfg.Search.SnippetLength,
		}),
		Providers:    providers,
		Direct:       direct,
		Workers:      cfg.Search.Workers,
		BatchTimeout: cfg.Search.BatchTimeout,
	}, logger)
	return p, nil
}

// openStore opens the SQLite store at the configured path.
func openStore(cfg *config.Config) (*store.SQLiteStore, error) {
	s, err := store.NewSQLiteStore(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store %s: %w", cfg.Store.Path, err)
	}
	return s, nil
}
