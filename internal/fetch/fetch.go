// Package fetch runs single provider queries without ever failing the caller.
package fetch

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/amishk599/jobradar/internal/model"
)

// Outcome is how a fetch ended.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeError   Outcome = "error"
	OutcomeTimeout Outcome = "timeout"
)

const (
	DefaultTimeout       = 20 * time.Second
	DefaultPolitenessMin = 200 * time.Millisecond
	DefaultPolitenessMax = 1200 * time.Millisecond
)

// Result is the isolated output of one fetch.
type Result struct {
	Provider   string
	Query      string
	Candidates []model.RawCandidate
	Outcome    Outcome
	Err        error
	Duration   time.Duration
}

// Options configure a Fetcher. Zero durations use the defaults; a negative
// PolitenessMax disables the politeness delay.
type Options struct {
	Timeout       time.Duration
	PolitenessMin time.Duration
	PolitenessMax time.Duration
}

// Fetcher wraps provider calls with a timeout and a randomized politeness delay.
type Fetcher struct {
	timeout   time.Duration
	politeMin time.Duration
	politeMax time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Fetcher.
func New(opts Options, logger *slog.Logger) *Fetcher {
	f := &Fetcher{
		timeout:   opts.Timeout,
		politeMin: opts.PolitenessMin,
		politeMax: opts.PolitenessMax,
		logger:    logger,
		now:       time.Now,
	}
	if f.timeout <= 0 {
		f.timeout = DefaultTimeout
	}
	switch {
	case f.politeMax < 0:
		f.politeMin, f.politeMax = 0, 0
	case f.politeMax == 0 && f.politeMin == 0:
		f.politeMin, f.politeMax = DefaultPolitenessMin, DefaultPolitenessMax
	case f.politeMax < f.politeMin:
		f.politeMax = f.politeMin
	}
	return f
}

// Fetch runs query against p. Failures are logged and reported through the
// Result; the returned candidates all have a title and a link.
func (f *Fetcher) Fetch(ctx context.Context, p model.SearchProvider, query string, recency model.Recency) Result {
	start := f.now()
	res := Result{Provider: p.Name(), Query: query}

	if err := f.politeness(ctx); err != nil {
		res.Outcome, res.Err = OutcomeTimeout, err
		res.Duration = time.Since(start)
		f.logger.Warn("fetch abandoned before start", "provider", res.Provider, "query", query, "error", err)
		return res
	}

	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	raws, err := p.Search(fetchCtx, query, recency)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		res.Outcome = OutcomeError
		if errors.Is(err, context.DeadlineExceeded) || fetchCtx.Err() != nil {
			res.Outcome = OutcomeTimeout
		}
		f.logger.Warn("fetch failed", "provider", res.Provider, "query", query, "outcome", res.Outcome, "error", err)
		return res
	}

	retrieved := f.now()
	res.Candidates = make([]model.RawCandidate, 0, len(raws))
	for i, r := range raws {
		r.Title = strings.TrimSpace(r.Title)
		r.Link = strings.TrimSpace(r.Link)
		if r.Title == "" || r.Link == "" {
			continue
		}
		if r.PositionRank == 0 {
			r.PositionRank = i + 1
		}
		r.OriginQuery = query
		r.Provider = res.Provider
		r.RetrievedAt = retrieved
		res.Candidates = append(res.Candidates, r)
	}
	res.Outcome = OutcomeOK
	f.logger.Debug("fetch done", "provider", res.Provider, "query", query, "results", len(res.Candidates), "duration", res.Duration)
	return res
}

func (f *Fetcher) politeness(ctx context.Context) error {
	if f.politeMax <= 0 {
		return ctx.Err()
	}
	d := f.politeMin
	if span := f.politeMax - f.politeMin; span > 0 {
		d += rand.N(span + 1)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
