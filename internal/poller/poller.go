package poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amishk599/jobradar/internal/dedup"
	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/search"
)

// Searcher runs one search request.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Response, error)
}

// RunRecorder persists the outcome of a search.
type RunRecorder interface {
	RecordRun(ctx context.Context, resp *search.Response) (string, error)
}

// SearchPoller owns the watch pipeline for a single saved search:
// search → score threshold → seen check → notify → mark seen.
type SearchPoller struct {
	Name     string
	request  search.Request
	searcher Searcher
	store    model.SeenStore
	notifier model.Notifier
	recorder RunRecorder
	minScore int
	logger   *slog.Logger
}

// Option configures a SearchPoller.
type Option func(*SearchPoller)

// WithRecorder records every successful search run.
func WithRecorder(r RunRecorder) Option {
	return func(p *SearchPoller) { p.recorder = r }
}

// WithMinScore skips postings ranked below score.
func WithMinScore(score int) Option {
	return func(p *SearchPoller) { p.minScore = score }
}

// NewSearchPoller creates a poller wired with all its dependencies.
func NewSearchPoller(
	name string,
	req search.Request,
	searcher Searcher,
	store model.SeenStore,
	notifier model.Notifier,
	logger *slog.Logger,
	opts ...Option,
) *SearchPoller {
	p := &SearchPoller{
		Name:     name,
		request:  req,
		searcher: searcher,
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Poll runs one cycle. When the store is empty the postings found are only
// marked seen so the first run does not flood the notifier.
func (p *SearchPoller) Poll(ctx context.Context) error {
	resp, err := p.searcher.Search(ctx, p.request)
	if err != nil {
		return fmt.Errorf("polling %s: %w", p.Name, err)
	}

	if p.recorder != nil {
		if _, err := p.recorder.RecordRun(ctx, resp); err != nil {
			p.logger.Warn("recording run failed", "search", p.Name, "error", err)
		}
	}

	var matched []model.JobCandidate
	for _, s := range resp.Results {
		if s.Score >= p.minScore {
			matched = append(matched, s.Candidate)
		}
	}

	firstRun, err := p.store.IsEmpty()
	if err != nil {
		return fmt.Errorf("polling %s: checking store: %w", p.Name, err)
	}

	var newJobs []model.JobCandidate
	for _, job := range matched {
		seen, err := p.store.HasSeen(dedup.Key(job))
		if err != nil {
			return fmt.Errorf("polling %s: checking seen status: %w", p.Name, err)
		}
		if !seen {
			newJobs = append(newJobs, job)
		}
	}

	if firstRun {
		p.logger.Info("first run, seeding store without notifying", "search", p.Name, "jobs", len(newJobs))
	} else if len(newJobs) > 0 {
		if err := p.notifier.Notify(newJobs); err != nil {
			return fmt.Errorf("polling %s: notifying: %w", p.Name, err)
		}
	}

	for _, job := range newJobs {
		if err := p.store.MarkSeen(dedup.Key(job)); err != nil {
			return fmt.Errorf("polling %s: marking seen: %w", p.Name, err)
		}
	}

	p.logger.Info("polled search",
		"search", p.Name,
		"queries", resp.Stats.QueriesIssued,
		"results", len(resp.Results),
		"matched", len(matched),
		"new", len(newJobs),
		"timed_out", resp.Stats.TimedOut,
	)

	return nil
}
