// Package search runs the full pipeline: build queries, fetch them
// concurrently, then filter, deduplicate and rank the results.
package search

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/amishk599/jobradar/internal/dedup"
	"github.com/amishk599/jobradar/internal/fetch"
	"github.com/amishk599/jobradar/internal/filter"
	"github.com/amishk599/jobradar/internal/metrics"
	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/query"
	"github.com/amishk599/jobradar/internal/rank"
)

const (
	DefaultWorkers      = 6
	MaxWorkers          = 10
	DefaultBatchTimeout = 90 * time.Second
)

// DirectSource is a provider queried once per search with the role title
// instead of once per built query.
type DirectSource struct {
	Provider   model.SearchProvider
	RemoteOnly bool
}

// Options wire a Searcher. Nil Builder and Filter use defaults; Fetcher is required.
type Options struct {
	Builder      *query.Builder
	Fetcher      *fetch.Fetcher
	Filter       *filter.ResultFilter
	Providers    []model.SearchProvider
	Direct       []DirectSource
	Workers      int
	BatchTimeout time.Duration
}

// Searcher orchestrates one search request at a time per call; concurrent
// calls are independent.
type Searcher struct {
	builder      *query.Builder
	fetcher      *fetch.Fetcher
	filter       *filter.ResultFilter
	providers    []model.SearchProvider
	direct       []DirectSource
	workers      int
	batchTimeout time.Duration
	logger       *slog.Logger
}

// New creates a Searcher.
func New(opts Options, logger *slog.Logger) *Searcher {
	s := &Searcher{
		builder:      opts.Builder,
		fetcher:      opts.Fetcher,
		filter:       opts.Filter,
		providers:    opts.Providers,
		direct:       opts.Direct,
		workers:      opts.Workers,
		batchTimeout: opts.BatchTimeout,
		logger:       logger,
	}
	if s.builder == nil {
		s.builder = query.NewBuilder(nil, 0)
	}
	if s.filter == nil {
		s.filter = filter.New(filter.Options{})
	}
	if s.workers <= 0 {
		s.workers = DefaultWorkers
	}
	s.workers = min(s.workers, MaxWorkers)
	if s.batchTimeout <= 0 {
		s.batchTimeout = DefaultBatchTimeout
	}
	return s
}

// Plan validates req and returns the queries a search would issue.
func (s *Searcher) Plan(req Request) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return s.builder.Build(req.normalized().queryParams()), nil
}

type task struct {
	provider model.SearchProvider
	query    string
}

type indexedResult struct {
	index  int
	result fetch.Result
}

// Search runs req to completion or until the batch timeout. The only errors
// are input validation errors, returned before any provider is called.
func (s *Searcher) Search(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	if err := req.Validate(); err != nil {
		metrics.SearchesTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	req = req.normalized()
	queries := s.builder.Build(req.queryParams())
	tasks := s.tasks(req, queries)

	resp := &Response{Request: req, Queries: queries}
	resp.Stats.QueriesIssued = len(tasks)

	results, timedOut := s.fanOut(ctx, req.Recency, tasks)
	resp.Stats.TimedOut = timedOut
	resp.Stats.QueriesCompleted = len(results)

	// Aggregation runs on this goroutine only, in task order.
	var raws []model.RawCandidate
	for _, r := range results {
		metrics.FetchesTotal.WithLabelValues(r.Provider, string(r.Outcome)).Inc()
		metrics.FetchDuration.WithLabelValues(r.Provider).Observe(r.Duration.Seconds())
		if r.Outcome == fetch.OutcomeOK {
			resp.Stats.QueriesSucceeded++
		} else {
			resp.Stats.QueriesFailed++
		}
		raws = append(raws, r.Candidates...)
	}
	resp.Stats.RawCandidates = len(raws)

	accepted, rejected := s.filter.Partition(raws)
	resp.Rejected = rejected
	resp.Stats.AfterFilter = len(accepted)

	unique := dedup.Deduplicate(accepted)
	resp.Stats.AfterDedup = len(unique)

	resp.Results = rank.Rank(unique, rank.Query{RoleTitle: req.RoleTitle, Industry: req.Industry})
	resp.Stats.Duration = time.Since(start)

	s.record(resp)
	s.logger.Info("search complete",
		"role", req.RoleTitle,
		"mode", req.LocationMode,
		"queries_issued", resp.Stats.QueriesIssued,
		"queries_completed", resp.Stats.QueriesCompleted,
		"queries_failed", resp.Stats.QueriesFailed,
		"raw", resp.Stats.RawCandidates,
		"accepted", resp.Stats.AfterFilter,
		"unique", resp.Stats.AfterDedup,
		"timed_out", resp.Stats.TimedOut,
		"duration", resp.Stats.Duration,
	)
	return resp, nil
}

func (s *Searcher) tasks(req Request, queries []string) []task {
	tasks := make([]task, 0, len(queries)*len(s.providers)+len(s.direct))
	for _, q := range queries {
		for _, p := range s.providers {
			tasks = append(tasks, task{provider: p, query: q})
		}
	}
	for _, d := range s.direct {
		if d.RemoteOnly && req.LocationMode != model.Remote {
			continue
		}
		tasks = append(tasks, task{provider: d.Provider, query: req.RoleTitle})
	}
	return tasks
}

// fanOut runs tasks on at most s.workers goroutines. Each worker sends its own
// result; nothing is shared. It returns the results that arrived before the
// batch deadline, ordered by task index, and whether the deadline cut it short.
func (s *Searcher) fanOut(ctx context.Context, recency model.Recency, tasks []task) ([]fetch.Result, bool) {
	if len(tasks) == 0 {
		return nil, false
	}

	batchCtx, cancel := context.WithTimeout(ctx, s.batchTimeout)
	defer cancel()

	ch := make(chan indexedResult, len(tasks))
	g, gctx := errgroup.WithContext(batchCtx)
	g.SetLimit(s.workers)

	go func() {
		for i, t := range tasks {
			g.Go(func() error {
				ch <- indexedResult{index: i, result: s.fetcher.Fetch(gctx, t.provider, t.query, recency)}
				return nil
			})
		}
		_ = g.Wait()
	}()

	slots := make([]*fetch.Result, len(tasks))
	received := 0
	timedOut := false
collect:
	for received < len(tasks) {
		select {
		case r := <-ch:
			if r.result.Outcome == fetch.OutcomeTimeout && batchCtx.Err() != nil {
				continue
			}
			slots[r.index] = &r.result
			received++
		case <-batchCtx.Done():
			timedOut = true
			break collect
		}
	}
	// Keep results that were already buffered when the deadline fired, but not
	// the fetches the deadline itself cut off.
drain:
	for timedOut {
		select {
		case r := <-ch:
			if r.result.Outcome == fetch.OutcomeTimeout {
				continue
			}
			slots[r.index] = &r.result
			received++
		default:
			break drain
		}
	}
	if timedOut {
		s.logger.Warn("batch timeout reached, using partial results",
			"completed", received,
			"issued", len(tasks),
			"timeout", s.batchTimeout,
		)
	}

	out := make([]fetch.Result, 0, received)
	for _, r := range slots {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, timedOut
}

func (s *Searcher) record(resp *Response) {
	result := "ok"
	if resp.Stats.TimedOut {
		result = "timeout"
	}
	metrics.SearchesTotal.WithLabelValues(result).Inc()
	metrics.SearchDuration.Observe(resp.Stats.Duration.Seconds())
	metrics.CandidatesTotal.WithLabelValues("raw").Add(float64(resp.Stats.RawCandidates))
	metrics.CandidatesTotal.WithLabelValues("accepted").Add(float64(resp.Stats.AfterFilter))
	metrics.CandidatesTotal.WithLabelValues("unique").Add(float64(resp.Stats.AfterDedup))
	for _, r := range resp.Rejected {
		metrics.RejectionsTotal.WithLabelValues(string(r.Reason)).Inc()
	}
}
