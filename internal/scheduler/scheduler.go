package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/poller"
)

// DefaultRetention is how long seen keys are kept before Cleanup drops them.
const DefaultRetention = 30 * 24 * time.Hour

// Scheduler owns the watch loop: ticks on an interval and runs each saved
// search sequentially. Searches share providers, so they never overlap.
type Scheduler struct {
	pollers   []*poller.SearchPoller
	interval  time.Duration
	minDelay  time.Duration
	store     model.SeenStore
	retention time.Duration
	logger    *slog.Logger
}

// NewScheduler creates a scheduler that polls all saved searches at the given
// interval, pausing minDelay between searches. store may be nil, in which case
// seen keys are never cleaned up.
func NewScheduler(pollers []*poller.SearchPoller, interval, minDelay time.Duration, store model.SeenStore, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		pollers:   pollers,
		interval:  interval,
		minDelay:  minDelay,
		store:     store,
		retention: DefaultRetention,
		logger:    logger,
	}
}

// Run starts the polling loop. It runs one immediate cycle, then ticks on the
// configured interval. It returns nil when ctx is cancelled (graceful shutdown).
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"searches", len(s.pollers),
	)

	s.pollAll(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
			s.pollAll(ctx)
		}
	}
}

// pollAll runs Poll on each poller sequentially, then drops expired seen keys.
func (s *Scheduler) pollAll(ctx context.Context) {
	for i, p := range s.pollers {
		if ctx.Err() != nil {
			return
		}

		if err := p.Poll(ctx); err != nil {
			s.logger.Error("poll failed",
				"search", p.Name,
				"error", err,
			)
		}

		if i < len(s.pollers)-1 && s.minDelay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.minDelay):
			}
		}
	}

	if s.store != nil {
		if err := s.store.Cleanup(s.retention); err != nil {
			s.logger.Warn("cleaning up seen postings failed", "error", err)
		}
	}
}
