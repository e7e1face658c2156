package store

import (
	"context"
	"time"

	"github.com/amishk599/jobradar/internal/search"
)

// NopStore is used when persistence is disabled or in dry-run mode. It never
// marks postings as seen, so every posting appears new on each poll, and it
// keeps no history.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) HasSeen(key string) (bool, error)      { return false, nil }
func (s *NopStore) MarkSeen(key string) error             { return nil }
func (s *NopStore) Cleanup(olderThan time.Duration) error { return nil }
func (s *NopStore) IsEmpty() (bool, error)                { return false, nil }
func (s *NopStore) Close() error                          { return nil }

func (s *NopStore) RecentRuns(context.Context, int) ([]Run, error) {
	return nil, nil
}

func (s *NopStore) RecordRun(context.Context, *search.Response) (string, error) {
	return "", nil
}

func (s *NopStore) GetRun(context.Context, string) (Run, error) {
	return Run{}, ErrRunNotFound
}
