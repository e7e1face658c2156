package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/rank"
	"github.com/amishk599/jobradar/internal/search"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMarkSeenThenHasSeen(t *testing.T) {
	s := newTestStore(t)

	if err := s.MarkSeen("key-123"); err != nil {
		t.Fatalf("MarkSeen: %v", err)
	}

	seen, err := s.HasSeen("key-123")
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if !seen {
		t.Error("expected HasSeen to return true after MarkSeen")
	}
}

func TestHasSeenUnknownReturnsFalse(t *testing.T) {
	s := newTestStore(t)

	seen, err := s.HasSeen("does-not-exist")
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if seen {
		t.Error("expected HasSeen to return false for unknown key")
	}
}

func TestMarkSeenIdempotent(t *testing.T) {
	s := newTestStore(t)

	if err := s.MarkSeen("key-456"); err != nil {
		t.Fatalf("first MarkSeen: %v", err)
	}
	if err := s.MarkSeen("key-456"); err != nil {
		t.Fatalf("second MarkSeen (duplicate): %v", err)
	}

	seen, err := s.HasSeen("key-456")
	if err != nil {
		t.Fatalf("HasSeen: %v", err)
	}
	if !seen {
		t.Error("expected HasSeen to return true after duplicate MarkSeen")
	}
}

func TestCleanupRemovesOldKeepsFresh(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	s.now = func() time.Time { return now.Add(-48 * time.Hour) }
	if err := s.MarkSeen("old-key"); err != nil {
		t.Fatalf("MarkSeen old: %v", err)
	}
	s.now = func() time.Time { return now }
	if err := s.MarkSeen("fresh-key"); err != nil {
		t.Fatalf("MarkSeen fresh: %v", err)
	}

	if err := s.Cleanup(24 * time.Hour); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}

	if seen, _ := s.HasSeen("old-key"); seen {
		t.Error("expected old key to be cleaned up")
	}
	if seen, _ := s.HasSeen("fresh-key"); !seen {
		t.Error("expected fresh key to survive cleanup")
	}
}

func TestIsEmpty(t *testing.T) {
	s := newTestStore(t)

	empty, err := s.IsEmpty()
	if err != nil || !empty {
		t.Fatalf("IsEmpty() = %v, %v; want true", empty, err)
	}
	_ = s.MarkSeen("k")
	if empty, _ := s.IsEmpty(); empty {
		t.Error("expected store to be non-empty after MarkSeen")
	}
}

func sampleResponse(role string) *search.Response {
	return &search.Response{
		Request: search.Request{RoleTitle: role, LocationMode: model.Hybrid, LocationText: "Berlin", Recency: model.RecencyWeek},
		Results: []rank.Scored{{
			Candidate: model.JobCandidate{Title: role + " at Acme", Link: "https://jobs.lever.co/acme/1", Source: model.SourceLever},
			Score:     49,
		}},
		Stats: search.Stats{
			QueriesIssued: 13, QueriesCompleted: 12, QueriesSucceeded: 10, QueriesFailed: 2,
			RawCandidates: 40, AfterFilter: 20, AfterDedup: 1, TimedOut: true, Duration: 1500 * time.Millisecond,
		},
	}
}

func TestRecordRunAndGetRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.RecordRun(ctx, sampleResponse("Backend Engineer"))
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if id == "" {
		t.Fatal("expected a run id")
	}

	run, err := s.GetRun(ctx, id)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if run.Request.RoleTitle != "Backend Engineer" || run.Request.LocationMode != model.Hybrid || run.Request.Recency != model.RecencyWeek {
		t.Errorf("request = %+v", run.Request)
	}
	if run.Stats.QueriesIssued != 13 || run.Stats.QueriesSucceeded != 10 || !run.Stats.TimedOut || run.DurationMS != 1500 {
		t.Errorf("stats = %+v, duration_ms = %d", run.Stats, run.DurationMS)
	}
	if len(run.Results) != 1 || run.Results[0].Score != 49 || run.Results[0].Candidate.Source != model.SourceLever {
		t.Errorf("results = %+v", run.Results)
	}

	if _, err := s.GetRun(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("GetRun(missing) err = %v", err)
	}
}

func TestRecentRunsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, role := range []string{"First Role", "Second Role", "Third Role"} {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		if _, err := s.RecordRun(ctx, sampleResponse(role)); err != nil {
			t.Fatalf("RecordRun: %v", err)
		}
	}

	runs, err := s.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Request.RoleTitle != "Third Role" || runs[1].Request.RoleTitle != "Second Role" {
		t.Errorf("order = %q, %q", runs[0].Request.RoleTitle, runs[1].Request.RoleTitle)
	}
	if runs[0].Results != nil {
		t.Error("RecentRuns should not load results")
	}
}
