package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/rank"
	"github.com/amishk599/jobradar/internal/search"
)

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("search run not found")

// Run is a persisted summary of one search.
type Run struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Request   search.Request `json:"request"`
	Stats     search.Stats   `json:"stats"`
	// DurationMS mirrors Stats.Duration, which is not serialized.
	DurationMS int64         `json:"duration_ms"`
	Results    []rank.Scored `json:"results,omitempty"`
}

// RecordRun stores resp and returns the new run's id.
func (s *SQLiteStore) RecordRun(ctx context.Context, resp *search.Response) (string, error) {
	results, err := json.Marshal(resp.Results)
	if err != nil {
		return "", fmt.Errorf("encoding results: %w", err)
	}

	id := uuid.NewString()
	req, st := resp.Request, resp.Stats
	_, err = s.db.ExecContext(ctx, `INSERT INTO search_runs (
		id, created_at, role_title, location_mode, location_text, industry, recency,
		queries_issued, queries_completed, queries_failed, raw_candidates,
		after_filter, after_dedup, timed_out, duration_ms, results_json
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, s.now().UnixMilli(), req.RoleTitle, string(req.LocationMode), req.LocationText, req.Industry, string(req.Recency),
		st.QueriesIssued, st.QueriesCompleted, st.QueriesFailed, st.RawCandidates,
		st.AfterFilter, st.AfterDedup, st.TimedOut, st.Duration.Milliseconds(), string(results),
	)
	if err != nil {
		return "", fmt.Errorf("recording search run: %w", err)
	}
	return id, nil
}

const runColumns = `id, created_at, role_title, location_mode, location_text, industry, recency,
	queries_issued, queries_completed, queries_failed, raw_candidates,
	after_filter, after_dedup, timed_out, duration_ms`

// RecentRuns lists the newest runs first, without their results.
func (s *SQLiteStore) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, "SELECT "+runColumns+" FROM search_runs ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing search runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows, nil)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing search runs: %w", err)
	}
	return runs, nil
}

// GetRun loads one run including its ranked results.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (Run, error) {
	var resultsJSON string
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+", results_json FROM search_runs WHERE id = ?", id)
	r, err := scanRun(row, &resultsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrRunNotFound
	}
	if err != nil {
		return Run{}, err
	}
	if err := json.Unmarshal([]byte(resultsJSON), &r.Results); err != nil {
		return Run{}, fmt.Errorf("decoding results of run %s: %w", id, err)
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner, resultsJSON *string) (Run, error) {
	var (
		r             Run
		createdAt     int64
		mode, recency string
		timedOut      bool
	)
	dest := []any{
		&r.ID, &createdAt, &r.Request.RoleTitle, &mode, &r.Request.LocationText, &r.Request.Industry, &recency,
		&r.Stats.QueriesIssued, &r.Stats.QueriesCompleted, &r.Stats.QueriesFailed, &r.Stats.RawCandidates,
		&r.Stats.AfterFilter, &r.Stats.AfterDedup, &timedOut, &r.DurationMS,
	}
	if resultsJSON != nil {
		dest = append(dest, resultsJSON)
	}
	if err := sc.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning search run: %w", err)
	}
	r.CreatedAt = time.UnixMilli(createdAt)
	r.Request.LocationMode = model.LocationMode(mode)
	r.Request.Recency = model.Recency(recency)
	r.Stats.TimedOut = timedOut
	r.Stats.QueriesSucceeded = r.Stats.QueriesCompleted - r.Stats.QueriesFailed
	r.Stats.Duration = time.Duration(r.DurationMS) * time.Millisecond
	return r, nil
}
