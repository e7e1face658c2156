// Package httpapi exposes the search pipeline over HTTP.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/search"
	"github.com/amishk599/jobradar/internal/store"
)

const (
	maxBodyBytes      = 1 << 16
	defaultRunsLimit  = 20
	maxRunsLimit      = 100
	maxRoleTitleRunes = 200
)

// Searcher runs and plans searches.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Response, error)
	Plan(req search.Request) ([]string, error)
}

// RunStore persists search runs.
type RunStore interface {
	RecordRun(ctx context.Context, resp *search.Response) (string, error)
	RecentRuns(ctx context.Context, limit int) ([]store.Run, error)
	GetRun(ctx context.Context, id string) (store.Run, error)
}

// Server holds the handler dependencies.
type Server struct {
	searcher Searcher
	runs     RunStore
	logger   *slog.Logger
}

// NewServer returns a Server. runs may be store.NopStore when history is disabled.
func NewServer(searcher Searcher, runs RunStore, logger *slog.Logger) *Server {
	return &Server{searcher: searcher, runs: runs, logger: logger}
}

var (
	vldOnce sync.Once
	vld     *validator.Validate
)

func getValidator() *validator.Validate {
	vldOnce.Do(func() { vld = validator.New() })
	return vld
}

type searchRequest struct {
	RoleTitle       string `json:"role_title" validate:"required,max=200"`
	LocationMode    string `json:"location_mode" validate:"required"`
	LocationText    string `json:"location_text" validate:"max=200"`
	Industry        string `json:"industry" validate:"max=50"`
	Recency         string `json:"recency" validate:"omitempty,oneof=any all day 24h week month"`
	Limit           int    `json:"limit" validate:"omitempty,min=1,max=500"`
	IncludeRejected bool   `json:"include_rejected"`
}

type searchResponse struct {
	RunID string `json:"run_id,omitempty"`
	*search.Response
}

// toRequest maps the wire request onto search.Request. Location mode and
// recency parse errors wrap model.ErrInvalidRequest.
func toRequest(in searchRequest) (search.Request, error) {
	mode, err := model.ParseLocationMode(in.LocationMode)
	if err != nil {
		return search.Request{}, err
	}
	recency, err := model.ParseRecency(in.Recency)
	if err != nil {
		return search.Request{}, err
	}
	return search.Request{
		RoleTitle:    in.RoleTitle,
		LocationMode: mode,
		LocationText: in.LocationText,
		Industry:     in.Industry,
		Recency:      recency,
	}, nil
}

func validationDetails(err error) map[string]string {
	details := map[string]string{}
	if ve, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range ve {
			details[strings.ToLower(fe.Field())] = fe.Tag()
		}
	}
	return details
}

// SearchHandler runs a search and records it.
func (s *Server) SearchHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var in searchRequest
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, fmt.Errorf("%w: invalid json", model.ErrInvalidRequest), nil)
			return
		}
		if err := getValidator().Struct(in); err != nil {
			writeError(w, fmt.Errorf("%w: validation failed", model.ErrInvalidRequest), validationDetails(err))
			return
		}
		req, err := toRequest(in)
		if err != nil {
			writeError(w, err, nil)
			return
		}

		resp, err := s.searcher.Search(r.Context(), req)
		if err != nil {
			writeError(w, err, nil)
			return
		}

		out := searchResponse{Response: resp}
		if id, err := s.runs.RecordRun(r.Context(), resp); err != nil {
			s.logger.Warn("recording search run failed", "error", err)
		} else {
			out.RunID = id
		}

		// Trim a copy so the recorded run keeps the full result list.
		trimmed := *resp
		if in.Limit > 0 && len(trimmed.Results) > in.Limit {
			trimmed.Results = trimmed.Results[:in.Limit]
		}
		if !in.IncludeRejected {
			trimmed.Rejected = nil
		}
		out.Response = &trimmed
		writeJSON(w, http.StatusOK, out)
	}
}

// QueriesHandler returns the query plan for the request in the URL query.
func (s *Server) QueriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		req, err := toRequest(searchRequest{
			RoleTitle:    q.Get("role_title"),
			LocationMode: q.Get("location_mode"),
			LocationText: q.Get("location_text"),
			Industry:     q.Get("industry"),
		})
		if err != nil {
			writeError(w, err, nil)
			return
		}
		queries, err := s.searcher.Plan(req)
		if err != nil {
			writeError(w, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"queries": queries})
	}
}

// RunsHandler lists recent runs, newest first.
func (s *Server) RunsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultRunsLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > maxRunsLimit {
				writeError(w, fmt.Errorf("%w: limit must be between 1 and %d", model.ErrInvalidRequest, maxRunsLimit), map[string]string{"limit": v})
				return
			}
			limit = n
		}
		runs, err := s.runs.RecentRuns(r.Context(), limit)
		if err != nil {
			writeError(w, fmt.Errorf("listing runs: %w", err), nil)
			return
		}
		if runs == nil {
			runs = []store.Run{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	}
}

// RunHandler returns one run with its results.
func (s *Server) RunHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		run, err := s.runs.GetRun(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, run)
	}
}

// IndustriesHandler lists the industry keys accepted by search requests.
func (s *Server) IndustriesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"industries": model.Industries()})
	}
}
