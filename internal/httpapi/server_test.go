package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/amishk599/jobradar/internal/filter"
	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/rank"
	"github.com/amishk599/jobradar/internal/search"
	"github.com/amishk599/jobradar/internal/store"
)

type fakeSearcher struct {
	calls int
	resp  *search.Response
}

func (f *fakeSearcher) Search(_ context.Context, req search.Request) (*search.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	f.calls++
	resp := *f.resp
	resp.Request = req
	return &resp, nil
}

func (f *fakeSearcher) Plan(req search.Request) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return []string{`"` + req.RoleTitle + `" remote`}, nil
}

type fakeRuns struct {
	recorded []*search.Response
	runs     []store.Run
}

func (f *fakeRuns) RecordRun(_ context.Context, resp *search.Response) (string, error) {
	f.recorded = append(f.recorded, resp)
	return "run-1", nil
}

func (f *fakeRuns) RecentRuns(_ context.Context, limit int) ([]store.Run, error) {
	if limit < len(f.runs) {
		return f.runs[:limit], nil
	}
	return f.runs, nil
}

func (f *fakeRuns) GetRun(_ context.Context, id string) (store.Run, error) {
	for _, r := range f.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return store.Run{}, store.ErrRunNotFound
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func cannedResponse() *search.Response {
	return &search.Response{
		Queries: []string{`"Data Analyst" site:boards.greenhouse.io remote`},
		Results: []rank.Scored{
			{Score: 44, Candidate: model.JobCandidate{Title: "Data Analyst at Acme", Link: "https://boards.greenhouse.io/acme/1", Source: model.SourceGreenhouse}},
			{Score: 30, Candidate: model.JobCandidate{Title: "Data Analyst II at Beta", Link: "https://jobs.lever.co/beta/2", Source: model.SourceLever}},
		},
		Rejected: []filter.Rejection{{Candidate: model.RawCandidate{Title: "Short"}, Reason: filter.ReasonTitleLength}},
		Stats:    search.Stats{QueriesIssued: 1, QueriesCompleted: 1, QueriesSucceeded: 1, RawCandidates: 3, AfterFilter: 2, AfterDedup: 2},
	}
}

func newTestRouter(s *fakeSearcher, runs *fakeRuns) http.Handler {
	return NewRouter(NewServer(s, runs, discardLogger()), RouterOptions{RateLimitPerMin: 100, RequestTimeout: time.Minute})
}

func postSearch(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/v1/search", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, r)
	return rw
}

func decodeError(t *testing.T, rw *httptest.ResponseRecorder) apiError {
	t.Helper()
	var env errorEnvelope
	if err := json.NewDecoder(rw.Body).Decode(&env); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return env.Error
}

func TestSearch_OK(t *testing.T) {
	s := &fakeSearcher{resp: cannedResponse()}
	runs := &fakeRuns{}
	rw := postSearch(t, newTestRouter(s, runs), `{"role_title":"Data Analyst","location_mode":"remote","recency":"week"}`)

	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rw.Code, rw.Body.String())
	}
	var out struct {
		RunID    string             `json:"run_id"`
		Results  []rank.Scored      `json:"results"`
		Rejected []filter.Rejection `json:"rejected"`
		Stats    search.Stats       `json:"stats"`
		Request  search.Request     `json:"request"`
	}
	if err := json.NewDecoder(rw.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.RunID != "run-1" {
		t.Errorf("run_id = %q", out.RunID)
	}
	if len(out.Results) != 2 || out.Results[0].Score != 44 {
		t.Errorf("results = %+v", out.Results)
	}
	if out.Rejected != nil {
		t.Errorf("rejected should be omitted unless requested, got %+v", out.Rejected)
	}
	if out.Stats.AfterDedup != 2 {
		t.Errorf("stats = %+v", out.Stats)
	}
	if out.Request.LocationMode != model.Remote || out.Request.Recency != model.RecencyWeek {
		t.Errorf("request = %+v", out.Request)
	}
	if len(runs.recorded) != 1 {
		t.Errorf("recorded runs = %d, want 1", len(runs.recorded))
	}
}

func TestSearch_LimitAndRejected(t *testing.T) {
	s := &fakeSearcher{resp: cannedResponse()}
	runs := &fakeRuns{}
	rw := postSearch(t, newTestRouter(s, runs), `{"role_title":"Data Analyst","location_mode":"Remote","limit":1,"include_rejected":true}`)

	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rw.Code, rw.Body.String())
	}
	var out search.Response
	if err := json.NewDecoder(rw.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Results) != 1 || len(out.Rejected) != 1 {
		t.Errorf("got %d results, %d rejected; want 1, 1", len(out.Results), len(out.Rejected))
	}
	if got := len(runs.recorded[0].Results); got != 2 {
		t.Errorf("recorded run has %d results, want all 2", got)
	}
}

func TestSearch_OnsiteWithoutLocation(t *testing.T) {
	s := &fakeSearcher{resp: cannedResponse()}
	rw := postSearch(t, newTestRouter(s, &fakeRuns{}), `{"role_title":"Data Analyst","location_mode":"onsite"}`)

	if rw.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rw.Code)
	}
	if e := decodeError(t, rw); e.Code != "INVALID_ARGUMENT" || !strings.Contains(e.Message, "location") {
		t.Errorf("error = %+v", e)
	}
	if s.calls != 0 {
		t.Errorf("searcher ran %d times, want 0", s.calls)
	}
}

func TestSearch_ValidationErrors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantDetail string
	}{
		{"invalid json", `{"role_title":`, ""},
		{"missing role", `{"location_mode":"remote"}`, "roletitle"},
		{"missing mode", `{"role_title":"Data Analyst"}`, "locationmode"},
		{"bad recency", `{"role_title":"Data Analyst","location_mode":"remote","recency":"year"}`, "recency"},
		{"unknown mode", `{"role_title":"Data Analyst","location_mode":"moon"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rw := postSearch(t, newTestRouter(&fakeSearcher{resp: cannedResponse()}, &fakeRuns{}), tt.body)
			if rw.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rw.Code)
			}
			e := decodeError(t, rw)
			if tt.wantDetail == "" {
				return
			}
			details, _ := e.Details.(map[string]any)
			if _, ok := details[tt.wantDetail]; !ok {
				t.Errorf("details = %v, want key %q", e.Details, tt.wantDetail)
			}
		})
	}
}

func TestQueries(t *testing.T) {
	h := newTestRouter(&fakeSearcher{resp: cannedResponse()}, &fakeRuns{})

	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/v1/queries?role_title=Data+Analyst&location_mode=remote", nil))
	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rw.Code, rw.Body.String())
	}
	var out struct{ Queries []string }
	if err := json.NewDecoder(rw.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Queries) != 1 || out.Queries[0] != `"Data Analyst" remote` {
		t.Errorf("queries = %v", out.Queries)
	}

	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/v1/queries?role_title=Data+Analyst&location_mode=hybrid", nil))
	if rw.Code != http.StatusBadRequest {
		t.Errorf("hybrid without location: status = %d, want 400", rw.Code)
	}
}

func TestRuns(t *testing.T) {
	runs := &fakeRuns{runs: []store.Run{{ID: "b"}, {ID: "a"}}}
	h := newTestRouter(&fakeSearcher{resp: cannedResponse()}, runs)

	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/v1/runs?limit=1", nil))
	if rw.Code != http.StatusOK {
		t.Fatalf("status = %d", rw.Code)
	}
	var out struct{ Runs []store.Run }
	if err := json.NewDecoder(rw.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.Runs) != 1 || out.Runs[0].ID != "b" {
		t.Errorf("runs = %+v", out.Runs)
	}

	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/v1/runs?limit=0", nil))
	if rw.Code != http.StatusBadRequest {
		t.Errorf("limit=0: status = %d, want 400", rw.Code)
	}

	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/v1/runs/a", nil))
	if rw.Code != http.StatusOK {
		t.Errorf("GET /v1/runs/a: status = %d", rw.Code)
	}

	rw = httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "/v1/runs/missing", nil))
	if rw.Code != http.StatusNotFound {
		t.Errorf("GET /v1/runs/missing: status = %d, want 404", rw.Code)
	}
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(&fakeSearcher{resp: cannedResponse()}, &fakeRuns{})

	for _, path := range []string{"/healthz", "/metrics", "/v1/industries"} {
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, path, nil))
		if rw.Code != http.StatusOK {
			t.Errorf("GET %s: status = %d, want 200", path, rw.Code)
		}
	}
}

func TestSearch_RateLimited(t *testing.T) {
	h := NewRouter(NewServer(&fakeSearcher{resp: cannedResponse()}, &fakeRuns{}, discardLogger()), RouterOptions{RateLimitPerMin: 1})
	body := `{"role_title":"Data Analyst","location_mode":"remote"}`

	first := postSearch(t, h, body)
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d", first.Code)
	}
	second := postSearch(t, h, body)
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", second.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(&fakeSearcher{resp: cannedResponse()}, &fakeRuns{})
	r := httptest.NewRequest(http.MethodOptions, "/v1/search", bytes.NewReader(nil))
	r.Header.Set("Origin", "https://example.com")
	r.Header.Set("Access-Control-Request-Method", "POST")
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, r)
	if got := rw.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}
