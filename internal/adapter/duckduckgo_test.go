package adapter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amishk599/jobradar/internal/model"
)

const ddgPage = `<html><body>
<div class="result results_links web-result">
  <h2 class="result__title"><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fboards.greenhouse.io%2Facme%2Fjobs%2F123&amp;rut=abc">Senior DevOps Engineer - Acme</a></h2>
  <a class="result__snippet">Acme is hiring a &amp; remote DevOps engineer.</a>
</div>
<div class="result result--ad">
  <h2 class="result__title"><a class="result__a" href="https://ads.example.com">Sponsored</a></h2>
</div>
<div class="result">
  <h2 class="result__title"><a class="result__a" href="https://jobs.lever.co/foo/1">DevOps Engineer</a></h2>
</div>
<div class="result">
  <h2 class="result__title"><a class="result__a" href="/relative">Broken</a></h2>
</div>
</body></html>`

func newDuckDuckGoTestProvider(srv *httptest.Server) *DuckDuckGoProvider {
	return &DuckDuckGoProvider{
		baseURL: srv.URL + "/html/",
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

func TestDuckDuckGoProvider_Search_Success(t *testing.T) {
	var gotQuery, gotDF, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotDF = r.URL.Query().Get("df")
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte(ddgPage))
	}))
	defer srv.Close()

	p := newDuckDuckGoTestProvider(srv)
	results, err := p.Search(context.Background(), `"DevOps Engineer" remote`, model.RecencyWeek)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery != `"DevOps Engineer" remote` || gotDF != "w" {
		t.Errorf("q=%q df=%q", gotQuery, gotDF)
	}
	if gotUA == "" {
		t.Error("expected a User-Agent header")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	r := results[0]
	if r.Title != "Senior DevOps Engineer - Acme" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Link != "https://boards.greenhouse.io/acme/jobs/123" {
		t.Errorf("link = %q", r.Link)
	}
	if r.Snippet != "Acme is hiring a & remote DevOps engineer." {
		t.Errorf("snippet = %q", r.Snippet)
	}
	if r.PositionRank != 1 || results[1].PositionRank != 2 {
		t.Errorf("ranks = %d, %d", r.PositionRank, results[1].PositionRank)
	}
}

func TestDuckDuckGoProvider_Search_AnyRecencyOmitsFilter(t *testing.T) {
	var hasDF bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDF = r.URL.Query()["df"]
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	results, err := newDuckDuckGoTestProvider(srv).Search(context.Background(), "q", model.RecencyAny)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasDF {
		t.Error("df should be omitted for any recency")
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestDuckDuckGoProvider_Search_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newDuckDuckGoTestProvider(srv).Search(context.Background(), "q", model.RecencyAny)
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("expected *model.HTTPError, got %T: %v", err, err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests || httpErr.RetryAfter != 30*time.Second {
		t.Errorf("got status %d retry-after %v", httpErr.StatusCode, httpErr.RetryAfter)
	}
}

func TestDDGUnwrapURL(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fjob&rut=x", "https://example.com/job"},
		{"https://example.com/direct", "https://example.com/direct"},
		{"/relative/path", ""},
	}
	for _, tt := range tests {
		if got := ddgUnwrapURL(tt.href); got != tt.want {
			t.Errorf("ddgUnwrapURL(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
