package query

import (
	"strings"
	"testing"

	"github.com/amishk599/jobradar/internal/model"
)

func TestBuild_RemoteEveryQueryMentionsRemote(t *testing.T) {
	b := NewBuilder(nil, 15)
	queries := b.Build(Params{RoleTitle: "DevOps Engineer", LocationMode: model.Remote})

	if len(queries) == 0 {
		t.Fatal("expected queries")
	}
	if len(queries) > 15 {
		t.Errorf("got %d queries, want <= 15", len(queries))
	}
	for _, q := range queries {
		if !strings.Contains(q, "remote") {
			t.Errorf("query %q does not mention remote", q)
		}
		if !strings.Contains(q, `"DevOps Engineer"`) {
			t.Errorf("query %q does not quote the role", q)
		}
	}
}

func TestBuild_CapIsEnforced(t *testing.T) {
	b := NewBuilder(nil, 4)
	queries := b.Build(Params{RoleTitle: "Data Analyst", LocationMode: model.Onsite, LocationText: "New York"})
	if len(queries) != 4 {
		t.Fatalf("got %d queries, want 4", len(queries))
	}
	if queries[0] != `"Data Analyst" site:boards.greenhouse.io "New York"` {
		t.Errorf("first query = %q", queries[0])
	}
}

func TestBuild_NoDuplicates(t *testing.T) {
	sites := []Site{{Domain: "a.com"}, {Domain: "a.com"}, {Domain: "b.com"}}
	queries := NewBuilder(sites, 50).Build(Params{RoleTitle: "Go Developer", LocationMode: model.Remote})

	seen := map[string]bool{}
	for _, q := range queries {
		if seen[q] {
			t.Errorf("duplicate query %q", q)
		}
		seen[q] = true
	}
	// 2 unique sites + 3 fallbacks
	if len(queries) != 5 {
		t.Errorf("got %d queries, want 5", len(queries))
	}
}

func TestBuild_IndustryOnlyOnBroadSites(t *testing.T) {
	b := NewBuilder(nil, 50)
	queries := b.Build(Params{RoleTitle: "Analyst", LocationMode: model.Remote, Industry: "finance"})

	for _, q := range queries {
		hasTerms := strings.Contains(q, "fintech banking")
		broad := strings.Contains(q, "site:linkedin.com/jobs") ||
			strings.Contains(q, "site:indeed.com") ||
			strings.Contains(q, "site:glassdoor.com")
		if broad != hasTerms {
			t.Errorf("query %q: broad=%v industry terms=%v", q, broad, hasTerms)
		}
	}
}

func TestBuild_EmptyInputsStillValid(t *testing.T) {
	queries := NewBuilder(nil, 0).Build(Params{})
	if len(queries) == 0 || len(queries) > DefaultMaxQueries {
		t.Fatalf("got %d queries", len(queries))
	}
	for _, q := range queries {
		if strings.Contains(q, `""`) {
			t.Errorf("query %q contains empty quotes", q)
		}
		if q != strings.TrimSpace(q) || strings.Contains(q, "  ") {
			t.Errorf("query %q has stray whitespace", q)
		}
	}
}

func TestLocationClause(t *testing.T) {
	tests := []struct {
		mode model.LocationMode
		text string
		want string
	}{
		{model.Remote, "Berlin", "remote"},
		{model.Onsite, "New York", `"New York"`},
		{model.Onsite, "", ""},
		{model.Hybrid, " Austin,  TX ", `hybrid "Austin, TX"`},
		{model.Hybrid, "", "hybrid"},
	}
	for _, tt := range tests {
		if got := LocationClause(tt.mode, tt.text); got != tt.want {
			t.Errorf("LocationClause(%s, %q) = %q, want %q", tt.mode, tt.text, got, tt.want)
		}
	}
}
