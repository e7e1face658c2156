// Package query builds bounded sets of search-engine queries that target job sites.
package query

import (
	"fmt"
	"strings"

	"github.com/amishk599/jobradar/internal/model"
)

// DefaultMaxQueries caps the number of queries per search, which bounds fetch fan-out.
const DefaultMaxQueries = 15

// MaxQueriesLimit is the largest cap a caller may configure.
const MaxQueriesLimit = 50

// Site is a job-site domain used in a site: query.
type Site struct {
	Domain string
	// Broad marks general job boards. They receive industry keywords because
	// their results are otherwise too diverse.
	Broad bool
}

// DefaultSites is the ordered list of job-site domains searched.
var DefaultSites = []Site{
	{Domain: "boards.greenhouse.io"},
	{Domain: "jobs.lever.co"},
	{Domain: "myworkdayjobs.com"},
	{Domain: "jobs.ashbyhq.com"},
	{Domain: "linkedin.com/jobs", Broad: true},
	{Domain: "indeed.com", Broad: true},
	{Domain: "glassdoor.com", Broad: true},
	{Domain: "smartrecruiters.com"},
	{Domain: "bamboohr.com"},
	{Domain: "jobvite.com"},
}

// industryTermsPerQuery is how many industry keywords a broad-site query carries.
const industryTermsPerQuery = 2

// Params describes what to search for.
type Params struct {
	RoleTitle    string
	LocationMode model.LocationMode
	LocationText string
	Industry     string
}

// Builder produces query plans. The zero value is not usable; call NewBuilder.
type Builder struct {
	sites      []Site
	maxQueries int
}

// NewBuilder returns a builder over sites capped at maxQueries.
// A nil sites slice uses DefaultSites; maxQueries <= 0 uses DefaultMaxQueries.
func NewBuilder(sites []Site, maxQueries int) *Builder {
	if sites == nil {
		sites = DefaultSites
	}
	if maxQueries <= 0 {
		maxQueries = DefaultMaxQueries
	}
	return &Builder{sites: sites, maxQueries: maxQueries}
}

// MaxQueries returns the cap applied by Build.
func (b *Builder) MaxQueries() int {
	return b.maxQueries
}

// Build returns the ordered, de-duplicated, capped query list for p.
// It never fails; weak input yields weak but well-formed queries.
func (b *Builder) Build(p Params) []string {
	role := quoteRole(p.RoleTitle)
	loc := LocationClause(p.LocationMode, p.LocationText)

	var industryTerms string
	if kws := model.IndustryKeywords(p.Industry); len(kws) > 0 {
		n := min(industryTermsPerQuery, len(kws))
		industryTerms = strings.Join(kws[:n], " ")
	}

	candidates := make([]string, 0, len(b.sites)+3)
	for _, s := range b.sites {
		q := fmt.Sprintf("%s site:%s %s", role, s.Domain, loc)
		if s.Broad && industryTerms != "" {
			q += " " + industryTerms
		}
		candidates = append(candidates, q)
	}
	candidates = append(candidates,
		fmt.Sprintf(`%s %s "hiring"`, role, loc),
		fmt.Sprintf("%s %s careers", role, loc),
		fmt.Sprintf("%s jobs %s", role, loc),
	)

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, b.maxQueries)
	for _, q := range candidates {
		q = collapse(q)
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
		if len(out) == b.maxQueries {
			break
		}
	}
	return out
}

// LocationClause renders the location part of a query.
func LocationClause(mode model.LocationMode, text string) string {
	text = collapse(strings.ReplaceAll(text, `"`, ""))
	switch mode {
	case model.Remote:
		return "remote"
	case model.Hybrid:
		if text == "" {
			return "hybrid"
		}
		return fmt.Sprintf(`hybrid "%s"`, text)
	default:
		if text == "" {
			return ""
		}
		return fmt.Sprintf(`"%s"`, text)
	}
}

func quoteRole(role string) string {
	role = collapse(strings.ReplaceAll(role, `"`, ""))
	if role == "" {
		return ""
	}
	return `"` + role + `"`
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
