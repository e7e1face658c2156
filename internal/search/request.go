package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/amishk599/jobradar/internal/filter"
	"github.com/amishk599/jobradar/internal/model"
	"github.com/amishk599/jobradar/internal/query"
	"github.com/amishk599/jobradar/internal/rank"
)

// Request describes one search.
type Request struct {
	RoleTitle    string             `json:"role_title" yaml:"role_title"`
	LocationMode model.LocationMode `json:"location_mode" yaml:"location_mode"`
	LocationText string             `json:"location_text,omitempty" yaml:"location_text"`
	Industry     string             `json:"industry,omitempty" yaml:"industry"`
	Recency      model.Recency      `json:"recency,omitempty" yaml:"recency"`
}

// Validate reports caller input errors. All returned errors wrap
// model.ErrInvalidRequest.
func (r Request) Validate() error {
	if strings.TrimSpace(r.RoleTitle) == "" {
		return model.ErrRoleRequired
	}
	switch r.LocationMode {
	case model.Remote:
	case model.Onsite, model.Hybrid:
		if strings.TrimSpace(r.LocationText) == "" {
			return model.ErrLocationRequired
		}
	default:
		return fmt.Errorf("%w: unknown location mode %q", model.ErrInvalidRequest, r.LocationMode)
	}
	switch r.Recency {
	case "", model.RecencyAny, model.RecencyDay, model.RecencyWeek, model.RecencyMonth:
	default:
		return fmt.Errorf("%w: unknown recency %q", model.ErrInvalidRequest, r.Recency)
	}
	if r.Industry != "" && model.IndustryKeywords(r.Industry) == nil {
		return fmt.Errorf("%w: unknown industry %q", model.ErrInvalidRequest, r.Industry)
	}
	return nil
}

func (r Request) normalized() Request {
	r.RoleTitle = strings.TrimSpace(r.RoleTitle)
	r.LocationText = strings.TrimSpace(r.LocationText)
	r.Industry = strings.ToLower(strings.TrimSpace(r.Industry))
	if r.Recency == "" {
		r.Recency = model.RecencyAny
	}
	return r
}

func (r Request) queryParams() query.Params {
	return query.Params{
		RoleTitle:    r.RoleTitle,
		LocationMode: r.LocationMode,
		LocationText: r.LocationText,
		Industry:     r.Industry,
	}
}

// Stats are the diagnostic counters of one search. QueriesCompleted is below
// QueriesIssued only when the batch timed out.
type Stats struct {
	QueriesIssued    int           `json:"queries_issued"`
	QueriesCompleted int           `json:"queries_completed"`
	QueriesSucceeded int           `json:"queries_succeeded"`
	QueriesFailed    int           `json:"queries_failed"`
	RawCandidates    int           `json:"raw_candidates"`
	AfterFilter      int           `json:"after_filter"`
	AfterDedup       int           `json:"after_dedup"`
	TimedOut         bool          `json:"timed_out"`
	Duration         time.Duration `json:"-"`
}

// Response is the outcome of one search. An empty Results slice means no
// matching postings were found.
type Response struct {
	Request  Request            `json:"request"`
	Queries  []string           `json:"queries"`
	Results  []rank.Scored      `json:"results"`
	Rejected []filter.Rejection `json:"rejected,omitempty"`
	Stats    Stats              `json:"stats"`
}

// Candidates returns the ranked candidates without scores.
func (r *Response) Candidates() []model.JobCandidate {
	out := make([]model.JobCandidate, len(r.Results))
	for i, s := range r.Results {
		out[i] = s.Candidate
	}
	return out
}
