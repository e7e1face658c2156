package model

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// LocationMode is where the work happens.
type LocationMode string

const (
	Remote LocationMode = "Remote"
	Onsite LocationMode = "Onsite"
	Hybrid LocationMode = "Hybrid"
)

// ParseLocationMode accepts any casing of remote, onsite (or on-site) and hybrid.
func ParseLocationMode(s string) (LocationMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "remote":
		return Remote, nil
	case "onsite", "on-site":
		return Onsite, nil
	case "hybrid":
		return Hybrid, nil
	default:
		return "", fmt.Errorf("%w: unknown location mode %q", ErrInvalidRequest, s)
	}
}

// Recency constrains how recently a result must have been published.
type Recency string

const (
	RecencyAny   Recency = "any"
	RecencyDay   Recency = "day"
	RecencyWeek  Recency = "week"
	RecencyMonth Recency = "month"
)

// ParseRecency maps "", "any", "day", "week" and "month" to a Recency.
func ParseRecency(s string) (Recency, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any", "all":
		return RecencyAny, nil
	case "day", "24h":
		return RecencyDay, nil
	case "week":
		return RecencyWeek, nil
	case "month":
		return RecencyMonth, nil
	default:
		return "", fmt.Errorf("%w: unknown recency %q", ErrInvalidRequest, s)
	}
}

// RawCandidate is one search result as returned by a provider, before it has
// been classified. Providers fill Title, Link, Snippet and PositionRank; the
// fetcher stamps the rest.
type RawCandidate struct {
	Title        string    `json:"title"`
	Link         string    `json:"link"`
	Snippet      string    `json:"snippet"`
	PositionRank int       `json:"position_rank,omitempty"` // 1-based, 0 when unknown
	OriginQuery  string    `json:"origin_query,omitempty"`
	Provider     string    `json:"provider,omitempty"`
	RetrievedAt  time.Time `json:"retrieved_at"`
}

// JobCandidate is an accepted, classified reference to a job posting.
// Values are never modified after the filter builds them.
type JobCandidate struct {
	Title        string    `json:"title"`
	Link         string    `json:"link"`
	Snippet      string    `json:"snippet"`
	Source       Source    `json:"source"`
	RetrievedAt  time.Time `json:"retrieved_at"`
	OriginQuery  string    `json:"origin_query"`
	Provider     string    `json:"provider"`
	PositionRank int       `json:"position_rank,omitempty"`
}

// SearchProvider runs one query against an external search collaborator.
type SearchProvider interface {
	Name() string
	Search(ctx context.Context, query string, recency Recency) ([]RawCandidate, error)
}

// SeenStore tracks which postings have already been reported.
type SeenStore interface {
	HasSeen(key string) (bool, error)
	MarkSeen(key string) error
	Cleanup(olderThan time.Duration) error
	IsEmpty() (bool, error)
}

// Notifier sends notifications for new postings.
type Notifier interface {
	Notify(jobs []JobCandidate) error
}

// companySeparators are tried in order; the text after the first one present
// in a title names the company.
var companySeparators = []string{" at ", " - ", " | "}

// Company returns the company named at the end of the title, or "" when the
// title has no separator.
func (c JobCandidate) Company() string {
	for _, sep := range companySeparators {
		if strings.Contains(c.Title, sep) {
			segs := strings.Split(c.Title, sep)
			return strings.TrimSpace(segs[len(segs)-1])
		}
	}
	return ""
}
