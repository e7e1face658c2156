// Package filter decides which raw search results are job postings.
package filter

import (
	"strings"
	"unicode/utf8"

	"github.com/amishk599/jobradar/internal/model"
)

// Reason explains why a raw candidate was rejected.
type Reason string

const (
	ReasonBadScheme     Reason = "bad_scheme"
	ReasonTitleLength   Reason = "title_length"
	ReasonSpam          Reason = "spam"
	ReasonNotJobRelated Reason = "not_job_related"
)

const (
	MinTitleLength = 10
	MaxTitleLength = 150

	// DefaultSnippetLength is the rune count kept before a snippet is truncated.
	DefaultSnippetLength = 400
)

// DefaultSpamPhrases are matched case-insensitively against titles.
var DefaultSpamPhrases = []string{
	"free",
	"easy money",
	"make money",
	"get rich",
	"click here",
	"work from home!!",
	"no experience needed!",
	"$$$",
}

// jobIndicators signal a job posting in a title. Only the first
// snippetIndicators entries are checked against snippets.
var jobIndicators = []string{
	"job", "career", "position", "hiring",
	"vacancy", "employment", "opportunity", "apply", "recruit", "opening",
}

const snippetIndicators = 4

// Rejection records a raw candidate that did not pass and why.
type Rejection struct {
	Candidate model.RawCandidate `json:"candidate"`
	Reason    Reason             `json:"reason"`
}

// Options tune the filter. The zero value uses the defaults.
type Options struct {
	ExtraSpamPhrases []string
	SnippetLength    int
}

// ResultFilter accepts or rejects raw candidates. It holds no mutable state
// and is safe for concurrent use.
type ResultFilter struct {
	spam       []string
	snippetLen int
}

// New returns a ResultFilter with the default deny-list plus opts.ExtraSpamPhrases.
func New(opts Options) *ResultFilter {
	spam := make([]string, 0, len(DefaultSpamPhrases)+len(opts.ExtraSpamPhrases))
	for _, p := range DefaultSpamPhrases {
		spam = append(spam, strings.ToLower(p))
	}
	for _, p := range opts.ExtraSpamPhrases {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			spam = append(spam, p)
		}
	}
	n := opts.SnippetLength
	if n <= 0 {
		n = DefaultSnippetLength
	}
	return &ResultFilter{spam: spam, snippetLen: n}
}

// Evaluate applies the policy to raw. On acceptance it returns the classified
// candidate and an empty Reason.
func (f *ResultFilter) Evaluate(raw model.RawCandidate) (model.JobCandidate, Reason) {
	link := strings.TrimSpace(raw.Link)
	if !strings.HasPrefix(strings.ToLower(link), "http") {
		return model.JobCandidate{}, ReasonBadScheme
	}

	title := strings.TrimSpace(raw.Title)
	if n := utf8.RuneCountInString(title); n < MinTitleLength || n > MaxTitleLength {
		return model.JobCandidate{}, ReasonTitleLength
	}

	titleLower := strings.ToLower(title)
	for _, p := range f.spam {
		if strings.Contains(titleLower, p) {
			return model.JobCandidate{}, ReasonSpam
		}
	}

	if !isJobRelated(link, titleLower, strings.ToLower(raw.Snippet)) {
		return model.JobCandidate{}, ReasonNotJobRelated
	}

	return model.JobCandidate{
		Title:        title,
		Link:         link,
		Snippet:      truncate(strings.TrimSpace(raw.Snippet), f.snippetLen),
		Source:       model.ClassifyLink(link),
		RetrievedAt:  raw.RetrievedAt,
		OriginQuery:  raw.OriginQuery,
		Provider:     raw.Provider,
		PositionRank: raw.PositionRank,
	}, ""
}

// Partition splits raws into accepted candidates and rejections, preserving order.
func (f *ResultFilter) Partition(raws []model.RawCandidate) ([]model.JobCandidate, []Rejection) {
	var accepted []model.JobCandidate
	var rejected []Rejection
	for _, raw := range raws {
		c, reason := f.Evaluate(raw)
		if reason != "" {
			rejected = append(rejected, Rejection{Candidate: raw, Reason: reason})
			continue
		}
		accepted = append(accepted, c)
	}
	return accepted, rejected
}

func isJobRelated(link, titleLower, snippetLower string) bool {
	if model.IsJobSite(link) {
		return true
	}
	for _, ind := range jobIndicators {
		if strings.Contains(titleLower, ind) {
			return true
		}
	}
	for _, ind := range jobIndicators[:snippetIndicators] {
		if strings.Contains(snippetLower, ind) {
			return true
		}
	}
	return false
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
