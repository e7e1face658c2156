// Package rank scores candidates against a search and orders them.
package rank

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/amishk599/jobradar/internal/model"
)

const (
	fullRoleBonus      = 30
	wordInTitleBonus   = 10
	wordInSnippetBonus = 4
	industryBonus      = 3
	longTitlePenalty   = 6

	minRoleWordLength = 3
	longTitleLength   = 100
)

// Scored is a candidate with its relevance score.
type Scored struct {
	Candidate model.JobCandidate `json:"candidate"`
	Score     int                `json:"score"`
}

// Query is what candidates are scored against.
type Query struct {
	RoleTitle string
	Industry  string
}

// Score returns the relevance of c for q. It is never negative.
func Score(c model.JobCandidate, q Query) int {
	title := strings.ToLower(c.Title)
	snippet := strings.ToLower(c.Snippet)
	role := strings.ToLower(strings.TrimSpace(q.RoleTitle))

	score := 0
	if role != "" && strings.Contains(title, role) {
		score += fullRoleBonus
	}
	for _, w := range strings.Fields(role) {
		if utf8.RuneCountInString(w) < minRoleWordLength {
			continue
		}
		switch {
		case strings.Contains(title, w):
			score += wordInTitleBonus
		case strings.Contains(snippet, w):
			score += wordInSnippetBonus
		}
	}

	score += model.SourceQualityBonus(c.Source)

	for _, kw := range model.IndustryKeywords(q.Industry) {
		if strings.Contains(title, kw) || strings.Contains(snippet, kw) {
			score += industryBonus
		}
	}

	if utf8.RuneCountInString(c.Title) > longTitleLength {
		score -= longTitlePenalty
	}
	return max(score, 0)
}

// Rank scores candidates and sorts them by descending score. Equal scores keep
// their input order.
func Rank(candidates []model.JobCandidate, q Query) []Scored {
	out := make([]Scored, len(candidates))
	for i, c := range candidates {
		out[i] = Scored{Candidate: c, Score: Score(c, q)}
	}
	slices.SortStableFunc(out, func(a, b Scored) int {
		return b.Score - a.Score
	})
	return out
}
