package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"text/template"

	"github.com/amishk599/jobradar/internal/model"
)

// DefaultMaxJobs is how many postings a generator asks for when unset.
const DefaultMaxJobs = 5

// JobGenerator is a direct search source that asks an LLM for synthetic
// postings matching a role title. Its results go through the same filter,
// dedup and ranking as scraped ones.
type JobGenerator struct {
	provider LLMProvider
	tmpl     *template.Template
	maxJobs  int
	logger   *slog.Logger
}

// NewJobGenerator creates a generator requesting up to maxJobs postings per search.
func NewJobGenerator(provider LLMProvider, tmpl *template.Template, maxJobs int, logger *slog.Logger) *JobGenerator {
	if maxJobs <= 0 {
		maxJobs = DefaultMaxJobs
	}
	return &JobGenerator{
		provider: provider,
		tmpl:     tmpl,
		maxJobs:  maxJobs,
		logger:   logger,
	}
}

func (g *JobGenerator) Name() string { return "llm" }

// Search renders the prompt for roleTitle and maps the LLM's JSON answer to
// raw candidates. Entries without a title or link are skipped.
func (g *JobGenerator) Search(ctx context.Context, roleTitle string, recency model.Recency) ([]model.RawCandidate, error) {
	var recencyText string
	if recency != model.RecencyAny && recency != "" {
		recencyText = string(recency)
	}

	var promptBuf bytes.Buffer
	if err := g.tmpl.Execute(&promptBuf, struct {
		RoleTitle string
		Recency   string
		Count     int
	}{roleTitle, recencyText, g.maxJobs}); err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	raw, err := g.provider.Complete(ctx, promptBuf.String())
	if err != nil {
		return nil, fmt.Errorf("llm complete: %w", err)
	}

	jobs, err := parseGeneratedJobs(raw)
	if err != nil {
		return nil, fmt.Errorf("parse generated jobs: %w", err)
	}

	out := make([]model.RawCandidate, 0, min(len(jobs), g.maxJobs))
	for _, j := range jobs {
		if len(out) == g.maxJobs {
			break
		}
		title, link := strings.TrimSpace(j.Title), strings.TrimSpace(j.Link)
		if title == "" || link == "" {
			continue
		}
		out = append(out, model.RawCandidate{
			Title:        title,
			Link:         link,
			Snippet:      strings.TrimSpace(j.Snippet),
			PositionRank: len(out) + 1,
		})
	}
	g.logger.Debug("generated postings", "role", roleTitle, "count", len(out))
	return out, nil
}

type generatedJob struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// parseGeneratedJobs accepts {"jobs": [...]} or a bare array, with or
// without a markdown code fence around it.
func parseGeneratedJobs(raw string) ([]generatedJob, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "[") {
		var jobs []generatedJob
		if err := json.Unmarshal([]byte(s), &jobs); err != nil {
			return nil, fmt.Errorf("unmarshal jobs array: %w", err)
		}
		return jobs, nil
	}

	var wrapped struct {
		Jobs []generatedJob `json:"jobs"`
	}
	if err := json.Unmarshal([]byte(s), &wrapped); err != nil {
		return nil, fmt.Errorf("unmarshal jobs object: %w", err)
	}
	return wrapped.Jobs, nil
}
