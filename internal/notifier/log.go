package notifier

import (
	"log/slog"

	"github.com/amishk599/jobradar/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes new postings to the given logger as structured messages.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each posting via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify logs each posting with title, source, link and the query that found it.
// Returns nil (stdout logging does not fail).
func (n *LogNotifier) Notify(jobs []model.JobCandidate) error {
	for _, j := range jobs {
		args := []any{"title", j.Title, "source", j.Source, "link", j.Link, "provider", j.Provider}
		if company := j.Company(); company != "" {
			args = append(args, "company", company)
		}
		if j.OriginQuery != "" {
			args = append(args, "query", j.OriginQuery)
		}
		n.logger.Info("new job", args...)
	}
	return nil
}
