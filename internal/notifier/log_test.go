package notifier

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/amishk599/jobradar/internal/model"
)

func TestLogNotifier_Notify_zeroJobs(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))
	if err := n.Notify(nil); err != nil {
		t.Errorf("Notify(nil) = %v, want nil", err)
	}
	if err := n.Notify([]model.JobCandidate{}); err != nil {
		t.Errorf("Notify([]) = %v, want nil", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestLogNotifier_Notify_multipleJobs(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)))
	jobs := []model.JobCandidate{
		sampleJob("Data Analyst at Acme"),
		{Title: "Platform Engineer", Link: "https://example.com/2", Source: model.SourceUnknown},
	}
	if err := n.Notify(jobs); err != nil {
		t.Fatalf("Notify(jobs) = %v, want nil", err)
	}

	out := buf.String()
	if got := strings.Count(out, `msg="new job"`); got != 2 {
		t.Errorf("logged %d jobs, want 2", got)
	}
	if !strings.Contains(out, "company=Acme") {
		t.Errorf("output missing company: %q", out)
	}
	if !strings.Contains(out, "source=Greenhouse") {
		t.Errorf("output missing source: %q", out)
	}
}
