package rank

import (
	"strings"
	"testing"

	"github.com/amishk599/jobradar/internal/model"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name string
		c    model.JobCandidate
		q    Query
		want int
	}{
		{
			name: "full role match in title",
			c:    model.JobCandidate{Title: "Senior Data Analyst", Source: model.SourceGreenhouse},
			q:    Query{RoleTitle: "Data Analyst"},
			// 30 full + 10 data + 10 analyst + 10 greenhouse
			want: 60,
		},
		{
			name: "words found only in snippet",
			c:    model.JobCandidate{Title: "Opening on our team", Snippet: "looking for a data analyst", Source: model.SourceIndeed},
			q:    Query{RoleTitle: "Data Analyst"},
			want: 4 + 4 + 5,
		},
		{
			name: "short role words ignored",
			c:    model.JobCandidate{Title: "UX Designer role", Source: model.SourceUnknown},
			q:    Query{RoleTitle: "UX Lead"},
			// ux is too short to count and lead is absent
			want: 2,
		},
		{
			name: "industry keywords counted once each",
			c:    model.JobCandidate{Title: "Payments Engineer", Snippet: "fintech payments startup", Source: model.SourceLever},
			q:    Query{RoleTitle: "Engineer", Industry: "Finance"},
			// 30 full + 10 engineer + 9 lever + 3 fintech + 3 payments
			want: 55,
		},
		{
			name: "unlisted source gets unknown bonus",
			c:    model.JobCandidate{Title: "Nothing relevant", Source: model.Source("Elsewhere")},
			q:    Query{RoleTitle: "Pilot"},
			want: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Score(tt.c, tt.q); got != tt.want {
				t.Errorf("Score() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScore_LongTitlePenalty(t *testing.T) {
	q := Query{RoleTitle: "Zookeeper"}
	short := model.JobCandidate{Title: strings.Repeat("x", 100), Source: model.SourceGreenhouse}
	long := model.JobCandidate{Title: strings.Repeat("x", 101), Source: model.SourceGreenhouse}
	if got := Score(short, q); got != 10 {
		t.Errorf("100 rune title score = %d, want 10", got)
	}
	if got := Score(long, q); got != 4 {
		t.Errorf("101 rune title score = %d, want 4", got)
	}
}

func TestScore_NeverNegative(t *testing.T) {
	c := model.JobCandidate{Title: strings.Repeat("y", 120), Source: model.SourceUnknown}
	if got := Score(c, Query{RoleTitle: "Zookeeper"}); got != 0 {
		t.Errorf("Score() = %d, want 0", got)
	}
}

func TestScore_MonotonicInMatchedWords(t *testing.T) {
	q := Query{RoleTitle: "Senior Backend Engineer"}
	base := model.JobCandidate{Title: "Senior Developer", Source: model.SourceLever}
	more := model.JobCandidate{Title: "Senior Backend Developer", Source: model.SourceLever}
	if Score(more, q) <= Score(base, q) {
		t.Errorf("adding a matching word did not raise the score: %d <= %d", Score(more, q), Score(base, q))
	}
}

func TestRank_SortsDescendingAndStable(t *testing.T) {
	q := Query{RoleTitle: "Data Analyst"}
	in := []model.JobCandidate{
		{Title: "Unrelated opening one", Link: "1", Source: model.SourceUnknown},
		{Title: "Data Analyst", Link: "2", Source: model.SourceGreenhouse},
		{Title: "Unrelated opening two", Link: "3", Source: model.SourceUnknown},
		{Title: "Analyst, Marketing", Link: "4", Source: model.SourceIndeed},
	}
	out := Rank(in, q)
	wantLinks := []string{"2", "4", "1", "3"}
	for i, link := range wantLinks {
		if out[i].Candidate.Link != link {
			t.Errorf("out[%d] = %q, want %q", i, out[i].Candidate.Link, link)
		}
	}
	for i := 1; i < len(out); i++ {
		if out[i].Score > out[i-1].Score {
			t.Errorf("scores not descending at %d", i)
		}
	}
}
