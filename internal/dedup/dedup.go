// Package dedup collapses candidates that describe the same posting.
package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/amishk599/jobradar/internal/model"
)

const (
	titleKeyLength   = 50
	companyKeyLength = 30
)

var (
	nonWord    = regexp.MustCompile(`[^\w\s]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Key returns the equivalence key of c. Candidates with equal keys are
// considered the same posting regardless of where they were found.
func Key(c model.JobCandidate) string {
	company := cut(strings.ToLower(c.Company()), companyKeyLength)
	sum := sha256.Sum256([]byte(normalizeTitle(c.Title) + "|" + company))
	return hex.EncodeToString(sum[:])
}

func normalizeTitle(title string) string {
	t := strings.ToLower(title)
	t = nonWord.ReplaceAllString(t, "")
	t = strings.TrimSpace(whitespace.ReplaceAllString(t, " "))
	return cut(t, titleKeyLength)
}

func cut(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Deduplicate returns one candidate per key. On collision the candidate whose
// source has the higher priority is kept; on a tie the first one seen stays.
// Output follows the order in which keys were first seen. Applying it to its
// own output returns the same list.
func Deduplicate(candidates []model.JobCandidate) []model.JobCandidate {
	index := make(map[string]int, len(candidates))
	out := make([]model.JobCandidate, 0, len(candidates))
	for _, c := range candidates {
		k := Key(c)
		i, ok := index[k]
		if !ok {
			index[k] = len(out)
			out = append(out, c)
			continue
		}
		if model.SourcePriority(c.Source) > model.SourcePriority(out[i].Source) {
			out[i] = c
		}
	}
	return out
}
