package model

import (
	"slices"
	"strings"
)

// industryKeywords maps an industry key to the terms used to bias queries and scoring.
var industryKeywords = map[string][]string{
	"technology":    {"software", "saas", "cloud", "platform", "engineering"},
	"finance":       {"fintech", "banking", "investment", "trading", "payments"},
	"healthcare":    {"health", "clinical", "medical", "patient", "biotech"},
	"education":     {"edtech", "learning", "university", "curriculum", "school"},
	"retail":        {"ecommerce", "retail", "merchandising", "consumer", "store"},
	"manufacturing": {"manufacturing", "supply chain", "industrial", "production", "logistics"},
	"marketing":     {"marketing", "advertising", "brand", "growth", "campaign"},
	"consulting":    {"consulting", "advisory", "client", "strategy", "professional services"},
	"government":    {"government", "public sector", "federal", "agency", "policy"},
	"nonprofit":     {"nonprofit", "foundation", "mission", "community", "charity"},
	"energy":        {"energy", "renewable", "utilities", "oil", "solar"},
	"media":         {"media", "content", "publishing", "streaming", "entertainment"},
}

// IndustryKeywords returns the keywords for industry, or nil if unknown.
// Lookup is case-insensitive.
func IndustryKeywords(industry string) []string {
	return industryKeywords[strings.ToLower(strings.TrimSpace(industry))]
}

// Industries lists the known industry keys in sorted order.
func Industries() []string {
	out := make([]string, 0, len(industryKeywords))
	for k := range industryKeywords {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
