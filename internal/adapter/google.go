package adapter

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobradar/internal/model"
)

const googleBaseURL = "https://www.google.com/search"

// GoogleProvider scrapes Google web results. The markup changes often, so
// several snippet selectors are tried.
type GoogleProvider struct {
	baseURL string
	client  *http.Client
}

// NewGoogleProvider creates a provider using client for all requests.
func NewGoogleProvider(client *http.Client) *GoogleProvider {
	return &GoogleProvider{baseURL: googleBaseURL, client: client}
}

func (p *GoogleProvider) Name() string { return "google" }

// Search runs query and returns the organic results in page order.
func (p *GoogleProvider) Search(ctx context.Context, query string, recency model.Recency) ([]model.RawCandidate, error) {
	params := url.Values{"q": {query}, "hl": {"en"}, "num": {"20"}}
	if tbs := googleRecency(recency); tbs != "" {
		params.Set("tbs", tbs)
	}

	doc, err := fetchDocument(ctx, p.client, p.baseURL+"?"+params.Encode(), "https://www.google.com/", "google search")
	if err != nil {
		return nil, err
	}
	return parseGoogle(doc), nil
}

var googleSnippetSelectors = []string{
	`div[style*="-webkit-line-clamp"]`,
	"div.VwiC3b",
	"span.aCOpRe",
}

func parseGoogle(doc *goquery.Document) []model.RawCandidate {
	var out []model.RawCandidate
	doc.Find("div.g").Each(func(_ int, s *goquery.Selection) {
		title := extractText(s.Find("h3").First().Text())
		href, ok := s.Find("a[href]").First().Attr("href")
		if !ok || title == "" {
			return
		}
		href = googleUnwrapURL(href)
		if href == "" {
			return
		}
		var snippet string
		for _, sel := range googleSnippetSelectors {
			if snippet = extractText(s.Find(sel).First().Text()); snippet != "" {
				break
			}
		}
		out = append(out, model.RawCandidate{
			Title:        title,
			Link:         href,
			Snippet:      snippet,
			PositionRank: len(out) + 1,
		})
	})
	return out
}

// googleUnwrapURL resolves /url?q=<target> redirects and drops relative links.
func googleUnwrapURL(href string) string {
	if strings.HasPrefix(href, "/url?") {
		if u, err := url.Parse(href); err == nil {
			return u.Query().Get("q")
		}
		return ""
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return ""
}

func googleRecency(r model.Recency) string {
	switch r {
	case model.RecencyDay:
		return "qdr:d"
	case model.RecencyWeek:
		return "qdr:w"
	case model.RecencyMonth:
		return "qdr:m"
	default:
		return ""
	}
}
