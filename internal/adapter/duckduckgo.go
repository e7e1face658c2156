package adapter

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobradar/internal/model"
)

const duckDuckGoBaseURL = "https://html.duckduckgo.com/html/"

// DuckDuckGoProvider searches the DuckDuckGo HTML endpoint.
type DuckDuckGoProvider struct {
	baseURL string
	client  *http.Client
}

// NewDuckDuckGoProvider creates a provider using client for all requests.
func NewDuckDuckGoProvider(client *http.Client) *DuckDuckGoProvider {
	return &DuckDuckGoProvider{baseURL: duckDuckGoBaseURL, client: client}
}

func (p *DuckDuckGoProvider) Name() string { return "duckduckgo" }

// Search runs query and returns the organic results in page order.
func (p *DuckDuckGoProvider) Search(ctx context.Context, query string, recency model.Recency) ([]model.RawCandidate, error) {
	params := url.Values{"q": {query}, "kl": {"us-en"}}
	if df := ddgRecency(recency); df != "" {
		params.Set("df", df)
	}

	doc, err := fetchDocument(ctx, p.client, p.baseURL+"?"+params.Encode(), "https://html.duckduckgo.com/", "duckduckgo search")
	if err != nil {
		return nil, err
	}
	return parseDuckDuckGo(doc), nil
}

func parseDuckDuckGo(doc *goquery.Document) []model.RawCandidate {
	var out []model.RawCandidate
	doc.Find(".result, .web-result").Each(func(_ int, s *goquery.Selection) {
		if s.HasClass("result--ad") {
			return
		}
		link := s.Find("a.result__a, .result__title a").First()
		title := extractText(link.Text())
		href, ok := link.Attr("href")
		if !ok || title == "" {
			return
		}
		href = ddgUnwrapURL(href)
		if href == "" {
			return
		}
		out = append(out, model.RawCandidate{
			Title:        title,
			Link:         href,
			Snippet:      extractText(s.Find(".result__snippet").First().Text()),
			PositionRank: len(out) + 1,
		})
	})
	return out
}

// ddgUnwrapURL extracts the target URL from DuckDuckGo redirect links of the
// form //duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com&rut=...
func ddgUnwrapURL(href string) string {
	if strings.Contains(href, "duckduckgo.com/l/") || strings.Contains(href, "uddg=") {
		if u, err := url.Parse(href); err == nil {
			if target := u.Query().Get("uddg"); target != "" {
				return target
			}
		}
	}
	if strings.HasPrefix(href, "http") {
		return href
	}
	return ""
}

func ddgRecency(r model.Recency) string {
	switch r {
	case model.RecencyDay:
		return "d"
	case model.RecencyWeek:
		return "w"
	case model.RecencyMonth:
		return "m"
	default:
		return ""
	}
}
