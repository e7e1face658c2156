package adapter

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/amishk599/jobradar/internal/model"
)

const remoteRocketshipBaseURL = "https://www.remoterocketship.com"

// RemoteRocketshipProvider scrapes the Remote Rocketship listing page. It is
// queried with the role title rather than a search-engine query and only
// lists remote jobs.
type RemoteRocketshipProvider struct {
	baseURL string
	client  *http.Client
}

// NewRemoteRocketshipProvider creates a provider using client for all requests.
func NewRemoteRocketshipProvider(client *http.Client) *RemoteRocketshipProvider {
	return &RemoteRocketshipProvider{baseURL: remoteRocketshipBaseURL, client: client}
}

func (p *RemoteRocketshipProvider) Name() string { return "remoterocketship" }

// Search lists the newest postings matching roleTitle. The listing is already
// sorted by date, so recency is not forwarded.
func (p *RemoteRocketshipProvider) Search(ctx context.Context, roleTitle string, _ model.Recency) ([]model.RawCandidate, error) {
	params := url.Values{"jobTitle": {roleTitle}, "sort": {"DateAdded"}}

	doc, err := fetchDocument(ctx, p.client, p.baseURL+"/?"+params.Encode(), "", "remoterocketship listing")
	if err != nil {
		return nil, err
	}
	return p.parse(doc), nil
}

func (p *RemoteRocketshipProvider) parse(doc *goquery.Document) []model.RawCandidate {
	var out []model.RawCandidate
	doc.Find("tr.job-listing-row").Each(func(_ int, s *goquery.Selection) {
		title := extractText(s.Find("h3.job-title").First().Text())
		company := extractText(s.Find("h2.company-name").First().Text())
		href, ok := s.Find("a.job-title-link").First().Attr("href")
		if !ok || title == "" || company == "" {
			return
		}
		link := href
		if !strings.HasPrefix(href, "http") {
			link = p.baseURL + "/" + strings.TrimPrefix(href, "/")
		}
		out = append(out, model.RawCandidate{
			Title:        title + " at " + company,
			Link:         link,
			Snippet:      extractText(s.Find("p").First().Text()),
			PositionRank: len(out) + 1,
		})
	})
	return out
}
