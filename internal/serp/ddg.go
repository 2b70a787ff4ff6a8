package serp

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/FranksOps/shopscout/pkg/httpclient"
	"github.com/PuerkitoBio/goquery"
)

// DefaultDuckDuckGoURL is the JavaScript-free DuckDuckGo results page.
const DefaultDuckDuckGoURL = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the DuckDuckGo HTML results page.
type DuckDuckGo struct {
	BaseURL string
	client  *httpclient.Client
	logger  *slog.Logger
}

// NewDuckDuckGo returns a provider querying baseURL, or DefaultDuckDuckGoURL when empty.
func NewDuckDuckGo(client *httpclient.Client, baseURL string, logger *slog.Logger) *DuckDuckGo {
	if baseURL == "" {
		baseURL = DefaultDuckDuckGoURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DuckDuckGo{
		BaseURL: baseURL,
		client:  client,
		logger:  logger,
	}
}

func (d *DuckDuckGo) Name() string { return ProviderDuckDuckGo }

// Search fetches the results page for query and returns up to limit organic
// results. Ads are skipped and DuckDuckGo redirect links are unwrapped.
func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	if limit == 0 {
		return []Result{}, nil
	}

	u, err := url.Parse(d.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("serp: ddg base url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	resp, err := d.client.Get(ctx, u.String(), "text/html")
	if err != nil {
		return nil, fmt.Errorf("serp: ddg search: %w", err)
	}
	defer resp.Body.Close()

	if err := httpclient.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("serp: ddg search: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("serp: ddg parse: %w", err)
	}

	results := make([]Result, 0, limit)
	doc.Find("a.result__a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		container := s.Closest(".result")
		if container.HasClass("result--ad") {
			return true
		}

		href := unwrapRedirect(strings.TrimSpace(s.AttrOr("href", "")))
		if href == "" {
			return true
		}

		results = append(results, Result{
			Title:   strings.Join(strings.Fields(s.Text()), " "),
			Href:    href,
			Snippet: strings.Join(strings.Fields(container.Find(".result__snippet").Text()), " "),
		})
		return len(results) < limit
	})

	d.logger.Debug("ddg search complete", "query", query, "results", len(results))
	return results, nil
}

// unwrapRedirect returns the target of a DuckDuckGo /l/?uddg= redirect link,
// or href unchanged when it is not one.
func unwrapRedirect(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			return target
		}
	}
	return href
}
