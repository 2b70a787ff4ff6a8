package serp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/FranksOps/shopscout/pkg/httpclient"
)

// SearXNG queries a SearXNG instance through its JSON API.
type SearXNG struct {
	BaseURL string
	client  *httpclient.Client
	logger  *slog.Logger
}

// NewSearXNG returns a provider for the instance rooted at baseURL.
func NewSearXNG(client *httpclient.Client, baseURL string, logger *slog.Logger) *SearXNG {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearXNG{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

func (s *SearXNG) Name() string { return ProviderSearXNG }

type searxngResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Href    string `json:"href"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search calls /search?format=json and returns up to limit results.
func (s *SearXNG) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	if limit == 0 {
		return []Result{}, nil
	}

	endpoint := s.BaseURL + "/search?" + url.Values{
		"q":      {query},
		"format": {"json"},
	}.Encode()

	resp, err := s.client.Get(ctx, endpoint, "application/json")
	if err != nil {
		return nil, fmt.Errorf("serp: searxng search: %w", err)
	}
	defer resp.Body.Close()

	if err := httpclient.CheckStatus(resp); err != nil {
		return nil, fmt.Errorf("serp: searxng search: %w", err)
	}

	var body searxngResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("serp: searxng decode: %w", err)
	}

	results := make([]Result, 0, min(limit, len(body.Results)))
	for _, r := range body.Results {
		if len(results) == limit {
			break
		}
		results = append(results, Result{
			Title:   r.Title,
			Href:    r.Href,
			URL:     r.URL,
			Snippet: r.Content,
		})
	}

	s.logger.Debug("searxng search complete", "query", query, "results", len(results))
	return results, nil
}
