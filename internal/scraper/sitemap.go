package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	sitemap "github.com/oxffaa/gopher-parse-sitemap"
)

// maxSitemapDepth bounds sitemap index recursion.
const maxSitemapDepth = 3

// SitemapFetcher is responsible for fetching and parsing sitemaps to discover product URLs.
type SitemapFetcher struct {
	fetcher *Fetcher
	logger  *slog.Logger
}

// NewSitemapFetcher initializes a new SitemapFetcher.
func NewSitemapFetcher(fetcher *Fetcher, logger *slog.Logger) *SitemapFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &SitemapFetcher{
		fetcher: fetcher,
		logger:  logger,
	}
}

// FetchSitemap fetches a sitemap XML or sitemap index and recursively extracts all URLs.
func (s *SitemapFetcher) FetchSitemap(ctx context.Context, sitemapURL string) ([]string, error) {
	return s.fetch(ctx, sitemapURL, 0, map[string]struct{}{})
}

func (s *SitemapFetcher) fetch(ctx context.Context, sitemapURL string, depth int, seen map[string]struct{}) ([]string, error) {
	if _, ok := seen[sitemapURL]; ok {
		return nil, nil
	}
	seen[sitemapURL] = struct{}{}

	s.logger.Debug("fetching sitemap", "url", sitemapURL, "depth", depth)

	page, err := s.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("scraper: sitemap: %w", err)
	}

	var urls []string
	err = sitemap.Parse(bytes.NewReader(page.Body), func(e sitemap.Entry) error {
		urls = append(urls, e.GetLocation())
		return nil
	})
	if err == nil && len(urls) > 0 {
		return urls, nil
	}

	// It might be a sitemap index or invalid XML
	var nested []string
	indexErr := sitemap.ParseIndex(bytes.NewReader(page.Body), func(e sitemap.IndexEntry) error {
		nested = append(nested, e.GetLocation())
		return nil
	})
	if indexErr != nil {
		return nil, fmt.Errorf("scraper: parse sitemap %s: %w", sitemapURL, indexErr)
	}
	if len(nested) == 0 {
		return nil, fmt.Errorf("scraper: sitemap %s has no entries", sitemapURL)
	}

	if depth >= maxSitemapDepth {
		s.logger.Warn("sitemap index nested too deep, skipping", "url", sitemapURL)
		return nil, nil
	}

	for _, nestedURL := range nested {
		nestedURLs, fetchErr := s.fetch(ctx, nestedURL, depth+1, seen)
		if fetchErr != nil {
			s.logger.Warn("failed to fetch nested sitemap", "url", nestedURL, "err", fetchErr)
			continue
		}
		urls = append(urls, nestedURLs...)
	}

	return urls, nil
}
