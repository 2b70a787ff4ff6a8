package serp

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"

	"github.com/FranksOps/shopscout/internal/analyzer"
	"github.com/FranksOps/shopscout/internal/scraper"
	"github.com/FranksOps/shopscout/internal/site"
)

// SitemapSearch finds product pages without a search engine: it reads the
// site's sitemaps and ranks product URLs by how well their slug matches the
// query terms.
type SitemapSearch struct {
	site     *site.Site
	robots   *scraper.RobotsTxtAuditor
	sitemaps *scraper.SitemapFetcher
	logger   *slog.Logger
}

// NewSitemapSearch returns a provider over the sitemaps of s.
func NewSitemapSearch(s *site.Site, fetcher *scraper.Fetcher, logger *slog.Logger) *SitemapSearch {
	if logger == nil {
		logger = slog.Default()
	}
	return &SitemapSearch{
		site:     s,
		robots:   scraper.NewRobotsTxtAuditor(fetcher, logger),
		sitemaps: scraper.NewSitemapFetcher(fetcher, logger),
		logger:   logger,
	}
}

func (s *SitemapSearch) Name() string { return ProviderSitemap }

type scoredURL struct {
	url   string
	slug  string
	score int
}

// Search ignores any site: operator in query, since the sitemaps are already
// scoped to the site.
func (s *SitemapSearch) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if err := checkLimit(limit); err != nil {
		return nil, err
	}
	terms := analyzer.Terms(query)
	if limit == 0 || len(terms) == 0 {
		return []Result{}, nil
	}

	locations, err := s.robots.Sitemaps(ctx, s.site.BaseURL())
	if err != nil || len(locations) == 0 {
		s.logger.Debug("no sitemaps in robots.txt, using default location", "site", s.site.Name, "err", err)
		locations = []string{s.site.BaseURL() + "/sitemap.xml"}
	}

	var (
		candidates []scoredURL
		failures   int
		seen       = make(map[string]struct{})
	)
	for _, loc := range locations {
		urls, err := s.sitemaps.FetchSitemap(ctx, loc)
		if err != nil {
			failures++
			s.logger.Warn("failed to read sitemap", "url", loc, "err", err)
			continue
		}
		for _, raw := range urls {
			if _, ok := seen[raw]; ok || !s.site.IsProductURL(raw) {
				continue
			}
			seen[raw] = struct{}{}

			u, err := url.Parse(raw)
			if err != nil {
				continue
			}
			slug := analyzer.Slug(u.Path)
			if score := analyzer.Score(slug, terms); score > 0 {
				candidates = append(candidates, scoredURL{url: raw, slug: slug, score: score})
			}
		}
	}
	if failures == len(locations) {
		return nil, fmt.Errorf("serp: no readable sitemap for %s", s.site.Domain)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	results := make([]Result, 0, min(limit, len(candidates)))
	for _, c := range candidates[:min(limit, len(candidates))] {
		results = append(results, Result{Title: c.slug, URL: c.url})
	}

	s.logger.Debug("sitemap search complete", "query", query, "candidates", len(candidates), "results", len(results))
	return results, nil
}
