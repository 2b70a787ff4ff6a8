package serp

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FranksOps/shopscout/internal/scraper"
	"github.com/FranksOps/shopscout/internal/site"
)

// Provider names accepted by New.
const (
	ProviderDuckDuckGo = "ddg"
	ProviderSearXNG    = "searxng"
	ProviderSitemap    = "sitemap"
)

// Result is one entry returned by a search provider. Providers disagree on
// the name of the link field, so both are kept and read through Link.
type Result struct {
	Title   string `json:"title,omitempty"`
	Href    string `json:"href,omitempty"`
	URL     string `json:"url,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

// Link returns the entry's address: Href when present, otherwise URL.
func (r Result) Link() string {
	if r.Href != "" {
		return r.Href
	}
	return r.URL
}

// Provider abstracts a search backend that returns up to limit results for a
// query. Implementations may scrape a results page, call a JSON API, or walk
// the site's own sitemaps.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// Options carries what the providers need to be built from configuration.
type Options struct {
	// BaseURL overrides the provider endpoint; required for searxng.
	BaseURL string
	Site    *site.Site
	Fetcher *scraper.Fetcher
	Logger  *slog.Logger
}

// New builds the provider registered under name.
func New(name string, opts Options) (Provider, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("serp: fetcher is required")
	}

	switch name {
	case "", ProviderDuckDuckGo:
		return NewDuckDuckGo(opts.Fetcher.Client(), opts.BaseURL, opts.Logger), nil
	case ProviderSearXNG:
		if opts.BaseURL == "" {
			return nil, fmt.Errorf("serp: searxng requires a base url")
		}
		return NewSearXNG(opts.Fetcher.Client(), opts.BaseURL, opts.Logger), nil
	case ProviderSitemap:
		if opts.Site == nil {
			return nil, fmt.Errorf("serp: sitemap provider requires a site")
		}
		return NewSitemapSearch(opts.Site, opts.Fetcher, opts.Logger), nil
	default:
		return nil, fmt.Errorf("serp: unknown provider %q", name)
	}
}

func checkLimit(limit int) error {
	if limit < 0 {
		return fmt.Errorf("serp: limit cannot be negative: %d", limit)
	}
	return nil
}
