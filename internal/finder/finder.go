// Package finder implements the product search: a domain-scoped web search
// followed by a fetch and field extraction of every product page it returns.
package finder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/FranksOps/shopscout/internal/extract"
	"github.com/FranksOps/shopscout/internal/metrics"
	"github.com/FranksOps/shopscout/internal/product"
	"github.com/FranksOps/shopscout/internal/scraper"
	"github.com/FranksOps/shopscout/internal/serp"
	"github.com/FranksOps/shopscout/internal/site"
	"github.com/FranksOps/shopscout/pkg/httpclient"
)

// DefaultMaxResults caps how many search results are requested.
const DefaultMaxResults = 15

// Config configures a Finder.
type Config struct {
	Site       *site.Site
	MaxResults int
	// RespectRobots skips product pages the site's robots.txt disallows.
	RespectRobots bool
	// UserAgent is matched against robots.txt groups.
	UserAgent string
}

// Item is one extracted product and the tier its image came from.
type Item struct {
	product.Record
	ImageSource product.ImageSource `json:"image_source"`
}

// Stats counts what happened to the search results of one run.
type Stats struct {
	Query         string         `json:"query"`
	Provider      string         `json:"provider"`
	Results       int            `json:"results"`
	Rejected      int            `json:"rejected"`
	Duplicates    int            `json:"duplicates"`
	RobotsBlocked int            `json:"robots_blocked"`
	FetchErrors   int            `json:"fetch_errors"`
	Challenges    int            `json:"challenges"`
	Products      int            `json:"products"`
	Images        map[string]int `json:"images"`
	SearchError   string         `json:"search_error,omitempty"`
	StartedAt     time.Time      `json:"started_at"`
	Duration      time.Duration  `json:"duration"`
}

// Run is the outcome of one search.
type Run struct {
	Items []Item `json:"items"`
	Stats Stats  `json:"stats"`
}

// Records returns the extracted products in search order. It never returns nil.
func (r *Run) Records() []product.Record {
	records := make([]product.Record, 0, len(r.Items))
	for _, it := range r.Items {
		records = append(records, it.Record)
	}
	return records
}

// Finder searches one retailer for products. A Finder holds no per-search
// state and may be shared; each call processes its results sequentially.
type Finder struct {
	cfg       Config
	provider  serp.Provider
	fetcher   *scraper.Fetcher
	extractor *extract.Extractor
	robots    *scraper.RobotsTxtAuditor
	logger    *slog.Logger
}

// Option configures a Finder.
type Option func(*Finder)

// WithExtractor replaces the default extractor for the site.
func WithExtractor(e *extract.Extractor) Option {
	return func(f *Finder) {
		f.extractor = e
	}
}

// New creates a Finder.
func New(cfg Config, provider serp.Provider, fetcher *scraper.Fetcher, logger *slog.Logger, opts ...Option) (*Finder, error) {
	if cfg.Site == nil {
		return nil, fmt.Errorf("finder: site is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("finder: search provider is required")
	}
	if fetcher == nil {
		return nil, fmt.Errorf("finder: fetcher is required")
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = DefaultMaxResults
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = httpclient.DefaultUserAgent
	}
	if logger == nil {
		logger = slog.Default()
	}

	f := &Finder{
		cfg:      cfg,
		provider: provider,
		fetcher:  fetcher,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.extractor == nil {
		f.extractor = extract.New(cfg.Site, logger)
	}
	if cfg.RespectRobots {
		f.robots = scraper.NewRobotsTxtAuditor(fetcher, logger)
	}
	return f, nil
}

// Find returns the products found for query. Failures of the search or of
// individual pages are logged and skipped, so the result may be empty but is
// never nil.
func (f *Finder) Find(ctx context.Context, query string) []product.Record {
	return f.Run(ctx, query).Records()
}

// Run is Find with per-run statistics and image sources.
func (f *Finder) Run(ctx context.Context, query string) *Run {
	start := time.Now()
	run := &Run{
		Items: []Item{},
		Stats: Stats{
			Query:     query,
			Provider:  f.provider.Name(),
			Images:    make(map[string]int),
			StartedAt: start.UTC(),
		},
	}
	defer func() {
		run.Stats.Duration = time.Since(start)
		metrics.RecordFind(f.cfg.Site.Name, run.Stats.Duration)
	}()

	scoped := f.cfg.Site.SearchQuery(query)
	f.logger.Info("searching for products", "query", scoped, "provider", f.provider.Name())

	results, err := f.provider.Search(ctx, scoped, f.cfg.MaxResults)
	metrics.RecordSearch(f.provider.Name(), len(results), err)
	if err != nil {
		f.logger.Warn("search failed", "query", scoped, "err", err)
		run.Stats.SearchError = err.Error()
		results = nil
	}
	if len(results) > f.cfg.MaxResults {
		results = results[:f.cfg.MaxResults]
	}
	run.Stats.Results = len(results)

	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		if ctx.Err() != nil {
			f.logger.Warn("search cancelled, returning partial results", "query", query, "err", ctx.Err())
			break
		}

		link := r.Link()
		if !f.cfg.Site.IsProductURL(link) {
			run.Stats.Rejected++
			f.logger.Debug("skipping non-product result", "url", link)
			continue
		}

		pageURL, err := site.Canonical(link)
		if err != nil {
			run.Stats.Rejected++
			f.logger.Debug("skipping malformed result", "url", link, "err", err)
			continue
		}
		if _, ok := seen[pageURL]; ok {
			run.Stats.Duplicates++
			continue
		}
		seen[pageURL] = struct{}{}

		if item, ok := f.process(ctx, pageURL, &run.Stats); ok {
			run.Items = append(run.Items, item)
		}
	}

	run.Stats.Products = len(run.Items)
	if len(run.Items) == 0 {
		f.logger.Info("no products found", "query", query)
	}
	f.logger.Info("extracted products", "query", query, "count", len(run.Items))
	return run
}

func (f *Finder) process(ctx context.Context, pageURL string, stats *Stats) (Item, bool) {
	if f.robots != nil {
		allowed, err := f.robots.IsAllowed(ctx, pageURL, f.cfg.UserAgent)
		if err == nil && !allowed {
			stats.RobotsBlocked++
			f.logger.Info("skipping page disallowed by robots.txt", "url", pageURL)
			return Item{}, false
		}
	}

	f.logger.Info("processing product page", "url", pageURL)

	page, err := f.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		stats.FetchErrors++
		if page != nil && page.DetectedBot {
			stats.Challenges++
		}
		f.logger.Warn("error fetching product page", "url", pageURL, "err", err)
		return Item{}, false
	}

	rec, src := f.extractor.Extract(pageURL, page.Body)
	stats.Images[src.String()]++
	metrics.RecordProduct(f.cfg.Site.Name, src.String())

	return Item{Record: rec, ImageSource: src}, true
}
