package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FranksOps/shopscout/internal/config"
	"github.com/FranksOps/shopscout/internal/extract"
	"github.com/FranksOps/shopscout/internal/finder"
	"github.com/FranksOps/shopscout/internal/scraper"
	"github.com/FranksOps/shopscout/internal/serp"
	"github.com/FranksOps/shopscout/internal/site"
	"github.com/FranksOps/shopscout/internal/storage"
)

// app wires the configured components for one command invocation.
type app struct {
	logger *slog.Logger
	site   *site.Site
	finder *finder.Finder
	store  storage.Backend
}

func newApp(ctx context.Context, c *config.Config, l *slog.Logger, storeSpec string) (*app, error) {
	s, err := site.New(c.Site.Name, c.Site.Domain, c.Site.BaseURL, c.Site.ProductPath)
	if err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}

	fetcher, err := scraper.NewFetcher(scraper.FetchConfig{
		Timeout:      c.Fetch.Timeout,
		MaxRedirects: c.Fetch.MaxRedirects,
		UserAgent:    c.Fetch.UserAgent,
	})
	if err != nil {
		return nil, err
	}

	provider, err := serp.New(c.Search.Provider, serp.Options{
		BaseURL: c.Search.BaseURL,
		Site:    s,
		Fetcher: fetcher,
		Logger:  l,
	})
	if err != nil {
		return nil, err
	}

	sel := c.Extract.Selectors
	extractor := extract.New(s, l, extract.WithSelectors(extract.Selectors{
		Title:       sel.Title,
		Price:       sel.Price,
		Image:       sel.Image,
		Description: sel.Description,
	}))

	f, err := finder.New(finder.Config{
		Site:          s,
		MaxResults:    c.Search.MaxResults,
		RespectRobots: c.Fetch.RespectRobots,
		UserAgent:     c.Fetch.UserAgent,
	}, provider, fetcher, l, finder.WithExtractor(extractor))
	if err != nil {
		return nil, err
	}

	a := &app{logger: l, site: s, finder: f}

	kind, target := c.Store.Kind, c.Store.Target
	if storeSpec != "" {
		if kind, target, err = parseStoreSpec(storeSpec); err != nil {
			return nil, err
		}
	}
	if kind != "" {
		if a.store, err = openStore(ctx, kind, target); err != nil {
			return nil, err
		}
	}

	return a, nil
}

// save persists the products of run when a store is configured.
func (a *app) save(ctx context.Context, run *finder.Run) error {
	if a.store == nil || len(run.Items) == 0 {
		return nil
	}
	records := make([]*storage.Record, 0, len(run.Items))
	for _, it := range run.Items {
		records = append(records, storage.NewRecord(run.Stats.Query, it.Record, it.ImageSource))
	}
	if err := a.store.Save(ctx, records...); err != nil {
		return fmt.Errorf("save products: %w", err)
	}
	a.logger.Debug("saved products", "query", run.Stats.Query, "count", len(records))
	return nil
}

func (a *app) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}
