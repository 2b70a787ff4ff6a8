package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsTxtAuditor manages robots.txt fetching and enforcement.
type RobotsTxtAuditor struct {
	fetcher *Fetcher
	logger  *slog.Logger
	mu      sync.Mutex
	cache   map[string]*robotstxt.RobotsData
}

// NewRobotsTxtAuditor creates a new instance.
func NewRobotsTxtAuditor(fetcher *Fetcher, logger *slog.Logger) *RobotsTxtAuditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RobotsTxtAuditor{
		fetcher: fetcher,
		logger:  logger,
		cache:   make(map[string]*robotstxt.RobotsData),
	}
}

// IsAllowed determines if the given URL is allowed by the host's robots.txt for the provided User-Agent.
// A robots.txt that cannot be fetched or parsed allows everything.
func (r *RobotsTxtAuditor) IsAllowed(ctx context.Context, targetURL string, userAgent string) (bool, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false, fmt.Errorf("scraper: invalid url: %w", err)
	}

	data, err := r.getOrFetch(ctx, u.Scheme+"://"+u.Host)
	if err != nil {
		r.logger.Debug("robots.txt unavailable, defaulting to allow", "host", u.Host, "err", err)
		return true, nil
	}
	if data == nil {
		return true, nil
	}

	return data.FindGroup(userAgent).Test(u.Path), nil
}

// Sitemaps returns the sitemap URLs declared in the host's robots.txt.
func (r *RobotsTxtAuditor) Sitemaps(ctx context.Context, host string) ([]string, error) {
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}

	data, err := r.getOrFetch(ctx, strings.TrimSuffix(host, "/"))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return data.Sitemaps, nil
}

// getOrFetch returns the parsed robots.txt for host. A missing file (4xx) is
// cached as nil, meaning no restrictions.
func (r *RobotsTxtAuditor) getOrFetch(ctx context.Context, host string) (*robotstxt.RobotsData, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if data, ok := r.cache[host]; ok {
		return data, nil
	}

	page, err := r.fetcher.Fetch(ctx, host+"/robots.txt")
	if err != nil {
		if page != nil && page.StatusCode >= http.StatusBadRequest && page.StatusCode < http.StatusInternalServerError {
			r.cache[host] = nil
			return nil, nil
		}
		return nil, fmt.Errorf("scraper: robots.txt: %w", err)
	}

	parsed, err := robotstxt.FromBytes(page.Body)
	if err != nil {
		r.cache[host] = nil
		return nil, fmt.Errorf("scraper: parse robots.txt: %w", err)
	}

	r.cache[host] = parsed
	return parsed, nil
}
