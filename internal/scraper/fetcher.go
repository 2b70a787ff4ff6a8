package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/FranksOps/shopscout/internal/bypass"
	"github.com/FranksOps/shopscout/internal/metrics"
	"github.com/FranksOps/shopscout/pkg/httpclient"
	"github.com/google/uuid"
)

const (
	// DefaultTimeout bounds a single page fetch.
	DefaultTimeout = 20 * time.Second
	// DefaultMaxBodyBytes caps how much of a page is read.
	DefaultMaxBodyBytes = 10 << 20
)

const acceptHTML = "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"

// FetchConfig configures page fetching.
type FetchConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	MaxBodyBytes int64
	UseCookieJar bool
	UserAgent    string
	// Transport is handed to the HTTP client, mainly for tests.
	Transport http.RoundTripper
	// Detectors run against every response; nil uses bypass.DefaultDetectors.
	Detectors []bypass.Detector
}

// Page is the outcome of a single GET.
type Page struct {
	ID           string
	URL          string
	StatusCode   int
	Header       http.Header
	Body         []byte
	Duration     time.Duration
	FetchedAt    time.Time
	DetectedBot  bool
	DetectionSrc string // e.g. "Cloudflare", "Akamai", "Shopify"
}

// Fetcher performs single URL fetches with a bounded timeout.
type Fetcher struct {
	config FetchConfig
	client *httpclient.Client
}

// NewFetcher initializes a new Fetcher with the given configuration.
// A single client is held across requests so connections are pooled.
func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Detectors == nil {
		cfg.Detectors = bypass.DefaultDetectors()
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		UseCookieJar: cfg.UseCookieJar,
		UserAgent:    cfg.UserAgent,
		Transport:    cfg.Transport,
	})
	if err != nil {
		return nil, fmt.Errorf("scraper: create client: %w", err)
	}

	return &Fetcher{
		config: cfg,
		client: client,
	}, nil
}

// Client exposes the underlying HTTP client so search providers can share
// its connection pool and headers.
func (f *Fetcher) Client() *httpclient.Client {
	return f.client
}

// Timeout returns the effective per-page timeout.
func (f *Fetcher) Timeout() time.Duration {
	return f.config.Timeout
}

// Fetch executes a GET request to targetURL. Transport failures and non-2xx
// responses are returned as errors; the Page is returned alongside whenever a
// response was received so callers can inspect status and detection results.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	start := time.Now()
	page := &Page{
		ID:        uuid.New().String(),
		URL:       targetURL,
		FetchedAt: start.UTC(),
	}

	domain := ""
	if u, err := url.Parse(targetURL); err == nil {
		domain = u.Hostname()
	}

	resp, err := f.client.Get(ctx, targetURL, acceptHTML)
	if err != nil {
		page.Duration = time.Since(start)
		metrics.RecordFetch(domain, 0, "", page.Duration, 0)
		return page, fmt.Errorf("scraper: fetch %s: %w", targetURL, err)
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(io.LimitReader(resp.Body, f.config.MaxBodyBytes))

	page.StatusCode = resp.StatusCode
	page.Header = resp.Header
	page.Body = body
	page.Duration = time.Since(start)

	if src, ok := bypass.Analyze(&bypass.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, f.config.Detectors); ok {
		page.DetectedBot = true
		page.DetectionSrc = src
	}

	metrics.RecordFetch(domain, page.StatusCode, page.DetectionSrc, page.Duration, len(body))

	if err := httpclient.CheckStatus(resp); err != nil {
		if page.DetectedBot {
			return page, fmt.Errorf("scraper: %s challenge: %w", page.DetectionSrc, err)
		}
		return page, fmt.Errorf("scraper: %w", err)
	}
	if readErr != nil {
		return page, fmt.Errorf("scraper: read body: %w", readErr)
	}

	return page, nil
}

// IsStatus reports whether err carries an HTTP status error with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *httpclient.StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}
