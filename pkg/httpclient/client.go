package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// DefaultUserAgent is sent when Config.UserAgent is empty.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36"

const (
	defaultTimeout      = 20 * time.Second
	defaultMaxRedirects = 10
)

// Config defines the setup for the HTTP Client.
type Config struct {
	Timeout time.Duration
	// MaxRedirects caps redirect hops. Zero uses the default of 10,
	// a negative value disables redirect following.
	MaxRedirects int
	UseCookieJar bool
	UserAgent    string
	// Transport overrides the cloned default transport, mainly for tests.
	Transport http.RoundTripper
}

// Client wraps a standard http.Client to provide configurable timeouts,
// redirect policies, default request headers and cookie management.
type Client struct {
	*http.Client
}

// StatusError is returned by CheckStatus for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpclient: %s returned %s", e.URL, e.Status)
}

// New creates a new HTTP client based on the provided configuration.
func New(cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = defaultMaxRedirects
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	c := &http.Client{
		Timeout: cfg.Timeout,
	}

	if cfg.MaxRedirects > 0 {
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("httpclient: stopped after %d redirects", cfg.MaxRedirects)
			}
			return nil
		}
	} else {
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	if cfg.UseCookieJar {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("httpclient: cookie jar: %w", err)
		}
		c.Jar = jar
	}

	base := cfg.Transport
	if base == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyFromEnvironment
		base = transport
	}

	headers := http.Header{}
	headers.Set("User-Agent", cfg.UserAgent)
	headers.Set("Accept-Language", "en-US,en;q=0.5")
	c.Transport = &headerTransport{base: base, headers: headers}

	return &Client{Client: c}, nil
}

// Do executes an HTTP request. The provided context.Context should control
// the overarching request timeout/cancellation independent of the client timeout.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if ctx == nil {
		return nil, errors.New("httpclient: context cannot be nil")
	}

	resp, err := c.Client.Do(req.Clone(ctx))
	if err != nil {
		return nil, fmt.Errorf("httpclient: %w", err)
	}
	return resp, nil
}

// Get issues a GET for rawURL with the given Accept header.
func (c *Client) Get(ctx context.Context, rawURL, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: build request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return c.Do(ctx, req)
}

// CheckStatus returns a *StatusError when resp is not a 2xx response.
func CheckStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	target := ""
	if resp.Request != nil && resp.Request.URL != nil {
		target = resp.Request.URL.String()
	}
	return &StatusError{URL: target, StatusCode: resp.StatusCode, Status: resp.Status}
}

// headerTransport fills in default headers the request does not already set.
type headerTransport struct {
	base    http.RoundTripper
	headers http.Header
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, vals := range t.headers {
		if r.Header.Get(k) == "" {
			for _, v := range vals {
				r.Header.Add(k, v)
			}
		}
	}
	return t.base.RoundTrip(r)
}
