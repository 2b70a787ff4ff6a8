package site

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Defaults describe the retailer the tool was originally written for.
const (
	DefaultName        = "anuschka"
	DefaultDomain      = "anuschkaleather.com"
	DefaultBaseURL     = "https://www.anuschkaleather.com"
	DefaultProductPath = "/products/"
)

// Site describes the single retailer a search is scoped to.
type Site struct {
	Name        string
	Domain      string
	ProductPath string

	base *url.URL
}

// New validates the parameters and returns a Site. Domain is matched against
// URL hosts exactly or as a parent domain (www.example.com matches example.com).
func New(name, domain, baseURL, productPath string) (*Site, error) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	if domain == "" {
		return nil, errors.New("site: domain is required")
	}
	if productPath == "" {
		return nil, errors.New("site: product path is required")
	}
	if !strings.HasPrefix(productPath, "/") {
		productPath = "/" + productPath
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("site: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("site: base url must be http(s), got %q", baseURL)
	}

	return &Site{
		Name:        name,
		Domain:      domain,
		ProductPath: productPath,
		base:        base,
	}, nil
}

// Default returns the built-in retailer.
func Default() *Site {
	s, err := New(DefaultName, DefaultDomain, DefaultBaseURL, DefaultProductPath)
	if err != nil {
		panic(err)
	}
	return s
}

// BaseURL returns the site root used to resolve relative addresses.
func (s *Site) BaseURL() string {
	return s.base.String()
}

// SearchQuery scopes a free-text query to the site's domain.
func (s *Site) SearchQuery(query string) string {
	return "site:" + s.Domain + " " + strings.TrimSpace(query)
}

// InScope reports whether host belongs to the site's domain.
func (s *Site) InScope(host string) bool {
	host = strings.ToLower(host)
	return host == s.Domain || strings.HasSuffix(host, "."+s.Domain)
}

// IsProductURL reports whether rawURL is an http(s) address on the site whose
// path starts with the product path marker and names a product after it.
func (s *Site) IsProductURL(rawURL string) bool {
	if rawURL == "" {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if !s.InScope(u.Hostname()) {
		return false
	}
	return strings.HasPrefix(u.Path, s.ProductPath) && len(u.Path) > len(s.ProductPath)
}

// Canonical strips the query string and fragment from rawURL.
func Canonical(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("site: parse url: %w", err)
	}
	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), nil
}

// AbsoluteImage gives a protocol-relative image address an https scheme and
// returns any other value trimmed but otherwise as written.
func AbsoluteImage(src string) string {
	src = strings.TrimSpace(src)
	if strings.HasPrefix(src, "//") {
		return "https:" + src
	}
	return src
}

// ResolveImage turns an image src attribute into an absolute address.
// Protocol-relative sources get an https scheme and relative paths are
// resolved against the site base URL. Absolute or unparseable sources are
// returned as written.
func (s *Site) ResolveImage(src string) string {
	src = AbsoluteImage(src)
	if src == "" {
		return src
	}
	ref, err := url.Parse(src)
	if err != nil || ref.IsAbs() {
		return src
	}
	return s.base.ResolveReference(ref).String()
}
