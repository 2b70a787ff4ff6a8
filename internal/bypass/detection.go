package bypass

import (
	"bytes"
	"net/http"
	"strings"
)

// Response is the part of a fetched page the detectors look at.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Detector examines a response to determine if a bot protection mechanism
// blocked or challenged the request. It returns the vendor name on a match.
type Detector func(res *Response) (detected bool, source string)

// DefaultDetectors returns the standard list of bot protection detectors.
func DefaultDetectors() []Detector {
	return []Detector{
		detectCloudflare,
		detectAkamai,
		detectDataDome,
		detectPerimeterX,
		detectShopify,
	}
}

// Analyze runs the response through the detectors and returns the source of
// the first one that triggers, or "" and false.
func Analyze(res *Response, detectors []Detector) (string, bool) {
	if res == nil {
		return "", false
	}
	for _, d := range detectors {
		if detected, source := d(res); detected {
			return source, true
		}
	}
	return "", false
}

func server(res *Response) string {
	return strings.ToLower(res.Header.Get("Server"))
}

// detectCloudflare looks for common Cloudflare challenge/block signatures.
func detectCloudflare(res *Response) (bool, string) {
	if res.StatusCode != http.StatusForbidden && res.StatusCode != http.StatusServiceUnavailable {
		return false, ""
	}
	if strings.Contains(server(res), "cloudflare") {
		return true, "Cloudflare"
	}
	if bytes.Contains(res.Body, []byte("cf-browser-verification")) ||
		bytes.Contains(res.Body, []byte("cloudflare-nginx")) ||
		bytes.Contains(res.Body, []byte("cf-turnstile")) ||
		bytes.Contains(res.Body, []byte("Attention Required! | Cloudflare")) {
		return true, "Cloudflare"
	}
	return false, ""
}

// detectAkamai looks for Akamai Bot Manager signatures.
func detectAkamai(res *Response) (bool, string) {
	if res.StatusCode != http.StatusForbidden {
		return false, ""
	}
	if strings.Contains(server(res), "akamai") {
		return true, "Akamai"
	}
	// generic "Reference #" block page
	if bytes.Contains(res.Body, []byte("Reference #")) && bytes.Contains(res.Body, []byte("Access Denied")) {
		return true, "Akamai"
	}
	return false, ""
}

// detectDataDome looks for DataDome challenge/block signatures.
func detectDataDome(res *Response) (bool, string) {
	if res.StatusCode != http.StatusForbidden {
		return false, ""
	}
	if strings.Contains(server(res), "datadome") {
		return true, "DataDome"
	}
	if res.Header.Get("X-DataDome") != "" || res.Header.Get("X-DataDome-Response") != "" {
		return true, "DataDome"
	}
	if bytes.Contains(res.Body, []byte("geo.captcha-delivery.com")) || bytes.Contains(res.Body, []byte("datadome")) {
		return true, "DataDome"
	}
	return false, ""
}

// detectPerimeterX looks for PerimeterX (HUMAN) signatures.
func detectPerimeterX(res *Response) (bool, string) {
	if res.StatusCode != http.StatusForbidden {
		return false, ""
	}
	if res.Header.Get("X-Px-Captcha") != "" {
		return true, "PerimeterX"
	}
	if bytes.Contains(res.Body, []byte("client.perimeterx.net")) ||
		bytes.Contains(res.Body, []byte("px-captcha")) ||
		bytes.Contains(res.Body, []byte("_pxBlock")) {
		return true, "PerimeterX"
	}
	return false, ""
}

// detectShopify flags the storefront throttling page Shopify serves to
// clients it considers automated.
func detectShopify(res *Response) (bool, string) {
	if res.StatusCode != http.StatusTooManyRequests {
		return false, ""
	}
	if res.Header.Get("X-Shopify-Stage") != "" || res.Header.Get("X-ShopId") != "" {
		return true, "Shopify"
	}
	if bytes.Contains(bytes.ToLower(res.Body), []byte("shopify")) {
		return true, "Shopify"
	}
	return false, ""
}
