package bypass

import (
	"net/http"
	"testing"
)

func response(status int, header map[string]string, body string) *Response {
	h := http.Header{}
	for k, v := range header {
		h.Set(k, v)
	}
	return &Response{StatusCode: status, Header: h, Body: []byte(body)}
}

func TestDetectCloudflare(t *testing.T) {
	if detected, _ := detectCloudflare(response(200, map[string]string{"Server": "nginx"}, "OK")); detected {
		t.Errorf("expected not detected")
	}

	if detected, src := detectCloudflare(response(403, map[string]string{"Server": "cloudflare"}, "Access Denied")); !detected || src != "Cloudflare" {
		t.Errorf("expected Cloudflare detection by header")
	}

	if detected, src := detectCloudflare(response(503, nil, "<html>... cf-turnstile ...</html>")); !detected || src != "Cloudflare" {
		t.Errorf("expected Cloudflare detection by body")
	}
}

func TestDetectAkamai(t *testing.T) {
	if detected, src := detectAkamai(response(403, map[string]string{"Server": "AkamaiGHost"}, "")); !detected || src != "Akamai" {
		t.Errorf("expected Akamai detection by header")
	}

	if detected, src := detectAkamai(response(403, nil, "Access Denied... Reference #123.456")); !detected || src != "Akamai" {
		t.Errorf("expected Akamai detection by body")
	}
}

func TestDetectDataDome(t *testing.T) {
	if detected, src := detectDataDome(response(403, map[string]string{"X-DataDome": "protected"}, "")); !detected || src != "DataDome" {
		t.Errorf("expected DataDome detection by header")
	}

	// header lookup is case-insensitive
	if detected, _ := detectDataDome(response(403, map[string]string{"x-datadome-response": "1"}, "")); !detected {
		t.Errorf("expected DataDome detection by lowercase header")
	}

	if detected, _ := detectDataDome(response(200, nil, "geo.captcha-delivery.com")); detected {
		t.Errorf("expected no detection on 200")
	}
}

func TestDetectPerimeterX(t *testing.T) {
	if detected, src := detectPerimeterX(response(403, nil, `<div id="px-captcha"></div>`)); !detected || src != "PerimeterX" {
		t.Errorf("expected PerimeterX detection by body")
	}
}

func TestDetectShopify(t *testing.T) {
	if detected, src := detectShopify(response(429, map[string]string{"X-ShopId": "123"}, "")); !detected || src != "Shopify" {
		t.Errorf("expected Shopify detection by header")
	}
	if detected, _ := detectShopify(response(429, nil, "Too many requests. Powered by Shopify")); !detected {
		t.Errorf("expected Shopify detection by body")
	}
	if detected, _ := detectShopify(response(403, map[string]string{"X-ShopId": "123"}, "")); detected {
		t.Errorf("expected no Shopify detection on 403")
	}
}

func TestAnalyze(t *testing.T) {
	src, ok := Analyze(response(403, map[string]string{"Server": "cloudflare"}, ""), DefaultDetectors())
	if !ok || src != "Cloudflare" {
		t.Errorf("expected Cloudflare, got %q %v", src, ok)
	}

	src, ok = Analyze(response(200, nil, "<html>fine</html>"), DefaultDetectors())
	if ok || src != "" {
		t.Errorf("expected no detection, got %q", src)
	}

	if _, ok := Analyze(nil, DefaultDetectors()); ok {
		t.Errorf("expected nil response to be ignored")
	}
}
