package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate runs the test in an empty working directory and home.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", t.TempDir())
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Site.Domain != "anuschkaleather.com" || cfg.Site.BaseURL != "https://www.anuschkaleather.com" || cfg.Site.ProductPath != "/products/" {
		t.Errorf("unexpected site defaults %+v", cfg.Site)
	}
	if cfg.Search.Provider != "ddg" || cfg.Search.MaxResults != 15 {
		t.Errorf("unexpected search defaults %+v", cfg.Search)
	}
	if cfg.Fetch.Timeout != 20*time.Second || cfg.Fetch.MaxRedirects != 10 || cfg.Fetch.RespectRobots {
		t.Errorf("unexpected fetch defaults %+v", cfg.Fetch)
	}
	if cfg.Fetch.UserAgent == "" {
		t.Errorf("expected a default user agent")
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("unexpected log defaults %+v", cfg.Log)
	}
	if cfg.Server.Port != 8000 || cfg.Server.MetricsPort != 9090 {
		t.Errorf("unexpected server defaults %+v", cfg.Server)
	}
	if cfg.Store.Kind != "" {
		t.Errorf("expected persistence disabled by default, got %q", cfg.Store.Kind)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := isolate(t)

	yaml := `
site:
  domain: example-shop.com
search:
  provider: sitemap
  max_results: 5
fetch:
  timeout: 3s
  respect_robots: true
log:
  format: json
store:
  kind: sqlite
  target: shopscout.db
extract:
  selectors:
    price:
      - .sale-price
      - .price
`
	if err := os.WriteFile(filepath.Join(dir, "shopscout.yaml"), []byte(yaml), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Site.Domain != "example-shop.com" {
		t.Errorf("expected domain from file, got %q", cfg.Site.Domain)
	}
	if cfg.Search.Provider != "sitemap" || cfg.Search.MaxResults != 5 {
		t.Errorf("unexpected search config %+v", cfg.Search)
	}
	if cfg.Fetch.Timeout != 3*time.Second || !cfg.Fetch.RespectRobots {
		t.Errorf("unexpected fetch config %+v", cfg.Fetch)
	}
	if cfg.Store.Kind != "sqlite" || cfg.Store.Target != "shopscout.db" {
		t.Errorf("unexpected store config %+v", cfg.Store)
	}
	if got := cfg.Extract.Selectors.Price; len(got) != 2 || got[0] != ".sale-price" || got[1] != ".price" {
		t.Errorf("unexpected price selectors %v", got)
	}
	if len(cfg.Extract.Selectors.Title) != 0 {
		t.Errorf("expected no title override, got %v", cfg.Extract.Selectors.Title)
	}
	// Defaults still apply for unset values
	if cfg.Site.ProductPath != "/products/" || cfg.Server.Port != 8000 {
		t.Errorf("expected defaults for unset values, got %+v %+v", cfg.Site, cfg.Server)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("search:\n  max_results: 5\n"), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	t.Setenv("SHOPSCOUT_SEARCH_MAX_RESULTS", "7")
	t.Setenv("SHOPSCOUT_FETCH_TIMEOUT", "45s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Search.MaxResults != 7 {
		t.Errorf("expected env override 7, got %d", cfg.Search.MaxResults)
	}
	if cfg.Fetch.Timeout != 45*time.Second {
		t.Errorf("expected env override 45s, got %s", cfg.Fetch.Timeout)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	dir := isolate(t)

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Errorf("expected error for missing explicit config file")
	}
}

func TestLoadValidation(t *testing.T) {
	cases := map[string]string{
		"SHOPSCOUT_SEARCH_PROVIDER":    "bing",
		"SHOPSCOUT_SEARCH_MAX_RESULTS": "0",
		"SHOPSCOUT_STORE_KIND":         "mongo",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			isolate(t)
			t.Setenv(key, value)
			if _, err := Load(""); err == nil {
				t.Errorf("expected validation error for %s=%s", key, value)
			}
		})
	}

	t.Run("store without target", func(t *testing.T) {
		isolate(t)
		t.Setenv("SHOPSCOUT_STORE_KIND", "csv")
		_, err := Load("")
		if err == nil || !strings.Contains(err.Error(), "store.target") {
			t.Errorf("expected store.target error, got %v", err)
		}
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewLogger(LogConfig{Level: "warn", Format: "json"}, &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown", "url", "https://example.com/products/a")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("expected info to be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"url":"https://example.com/products/a"`) {
		t.Errorf("expected json warn line, got %s", out)
	}

	if _, err := NewLogger(LogConfig{Level: "loud"}, &buf); err == nil {
		t.Errorf("expected error for unknown level")
	}
	if _, err := NewLogger(LogConfig{Level: "info", Format: "xml"}, &buf); err == nil {
		t.Errorf("expected error for unknown format")
	}
}
