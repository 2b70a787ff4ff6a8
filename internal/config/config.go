// Package config loads shopscout settings from file, environment and defaults.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/FranksOps/shopscout/pkg/httpclient"
	"github.com/spf13/viper"
)

// Config holds the full application configuration.
type Config struct {
	Site    SiteConfig    `mapstructure:"site"`
	Search  SearchConfig  `mapstructure:"search"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Extract ExtractConfig `mapstructure:"extract"`
	Log     LogConfig     `mapstructure:"log"`
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
}

// SiteConfig describes the retailer being searched.
type SiteConfig struct {
	Name        string `mapstructure:"name"`
	Domain      string `mapstructure:"domain"`
	BaseURL     string `mapstructure:"base_url"`
	ProductPath string `mapstructure:"product_path"`
}

// SearchConfig selects and tunes the search provider.
type SearchConfig struct {
	Provider   string `mapstructure:"provider"`
	MaxResults int    `mapstructure:"max_results"`
	BaseURL    string `mapstructure:"base_url"`
}

// FetchConfig tunes product page fetching.
type FetchConfig struct {
	Timeout       time.Duration `mapstructure:"timeout"`
	UserAgent     string        `mapstructure:"user_agent"`
	MaxRedirects  int           `mapstructure:"max_redirects"`
	RespectRobots bool          `mapstructure:"respect_robots"`
}

// ExtractConfig overrides the CSS selectors tried for each product field.
type ExtractConfig struct {
	Selectors SelectorConfig `mapstructure:"selectors"`
}

// SelectorConfig lists selectors in priority order. An empty list keeps the
// built-in defaults for that field.
type SelectorConfig struct {
	Title       []string `mapstructure:"title"`
	Price       []string `mapstructure:"price"`
	Image       []string `mapstructure:"image"`
	Description []string `mapstructure:"description"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ServerConfig holds the ports used by the serve command.
type ServerConfig struct {
	Port        int `mapstructure:"port"`
	MetricsPort int `mapstructure:"metrics_port"`
}

// StoreConfig selects an optional backend for found products.
// An empty Kind disables persistence.
type StoreConfig struct {
	Kind   string `mapstructure:"kind"`
	Target string `mapstructure:"target"`
}

// EnvPrefix prefixes environment overrides, e.g. SHOPSCOUT_FETCH_TIMEOUT.
const EnvPrefix = "SHOPSCOUT"

var (
	providers  = []string{"ddg", "searxng", "sitemap"}
	storeKinds = []string{"", "csv", "json", "sqlite", "postgres"}
)

// Load reads configuration from path when given, otherwise from
// shopscout.yaml in the working directory or $HOME/.config/shopscout.
// Environment variables prefixed SHOPSCOUT_ override file values.
func Load(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("shopscout")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home + "/.config/shopscout")
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("site.name", "anuschka")
	v.SetDefault("site.domain", "anuschkaleather.com")
	v.SetDefault("site.base_url", "https://www.anuschkaleather.com")
	v.SetDefault("site.product_path", "/products/")
	v.SetDefault("search.provider", "ddg")
	v.SetDefault("search.max_results", 15)
	v.SetDefault("search.base_url", "")
	v.SetDefault("fetch.timeout", 20*time.Second)
	v.SetDefault("fetch.user_agent", httpclient.DefaultUserAgent)
	v.SetDefault("fetch.max_redirects", 10)
	v.SetDefault("fetch.respect_robots", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.metrics_port", 9090)
	v.SetDefault("store.kind", "")
	v.SetDefault("store.target", "")

	// Read config file (optional unless named explicitly)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if !slices.Contains(providers, c.Search.Provider) {
		return fmt.Errorf("config: search.provider must be one of %s, got %q", strings.Join(providers, ", "), c.Search.Provider)
	}
	if c.Search.MaxResults <= 0 {
		return fmt.Errorf("config: search.max_results must be positive, got %d", c.Search.MaxResults)
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("config: fetch.timeout must be positive, got %s", c.Fetch.Timeout)
	}
	if !slices.Contains(storeKinds, c.Store.Kind) {
		return fmt.Errorf("config: unknown store.kind %q", c.Store.Kind)
	}
	if c.Store.Kind != "" && c.Store.Target == "" {
		return fmt.Errorf("config: store.target is required for store.kind %q", c.Store.Kind)
	}
	return nil
}

// NewLogger builds a slog logger writing to w.
func NewLogger(cfg LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("config: parse log level: %w", err)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("config: unknown log format %q", cfg.Format)
	}
}

// InitLogger installs a stderr logger built from cfg as the slog default.
func InitLogger(cfg LogConfig) (*slog.Logger, error) {
	logger, err := NewLogger(cfg, os.Stderr)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)
	return logger, nil
}
