// Package config provides YAML configuration parsing for finboard.
//
// This package enables running finboard as a standalone binary with a
// configuration file, as an alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	title: Mining Watchlist
//	port: 8080
//	refresh_interval: 1h
//
//	source:
//	  user_agent: ${FINBOARD_USER_AGENT:-finboard/1.0}
//	  timeout: 30s
//	  rate_limits:
//	    - requests: 2
//	      per: 5s
//
//	cache:
//	  ttl: 12h
//
//	symbols:
//	  - symbol: VALE
//	    labels:
//	      sector: mining
//
//	watchlists:
//	  - name: Brazil
//	    tickers: [PBR, ITUB]
//	    interval: 6h
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// minRefreshInterval is the minimum allowed refresh interval.
const minRefreshInterval = 1 * time.Second

// maxSymbolInterval mirrors the per-symbol interval ceiling of the SDK.
const maxSymbolInterval = 24 * time.Hour

// Config is the root configuration structure for finboard.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the dashboard title. Defaults to "Financial Analysis" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// RefreshInterval is the time between refreshes of a watched symbol.
	// Accepts duration strings like "1h", "30m". Defaults to 1h.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// MaxConcurrency bounds in-flight refreshes. Zero uses the SDK default.
	MaxConcurrency int `yaml:"max_concurrency"`

	// Source configures the upstream fundamentals provider.
	Source SourceConfig `yaml:"source"`

	// Cache configures the on-disk response cache.
	Cache CacheConfig `yaml:"cache"`

	// Symbols defines individually watched tickers.
	Symbols []SymbolConfig `yaml:"symbols"`

	// Watchlists defines named groups of tickers sharing settings.
	Watchlists []WatchlistConfig `yaml:"watchlists"`
}

// SourceConfig configures the upstream provider session.
type SourceConfig struct {
	// BaseURL overrides the provider endpoint, e.g. for a mock server.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	BaseURL string `yaml:"base_url"`

	// UserAgent is sent on every upstream request.
	// Supports environment variable substitution.
	UserAgent string `yaml:"user_agent"`

	// Timeout bounds a single upstream request.
	Timeout Duration `yaml:"timeout"`

	// RateLimits replace the default upstream rate limits. They stack.
	RateLimits []RateLimitConfig `yaml:"rate_limits"`

	// Unlimited disables upstream rate limiting. Intended for mock servers.
	Unlimited bool `yaml:"unlimited"`
}

// RateLimitConfig allows Requests upstream requests per Per interval.
type RateLimitConfig struct {
	Requests int      `yaml:"requests"`
	Per      Duration `yaml:"per"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	// Path is the SQLite cache file. Defaults to the user cache directory.
	// Supports environment variable substitution.
	Path string `yaml:"path"`

	// TTL is how long a cached response stays fresh.
	TTL Duration `yaml:"ttl"`

	// Disabled turns the cache off entirely.
	Disabled bool `yaml:"disabled"`
}

// SymbolConfig defines a single watched ticker.
type SymbolConfig struct {
	// Symbol is the ticker, e.g. "VALE". Case-insensitive.
	Symbol string `yaml:"symbol"`

	// Labels are metadata key-value pairs carried on every snapshot.
	Labels map[string]string `yaml:"labels"`

	// Interval is the custom refresh interval for this symbol.
	// If not specified, uses the global refresh_interval.
	// Must be between 1s and 24h.
	Interval Duration `yaml:"interval"`

	// Timeout bounds a single refresh. Defaults to 30s.
	Timeout Duration `yaml:"timeout"`
}

// WatchlistConfig defines a named group of tickers.
//
// Every ticker in the group gets a "watchlist" label set to Name, plus
// Labels, Interval and Timeout.
type WatchlistConfig struct {
	// Name is the watchlist name.
	Name string `yaml:"name"`

	// Tickers lists the watched symbols.
	Tickers []string `yaml:"tickers"`

	// Labels are additional labels applied to every ticker.
	Labels map[string]string `yaml:"labels"`

	// Interval is the custom refresh interval for every ticker.
	Interval Duration `yaml:"interval"`

	// Timeout bounds a single refresh of every ticker.
	Timeout Duration `yaml:"timeout"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the source and cache settings.
// Defaults are applied for Port (8080) and RefreshInterval (1h).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.RefreshInterval == 0 {
		cfg.RefreshInterval = Duration(time.Hour)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.RefreshInterval.Duration() < minRefreshInterval {
		return fmt.Errorf("refresh_interval must be at least %s, got %s", minRefreshInterval, c.RefreshInterval.Duration())
	}
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency cannot be negative, got %d", c.MaxConcurrency)
	}

	if err := c.Source.expandAndValidate(); err != nil {
		return err
	}
	if err := c.Cache.expandAndValidate(); err != nil {
		return err
	}

	seen := make(map[string]string)
	claim := func(ticker, owner string) error {
		t := strings.ToUpper(strings.TrimSpace(ticker))
		if t == "" {
			return fmt.Errorf("%s: symbol is required", owner)
		}
		if prev, ok := seen[t]; ok {
			return fmt.Errorf("%s: duplicate symbol %q (already defined by %s)", owner, t, prev)
		}
		seen[t] = owner
		return nil
	}

	for i := range c.Symbols {
		s := &c.Symbols[i]
		ctx := fmt.Sprintf("symbols[%d]", i)
		if err := claim(s.Symbol, ctx); err != nil {
			return err
		}
		ctx = fmt.Sprintf("symbols[%d] (%s)", i, s.Symbol)
		if err := validateTiming(ctx, s.Interval, s.Timeout); err != nil {
			return err
		}
	}

	for i := range c.Watchlists {
		w := &c.Watchlists[i]
		if strings.TrimSpace(w.Name) == "" {
			return fmt.Errorf("watchlists[%d]: name is required", i)
		}
		ctx := fmt.Sprintf("watchlists[%d] (%s)", i, w.Name)
		if len(w.Tickers) == 0 {
			return fmt.Errorf("%s: at least one ticker is required", ctx)
		}
		for j, t := range w.Tickers {
			if err := claim(t, fmt.Sprintf("%s tickers[%d]", ctx, j)); err != nil {
				return err
			}
		}
		if err := validateTiming(ctx, w.Interval, w.Timeout); err != nil {
			return err
		}
	}

	return nil
}

func (s *SourceConfig) expandAndValidate() error {
	if s.BaseURL != "" {
		expanded, err := expandEnvVars(s.BaseURL)
		if err != nil {
			return fmt.Errorf("source.base_url: %w", err)
		}
		s.BaseURL = expanded

		parsedURL, err := url.Parse(s.BaseURL)
		if err != nil {
			return fmt.Errorf("source.base_url: invalid url: %w", err)
		}
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("source.base_url: scheme must be http or https, got %q", parsedURL.Scheme)
		}
	}

	if s.UserAgent != "" {
		expanded, err := expandEnvVars(s.UserAgent)
		if err != nil {
			return fmt.Errorf("source.user_agent: %w", err)
		}
		s.UserAgent = expanded
	}

	if s.Timeout != 0 && s.Timeout.Duration() < time.Second {
		return fmt.Errorf("source.timeout must be at least 1s if specified, got %s", s.Timeout.Duration())
	}

	if s.Unlimited && len(s.RateLimits) > 0 {
		return errors.New("source: rate_limits and unlimited are mutually exclusive")
	}
	for i, l := range s.RateLimits {
		if l.Requests <= 0 {
			return fmt.Errorf("source.rate_limits[%d]: requests must be positive, got %d", i, l.Requests)
		}
		if l.Per.Duration() <= 0 {
			return fmt.Errorf("source.rate_limits[%d]: per must be positive, got %s", i, l.Per.Duration())
		}
	}
	return nil
}

func (c *CacheConfig) expandAndValidate() error {
	if c.Path != "" {
		expanded, err := expandEnvVars(c.Path)
		if err != nil {
			return fmt.Errorf("cache.path: %w", err)
		}
		c.Path = expanded
	}
	if c.TTL < 0 {
		return fmt.Errorf("cache.ttl cannot be negative, got %s", c.TTL.Duration())
	}
	return nil
}

// validateTiming checks an optional interval and timeout pair.
func validateTiming(context string, interval, timeout Duration) error {
	if timeout != 0 && timeout.Duration() < time.Second {
		return fmt.Errorf("%s: timeout must be at least 1s if specified, got %s", context, timeout.Duration())
	}
	if interval != 0 {
		if interval.Duration() < time.Second {
			return fmt.Errorf("%s: interval must be at least 1s, got %s", context, interval.Duration())
		}
		if interval.Duration() > maxSymbolInterval {
			return fmt.Errorf("%s: interval must not exceed 24h, got %s", context, interval.Duration())
		}
	}
	return nil
}
