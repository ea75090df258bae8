package config

import (
	"sort"

	"github.com/jpalmerr/finboard"
)

// BuildSymbols converts parsed configuration into SDK Symbol objects.
//
// Individual symbols come first, then watchlists in file order.
func BuildSymbols(cfg *Config) ([]finboard.Symbol, error) {
	var symbols []finboard.Symbol

	for _, sc := range cfg.Symbols {
		sym, err := buildSymbol(sc)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, sym)
	}

	for _, wc := range cfg.Watchlists {
		wl, err := buildWatchlist(wc)
		if err != nil {
			return nil, err
		}
		symbols = append(symbols, wl...)
	}

	return symbols, nil
}

// BuildOptions converts parsed configuration into SDK options, symbols
// included. Callers may append their own options, such as a logger.
func BuildOptions(cfg *Config) ([]finboard.Option, error) {
	symbols, err := BuildSymbols(cfg)
	if err != nil {
		return nil, err
	}

	opts := []finboard.Option{
		finboard.WithSymbols(symbols...),
		finboard.WithPort(cfg.Port),
		finboard.WithRefreshInterval(cfg.RefreshInterval.Duration()),
	}

	if cfg.Title != "" {
		opts = append(opts, finboard.WithTitle(cfg.Title))
	}
	if cfg.MaxConcurrency > 0 {
		opts = append(opts, finboard.WithMaxConcurrency(cfg.MaxConcurrency))
	}

	if cfg.Source.BaseURL != "" {
		opts = append(opts, finboard.WithBaseURL(cfg.Source.BaseURL))
	}
	if cfg.Source.UserAgent != "" {
		opts = append(opts, finboard.WithUserAgent(cfg.Source.UserAgent))
	}
	if cfg.Source.Timeout != 0 {
		opts = append(opts, finboard.WithRequestTimeout(cfg.Source.Timeout.Duration()))
	}

	switch {
	case cfg.Source.Unlimited:
		opts = append(opts, finboard.WithRateLimits())
	case len(cfg.Source.RateLimits) > 0:
		limits := make([]finboard.RateLimit, len(cfg.Source.RateLimits))
		for i, l := range cfg.Source.RateLimits {
			limits[i] = finboard.RateLimit{Requests: l.Requests, Per: l.Per.Duration()}
		}
		opts = append(opts, finboard.WithRateLimits(limits...))
	}

	if cfg.Cache.Disabled {
		return append(opts, finboard.WithCacheDisabled()), nil
	}
	if cfg.Cache.Path != "" {
		opts = append(opts, finboard.WithCachePath(cfg.Cache.Path))
	}
	if cfg.Cache.TTL != 0 {
		opts = append(opts, finboard.WithCacheTTL(cfg.Cache.TTL.Duration()))
	}

	return opts, nil
}

// buildSymbol converts a single SymbolConfig to an SDK Symbol.
func buildSymbol(sc SymbolConfig) (finboard.Symbol, error) {
	var opts []finboard.SymbolOption

	if len(sc.Labels) > 0 {
		opts = append(opts, finboard.WithLabels(mapToKeyValuePairs(sc.Labels)...))
	}
	if sc.Timeout != 0 {
		opts = append(opts, finboard.WithTimeout(sc.Timeout.Duration()))
	}
	if sc.Interval != 0 {
		opts = append(opts, finboard.WithInterval(sc.Interval.Duration()))
	}

	return finboard.NewSymbol(sc.Symbol, opts...)
}

// buildWatchlist expands a WatchlistConfig into one Symbol per ticker.
func buildWatchlist(wc WatchlistConfig) ([]finboard.Symbol, error) {
	opts := []finboard.WatchlistOption{finboard.WithTickers(wc.Tickers...)}

	if len(wc.Labels) > 0 {
		opts = append(opts, finboard.WithWatchlistLabels(mapToKeyValuePairs(wc.Labels)...))
	}
	if wc.Timeout != 0 {
		opts = append(opts, finboard.WithWatchlistTimeout(wc.Timeout.Duration()))
	}
	if wc.Interval != 0 {
		opts = append(opts, finboard.WithWatchlistInterval(wc.Interval.Duration()))
	}

	return finboard.NewWatchlist(wc.Name, opts...)
}

// mapToKeyValuePairs converts a map to a sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	// sort keys for deterministic ordering
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}
