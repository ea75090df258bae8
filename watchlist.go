package finboard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// WatchlistLabel is the label key that carries a symbol's watchlist name.
const WatchlistLabel = "watchlist"

// watchlistConfig holds mutable state during watchlist construction.
type watchlistConfig struct {
	tickers      []string
	staticLabels map[string]string
	timeout      time.Duration
	interval     time.Duration
}

// WatchlistOption configures a watchlist built with [NewWatchlist].
type WatchlistOption func(*watchlistConfig) error

// NewWatchlist creates one [Symbol] per ticker with shared settings.
//
// Every symbol is labeled with [WatchlistLabel] set to name. Static labels
// from [WithWatchlistLabels] take precedence on collision. Tickers are
// normalized; a ticker listed twice is an error.
//
// Example:
//
//	symbols, err := finboard.NewWatchlist("Brazil",
//	    finboard.WithTickers("VALE", "PBR", "ITUB"),
//	    finboard.WithWatchlistLabels("country", "BR"),
//	    finboard.WithWatchlistInterval(6 * time.Hour),
//	)
//	// usable with WithSymbols(symbols...)
func NewWatchlist(name string, opts ...WatchlistOption) ([]Symbol, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("watchlist name cannot be empty")
	}

	cfg := &watchlistConfig{staticLabels: make(map[string]string)}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	if len(cfg.tickers) == 0 {
		return nil, errors.New("at least one ticker required")
	}

	labels := mergeMaps(map[string]string{WatchlistLabel: name}, cfg.staticLabels)

	symOpts := []SymbolOption{WithLabels(flattenMap(labels)...)}
	if cfg.timeout > 0 {
		symOpts = append(symOpts, WithTimeout(cfg.timeout))
	}
	if cfg.interval > 0 {
		symOpts = append(symOpts, WithInterval(cfg.interval))
	}

	symbols := make([]Symbol, 0, len(cfg.tickers))
	seen := make(map[string]bool, len(cfg.tickers))
	for _, ticker := range cfg.tickers {
		sym, err := NewSymbol(ticker, symOpts...)
		if err != nil {
			return nil, fmt.Errorf("watchlist %q: ticker %q: %w", name, ticker, err)
		}
		if seen[sym.ticker] {
			return nil, fmt.Errorf("watchlist %q: duplicate ticker %q", name, sym.ticker)
		}
		seen[sym.ticker] = true
		symbols = append(symbols, sym)
	}

	return symbols, nil
}

// WithTickers adds tickers to the watchlist, in order.
func WithTickers(tickers ...string) WatchlistOption {
	return func(cfg *watchlistConfig) error {
		cfg.tickers = append(cfg.tickers, tickers...)
		return nil
	}
}

// WithWatchlistLabels adds labels to every symbol in the watchlist.
//
// Returns an error if an odd number of arguments is provided.
func WithWatchlistLabels(keyValues ...string) WatchlistOption {
	return func(cfg *watchlistConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithWatchlistLabels requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.staticLabels[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithWatchlistTimeout sets the refresh timeout for every symbol. Validated
// as [WithTimeout].
func WithWatchlistTimeout(d time.Duration) WatchlistOption {
	return func(cfg *watchlistConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithWatchlistInterval sets the refresh interval for every symbol.
// Validated as [WithInterval] when the symbols are built.
func WithWatchlistInterval(d time.Duration) WatchlistOption {
	return func(cfg *watchlistConfig) error {
		cfg.interval = d
		return nil
	}
}

// mergeMaps merges maps left to right; later keys win.
func mergeMaps(maps ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}

// flattenMap converts a map to alternating key-value pairs, sorted by key.
func flattenMap(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]string, 0, len(m)*2)
	for _, k := range keys {
		result = append(result, k, m[k])
	}
	return result
}
