package finboard

import (
	"errors"
	"time"
)

// symbolConfig holds mutable state during symbol construction.
type symbolConfig struct {
	labels   map[string]string
	timeout  time.Duration
	interval time.Duration
}

// SymbolOption configures a [Symbol] during construction.
//
// Options return an error if validation fails.
//
// Built-in options: [WithLabels], [WithTimeout], [WithInterval].
type SymbolOption func(*symbolConfig) error

// WithLabels adds metadata labels to the symbol.
//
// Labels are key-value pairs carried on every snapshot of the symbol, for
// example a sector or exchange.
//
// Accepts variadic key-value pairs. The number of arguments must be even.
//
// Example:
//
//	sym, err := finboard.NewSymbol("PBR",
//	    finboard.WithLabels("sector", "energy", "exchange", "NYSE"),
//	)
//
// Returns an error if an odd number of arguments is provided.
func WithLabels(keyValues ...string) SymbolOption {
	return func(cfg *symbolConfig) error {
		if len(keyValues)%2 != 0 {
			return errors.New("WithLabels requires an even number of arguments (key-value pairs)")
		}
		for i := 0; i < len(keyValues); i += 2 {
			cfg.labels[keyValues[i]] = keyValues[i+1]
		}
		return nil
	}
}

// WithTimeout bounds a single refresh of the symbol.
//
// The timeout covers rate limit waits as well as the upstream requests, so
// it should leave room for the session's limits when many symbols are
// watched. Defaults to 30 seconds.
//
// Returns an error if the duration is zero or negative.
func WithTimeout(d time.Duration) SymbolOption {
	return func(cfg *symbolConfig) error {
		if d <= 0 {
			return errors.New("timeout must be positive")
		}
		cfg.timeout = d
		return nil
	}
}

// WithInterval sets a custom refresh interval for this symbol.
//
// The interval must be at least 1 second and at most 24 hours. If not
// specified, the global interval configured via [WithRefreshInterval] is used.
//
// Note: The interval is measured from when a refresh starts, not when it
// completes.
//
// Example:
//
//	sym, _ := finboard.NewSymbol("VALE",
//	    finboard.WithInterval(6 * time.Hour),
//	)
func WithInterval(d time.Duration) SymbolOption {
	return func(cfg *symbolConfig) error {
		if d < time.Second {
			return errors.New("interval must be at least 1 second")
		}
		if d > 24*time.Hour {
			return errors.New("interval must not exceed 24 hours")
		}
		cfg.interval = d
		return nil
	}
}
