package finboard

import (
	"time"

	"github.com/jpalmerr/finboard/internal/source"
)

const defaultSymbolTimeout = 30 * time.Second

// Symbol is a watched stock ticker.
//
// Symbol is immutable after creation via [NewSymbol]. Getter methods return
// copies of mutable data.
type Symbol struct {
	ticker   string
	labels   map[string]string
	timeout  time.Duration
	interval time.Duration
}

// Ticker returns the normalized (trimmed, upper-case) ticker.
func (s Symbol) Ticker() string {
	return s.ticker
}

// Labels returns a copy of the symbol's labels, or nil if none are set.
func (s Symbol) Labels() map[string]string {
	return copyMap(s.labels)
}

// Timeout bounds a single refresh of the symbol, including rate limit waits.
// Defaults to 30 seconds.
func (s Symbol) Timeout() time.Duration {
	return s.timeout
}

// Interval returns the symbol's refresh interval override, or 0 if the
// global interval from [WithRefreshInterval] applies.
func (s Symbol) Interval() time.Duration {
	return s.interval
}

// NewSymbol creates a [Symbol] for ticker.
//
// The ticker is trimmed and upper-cased. Returns an error if it is empty or
// an option is invalid.
//
// Example:
//
//	vale, err := finboard.NewSymbol("vale",
//	    finboard.WithLabels("sector", "mining"),
//	    finboard.WithInterval(6 * time.Hour),
//	)
func NewSymbol(ticker string, opts ...SymbolOption) (Symbol, error) {
	normalized, err := source.NormalizeSymbol(ticker)
	if err != nil {
		return Symbol{}, err
	}

	cfg := &symbolConfig{
		labels:  make(map[string]string),
		timeout: defaultSymbolTimeout,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return Symbol{}, err
		}
	}

	return Symbol{
		ticker:   normalized,
		labels:   cfg.labels,
		timeout:  cfg.timeout,
		interval: cfg.interval,
	}, nil
}

// copyMap returns a shallow copy of the map.
func copyMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	cp := make(map[string]string, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
