package finboard

import (
	"errors"
	"log/slog"
	"time"
)

// fbConfig holds mutable state during Finboard construction.
type fbConfig struct {
	title             string
	symbols           []Symbol
	refreshInterval   time.Duration
	port              int
	maxConcurrency    int
	logger            *slog.Logger
	snapshotCallbacks []func(Snapshot)

	fetcher        StatementFetcher
	baseURL        string
	userAgent      string
	requestTimeout time.Duration
	cachePath      string
	cacheTTL       time.Duration
	cacheDisabled  bool
	rateLimits     []RateLimit
}

// Option configures a [Finboard] instance during construction.
//
// Options return an error if validation fails.
type Option func(*fbConfig) error

// WithSymbol adds a single [Symbol] to the watch list.
//
// Can be called multiple times. Watched symbols are refreshed in the
// background and listed on the home page; any other symbol can still be
// searched on demand.
func WithSymbol(s Symbol) Option {
	return func(cfg *fbConfig) error {
		cfg.symbols = append(cfg.symbols, s)
		return nil
	}
}

// WithSymbols adds multiple [Symbol] values to the watch list.
//
// Equivalent to calling [WithSymbol] multiple times.
func WithSymbols(symbols ...Symbol) Option {
	return func(cfg *fbConfig) error {
		cfg.symbols = append(cfg.symbols, symbols...)
		return nil
	}
}

// WithRefreshInterval sets how often watched symbols are refreshed.
//
// Annual statements change rarely, so the default is one hour. Searched
// symbols are served from the store while their snapshot is younger than
// this interval.
//
// Returns an error if the duration is zero or negative.
func WithRefreshInterval(d time.Duration) Option {
	return func(cfg *fbConfig) error {
		if d <= 0 {
			return errors.New("refresh interval must be positive")
		}
		cfg.refreshInterval = d
		return nil
	}
}

// WithPort sets the HTTP port for the dashboard server.
//
// Defaults to 8080 if not specified.
//
// Returns an error if the port is outside the valid range (1-65535).
func WithPort(port int) Option {
	return func(cfg *fbConfig) error {
		if port < 1 || port > 65535 {
			return errors.New("port must be between 1 and 65535")
		}
		cfg.port = port
		return nil
	}
}

// WithMaxConcurrency sets how many symbols are refreshed at once.
//
// Upstream requests are additionally bounded by the session rate limits.
// Defaults to 4 if not specified.
//
// Returns an error if the value is zero or negative.
func WithMaxConcurrency(n int) Option {
	return func(cfg *fbConfig) error {
		if n <= 0 {
			return errors.New("max concurrency must be positive")
		}
		cfg.maxConcurrency = n
		return nil
	}
}

// WithLogger sets a custom [slog.Logger] for the Finboard instance.
//
// If not specified, [slog.Default] is used.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
//	fb, err := finboard.New(
//	    finboard.WithSymbol(sym),
//	    finboard.WithLogger(logger),
//	)
//
// Returns an error if the logger is nil.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *fbConfig) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithSnapshotCallback registers a function called after every refresh,
// scheduled or on demand.
//
// Multiple callbacks run in registration order. Callbacks for scheduled
// refreshes are invoked from a single goroutine and must not block; on
// demand refreshes invoke them from the requesting goroutine. Panics are
// recovered and logged with a correlation ID.
//
// Example:
//
//	fb, err := finboard.New(
//	    finboard.WithSymbol(sym),
//	    finboard.WithSnapshotCallback(func(s finboard.Snapshot) {
//	        if s.Metrics != nil && s.Metrics.DebtToEquity > 2 {
//	            log.Printf("ALERT: %s is highly leveraged", s.Symbol)
//	        }
//	    }),
//	)
//
// Nil callbacks are silently ignored.
func WithSnapshotCallback(cb func(Snapshot)) Option {
	return func(cfg *fbConfig) error {
		if cb == nil {
			return nil
		}
		cfg.snapshotCallbacks = append(cfg.snapshotCallbacks, cb)
		return nil
	}
}

// WithTitle sets the title displayed in the browser tab and page header.
//
// If not specified, defaults to "Financial Analysis".
func WithTitle(title string) Option {
	return func(cfg *fbConfig) error {
		cfg.title = title
		return nil
	}
}

// WithStatementFetcher replaces the Yahoo Finance fetcher.
//
// When set, no HTTP session or cache is created and the session options
// ([WithBaseURL], [WithUserAgent], [WithRequestTimeout], and the cache
// options) have no effect.
//
// Returns an error if the fetcher is nil.
func WithStatementFetcher(f StatementFetcher) Option {
	return func(cfg *fbConfig) error {
		if f == nil {
			return errors.New("statement fetcher cannot be nil")
		}
		cfg.fetcher = f
		return nil
	}
}

// WithBaseURL sets the Yahoo Finance API host. Useful for pointing at a
// mirror or a local fake.
//
// Returns an error if the URL is empty.
func WithBaseURL(baseURL string) Option {
	return func(cfg *fbConfig) error {
		if baseURL == "" {
			return errors.New("base URL cannot be empty")
		}
		cfg.baseURL = baseURL
		return nil
	}
}

// WithUserAgent overrides the User-Agent sent upstream. Defaults to
// "finboard/1.0".
func WithUserAgent(ua string) Option {
	return func(cfg *fbConfig) error {
		if ua == "" {
			return errors.New("user agent cannot be empty")
		}
		cfg.userAgent = ua
		return nil
	}
}

// WithRequestTimeout bounds each upstream request. Defaults to 15 seconds.
//
// Returns an error if the duration is zero or negative.
func WithRequestTimeout(d time.Duration) Option {
	return func(cfg *fbConfig) error {
		if d <= 0 {
			return errors.New("request timeout must be positive")
		}
		cfg.requestTimeout = d
		return nil
	}
}

// WithCachePath sets the SQLite file used to cache upstream responses.
// Defaults to finboard/http.cache under the user cache directory.
func WithCachePath(path string) Option {
	return func(cfg *fbConfig) error {
		if path == "" {
			return errors.New("cache path cannot be empty")
		}
		cfg.cachePath = path
		return nil
	}
}

// WithCacheTTL sets how long cached responses stay fresh. Defaults to 12
// hours.
//
// Returns an error if the duration is zero or negative.
func WithCacheTTL(d time.Duration) Option {
	return func(cfg *fbConfig) error {
		if d <= 0 {
			return errors.New("cache TTL must be positive")
		}
		cfg.cacheTTL = d
		return nil
	}
}

// WithCacheDisabled turns off the response cache. Every refresh then goes
// upstream, subject to the rate limits.
func WithCacheDisabled() Option {
	return func(cfg *fbConfig) error {
		cfg.cacheDisabled = true
		return nil
	}
}

// RateLimit allows Requests upstream requests per Per interval.
type RateLimit struct {
	Requests int
	Per      time.Duration
}

// WithRateLimits replaces the upstream rate limits. Limits stack: a request
// waits until every limit allows it. Calling it with no limits disables
// limiting. Cached responses are never limited.
//
// Defaults to 2 requests per 5 seconds and 10 per minute.
//
// Returns an error if a limit has a non-positive count or interval.
func WithRateLimits(limits ...RateLimit) Option {
	return func(cfg *fbConfig) error {
		for _, l := range limits {
			if l.Requests <= 0 {
				return errors.New("rate limit requests must be positive")
			}
			if l.Per <= 0 {
				return errors.New("rate limit interval must be positive")
			}
		}
		cfg.rateLimits = append([]RateLimit{}, limits...)
		return nil
	}
}
