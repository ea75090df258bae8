// Package finboard provides an embeddable financial health dashboard for
// stock symbols.
//
// finboard fetches the most recent annual income statement, balance sheet
// and cash flow statement of a company, derives a handful of health metrics
// (debt to equity, cash reserves, working capital, free cash flow margin)
// and serves them as a server-rendered dashboard with live updates.
//
// # Quick Start
//
//	vale, _ := finboard.NewSymbol("VALE")
//	fb, _ := finboard.New(finboard.WithSymbol(vale))
//	defer fb.Close()
//
//	// Set up graceful shutdown on SIGINT/SIGTERM
//	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer stop()
//
//	fb.Start(ctx) // blocks until context is cancelled
//
// Open http://localhost:8080 and search for any ticker; watched symbols are
// refreshed in the background and listed on the home page.
//
// # Configuration
//
// finboard uses the functional options pattern for configuration:
//
//	fb, err := finboard.New(
//	    finboard.WithSymbols(vale, pbr),
//	    finboard.WithRefreshInterval(6 * time.Hour),
//	    finboard.WithPort(9090),
//	    finboard.WithCacheTTL(24 * time.Hour),
//	)
//
// Symbols can also be configured with options:
//
//	pbr, err := finboard.NewSymbol("PBR",
//	    finboard.WithLabels("sector", "energy"),
//	    finboard.WithInterval(12 * time.Hour),
//	)
//
// A [NewWatchlist] builds several symbols that share labels and timing:
//
//	brazil, err := finboard.NewWatchlist("Brazil",
//	    finboard.WithTickers("VALE", "PBR", "ITUB"),
//	    finboard.WithWatchlistInterval(6 * time.Hour),
//	)
//
// The config package builds the same options from a YAML file, and
// cmd/finboard wraps them in a CLI.
//
// # Data Source
//
// Statements come from the Yahoo Finance fundamentals time series. Upstream
// requests go through a session that sends a fixed User-Agent, caches
// successful responses in SQLite for 12 hours and enforces two rate limits:
// at most 2 requests every 5 seconds and 10 per minute, adjustable with
// [WithRateLimits]. Use [WithStatementFetcher] to plug in another source.
//
// # Architecture
//
// finboard consists of several internal packages (under internal/):
//
//   - internal/source: Statements, metric computation and the Yahoo fetcher
//   - internal/session: Cached, rate-limited HTTP client
//   - internal/cache: SQLite response cache
//   - internal/poller: Concurrent refresh scheduler with worker pool
//   - internal/store: In-memory snapshots with pub/sub for live updates
//   - internal/server: HTTP pages, REST API and Server-Sent Events
//   - internal/yahoomock: Canned provider responses for demos and tests
//   - dashboard: Dashboard rendering, mount adapter and embedded host pages
//
// The internal packages are not part of the public API and may change
// without notice.
package finboard
