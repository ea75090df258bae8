package finboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/finboard/dashboard"
	"github.com/jpalmerr/finboard/internal/cache"
	"github.com/jpalmerr/finboard/internal/poller"
	"github.com/jpalmerr/finboard/internal/server"
	"github.com/jpalmerr/finboard/internal/session"
	"github.com/jpalmerr/finboard/internal/source"
	"github.com/jpalmerr/finboard/internal/store"
)

const (
	defaultRefreshInterval = time.Hour
	defaultPort            = 8080
	defaultMaxConcurrency  = 4
)

// Finboard fetches financial statements for watched symbols, keeps their
// latest metrics and serves the financial dashboard over HTTP.
//
// Finboard is created using [New] with functional options and started with
// [Finboard.Start]. [Finboard.Fetch] refreshes a single symbol on demand and
// may be used with or without a running server.
//
// The typical lifecycle is:
//
//	fb, err := finboard.New(finboard.WithSymbol(sym))
//	if err != nil {
//	    slog.Error("failed to create finboard", "error", err)
//	    os.Exit(1)
//	}
//	defer fb.Close()
//
//	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
//	defer cancel()
//
//	fb.Start(ctx) // blocks until context cancelled
type Finboard struct {
	title             string
	symbols           []Symbol
	refreshInterval   time.Duration
	port              int
	maxConcurrency    int
	logger            *slog.Logger
	snapshotCallbacks []func(Snapshot)

	source  *source.Source
	session *session.Client // nil with a custom statement fetcher
	cache   *cache.Store     // nil when disabled
	store   *store.MemoryStore

	closeOnce sync.Once
	closeErr  error
}

// New creates a new [Finboard] instance with the given options.
//
// Watching symbols is optional; without any, the server only answers
// searches. Other options have sensible defaults:
//   - Refresh interval: 1 hour
//   - Port: 8080
//   - Max concurrency: 4
//   - Response cache: 12 hours, under the user cache directory
//
// Unless [WithStatementFetcher] is given, New opens the response cache;
// call [Finboard.Close] to release it.
//
// Returns an error if any option is invalid, a symbol is watched twice, or
// the cache cannot be opened.
func New(opts ...Option) (*Finboard, error) {
	cfg := &fbConfig{
		symbols:         []Symbol{},
		refreshInterval: defaultRefreshInterval,
		port:            defaultPort,
		maxConcurrency:  defaultMaxConcurrency,
	}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	// symbols key the store and the scheduler's per-target timing
	seen := make(map[string]bool, len(cfg.symbols))
	for _, s := range cfg.symbols {
		if s.ticker == "" {
			return nil, errors.New("symbols must be created with NewSymbol")
		}
		if seen[s.ticker] {
			return nil, fmt.Errorf("duplicate symbol: %q", s.ticker)
		}
		seen[s.ticker] = true
	}

	if cfg.port < 1 || cfg.port > 65535 {
		return nil, fmt.Errorf("port must be between 1 and 65535, got %d", cfg.port)
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.Default()
	}

	fb := &Finboard{
		title:             cfg.title,
		symbols:           cfg.symbols,
		refreshInterval:   cfg.refreshInterval,
		port:              cfg.port,
		maxConcurrency:    cfg.maxConcurrency,
		logger:            logger,
		snapshotCallbacks: cfg.snapshotCallbacks,
		store:             store.NewMemoryStore(),
	}

	fetcher := cfg.fetcher
	if fetcher == nil {
		if !cfg.cacheDisabled {
			path := cfg.cachePath
			if path == "" {
				path = cache.DefaultPath()
			}
			ttl := cfg.cacheTTL
			if ttl == 0 {
				ttl = cache.DefaultTTL
			}
			c, err := cache.Open(path, ttl)
			if err != nil {
				return nil, fmt.Errorf("failed to open response cache: %w", err)
			}
			fb.cache = c
		}

		fb.session = session.NewClient(session.Config{
			UserAgent: cfg.userAgent,
			Timeout:   cfg.requestTimeout,
			Cache:     fb.cache,
			Limits:    sessionLimits(cfg.rateLimits),
			Logger:    logger,
		})
		fetcher = source.NewYahoo(fb.session, cfg.baseURL, logger)
	}
	fb.source = source.New(fetcher, logger)

	return fb, nil
}

// sessionLimits converts rate limits for the session. nil keeps the
// session defaults.
func sessionLimits(limits []RateLimit) []session.Limit {
	if limits == nil {
		return nil
	}
	out := make([]session.Limit, len(limits))
	for i, l := range limits {
		out[i] = session.Limit{Requests: l.Requests, Per: l.Per}
	}
	return out
}

// Start begins refreshing watched symbols and serving the dashboard.
//
// Start is a blocking call that runs until the provided context is cancelled.
// During execution:
//
//   - All watched symbols are refreshed immediately, then at their interval
//   - The HTTP server starts on the configured port
//   - The dashboard is available at http://localhost:<port>
//
// Returns nil on graceful shutdown. Returns an error if the HTTP server fails
// to start. Start does not close the response cache; see [Finboard.Close].
func (fb *Finboard) Start(ctx context.Context) error {
	fb.logger.Info("finboard starting", "symbol_count", len(fb.symbols))
	fb.logger.Info("refresh configured", "interval", fb.refreshInterval.String())
	fb.logger.Info("dashboard available", "url", fmt.Sprintf("http://localhost:%d", fb.port))

	if ctx.Err() != nil {
		return nil
	}

	scheduler := poller.NewScheduler(fb.targets(), fb.refreshInterval, fb.maxConcurrency, fb.source, fb.logger)
	scheduler.Start(ctx)

	// track the results consumer goroutine to ensure clean shutdown
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for result := range scheduler.Results() {
			fb.record(resultToSnapshot(result), true)
		}
	}()

	// cleanup ensures the scheduler is stopped and all results are processed
	cleanup := func() {
		scheduler.Stop() // closes results channel
		wg.Wait()
	}

	httpServer := server.NewServer(fb.store, server.LookupFunc(fb.lookup), fb.port, dashboard.Assets, fb.title, fb.logger)
	if err := httpServer.Start(ctx); err != nil {
		cleanup()
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}

	<-ctx.Done()
	cleanup()
	fb.logger.Info("finboard stopped")
	return nil
}

// Fetch refreshes symbol now and records the snapshot.
//
// The symbol does not have to be watched. A successful snapshot is always
// stored; a failed one is stored only for symbols already known, so a
// mistyped search does not show up on the home page. Callbacks run for
// every completed refresh.
//
// The returned error is the snapshot's Error, or [ErrEmptySymbol] for a
// blank symbol.
func (fb *Finboard) Fetch(ctx context.Context, symbol string) (Snapshot, error) {
	sym, err := source.NormalizeSymbol(symbol)
	if err != nil {
		return Snapshot{}, err
	}

	var labels map[string]string
	for _, s := range fb.symbols {
		if s.ticker == sym {
			labels = s.Labels()
			break
		}
	}

	start := time.Now()
	m, err := fb.source.Fetch(ctx, sym)
	snapshot := Snapshot{
		Symbol:    sym,
		Labels:    labels,
		Latency:   time.Since(start),
		FetchedAt: time.Now(),
		Error:     err,
	}
	if err == nil {
		snapshot.Metrics = &m
	}

	_, known := fb.store.Get(sym)
	fb.record(snapshot, err == nil || known)
	return snapshot, err
}

// lookup serves a search: a fresh stored snapshot is reused, otherwise
// the symbol is fetched. When the fetch fails, previously stored metrics
// are still returned.
func (fb *Finboard) lookup(ctx context.Context, symbol string) (store.Snapshot, error) {
	sym, err := source.NormalizeSymbol(symbol)
	if err != nil {
		return store.Snapshot{}, err
	}

	if s, ok := fb.store.Get(sym); ok && s.Error == nil && s.Metrics != nil && time.Since(s.FetchedAt) < fb.refreshInterval {
		return s, nil
	}

	_, fetchErr := fb.Fetch(ctx, sym)
	s, ok := fb.store.Get(sym)
	if !ok || s.Metrics == nil {
		if fetchErr == nil {
			fetchErr = fmt.Errorf("no metrics for %s", sym)
		}
		return store.Snapshot{}, fetchErr
	}
	return s, nil
}

// Snapshots returns the latest snapshot of every known symbol, sorted by
// symbol.
func (fb *Finboard) Snapshots() []Snapshot {
	all := fb.store.GetAll()
	result := make([]Snapshot, len(all))
	for i, s := range all {
		result[i] = storeToSnapshot(s)
	}
	return result
}

// ClearCache removes every cached upstream response. It is a no-op when
// the cache is disabled.
func (fb *Finboard) ClearCache(ctx context.Context) error {
	if fb.cache == nil {
		return nil
	}
	return fb.cache.Clear(ctx)
}

// Close releases the response cache and idle upstream connections.
// Safe to call multiple times.
func (fb *Finboard) Close() error {
	fb.closeOnce.Do(func() {
		fb.session.Close()
		if fb.cache != nil {
			fb.closeErr = fb.cache.Close()
		}
	})
	return fb.closeErr
}

// Symbols returns a copy of the watched symbols.
func (fb *Finboard) Symbols() []Symbol {
	cp := make([]Symbol, len(fb.symbols))
	copy(cp, fb.symbols)
	return cp
}

// Port returns the configured HTTP port for the dashboard server.
func (fb *Finboard) Port() int {
	return fb.port
}

// RefreshInterval returns the configured interval between refreshes.
func (fb *Finboard) RefreshInterval() time.Duration {
	return fb.refreshInterval
}

// targets converts the watched symbols to scheduler targets.
func (fb *Finboard) targets() []poller.Target {
	result := make([]poller.Target, len(fb.symbols))
	for i, s := range fb.symbols {
		result[i] = poller.Target{
			Symbol:   s.ticker,
			Labels:   copyMap(s.labels),
			Interval: s.interval,
			Timeout:  s.timeout,
		}
	}
	return result
}

// record stores the snapshot when persist is set, then runs callbacks.
func (fb *Finboard) record(s Snapshot, persist bool) {
	// store update first (callbacks fire after data is persisted)
	if persist {
		fb.store.Update(snapshotToStore(s))
	}

	for _, cb := range fb.snapshotCallbacks {
		invokeCallbackSafe(cb, s, fb.logger)
	}

	logAttrs := []any{
		"symbol", s.Symbol,
		"latency_ms", s.Latency.Milliseconds(),
	}
	if s.Error != nil {
		fb.logger.Warn("refresh completed with error", append(logAttrs, "error", s.Error.Error())...)
	} else {
		fb.logger.Debug("refresh completed", append(logAttrs, "debt_to_equity", s.Metrics.DebtToEquity)...)
	}
}

// resultToSnapshot converts a scheduler result to the public type.
func resultToSnapshot(r poller.Result) Snapshot {
	return Snapshot{
		Symbol:    r.Symbol,
		Labels:    copyMap(r.Labels),
		Metrics:   r.Metrics,
		Latency:   r.Latency,
		FetchedAt: r.FetchedAt,
		Error:     r.Error,
	}
}

// snapshotToStore converts a snapshot to its JSON form. The free cash
// flow margin is scaled to percent.
func snapshotToStore(s Snapshot) store.Snapshot {
	var errStr *string
	if s.Error != nil {
		msg := s.Error.Error()
		errStr = &msg
	}

	var (
		metrics  *store.Metrics
		computed *FinancialMetrics
	)
	if s.Metrics != nil {
		m := *s.Metrics
		computed = &m
		metrics = &store.Metrics{
			DebtToEquity:       s.Metrics.DebtToEquity,
			CashReserves:       s.Metrics.CashReserves,
			WorkingCapital:     s.Metrics.WorkingCapital,
			FreeCashFlowMargin: s.Metrics.FreeCashFlowMargin * 100,
			Capex:              s.Metrics.Capex,
			DividendYield:      s.Metrics.DividendYield,
			HedgingPercentage:  s.Metrics.HedgingPercentage,
		}
	}

	return store.Snapshot{
		Symbol:    s.Symbol,
		Metrics:   metrics,
		Labels:    copyMap(s.Labels),
		LatencyMs: s.Latency.Milliseconds(),
		FetchedAt: s.FetchedAt,
		Error:     errStr,
		Computed:  computed,
		Latency:   s.Latency,
	}
}

// storeToSnapshot is the inverse of snapshotToStore. Snapshots recorded
// in process convert back exactly; JSON-only ones are rescaled.
func storeToSnapshot(s store.Snapshot) Snapshot {
	var err error
	if s.Error != nil {
		err = errors.New(*s.Error)
	}

	var metrics *FinancialMetrics
	switch {
	case s.Computed != nil:
		m := *s.Computed
		metrics = &m
	case s.Metrics != nil:
		metrics = &FinancialMetrics{
			DebtToEquity:       s.Metrics.DebtToEquity,
			CashReserves:       s.Metrics.CashReserves,
			WorkingCapital:     s.Metrics.WorkingCapital,
			FreeCashFlowMargin: s.Metrics.FreeCashFlowMargin / 100,
			Capex:              s.Metrics.Capex,
			DividendYield:      s.Metrics.DividendYield,
			HedgingPercentage:  s.Metrics.HedgingPercentage,
		}
	}

	latency := s.Latency
	if latency == 0 {
		latency = time.Duration(s.LatencyMs) * time.Millisecond
	}

	return Snapshot{
		Symbol:    s.Symbol,
		Labels:    copyMap(s.Labels),
		Metrics:   metrics,
		Latency:   latency,
		FetchedAt: s.FetchedAt,
		Error:     err,
	}
}

// invokeCallbackSafe calls a snapshot callback with panic recovery.
// Panics are logged under a correlation ID and do not propagate.
func invokeCallbackSafe(cb func(Snapshot), s Snapshot, logger *slog.Logger) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("snapshot callback panicked",
				"correlation_id", uuid.NewString(),
				"panic", r,
				"symbol", s.Symbol,
			)
		}
	}()
	cb(s)
}
