package poller

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jpalmerr/finboard/internal/source"
)

// Fetcher computes metrics for a symbol. [*source.Source] implements it.
type Fetcher interface {
	Fetch(ctx context.Context, symbol string) (source.FinancialMetrics, error)
}

// FetcherFunc adapts a function to [Fetcher].
type FetcherFunc func(ctx context.Context, symbol string) (source.FinancialMetrics, error)

// Fetch calls f(ctx, symbol).
func (f FetcherFunc) Fetch(ctx context.Context, symbol string) (source.FinancialMetrics, error) {
	return f(ctx, symbol)
}

// Target is a symbol to refresh.
type Target struct {
	Symbol string

	// Labels contains key-value metadata for the symbol.
	Labels map[string]string

	// Interval overrides the scheduler's interval when non-zero.
	Interval time.Duration

	// Timeout bounds a single refresh. Zero means no extra bound.
	Timeout time.Duration
}

// Result holds the outcome of refreshing a single symbol.
type Result struct {
	Symbol string
	Labels map[string]string

	// Metrics is nil when Error is set.
	Metrics *source.FinancialMetrics

	Latency   time.Duration
	FetchedAt time.Time
	Error     error
}

// Scheduler manages periodic refresh of multiple symbols.
//
// The scheduler refreshes every target immediately on start, then ticks at
// the GCD of all target intervals and refreshes only targets that are due.
// Results are emitted on [Scheduler.Results].
//
// All lifecycle methods (Start, Stop) are safe for concurrent use.
type Scheduler struct {
	targets        []Target
	interval       time.Duration // default interval
	maxConcurrency int
	fetcher        Fetcher
	results        chan Result
	logger         *slog.Logger
	ctx            context.Context
	cancel         context.CancelFunc
	wg             sync.WaitGroup

	mu        sync.Mutex
	started   bool
	stopped   bool
	closeOnce sync.Once

	// per-target timing for tick-and-check
	lastFetchedAt map[string]time.Time
	baseInterval  time.Duration
}

// NewScheduler creates a new [Scheduler].
//
// The scheduler must be started with [Scheduler.Start] and stopped with
// [Scheduler.Stop].
func NewScheduler(targets []Target, interval time.Duration, maxConcurrency int, fetcher Fetcher, logger *slog.Logger) *Scheduler {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Scheduler{
		targets:        targets,
		interval:       interval,
		maxConcurrency: maxConcurrency,
		fetcher:        fetcher,
		results:        make(chan Result, len(targets)),
		logger:         logger,
	}
}

// Results returns a channel of refresh results, closed when the scheduler
// stops.
func (s *Scheduler) Results() <-chan Result {
	return s.results
}

// calculateBaseInterval returns the GCD of all target intervals, floored
// at one second.
func (s *Scheduler) calculateBaseInterval() time.Duration {
	if len(s.targets) == 0 {
		return s.interval
	}

	result := s.intervalFor(s.targets[0])
	for _, t := range s.targets[1:] {
		result = gcdDuration(result, s.intervalFor(t))
	}

	// floor at 1 second to prevent CPU thrashing
	if result < time.Second {
		result = time.Second
	}
	return result
}

func (s *Scheduler) intervalFor(t Target) time.Duration {
	if t.Interval > 0 {
		return t.Interval
	}
	return s.interval
}

func gcdDuration(a, b time.Duration) time.Duration {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

// Start begins the refresh loop in a background goroutine.
//
// If ctx is nil, context.Background() is used as the parent context.
// Start is idempotent; subsequent calls after the first are no-ops.
// If Stop was called before Start, Start is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.lastFetchedAt = make(map[string]time.Time, len(s.targets))
	s.baseInterval = s.calculateBaseInterval()

	if ctx == nil {
		ctx = context.Background()
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	runCtx := s.ctx // capture under lock
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer s.closeOnce.Do(func() { close(s.results) })

		s.refreshDue(runCtx, true)

		ticker := time.NewTicker(s.baseInterval)
		defer ticker.Stop()

		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				s.refreshDue(runCtx, false)
			}
		}
	}()
}

// Stop halts the scheduler, waits for in-flight refreshes and closes the
// results channel.
//
// Stop is idempotent. Calling Stop before Start is a safe no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.stopped {
		s.stopped = true
		if s.cancel != nil {
			s.cancel()
		}
	}
	s.mu.Unlock()

	s.wg.Wait()

	// ensure channel is closed even if Start() was never called
	s.closeOnce.Do(func() { close(s.results) })
}

// refreshDue refreshes targets whose interval has elapsed, or all of them
// when immediate is set.
//
// lastFetchedAt is updated when a refresh starts, so a slow upstream
// stretches the effective interval by the fetch duration.
func (s *Scheduler) refreshDue(ctx context.Context, immediate bool) {
	now := time.Now()
	due := make([]Target, 0, len(s.targets))

	s.mu.Lock()
	for _, t := range s.targets {
		last, seen := s.lastFetchedAt[t.Symbol]
		if immediate || !seen || now.Sub(last) >= s.intervalFor(t) {
			due = append(due, t)
			s.lastFetchedAt[t.Symbol] = now
		}
	}
	s.mu.Unlock()

	if len(due) == 0 {
		return
	}
	s.refreshAll(ctx, due)
}

// refreshAll refreshes targets concurrently, respecting maxConcurrency.
func (s *Scheduler) refreshAll(ctx context.Context, targets []Target) {
	jobs := make(chan Target, len(targets))

	var wg sync.WaitGroup
	for i := 0; i < s.maxConcurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range jobs {
				result := s.refresh(ctx, t)
				select {
				case s.results <- result:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	for _, t := range targets {
		select {
		case jobs <- t:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)

	wg.Wait()
}

// refresh fetches a single target.
func (s *Scheduler) refresh(ctx context.Context, t Target) Result {
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	start := time.Now()
	m, err := s.safeFetch(ctx, t.Symbol)

	result := Result{
		Symbol:    t.Symbol,
		Labels:    t.Labels,
		Latency:   time.Since(start),
		FetchedAt: time.Now(),
		Error:     err,
	}
	if err == nil {
		result.Metrics = &m
	}
	return result
}

// safeFetch calls the fetcher with panic recovery. A panic is logged with
// its stack under a correlation ID, and the returned error carries the ID.
func (s *Scheduler) safeFetch(ctx context.Context, symbol string) (m source.FinancialMetrics, err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()

			s.logger.Error("fetcher panic",
				"correlation_id", correlationID,
				"symbol", symbol,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)

			m = source.FinancialMetrics{}
			err = fmt.Errorf("fetcher panic (correlation_id: %s)", correlationID)
		}
	}()
	return s.fetcher.Fetch(ctx, symbol)
}
