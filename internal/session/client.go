package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/jpalmerr/finboard/internal/cache"
)

const maxResponseBodySize = 4 << 20 // 4MB, statements for many items are large

// ErrResponseTooLarge is returned for bodies over the 4MB read limit.
var ErrResponseTooLarge = errors.New("response body too large")

// DefaultUserAgent is sent with every request unless configured otherwise.
const DefaultUserAgent = "finboard/1.0"

const defaultTimeout = 15 * time.Second

// connection pooling limits
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

// Limit allows Requests requests per Per interval.
type Limit struct {
	Requests int
	Per      time.Duration
}

// DefaultLimits are applied when [Config.Limits] is nil: at most 2 requests
// every 5 seconds and 10 per minute.
var DefaultLimits = []Limit{
	{Requests: 2, Per: 5 * time.Second},
	{Requests: 10, Per: time.Minute},
}

func (l Limit) limiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(l.Per/time.Duration(l.Requests)), l.Requests)
}

// Config configures a [Client].
type Config struct {
	// UserAgent defaults to [DefaultUserAgent].
	UserAgent string

	// Timeout bounds each request. Zero means 15 seconds.
	Timeout time.Duration

	// Cache stores successful GET responses. Nil disables caching.
	// The client does not close it.
	Cache *cache.Store

	// Limits are the stacked rate limits for uncached requests. Nil means
	// [DefaultLimits]; an empty non-nil slice disables limiting.
	Limits []Limit

	// Transport is the underlying round tripper. Nil means a pooled
	// http.Transport.
	Transport http.RoundTripper

	Logger *slog.Logger
}

// Response holds the result of a request made by [Client].
type Response struct {
	// Body is the response body, limited to 4MB.
	Body []byte

	// StatusCode is zero if the request failed before a response arrived.
	StatusCode int

	// Cached reports whether the response was served from the cache.
	Cached bool

	Latency time.Duration

	// Error is any transport or read error. A non-2xx status is not an error.
	Error error
}

// Client is a cached, rate-limited HTTP client.
//
// Client is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	base       http.RoundTripper
	cache      *cache.Store
	timeout    time.Duration
	userAgent  string
	logger     *slog.Logger
}

// NewClient creates a [Client] from cfg.
func NewClient(cfg Config) *Client {
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Limits == nil {
		cfg.Limits = DefaultLimits
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	base := cfg.Transport
	if base == nil {
		base = &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        defaultMaxIdleConns,
			MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
			MaxConnsPerHost:     defaultMaxConnsPerHost,
			IdleConnTimeout:     defaultIdleConnTimeout,
		}
	}

	limiters := make([]*rate.Limiter, 0, len(cfg.Limits))
	for _, l := range cfg.Limits {
		if l.Requests > 0 && l.Per > 0 {
			limiters = append(limiters, l.limiter())
		}
	}

	var rt http.RoundTripper = &limitTransport{next: base, limiters: limiters}
	if cfg.Cache != nil {
		rt = &cacheTransport{next: rt, store: cfg.Cache, logger: cfg.Logger}
	}
	rt = &userAgentTransport{next: rt, userAgent: cfg.UserAgent}

	return &Client{
		// no client timeout - per-request timeouts via context
		httpClient: &http.Client{Transport: rt},
		base:       base,
		cache:      cfg.Cache,
		timeout:    cfg.Timeout,
		userAgent:  cfg.UserAgent,
		logger:     cfg.Logger,
	}
}

// UserAgent returns the User-Agent header the client sends.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Fetch performs a GET request for url.
//
// Fetch always returns a Response; errors are captured in the Error field.
// Cache hits return without waiting on the rate limiters.
func (c *Client) Fetch(ctx context.Context, url string) Response {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("failed to create request: %w", err),
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Response{
			Latency: time.Since(start),
			Error:   fmt.Errorf("request failed: %w", err),
		}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize+1))
	if err != nil {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("failed to read response body: %w", err),
		}
	}
	if int64(len(body)) > maxResponseBodySize {
		return Response{
			StatusCode: resp.StatusCode,
			Latency:    time.Since(start),
			Error:      fmt.Errorf("%w: limit %d bytes", ErrResponseTooLarge, maxResponseBodySize),
		}
	}

	return Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Cached:     resp.Header.Get(cacheHeader) == cacheHit,
		Latency:    time.Since(start),
	}
}

// ClearCache removes every cached response. It is a no-op without a cache.
func (c *Client) ClearCache(ctx context.Context) error {
	if c.cache == nil {
		return nil
	}
	return c.cache.Clear(ctx)
}

// Close closes idle connections in the pool. The client remains usable.
// Safe to call multiple times.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if transport, ok := c.base.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
