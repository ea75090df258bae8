package finboard

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"
)

// newTestFinboard builds a Finboard with a static fetcher so no cache file
// or session is created.
func newTestFinboard(t *testing.T, opts ...Option) *Finboard {
	t.Helper()
	fb, err := New(append([]Option{WithStatementFetcher(staticFetcher(nil))}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return fb
}

func TestNew_Defaults(t *testing.T) {
	fb := newTestFinboard(t)

	if fb.Port() != 8080 {
		t.Errorf("Port() = %v, want %v", fb.Port(), 8080)
	}
	if fb.RefreshInterval() != time.Hour {
		t.Errorf("RefreshInterval() = %v, want %v", fb.RefreshInterval(), time.Hour)
	}
	if fb.maxConcurrency != 4 {
		t.Errorf("maxConcurrency = %v, want %v", fb.maxConcurrency, 4)
	}
	if fb.logger != slog.Default() {
		t.Error("logger should default to slog.Default()")
	}
	if fb.title != "" {
		t.Errorf("title = %q, want empty (server applies its default)", fb.title)
	}
}

func TestWithSymbols(t *testing.T) {
	s1, _ := NewSymbol("VALE")
	s2, _ := NewSymbol("PBR")
	s3, _ := NewSymbol("ITUB")

	fb := newTestFinboard(t, WithSymbols(s1, s2), WithSymbol(s3))

	got := fb.Symbols()
	if len(got) != 3 {
		t.Fatalf("len(Symbols()) = %d, want 3", len(got))
	}
	if got[0].Ticker() != "VALE" || got[2].Ticker() != "ITUB" {
		t.Errorf("Symbols() order = %v, %v, %v", got[0].Ticker(), got[1].Ticker(), got[2].Ticker())
	}
}

func TestSymbols_Immutability(t *testing.T) {
	s1, _ := NewSymbol("VALE")
	fb := newTestFinboard(t, WithSymbol(s1))

	got := fb.Symbols()
	other, _ := NewSymbol("PBR")
	got[0] = other

	if fb.Symbols()[0].Ticker() != "VALE" {
		t.Error("Symbols() mutation affected original Finboard")
	}
}

func TestOptions_Valid(t *testing.T) {
	fb := newTestFinboard(t,
		WithRefreshInterval(6*time.Hour),
		WithPort(9090),
		WithMaxConcurrency(2),
		WithTitle("Mining Watchlist"),
		WithLogger(testLogger()),
	)

	if fb.RefreshInterval() != 6*time.Hour {
		t.Errorf("RefreshInterval() = %v, want 6h", fb.RefreshInterval())
	}
	if fb.Port() != 9090 {
		t.Errorf("Port() = %v, want 9090", fb.Port())
	}
	if fb.maxConcurrency != 2 {
		t.Errorf("maxConcurrency = %v, want 2", fb.maxConcurrency)
	}
	if fb.title != "Mining Watchlist" {
		t.Errorf("title = %q, want %q", fb.title, "Mining Watchlist")
	}
}

func TestOptions_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		opt     Option
		wantErr string
	}{
		{"zero refresh interval", WithRefreshInterval(0), "refresh interval must be positive"},
		{"negative refresh interval", WithRefreshInterval(-time.Second), "refresh interval must be positive"},
		{"port zero", WithPort(0), "port must be between"},
		{"port too high", WithPort(65536), "port must be between"},
		{"zero concurrency", WithMaxConcurrency(0), "max concurrency must be positive"},
		{"nil logger", WithLogger(nil), "logger cannot be nil"},
		{"nil fetcher", WithStatementFetcher(nil), "statement fetcher cannot be nil"},
		{"empty base URL", WithBaseURL(""), "base URL cannot be empty"},
		{"empty user agent", WithUserAgent(""), "user agent cannot be empty"},
		{"zero request timeout", WithRequestTimeout(0), "request timeout must be positive"},
		{"empty cache path", WithCachePath(""), "cache path cannot be empty"},
		{"zero cache TTL", WithCacheTTL(0), "cache TTL must be positive"},
		{"zero rate limit requests", WithRateLimits(RateLimit{Requests: 0, Per: time.Second}), "requests must be positive"},
		{"zero rate limit interval", WithRateLimits(RateLimit{Requests: 1}), "interval must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(WithStatementFetcher(staticFetcher(nil)), tt.opt)
			if err == nil {
				t.Fatal("New() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("New() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestWithPort_ValidEdgeCases(t *testing.T) {
	for _, port := range []int{1, 65535} {
		fb := newTestFinboard(t, WithPort(port))
		if fb.Port() != port {
			t.Errorf("Port() = %v, want %v", fb.Port(), port)
		}
	}
}

func TestWithSnapshotCallback_Nil(t *testing.T) {
	fb := newTestFinboard(t, WithSnapshotCallback(nil))
	if len(fb.snapshotCallbacks) != 0 {
		t.Errorf("nil callback should be ignored, got %d callbacks", len(fb.snapshotCallbacks))
	}
}

func TestSessionOptions(t *testing.T) {
	fb, err := New(
		WithCacheDisabled(),
		WithUserAgent("research-bot/2.0"),
		WithRequestTimeout(5*time.Second),
		WithBaseURL("http://127.0.0.1:1"),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = fb.Close() }()

	if got := fb.session.UserAgent(); got != "research-bot/2.0" {
		t.Errorf("UserAgent() = %q, want %q", got, "research-bot/2.0")
	}

	// the unreachable base URL surfaces as a fetch error
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := fb.Fetch(ctx, "VALE"); err == nil {
		t.Error("Fetch() against an unreachable host expected error")
	}
}

func TestSessionLimits(t *testing.T) {
	if got := sessionLimits(nil); got != nil {
		t.Errorf("sessionLimits(nil) = %v, want nil (session defaults)", got)
	}

	// WithRateLimits() with no limits disables limiting
	cfg := &fbConfig{}
	if err := WithRateLimits()(cfg); err != nil {
		t.Fatalf("WithRateLimits() error = %v", err)
	}
	if got := sessionLimits(cfg.rateLimits); got == nil || len(got) != 0 {
		t.Errorf("sessionLimits(empty) = %#v, want empty non-nil", got)
	}

	got := sessionLimits([]RateLimit{{Requests: 3, Per: time.Second}})
	if len(got) != 1 || got[0].Requests != 3 || got[0].Per != time.Second {
		t.Errorf("sessionLimits() = %+v", got)
	}
}
