package finboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jpalmerr/finboard/internal/store"
)

func TestStart_BlocksUntilContextCancelled(t *testing.T) {
	sym, _ := NewSymbol("VALE")
	fb := newTestFinboard(t,
		WithSymbol(sym),
		WithPort(19001),
		WithLogger(testLogger()),
	)

	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		close(started)
		done <- fb.Start(ctx)
	}()

	<-started
	time.Sleep(50 * time.Millisecond)

	// verify Start is still blocking
	select {
	case err := <-done:
		t.Fatalf("Start() returned early with error: %v", err)
	default:
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}

func TestStart_ReturnsImmediatelyIfContextAlreadyCancelled(t *testing.T) {
	fb := newTestFinboard(t, WithPort(19002), WithLogger(testLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() {
		done <- fb.Start(ctx)
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return with already-cancelled context")
	}
}

func TestStart_PortInUse(t *testing.T) {
	first := newTestFinboard(t, WithPort(19003), WithLogger(testLogger()))
	second := newTestFinboard(t, WithPort(19003), WithLogger(testLogger()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = first.Start(ctx) }()
	time.Sleep(100 * time.Millisecond)

	err := second.Start(ctx)
	if err == nil {
		t.Fatal("Start() on an occupied port should return error")
	}
	if !strings.Contains(err.Error(), "failed to start HTTP server") {
		t.Errorf("Start() error = %v, want server start error", err)
	}
}

func TestStart_MultipleSequentialRuns(t *testing.T) {
	for i := 0; i < 3; i++ {
		sym, _ := NewSymbol("VALE")
		fb := newTestFinboard(t,
			WithSymbol(sym),
			WithPort(19004+i),
			WithLogger(testLogger()),
		)

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- fb.Start(ctx)
		}()

		time.Sleep(100 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			if err != nil {
				t.Errorf("iteration %d: Start() returned error: %v", i, err)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("iteration %d: Start() did not return", i)
		}
	}
}

func TestStart_ConcurrentAccess(t *testing.T) {
	sym, _ := NewSymbol("VALE")
	fb := newTestFinboard(t,
		WithSymbol(sym),
		WithPort(19010),
		WithLogger(testLogger()),
	)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = fb.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)

	// concurrent reads and on-demand fetches shouldn't race
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = fb.Symbols()
			_ = fb.Port()
			_ = fb.RefreshInterval()
			_ = fb.Snapshots()
			_, _ = fb.Fetch(ctx, "PBR")
		}()
	}

	time.Sleep(50 * time.Millisecond)
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("goroutines did not complete")
	}
}

func TestStart_ServesDashboard(t *testing.T) {
	sym, _ := NewSymbol("VALE")
	fb := newTestFinboard(t,
		WithSymbol(sym),
		WithPort(19012),
		WithTitle("Mining Watchlist"),
		WithLogger(testLogger()),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = fb.Start(ctx) }()

	base := fmt.Sprintf("http://localhost:%d", fb.Port())

	// wait for the watched symbol's first refresh
	var snapshots []store.Snapshot
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(base + "/api/metrics")
		if err == nil {
			_ = json.NewDecoder(resp.Body).Decode(&snapshots)
			_ = resp.Body.Close()
			if len(snapshots) > 0 {
				break
			}
		}
		time.Sleep(50 * time.Millisecond)
	}
	if len(snapshots) != 1 || snapshots[0].Symbol != "VALE" {
		t.Fatalf("/api/metrics = %+v, want VALE", snapshots)
	}
	if got := snapshots[0].Metrics.FreeCashFlowMargin; got != 20 {
		t.Errorf("freeCashFlowMargin = %v, want 20 (percent)", got)
	}

	// an unwatched symbol is fetched on demand and mounted into the page
	resp, err := http.Get(base + "/search?symbol=pbr")
	if err != nil {
		t.Fatalf("GET /search error = %v", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read company page: %v", err)
	}
	for _, want := range []string{"Mining Watchlist", "PBR", "Debt to Equity", "$200,000", "20.00%"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("company page missing %q", want)
		}
	}
}

func TestStart_WithTimeoutContext(t *testing.T) {
	fb := newTestFinboard(t, WithPort(19011), WithLogger(testLogger()))

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := fb.Start(ctx)
	elapsed := time.Since(start)

	if elapsed < 150*time.Millisecond || elapsed > 500*time.Millisecond {
		t.Errorf("Start() ran for %v, expected ~200ms", elapsed)
	}
	if err != nil {
		t.Errorf("Start() returned error: %v", err)
	}
}
