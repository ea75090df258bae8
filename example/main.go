package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/finboard"
	"github.com/jpalmerr/finboard/internal/yahoomock"
)

const mockAddr = "localhost:9999"

func main() {
	// start a mock provider whose free cash flow drifts, so live updates show
	go func() {
		handler := yahoomock.NewHandler(nil, yahoomock.WithDrift(0.25), yahoomock.WithLatency())
		if err := http.ListenAndServe(mockAddr, handler); err != nil {
			slog.Error("mock server error", "error", err)
		}
	}()
	time.Sleep(100 * time.Millisecond)

	// watchlist: 2 tickers sharing labels and a refresh interval
	brazil, err := finboard.NewWatchlist("Brazil",
		finboard.WithTickers("VALE", "PBR"),
		finboard.WithWatchlistLabels("country", "BR"),
		finboard.WithWatchlistInterval(30*time.Second),
	)
	if err != nil {
		slog.Error("failed to create watchlist", "error", err)
		os.Exit(1)
	}

	// a single symbol using the global refresh interval
	aapl, _ := finboard.NewSymbol("AAPL", finboard.WithLabels("sector", "technology"))

	fb, err := finboard.New(
		finboard.WithSymbols(append(brazil, aapl)...),
		finboard.WithRefreshInterval(time.Minute),
		finboard.WithPort(8080),
		finboard.WithTitle("Finboard Demo"),
		finboard.WithBaseURL("http://"+mockAddr),
		finboard.WithRateLimits(),
		finboard.WithCacheDisabled(),
		finboard.WithSnapshotCallback(func(s finboard.Snapshot) {
			if s.Error != nil {
				slog.Warn("refresh failed", "symbol", s.Symbol, "error", s.Error)
			}
		}),
	)
	if err != nil {
		slog.Error("failed to create finboard", "error", err)
		os.Exit(1)
	}
	defer func() { _ = fb.Close() }()

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Finboard Demo                                       ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Open http://localhost:8080 in your browser          ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Symbols:                                            ║")
	fmt.Println("  ║   • VALE, PBR (Brazil watchlist, 30s interval)        ║")
	fmt.Println("  ║   • AAPL (global 1m interval)                         ║")
	fmt.Println("  ║   Search any of them at /search?symbol=VALE           ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := fb.Start(ctx); err != nil {
		slog.Error("finboard error", "error", err)
		os.Exit(1)
	}
}
