// Standalone mock Yahoo Finance server for trying the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/finboard serve -c example/config.yaml
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sort"
	"strings"

	"github.com/jpalmerr/finboard/internal/yahoomock"
)

func main() {
	symbols := make([]string, 0, len(yahoomock.Companies))
	for s := range yahoomock.Companies {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)

	fmt.Println("Mock Yahoo Finance server starting on :9999")
	fmt.Println("Symbols:", strings.Join(symbols, ", "))
	fmt.Println("Free cash flow drifts by up to 25% every 20-60 seconds")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	handler := yahoomock.NewHandler(nil, yahoomock.WithDrift(0.25), yahoomock.WithLatency())
	if err := http.ListenAndServe(":9999", handler); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
