package source

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// StatementFetcher retrieves the annual statements for a normalized symbol.
type StatementFetcher interface {
	FetchStatements(ctx context.Context, symbol string) (Statements, error)
}

// StatementFetcherFunc adapts a function to [StatementFetcher].
type StatementFetcherFunc func(ctx context.Context, symbol string) (Statements, error)

// FetchStatements calls f(ctx, symbol).
func (f StatementFetcherFunc) FetchStatements(ctx context.Context, symbol string) (Statements, error) {
	return f(ctx, symbol)
}

// NormalizeSymbol trims and upper-cases symbol.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", ErrEmptySymbol
	}
	return s, nil
}

// Source fetches statements and computes metrics for a symbol.
type Source struct {
	fetcher StatementFetcher
	logger  *slog.Logger
}

// New returns a [Source] backed by fetcher. A nil logger means slog.Default().
func New(fetcher StatementFetcher, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &Source{fetcher: fetcher, logger: logger}
}

// Fetch returns the metrics for symbol.
func (s *Source) Fetch(ctx context.Context, symbol string) (FinancialMetrics, error) {
	sym, err := NormalizeSymbol(symbol)
	if err != nil {
		return FinancialMetrics{}, err
	}

	st, err := s.fetcher.FetchStatements(ctx, sym)
	if err != nil {
		s.logger.Warn("statement fetch failed", "symbol", sym, "error", err)
		return FinancialMetrics{}, fmt.Errorf("failed to fetch statements for %s: %w", sym, err)
	}

	m, err := Compute(st)
	if err != nil {
		s.logger.Warn("metric computation failed", "symbol", sym, "error", err)
		return FinancialMetrics{}, fmt.Errorf("failed to compute metrics for %s: %w", sym, err)
	}

	s.logger.Debug("metrics computed", "symbol", sym, "debt_to_equity", m.DebtToEquity)
	return m, nil
}
