package finboard

import (
	"encoding/json"
	"time"

	"github.com/jpalmerr/finboard/internal/source"
)

// FinancialMetrics are the health metrics derived for one symbol.
// FreeCashFlowMargin is a fraction (0.2 means 20%).
type FinancialMetrics = source.FinancialMetrics

// Statements are the annual statements a metrics computation reads.
type Statements = source.Statements

// Statement maps a line item to its values by reporting period.
type Statement = source.Statement

// StatementFetcher retrieves the annual statements for a normalized symbol.
// Use [WithStatementFetcher] to replace the default Yahoo Finance fetcher.
type StatementFetcher = source.StatementFetcher

// StatementFetcherFunc adapts a function to [StatementFetcher].
type StatementFetcherFunc = source.StatementFetcherFunc

// Line item names read by [Compute], for custom statement fetchers.
const (
	ItemTotalRevenue           = source.ItemTotalRevenue
	ItemTotalDebt              = source.ItemTotalDebt
	ItemLongTermDebt           = source.ItemLongTermDebt
	ItemCurrentDebt            = source.ItemCurrentDebt
	ItemStockholdersEquity     = source.ItemStockholdersEquity
	ItemCashAndCashEquivalents = source.ItemCashAndCashEquivalents
	ItemCashFinancial          = source.ItemCashFinancial
	ItemWorkingCapital         = source.ItemWorkingCapital
	ItemCurrentAssets          = source.ItemCurrentAssets
	ItemCurrentLiabilities     = source.ItemCurrentLiabilities
	ItemFreeCashFlow           = source.ItemFreeCashFlow
	ItemCapitalExpenditure     = source.ItemCapitalExpenditure

	// InfoDividendYield is the [Statements] Info key for the dividend yield.
	InfoDividendYield = source.InfoDividendYield
)

// Sentinel errors returned by metric computation, for use with errors.Is.
var (
	ErrEmptySymbol    = source.ErrEmptySymbol
	ErrNoData         = source.ErrNoData
	ErrMissingItem    = source.ErrMissingItem
	ErrCriticalMetric = source.ErrCriticalMetric
)

// NewStatements returns empty statements ready to be filled.
func NewStatements() Statements {
	return source.NewStatements()
}

// Compute derives metrics from the most recent reporting period of st.
func Compute(st Statements) (FinancialMetrics, error) {
	return source.Compute(st)
}

// Snapshot holds the outcome of refreshing a single symbol.
//
// Snapshot is immutable after creation; Labels is a copy.
type Snapshot struct {
	// Symbol is the normalized ticker.
	Symbol string

	// Labels contains the key-value metadata associated with the symbol.
	Labels map[string]string

	// Metrics holds the computed metrics. A failed refresh carries nil, or
	// in [Finboard.Snapshots] the metrics of the last successful refresh.
	Metrics *FinancialMetrics

	// Latency is the time taken to fetch statements and compute metrics.
	Latency time.Duration

	// FetchedAt is the timestamp when the refresh completed.
	FetchedAt time.Time

	// Error contains any error that occurred during the refresh.
	Error error
}

// MarshalJSON encodes s in the /api/metrics shape: free cash flow margin in
// percent, latency in milliseconds and the error as a message.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotToStore(s))
}
