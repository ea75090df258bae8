// Package source fetches annual financial statements and derives the
// balance-sheet health metrics shown on the finboard dashboard.
//
// The main components are:
//
//   - [Statements]: the three statements plus scalar facts for one symbol
//   - [Compute]: derives [FinancialMetrics] from the most recent period
//   - [Source]: normalizes symbols and wraps a [StatementFetcher]
//   - [Yahoo]: a [StatementFetcher] backed by the Yahoo Finance
//     fundamentals time series API
package source
