package source

import (
	"fmt"
	"sort"
)

// Line item names, as reported by the upstream provider.
const (
	ItemTotalRevenue           = "TotalRevenue"
	ItemTotalDebt              = "TotalDebt"
	ItemLongTermDebt           = "LongTermDebt"
	ItemCurrentDebt            = "CurrentDebt"
	ItemStockholdersEquity     = "StockholdersEquity"
	ItemCashAndCashEquivalents = "CashAndCashEquivalents"
	ItemCashFinancial          = "CashFinancial"
	ItemWorkingCapital         = "WorkingCapital"
	ItemCurrentAssets          = "CurrentAssets"
	ItemCurrentLiabilities     = "CurrentLiabilities"
	ItemFreeCashFlow           = "FreeCashFlow"
	ItemCapitalExpenditure     = "CapitalExpenditure"
)

// InfoDividendYield is the [Statements.Info] key for the trailing dividend
// yield, as a fraction.
const InfoDividendYield = "dividendYield"

// Statement maps line item names to values keyed by period end date
// ("2006-01-02").
type Statement map[string]map[string]float64

// Set records value for item at period.
func (s Statement) Set(item, period string, value float64) {
	if s[item] == nil {
		s[item] = make(map[string]float64)
	}
	s[item][period] = value
}

// Empty reports whether the statement holds no values.
func (s Statement) Empty() bool {
	for _, periods := range s {
		if len(periods) > 0 {
			return false
		}
	}
	return true
}

// Has reports whether the statement reports item for any period.
func (s Statement) Has(item string) bool {
	return len(s[item]) > 0
}

// Periods returns every period end date in the statement, most recent first.
func (s Statement) Periods() []string {
	seen := make(map[string]struct{})
	for _, periods := range s {
		for p := range periods {
			seen[p] = struct{}{}
		}
	}

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(out)))
	return out
}

// Value returns item at period, or an error wrapping [ErrMissingItem].
func (s Statement) Value(item, period string) (float64, error) {
	v, ok := s[item][period]
	if !ok {
		return 0, fmt.Errorf("%w: %s at %s", ErrMissingItem, item, period)
	}
	return v, nil
}

// valueOr returns item at period, or fallback when the item is absent.
func (s Statement) valueOr(item, period string, fallback float64) (float64, error) {
	if !s.Has(item) {
		return fallback, nil
	}
	return s.Value(item, period)
}

// Statements bundles the annual statements for one symbol.
type Statements struct {
	Financials   Statement
	BalanceSheet Statement
	CashFlow     Statement

	// Info holds scalar facts such as [InfoDividendYield].
	Info map[string]float64
}

// NewStatements returns empty, ready to fill statements.
func NewStatements() Statements {
	return Statements{
		Financials:   Statement{},
		BalanceSheet: Statement{},
		CashFlow:     Statement{},
		Info:         map[string]float64{},
	}
}
