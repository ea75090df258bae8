package source

import (
	"errors"
	"fmt"

	"github.com/jpalmerr/finboard/dashboard"
)

var (
	// ErrEmptySymbol is returned for a blank symbol.
	ErrEmptySymbol = errors.New("symbol is empty")

	// ErrNoData is returned when a required statement has no values.
	ErrNoData = errors.New("no financial data")

	// ErrMissingItem is returned when a required line item is not reported.
	ErrMissingItem = errors.New("missing line item")

	// ErrCriticalMetric is returned when debt-to-equity or free cash flow
	// margin cannot be computed.
	ErrCriticalMetric = errors.New("critical metric unavailable")
)

// FinancialMetrics are the derived health metrics for one symbol.
type FinancialMetrics struct {
	DebtToEquity   float64 `json:"debtToEquity"`
	CashReserves   float64 `json:"cashReserves"`
	WorkingCapital float64 `json:"workingCapital"`

	// FreeCashFlowMargin is a fraction: 0.2 means 20%.
	FreeCashFlowMargin float64 `json:"freeCashFlowMargin"`

	Capex         float64 `json:"capex"`
	DividendYield float64 `json:"dividendYield"`

	// HedgingPercentage is not reported upstream and is always 0.
	HedgingPercentage float64 `json:"hedgingPercentage"`
}

// Dashboard converts m to dashboard input, scaling the margin to percent.
func (m FinancialMetrics) Dashboard() dashboard.Metrics {
	return dashboard.Metrics{
		DebtToEquity:       m.DebtToEquity,
		CashReserves:       m.CashReserves,
		WorkingCapital:     m.WorkingCapital,
		FreeCashFlowMargin: m.FreeCashFlowMargin * 100,
	}
}

// Compute derives metrics from the most recent period of st.Financials.
//
// Total debt falls back to long-term plus current debt, cash to cash
// financial, and working capital to current assets minus current
// liabilities. Zero equity or zero revenue is an [ErrCriticalMetric].
func Compute(st Statements) (FinancialMetrics, error) {
	if st.Financials.Empty() || st.BalanceSheet.Empty() || st.CashFlow.Empty() {
		return FinancialMetrics{}, fmt.Errorf("%w: one or more statements are empty", ErrNoData)
	}

	period := st.Financials.Periods()[0]
	bs, cf := st.BalanceSheet, st.CashFlow

	var (
		m   FinancialMetrics
		err error
	)

	var totalDebt float64
	if bs.Has(ItemTotalDebt) {
		if totalDebt, err = bs.Value(ItemTotalDebt, period); err != nil {
			return FinancialMetrics{}, err
		}
	} else {
		longTerm, err := bs.valueOr(ItemLongTermDebt, period, 0)
		if err != nil {
			return FinancialMetrics{}, err
		}
		current, err := bs.valueOr(ItemCurrentDebt, period, 0)
		if err != nil {
			return FinancialMetrics{}, err
		}
		totalDebt = longTerm + current
	}

	equity, err := bs.Value(ItemStockholdersEquity, period)
	if err != nil {
		return FinancialMetrics{}, err
	}
	if equity == 0 {
		return FinancialMetrics{}, fmt.Errorf("%w: stockholders equity is zero", ErrCriticalMetric)
	}
	m.DebtToEquity = totalDebt / equity

	cashItem := ItemCashAndCashEquivalents
	if !bs.Has(cashItem) {
		cashItem = ItemCashFinancial
	}
	if m.CashReserves, err = bs.Value(cashItem, period); err != nil {
		return FinancialMetrics{}, err
	}

	if bs.Has(ItemWorkingCapital) {
		if m.WorkingCapital, err = bs.Value(ItemWorkingCapital, period); err != nil {
			return FinancialMetrics{}, err
		}
	} else {
		assets, err := bs.Value(ItemCurrentAssets, period)
		if err != nil {
			return FinancialMetrics{}, err
		}
		liabilities, err := bs.Value(ItemCurrentLiabilities, period)
		if err != nil {
			return FinancialMetrics{}, err
		}
		m.WorkingCapital = assets - liabilities
	}

	fcf, err := cf.Value(ItemFreeCashFlow, period)
	if err != nil {
		return FinancialMetrics{}, err
	}
	revenue, err := st.Financials.Value(ItemTotalRevenue, period)
	if err != nil {
		return FinancialMetrics{}, err
	}
	if revenue == 0 {
		return FinancialMetrics{}, fmt.Errorf("%w: total revenue is zero", ErrCriticalMetric)
	}
	m.FreeCashFlowMargin = fcf / revenue

	if m.Capex, err = cf.Value(ItemCapitalExpenditure, period); err != nil {
		return FinancialMetrics{}, err
	}

	m.DividendYield = st.Info[InfoDividendYield]
	return m, nil
}
