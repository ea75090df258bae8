package store

import (
	"time"

	"github.com/jpalmerr/finboard/dashboard"
	"github.com/jpalmerr/finboard/internal/source"
)

// Metrics is the JSON form of a symbol's metrics. FreeCashFlowMargin is in
// percent, as displayed.
type Metrics struct {
	DebtToEquity       float64 `json:"debtToEquity"`
	CashReserves       float64 `json:"cashReserves"`
	WorkingCapital     float64 `json:"workingCapital"`
	FreeCashFlowMargin float64 `json:"freeCashFlowMargin"`
	Capex              float64 `json:"capex"`
	DividendYield      float64 `json:"dividendYield"`
	HedgingPercentage  float64 `json:"hedgingPercentage"`
}

// Dashboard returns the dashboard input for m.
func (m *Metrics) Dashboard() *dashboard.Metrics {
	if m == nil {
		return nil
	}
	return &dashboard.Metrics{
		DebtToEquity:       m.DebtToEquity,
		CashReserves:       m.CashReserves,
		WorkingCapital:     m.WorkingCapital,
		FreeCashFlowMargin: m.FreeCashFlowMargin,
	}
}

// Snapshot is the latest refresh of one symbol, optimized for JSON
// serialization (REST API and SSE).
type Snapshot struct {
	Symbol string `json:"symbol"`

	// Metrics is nil until the first successful refresh. A failed refresh
	// keeps the previous metrics and sets Error.
	Metrics *Metrics `json:"metrics"`

	Labels map[string]string `json:"labels"`

	LatencyMs int64 `json:"latency_ms"`

	// Computed and Latency keep the unscaled metrics and the exact fetch
	// duration for in-process readers. Neither is serialized.
	Computed *source.FinancialMetrics `json:"-"`
	Latency  time.Duration            `json:"-"`

	FetchedAt time.Time `json:"fetched_at"`

	// Error contains the message of the last failed refresh.
	Error *string `json:"error"`
}

// Store defines storage and subscription for snapshots.
//
// Implementations must be safe for concurrent access.
type Store interface {
	// Update stores a snapshot keyed by Symbol and notifies all subscribers.
	Update(snapshot Snapshot)

	// Get returns the snapshot for symbol.
	Get(symbol string) (Snapshot, bool)

	// GetAll returns all snapshots sorted by symbol.
	GetAll() []Snapshot

	// Subscribe returns a buffered channel of updates; slow consumers may
	// miss updates. Caller must call Unsubscribe when done.
	Subscribe() <-chan Snapshot

	// Unsubscribe removes a subscription and closes the channel.
	// Safe to call with a channel that was already unsubscribed.
	Unsubscribe(ch <-chan Snapshot)
}
