// Package yahoomock serves canned Yahoo Finance fundamentals for demos and
// tests.
//
// The handler answers the fundamentals time series and quote endpoints that
// the finboard source reads. Unknown symbols get an empty result set, which
// the source reports as missing data.
package yahoomock

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"
)

const timeseriesPrefix = "/ws/fundamentals-timeseries/v1/finance/timeseries/"

// Company is one annual report in whole currency units.
type Company struct {
	Period             string // period end date, "2006-01-02"
	TotalRevenue       float64
	TotalDebt          float64
	StockholdersEquity float64
	Cash               float64
	CurrentAssets      float64
	CurrentLiabilities float64
	FreeCashFlow       float64
	CapitalExpenditure float64
	DividendYield      float64 // fraction
}

// Companies is a small fixture set.
var Companies = map[string]Company{
	"VALE": {
		Period: "2024-12-31", TotalRevenue: 38_000_000_000, TotalDebt: 15_000_000_000,
		StockholdersEquity: 37_000_000_000, Cash: 4_900_000_000, CurrentAssets: 15_600_000_000,
		CurrentLiabilities: 12_200_000_000, FreeCashFlow: 3_800_000_000,
		CapitalExpenditure: -6_400_000_000, DividendYield: 0.089,
	},
	"PBR": {
		Period: "2024-12-31", TotalRevenue: 91_000_000_000, TotalDebt: 60_000_000_000,
		StockholdersEquity: 68_000_000_000, Cash: 3_300_000_000, CurrentAssets: 23_200_000_000,
		CurrentLiabilities: 31_400_000_000, FreeCashFlow: 17_800_000_000,
		CapitalExpenditure: -16_500_000_000, DividendYield: 0.142,
	},
	"AAPL": {
		Period: "2024-09-30", TotalRevenue: 391_035_000_000, TotalDebt: 106_629_000_000,
		StockholdersEquity: 56_950_000_000, Cash: 29_943_000_000, CurrentAssets: 152_987_000_000,
		CurrentLiabilities: 176_392_000_000, FreeCashFlow: 108_807_000_000,
		CapitalExpenditure: -9_447_000_000, DividendYield: 0.0044,
	},
}

// Option configures a [Handler].
type Option func(*Handler)

// WithDrift makes free cash flow wander by up to pct of its value, changing
// every 20-60 seconds per symbol.
func WithDrift(pct float64) Option {
	return func(h *Handler) { h.drift = pct }
}

// WithLatency adds a random 50-200ms delay to every response.
func WithLatency() Option {
	return func(h *Handler) { h.latency = true }
}

// WithLogger sets the logger for drift changes. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// Handler serves the fixture companies.
type Handler struct {
	companies map[string]Company
	drift     float64
	latency   bool
	logger    *slog.Logger
	mux       *http.ServeMux

	mu     sync.Mutex
	states map[string]*driftState
}

// driftState tracks the current factor and next change time for a symbol.
type driftState struct {
	factor       float64
	nextChangeAt time.Time
}

// NewHandler returns a handler for companies. A nil map means [Companies].
func NewHandler(companies map[string]Company, opts ...Option) *Handler {
	if companies == nil {
		companies = Companies
	}
	h := &Handler{
		companies: companies,
		logger:    slog.Default(),
		mux:       http.NewServeMux(),
		states:    make(map[string]*driftState),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.mux.HandleFunc(timeseriesPrefix, h.handleTimeseries)
	h.mux.HandleFunc("/v7/finance/quote", h.handleQuote)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.latency {
		time.Sleep(time.Duration(50+rand.Intn(150)) * time.Millisecond)
	}
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleTimeseries(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimPrefix(r.URL.Path, timeseriesPrefix))

	result := []map[string]any{}
	if c, ok := h.companies[symbol]; ok {
		c.FreeCashFlow *= h.factor(symbol)
		for item, value := range map[string]float64{
			"TotalRevenue":           c.TotalRevenue,
			"TotalDebt":              c.TotalDebt,
			"StockholdersEquity":     c.StockholdersEquity,
			"CashAndCashEquivalents": c.Cash,
			"CurrentAssets":          c.CurrentAssets,
			"CurrentLiabilities":     c.CurrentLiabilities,
			"FreeCashFlow":           c.FreeCashFlow,
			"CapitalExpenditure":     c.CapitalExpenditure,
		} {
			typ := "annual" + item
			result = append(result, map[string]any{
				"meta": map[string]any{"symbol": []string{symbol}, "type": []string{typ}},
				typ: []map[string]any{{
					"asOfDate":      c.Period,
					"periodType":    "12M",
					"reportedValue": map[string]float64{"raw": value},
				}},
			})
		}
	}

	writeJSON(w, h.logger, map[string]any{
		"timeseries": map[string]any{"result": result, "error": nil},
	})
}

func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	result := []map[string]any{}
	for _, symbol := range strings.Split(r.URL.Query().Get("symbols"), ",") {
		symbol = strings.ToUpper(strings.TrimSpace(symbol))
		if c, ok := h.companies[symbol]; ok {
			result = append(result, map[string]any{
				"symbol":                      symbol,
				"trailingAnnualDividendYield": c.DividendYield,
			})
		}
	}

	writeJSON(w, h.logger, map[string]any{
		"quoteResponse": map[string]any{"result": result, "error": nil},
	})
}

// factor returns the current drift multiplier for symbol.
func (h *Handler) factor(symbol string) float64 {
	if h.drift <= 0 {
		return 1
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	state, exists := h.states[symbol]
	if !exists {
		state = &driftState{factor: 1, nextChangeAt: nextChange()}
		h.states[symbol] = state
	}
	if time.Now().After(state.nextChangeAt) {
		old := state.factor
		state.factor = 1 + (rand.Float64()*2-1)*h.drift
		state.nextChangeAt = nextChange()
		h.logger.Info("free cash flow drift", "symbol", symbol, "from", old, "to", state.factor)
	}
	return state.factor
}

func nextChange() time.Time {
	return time.Now().Add(time.Duration(20+rand.Intn(41)) * time.Second)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to write response", "error", err)
	}
}
