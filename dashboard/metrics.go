package dashboard

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Metrics is the snapshot rendered by the dashboard.
//
// FreeCashFlowMargin is already scaled to percent (12.5 means 12.5%).
// A nil *Metrics means no data is available yet.
type Metrics struct {
	DebtToEquity       float64 `json:"debtToEquity"`
	CashReserves       float64 `json:"cashReserves"`
	WorkingCapital     float64 `json:"workingCapital"`
	FreeCashFlowMargin float64 `json:"freeCashFlowMargin"`
}

// UnmarshalJSON decodes a metrics object without validating its fields.
//
// Missing, null or non-numeric fields decode to NaN and surface as NaN in
// the rendered cards. Numeric strings are accepted as numbers.
func (m *Metrics) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.DebtToEquity = numberField(raw, "debtToEquity")
	m.CashReserves = numberField(raw, "cashReserves")
	m.WorkingCapital = numberField(raw, "workingCapital")
	m.FreeCashFlowMargin = numberField(raw, "freeCashFlowMargin")
	return nil
}

func numberField(raw map[string]json.RawMessage, key string) float64 {
	msg, ok := raw[key]
	if !ok {
		return math.NaN()
	}

	var v any
	if err := json.Unmarshal(msg, &v); err != nil {
		return math.NaN()
	}

	switch x := v.(type) {
	case float64:
		return x
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

// ParseMetrics decodes a metrics payload as it would be embedded in a page.
//
// Empty input and falsy JSON values (null, false, 0, "") yield a nil
// snapshot, which renders as the loading placeholder. Any other non-object
// value yields a snapshot whose fields are all NaN.
func ParseMetrics(data []byte) (*Metrics, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse metrics: %w", err)
	}

	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool:
		if !x {
			return nil, nil
		}
	case float64:
		if x == 0 {
			return nil, nil
		}
	case string:
		if x == "" {
			return nil, nil
		}
	case map[string]any:
		var m Metrics
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to parse metrics: %w", err)
		}
		return &m, nil
	}

	nan := math.NaN()
	return &Metrics{DebtToEquity: nan, CashReserves: nan, WorkingCapital: nan, FreeCashFlowMargin: nan}, nil
}
