package dashboard

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseMetrics_Falsy(t *testing.T) {
	for _, in := range []string{"", "  ", "null", "false", "0", `""`} {
		m, err := ParseMetrics([]byte(in))
		if err != nil {
			t.Errorf("ParseMetrics(%q) error = %v", in, err)
			continue
		}
		if m != nil {
			t.Errorf("ParseMetrics(%q) = %+v, want nil", in, m)
		}
	}
}

func TestParseMetrics_Object(t *testing.T) {
	m, err := ParseMetrics([]byte(`{"debtToEquity":1.5,"cashReserves":100000,"workingCapital":50000,"freeCashFlowMargin":12.5}`))
	if err != nil {
		t.Fatalf("ParseMetrics() error = %v", err)
	}
	want := Metrics{DebtToEquity: 1.5, CashReserves: 100000, WorkingCapital: 50000, FreeCashFlowMargin: 12.5}
	if *m != want {
		t.Errorf("ParseMetrics() = %+v, want %+v", *m, want)
	}
}

func TestParseMetrics_MissingFieldsBecomeNaN(t *testing.T) {
	m, err := ParseMetrics([]byte(`{"debtToEquity":"1.25","cashReserves":null,"workingCapital":"lots"}`))
	if err != nil {
		t.Fatalf("ParseMetrics() error = %v", err)
	}
	if m.DebtToEquity != 1.25 {
		t.Errorf("DebtToEquity = %v, want 1.25", m.DebtToEquity)
	}
	for name, v := range map[string]float64{
		"cashReserves":       m.CashReserves,
		"workingCapital":     m.WorkingCapital,
		"freeCashFlowMargin": m.FreeCashFlowMargin,
	} {
		if !math.IsNaN(v) {
			t.Errorf("%s = %v, want NaN", name, v)
		}
	}
}

func TestParseMetrics_TruthyScalar(t *testing.T) {
	m, err := ParseMetrics([]byte(`true`))
	if err != nil {
		t.Fatalf("ParseMetrics() error = %v", err)
	}
	if m == nil {
		t.Fatal("ParseMetrics(true) = nil, want snapshot")
	}
	if !math.IsNaN(m.DebtToEquity) || !math.IsNaN(m.CashReserves) {
		t.Errorf("ParseMetrics(true) = %+v, want NaN fields", *m)
	}
}

func TestParseMetrics_InvalidJSON(t *testing.T) {
	if _, err := ParseMetrics([]byte(`{"debtToEquity":`)); err == nil {
		t.Error("ParseMetrics() expected error for truncated JSON")
	}
}

func TestMetrics_UnmarshalJSON(t *testing.T) {
	var m Metrics
	if err := json.Unmarshal([]byte(`{"freeCashFlowMargin":-4}`), &m); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if m.FreeCashFlowMargin != -4 {
		t.Errorf("FreeCashFlowMargin = %v, want -4", m.FreeCashFlowMargin)
	}
	if !math.IsNaN(m.DebtToEquity) {
		t.Errorf("DebtToEquity = %v, want NaN", m.DebtToEquity)
	}
}
