package main

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jpalmerr/finboard"
	"github.com/jpalmerr/finboard/internal/yahoomock"
)

func TestRunFetch_Table(t *testing.T) {
	configPath := writeConfig(t, "")

	output, err := executeCmd(t, "fetch", "-c", configPath, "vale", "AAPL")
	if err != nil {
		t.Fatalf("fetch command error = %v", err)
	}

	for _, want := range []string{
		"Symbol", "Debt to Equity", "Dividend Yield",
		"VALE", "AAPL",
		"$4,900,000,000", // VALE cash reserves
		"$29,943,000,000",
		"-$6,400,000,000", // VALE capex
		"8.90%",           // VALE dividend yield
	} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q\nGot:\n%s", want, output)
		}
	}
}

func TestRunFetch_JSON(t *testing.T) {
	configPath := writeConfig(t, "")

	output, err := executeCmd(t, "fetch", "-c", configPath, "--output", "json", "PBR")
	if err != nil {
		t.Fatalf("fetch command error = %v", err)
	}

	var got []struct {
		Symbol  string `json:"symbol"`
		Metrics struct {
			CashReserves       float64 `json:"cashReserves"`
			FreeCashFlowMargin float64 `json:"freeCashFlowMargin"`
		} `json:"metrics"`
		Error *string `json:"error"`
	}
	if err := json.Unmarshal([]byte(output), &got); err != nil {
		t.Fatalf("failed to decode output: %v\n%s", err, output)
	}
	if len(got) != 1 || got[0].Symbol != "PBR" {
		t.Fatalf("output = %+v, want one PBR snapshot", got)
	}

	pbr := yahoomock.Companies["PBR"]
	if got[0].Metrics.CashReserves != pbr.Cash {
		t.Errorf("cashReserves = %v, want %v", got[0].Metrics.CashReserves, pbr.Cash)
	}
	if want := pbr.FreeCashFlow / pbr.TotalRevenue * 100; got[0].Metrics.FreeCashFlowMargin != want {
		t.Errorf("freeCashFlowMargin = %v, want %v (percent)", got[0].Metrics.FreeCashFlowMargin, want)
	}
	if got[0].Error != nil {
		t.Errorf("error = %q, want nil", *got[0].Error)
	}
}

func TestRunFetch_PartialFailure(t *testing.T) {
	configPath := writeConfig(t, "")

	output, err := executeCmd(t, "fetch", "-c", configPath, "VALE", "NOPE")
	if err == nil {
		t.Fatal("fetch command expected error for unknown symbol")
	}
	if !strings.Contains(err.Error(), "1 of 2 symbols failed") {
		t.Errorf("error = %v, want failure count", err)
	}
	// the table is still printed for the symbols that worked
	if !strings.Contains(output, "VALE") || !strings.Contains(output, "NOPE") {
		t.Errorf("output missing rows\nGot:\n%s", output)
	}
}

func TestRunFetch_InvalidOutput(t *testing.T) {
	_, err := executeCmd(t, "fetch", "--output", "xml", "VALE")
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("error = %v, want output format error", err)
	}
}

func TestRunFetch_RequiresSymbol(t *testing.T) {
	if _, err := executeCmd(t, "fetch"); err == nil {
		t.Fatal("fetch command expected error without symbols")
	}
}

func TestNewMetricsRow(t *testing.T) {
	now := time.Now()
	s := finboard.Snapshot{
		Symbol: "VALE",
		Metrics: &finboard.FinancialMetrics{
			DebtToEquity:       2.5,
			CashReserves:       200000,
			WorkingCapital:     -500,
			FreeCashFlowMargin: 0.2,
			Capex:              -100000,
			DividendYield:      0.05,
		},
		FetchedAt: now.Add(-2 * time.Hour),
	}

	row := newMetricsRow(s, now)
	want := []string{"VALE", "2.50", "$200,000", "-$500", "20.00%", "-$100,000", "5.00%", "2 hours ago"}
	for i, w := range want {
		if row.cells[i] != w {
			t.Errorf("cells[%d] = %q, want %q", i, row.cells[i], w)
		}
	}
	if row.trends[1].Favorable() {
		t.Error("debt to equity of 2.5 should be unfavorable")
	}
	if !row.trends[2].Favorable() {
		t.Error("positive cash reserves should be favorable")
	}
}

func TestNewMetricsRow_NoMetrics(t *testing.T) {
	row := newMetricsRow(finboard.Snapshot{Symbol: "NOPE", Error: finboard.ErrNoData}, time.Now())
	if row.cells[0] != "NOPE" || row.cells[1] != finboard.ErrNoData.Error() {
		t.Errorf("cells = %v", row.cells)
	}
}
