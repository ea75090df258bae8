package yahoomock

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/jpalmerr/finboard/internal/session"
	"github.com/jpalmerr/finboard/internal/source"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSource(t *testing.T, h *Handler) *source.Source {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	client := session.NewClient(session.Config{Limits: []session.Limit{}, Logger: testLogger()})
	return source.New(source.NewYahoo(client, srv.URL, testLogger()), testLogger())
}

func TestHandler_ServesComputableStatements(t *testing.T) {
	src := newTestSource(t, NewHandler(nil, WithLogger(testLogger())))

	for symbol, c := range Companies {
		t.Run(symbol, func(t *testing.T) {
			m, err := src.Fetch(context.Background(), symbol)
			if err != nil {
				t.Fatalf("Fetch() error = %v", err)
			}
			if want := c.TotalDebt / c.StockholdersEquity; m.DebtToEquity != want {
				t.Errorf("DebtToEquity = %v, want %v", m.DebtToEquity, want)
			}
			if m.CashReserves != c.Cash {
				t.Errorf("CashReserves = %v, want %v", m.CashReserves, c.Cash)
			}
			if want := c.CurrentAssets - c.CurrentLiabilities; m.WorkingCapital != want {
				t.Errorf("WorkingCapital = %v, want %v", m.WorkingCapital, want)
			}
			if m.DividendYield != c.DividendYield {
				t.Errorf("DividendYield = %v, want %v", m.DividendYield, c.DividendYield)
			}
		})
	}
}

func TestHandler_UnknownSymbol(t *testing.T) {
	src := newTestSource(t, NewHandler(nil, WithLogger(testLogger())))

	if _, err := src.Fetch(context.Background(), "NOPE"); err == nil {
		t.Fatal("Fetch() expected error for unknown symbol, got nil")
	}
}

func TestHandler_DriftStaysInBounds(t *testing.T) {
	h := NewHandler(nil, WithDrift(0.1), WithLogger(testLogger()))

	for i := 0; i < 50; i++ {
		f := h.factor("VALE")
		if f < 0.9 || f > 1.1 {
			t.Fatalf("factor() = %v, want within [0.9, 1.1]", f)
		}
	}
	if f := NewHandler(nil).factor("VALE"); f != 1 {
		t.Errorf("factor() without drift = %v, want 1", f)
	}
}
