package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jpalmerr/finboard/internal/session"
)

const timeseriesBody = `{"timeseries":{"result":[
 {"meta":{"symbol":["VALE"],"type":["annualTotalRevenue"]},"timestamp":[1672444800,1703980800],
  "annualTotalRevenue":[
   {"asOfDate":"2022-12-31","periodType":"12M","reportedValue":{"raw":1500000,"fmt":"1.5M"}},
   {"asOfDate":"2023-12-31","periodType":"12M","reportedValue":{"raw":2000000,"fmt":"2M"}}]},
 {"meta":{"symbol":["VALE"],"type":["annualTotalDebt"]},
  "annualTotalDebt":[null,{"asOfDate":"2023-12-31","reportedValue":{"raw":1000000}}]},
 {"meta":{"symbol":["VALE"],"type":["annualStockholdersEquity"]},
  "annualStockholdersEquity":[{"asOfDate":"2023-12-31","reportedValue":{"raw":500000}}]},
 {"meta":{"symbol":["VALE"],"type":["annualCashAndCashEquivalents"]},
  "annualCashAndCashEquivalents":[{"asOfDate":"2023-12-31","reportedValue":{"raw":200000}}]},
 {"meta":{"symbol":["VALE"],"type":["annualCurrentAssets"]},
  "annualCurrentAssets":[{"asOfDate":"2023-12-31","reportedValue":{"raw":800000}}]},
 {"meta":{"symbol":["VALE"],"type":["annualCurrentLiabilities"]},
  "annualCurrentLiabilities":[{"asOfDate":"2023-12-31","reportedValue":{"raw":300000}}]},
 {"meta":{"symbol":["VALE"],"type":["annualFreeCashFlow"]},
  "annualFreeCashFlow":[{"asOfDate":"2023-12-31","reportedValue":{"raw":400000}}]},
 {"meta":{"symbol":["VALE"],"type":["annualCapitalExpenditure"]},
  "annualCapitalExpenditure":[{"asOfDate":"2023-12-31","reportedValue":{"raw":-100000}}]},
 {"meta":{"symbol":["VALE"],"type":["annualWorkingCapital"]},"timestamp":[]}
],"error":null}}`

const quoteBody = `{"quoteResponse":{"result":[{"symbol":"VALE","trailingAnnualDividendYield":0.05}],"error":null}}`

// fakeYahoo serves the timeseries and quote endpoints.
func fakeYahoo(t *testing.T, quoteStatus int) (*httptest.Server, *atomic.Value) {
	t.Helper()
	var lastQuery atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/fundamentals-timeseries/v1/finance/timeseries/", func(w http.ResponseWriter, r *http.Request) {
		lastQuery.Store(r.URL.RawQuery)
		if !strings.HasSuffix(r.URL.Path, "/VALE") {
			_, _ = w.Write([]byte(`{"timeseries":{"result":[],"error":null}}`))
			return
		}
		_, _ = w.Write([]byte(timeseriesBody))
	})
	mux.HandleFunc("/v7/finance/quote", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(quoteStatus)
		_, _ = w.Write([]byte(quoteBody))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &lastQuery
}

func newTestYahoo(baseURL string) *Yahoo {
	client := session.NewClient(session.Config{Limits: []session.Limit{}, Logger: testLogger()})
	return NewYahoo(client, baseURL, testLogger())
}

func TestYahoo_FetchStatements(t *testing.T) {
	srv, lastQuery := fakeYahoo(t, http.StatusOK)
	y := newTestYahoo(srv.URL + "/")
	y.now = func() time.Time { return time.Unix(1700000000, 0) }

	st, err := y.FetchStatements(context.Background(), "VALE")
	if err != nil {
		t.Fatalf("FetchStatements() error = %v", err)
	}

	if got := st.Financials.Periods(); len(got) != 2 || got[0] != "2023-12-31" {
		t.Errorf("Financials.Periods() = %v", got)
	}
	if v, _ := st.BalanceSheet.Value(ItemTotalDebt, "2023-12-31"); v != 1000000 {
		t.Errorf("TotalDebt = %v, want 1000000", v)
	}
	if v, _ := st.CashFlow.Value(ItemCapitalExpenditure, "2023-12-31"); v != -100000 {
		t.Errorf("CapitalExpenditure = %v, want -100000", v)
	}
	if st.BalanceSheet.Has(ItemWorkingCapital) {
		t.Error("series without observations should not be reported")
	}
	if st.Info[InfoDividendYield] != 0.05 {
		t.Errorf("dividend yield = %v, want 0.05", st.Info[InfoDividendYield])
	}

	q, _ := lastQuery.Load().(string)
	for _, want := range []string{"annualTotalRevenue", "annualStockholdersEquity", "annualFreeCashFlow", "period2=1700000000"} {
		if !strings.Contains(q, want) {
			t.Errorf("query %q missing %q", q, want)
		}
	}

	m, err := Compute(st)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if m.DebtToEquity != 2 || m.WorkingCapital != 500000 || m.FreeCashFlowMargin != 0.2 {
		t.Errorf("Compute() = %+v", m)
	}
}

func TestYahoo_DividendFailureDefaultsToZero(t *testing.T) {
	srv, _ := fakeYahoo(t, http.StatusUnauthorized)

	st, err := newTestYahoo(srv.URL).FetchStatements(context.Background(), "VALE")
	if err != nil {
		t.Fatalf("FetchStatements() error = %v", err)
	}
	if _, ok := st.Info[InfoDividendYield]; ok {
		t.Error("dividend yield should be absent when the quote lookup fails")
	}

	m, err := Compute(st)
	if err != nil {
		t.Fatalf("Compute() error = %v", err)
	}
	if m.DividendYield != 0 {
		t.Errorf("DividendYield = %v, want 0", m.DividendYield)
	}
}

func TestYahoo_UnknownSymbol(t *testing.T) {
	srv, _ := fakeYahoo(t, http.StatusOK)
	src := New(newTestYahoo(srv.URL), testLogger())

	_, err := src.Fetch(context.Background(), "nope")
	if err == nil {
		t.Fatal("Fetch() should fail for a symbol with no data")
	}
	if !strings.Contains(err.Error(), "NOPE") {
		t.Errorf("error %q should name the symbol", err)
	}
}

func TestYahoo_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			want: "unexpected status 500",
		},
		{
			name: "invalid json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("not json"))
			},
			want: "failed to decode",
		},
		{
			name: "api error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`{"timeseries":{"result":null,"error":{"code":"Bad Request","description":"Invalid Symbol"}}}`))
			},
			want: "Invalid Symbol",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := newTestYahoo(srv.URL).FetchStatements(context.Background(), "VALE")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("FetchStatements() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestNewYahoo_Defaults(t *testing.T) {
	y := NewYahoo(nil, "", nil)
	if y.baseURL != DefaultBaseURL {
		t.Errorf("baseURL = %q, want %q", y.baseURL, DefaultBaseURL)
	}
	if y.logger == nil {
		t.Error("logger should default to slog.Default()")
	}
}
