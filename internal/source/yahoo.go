package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jpalmerr/finboard/internal/session"
)

// DefaultBaseURL is the Yahoo Finance API host.
const DefaultBaseURL = "https://query2.finance.yahoo.com"

// lookback is how far back annual statements are requested.
const lookback = 5 * 365 * 24 * time.Hour

// statement line items requested per statement
var (
	financialsItems = []string{ItemTotalRevenue}
	balanceItems    = []string{
		ItemTotalDebt, ItemLongTermDebt, ItemCurrentDebt, ItemStockholdersEquity,
		ItemCashAndCashEquivalents, ItemCashFinancial, ItemWorkingCapital,
		ItemCurrentAssets, ItemCurrentLiabilities,
	}
	cashFlowItems = []string{ItemFreeCashFlow, ItemCapitalExpenditure}
)

// Getter performs GET requests. [*session.Client] implements it.
type Getter interface {
	Fetch(ctx context.Context, url string) session.Response
}

// Yahoo fetches annual statements from the fundamentals time series API and
// the trailing dividend yield from the quote API.
type Yahoo struct {
	client  Getter
	baseURL string
	logger  *slog.Logger
	now     func() time.Time
}

// NewYahoo returns a [Yahoo] fetcher. An empty baseURL means
// [DefaultBaseURL]; a nil logger means slog.Default().
func NewYahoo(client Getter, baseURL string, logger *slog.Logger) *Yahoo {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Yahoo{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		now:     time.Now,
	}
}

// timeseriesResponse is the fundamentals time series payload. Each result
// carries its series under a key equal to meta.type[0].
type timeseriesResponse struct {
	Timeseries struct {
		Result []map[string]json.RawMessage `json:"result"`
		Error  *apiError                    `json:"error"`
	} `json:"timeseries"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type seriesMeta struct {
	Type []string `json:"type"`
}

type observation struct {
	AsOfDate      string `json:"asOfDate"`
	ReportedValue struct {
		Raw float64 `json:"raw"`
	} `json:"reportedValue"`
}

type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			TrailingAnnualDividendYield *float64 `json:"trailingAnnualDividendYield"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteResponse"`
}

// FetchStatements implements [StatementFetcher].
//
// A failed dividend lookup is logged and leaves Info empty, so the
// dividend yield defaults to 0.
func (y *Yahoo) FetchStatements(ctx context.Context, symbol string) (Statements, error) {
	st, err := y.fetchTimeseries(ctx, symbol)
	if err != nil {
		return Statements{}, err
	}

	yield, err := y.fetchDividendYield(ctx, symbol)
	if err != nil {
		y.logger.Warn("dividend yield unavailable", "symbol", symbol, "error", err)
	} else if yield != nil {
		st.Info[InfoDividendYield] = *yield
	}
	return st, nil
}

func (y *Yahoo) timeseriesURL(symbol string) string {
	types := make([]string, 0, len(financialsItems)+len(balanceItems)+len(cashFlowItems))
	for _, items := range [][]string{financialsItems, balanceItems, cashFlowItems} {
		for _, item := range items {
			types = append(types, "annual"+item)
		}
	}

	now := y.now()
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("type", strings.Join(types, ","))
	q.Set("period1", strconv.FormatInt(now.Add(-lookback).Unix(), 10))
	q.Set("period2", strconv.FormatInt(now.Unix(), 10))
	return y.baseURL + "/ws/fundamentals-timeseries/v1/finance/timeseries/" + url.PathEscape(symbol) + "?" + q.Encode()
}

func (y *Yahoo) fetchTimeseries(ctx context.Context, symbol string) (Statements, error) {
	resp := y.client.Fetch(ctx, y.timeseriesURL(symbol))
	if resp.Error != nil {
		return Statements{}, resp.Error
	}
	if resp.StatusCode != http.StatusOK {
		return Statements{}, fmt.Errorf("timeseries: unexpected status %d", resp.StatusCode)
	}

	var payload timeseriesResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return Statements{}, fmt.Errorf("timeseries: failed to decode response: %w", err)
	}
	if e := payload.Timeseries.Error; e != nil {
		return Statements{}, fmt.Errorf("timeseries: %s: %s", e.Code, e.Description)
	}

	st := NewStatements()
	for _, result := range payload.Timeseries.Result {
		var meta seriesMeta
		if err := json.Unmarshal(result["meta"], &meta); err != nil || len(meta.Type) == 0 {
			continue
		}
		typ := meta.Type[0]
		item, ok := strings.CutPrefix(typ, "annual")
		if !ok {
			continue
		}
		target := statementFor(st, item)
		if target == nil {
			continue
		}

		raw, ok := result[typ]
		if !ok {
			continue
		}
		var observations []*observation
		if err := json.Unmarshal(raw, &observations); err != nil {
			return Statements{}, fmt.Errorf("timeseries: failed to decode %s: %w", typ, err)
		}
		for _, o := range observations {
			if o == nil || o.AsOfDate == "" {
				continue
			}
			target.Set(item, o.AsOfDate, o.ReportedValue.Raw)
		}
	}
	return st, nil
}

// statementFor returns the statement of st that item belongs to.
func statementFor(st Statements, item string) Statement {
	for _, group := range []struct {
		items []string
		stmt  Statement
	}{
		{financialsItems, st.Financials},
		{balanceItems, st.BalanceSheet},
		{cashFlowItems, st.CashFlow},
	} {
		for _, i := range group.items {
			if i == item {
				return group.stmt
			}
		}
	}
	return nil
}

func (y *Yahoo) fetchDividendYield(ctx context.Context, symbol string) (*float64, error) {
	q := url.Values{}
	q.Set("symbols", symbol)
	q.Set("fields", "trailingAnnualDividendYield")

	resp := y.client.Fetch(ctx, y.baseURL+"/v7/finance/quote?"+q.Encode())
	if resp.Error != nil {
		return nil, resp.Error
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("quote: unexpected status %d", resp.StatusCode)
	}

	var payload quoteResponse
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, fmt.Errorf("quote: failed to decode response: %w", err)
	}
	if e := payload.QuoteResponse.Error; e != nil {
		return nil, fmt.Errorf("quote: %s: %s", e.Code, e.Description)
	}
	if len(payload.QuoteResponse.Result) == 0 {
		return nil, nil
	}
	return payload.QuoteResponse.Result[0].TrailingAnnualDividendYield, nil
}
