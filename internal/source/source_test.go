package source

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr error
	}{
		{"vale", "VALE", nil},
		{"  bhp ", "BHP", nil},
		{"BRK.B", "BRK.B", nil},
		{"", "", ErrEmptySymbol},
		{"   ", "", ErrEmptySymbol},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeSymbol(tt.in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NormalizeSymbol(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSource_Fetch(t *testing.T) {
	var asked string
	src := New(StatementFetcherFunc(func(_ context.Context, symbol string) (Statements, error) {
		asked = symbol
		return sampleStatements(), nil
	}), testLogger())

	m, err := src.Fetch(context.Background(), " vale ")
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if asked != "VALE" {
		t.Errorf("fetcher asked for %q, want normalized VALE", asked)
	}
	if m.DebtToEquity != 2.0 {
		t.Errorf("DebtToEquity = %v, want 2", m.DebtToEquity)
	}
}

func TestSource_FetchEmptySymbol(t *testing.T) {
	called := false
	src := New(StatementFetcherFunc(func(context.Context, string) (Statements, error) {
		called = true
		return Statements{}, nil
	}), testLogger())

	if _, err := src.Fetch(context.Background(), ""); !errors.Is(err, ErrEmptySymbol) {
		t.Errorf("Fetch() error = %v, want ErrEmptySymbol", err)
	}
	if called {
		t.Error("fetcher should not be called for an empty symbol")
	}
}

func TestSource_FetchErrors(t *testing.T) {
	apiErr := errors.New("API Error")

	tests := []struct {
		name    string
		fetcher StatementFetcherFunc
		want    error
	}{
		{
			name: "upstream failure",
			fetcher: func(context.Context, string) (Statements, error) {
				return Statements{}, apiErr
			},
			want: apiErr,
		},
		{
			name: "no data",
			fetcher: func(context.Context, string) (Statements, error) {
				return NewStatements(), nil
			},
			want: ErrNoData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.fetcher, testLogger()).Fetch(context.Background(), "INVALID")
			if !errors.Is(err, tt.want) {
				t.Errorf("Fetch() error = %v, want %v", err, tt.want)
			}
		})
	}
}
