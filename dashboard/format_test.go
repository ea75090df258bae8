package dashboard

import (
	"math"
	"testing"
)

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"thousands", 1234, "$1,234"},
		{"negative", -500, "-$500"},
		{"zero", 0, "$0"},
		{"negative zero", math.Copysign(0, -1), "-$0"},
		{"large", 100000, "$100,000"},
		{"millions rounded", 1234567.89, "$1,234,568"},
		{"half rounds away from zero", 2.5, "$3"},
		{"negative half rounds away from zero", -2.5, "-$3"},
		{"half to one", 0.5, "$1"},
		{"small negative keeps sign", -0.4, "-$0"},
		{"trillions", 3.2e12, "$3,200,000,000,000"},
		{"beyond int64", 1e20, "$100,000,000,000,000,000,000"},
		{"nan", math.NaN(), "$NaN"},
		{"inf", math.Inf(1), "$∞"},
		{"negative inf", math.Inf(-1), "-$∞"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCurrency(tt.in); got != tt.want {
				t.Errorf("FormatCurrency(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatCurrency_Idempotent(t *testing.T) {
	for _, v := range []float64{1234, -500, 0, 99.5, 1e9} {
		first := FormatCurrency(v)
		second := FormatCurrency(v)
		if first != second {
			t.Errorf("FormatCurrency(%v) not stable: %q then %q", v, first, second)
		}
	}
}

func TestFormatRatio(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{"one and a half", 1.5, "1.50"},
		{"integer", 2, "2.00"},
		{"zero", 0, "0.00"},
		{"negative zero", math.Copysign(0, -1), "0.00"},
		{"binary below tie", 1.005, "1.00"},
		{"binary below tie 2", 2.675, "2.67"},
		{"exact tie rounds up", 1.125, "1.13"},
		{"negative exact tie", -1.125, "-1.13"},
		{"tiny negative", -0.001, "-0.00"},
		{"negative", -3.14159, "-3.14"},
		{"large", 123456.789, "123456.79"},
		{"exponent form", 1e21, "1e+21"},
		{"nan", math.NaN(), "NaN"},
		{"inf", math.Inf(1), "Infinity"},
		{"negative inf", math.Inf(-1), "-Infinity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatRatio(tt.in); got != tt.want {
				t.Errorf("FormatRatio(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatPercent(t *testing.T) {
	for _, v := range []float64{12.5, 0, -3.333, 0.01, math.NaN(), 250} {
		want := FormatRatio(v) + "%"
		if got := FormatPercent(v); got != want {
			t.Errorf("FormatPercent(%v) = %q, want %q", v, got, want)
		}
	}

	if got := FormatPercent(12.5); got != "12.50%" {
		t.Errorf("FormatPercent(12.5) = %q, want %q", got, "12.50%")
	}
}

func TestShortNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1.5, "1.5"},
		{12.5, "12.5"},
		{100000, "100000"},
		{1e21, "1e+21"},
		{-2.5e22, "-2.5e+22"},
		{1.5e-7, "1.5e-7"},
		{0.000001, "0.000001"},
		{math.NaN(), "NaN"},
	}

	for _, tt := range tests {
		if got := shortNumber(tt.in); got != tt.want {
			t.Errorf("shortNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
