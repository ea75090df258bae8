package dashboard

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// exactDigits is enough fraction digits to print any float64 without loss.
const exactDigits = 1074

// exact returns the exact decimal value of a finite float64.
//
// decimal.NewFromFloat keeps only the shortest round-tripping digits, which
// would round 1.005 up even though the stored value is 1.00499999...
func exact(v float64) decimal.Decimal {
	return decimal.RequireFromString(strconv.FormatFloat(v, 'f', exactDigits, 64))
}

// FormatCurrency formats v as whole US dollars with thousands separators.
//
// Rounding is half away from zero on the exact binary value. Negative values,
// negative zero included, get a leading minus sign before the currency
// symbol:
//
//	FormatCurrency(1234)   // "$1,234"
//	FormatCurrency(-500)   // "-$500"
//	FormatCurrency(0)      // "$0"
//	FormatCurrency(NaN)    // "$NaN"
func FormatCurrency(v float64) string {
	if math.IsNaN(v) {
		return "$NaN"
	}

	sign := ""
	if math.Signbit(v) {
		sign = "-"
	}

	if math.IsInf(v, 0) {
		return sign + "$∞"
	}

	whole := exact(math.Abs(v)).Round(0)
	return sign + "$" + humanize.BigComma(whole.BigInt())
}

// FormatRatio formats v with exactly two fraction digits.
//
// Ties round away from zero on the exact binary value, negative zero prints
// without a sign, and magnitudes of 1e21 or more fall back to exponent
// notation.
func FormatRatio(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case math.Abs(v) >= 1e21:
		return shortNumber(v)
	}

	if v < 0 {
		return "-" + exact(-v).StringFixed(2)
	}
	return exact(v).StringFixed(2)
}

// FormatPercent formats an already scaled percentage, e.g. 12.5 -> "12.50%".
func FormatPercent(v float64) string {
	return FormatRatio(v) + "%"
}

// shortNumber renders v in its shortest round-trip form: plain digits
// between 1e-6 and 1e21, exponent form outside that range.
func shortNumber(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "Infinity"
	case math.IsInf(v, -1):
		return "-Infinity"
	case v == 0:
		return "0"
	}

	abs := math.Abs(v)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	s := strconv.FormatFloat(v, 'e', -1, 64)
	mantissa, exp, _ := strings.Cut(s, "e")
	expSign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mantissa + "e" + expSign + digits
}
