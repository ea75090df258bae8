package dashboard

// Trend marks a metric value as favorable or unfavorable.
//
// Trend is a fixed threshold rule on a single value, not a time series. The
// zero value [TrendNone] means the card shows no indicator.
type Trend string

const (
	// TrendNone renders no indicator.
	TrendNone Trend = ""

	// TrendUp is the favorable treatment: upward glyph, green accent.
	TrendUp Trend = "up"

	// TrendDown is the unfavorable treatment: downward glyph, red accent.
	TrendDown Trend = "down"
)

// String returns the string representation of the trend.
func (t Trend) String() string {
	return string(t)
}

// Favorable reports whether t is [TrendUp].
func (t Trend) Favorable() bool {
	return t == TrendUp
}

// debtToEquityLimit is the ratio below which leverage is considered healthy.
const debtToEquityLimit = 2

// DebtToEquityTrend is up when the ratio is below 2.
func DebtToEquityTrend(v float64) Trend {
	return trendIf(v < debtToEquityLimit)
}

// PositiveTrend is up when v is strictly positive. It is used for cash
// reserves, working capital and free-cash-flow margin.
func PositiveTrend(v float64) Trend {
	return trendIf(v > 0)
}

// NaN fails every comparison, so it always lands on TrendDown.
func trendIf(ok bool) Trend {
	if ok {
		return TrendUp
	}
	return TrendDown
}
