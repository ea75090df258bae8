package dashboard

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// chart geometry, in SVG user units
const (
	chartWidth   = 600
	chartHeight  = 200
	marginTop    = 5
	marginRight  = 30
	marginBottom = 5
	marginLeft   = 20
	yAxisWidth   = 60
	xAxisHeight  = 30
	tickCount    = 5
	tickSize     = 6
	lineStroke   = "#4f46e5"
	lineWidth    = 2
	gridDash     = "3 3"
	pointRadius  = 3
	hitRadius    = 12
)

// ChartPoint is one labeled value on the category axis.
type ChartPoint struct {
	Name  string
	Value float64
}

// Chart is a titled single-series line chart over categorical points.
type Chart struct {
	Title  string
	Points []ChartPoint
}

// HealthChart builds the "Financial Health Overview" chart for m.
func HealthChart(m Metrics) Chart {
	return Chart{
		Title: "Financial Health Overview",
		Points: []ChartPoint{
			{Name: "Debt/Equity", Value: m.DebtToEquity},
			{Name: "FCF Margin", Value: m.FreeCashFlowMargin},
		},
	}
}

// chartView is the laid-out chart handed to the template.
type chartView struct {
	Title      string
	Width      int
	Height     int
	Stroke     string
	LineWidth  int
	GridDash   string
	PlotLeft   float64
	PlotRight  float64
	PlotTop    float64
	PlotBottom float64
	PlotHeight float64
	Radius     int
	HitRadius  int
	TickSize   int
	YTicks     []tickView
	XTicks     []tickView
	Paths      []string
	Points     []pointView
}

type tickView struct {
	Label string
	Pos   float64
}

type pointView struct {
	X, Y    float64
	Finite  bool
	Tooltip string
}

func (c Chart) layout() chartView {
	v := chartView{
		Title:      c.Title,
		Width:      chartWidth,
		Height:     chartHeight,
		Stroke:     lineStroke,
		LineWidth:  lineWidth,
		GridDash:   gridDash,
		PlotLeft:   marginLeft + yAxisWidth,
		PlotRight:  chartWidth - marginRight,
		PlotTop:    marginTop,
		PlotBottom: chartHeight - marginBottom - xAxisHeight,
		PlotHeight: chartHeight - marginBottom - xAxisHeight - marginTop,
		Radius:     pointRadius,
		HitRadius:  hitRadius,
		TickSize:   tickSize,
	}

	ticks := niceTicks(valueDomain(c.Points))
	lo, hi := ticks[0], ticks[len(ticks)-1]
	scaleY := func(val float64) float64 {
		if hi == lo {
			return v.PlotBottom
		}
		return v.PlotBottom - (val-lo)/(hi-lo)*(v.PlotBottom-v.PlotTop)
	}
	for _, t := range ticks {
		v.YTicks = append(v.YTicks, tickView{Label: shortNumber(t), Pos: scaleY(t)})
	}

	// point scale: first category on the left edge, last on the right
	scaleX := func(i int) float64 {
		if len(c.Points) < 2 {
			return (v.PlotLeft + v.PlotRight) / 2
		}
		return v.PlotLeft + float64(i)/float64(len(c.Points)-1)*(v.PlotRight-v.PlotLeft)
	}

	var run []xy
	flush := func() {
		if len(run) > 0 {
			v.Paths = append(v.Paths, monotonePath(run))
			run = nil
		}
	}
	for i, p := range c.Points {
		x := scaleX(i)
		v.XTicks = append(v.XTicks, tickView{Label: p.Name, Pos: x})

		pv := pointView{X: x, Tooltip: p.Name + "\nvalue : " + shortNumber(p.Value)}
		if isFinite(p.Value) {
			pv.Y = scaleY(p.Value)
			pv.Finite = true
			run = append(run, xy{x, pv.Y})
		} else {
			flush()
		}
		v.Points = append(v.Points, pv)
	}
	flush()

	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// valueDomain returns the data extent, always including zero.
func valueDomain(points []ChartPoint) (lo, hi float64) {
	for _, p := range points {
		if !isFinite(p.Value) {
			continue
		}
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	return lo, hi
}

// niceTicks spreads tickCount evenly spaced ticks with a round step over
// [lo, hi]. Step arithmetic is decimal so labels come out as 0.4, not
// 0.4000000000000001.
func niceTicks(lo, hi float64) []float64 {
	ticks := make([]float64, 0, tickCount)
	if hi == lo {
		for i := 0; i < tickCount; i++ {
			ticks = append(ticks, lo+float64(i))
		}
		return ticks
	}

	step := niceStep(decimal.NewFromFloat((hi - lo) / (tickCount - 1)))
	start := decimal.NewFromFloat(lo).Div(step).Floor().Mul(step)
	end := decimal.NewFromFloat(hi).Div(step).Ceil().Mul(step)

	for t := start; t.LessThanOrEqual(end); t = t.Add(step) {
		f, _ := t.Float64()
		ticks = append(ticks, f)
	}
	return ticks
}

// niceStep rounds a raw step up to a multiple of 0.1 (single-digit steps)
// or 0.05 of its power of ten.
func niceStep(raw decimal.Decimal) decimal.Decimal {
	f, _ := raw.Float64()
	digits := int32(math.Floor(math.Log10(f))) + 1
	magnitude := decimal.New(1, digits)

	scale := decimal.RequireFromString("0.05")
	if digits == 1 {
		scale = decimal.RequireFromString("0.1")
	}

	ratio := raw.Div(magnitude)
	return ratio.Div(scale).Ceil().Mul(scale).Mul(magnitude)
}

type xy struct{ x, y float64 }

// monotonePath returns an SVG path through pts using monotone cubic
// interpolation in x, which never overshoots between points.
func monotonePath(pts []xy) string {
	var b strings.Builder
	b.WriteString("M" + coord(pts[0].x) + "," + coord(pts[0].y))

	switch len(pts) {
	case 1:
		return b.String()
	case 2:
		b.WriteString("L" + coord(pts[1].x) + "," + coord(pts[1].y))
		return b.String()
	}

	n := len(pts)
	tangents := make([]float64, n)
	for i := 1; i < n-1; i++ {
		tangents[i] = interiorSlope(pts[i-1], pts[i], pts[i+1])
	}
	tangents[0] = endSlope(pts[0], pts[1], tangents[1])
	tangents[n-1] = endSlope(pts[n-2], pts[n-1], tangents[n-2])

	for i := 0; i < n-1; i++ {
		p0, p1 := pts[i], pts[i+1]
		dx := (p1.x - p0.x) / 3
		b.WriteString("C" +
			coord(p0.x+dx) + "," + coord(p0.y+dx*tangents[i]) + "," +
			coord(p1.x-dx) + "," + coord(p1.y-dx*tangents[i+1]) + "," +
			coord(p1.x) + "," + coord(p1.y))
	}
	return b.String()
}

// interiorSlope is the Steffen tangent at p1.
func interiorSlope(p0, p1, p2 xy) float64 {
	h0, h1 := p1.x-p0.x, p2.x-p1.x
	if h0 == 0 || h1 == 0 {
		return 0
	}
	s0, s1 := (p1.y-p0.y)/h0, (p2.y-p1.y)/h1
	p := (s0*h1 + s1*h0) / (h0 + h1)
	m := (sign(s0) + sign(s1)) * math.Min(math.Min(math.Abs(s0), math.Abs(s1)), 0.5*math.Abs(p))
	if math.IsNaN(m) {
		return 0
	}
	return m
}

// endSlope derives the tangent at an end point from its neighbor's tangent.
func endSlope(p0, p1 xy, t float64) float64 {
	h := p1.x - p0.x
	if h == 0 {
		return t
	}
	return (3*(p1.y-p0.y)/h - t) / 2
}

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

// coord prints an SVG coordinate rounded to hundredths of a unit.
func coord(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		r = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
