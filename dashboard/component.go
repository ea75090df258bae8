package dashboard

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var components = template.Must(
	template.New("components").
		Funcs(template.FuncMap{"px": coord}).
		ParseFS(templateFS, "templates/*.tmpl"),
)

// Component is a piece of markup that can render itself.
type Component interface {
	Render(w io.Writer) error
}

// CardRenderer renders one metric card from a title, a pre-formatted value
// and an optional trend.
//
// All formatting happens before RenderCard is called; implementations only
// lay out what they are given. [DefaultCards] is used when a [Dashboard] has
// no renderer of its own.
type CardRenderer interface {
	RenderCard(w io.Writer, card MetricCard) error
}

// CardRendererFunc adapts a plain function to [CardRenderer].
type CardRendererFunc func(w io.Writer, card MetricCard) error

// RenderCard calls f(w, card).
func (f CardRendererFunc) RenderCard(w io.Writer, card MetricCard) error {
	return f(w, card)
}

// DefaultCards renders bordered cards with the title and trend indicator in
// the header and the value in large type below.
var DefaultCards CardRenderer = CardRendererFunc(func(w io.Writer, card MetricCard) error {
	return components.ExecuteTemplate(w, "card", card)
})

// MetricCard is one labeled value on the dashboard.
type MetricCard struct {
	Title string
	Value string
	Trend Trend
}

// Render writes the card using [DefaultCards].
func (c MetricCard) Render(w io.Writer) error {
	return DefaultCards.RenderCard(w, c)
}

// Render writes the chart section.
func (c Chart) Render(w io.Writer) error {
	return components.ExecuteTemplate(w, "chart", c.layout())
}

// Dashboard renders a metrics snapshot as four metric cards followed by the
// health overview chart, or a loading placeholder when Metrics is nil.
type Dashboard struct {
	Metrics *Metrics

	// Cards renders each metric card. Nil means [DefaultCards].
	Cards CardRenderer
}

// New returns a [Dashboard] for m using the default card renderer.
func New(m *Metrics) Dashboard {
	return Dashboard{Metrics: m}
}

// Loading reports whether the dashboard renders the placeholder.
func (d Dashboard) Loading() bool {
	return d.Metrics == nil
}

// MetricCards returns the four cards in display order, or nil while loading.
func (d Dashboard) MetricCards() []MetricCard {
	if d.Metrics == nil {
		return nil
	}
	m := d.Metrics
	return []MetricCard{
		{Title: "Debt to Equity", Value: FormatRatio(m.DebtToEquity), Trend: DebtToEquityTrend(m.DebtToEquity)},
		{Title: "Cash Reserves", Value: FormatCurrency(m.CashReserves), Trend: PositiveTrend(m.CashReserves)},
		{Title: "Working Capital", Value: FormatCurrency(m.WorkingCapital), Trend: PositiveTrend(m.WorkingCapital)},
		{Title: "Free Cash Flow Margin", Value: FormatPercent(m.FreeCashFlowMargin), Trend: PositiveTrend(m.FreeCashFlowMargin)},
	}
}

// Chart returns the overview chart, or false while loading.
func (d Dashboard) Chart() (Chart, bool) {
	if d.Metrics == nil {
		return Chart{}, false
	}
	return HealthChart(*d.Metrics), true
}

// Render writes the dashboard markup to w.
func (d Dashboard) Render(w io.Writer) error {
	if d.Metrics == nil {
		return components.ExecuteTemplate(w, "loading", nil)
	}

	renderer := d.Cards
	if renderer == nil {
		renderer = DefaultCards
	}

	cards := d.MetricCards()
	rendered := make([]template.HTML, 0, len(cards))
	for _, card := range cards {
		var buf bytes.Buffer
		if err := renderer.RenderCard(&buf, card); err != nil {
			return fmt.Errorf("failed to render %q card: %w", card.Title, err)
		}
		// card renderers emit markup by contract
		rendered = append(rendered, template.HTML(buf.String()))
	}

	chart, _ := d.Chart()
	return components.ExecuteTemplate(w, "dashboard", struct {
		Cards []template.HTML
		Chart chartView
	}{
		Cards: rendered,
		Chart: chart.layout(),
	})
}

// HTML renders the dashboard to a string.
func (d Dashboard) HTML() (string, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
