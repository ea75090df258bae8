package main

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/jpalmerr/finboard"
	"github.com/jpalmerr/finboard/dashboard"
)

// Semantic colors for trend indication
const (
	colorFavorable   lipgloss.Color = "2" // Green
	colorUnfavorable lipgloss.Color = "1" // Red
	colorMuted       lipgloss.Color = "8" // Gray (bright black)
	colorPrimary     lipgloss.Color = "7" // White/default
)

var metricsHeaders = []string{
	"Symbol", "Debt to Equity", "Cash Reserves", "Working Capital",
	"FCF Margin", "Capex", "Dividend Yield", "Fetched",
}

// metricsRow is one rendered table row plus the trends of its card cells.
type metricsRow struct {
	cells  []string
	trends []dashboard.Trend // aligned with cells; empty for non-card cells
}

// newMetricsRow formats s. The four card cells use the dashboard formatting
// so the table reads the same as the web UI.
func newMetricsRow(s finboard.Snapshot, now time.Time) metricsRow {
	row := metricsRow{
		cells:  make([]string, len(metricsHeaders)),
		trends: make([]dashboard.Trend, len(metricsHeaders)),
	}
	row.cells[0] = s.Symbol

	if s.Metrics == nil {
		msg := "no data"
		if s.Error != nil {
			msg = s.Error.Error()
		}
		row.cells[1] = msg
		return row
	}

	dm := s.Metrics.Dashboard()
	for i, card := range dashboard.New(&dm).MetricCards() {
		row.cells[i+1] = card.Value
		row.trends[i+1] = card.Trend
	}
	row.cells[5] = dashboard.FormatCurrency(s.Metrics.Capex)
	row.cells[6] = dashboard.FormatPercent(s.Metrics.DividendYield * 100)
	row.cells[7] = humanize.RelTime(s.FetchedAt, now, "ago", "from now")
	if s.Error != nil {
		row.cells[7] += " (stale)"
	}
	return row
}

// renderMetricsTable renders rows as a bordered table, coloring card cells
// by trend.
func renderMetricsTable(rows []metricsRow) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(colorPrimary)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	cells := make([][]string, len(rows))
	for i, r := range rows {
		cells[i] = r.cells
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers(metricsHeaders...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row < 0 || row >= len(rows) {
				return cellStyle
			}
			switch trend := rows[row].trends[col]; {
			case trend == dashboard.TrendNone:
				return cellStyle
			case trend.Favorable():
				return cellStyle.Foreground(colorFavorable)
			default:
				return cellStyle.Foreground(colorUnfavorable)
			}
		})

	return fmt.Sprint(t)
}
