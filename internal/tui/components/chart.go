package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/spendsync/internal/aggregate"
	"github.com/Veraticus/spendsync/internal/display"
	"github.com/Veraticus/spendsync/internal/tui/themes"
)

// CategoryChartModel draws the expense breakdown as a stacked bar with a legend.
type CategoryChartModel struct {
	theme    themes.Theme
	currency string
	segments []aggregate.Segment
	width    int
}

// NewCategoryChartModel creates a category chart.
func NewCategoryChartModel(theme themes.Theme, currency string) CategoryChartModel {
	return CategoryChartModel{
		theme:    theme,
		currency: currency,
		width:    40,
	}
}

// SetSegments replaces the chart data.
func (m *CategoryChartModel) SetSegments(segments []aggregate.Segment) {
	m.segments = segments
}

// Resize updates the component size.
func (m *CategoryChartModel) Resize(width int) {
	m.width = width
}

// View renders the chart.
func (m CategoryChartModel) View() string {
	title := m.theme.Subtitle.Render("Spending by Category")
	if len(m.segments) == 0 {
		return lipgloss.JoinVertical(
			lipgloss.Left,
			title,
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render("No expenses to chart"),
		)
	}

	lines := []string{title, m.renderBar(max(m.width-4, 10)), ""}
	for _, seg := range m.segments {
		swatch := lipgloss.NewStyle().Foreground(lipgloss.Color(seg.Color)).Render("■")
		lines = append(lines, fmt.Sprintf("%s %s %5.1f%%  %s",
			swatch,
			padRight(display.Truncate(seg.Category, 14), 14),
			seg.Share*100,
			display.Money(seg.Amount, m.currency),
		))
	}
	return strings.Join(lines, "\n")
}

// renderBar maps each segment's sweep onto cells; the last segment absorbs rounding.
func (m CategoryChartModel) renderBar(width int) string {
	var b strings.Builder
	used := 0
	for i, seg := range m.segments {
		cells := int(math.Round(seg.Sweep() / 360 * float64(width)))
		if i == len(m.segments)-1 {
			cells = width - used
		}
		cells = min(max(cells, 0), width-used)
		used += cells
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(seg.Color)).Render(strings.Repeat("█", cells)))
	}
	return b.String()
}
