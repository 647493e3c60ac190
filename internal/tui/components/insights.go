package components

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/tui/themes"
)

// InsightsPanel renders the top items, top players and category share
// tables computed from the filtered ledger.
type InsightsPanel struct {
	theme themes.Theme
	bar   progress.Model
	width int
	rows  int
}

// NewInsightsPanel creates an insights panel showing up to rows entries per table.
func NewInsightsPanel(theme themes.Theme, rows int) InsightsPanel {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = 12

	if rows <= 0 {
		rows = analytics.DefaultTopN
	}
	return InsightsPanel{
		theme: theme,
		bar:   bar,
		width: 80,
		rows:  rows,
	}
}

// Resize updates the component width.
func (p *InsightsPanel) Resize(width int) {
	p.width = width
	p.bar.Width = max(6, min(width/8, 20))
}

// View renders all three insight tables side by side, or stacked when narrow.
func (p InsightsPanel) View(ins analytics.Insights) string {
	items := p.renderItems(ins)
	players := p.renderPlayers(ins)
	categories := p.renderCategories(ins)

	if p.width < 140 {
		return lipgloss.JoinVertical(lipgloss.Left, items, "", players, "", categories)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, items, "   ", players, "   ", categories)
}

func (p InsightsPanel) renderItems(ins analytics.Insights) string {
	const title = "Top Items"
	if len(ins.TopItems) == 0 {
		return placeholder(p.theme, title, PanelReady)
	}

	lines := make([]string, 0, len(ins.TopItems))
	for i, it := range ins.TopItems[:min(p.rows, len(ins.TopItems))] {
		lines = append(lines, fmt.Sprintf("%2d. %-18s %7s units  %s",
			i+1,
			common.Truncate(common.PrettifyItem(it.Item), 18),
			common.FormatCount(it.Count),
			common.FormatCurrency(it.Volume)))
	}
	return renderSection(p.theme, title, lines)
}

func (p InsightsPanel) renderPlayers(ins analytics.Insights) string {
	const title = "Top Players"
	if len(ins.TopPlayers) == 0 {
		return placeholder(p.theme, title, PanelReady)
	}

	lines := make([]string, 0, len(ins.TopPlayers))
	for i, pl := range ins.TopPlayers[:min(p.rows, len(ins.TopPlayers))] {
		lines = append(lines, fmt.Sprintf("%2d. %-16s %4d trades  %s",
			i+1,
			common.Truncate(pl.Player, 16),
			pl.Count,
			common.FormatCurrency(pl.Volume)))
	}
	return renderSection(p.theme, title, lines)
}

func (p InsightsPanel) renderCategories(ins analytics.Insights) string {
	const title = "Categories"
	if len(ins.Categories) == 0 {
		return placeholder(p.theme, title, PanelReady)
	}

	lines := make([]string, 0, len(ins.Categories))
	for _, c := range ins.Categories[:min(p.rows, len(ins.Categories))] {
		lines = append(lines, fmt.Sprintf("%s %-10s %s %6s",
			themes.GetCategoryIcon(c.Category),
			common.Truncate(c.Category, 10),
			p.bar.ViewAs(c.Percent/100),
			common.FormatPercent(c.Percent)))
	}
	return renderSection(p.theme, title, lines)
}
