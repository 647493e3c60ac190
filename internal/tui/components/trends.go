package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/model"
	"github.com/selfservice0/DynamicShop/internal/tui/themes"
)

// TrendsPanel renders the hot, rising and falling item lists.
type TrendsPanel struct {
	theme themes.Theme
	rows  int
}

// NewTrendsPanel creates a trends panel showing up to rows items per list.
func NewTrendsPanel(theme themes.Theme, rows int) TrendsPanel {
	if rows <= 0 {
		rows = 5
	}
	return TrendsPanel{theme: theme, rows: rows}
}

// View renders the trend buckets.
func (p TrendsPanel) View(trends *model.TrendBuckets, err error) string {
	const title = "Market Trends · " + analytics.ServerWide
	if status := statusFor(err, trends != nil); status != PanelReady {
		return placeholder(p.theme, title, status)
	}
	if trends.IsEmpty() {
		return placeholder(p.theme, title, PanelReady)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		p.theme.Subtitle.Render(title),
		p.renderBucket("🔥 Hot", trends.Hot),
		p.renderBucket("📈 Rising", trends.Rising),
		p.renderBucket("📉 Falling", trends.Falling),
	)
}

func (p TrendsPanel) renderBucket(label string, items []model.TrendItem) string {
	lines := []string{p.theme.Bold.Render(label)}
	if len(items) == 0 {
		lines = append(lines, p.theme.StatusPending.Render("  "+NoDataText))
	}

	for _, it := range items[:min(p.rows, len(items))] {
		dir := analytics.ClassifyChange(it.ChangePercent)
		change := fmt.Sprintf("%s %s", dir.Arrow(), common.FormatSignedPercent(it.ChangePercent))
		lines = append(lines, fmt.Sprintf("  %-18s %3d recent  %-10s %s",
			common.Truncate(common.PrettifyItem(it.Item), 18),
			it.RecentCount,
			common.FormatCurrency(it.AvgPrice),
			p.changeStyle(dir).Render(change)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (p TrendsPanel) changeStyle(dir analytics.ChangeDirection) lipgloss.Style {
	switch dir {
	case analytics.ChangeUp:
		return lipgloss.NewStyle().Foreground(p.theme.Buy)
	case analytics.ChangeDown:
		return lipgloss.NewStyle().Foreground(p.theme.Sell)
	default:
		return lipgloss.NewStyle().Foreground(p.theme.Muted)
	}
}
