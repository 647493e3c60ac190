package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/model"
	"github.com/selfservice0/DynamicShop/internal/tui/themes"
)

// EconomyPanel renders the stats counters and the economy health summary.
type EconomyPanel struct {
	theme    themes.Theme
	ratioBar progress.Model
	width    int
	compact  bool
}

// NewEconomyPanel creates an economy panel.
func NewEconomyPanel(theme themes.Theme) EconomyPanel {
	bar := progress.New(
		progress.WithSolidFill(string(theme.Buy)),
		progress.WithoutPercentage(),
	)
	bar.Width = 20

	return EconomyPanel{
		theme:    theme,
		ratioBar: bar,
		width:    80,
	}
}

// SetCompact switches to a single-line rendering.
func (p *EconomyPanel) SetCompact(compact bool) {
	p.compact = compact
}

// Resize updates the component width.
func (p *EconomyPanel) Resize(width int) {
	p.width = width
	p.ratioBar.Width = max(10, min(width/4, 30))
}

// View renders the panel. A nil section with a nil error is still loading.
func (p EconomyPanel) View(stats *model.Stats, statsErr error, eco *model.EconomyHealth, ecoErr error) string {
	if p.compact {
		return p.renderCompact(stats, statsErr, eco, ecoErr)
	}

	statsBlock := placeholder(p.theme, "Market", statusFor(statsErr, stats != nil))
	if statsErr == nil && stats != nil {
		statsBlock = p.renderStats(*stats)
	}

	ecoBlock := placeholder(p.theme, "Economy Health", statusFor(ecoErr, eco != nil))
	if ecoErr == nil && eco != nil {
		ecoBlock = p.renderHealth(*eco)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, statsBlock, "    ", ecoBlock)
}

func (p EconomyPanel) renderStats(s model.Stats) string {
	lines := []string{
		fmt.Sprintf("%-12s %s", "Total:", common.FormatCount(s.Total)),
		fmt.Sprintf("%-12s %s", "Buys:", p.buyStyle().Render(common.FormatCount(s.Buys))),
		fmt.Sprintf("%-12s %s", "Sells:", p.sellStyle().Render(common.FormatCount(s.Sells))),
		fmt.Sprintf("%-12s %s", "Money:", common.FormatCurrency(s.TotalMoney)),
	}
	return renderSection(p.theme, "Market", lines)
}

func (p EconomyPanel) renderHealth(e model.EconomyHealth) string {
	flow := p.buyStyle()
	if e.NetFlow < 0 {
		flow = p.sellStyle()
	}

	lines := []string{
		fmt.Sprintf("%-12s %s %s", "Buy ratio:", p.ratioBar.ViewAs(clampUnit(e.BuyRatio)), common.FormatPercent(e.BuyRatio*100)),
		fmt.Sprintf("%-12s %s", "Net flow:", flow.Render(common.FormatCurrency(e.NetFlow))),
		fmt.Sprintf("%-12s %s", "Avg trade:", common.FormatCurrency(e.AvgTransaction)),
		fmt.Sprintf("%-12s %s/h", "Velocity:", common.FormatCount(e.Velocity)),
		fmt.Sprintf("%-12s %s items · %s players", "Unique:", common.FormatCount(e.UniqueItems), common.FormatCount(e.UniquePlayers)),
	}
	return renderSection(p.theme, "Economy Health", lines)
}

func (p EconomyPanel) renderCompact(stats *model.Stats, statsErr error, eco *model.EconomyHealth, ecoErr error) string {
	var parts []string

	switch {
	case statsErr != nil:
		parts = append(parts, p.theme.StatusError.Render("stats: error"))
	case stats != nil:
		parts = append(parts, fmt.Sprintf("%s trades (%s buy / %s sell) · %s",
			common.FormatCount(stats.Total),
			common.FormatCount(stats.Buys),
			common.FormatCount(stats.Sells),
			common.FormatCurrency(stats.TotalMoney)))
	default:
		parts = append(parts, p.theme.StatusPending.Render(LoadingText))
	}

	switch {
	case ecoErr != nil:
		parts = append(parts, p.theme.StatusError.Render("economy: error"))
	case eco != nil:
		parts = append(parts, fmt.Sprintf("buy ratio %s · %d/h",
			common.FormatPercent(eco.BuyRatio*100), eco.Velocity))
	}

	return p.theme.Normal.Render(strings.Join(parts, " | "))
}

func (p EconomyPanel) buyStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.theme.Buy)
}

func (p EconomyPanel) sellStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(p.theme.Sell)
}

func clampUnit(v float64) float64 {
	return max(0, min(v, 1))
}
