package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/model"
	"github.com/selfservice0/DynamicShop/internal/tui/themes"
)

// LeaderboardPanel renders the ranked player list for one leaderboard kind.
type LeaderboardPanel struct {
	theme themes.Theme
	rows  int
}

// NewLeaderboardPanel creates a leaderboard panel showing up to rows players.
func NewLeaderboardPanel(theme themes.Theme, rows int) LeaderboardPanel {
	if rows <= 0 {
		rows = 10
	}
	return LeaderboardPanel{theme: theme, rows: rows}
}

// View renders entries ranked by kind. Entries arrive already ordered.
func (p LeaderboardPanel) View(kind analytics.LeaderboardKind, entries []model.LeaderboardEntry, err error, loaded bool) string {
	title := p.title(kind)
	if status := statusFor(err, loaded); status != PanelReady {
		return placeholder(p.theme, title, status)
	}
	if len(entries) == 0 {
		return placeholder(p.theme, title, PanelReady)
	}

	lines := make([]string, 0, len(entries))
	for i, e := range entries[:min(p.rows, len(entries))] {
		lines = append(lines, fmt.Sprintf("%s %-16s %12s  %s",
			p.rank(i),
			common.Truncate(e.Player, 16),
			p.metric(kind, e),
			lipgloss.NewStyle().Foreground(p.theme.Muted).Render(
				fmt.Sprintf("%d trades · %d items", e.Trades, e.UniqueItems))))
	}
	return renderSection(p.theme, title, lines)
}

func (p LeaderboardPanel) title(kind analytics.LeaderboardKind) string {
	return fmt.Sprintf("%s · %s · %s", kind.Title(), kind.MetricLabel(), analytics.ServerWide)
}

func (p LeaderboardPanel) rank(i int) string {
	switch i {
	case 0:
		return "🥇"
	case 1:
		return "🥈"
	case 2:
		return "🥉"
	default:
		return fmt.Sprintf("%2d", i+1)
	}
}

func (p LeaderboardPanel) metric(kind analytics.LeaderboardKind, e model.LeaderboardEntry) string {
	v := kind.Metric(e)
	if !kind.IsMonetary() {
		return common.FormatCount(int(v))
	}

	s := common.FormatCurrency(v)
	if kind == analytics.LeaderboardEarners && e.NetProfit < 0 {
		return lipgloss.NewStyle().Foreground(p.theme.Sell).Render(s)
	}
	return s
}
