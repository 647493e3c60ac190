package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/refresh"
)

// renderLoading renders the loading screen shown until the first cycle completes.
func (m Model) renderLoading() string {
	content := lipgloss.JoinVertical(
		lipgloss.Center,
		m.theme.Title.Render("DynamicShop Market"),
		"",
		m.spinner.View()+" "+lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Fetching market data from "+m.config.SourceLabel+"..."),
	)

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		content,
	)
}

// renderCompactView renders the compact layout for narrow terminals.
func (m Model) renderCompactView() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.economyPanel.View(m.stats, m.sectionErr(refresh.SectionStats), m.economy, m.sectionErr(refresh.SectionEconomy)),
		m.renderSearchBar(),
		m.ledger.View(),
		m.renderFooter(),
	)
}

// renderMediumView stacks the panels for medium terminals.
func (m Model) renderMediumView() string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.panel(m.economyPanel.View(m.stats, m.sectionErr(refresh.SectionStats), m.economy, m.sectionErr(refresh.SectionEconomy))),
		m.renderSearchBar(),
		m.panel(m.ledger.View()),
		m.panel(m.insights.View(m.derived.Insights)),
		m.renderFooter(),
	)
}

// renderFullView renders the full dashboard for wide terminals.
func (m Model) renderFullView() string {
	half := (m.width - 6) / 2

	side := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.panel(lipgloss.NewStyle().Width(half).Render(
			m.boardPanel.View(m.kind, m.leaderboard, m.sectionErr(refresh.SectionLeaderboard), m.boardLoaded))),
		m.panel(lipgloss.NewStyle().Width(half).Render(
			m.trendsPanel.View(m.trends, m.sectionErr(refresh.SectionTrends)))),
	)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		m.panel(m.economyPanel.View(m.stats, m.sectionErr(refresh.SectionStats), m.economy, m.sectionErr(refresh.SectionEconomy))),
		m.renderSearchBar(),
		m.panel(m.ledger.View()),
		m.panel(m.insights.View(m.derived.Insights)),
		side,
		m.renderFooter(),
	)
}

// renderHeader renders the title line with refresh state.
func (m Model) renderHeader() string {
	left := m.theme.Title.Render("DynamicShop Market") + "  " +
		m.theme.Subtitle.Render(m.config.SourceLabel)

	var right []string
	if m.refreshing {
		right = append(right, m.spinner.View()+" refreshing")
	}
	if fetched := m.store.Snapshot().FetchedAt; !fetched.IsZero() {
		right = append(right, "Updated "+common.FormatRelativeTime(fetched, m.config.Clock()))
	}
	if m.status != "" {
		right = append(right, m.theme.StatusWarning.Render(m.status))
	}

	line := left
	if len(right) > 0 {
		line += "  " + lipgloss.NewStyle().Foreground(m.theme.Muted).Render(strings.Join(right, " · "))
	}
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

// renderSearchBar renders the search input, or the active search when not editing.
func (m Model) renderSearchBar() string {
	if m.mode == ModeSearch {
		return m.search.View()
	}
	if m.state.Search != "" {
		return m.theme.Normal.Render(fmt.Sprintf("🔍 %q  ", m.state.Search)) +
			lipgloss.NewStyle().Foreground(m.theme.Muted).Render("(esc to clear)")
	}
	return lipgloss.NewStyle().Foreground(m.theme.Muted).Render("Press / to search")
}

// renderFooter renders the key help.
func (m Model) renderFooter() string {
	return m.help.View(m.keymap)
}

// panel wraps content in the theme's bordered panel.
func (m Model) panel(content string) string {
	return m.theme.Panel.Render(content)
}

func (m Model) sectionErr(section refresh.Section) error {
	return m.sectionErrs[section]
}
