package tui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/refresh"
)

// refreshData runs (or joins) a refresh cycle.
func (m Model) refreshData() tea.Cmd {
	if m.refresher == nil || m.config.Offline {
		return nil
	}
	r, ctx := m.refresher, m.ctx
	return func() tea.Msg {
		return refreshResultMsg{result: r.Refresh(ctx)}
	}
}

// manualRefresh runs a user-requested refresh, subject to throttling.
func (m Model) manualRefresh() tea.Cmd {
	if m.refresher == nil || m.config.Offline {
		return nil
	}
	r, ctx := m.refresher, m.ctx
	return func() tea.Msg {
		result, err := r.TriggerManual(ctx)
		if errors.Is(err, refresh.ErrThrottled) {
			return refreshThrottledMsg{}
		}
		return refreshResultMsg{result: result, manual: true}
	}
}

// scheduleRefresh fires the next automatic refresh.
func (m Model) scheduleRefresh() tea.Cmd {
	if m.refresher == nil || m.config.Offline {
		return nil
	}
	return tea.Tick(m.config.RefreshInterval, func(t time.Time) tea.Msg {
		return refreshTickMsg{at: t}
	})
}

// debounceSearch applies typed search text once the input has been quiet.
func (m Model) debounceSearch() tea.Cmd {
	gen := m.searchGen
	if m.config.SearchDebounce <= 0 {
		return func() tea.Msg { return searchDebounceMsg{gen: gen} }
	}
	return tea.Tick(m.config.SearchDebounce, func(time.Time) tea.Msg {
		return searchDebounceMsg{gen: gen}
	})
}

// fetchLeaderboard loads one leaderboard kind outside the refresh cycle.
func (m Model) fetchLeaderboard(kind analytics.LeaderboardKind) tea.Cmd {
	if m.refresher == nil || m.config.Offline {
		return nil
	}
	r, ctx := m.refresher, m.ctx
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		entries, err := r.FetchLeaderboard(ctx, kind)
		return leaderboardLoadedMsg{kind: kind, entries: entries, err: err}
	}
}
