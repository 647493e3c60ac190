package tui

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/demo"
	"github.com/selfservice0/DynamicShop/internal/model"
	"github.com/selfservice0/DynamicShop/internal/refresh"
	"github.com/selfservice0/DynamicShop/internal/service"
	"github.com/selfservice0/DynamicShop/internal/testutil"
	"github.com/selfservice0/DynamicShop/internal/tui/tuitest"
)

var testNow = time.Date(2024, 6, 1, 16, 0, 0, 0, time.UTC)

func clock() time.Time { return testNow }

var errUnavailable = errors.New("unavailable")

// flakySource fails selected sections on demand.
type flakySource struct {
	service.DataSource
	failTransactions atomic.Bool
	failEconomy      atomic.Bool
}

func (s *flakySource) RecentTransactions(ctx context.Context, limit int) ([]model.Transaction, error) {
	if s.failTransactions.Load() {
		return nil, errUnavailable
	}
	return s.DataSource.RecentTransactions(ctx, limit)
}

func (s *flakySource) EconomyHealth(ctx context.Context) (*model.EconomyHealth, error) {
	if s.failEconomy.Load() {
		return nil, errUnavailable
	}
	return s.DataSource.EconomyHealth(ctx)
}

func newTestModel(t *testing.T, refreshOpts []refresh.Option, opts ...Option) (Model, *flakySource) {
	t.Helper()

	source := &flakySource{
		DataSource: demo.NewSource(testutil.SampleTransactions(testNow), demo.WithClock(clock), demo.WithLocation(time.UTC)),
	}
	refreshOpts = append([]refresh.Option{refresh.WithClock(clock)}, refreshOpts...)
	r := refresh.New(source, analytics.NewStore(), refreshOpts...)

	opts = append([]Option{
		WithClock(clock),
		WithLocation(time.UTC),
		WithSize(130, 60),
		WithSourceLabel("demo"),
	}, opts...)
	return New(context.Background(), r, nil, opts...), source
}

// refreshed runs one refresh cycle through the model.
func refreshed(t *testing.T, m Model) Model {
	t.Helper()
	cmd := m.refreshData()
	require.NotNil(t, cmd)

	next, _ := m.Update(cmd())
	return next.(Model)
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(tuitest.KeyPress(k))
		m = next.(Model)
	}
	return m
}

func TestModelLoading(t *testing.T) {
	m, _ := newTestModel(t, nil)

	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "Fetching market data from demo")
	assert.NotNil(t, m.Init())
}

func TestModelRefreshCycle(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = refreshed(t, m)

	assert.Equal(t, 7, m.Derived().Page.Total)
	assert.NotNil(t, m.stats)
	assert.NotNil(t, m.economy)
	assert.NotNil(t, m.trends)
	assert.True(t, m.boardLoaded)

	view := tuitest.StripANSI(m.View())
	assert.True(t, tuitest.ContainsInOrder(view,
		"DynamicShop Market", "Market", "Economy Health", "Transactions", "Top Items", "Top Earners", "Market Trends"))
	assert.Contains(t, view, "Updated Just now")
	assert.Contains(t, view, "Showing 1–7 of 7")
	assert.NotContains(t, view, "Error loading data")
}

func TestModelViewStateKeys(t *testing.T) {
	m, _ := newTestModel(t, nil, WithPageSize(2))
	m = refreshed(t, m)

	tests := []struct {
		check func(t *testing.T, m Model)
		name  string
		keys  []string
	}{
		{
			name: "time range cycles to last hour",
			keys: []string{"t"},
			check: func(t *testing.T, m Model) {
				assert.Equal(t, analytics.RangeLastHour, m.State().TimeRange)
				assert.Equal(t, 3, m.Derived().Page.Total)
			},
		},
		{
			name: "type filter cycles to buys",
			keys: []string{"f"},
			check: func(t *testing.T, m Model) {
				assert.Equal(t, model.TypeBuy, m.State().TypeFilter)
				assert.Equal(t, 4, m.Derived().Page.Total)
			},
		},
		{
			name: "type filter wraps back to all",
			keys: []string{"f", "f", "f"},
			check: func(t *testing.T, m Model) {
				assert.Empty(t, m.State().TypeFilter)
			},
		},
		{
			name: "new sort column starts descending",
			keys: []string{"7"},
			check: func(t *testing.T, m Model) {
				assert.Equal(t, analytics.SortByPrice, m.State().SortColumn)
				assert.Equal(t, analytics.Descending, m.State().SortDir)
				assert.Equal(t, "ENCHANTED_BOOK", m.Derived().Page.Items[0].Item)
			},
		},
		{
			name: "same sort column flips direction",
			keys: []string{"7", "7"},
			check: func(t *testing.T, m Model) {
				assert.Equal(t, analytics.Ascending, m.State().SortDir)
				assert.Equal(t, "BREAD", m.Derived().Page.Items[0].Item)
			},
		},
		{
			name: "paging forward and back",
			keys: []string{"n", "n", "p"},
			check: func(t *testing.T, m Model) {
				assert.Equal(t, 2, m.State().Page)
			},
		},
		{
			name: "last page then first page",
			keys: []string{"G"},
			check: func(t *testing.T, m Model) {
				assert.Equal(t, 4, m.State().Page)
				assert.Len(t, m.Derived().Page.Items, 1)
			},
		},
		{
			name: "next page stops at the end",
			keys: []string{"G", "n", "n"},
			check: func(t *testing.T, m Model) {
				assert.Equal(t, 4, m.State().Page)
			},
		},
		{
			name: "prev page stops at the start",
			keys: []string{"p", "p"},
			check: func(t *testing.T, m Model) {
				assert.Equal(t, 1, m.State().Page)
			},
		},
		{
			name: "filter change resets page",
			keys: []string{"n", "n", "t"},
			check: func(t *testing.T, m Model) {
				assert.Equal(t, 1, m.State().Page)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, press(m, tt.keys...))
		})
	}
}

func TestModelSearchDebounce(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = refreshed(t, m)

	m = press(m, "/")
	require.Equal(t, ModeSearch, m.Mode())

	m = press(m, "b")
	stale := searchDebounceMsg{gen: m.searchGen}
	m = press(m, "o", "b")
	assert.Empty(t, m.State().Search, "typing alone does not filter")

	next, _ := m.Update(stale)
	m = next.(Model)
	assert.Empty(t, m.State().Search, "stale debounce is ignored")

	next, _ = m.Update(searchDebounceMsg{gen: m.searchGen})
	m = next.(Model)
	assert.Equal(t, "bob", m.State().Search)
	assert.Equal(t, 2, m.Derived().Page.Total)
	assert.Equal(t, ModeSearch, m.Mode())

	next, _ = m.Update(tuitest.Key(tea.KeyEsc))
	m = next.(Model)
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Empty(t, m.State().Search)
	assert.Equal(t, 7, m.Derived().Page.Total)
}

func TestModelSearchDebounceCommand(t *testing.T) {
	m, _ := newTestModel(t, nil, WithSearchDebounce(10*time.Millisecond))
	m = refreshed(t, m)
	m = press(m, "/")

	next, cmd := m.Update(tuitest.KeyPress("a"))
	m = next.(Model)

	msgs := tuitest.RunCmd(cmd, 200*time.Millisecond)
	debounce, ok := tuitest.FindMsg[searchDebounceMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, m.searchGen, debounce.gen)
}

func TestModelSearchEnterAppliesImmediately(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = refreshed(t, m)

	m = press(m, "/", "a", "l", "i")
	next, _ := m.Update(tuitest.Key(tea.KeyEnter))
	m = next.(Model)

	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, "ali", m.State().Search)
	assert.Equal(t, 2, m.Derived().Page.Total)

	// The debounce from the last keystroke arrives late and changes nothing.
	next, _ = m.Update(searchDebounceMsg{gen: m.searchGen - 1})
	m = next.(Model)
	assert.Equal(t, "ali", m.State().Search)

	m = press(m, "t")
	assert.Equal(t, 1, m.Derived().Page.Total, "alice_alt traded outside the last hour")
}

func TestModelSectionDegradation(t *testing.T) {
	m, source := newTestModel(t, nil)
	m = refreshed(t, m)

	source.failEconomy.Store(true)
	m = refreshed(t, m)

	view := tuitest.StripANSI(m.View())
	assert.Equal(t, 1, strings.Count(view, "Error loading data"))
	assert.Contains(t, view, "Some panels failed to load")
	assert.Contains(t, view, "Top Earners")
	assert.NotNil(t, m.economy, "last good economy data is kept")

	source.failEconomy.Store(false)
	source.failTransactions.Store(true)
	m = refreshed(t, m)

	assert.Equal(t, 7, m.Derived().Page.Total, "last good snapshot is kept")
	assert.Contains(t, tuitest.StripANSI(m.View()), "Transactions unavailable, showing last good data")
}

func TestModelManualRefreshThrottled(t *testing.T) {
	m, _ := newTestModel(t, []refresh.Option{refresh.WithManualMinInterval(time.Hour)})

	next, cmd := m.Update(tuitest.KeyPress("r"))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.refreshing)

	msg := cmd()
	_, ok := msg.(refreshResultMsg)
	require.True(t, ok)
	next, _ = m.Update(msg)
	m = next.(Model)
	assert.False(t, m.refreshing)

	_, cmd = m.Update(tuitest.KeyPress("r"))
	require.NotNil(t, cmd)
	msg = cmd()
	require.IsType(t, refreshThrottledMsg{}, msg)

	next, _ = m.Update(msg)
	m = next.(Model)
	assert.Contains(t, tuitest.StripANSI(m.View()), "Refresh throttled")
}

func TestModelLeaderboardSwitch(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = refreshed(t, m)

	next, cmd := m.Update(tuitest.KeyPress("l"))
	m = next.(Model)
	assert.Equal(t, analytics.LeaderboardSpenders, m.kind)
	assert.False(t, m.boardLoaded)
	require.NotNil(t, cmd)

	// A late response for the previous kind is ignored.
	next, _ = m.Update(leaderboardLoadedMsg{kind: analytics.LeaderboardEarners, entries: []model.LeaderboardEntry{{Player: "Ghost"}}})
	m = next.(Model)
	assert.False(t, m.boardLoaded)

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.True(t, m.boardLoaded)
	assert.NotEmpty(t, m.leaderboard)

	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "Top Spenders")
	assert.NotContains(t, view, "Ghost")

	// The next cycle fetches the selected kind.
	m = refreshed(t, m)
	assert.Contains(t, tuitest.StripANSI(m.View()), "Top Spenders")
}

func TestModelOffline(t *testing.T) {
	store := analytics.NewStore()
	store.Replace(testutil.SampleTransactions(testNow), testNow.Add(-2*time.Hour))

	m := New(context.Background(), nil, store, WithClock(clock), WithSize(130, 60), WithOffline(true))
	assert.Nil(t, m.Init())

	view := tuitest.StripANSI(m.View())
	assert.Contains(t, view, "Offline: showing cached snapshot")
	assert.Contains(t, view, "Updated 2h ago")
	assert.Contains(t, view, "Showing 1–7 of 7")

	next, cmd := m.Update(tuitest.KeyPress("r"))
	assert.Nil(t, cmd)
	assert.Contains(t, tuitest.StripANSI(next.View()), "Offline: refresh disabled")
}

func TestModelResponsiveLayout(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = refreshed(t, m)

	tests := []struct {
		name    string
		want    []string
		notWant []string
		width   int
	}{
		{name: "compact", width: 70, want: []string{"Transactions"}, notWant: []string{"Top Items", "Market Trends"}},
		{name: "medium", width: 100, want: []string{"Transactions", "Top Items"}, notWant: []string{"Market Trends"}},
		{name: "full", width: 140, want: []string{"Transactions", "Top Items", "Market Trends"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := m.Update(tuitest.WindowSize(tt.width, 60))
			view := tuitest.StripANSI(next.View())
			for _, want := range tt.want {
				assert.Contains(t, view, want)
			}
			for _, notWant := range tt.notWant {
				assert.NotContains(t, view, notWant)
			}
		})
	}
}

func TestModelQuit(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = refreshed(t, m)

	next, cmd := m.Update(tuitest.KeyPress("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, next.View())

	// Keys are text while searching; ctrl+c still quits.
	m = press(m, "/", "q")
	assert.Equal(t, ModeSearch, m.Mode())
	_, cmd = m.Update(tuitest.Key(tea.KeyCtrlC))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestModelHelpToggle(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = refreshed(t, m)

	assert.NotContains(t, tuitest.StripANSI(m.View()), "first page")
	m = press(m, "?")
	assert.Contains(t, tuitest.StripANSI(m.View()), "first page")
}
