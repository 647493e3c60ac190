package components

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/model"
	"github.com/selfservice0/DynamicShop/internal/testutil"
	"github.com/selfservice0/DynamicShop/internal/tui/themes"
	"github.com/selfservice0/DynamicShop/internal/tui/tuitest"
)

var testNow = time.Date(2024, 6, 1, 16, 0, 0, 0, time.UTC)

func samplePage(t *testing.T, state analytics.ViewState) analytics.Page {
	t.Helper()
	txs := testutil.SampleTransactions(testNow)
	filtered := analytics.FilterByPredicate(analytics.FilterByTime(txs, state.TimeRange, testNow), state.Search, state.TypeFilter)
	sorted := analytics.SortTransactions(filtered, state.SortColumn, state.SortDir)
	return analytics.Paginate(sorted, state.Page, state.PageSize)
}

func TestLedger(t *testing.T) {
	state := analytics.DefaultViewState(50)
	ledger := NewLedger(themes.Default, time.UTC)
	ledger.SetPage(samplePage(t, state), state, testNow)

	view := tuitest.StripANSI(ledger.View())
	assert.Contains(t, view, "Transactions")
	assert.Contains(t, view, "All time")
	assert.Contains(t, view, "Time ↓")
	assert.Contains(t, view, "Oak Log")
	assert.Contains(t, view, "5m ago")
	assert.Contains(t, view, "Showing 1–7 of 7")
	assert.Contains(t, view, "Page 1 of 1")

	selected, ok := ledger.Selected()
	require.True(t, ok)
	assert.Equal(t, "Alice", selected.PlayerName)

	ledger, _ = ledger.Update(tuitest.Key(tea.KeyDown))
	selected, ok = ledger.Selected()
	require.True(t, ok)
	assert.Equal(t, "Bob", selected.PlayerName)
}

func TestLedgerCursorResetsOnNewCriteria(t *testing.T) {
	state := analytics.DefaultViewState(50)
	ledger := NewLedger(themes.Default, time.UTC)
	ledger.SetPage(samplePage(t, state), state, testNow)
	ledger, _ = ledger.Update(tuitest.Key(tea.KeyDown))

	state = state.WithSort(analytics.SortByPrice).WithSort(analytics.SortByPrice)
	require.Equal(t, analytics.Ascending, state.SortDir)
	ledger.SetPage(samplePage(t, state), state, testNow)

	selected, ok := ledger.Selected()
	require.True(t, ok)
	assert.Equal(t, "BREAD", selected.Item, "cheapest first after reset")
	assert.Contains(t, tuitest.StripANSI(ledger.View()), "Price ↑")
}

func TestLedgerFilterSummary(t *testing.T) {
	state := analytics.DefaultViewState(50).
		WithTimeRange(analytics.RangeLastDay).
		WithTypeFilter(model.TypeBuy).
		WithSearch("ali")

	ledger := NewLedger(themes.Default, time.UTC)
	ledger.SetPage(samplePage(t, state), state, testNow)

	view := tuitest.StripANSI(ledger.View())
	assert.Contains(t, view, `Last 24h · BUY · "ali"`)
	assert.Contains(t, view, "Showing 1–2 of 2")
}

func TestLedgerEmpty(t *testing.T) {
	state := analytics.DefaultViewState(50).WithSearch("nobody")
	ledger := NewLedger(themes.Default, time.UTC)
	ledger.SetPage(samplePage(t, state), state, testNow)

	view := tuitest.StripANSI(ledger.View())
	assert.Contains(t, view, "No transactions match the current filters")
	assert.Contains(t, view, "Showing 0 of 0")

	_, ok := ledger.Selected()
	assert.False(t, ok)
}

func TestInsightsPanel(t *testing.T) {
	panel := NewInsightsPanel(themes.Default, 5)

	t.Run("with data", func(t *testing.T) {
		ins := analytics.BuildInsights(testutil.SampleTransactions(testNow), 10)
		view := tuitest.StripANSI(panel.View(ins))

		assert.True(t, tuitest.ContainsInOrder(view, "Top Items", "Top Players", "Categories"))
		assert.Contains(t, view, "Enchanted Book")
		assert.Contains(t, view, "Bob")
		assert.Contains(t, view, "Blocks")
		assert.NotContains(t, view, NoDataText)
	})

	t.Run("empty", func(t *testing.T) {
		view := tuitest.StripANSI(panel.View(analytics.Insights{}))
		assert.Equal(t, 3, strings.Count(view, NoDataText))
	})

	t.Run("wide layout", func(t *testing.T) {
		wide := panel
		wide.Resize(140)
		view := tuitest.StripANSI(wide.View(analytics.BuildInsights(testutil.SampleTransactions(testNow), 10)))
		lines := strings.Split(view, "\n")
		assert.Contains(t, lines[0], "Top Items")
		assert.Contains(t, lines[0], "Top Players")
	})
}

func TestEconomyPanel(t *testing.T) {
	panel := NewEconomyPanel(themes.Default)
	stats := &model.Stats{Total: 7, Buys: 4, Sells: 3, TotalMoney: 1234.5}
	eco := &model.EconomyHealth{
		BuyRatio:       0.5714,
		NetFlow:        -250,
		AvgTransaction: 176.36,
		Velocity:       3,
		UniqueItems:    6,
		UniquePlayers:  6,
	}

	tests := []struct {
		name     string
		stats    *model.Stats
		statsErr error
		eco      *model.EconomyHealth
		ecoErr   error
		want     []string
		notWant  []string
	}{
		{
			name: "loading",
			want: []string{"Market", "Economy Health", LoadingText},
		},
		{
			name:  "ready",
			stats: stats,
			eco:   eco,
			want:  []string{"$1,234.50", "57.1%", "-$250.00", "$176.36", "3/h", "6 items · 6 players"},
		},
		{
			name:     "stats failed",
			statsErr: errors.New("boom"),
			eco:      eco,
			want:     []string{ErrorText, "57.1%"},
		},
		{
			name:    "economy failed",
			stats:   stats,
			ecoErr:  errors.New("boom"),
			want:    []string{"$1,234.50", ErrorText},
			notWant: []string{"Velocity"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := tuitest.StripANSI(panel.View(tt.stats, tt.statsErr, tt.eco, tt.ecoErr))
			for _, want := range tt.want {
				assert.Contains(t, view, want)
			}
			for _, notWant := range tt.notWant {
				assert.NotContains(t, view, notWant)
			}
		})
	}

	t.Run("compact", func(t *testing.T) {
		compact := panel
		compact.SetCompact(true)
		view := tuitest.StripANSI(compact.View(stats, nil, nil, errors.New("boom")))
		assert.Contains(t, view, "7 trades (4 buy / 3 sell)")
		assert.Contains(t, view, "economy: error")
		assert.Equal(t, 1, len(strings.Split(view, "\n")))
	})
}

func TestLeaderboardPanel(t *testing.T) {
	panel := NewLeaderboardPanel(themes.Default, 2)
	entries := []model.LeaderboardEntry{
		{Player: "Alice", Volume: 5000, Trades: 12, UniqueItems: 4},
		{Player: "Bob", Volume: 3000, Trades: 30, UniqueItems: 2},
		{Player: "Carol", Volume: 100, Trades: 1, UniqueItems: 1},
	}

	view := tuitest.StripANSI(panel.View(analytics.LeaderboardVolume, entries, nil, true))
	assert.Contains(t, view, "Highest Volume · Volume · server-wide")
	assert.True(t, tuitest.ContainsInOrder(view, "Alice", "$5,000.00", "Bob", "$3,000.00"))
	assert.NotContains(t, view, "Carol", "limited to two rows")

	view = tuitest.StripANSI(panel.View(analytics.LeaderboardTraders, entries, nil, true))
	assert.Contains(t, view, "Most Active Traders")
	assert.Contains(t, view, "30 trades · 2 items")

	loading := tuitest.StripANSI(panel.View(analytics.LeaderboardEarners, nil, nil, false))
	assert.Contains(t, loading, "Top Earners · Net Profit · server-wide", "label shown in every state")
	assert.Contains(t, loading, LoadingText)
	assert.Contains(t, tuitest.StripANSI(panel.View(analytics.LeaderboardEarners, nil, errors.New("boom"), true)), ErrorText)
	assert.Contains(t, tuitest.StripANSI(panel.View(analytics.LeaderboardEarners, nil, nil, true)), NoDataText)
}

func TestTrendsPanel(t *testing.T) {
	panel := NewTrendsPanel(themes.Default, 3)
	trends := &model.TrendBuckets{
		Hot:     []model.TrendItem{{Item: "OAK_LOG", RecentCount: 9, ChangePercent: 25, AvgPrice: 0.5}},
		Falling: []model.TrendItem{{Item: "DIAMOND", RecentCount: 1, ChangePercent: -10, AvgPrice: 150}},
	}

	view := tuitest.StripANSI(panel.View(trends, nil))
	assert.Contains(t, view, "Market Trends · server-wide")
	assert.True(t, tuitest.ContainsInOrder(view, "Hot", "Oak Log", "▲ +25.0%", "Rising", NoDataText, "Falling", "Diamond", "▼ -10.0%"))

	assert.Contains(t, tuitest.StripANSI(panel.View(nil, nil)), LoadingText)
	assert.Contains(t, tuitest.StripANSI(panel.View(nil, errors.New("boom"))), ErrorText)
	empty := tuitest.StripANSI(panel.View(&model.TrendBuckets{}, nil))
	assert.Contains(t, empty, NoDataText)
	assert.Contains(t, empty, "server-wide")
}
