package analytics

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfservice0/DynamicShop/internal/model"
	"github.com/selfservice0/DynamicShop/internal/testutil"
)

var testNow = time.Date(2024, 3, 10, 12, 30, 0, 0, time.UTC)

// exampleTransactions is the two-record OAK_LOG ledger used by several scenarios.
func exampleTransactions(t *testing.T) []model.Transaction {
	t.Helper()

	txs := []model.Transaction{
		{RawTimestamp: "2024-01-01T10:00", PlayerName: "Alice", Type: model.TypeBuy, Item: "OAK_LOG", Amount: 10, Price: 5.00},
		{RawTimestamp: "2024-01-01T11:00", PlayerName: "Bob", Type: model.TypeSell, Item: "OAK_LOG", Amount: 5, Price: 12.50},
	}
	require.Zero(t, model.ResolveTimestamps(txs, time.UTC))
	return txs
}

func TestFilterByTime(t *testing.T) {
	txs := testutil.SampleTransactions(testNow)
	txs = append(txs, model.Transaction{RawTimestamp: "garbage", PlayerName: "Zed", Type: model.TypeBuy, Item: "STONE", Amount: 1, Price: 1})

	t.Run("all is identity", func(t *testing.T) {
		got := FilterByTime(txs, RangeAll, testNow)
		assert.Equal(t, txs, got)
	})

	tests := []struct {
		r    TimeRange
		want int
	}{
		{RangeLastHour, 3},
		{RangeLastDay, 5},
		{RangeLastWeek, 7},
		{RangeLastMonth, 7},
	}

	for _, tt := range tests {
		t.Run(string(tt.r), func(t *testing.T) {
			got := FilterByTime(txs, tt.r, testNow)
			assert.Len(t, got, tt.want)

			cutoff := testNow.Add(-tt.r.Window())
			for _, tx := range got {
				assert.True(t, tx.Timestamp.After(cutoff), "%s not after cutoff", tx.RawTimestamp)
				assert.Contains(t, txs, tx)
			}
		})
	}

	t.Run("boundary is exclusive", func(t *testing.T) {
		edge := testutil.NewTransactionBuilder(testNow).Buy("Edge", "STONE", 1, 1, time.Hour).Build()
		assert.Empty(t, FilterByTime(edge, RangeLastHour, testNow))
	})
}

func TestParseTimeRange(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeRange
		wantErr bool
	}{
		{"", RangeAll, false},
		{"all", RangeAll, false},
		{"1h", RangeLastHour, false},
		{" 24H ", RangeLastDay, false},
		{"7d", RangeLastWeek, false},
		{"30D", RangeLastMonth, false},
		{"2w", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeRange(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, RangeLastHour, RangeAll.Next())
	assert.Equal(t, RangeAll, RangeLastMonth.Next())
}

func TestFilterByPredicate(t *testing.T) {
	txs := testutil.SampleTransactions(testNow)

	t.Run("empty predicates are neutral", func(t *testing.T) {
		assert.Equal(t, txs, FilterByPredicate(txs, "", ""))
	})

	t.Run("search matches player or item case-insensitively", func(t *testing.T) {
		for _, search := range []string{"ali", "OAK", "ingot", "b"} {
			got := FilterByPredicate(txs, search, "")
			require.NotEmpty(t, got, search)
			for _, tx := range got {
				needle := strings.ToLower(search)
				assert.True(t,
					strings.Contains(strings.ToLower(tx.PlayerName), needle) ||
						strings.Contains(strings.ToLower(tx.Item), needle),
					"%q does not match %+v", search, tx)
			}
		}
	})

	t.Run("type filter", func(t *testing.T) {
		got := FilterByPredicate(txs, "", model.TypeSell)
		require.Len(t, got, 3)
		for _, tx := range got {
			assert.Equal(t, model.TypeSell, tx.Type)
		}
	})

	t.Run("predicates combine", func(t *testing.T) {
		got := FilterByPredicate(txs, "oak", model.TypeBuy)
		require.Len(t, got, 1)
		assert.Equal(t, "Alice", got[0].PlayerName)
	})

	t.Run("ali matches only Alice in example", func(t *testing.T) {
		got := FilterByPredicate(exampleTransactions(t), "ALI", "")
		require.Len(t, got, 1)
		assert.Equal(t, "Alice", got[0].PlayerName)
	})
}

func TestFilterComposition(t *testing.T) {
	store := NewStore()
	snap := store.Replace(testutil.SampleTransactions(testNow), testNow)
	engine := NewEngine(10)

	state := DefaultViewState(50).WithSearch("oak").WithTimeRange(RangeLastHour)
	narrow := engine.Derive(snap, state, testNow)
	require.Len(t, narrow.Filtered, 1)

	// Widening the window must re-derive from the store, not from the narrow set.
	wide := engine.Derive(snap, state.WithTimeRange(RangeAll), testNow)
	expected := FilterByPredicate(FilterByTime(snap.Transactions, RangeAll, testNow), "oak", "")
	assert.Equal(t, expected, wide.Filtered)
	assert.Len(t, wide.Filtered, 2)
}

func TestSortTransactions(t *testing.T) {
	txs := []model.Transaction{
		{PlayerName: "bob", Type: model.TypeSell, Item: "STONE", Amount: 3, Price: 9, Category: "Blocks"},
		{PlayerName: "Alice", Type: model.TypeBuy, Item: "apple", Amount: 1, Price: 2.5},
		{PlayerName: "carol", Type: model.TypeBuy, Item: "Diamond", Amount: 7, Price: 100, Category: "Ores"},
	}
	for i := range txs {
		txs[i].Timestamp = testNow.Add(time.Duration(i) * time.Minute)
	}

	tests := []struct {
		column SortColumn
		want   []string // player names ascending
	}{
		{SortByTimestamp, []string{"bob", "Alice", "carol"}},
		{SortByPlayer, []string{"Alice", "bob", "carol"}},
		{SortByItem, []string{"Alice", "carol", "bob"}},
		{SortByAmount, []string{"Alice", "bob", "carol"}},
		{SortByPrice, []string{"Alice", "bob", "carol"}},
		{SortByCategory, []string{"bob", "carol", "Alice"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.column), func(t *testing.T) {
			asc := SortTransactions(txs, tt.column, Ascending)
			assert.Equal(t, tt.want, players(asc))

			desc := SortTransactions(txs, tt.column, Descending)
			assert.Equal(t, reversed(players(asc)), players(desc))
		})
	}

	t.Run("input is not modified", func(t *testing.T) {
		before := players(txs)
		SortTransactions(txs, SortByPlayer, Descending)
		assert.Equal(t, before, players(txs))
	})

	t.Run("invalid timestamps sort last", func(t *testing.T) {
		withInvalid := append([]model.Transaction{{PlayerName: "nobody"}}, txs...)
		for _, dir := range []SortDirection{Ascending, Descending} {
			sorted := SortTransactions(withInvalid, SortByTimestamp, dir)
			assert.Equal(t, "nobody", sorted[len(sorted)-1].PlayerName, dir)
		}
	})

	t.Run("mixed timestamps reverse only the valid records", func(t *testing.T) {
		mixed := []model.Transaction{txs[0], {PlayerName: "ghost1"}, txs[1], {PlayerName: "ghost2"}, txs[2]}

		asc := SortTransactions(mixed, SortByTimestamp, Ascending)
		desc := SortTransactions(mixed, SortByTimestamp, Descending)

		assert.Equal(t, []string{"bob", "Alice", "carol", "ghost1", "ghost2"}, players(asc))
		assert.Equal(t, []string{"carol", "Alice", "bob", "ghost1", "ghost2"}, players(desc))
		assert.NotEqual(t, reversed(players(asc)), players(desc))
		assert.Equal(t, reversed(players(asc[:3])), players(desc[:3]))
	})

	t.Run("type sorts by text", func(t *testing.T) {
		sorted := SortTransactions(txs, SortByType, Ascending)
		assert.Equal(t, model.TypeBuy, sorted[0].Type)
		assert.Equal(t, model.TypeSell, sorted[2].Type)
	})
}

func TestParseSortColumn(t *testing.T) {
	col, err := ParseSortColumn("player")
	require.NoError(t, err)
	assert.Equal(t, SortByPlayer, col)

	col, err = ParseSortColumn("")
	require.NoError(t, err)
	assert.Equal(t, SortByTimestamp, col)

	_, err = ParseSortColumn("colour")
	assert.Error(t, err)
}

func TestPaginate(t *testing.T) {
	txs := make([]model.Transaction, 0, 23)
	for i := range 23 {
		txs = append(txs, model.Transaction{PlayerName: fmt.Sprintf("p%02d", i)})
	}

	t.Run("total pages", func(t *testing.T) {
		assert.Equal(t, 1, TotalPages(0, 10))
		assert.Equal(t, 1, TotalPages(10, 10))
		assert.Equal(t, 3, TotalPages(23, 10))
	})

	t.Run("pages reconstruct the sequence", func(t *testing.T) {
		var joined []model.Transaction
		first := Paginate(txs, 1, 10)
		for page := 1; page <= first.TotalPages; page++ {
			joined = append(joined, Paginate(txs, page, 10).Items...)
		}
		assert.Equal(t, txs, joined)
	})

	t.Run("pages beyond range are clamped", func(t *testing.T) {
		p := Paginate(txs, 99, 10)
		assert.Equal(t, 3, p.Number)
		assert.Len(t, p.Items, 3)
		assert.Equal(t, "Showing 21–23 of 23", p.Showing())

		p = Paginate(txs, -4, 10)
		assert.Equal(t, 1, p.Number)
		assert.Equal(t, "Showing 1–10 of 23", p.Showing())
		assert.False(t, p.HasPrev())
		assert.True(t, p.HasNext())
	})

	t.Run("empty", func(t *testing.T) {
		p := Paginate(nil, 3, 10)
		assert.Equal(t, 1, p.Number)
		assert.Equal(t, 1, p.TotalPages)
		assert.Empty(t, p.Items)
		assert.Equal(t, "Showing 0 of 0", p.Showing())
	})

	t.Run("page size one", func(t *testing.T) {
		txs := exampleTransactions(t)
		state := DefaultViewState(1).GoToPage(2, len(txs))

		p := Paginate(txs, state.Page, state.PageSize)
		require.Len(t, p.Items, 1)
		assert.Equal(t, txs[1], p.Items[0])

		next := state.NextPage(len(txs))
		assert.Equal(t, 2, next.Page)
	})
}

func TestViewState(t *testing.T) {
	s := DefaultViewState(0)
	assert.Equal(t, DefaultPageSize, s.PageSize)
	assert.Equal(t, SortByTimestamp, s.SortColumn)
	assert.Equal(t, Descending, s.SortDir)
	assert.Equal(t, RangeAll, s.TimeRange)

	t.Run("sort toggling", func(t *testing.T) {
		flipped := s.WithSort(SortByTimestamp)
		assert.Equal(t, Ascending, flipped.SortDir)

		other := flipped.WithSort(SortByPrice)
		assert.Equal(t, SortByPrice, other.SortColumn)
		assert.Equal(t, Descending, other.SortDir)
	})

	t.Run("criteria changes reset page", func(t *testing.T) {
		paged := s.GoToPage(3, 500)
		require.Equal(t, 3, paged.Page)

		assert.Equal(t, 1, paged.WithSearch("x").Page)
		assert.Equal(t, 1, paged.WithTypeFilter(model.TypeBuy).Page)
		assert.Equal(t, 1, paged.WithTimeRange(RangeLastDay).Page)
		assert.Equal(t, 1, paged.WithSort(SortByItem).Page)
		assert.Equal(t, 3, paged.Page, "original value must be unchanged")
	})

	t.Run("page navigation is bounded", func(t *testing.T) {
		assert.Equal(t, 1, s.PrevPage().Page)
		assert.Equal(t, 2, s.NextPage(51).Page)
		assert.Equal(t, 1, s.NextPage(50).Page)
		assert.Equal(t, 2, s.GoToPage(99, 51).Page)
	})

	t.Run("type cycle", func(t *testing.T) {
		assert.Equal(t, model.TypeBuy, s.TypeCycle().TypeFilter)
		assert.Equal(t, model.TypeSell, s.TypeCycle().TypeCycle().TypeFilter)
		assert.Equal(t, model.TransactionType(""), s.TypeCycle().TypeCycle().TypeCycle().TypeFilter)
	})
}

func TestInsights(t *testing.T) {
	t.Run("example ledger", func(t *testing.T) {
		insights := BuildInsights(exampleTransactions(t), 10)

		require.Len(t, insights.TopItems, 1)
		assert.Equal(t, "OAK_LOG", insights.TopItems[0].Item)
		assert.InDelta(t, 17.50, insights.TopItems[0].Volume, 0.001)
		assert.Equal(t, 15, insights.TopItems[0].Count)

		require.Len(t, insights.Categories, 1)
		assert.Equal(t, model.UnknownCategory, insights.Categories[0].Category)
		assert.InDelta(t, 100.0, insights.Categories[0].Percent, 0.001)

		require.Len(t, insights.TopPlayers, 2)
		assert.Equal(t, "Alice", insights.TopPlayers[0].Player)
		assert.False(t, insights.Empty())
	})

	t.Run("empty set is no data", func(t *testing.T) {
		insights := BuildInsights(nil, 10)
		assert.True(t, insights.Empty())
		assert.Empty(t, insights.TopItems)
		assert.Empty(t, insights.TopPlayers)
		assert.Empty(t, insights.Categories)
	})

	txs := testutil.SampleTransactions(testNow)

	t.Run("volumes never exceed the total", func(t *testing.T) {
		var total, sum float64
		for _, tx := range txs {
			total += tx.Price
		}
		for _, row := range TopItems(txs, 2) {
			sum += row.Volume
		}
		assert.LessOrEqual(t, sum, total)
	})

	t.Run("category percentages", func(t *testing.T) {
		var all float64
		for _, row := range CategoryDistribution(txs, 10) {
			all += row.Percent
		}
		assert.InDelta(t, 100.0, all, 0.0001)

		var partial float64
		for _, row := range CategoryDistribution(txs, 2) {
			partial += row.Percent
		}
		assert.Less(t, partial, 100.0)
	})

	t.Run("rankings", func(t *testing.T) {
		items := TopItems(txs, 3)
		require.Len(t, items, 3)
		assert.Equal(t, "ENCHANTED_BOOK", items[0].Item)
		assert.Equal(t, "DIAMOND", items[1].Item)
		assert.Equal(t, "OAK_LOG", items[2].Item, "ties with IRON_INGOT at 80 and was seen first")
		assert.Equal(t, 192, items[2].Count)

		players := TopPlayers(txs, 1)
		require.Len(t, players, 1)
		assert.Equal(t, "Bob", players[0].Player)
		assert.Equal(t, 2, players[0].Count)
		assert.InDelta(t, 1650.0, players[0].Volume, 0.001)

		cats := CategoryDistribution(txs, 10)
		assert.Equal(t, "Blocks", cats[0].Category)
		assert.Equal(t, 2, cats[0].Count)
	})

	t.Run("ties keep first-seen order", func(t *testing.T) {
		tied := []model.Transaction{
			{PlayerName: "x", Item: "B", Price: 5},
			{PlayerName: "y", Item: "A", Price: 5},
		}
		items := TopItems(tied, 10)
		assert.Equal(t, "B", items[0].Item)
		assert.Equal(t, "A", items[1].Item)
	})

	assert.Zero(t, Percent(3, 0))
	assert.InDelta(t, 50.0, Percent(1, 2), 0.0001)
}

func TestEngineMemo(t *testing.T) {
	store := NewStore()
	snap := store.Replace(testutil.SampleTransactions(testNow), testNow)
	engine := NewEngine(5)
	state := DefaultViewState(2)

	first := engine.Derive(snap, state, testNow)
	assert.Equal(t, SortTransactions(first.Filtered, SortByTimestamp, Descending), first.Sorted)
	assert.Equal(t, 4, first.Page.TotalPages)

	// Paging does not change the filtered set, so the sort is reused.
	second := engine.Derive(snap, state.NextPage(len(first.Sorted)), testNow)
	assert.Equal(t, 2, second.Page.Number)
	hits, misses := engine.Stats()
	assert.Equal(t, 1, hits)
	assert.Equal(t, 1, misses)

	// Any change to the filtered set invalidates the memo.
	third := engine.Derive(snap, state.WithTypeFilter(model.TypeBuy), testNow)
	assert.Len(t, third.Sorted, 4)
	_, misses = engine.Stats()
	assert.Equal(t, 2, misses)

	// A new snapshot with equal content still invalidates by version.
	next := store.Replace(snap.Transactions, testNow)
	engine.Derive(next, state.WithTypeFilter(model.TypeBuy), testNow)
	_, misses = engine.Stats()
	assert.Equal(t, 3, misses)

	// The window moving forward shrinks the set and misses again.
	engine.Derive(next, state.WithTypeFilter(model.TypeBuy).WithTimeRange(RangeLastDay), testNow.Add(time.Hour))
	_, misses = engine.Stats()
	assert.Equal(t, 4, misses)
}

func TestStore(t *testing.T) {
	store := NewStore()
	assert.Zero(t, store.Snapshot().Version)

	txs := exampleTransactions(t)
	snap := store.Replace(txs, testNow)
	assert.Equal(t, uint64(1), snap.Version)
	assert.Equal(t, 2, snap.Len())

	txs[0].PlayerName = "mutated"
	assert.Equal(t, "Alice", store.Snapshot().Transactions[0].PlayerName)

	newer, ok := store.ReplaceIfNewer(5, txs[:1], testNow)
	require.True(t, ok)
	assert.Equal(t, 1, newer.Len())

	stale, ok := store.ReplaceIfNewer(4, txs, testNow)
	assert.False(t, ok)
	assert.Equal(t, newer.Version, stale.Version)
	assert.Equal(t, 1, store.Snapshot().Len())
}

func players(txs []model.Transaction) []string {
	out := make([]string, len(txs))
	for i, tx := range txs {
		out[i] = tx.PlayerName
	}
	return out
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[len(in)-1-i] = s
	}
	return out
}
