package demo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfservice0/DynamicShop/internal/model"
	"github.com/selfservice0/DynamicShop/internal/testutil"
)

var testNow = time.Date(2024, 6, 1, 15, 40, 0, 0, time.UTC)

func TestComputeStatsAndHealth(t *testing.T) {
	txs := testutil.NewTransactionBuilder(testNow).
		Buy("Alice", "OAK_LOG", 10, 20, 10*time.Minute).
		Buy("Bob", "DIAMOND", 1, 150, 30*time.Minute).
		Sell("Alice", "OAK_LOG", 5, 7, 2*time.Hour).
		Build()

	stats := ComputeStats(txs)
	assert.Equal(t, model.Stats{Total: 3, Buys: 2, Sells: 1, TotalMoney: 177}, stats)

	health := ComputeEconomyHealth(txs, testNow)
	assert.Equal(t, 3, health.TotalTransactions)
	assert.InDelta(t, 2.0/3.0, health.BuyRatio, 0.0001)
	assert.InDelta(t, 170.0, health.TotalBuyValue, 0.0001)
	assert.InDelta(t, 7.0, health.TotalSellValue, 0.0001)
	assert.InDelta(t, -163.0, health.NetFlow, 0.0001)
	assert.InDelta(t, 59.0, health.AvgTransaction, 0.0001)
	assert.Equal(t, 2, health.Velocity)
	assert.Equal(t, 2, health.UniqueItems)
	assert.Equal(t, 2, health.UniquePlayers)

	empty := ComputeEconomyHealth(nil, testNow)
	assert.Zero(t, empty.BuyRatio)
	assert.Zero(t, empty.AvgTransaction)
}

func TestComputeLeaderboard(t *testing.T) {
	txs := testutil.NewTransactionBuilder(testNow).
		Buy("Alice", "OAK_LOG", 10, 100, time.Minute).
		Sell("Alice", "DIAMOND", 1, 40, time.Minute).
		Sell("Bob", "DIAMOND", 2, 300, time.Minute).
		Buy("Carol", "BREAD", 1, 5, time.Minute).
		Buy("Carol", "BREAD", 1, 5, time.Minute).
		Buy("Carol", "WHEAT", 1, 5, time.Minute).
		Build()

	tests := []struct {
		kind string
		want []string
	}{
		{"earners", []string{"Bob", "Carol", "Alice"}},
		{"spenders", []string{"Alice", "Carol", "Bob"}},
		{"traders", []string{"Carol", "Alice", "Bob"}},
		{"volume", []string{"Bob", "Alice", "Carol"}},
		{"bogus", []string{"Bob", "Carol", "Alice"}},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			entries := ComputeLeaderboard(txs, tt.kind, 10)
			got := make([]string, len(entries))
			for i, e := range entries {
				got[i] = e.Player
			}
			assert.Equal(t, tt.want, got)
		})
	}

	alice := ComputeLeaderboard(txs, "spenders", 1)
	require.Len(t, alice, 1)
	assert.Equal(t, model.LeaderboardEntry{
		Player: "Alice", Spent: 100, Earned: 40, NetProfit: -60, Trades: 2, Volume: 140, UniqueItems: 2,
	}, alice[0])

	carol := ComputeLeaderboard(txs, "traders", 1)[0]
	assert.Equal(t, 2, carol.UniqueItems)
}

func TestComputeTrends(t *testing.T) {
	b := testutil.NewTransactionBuilder(testNow)
	// OAK_LOG: 6 recent, 2 older -> +200%, hot and rising.
	for i := 0; i < 6; i++ {
		b.Buy("Alice", "OAK_LOG", 2, 10, time.Duration(i+1)*time.Minute)
	}
	b.Buy("Alice", "OAK_LOG", 1, 1, 3*time.Hour).Buy("Alice", "OAK_LOG", 1, 1, 5*time.Hour)
	// DIAMOND: 1 recent, 4 older -> -75%.
	b.Sell("Bob", "DIAMOND", 1, 100, 10*time.Minute)
	for i := 0; i < 4; i++ {
		b.Sell("Bob", "DIAMOND", 1, 100, time.Duration(i+2)*time.Hour)
	}
	// BREAD: 1 recent, no older -> +100%.
	b.Buy("Carol", "BREAD", 4, 8, 20*time.Minute)
	// WHEAT: only older than a day, never listed.
	b.Buy("Carol", "WHEAT", 1, 1, 30*time.Hour)

	trends := ComputeTrends(b.Build(), 10, testNow)

	require.Len(t, trends.Hot, 1)
	assert.Equal(t, "OAK_LOG", trends.Hot[0].Item)
	assert.Equal(t, 6, trends.Hot[0].RecentCount)
	assert.InDelta(t, 200.0, trends.Hot[0].ChangePercent, 0.0001)
	assert.InDelta(t, 5.0, trends.Hot[0].AvgPrice, 0.0001)

	require.Len(t, trends.Rising, 2)
	assert.Equal(t, "OAK_LOG", trends.Rising[0].Item)
	assert.Equal(t, "BREAD", trends.Rising[1].Item)
	assert.InDelta(t, 100.0, trends.Rising[1].ChangePercent, 0.0001)

	require.Len(t, trends.Falling, 3)
	assert.Equal(t, "DIAMOND", trends.Falling[0].Item)
	assert.InDelta(t, -75.0, trends.Falling[0].ChangePercent, 0.0001)

	limited := ComputeTrends(b.Build(), 1, testNow)
	require.Len(t, limited.Falling, 1)
	assert.Equal(t, "OAK_LOG", limited.Falling[0].Item)

	empty := ComputeTrends(nil, 10, testNow)
	assert.True(t, empty.IsEmpty())
	assert.NotNil(t, empty.Hot)
}

func TestComputePriceHistory(t *testing.T) {
	txs := testutil.NewTransactionBuilder(testNow).
		Buy("Alice", "OAK_LOG", 10, 20, 10*time.Minute).
		Buy("Bob", "oak_log", 2, 8, 20*time.Minute).
		Sell("Carol", "OAK_LOG", 0, 5, 25*time.Minute).
		Sell("Dave", "OAK_LOG", 4, 4, 2*time.Hour).
		Buy("Erin", "OAK_LOG", 1, 1, 30*time.Hour).
		Build()

	points := ComputePriceHistory(txs, "OAK_LOG", 24, testNow, time.UTC)
	require.Len(t, points, 2)

	assert.Equal(t, model.PricePoint{Timestamp: "2024-06-01 13:00", AvgBuyPrice: 0, AvgSellPrice: 1, Volume: 4}, points[0])
	assert.Equal(t, "2024-06-01 15:00", points[1].Timestamp)
	assert.InDelta(t, 3.0, points[1].AvgBuyPrice, 0.0001)
	assert.Zero(t, points[1].AvgSellPrice, "zero-amount sells do not produce a price")
	assert.Equal(t, 12, points[1].Volume)
}

func TestComputeTimeDistribution(t *testing.T) {
	txs := testutil.NewTransactionBuilder(testNow).
		Buy("Alice", "OAK_LOG", 1, 1, 10*time.Minute).
		Buy("Alice", "OAK_LOG", 1, 1, 20*time.Minute).
		Buy("Alice", "OAK_LOG", 1, 1, 3*time.Hour).
		Buy("Alice", "OAK_LOG", 1, 1, 30*time.Hour).
		Build()

	slots := ComputeTimeDistribution(txs, 24, testNow, time.UTC)
	require.Len(t, slots, 24)
	assert.Equal(t, 2, slots[15].Count)
	assert.Equal(t, 1, slots[12].Count)

	total := 0
	for h, slot := range slots {
		assert.Equal(t, h, slot.Hour)
		total += slot.Count
	}
	assert.Equal(t, 3, total)
}

func TestGenerator(t *testing.T) {
	config := DefaultGeneratorConfig()
	config.Count = 200
	config.Location = time.UTC

	first := NewGenerator(config).Generate(testNow)
	second := NewGenerator(config).Generate(testNow)
	require.Len(t, first, 200)
	assert.Equal(t, first, second, "same seed yields the same log")

	for i, tx := range first {
		assert.True(t, tx.HasValidTimestamp())
		assert.False(t, tx.Timestamp.After(testNow))
		assert.True(t, tx.Timestamp.After(testNow.Add(-config.Span-time.Second)))
		assert.Positive(t, tx.Amount)
		assert.Positive(t, tx.Price)
		assert.NotEmpty(t, tx.Category)

		parsed, ok := model.ParseTimestamp(tx.RawTimestamp, time.UTC)
		require.True(t, ok)
		assert.True(t, parsed.Equal(tx.Timestamp))

		if i > 0 {
			assert.False(t, tx.Timestamp.After(first[i-1].Timestamp), "log is newest first")
		}
	}
}
