package demo

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selfservice0/DynamicShop/internal/model"
)

func newTestServer(t *testing.T, opts ...HandlerOption) *httptest.Server {
	t.Helper()

	config := DefaultGeneratorConfig()
	config.Count = 300
	config.Location = time.UTC
	source, _ := NewGeneratedSource(config, testNow, WithClock(func() time.Time { return testNow }), WithLocation(time.UTC))

	srv := httptest.NewServer(NewHandler(source, opts...).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()

	resp, err := http.Get(url) //nolint:noctx // test helper
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if v != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func TestHandler_Transactions(t *testing.T) {
	srv := newTestServer(t)

	var recent []model.Transaction
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/recent", &recent))
	assert.Len(t, recent, defaultRecentLimit)

	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/recent?limit=5000", &recent))
	assert.Len(t, recent, 300, "limit is capped but the log is smaller")

	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/recent?limit=abc", &recent))
	assert.Len(t, recent, defaultRecentLimit)

	var alice []model.Transaction
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/player/alice?limit=1000", &alice))
	for _, tx := range alice {
		assert.Equal(t, "Alice", tx.PlayerName)
	}

	var diamonds []model.Transaction
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/item/diamond?limit=3", &diamonds))
	assert.LessOrEqual(t, len(diamonds), 3)
	for _, tx := range diamonds {
		assert.Equal(t, "DIAMOND", tx.Item)
	}
}

func TestHandler_Stats(t *testing.T) {
	t.Run("object", func(t *testing.T) {
		srv := newTestServer(t)
		var stats model.Stats
		require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/stats", &stats))
		assert.Equal(t, 300, stats.Total)
		assert.Equal(t, stats.Total, stats.Buys+stats.Sells)
	})

	t.Run("string encoded", func(t *testing.T) {
		srv := newTestServer(t, WithStatsAsString())
		var raw string
		require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/stats", &raw))

		var stats model.Stats
		require.NoError(t, json.Unmarshal([]byte(raw), &stats))
		assert.Equal(t, 300, stats.Total)
	})
}

func TestHandler_Analytics(t *testing.T) {
	srv := newTestServer(t)

	var board []model.LeaderboardEntry
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/analytics/leaderboard?type=traders&limit=3", &board))
	require.Len(t, board, 3)
	assert.GreaterOrEqual(t, board[0].Trades, board[1].Trades)

	var trends model.TrendBuckets
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/analytics/trends?limit=10", &trends))
	assert.LessOrEqual(t, len(trends.Hot), 5)

	var slots []model.TimeSlot
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/analytics/time-distribution?hours=48", &slots))
	assert.Len(t, slots, 24)

	var points []model.PricePoint
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/analytics/price-history/OAK_LOG?hours=168", &points))
	for i := 1; i < len(points); i++ {
		assert.Less(t, points[i-1].Timestamp, points[i].Timestamp)
	}

	var health model.EconomyHealth
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/analytics/economy", &health))
	assert.Equal(t, 300, health.TotalTransactions)
}

func TestHandler_Shop(t *testing.T) {
	srv := newTestServer(t)

	var items []model.ShopItem
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/shop/items?category=ores", &items))
	require.NotEmpty(t, items)
	for _, item := range items {
		assert.Equal(t, "ORES", item.Category)
	}

	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/shop/items?query=log", &items))
	require.Len(t, items, 2)
	assert.Equal(t, "Oak Log", items[0].DisplayName)

	var categories []model.ShopCategory
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/shop/categories", &categories))
	total := 0
	for _, c := range categories {
		total += c.ItemCount
	}
	assert.Equal(t, len(defaultCatalog), total)

	var detail model.ItemDetail
	require.Equal(t, http.StatusOK, getJSON(t, srv.URL+"/api/shop/item/diamond", &detail))
	assert.Equal(t, "DIAMOND", detail.Item)
	assert.LessOrEqual(t, len(detail.RecentBuyers), detailTraderLimit)

	assert.Equal(t, http.StatusNotFound, getJSON(t, srv.URL+"/api/shop/item/bedrock", nil))
}

func TestParseLimit(t *testing.T) {
	assert.Equal(t, 10, parseLimit("", 10))
	assert.Equal(t, 10, parseLimit("x", 10))
	assert.Equal(t, 10, parseLimit("-3", 10))
	assert.Equal(t, 25, parseLimit("25", 10))
	assert.Equal(t, 1000, parseLimit("99999", 10))
}
