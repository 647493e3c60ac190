package demo

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/selfservice0/DynamicShop/internal/model"
)

// Trend selection thresholds.
const (
	hotMinRecent     = 5
	risingMinChange  = 20.0
	trendBucketLimit = 5
)

// ComputeStats counts buys and sells and sums every price.
func ComputeStats(txs []model.Transaction) model.Stats {
	stats := model.Stats{Total: len(txs)}
	for _, tx := range txs {
		switch tx.Type {
		case model.TypeBuy:
			stats.Buys++
		case model.TypeSell:
			stats.Sells++
		}
		stats.TotalMoney += tx.Price
	}
	return stats
}

// ComputeEconomyHealth derives the economy metrics. Ratios over an empty log are 0.
func ComputeEconomyHealth(txs []model.Transaction, now time.Time) model.EconomyHealth {
	var health model.EconomyHealth
	health.TotalTransactions = len(txs)

	items := make(map[string]struct{})
	players := make(map[string]struct{})
	hourAgo := now.Add(-time.Hour)

	for _, tx := range txs {
		switch tx.Type {
		case model.TypeBuy:
			health.BuyCount++
			health.TotalBuyValue += tx.Price
		case model.TypeSell:
			health.SellCount++
			health.TotalSellValue += tx.Price
		}
		if tx.HasValidTimestamp() && tx.Timestamp.After(hourAgo) {
			health.Velocity++
		}
		items[tx.Item] = struct{}{}
		players[tx.PlayerName] = struct{}{}
	}

	health.NetFlow = health.TotalSellValue - health.TotalBuyValue
	health.UniqueItems = len(items)
	health.UniquePlayers = len(players)
	if len(txs) > 0 {
		health.BuyRatio = float64(health.BuyCount) / float64(len(txs))
		health.AvgTransaction = (health.TotalBuyValue + health.TotalSellValue) / float64(len(txs))
	}
	return health
}

// ComputeLeaderboard ranks players by the metric kind selects: earners by net
// profit, spenders by spend, traders by trade count and volume by spend plus
// earnings. Unknown kinds rank as earners.
func ComputeLeaderboard(txs []model.Transaction, kind string, limit int) []model.LeaderboardEntry {
	index := make(map[string]int)
	entries := make([]model.LeaderboardEntry, 0)
	itemSets := make([]map[string]struct{}, 0)

	for _, tx := range txs {
		i, ok := index[tx.PlayerName]
		if !ok {
			i = len(entries)
			index[tx.PlayerName] = i
			entries = append(entries, model.LeaderboardEntry{Player: tx.PlayerName})
			itemSets = append(itemSets, make(map[string]struct{}))
		}
		switch tx.Type {
		case model.TypeBuy:
			entries[i].Spent += tx.Price
		case model.TypeSell:
			entries[i].Earned += tx.Price
		}
		entries[i].Trades++
		itemSets[i][tx.Item] = struct{}{}
	}

	for i := range entries {
		entries[i].NetProfit = entries[i].Earned - entries[i].Spent
		entries[i].Volume = entries[i].Spent + entries[i].Earned
		entries[i].UniqueItems = len(itemSets[i])
	}

	slices.SortStableFunc(entries, func(a, b model.LeaderboardEntry) int {
		switch strings.ToLower(kind) {
		case "spenders":
			return cmp.Compare(b.Spent, a.Spent)
		case "traders":
			return cmp.Compare(b.Trades, a.Trades)
		case "volume":
			return cmp.Compare(b.Volume, a.Volume)
		default:
			return cmp.Compare(b.NetProfit, a.NetProfit)
		}
	})

	if limit >= 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// ComputeTrends compares each item's activity in the last hour with the 23
// hours before it. Items with no older activity report a 100% change.
func ComputeTrends(txs []model.Transaction, limit int, now time.Time) model.TrendBuckets {
	hourAgo := now.Add(-time.Hour)
	dayAgo := now.Add(-24 * time.Hour)

	type acc struct {
		recent, older int
		unitTotal     float64
		unitN         int
	}
	order := make([]string, 0)
	byItem := make(map[string]*acc)

	for _, tx := range txs {
		if !tx.HasValidTimestamp() {
			continue
		}
		a, ok := byItem[tx.Item]
		if !ok {
			a = &acc{}
			byItem[tx.Item] = a
			order = append(order, tx.Item)
		}

		switch {
		case tx.Timestamp.After(hourAgo):
			a.recent++
			if unit, ok := tx.UnitPrice(); ok {
				a.unitTotal += unit
				a.unitN++
			}
		case tx.Timestamp.Before(hourAgo) && tx.Timestamp.After(dayAgo):
			a.older++
		}
	}

	trends := make([]model.TrendItem, 0)
	for _, item := range order {
		a := byItem[item]
		if a.recent == 0 {
			continue
		}

		change := 100.0
		if a.older > 0 {
			change = float64(a.recent-a.older) / float64(a.older) * 100
		}
		avg := 0.0
		if a.unitN > 0 {
			avg = a.unitTotal / float64(a.unitN)
		}
		trends = append(trends, model.TrendItem{
			Item:          item,
			RecentCount:   a.recent,
			ChangePercent: change,
			AvgPrice:      avg,
		})
	}

	slices.SortStableFunc(trends, func(a, b model.TrendItem) int {
		return cmp.Compare(b.ChangePercent, a.ChangePercent)
	})
	if limit >= 0 && len(trends) > limit {
		trends = trends[:limit]
	}

	buckets := model.TrendBuckets{
		Hot:     make([]model.TrendItem, 0),
		Rising:  make([]model.TrendItem, 0),
		Falling: make([]model.TrendItem, 0),
	}
	for _, t := range trends {
		if t.RecentCount > hotMinRecent && len(buckets.Hot) < trendBucketLimit {
			buckets.Hot = append(buckets.Hot, t)
		}
		if t.ChangePercent > risingMinChange && len(buckets.Rising) < trendBucketLimit {
			buckets.Rising = append(buckets.Rising, t)
		}
	}

	falling := slices.Clone(trends)
	slices.SortStableFunc(falling, func(a, b model.TrendItem) int {
		return cmp.Compare(a.ChangePercent, b.ChangePercent)
	})
	buckets.Falling = append(buckets.Falling, falling[:min(trendBucketLimit, len(falling))]...)

	return buckets
}

// ComputePriceHistory groups an item's trades from the last hours into
// "2006-01-02 15:00" keys in loc, oldest first. A side with no trades in an
// hour reports 0, as the shop does.
func ComputePriceHistory(txs []model.Transaction, item string, hours int, now time.Time, loc *time.Location) []model.PricePoint {
	if loc == nil {
		loc = time.Local
	}
	cutoff := now.Add(-time.Duration(hours) * time.Hour)

	type acc struct {
		buyTotal, sellTotal float64
		buyN, sellN         int
		volume              int
	}
	byHour := make(map[string]*acc)

	for _, tx := range txs {
		if !tx.HasValidTimestamp() || !strings.EqualFold(tx.Item, item) || !tx.Timestamp.After(cutoff) {
			continue
		}
		key := tx.Timestamp.In(loc).Format("2006-01-02 15:00")
		a, ok := byHour[key]
		if !ok {
			a = &acc{}
			byHour[key] = a
		}
		a.volume += tx.Amount

		unit, ok := tx.UnitPrice()
		if !ok {
			continue
		}
		switch tx.Type {
		case model.TypeBuy:
			a.buyTotal += unit
			a.buyN++
		case model.TypeSell:
			a.sellTotal += unit
			a.sellN++
		}
	}

	points := make([]model.PricePoint, 0, len(byHour))
	for key, a := range byHour {
		p := model.PricePoint{Timestamp: key, Volume: a.volume}
		if a.buyN > 0 {
			p.AvgBuyPrice = a.buyTotal / float64(a.buyN)
		}
		if a.sellN > 0 {
			p.AvgSellPrice = a.sellTotal / float64(a.sellN)
		}
		points = append(points, p)
	}

	slices.SortFunc(points, func(a, b model.PricePoint) int {
		return strings.Compare(a.Timestamp, b.Timestamp)
	})
	return points
}

// ComputeTimeDistribution counts trades from the last hours by hour of day in
// loc. The result always holds 24 slots.
func ComputeTimeDistribution(txs []model.Transaction, hours int, now time.Time, loc *time.Location) []model.TimeSlot {
	if loc == nil {
		loc = time.Local
	}
	cutoff := now.Add(-time.Duration(hours) * time.Hour)

	slots := make([]model.TimeSlot, 24)
	for h := range slots {
		slots[h].Hour = h
	}
	for _, tx := range txs {
		if tx.HasValidTimestamp() && tx.Timestamp.After(cutoff) {
			slots[tx.Timestamp.In(loc).Hour()].Count++
		}
	}
	return slots
}

// FilterTransactions returns up to limit records matching keep, newest first.
func FilterTransactions(txs []model.Transaction, limit int, keep func(model.Transaction) bool) []model.Transaction {
	out := make([]model.Transaction, 0)
	for _, tx := range txs {
		if keep == nil || keep(tx) {
			out = append(out, tx)
		}
	}
	sortNewestFirst(out)
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortNewestFirst(txs []model.Transaction) {
	slices.SortStableFunc(txs, func(a, b model.Transaction) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
}
