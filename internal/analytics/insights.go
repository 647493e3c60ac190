package analytics

import (
	"slices"

	"github.com/selfservice0/DynamicShop/internal/model"
)

// DefaultTopN is the number of rows in each insight table.
const DefaultTopN = 10

// ItemInsight is one row of the top-items table.
type ItemInsight struct {
	Item   string
	Count  int     // summed amount
	Volume float64 // summed total price
}

// PlayerInsight is one row of the top-players table.
type PlayerInsight struct {
	Player string
	Count  int // number of transactions
	Volume float64
}

// CategoryShare is one row of the category breakdown.
type CategoryShare struct {
	Category string
	Count    int
	Percent  float64
}

// Insights bundles the three insight tables for one filtered set.
type Insights struct {
	TopItems   []ItemInsight
	TopPlayers []PlayerInsight
	Categories []CategoryShare
	Total      int
}

// Empty returns true when the filtered set had no records.
func (i Insights) Empty() bool {
	return i.Total == 0
}

// BuildInsights computes every insight table over the filtered set.
func BuildInsights(txs []model.Transaction, n int) Insights {
	return Insights{
		TopItems:   TopItems(txs, n),
		TopPlayers: TopPlayers(txs, n),
		Categories: CategoryDistribution(txs, n),
		Total:      len(txs),
	}
}

// TopItems groups by item and ranks by total volume, highest first.
// Ties keep the order in which items were first seen.
func TopItems(txs []model.Transaction, n int) []ItemInsight {
	index := make(map[string]int)
	rows := make([]ItemInsight, 0)
	for _, tx := range txs {
		i, ok := index[tx.Item]
		if !ok {
			i = len(rows)
			index[tx.Item] = i
			rows = append(rows, ItemInsight{Item: tx.Item})
		}
		rows[i].Count += tx.Amount
		rows[i].Volume += tx.Price
	}

	slices.SortStableFunc(rows, func(a, b ItemInsight) int {
		return compareDesc(a.Volume, b.Volume)
	})
	return limit(rows, n)
}

// TopPlayers groups by player and ranks by transaction count, highest first.
func TopPlayers(txs []model.Transaction, n int) []PlayerInsight {
	index := make(map[string]int)
	rows := make([]PlayerInsight, 0)
	for _, tx := range txs {
		i, ok := index[tx.PlayerName]
		if !ok {
			i = len(rows)
			index[tx.PlayerName] = i
			rows = append(rows, PlayerInsight{Player: tx.PlayerName})
		}
		rows[i].Count++
		rows[i].Volume += tx.Price
	}

	slices.SortStableFunc(rows, func(a, b PlayerInsight) int {
		return compareDesc(a.Count, b.Count)
	})
	return limit(rows, n)
}

// CategoryDistribution counts records per category and reports each share of
// the total. An empty set yields no rows; Percent is 0 if total is 0.
func CategoryDistribution(txs []model.Transaction, n int) []CategoryShare {
	index := make(map[string]int)
	rows := make([]CategoryShare, 0)
	for _, tx := range txs {
		category := tx.CategoryOrUnknown()
		i, ok := index[category]
		if !ok {
			i = len(rows)
			index[category] = i
			rows = append(rows, CategoryShare{Category: category})
		}
		rows[i].Count++
	}

	total := len(txs)
	for i := range rows {
		rows[i].Percent = Percent(rows[i].Count, total)
	}

	slices.SortStableFunc(rows, func(a, b CategoryShare) int {
		return compareDesc(a.Count, b.Count)
	})
	return limit(rows, n)
}

// Percent returns part/total*100, or 0 when total is not positive.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

func compareDesc[T int | float64](a, b T) int {
	switch {
	case a > b:
		return -1
	case a < b:
		return 1
	default:
		return 0
	}
}

func limit[T any](rows []T, n int) []T {
	if n <= 0 {
		n = DefaultTopN
	}
	if len(rows) > n {
		return rows[:n]
	}
	return rows
}
