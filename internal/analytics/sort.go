package analytics

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/selfservice0/DynamicShop/internal/model"
)

// SortColumn identifies the ledger column used for ordering.
type SortColumn string

// Sort column constants.
const (
	SortByTimestamp SortColumn = "timestamp"
	SortByPlayer    SortColumn = "playerName"
	SortByType      SortColumn = "type"
	SortByItem      SortColumn = "item"
	SortByAmount    SortColumn = "amount"
	SortByPrice     SortColumn = "price"
	SortByCategory  SortColumn = "category"
)

// SortColumns lists every sortable column in ledger order.
var SortColumns = []SortColumn{
	SortByTimestamp, SortByPlayer, SortByType, SortByItem, SortByAmount, SortByPrice, SortByCategory,
}

// SortDirection is ascending or descending.
type SortDirection string

// Sort direction constants.
const (
	Ascending  SortDirection = "ASC"
	Descending SortDirection = "DESC"
)

// Reverse returns the opposite direction.
func (d SortDirection) Reverse() SortDirection {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// ParseSortColumn accepts the column names plus a few short aliases.
func ParseSortColumn(s string) (SortColumn, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "timestamp", "time":
		return SortByTimestamp, nil
	case "playername", "player":
		return SortByPlayer, nil
	case "type":
		return SortByType, nil
	case "item":
		return SortByItem, nil
	case "amount", "qty":
		return SortByAmount, nil
	case "price":
		return SortByPrice, nil
	case "category":
		return SortByCategory, nil
	default:
		return "", fmt.Errorf("unknown sort column %q", s)
	}
}

// SortTransactions returns a sorted copy of txs. Ties keep their input order.
// Records without a valid timestamp sort last on the timestamp column in
// either direction, so for such sets the descending order is the reversed
// ascending order of the valid records followed by the invalid ones in
// input order, not the full ascending order reversed.
func SortTransactions(txs []model.Transaction, column SortColumn, dir SortDirection) []model.Transaction {
	out := make([]model.Transaction, len(txs))
	copy(out, txs)

	compare := comparator(column)
	slices.SortStableFunc(out, func(a, b model.Transaction) int {
		if column == SortByTimestamp {
			switch av, bv := a.HasValidTimestamp(), b.HasValidTimestamp(); {
			case !av && !bv:
				return 0
			case !av:
				return 1
			case !bv:
				return -1
			}
		}
		c := compare(a, b)
		if dir == Descending {
			return -c
		}
		return c
	})
	return out
}

func comparator(column SortColumn) func(a, b model.Transaction) int {
	switch column {
	case SortByPlayer:
		return func(a, b model.Transaction) int { return compareFolded(a.PlayerName, b.PlayerName) }
	case SortByType:
		return func(a, b model.Transaction) int { return cmp.Compare(a.Type, b.Type) }
	case SortByItem:
		return func(a, b model.Transaction) int { return compareFolded(a.Item, b.Item) }
	case SortByAmount:
		return func(a, b model.Transaction) int { return cmp.Compare(a.Amount, b.Amount) }
	case SortByPrice:
		return func(a, b model.Transaction) int { return cmp.Compare(a.Price, b.Price) }
	case SortByCategory:
		return func(a, b model.Transaction) int { return compareFolded(a.CategoryOrUnknown(), b.CategoryOrUnknown()) }
	default:
		return func(a, b model.Transaction) int { return a.Timestamp.Compare(b.Timestamp) }
	}
}

func compareFolded(a, b string) int {
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}
