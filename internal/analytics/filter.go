package analytics

import (
	"strings"

	"github.com/selfservice0/DynamicShop/internal/model"
)

// FilterByPredicate keeps records whose player name or item contains search
// (case-insensitively) and whose type equals typeFilter. Empty predicates
// match everything.
func FilterByPredicate(txs []model.Transaction, search string, typeFilter model.TransactionType) []model.Transaction {
	needle := strings.ToLower(strings.TrimSpace(search))

	out := make([]model.Transaction, 0, len(txs))
	for _, tx := range txs {
		if typeFilter != "" && tx.Type != typeFilter {
			continue
		}
		if needle != "" && !matchesSearch(tx, needle) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func matchesSearch(tx model.Transaction, needle string) bool {
	return strings.Contains(strings.ToLower(tx.PlayerName), needle) ||
		strings.Contains(strings.ToLower(tx.Item), needle)
}
