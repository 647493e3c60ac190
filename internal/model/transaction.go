// Package model defines the core domain models used throughout the application.
package model

import (
	"strings"
	"time"
)

// TransactionType indicates whether the player bought from or sold to the shop.
type TransactionType string

// Transaction type constants.
const (
	TypeBuy  TransactionType = "BUY"
	TypeSell TransactionType = "SELL"
)

// UnknownCategory is reported for transactions that carry no category.
const UnknownCategory = "Unknown"

// timestampLayouts are tried in order when parsing wire timestamps.
// The plugin itself logs "2006-01-02 15:04:05" in server local time.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

// Transaction represents a single shop buy or sell event.
type Transaction struct {
	Timestamp    time.Time       `json:"-"`
	RawTimestamp string          `json:"timestamp"`
	PlayerName   string          `json:"playerName" validate:"required"`
	Type         TransactionType `json:"type" validate:"oneof=BUY SELL"`
	Item         string          `json:"item" validate:"required"`
	Category     string          `json:"category"`
	Amount       int             `json:"amount" validate:"gte=0"`
	Price        float64         `json:"price" validate:"gte=0"` // total price for the transaction
}

// HasValidTimestamp reports whether the wire timestamp parsed to an instant.
func (t Transaction) HasValidTimestamp() bool {
	return !t.Timestamp.IsZero()
}

// CategoryOrUnknown returns the category, or UnknownCategory when absent.
func (t Transaction) CategoryOrUnknown() string {
	if strings.TrimSpace(t.Category) == "" {
		return UnknownCategory
	}
	return t.Category
}

// UnitPrice returns the price of a single unit, or false for zero amounts.
func (t Transaction) UnitPrice() (float64, bool) {
	if t.Amount <= 0 {
		return 0, false
	}
	return t.Price / float64(t.Amount), true
}

// ParseTimestamp parses a wire timestamp. Layouts without a zone are read in loc.
// A nil loc means time.Local.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}

	for _, layout := range timestampLayouts {
		ts, err := time.ParseInLocation(layout, raw, loc)
		if err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// ResolveTimestamps fills Timestamp from RawTimestamp for every record.
// Unparseable timestamps leave Timestamp zero; the record is kept.
func ResolveTimestamps(txs []Transaction, loc *time.Location) (invalid int) {
	for i := range txs {
		ts, ok := ParseTimestamp(txs[i].RawTimestamp, loc)
		if !ok {
			txs[i].Timestamp = time.Time{}
			invalid++
			continue
		}
		txs[i].Timestamp = ts
	}
	return invalid
}

// ParseTransactionType parses a type filter value. The empty string is valid and
// means no constraint.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch TransactionType(strings.ToUpper(strings.TrimSpace(s))) {
	case "":
		return "", true
	case TypeBuy:
		return TypeBuy, true
	case TypeSell:
		return TypeSell, true
	default:
		return "", false
	}
}
