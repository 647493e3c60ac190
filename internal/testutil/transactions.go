package testutil

import (
	"time"

	"github.com/selfservice0/DynamicShop/internal/model"
)

// TimestampLayout is the layout fixtures use for RawTimestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// TransactionBuilder provides a fluent interface for constructing transaction fixtures.
type TransactionBuilder struct {
	now time.Time
	txs []model.Transaction
	loc *time.Location
}

// NewTransactionBuilder creates a builder whose relative offsets are measured from now.
func NewTransactionBuilder(now time.Time) *TransactionBuilder {
	return &TransactionBuilder{now: now, loc: now.Location()}
}

// Buy appends a BUY record made ago before now.
func (b *TransactionBuilder) Buy(player, item string, amount int, price float64, ago time.Duration) *TransactionBuilder {
	return b.add(model.TypeBuy, player, item, amount, price, ago)
}

// Sell appends a SELL record made ago before now.
func (b *TransactionBuilder) Sell(player, item string, amount int, price float64, ago time.Duration) *TransactionBuilder {
	return b.add(model.TypeSell, player, item, amount, price, ago)
}

// InCategory sets the category of the most recently added record.
func (b *TransactionBuilder) InCategory(category string) *TransactionBuilder {
	if len(b.txs) > 0 {
		b.txs[len(b.txs)-1].Category = category
	}
	return b
}

// WithRawTimestamp overrides the wire timestamp of the most recently added
// record and re-parses it.
func (b *TransactionBuilder) WithRawTimestamp(raw string) *TransactionBuilder {
	if len(b.txs) > 0 {
		last := &b.txs[len(b.txs)-1]
		last.RawTimestamp = raw
		last.Timestamp, _ = model.ParseTimestamp(raw, b.loc)
	}
	return b
}

// Build returns the accumulated records.
func (b *TransactionBuilder) Build() []model.Transaction {
	out := make([]model.Transaction, len(b.txs))
	copy(out, b.txs)
	return out
}

func (b *TransactionBuilder) add(typ model.TransactionType, player, item string, amount int, price float64, ago time.Duration) *TransactionBuilder {
	ts := b.now.Add(-ago)
	b.txs = append(b.txs, model.Transaction{
		Timestamp:    ts,
		RawTimestamp: ts.Format(TimestampLayout),
		PlayerName:   player,
		Type:         typ,
		Item:         item,
		Amount:       amount,
		Price:        price,
	})
	return b
}

// SampleTransactions returns a small mixed ledger spanning about two days.
func SampleTransactions(now time.Time) []model.Transaction {
	return NewTransactionBuilder(now).
		Buy("Alice", "OAK_LOG", 64, 32, 5*time.Minute).InCategory("Blocks").
		Sell("Bob", "DIAMOND", 3, 450, 20*time.Minute).InCategory("Ores").
		Buy("Carol", "IRON_INGOT", 16, 80, 50*time.Minute).InCategory("Ores").
		Buy("alice_alt", "BREAD", 10, 15, 2*time.Hour).InCategory("Food").
		Sell("Dave", "OAK_LOG", 128, 48, 6*time.Hour).InCategory("Blocks").
		Buy("Bob", "ENCHANTED_BOOK", 1, 1200, 26*time.Hour).InCategory("Magic").
		Sell("Erin", "WHEAT", 256, 64, 47*time.Hour).
		Build()
}
