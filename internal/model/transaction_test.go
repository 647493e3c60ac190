package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	utc := time.UTC

	tests := []struct {
		name   string
		raw    string
		want   time.Time
		wantOK bool
	}{
		{
			name:   "plugin format",
			raw:    "2024-01-01 10:00:00",
			want:   time.Date(2024, 1, 1, 10, 0, 0, 0, utc),
			wantOK: true,
		},
		{
			name:   "minute precision with T",
			raw:    "2024-01-01T11:00",
			want:   time.Date(2024, 1, 1, 11, 0, 0, 0, utc),
			wantOK: true,
		},
		{
			name:   "RFC3339 with offset",
			raw:    "2024-01-01T10:00:00+02:00",
			want:   time.Date(2024, 1, 1, 8, 0, 0, 0, utc),
			wantOK: true,
		},
		{
			name:   "RFC3339 with fraction",
			raw:    "2024-01-01T10:00:00.250Z",
			want:   time.Date(2024, 1, 1, 10, 0, 0, 250_000_000, utc),
			wantOK: true,
		},
		{
			name:   "surrounding whitespace",
			raw:    "  2024-01-01 10:00  ",
			want:   time.Date(2024, 1, 1, 10, 0, 0, 0, utc),
			wantOK: true,
		},
		{name: "empty", raw: "", wantOK: false},
		{name: "garbage", raw: "yesterday-ish", wantOK: false},
		{name: "invalid month", raw: "2024-13-01 10:00:00", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.raw, utc)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.True(t, tt.want.Equal(got), "want %v, got %v", tt.want, got)
			} else {
				assert.True(t, got.IsZero())
			}
		})
	}
}

func TestResolveTimestamps(t *testing.T) {
	txs := []Transaction{
		{RawTimestamp: "2024-01-01 10:00:00"},
		{RawTimestamp: "not a time"},
		{RawTimestamp: "2024-01-01T11:00"},
	}

	invalid := ResolveTimestamps(txs, time.UTC)

	assert.Equal(t, 1, invalid)
	assert.True(t, txs[0].HasValidTimestamp())
	assert.False(t, txs[1].HasValidTimestamp())
	assert.True(t, txs[2].HasValidTimestamp())
}

func TestTransaction_CategoryOrUnknown(t *testing.T) {
	assert.Equal(t, "WOOD", Transaction{Category: "WOOD"}.CategoryOrUnknown())
	assert.Equal(t, UnknownCategory, Transaction{}.CategoryOrUnknown())
	assert.Equal(t, UnknownCategory, Transaction{Category: "   "}.CategoryOrUnknown())
}

func TestTransaction_UnitPrice(t *testing.T) {
	price, ok := Transaction{Amount: 4, Price: 10}.UnitPrice()
	require.True(t, ok)
	assert.InDelta(t, 2.5, price, 0.0001)

	_, ok = Transaction{Amount: 0, Price: 10}.UnitPrice()
	assert.False(t, ok)
}

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		in     string
		want   TransactionType
		wantOK bool
	}{
		{"", "", true},
		{"buy", TypeBuy, true},
		{" SELL ", TypeSell, true},
		{"trade", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTransactionType(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrendBuckets_IsEmpty(t *testing.T) {
	assert.True(t, TrendBuckets{}.IsEmpty())
	assert.False(t, TrendBuckets{Falling: []TrendItem{{Item: "STONE"}}}.IsEmpty())
}
