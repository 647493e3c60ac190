package model

import "time"

// PricePoint is one hourly price-history point as served by the analytics API.
// Timestamp has the form "2006-01-02 15:00".
type PricePoint struct {
	Timestamp    string  `json:"timestamp"`
	AvgBuyPrice  float64 `json:"avgBuyPrice"`
	AvgSellPrice float64 `json:"avgSellPrice"`
	Volume       int     `json:"volume"`
}

// NullablePrice is an average price that may be absent for a bucket.
type NullablePrice struct {
	Value float64
	Valid bool
}

// PriceBucket is one fixed-width bucket of a price-history series.
type PriceBucket struct {
	Start   time.Time
	AvgBuy  NullablePrice
	AvgSell NullablePrice
	Volume  int
}

// HasData returns true if either side recorded a trade in the bucket.
func (b PriceBucket) HasData() bool {
	return b.AvgBuy.Valid || b.AvgSell.Valid
}
