package model

// Stats holds the aggregate counters reported by /api/stats.
type Stats struct {
	Total      int     `json:"total"`
	Buys       int     `json:"buys"`
	Sells      int     `json:"sells"`
	TotalMoney float64 `json:"totalMoney"`
}

// EconomyHealth holds the economy metrics reported by /api/analytics/economy.
type EconomyHealth struct {
	TotalTransactions int     `json:"totalTransactions"`
	BuyCount          int     `json:"buyCount"`
	SellCount         int     `json:"sellCount"`
	BuyRatio          float64 `json:"buyRatio"`
	TotalBuyValue     float64 `json:"totalBuyValue"`
	TotalSellValue    float64 `json:"totalSellValue"`
	NetFlow           float64 `json:"netFlow"`
	AvgTransaction    float64 `json:"avgTransaction"`
	Velocity          int     `json:"velocity"` // transactions in the last hour
	UniqueItems       int     `json:"uniqueItems"`
	UniquePlayers     int     `json:"uniquePlayers"`
}

// TimeSlot is one hour-of-day bucket of the activity distribution.
type TimeSlot struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}
