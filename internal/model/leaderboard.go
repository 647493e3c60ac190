package model

// LeaderboardEntry is one ranked player as returned by the analytics service.
type LeaderboardEntry struct {
	Player      string  `json:"player" validate:"required"`
	Spent       float64 `json:"spent"`
	Earned      float64 `json:"earned"`
	NetProfit   float64 `json:"netProfit"`
	Trades      int     `json:"trades" validate:"gte=0"`
	Volume      float64 `json:"volume"`
	UniqueItems int     `json:"uniqueItems"`
}

// TrendItem is an item with its recent activity and price movement.
type TrendItem struct {
	Item          string  `json:"item" validate:"required"`
	RecentCount   int     `json:"recentCount" validate:"gte=0"`
	ChangePercent float64 `json:"changePercent"`
	AvgPrice      float64 `json:"avgPrice"`
}

// TrendBuckets groups trend items into hot, rising and falling lists.
type TrendBuckets struct {
	Hot     []TrendItem `json:"hot"`
	Rising  []TrendItem `json:"rising"`
	Falling []TrendItem `json:"falling"`
}

// IsEmpty returns true if no bucket holds an item.
func (b TrendBuckets) IsEmpty() bool {
	return len(b.Hot) == 0 && len(b.Rising) == 0 && len(b.Falling) == 0
}
