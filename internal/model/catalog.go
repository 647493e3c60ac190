package model

// ShopItem is a catalog entry with its current dynamic prices.
type ShopItem struct {
	Item        string  `json:"item"`
	DisplayName string  `json:"displayName"`
	Category    string  `json:"category"`
	BuyPrice    float64 `json:"buyPrice"`
	SellPrice   float64 `json:"sellPrice"`
	Stock       float64 `json:"stock"`
	BasePrice   float64 `json:"basePrice"`
	ImageURL    string  `json:"imageUrl"`
}

// ShopCategory is a catalog category with its item count.
type ShopCategory struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	ItemCount   int    `json:"itemCount"`
}

// RecentTrader is a recent buyer or seller of an item.
type RecentTrader struct {
	PlayerName string  `json:"playerName"`
	Timestamp  string  `json:"timestamp"`
	Amount     int     `json:"amount"`
	Price      float64 `json:"price"`
}

// ItemDetail is the detailed view of a single catalog item.
type ItemDetail struct {
	ShopItem
	RecentTransactions []Transaction  `json:"recentTransactions"`
	RecentBuyers       []RecentTrader `json:"recentBuyers"`
	RecentSellers      []RecentTrader `json:"recentSellers"`
	TotalBuys          int            `json:"totalBuys"`
	TotalSells         int            `json:"totalSells"`
	TotalVolume        float64        `json:"totalVolume"`
}
