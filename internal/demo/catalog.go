// Package demo provides an in-process shop backend for offline use and tests.
// It generates a transaction log and answers every shop API query from it.
package demo

import (
	"math"
	"strings"

	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/model"
)

// catalogEntry is one tradeable item.
type catalogEntry struct {
	item      string
	category  string
	basePrice float64
	maxStack  int
}

// defaultCatalog is the demo shop inventory.
var defaultCatalog = []catalogEntry{
	{"OAK_LOG", "BLOCKS", 2.5, 64},
	{"SPRUCE_LOG", "BLOCKS", 2.5, 64},
	{"COBBLESTONE", "BLOCKS", 0.5, 64},
	{"GLASS", "BLOCKS", 1.5, 64},
	{"IRON_INGOT", "ORES", 8, 64},
	{"GOLD_INGOT", "ORES", 18, 64},
	{"DIAMOND", "ORES", 150, 16},
	{"EMERALD", "ORES", 90, 16},
	{"NETHERITE_INGOT", "ORES", 1200, 4},
	{"BREAD", "FOOD", 1.2, 64},
	{"COOKED_BEEF", "FOOD", 2, 64},
	{"GOLDEN_CARROT", "FOOD", 6, 64},
	{"WHEAT", "FARMING", 0.4, 64},
	{"SUGAR_CANE", "FARMING", 0.6, 64},
	{"PUMPKIN", "FARMING", 1, 64},
	{"REDSTONE", "REDSTONE", 1.8, 64},
	{"PISTON", "REDSTONE", 12, 16},
	{"DIAMOND_PICKAXE", "TOOLS", 520, 1},
	{"ELYTRA", "MISC", 4500, 1},
	{"ENCHANTED_BOOK", "MISC", 240, 1},
}

func (c catalogEntry) shopItem(stock float64) model.ShopItem {
	// Prices drift with stock the way a dynamic shop does: scarce items cost more.
	factor := 1.0
	if stock > 0 {
		factor = math.Max(0.5, math.Min(2.0, 1000/(stock+500)))
	}
	buy := round2(c.basePrice * factor)

	return model.ShopItem{
		Item:        c.item,
		DisplayName: common.PrettifyItem(c.item),
		Category:    c.category,
		BuyPrice:    buy,
		SellPrice:   round2(buy * 0.7),
		Stock:       stock,
		BasePrice:   c.basePrice,
		ImageURL:    "https://mc.nerothe.com/img/1.21/minecraft_" + strings.ToLower(c.item) + ".png",
	}
}

func findCatalogEntry(item string) (catalogEntry, bool) {
	for _, entry := range defaultCatalog {
		if strings.EqualFold(entry.item, item) {
			return entry, true
		}
	}
	return catalogEntry{}, false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
