package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/model"
)

// TimestampLayout is the absolute time format used in printed tables.
const TimestampLayout = "2006-01-02 15:04:05"

// newTable returns a table writer with the shared shopdash look.
func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// rightAlign aligns the given zero-based columns right, the rest left.
func rightAlign(table *tablewriter.Table, columns int, right ...int) {
	align := make([]int, columns)
	for i := range align {
		align[i] = tablewriter.ALIGN_LEFT
	}
	for _, col := range right {
		align[col] = tablewriter.ALIGN_RIGHT
	}
	table.SetColumnAlignment(align)
}

func printHeading(w io.Writer, title string) {
	fmt.Fprintln(w, BoldStyle.Render(title))
}

func printNoData(w io.Writer) {
	fmt.Fprintln(w, SubtleStyle.Render("  No data"))
}

// FormatTimestamp renders a transaction time in loc, or its raw wire
// text when it could not be parsed.
func FormatTimestamp(tx model.Transaction, loc *time.Location) string {
	if !tx.HasValidTimestamp() {
		return tx.RawTimestamp
	}
	if loc == nil {
		loc = time.Local
	}
	return tx.Timestamp.In(loc).Format(TimestampLayout)
}

// PrintLedger prints one ledger page with its position caption.
func PrintLedger(w io.Writer, page analytics.Page, loc *time.Location) {
	if page.Total == 0 {
		fmt.Fprintln(w, SubtleStyle.Render("No transactions match the current filters"))
		return
	}

	table := newTable(w, "Timestamp", "Player", "Type", "Item", "Category", "Amount", "Price", "Unit Price")
	rightAlign(table, 8, 5, 6, 7)
	for _, tx := range page.Items {
		unit := "-"
		if p, ok := tx.UnitPrice(); ok {
			unit = common.FormatCurrency(p)
		}
		table.Append([]string{
			FormatTimestamp(tx, loc),
			tx.PlayerName,
			StyleTrade(tx.Type),
			tx.Item,
			tx.CategoryOrUnknown(),
			common.FormatCount(tx.Amount),
			common.FormatCurrency(tx.Price),
			unit,
		})
	}
	table.Render()

	fmt.Fprintf(w, "\n%s · Page %d of %d\n", page.Showing(), page.Number, page.TotalPages)
}

// PrintInsights prints the top items, top players and category share tables.
func PrintInsights(w io.Writer, ins analytics.Insights) {
	printHeading(w, "Top Items")
	if len(ins.TopItems) == 0 {
		printNoData(w)
	} else {
		table := newTable(w, "#", "Item", "Units", "Volume")
		rightAlign(table, 4, 0, 2, 3)
		for i, it := range ins.TopItems {
			table.Append([]string{
				strconv.Itoa(i + 1),
				common.PrettifyItem(it.Item),
				common.FormatCount(it.Count),
				common.FormatCurrency(it.Volume),
			})
		}
		table.Render()
	}

	fmt.Fprintln(w)
	printHeading(w, "Top Players")
	if len(ins.TopPlayers) == 0 {
		printNoData(w)
	} else {
		table := newTable(w, "#", "Player", "Trades", "Volume")
		rightAlign(table, 4, 0, 2, 3)
		for i, p := range ins.TopPlayers {
			table.Append([]string{
				strconv.Itoa(i + 1),
				p.Player,
				common.FormatCount(p.Count),
				common.FormatCurrency(p.Volume),
			})
		}
		table.Render()
	}

	fmt.Fprintln(w)
	printHeading(w, "Categories")
	if len(ins.Categories) == 0 {
		printNoData(w)
		return
	}
	table := newTable(w, "Category", "Trades", "Share")
	rightAlign(table, 3, 1, 2)
	for _, c := range ins.Categories {
		table.Append([]string{
			c.Category,
			common.FormatCount(c.Count),
			common.FormatPercent(c.Percent),
		})
	}
	table.Render()
}

// PrintLeaderboard prints a ranked leaderboard for kind.
func PrintLeaderboard(w io.Writer, kind analytics.LeaderboardKind, entries []model.LeaderboardEntry) {
	printHeading(w, TrophyIcon+" "+kind.Title()+" "+SubtleStyle.Render("· "+analytics.ServerWide))
	if len(entries) == 0 {
		printNoData(w)
		return
	}

	table := newTable(w, "#", "Player", kind.MetricLabel(), "Spent", "Earned", "Trades", "Items")
	rightAlign(table, 7, 0, 2, 3, 4, 5, 6)
	for i, e := range entries {
		metric := common.FormatCount(int(kind.Metric(e)))
		if kind.IsMonetary() {
			metric = common.FormatCurrency(kind.Metric(e))
		}
		table.Append([]string{
			strconv.Itoa(i + 1),
			e.Player,
			metric,
			common.FormatCurrency(e.Spent),
			common.FormatCurrency(e.Earned),
			common.FormatCount(e.Trades),
			common.FormatCount(e.UniqueItems),
		})
	}
	table.Render()
}

// PrintTrends prints the hot, rising and falling lists.
func PrintTrends(w io.Writer, trends model.TrendBuckets) {
	fmt.Fprintln(w, SubtleStyle.Render("Trends are "+analytics.ServerWide+" and ignore local filters."))
	fmt.Fprintln(w)

	sections := []struct {
		title string
		items []model.TrendItem
	}{
		{title: "🔥 Hot Items", items: trends.Hot},
		{title: "📈 Rising", items: trends.Rising},
		{title: "📉 Falling", items: trends.Falling},
	}

	for i, section := range sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		printHeading(w, section.title)
		if len(section.items) == 0 {
			printNoData(w)
			continue
		}

		table := newTable(w, "Item", "Recent", "Change", "Avg Price")
		rightAlign(table, 4, 1, 2, 3)
		for _, it := range section.items {
			dir := analytics.ClassifyChange(it.ChangePercent)
			table.Append([]string{
				common.PrettifyItem(it.Item),
				common.FormatCount(it.RecentCount),
				dir.Arrow() + " " + common.FormatSignedPercent(it.ChangePercent),
				common.FormatCurrency(it.AvgPrice),
			})
		}
		table.Render()
	}
}

// PrintPriceSummary prints the headline figures of a price-history series.
func PrintPriceSummary(w io.Writer, item string, hours int, summary analytics.PriceSummary) {
	printHeading(w, fmt.Sprintf("%s %s · last %dh", ChartIcon, common.PrettifyItem(item), hours))
	if summary.BucketsWith == 0 {
		printNoData(w)
		return
	}

	fmt.Fprintf(w, "  Last buy:  %s\n", formatNullable(summary.LastBuy))
	fmt.Fprintf(w, "  Last sell: %s\n", formatNullable(summary.LastSell))
	fmt.Fprintf(w, "  Buy range: %s - %s\n", formatNullable(summary.MinBuy), formatNullable(summary.MaxBuy))
	fmt.Fprintf(w, "  Volume:    %s over %d active hours\n", common.FormatCount(summary.Volume), summary.BucketsWith)
}

// PrintPriceHistory prints the buckets that recorded trades.
func PrintPriceHistory(w io.Writer, buckets []model.PriceBucket, loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}

	table := newTable(w, "Hour", "Avg Buy", "Avg Sell", "Volume")
	rightAlign(table, 4, 1, 2, 3)
	rows := 0
	for _, b := range buckets {
		if !b.HasData() {
			continue
		}
		table.Append([]string{
			b.Start.In(loc).Format(analytics.PriceHistoryKeyLayout),
			formatNullable(b.AvgBuy),
			formatNullable(b.AvgSell),
			common.FormatCount(b.Volume),
		})
		rows++
	}
	if rows == 0 {
		printNoData(w)
		return
	}
	table.Render()
}

// PrintItemDetail prints catalog prices, totals and recent traders for an item.
func PrintItemDetail(w io.Writer, detail model.ItemDetail) {
	name := detail.DisplayName
	if name == "" {
		name = common.PrettifyItem(detail.Item)
	}
	printHeading(w, fmt.Sprintf("%s %s (%s)", ShopIcon, name, detail.Item))

	fmt.Fprintf(w, "  Category:   %s\n", detail.Category)
	fmt.Fprintf(w, "  Buy price:  %s\n", common.FormatCurrency(detail.BuyPrice))
	fmt.Fprintf(w, "  Sell price: %s\n", common.FormatCurrency(detail.SellPrice))
	fmt.Fprintf(w, "  Base price: %s\n", common.FormatCurrency(detail.BasePrice))
	fmt.Fprintf(w, "  Stock:      %s\n", strconv.FormatFloat(detail.Stock, 'f', -1, 64))
	fmt.Fprintf(w, "  Totals:     %s buys · %s sells · %s volume\n",
		common.FormatCount(detail.TotalBuys),
		common.FormatCount(detail.TotalSells),
		common.FormatCurrency(detail.TotalVolume))

	printTraders(w, "Recent Buyers", detail.RecentBuyers)
	printTraders(w, "Recent Sellers", detail.RecentSellers)
}

func printTraders(w io.Writer, title string, traders []model.RecentTrader) {
	fmt.Fprintln(w)
	printHeading(w, title)
	if len(traders) == 0 {
		printNoData(w)
		return
	}

	table := newTable(w, "Player", "Amount", "Price", "When")
	rightAlign(table, 4, 1, 2)
	for _, t := range traders {
		table.Append([]string{
			t.PlayerName,
			common.FormatCount(t.Amount),
			common.FormatCurrency(t.Price),
			t.Timestamp,
		})
	}
	table.Render()
}

func formatNullable(p model.NullablePrice) string {
	if !p.Valid {
		return "-"
	}
	return common.FormatCurrency(p.Value)
}
