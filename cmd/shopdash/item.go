package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/cli"
	"github.com/selfservice0/DynamicShop/internal/common"
)

// itemHistoryHours is the price-history window shown with item details.
const itemHistoryHours = 7 * 24

func itemCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item ITEM",
		Short: "Show catalog details for one item",
		Long: `Show an item's current prices, stock, trade totals, recent buyers and
sellers, and a summary of its price over the last 7 days.`,
		Example: `  shopdash item DIAMOND --chart diamond.png`,
		Args:    cobra.ExactArgs(1),
		RunE:    runItem,
	}
	cmd.Flags().String("chart", "", "write a PNG chart of the 7-day price history to this path")
	return cmd
}

func runItem(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	item := normalizeItem(args[0])

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	detail, err := a.source.ItemDetail(ctx, item)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewUserError(fmt.Sprintf("Item %s is not in the shop catalog", item), err)
		}
		return common.NewUserError(fmt.Sprintf("Failed to fetch details for %s", item), err)
	}

	out := cmd.OutOrStdout()
	cli.PrintItemDetail(out, *detail)

	// The history is supplementary; a failed fetch only drops the summary.
	points, err := a.source.PriceHistory(ctx, item, itemHistoryHours)
	if err != nil {
		fmt.Fprintln(out)
		fmt.Fprintln(out, cli.FormatWarning("Price history unavailable: "+err.Error()))
		return nil
	}
	buckets := analytics.NormalizePriceHistory(points, itemHistoryHours, time.Now(), a.settings.Location())
	summary := analytics.SummarizePriceHistory(buckets)

	fmt.Fprintln(out)
	cli.PrintPriceSummary(out, item, itemHistoryHours, summary)

	chartPath, _ := cmd.Flags().GetString("chart")
	if chartPath == "" {
		return nil
	}
	if summary.BucketsWith == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No trades to chart for "+item))
		return nil
	}
	if err := writeChart(chartPath, item, itemHistoryHours, buckets); err != nil {
		return err
	}
	fmt.Fprintln(out, cli.FormatSuccess("Chart written to "+chartPath))
	return nil
}
