package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/chart"
	"github.com/selfservice0/DynamicShop/internal/cli"
	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/model"
)

type itemHistory struct {
	item    string
	buckets []model.PriceBucket
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history ITEM...",
		Short: "Print hourly price history for one or more items",
		Long: `Fetch the hourly average buy and sell prices of each item and print a
summary plus every hour that recorded trades.

With --chart the series is also rendered as a PNG. When several items are
given, the item key is appended to the file name.`,
		Example: `  shopdash history OAK_LOG
  shopdash history diamond iron_ingot --hours 24 --chart prices.png`,
		Args: cobra.MinimumNArgs(1),
		RunE: runHistory,
	}
	cmd.Flags().Int("hours", 0, "hours of history (default history.hours)")
	cmd.Flags().String("chart", "", "write a PNG chart to this path")
	return cmd
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	hours, _ := cmd.Flags().GetInt("hours")
	if hours <= 0 {
		hours = a.settings.History.Hours
	}
	chartPath, _ := cmd.Flags().GetString("chart")
	loc := a.settings.Location()

	histories := make([]itemHistory, 0, len(args))
	progress := cli.NewProgress(cmd.ErrOrStderr(), len(args), "Fetching price history...")
	for _, arg := range args {
		item := normalizeItem(arg)
		progress.Describe("Fetching " + common.PrettifyItem(item) + "...")

		points, err := a.source.PriceHistory(ctx, item, hours)
		if err != nil {
			return common.NewUserError(fmt.Sprintf("Failed to fetch price history for %s", item), err)
		}
		histories = append(histories, itemHistory{
			item:    item,
			buckets: analytics.NormalizePriceHistory(points, hours, time.Now(), loc),
		})
		progress.Step()
	}
	progress.Finish()

	out := cmd.OutOrStdout()
	for i, h := range histories {
		if i > 0 {
			fmt.Fprintln(out)
		}
		summary := analytics.SummarizePriceHistory(h.buckets)
		cli.PrintPriceSummary(out, h.item, hours, summary)
		if summary.BucketsWith > 0 {
			fmt.Fprintln(out)
			cli.PrintPriceHistory(out, h.buckets, loc)
		}

		if chartPath == "" {
			continue
		}
		if summary.BucketsWith == 0 {
			fmt.Fprintln(out, cli.FormatWarning("No trades to chart for "+h.item))
			continue
		}
		path := chartFile(chartPath, h.item, len(histories) > 1)
		if err := writeChart(path, h.item, hours, h.buckets); err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess("Chart written to "+path))
	}
	return nil
}

// chartFile returns the chart path for item. With several items the key is
// inserted before the extension: prices.png becomes prices-oak_log.png.
func chartFile(path, item string, multiple bool) string {
	if !multiple {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "-" + strings.ToLower(item) + ext
}

func writeChart(path, item string, hours int, buckets []model.PriceBucket) error {
	title := fmt.Sprintf("%s · last %dh", common.PrettifyItem(item), hours)
	if err := chart.WritePriceHistoryFile(path, item, buckets, chart.WithTitle(title)); err != nil {
		return common.NewUserError(fmt.Sprintf("Failed to write chart for %s", item), err)
	}
	return nil
}
