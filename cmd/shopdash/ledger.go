package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/cli"
	"github.com/selfservice0/DynamicShop/internal/common"
)

func ledgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Print one page of the transaction ledger",
		Long: `Fetch the recent transaction log once and print one page of it.

Filters compose in a fixed order: the time range first, then the type and
search predicates, then the sort, then the page.`,
		Example: `  shopdash ledger --range 24h --type BUY
  shopdash ledger --search alice --sort price --page 2`,
		Args: cobra.NoArgs,
		RunE: runLedger,
	}
	addViewFlags(cmd)
	cmd.Flags().Int("page-size", 0, "rows per page (default view.page_size)")
	return cmd
}

func runLedger(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	pageSize := a.settings.View.PageSize
	if n, _ := cmd.Flags().GetInt("page-size"); n > 0 {
		pageSize = n
	}
	state, err := viewStateFromFlags(cmd, pageSize)
	if err != nil {
		return err
	}

	snap, _, err := a.loadTransactions(ctx)
	if err != nil {
		return err
	}

	view := a.engine.Derive(snap, state, time.Now())
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle("Ledger · "+state.TimeRange.Label()))
	cli.PrintLedger(out, view.Page, a.settings.Location())
	return nil
}

func insightsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Print top items, top players and category distribution",
		Long: `Fetch the recent transaction log once and print the market insights
for the filtered set. Insights cover every matching record, not just one page.`,
		Args: cobra.NoArgs,
		RunE: runInsights,
	}
	addViewFlags(cmd)
	cmd.Flags().Int("top", 0, "rows per insight table (default insights.top_n)")
	return cmd
}

func runInsights(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	state, err := viewStateFromFlags(cmd, a.settings.View.PageSize)
	if err != nil {
		return err
	}

	engine := a.engine
	if top, _ := cmd.Flags().GetInt("top"); top > 0 {
		engine = analytics.NewEngine(top)
	}

	snap, result, err := a.loadTransactions(ctx)
	if err != nil {
		return err
	}

	view := engine.Derive(snap, state, time.Now())
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.TitleStyle.Render(cli.ChartIcon+" Market Insights · "+state.TimeRange.Label()))
	if result.Stats != nil {
		fmt.Fprintf(out, "%s trades (%s buy / %s sell) · %s total volume\n\n",
			common.FormatCount(result.Stats.Total),
			common.FormatCount(result.Stats.Buys),
			common.FormatCount(result.Stats.Sells),
			common.FormatCurrency(result.Stats.TotalMoney))
	}
	cli.PrintInsights(out, view.Insights)
	return nil
}
