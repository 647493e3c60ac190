package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/cli"
	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/export"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export FILE.xlsx",
		Short: "Export the filtered ledger and insights to an Excel workbook",
		Long: `Fetch the transaction log once and write the filtered, sorted ledger
plus the top items, top players and category tables to an .xlsx workbook.
The --page flag is ignored: every matching record is exported.`,
		Example: `  shopdash export market.xlsx --range 7d --type SELL`,
		Args:    cobra.ExactArgs(1),
		RunE:    runExport,
	}
	addViewFlags(cmd)
	cmd.Flags().Int("top", 0, "rows per insight table (default insights.top_n)")
	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	path := args[0]
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return common.NewUserError(fmt.Sprintf("Export file %s must end in .xlsx", path), nil)
	}

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

	snap, _, err := a.loadTransactions(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	view := engine.Derive(snap, state, now)
	report := export.Report{
		GeneratedAt: now,
		Source:      a.sourceLabel,
		State:       state,
		Ledger:      view.Sorted,
		Insights:    view.Insights,
		Location:    a.settings.Location(),
	}
	if err := export.Save(path, report); err != nil {
		return common.NewUserError("Failed to write workbook", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %s transactions to %s",
		common.FormatCount(len(view.Sorted)), path)))
	return nil
}
