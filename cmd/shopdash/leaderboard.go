package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selfservice0/DynamicShop/internal/analytics"
	"github.com/selfservice0/DynamicShop/internal/cli"
	"github.com/selfservice0/DynamicShop/internal/common"
)

func leaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Print a player leaderboard",
		Long: `Print one of the shop's player leaderboards:

  earners   money earned by selling to the shop
  spenders  money spent buying from the shop
  traders   number of trades
  volume    total money moved`,
		Args: cobra.NoArgs,
		RunE: runLeaderboard,
	}
	cmd.Flags().String("kind", "", "leaderboard kind (default leaderboard.kind)")
	cmd.Flags().Int("limit", 0, "number of players (default leaderboard.limit)")
	return cmd
}

func runLeaderboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	kindFlag, _ := cmd.Flags().GetString("kind")
	if kindFlag == "" {
		kindFlag = a.settings.Leaderboard.Kind
	}
	kind, err := analytics.ParseLeaderboardKind(kindFlag)
	if err != nil {
		return common.NewUserError("Invalid --kind", err)
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = a.settings.Leaderboard.Limit
	}

	entries, err := a.source.Leaderboard(ctx, string(kind), limit)
	if err != nil {
		return common.NewUserError("Failed to fetch leaderboard", err)
	}

	cli.PrintLeaderboard(cmd.OutOrStdout(), kind, entries)
	return nil
}

func trendsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trends",
		Short: "Print hot, rising and falling items",
		Long: `Print the market trend buckets. Activity in the last hour is compared
with the 23 hours before it.`,
		Args: cobra.NoArgs,
		RunE: runTrends,
	}
	cmd.Flags().Int("limit", 0, "items per bucket (default trends.limit)")
	return cmd
}

func runTrends(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := newApp(ctx, false)
	if err != nil {
		return err
	}
	defer a.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	if limit <= 0 {
		limit = a.settings.Trends.Limit
	}

	trends, err := a.source.Trends(ctx, limit)
	if err != nil {
		return common.NewUserError("Failed to fetch trends", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.TitleStyle.Render(cli.TrendIcon+" Market Trends"))
	cli.PrintTrends(out, *trends)
	return nil
}
