package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/config"
	"github.com/selfservice0/DynamicShop/internal/tui"
	"github.com/selfservice0/DynamicShop/internal/tui/themes"
)

func dashboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the live market dashboard",
		Long: `Open the interactive market dashboard.

The dashboard refreshes every refresh.interval, keeps the last good data
for any panel whose fetch fails and caches each transaction snapshot.
With --offline it shows the newest cached snapshot without any requests.`,
		RunE: runDashboard,
	}
	addDashboardFlags(cmd)
	return cmd
}

func addDashboardFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("offline", false, "show the newest cached snapshot without fetching")
	cmd.Flags().String("theme", "default", "color theme (default, catppuccin)")
}

func runDashboard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	offline, _ := cmd.Flags().GetBool("offline")
	themeName, _ := cmd.Flags().GetString("theme")

	// The TUI owns the terminal, so logs go to a file while it runs. This
	// happens first so every component picks up the file logger.
	if path := config.ExpandPath(viper.GetString("logging.file")); path != "" {
		level, err := common.ParseLevel(viper.GetString("logging.level"))
		if err != nil {
			return err
		}
		closer, err := common.SetupFileLogger(path, level, viper.GetString("logging.format"))
		if err != nil {
			return fmt.Errorf("failed to setup file logging: %w", err)
		}
		defer closer.Close()
	}

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			slog.Warn("Failed to close snapshot cache", "error", cerr)
		}
	}()

	if offline {
		if a.cache == nil {
			return common.NewUserError("Offline mode needs the snapshot cache (cache.enabled)", nil)
		}
		if _, _, err := a.refresher.LoadCached(ctx); err != nil {
			return common.NewUserError("No cached snapshot available", err)
		}
	}

	a.serveMetrics(ctx)

	slog.Info("Starting dashboard",
		"source", a.sourceLabel,
		"offline", offline,
		"demo", viper.GetBool("demo"))

	return tui.Run(ctx, a.refresher, a.refresher.Store(),
		tui.WithTheme(themes.GetTheme(themeName)),
		tui.WithLocation(a.settings.Location()),
		tui.WithPageSize(a.settings.View.PageSize),
		tui.WithTopN(a.settings.Insights.TopN),
		tui.WithRefreshInterval(a.settings.Refresh.Interval),
		tui.WithSearchDebounce(a.settings.Search.Debounce),
		tui.WithSourceLabel(a.sourceLabel),
		tui.WithEngine(a.engine),
		tui.WithOffline(offline),
	)
}
