package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/selfservice0/DynamicShop/internal/cli"
	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/config"
)

var (
	cfgFile string
	version = "dev"
	rootCmd = newRootCmd()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shopdash",
		Short: "🛒 DynamicShop market dashboard",
		Long: `shopdash: a terminal dashboard for the DynamicShop market.

It reads the shop's transaction log and analytics from the plugin's web API
and shows the ledger, market insights, leaderboards and price trends.
Run without a subcommand to open the live dashboard.`,
		PersistentPreRunE: initConfig,
		RunE:              runDashboard,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/shopdash/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("api", config.DefaultBaseURL, "base URL of the shop web API")
	flags.Bool("demo", false, "use a generated in-process market instead of the API")
	flags.String("metrics-addr", "", "serve /metrics and /healthz on this address")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = viper.BindPFlag("api.base_url", flags.Lookup("api"))
	_ = viper.BindPFlag("demo", flags.Lookup("demo"))
	_ = viper.BindPFlag("metrics.addr", flags.Lookup("metrics-addr"))

	addDashboardFlags(cmd)

	cmd.AddCommand(dashboardCmd())
	cmd.AddCommand(ledgerCmd())
	cmd.AddCommand(insightsCmd())
	cmd.AddCommand(leaderboardCmd())
	cmd.AddCommand(trendsCmd())
	cmd.AddCommand(historyCmd())
	cmd.AddCommand(itemCmd())
	cmd.AddCommand(exportCmd())
	cmd.AddCommand(demoServerCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel() // Always cleanup

	if err != nil {
		fmt.Fprintln(os.Stderr, formatFailure(err))
		os.Exit(1)
	}
}

// formatFailure renders the user-facing message of err with its cause on a
// second, dimmed line.
func formatFailure(err error) string {
	out := cli.FormatError(common.UserMessage(err))
	var userErr *common.UserError
	if errors.As(err, &userErr) && userErr.Err != nil {
		out += "\n  " + cli.SubtleStyle.Render(userErr.Err.Error())
	}
	return out
}

func initConfig(_ *cobra.Command, _ []string) error {
	config.SetDefaults(viper.GetViper())

	// Set up config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := config.ConfigDir()
		if err != nil {
			return err
		}

		// Search for config in standard locations
		viper.AddConfigPath(dir)
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("SHOPDASH")
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	if err := setupLogging(); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

func setupLogging() error {
	level, err := common.ParseLevel(viper.GetString("logging.level"))
	if err != nil {
		return err
	}

	format := viper.GetString("logging.format")
	switch format {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format: %s", format)
	}

	return common.SetupLogger(level, format)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shopdash version %s\n", version)
		},
	}
}
