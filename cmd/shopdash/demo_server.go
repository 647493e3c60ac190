package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/selfservice0/DynamicShop/internal/cli"
	"github.com/selfservice0/DynamicShop/internal/common"
	"github.com/selfservice0/DynamicShop/internal/config"
	"github.com/selfservice0/DynamicShop/internal/demo"
)

func demoServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo-server",
		Short: "Serve a generated market over the shop web API",
		Long: `Start an HTTP server that speaks the DynamicShop web API backed by a
generated week of trading. New trades keep arriving every --tick so a
dashboard pointed at it sees the market move.`,
		Example: `  shopdash demo-server --addr :7713
  shopdash --api http://localhost:7713`,
		Args: cobra.NoArgs,
		RunE: runDemoServer,
	}
	cmd.Flags().String("addr", ":7713", "listen address")
	cmd.Flags().Duration("tick", 10*time.Second, "interval between generated trades (0 disables)")
	cmd.Flags().Int("count", 0, "initial transactions to generate (default 1500)")
	cmd.Flags().Int64("seed", 0, "generator seed (default fixed)")
	cmd.Flags().Bool("stats-as-string", false, "encode /api/stats as a JSON string like older plugin versions")
	return cmd
}

func runDemoServer(cmd *cobra.Command, _ []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	tick, _ := cmd.Flags().GetDuration("tick")
	count, _ := cmd.Flags().GetInt("count")
	seed, _ := cmd.Flags().GetInt64("seed")
	statsAsString, _ := cmd.Flags().GetBool("stats-as-string")

	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return common.NewUserError("Invalid configuration", err)
	}
	loc := settings.Location()

	cfg := demo.DefaultGeneratorConfig()
	cfg.Location = loc
	if count > 0 {
		cfg.Count = count
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	source, gen := demo.NewGeneratedSource(cfg, time.Now(), demo.WithLocation(loc))

	opts := []demo.HandlerOption{demo.WithLogger(slog.Default())}
	if statsAsString {
		opts = append(opts, demo.WithStatsAsString())
	}
	handler := demo.NewHandler(source, opts...)

	interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, cancel := interrupts.HandleInterrupts(cmd.Context(), "Demo server")
	defer cancel()

	if tick > 0 {
		go generateTrades(ctx, source, gen, tick)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo(fmt.Sprintf(
		"Serving %s demo transactions on %s (%s)", common.FormatCount(source.Len()), addr, gen)))

	if err := common.Serve(ctx, addr, handler.Routes()); err != nil {
		return common.NewUserError("Demo server failed", err)
	}
	return nil
}

// generateTrades appends one generated trade per tick until ctx is done.
func generateTrades(ctx context.Context, source *demo.Source, gen *demo.Generator, tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			tx := gen.Next(now)
			source.Append(tx)
			slog.Debug("Generated trade",
				"player", tx.PlayerName,
				"type", tx.Type,
				"item", tx.Item,
				"amount", tx.Amount)
		}
	}
}
