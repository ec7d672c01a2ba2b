package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coinlens/signalcore/internal/backtest"
	"github.com/coinlens/signalcore/internal/metrics"
	"github.com/coinlens/signalcore/internal/persistence/postgres"
)

func newBacktestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay persisted signals over a window",
		Long:  "Replays realized signal snapshots for a symbol and prints win rate, returns, drawdown, and the equity timeline as JSON.",
		RunE:  runBacktest,
	}
	cmd.Flags().String("symbol", "BTC", "Asset symbol")
	cmd.Flags().String("start", "", "Window start (RFC3339 or YYYY-MM-DD, default now-30d)")
	cmd.Flags().String("end", "", "Window end (RFC3339 or YYYY-MM-DD, default now)")
	return cmd
}

func runBacktest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, err := openDB(cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	symbol, _ := cmd.Flags().GetString("symbol")
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")

	timeout := time.Duration(cfg.Database.QueryTimeoutSeconds) * time.Second
	service := backtest.NewService(postgres.NewSnapshotRepo(db, timeout))

	reg := metrics.NewRegistry(prometheus.NewRegistry())
	report, err := service.Run(cmd.Context(), backtest.Options{
		Symbol: symbol,
		Start:  start,
		End:    end,
	})
	if err != nil {
		return err
	}
	reg.BacktestRuns.Inc()

	log.Info().Str("symbol", report.Symbol).Int("total", report.Total).
		Time("start", report.Start).Time("end", report.End).
		Msg("backtest complete")

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
