package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/coinlens/signalcore/internal/domain"
	"github.com/coinlens/signalcore/internal/features"
	"github.com/coinlens/signalcore/internal/metrics"
	"github.com/coinlens/signalcore/internal/persistence/postgres"
	"github.com/coinlens/signalcore/internal/predict"
	"github.com/coinlens/signalcore/internal/scoring"
)

func newSnapshotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Build a feature snapshot and score it",
		Long:  "Builds a point-in-time feature snapshot for a symbol/pair, runs the rule engine over it, and prints both as JSON.",
		RunE:  runSnapshot,
	}
	cmd.Flags().String("symbol", "BTC", "Asset symbol")
	cmd.Flags().String("pair", "BTCUSDT", "Trading pair")
	cmd.Flags().String("interval", "1h", "Series interval")
	cmd.Flags().Int64("at", 0, "Pin the snapshot to a UTC millisecond timestamp (0 = now)")
	cmd.Flags().Bool("save", false, "Persist the resulting signal snapshot")
	return cmd
}

func runSnapshot(cmd *cobra.Command, args []string) error {
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
	pair, _ := cmd.Flags().GetString("pair")
	interval, _ := cmd.Flags().GetString("interval")
	atMs, _ := cmd.Flags().GetInt64("at")
	save, _ := cmd.Flags().GetBool("save")

	reg := metrics.NewRegistry(prometheus.NewRegistry())
	builder := features.NewBuilder(openMarketReader(cfg, db), cfg.Whales.ExchangeKeywords)

	started := time.Now()
	snap, err := builder.Build(cmd.Context(), symbol, pair, interval, atMs)
	reg.ObserveSnapshotBuild(symbol, time.Since(started), err)
	if err != nil {
		return err
	}

	engineInput := scoring.FromSnapshot(snap)
	result := scoring.NewEngine().Score(engineInput)
	reg.SignalsEmitted.WithLabelValues(string(result.Signal)).Inc()
	log.Info().Str("symbol", snap.Symbol).Str("signal", string(result.Signal)).
		Float64("score", result.Score).Float64("confidence", result.Confidence).
		Msg("snapshot scored")

	// The model decision is advisory alongside the rule signal; an unreachable
	// or untrained model never blocks snapshot generation.
	var prediction *predict.Prediction
	if cfg.Model.Endpoint != "" {
		model := predict.NewHTTPModel(cfg.Model.Endpoint, cfg.Model.RequestsPerSecond)
		prediction, err = predict.NewService(model).Predict(cmd.Context(), engineInput.Payload())
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("model prediction failed")
		case prediction == nil:
			log.Info().Msg("model abstained")
		default:
			reg.ModelPredictions.WithLabelValues(string(prediction.Decision)).Inc()
			log.Info().Float64("probability", prediction.Probability).
				Str("decision", string(prediction.Decision)).Msg("model prediction")
		}
	}

	if save {
		timeout := time.Duration(cfg.Database.QueryTimeoutSeconds) * time.Second
		snapshots := postgres.NewSnapshotRepo(db, timeout)
		id, err := snapshots.Insert(cmd.Context(), domain.SignalSnapshot{
			Symbol:      snap.Symbol,
			GeneratedAt: snap.GeneratedAt,
			SignalRule:  string(result.Signal),
		})
		if err != nil {
			return err
		}
		log.Info().Str("id", id).Msg("signal snapshot persisted")
	}

	out := struct {
		Snapshot   *domain.FeatureSnapshot `json:"snapshot"`
		Signal     domain.SignalResult     `json:"signal"`
		Prediction *predict.Prediction     `json:"prediction"`
	}{snap, result, prediction}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
