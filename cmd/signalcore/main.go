package main

import (
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/coinlens/signalcore/internal/config"
	"github.com/coinlens/signalcore/internal/persistence"
	"github.com/coinlens/signalcore/internal/persistence/postgres"

	rediscache "github.com/coinlens/signalcore/internal/cache"
	"github.com/go-redis/redis/v8"
)

const (
	appName = "signalcore"
	version = "v1.0.0"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	rootCmd := &cobra.Command{
		Use:     appName,
		Short:   "Crypto signal pipeline: feature snapshots, rule scoring, backtests",
		Version: version,
	}
	rootCmd.PersistentFlags().String("config", "config/signalcore.yaml", "Path to YAML configuration")

	rootCmd.AddCommand(newSnapshotCmd(), newScoreCmd(), newBacktestCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// loadConfig reads the configured YAML file, falling back to built-in
// defaults when the file does not exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.Warn().Str("path", path).Msg("config file not found, using defaults")
		return config.Default(), nil
	}
	return config.Load(path)
}

// openDB connects to PostgreSQL.
func openDB(cfg *config.Config) (*sqlx.DB, error) {
	return sqlx.Connect("postgres", cfg.Database.DSN)
}

// openMarketReader builds the market data reader, layering the redis cache
// on top when enabled.
func openMarketReader(cfg *config.Config, db *sqlx.DB) persistence.MarketReader {
	timeout := time.Duration(cfg.Database.QueryTimeoutSeconds) * time.Second
	var reader persistence.MarketReader = postgres.NewMarketRepo(db, timeout)

	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ttl := time.Duration(cfg.Redis.TTLSeconds) * time.Second
		reader = rediscache.New(reader, client, ttl)
		log.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", ttl).Msg("market cache enabled")
	}
	return reader
}
