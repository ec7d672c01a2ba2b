// Package config loads the pipeline configuration from YAML with
// environment overrides for credentials.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Config is the top-level signalcore configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Model    ModelConfig    `yaml:"model"`
	Whales   WhalesConfig   `yaml:"whales"`
}

// DatabaseConfig holds the PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN                 string `yaml:"dsn"`
	QueryTimeoutSeconds int    `yaml:"query_timeout_seconds"`
}

// RedisConfig holds the market cache settings. Disabled leaves reads
// uncached.
type RedisConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// ModelConfig holds the external model endpoint settings.
type ModelConfig struct {
	Endpoint          string  `yaml:"endpoint"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// WhalesConfig carries the exchange keyword list used to classify transfer
// endpoints. Empty falls back to the built-in list.
type WhalesConfig struct {
	ExchangeKeywords []string `yaml:"exchange_keywords"`
}

// Load reads and parses the YAML configuration, then applies environment
// overrides (SIGNALCORE_DB_DSN, SIGNALCORE_REDIS_ADDR, SIGNALCORE_MODEL_URL).
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	applyEnv(cfg)
	return cfg, nil
}

// Default returns the built-in configuration with environment overrides,
// for running without a config file.
func Default() *Config {
	cfg := defaults()
	applyEnv(cfg)
	return cfg
}

func defaults() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:                 "postgres://localhost:5432/signalcore?sslmode=disable",
			QueryTimeoutSeconds: 10,
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			TTLSeconds: 60,
		},
		Model: ModelConfig{
			RequestsPerSecond: 5,
		},
	}
}

func applyEnv(cfg *Config) {
	if dsn := os.Getenv("SIGNALCORE_DB_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if addr := os.Getenv("SIGNALCORE_REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if url := os.Getenv("SIGNALCORE_MODEL_URL"); url != "" {
		cfg.Model.Endpoint = url
	}
}
