package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "signalcore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: postgres://db:5432/prod
  query_timeout_seconds: 5
redis:
  enabled: true
  addr: redis:6379
  ttl_seconds: 120
model:
  endpoint: http://model:8000/predict
whales:
  exchange_keywords: ["binance", "okx"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "postgres://db:5432/prod", cfg.Database.DSN)
	assert.Equal(t, 5, cfg.Database.QueryTimeoutSeconds)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 120, cfg.Redis.TTLSeconds)
	assert.Equal(t, "http://model:8000/predict", cfg.Model.Endpoint)
	assert.Equal(t, []string{"binance", "okx"}, cfg.Whales.ExchangeKeywords)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: postgres://db:5432/prod
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.Database.QueryTimeoutSeconds)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 5.0, cfg.Model.RequestsPerSecond)
	assert.Empty(t, cfg.Whales.ExchangeKeywords)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "database: [not a map")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config YAML")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SIGNALCORE_DB_DSN", "postgres://env:5432/override")
	t.Setenv("SIGNALCORE_REDIS_ADDR", "env-redis:6379")
	t.Setenv("SIGNALCORE_MODEL_URL", "http://env-model/predict")

	cfg := Default()
	assert.Equal(t, "postgres://env:5432/override", cfg.Database.DSN)
	assert.Equal(t, "env-redis:6379", cfg.Redis.Addr)
	assert.Equal(t, "http://env-model/predict", cfg.Model.Endpoint)
}
