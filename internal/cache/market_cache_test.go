package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinlens/signalcore/internal/persistence"
)

// countingReader records how often the underlying repository was hit.
type countingReader struct {
	persistence.MarketReader
	funding []persistence.FundingRow
	err     error
	calls   int
}

func (r *countingReader) LatestFundingRates(_ context.Context, _, _ string, _ int) ([]persistence.FundingRow, error) {
	r.calls++
	return r.funding, r.err
}

func fundingFixture() []persistence.FundingRow {
	rate := 0.01
	return []persistence.FundingRow{{
		Exchange: "binance",
		Close:    &rate,
		Time:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
}

func TestMarketCache_MissLoadsAndStores(t *testing.T) {
	client, mock := redismock.NewClientMock()
	inner := &countingReader{funding: fundingFixture()}
	c := New(inner, client, time.Minute)

	key := "mkt:funding:BTCUSDT:1h:200"
	payload, err := json.Marshal(inner.funding)
	require.NoError(t, err)
	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, payload, time.Minute).SetVal("OK")

	rows, err := c.LatestFundingRates(context.Background(), "BTCUSDT", "1h", 200)
	require.NoError(t, err)
	assert.Equal(t, inner.funding, rows)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarketCache_HitSkipsRepository(t *testing.T) {
	client, mock := redismock.NewClientMock()
	inner := &countingReader{}
	c := New(inner, client, time.Minute)

	payload, err := json.Marshal(fundingFixture())
	require.NoError(t, err)
	mock.ExpectGet("mkt:funding:BTCUSDT:1h:200").SetVal(string(payload))

	rows, err := c.LatestFundingRates(context.Background(), "BTCUSDT", "1h", 200)
	require.NoError(t, err)
	assert.Equal(t, fundingFixture(), rows)
	assert.Equal(t, 0, inner.calls, "cache hit must not touch the repository")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarketCache_RedisFailureFallsThrough(t *testing.T) {
	client, mock := redismock.NewClientMock()
	inner := &countingReader{funding: fundingFixture()}
	c := New(inner, client, time.Minute)

	payload, err := json.Marshal(inner.funding)
	require.NoError(t, err)
	mock.ExpectGet("mkt:funding:BTCUSDT:1h:200").SetErr(errors.New("redis down"))
	mock.ExpectSet("mkt:funding:BTCUSDT:1h:200", payload, time.Minute).SetErr(errors.New("redis down"))

	rows, err := c.LatestFundingRates(context.Background(), "BTCUSDT", "1h", 200)
	require.NoError(t, err, "redis outage must not fail the read")
	assert.Equal(t, inner.funding, rows)
	assert.Equal(t, 1, inner.calls)
}

func TestMarketCache_UndecodableEntryReloads(t *testing.T) {
	client, mock := redismock.NewClientMock()
	inner := &countingReader{funding: fundingFixture()}
	c := New(inner, client, time.Minute)

	payload, err := json.Marshal(inner.funding)
	require.NoError(t, err)
	mock.ExpectGet("mkt:funding:BTCUSDT:1h:200").SetVal("{not json")
	mock.ExpectSet("mkt:funding:BTCUSDT:1h:200", payload, time.Minute).SetVal("OK")

	rows, err := c.LatestFundingRates(context.Background(), "BTCUSDT", "1h", 200)
	require.NoError(t, err)
	assert.Equal(t, inner.funding, rows)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarketCache_RepositoryErrorNotCached(t *testing.T) {
	client, mock := redismock.NewClientMock()
	sentinel := errors.New("db down")
	inner := &countingReader{err: sentinel}
	c := New(inner, client, time.Minute)

	mock.ExpectGet("mkt:funding:BTCUSDT:1h:200").RedisNil()

	_, err := c.LatestFundingRates(context.Background(), "BTCUSDT", "1h", 200)
	require.ErrorIs(t, err, sentinel)
	assert.NoError(t, mock.ExpectationsWereMet(), "no Set expected after a load failure")
}
