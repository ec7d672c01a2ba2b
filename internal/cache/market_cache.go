// Package cache wraps the market reader with a redis read-through layer.
// The cache is an optimization, never a dependency: redis failures log and
// fall through to the underlying repository.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/coinlens/signalcore/internal/persistence"
)

// MarketCache is a persistence.MarketReader that caches query results in
// redis under point-in-time keys.
type MarketCache struct {
	inner  persistence.MarketReader
	client *redis.Client
	ttl    time.Duration
}

var _ persistence.MarketReader = (*MarketCache)(nil)

// New wraps a market reader with a redis cache.
func New(inner persistence.MarketReader, client *redis.Client, ttl time.Duration) *MarketCache {
	return &MarketCache{inner: inner, client: client, ttl: ttl}
}

// fetchCached loads a cached JSON payload or falls through to the loader
// and stores its result. Keys embed the as-of bound, so cached reads stay
// point-in-time correct.
func fetchCached[T any](ctx context.Context, c *MarketCache, key string, load func() ([]T, error)) ([]T, error) {
	if cached, err := c.client.Get(ctx, key).Result(); err == nil {
		var rows []T
		if err := json.Unmarshal([]byte(cached), &rows); err == nil {
			return rows, nil
		}
		log.Debug().Str("key", key).Msg("discarding undecodable cache entry")
	} else if err != redis.Nil {
		log.Debug().Err(err).Str("key", key).Msg("cache read failed, falling through")
	}

	rows, err := load()
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(rows); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			log.Debug().Err(err).Str("key", key).Msg("cache write failed")
		}
	}
	return rows, nil
}

func (c *MarketCache) LatestFundingRates(ctx context.Context, pair, interval string, limit int) ([]persistence.FundingRow, error) {
	key := fmt.Sprintf("mkt:funding:%s:%s:%d", pair, interval, limit)
	return fetchCached(ctx, c, key, func() ([]persistence.FundingRow, error) {
		return c.inner.LatestFundingRates(ctx, pair, interval, limit)
	})
}

func (c *MarketCache) LatestOpenInterest(ctx context.Context, symbol, interval, unit string, limit int, asOfMs int64) ([]persistence.OpenInterestRow, error) {
	key := fmt.Sprintf("mkt:oi:%s:%s:%s:%d:%d", symbol, interval, unit, limit, asOfMs)
	return fetchCached(ctx, c, key, func() ([]persistence.OpenInterestRow, error) {
		return c.inner.LatestOpenInterest(ctx, symbol, interval, unit, limit, asOfMs)
	})
}

func (c *MarketCache) LatestWhaleTransfers(ctx context.Context, symbol string, sinceSec int64, limit int, beforeSec int64) ([]persistence.WhaleTransfer, error) {
	key := fmt.Sprintf("mkt:whales:%s:%d:%d:%d", symbol, sinceSec, limit, beforeSec)
	return fetchCached(ctx, c, key, func() ([]persistence.WhaleTransfer, error) {
		return c.inner.LatestWhaleTransfers(ctx, symbol, sinceSec, limit, beforeSec)
	})
}

func (c *MarketCache) LatestETFFlows(ctx context.Context, limit int, asOfMs int64) ([]persistence.ETFFlowRow, error) {
	key := fmt.Sprintf("mkt:etf:%d:%d", limit, asOfMs)
	return fetchCached(ctx, c, key, func() ([]persistence.ETFFlowRow, error) {
		return c.inner.LatestETFFlows(ctx, limit, asOfMs)
	})
}

func (c *MarketCache) FearGreedHistory(ctx context.Context, limit int, asOfMs int64) ([]persistence.FearGreedRow, error) {
	key := fmt.Sprintf("mkt:feargreed:%d:%d", limit, asOfMs)
	return fetchCached(ctx, c, key, func() ([]persistence.FearGreedRow, error) {
		return c.inner.FearGreedHistory(ctx, limit, asOfMs)
	})
}

func (c *MarketCache) LatestSpotOrderbook(ctx context.Context, symbol, interval string, limit int, asOfMs int64) ([]persistence.OrderbookRow, error) {
	key := fmt.Sprintf("mkt:orderbook:%s:%s:%d:%d", symbol, interval, limit, asOfMs)
	return fetchCached(ctx, c, key, func() ([]persistence.OrderbookRow, error) {
		return c.inner.LatestSpotOrderbook(ctx, symbol, interval, limit, asOfMs)
	})
}

func (c *MarketCache) LatestSpotTakerVolume(ctx context.Context, symbol, interval string, limit int, asOfMs int64) ([]persistence.TakerVolumeRow, error) {
	key := fmt.Sprintf("mkt:taker:%s:%s:%d:%d", symbol, interval, limit, asOfMs)
	return fetchCached(ctx, c, key, func() ([]persistence.TakerVolumeRow, error) {
		return c.inner.LatestSpotTakerVolume(ctx, symbol, interval, limit, asOfMs)
	})
}

func (c *MarketCache) LatestSpotPrices(ctx context.Context, pair, interval string, limit int, asOfMs int64) ([]persistence.PriceRow, error) {
	key := fmt.Sprintf("mkt:prices:%s:%s:%d:%d", pair, interval, limit, asOfMs)
	return fetchCached(ctx, c, key, func() ([]persistence.PriceRow, error) {
		return c.inner.LatestSpotPrices(ctx, pair, interval, limit, asOfMs)
	})
}

func (c *MarketCache) LatestLiquidations(ctx context.Context, symbol, interval string, limit int, asOfMs int64) ([]persistence.LiquidationRow, error) {
	key := fmt.Sprintf("mkt:liq:%s:%s:%d:%d", symbol, interval, limit, asOfMs)
	return fetchCached(ctx, c, key, func() ([]persistence.LiquidationRow, error) {
		return c.inner.LatestLiquidations(ctx, symbol, interval, limit, asOfMs)
	})
}
