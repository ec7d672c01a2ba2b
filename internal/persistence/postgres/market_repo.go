// Package postgres implements the persistence contracts on PostgreSQL via
// sqlx. Queries are point-in-time bounded and newest-first; every call runs
// under a per-operation timeout.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/coinlens/signalcore/internal/persistence"
)

// MarketRepo reads raw market and on-chain series for the feature builders.
type MarketRepo struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewMarketRepo creates a market data repository.
func NewMarketRepo(db *sqlx.DB, timeout time.Duration) *MarketRepo {
	return &MarketRepo{db: db, timeout: timeout}
}

func asOfTime(asOfMs int64) time.Time {
	if asOfMs <= 0 {
		return time.Now().UTC()
	}
	return time.UnixMilli(asOfMs).UTC()
}

// LatestFundingRates returns funding rows for a pair at the given
// granularity, newest first.
func (r *MarketRepo) LatestFundingRates(ctx context.Context, pair, interval string, limit int) ([]persistence.FundingRow, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT exchange, close, ts
		FROM funding_rates
		WHERE pair = $1 AND interval = $2
		ORDER BY ts DESC
		LIMIT $3`

	var rows []persistence.FundingRow
	if err := r.db.SelectContext(ctx, &rows, query, pair, interval, limit); err != nil {
		return nil, fmt.Errorf("failed to query funding rates: %w", err)
	}
	return rows, nil
}

// LatestOpenInterest returns aggregated open interest observations, newest
// first, bounded by the as-of instant.
func (r *MarketRepo) LatestOpenInterest(ctx context.Context, symbol, interval, unit string, limit int, asOfMs int64) ([]persistence.OpenInterestRow, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT close, ts
		FROM open_interest
		WHERE symbol = $1 AND interval = $2 AND unit = $3 AND ts <= $4
		ORDER BY ts DESC
		LIMIT $5`

	var rows []persistence.OpenInterestRow
	if err := r.db.SelectContext(ctx, &rows, query, symbol, interval, unit, asOfTime(asOfMs), limit); err != nil {
		return nil, fmt.Errorf("failed to query open interest: %w", err)
	}
	return rows, nil
}

// LatestWhaleTransfers returns transfers with block timestamps in
// (sinceSec, beforeSec], newest first. sinceSec <= 0 drops the lower bound.
func (r *MarketRepo) LatestWhaleTransfers(ctx context.Context, symbol string, sinceSec int64, limit int, beforeSec int64) ([]persistence.WhaleTransfer, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	before := time.Now().UTC()
	if beforeSec > 0 {
		before = time.Unix(beforeSec, 0).UTC()
	}

	var rows []persistence.WhaleTransfer
	if sinceSec > 0 {
		query := `
			SELECT amount_usd, to_address, from_address, block_timestamp
			FROM whale_transfers
			WHERE symbol = $1 AND block_timestamp >= $2 AND block_timestamp <= $3
			ORDER BY block_timestamp DESC
			LIMIT $4`
		if err := r.db.SelectContext(ctx, &rows, query, symbol, time.Unix(sinceSec, 0).UTC(), before, limit); err != nil {
			return nil, fmt.Errorf("failed to query whale transfers: %w", err)
		}
		return rows, nil
	}

	query := `
		SELECT amount_usd, to_address, from_address, block_timestamp
		FROM whale_transfers
		WHERE symbol = $1 AND block_timestamp <= $2
		ORDER BY block_timestamp DESC
		LIMIT $3`
	if err := r.db.SelectContext(ctx, &rows, query, symbol, before, limit); err != nil {
		return nil, fmt.Errorf("failed to query whale transfers: %w", err)
	}
	return rows, nil
}

// LatestETFFlows returns daily ETF flow rows, newest first.
func (r *MarketRepo) LatestETFFlows(ctx context.Context, limit int, asOfMs int64) ([]persistence.ETFFlowRow, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT flow_usd, ts
		FROM etf_flows
		WHERE ts <= $1
		ORDER BY ts DESC
		LIMIT $2`

	var rows []persistence.ETFFlowRow
	if err := r.db.SelectContext(ctx, &rows, query, asOfTime(asOfMs), limit); err != nil {
		return nil, fmt.Errorf("failed to query etf flows: %w", err)
	}
	return rows, nil
}

// FearGreedHistory returns fear/greed index rows, newest first.
func (r *MarketRepo) FearGreedHistory(ctx context.Context, limit int, asOfMs int64) ([]persistence.FearGreedRow, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT value, value_classification, ts
		FROM fear_greed_index
		WHERE ts <= $1
		ORDER BY ts DESC
		LIMIT $2`

	var rows []persistence.FearGreedRow
	if err := r.db.SelectContext(ctx, &rows, query, asOfTime(asOfMs), limit); err != nil {
		return nil, fmt.Errorf("failed to query fear greed history: %w", err)
	}
	return rows, nil
}

// LatestSpotOrderbook returns aggregated orderbook snapshots, newest first.
func (r *MarketRepo) LatestSpotOrderbook(ctx context.Context, symbol, interval string, limit int, asOfMs int64) ([]persistence.OrderbookRow, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT aggregated_bids_usd, aggregated_asks_usd,
		       aggregated_bids_quantity, aggregated_asks_quantity, ts
		FROM spot_orderbooks
		WHERE symbol = $1 AND interval = $2 AND ts <= $3
		ORDER BY ts DESC
		LIMIT $4`

	var rows []persistence.OrderbookRow
	if err := r.db.SelectContext(ctx, &rows, query, symbol, interval, asOfTime(asOfMs), limit); err != nil {
		return nil, fmt.Errorf("failed to query spot orderbook: %w", err)
	}
	return rows, nil
}

// LatestSpotTakerVolume returns aggregated taker volume rows, newest first.
func (r *MarketRepo) LatestSpotTakerVolume(ctx context.Context, symbol, interval string, limit int, asOfMs int64) ([]persistence.TakerVolumeRow, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT aggregated_buy_volume_usd, aggregated_sell_volume_usd, ts
		FROM spot_taker_volumes
		WHERE symbol = $1 AND interval = $2 AND ts <= $3
		ORDER BY ts DESC
		LIMIT $4`

	var rows []persistence.TakerVolumeRow
	if err := r.db.SelectContext(ctx, &rows, query, symbol, interval, asOfTime(asOfMs), limit); err != nil {
		return nil, fmt.Errorf("failed to query spot taker volume: %w", err)
	}
	return rows, nil
}

// LatestSpotPrices returns spot close rows for a pair, newest first.
func (r *MarketRepo) LatestSpotPrices(ctx context.Context, pair, interval string, limit int, asOfMs int64) ([]persistence.PriceRow, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT close, ts
		FROM spot_prices
		WHERE pair = $1 AND interval = $2 AND ts <= $3
		ORDER BY ts DESC
		LIMIT $4`

	var rows []persistence.PriceRow
	if err := r.db.SelectContext(ctx, &rows, query, pair, interval, asOfTime(asOfMs), limit); err != nil {
		return nil, fmt.Errorf("failed to query spot prices: %w", err)
	}
	return rows, nil
}

// LatestLiquidations returns aggregated liquidation rows, newest first.
func (r *MarketRepo) LatestLiquidations(ctx context.Context, symbol, interval string, limit int, asOfMs int64) ([]persistence.LiquidationRow, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := `
		SELECT aggregated_long_liquidation_usd, aggregated_short_liquidation_usd, ts
		FROM liquidations
		WHERE symbol = $1 AND interval = $2 AND ts <= $3
		ORDER BY ts DESC
		LIMIT $4`

	var rows []persistence.LiquidationRow
	if err := r.db.SelectContext(ctx, &rows, query, symbol, interval, asOfTime(asOfMs), limit); err != nil {
		return nil, fmt.Errorf("failed to query liquidations: %w", err)
	}
	return rows, nil
}
