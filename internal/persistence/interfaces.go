// Package persistence defines the read/write contracts the signal pipeline
// needs from storage, plus the row shapes they exchange. Implementations
// live in the postgres subpackage; the redis cache wraps MarketReader.
package persistence

import (
	"context"
	"time"

	"github.com/coinlens/signalcore/internal/domain"
)

// FundingRow is one funding-rate observation for an exchange.
type FundingRow struct {
	Exchange string    `json:"exchange" db:"exchange"`
	Close    *float64  `json:"close" db:"close"`
	Time     time.Time `json:"ts" db:"ts"`
}

// OpenInterestRow is one aggregated open-interest observation.
type OpenInterestRow struct {
	Close *float64  `json:"close" db:"close"`
	Time  time.Time `json:"ts" db:"ts"`
}

// WhaleTransfer is one large on-chain transfer with its labeled endpoints.
type WhaleTransfer struct {
	AmountUSD      *float64  `json:"amount_usd" db:"amount_usd"`
	ToAddress      string    `json:"to_address" db:"to_address"`
	FromAddress    string    `json:"from_address" db:"from_address"`
	BlockTimestamp time.Time `json:"block_timestamp" db:"block_timestamp"`
}

// ETFFlowRow is one daily net ETF flow observation.
type ETFFlowRow struct {
	FlowUSD *float64  `json:"flow_usd" db:"flow_usd"`
	Time    time.Time `json:"ts" db:"ts"`
}

// FearGreedRow is one fear/greed index observation.
type FearGreedRow struct {
	Value          *int      `json:"value" db:"value"`
	Classification string    `json:"value_classification" db:"value_classification"`
	Time           time.Time `json:"ts" db:"ts"`
}

// OrderbookRow is one aggregated spot orderbook snapshot.
type OrderbookRow struct {
	BidsUSD *float64  `json:"aggregated_bids_usd" db:"aggregated_bids_usd"`
	AsksUSD *float64  `json:"aggregated_asks_usd" db:"aggregated_asks_usd"`
	BidsQty *float64  `json:"aggregated_bids_quantity" db:"aggregated_bids_quantity"`
	AsksQty *float64  `json:"aggregated_asks_quantity" db:"aggregated_asks_quantity"`
	Time    time.Time `json:"ts" db:"ts"`
}

// TakerVolumeRow is one aggregated taker buy/sell volume observation.
type TakerVolumeRow struct {
	BuyVolumeUSD  *float64  `json:"aggregated_buy_volume_usd" db:"aggregated_buy_volume_usd"`
	SellVolumeUSD *float64  `json:"aggregated_sell_volume_usd" db:"aggregated_sell_volume_usd"`
	Time          time.Time `json:"ts" db:"ts"`
}

// PriceRow is one spot close observation.
type PriceRow struct {
	Close *float64  `json:"close" db:"close"`
	Time  time.Time `json:"ts" db:"ts"`
}

// LiquidationRow is one aggregated liquidation observation.
type LiquidationRow struct {
	LongUSD  *float64  `json:"aggregated_long_liquidation_usd" db:"aggregated_long_liquidation_usd"`
	ShortUSD *float64  `json:"aggregated_short_liquidation_usd" db:"aggregated_short_liquidation_usd"`
	Time     time.Time `json:"ts" db:"ts"`
}

// MarketReader is the point-in-time read contract the feature builders
// consume. All slices come back newest-first; asOfMs bounds results to rows
// observed no later than that UTC millisecond instant (zero means no bound).
// Implementations report real failures as errors; an empty result is not an
// error.
type MarketReader interface {
	LatestFundingRates(ctx context.Context, pair, interval string, limit int) ([]FundingRow, error)
	LatestOpenInterest(ctx context.Context, symbol, interval, unit string, limit int, asOfMs int64) ([]OpenInterestRow, error)
	// LatestWhaleTransfers bounds rows to blockTimestamp in (sinceSec, beforeSec];
	// sinceSec <= 0 means unbounded lookback.
	LatestWhaleTransfers(ctx context.Context, symbol string, sinceSec int64, limit int, beforeSec int64) ([]WhaleTransfer, error)
	LatestETFFlows(ctx context.Context, limit int, asOfMs int64) ([]ETFFlowRow, error)
	FearGreedHistory(ctx context.Context, limit int, asOfMs int64) ([]FearGreedRow, error)
	LatestSpotOrderbook(ctx context.Context, symbol, interval string, limit int, asOfMs int64) ([]OrderbookRow, error)
	LatestSpotTakerVolume(ctx context.Context, symbol, interval string, limit int, asOfMs int64) ([]TakerVolumeRow, error)
	LatestSpotPrices(ctx context.Context, pair, interval string, limit int, asOfMs int64) ([]PriceRow, error)
	LatestLiquidations(ctx context.Context, symbol, interval string, limit int, asOfMs int64) ([]LiquidationRow, error)
}

// SnapshotStore is the persisted-signal lifecycle: rows are written at
// generation time with a null future price, back-filled once the outcome is
// realized, and immutable thereafter.
type SnapshotStore interface {
	Insert(ctx context.Context, snap domain.SignalSnapshot) (string, error)
	FillOutcome(ctx context.Context, id string, priceFuture float64, direction domain.Label, magnitudePct float64) error
	// ListRealized returns snapshots for symbol with a non-null future price
	// inside [start, end], ordered by generated_at ascending.
	ListRealized(ctx context.Context, symbol string, start, end time.Time) ([]domain.SignalSnapshot, error)
}
