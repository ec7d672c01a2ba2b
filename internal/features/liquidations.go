package features

import (
	"context"

	"github.com/coinlens/signalcore/internal/domain"
	"github.com/coinlens/signalcore/internal/persistence"
	"github.com/coinlens/signalcore/internal/stats"
)

const (
	liquidationLimit     = 120
	liquidationSumWindow = 24
)

// buildLiquidations reduces the liquidation series to the latest long/short
// split and the sums over the newest 24 rows.
func (b *Builder) buildLiquidations(ctx context.Context, symbol, interval string, asOfMs int64) (*domain.LiquidationsFeature, error) {
	rows, err := b.market.LatestLiquidations(ctx, symbol, interval, liquidationLimit, asOfMs)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	return &domain.LiquidationsFeature{
		Latest: domain.LiquidationSide{
			Longs:  rows[0].LongUSD,
			Shorts: rows[0].ShortUSD,
		},
		Sum24h: sumLiquidations(rows, liquidationSumWindow),
	}, nil
}

// sumLiquidations sums each side over the newest n rows, skipping unknowns.
// A side with no known value at all stays unknown rather than zero.
func sumLiquidations(rows []persistence.LiquidationRow, n int) domain.LiquidationSide {
	if n > len(rows) {
		n = len(rows)
	}
	var side domain.LiquidationSide
	longs, shorts := 0.0, 0.0
	haveLongs, haveShorts := false, false
	for _, row := range rows[:n] {
		if row.LongUSD != nil {
			longs += *row.LongUSD
			haveLongs = true
		}
		if row.ShortUSD != nil {
			shorts += *row.ShortUSD
			haveShorts = true
		}
	}
	if haveLongs {
		side.Longs = stats.Float(longs)
	}
	if haveShorts {
		side.Shorts = stats.Float(shorts)
	}
	return side
}
