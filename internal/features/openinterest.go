package features

import (
	"context"

	"github.com/coinlens/signalcore/internal/domain"
	"github.com/coinlens/signalcore/internal/stats"
)

const (
	openInterestLimit = 240
	openInterestUnit  = "usd"
	emaPeriod         = 6
)

// buildOpenInterest derives momentum features from the USD open-interest
// series at the requested interval.
func (b *Builder) buildOpenInterest(ctx context.Context, symbol, interval string, asOfMs int64) (*domain.OpenInterestFeature, error) {
	rows, err := b.market.LatestOpenInterest(ctx, symbol, interval, openInterestUnit, openInterestLimit, asOfMs)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	closes := make([]*float64, len(rows))
	for i, row := range rows {
		closes[i] = row.Close
	}

	// EMA runs oldest-to-newest over the known closes.
	ascending := make([]float64, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Close != nil {
			ascending = append(ascending, *rows[i].Close)
		}
	}

	return &domain.OpenInterestFeature{
		Latest:      rows[0].Close,
		PctChange6h: pctChangeAtOffset(closes, 6),
		PctChange24: pctChangeAtOffset(closes, 24),
		EMA6:        stats.EMA(ascending, emaPeriod),
	}, nil
}
