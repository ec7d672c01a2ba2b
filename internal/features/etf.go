package features

import (
	"context"

	"github.com/coinlens/signalcore/internal/domain"
	"github.com/coinlens/signalcore/internal/stats"
)

const etfFlowLimit = 60

// buildETF reduces the daily ETF flow series to its latest value and weekly
// and monthly simple averages.
func (b *Builder) buildETF(ctx context.Context, asOfMs int64) (*domain.ETFFeature, error) {
	rows, err := b.market.LatestETFFlows(ctx, etfFlowLimit, asOfMs)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	flows := make([]*float64, len(rows))
	for i, row := range rows {
		flows[i] = row.FlowUSD
	}

	return &domain.ETFFeature{
		LatestFlow: flows[0],
		MA7:        headMean(flows, 7),
		MA30:       headMean(flows, 30),
	}, nil
}

// headMean averages the newest n values of a newest-first series, skipping
// unknowns. Nil when no known value falls in the head.
func headMean(values []*float64, n int) *float64 {
	if n > len(values) {
		n = len(values)
	}
	known := make([]float64, 0, n)
	for _, v := range values[:n] {
		if v != nil {
			known = append(known, *v)
		}
	}
	return stats.Mean(known)
}
