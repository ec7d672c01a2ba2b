package features

import (
	"context"

	"github.com/coinlens/signalcore/internal/domain"
)

const fearGreedLimit = 60

// buildSentiment reduces the fear/greed history to the latest reading plus
// weekly and monthly averages of the integer index.
func (b *Builder) buildSentiment(ctx context.Context, asOfMs int64) (*domain.SentimentFeature, error) {
	rows, err := b.market.FearGreedHistory(ctx, fearGreedLimit, asOfMs)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}

	values := make([]*float64, len(rows))
	for i, row := range rows {
		if row.Value != nil {
			v := float64(*row.Value)
			values[i] = &v
		}
	}

	return &domain.SentimentFeature{
		Value:          rows[0].Value,
		Classification: rows[0].Classification,
		MA7:            headMean(values, 7),
		MA30:           headMean(values, 30),
	}, nil
}
