package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinlens/signalcore/internal/domain"
	"github.com/coinlens/signalcore/internal/stats"
)

func TestFromSnapshot_NilAndEmpty(t *testing.T) {
	assert.Equal(t, Features{}, FromSnapshot(nil))
	assert.Equal(t, Features{}, FromSnapshot(&domain.FeatureSnapshot{}))
}

func TestFromSnapshot_MapsSections(t *testing.T) {
	snap := &domain.FeatureSnapshot{
		Funding:      &domain.FundingFeature{HeatScore: stats.Float(1.8)},
		OpenInterest: &domain.OpenInterestFeature{PctChange24: stats.Float(3.2)},
		Whales: &domain.WhalesFeature{
			Window24h:     domain.WhaleWindow{InflowUSD: 3_000_000, OutflowUSD: 1_000_000},
			PressureScore: stats.Float(1.4),
		},
		ETF:       &domain.ETFFeature{LatestFlow: stats.Float(250), MA7: stats.Float(100)},
		Sentiment: &domain.SentimentFeature{Value: intPtr(72)},
		Microstructure: &domain.MicrostructureFeature{
			Orderbook: &domain.OrderbookFeature{Imbalance: stats.Float(0.15)},
			TakerFlow: &domain.TakerFlowFeature{BuyRatio: stats.Float(0.58)},
			Price:     &domain.PriceFeature{PctChange24: stats.Float(-4.5)},
		},
		Liquidations: &domain.LiquidationsFeature{
			Sum24h: domain.LiquidationSide{Longs: stats.Float(900), Shorts: stats.Float(300)},
		},
	}

	f := FromSnapshot(snap)
	require.NotNil(t, f.FundingHeat)
	assert.Equal(t, 1.8, *f.FundingHeat)
	assert.Equal(t, 3.2, *f.OIPct24h)
	assert.Equal(t, 1.4, *f.WhalePressure)
	require.NotNil(t, f.WhaleCexRatio)
	assert.Equal(t, 0.75, *f.WhaleCexRatio)
	assert.Equal(t, 250.0, *f.ETFFlow)
	assert.Equal(t, 100.0, *f.ETFMa7)
	assert.Equal(t, 72, *f.Sentiment)
	assert.Equal(t, 0.58, *f.TakerBuyRatio)
	assert.Equal(t, 0.15, *f.OrderImbalance)
	assert.Equal(t, 4.5, *f.Volatility24h, "volatility is the absolute price move")
	assert.Equal(t, 900.0, *f.LongLiq24h)
	assert.Equal(t, 300.0, *f.ShortLiq24h)

	assert.Nil(t, f.FundingTrendPct, "trend is caller-supplied")
	assert.Nil(t, f.ETFStreak, "streak is caller-supplied")
}

func TestPayload_OmitsUnknowns(t *testing.T) {
	f := Features{
		FundingHeat: stats.Float(1.8),
		Sentiment:   intPtr(72),
		ETFStreak:   intPtr(-3),
	}
	assert.Equal(t, map[string]float64{
		"funding_heat": 1.8,
		"sentiment":    72,
		"etf_streak":   -3,
	}, f.Payload())

	assert.Empty(t, Features{}.Payload())
}

func TestFromSnapshot_StaleWhalesIgnored(t *testing.T) {
	snap := &domain.FeatureSnapshot{
		Whales: &domain.WhalesFeature{
			Window24h:     domain.WhaleWindow{InflowUSD: 3_000_000},
			PressureScore: stats.Float(2.0),
			IsStale:       true,
		},
	}
	f := FromSnapshot(snap)
	assert.Nil(t, f.WhalePressure, "stale whale data must not score")
	assert.Nil(t, f.WhaleCexRatio)
}

func TestFromSnapshot_ZeroWhaleFlow(t *testing.T) {
	snap := &domain.FeatureSnapshot{
		Whales: &domain.WhalesFeature{PressureScore: stats.Float(0)},
	}
	f := FromSnapshot(snap)
	require.NotNil(t, f.WhalePressure)
	assert.Nil(t, f.WhaleCexRatio, "zero total flow has no inflow share")
}
