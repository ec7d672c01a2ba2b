package scoring

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coinlens/signalcore/internal/domain"
	"github.com/coinlens/signalcore/internal/stats"
)

func intPtr(v int) *int { return &v }

func TestScore_NoFeatures(t *testing.T) {
	result := NewEngine().Score(Features{})

	assert.Equal(t, domain.SignalNeutral, result.Signal)
	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 0.0, result.Confidence)
	assert.Empty(t, result.Reasons)
	assert.Empty(t, result.Factors)
}

func TestScore_FundingOverheated(t *testing.T) {
	result := NewEngine().Score(Features{FundingHeat: stats.Float(2.0)})

	assert.Equal(t, domain.SignalSell, result.Signal, "-2 crosses the sell threshold")
	assert.Equal(t, -2.0, result.Score)
	assert.Equal(t, 0.4, result.Confidence)
	require.Len(t, result.Reasons, 1)
	assert.Equal(t, "Funding overheated (z 2.00)", result.Reasons[0])

	require.Len(t, result.Factors, 1)
	assert.Equal(t, -2.0, result.Factors[0].Weight)
	assert.Equal(t, 2.0, result.Factors[0].Context["funding_heat"])
}

func TestScore_CombinedRulesInOrder(t *testing.T) {
	result := NewEngine().Score(Features{
		FundingHeat:   stats.Float(2.0),
		WhalePressure: stats.Float(1.5),
	})

	assert.Equal(t, -3.5, result.Score)
	assert.Equal(t, 0.7, result.Confidence)
	assert.Equal(t, domain.SignalSell, result.Signal)
	require.Len(t, result.Reasons, 2)
	assert.Equal(t, "Funding overheated (z 2.00)", result.Reasons[0])
	assert.Equal(t, "Whale inflow into exchanges", result.Reasons[1])
}

func TestScore_BuySide(t *testing.T) {
	result := NewEngine().Score(Features{
		FundingHeat:   stats.Float(-2.0), // +2
		WhalePressure: stats.Float(-1.5), // +1.5
	})

	assert.Equal(t, 3.5, result.Score)
	assert.Equal(t, domain.SignalBuy, result.Signal)
}

func TestScore_NeutralBand(t *testing.T) {
	result := NewEngine().Score(Features{
		TakerBuyRatio: stats.Float(0.6), // +0.8
	})

	assert.Equal(t, 0.8, result.Score)
	assert.Equal(t, domain.SignalNeutral, result.Signal)
	assert.Equal(t, 0.16, result.Confidence)
}

func TestScore_ConfidenceCapped(t *testing.T) {
	result := NewEngine().Score(Features{
		FundingHeat:    stats.Float(2.0),  // -2
		OIPct24h:       stats.Float(3.0),  // -1.5 (with positive heat)
		WhalePressure:  stats.Float(1.5),  // -1.5
		WhaleCexRatio:  stats.Float(0.8),  // -0.6
		Sentiment:      intPtr(80),        // -1
		TakerBuyRatio:  stats.Float(0.3),  // -0.8
		OrderImbalance: stats.Float(-0.2), // -0.5
	})

	assert.Equal(t, -7.9, result.Score)
	assert.Equal(t, 1.0, result.Confidence, "confidence caps at 1")
	assert.Equal(t, domain.SignalSell, result.Signal)
}

func TestScore_NilInputsNeverFire(t *testing.T) {
	// A rule referencing two fields needs both known.
	result := NewEngine().Score(Features{OIPct24h: stats.Float(5.0)})
	assert.Empty(t, result.Reasons, "OI build-up rule also needs funding heat")

	result = NewEngine().Score(Features{Volatility24h: stats.Float(10.0)})
	assert.Empty(t, result.Reasons, "volatility rules also need taker ratio")
}

func TestScore_RuleTable(t *testing.T) {
	tests := []struct {
		name   string
		input  Features
		weight float64
		reason string
	}{
		{"funding trend up", Features{FundingTrendPct: stats.Float(20)}, 0.6, "Funding momentum turning higher"},
		{"funding trend down", Features{FundingTrendPct: stats.Float(-20)}, -0.6, "Funding momentum rolling over"},
		{"oi flush", Features{OIPct24h: stats.Float(-3)}, 1.0, "Open interest flushing"},
		{"cex concentration", Features{WhaleCexRatio: stats.Float(0.7)}, -0.6, "Whale inflow concentrated on exchanges"},
		{"cold storage", Features{WhaleCexRatio: stats.Float(0.3)}, 0.6, "Whales distributing to cold storage"},
		{"etf inflow", Features{ETFFlow: stats.Float(500), ETFMa7: stats.Float(100)}, 1.2, "ETF inflow above weekly average"},
		{"etf outflow", Features{ETFFlow: stats.Float(-500), ETFMa7: stats.Float(-100)}, -1.2, "ETF outflow pressure"},
		{"etf inflow streak", Features{ETFStreak: intPtr(3)}, 0.9, "ETF inflow streak"},
		{"etf outflow streak", Features{ETFStreak: intPtr(-4)}, -0.9, "ETF outflow streak"},
		{"greed", Features{Sentiment: intPtr(70)}, -1.0, "Extreme greed zone"},
		{"fear", Features{Sentiment: intPtr(30)}, 1.0, "Fear zone (contrarian bullish)"},
		{"sellers", Features{TakerBuyRatio: stats.Float(0.4)}, -0.8, "Aggressive sellers dominating"},
		{"bid stacked", Features{OrderImbalance: stats.Float(0.2)}, 0.5, "Bid-side liquidity stacked"},
		{"ask stacked", Features{OrderImbalance: stats.Float(-0.2)}, -0.5, "Ask-side liquidity stacked"},
		{"volatile selling", Features{Volatility24h: stats.Float(6), TakerBuyRatio: stats.Float(0.4)},
			-0.6 - 0.8, "High volatility with aggressive sellers"},
		{"calm buying", Features{Volatility24h: stats.Float(1.0), TakerBuyRatio: stats.Float(0.6)},
			0.5 + 0.8, "Calm flow, buyers in control"},
		{"long flush", Features{LongLiq24h: stats.Float(400), ShortLiq24h: stats.Float(100)}, 0.8, "Long liquidation flush"},
		{"short squeeze", Features{LongLiq24h: stats.Float(100), ShortLiq24h: stats.Float(400)}, -0.8, "Short liquidation spike"},
	}

	engine := NewEngine()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Score(tt.input)
			assert.InDelta(t, tt.weight, result.Score, 1e-9)
			assert.Contains(t, result.Reasons, tt.reason)
		})
	}
}

func TestScore_ConcurrentUse(t *testing.T) {
	engine := NewEngine()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := engine.Score(Features{FundingHeat: stats.Float(2.0)})
			assert.Equal(t, -2.0, result.Score)
		}()
	}
	wg.Wait()
}
