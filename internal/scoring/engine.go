// Package scoring implements the deterministic weighted rule set that turns
// a feature snapshot into a directional signal. The engine holds no mutable
// state and is safe for concurrent use on independent inputs.
package scoring

import (
	"fmt"
	"math"

	"github.com/coinlens/signalcore/internal/domain"
	"github.com/coinlens/signalcore/internal/stats"
)

const (
	buyThreshold      = 1.5
	sellThreshold     = -1.5
	confidenceDivisor = 5.0
)

// rule is one pure scoring rule: nil when it does not fire, otherwise the
// factor it contributes.
type rule func(f Features) *domain.Factor

// Engine scores feature sets against the fixed rule list.
type Engine struct {
	rules []rule
}

// NewEngine creates the rule engine with the production rule set.
func NewEngine() *Engine {
	return &Engine{rules: ruleSet()}
}

// Score evaluates every rule in order and folds the triggered weights into
// a SignalResult. A rule only fires when all its inputs are known.
func (e *Engine) Score(f Features) domain.SignalResult {
	score := 0.0
	reasons := make([]string, 0, len(e.rules))
	factors := make([]domain.Factor, 0, len(e.rules))

	for _, r := range e.rules {
		factor := r(f)
		if factor == nil {
			continue
		}
		score += factor.Weight
		reasons = append(reasons, factor.Reason)
		factors = append(factors, *factor)
	}

	score = stats.Round2(score)
	signal := domain.SignalNeutral
	switch {
	case score >= buyThreshold:
		signal = domain.SignalBuy
	case score <= sellThreshold:
		signal = domain.SignalSell
	}

	return domain.SignalResult{
		Signal:     signal,
		Score:      score,
		Confidence: stats.Round3(math.Min(math.Abs(score)/confidenceDivisor, 1.0)),
		Reasons:    reasons,
		Factors:    factors,
	}
}

// factor builds a triggered-rule record.
func factor(weight float64, reason string, context map[string]float64) *domain.Factor {
	return &domain.Factor{Reason: reason, Weight: weight, Context: context}
}

// ruleSet returns the fixed, ordered rule list. Order matters: reasons and
// factors are reported in evaluation order.
func ruleSet() []rule {
	return []rule{
		// Funding heat extremes are contrarian.
		func(f Features) *domain.Factor {
			if f.FundingHeat == nil || *f.FundingHeat <= 1.5 {
				return nil
			}
			return factor(-2, fmt.Sprintf("Funding overheated (z %.2f)", *f.FundingHeat),
				map[string]float64{"funding_heat": *f.FundingHeat})
		},
		func(f Features) *domain.Factor {
			if f.FundingHeat == nil || *f.FundingHeat >= -1.5 {
				return nil
			}
			return factor(2, fmt.Sprintf("Funding deeply discounted (z %.2f)", *f.FundingHeat),
				map[string]float64{"funding_heat": *f.FundingHeat})
		},
		func(f Features) *domain.Factor {
			if f.FundingTrendPct == nil || *f.FundingTrendPct <= 15 {
				return nil
			}
			return factor(0.6, "Funding momentum turning higher",
				map[string]float64{"funding_trend_pct": *f.FundingTrendPct})
		},
		func(f Features) *domain.Factor {
			if f.FundingTrendPct == nil || *f.FundingTrendPct >= -15 {
				return nil
			}
			return factor(-0.6, "Funding momentum rolling over",
				map[string]float64{"funding_trend_pct": *f.FundingTrendPct})
		},
		// Open interest vs funding bias.
		func(f Features) *domain.Factor {
			if f.OIPct24h == nil || f.FundingHeat == nil || *f.OIPct24h <= 2 || *f.FundingHeat <= 0.5 {
				return nil
			}
			return factor(-1.5, "Leverage build-up with positive funding",
				map[string]float64{"oi_pct_24h": *f.OIPct24h, "funding_heat": *f.FundingHeat})
		},
		func(f Features) *domain.Factor {
			if f.OIPct24h == nil || *f.OIPct24h >= -2 {
				return nil
			}
			return factor(1.0, "Open interest flushing",
				map[string]float64{"oi_pct_24h": *f.OIPct24h})
		},
		// Whale flow.
		func(f Features) *domain.Factor {
			if f.WhalePressure == nil || *f.WhalePressure <= 1.2 {
				return nil
			}
			return factor(-1.5, "Whale inflow into exchanges",
				map[string]float64{"whale_pressure": *f.WhalePressure})
		},
		func(f Features) *domain.Factor {
			if f.WhalePressure == nil || *f.WhalePressure >= -1.2 {
				return nil
			}
			return factor(1.5, "Whale accumulation off-exchange",
				map[string]float64{"whale_pressure": *f.WhalePressure})
		},
		func(f Features) *domain.Factor {
			if f.WhaleCexRatio == nil || *f.WhaleCexRatio <= 0.65 {
				return nil
			}
			return factor(-0.6, "Whale inflow concentrated on exchanges",
				map[string]float64{"whale_cex_ratio": *f.WhaleCexRatio})
		},
		func(f Features) *domain.Factor {
			if f.WhaleCexRatio == nil || *f.WhaleCexRatio >= 0.35 {
				return nil
			}
			return factor(0.6, "Whales distributing to cold storage",
				map[string]float64{"whale_cex_ratio": *f.WhaleCexRatio})
		},
		// ETF flows vs their weekly average.
		func(f Features) *domain.Factor {
			if f.ETFFlow == nil || f.ETFMa7 == nil || *f.ETFFlow <= 0 || *f.ETFFlow <= *f.ETFMa7 {
				return nil
			}
			return factor(1.2, "ETF inflow above weekly average",
				map[string]float64{"etf_flow": *f.ETFFlow, "etf_ma7": *f.ETFMa7})
		},
		func(f Features) *domain.Factor {
			if f.ETFFlow == nil || f.ETFMa7 == nil || *f.ETFFlow >= 0 || *f.ETFFlow >= *f.ETFMa7 {
				return nil
			}
			return factor(-1.2, "ETF outflow pressure",
				map[string]float64{"etf_flow": *f.ETFFlow, "etf_ma7": *f.ETFMa7})
		},
		func(f Features) *domain.Factor {
			if f.ETFStreak == nil || *f.ETFStreak < 3 {
				return nil
			}
			return factor(0.9, "ETF inflow streak",
				map[string]float64{"etf_streak": float64(*f.ETFStreak)})
		},
		func(f Features) *domain.Factor {
			if f.ETFStreak == nil || *f.ETFStreak > -3 {
				return nil
			}
			return factor(-0.9, "ETF outflow streak",
				map[string]float64{"etf_streak": float64(*f.ETFStreak)})
		},
		// Sentiment extremes are contrarian.
		func(f Features) *domain.Factor {
			if f.Sentiment == nil || *f.Sentiment < 70 {
				return nil
			}
			return factor(-1.0, "Extreme greed zone",
				map[string]float64{"sentiment": float64(*f.Sentiment)})
		},
		func(f Features) *domain.Factor {
			if f.Sentiment == nil || *f.Sentiment > 30 {
				return nil
			}
			return factor(1.0, "Fear zone (contrarian bullish)",
				map[string]float64{"sentiment": float64(*f.Sentiment)})
		},
		// Taker aggression.
		func(f Features) *domain.Factor {
			if f.TakerBuyRatio == nil || *f.TakerBuyRatio <= 0.55 {
				return nil
			}
			return factor(0.8, "Aggressive buyers dominating",
				map[string]float64{"taker_buy_ratio": *f.TakerBuyRatio})
		},
		func(f Features) *domain.Factor {
			if f.TakerBuyRatio == nil || *f.TakerBuyRatio >= 0.45 {
				return nil
			}
			return factor(-0.8, "Aggressive sellers dominating",
				map[string]float64{"taker_buy_ratio": *f.TakerBuyRatio})
		},
		// Orderbook depth skew.
		func(f Features) *domain.Factor {
			if f.OrderImbalance == nil || *f.OrderImbalance <= 0.1 {
				return nil
			}
			return factor(0.5, "Bid-side liquidity stacked",
				map[string]float64{"order_imbalance": *f.OrderImbalance})
		},
		func(f Features) *domain.Factor {
			if f.OrderImbalance == nil || *f.OrderImbalance >= -0.1 {
				return nil
			}
			return factor(-0.5, "Ask-side liquidity stacked",
				map[string]float64{"order_imbalance": *f.OrderImbalance})
		},
		// Volatility regime crossed with taker flow.
		func(f Features) *domain.Factor {
			if f.Volatility24h == nil || f.TakerBuyRatio == nil || *f.Volatility24h <= 5 || *f.TakerBuyRatio >= 0.45 {
				return nil
			}
			return factor(-0.6, "High volatility with aggressive sellers",
				map[string]float64{"volatility_24h": *f.Volatility24h, "taker_buy_ratio": *f.TakerBuyRatio})
		},
		func(f Features) *domain.Factor {
			if f.Volatility24h == nil || f.TakerBuyRatio == nil || *f.Volatility24h >= 1.5 || *f.TakerBuyRatio <= 0.55 {
				return nil
			}
			return factor(0.5, "Calm flow, buyers in control",
				map[string]float64{"volatility_24h": *f.Volatility24h, "taker_buy_ratio": *f.TakerBuyRatio})
		},
		// Liquidation skew.
		func(f Features) *domain.Factor {
			if f.LongLiq24h == nil || f.ShortLiq24h == nil || *f.LongLiq24h <= 1.5*(*f.ShortLiq24h) {
				return nil
			}
			return factor(0.8, "Long liquidation flush",
				map[string]float64{"long_liq_24h": *f.LongLiq24h, "short_liq_24h": *f.ShortLiq24h})
		},
		func(f Features) *domain.Factor {
			if f.LongLiq24h == nil || f.ShortLiq24h == nil || *f.ShortLiq24h <= 1.5*(*f.LongLiq24h) {
				return nil
			}
			return factor(-0.8, "Short liquidation spike",
				map[string]float64{"long_liq_24h": *f.LongLiq24h, "short_liq_24h": *f.ShortLiq24h})
		},
	}
}
