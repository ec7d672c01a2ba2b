package scoring

import (
	"math"

	"github.com/coinlens/signalcore/internal/domain"
	"github.com/coinlens/signalcore/internal/stats"
)

// Features is the flat, fully-optional input the rule engine evaluates.
// Every field may be nil; a rule only fires when all the values it
// references are known. Partial inputs are fine — the zero value scores
// NEUTRAL with an empty reason list.
type Features struct {
	FundingHeat     *float64
	FundingTrendPct *float64
	OIPct24h        *float64
	WhalePressure   *float64
	WhaleCexRatio   *float64
	ETFFlow         *float64
	ETFMa7          *float64
	ETFStreak       *int
	Sentiment       *int
	TakerBuyRatio   *float64
	OrderImbalance  *float64
	Volatility24h   *float64
	LongLiq24h      *float64
	ShortLiq24h     *float64
}

// Payload flattens the known fields into the numeric map the external
// model consumes. Unknown fields are omitted rather than zeroed.
func (f Features) Payload() map[string]float64 {
	payload := make(map[string]float64)
	put := func(key string, v *float64) {
		if v != nil {
			payload[key] = *v
		}
	}
	put("funding_heat", f.FundingHeat)
	put("funding_trend_pct", f.FundingTrendPct)
	put("oi_pct_24h", f.OIPct24h)
	put("whale_pressure", f.WhalePressure)
	put("whale_cex_ratio", f.WhaleCexRatio)
	put("etf_flow", f.ETFFlow)
	put("etf_ma7", f.ETFMa7)
	if f.ETFStreak != nil {
		payload["etf_streak"] = float64(*f.ETFStreak)
	}
	if f.Sentiment != nil {
		payload["sentiment"] = float64(*f.Sentiment)
	}
	put("taker_buy_ratio", f.TakerBuyRatio)
	put("order_imbalance", f.OrderImbalance)
	put("volatility_24h", f.Volatility24h)
	put("long_liq_24h", f.LongLiq24h)
	put("short_liq_24h", f.ShortLiq24h)
	return payload
}

// FromSnapshot maps a FeatureSnapshot onto engine input. The snapshot does
// not carry a funding trend or an ETF streak; callers tracking those series
// set the fields themselves before scoring.
func FromSnapshot(snap *domain.FeatureSnapshot) Features {
	var f Features
	if snap == nil {
		return f
	}
	if snap.Funding != nil {
		f.FundingHeat = snap.Funding.HeatScore
	}
	if snap.OpenInterest != nil {
		f.OIPct24h = snap.OpenInterest.PctChange24
	}
	if snap.Whales != nil && !snap.Whales.IsStale {
		f.WhalePressure = snap.Whales.PressureScore
		total := snap.Whales.Window24h.InflowUSD + snap.Whales.Window24h.OutflowUSD
		f.WhaleCexRatio = stats.SafeDiv(snap.Whales.Window24h.InflowUSD, total)
	}
	if snap.ETF != nil {
		f.ETFFlow = snap.ETF.LatestFlow
		f.ETFMa7 = snap.ETF.MA7
	}
	if snap.Sentiment != nil {
		f.Sentiment = snap.Sentiment.Value
	}
	if snap.Microstructure != nil {
		if tf := snap.Microstructure.TakerFlow; tf != nil {
			f.TakerBuyRatio = tf.BuyRatio
		}
		if ob := snap.Microstructure.Orderbook; ob != nil {
			f.OrderImbalance = ob.Imbalance
		}
		if p := snap.Microstructure.Price; p != nil && p.PctChange24 != nil {
			f.Volatility24h = stats.Float(math.Abs(*p.PctChange24))
		}
	}
	if snap.Liquidations != nil {
		f.LongLiq24h = snap.Liquidations.Sum24h.Longs
		f.ShortLiq24h = snap.Liquidations.Sum24h.Shorts
	}
	return f
}
