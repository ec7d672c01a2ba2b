package features

import (
	"context"

	"github.com/coinlens/signalcore/internal/domain"
	"github.com/coinlens/signalcore/internal/stats"
)

const (
	microFetchLimit  = 120
	takerSumWindow   = 24
	orderbookGranule = "1m"
)

// buildMicrostructure combines the latest orderbook depth, recent taker
// flow, and spot price action. The three series are independent; a missing
// one leaves its subsection nil.
func (b *Builder) buildMicrostructure(ctx context.Context, symbol, pair, interval string, asOfMs int64) (*domain.MicrostructureFeature, error) {
	micro := &domain.MicrostructureFeature{}

	obRows, err := b.market.LatestSpotOrderbook(ctx, symbol, orderbookGranule, microFetchLimit, asOfMs)
	if err != nil {
		return nil, err
	}
	if len(obRows) > 0 {
		latest := obRows[0]
		micro.Orderbook = &domain.OrderbookFeature{
			BidDepth:  latest.BidsUSD,
			AskDepth:  latest.AsksUSD,
			Imbalance: depthImbalance(latest.BidsUSD, latest.AsksUSD),
			BidQty:    latest.BidsQty,
			AskQty:    latest.AsksQty,
		}
	}

	takerRows, err := b.market.LatestSpotTakerVolume(ctx, symbol, interval, microFetchLimit, asOfMs)
	if err != nil {
		return nil, err
	}
	if len(takerRows) > 0 {
		buy, sell := 0.0, 0.0
		for i, row := range takerRows {
			if i == takerSumWindow {
				break
			}
			if row.BuyVolumeUSD != nil {
				buy += *row.BuyVolumeUSD
			}
			if row.SellVolumeUSD != nil {
				sell += *row.SellVolumeUSD
			}
		}
		micro.TakerFlow = &domain.TakerFlowFeature{
			BuyVolume:  stats.Float(buy),
			SellVolume: stats.Float(sell),
			BuyRatio:   stats.SafeDiv(buy, buy+sell),
		}
	}

	priceRows, err := b.market.LatestSpotPrices(ctx, pair, interval, microFetchLimit, asOfMs)
	if err != nil {
		return nil, err
	}
	if len(priceRows) > 0 {
		closes := make([]*float64, len(priceRows))
		for i, row := range priceRows {
			closes[i] = row.Close
		}
		micro.Price = &domain.PriceFeature{
			LastClose:   closes[0],
			PctChange24: pctChangeAtOffset(closes, 24),
		}
	}

	return micro, nil
}

// depthImbalance is (bid-ask)/(bid+ask). Unknown when both sides are
// unknown or the total depth is zero; a single known side treats the other
// as empty.
func depthImbalance(bid, ask *float64) *float64 {
	if bid == nil && ask == nil {
		return nil
	}
	b, a := 0.0, 0.0
	if bid != nil {
		b = *bid
	}
	if ask != nil {
		a = *ask
	}
	return stats.SafeDiv(b-a, b+a)
}
