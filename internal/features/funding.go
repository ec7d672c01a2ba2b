package features

import (
	"context"

	"github.com/coinlens/signalcore/internal/domain"
	"github.com/coinlens/signalcore/internal/persistence"
	"github.com/coinlens/signalcore/internal/stats"
)

const (
	fundingLimit1h    = 200
	fundingLimit1m    = 500
	fundingStatWindow = 60
)

// buildFunding aggregates funding rates per exchange and rolls them up into
// a cross-exchange heat score. Prefers the 1h series, falling back to 1m
// when the hourly series is empty.
func (b *Builder) buildFunding(ctx context.Context, pair string) (*domain.FundingFeature, error) {
	interval := "1h"
	rows, err := b.market.LatestFundingRates(ctx, pair, interval, fundingLimit1h)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		interval = "1m"
		rows, err = b.market.LatestFundingRates(ctx, pair, interval, fundingLimit1m)
		if err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 {
		return nil, nil
	}

	// Rows are newest-first; the first row per exchange is its latest.
	byExchange := make(map[string][]persistence.FundingRow)
	order := make([]string, 0)
	for _, row := range rows {
		if _, seen := byExchange[row.Exchange]; !seen {
			order = append(order, row.Exchange)
		}
		byExchange[row.Exchange] = append(byExchange[row.Exchange], row)
	}

	perExchange := make(map[string]*domain.ExchangeFunding, len(order))
	var zScores, latests []float64
	for _, exchange := range order {
		exRows := byExchange[exchange]

		window := make([]float64, 0, fundingStatWindow)
		for _, row := range exRows {
			if len(window) == fundingStatWindow {
				break
			}
			if row.Close != nil {
				window = append(window, *row.Close)
			}
		}

		ef := &domain.ExchangeFunding{
			Latest: exRows[0].Close,
			Mean:   stats.Mean(window),
			Std:    stats.StdDev(window),
		}
		if ef.Latest != nil {
			ef.ZScore = stats.ZScore(*ef.Latest, ef.Mean, ef.Std)
			latests = append(latests, *ef.Latest)
		}
		if ef.ZScore != nil {
			zScores = append(zScores, *ef.ZScore)
		}
		perExchange[exchange] = ef
	}

	heat := stats.Mean(zScores)
	if heat == nil {
		// No exchange produced a z-score; the heat contribution is flat.
		heat = stats.Float(0)
	}

	return &domain.FundingFeature{
		Interval:    interval,
		HeatScore:   heat,
		Consensus:   stats.Mean(latests),
		PerExchange: perExchange,
	}, nil
}
