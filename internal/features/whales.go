package features

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/coinlens/signalcore/internal/domain"
	"github.com/coinlens/signalcore/internal/persistence"
	"github.com/coinlens/signalcore/internal/stats"
)

const (
	whaleFetchLimit  = 2000
	whaleWindow7dSec = 7 * 24 * 3600
	whaleWindow1dSec = 24 * 3600
)

// buildWhales aggregates labeled exchange inflow/outflow over 7-day and
// 1-day windows ending at the reference instant. When nothing recent exists
// it falls back to the most recent transfers on record and flags the result
// stale rather than dropping the section.
func (b *Builder) buildWhales(ctx context.Context, symbol string, asOfMs int64) (*domain.WhalesFeature, error) {
	refSec := asOfMs / 1000
	sinceSec := refSec - whaleWindow7dSec

	rows, err := b.market.LatestWhaleTransfers(ctx, symbol, sinceSec, whaleFetchLimit, refSec)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		// Nothing in the last 7 days; take whatever is newest regardless of age.
		rows, err = b.market.LatestWhaleTransfers(ctx, symbol, 0, whaleFetchLimit, refSec)
		if err != nil {
			return nil, err
		}
	}
	if len(rows) == 0 {
		return &domain.WhalesFeature{IsStale: true}, nil
	}

	ref := time.Unix(refSec, 0).UTC()
	floor7d := ref.Add(-whaleWindow7dSec * time.Second)
	floor1d := ref.Add(-whaleWindow1dSec * time.Second)

	stale := false
	window7d := make([]persistence.WhaleTransfer, 0, len(rows))
	for _, row := range rows {
		if !row.BlockTimestamp.Before(floor7d) && !row.BlockTimestamp.After(ref) {
			window7d = append(window7d, row)
		}
	}
	if len(window7d) == 0 {
		// Old data only; treat the whole fetch as the 7d window and flag it.
		window7d = rows
		stale = true
	}

	window1d := make([]persistence.WhaleTransfer, 0, len(window7d))
	for _, row := range window7d {
		if !row.BlockTimestamp.Before(floor1d) {
			window1d = append(window1d, row)
		}
	}
	if len(window1d) == 0 {
		stale = true
	}

	agg7d := b.aggregateWindow(window7d)
	agg1d := b.aggregateWindow(window1d)

	dayBuckets := distinctUTCDays(window7d)
	avgDailyMagnitude := (agg7d.InflowUSD + agg7d.OutflowUSD) / math.Max(float64(dayBuckets), 1)
	pressure := agg1d.NetUSD / math.Max(avgDailyMagnitude, 1)

	return &domain.WhalesFeature{
		Window24h:     agg1d,
		Window7d:      agg7d,
		PressureScore: stats.Float(pressure),
		SampleSize: domain.WhaleSampleSize{
			D24: len(window1d),
			D7:  len(window7d),
		},
		IsStale: stale,
	}, nil
}

// aggregateWindow sums inflow/outflow over a window. Inflow means the
// destination label matched an exchange keyword, outflow means the source
// did; transfers matching neither are ignored.
func (b *Builder) aggregateWindow(rows []persistence.WhaleTransfer) domain.WhaleWindow {
	var w domain.WhaleWindow
	for _, row := range rows {
		amount := 0.0
		if row.AmountUSD != nil {
			amount = *row.AmountUSD
		}
		if b.matchesExchange(row.ToAddress) {
			w.InflowUSD += amount
			w.CountInflow++
		}
		if b.matchesExchange(row.FromAddress) {
			w.OutflowUSD += amount
			w.CountOutflow++
		}
	}
	w.NetUSD = w.InflowUSD - w.OutflowUSD
	return w
}

func (b *Builder) matchesExchange(label string) bool {
	if label == "" {
		return false
	}
	lowered := strings.ToLower(label)
	for _, kw := range b.exchangeKeywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// distinctUTCDays counts distinct UTC calendar dates among the block
// timestamps, floored to 1 so it is safe as a denominator.
func distinctUTCDays(rows []persistence.WhaleTransfer) int {
	days := make(map[string]struct{}, 8)
	for _, row := range rows {
		days[row.BlockTimestamp.UTC().Format("2006-01-02")] = struct{}{}
	}
	if len(days) == 0 {
		return 1
	}
	return len(days)
}
