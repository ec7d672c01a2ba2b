// Package backtest replays persisted signal snapshots with realized
// outcomes and reports win rate, average returns, expectancy, drawdown, and
// an equity timeline.
package backtest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/coinlens/signalcore/internal/domain"
	"github.com/coinlens/signalcore/internal/stats"
)

const (
	defaultSymbol   = "BTC"
	defaultLookback = 30 * 24 * time.Hour
)

// acceptedLayouts are the explicit date formats Run accepts, tried in order.
var acceptedLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// SnapshotSource is the read side of the persisted-snapshot store the
// backtester replays: realized snapshots (non-null future price) for a
// symbol within a window, ordered by generation time ascending.
type SnapshotSource interface {
	ListRealized(ctx context.Context, symbol string, start, end time.Time) ([]domain.SignalSnapshot, error)
}

// Service evaluates historical signal performance.
type Service struct {
	store SnapshotSource
}

// NewService creates a backtest service over a snapshot store.
func NewService(store SnapshotSource) *Service {
	return &Service{store: store}
}

// Run resolves the options, loads the realized snapshots, and computes the
// report. An empty snapshot set is a zero report, not an error.
func (s *Service) Run(ctx context.Context, opts Options) (*Report, error) {
	symbol := strings.ToUpper(strings.TrimSpace(opts.Symbol))
	if symbol == "" {
		symbol = defaultSymbol
	}

	now := time.Now().UTC()
	start, err := resolveTime(opts.Start, now.Add(-defaultLookback))
	if err != nil {
		return nil, fmt.Errorf("invalid start date %q: %w", opts.Start, err)
	}
	end, err := resolveTime(opts.End, now)
	if err != nil {
		return nil, fmt.Errorf("invalid end date %q: %w", opts.End, err)
	}

	snaps, err := s.store.ListRealized(ctx, symbol, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshots: %w", err)
	}

	report := &Report{
		Symbol:   symbol,
		Start:    start,
		End:      end,
		Total:    len(snaps),
		Timeline: []TimelinePoint{},
	}
	if len(snaps) == 0 {
		return report, nil
	}

	report.Metrics = calculateMetrics(snaps)
	report.Timeline = buildTimeline(snaps)
	return report, nil
}

// resolveTime parses an explicit value or substitutes the fallback when the
// value is absent. Malformed input surfaces as an error.
func resolveTime(value string, fallback time.Time) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	var lastErr error
	for _, layout := range acceptedLayouts {
		t, err := time.ParseInLocation(layout, value, time.UTC)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// tradeReturn is the signed per-trade contribution: BUY keeps the labeled
// magnitude, SELL negates it, an unlabeled outcome counts as flat.
func tradeReturn(snap domain.SignalSnapshot, dir domain.Direction) float64 {
	magnitude := 0.0
	if snap.LabelMagnitude != nil {
		magnitude = *snap.LabelMagnitude
	}
	if dir == domain.SignalSell {
		return -magnitude
	}
	return magnitude
}

func isCorrect(snap domain.SignalSnapshot, dir domain.Direction) bool {
	if snap.LabelDirection == nil {
		return false
	}
	label := domain.Label(strings.ToUpper(*snap.LabelDirection))
	return (dir == domain.SignalBuy && label == domain.LabelUp) ||
		(dir == domain.SignalSell && label == domain.LabelDown)
}

// calculateMetrics aggregates the realized snapshot set. The drawdown here
// runs over BUY returns concatenated with SELL returns, not chronological
// order; the timeline replays chronologically. Both figures are kept as the
// dashboard historically computed them, so they can legitimately differ.
func calculateMetrics(snaps []domain.SignalSnapshot) *Metrics {
	var buyReturns, sellReturns []float64
	wins := 0
	neutral := 0

	for _, snap := range snaps {
		dir := domain.ParseDirection(snap.SignalRule)
		switch dir {
		case domain.SignalBuy:
			buyReturns = append(buyReturns, tradeReturn(snap, dir))
		case domain.SignalSell:
			sellReturns = append(sellReturns, tradeReturn(snap, dir))
		default:
			neutral++
			continue
		}
		if isCorrect(snap, dir) {
			wins++
		}
	}

	trades := len(buyReturns) + len(sellReturns)
	denominator := trades
	if denominator < 1 {
		denominator = 1
	}

	allReturns := append(append([]float64{}, buyReturns...), sellReturns...)
	avgAll := meanOrZero(allReturns)

	return &Metrics{
		WinRate:          stats.Round3(float64(wins) / float64(denominator)),
		BuyTrades:        len(buyReturns),
		SellTrades:       len(sellReturns),
		NeutralTrades:    neutral,
		AvgReturnBuyPct:  stats.Round3(meanOrZero(buyReturns)),
		AvgReturnSellPct: stats.Round3(meanOrZero(sellReturns)),
		AvgReturnAllPct:  stats.Round3(avgAll),
		ExpectancyPct:    stats.Round3(avgAll),
		MaxDrawdownPct:   stats.Round3(maxDrawdown(allReturns)),
	}
}

// buildTimeline replays the BUY/SELL equity path in chronological order.
func buildTimeline(snaps []domain.SignalSnapshot) []TimelinePoint {
	timeline := make([]TimelinePoint, 0, len(snaps))
	equity, peak := 1.0, 1.0

	for _, snap := range snaps {
		dir := domain.ParseDirection(snap.SignalRule)
		if dir == domain.SignalNeutral {
			continue
		}
		r := tradeReturn(snap, dir)
		equity *= 1 + r/100
		if equity > peak {
			peak = equity
		}
		timeline = append(timeline, TimelinePoint{
			GeneratedAt:   snap.GeneratedAt,
			Signal:        dir,
			ReturnPct:     stats.Round3(r),
			CumulativePct: stats.Round3((equity - 1) * 100),
			DrawdownPct:   stats.Round3((equity - peak) / peak * 100),
		})
	}
	return timeline
}

// maxDrawdown simulates a unit equity curve over the return sequence and
// reports the most negative peak-to-trough percentage, 0 when no returns.
func maxDrawdown(returns []float64) float64 {
	equity, peak := 1.0, 1.0
	maxDD := 0.0
	for _, r := range returns {
		equity *= 1 + r/100
		if equity > peak {
			peak = equity
		}
		if dd := (equity - peak) / peak * 100; dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

func meanOrZero(xs []float64) float64 {
	if m := stats.Mean(xs); m != nil {
		return *m
	}
	return 0.0
}
