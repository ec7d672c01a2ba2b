package backtest

import (
	"time"

	"github.com/coinlens/signalcore/internal/domain"
)

// Options selects the snapshot population to evaluate. Zero values take the
// defaults: symbol BTC, window now-30d..now. Explicit but malformed dates
// are an error — only absent input is defaulted.
type Options struct {
	Symbol string
	Start  string
	End    string
}

// Report is the full backtest output for one symbol and window.
type Report struct {
	Symbol   string          `json:"symbol"`
	Start    time.Time       `json:"start"`
	End      time.Time       `json:"end"`
	Total    int             `json:"total"`
	Metrics  *Metrics        `json:"metrics"`
	Timeline []TimelinePoint `json:"timeline"`
}

// Metrics aggregates trade outcomes over the evaluated snapshots.
type Metrics struct {
	WinRate          float64 `json:"win_rate"`
	BuyTrades        int     `json:"buy_trades"`
	SellTrades       int     `json:"sell_trades"`
	NeutralTrades    int     `json:"neutral_trades"`
	AvgReturnBuyPct  float64 `json:"avg_return_buy_pct"`
	AvgReturnSellPct float64 `json:"avg_return_sell_pct"`
	AvgReturnAllPct  float64 `json:"avg_return_all_pct"`
	ExpectancyPct    float64 `json:"expectancy_pct"`
	MaxDrawdownPct   float64 `json:"max_drawdown_pct"`
}

// TimelinePoint is one step of the chronological equity replay. NEUTRAL
// snapshots are skipped; each point carries the trade return plus the
// running cumulative return and drawdown.
type TimelinePoint struct {
	GeneratedAt   time.Time        `json:"generated_at"`
	Signal        domain.Direction `json:"signal"`
	ReturnPct     float64          `json:"return_pct"`
	CumulativePct float64          `json:"cumulative_pct"`
	DrawdownPct   float64          `json:"drawdown_pct"`
}
