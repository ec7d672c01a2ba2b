package domain

import (
	"strings"
	"time"
)

// Direction is the tradeable decision emitted by the rule engine and the
// model-backed predictor.
type Direction string

const (
	SignalBuy     Direction = "BUY"
	SignalSell    Direction = "SELL"
	SignalNeutral Direction = "NEUTRAL"
)

// Label marks the realized direction of a persisted signal once its future
// price is known.
type Label string

const (
	LabelUp   Label = "UP"
	LabelDown Label = "DOWN"
)

// ParseDirection normalizes a stored signal string (case-insensitive).
func ParseDirection(s string) Direction {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case string(SignalBuy):
		return SignalBuy
	case string(SignalSell):
		return SignalSell
	default:
		return SignalNeutral
	}
}

// Factor is one triggered rule with its weight and the numeric inputs that
// fired it, for auditability.
type Factor struct {
	Reason  string             `json:"reason"`
	Weight  float64            `json:"weight"`
	Context map[string]float64 `json:"context"`
}

// SignalResult is the output of the rule engine: a pure function of a
// feature set.
type SignalResult struct {
	Signal     Direction `json:"signal"`
	Score      float64   `json:"score"`
	Confidence float64   `json:"confidence"`
	Reasons    []string  `json:"reasons"`
	Factors    []Factor  `json:"factors"`
}

// SignalSnapshot is a persisted signal row. PriceFuture and the labels stay
// nil until the outcome is realized and back-filled; rows are immutable
// afterwards.
type SignalSnapshot struct {
	ID             string    `db:"id" json:"id"`
	Symbol         string    `db:"symbol" json:"symbol"`
	GeneratedAt    time.Time `db:"generated_at" json:"generated_at"`
	SignalRule     string    `db:"signal_rule" json:"signal_rule"`
	PriceFuture    *float64  `db:"price_future" json:"price_future"`
	LabelDirection *string   `db:"label_direction" json:"label_direction"`
	LabelMagnitude *float64  `db:"label_magnitude" json:"label_magnitude"`
}
