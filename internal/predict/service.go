// Package predict wraps a probability-producing model behind threshold
// bands. The model itself is an external collaborator; an untrained or
// unavailable model yields "unknown", not an error.
package predict

import (
	"context"

	"github.com/coinlens/signalcore/internal/domain"
)

const (
	buyProbability  = 0.55
	sellProbability = 0.45
)

// ModelTrainer produces an up-move probability for a feature payload. A nil
// probability with a nil error means the model has nothing to say (e.g. not
// trained yet).
type ModelTrainer interface {
	Predict(ctx context.Context, features map[string]float64) (*float64, error)
}

// Prediction is a model-backed decision with its raw probability.
type Prediction struct {
	Probability float64          `json:"probability"`
	Decision    domain.Direction `json:"decision"`
}

// Service maps model probabilities onto BUY/SELL/NEUTRAL bands.
type Service struct {
	model ModelTrainer
}

// NewService creates the predictor around a model collaborator.
func NewService(model ModelTrainer) *Service {
	return &Service{model: model}
}

// Predict asks the model for a probability and applies the decision bands.
// A nil model probability propagates as a nil prediction.
func (s *Service) Predict(ctx context.Context, features map[string]float64) (*Prediction, error) {
	p, err := s.model.Predict(ctx, features)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	decision := domain.SignalNeutral
	switch {
	case *p >= buyProbability:
		decision = domain.SignalBuy
	case *p <= sellProbability:
		decision = domain.SignalSell
	}
	return &Prediction{Probability: *p, Decision: decision}, nil
}
