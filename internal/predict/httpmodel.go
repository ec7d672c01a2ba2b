package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// HTTPModel is a ModelTrainer backed by an external scoring endpoint. Calls
// run through a rate limiter and a circuit breaker so a misbehaving model
// service cannot stall signal generation.
type HTTPModel struct {
	endpoint string
	client   *http.Client
	breaker  *gobreaker.CircuitBreaker
	limiter  *rate.Limiter
}

// NewHTTPModel creates an HTTP model client for the given endpoint. rps
// bounds outbound request rate; values <= 0 disable limiting.
func NewHTTPModel(endpoint string, rps float64) *HTTPModel {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "model",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).
				Msg("model circuit breaker state change")
		},
	})
	return &HTTPModel{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 10 * time.Second},
		breaker:  breaker,
		limiter:  rate.NewLimiter(limit, 1),
	}
}

type modelResponse struct {
	Probability *float64 `json:"probability"`
}

// Predict posts the feature payload and returns the model's probability.
// HTTP 204 means the model is not trained yet and maps to a nil probability.
func (m *HTTPModel) Predict(ctx context.Context, features map[string]float64) (*float64, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	result, err := m.breaker.Execute(func() (interface{}, error) {
		body, err := json.Marshal(map[string]interface{}{"features": features})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal feature payload: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create model request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := m.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("model request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNoContent {
			return (*float64)(nil), nil
		}
		if resp.StatusCode != http.StatusOK {
			payload, _ := io.ReadAll(resp.Body)
			return nil, fmt.Errorf("model API error: %d %s", resp.StatusCode, string(payload))
		}

		var parsed modelResponse
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return nil, fmt.Errorf("failed to decode model response: %w", err)
		}
		return parsed.Probability, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*float64), nil
}
