// Package metrics instruments the signal pipeline's entry points.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds the Prometheus metrics for the signal pipeline.
type Registry struct {
	SnapshotBuilds   *prometheus.CounterVec
	SnapshotDuration prometheus.Histogram
	SignalsEmitted   *prometheus.CounterVec
	BacktestRuns     prometheus.Counter
	ModelPredictions *prometheus.CounterVec
}

// NewRegistry creates the pipeline metrics and registers them with reg.
func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		SnapshotBuilds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalcore_snapshot_builds_total",
				Help: "Feature snapshot builds by symbol and outcome",
			},
			[]string{"symbol", "outcome"},
		),
		SnapshotDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "signalcore_snapshot_build_seconds",
				Help:    "Feature snapshot build duration in seconds",
				Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
		),
		SignalsEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalcore_signals_total",
				Help: "Rule engine signals by direction",
			},
			[]string{"signal"},
		),
		BacktestRuns: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "signalcore_backtest_runs_total",
				Help: "Backtest executions",
			},
		),
		ModelPredictions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signalcore_model_predictions_total",
				Help: "Model predictions by decision (unknown when untrained)",
			},
			[]string{"decision"},
		),
	}

	reg.MustRegister(
		r.SnapshotBuilds,
		r.SnapshotDuration,
		r.SignalsEmitted,
		r.BacktestRuns,
		r.ModelPredictions,
	)
	return r
}

// ObserveSnapshotBuild records one snapshot build.
func (r *Registry) ObserveSnapshotBuild(symbol string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.SnapshotBuilds.WithLabelValues(symbol, outcome).Inc()
	if err == nil {
		r.SnapshotDuration.Observe(d.Seconds())
	}
}
