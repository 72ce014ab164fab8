// internal/metrics/metrics.go
//
// Prometheus collectors for the solver, the tuner and the HTTP API.
// Registered on the default registry; the server exposes them on /metrics.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GamesSimulated counts finished simulated games.
	GamesSimulated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mastermind",
		Subsystem: "solver",
		Name:      "games_simulated_total",
		Help:      "Simulated games played to completion (solved or capped).",
	})

	// RoundsPerGame records rounds taken per simulated game, penalties included.
	RoundsPerGame = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mastermind",
		Subsystem: "solver",
		Name:      "rounds_per_game",
		Help:      "Rounds taken to solve a simulated game.",
		Buckets:   prometheus.LinearBuckets(1, 1, 16),
	})

	// RoundCapPenalties counts games that hit the round cap.
	RoundCapPenalties = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mastermind",
		Subsystem: "solver",
		Name:      "round_cap_penalties_total",
		Help:      "Simulated games that exhausted the round cap.",
	})

	// EvaluationDuration records wall time per evaluation pass by mode.
	EvaluationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mastermind",
		Subsystem: "evaluator",
		Name:      "duration_seconds",
		Help:      "Duration of an evaluation pass.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 14),
	}, []string{"mode"})

	// EvaluationGames records how many games an evaluation pass played.
	EvaluationGames = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "mastermind",
		Subsystem: "evaluator",
		Name:      "games",
		Help:      "Games played by an evaluation pass.",
		Buckets:   prometheus.ExponentialBuckets(8, 2, 10),
	}, []string{"mode"})

	// TuningBestAverage is the best average rounds of the last finished cycle.
	TuningBestAverage = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "mastermind",
		Subsystem: "tuner",
		Name:      "best_average_rounds",
		Help:      "Best average rounds found by the last tuning cycle.",
	})

	// TuningCycles counts completed tuning cycles.
	TuningCycles = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "mastermind",
		Subsystem: "tuner",
		Name:      "cycles_total",
		Help:      "Completed tuning cycles.",
	})

	// PerturbationsAccepted counts accepted single-step changes by direction.
	PerturbationsAccepted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "mastermind",
		Subsystem: "tuner",
		Name:      "perturbations_accepted_total",
		Help:      "Accepted parameter perturbations.",
	}, []string{"direction"})

	// HintDuration records time spent computing a hint over HTTP.
	HintDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "mastermind",
		Subsystem: "http",
		Name:      "hint_duration_seconds",
		Help:      "Time to compute a solver hint.",
		Buckets:   prometheus.DefBuckets,
	})
)
