// internal/solver/evaluator.go
//
// Evaluation of a parameter snapshot by simulation.
//   - EvaluateExact plays every secret of a pool and returns the mean rounds.
//   - EvaluateAdaptive plays a pool sequentially and stops as soon as the
//     running mean has settled to within a precision.
//   - The ...Result variants also report how many games were played.
//
// Every call takes its own Params value, so concurrent evaluations of
// different snapshots never share mutable state.

package solver

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/robalobadob/mastermind/internal/mastermind"
	"github.com/robalobadob/mastermind/internal/metrics"
)

const (
	// warmupGames are always played before the stopping rule is consulted.
	warmupGames = 8
	// lookBack is how many preceding running means must agree with the current one.
	lookBack = 4
)

// ErrEmptyPool is returned when asked to evaluate zero games.
var ErrEmptyPool = errors.New("evaluation pool is empty")

// Result is the outcome of one evaluation.
type Result struct {
	Average float64 `json:"average"`
	Games   int     `json:"games"`   // games actually played
	Settled bool    `json:"settled"` // adaptive only: stopped before the pool ran out
}

// Evaluator runs simulated games for a Params snapshot.
type Evaluator struct {
	// Workers bounds parallel games in EvaluateExact; <= 1 runs sequentially.
	Workers int
	// Selector builds the GuessSelector for a snapshot; nil uses Heuristic.
	Selector func(Params) GuessSelector
	Logger   zerolog.Logger
}

// NewEvaluator returns an Evaluator with the given parallelism.
func NewEvaluator(workers int) *Evaluator {
	return &Evaluator{
		Workers: workers,
		Logger:  log.With().Str("component", "evaluator").Logger(),
	}
}

func (e *Evaluator) simulator(p Params) *Simulator {
	var sel GuessSelector = Heuristic{Params: p}
	if e.Selector != nil {
		sel = e.Selector(p)
	}
	return &Simulator{Selector: sel, Logger: e.Logger}
}

// EvaluateExact returns the mean rounds over every secret in pool.
func (e *Evaluator) EvaluateExact(ctx context.Context, pool []mastermind.Combination, p Params) (float64, error) {
	res, err := e.EvaluateExactResult(ctx, pool, p)
	return res.Average, err
}

// EvaluateAdaptive returns the running mean at which play settled, or the
// mean over the whole pool.
func (e *Evaluator) EvaluateAdaptive(ctx context.Context, pool []mastermind.Combination, precision float64, p Params) (float64, error) {
	res, err := e.EvaluateAdaptiveResult(ctx, pool, precision, p)
	return res.Average, err
}

// EvaluateExactResult plays every secret in pool.
func (e *Evaluator) EvaluateExactResult(ctx context.Context, pool []mastermind.Combination, p Params) (Result, error) {
	if len(pool) == 0 {
		return Result{}, ErrEmptyPool
	}
	defer observe("exact", time.Now(), len(pool))
	e.Logger.Debug().Int("pool", len(pool)).Int("workers", e.Workers).Msg("evaluating pool")

	rounds := make([]int, len(pool))
	if e.Workers <= 1 {
		sim := e.simulator(p)
		for i, secret := range pool {
			if err := ctx.Err(); err != nil {
				return Result{}, err
			}
			r, err := sim.Play(secret)
			if err != nil {
				return Result{}, err
			}
			rounds[i] = r
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.Workers)
		for i, secret := range pool {
			i, secret := i, secret
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				r, err := e.simulator(p).Play(secret)
				if err != nil {
					return err
				}
				rounds[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return Result{}, err
		}
	}

	total := 0
	for _, r := range rounds {
		total += r
	}
	return Result{Average: float64(total) / float64(len(pool)), Games: len(pool)}, nil
}

// EvaluateAdaptiveResult plays pool in order, keeping a running mean. After
// the warm-up games, it stops once each of the lookBack preceding running
// means is within precision of the current one. Otherwise the mean over the
// whole pool is returned.
func (e *Evaluator) EvaluateAdaptiveResult(ctx context.Context, pool []mastermind.Combination, precision float64, p Params) (res Result, err error) {
	if len(pool) == 0 {
		return Result{}, ErrEmptyPool
	}
	defer func(start time.Time) { observe("adaptive", start, res.Games) }(time.Now())

	sim := e.simulator(p)
	means := make([]float64, 0, len(pool))
	total := 0
	for i, secret := range pool {
		if err := ctx.Err(); err != nil {
			return Result{Games: i}, err
		}
		r, err := sim.Play(secret)
		if err != nil {
			return Result{Games: i}, err
		}
		total += r
		mean := float64(total) / float64(i+1)
		means = append(means, mean)

		if i+1 > warmupGames && settled(means, precision) {
			e.Logger.Debug().Int("games", i+1).Float64("precision", precision).Float64("average", mean).Msg("evaluation reached precision")
			return Result{Average: mean, Games: i + 1, Settled: true}, nil
		}
	}
	e.Logger.Debug().Int("games", len(pool)).Float64("precision", precision).Msg("evaluation exhausted pool")
	return Result{Average: means[len(means)-1], Games: len(pool)}, nil
}

// settled reports whether the lookBack means before the last are all within
// precision of the last one.
func settled(means []float64, precision float64) bool {
	n := len(means)
	if n <= lookBack {
		return false
	}
	current := means[n-1]
	for i := n - 2; i >= n-1-lookBack; i-- {
		if math.Abs(means[i]-current) > precision {
			return false
		}
	}
	return true
}

func observe(mode string, start time.Time, games int) {
	metrics.EvaluationDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	metrics.EvaluationGames.WithLabelValues(mode).Observe(float64(games))
}
