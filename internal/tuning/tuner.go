// internal/tuning/tuner.go
//
// Single-dimension hill climbing over the heuristic's weights and bias.
//
// Each cycle visits every class weight and then the bias. A parameter is
// nudged up by step*value and evaluated; if that does not beat the cycle's
// best average it is restored, nudged down by the same amount and evaluated
// once more. Only strict improvements are kept. The step shrinks by the
// friction factor after every cycle.

package tuning

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/mastermind"
	"github.com/robalobadob/mastermind/internal/metrics"
	"github.com/robalobadob/mastermind/internal/solver"
)

// Objective scores a Params snapshot; lower is better.
type Objective interface {
	EvaluateExact(ctx context.Context, pool []mastermind.Combination, p solver.Params) (float64, error)
	EvaluateAdaptiveResult(ctx context.Context, pool []mastermind.Combination, precision float64, p solver.Params) (solver.Result, error)
}

// CycleReport summarizes one tuning cycle. It never carries the weights.
type CycleReport struct {
	Cycle    int     `json:"cycle"`
	Baseline float64 `json:"baseline"`
	Best     float64 `json:"best"`
	StepSize float64 `json:"stepSize"` // step used during the cycle
	Accepted int     `json:"accepted"`
	Games    int     `json:"games"` // games played by the cycle's trials
}

// Report is the outcome of Learn.
type Report struct {
	RunID   string        `json:"runId"`
	Initial float64       `json:"initial"`
	Final   float64       `json:"final"`
	Cycles  []CycleReport `json:"cycles"`
	Params  solver.Params `json:"params"`
}

// Recorder receives run progress. Failures are logged and do not stop tuning.
type Recorder interface {
	StartRun(ctx context.Context, runID string, cfg Config, iterations int) error
	RecordCycle(ctx context.Context, runID string, c CycleReport) error
	FinishRun(ctx context.Context, runID string, final float64) error
}

// Tuner owns the mutable parameter state during a run.
type Tuner struct {
	cfg       Config
	params    solver.Params
	step      float64
	rng       *rand.Rand
	objective Objective

	// Recorder is optional.
	Recorder Recorder
	Logger   zerolog.Logger
}

// New builds a Tuner starting from start. A nil objective uses the simulator
// based evaluator with cfg.Workers.
func New(cfg Config, start solver.Params, objective Objective) *Tuner {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := log.With().Str("component", "tuner").Logger()
	if objective == nil {
		ev := solver.NewEvaluator(cfg.Workers)
		ev.Logger = logger
		objective = ev
	}
	return &Tuner{
		cfg:       cfg,
		params:    start,
		step:      cfg.StepSize,
		rng:       rand.New(rand.NewSource(seed)),
		objective: objective,
		Logger:    logger,
	}
}

// Params returns a snapshot of the current parameters.
func (t *Tuner) Params() solver.Params { return t.params }

// StepSize returns the current perturbation fraction.
func (t *Tuner) StepSize() float64 { return t.step }

// Learn runs exactly iterations tuning cycles and dumps the final state to the log.
func (t *Tuner) Learn(ctx context.Context, iterations int) (Report, error) {
	if iterations < 0 {
		return Report{}, fmt.Errorf("iterations must be non-negative, got %d", iterations)
	}
	if err := t.params.Validate(); err != nil {
		return Report{}, err
	}
	rep := Report{RunID: uuid.NewString()}

	pool, err := mastermind.SamplePool(t.rng, t.cfg.BaselinePool)
	if err != nil {
		return rep, err
	}
	baseline, err := t.objective.EvaluateExact(ctx, pool, t.params)
	if err != nil {
		return rep, fmt.Errorf("baseline evaluation: %w", err)
	}
	rep.Initial = baseline
	// a run is only recorded once it has a baseline
	t.record(func() error { return t.Recorder.StartRun(ctx, rep.RunID, t.cfg, iterations) })

	for cycle := 1; cycle <= iterations; cycle++ {
		t.Logger.Info().Int("cycle", cycle).Float64("baseline", baseline).Float64("step", t.step).Msg("starting learning cycle")
		cr := CycleReport{Cycle: cycle, Baseline: baseline, Best: baseline, StepSize: t.step}

		for i := range t.params.Classes {
			i := i
			best, ok, err := t.climb(ctx, &cr,
				func(p solver.Params) float64 { return p.Weight(i) },
				func(p solver.Params, v float64) solver.Params { return p.WithWeight(i, v) })
			if err != nil {
				return rep, fmt.Errorf("cycle %d weight %d: %w", cycle, i, err)
			}
			if ok {
				cr.Accepted++
			}
			cr.Best = best
			t.Logger.Debug().Int("weight", i).Float64("average", best).Bool("accepted", ok).Msg("checked weight")
		}

		best, ok, err := t.climb(ctx, &cr,
			func(p solver.Params) float64 { return p.Bias },
			func(p solver.Params, v float64) solver.Params { return p.WithBias(v) })
		if err != nil {
			return rep, fmt.Errorf("cycle %d bias: %w", cycle, err)
		}
		if ok {
			cr.Accepted++
		}
		cr.Best = best
		t.Logger.Debug().Float64("average", best).Bool("accepted", ok).Msg("checked bias")

		t.step *= t.cfg.Friction
		t.Logger.Info().Int("cycle", cycle).Float64("best", cr.Best).Float64("baseline", cr.Baseline).Int("accepted", cr.Accepted).Int("games", cr.Games).Msg("learning cycle finished")
		metrics.TuningCycles.Inc()
		metrics.TuningBestAverage.Set(cr.Best)
		rep.Cycles = append(rep.Cycles, cr)
		t.record(func() error { return t.Recorder.RecordCycle(ctx, rep.RunID, cr) })

		baseline = cr.Best
	}

	rep.Final = baseline
	rep.Params = t.params
	t.record(func() error { return t.Recorder.FinishRun(ctx, rep.RunID, rep.Final) })
	t.dump()
	return rep, nil
}

// climb tries one step up and, failing that, one step down on a single
// parameter, measured against cr.Best. It returns the new best average and
// whether a change was kept. Games played are added to cr.
func (t *Tuner) climb(ctx context.Context, cr *CycleReport, get func(solver.Params) float64, set func(solver.Params, float64) solver.Params) (float64, bool, error) {
	best := cr.Best
	orig := get(t.params)
	change := orig * t.step
	for _, dir := range []struct {
		name string
		sign float64
	}{{"up", 1}, {"down", -1}} {
		candidate := set(t.params, orig+dir.sign*change)
		pool, err := mastermind.SamplePool(t.rng, t.cfg.TrialPool)
		if err != nil {
			return best, false, err
		}
		res, err := t.objective.EvaluateAdaptiveResult(ctx, pool, t.step, candidate)
		if err != nil {
			return best, false, err
		}
		cr.Games += res.Games
		if res.Average < best {
			t.params = candidate
			metrics.PerturbationsAccepted.WithLabelValues(dir.name).Inc()
			return res.Average, true, nil
		}
	}
	return best, false, nil
}

func (t *Tuner) record(fn func() error) {
	if t.Recorder == nil {
		return
	}
	if err := fn(); err != nil {
		t.Logger.Warn().Err(err).Msg("record tuning progress")
	}
}

// dump logs every weight and the bias.
func (t *Tuner) dump() {
	t.Logger.Info().Msg("learning cycles terminated")
	for _, cw := range t.params.Classes {
		t.Logger.Info().Str("class", cw.Class.String()).Float64("weight", cw.Weight).Msg("weight")
	}
	t.Logger.Info().Float64("bias", t.params.Bias).Msg("bias")
}
