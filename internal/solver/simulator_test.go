package solver

import (
	"context"
	"math/rand"
	"runtime"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/mastermind/internal/mastermind"
)

// watchingSelector checks game-level invariants on every call before
// delegating to the heuristic.
type watchingSelector struct {
	t      *testing.T
	secret mastermind.Combination
	inner  GuessSelector
	prev   int
}

func (w *watchingSelector) SelectGuess(round int, candidates, history []mastermind.Combination) (mastermind.Combination, error) {
	if w.prev > 0 {
		assert.LessOrEqual(w.t, len(candidates), w.prev, "candidates must never grow (round %d)", round)
	}
	w.prev = len(candidates)
	assert.Contains(w.t, candidates, w.secret, "secret must stay a candidate (round %d)", round)
	assert.Len(w.t, history, round-1)
	return w.inner.SelectGuess(round, candidates, history)
}

// stubbornSelector always plays the same guess.
type stubbornSelector struct{ guess mastermind.Combination }

func (s stubbornSelector) SelectGuess(int, []mastermind.Combination, []mastermind.Combination) (mastermind.Combination, error) {
	return s.guess, nil
}

func quietSimulator(sel GuessSelector) *Simulator {
	return &Simulator{Selector: sel, Logger: zerolog.Nop()}
}

func TestPlay_OpeningSecretSolvedInOneRound(t *testing.T) {
	rounds, err := NewSimulator(DefaultParams()).Play(mastermind.MustParse("ABCD"))
	require.NoError(t, err)
	assert.Equal(t, 1, rounds)
}

func TestPlay_PruningInvariants(t *testing.T) {
	for _, s := range []string{"HHHH", "ABBA", "GECA", "DDEF"} {
		t.Run(s, func(t *testing.T) {
			secret := mastermind.MustParse(s)
			w := &watchingSelector{t: t, secret: secret, inner: Heuristic{Params: DefaultParams()}}
			rounds, err := quietSimulator(w).Play(secret)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, rounds, 2)
			assert.LessOrEqual(t, rounds, MaxRounds)
		})
	}
}

func TestPlay_RoundCapPenalty(t *testing.T) {
	sim := quietSimulator(stubbornSelector{guess: mastermind.MustParse("HHHH")})
	rounds, err := sim.Play(mastermind.MustParse("AAAA"))
	require.NoError(t, err, "the round cap is a penalty, not an error")
	assert.Equal(t, 16, rounds)

	trace, err := sim.Trace(mastermind.MustParse("AAAA"))
	require.NoError(t, err)
	assert.False(t, trace.Solved)
	assert.Len(t, trace.Steps, MaxRounds-1)
}

func TestPlay_SelectorErrorPropagates(t *testing.T) {
	sim := quietSimulator(failingSelector{})
	_, err := sim.Play(mastermind.MustParse("AAAA"))
	assert.ErrorIs(t, err, ErrNoGuess)
}

type failingSelector struct{}

func (failingSelector) SelectGuess(int, []mastermind.Combination, []mastermind.Combination) (mastermind.Combination, error) {
	return mastermind.Combination{}, ErrNoGuess
}

func TestTrace_RecordsRounds(t *testing.T) {
	secret := mastermind.MustParse("FEED")
	trace, err := quietSimulator(Heuristic{Params: DefaultParams()}).Trace(secret)
	require.NoError(t, err)
	require.True(t, trace.Solved)
	require.Len(t, trace.Steps, trace.Rounds)

	assert.Equal(t, mastermind.Opening, trace.Steps[0].Guess)
	assert.Equal(t, mastermind.Size, trace.Steps[0].Remaining)
	last := trace.Steps[len(trace.Steps)-1]
	assert.Equal(t, secret, last.Guess)
	assert.True(t, last.Feedback.Solved())
	for i := 1; i < len(trace.Steps); i++ {
		assert.LessOrEqual(t, trace.Steps[i].Remaining, trace.Steps[i-1].Remaining)
	}
}

func TestEvaluateExact(t *testing.T) {
	e := &Evaluator{Workers: 1, Logger: zerolog.Nop()}
	ctx := context.Background()

	avg, err := e.EvaluateExact(ctx, []mastermind.Combination{mastermind.Opening}, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 1.0, avg)

	pool := []mastermind.Combination{mastermind.Opening, mastermind.MustParse("BADC"), mastermind.MustParse("HGHG")}
	seq, err := e.EvaluateExact(ctx, pool, DefaultParams())
	require.NoError(t, err)

	par, err := (&Evaluator{Workers: 3, Logger: zerolog.Nop()}).EvaluateExact(ctx, pool, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, seq, par, "parallel evaluation must not change the result")

	_, err = e.EvaluateExact(ctx, nil, DefaultParams())
	assert.ErrorIs(t, err, ErrEmptyPool)
}

func TestEvaluate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := &Evaluator{Workers: 1, Logger: zerolog.Nop()}
	_, err := e.EvaluateExact(ctx, []mastermind.Combination{mastermind.Opening}, DefaultParams())
	assert.ErrorIs(t, err, context.Canceled)
	_, err = e.EvaluateAdaptive(ctx, []mastermind.Combination{mastermind.Opening}, 0.1, DefaultParams())
	assert.ErrorIs(t, err, context.Canceled)
}

// scriptedSelector plays FromIndex(round-1) in every round, so the secret
// FromIndex(k-1) is solved in exactly k rounds.
type scriptedSelector struct{}

func (scriptedSelector) SelectGuess(round int, _, _ []mastermind.Combination) (mastermind.Combination, error) {
	return mastermind.FromIndex(round - 1), nil
}

func scriptedEvaluator() *Evaluator {
	return &Evaluator{
		Selector: func(Params) GuessSelector { return scriptedSelector{} },
		Logger:   zerolog.Nop(),
	}
}

// solvedIn returns n secrets that scriptedSelector solves in the given rounds,
// cycling through rounds.
func solvedIn(n int, rounds ...int) []mastermind.Combination {
	pool := make([]mastermind.Combination, n)
	for i := range pool {
		pool[i] = mastermind.FromIndex(rounds[i%len(rounds)] - 1)
	}
	return pool
}

func TestEvaluateAdaptive(t *testing.T) {
	e := &Evaluator{Logger: zerolog.Nop()}
	ctx := context.Background()

	// identical games settle immediately after warm-up
	pool := make([]mastermind.Combination, 20)
	for i := range pool {
		pool[i] = mastermind.Opening
	}
	avg, err := e.EvaluateAdaptive(ctx, pool, 0.01, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 1.0, avg)

	// shorter than the warm-up: mean over the whole pool
	avg, err = e.EvaluateAdaptive(ctx, pool[:3], 0.01, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 1.0, avg)

	_, err = e.EvaluateAdaptive(ctx, nil, 0.01, DefaultParams())
	assert.ErrorIs(t, err, ErrEmptyPool)
}

func TestEvaluateAdaptiveResult_StopsAfterWarmup(t *testing.T) {
	e := scriptedEvaluator()
	ctx := context.Background()

	res, err := e.EvaluateAdaptiveResult(ctx, solvedIn(20, 3), 0.01, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, Result{Average: 3.0, Games: 9, Settled: true}, res)

	// any precision still plays the warm-up and one more game
	res, err = e.EvaluateAdaptiveResult(ctx, solvedIn(20, 1, 15), 100, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 9, res.Games)
	assert.True(t, res.Settled)
	assert.InDelta(t, 65.0/9, res.Average, 1e-9)

	// the settled mean is returned, not the mean over the pool
	pool := append(solvedIn(9, 3), solvedIn(11, 15)...)
	res, err = e.EvaluateAdaptiveResult(ctx, pool, 0.01, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, Result{Average: 3.0, Games: 9, Settled: true}, res)
}

func TestEvaluateAdaptiveResult_NeverSettles(t *testing.T) {
	e := scriptedEvaluator()
	ctx := context.Background()

	// running means alternate between 8 and below 8, so play runs to the end
	res, err := e.EvaluateAdaptiveResult(ctx, solvedIn(20, 1, 15), 0.01, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, Result{Average: 8.0, Games: 20}, res)

	exact, err := e.EvaluateExactResult(ctx, solvedIn(20, 1, 15), DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, res.Average, exact.Average)
	assert.Equal(t, 20, exact.Games)

	// a pool no longer than the warm-up never consults the stopping rule
	res, err = e.EvaluateAdaptiveResult(ctx, solvedIn(8, 3), 100, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, Result{Average: 3.0, Games: 8}, res)
}

func TestEvaluateExactResult_CountsRoundCap(t *testing.T) {
	e := scriptedEvaluator()
	// index 20 is never guessed, so that game scores the MaxRounds penalty
	pool := []mastermind.Combination{mastermind.FromIndex(0), mastermind.FromIndex(20)}
	res, err := e.EvaluateExactResult(context.Background(), pool, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, Result{Average: float64(1+MaxRounds) / 2, Games: 2}, res)
}

func TestSettled(t *testing.T) {
	tests := []struct {
		name      string
		means     []float64
		precision float64
		want      bool
	}{
		{"too short", []float64{5, 5, 5, 5}, 0.1, false},
		{"flat", []float64{9, 5, 5, 5, 5, 5}, 0, true},
		{"within", []float64{5.05, 4.95, 5.1, 5.0, 5.02}, 0.1, true},
		{"one outlier in window", []float64{5, 5.5, 5, 5, 5}, 0.1, false},
		{"outlier before window", []float64{9, 5.5, 5, 5, 5, 5, 5}, 0.1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, settled(tt.means, tt.precision))
		})
	}
}

// TestEvaluateExact_SampledPoolBand pins the default weights to their
// measured average on a fixed sample.
func TestEvaluateExact_SampledPoolBand(t *testing.T) {
	if testing.Short() {
		t.Skip("plays 300 full games")
	}
	pool, err := mastermind.SamplePool(rand.New(rand.NewSource(5)), 300)
	require.NoError(t, err)

	e := &Evaluator{Workers: runtime.NumCPU(), Logger: zerolog.Nop()}
	res, err := e.EvaluateExactResult(context.Background(), pool, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, 300, res.Games)
	assert.InDelta(t, 7.87, res.Average, 0.05)

	adaptive, err := e.EvaluateAdaptiveResult(context.Background(), pool, 0.02, DefaultParams())
	require.NoError(t, err)
	assert.InDelta(t, 7.76, adaptive.Average, 0.1)
	assert.LessOrEqual(t, adaptive.Games, 300)
}
