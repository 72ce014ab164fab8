package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/mastermind/internal/mastermind"
)

// candidatesAfter returns the candidates left after guessing guesses against secret.
func candidatesAfter(secret mastermind.Combination, guesses ...string) []mastermind.Combination {
	cands := mastermind.CloneUniverse()
	for _, g := range guesses {
		guess := mastermind.MustParse(g)
		cands = mastermind.Consistent(cands, guess, mastermind.Compare(guess, secret))
	}
	return cands
}

// literalSelect scores every guess exactly as the heuristic is described:
// per candidate, add the weight of every class the feedback is not in.
func literalSelect(cands []mastermind.Combination, last, secondLast *mastermind.Combination, p Params) (mastermind.Combination, bool) {
	var best mastermind.Combination
	found := false
	bestScore := 0.0
	for _, guess := range mastermind.Universe() {
		score := p.Bias * 13 * float64(len(cands))
		for _, d := range cands {
			r := mastermind.Compare(d, guess)
			for _, cw := range p.Classes {
				if !cw.Class.Equivalent(r) {
					score += cw.Weight
				}
			}
		}
		if found && score < bestScore {
			continue
		}
		if last != nil && guess == *last {
			continue
		}
		if secondLast != nil && guess == *secondLast {
			continue
		}
		best, bestScore, found = guess, score, true
	}
	return best, found
}

// integerParams keeps every partial sum exactly representable.
func integerParams() Params {
	var w [mastermind.NumClasses]float64
	for i := range w {
		w[i] = float64(mastermind.NumClasses - i)
	}
	return NewParams(w, 0.5)
}

func TestSelect_EmptyCandidatesIsInvariant(t *testing.T) {
	_, err := Select(3, nil, nil, nil, DefaultParams())
	require.ErrorIs(t, err, ErrNoCandidates)
	assert.True(t, IsInvariant(err))
}

func TestSelect_EndgameShortcut(t *testing.T) {
	a, b := mastermind.MustParse("HAHA"), mastermind.MustParse("GFED")

	got, err := Select(5, []mastermind.Combination{a, b}, nil, nil, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, a, got)

	got, err = Select(7, []mastermind.Combination{b}, nil, nil, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, b, got)

	// the shortcut wins over the opening move
	got, err = Select(1, []mastermind.Combination{b, a}, nil, nil, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestSelect_OpeningMove(t *testing.T) {
	got, err := Select(1, mastermind.CloneUniverse(), nil, nil, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, mastermind.MustParse("ABCD"), got)
}

func TestSelect_MatchesLiteralScoring(t *testing.T) {
	p := integerParams()
	sets := [][]mastermind.Combination{
		candidatesAfter(mastermind.MustParse("FACE"), "ABCD", "EEFF"),
		candidatesAfter(mastermind.MustParse("HHGA"), "ABCD", "EFGH"),
		candidatesAfter(mastermind.MustParse("BBBB"), "ABCD", "AABB"),
	}
	for _, cands := range sets {
		require.Greater(t, len(cands), 2)
		want, ok := literalSelect(cands, nil, nil, p)
		require.True(t, ok)
		got, err := Select(3, cands, nil, nil, p)
		require.NoError(t, err)
		assert.Equal(t, want, got, "selection must follow literal scoring with last-wins ties")
	}
}

func TestSelect_AntiRepetition(t *testing.T) {
	p := integerParams()
	cands := candidatesAfter(mastermind.MustParse("DEAD"), "ABCD", "EEFF")
	require.Greater(t, len(cands), 2)

	first, err := Select(3, cands, nil, nil, p)
	require.NoError(t, err)

	second, err := Select(3, cands, &first, nil, p)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	want, _ := literalSelect(cands, &first, nil, p)
	assert.Equal(t, want, second)

	third, err := Select(3, cands, &second, &first, p)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
	assert.NotEqual(t, second, third)
}

func TestHeuristic_UsesLastTwoOfHistory(t *testing.T) {
	p := integerParams()
	cands := candidatesAfter(mastermind.MustParse("DEAD"), "ABCD", "EEFF")
	h := Heuristic{Params: p}

	first, err := h.SelectGuess(3, cands, nil)
	require.NoError(t, err)
	second, err := h.SelectGuess(3, cands, []mastermind.Combination{first})
	require.NoError(t, err)
	third, err := h.SelectGuess(3, cands, []mastermind.Combination{first, second})
	require.NoError(t, err)
	// only the two most recent guesses are remembered
	fourth, err := h.SelectGuess(3, cands, []mastermind.Combination{first, second, third})
	require.NoError(t, err)

	assert.NotContains(t, []mastermind.Combination{first, second}, third)
	assert.NotContains(t, []mastermind.Combination{second, third}, fourth)
}

func TestMakeGuess_DefaultParams(t *testing.T) {
	cands := candidatesAfter(mastermind.MustParse("GAGE"), "ABCD")
	last := mastermind.Opening
	got, err := MakeGuess(2, cands, &last, nil)
	require.NoError(t, err)
	want, err := Select(2, cands, &last, nil, DefaultParams())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.NotEqual(t, last, got)
}

func TestSelect_RejectsMisalignedParams(t *testing.T) {
	p := DefaultParams()
	p.Classes[0].Class = mastermind.Feedback{Black: 3, White: 1}
	cands := candidatesAfter(mastermind.MustParse("GAGE"), "ABCD")
	_, err := Select(2, cands, nil, nil, p)
	assert.True(t, IsInvariant(err))
	assert.Error(t, p.Validate())
	assert.NoError(t, DefaultParams().Validate())
}

func TestParams_SnapshotSemantics(t *testing.T) {
	p := DefaultParams()
	q := p.WithWeight(3, 42).WithBias(1)
	assert.Equal(t, 0.549, p.Weight(3))
	assert.Equal(t, 42.0, q.Weight(3))
	assert.Equal(t, 2.12, p.Bias)
	assert.Equal(t, 1.0, q.Bias)
	assert.Contains(t, p.String(), "bias")
}
