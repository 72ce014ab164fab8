// internal/solver/selector.go
//
// Guess selection by weighted elimination.
//
// For a possible guess g and the remaining candidates D, the score is
//
//	bias*13*|D| + sum over d in D, over classes i with Classes[i] != feedback(d, g), of w[i]
//
// Grouping the inner sum by class gives sum_i (|D| - n_i) * w[i], where n_i is
// the number of candidates whose feedback against g falls in class i. The
// grouped form is what is computed; equal partitions always produce equal
// scores, so ties are resolved purely by enumeration order.

package solver

import (
	"errors"
	"fmt"

	"github.com/robalobadob/mastermind/internal/mastermind"
)

// ErrInvariant is re-exported so callers only need this package to classify errors.
var ErrInvariant = mastermind.ErrInvariant

var (
	// ErrNoCandidates means no secret is consistent with the feedback seen so far.
	ErrNoCandidates = fmt.Errorf("%w: no candidate combinations left", ErrInvariant)
	// ErrNoGuess means scoring finished without an eligible guess.
	ErrNoGuess = fmt.Errorf("%w: no guess selected", ErrInvariant)
)

// IsInvariant reports whether err signals a defect rather than bad input.
func IsInvariant(err error) bool { return errors.Is(err, ErrInvariant) }

// baselineClasses is the class multiplier of the bias term, one fewer than
// NumClasses. Tuned weights are scaled against it.
const baselineClasses = mastermind.NumClasses - 1

// GuessSelector picks the next guess of a game.
// history holds the guesses already made, oldest first.
type GuessSelector interface {
	SelectGuess(round int, candidates, history []mastermind.Combination) (mastermind.Combination, error)
}

// Heuristic is the weighted-elimination GuessSelector.
type Heuristic struct {
	Params Params
}

// SelectGuess implements GuessSelector.
func (h Heuristic) SelectGuess(round int, candidates, history []mastermind.Combination) (mastermind.Combination, error) {
	var last, secondLast *mastermind.Combination
	if n := len(history); n > 0 {
		last = &history[n-1]
		if n > 1 {
			secondLast = &history[n-2]
		}
	}
	return Select(round, candidates, last, secondLast, h.Params)
}

// MakeGuess selects a guess with the default parameters. last and secondLast
// may be nil when fewer than two guesses have been made.
func MakeGuess(round int, candidates []mastermind.Combination, last, secondLast *mastermind.Combination) (mastermind.Combination, error) {
	return Select(round, candidates, last, secondLast, DefaultParams())
}

// Select applies the selection rules in priority order:
//  1. no candidates is an invariant violation;
//  2. with at most two candidates the first one is played;
//  3. round 1 plays the opening guess;
//  4. otherwise the highest-scoring member of the universe that is not one of
//     the last two guesses, later guesses winning ties.
func Select(round int, candidates []mastermind.Combination, last, secondLast *mastermind.Combination, p Params) (mastermind.Combination, error) {
	if len(candidates) == 0 {
		return mastermind.Combination{}, ErrNoCandidates
	}
	if len(candidates) <= 2 {
		return candidates[0], nil
	}
	if round == 1 {
		return mastermind.Opening, nil
	}

	// class id of each Params slot, resolved once per call
	var slotClass [mastermind.NumClasses]int
	for i, cw := range p.Classes {
		id, ok := mastermind.ClassOf(cw.Class)
		if !ok {
			return mastermind.Combination{}, fmt.Errorf("%w: params slot %d has invalid class %v", ErrInvariant, i, cw.Class)
		}
		slotClass[i] = id
	}

	n := len(candidates)
	base := p.Bias * baselineClasses * float64(n)

	var (
		best      mastermind.Combination
		bestSet   bool
		bestScore float64
		counts    [mastermind.NumClasses]int
	)
	for _, guess := range mastermind.Universe() {
		counts = [mastermind.NumClasses]int{}
		for _, d := range candidates {
			id, _ := mastermind.ClassOf(mastermind.Compare(d, guess))
			counts[id]++
		}
		score := base
		for i, cw := range p.Classes {
			score += float64(n-counts[slotClass[i]]) * cw.Weight
		}
		if bestSet && score < bestScore {
			continue
		}
		if last != nil && guess == *last {
			continue
		}
		if secondLast != nil && guess == *secondLast {
			continue
		}
		best, bestScore, bestSet = guess, score, true
	}
	if !bestSet {
		return mastermind.Combination{}, ErrNoGuess
	}
	return best, nil
}
