// internal/mastermind/feedback.go
//
// Peg feedback between two combinations and candidate pruning.
//   - Compare scores a guess against a secret.
//   - Consistent keeps the candidates that would have produced an observation.

package mastermind

import (
	"errors"
	"fmt"
	"strings"
)

// Feedback is the peg response to a guess: Black counts exact-position
// matches, White counts colour-only matches (duplicate-aware).
type Feedback struct {
	Black int `json:"black"`
	White int `json:"white"`
}

// ErrInvalidFeedback is returned when a feedback value can never occur.
var ErrInvalidFeedback = errors.New("invalid feedback")

// Compare computes the feedback between two combinations. It is symmetric.
//
// Black is the number of equal positions. White is the number of shared
// colours (min of the per-symbol counts) minus Black.
func Compare(a, b Combination) Feedback {
	var countA, countB [Symbols]int
	black := 0
	for i := 0; i < Positions; i++ {
		if a[i] == b[i] {
			black++
		}
		countA[a[i]]++
		countB[b[i]]++
	}
	common := 0
	for s := 0; s < Symbols; s++ {
		common += min(countA[s], countB[s])
	}
	return Feedback{Black: black, White: common - black}
}

// Equivalent reports whether both components match exactly.
func (f Feedback) Equivalent(o Feedback) bool {
	return f.Black == o.Black && f.White == o.White
}

// Solved reports whether the feedback means the guess was the secret.
func (f Feedback) Solved() bool { return f.Black == Positions }

// Valid reports whether f can be produced by Compare.
// (3 black, 1 white) is unreachable: the last peg would have to be both
// misplaced and the only remaining position.
func (f Feedback) Valid() bool {
	if f.Black < 0 || f.White < 0 || f.Black+f.White > Positions {
		return false
	}
	return !(f.Black == Positions-1 && f.White == 1)
}

// String renders feedback as pegs, e.g. "BBW"; no pegs renders as "-".
func (f Feedback) String() string {
	if f.Black == 0 && f.White == 0 {
		return "-"
	}
	return strings.Repeat("B", f.Black) + strings.Repeat("W", f.White)
}

// NewFeedback validates and builds a feedback value from peg counts.
func NewFeedback(black, white int) (Feedback, error) {
	f := Feedback{Black: black, White: white}
	if !f.Valid() {
		return Feedback{}, fmt.Errorf("%w: black=%d white=%d", ErrInvalidFeedback, black, white)
	}
	return f, nil
}

// Consistent filters candidates down to those that would have produced the
// observed feedback for guess. The input slice is reused; callers must not
// keep the old view.
func Consistent(candidates []Combination, guess Combination, observed Feedback) []Combination {
	out := candidates[:0]
	for _, c := range candidates {
		if Compare(c, guess).Equivalent(observed) {
			out = append(out, c)
		}
	}
	return out
}
