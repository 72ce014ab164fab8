// internal/solver/simulator.go
//
// Full simulated games against a known secret. Each round asks the selector
// for a guess, scores it and prunes the candidates. Games that run out of
// rounds score the MaxRounds penalty.

package solver

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/mastermind/internal/mastermind"
	"github.com/robalobadob/mastermind/internal/metrics"
)

const (
	// MaxRounds is both the round cap and the penalty score of an unsolved
	// game. Rounds 1..MaxRounds-1 are played.
	MaxRounds = 16
)

// Step is one round of a simulated game.
type Step struct {
	Round     int                    `json:"round"`
	Guess     mastermind.Combination `json:"guess"`
	Feedback  mastermind.Feedback    `json:"feedback"`
	Remaining int                    `json:"remaining"` // candidates before the guess
}

// Trace is the full record of a simulated game.
type Trace struct {
	Secret mastermind.Combination `json:"secret"`
	Rounds int                    `json:"rounds"`
	Solved bool                   `json:"solved"`
	Steps  []Step                 `json:"steps"`
}

// Simulator plays complete games against known secrets.
type Simulator struct {
	Selector GuessSelector
	Logger   zerolog.Logger
}

// NewSimulator returns a Simulator driven by the heuristic with params p.
func NewSimulator(p Params) *Simulator {
	return &Simulator{
		Selector: Heuristic{Params: p},
		Logger:   log.With().Str("component", "simulator").Logger(),
	}
}

// Play returns the number of rounds needed to guess secret, or MaxRounds when
// the cap is exhausted. Only invariant violations are returned as errors.
func (s *Simulator) Play(secret mastermind.Combination) (int, error) {
	t, err := s.run(secret, false)
	return t.Rounds, err
}

// Trace plays secret and records every round.
func (s *Simulator) Trace(secret mastermind.Combination) (Trace, error) {
	return s.run(secret, true)
}

func (s *Simulator) run(secret mastermind.Combination, record bool) (Trace, error) {
	t := Trace{Secret: secret}
	candidates := mastermind.CloneUniverse()
	var history []mastermind.Combination

	for round := 1; round < MaxRounds; round++ {
		guess, err := s.Selector.SelectGuess(round, candidates, history)
		if err != nil {
			return t, err
		}
		observed := mastermind.Compare(guess, secret)
		if record {
			t.Steps = append(t.Steps, Step{Round: round, Guess: guess, Feedback: observed, Remaining: len(candidates)})
		}
		if guess == secret {
			s.Logger.Trace().Str("secret", secret.String()).Int("rounds", round).Msg("solved")
			t.Rounds, t.Solved = round, true
			s.observe(t.Rounds)
			return t, nil
		}
		history = append(history, guess)
		candidates = mastermind.Consistent(candidates, guess, observed)
	}

	s.Logger.WithLevel(zerolog.FatalLevel).Str("secret", secret.String()).Int("penalty", MaxRounds).Msg("exceeded max number of rounds")
	metrics.RoundCapPenalties.Inc()
	t.Rounds = MaxRounds
	s.observe(t.Rounds)
	return t, nil
}

func (s *Simulator) observe(rounds int) {
	metrics.GamesSimulated.Inc()
	metrics.RoundsPerGame.Observe(float64(rounds))
}
