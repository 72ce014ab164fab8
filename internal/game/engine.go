// internal/game/engine.go
//
// Game engine for a single interactive session.
// Responsibilities:
//   - Create games with a random (or fixed, for tests and the daily mode) secret.
//   - Apply guesses and score them with peg feedback.
//   - Track state transitions: playing → won/lost, one guess at a time.
//   - Report the candidates still consistent with the feedback so far, which
//     is what the solver needs to suggest a next move.

package game

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"math/big"

	"github.com/robalobadob/mastermind/internal/mastermind"
)

// DefaultRows is the number of guesses a player gets.
const DefaultRows = 10

// ErrFinished is returned when guessing in a finished game.
var ErrFinished = errors.New("game finished")

// New constructs a game. A nil secret picks one uniformly at random.
func New(secret *mastermind.Combination) *Game {
	s := RandomSecret()
	if secret != nil {
		s = *secret
	}
	return &Game{
		ID:     randomID(),
		Secret: s,
		Rows:   DefaultRows,
	}
}

// ApplyGuess scores guess against the secret and records the turn.
func (g *Game) ApplyGuess(guess mastermind.Combination) (Move, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Finished {
		return Move{State: g.state(), Turns: len(g.Turns)}, ErrFinished
	}
	fb := mastermind.Compare(guess, g.Secret)
	g.Turns = append(g.Turns, Turn{Guess: guess, Feedback: fb})

	if fb.Solved() {
		g.Finished, g.Won = true, true
	} else if len(g.Turns) >= g.Rows {
		g.Finished = true
	}
	return Move{Feedback: fb, State: g.state(), Turns: len(g.Turns), RowsLeft: g.Rows - len(g.Turns)}, nil
}

// State reports the current lifecycle state.
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state()
}

func (g *Game) state() State {
	if g.Finished {
		if g.Won {
			return StateWon
		}
		return StateLost
	}
	return StatePlaying
}

// TurnCount returns the number of guesses made so far.
func (g *Game) TurnCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.Turns)
}

// history copies the turns so they can be used outside the lock.
func (g *Game) history() []Turn {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Turn(nil), g.Turns...)
}

// Candidates returns every combination consistent with the turns so far.
func (g *Game) Candidates() []mastermind.Combination {
	return Replay(g.history())
}

// Guesses returns the guesses made so far, oldest first.
func (g *Game) Guesses() []mastermind.Combination {
	turns := g.history()
	out := make([]mastermind.Combination, len(turns))
	for i, t := range turns {
		out[i] = t.Guess
	}
	return out
}

// Replay prunes the universe by each turn's feedback in order.
func Replay(turns []Turn) []mastermind.Combination {
	cands := mastermind.CloneUniverse()
	for _, t := range turns {
		cands = mastermind.Consistent(cands, t.Guess, t.Feedback)
	}
	return cands
}

// RandomSecret draws a combination with crypto/rand.
func RandomSecret() mastermind.Combination {
	n, err := rand.Int(rand.Reader, big.NewInt(mastermind.Size))
	if err != nil {
		return mastermind.Opening
	}
	return mastermind.FromIndex(int(n.Int64()))
}

// randomID returns a compact 16-hex-char identifier.
func randomID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
