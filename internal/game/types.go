// internal/game/types.go
//
// State of a single interactive Mastermind game, where a player guesses a
// secret held by the server.

package game

import (
	"sync"

	"github.com/robalobadob/mastermind/internal/mastermind"
)

// State is the coarse lifecycle of a game.
type State string

const (
	StatePlaying State = "playing"
	StateWon     State = "won"
	StateLost    State = "lost"
)

// Turn is one guess and the feedback it earned.
type Turn struct {
	Guess    mastermind.Combination `json:"guess"`
	Feedback mastermind.Feedback    `json:"feedback"`
}

// Move is the outcome of one guess, taken under the game's lock.
type Move struct {
	Feedback mastermind.Feedback
	State    State
	Turns    int // guesses made, this one included
	RowsLeft int
}

// Game holds an in-progress or finished session. ID, Secret and Rows never
// change after New; the rest is guarded by mu, so games shared between
// requests must be read through the methods.
type Game struct {
	ID     string                 // random hex identifier
	Secret mastermind.Combination // never sent to the client while playing
	Rows   int                    // maximum number of guesses

	mu       sync.Mutex
	Turns    []Turn // guesses made so far, oldest first
	Finished bool
	Won      bool
}
