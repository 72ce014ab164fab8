// internal/mastermind/space.go
//
// The combination universe: all Symbols^Positions combinations, generated once
// in lexicographic order and immutable afterwards.
//
// Initialization mirrors the word-list loader this service started from:
// Init runs exactly once (sync.Once) and main aborts if it fails.

package mastermind

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
)

var (
	// ErrInvariant tags conditions that indicate a defect rather than bad input.
	// Callers decide whether to terminate.
	ErrInvariant = errors.New("invariant violation")

	// ErrUniverse is returned when universe generation fails its sanity check.
	ErrUniverse = fmt.Errorf("%w: combination universe failed sanity check", ErrInvariant)

	// ErrInvalidPoolSize is returned by SamplePool for n outside [1, Size].
	ErrInvalidPoolSize = errors.New("sample pool size out of range")
)

var (
	initOnce sync.Once
	universe []Combination
	initErr  error
)

// Init generates the universe exactly once.
func Init() error {
	initOnce.Do(func() {
		universe, initErr = generate()
	})
	return initErr
}

// Universe returns the full combination universe in index order.
// The returned slice is shared and must not be modified.
func Universe() []Combination {
	_ = Init()
	return universe
}

// generate enumerates every combination so that universe[c.Index()] == c.
func generate() ([]Combination, error) {
	out := make([]Combination, Size)
	for i := 0; i < Symbols; i++ {
		for j := 0; j < Symbols; j++ {
			for k := 0; k < Symbols; k++ {
				for l := 0; l < Symbols; l++ {
					out[((i*Symbols+j)*Symbols+k)*Symbols+l] = Combination{Symbol(i), Symbol(j), Symbol(k), Symbol(l)}
				}
			}
		}
	}
	if !Compare(out[Size-1], Combination{H, H, H, H}).Solved() {
		return nil, ErrUniverse
	}
	return out, nil
}

// CloneUniverse returns a private copy of the universe, the starting
// candidate set of a game.
func CloneUniverse() []Combination {
	u := Universe()
	out := make([]Combination, len(u))
	copy(out, u)
	return out
}

// SamplePool returns n distinct combinations drawn uniformly at random
// without replacement, in shuffled order.
func SamplePool(rng *rand.Rand, n int) ([]Combination, error) {
	if n <= 0 || n > Size {
		return nil, fmt.Errorf("%w: %d (want 1..%d)", ErrInvalidPoolSize, n, Size)
	}
	all := CloneUniverse()
	rng.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	return all[:n:n], nil
}
