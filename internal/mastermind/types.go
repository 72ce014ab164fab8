// internal/mastermind/types.go
//
// Core value types for the Mastermind domain.
// Defines:
//   - Symbol: one of the 8 peg colours (A..H).
//   - Combination: an ordered 4-symbol guess or secret.
//   - Feedback: black/white peg response between two combinations.
//
// The domain is fixed at 4 positions and 8 symbols; these are constants,
// not configuration.

package mastermind

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// Positions is the number of pegs in a combination.
	Positions = 4
	// Symbols is the number of distinct peg colours.
	Symbols = 8
	// Size is the number of distinct combinations (Symbols^Positions).
	Size = Symbols * Symbols * Symbols * Symbols
)

// Symbol is a single peg colour. Only identity matters; the numeric value is
// used for enumeration order.
type Symbol uint8

const (
	A Symbol = iota
	B
	C
	D
	E
	F
	G
	H
)

// String renders the symbol as its letter.
func (s Symbol) String() string {
	if s >= Symbols {
		return "?"
	}
	return string(rune('A' + s))
}

// Combination is an ordered sequence of exactly Positions symbols.
// It is a value type: == compares by value.
type Combination [Positions]Symbol

// ErrInvalidCombination is returned by Parse for malformed input.
var ErrInvalidCombination = errors.New("invalid combination")

// Index returns the stable enumeration index ((i*8+j)*8+k)*8+l.
func (c Combination) Index() int {
	return ((int(c[0])*Symbols+int(c[1]))*Symbols+int(c[2]))*Symbols + int(c[3])
}

// FromIndex is the inverse of Index. n must be in [0, Size).
func FromIndex(n int) Combination {
	var c Combination
	for pos := Positions - 1; pos >= 0; pos-- {
		c[pos] = Symbol(n % Symbols)
		n /= Symbols
	}
	return c
}

// String renders a combination as four letters, e.g. "ABCD".
func (c Combination) String() string {
	var b strings.Builder
	b.Grow(Positions)
	for _, s := range c {
		b.WriteString(s.String())
	}
	return b.String()
}

// Parse reads a combination written as four letters A..H (case-insensitive).
func Parse(s string) (Combination, error) {
	var c Combination
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != Positions {
		return c, fmt.Errorf("%w: %q must have %d symbols", ErrInvalidCombination, s, Positions)
	}
	for i := 0; i < Positions; i++ {
		r := s[i]
		if r < 'A' || r >= 'A'+Symbols {
			return c, fmt.Errorf("%w: symbol %q out of range A-H", ErrInvalidCombination, r)
		}
		c[i] = Symbol(r - 'A')
	}
	return c, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Combination {
	c, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return c
}

// MarshalText implements encoding.TextMarshaler so combinations travel as "ABCD" in JSON.
func (c Combination) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Combination) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Opening is the canonical first guess: one each of the first four symbols.
var Opening = Combination{A, B, C, D}
