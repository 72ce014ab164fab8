// internal/solver/params.go
//
// Params is the tunable state of the guess-scoring heuristic: one weight per
// response class plus a bias. Each weight is stored next to the class it
// tunes so the two can never drift out of order.
//
// Params is a value type. Copying it takes a snapshot; the tuner mutates its
// own copy and hands fresh copies to every evaluation.

package solver

import (
	"fmt"
	"strings"

	"github.com/robalobadob/mastermind/internal/mastermind"
)

// ClassWeight pairs a response class with its weight.
type ClassWeight struct {
	Class  mastermind.Feedback `json:"class" yaml:"class"`
	Weight float64             `json:"weight" yaml:"weight"`
}

// Params holds one ClassWeight per response class, in class-table order, and
// the bias.
type Params struct {
	Classes [mastermind.NumClasses]ClassWeight `json:"classes" yaml:"classes"`
	Bias    float64                            `json:"bias" yaml:"bias"`
}

// defaultWeights were derived by hand; they solve in about 7.9 rounds on average.
var defaultWeights = [mastermind.NumClasses]float64{
	0.9,    // W
	0.63,   // WW
	0.597,  // B
	0.549,  // BW
	0.511,  // no pegs
	0.213,  // BB
	0.142,  // BWW
	0.119,  // WWW
	0.0594, // BBW
	0.0264, // BBB
	0.0043, // WWWW
	0.0048, // BWWW
	0.0045, // BBWW
	0.0041, // BBBB
}

const defaultBias = 2.12

// DefaultParams returns the hand-tuned starting point.
func DefaultParams() Params {
	return NewParams(defaultWeights, defaultBias)
}

// NewParams builds Params from weights given in class-table order.
func NewParams(weights [mastermind.NumClasses]float64, bias float64) Params {
	var p Params
	for i, f := range mastermind.Classes {
		p.Classes[i] = ClassWeight{Class: f, Weight: weights[i]}
	}
	p.Bias = bias
	return p
}

// Weight returns the weight of class i.
func (p Params) Weight(i int) float64 { return p.Classes[i].Weight }

// WithWeight returns a copy with the weight of class i replaced.
func (p Params) WithWeight(i int, w float64) Params {
	p.Classes[i].Weight = w
	return p
}

// WithBias returns a copy with the bias replaced.
func (p Params) WithBias(b float64) Params {
	p.Bias = b
	return p
}

// Validate checks that every entry carries the class of its slot.
func (p Params) Validate() error {
	for i, cw := range p.Classes {
		if !cw.Class.Equivalent(mastermind.Classes[i]) {
			return fmt.Errorf("params: slot %d holds class %v, want %v", i, cw.Class, mastermind.Classes[i])
		}
	}
	return nil
}

// String dumps the weights and bias one per line, for logs.
func (p Params) String() string {
	var b strings.Builder
	for _, cw := range p.Classes {
		fmt.Fprintf(&b, "%-5s %.6g\n", cw.Class.String(), cw.Weight)
	}
	fmt.Fprintf(&b, "bias  %.6g", p.Bias)
	return b.String()
}
