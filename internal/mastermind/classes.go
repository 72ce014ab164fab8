// internal/mastermind/classes.go
//
// The fixed table of response classes a guess can produce. Weights in the
// solver are indexed by position in this table.

package mastermind

// NumClasses is the number of distinct valid feedback values.
const NumClasses = 14

// Classes is the ordered response class table. The position of a feedback in
// this table is its class id. The order is arbitrary but fixed for the life of
// the process: tuned weights are laid out in the same order.
var Classes = [NumClasses]Feedback{
	{0, 1},
	{0, 2},
	{1, 0},
	{1, 1},
	{0, 0},
	{2, 0},
	{1, 2},
	{0, 3},
	{2, 1},
	{3, 0},
	{0, 4},
	{1, 3},
	{2, 2},
	{4, 0},
}

// classIndex maps [black][white] to a class id, -1 for unreachable values.
var classIndex = func() [Positions + 1][Positions + 1]int {
	var idx [Positions + 1][Positions + 1]int
	for b := range idx {
		for w := range idx[b] {
			idx[b][w] = -1
		}
	}
	for i, f := range Classes {
		idx[f.Black][f.White] = i
	}
	return idx
}()

// ClassOf returns the class id of f, or false when f is not a valid feedback.
func ClassOf(f Feedback) (int, bool) {
	if f.Black < 0 || f.White < 0 || f.Black > Positions || f.White > Positions {
		return 0, false
	}
	i := classIndex[f.Black][f.White]
	return i, i >= 0
}
