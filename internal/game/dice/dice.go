// Package dice rolls polyhedral dice for checks, armor blocks and free-form
// rolls such as "3d6+2".
package dice

import (
	"fmt"
	"strconv"
	"strings"
)

// RollResult is one evaluated roll: every face that came up plus the flat
// modifier.
type RollResult struct {
	Expression string
	Dice       []int
	Modifier   int
}

// Total is the faces summed with the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String formats the roll as players see it: "2d6-1: 4, 5 (-1) = 8", or
// "3d6: 2, 4, 6 = 12" without a modifier.
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String precondition violated: Expression must be non-empty")
	}
	faces := make([]string, len(r.Dice))
	for i, d := range r.Dice {
		faces[i] = strconv.Itoa(d)
	}
	var b strings.Builder
	b.WriteString(r.Expression)
	b.WriteString(": ")
	b.WriteString(strings.Join(faces, ", "))
	if r.Modifier != 0 {
		fmt.Fprintf(&b, " (%+d)", r.Modifier)
	}
	fmt.Fprintf(&b, " = %d", r.Total())
	return b.String()
}

// Source is the randomness provider for dice rolls.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
