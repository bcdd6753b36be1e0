package dice

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// MaxCount bounds the number of dice in one expression.
const MaxCount = 100

var (
	// ErrSyntax is returned when the amount or sides of an expression cannot be parsed.
	ErrSyntax = errors.New("dice: bad expression syntax")
	// ErrModifier is returned when the +N or -N suffix of an expression cannot be parsed.
	ErrModifier = errors.New("dice: bad modifier syntax")
)

// Expression represents a parsed dice expression ready to be rolled.
//
// Invariant: 1 <= Count <= MaxCount and Sides >= 2 after a successful Parse.
type Expression struct {
	Raw      string // input as written
	Count    int    // number of dice
	Sides    int    // faces per die
	Modifier int    // flat modifier (may be negative)
}

// D20 is the single twenty-sided die every check rolls.
var D20 = MustParse("1d20")

// Parse parses "<amount>d<sides>[+N|-N]" into an Expression. The amount may
// be omitted and defaults to 1. The modifier is split on the first '+', or
// failing that the first '-'.
//
// Postcondition: Returns an Expression, or an error wrapping ErrSyntax for a
// bad amount or sides, or ErrModifier for a bad suffix.
func Parse(expr string) (Expression, error) {
	raw := expr
	s := strings.ToLower(strings.TrimSpace(expr))

	amountStr, rest, ok := strings.Cut(s, "d")
	if !ok {
		return Expression{}, fmt.Errorf("%w: missing 'd' in %q", ErrSyntax, raw)
	}

	count := 1
	if amountStr != "" {
		n, err := strconv.Atoi(amountStr)
		if err != nil || n < 1 || n > MaxCount {
			return Expression{}, fmt.Errorf("%w: die count in %q must be 1..%d", ErrSyntax, raw, MaxCount)
		}
		count = n
	}

	sidesStr, modStr, sign := rest, "", 0
	if before, after, found := strings.Cut(rest, "+"); found {
		sidesStr, modStr, sign = before, after, 1
	} else if before, after, found := strings.Cut(rest, "-"); found {
		sidesStr, modStr, sign = before, after, -1
	}

	sides, err := strconv.Atoi(sidesStr)
	if err != nil || sides < 2 {
		return Expression{}, fmt.Errorf("%w: die sides in %q must be an integer >= 2", ErrSyntax, raw)
	}

	modifier := 0
	if sign != 0 {
		n, err := strconv.Atoi(modStr)
		if err != nil || n < 0 {
			return Expression{}, fmt.Errorf("%w: %q", ErrModifier, raw)
		}
		modifier = sign * n
	}

	return Expression{
		Raw:      raw,
		Count:    count,
		Sides:    sides,
		Modifier: modifier,
	}, nil
}

// MustParse parses expr and panics on error. Useful for package-level values.
//
// Precondition: expr must be a valid dice expression.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}
