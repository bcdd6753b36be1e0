package roll

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrBadModifier is returned when the +N or -N suffix of a target is not an integer.
	ErrBadModifier = errors.New("bad modifier syntax")
	// ErrUnknownTarget is returned when a target names neither a trait nor a skill.
	ErrUnknownTarget = errors.New("cannot roll")
	// ErrUnknownDamageType is returned when an armor roll names an unknown damage type.
	ErrUnknownDamageType = errors.New("unknown damage type")
)

// ParseTarget splits "<name>[+N|-N]" into the name and signed modifier. The
// split is on the first '+', or failing that the first '-'.
//
// Postcondition: Returns an error wrapping ErrBadModifier if a suffix is
// present but is not a non-negative integer.
func ParseTarget(expr string) (name string, modifier int, err error) {
	expr = strings.TrimSpace(expr)
	sign := 0
	suffix := ""
	if before, after, ok := strings.Cut(expr, "+"); ok {
		name, suffix, sign = before, after, 1
	} else if before, after, ok := strings.Cut(expr, "-"); ok {
		name, suffix, sign = before, after, -1
	} else {
		return expr, 0, nil
	}

	n, convErr := strconv.Atoi(suffix)
	if convErr != nil || n < 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrBadModifier, expr)
	}
	return strings.TrimSpace(name), sign * n, nil
}
