package character

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the longest character name accepted.
const MaxNameLength = 32

// ErrInvalidName is returned when a character name fails the name rule.
var ErrInvalidName = errors.New("invalid character name")

// NameRule validates character names. The zero value accepts any non-empty
// name of at most MaxNameLength runes without dots or surrounding whitespace.
type NameRule struct {
	// Pattern, when non-nil, must match the whole name.
	Pattern *regexp.Regexp
}

// NewNameRule compiles pattern into a NameRule. An empty pattern imposes no
// requirement beyond the defaults.
//
// Postcondition: Returns a NameRule or a regexp compile error.
func NewNameRule(pattern string) (NameRule, error) {
	if pattern == "" {
		return NameRule{}, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return NameRule{}, fmt.Errorf("compiling name pattern %q: %w", pattern, err)
	}
	return NameRule{Pattern: re}, nil
}

// Check validates name.
//
// Postcondition: Returns nil or an error wrapping ErrInvalidName.
func (r NameRule) Check(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: name must not be empty", ErrInvalidName)
	case strings.TrimSpace(name) != name:
		return fmt.Errorf("%w: %q has surrounding whitespace", ErrInvalidName, name)
	case utf8.RuneCountInString(name) > MaxNameLength:
		return fmt.Errorf("%w: %q is longer than %d characters", ErrInvalidName, name, MaxNameLength)
	case strings.Contains(name, "."):
		// Dots separate sections of the key-path store.
		return fmt.Errorf("%w: %q contains '.'", ErrInvalidName, name)
	}
	if r.Pattern != nil {
		loc := r.Pattern.FindStringIndex(name)
		if loc == nil || loc[0] != 0 || loc[1] != len(name) {
			return fmt.Errorf("%w: %q does not match %s", ErrInvalidName, name, r.Pattern)
		}
	}
	return nil
}
