package ruleset

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// MinTraitValue is the lowest value a trait may hold.
	MinTraitValue = 1
	// MaxTraitValue is the highest value a trait may hold.
	MaxTraitValue = 10
	// DefaultTraitValue is the value every trait starts at.
	DefaultTraitValue = 5
)

// ErrTraitOutOfRange is returned when a trait value falls outside [MinTraitValue, MaxTraitValue].
var ErrTraitOutOfRange = errors.New("trait value out of range")

// Special is the seven-trait attribute block of a character.
//
// Special is a value type: assigning or passing it copies every trait, so an
// edit made on a copy never reaches the original until it is written back.
//
// Invariant: every value is within [MinTraitValue, MaxTraitValue].
type Special [TraitCount]int

// NewSpecial returns a Special with every trait at DefaultTraitValue.
func NewSpecial() Special {
	var s Special
	for i := range s {
		s[i] = DefaultTraitValue
	}
	return s
}

// Get returns the value of trait t.
//
// Precondition: t.Valid().
func (s Special) Get(t Trait) int {
	mustValid("trait", int(t), TraitCount)
	return s[t]
}

// Set assigns v to trait t.
//
// Postcondition: Returns ErrTraitOutOfRange and leaves s unchanged when v is out of bounds.
func (s *Special) Set(t Trait, v int) error {
	mustValid("trait", int(t), TraitCount)
	if v < MinTraitValue || v > MaxTraitValue {
		return fmt.Errorf("%w: %s=%d", ErrTraitOutOfRange, t.Name(), v)
	}
	s[t] = v
	return nil
}

// Add raises trait t by one point.
//
// Postcondition: Returns false and leaves s unchanged if t is already at MaxTraitValue.
func (s *Special) Add(t Trait) bool {
	mustValid("trait", int(t), TraitCount)
	if s[t] >= MaxTraitValue {
		return false
	}
	s[t]++
	return true
}

// Remove lowers trait t by one point.
//
// Postcondition: Returns false and leaves s unchanged if t is already at MinTraitValue.
func (s *Special) Remove(t Trait) bool {
	mustValid("trait", int(t), TraitCount)
	if s[t] <= MinTraitValue {
		return false
	}
	s[t]--
	return true
}

// Total returns the sum of all trait values.
func (s Special) Total() int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}

// Validate reports the first trait outside [MinTraitValue, MaxTraitValue].
func (s Special) Validate() error {
	for i, v := range s {
		if v < MinTraitValue || v > MaxTraitValue {
			return fmt.Errorf("%w: %s=%d", ErrTraitOutOfRange, Trait(i).Name(), v)
		}
	}
	return nil
}

// String renders the block as "S5 P5 E5 C5 I5 A5 L5".
func (s Special) String() string {
	parts := make([]string, 0, TraitCount)
	for i, v := range s {
		parts = append(parts, fmt.Sprintf("%c%d", traitNames[i][0], v))
	}
	return strings.Join(parts, " ")
}
