// Package roll resolves checks against a character's traits and skills.
//
// The engine is stateless: it reads a character snapshot, draws a fresh d20
// from its injected source and classifies the result. It never mutates the
// character it is given.
package roll

import "fmt"

// Outcome is the classified result of a check, ordered from worst to best.
type Outcome int

const (
	CriticalFailure Outcome = iota
	Failure
	NearSuccess
	Success
	CriticalSuccess
)

var outcomeNames = [...]string{
	CriticalFailure: "Critical Failure",
	Failure:         "Failure",
	NearSuccess:     "Near Success",
	Success:         "Success",
	CriticalSuccess: "Critical Success",
}

func (o Outcome) String() string {
	if o < CriticalFailure || o > CriticalSuccess {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

const (
	// DieSides is the size of the check die.
	DieSides = 20
	// nearSuccessBase is the roll that is a near success at modifier 0.
	nearSuccessBase = 18
	// neutralLuck is the luck value at which both critical spreads are 1.
	neutralLuck = 5
	// maxSuccessSpread bounds the critical-success band.
	maxSuccessSpread = 4
)

// SuccessSpread returns how far below 20 a successful roll still counts as a
// critical success.
//
// Postcondition: Returns a value in [1, 4].
func SuccessSpread(luck int) int {
	return min(max(luck-neutralLuck, 1), maxSuccessSpread)
}

// FailureSpread returns how far above 1 a failed roll still counts as a
// critical failure.
//
// Postcondition: Returns a value >= 1. There is no upper bound.
func FailureSpread(luck int) int {
	return max(1, neutralLuck-luck)
}

// NearSuccessThreshold returns the roll that yields NearSuccess for modifier.
func NearSuccessThreshold(modifier int) int {
	return nearSuccessBase - modifier
}

// Classify maps a d20 roll, an effective modifier and a luck value onto an Outcome.
//
// A natural 1 is always CriticalFailure and a natural 20 always CriticalSuccess.
//
// Precondition: roll is in [1, DieSides].
func Classify(roll, modifier, luck int) Outcome {
	if roll < 1 || roll > DieSides {
		panic(fmt.Sprintf("roll: Classify precondition violated: roll %d out of [1,%d]", roll, DieSides))
	}
	switch roll {
	case 1:
		return CriticalFailure
	case DieSides:
		return CriticalSuccess
	}

	threshold := NearSuccessThreshold(modifier)
	switch {
	case roll > threshold:
		if roll+SuccessSpread(luck) > DieSides {
			return CriticalSuccess
		}
		return Success
	case roll == threshold:
		return NearSuccess
	default:
		if roll-FailureSpread(luck) < 1 {
			return CriticalFailure
		}
		return Failure
	}
}
