package roll_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/wasteland/internal/game/roll"
)

func TestClassify_Absolutes(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		modifier := rapid.IntRange(-50, 50).Draw(rt, "modifier")
		luck := rapid.IntRange(-5, 15).Draw(rt, "luck")
		assert.Equal(rt, roll.CriticalFailure, roll.Classify(1, modifier, luck))
		assert.Equal(rt, roll.CriticalSuccess, roll.Classify(20, modifier, luck))
	})
}

func TestClassify_MonotonicInRoll(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		modifier := rapid.IntRange(-30, 30).Draw(rt, "modifier")
		luck := rapid.IntRange(1, 10).Draw(rt, "luck")
		prev := roll.Classify(1, modifier, luck)
		for r := 2; r <= roll.DieSides; r++ {
			cur := roll.Classify(r, modifier, luck)
			assert.GreaterOrEqual(rt, cur, prev, "roll %d", r)
			prev = cur
		}
	})
}

func TestSpreads_Bounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		luck := rapid.IntRange(-100, 100).Draw(rt, "luck")
		s := roll.SuccessSpread(luck)
		assert.GreaterOrEqual(rt, s, 1)
		assert.LessOrEqual(rt, s, 4)
		assert.GreaterOrEqual(rt, roll.FailureSpread(luck), 1)
	})
}

func TestFailureSpread_Unclamped(t *testing.T) {
	assert.Equal(t, 4, roll.FailureSpread(1))
	assert.Equal(t, 10, roll.FailureSpread(-5))
	assert.Equal(t, 1, roll.FailureSpread(10))
}

func TestClassify_Cases(t *testing.T) {
	cases := []struct {
		name                 string
		roll, modifier, luck int
		want                 roll.Outcome
	}{
		{"at threshold", 15, 3, 5, roll.NearSuccess},
		{"above threshold", 18, 3, 5, roll.Success},
		{"one below twenty", 19, 3, 5, roll.Success},
		{"lucky critical", 17, 3, 9, roll.CriticalSuccess},
		{"lucky but short", 16, 3, 9, roll.Success},
		{"below threshold", 2, 3, 5, roll.Failure},
		{"unlucky critical", 2, 3, 3, roll.CriticalFailure},
		{"very unlucky critical", 4, 0, 1, roll.CriticalFailure},
		{"very unlucky failure", 5, 0, 1, roll.Failure},
		{"negative modifier", 19, -2, 5, roll.Failure},
		{"huge modifier", 2, 30, 5, roll.Success},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, roll.Classify(tc.roll, tc.modifier, tc.luck))
		})
	}
}

func TestClassify_PanicsOutOfRange(t *testing.T) {
	assert.Panics(t, func() { roll.Classify(0, 0, 5) })
	assert.Panics(t, func() { roll.Classify(21, 0, 5) })
}

func TestOutcome_String(t *testing.T) {
	assert.Equal(t, "Near Success", roll.NearSuccess.String())
	assert.Equal(t, "Outcome(9)", roll.Outcome(9).String())
}
