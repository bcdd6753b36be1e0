package ruleset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/wasteland/internal/game/ruleset"
)

func TestNewSpecial_Defaults(t *testing.T) {
	s := ruleset.NewSpecial()
	for _, tr := range ruleset.Traits() {
		assert.Equal(t, ruleset.DefaultTraitValue, s.Get(tr))
	}
	assert.Equal(t, 35, s.Total())
	assert.Equal(t, "S5 P5 E5 C5 I5 A5 L5", s.String())
}

func TestSpecial_CopyIsClone(t *testing.T) {
	original := ruleset.NewSpecial()
	edit := original
	require.True(t, edit.Add(ruleset.Luck))
	assert.Equal(t, 5, original.Get(ruleset.Luck))
	assert.Equal(t, 6, edit.Get(ruleset.Luck))
}

func TestSpecial_SetOutOfRange(t *testing.T) {
	s := ruleset.NewSpecial()
	assert.ErrorIs(t, s.Set(ruleset.Strength, 0), ruleset.ErrTraitOutOfRange)
	assert.ErrorIs(t, s.Set(ruleset.Strength, 11), ruleset.ErrTraitOutOfRange)
	assert.Equal(t, 5, s.Get(ruleset.Strength))
	require.NoError(t, s.Set(ruleset.Strength, 10))
	assert.Equal(t, 10, s.Get(ruleset.Strength))
}

func TestSpecial_Validate(t *testing.T) {
	var s ruleset.Special
	assert.ErrorIs(t, s.Validate(), ruleset.ErrTraitOutOfRange)
	assert.NoError(t, ruleset.NewSpecial().Validate())
}

// Property: any sequence of Add/Remove keeps every trait within bounds.
func TestSpecial_AddRemoveStaysInBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		s := ruleset.NewSpecial()
		ops := rapid.SliceOfN(rapid.IntRange(0, 2*ruleset.TraitCount-1), 0, 100).Draw(rt, "ops")
		for _, op := range ops {
			tr := ruleset.Trait(op % ruleset.TraitCount)
			before := s.Get(tr)
			var changed bool
			if op < ruleset.TraitCount {
				changed = s.Add(tr)
			} else {
				changed = s.Remove(tr)
			}
			if !changed && s.Get(tr) != before {
				rt.Fatalf("refused op changed %s", tr)
			}
		}
		if err := s.Validate(); err != nil {
			rt.Fatal(err)
		}
	})
}
