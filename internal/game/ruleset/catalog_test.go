package ruleset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/wasteland/internal/game/ruleset"
)

func TestParseTrait_CaseInsensitive(t *testing.T) {
	for _, in := range []string{"luck", "LUCK", "Luck", " luck "} {
		tr, ok := ruleset.ParseTrait(in)
		require.True(t, ok, in)
		assert.Equal(t, ruleset.Luck, tr)
	}
	_, ok := ruleset.ParseTrait("wisdom")
	assert.False(t, ok)
}

func TestParseSkill_NameAndKey(t *testing.T) {
	for _, in := range []string{"Logical Thinking", "logical_thinking", "logicalthinking", "LOGICAL THINKING"} {
		s, ok := ruleset.ParseSkill(in)
		require.True(t, ok, in)
		assert.Equal(t, ruleset.LogicalThinking, s)
	}
	_, ok := ruleset.ParseSkill("strength")
	assert.False(t, ok)
}

func TestSkillCatalog_Complete(t *testing.T) {
	assert.Len(t, ruleset.Skills(), ruleset.SkillCount)
	seen := make(map[string]bool)
	for _, s := range ruleset.Skills() {
		assert.NotEmpty(t, s.Name())
		assert.False(t, seen[s.Key()], "duplicate key %s", s.Key())
		seen[s.Key()] = true
	}
}

func TestSkillRollModifier_ZeroAtDefaults(t *testing.T) {
	special := ruleset.NewSpecial()
	for _, s := range ruleset.Skills() {
		assert.Equal(t, 0, s.RollModifier(special), s.Name())
	}
}

func TestSkillRollModifier_ScalesWithTrait(t *testing.T) {
	special := ruleset.NewSpecial()
	require.NoError(t, special.Set(ruleset.Agility, 9))
	assert.Equal(t, 2, ruleset.ConventionalGuns.RollModifier(special))
	assert.Equal(t, 2, ruleset.Sneak.RollModifier(special))
	assert.Equal(t, 0, ruleset.Speech.RollModifier(special))
}

// Property: a skill's roll modifier never decreases when any trait increases.
func TestSkillRollModifier_MonotonicInTraits(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var special ruleset.Special
		for i := range special {
			special[i] = rapid.IntRange(ruleset.MinTraitValue, ruleset.MaxTraitValue).Draw(rt, "trait")
		}
		skill := ruleset.Skill(rapid.IntRange(0, ruleset.SkillCount-1).Draw(rt, "skill"))
		trait := ruleset.Trait(rapid.IntRange(0, ruleset.TraitCount-1).Draw(rt, "raised"))
		before := skill.RollModifier(special)
		if special.Add(trait) {
			after := skill.RollModifier(special)
			if after < before {
				rt.Fatalf("%s modifier dropped from %d to %d after raising %s", skill, before, after, trait)
			}
		}
	})
}

func TestPerksInTier(t *testing.T) {
	total := 0
	for tier := ruleset.MinPerkTier; tier <= ruleset.MaxPerkTier; tier++ {
		perks := ruleset.PerksInTier(tier)
		assert.NotEmpty(t, perks, "tier %d", tier)
		for _, p := range perks {
			assert.Equal(t, tier, p.Tier())
		}
		total += len(perks)
	}
	assert.Equal(t, ruleset.PerkCount, total)
	assert.Empty(t, ruleset.PerksInTier(0))
	assert.Empty(t, ruleset.PerksInTier(6))
}

func TestPerksInTier_ReturnsCopy(t *testing.T) {
	perks := ruleset.PerksInTier(1)
	perks[0] = ruleset.SpiritForm
	assert.Equal(t, ruleset.SightAdapt, ruleset.PerksInTier(1)[0])
}

func TestParsePerk(t *testing.T) {
	p, ok := ruleset.ParsePerk("radio-inactive")
	require.True(t, ok)
	assert.Equal(t, ruleset.AntiRadiation, p)

	p, ok = ruleset.ParsePerk("anti_radiation")
	require.True(t, ok)
	assert.Equal(t, ruleset.AntiRadiation, p)

	_, ok = ruleset.ParsePerk("bogus")
	assert.False(t, ok)
}

func TestPerkDescription_Copy(t *testing.T) {
	d := ruleset.IncreasedSenses.Description()
	require.Len(t, d, 3)
	d[0] = "changed"
	assert.NotEqual(t, "changed", ruleset.IncreasedSenses.Description()[0])
}

func TestParseRace(t *testing.T) {
	r, ok := ruleset.ParseRace("Super Mutant")
	require.True(t, ok)
	assert.Equal(t, ruleset.SuperMutant, r)
	r, ok = ruleset.ParseRace("vault_dweller")
	require.True(t, ok)
	assert.Equal(t, ruleset.VaultDweller, r)
	_, ok = ruleset.ParseRace("elf")
	assert.False(t, ok)
}

func TestParseDamageType(t *testing.T) {
	d, ok := ruleset.ParseDamageType("Energy")
	require.True(t, ok)
	assert.Equal(t, ruleset.Energy, d)
	_, ok = ruleset.ParseDamageType("psychic")
	assert.False(t, ok)
}

func TestInvalidEnumPanics(t *testing.T) {
	assert.Panics(t, func() { _ = ruleset.Trait(7).Name() })
	assert.Panics(t, func() { _ = ruleset.Skill(-1).Key() })
	assert.Panics(t, func() { _ = ruleset.Perk(ruleset.PerkCount).Tier() })
	assert.Equal(t, "Race(9)", ruleset.Race(9).String())
}
