// Package ruleset defines the closed stat catalogs of the wasteland ruleset:
// traits, skills, perks, races, damage types and armor materials.
package ruleset

import (
	"fmt"
	"strings"
)

// Trait is one of the seven SPECIAL attributes.
type Trait int

const (
	Strength Trait = iota
	Perception
	Endurance
	Charisma
	Intelligence
	Agility
	Luck
)

// TraitCount is the number of traits in a Special.
const TraitCount = 7

var traitNames = [TraitCount]string{
	Strength:     "Strength",
	Perception:   "Perception",
	Endurance:    "Endurance",
	Charisma:     "Charisma",
	Intelligence: "Intelligence",
	Agility:      "Agility",
	Luck:         "Luck",
}

var traitKeys = [TraitCount]string{
	Strength:     "strength",
	Perception:   "perception",
	Endurance:    "endurance",
	Charisma:     "charisma",
	Intelligence: "intelligence",
	Agility:      "agility",
	Luck:         "luck",
}

// Valid reports whether t is one of the seven declared traits.
func (t Trait) Valid() bool { return t >= 0 && t < TraitCount }

// Name returns the display name of the trait.
//
// Precondition: t.Valid().
func (t Trait) Name() string {
	mustValid("trait", int(t), TraitCount)
	return traitNames[t]
}

// Key returns the stable persistence key of the trait.
//
// Precondition: t.Valid().
func (t Trait) Key() string {
	mustValid("trait", int(t), TraitCount)
	return traitKeys[t]
}

func (t Trait) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Trait(%d)", int(t))
	}
	return traitNames[t]
}

// Traits returns every trait in declaration order.
func Traits() []Trait {
	out := make([]Trait, TraitCount)
	for i := range out {
		out[i] = Trait(i)
	}
	return out
}

// TraitNames returns the display names of every trait in declaration order.
func TraitNames() []string {
	return append([]string(nil), traitNames[:]...)
}

// ParseTrait resolves a trait by display name or key, ignoring case, spaces
// and underscores.
//
// Postcondition: Returns (trait, true) on a match, or (0, false).
func ParseTrait(name string) (Trait, bool) {
	n := normalize(name)
	for i := 0; i < TraitCount; i++ {
		if normalize(traitNames[i]) == n {
			return Trait(i), true
		}
	}
	return 0, false
}

// normalize folds a catalog lookup name: lowercase, no spaces, no underscores.
func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "", "_", "", "'", "").Replace(name)
}

func mustValid(kind string, v, count int) {
	if v < 0 || v >= count {
		panic(fmt.Sprintf("ruleset: precondition violated: %s %d out of range [0,%d)", kind, v, count))
	}
}
