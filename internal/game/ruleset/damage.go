package ruleset

import "fmt"

// DamageType classifies incoming damage for armor block rolls.
type DamageType int

const (
	Ballistic DamageType = iota
	Energy
	Explosive
	Fire
	Melee
)

// DamageTypeCount is the number of damage types in the catalog.
const DamageTypeCount = 5

var damageTypeTable = [DamageTypeCount]struct{ key, name string }{
	Ballistic: {"ballistic", "Ballistic"},
	Energy:    {"energy", "Energy"},
	Explosive: {"explosive", "Explosive"},
	Fire:      {"fire", "Fire"},
	Melee:     {"melee", "Melee"},
}

// Valid reports whether d is one of the declared damage types.
func (d DamageType) Valid() bool { return d >= 0 && d < DamageTypeCount }

// Name returns the display name of the damage type.
func (d DamageType) Name() string {
	mustValid("damage type", int(d), DamageTypeCount)
	return damageTypeTable[d].name
}

// Key returns the stable key of the damage type, as used in armor content files.
func (d DamageType) Key() string {
	mustValid("damage type", int(d), DamageTypeCount)
	return damageTypeTable[d].key
}

func (d DamageType) String() string {
	if !d.Valid() {
		return fmt.Sprintf("DamageType(%d)", int(d))
	}
	return damageTypeTable[d].name
}

// DamageTypeNames returns the display names of every damage type.
func DamageTypeNames() []string {
	out := make([]string, DamageTypeCount)
	for i := range damageTypeTable {
		out[i] = damageTypeTable[i].name
	}
	return out
}

// ParseDamageType resolves a damage type by name, ignoring case.
func ParseDamageType(name string) (DamageType, bool) {
	n := normalize(name)
	for i := range damageTypeTable {
		if damageTypeTable[i].key == n {
			return DamageType(i), true
		}
	}
	return 0, false
}
