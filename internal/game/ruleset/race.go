package ruleset

import "fmt"

// Race is the ancestry a character is created with.
type Race int

const (
	Wastelander Race = iota
	VaultDweller
	Ghoul
	SuperMutant
)

// RaceCount is the number of races in the catalog.
const RaceCount = 4

type raceDef struct {
	key  string
	name string
	// radiation is the flat radiation resistance granted by the race.
	radiation int
}

var raceTable = [RaceCount]raceDef{
	Wastelander:  {"wastelander", "Wastelander", 10},
	VaultDweller: {"vault_dweller", "Vault Dweller", 0},
	Ghoul:        {"ghoul", "Ghoul", 60},
	SuperMutant:  {"super_mutant", "Super Mutant", 40},
}

// Valid reports whether r is one of the declared races.
func (r Race) Valid() bool { return r >= 0 && r < RaceCount }

// Name returns the display name of the race.
//
// Precondition: r.Valid().
func (r Race) Name() string {
	mustValid("race", int(r), RaceCount)
	return raceTable[r].name
}

// Key returns the stable persistence key of the race.
//
// Precondition: r.Valid().
func (r Race) Key() string {
	mustValid("race", int(r), RaceCount)
	return raceTable[r].key
}

// RadiationBonus returns the race's flat radiation resistance.
//
// Precondition: r.Valid().
func (r Race) RadiationBonus() int {
	mustValid("race", int(r), RaceCount)
	return raceTable[r].radiation
}

func (r Race) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Race(%d)", int(r))
	}
	return raceTable[r].name
}

// Races returns every race in declaration order.
func Races() []Race {
	out := make([]Race, RaceCount)
	for i := range out {
		out[i] = Race(i)
	}
	return out
}

// ParseRace resolves a race by display name or key, ignoring case, spaces
// and underscores.
func ParseRace(name string) (Race, bool) {
	n := normalize(name)
	for i := range raceTable {
		if normalize(raceTable[i].name) == n || normalize(raceTable[i].key) == n {
			return Race(i), true
		}
	}
	return 0, false
}
