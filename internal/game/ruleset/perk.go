package ruleset

import "fmt"

// Perk is a special ability a character selects, at most one per tier.
//
// The catalog does not enforce the one-per-tier rule; callers that assign
// perks own that obligation (see character.Character.SelectPerk).
type Perk int

const (
	SightAdapt Perk = iota
	AntiCold
	IncreasedJump
	IncreasedStealth
	EnergyReplenish

	SightDistance
	IncreasedStrength
	IncreasedSurvival
	IncreasedEndurance
	IncreasedAim

	DecreasedBleeding
	AntiRadiation
	IncreasedSenses
	PerfectMemory
	FeignDeath

	IncreasedLogic
	IncreasedCunning
	IncreasedHeal
	InnocentDefense
	IncreasedSneak

	BattlefieldTerror
	General
	Creatures
	Telekinesis
	Telepathy
	SpiritForm
)

// PerkCount is the number of perks in the catalog.
const PerkCount = 26

const (
	// MinPerkTier is the lowest perk tier.
	MinPerkTier = 1
	// MaxPerkTier is the highest perk tier.
	MaxPerkTier = 5
)

type perkDef struct {
	tier        int
	key         string
	name        string
	description []string
}

var perkTable = [PerkCount]perkDef{
	SightAdapt:       {1, "sight_adapt", "Adaptive Eyes", []string{"Eyes adapt to changes in light quickly"}},
	AntiCold:         {1, "anti_cold", "Advanced Homeostasis", []string{"Feel the effects of cold less than others"}},
	IncreasedJump:    {1, "increased_jump", "Gymnast", []string{"Jump higher and leap farther than others"}},
	IncreasedStealth: {1, "increased_stealth", "Light Steps", []string{"Running does not affect your stealthiness"}},
	EnergyReplenish:  {1, "energy_replenish", "Metabolizer", []string{"Regain energy faster than others"}},

	SightDistance:      {2, "sight_distance", "Eagle Eye", []string{"+2 to Non-combat Perception rolls"}},
	IncreasedStrength:  {2, "increased_strength", "Intense Training", []string{"+2 to Non-combat Strength rolls"}},
	IncreasedSurvival:  {2, "increased_survival", "Survivalist", []string{"+1 to First Aid and", "+1 to Logical Thinking rolls"}},
	IncreasedEndurance: {2, "increased_endurance", "Thick Skinned", []string{"+1 to Endurance rolls"}},
	IncreasedAim:       {2, "increased_aim", "Wasteland Cowboy", []string{"+1 to Regular and Aimed", "Conventional Gun rolls"}},

	DecreasedBleeding: {3, "decreased_bleeding", "Hoover", []string{"Stop bleeding very quickly"}},
	AntiRadiation:     {3, "anti_radiation", "Radio-Inactive", []string{"An environmental suit will", "protect against most radiation"}},
	IncreasedSenses:   {3, "increased_senses", "Sensory Overload", []string{"Hear through walls and", "detect poison. Others have a", "harder time sneaking past"}},
	PerfectMemory:     {3, "perfect_memory", "Snapshot", []string{"All images and sounds can", "be remembered without fail"}},
	FeignDeath:        {3, "feign_death", "Survivor", []string{"Slow your heart and feign", "death, stopping bleeding.", "Cannot wake for two hours"}},

	IncreasedLogic:   {4, "increased_logic", "Detective", []string{"+3 to Logical Thinking rolls"}},
	IncreasedCunning: {4, "increased_cunning", "Gambler", []string{"+2 to Lockpicking and", "+2 to Speech rolls"}},
	IncreasedHeal:    {4, "increased_heal", "Healer", []string{"+2 to First Aid and", "+2 to Surgery rolls"}},
	InnocentDefense:  {4, "innocent_defense", "Hero", []string{"+2 to Combat rolls when defending", "the weak and innocent"}},
	IncreasedSneak:   {4, "increased_sneak", "Shadow", []string{"+3 to Daytime Sneak and", "+5 to Nighttime Sneak rolls"}},

	BattlefieldTerror: {5, "battlefield_terror", "Death or Glory", []string{"You are war-incarnate.", "See full guide"}},
	General:           {5, "general", "Old-World General", []string{"Your word is law, your orders absolute.", "See full guide"}},
	Creatures:         {5, "creatures", "One With the Wasteland", []string{"You are one with the wasteland,", "its power defends you.", "See full guide"}},
	Telekinesis:       {5, "telekinesis", "The Master's Legacy: Telekinesis", []string{"The work of the master lives on", "through you, gain telekinesis.", "See full guide"}},
	Telepathy:         {5, "telepathy", "The Master's Legacy: Telepathy", []string{"The work of the master lives on", "through you, gain telepathy.", "See full guide"}},
	SpiritForm:        {5, "spirit_form", "Undying Will", []string{"You refuse the embrace of", "death and become a spirit.", "See full guide"}},
}

// perkTiers indexes the closed perk table by tier. Built once at init.
var perkTiers = func() map[int][]Perk {
	tiers := make(map[int][]Perk, MaxPerkTier)
	for i := range perkTable {
		tier := perkTable[i].tier
		tiers[tier] = append(tiers[tier], Perk(i))
	}
	return tiers
}()

// Valid reports whether p is one of the declared perks.
func (p Perk) Valid() bool { return p >= 0 && p < PerkCount }

// Tier returns the perk's tier in [MinPerkTier, MaxPerkTier].
//
// Precondition: p.Valid().
func (p Perk) Tier() int {
	mustValid("perk", int(p), PerkCount)
	return perkTable[p].tier
}

// Name returns the display name of the perk.
//
// Precondition: p.Valid().
func (p Perk) Name() string {
	mustValid("perk", int(p), PerkCount)
	return perkTable[p].name
}

// Key returns the stable persistence key of the perk.
//
// Precondition: p.Valid().
func (p Perk) Key() string {
	mustValid("perk", int(p), PerkCount)
	return perkTable[p].key
}

// Description returns the perk's description lines.
//
// Precondition: p.Valid().
func (p Perk) Description() []string {
	mustValid("perk", int(p), PerkCount)
	return append([]string(nil), perkTable[p].description...)
}

func (p Perk) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Perk(%d)", int(p))
	}
	return perkTable[p].name
}

// PerksInTier returns the perks of the given tier in declaration order.
//
// Postcondition: Returns an empty slice for a tier outside [MinPerkTier, MaxPerkTier].
func PerksInTier(tier int) []Perk {
	return append([]Perk(nil), perkTiers[tier]...)
}

// PerkNames returns the display names of every perk in declaration order.
func PerkNames() []string {
	out := make([]string, PerkCount)
	for i := range perkTable {
		out[i] = perkTable[i].name
	}
	return out
}

// ParsePerk resolves a perk by display name or key, ignoring case, spaces
// and underscores.
//
// Postcondition: Returns (perk, true) on a match, or (0, false).
func ParsePerk(name string) (Perk, bool) {
	n := normalize(name)
	for i := range perkTable {
		if normalize(perkTable[i].name) == n || normalize(perkTable[i].key) == n {
			return Perk(i), true
		}
	}
	return 0, false
}
