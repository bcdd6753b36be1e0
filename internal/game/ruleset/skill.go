package ruleset

import "fmt"

// Skill is a trained ability a character spends skill points on.
type Skill int

const (
	BigGuns Skill = iota
	ConventionalGuns
	EnergyWeapons
	MeleeWeapons
	Lockpicking
	Sneak
	Speech
	Explosives
	Unarmed
	FirstAid
	Surgery
	Repair
	Science
	LogicalThinking
)

// SkillCount is the number of skills in the catalog.
const SkillCount = 14

// MaxSkillLevel is the highest number of points a single skill may hold.
const MaxSkillLevel = 5

type skillDef struct {
	name string
	key  string
	// bonus is the skill's roll contribution derived from trait levels.
	bonus func(Special) int
}

// traitBonus maps a trait value onto a roll bonus: 0 at the default value,
// one point per two levels above or below it.
func traitBonus(v int) int {
	return (v - DefaultTraitValue) / 2
}

func single(t Trait) func(Special) int {
	return func(s Special) int { return traitBonus(s.Get(t)) }
}

func paired(a, b Trait) func(Special) int {
	return func(s Special) int { return traitBonus((s.Get(a) + s.Get(b)) / 2) }
}

var skillTable = [SkillCount]skillDef{
	BigGuns:          {"Big Guns", "big_guns", single(Strength)},
	ConventionalGuns: {"Conventional Guns", "conventional_guns", single(Agility)},
	EnergyWeapons:    {"Energy Weapons", "energy_weapons", single(Perception)},
	MeleeWeapons:     {"Melee Weapons", "melee_weapons", single(Strength)},
	Lockpicking:      {"Lockpicking", "lockpicking", paired(Perception, Agility)},
	Sneak:            {"Sneak", "sneak", single(Agility)},
	Speech:           {"Speech", "speech", single(Charisma)},
	Explosives:       {"Explosives", "explosives", single(Perception)},
	Unarmed:          {"Unarmed", "unarmed", paired(Strength, Endurance)},
	FirstAid:         {"First Aid", "first_aid", single(Intelligence)},
	Surgery:          {"Surgery", "surgery", paired(Intelligence, Agility)},
	Repair:           {"Repair", "repair", single(Intelligence)},
	Science:          {"Science", "science", single(Intelligence)},
	LogicalThinking:  {"Logical Thinking", "logical_thinking", paired(Intelligence, Perception)},
}

// Valid reports whether s is one of the declared skills.
func (s Skill) Valid() bool { return s >= 0 && s < SkillCount }

// Name returns the display name of the skill.
//
// Precondition: s.Valid().
func (s Skill) Name() string {
	mustValid("skill", int(s), SkillCount)
	return skillTable[s].name
}

// Key returns the stable persistence key of the skill.
//
// Precondition: s.Valid().
func (s Skill) Key() string {
	mustValid("skill", int(s), SkillCount)
	return skillTable[s].key
}

func (s Skill) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Skill(%d)", int(s))
	}
	return skillTable[s].name
}

// RollModifier returns how much the given trait levels boost rolls on this skill.
//
// Precondition: s.Valid().
// Postcondition: Returns 0 when every trait the skill depends on is at DefaultTraitValue.
func (s Skill) RollModifier(special Special) int {
	mustValid("skill", int(s), SkillCount)
	return skillTable[s].bonus(special)
}

// Skills returns every skill in declaration order.
func Skills() []Skill {
	out := make([]Skill, SkillCount)
	for i := range out {
		out[i] = Skill(i)
	}
	return out
}

// SkillNames returns the display names of every skill in declaration order.
func SkillNames() []string {
	out := make([]string, SkillCount)
	for i := range skillTable {
		out[i] = skillTable[i].name
	}
	return out
}

// ParseSkill resolves a skill by display name or key, ignoring case, spaces
// and underscores.
//
// Postcondition: Returns (skill, true) on a match, or (0, false).
func ParseSkill(name string) (Skill, bool) {
	n := normalize(name)
	for i := range skillTable {
		if normalize(skillTable[i].name) == n || normalize(skillTable[i].key) == n {
			return Skill(i), true
		}
	}
	return 0, false
}
