// Package character defines the character aggregate, its staged builder and
// its persisted record form.
package character

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/cory-johannsen/wasteland/internal/game/ruleset"
)

const (
	// MinLevel is the level every character is created at.
	MinLevel = 1
	// MaxLevel is the highest level a character can reach.
	MaxLevel = 5
	// SkillPointsPerLevel is the skill budget granted per level, plus one level's worth at creation.
	SkillPointsPerLevel = 5
	// MaxRadiationResistance caps the derived radiation resistance.
	MaxRadiationResistance = 100
	// perkRadiationBonus is granted by the Radio-Inactive perk.
	perkRadiationBonus = 20
	// enduranceRadiationFactor scales Endurance into radiation resistance.
	enduranceRadiationFactor = 3
)

var (
	// ErrMaxLevel is returned when upgrading a character already at MaxLevel.
	ErrMaxLevel = errors.New("character is already at max level")
	// ErrSkillLevelOutOfRange is returned for skill points outside [0, ruleset.MaxSkillLevel].
	ErrSkillLevelOutOfRange = errors.New("skill level out of range")
	// ErrSkillPointsExceeded is returned when an allocation exceeds the level's skill budget.
	ErrSkillPointsExceeded = errors.New("not enough skill points")
	// ErrTierTaken is returned when selecting a perk in a tier that already has one.
	ErrTierTaken = errors.New("perk tier already selected")
)

// Key returns the persistence key of a character name: the name in lowercase.
func Key(name string) string {
	return strings.ToLower(name)
}

// Character is a player-owned role-play character.
//
// All methods are safe for concurrent use. Name and race never change after
// creation; the level only increases.
type Character struct {
	mu sync.RWMutex

	name    string
	owner   uuid.UUID // uuid.Nil when abandoned
	race    ruleset.Race
	level   int
	special ruleset.Special
	skills  [ruleset.SkillCount]int
	perks   map[int]ruleset.Perk // tier → perk

	radiationResistance int
}

func newCharacter(name string, race ruleset.Race, special ruleset.Special) *Character {
	return &Character{
		name:    name,
		race:    race,
		level:   MinLevel,
		special: special,
		perks:   make(map[int]ruleset.Perk),
	}
}

// Name returns the character's display name.
func (c *Character) Name() string { return c.name }

// Key returns the character's persistence key.
func (c *Character) Key() string { return Key(c.name) }

// Race returns the character's race.
func (c *Character) Race() ruleset.Race { return c.race }

// Owner returns the owning identity, or (uuid.Nil, false) for an abandoned character.
func (c *Character) Owner() (uuid.UUID, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.owner, c.owner != uuid.Nil
}

// Possess assigns owner to the character.
//
// Precondition: owner != uuid.Nil. Only the registry changes ownership; other
// callers go through registry.Registry.PossessCharacter.
func (c *Character) Possess(owner uuid.UUID) {
	if owner == uuid.Nil {
		panic("character: Possess precondition violated: owner must not be uuid.Nil")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = owner
}

// Abandon clears the character's owner.
func (c *Character) Abandon() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.owner = uuid.Nil
}

// Level returns the character's level in [MinLevel, MaxLevel].
func (c *Character) Level() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level
}

// IncreaseLevel raises the level by one.
//
// Postcondition: Returns the new level, or ErrMaxLevel with the level unchanged.
func (c *Character) IncreaseLevel() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.level >= MaxLevel {
		return c.level, ErrMaxLevel
	}
	c.level++
	return c.level, nil
}

// Special returns a copy of the character's SPECIAL. Edits to the copy have
// no effect until passed to SetSpecial.
func (c *Character) Special() ruleset.Special {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.special
}

// Trait returns the value of a single trait.
func (c *Character) Trait(t ruleset.Trait) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.special.Get(t)
}

// SetSpecial replaces the character's SPECIAL and recomputes radiation resistance.
//
// Postcondition: Returns ruleset.ErrTraitOutOfRange and leaves the character unchanged
// if any trait is out of bounds.
func (c *Character) SetSpecial(s ruleset.Special) error {
	if err := s.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.special = s
	c.updateRadiationResistance()
	return nil
}

// SkillLevel returns the points allocated to skill s.
func (c *Character) SkillLevel(s ruleset.Skill) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.skills[s]
}

// SkillLevels returns a copy of every skill's points.
func (c *Character) SkillLevels() map[ruleset.Skill]int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[ruleset.Skill]int, ruleset.SkillCount)
	for i, v := range c.skills {
		out[ruleset.Skill(i)] = v
	}
	return out
}

// SkillPoints returns the total skill budget for the character's level.
func (c *Character) SkillPoints() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return skillBudget(c.level)
}

func skillBudget(level int) int {
	return (level + 1) * SkillPointsPerLevel
}

// AllocatedSkillPoints returns the number of skill points spent.
func (c *Character) AllocatedSkillPoints() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return sumSkills(c.skills)
}

func sumSkills(skills [ruleset.SkillCount]int) int {
	total := 0
	for _, v := range skills {
		total += v
	}
	return total
}

// SetSkillLevel sets the points allocated to a single skill.
//
// Postcondition: Returns ErrSkillLevelOutOfRange or ErrSkillPointsExceeded and
// leaves the character unchanged on violation.
func (c *Character) SetSkillLevel(s ruleset.Skill, points int) error {
	return c.ApplySkillLevels(map[ruleset.Skill]int{s: points})
}

// ApplySkillLevels sets several skills at once, all or nothing.
//
// Postcondition: Either every level in levels is applied, or none is and an error is returned.
func (c *Character) ApplySkillLevels(levels map[ruleset.Skill]int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.skills
	for s, points := range levels {
		if !s.Valid() {
			return fmt.Errorf("%w: unknown skill %d", ErrSkillLevelOutOfRange, int(s))
		}
		if points < 0 || points > ruleset.MaxSkillLevel {
			return fmt.Errorf("%w: %s=%d", ErrSkillLevelOutOfRange, s.Name(), points)
		}
		next[s] = points
	}
	if spent, budget := sumSkills(next), skillBudget(c.level); spent > budget {
		return fmt.Errorf("%w: %d allocated, %d available", ErrSkillPointsExceeded, spent, budget)
	}
	c.skills = next
	return nil
}

// ResetSkills returns every skill to zero points.
func (c *Character) ResetSkills() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skills = [ruleset.SkillCount]int{}
}

// Perks returns the selected perks ordered by tier.
func (c *Character) Perks() []ruleset.Perk {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ruleset.Perk, 0, len(c.perks))
	for _, p := range c.perks {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Tier() < out[j].Tier() })
	return out
}

// PerkInTier returns the perk selected in tier, if any.
func (c *Character) PerkInTier(tier int) (ruleset.Perk, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.perks[tier]
	return p, ok
}

// HasPerk reports whether p is selected.
func (c *Character) HasPerk(p ruleset.Perk) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	selected, ok := c.perks[p.Tier()]
	return ok && selected == p
}

// SelectPerk adds p to the character and recomputes radiation resistance.
//
// Postcondition: Returns ErrTierTaken if a perk of p's tier is already selected.
func (c *Character) SelectPerk(p ruleset.Perk) error {
	if !p.Valid() {
		return fmt.Errorf("unknown perk %d", int(p))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.perks[p.Tier()]; ok {
		return fmt.Errorf("%w: tier %d has %s", ErrTierTaken, p.Tier(), existing.Name())
	}
	c.perks[p.Tier()] = p
	c.updateRadiationResistance()
	return nil
}

// RadiationResistance returns the derived radiation resistance.
func (c *Character) RadiationResistance() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.radiationResistance
}

// UpdateRadiationResistance recomputes the derived radiation resistance from
// race, Endurance and perks.
//
// Postcondition: RadiationResistance() is in [0, MaxRadiationResistance].
func (c *Character) UpdateRadiationResistance() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.updateRadiationResistance()
}

func (c *Character) updateRadiationResistance() {
	r := c.race.RadiationBonus() + c.special.Get(ruleset.Endurance)*enduranceRadiationFactor
	if p, ok := c.perks[ruleset.AntiRadiation.Tier()]; ok && p == ruleset.AntiRadiation {
		r += perkRadiationBonus
	}
	c.radiationResistance = min(max(r, 0), MaxRadiationResistance)
}
