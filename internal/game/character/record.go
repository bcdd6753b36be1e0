package character

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/wasteland/internal/game/ruleset"
)

// ErrMalformedRecord is returned by FromRecord when a persisted record cannot
// be turned back into a Character.
var ErrMalformedRecord = errors.New("malformed character record")

// Record is the persisted form of a Character. Every field uses stable
// catalog keys so the document survives display-name changes.
type Record struct {
	Name                string         `yaml:"name" json:"name"`
	OwnerID             string         `yaml:"ownerId,omitempty" json:"owner_id,omitempty"`
	Race                string         `yaml:"race" json:"race"`
	Level               int            `yaml:"level" json:"level"`
	Special             map[string]int `yaml:"special" json:"special"`
	Skills              map[string]int `yaml:"skills,omitempty" json:"skills,omitempty"`
	Perks               []string       `yaml:"perks,omitempty" json:"perks,omitempty"`
	RadiationResistance int            `yaml:"radiationResistance" json:"radiation_resistance"`
}

// ToRecord snapshots the character into its persisted form.
func (c *Character) ToRecord() *Record {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r := &Record{
		Name:                c.name,
		Race:                c.race.Key(),
		Level:               c.level,
		Special:             make(map[string]int, ruleset.TraitCount),
		Skills:              make(map[string]int, ruleset.SkillCount),
		RadiationResistance: c.radiationResistance,
	}
	if c.owner != uuid.Nil {
		r.OwnerID = c.owner.String()
	}
	for _, t := range ruleset.Traits() {
		r.Special[t.Key()] = c.special.Get(t)
	}
	for _, s := range ruleset.Skills() {
		r.Skills[s.Key()] = c.skills[s]
	}
	for tier := ruleset.MinPerkTier; tier <= ruleset.MaxPerkTier; tier++ {
		if p, ok := c.perks[tier]; ok {
			r.Perks = append(r.Perks, p.Key())
		}
	}
	return r
}

// FromRecord rebuilds a Character from its persisted form. The stored
// radiation resistance is ignored and recomputed.
//
// Postcondition: Returns a Character, or an error wrapping ErrMalformedRecord
// describing every invalid field.
func FromRecord(r *Record) (*Character, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil record", ErrMalformedRecord)
	}
	var errs []error

	if r.Name == "" {
		errs = append(errs, errors.New("name is empty"))
	}

	var owner uuid.UUID
	if r.OwnerID != "" {
		id, err := uuid.Parse(r.OwnerID)
		if err != nil {
			errs = append(errs, fmt.Errorf("ownerId %q: %w", r.OwnerID, err))
		}
		owner = id
	}

	race, ok := ruleset.ParseRace(r.Race)
	if !ok {
		errs = append(errs, fmt.Errorf("unknown race %q", r.Race))
	}

	if r.Level < MinLevel || r.Level > MaxLevel {
		errs = append(errs, fmt.Errorf("level %d out of range [%d,%d]", r.Level, MinLevel, MaxLevel))
	}

	special := ruleset.NewSpecial()
	seen := make(map[ruleset.Trait]bool, ruleset.TraitCount)
	for key, v := range r.Special {
		t, ok := ruleset.ParseTrait(key)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown trait %q", key))
			continue
		}
		if err := special.Set(t, v); err != nil {
			errs = append(errs, err)
		}
		seen[t] = true
	}
	for _, t := range ruleset.Traits() {
		if !seen[t] {
			errs = append(errs, fmt.Errorf("trait %s missing", t.Key()))
		}
	}

	var skills [ruleset.SkillCount]int
	for key, v := range r.Skills {
		s, ok := ruleset.ParseSkill(key)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown skill %q", key))
			continue
		}
		if v < 0 || v > ruleset.MaxSkillLevel {
			errs = append(errs, fmt.Errorf("skill %s=%d out of range [0,%d]", s.Key(), v, ruleset.MaxSkillLevel))
			continue
		}
		skills[s] = v
	}

	perks := make(map[int]ruleset.Perk, len(r.Perks))
	for _, key := range r.Perks {
		p, ok := ruleset.ParsePerk(key)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown perk %q", key))
			continue
		}
		if existing, taken := perks[p.Tier()]; taken {
			errs = append(errs, fmt.Errorf("perks %s and %s share tier %d", existing.Key(), p.Key(), p.Tier()))
			continue
		}
		perks[p.Tier()] = p
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w %q: %w", ErrMalformedRecord, r.Name, errors.Join(errs...))
	}

	c := newCharacter(r.Name, race, special)
	c.owner = owner
	c.level = r.Level
	c.skills = skills
	c.perks = perks
	c.updateRadiationResistance()
	return c, nil
}
