package character

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/wasteland/internal/game/ruleset"
)

// ErrIncomplete is returned by Build when a creation stage has not been completed.
var ErrIncomplete = errors.New("character builder incomplete")

// Builder stages a character through creation: name, race, SPECIAL and first perk.
//
// A Builder is owned by a single prospective owner and is not safe for concurrent use.
type Builder struct {
	rule NameRule

	name    string
	race    ruleset.Race
	hasRace bool
	special ruleset.Special
	perk    ruleset.Perk
	hasPerk bool
}

// NewBuilder returns a Builder whose names are validated by rule and whose
// SPECIAL starts at the defaults.
func NewBuilder(rule NameRule) *Builder {
	return &Builder{rule: rule, special: ruleset.NewSpecial()}
}

// SetName stages the character name.
//
// Postcondition: Returns an error wrapping ErrInvalidName and leaves the builder unchanged on failure.
func (b *Builder) SetName(name string) error {
	if err := b.rule.Check(name); err != nil {
		return err
	}
	b.name = name
	return nil
}

// Name returns the staged name, or "" if none is set.
func (b *Builder) Name() string { return b.name }

// SetRace stages the race.
func (b *Builder) SetRace(r ruleset.Race) error {
	if !r.Valid() {
		return fmt.Errorf("unknown race %d", int(r))
	}
	b.race = r
	b.hasRace = true
	return nil
}

// Race returns the staged race.
func (b *Builder) Race() (ruleset.Race, bool) { return b.race, b.hasRace }

// Special returns a copy of the staged SPECIAL for editing.
func (b *Builder) Special() ruleset.Special { return b.special }

// SetSpecial stages a SPECIAL.
func (b *Builder) SetSpecial(s ruleset.Special) error {
	if err := s.Validate(); err != nil {
		return err
	}
	b.special = s
	return nil
}

// SetPerk stages the first perk.
//
// Precondition: p must be a tier 1 perk.
func (b *Builder) SetPerk(p ruleset.Perk) error {
	if !p.Valid() {
		return fmt.Errorf("unknown perk %d", int(p))
	}
	if p.Tier() != ruleset.MinPerkTier {
		return fmt.Errorf("first perk must be tier %d, %s is tier %d", ruleset.MinPerkTier, p.Name(), p.Tier())
	}
	b.perk = p
	b.hasPerk = true
	return nil
}

// Perk returns the staged first perk.
func (b *Builder) Perk() (ruleset.Perk, bool) { return b.perk, b.hasPerk }

// Build materializes the staged character. The result has no owner, level
// MinLevel, no skill points and its radiation resistance computed.
//
// Postcondition: Returns a Character, or an error wrapping ErrIncomplete naming
// every missing stage.
func (b *Builder) Build() (*Character, error) {
	var missing []string
	if b.name == "" {
		missing = append(missing, "name")
	}
	if !b.hasRace {
		missing = append(missing, "race")
	}
	if !b.hasPerk {
		missing = append(missing, "perk")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing %s", ErrIncomplete, strings.Join(missing, ", "))
	}

	c := newCharacter(b.name, b.race, b.special)
	c.perks[b.perk.Tier()] = b.perk
	c.updateRadiationResistance()
	return c, nil
}
