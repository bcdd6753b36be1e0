package roll

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/wasteland/internal/game/dice"
	"github.com/cory-johannsen/wasteland/internal/game/ruleset"
)

// Wearer reports the armor material equipped in each slot.
type Wearer interface {
	Equipped(slot ruleset.ArmorSlot) (material string, ok bool)
}

// Loadout is a Wearer backed by a slot to material-ID map.
type Loadout map[ruleset.ArmorSlot]string

// Equipped implements Wearer.
func (l Loadout) Equipped(slot ruleset.ArmorSlot) (string, bool) {
	m, ok := l[slot]
	return m, ok && m != ""
}

// FullSet returns a Loadout wearing material in every slot.
func FullSet(material string) Loadout {
	l := make(Loadout, len(ruleset.ArmorSlots()))
	for _, slot := range ruleset.ArmorSlots() {
		l[slot] = material
	}
	return l
}

// ArmorResult is the outcome of an armor block attempt.
type ArmorResult struct {
	Character  string
	DamageType ruleset.DamageType
	// Material is the ID of the full set worn, or "" when there is none.
	Material string
	// Rolled is false when no full set was worn and no die was cast.
	Rolled     bool
	Roll       int
	Modifier   int
	Blocked    bool
	Visibility Visibility
}

// Total returns the die roll plus modifier, or 0 if no roll was made.
func (r ArmorResult) Total() int {
	if !r.Rolled {
		return 0
	}
	return r.Roll + r.Modifier
}

func (r ArmorResult) String() string {
	who := r.Character
	if r.Visibility == Private {
		who = "You"
	}
	if !r.Rolled {
		return fmt.Sprintf("%s cannot block %s damage without a full armor set", who, r.DamageType)
	}
	verb := "failed to block"
	if r.Blocked {
		verb = "blocked"
	}
	return fmt.Sprintf("%s rolled %d (%+d) and %s %s damage with %s armor", who, r.Roll, r.Modifier, verb, r.DamageType, r.Material)
}

// fullSet returns the material worn in every slot, if all slots match a known material.
func (e *Engine) fullSet(gear Wearer) (*ruleset.ArmorMaterial, bool) {
	var id string
	for i, slot := range ruleset.ArmorSlots() {
		m, ok := gear.Equipped(slot)
		if !ok {
			return nil, false
		}
		if i == 0 {
			id = m
		} else if !strings.EqualFold(m, id) {
			return nil, false
		}
	}
	return e.armor.Material(id)
}

// RollArmor attempts to block damage named by expr, e.g. "ballistic+2".
// Only a complete set of one known material can block: with anything less the
// attempt fails without a roll. Otherwise d20 plus the modifier is offered to
// the material's block predicate.
//
// Postcondition: Returns an ArmorResult, or an error wrapping ErrBadModifier,
// ErrUnknownDamageType, or a predicate failure.
func (e *Engine) RollArmor(c Subject, gear Wearer, expr string) (ArmorResult, error) {
	name, modifier, err := ParseTarget(expr)
	if err != nil {
		return ArmorResult{}, err
	}
	dt, ok := ruleset.ParseDamageType(name)
	if !ok {
		return ArmorResult{}, fmt.Errorf("%w %q", ErrUnknownDamageType, name)
	}

	res := ArmorResult{Character: c.Name(), DamageType: dt, Modifier: modifier}
	material, ok := e.fullSet(gear)
	if !ok {
		return res, nil
	}

	res.Material = material.ID
	res.Rolled = true
	res.Roll = e.roller.Roll(dice.D20).Total()
	res.Blocked, err = material.CanBlock(dt, res.Total())
	if err != nil {
		return ArmorResult{}, fmt.Errorf("armor %s: %w", material.ID, err)
	}
	e.logger.Debug("armor roll",
		zap.String("character", res.Character),
		zap.String("material", res.Material),
		zap.Stringer("damage_type", dt),
		zap.Int("total", res.Total()),
		zap.Bool("blocked", res.Blocked),
	)
	return res, nil
}
