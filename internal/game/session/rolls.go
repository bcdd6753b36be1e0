package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/cory-johannsen/wasteland/internal/game/dice"
	"github.com/cory-johannsen/wasteland/internal/game/roll"
)

// ErrNoCharacter is returned when an online player rolls without a loaded character.
var ErrNoCharacter = errors.New("you do not have a character")

// RollCheck resolves a trait or skill check for owner's character and
// announces it with visibility v.
//
// Postcondition: Returns the result, or ErrOffline, ErrNoCharacter or an engine error.
// Nothing is announced on error.
func (m *Manager) RollCheck(owner uuid.UUID, expr string, v roll.Visibility) (roll.Result, error) {
	c, err := m.rollingCharacter(owner)
	if err != nil {
		return roll.Result{}, err
	}
	res, err := m.engine.Resolve(c, expr)
	if err != nil {
		return roll.Result{}, err
	}
	res.Visibility = v
	if _, err := m.Announce(owner, res.String(), v); err != nil {
		return roll.Result{}, err
	}
	return res, nil
}

// RollArmor attempts an armor block for owner's character wearing gear and
// announces it with visibility v.
//
// Postcondition: Returns the result, or ErrOffline, ErrNoCharacter or an engine error.
func (m *Manager) RollArmor(owner uuid.UUID, gear roll.Wearer, expr string, v roll.Visibility) (roll.ArmorResult, error) {
	c, err := m.rollingCharacter(owner)
	if err != nil {
		return roll.ArmorResult{}, err
	}
	res, err := m.engine.RollArmor(c, gear, expr)
	if err != nil {
		return roll.ArmorResult{}, err
	}
	res.Visibility = v
	if _, err := m.Announce(owner, res.String(), v); err != nil {
		return roll.ArmorResult{}, err
	}
	return res, nil
}

// RollDice rolls a free dice expression for owner and announces it with
// visibility v. Free rolls still require a character.
func (m *Manager) RollDice(owner uuid.UUID, expr string, v roll.Visibility) (dice.RollResult, error) {
	c, err := m.rollingCharacter(owner)
	if err != nil {
		return dice.RollResult{}, err
	}
	res, err := m.engine.RollDice(expr)
	if err != nil {
		return dice.RollResult{}, err
	}
	who := c.Name()
	if v == roll.Private {
		who = "You"
	}
	if _, err := m.Announce(owner, fmt.Sprintf("%s rolled %s", who, res), v); err != nil {
		return dice.RollResult{}, err
	}
	return res, nil
}

func (m *Manager) rollingCharacter(owner uuid.UUID) (roll.Subject, error) {
	if _, ok := m.Player(owner); !ok {
		return nil, fmt.Errorf("%w: %s", ErrOffline, owner)
	}
	c, ok := m.registry.CharacterByOwner(owner)
	if !ok {
		return nil, ErrNoCharacter
	}
	return c, nil
}
