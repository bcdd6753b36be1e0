package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/cory-johannsen/wasteland/internal/game/roll"
	"github.com/cory-johannsen/wasteland/internal/game/ruleset"
)

// rollLocation is where charctl's one-shot sessions stand.
const rollLocation = "charctl"

var errUnowned = errors.New("character has no owner to roll as")

// rollAs joins the owner of the character named name to a one-shot session,
// runs fn for that owner and prints every announcement the owner received.
func (a *app) rollAs(ctx context.Context, w io.Writer, name string, fn func(owner uuid.UUID) error) error {
	c, err := a.character(ctx, name)
	if err != nil {
		return err
	}
	owner, ok := c.Owner()
	if !ok {
		return fmt.Errorf("%w: %q", errUnowned, c.Name())
	}
	p, err := a.sessions.Join(ctx, owner, c.Name(), rollLocation)
	if err != nil {
		return err
	}
	defer func() { _ = a.sessions.Leave(owner) }()

	if err := fn(owner); err != nil {
		return err
	}
	for {
		select {
		case msg := <-p.Inbox.Messages():
			fmt.Fprintln(w, msg)
		default:
			return nil
		}
	}
}

func newRollCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "roll <name> <trait|skill>[+N|-N]",
		Short: "Roll a trait or skill check for a character",
		Args:  cobra.ExactArgs(2),
	}
	visibility := visibilityFlag(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		v, err := visibility()
		if err != nil {
			return err
		}
		return a.rollAs(cmd.Context(), cmd.OutOrStdout(), args[0], func(owner uuid.UUID) error {
			_, err := a.sessions.RollCheck(owner, args[1], v)
			return err
		})
	}
	return cmd
}

func newArmorCmd(a *app) *cobra.Command {
	var (
		set   string
		slots = make(map[ruleset.ArmorSlot]*string)
	)
	cmd := &cobra.Command{
		Use:   "armor <name> <damage-type>[+N|-N]",
		Short: "Roll an armor block for a character wearing the given gear",
		Args:  cobra.ExactArgs(2),
	}
	visibility := visibilityFlag(cmd)
	cmd.Flags().StringVar(&set, "set", "", "wear one material in every slot")
	for _, slot := range ruleset.ArmorSlots() {
		var material string
		slots[slot] = &material
		cmd.Flags().StringVar(&material, string(slot), "", fmt.Sprintf("material worn on the %s", string(slot)))
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		v, err := visibility()
		if err != nil {
			return err
		}
		gear := roll.Loadout{}
		if set != "" {
			gear = roll.FullSet(set)
		}
		for slot, material := range slots {
			if *material != "" {
				gear[slot] = *material
			}
		}
		return a.rollAs(cmd.Context(), cmd.OutOrStdout(), args[0], func(owner uuid.UUID) error {
			_, err := a.sessions.RollArmor(owner, gear, args[1], v)
			return err
		})
	}
	return cmd
}

func newDiceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dice <amount>d<sides>[+N|-N]",
		Short: "Roll free dice",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.engine.RollDice(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.String())
			return nil
		},
	}
}
