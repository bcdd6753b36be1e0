package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/wasteland/internal/game/character"
	"github.com/cory-johannsen/wasteland/internal/game/ruleset"
)

// listConcurrency bounds the number of characters read at once by list.
const listConcurrency = 8

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every stored character",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			keys, err := a.registry.ExistingCharacters(ctx)
			if err != nil {
				return err
			}

			chars := make([]*character.Character, len(keys))
			g, gctx := errgroup.WithContext(ctx)
			g.SetLimit(listConcurrency)
			for i, key := range keys {
				g.Go(func() error {
					// Unreadable records are listed as such rather than failing the listing.
					chars[i], _ = a.registry.LoadOfflineCharacter(gctx, key)
					return gctx.Err()
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-24s %-14s %-5s %s\n", "NAME", "RACE", "LEVEL", "OWNER")
			for i, c := range chars {
				if c == nil {
					fmt.Fprintf(out, "%-24s %s\n", keys[i], "(unreadable)")
					continue
				}
				fmt.Fprintf(out, "%-24s %-14s %-5d %s\n", c.Name(), c.Race().Name(), c.Level(), ownerString(c))
			}
			return nil
		},
	}
}

func ownerString(c *character.Character) string {
	if owner, ok := c.Owner(); ok {
		return owner.String()
	}
	return "none"
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a character sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.character(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			writeSheet(cmd.OutOrStdout(), c)
			return nil
		},
	}
}

func writeSheet(w io.Writer, c *character.Character) {
	fmt.Fprintf(w, "Name:       %s\n", c.Name())
	fmt.Fprintf(w, "Owner:      %s\n", ownerString(c))
	fmt.Fprintf(w, "Race:       %s\n", c.Race().Name())
	fmt.Fprintf(w, "Level:      %d\n", c.Level())
	fmt.Fprintf(w, "SPECIAL:    %s\n", c.Special())
	fmt.Fprintf(w, "Radiation:  %d%%\n", c.RadiationResistance())

	var skills []string
	for _, s := range ruleset.Skills() {
		if n := c.SkillLevel(s); n > 0 {
			skills = append(skills, fmt.Sprintf("%s %d", s.Name(), n))
		}
	}
	fmt.Fprintf(w, "Skills:     %s (%d/%d points)\n", joinOrNone(skills), c.AllocatedSkillPoints(), c.SkillPoints())

	var perks []string
	for _, p := range c.Perks() {
		perks = append(perks, fmt.Sprintf("%s (tier %d)", p.Name(), p.Tier()))
	}
	fmt.Fprintf(w, "Perks:      %s\n", joinOrNone(perks))
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "none"
	}
	return strings.Join(items, ", ")
}

func newCreateCmd(a *app) *cobra.Command {
	var (
		race    string
		perk    string
		owner   string
		special map[string]int
	)
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a character owned by --owner (a new id when omitted)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID := uuid.New()
			if owner != "" {
				id, err := uuid.Parse(owner)
				if err != nil {
					return fmt.Errorf("invalid owner %q: %w", owner, err)
				}
				ownerID = id
			}

			b := character.NewBuilder(a.nameRule)
			if err := b.SetName(args[0]); err != nil {
				return err
			}
			r, ok := ruleset.ParseRace(race)
			if !ok {
				return fmt.Errorf("unknown race %q", race)
			}
			if err := b.SetRace(r); err != nil {
				return err
			}
			s := b.Special()
			for _, name := range sortedKeys(special) {
				t, ok := ruleset.ParseTrait(name)
				if !ok {
					return fmt.Errorf("unknown trait %q", name)
				}
				if err := s.Set(t, special[name]); err != nil {
					return err
				}
			}
			if err := b.SetSpecial(s); err != nil {
				return err
			}
			p, ok := ruleset.ParsePerk(perk)
			if !ok {
				return fmt.Errorf("unknown perk %q", perk)
			}
			if err := b.SetPerk(p); err != nil {
				return err
			}

			a.registry.AddCharacterBuilder(ownerID, b)
			c, err := a.registry.CreateCharacter(cmd.Context(), ownerID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s for owner %s\n", c.Name(), ownerID)
			return nil
		},
	}
	cmd.Flags().StringVar(&race, "race", ruleset.Wastelander.Name(), "race of the character")
	cmd.Flags().StringVar(&perk, "perk", "", "first-tier perk (required)")
	cmd.Flags().StringVar(&owner, "owner", "", "owner id")
	cmd.Flags().StringToIntVar(&special, "special", nil, "trait overrides, e.g. strength=7,luck=3")
	_ = cmd.MarkFlagRequired("perk")
	return cmd
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a character and its owner mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.character(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.registry.DeleteCharacter(cmd.Context(), c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", c.Name())
			return nil
		},
	}
}

func newPossessCmd(a *app) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "possess <name>",
		Short: "Give an unowned character to --owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ownerID, err := uuid.Parse(owner)
			if err != nil {
				return fmt.Errorf("invalid owner %q: %w", owner, err)
			}
			c, ok := a.registry.PossessCharacter(cmd.Context(), ownerID, args[0])
			if !ok {
				return fmt.Errorf("cannot possess %q: it is missing or owned, or the owner already has a character", args[0])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now owned by %s\n", c.Name(), ownerID)
			return nil
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner id (required)")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

func newAbandonCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "abandon <name>",
		Short: "Clear the owner of a character",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c, err := a.character(ctx, args[0])
			if err != nil {
				return err
			}
			owner, ok := c.Owner()
			if !ok {
				return fmt.Errorf("%s has no owner", c.Name())
			}
			if _, ok := a.registry.LoadCharacter(ctx, owner); !ok {
				return fmt.Errorf("loading %s for owner %s failed", c.Name(), owner)
			}
			abandoned, err := a.registry.AbandonCharacter(ctx, owner)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s abandoned by %s\n", abandoned.Name(), owner)
			return nil
		},
	}
}

// mutate loads the named character, applies fn and saves the result.
func (a *app) mutate(cmd *cobra.Command, name string, fn func(c *character.Character) error) (*character.Character, error) {
	c, err := a.character(cmd.Context(), name)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := a.registry.SaveCharacter(cmd.Context(), c); err != nil {
		return nil, err
	}
	return c, nil
}

func newUpgradeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "upgrade <name>",
		Short: "Raise a character one level",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.mutate(cmd, args[0], func(c *character.Character) error {
				_, err := c.IncreaseLevel()
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now level %d with %d skill points\n", c.Name(), c.Level(), c.SkillPoints())
			return nil
		},
	}
}

func newAllocateCmd(a *app) *cobra.Command {
	var levels map[string]int
	cmd := &cobra.Command{
		Use:   "allocate <name>",
		Short: "Set skill levels, e.g. --skill speech=3,repair=2",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed := make(map[ruleset.Skill]int, len(levels))
			for _, name := range sortedKeys(levels) {
				s, ok := ruleset.ParseSkill(name)
				if !ok {
					return fmt.Errorf("unknown skill %q", name)
				}
				parsed[s] = levels[name]
			}
			c, err := a.mutate(cmd, args[0], func(c *character.Character) error {
				return c.ApplySkillLevels(parsed)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s has %d of %d skill points allocated\n", c.Name(), c.AllocatedSkillPoints(), c.SkillPoints())
			return nil
		},
	}
	cmd.Flags().StringToIntVar(&levels, "skill", nil, "skill levels to set")
	_ = cmd.MarkFlagRequired("skill")
	return cmd
}

func newResetSkillsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-skills <name>",
		Short: "Return every allocated skill point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.mutate(cmd, args[0], func(c *character.Character) error {
				c.ResetSkills()
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s skills reset (%d points free)\n", c.Name(), c.SkillPoints())
			return nil
		},
	}
}

func newPerkCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "perk <name> <perk>",
		Short: "Select a perk in a tier the character has not used",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := ruleset.ParsePerk(args[1])
			if !ok {
				return fmt.Errorf("unknown perk %q", args[1])
			}
			c, err := a.mutate(cmd, args[0], func(c *character.Character) error {
				return c.SelectPerk(p)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s selected %s (tier %d)\n", c.Name(), p.Name(), p.Tier())
			return nil
		},
	}
}
