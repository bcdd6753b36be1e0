package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/wasteland/internal/config"
	"github.com/cory-johannsen/wasteland/internal/game/character"
	"github.com/cory-johannsen/wasteland/internal/game/dice"
	"github.com/cory-johannsen/wasteland/internal/game/registry"
	"github.com/cory-johannsen/wasteland/internal/game/roll"
	"github.com/cory-johannsen/wasteland/internal/game/ruleset"
	"github.com/cory-johannsen/wasteland/internal/game/session"
	"github.com/cory-johannsen/wasteland/internal/observability"
)

var errUnknownCharacter = errors.New("no such character")

// app holds the collaborators shared by every subcommand. It is opened once
// before a subcommand runs.
type app struct {
	configPath string
	seed       uint64

	cfg      config.Config
	logger   *zap.Logger
	registry *registry.Registry
	engine   *roll.Engine
	sessions *session.Manager
	nameRule character.NameRule
	closers  []func()
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "charctl",
		Short:         "Administer wasteland characters",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to configuration file (defaults and WASTELAND_ env only when empty)")
	root.PersistentFlags().Uint64Var(&a.seed, "seed", 0, "seed the dice for reproducible rolls (0 = crypto/rand)")

	root.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newCreateCmd(a),
		newDeleteCmd(a),
		newPossessCmd(a),
		newAbandonCmd(a),
		newUpgradeCmd(a),
		newAllocateCmd(a),
		newResetSkillsCmd(a),
		newPerkCmd(a),
		newRollCmd(a),
		newArmorCmd(a),
		newDiceCmd(a),
	)
	return root
}

func (a *app) loadConfig() (config.Config, error) {
	if a.configPath != "" {
		return config.Load(a.configPath)
	}
	return config.LoadFromViper(config.NewViper())
}

func (a *app) open(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.cfg = cfg

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	a.logger = logger
	a.closers = append(a.closers, func() { _ = logger.Sync() })

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	a.closers = append(a.closers, closeStore)

	armor, err := ruleset.LoadArmorCatalog(cfg.Characters.ArmorDir)
	if err != nil {
		return fmt.Errorf("loading armor: %w", err)
	}
	rule, err := character.NewNameRule(cfg.Characters.NamePattern)
	if err != nil {
		return err
	}
	a.nameRule = rule

	src := dice.NewCryptoSource()
	if a.seed != 0 {
		src = dice.NewSeededSource(a.seed)
	}
	a.engine = roll.NewEngine(dice.NewLoggedRoller(src, logger), armor, logger)
	a.registry = registry.New(store, logger)
	a.sessions = session.NewManager(a.registry, a.engine, logger)

	logger.Debug("charctl ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.Strings("armor", armor.IDs()))
	return nil
}

// close releases everything open acquired, most recent first.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// character reads the stored character named name.
func (a *app) character(ctx context.Context, name string) (*character.Character, error) {
	c, ok := a.registry.LoadOfflineCharacter(ctx, name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownCharacter, name)
	}
	return c, nil
}

// visibilityFlag registers --visibility on cmd and returns its parser.
func visibilityFlag(cmd *cobra.Command) func() (roll.Visibility, error) {
	var raw string
	cmd.Flags().StringVar(&raw, "visibility", roll.Private.String(), "announce to: private, local or global")
	return func() (roll.Visibility, error) {
		v, ok := roll.ParseVisibility(raw)
		if !ok {
			return roll.Private, fmt.Errorf("invalid visibility %q: must be private, local or global", raw)
		}
		return v, nil
	}
}
