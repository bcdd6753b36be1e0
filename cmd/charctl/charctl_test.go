package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/wasteland/internal/game/character"
	"github.com/cory-johannsen/wasteland/internal/game/registry"
	"github.com/cory-johannsen/wasteland/internal/game/roll"
)

// writeConfig writes a yaml-backend config rooted in a temp dir and returns its path.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "charctl.yaml")
	content := fmt.Sprintf(`
logging:
  level: warn
  format: console
  output: %s
storage:
  backend: yaml
  dir: %s
characters:
  armor_dir: %s
%s`, filepath.Join(dir, "charctl.log"), filepath.Join(dir, "data"), filepath.Join("..", "..", "content", "armor"), extra)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// run executes one charctl invocation against cfg, as a separate process would.
func run(t *testing.T, cfg string, args ...string) (string, error) {
	t.Helper()
	a := &app{}
	defer a.close()
	cmd := newRootCmd(a)
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, cfg string, args ...string) string {
	t.Helper()
	out, err := run(t, cfg, args...)
	require.NoError(t, err, out)
	return out
}

func TestCreateShowList(t *testing.T) {
	cfg := writeConfig(t, "")
	owner := uuid.New()

	out := mustRun(t, cfg, "create", "Doyle", "--race", "ghoul", "--perk", "anti_cold",
		"--owner", owner.String(), "--special", "endurance=8,luck=3")
	assert.Equal(t, fmt.Sprintf("created Doyle for owner %s\n", owner), out)
	mustRun(t, cfg, "create", "Cassidy", "--perk", "Adaptive Eyes")

	out = mustRun(t, cfg, "show", "doyle")
	assert.Contains(t, out, "Name:       Doyle\n")
	assert.Contains(t, out, "Owner:      "+owner.String())
	assert.Contains(t, out, "Race:       Ghoul\n")
	assert.Contains(t, out, "SPECIAL:    S5 P5 E8 C5 I5 A5 L3\n")
	// 60 race + 8*3 endurance
	assert.Contains(t, out, "Radiation:  84%\n")
	assert.Contains(t, out, "Perks:      Advanced Homeostasis (tier 1)\n")

	out = mustRun(t, cfg, "list")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.True(t, strings.HasPrefix(lines[1], "Cassidy"))
	assert.True(t, strings.HasPrefix(lines[2], "Doyle"))
	assert.Contains(t, lines[2], owner.String())
}

func TestCreate_Errors(t *testing.T) {
	cfg := writeConfig(t, "  name_pattern: \"[A-Z][a-z]+\"\n")

	_, err := run(t, cfg, "create", "doyle", "--perk", "sight_adapt")
	assert.ErrorIs(t, err, character.ErrInvalidName)

	_, err = run(t, cfg, "create", "Doyle", "--perk", "anti_radiation")
	assert.Error(t, err, "perk must be first tier")

	_, err = run(t, cfg, "create", "Doyle", "--race", "cyborg", "--perk", "sight_adapt")
	assert.ErrorContains(t, err, "unknown race")

	mustRun(t, cfg, "create", "Doyle", "--perk", "sight_adapt")
	_, err = run(t, cfg, "create", "Doyle", "--perk", "sight_adapt")
	assert.ErrorIs(t, err, registry.ErrNameTaken)

	owner := uuid.New().String()
	mustRun(t, cfg, "create", "Cassidy", "--perk", "sight_adapt", "--owner", owner)
	_, err = run(t, cfg, "create", "Boone", "--perk", "sight_adapt", "--owner", owner)
	assert.ErrorIs(t, err, registry.ErrAlreadyOwner)
}

func TestShow_Unknown(t *testing.T) {
	cfg := writeConfig(t, "")
	_, err := run(t, cfg, "show", "Nobody")
	assert.ErrorIs(t, err, errUnknownCharacter)
}

func TestProgression(t *testing.T) {
	cfg := writeConfig(t, "")
	mustRun(t, cfg, "create", "Doyle", "--perk", "sight_adapt")

	out := mustRun(t, cfg, "allocate", "Doyle", "--skill", "speech=3,repair=2")
	assert.Equal(t, "Doyle has 5 of 10 skill points allocated\n", out)
	_, err := run(t, cfg, "allocate", "Doyle", "--skill", "speech=5,repair=5,science=1")
	assert.ErrorIs(t, err, character.ErrSkillPointsExceeded)
	out = mustRun(t, cfg, "show", "Doyle")
	assert.Contains(t, out, "Skills:     Speech 3, Repair 2 (5/10 points)\n")

	for level := 2; level <= character.MaxLevel; level++ {
		out = mustRun(t, cfg, "upgrade", "Doyle")
		assert.Contains(t, out, fmt.Sprintf("now level %d", level))
	}
	_, err = run(t, cfg, "upgrade", "Doyle")
	assert.ErrorIs(t, err, character.ErrMaxLevel)

	out = mustRun(t, cfg, "perk", "Doyle", "anti_radiation")
	assert.Equal(t, "Doyle selected Radio-Inactive (tier 3)\n", out)
	_, err = run(t, cfg, "perk", "Doyle", "anti_cold")
	assert.ErrorIs(t, err, character.ErrTierTaken)

	mustRun(t, cfg, "reset-skills", "Doyle")
	out = mustRun(t, cfg, "show", "Doyle")
	assert.Contains(t, out, "Level:      5\n")
	assert.Contains(t, out, "Skills:     none (0/30 points)\n")
	// 10 race + 5*3 endurance + 20 perk
	assert.Contains(t, out, "Radiation:  45%\n")
}

func TestOwnership(t *testing.T) {
	cfg := writeConfig(t, "")
	mustRun(t, cfg, "create", "Doyle", "--perk", "sight_adapt")

	next := uuid.New().String()
	_, err := run(t, cfg, "possess", "Doyle", "--owner", next)
	assert.Error(t, err, "owned characters cannot be possessed")

	out := mustRun(t, cfg, "abandon", "Doyle")
	assert.Contains(t, out, "Doyle abandoned by")
	assert.Contains(t, mustRun(t, cfg, "show", "Doyle"), "Owner:      none\n")
	_, err = run(t, cfg, "roll", "Doyle", "luck")
	assert.ErrorIs(t, err, errUnowned)
	_, err = run(t, cfg, "abandon", "Doyle")
	assert.ErrorContains(t, err, "has no owner")

	out = mustRun(t, cfg, "possess", "doyle", "--owner", next)
	assert.Equal(t, fmt.Sprintf("Doyle is now owned by %s\n", next), out)
	assert.True(t, strings.HasPrefix(mustRun(t, cfg, "roll", "Doyle", "luck"), "You rolled "))

	mustRun(t, cfg, "delete", "Doyle")
	_, err = run(t, cfg, "show", "Doyle")
	assert.ErrorIs(t, err, errUnknownCharacter)
	assert.Equal(t, "NAME", strings.Fields(mustRun(t, cfg, "list"))[0])
}

func TestRoll(t *testing.T) {
	cfg := writeConfig(t, "")
	mustRun(t, cfg, "create", "Doyle", "--perk", "sight_adapt")

	out := mustRun(t, cfg, "roll", "Doyle", "speech+1")
	assert.True(t, strings.HasPrefix(out, "You rolled "), out)
	assert.Contains(t, out, " on Speech (+1): ")

	out = mustRun(t, cfg, "roll", "Doyle", "strength-2", "--visibility", "global")
	assert.True(t, strings.HasPrefix(out, "Doyle rolled "), out)
	assert.Contains(t, out, " on Strength (-2): ")

	_, err := run(t, cfg, "roll", "Doyle", "speech", "--visibility", "shout")
	assert.ErrorContains(t, err, "invalid visibility")
	_, err = run(t, cfg, "roll", "Doyle", "juggling")
	assert.ErrorIs(t, err, roll.ErrUnknownTarget)
	_, err = run(t, cfg, "roll", "Doyle", "speech+x")
	assert.ErrorIs(t, err, roll.ErrBadModifier)
}

func TestRoll_SeedIsReproducible(t *testing.T) {
	cfg := writeConfig(t, "")
	mustRun(t, cfg, "create", "Doyle", "--perk", "sight_adapt")

	first := mustRun(t, cfg, "--seed", "42", "roll", "Doyle", "luck")
	second := mustRun(t, cfg, "--seed", "42", "roll", "Doyle", "luck")
	assert.Equal(t, first, second)
	assert.Equal(t, mustRun(t, cfg, "--seed", "7", "dice", "3d6"), mustRun(t, cfg, "--seed", "7", "dice", "3d6"))
}

func TestArmor(t *testing.T) {
	cfg := writeConfig(t, "")
	mustRun(t, cfg, "create", "Doyle", "--perk", "sight_adapt")

	out := mustRun(t, cfg, "armor", "Doyle", "ballistic")
	assert.Equal(t, "You cannot block Ballistic damage without a full armor set\n", out)

	out = mustRun(t, cfg, "armor", "Doyle", "ballistic", "--set", "power", "--head", "leather")
	assert.Contains(t, out, "cannot block", "mixed sets never block")

	out = mustRun(t, cfg, "armor", "Doyle", "ballistic+20", "--set", "power")
	assert.Contains(t, out, "and blocked Ballistic damage with power armor")

	out = mustRun(t, cfg, "armor", "Doyle", "energy+10", "--head", "tesla", "--chest", "tesla",
		"--legs", "tesla", "--feet", "tesla", "--visibility", "local")
	assert.True(t, strings.HasPrefix(out, "Doyle rolled "), out)
	assert.Contains(t, out, "and blocked Energy damage with tesla armor")

	out = mustRun(t, cfg, "armor", "Doyle", "fire+20", "--set", "tesla")
	assert.Contains(t, out, "failed to block Fire damage")

	_, err := run(t, cfg, "armor", "Doyle", "plasma", "--set", "power")
	assert.ErrorIs(t, err, roll.ErrUnknownDamageType)
}

func TestDice(t *testing.T) {
	cfg := writeConfig(t, "")

	out := mustRun(t, cfg, "dice", "2d6+1")
	assert.True(t, strings.HasPrefix(out, "2d6+1: "), out)

	_, err := run(t, cfg, "dice", "2x6")
	assert.Error(t, err)
}
