package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/wasteland/internal/game/dice"
)

// fixedSource returns values from a fixed slice in order, wrapping around.
type fixedSource struct {
	values []int
	pos    int
}

func (f *fixedSource) Intn(n int) int {
	v := f.values[f.pos%len(f.values)]
	f.pos++
	return v % n
}

func TestRoll_UsesSource(t *testing.T) {
	src := &fixedSource{values: []int{3, 4}}
	r := dice.Roll(dice.MustParse("2d6+3"), src)
	assert.Equal(t, []int{4, 5}, r.Dice)
	assert.Equal(t, 12, r.Total())
}

func TestRoll_DiceInRange(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 20).Draw(rt, "count")
		sides := rapid.IntRange(2, 100).Draw(rt, "sides")
		seed := rapid.Uint64().Draw(rt, "seed")

		r := dice.Roll(dice.Expression{Raw: "x", Count: count, Sides: sides}, dice.NewSeededSource(seed))
		require.Len(rt, r.Dice, count)
		for _, d := range r.Dice {
			assert.GreaterOrEqual(rt, d, 1)
			assert.LessOrEqual(rt, d, sides)
		}
	})
}

func TestRollExpr_PropagatesParseError(t *testing.T) {
	_, err := dice.RollExpr("2d6+x", dice.NewCryptoSource())
	assert.ErrorIs(t, err, dice.ErrModifier)
}

func TestRoller_LogsEachRoll(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	roller := dice.NewLoggedRoller(&fixedSource{values: []int{19}}, zap.New(core))

	r, err := roller.RollExpr("1d20-2")
	require.NoError(t, err)
	assert.Equal(t, 18, r.Total())

	entries := logs.FilterMessage("rolled dice").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "1d20-2", fields["expr"])
	assert.EqualValues(t, 18, fields["total"])
}

func TestNewLoggedRoller_Preconditions(t *testing.T) {
	assert.Panics(t, func() { dice.NewLoggedRoller(nil, zap.NewNop()) })
	assert.Panics(t, func() { dice.NewLoggedRoller(dice.NewCryptoSource(), nil) })
}
