package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/wasteland/internal/scripting"
)

const blockScript = `
function can_block(damage_type, roll)
	if damage_type == "energy" then
		return roll >= 15
	end
	return roll >= 10
end
`

func TestCompilePredicate_Call(t *testing.T) {
	p, err := scripting.CompilePredicate("can_block", blockScript, 0)
	require.NoError(t, err)
	defer p.Close()

	ok, err := p.Call("energy", 14)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = p.Call("energy", 15)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = p.Call("melee", 10)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCompilePredicate_MissingFunction(t *testing.T) {
	_, err := scripting.CompilePredicate("can_block", `local x = 1`, 0)
	assert.ErrorIs(t, err, scripting.ErrNoFunction)
}

func TestCompilePredicate_SyntaxError(t *testing.T) {
	_, err := scripting.CompilePredicate("can_block", `function can_block(`, 0)
	assert.Error(t, err)
}

func TestPredicate_RuntimeLimitIsPerCall(t *testing.T) {
	p, err := scripting.CompilePredicate("can_block", `
function can_block(damage_type, roll)
	if roll < 0 then
		while true do end
	end
	return true
end
`, 1000)
	require.NoError(t, err)
	defer p.Close()

	_, err = p.Call("fire", -1)
	assert.Error(t, err)

	// A runaway call must not poison later calls.
	ok, err := p.Call("fire", 5)
	require.NoError(t, err)
	assert.True(t, ok)
}
