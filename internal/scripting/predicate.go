package scripting

import (
	"errors"
	"fmt"
	"sync"

	lua "github.com/yuin/gopher-lua"
)

// ErrNoFunction is returned when a script does not define the expected global function.
var ErrNoFunction = errors.New("scripting: function not defined")

// Predicate is a compiled Lua function returning a boolean.
//
// A Predicate owns one sandboxed LState; calls are serialized because an
// LState is single-threaded. Predicate is safe for concurrent use.
type Predicate struct {
	mu        sync.Mutex
	L         *lua.LState
	fn        lua.LValue
	name      string
	instLimit int
}

// CompilePredicate runs src in a fresh sandbox and binds the global function fnName.
//
// Precondition: src must define a global function named fnName.
// Postcondition: Returns a ready Predicate, or ErrNoFunction / a Lua load error.
func CompilePredicate(fnName, src string, instLimit int) (*Predicate, error) {
	L := NewSandboxedState()
	release := Limit(L, instLimit)
	err := L.DoString(src)
	release()
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("scripting: loading %s: %w", fnName, err)
	}
	fn := L.GetGlobal(fnName)
	if fn.Type() != lua.LTFunction {
		L.Close()
		return nil, fmt.Errorf("%w: %s", ErrNoFunction, fnName)
	}
	return &Predicate{L: L, fn: fn, name: fnName, instLimit: instLimit}, nil
}

// Call invokes the predicate with a string and an integer argument.
//
// Postcondition: Returns the truthiness of the first return value, or the Lua
// runtime error (including an exceeded instruction limit).
func (p *Predicate) Call(s string, n int) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	release := Limit(p.L, p.instLimit)
	defer release()

	if err := p.L.CallByParam(lua.P{
		Fn:      p.fn,
		NRet:    1,
		Protect: true,
	}, lua.LString(s), lua.LNumber(n)); err != nil {
		return false, fmt.Errorf("scripting: calling %s: %w", p.name, err)
	}
	ret := p.L.Get(-1)
	p.L.Pop(1)
	return lua.LVAsBool(ret), nil
}

// Close releases the predicate's Lua state.
func (p *Predicate) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.L.Close()
}
