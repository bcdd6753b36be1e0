package roll

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/wasteland/internal/game/dice"
	"github.com/cory-johannsen/wasteland/internal/game/ruleset"
)

// Visibility selects who a result is announced to. Delivery is the caller's
// concern; the engine only carries the choice.
type Visibility int

const (
	// Private results are shown to the roller only.
	Private Visibility = iota
	// Local results are shown to players near the roller.
	Local
	// Global results are shown to every player.
	Global
)

func (v Visibility) String() string {
	switch v {
	case Private:
		return "private"
	case Local:
		return "local"
	case Global:
		return "global"
	}
	return fmt.Sprintf("Visibility(%d)", int(v))
}

// ParseVisibility resolves "private", "local" or "global".
func ParseVisibility(s string) (Visibility, bool) {
	for _, v := range []Visibility{Private, Local, Global} {
		if v.String() == s {
			return v, true
		}
	}
	return Private, false
}

// Subject is the read-only view of a character the engine rolls against.
type Subject interface {
	Name() string
	Special() ruleset.Special
	SkillLevel(ruleset.Skill) int
}

// Result is the outcome of a trait or skill check.
type Result struct {
	Character string
	// Target is the display name of the trait or skill rolled.
	Target string
	Roll   int
	// Modifier is the modifier parsed from the roll expression.
	Modifier int
	// Effective is the modifier the roll was classified with.
	Effective  int
	Outcome    Outcome
	Visibility Visibility
}

// String renders the announcement line for the result.
func (r Result) String() string {
	who := r.Character
	if r.Visibility == Private {
		who = "You"
	}
	return fmt.Sprintf("%s rolled %d on %s (%+d): %s", who, r.Roll, r.Target, r.Modifier, r.Outcome)
}

// Engine resolves checks. It is safe for concurrent use and holds no state
// between calls beyond its injected collaborators.
type Engine struct {
	roller *dice.Roller
	armor  *ruleset.ArmorCatalog
	logger *zap.Logger
}

// NewEngine returns an Engine that draws from roller and looks armor up in armor.
//
// Precondition: roller, armor and logger must be non-nil.
func NewEngine(roller *dice.Roller, armor *ruleset.ArmorCatalog, logger *zap.Logger) *Engine {
	if roller == nil || armor == nil || logger == nil {
		panic("roll: NewEngine precondition violated: roller, armor and logger must be non-nil")
	}
	return &Engine{roller: roller, armor: armor, logger: logger}
}

// Resolve rolls a check against the trait or skill named by expr, e.g.
// "speech+3" or "strength-2". Traits are matched before skills.
//
// Postcondition: Returns a Result, or an error wrapping ErrBadModifier or
// ErrUnknownTarget. The result is Private; callers set Visibility to announce it.
func (e *Engine) Resolve(c Subject, expr string) (Result, error) {
	name, modifier, err := ParseTarget(expr)
	if err != nil {
		return Result{}, err
	}

	special := c.Special()
	var target string
	var effective int
	if t, ok := ruleset.ParseTrait(name); ok {
		target = t.Name()
		effective = special.Get(t) + modifier
	} else if s, ok := ruleset.ParseSkill(name); ok {
		target = s.Name()
		effective = c.SkillLevel(s) + s.RollModifier(special) + modifier
	} else {
		return Result{}, fmt.Errorf("%w %q", ErrUnknownTarget, name)
	}

	roll := e.d20()
	res := Result{
		Character: c.Name(),
		Target:    target,
		Roll:      roll,
		Modifier:  modifier,
		Effective: effective,
		Outcome:   Classify(roll, effective, special.Get(ruleset.Luck)),
	}
	e.logger.Debug("check resolved",
		zap.String("character", res.Character),
		zap.String("target", res.Target),
		zap.Int("roll", res.Roll),
		zap.Int("effective_modifier", res.Effective),
		zap.Stringer("outcome", res.Outcome),
	)
	return res, nil
}

// RollDice rolls a free-form "<amount>d<sides>[+N|-N]" expression.
//
// Postcondition: Returns the roll, or an error wrapping dice.ErrSyntax or dice.ErrModifier.
func (e *Engine) RollDice(expr string) (dice.RollResult, error) {
	return e.roller.RollExpr(expr)
}

func (e *Engine) d20() int {
	return e.roller.Roll(dice.D20).Total()
}
