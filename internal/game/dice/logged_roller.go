package dice

import "go.uber.org/zap"

// Roller rolls against one Source and leaves a debug log line per roll, so a
// disputed result can be checked after the fact.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil || logger == nil {
		panic("dice: NewLoggedRoller precondition violated: src and logger must be non-nil")
	}
	return &Roller{src: src, logger: logger}
}

// Roll rolls expr.
//
// Precondition: expr must come from Parse.
func (r *Roller) Roll(expr Expression) RollResult {
	res := Roll(expr, r.src)
	r.logger.Debug("rolled dice",
		zap.String("expr", res.Expression),
		zap.Ints("faces", res.Dice),
		zap.Int("modifier", res.Modifier),
		zap.Int("total", res.Total()),
	)
	return res
}

// RollExpr is Parse followed by Roll.
func (r *Roller) RollExpr(expr string) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return r.Roll(e), nil
}
