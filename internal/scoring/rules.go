// Package scoring holds the per-answer scoring formulas shared by every
// mini-game. Everything here is pure: no clocks, no state.
package scoring

import "github.com/shopspring/decimal"

// Rules parameterises the scoring formulas
type Rules struct {
	BasePoints  int
	StreakBonus int

	ComboBase  decimal.Decimal
	ComboStep  decimal.Decimal
	ComboEvery int
	ComboMax   decimal.Decimal

	PerfectWindowMs int64
	PerfectBonus    int
}

// Default returns the rules every game currently plays with
func Default() Rules {
	return Rules{
		BasePoints:      10,
		StreakBonus:     1,
		ComboBase:       decimal.NewFromInt(1),
		ComboStep:       decimal.NewFromFloat(0.5),
		ComboEvery:      5,
		ComboMax:        decimal.NewFromInt(4),
		PerfectWindowMs: 1500,
		PerfectBonus:    5,
	}
}

// PointsForCorrectAnswer scores one correct answer. The streak-adjusted base
// is scaled by the combo multiplier and truncated toward zero, then the
// perfect bonus is added flat.
//
// combo is expected to come from ComboFor or NextCombo. Points are strictly
// increasing across those steps; combos closer together than 1/base points
// can truncate to the same score.
func (r Rules) PointsForCorrectAnswer(streak int, combo decimal.Decimal, elapsedMs int64, isPerfect bool) int {
	if streak < 0 {
		streak = 0
	}
	if combo.LessThan(r.ComboBase) {
		combo = r.ComboBase
	}

	base := decimal.NewFromInt(int64(r.BasePoints + streak*r.StreakBonus))
	points := int(base.Mul(combo).Truncate(0).IntPart())

	if isPerfect {
		points += r.PerfectBonus
	}
	return points
}

// IsPerfect reports whether an answer given elapsedMs after its prompt
// appeared lands in the perfect bracket.
func (r Rules) IsPerfect(elapsedMs int64) bool {
	return elapsedMs >= 0 && elapsedMs <= r.PerfectWindowMs
}

// NextStreak advances the consecutive-success counter
func (r Rules) NextStreak(streak int, success bool) int {
	if !success {
		return 0
	}
	return streak + 1
}

// ComboFor returns the multiplier earned by a run of consecutive successes:
// one step every ComboEvery successes, capped at ComboMax.
func (r Rules) ComboFor(consecutive int) decimal.Decimal {
	if consecutive <= 0 || r.ComboEvery <= 0 {
		return r.ComboBase
	}
	steps := decimal.NewFromInt(int64(consecutive / r.ComboEvery))
	combo := r.ComboBase.Add(r.ComboStep.Mul(steps))
	if combo.GreaterThan(r.ComboMax) {
		return r.ComboMax
	}
	return combo
}

// NextCombo returns the multiplier after an answer. streakAfter is the streak
// already updated for this answer.
func (r Rules) NextCombo(streakAfter int, success bool) decimal.Decimal {
	if !success {
		return r.ComboBase
	}
	return r.ComboFor(streakAfter)
}
