package combat

import (
	"math"

	"github.com/cory-johannsen/cardclash/internal/game/condition"
	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
)

// floorEpsilon absorbs float error so that e.g. 100 - 80*0.3 floors to 76.
const floorEpsilon = 1e-9

func floor(x float64) int {
	return int(math.Floor(x + floorEpsilon))
}

// DamageModel turns attacker and defender stats into a hit amount.
type DamageModel interface {
	// BasicAttack returns the damage of a basic attack.
	//
	// Postcondition: Returns >= 1.
	BasicAttack(attacker, defender *Combatant) int
	// AbilityHit converts the raw formula output of a damaging ability into
	// the amount dealt to defender.
	//
	// Postcondition: Returns >= 0.
	AbilityHit(raw float64, attacker, defender *Combatant) int
}

// StandardModel: basic attacks are max(1, floor(A - D*0.3)); ability hits
// use the raw formula value unmitigated.
type StandardModel struct{}

// BasicAttack implements DamageModel.
func (StandardModel) BasicAttack(attacker, defender *Combatant) int {
	a := attacker.EffectiveStat(condition.StatAttack)
	d := defender.EffectiveStat(condition.StatDefense)
	return max(1, floor(a-d*0.3))
}

// AbilityHit implements DamageModel.
func (StandardModel) AbilityHit(raw float64, _, _ *Combatant) int {
	if raw <= 0 {
		return 0
	}
	return max(1, floor(raw))
}

// MitigatedModel subtracts half the defender's defense from ability hits.
// Basic attacks match StandardModel.
type MitigatedModel struct{}

// BasicAttack implements DamageModel.
func (MitigatedModel) BasicAttack(attacker, defender *Combatant) int {
	return StandardModel{}.BasicAttack(attacker, defender)
}

// AbilityHit implements DamageModel.
func (MitigatedModel) AbilityHit(raw float64, _, defender *Combatant) int {
	if raw <= 0 {
		return 0
	}
	d := defender.EffectiveStat(condition.StatDefense)
	return max(1, floor(raw-d*0.5))
}

type classEffectiveness struct {
	inner DamageModel
}

// WithClassEffectiveness scales every hit of inner by the class matchup
// multiplier.
func WithClassEffectiveness(inner DamageModel) DamageModel {
	return classEffectiveness{inner: inner}
}

func (m classEffectiveness) scale(dmg int, attacker, defender *Combatant) int {
	if dmg <= 0 {
		return dmg
	}
	return max(1, floor(float64(dmg)*ruleset.Effectiveness(attacker.Class, defender.Class)))
}

func (m classEffectiveness) BasicAttack(attacker, defender *Combatant) int {
	return m.scale(m.inner.BasicAttack(attacker, defender), attacker, defender)
}

func (m classEffectiveness) AbilityHit(raw float64, attacker, defender *Combatant) int {
	return m.scale(m.inner.AbilityHit(raw, attacker, defender), attacker, defender)
}

// ModelByName returns the damage model for a config name ("standard" or
// "mitigated"), optionally wrapped with class effectiveness.
//
// Postcondition: Returns (nil, false) for an unknown name.
func ModelByName(name string, effectiveness bool) (DamageModel, bool) {
	var m DamageModel
	switch name {
	case "", "standard":
		m = StandardModel{}
	case "mitigated":
		m = MitigatedModel{}
	default:
		return nil, false
	}
	if effectiveness {
		m = WithClassEffectiveness(m)
	}
	return m, true
}
