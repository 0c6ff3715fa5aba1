// Package ai implements the decision policies that choose each combatant's
// action: a category heuristic and Lua-scripted tactics layered over it.
package ai

import (
	"github.com/cory-johannsen/cardclash/internal/game/ability"
	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/game/condition"
	"github.com/cory-johannsen/cardclash/internal/game/dice"
	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
)

// DefaultAbilityChance is the probability of using an ability whose category
// has no situational rule.
const DefaultAbilityChance = 0.7

const (
	healBelow        = 0.6
	controlAbove     = 0.8
	buffAbove        = 0.7
	buffEarlyTurns   = 10
	damageClassBonus = 0.2
)

// Heuristic is the default decision policy. It looks only at the current
// state: no search, O(team size) per decision.
type Heuristic struct {
	catalog *ability.Catalog
	src     dice.Source
	chance  float64
}

// NewHeuristic creates a Heuristic policy.
//
// Precondition: catalog and src must be non-nil; chance in [0, 1].
func NewHeuristic(catalog *ability.Catalog, src dice.Source, chance float64) *Heuristic {
	if catalog == nil {
		panic("ai.NewHeuristic: catalog must not be nil")
	}
	if src == nil {
		panic("ai.NewHeuristic: src must not be nil")
	}
	return &Heuristic{catalog: catalog, src: src, chance: chance}
}

// Decide implements combat.Policy.
//
// A stunned actor skips. A ready ability is used when its category rule
// holds and a valid target exists; otherwise the actor basic attacks.
func (h *Heuristic) Decide(actor *combat.Combatant, state *combat.BattleState) combat.Action {
	if actor.Stunned() {
		return combat.Action{Kind: combat.ActionSkip}
	}
	if actor.Ready() {
		if def, err := h.catalog.Get(actor.AbilityKey); err == nil && h.shouldUse(actor, def, state) {
			if target := AbilityTarget(actor, def, state); target != nil {
				return combat.Action{Kind: combat.ActionAbility, AbilityKey: def.Key, TargetID: target.ID}
			}
		}
	}
	return BasicAttack(actor, state)
}

func (h *Heuristic) shouldUse(actor *combat.Combatant, def *ability.Definition, state *combat.BattleState) bool {
	allies := state.Living(actor.Team)
	enemies := state.Living(actor.Team.Opponent())
	switch def.Category {
	case ability.CategoryHealing:
		for _, a := range allies {
			if a.HPRatio() < healBelow {
				return true
			}
		}
		return false
	case ability.CategoryControl:
		for _, e := range enemies {
			if e.Class == ruleset.ClassDamage || e.HPRatio() > controlAbove {
				return true
			}
		}
		return false
	case ability.CategoryBuff:
		if state.TurnCounter < buffEarlyTurns {
			return true
		}
		for _, a := range allies {
			if a.HPRatio() > buffAbove {
				return true
			}
		}
		return false
	case ability.CategoryDebuff:
		atk := actor.EffectiveStat(condition.StatAttack)
		for _, e := range enemies {
			if e.EffectiveStat(condition.StatAttack) > atk {
				return true
			}
		}
		return false
	default:
		return dice.Chance(h.src, h.chance)
	}
}

// BasicAttack returns a basic attack on the enemy taunter, or else on the
// preferred enemy target.
func BasicAttack(actor *combat.Combatant, state *combat.BattleState) combat.Action {
	enemy := actor.Team.Opponent()
	if t := state.Taunter(enemy); t != nil {
		return combat.Action{Kind: combat.ActionBasicAttack, TargetID: t.ID}
	}
	if t := EnemyTarget(actor, state); t != nil {
		return combat.Action{Kind: combat.ActionBasicAttack, TargetID: t.ID}
	}
	return combat.Action{Kind: combat.ActionSkip}
}

// EnemyTarget returns the living enemy minimising hpRatio, with Damage-class
// enemies scored 0.2 lower. Ties keep roster order.
//
// Postcondition: Returns nil only when no enemy is alive.
func EnemyTarget(actor *combat.Combatant, state *combat.BattleState) *combat.Combatant {
	var best *combat.Combatant
	bestScore := 0.0
	for _, e := range state.Living(actor.Team.Opponent()) {
		score := e.HPRatio()
		if e.Class == ruleset.ClassDamage {
			score -= damageClassBonus
		}
		if best == nil || score < bestScore {
			best, bestScore = e, score
		}
	}
	return best
}

// AbilityTarget picks the target for def: the actor for self effects, the
// lowest-HP ally for heals, the highest-attack ally for other ally effects
// and EnemyTarget otherwise. Sacrifice never targets the actor.
//
// Postcondition: Returns nil when no valid target exists.
func AbilityTarget(actor *combat.Combatant, def *ability.Definition, state *combat.BattleState) *combat.Combatant {
	switch def.Effect.Side() {
	case ability.SideSelf:
		return actor
	case ability.SideAlly:
		excludeSelf := def.Effect.Kind == ability.KindSacrificeHeal
		if def.Category == ability.CategoryHealing {
			return lowestHPAlly(actor, state, excludeSelf)
		}
		return strongestAlly(actor, state, excludeSelf)
	default:
		return EnemyTarget(actor, state)
	}
}

func lowestHPAlly(actor *combat.Combatant, state *combat.BattleState, excludeSelf bool) *combat.Combatant {
	var best *combat.Combatant
	for _, a := range state.Living(actor.Team) {
		if excludeSelf && a == actor {
			continue
		}
		if best == nil || a.HPRatio() < best.HPRatio() {
			best = a
		}
	}
	return best
}

func strongestAlly(actor *combat.Combatant, state *combat.BattleState, excludeSelf bool) *combat.Combatant {
	var best *combat.Combatant
	for _, a := range state.Living(actor.Team) {
		if excludeSelf && a == actor {
			continue
		}
		if best == nil || a.EffectiveStat(condition.StatAttack) > best.EffectiveStat(condition.StatAttack) {
			best = a
		}
	}
	return best
}
