package combat_test

import (
	"fmt"

	"github.com/cory-johannsen/cardclash/internal/game/ability"
	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/game/dice"
	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
)

// fixedSource returns queued float draws and then f; Intn always returns 0.
type fixedSource struct {
	floats []float64
	f      float64
}

func (s *fixedSource) Intn(_ int) int { return 0 }
func (s *fixedSource) Float64() float64 {
	if len(s.floats) > 0 {
		v := s.floats[0]
		s.floats = s.floats[1:]
		return v
	}
	return s.f
}

func card(id string, class ruleset.Class, atk, def, spd, hp int, abilityKey string) *combat.Combatant {
	return combat.NewCombatant(id, "Card "+id, class, combat.Stats{Attack: atk, Defense: def, Speed: spd, MaxHP: hp}, abilityKey)
}

// abilityFirst uses the assigned ability whenever it is ready: enemy side
// abilities hit the first living enemy, ally side abilities the first other
// living ally (or self), self abilities the actor.
var abilityFirst = combat.PolicyFunc(func(actor *combat.Combatant, state *combat.BattleState) combat.Action {
	if actor.Stunned() {
		return combat.Action{Kind: combat.ActionSkip}
	}
	enemies := state.Living(actor.Team.Opponent())
	if actor.Ready() {
		def, err := ability.Default().Get(actor.AbilityKey)
		if err == nil {
			switch def.Effect.Side() {
			case ability.SideSelf:
				return combat.Action{Kind: combat.ActionAbility, AbilityKey: def.Key}
			case ability.SideAlly:
				for _, a := range state.Living(actor.Team) {
					if a != actor {
						return combat.Action{Kind: combat.ActionAbility, AbilityKey: def.Key, TargetID: a.ID}
					}
				}
				if def.Effect.Kind != ability.KindSacrificeHeal {
					return combat.Action{Kind: combat.ActionAbility, AbilityKey: def.Key, TargetID: actor.ID}
				}
			default:
				if len(enemies) > 0 {
					return combat.Action{Kind: combat.ActionAbility, AbilityKey: def.Key, TargetID: enemies[0].ID}
				}
			}
		}
	}
	return combat.BasicAttackPolicy{}.Decide(actor, state)
})

// randomPolicy flips a coin between the ability and a basic attack and picks
// targets at random, drawing only from src.
func randomPolicy(src dice.Source) combat.Policy {
	return combat.PolicyFunc(func(actor *combat.Combatant, state *combat.BattleState) combat.Action {
		if actor.Stunned() {
			return combat.Action{Kind: combat.ActionSkip}
		}
		enemies := state.Living(actor.Team.Opponent())
		allies := state.Living(actor.Team)
		if actor.Ready() && dice.Chance(src, 0.5) {
			def, err := ability.Default().Get(actor.AbilityKey)
			if err == nil {
				switch def.Effect.Side() {
				case ability.SideSelf:
					return combat.Action{Kind: combat.ActionAbility, AbilityKey: def.Key}
				case ability.SideAlly:
					return combat.Action{Kind: combat.ActionAbility, AbilityKey: def.Key, TargetID: dice.Pick(src, allies).ID}
				default:
					return combat.Action{Kind: combat.ActionAbility, AbilityKey: def.Key, TargetID: dice.Pick(src, enemies).ID}
				}
			}
		}
		return combat.Action{Kind: combat.ActionBasicAttack, TargetID: dice.Pick(src, enemies).ID}
	})
}

func team(prefix string, n int, class ruleset.Class, atk, def, spd, hp int, abilityKey string) []*combat.Combatant {
	out := make([]*combat.Combatant, n)
	for i := range out {
		out[i] = card(fmt.Sprintf("%s%d", prefix, i+1), class, atk, def, spd, hp, abilityKey)
	}
	return out
}
