package combat

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/cardclash/internal/game/ability"
	"github.com/cory-johannsen/cardclash/internal/game/condition"
	"github.com/cory-johannsen/cardclash/internal/game/dice"
)

// Resolver applies one action to the battle state and describes the result.
type Resolver struct {
	catalog *ability.Catalog
	model   DamageModel
	src     dice.Source
}

// NewResolver creates a Resolver.
//
// Precondition: catalog, model and src must be non-nil.
func NewResolver(catalog *ability.Catalog, model DamageModel, src dice.Source) *Resolver {
	return &Resolver{catalog: catalog, model: model, src: src}
}

// Resolve performs action for actor and returns the resulting event.
// An ability request that cannot be honoured (no ability, on cooldown) is
// downgraded to a basic attack. An action whose target is already defeated
// still consumes the turn and any cooldown, and changes nothing else.
//
// Precondition: actor is alive and belongs to state.
// Postcondition: every combatant still satisfies 0 <= CurrentHP <= MaxHP.
func (r *Resolver) Resolve(actor *Combatant, action Action, state *BattleState) BattleEvent {
	ev := BattleEvent{
		Turn:    state.TurnCounter,
		Round:   state.RoundCounter,
		ActorID: actor.ID,
		Kind:    action.Kind,
	}
	switch action.Kind {
	case ActionSkip:
		if actor.Stunned() {
			ev.Message = fmt.Sprintf("%s is stunned and skips the turn", actor.Name)
		} else {
			ev.Message = fmt.Sprintf("%s skips the turn", actor.Name)
		}
		return ev
	case ActionAbility:
		if actor.Ready() {
			if def, err := r.catalog.Get(actor.AbilityKey); err == nil {
				r.resolveAbility(actor, def, action.TargetID, state, &ev)
				return ev
			}
		}
	}
	r.resolveBasic(actor, action.TargetID, state, &ev)
	return ev
}

func (r *Resolver) resolveBasic(actor *Combatant, targetID string, state *BattleState, ev *BattleEvent) {
	ev.Kind = ActionBasicAttack
	enemy := actor.Team.Opponent()
	target := state.Combatant(targetID)
	if t := state.Taunter(enemy); t != nil {
		target = t
	}
	if target == nil || target.Team == actor.Team {
		living := state.Living(enemy)
		if len(living) == 0 {
			r.unavailable(actor, "attack", targetID, ev)
			return
		}
		target = living[0]
	}
	ev.TargetID = target.ID
	if !target.IsAlive() {
		r.unavailable(actor, "attack", target.ID, ev)
		return
	}
	if r.missed(actor) {
		ev.Missed = true
		ev.Message = fmt.Sprintf("%s attacks %s but misses", actor.Name, target.Name)
		return
	}
	r.deliver(actor, target, r.model.BasicAttack(actor, target), state, ev)
	ev.Message = fmt.Sprintf("%s attacks %s for %d damage", actor.Name, target.Name, ev.Damage) + r.suffix(state, ev)
}

func (r *Resolver) resolveAbility(actor *Combatant, def *ability.Definition, targetID string, state *BattleState, ev *BattleEvent) {
	ev.Kind = ActionAbility
	ev.AbilityKey = def.Key
	actor.SetCooldown(def.Key, def.Cooldown, state.TurnCounter)

	eff := def.Effect
	side := eff.Side()
	var target *Combatant
	switch side {
	case ability.SideSelf:
		target = actor
	case ability.SideAlly:
		target = state.Combatant(targetID)
		if target != nil && (target.Team != actor.Team || (eff.Kind == ability.KindSacrificeHeal && target == actor)) {
			target = nil
		}
	default:
		target = state.Combatant(targetID)
		if target != nil && target.Team == actor.Team {
			target = nil
		}
	}
	if target == nil {
		r.unavailable(actor, def.Name, targetID, ev)
		return
	}
	ev.TargetID = target.ID
	if !target.IsAlive() {
		r.unavailable(actor, def.Name, target.ID, ev)
		return
	}
	if side == ability.SideEnemy && r.missed(actor) {
		ev.Missed = true
		ev.Message = fmt.Sprintf("%s uses %s on %s but misses", actor.Name, def.Name, target.Name)
		return
	}

	atk := actor.EffectiveStat(condition.StatAttack)
	switch eff.Kind {
	case ability.KindFlatDamage:
		r.abilityHit(actor, target, def, atk*eff.Multiplier, state, ev)
	case ability.KindMultiHitDamage:
		r.abilityHit(actor, target, def, float64(eff.Hits*floor(atk*eff.Multiplier)), state, ev)
	case ability.KindCriticalDamage:
		raw := atk
		if dice.Chance(r.src, eff.CritChance) {
			raw = atk * eff.CritMultiplier
			ev.Critical = true
		}
		r.abilityHit(actor, target, def, raw, state, ev)
	case ability.KindExecuteDamage:
		raw := atk * eff.Multiplier
		if target.HPRatio() < eff.Threshold {
			raw *= 2
		}
		r.abilityHit(actor, target, def, raw, state, ev)
	case ability.KindRampageDamage:
		r.abilityHit(actor, target, def, atk*(eff.Multiplier+float64(actor.Kills)*eff.KillBonus), state, ev)
	case ability.KindDrainDamage:
		hit := r.abilityHit(actor, target, def, atk*eff.Multiplier, state, ev)
		ev.Healing = actor.ApplyHeal(floor(float64(hit) * eff.HealRatio))
		if ev.Healing > 0 {
			ev.Message += fmt.Sprintf(", draining %d HP", ev.Healing)
		}
	case ability.KindSelfHeal, ability.KindTargetHeal:
		ev.Healing = target.ApplyHeal(floor(float64(target.Base.MaxHP) * eff.Multiplier))
		ev.Message = fmt.Sprintf("%s uses %s on %s, restoring %d HP", actor.Name, def.Name, target.Name, ev.Healing)
	case ability.KindSacrificeHeal:
		// The sacrifice never takes the caster's last hit point.
		cost := actor.ApplyDamage(min(floor(float64(actor.CurrentHP)*eff.SelfCost), actor.CurrentHP-1))
		ev.Healing = target.ApplyHeal(target.Base.MaxHP - target.CurrentHP)
		ev.Message = fmt.Sprintf("%s uses %s, losing %d HP to restore %s to full (+%d HP)",
			actor.Name, def.Name, cost, target.Name, ev.Healing)
	default:
		r.applyStatus(actor, target, def, state, ev)
	}
}

// abilityHit computes and delivers a damaging ability, returning the hit size.
func (r *Resolver) abilityHit(actor, target *Combatant, def *ability.Definition, raw float64, state *BattleState, ev *BattleEvent) int {
	hit := r.model.AbilityHit(raw, actor, target)
	r.deliver(actor, target, hit, state, ev)
	crit := ""
	if ev.Critical {
		crit = " (critical)"
	}
	ev.Message = fmt.Sprintf("%s uses %s on %s for %d damage%s", actor.Name, def.Name, target.Name, ev.Damage, crit) + r.suffix(state, ev)
	return hit
}

var statusKinds = map[ability.EffectKind]condition.Kind{
	ability.KindAttackBuff:     condition.AttackBuff,
	ability.KindDefenseBuff:    condition.DefenseBuff,
	ability.KindSpeedBuff:      condition.SpeedBuff,
	ability.KindAttackDebuff:   condition.AttackDebuff,
	ability.KindDefenseDebuff:  condition.DefenseDebuff,
	ability.KindSpeedDebuff:    condition.SpeedDebuff,
	ability.KindAccuracyDebuff: condition.AccuracyDebuff,
	ability.KindStun:           condition.Stun,
	ability.KindForceTarget:    condition.ForceTarget,
	ability.KindReflect:        condition.Reflect,
	ability.KindRedirect:       condition.Redirect,
	ability.KindImmunity:       condition.Immunity,
	ability.KindDamageShield:   condition.DamageShield,
}

func (r *Resolver) applyStatus(actor, target *Combatant, def *ability.Definition, state *BattleState, ev *BattleEvent) {
	eff := def.Effect
	kind, ok := statusKinds[eff.Kind]
	if !ok {
		ev.Message = fmt.Sprintf("%s uses %s to no effect", actor.Name, def.Name)
		return
	}
	magnitude := eff.Multiplier
	if kind == condition.DamageShield {
		magnitude = float64(floor(eff.Base + eff.HPRatio*float64(target.Base.MaxHP)))
	}
	applied, err := target.AddEffect(condition.Effect{
		Kind:           kind,
		Magnitude:      magnitude,
		TurnsRemaining: eff.Duration,
		AppliedBy:      actor.ID,
		AppliedOn:      state.TurnCounter,
	})
	on := ""
	if target != actor {
		on = " on " + target.Name
	}
	if err != nil || !applied {
		ev.Resisted = true
		ev.Message = fmt.Sprintf("%s uses %s%s but it is resisted", actor.Name, def.Name, on)
		return
	}
	ev.EffectsApplied = append(ev.EffectsApplied, kind)
	ev.Message = fmt.Sprintf("%s uses %s%s: %s for %d turns", actor.Name, def.Name, on, kind, eff.Duration)
}

// deliver lands a hit of dmg on target, honouring redirect, shields and
// reflection, and records the outcome on ev.
func (r *Resolver) deliver(actor, target *Combatant, dmg int, state *BattleState, ev *BattleEvent) {
	victim := target
	if g := redirectGuardian(target, state); g != nil {
		g.Effects.ConsumeRedirect()
		victim = g
		ev.RedirectedTo = g.ID
	}
	absorbed := victim.Effects.Absorb(dmg)
	dealt := victim.ApplyDamage(dmg - absorbed)
	ev.Absorbed += absorbed
	ev.Damage += dealt
	if dealt > 0 && !victim.IsAlive() {
		actor.Kills++
		ev.Defeated = append(ev.Defeated, victim.ID)
	}
	if ratio := victim.Effects.ReflectRatio(); ratio > 0 && actor.IsAlive() {
		back := actor.ApplyDamage(floor(float64(dmg) * ratio))
		ev.Reflected += back
		if back > 0 && !actor.IsAlive() {
			victim.Kills++
			ev.Defeated = append(ev.Defeated, actor.ID)
		}
	}
}

// redirectGuardian returns the first living ally of target holding a
// Redirect effect, or nil.
func redirectGuardian(target *Combatant, state *BattleState) *Combatant {
	for _, c := range state.Team(target.Team) {
		if c != target && c.IsAlive() && c.Effects.Has(condition.Redirect) {
			return c
		}
	}
	return nil
}

func (r *Resolver) missed(actor *Combatant) bool {
	acc := actor.EffectiveStat(condition.StatAccuracy)
	if acc >= 1 {
		return false
	}
	return !dice.Chance(r.src, acc)
}

func (r *Resolver) unavailable(actor *Combatant, what, targetID string, ev *BattleEvent) {
	ev.TargetID = targetID
	ev.TargetUnavailable = true
	ev.Message = fmt.Sprintf("%s's %s has no effect: target already defeated", actor.Name, what)
}

func (r *Resolver) suffix(state *BattleState, ev *BattleEvent) string {
	var b strings.Builder
	if ev.RedirectedTo != "" {
		if g := state.Combatant(ev.RedirectedTo); g != nil {
			fmt.Fprintf(&b, ", intercepted by %s", g.Name)
		}
	}
	if ev.Absorbed > 0 {
		fmt.Fprintf(&b, ", %d absorbed", ev.Absorbed)
	}
	if ev.Reflected > 0 {
		fmt.Fprintf(&b, ", %d reflected", ev.Reflected)
	}
	for _, id := range ev.Defeated {
		if c := state.Combatant(id); c != nil {
			fmt.Fprintf(&b, "; %s is defeated", c.Name)
		}
	}
	return b.String()
}
