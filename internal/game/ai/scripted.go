package ai

import (
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cardclash/internal/game/ability"
	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/scripting"
)

// ChooseActionHook is the Lua global a tactic script defines to pick actions.
//
//	function choose_action(actor, battle)
//	  return "ability" | "basic" | "skip"
//	  -- or { action = "ability", target = "<combatant id>" }
//	end
const ChooseActionHook = "choose_action"

// ScriptCaller invokes a Lua hook in a named VM. Implemented by
// *scripting.Manager.
type ScriptCaller interface {
	CallHookWith(vmID, hook string, build func(L *lua.LState) []lua.LValue) (lua.LValue, error)
}

// ScriptedPolicy asks a tactic script for each action and falls back to
// another policy when the script has no opinion.
//
// The script can never override the rules: a stunned actor always skips, an
// ability on cooldown falls back, and invalid targets are replaced by the
// default target choice.
type ScriptedPolicy struct {
	caller   ScriptCaller
	tactic   string
	catalog  *ability.Catalog
	fallback combat.Policy
	logger   *zap.Logger
}

// NewScriptedPolicy creates a ScriptedPolicy for the given tactic VM.
//
// Precondition: caller, catalog, fallback and logger must be non-nil.
func NewScriptedPolicy(caller ScriptCaller, tactic string, catalog *ability.Catalog, fallback combat.Policy, logger *zap.Logger) *ScriptedPolicy {
	if caller == nil || catalog == nil || fallback == nil || logger == nil {
		panic("ai.NewScriptedPolicy: caller, catalog, fallback and logger must not be nil")
	}
	return &ScriptedPolicy{caller: caller, tactic: tactic, catalog: catalog, fallback: fallback, logger: logger}
}

// Tactic returns the VM name this policy consults.
func (p *ScriptedPolicy) Tactic() string { return p.tactic }

// Decide implements combat.Policy.
func (p *ScriptedPolicy) Decide(actor *combat.Combatant, state *combat.BattleState) combat.Action {
	if actor.Stunned() {
		return combat.Action{Kind: combat.ActionSkip}
	}

	view := Snapshot(actor, state)
	ret, err := p.caller.CallHookWith(p.tactic, ChooseActionHook, func(L *lua.LState) []lua.LValue {
		a, b := view.ToLua(L)
		return []lua.LValue{a, b}
	})
	if err != nil {
		p.logger.Warn("tactic script failed",
			zap.String("tactic", p.tactic),
			zap.String("actor", actor.ID),
			zap.Error(err),
		)
		return p.fallback.Decide(actor, state)
	}

	choice, targetID := parseChoice(ret)
	switch choice {
	case "skip":
		return combat.Action{Kind: combat.ActionSkip}
	case "basic":
		return p.basic(actor, targetID, state)
	case "ability":
		if action, ok := p.ability(actor, targetID, state); ok {
			return action
		}
	case "":
	default:
		p.logger.Debug("tactic returned unknown action",
			zap.String("tactic", p.tactic),
			zap.String("action", choice),
		)
	}
	return p.fallback.Decide(actor, state)
}

func parseChoice(ret lua.LValue) (choice, target string) {
	switch v := ret.(type) {
	case lua.LString:
		return strings.ToLower(strings.TrimSpace(string(v))), ""
	case *lua.LTable:
		return strings.ToLower(scripting.TableString(v, "action")), scripting.TableString(v, "target")
	default:
		return "", ""
	}
}

func (p *ScriptedPolicy) basic(actor *combat.Combatant, targetID string, state *combat.BattleState) combat.Action {
	enemy := actor.Team.Opponent()
	if state.Taunter(enemy) == nil && targetID != "" {
		if t := state.Combatant(targetID); t != nil && t.Team == enemy && t.IsAlive() {
			return combat.Action{Kind: combat.ActionBasicAttack, TargetID: t.ID}
		}
	}
	return BasicAttack(actor, state)
}

func (p *ScriptedPolicy) ability(actor *combat.Combatant, targetID string, state *combat.BattleState) (combat.Action, bool) {
	if !actor.Ready() {
		return combat.Action{}, false
	}
	def, err := p.catalog.Get(actor.AbilityKey)
	if err != nil {
		return combat.Action{}, false
	}
	target := scriptTarget(actor, def, targetID, state)
	if target == nil {
		target = AbilityTarget(actor, def, state)
	}
	if target == nil {
		return combat.Action{}, false
	}
	return combat.Action{Kind: combat.ActionAbility, AbilityKey: def.Key, TargetID: target.ID}, true
}

// scriptTarget validates a script-chosen target against the ability's side.
func scriptTarget(actor *combat.Combatant, def *ability.Definition, targetID string, state *combat.BattleState) *combat.Combatant {
	if targetID == "" {
		return nil
	}
	t := state.Combatant(targetID)
	if t == nil || !t.IsAlive() {
		return nil
	}
	switch def.Effect.Side() {
	case ability.SideSelf:
		return nil
	case ability.SideAlly:
		if t.Team != actor.Team {
			return nil
		}
		if def.Effect.Kind == ability.KindSacrificeHeal && t == actor {
			return nil
		}
		return t
	default:
		if t.Team == actor.Team {
			return nil
		}
		return t
	}
}
