package ai

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/game/condition"
)

// CombatantView is the read-only projection of a combatant handed to tactic
// scripts.
type CombatantView struct {
	ID       string
	Name     string
	Class    string
	HP       int
	MaxHP    int
	HPRatio  float64
	Attack   float64
	Defense  float64
	Speed    float64
	Ability  string
	Cooldown int
	Stunned  bool
	Taunting bool
	Effects  []string
}

// View is the battle as seen by the acting combatant.
type View struct {
	Actor   CombatantView
	Allies  []CombatantView
	Enemies []CombatantView
	Turn    int
	Round   int
}

// Snapshot builds the View for actor. Allies and enemies include only
// living combatants, in roster order; allies exclude the actor.
//
// Precondition: actor and state must be non-nil.
func Snapshot(actor *combat.Combatant, state *combat.BattleState) *View {
	v := &View{
		Actor: viewOf(actor),
		Turn:  state.TurnCounter,
		Round: state.RoundCounter,
	}
	for _, a := range state.Living(actor.Team) {
		if a != actor {
			v.Allies = append(v.Allies, viewOf(a))
		}
	}
	for _, e := range state.Living(actor.Team.Opponent()) {
		v.Enemies = append(v.Enemies, viewOf(e))
	}
	return v
}

func viewOf(c *combat.Combatant) CombatantView {
	cv := CombatantView{
		ID:       c.ID,
		Name:     c.Name,
		Class:    c.Class.String(),
		HP:       c.CurrentHP,
		MaxHP:    c.Base.MaxHP,
		HPRatio:  c.HPRatio(),
		Attack:   c.EffectiveStat(condition.StatAttack),
		Defense:  c.EffectiveStat(condition.StatDefense),
		Speed:    c.EffectiveStat(condition.StatSpeed),
		Ability:  c.AbilityKey,
		Cooldown: c.Cooldown(c.AbilityKey),
		Stunned:  c.Stunned(),
		Taunting: c.Effects.Has(condition.ForceTarget),
	}
	for _, e := range c.Effects.All() {
		cv.Effects = append(cv.Effects, e.Kind.String())
	}
	return cv
}

// ToLua converts the view to Lua tables owned by L:
//
//	actor, battle = { id, name, class, hp, max_hp, hp_ratio, attack, defense,
//	                  speed, ability, cooldown, stunned, taunting, effects },
//	                { turn, round, allies = {...}, enemies = {...} }
func (v *View) ToLua(L *lua.LState) (actor, battle *lua.LTable) {
	actor = combatantTable(L, v.Actor)
	battle = L.NewTable()
	L.SetField(battle, "turn", lua.LNumber(v.Turn))
	L.SetField(battle, "round", lua.LNumber(v.Round))
	allies := L.NewTable()
	for _, a := range v.Allies {
		allies.Append(combatantTable(L, a))
	}
	enemies := L.NewTable()
	for _, e := range v.Enemies {
		enemies.Append(combatantTable(L, e))
	}
	L.SetField(battle, "allies", allies)
	L.SetField(battle, "enemies", enemies)
	return actor, battle
}

func combatantTable(L *lua.LState, c CombatantView) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "id", lua.LString(c.ID))
	L.SetField(t, "name", lua.LString(c.Name))
	L.SetField(t, "class", lua.LString(c.Class))
	L.SetField(t, "hp", lua.LNumber(c.HP))
	L.SetField(t, "max_hp", lua.LNumber(c.MaxHP))
	L.SetField(t, "hp_ratio", lua.LNumber(c.HPRatio))
	L.SetField(t, "attack", lua.LNumber(c.Attack))
	L.SetField(t, "defense", lua.LNumber(c.Defense))
	L.SetField(t, "speed", lua.LNumber(c.Speed))
	L.SetField(t, "ability", lua.LString(c.Ability))
	L.SetField(t, "cooldown", lua.LNumber(c.Cooldown))
	L.SetField(t, "stunned", lua.LBool(c.Stunned))
	L.SetField(t, "taunting", lua.LBool(c.Taunting))
	effects := L.NewTable()
	for _, e := range c.Effects {
		effects.Append(lua.LString(e))
	}
	L.SetField(t, "effects", effects)
	return t
}
