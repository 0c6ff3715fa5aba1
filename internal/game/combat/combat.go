// Package combat implements the turn-based card battle engine.
package combat

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/cardclash/internal/game/ability"
)

var (
	// ErrUnknownAbility is returned by Engine.Start when a combatant carries an
	// ability key absent from the catalog.
	ErrUnknownAbility = ability.ErrUnknownAbility
	// ErrInvalidTeamSize is returned by Engine.Start when a team is empty.
	ErrInvalidTeamSize = errors.New("invalid team size")
	// ErrBattleEnded is returned by Engine.Advance once the battle has ended.
	ErrBattleEnded = errors.New("battle has ended")
	// ErrTargetUnavailable marks an action whose target died before it resolved.
	// It is never returned by Advance; see BattleEvent.Err.
	ErrTargetUnavailable = errors.New("target unavailable")
)

// Team identifies one side of a battle.
type Team int

const (
	TeamA Team = iota
	TeamB
)

// String returns "A" or "B".
func (t Team) String() string {
	if t == TeamB {
		return "B"
	}
	return "A"
}

// Opponent returns the other team.
func (t Team) Opponent() Team {
	if t == TeamA {
		return TeamB
	}
	return TeamA
}

// Phase is the lifecycle phase of a battle.
type Phase int

const (
	PhaseActive Phase = iota
	PhaseEnded
)

// String returns a human-readable phase label.
func (p Phase) String() string {
	if p == PhaseEnded {
		return "ended"
	}
	return "active"
}

// Winner is the outcome of a battle.
type Winner int

const (
	WinnerNone Winner = iota
	WinnerTeamA
	WinnerTeamB
	WinnerDraw
)

var winnerNames = map[Winner]string{
	WinnerNone:  "none",
	WinnerTeamA: "team_a",
	WinnerTeamB: "team_b",
	WinnerDraw:  "draw",
}

// String returns a snake_case outcome label.
func (w Winner) String() string {
	if n, ok := winnerNames[w]; ok {
		return n
	}
	return "unknown"
}

// MarshalText encodes the winner as its label.
func (w Winner) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// UnmarshalText decodes a winner label.
func (w *Winner) UnmarshalText(b []byte) error {
	for k, v := range winnerNames {
		if v == string(b) {
			*w = k
			return nil
		}
	}
	return fmt.Errorf("unknown winner %q", b)
}

// ActionKind is what a combatant does on its turn.
type ActionKind int

const (
	ActionBasicAttack ActionKind = iota
	ActionAbility
	ActionSkip
)

var actionNames = map[ActionKind]string{
	ActionBasicAttack: "basic_attack",
	ActionAbility:     "ability",
	ActionSkip:        "skip",
}

// String returns a snake_case action label.
func (k ActionKind) String() string {
	if n, ok := actionNames[k]; ok {
		return n
	}
	return "unknown"
}

// MarshalText encodes the action kind as its label.
func (k ActionKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes an action kind label.
func (k *ActionKind) UnmarshalText(b []byte) error {
	for kind, name := range actionNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown action kind %q", b)
}

// Action is a decision made for one combatant's turn.
type Action struct {
	Kind ActionKind
	// AbilityKey is set only for ActionAbility.
	AbilityKey string
	// TargetID is empty for Skip and for self-targeted abilities.
	TargetID string
}

// Policy decides what a combatant does on its turn.
//
// Implementations must not mutate state and must draw randomness only from
// their configured dice.Source so battles stay reproducible.
type Policy interface {
	Decide(actor *Combatant, state *BattleState) Action
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(actor *Combatant, state *BattleState) Action

// Decide calls f.
func (f PolicyFunc) Decide(actor *Combatant, state *BattleState) Action {
	return f(actor, state)
}

// BasicAttackPolicy always basic attacks the first living enemy, or the
// enemy taunter when one is active. Stunned actors skip.
type BasicAttackPolicy struct{}

// Decide implements Policy.
func (BasicAttackPolicy) Decide(actor *Combatant, state *BattleState) Action {
	if actor.Stunned() {
		return Action{Kind: ActionSkip}
	}
	enemy := actor.Team.Opponent()
	if t := state.Taunter(enemy); t != nil {
		return Action{Kind: ActionBasicAttack, TargetID: t.ID}
	}
	living := state.Living(enemy)
	if len(living) == 0 {
		return Action{Kind: ActionSkip}
	}
	return Action{Kind: ActionBasicAttack, TargetID: living[0].ID}
}
