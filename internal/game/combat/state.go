package combat

import (
	"github.com/cory-johannsen/cardclash/internal/game/condition"
)

// BattleState is the complete state of one battle. It is created by
// Engine.Start and mutated only by the Engine.
type BattleState struct {
	ID           string
	TeamA        []*Combatant
	TeamB        []*Combatant
	TurnOrder    []string
	TurnIndex    int
	TurnCounter  int
	RoundCounter int
	Phase        Phase
	Winner       Winner
	Log          []BattleEvent
}

// BattleEvent records one processed turn. It is immutable once appended to
// BattleState.Log.
type BattleEvent struct {
	Turn           int              `json:"turn"`
	Round          int              `json:"round"`
	ActorID        string           `json:"actor_id"`
	Kind           ActionKind       `json:"kind"`
	AbilityKey     string           `json:"ability_key,omitempty"`
	TargetID       string           `json:"target_id,omitempty"`
	Damage         int              `json:"damage"`
	Healing        int              `json:"healing"`
	EffectsApplied []condition.Kind `json:"effects_applied,omitempty"`
	Absorbed       int              `json:"absorbed,omitempty"`
	Reflected      int              `json:"reflected,omitempty"`
	RedirectedTo   string           `json:"redirected_to,omitempty"`
	Critical       bool             `json:"critical,omitempty"`
	Missed         bool             `json:"missed,omitempty"`
	Resisted       bool             `json:"resisted,omitempty"`
	Defeated       []string         `json:"defeated,omitempty"`
	// TargetUnavailable is set when the chosen target died before resolution.
	TargetUnavailable bool   `json:"target_unavailable,omitempty"`
	Message           string `json:"message"`
}

// Err returns ErrTargetUnavailable for a no-op event whose target was
// already defeated, and nil otherwise.
func (e BattleEvent) Err() error {
	if e.TargetUnavailable {
		return ErrTargetUnavailable
	}
	return nil
}

// Team returns the roster for t.
func (s *BattleState) Team(t Team) []*Combatant {
	if t == TeamB {
		return s.TeamB
	}
	return s.TeamA
}

// All returns team A followed by team B in roster order.
func (s *BattleState) All() []*Combatant {
	out := make([]*Combatant, 0, len(s.TeamA)+len(s.TeamB))
	out = append(out, s.TeamA...)
	return append(out, s.TeamB...)
}

// Combatant returns the combatant with id, or nil.
func (s *BattleState) Combatant(id string) *Combatant {
	if id == "" {
		return nil
	}
	for _, c := range s.TeamA {
		if c.ID == id {
			return c
		}
	}
	for _, c := range s.TeamB {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// Living returns the living members of t in roster order.
func (s *BattleState) Living(t Team) []*Combatant {
	var out []*Combatant
	for _, c := range s.Team(t) {
		if c.IsAlive() {
			out = append(out, c)
		}
	}
	return out
}

// Taunter returns the first living member of t with an active ForceTarget
// effect, or nil.
func (s *BattleState) Taunter(t Team) *Combatant {
	for _, c := range s.Team(t) {
		if c.IsAlive() && c.Effects.Has(condition.ForceTarget) {
			return c
		}
	}
	return nil
}

// Ended reports whether the battle has ended.
func (s *BattleState) Ended() bool { return s.Phase == PhaseEnded }

// LastEvent returns the most recent event, or false when the log is empty.
func (s *BattleState) LastEvent() (BattleEvent, bool) {
	if len(s.Log) == 0 {
		return BattleEvent{}, false
	}
	return s.Log[len(s.Log)-1], true
}

// Clone returns a deep copy of the state.
func (s *BattleState) Clone() *BattleState {
	cp := *s
	cp.TeamA = cloneTeam(s.TeamA)
	cp.TeamB = cloneTeam(s.TeamB)
	cp.TurnOrder = append([]string(nil), s.TurnOrder...)
	cp.Log = append([]BattleEvent(nil), s.Log...)
	return &cp
}

func cloneTeam(team []*Combatant) []*Combatant {
	out := make([]*Combatant, len(team))
	for i, c := range team {
		out[i] = c.Clone()
	}
	return out
}
