package combat

import (
	"sort"

	"github.com/cory-johannsen/cardclash/internal/game/condition"
)

// ComputeTurnOrder returns the IDs of every living combatant sorted by
// effective speed, fastest first. Ties keep roster order with team A first.
//
// Postcondition: every returned ID names a living combatant; no ID repeats.
func ComputeTurnOrder(state *BattleState) []string {
	living := make([]*Combatant, 0, len(state.TeamA)+len(state.TeamB))
	for _, c := range state.All() {
		if c.IsAlive() {
			living = append(living, c)
		}
	}
	sort.SliceStable(living, func(i, j int) bool {
		return living[i].EffectiveStat(condition.StatSpeed) > living[j].EffectiveStat(condition.StatSpeed)
	})
	order := make([]string, len(living))
	for i, c := range living {
		order[i] = c.ID
	}
	return order
}
