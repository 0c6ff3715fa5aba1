package ai_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
)

// stubSource returns f for every float draw and 0 for every int draw.
type stubSource struct{ f float64 }

func (s stubSource) Intn(int) int      { return 0 }
func (s stubSource) Float64() float64 { return s.f }

func card(id string, class ruleset.Class, atk, hp int, abilityKey string) *combat.Combatant {
	return combat.NewCombatant(id, "Card "+id, class, combat.Stats{Attack: atk, Defense: 100, Speed: 50, MaxHP: hp}, abilityKey)
}

func battle(t *testing.T, teamA, teamB []*combat.Combatant) *combat.BattleState {
	t.Helper()
	state, err := combat.NewEngine(combat.Options{}).Start("ai-test", teamA, teamB)
	require.NoError(t, err)
	return state
}
