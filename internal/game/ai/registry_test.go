package ai_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cardclash/internal/game/ability"
	"github.com/cory-johannsen/cardclash/internal/game/ai"
	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
)

func TestRegistry_FallbackForUnknown(t *testing.T) {
	fallback := combat.BasicAttackPolicy{}
	r := ai.NewRegistry(fallback)
	assert.Equal(t, fallback, r.PolicyFor(""))
	assert.Equal(t, fallback, r.PolicyFor("nope"))
	assert.Equal(t, []string{ai.DefaultTactic}, r.Names())
}

func TestRegistry_RegisterRejectsDuplicates(t *testing.T) {
	r := ai.NewRegistry(combat.BasicAttackPolicy{})
	require.NoError(t, r.Register("x", &recordingPolicy{}))
	assert.Error(t, r.Register("x", &recordingPolicy{}))
	assert.Error(t, r.Register(ai.DefaultTactic, &recordingPolicy{}))
	assert.Error(t, r.Register("", &recordingPolicy{}))
}

func TestRegistry_RegisterScripted(t *testing.T) {
	r := ai.NewRegistry(combat.BasicAttackPolicy{})
	require.NoError(t, r.RegisterScripted(returns("skip"), []string{"aggro", "cautious"}, ability.Default(), zap.NewNop()))

	p, ok := r.Lookup("aggro")
	require.True(t, ok)
	sp, ok := p.(*ai.ScriptedPolicy)
	require.True(t, ok)
	assert.Equal(t, "aggro", sp.Tactic())
	assert.Equal(t, []string{"aggro", "cautious", ai.DefaultTactic}, r.Names())
}

func TestNewRegistry_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { ai.NewRegistry(nil) })
}

func TestByTeam_DelegatesPerSide(t *testing.T) {
	a, b := &recordingPolicy{}, &recordingPolicy{}
	state := battle(t,
		[]*combat.Combatant{card("a1", ruleset.ClassTank, 100, 1000, "")},
		[]*combat.Combatant{card("b1", ruleset.ClassTank, 100, 1000, "")})
	p := ai.ByTeam(a, b)

	p.Decide(state.Combatant("b1"), state)
	assert.False(t, a.used)
	assert.True(t, b.used)

	p.Decide(state.Combatant("a1"), state)
	assert.True(t, a.used)
}
