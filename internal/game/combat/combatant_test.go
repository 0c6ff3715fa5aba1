package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/game/condition"
	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
)

func TestCombatant_NewAtFullHP(t *testing.T) {
	c := card("a", ruleset.ClassTank, 10, 10, 10, 500, "")
	assert.Equal(t, 500, c.CurrentHP)
	assert.True(t, c.IsAlive())
	assert.Equal(t, 1.0, c.HPRatio())
}

func TestCombatant_ApplyDamage_ClampsAndKills(t *testing.T) {
	c := card("a", ruleset.ClassTank, 10, 10, 10, 100, "")
	assert.Equal(t, 40, c.ApplyDamage(40))
	assert.Equal(t, 60, c.ApplyDamage(500))
	assert.Equal(t, 0, c.CurrentHP)
	assert.False(t, c.IsAlive())
	assert.Equal(t, 0, c.ApplyDamage(10))
}

func TestCombatant_ApplyHeal_CapsAndNeverRevives(t *testing.T) {
	c := card("a", ruleset.ClassSupport, 10, 10, 10, 100, "")
	c.ApplyDamage(30)
	assert.Equal(t, 30, c.ApplyHeal(1000))
	assert.Equal(t, 100, c.CurrentHP)

	c.ApplyDamage(100)
	assert.Equal(t, 0, c.ApplyHeal(50))
	assert.False(t, c.IsAlive())
}

func TestCombatant_AddEffect_ImmunityBlocksDebuffNotStun(t *testing.T) {
	c := card("a", ruleset.ClassTank, 10, 10, 10, 100, "")
	ok, err := c.AddEffect(condition.Effect{Kind: condition.Immunity, TurnsRemaining: 3})
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.AddEffect(condition.Effect{Kind: condition.AttackDebuff, Magnitude: 0.6, TurnsRemaining: 3})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 10.0, c.EffectiveStat(condition.StatAttack))

	ok, err = c.AddEffect(condition.Effect{Kind: condition.Stun, TurnsRemaining: 1})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, c.Stunned())
}

func TestCombatant_EffectiveStat_StacksMultiplicatively(t *testing.T) {
	c := card("a", ruleset.ClassDamage, 100, 50, 70, 100, "")
	_, _ = c.AddEffect(condition.Effect{Kind: condition.AttackBuff, Magnitude: 1.4, TurnsRemaining: 3})
	_, _ = c.AddEffect(condition.Effect{Kind: condition.AttackDebuff, Magnitude: 0.5, TurnsRemaining: 3})
	assert.InDelta(t, 70.0, c.EffectiveStat(condition.StatAttack), 1e-9)
	assert.InDelta(t, 50.0, c.EffectiveStat(condition.StatDefense), 1e-9)
	assert.Equal(t, 1.0, c.EffectiveStat(condition.StatAccuracy))
}

func TestCombatant_Cooldown_NotTickedOnTurnSet(t *testing.T) {
	c := card("a", ruleset.ClassDamage, 100, 50, 70, 100, "power_strike")
	c.SetCooldown("power_strike", 3, 4)
	c.TickEffectsAndCooldowns(4)
	assert.Equal(t, 3, c.Cooldown("power_strike"))
	assert.False(t, c.Ready())
	c.TickEffectsAndCooldowns(6)
	c.TickEffectsAndCooldowns(8)
	assert.Equal(t, 1, c.Cooldown("power_strike"))
	c.TickEffectsAndCooldowns(10)
	assert.Equal(t, 0, c.Cooldown("power_strike"))
	assert.True(t, c.Ready())
	assert.Empty(t, c.Cooldowns)
}

func TestCombatant_Tick_IsNoopWhenEmpty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		hp := rapid.IntRange(1, 5000).Draw(rt, "hp")
		c := card("a", ruleset.ClassIntel, 10, 10, 10, hp, "slow")
		c.ApplyDamage(rapid.IntRange(0, hp-1).Draw(rt, "dmg"))
		before := c.Clone()
		c.TickEffectsAndCooldowns(rapid.IntRange(1, 50).Draw(rt, "turn"))
		assert.Equal(rt, before.CurrentHP, c.CurrentHP)
		assert.Equal(rt, before.Cooldowns, c.Cooldowns)
		assert.Equal(rt, 0, c.Effects.Len())
	})
}

func TestProperty_Combatant_HPBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxHP := rapid.IntRange(1, 5000).Draw(rt, "max")
		c := card("a", ruleset.ClassTank, 10, 10, 10, maxHP, "")
		ops := rapid.SliceOfN(rapid.IntRange(-3000, 3000), 1, 30).Draw(rt, "ops")
		for _, op := range ops {
			if op < 0 {
				c.ApplyDamage(-op)
			} else {
				c.ApplyHeal(op)
			}
			assert.GreaterOrEqual(rt, c.CurrentHP, 0)
			assert.LessOrEqual(rt, c.CurrentHP, c.Base.MaxHP)
			assert.Equal(rt, c.CurrentHP > 0, c.IsAlive())
		}
	})
}

func TestCombatant_Clone_IsDeep(t *testing.T) {
	c := card("a", ruleset.ClassTank, 10, 10, 10, 100, "shield")
	c.SetCooldown("shield", 3, 1)
	_, _ = c.AddEffect(condition.Effect{Kind: condition.DefenseBuff, Magnitude: 1.5, TurnsRemaining: 3})
	cp := c.Clone()
	c.TickEffectsAndCooldowns(2)
	c.ApplyDamage(10)
	assert.Equal(t, 3, cp.Cooldown("shield"))
	assert.Equal(t, 3, cp.Effects.All()[0].TurnsRemaining)
	assert.Equal(t, 100, cp.CurrentHP)
	assert.Equal(t, combat.Stats{Attack: 10, Defense: 10, Speed: 10, MaxHP: 100}, cp.Base)
}
