package roster_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cardclash/internal/game/ability"
	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/game/dice"
	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
	"github.com/cory-johannsen/cardclash/internal/roster"
	mockroster "github.com/cory-johannsen/cardclash/internal/roster/mock"
)

func newProvider(t *testing.T, store roster.Store) *roster.StoreProvider {
	t.Helper()
	return roster.NewStoreProvider(store, ability.Default(), ruleset.DefaultProfiles(), dice.NewSeededSource(1), zaptest.NewLogger(t))
}

func TestNewStoreProvider_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() {
		roster.NewStoreProvider(nil, ability.Default(), ruleset.DefaultProfiles(), dice.NewSeededSource(1), zap.NewNop())
	})
}

func TestResolve_PreservesRefOrderAndLoadsOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mockroster.NewMockStore(ctrl)
	store.EXPECT().GetCards(gomock.Any(), []string{"goku", "levi"}).Return([]roster.Card{
		{ID: "levi", Name: "Levi Ackerman", Class: ruleset.ClassDamage, Level: 1, AbilityKey: "execute"},
		{ID: "goku", Name: "Goku", Class: ruleset.ClassDamage, Level: 1},
	}, nil).Times(1)

	got, err := newProvider(t, store).Resolve(context.Background(), combat.TeamB, roster.Refs("goku", "levi", "goku"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "b1-goku", got[0].ID)
	assert.Equal(t, "b2-levi", got[1].ID)
	assert.Equal(t, "b3-goku", got[2].ID)
	assert.Equal(t, "power_strike", got[0].AbilityKey, "signature ability")
	assert.Equal(t, "execute", got[1].AbilityKey, "stored ability wins")
	assert.NotSame(t, got[0], got[2])
}

func TestResolve_DerivesStatsFromProfile(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mockroster.NewMockStore(ctrl)
	store.EXPECT().GetCards(gomock.Any(), gomock.Any()).Return([]roster.Card{
		{ID: "t", Name: "Wall", Class: ruleset.ClassTank, Level: 3, AbilityKey: "taunt"},
		{ID: "x", Name: "Custom", Class: ruleset.ClassIntel, Level: 9, AbilityKey: "slow",
			Stats: ruleset.Stats{HP: 10, Attack: 20, Defense: 30, Speed: 40}},
	}, nil)

	got, err := newProvider(t, store).Resolve(context.Background(), combat.TeamA, roster.Refs("t", "x"))
	require.NoError(t, err)
	assert.Equal(t, combat.Stats{Attack: 520, Defense: 820, Speed: 54, MaxHP: 1600}, got[0].Base)
	assert.Equal(t, 1600, got[0].CurrentHP)
	assert.Equal(t, combat.Stats{Attack: 20, Defense: 30, Speed: 40, MaxHP: 10}, got[1].Base)
}

func TestResolve_AssignsFromClassPool(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mockroster.NewMockStore(ctrl)
	store.EXPECT().GetCards(gomock.Any(), gomock.Any()).Return([]roster.Card{
		{ID: "s", Name: "Nobody", Class: ruleset.ClassSupport, Level: 1},
	}, nil)

	got, err := newProvider(t, store).Resolve(context.Background(), combat.TeamA, roster.Refs("s"))
	require.NoError(t, err)
	assert.Contains(t, ruleset.DefaultProfiles()[ruleset.ClassSupport].Abilities, got[0].AbilityKey)
}

func TestResolve_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty team", func(t *testing.T) {
		store := mockroster.NewMockStore(gomock.NewController(t))
		_, err := newProvider(t, store).Resolve(ctx, combat.TeamA, nil)
		assert.ErrorIs(t, err, combat.ErrInvalidTeamSize)
	})

	t.Run("missing card", func(t *testing.T) {
		store := mockroster.NewMockStore(gomock.NewController(t))
		store.EXPECT().GetCards(gomock.Any(), gomock.Any()).Return(nil, nil)
		_, err := newProvider(t, store).Resolve(ctx, combat.TeamA, roster.Refs("ghost"))
		assert.ErrorIs(t, err, roster.ErrCardNotFound)
	})

	t.Run("unknown ability", func(t *testing.T) {
		store := mockroster.NewMockStore(gomock.NewController(t))
		store.EXPECT().GetCards(gomock.Any(), gomock.Any()).Return([]roster.Card{
			{ID: "z", Name: "Z", Class: ruleset.ClassDamage, AbilityKey: "kamehameha"},
		}, nil)
		_, err := newProvider(t, store).Resolve(ctx, combat.TeamA, roster.Refs("z"))
		assert.ErrorIs(t, err, combat.ErrUnknownAbility)
	})

	t.Run("store failure", func(t *testing.T) {
		boom := errors.New("db down")
		store := mockroster.NewMockStore(gomock.NewController(t))
		store.EXPECT().GetCards(gomock.Any(), gomock.Any()).Return(nil, boom)
		_, err := newProvider(t, store).Resolve(ctx, combat.TeamA, roster.Refs("a"))
		assert.ErrorIs(t, err, boom)
	})
}

func TestResolve_FlagsStoredAbilityOutsideClass(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mockroster.NewMockStore(ctrl)
	store.EXPECT().GetCards(gomock.Any(), gomock.Any()).Return([]roster.Card{
		{ID: "w", Name: "Wall", Class: ruleset.ClassTank, Level: 1, AbilityKey: "execute"},
		{ID: "k", Name: "Itachi Uchiha", Class: ruleset.ClassDamage, Level: 1, AbilityKey: "stun_lock"},
		{ID: "m", Name: "Medic", Class: ruleset.ClassSupport, Level: 1, AbilityKey: "heal"},
	}, nil)
	core, logs := observer.New(zap.WarnLevel)
	p := roster.NewStoreProvider(store, ability.Default(), ruleset.DefaultProfiles(), dice.NewSeededSource(1), zap.New(core))

	got, err := p.Resolve(context.Background(), combat.TeamA, roster.Refs("w", "k", "m"))
	require.NoError(t, err)
	assert.Equal(t, "execute", got[0].AbilityKey)

	warned := logs.FilterMessage("ability not allowed for class").All()
	require.Len(t, warned, 1, "signature and in-class abilities are not flagged")
	assert.Equal(t, "w", warned[0].ContextMap()["card"])
	assert.Equal(t, "execute", warned[0].ContextMap()["ability"])
}

func TestAssignAbility_SignatureIgnoresClass(t *testing.T) {
	store, err := roster.NewFileStore()
	require.NoError(t, err)
	p := newProvider(t, store)
	assert.Equal(t, "stun_lock", p.AssignAbility(roster.Card{Name: "Itachi Uchiha", Class: ruleset.ClassIntel}))
	assert.Equal(t, "heal", p.AssignAbility(roster.Card{Name: "Sakura Haruno", Class: ruleset.ClassDamage}))
}

func TestProperty_AssignAbilityStaysInClassPool(t *testing.T) {
	store, err := roster.NewFileStore()
	require.NoError(t, err)
	profiles := ruleset.DefaultProfiles()
	rapid.Check(t, func(rt *rapid.T) {
		class := rapid.SampledFrom(ruleset.AllClasses).Draw(rt, "class")
		seed := rapid.Uint64().Draw(rt, "seed")
		p := roster.NewStoreProvider(store, ability.Default(), profiles, dice.NewSeededSource(seed), zap.NewNop())
		key := p.AssignAbility(roster.Card{Name: "Unnamed Extra", Class: class})
		assert.Contains(rt, profiles[class].Abilities, key)
	})
}
