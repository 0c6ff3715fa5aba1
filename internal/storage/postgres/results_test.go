package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/cardclash/internal/arena"
	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/game/condition"
	"github.com/cory-johannsen/cardclash/internal/storage/postgres"
	"github.com/cory-johannsen/cardclash/internal/testutil"
)

var _ arena.Recorder = (*postgres.ResultRepository)(nil)

func TestResultRepository_RecordAndList(t *testing.T) {
	repo := postgres.NewResultRepository(testutil.NewPool(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	log := []combat.BattleEvent{
		{Turn: 1, Round: 1, ActorID: "a1-goku", Kind: combat.ActionAbility, AbilityKey: "stun_lock",
			TargetID: "b1-frieza", Damage: 0, EffectsApplied: []condition.Kind{condition.Stun}, Message: "stunned"},
		{Turn: 2, Round: 1, ActorID: "b1-frieza", Kind: combat.ActionSkip, Message: "skips"},
	}
	require.NoError(t, repo.RecordResult(ctx, arena.Result{
		BattleID: "b-1", SessionID: "chan", Winner: combat.WinnerTeamA, Turns: 2, Rounds: 1, FinishedAt: base, Log: log,
	}))
	require.NoError(t, repo.RecordResult(ctx, arena.Result{
		BattleID: "b-2", SessionID: "chan", Winner: combat.WinnerDraw, Turns: 50, Rounds: 10, FinishedAt: base.Add(time.Hour),
	}))
	require.NoError(t, repo.RecordResult(ctx, arena.Result{
		BattleID: "b-3", SessionID: "elsewhere", Winner: combat.WinnerTeamB, FinishedAt: base,
	}))

	got, err := repo.RecentBySession(ctx, "chan", 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b-2", got[0].BattleID)
	assert.Equal(t, combat.WinnerDraw, got[0].Winner)
	assert.Equal(t, "b-1", got[1].BattleID)
	assert.True(t, base.Equal(got[1].FinishedAt))

	stored, err := repo.Log(ctx, "b-1")
	require.NoError(t, err)
	assert.Equal(t, log, stored)
}

func TestResultRepository_DuplicateKeepsFirst(t *testing.T) {
	repo := postgres.NewResultRepository(testutil.NewPool(t))
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, repo.RecordResult(ctx, arena.Result{BattleID: "dup", SessionID: "s", Winner: combat.WinnerTeamA, FinishedAt: now}))
	require.NoError(t, repo.RecordResult(ctx, arena.Result{BattleID: "dup", SessionID: "s", Winner: combat.WinnerTeamB, FinishedAt: now}))

	got, err := repo.RecentBySession(ctx, "s", 5)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, combat.WinnerTeamA, got[0].Winner)
}
