package lineup_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/cardclash/internal/lineup"
	"github.com/cory-johannsen/cardclash/internal/roster"
)

func TestLineup_AddAndRemove(t *testing.T) {
	l := &lineup.Lineup{UserID: "u"}
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, l.Add(id))
	}
	assert.ErrorIs(t, l.Add("b"), lineup.ErrDuplicateCard)

	id, err := l.Remove(2)
	require.NoError(t, err)
	assert.Equal(t, "b", id)
	assert.Equal(t, []string{"a", "c"}, l.Cards)
	assert.Equal(t, roster.Refs("a", "c"), l.Refs())

	_, err = l.Remove(0)
	assert.ErrorIs(t, err, lineup.ErrInvalidPosition)
	_, err = l.Remove(3)
	assert.ErrorIs(t, err, lineup.ErrInvalidPosition)
}

func TestLineup_AddFull(t *testing.T) {
	l := &lineup.Lineup{Cards: []string{"1", "2", "3", "4", "5"}}
	assert.ErrorIs(t, l.Add("6"), lineup.ErrLineupFull)
	assert.Len(t, l.Cards, lineup.MaxSize)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, lineup.Validate(nil))
	assert.NoError(t, lineup.Validate([]string{"a", "b"}))
	assert.ErrorIs(t, lineup.Validate([]string{"a", "a"}), lineup.ErrDuplicateCard)
	assert.ErrorIs(t, lineup.Validate([]string{"1", "2", "3", "4", "5", "6"}), lineup.ErrLineupFull)
	assert.Error(t, lineup.Validate([]string{""}))
}

func TestProperty_LineupNeverExceedsMaxOrRepeats(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		l := &lineup.Lineup{UserID: "u"}
		ops := rapid.SliceOfN(rapid.IntRange(-2, 9), 1, 40).Draw(rt, "ops")
		for _, op := range ops {
			if op >= 0 {
				_ = l.Add(fmt.Sprintf("card-%d", op))
			} else {
				_, _ = l.Remove(rapid.IntRange(0, 6).Draw(rt, "pos"))
			}
			require.NoError(rt, lineup.Validate(l.Cards))
		}
	})
}

func TestInMemory_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := lineup.NewInMemory()

	_, err := repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, lineup.ErrNotFound)

	l, err := repo.Add(ctx, "u1", "goku")
	require.NoError(t, err)
	assert.Equal(t, []string{"goku"}, l.Cards)

	require.NoError(t, repo.Set(ctx, "u2", []string{"a", "b"}))
	assert.ErrorIs(t, repo.Set(ctx, "u2", []string{"a", "a"}), lineup.ErrDuplicateCard)

	id, err := repo.Remove(ctx, "u2", 1)
	require.NoError(t, err)
	assert.Equal(t, "a", id)
	got, err := repo.Get(ctx, "u2")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, got.Cards)

	many, err := repo.GetMany(ctx, []string{"u1", "u2", "u3"})
	require.NoError(t, err)
	assert.Len(t, many, 2)
	assert.Equal(t, []string{"goku"}, many["u1"].Cards)

	require.NoError(t, repo.Clear(ctx, "u1"))
	_, err = repo.Get(ctx, "u1")
	assert.ErrorIs(t, err, lineup.ErrNotFound)

	_, err = repo.Remove(ctx, "u1", 1)
	assert.ErrorIs(t, err, lineup.ErrNotFound)
}

func TestInMemory_ReturnedLineupIsACopy(t *testing.T) {
	ctx := context.Background()
	repo := lineup.NewInMemory()
	require.NoError(t, repo.Set(ctx, "u", []string{"a"}))
	got, err := repo.Get(ctx, "u")
	require.NoError(t, err)
	got.Cards[0] = "mutated"
	again, err := repo.Get(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, again.Cards)
}

func TestInMemory_ConcurrentAddsRespectMax(t *testing.T) {
	ctx := context.Background()
	repo := lineup.NewInMemory()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = repo.Add(ctx, "u", fmt.Sprintf("c%d", i))
		}()
	}
	wg.Wait()
	got, err := repo.Get(ctx, "u")
	require.NoError(t, err)
	assert.Len(t, got.Cards, lineup.MaxSize)
}
