package arena_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/cardclash/internal/arena"
	"github.com/cory-johannsen/cardclash/internal/game/ability"
	"github.com/cory-johannsen/cardclash/internal/game/ai"
	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/game/dice"
	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
	"github.com/cory-johannsen/cardclash/internal/roster"
	mockroster "github.com/cory-johannsen/cardclash/internal/roster/mock"
	"github.com/cory-johannsen/cardclash/internal/sink"
)

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (g *seqIDs) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("battle-%d", g.n)
}

type fakeRecorder struct {
	mu      sync.Mutex
	results []arena.Result
	err     error
}

func (r *fakeRecorder) RecordResult(_ context.Context, res arena.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
	return r.err
}

func (r *fakeRecorder) all() []arena.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]arena.Result(nil), r.results...)
}

type fixture struct {
	svc      *arena.Service
	sink     *sink.MemorySink
	recorder *fakeRecorder
	logs     *observer.ObservedLogs
}

func testStore(t *testing.T) *roster.FileStore {
	t.Helper()
	store, err := roster.NewFileStore(
		roster.Card{ID: "hero", Name: "Hero", Class: ruleset.ClassDamage, Level: 1, AbilityKey: "power_strike",
			Stats: ruleset.Stats{HP: 5000, Attack: 5000, Defense: 100, Speed: 90}},
		roster.Card{ID: "mook", Name: "Mook", Class: ruleset.ClassSupport, Level: 1, AbilityKey: "heal",
			Stats: ruleset.Stats{HP: 100, Attack: 10, Defense: 10, Speed: 10}},
		roster.Card{ID: "wall", Name: "Wall", Class: ruleset.ClassTank, Level: 1, AbilityKey: "taunt",
			Stats: ruleset.Stats{HP: 100000, Attack: 1, Defense: 100000, Speed: 10}},
	)
	require.NoError(t, err)
	return store
}

func newFixture(t *testing.T, cfg arena.Config) *fixture {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	f := &fixture{sink: sink.NewMemorySink(), recorder: &fakeRecorder{}, logs: logs}
	if cfg.Provider == nil {
		cfg.Provider = roster.NewStoreProvider(testStore(t), ability.Default(), ruleset.DefaultProfiles(), dice.NewSeededSource(3), zap.NewNop())
	}
	cfg.Sink = f.sink
	cfg.Recorder = f.recorder
	cfg.IDs = &seqIDs{}
	cfg.Logger = zap.New(core)
	cfg.Engine.Source = dice.NewSeededSource(11)
	cfg.Now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	f.svc = arena.NewService(cfg)
	return f
}

func quickBattle(session string) arena.StartRequest {
	return arena.StartRequest{SessionID: session, TeamA: roster.Refs("hero"), TeamB: roster.Refs("mook")}
}

func TestNewService_PanicsWithoutProvider(t *testing.T) {
	assert.Panics(t, func() { arena.NewService(arena.Config{}) })
}

func TestStartBattle_PublishesStartAndRegisters(t *testing.T) {
	f := newFixture(t, arena.Config{})
	state, err := f.svc.StartBattle(context.Background(), quickBattle("chan-1"))
	require.NoError(t, err)
	assert.Equal(t, "battle-1", state.ID)
	assert.Equal(t, combat.PhaseActive, state.Phase)
	assert.Equal(t, []string{"chan-1"}, f.svc.Sessions())
	assert.Equal(t, 1, f.sink.Count("start"))

	got, ok := f.svc.State("chan-1")
	require.True(t, ok)
	assert.Equal(t, "a1-hero", got.TeamA[0].ID)
}

func TestStartBattle_RejectsSecondBattleInSession(t *testing.T) {
	f := newFixture(t, arena.Config{})
	_, err := f.svc.StartBattle(context.Background(), quickBattle("chan-1"))
	require.NoError(t, err)
	_, err = f.svc.StartBattle(context.Background(), quickBattle("chan-1"))
	assert.ErrorIs(t, err, arena.ErrSessionBusy)

	_, err = f.svc.StartBattle(context.Background(), quickBattle("chan-2"))
	assert.NoError(t, err, "other sessions are independent")
}

func TestStartBattle_FailureFreesSession(t *testing.T) {
	f := newFixture(t, arena.Config{})
	_, err := f.svc.StartBattle(context.Background(), arena.StartRequest{SessionID: "chan-1", TeamA: roster.Refs("ghost"), TeamB: roster.Refs("mook")})
	assert.ErrorIs(t, err, roster.ErrCardNotFound)
	assert.Empty(t, f.svc.Sessions())
	assert.Zero(t, f.sink.Count("start"))

	_, err = f.svc.StartBattle(context.Background(), arena.StartRequest{SessionID: "chan-1", TeamB: roster.Refs("mook")})
	assert.ErrorIs(t, err, combat.ErrInvalidTeamSize)

	_, err = f.svc.StartBattle(context.Background(), quickBattle("chan-1"))
	assert.NoError(t, err)
}

func TestStartBattle_RequiresSession(t *testing.T) {
	f := newFixture(t, arena.Config{})
	_, err := f.svc.StartBattle(context.Background(), arena.StartRequest{TeamA: roster.Refs("hero"), TeamB: roster.Refs("mook")})
	assert.Error(t, err)
}

func TestStartBattle_PacedNeedsTicker(t *testing.T) {
	f := newFixture(t, arena.Config{})
	req := quickBattle("chan-1")
	req.Paced = true
	_, err := f.svc.StartBattle(context.Background(), req)
	assert.Error(t, err)
}

func TestStartBattle_ProviderErrorFromMock(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mockroster.NewMockProvider(ctrl)
	boom := errors.New("store offline")
	provider.EXPECT().Resolve(gomock.Any(), combat.TeamA, gomock.Any()).Return(nil, boom)

	f := newFixture(t, arena.Config{Provider: provider})
	_, err := f.svc.StartBattle(context.Background(), quickBattle("chan-1"))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, f.svc.Sessions())
}

func TestRun_FinishesPublishesAndRecords(t *testing.T) {
	f := newFixture(t, arena.Config{})
	_, err := f.svc.StartBattle(context.Background(), quickBattle("chan-1"))
	require.NoError(t, err)

	final, err := f.svc.Run(context.Background(), "chan-1")
	require.NoError(t, err)
	assert.True(t, final.Ended())
	assert.Equal(t, combat.WinnerTeamA, final.Winner)

	assert.Empty(t, f.svc.Sessions())
	assert.Equal(t, 1, f.sink.Count("end"))
	assert.Len(t, f.sink.Events("chan-1"), len(final.Log))

	results := f.recorder.all()
	require.Len(t, results, 1)
	assert.Equal(t, "battle-1", results[0].BattleID)
	assert.Equal(t, "chan-1", results[0].SessionID)
	assert.Equal(t, combat.WinnerTeamA, results[0].Winner)
	assert.Equal(t, len(final.Log), results[0].Turns)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), results[0].FinishedAt)

	_, err = f.svc.Advance(context.Background(), "chan-1")
	assert.ErrorIs(t, err, arena.ErrNoBattle)
}

func TestRun_DrawAtTurnCap(t *testing.T) {
	f := newFixture(t, arena.Config{Engine: combat.Options{MaxTurns: 6}})
	_, err := f.svc.StartBattle(context.Background(), arena.StartRequest{SessionID: "c", TeamA: roster.Refs("wall"), TeamB: roster.Refs("wall")})
	require.NoError(t, err)

	final, err := f.svc.Run(context.Background(), "c")
	require.NoError(t, err)
	assert.Equal(t, combat.WinnerDraw, final.Winner)
	assert.Equal(t, combat.WinnerDraw, f.recorder.all()[0].Winner)
}

func TestRun_HonoursCancelledContext(t *testing.T) {
	f := newFixture(t, arena.Config{})
	_, err := f.svc.StartBattle(context.Background(), quickBattle("chan-1"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.svc.Run(ctx, "chan-1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"chan-1"}, f.svc.Sessions(), "battle stays registered")
}

func TestRun_NoBattle(t *testing.T) {
	f := newFixture(t, arena.Config{})
	_, err := f.svc.Run(context.Background(), "nowhere")
	assert.ErrorIs(t, err, arena.ErrNoBattle)
}

func TestCancel_DropsWithoutRecording(t *testing.T) {
	f := newFixture(t, arena.Config{})
	_, err := f.svc.StartBattle(context.Background(), quickBattle("chan-1"))
	require.NoError(t, err)

	assert.True(t, f.svc.Cancel("chan-1"))
	assert.False(t, f.svc.Cancel("chan-1"))
	assert.Empty(t, f.recorder.all())
	assert.Zero(t, f.sink.Count("end"))
	_, ok := f.svc.State("chan-1")
	assert.False(t, ok)
}

func TestAdvance_SinkFailureIsLoggedNotFatal(t *testing.T) {
	f := newFixture(t, arena.Config{})
	f.sink.Err = errors.New("discord unavailable")

	_, err := f.svc.StartBattle(context.Background(), quickBattle("chan-1"))
	require.NoError(t, err)
	_, err = f.svc.Advance(context.Background(), "chan-1")
	require.NoError(t, err)
	assert.NotZero(t, f.logs.FilterMessage("battle presentation failed").Len())
}

func TestRun_RecorderFailureIsLogged(t *testing.T) {
	f := newFixture(t, arena.Config{})
	f.recorder.err = errors.New("db down")
	_, err := f.svc.StartBattle(context.Background(), quickBattle("chan-1"))
	require.NoError(t, err)
	_, err = f.svc.Run(context.Background(), "chan-1")
	require.NoError(t, err)
	assert.Equal(t, 1, f.logs.FilterMessage("recording battle result").FilterLevelExact(zapcore.ErrorLevel).Len())
}

func TestStartBattle_UsesPerTeamTactics(t *testing.T) {
	reg := ai.NewRegistry(combat.BasicAttackPolicy{})
	require.NoError(t, reg.Register("idle", combat.PolicyFunc(func(*combat.Combatant, *combat.BattleState) combat.Action {
		return combat.Action{Kind: combat.ActionSkip}
	})))
	f := newFixture(t, arena.Config{Registry: reg})
	req := quickBattle("chan-1")
	req.TacticA = "idle"
	_, err := f.svc.StartBattle(context.Background(), req)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		ev, err := f.svc.Advance(context.Background(), "chan-1")
		require.NoError(t, err)
		if ev.ActorID == "a1-hero" {
			assert.Equal(t, combat.ActionSkip, ev.Kind)
		} else {
			assert.Equal(t, combat.ActionBasicAttack, ev.Kind)
		}
	}
}

func TestService_ConcurrentSessions(t *testing.T) {
	f := newFixture(t, arena.Config{})
	const n = 8
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			session := fmt.Sprintf("chan-%d", i)
			if _, err := f.svc.StartBattle(context.Background(), quickBattle(session)); err != nil {
				errs <- err
				return
			}
			if _, err := f.svc.Run(context.Background(), session); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	assert.Len(t, f.recorder.all(), n)
	assert.Empty(t, f.svc.Sessions())
}

func TestPacedBattle_AdvancesOnTicker(t *testing.T) {
	tk := arena.NewTicker(5 * time.Millisecond)
	f := newFixture(t, arena.Config{Ticker: tk})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tk.Start(ctx)

	req := quickBattle("chan-1")
	req.Paced = true
	_, err := f.svc.StartBattle(ctx, req)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(f.recorder.all()) == 1 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, tk.Len())
	assert.Empty(t, f.svc.Sessions())
}

// gatedProvider holds the first Resolve until release is closed.
type gatedProvider struct {
	roster.Provider
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedProvider) Resolve(ctx context.Context, team combat.Team, refs []roster.CardRef) ([]*combat.Combatant, error) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.Provider.Resolve(ctx, team, refs)
}

func TestStartBattle_CancelledWhileStartingIsAbandoned(t *testing.T) {
	gate := &gatedProvider{
		Provider: roster.NewStoreProvider(testStore(t), ability.Default(), ruleset.DefaultProfiles(), dice.NewSeededSource(3), zap.NewNop()),
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
	tk := arena.NewTicker(time.Hour)
	f := newFixture(t, arena.Config{Provider: gate, Ticker: tk})

	req := quickBattle("chan-1")
	req.Paced = true
	errc := make(chan error, 1)
	go func() {
		_, err := f.svc.StartBattle(context.Background(), req)
		errc <- err
	}()

	<-gate.entered
	assert.True(t, f.svc.Cancel("chan-1"))
	close(gate.release)

	select {
	case err := <-errc:
		assert.ErrorIs(t, err, arena.ErrCancelled)
	case <-time.After(2 * time.Second):
		t.Fatal("start did not return")
	}
	assert.Empty(t, f.svc.Sessions())
	assert.Zero(t, tk.Len())
	assert.Zero(t, f.sink.Count("start"))
	assert.Zero(t, f.sink.Count("cancel"))

	_, err := f.svc.StartBattle(context.Background(), quickBattle("chan-1"))
	assert.NoError(t, err, "session is free again")
}

func TestCancel_PublishesOnceAndStopsTicks(t *testing.T) {
	tk := arena.NewTicker(time.Hour)
	f := newFixture(t, arena.Config{Ticker: tk})
	req := quickBattle("chan-1")
	req.Paced = true
	req.Participants = []string{"u1", "u2"}
	_, err := f.svc.StartBattle(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, tk.Len())

	who, ok := f.svc.Participants("chan-1")
	require.True(t, ok)
	assert.Equal(t, []string{"u1", "u2"}, who)

	assert.True(t, f.svc.Cancel("chan-1"))
	assert.False(t, f.svc.Cancel("chan-1"))
	assert.Zero(t, tk.Len())
	assert.Equal(t, 1, f.sink.Count("cancel"))
	_, ok = f.svc.Participants("chan-1")
	assert.False(t, ok)
}
