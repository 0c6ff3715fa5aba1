// Package arena hosts battles: one active battle per session, each driven
// turn by turn and presented through a sink.
package arena

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cardclash/internal/game/ai"
	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/roster"
	"github.com/cory-johannsen/cardclash/internal/sink"
)

var (
	// ErrSessionBusy is returned when a session already hosts a battle.
	ErrSessionBusy = errors.New("arena: session already has an active battle")
	// ErrNoBattle is returned when a session hosts no battle.
	ErrNoBattle = errors.New("arena: no active battle")
	// ErrCancelled is returned by StartBattle when the session was cancelled
	// before the battle finished starting.
	ErrCancelled = errors.New("arena: battle cancelled while starting")
)

// Result is the record of a finished battle.
type Result struct {
	BattleID   string
	SessionID  string
	Winner     combat.Winner
	Turns      int
	Rounds     int
	FinishedAt time.Time
	Log        []combat.BattleEvent
}

// Recorder persists finished battles.
type Recorder interface {
	RecordResult(ctx context.Context, r Result) error
}

// StartRequest describes a battle to start.
type StartRequest struct {
	SessionID string
	TeamA     []roster.CardRef
	TeamB     []roster.CardRef
	// TacticA and TacticB name registry tactics; empty uses the default.
	TacticA string
	TacticB string
	// Paced battles advance on the service's ticker instead of by caller.
	Paced bool
	// Participants are the users allowed to forfeit the battle.
	Participants []string
}

// Config wires a Service.
type Config struct {
	Provider roster.Provider
	// Registry defaults to a registry whose only tactic is the engine's
	// basic attack policy.
	Registry *ai.Registry
	// Engine supplies the catalog, model, source, logger and turn cap;
	// its Policy is replaced per battle from the registry.
	Engine combat.Options
	// Sink defaults to sink.Nop.
	Sink sink.Sink
	// Recorder is optional.
	Recorder Recorder
	// Ticker is required only for paced battles.
	Ticker *Ticker
	// IDs defaults to NewUUIDGenerator.
	IDs IDGenerator
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger *zap.Logger
}

// battle is one hosted battle. mu serializes every turn of the battle.
// started is guarded by the service mutex and is set once the start has been
// published; from then on a cancellation is published by Cancel.
type battle struct {
	mu           sync.Mutex
	sessionID    string
	participants []string
	engine       *combat.Engine
	state        *combat.BattleState

	started bool
}

// Service hosts battles. The service mutex guards only the session map; each
// battle carries its own mutex, so battles in different sessions never block
// each other.
type Service struct {
	provider roster.Provider
	registry *ai.Registry
	engine   combat.Options
	sink     sink.Sink
	recorder Recorder
	ticker   *Ticker
	ids      IDGenerator
	now      func() time.Time
	logger   *zap.Logger

	mu      sync.Mutex
	battles map[string]*battle
}

// NewService creates a Service.
//
// Precondition: cfg.Provider must be non-nil.
// Postcondition: every optional field of cfg is defaulted.
func NewService(cfg Config) *Service {
	if cfg.Provider == nil {
		panic("arena.NewService: provider must not be nil")
	}
	if cfg.Registry == nil {
		cfg.Registry = ai.NewRegistry(combat.BasicAttackPolicy{})
	}
	if cfg.Sink == nil {
		cfg.Sink = sink.Nop{}
	}
	if cfg.IDs == nil {
		cfg.IDs = NewUUIDGenerator()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Engine.Logger == nil {
		cfg.Engine.Logger = cfg.Logger
	}
	return &Service{
		provider: cfg.Provider,
		registry: cfg.Registry,
		engine:   cfg.Engine,
		sink:     cfg.Sink,
		recorder: cfg.Recorder,
		ticker:   cfg.Ticker,
		ids:      cfg.IDs,
		now:      cfg.Now,
		logger:   cfg.Logger,
		battles:  make(map[string]*battle),
	}
}

// StartBattle resolves both rosters, starts the battle and registers it for
// the session. The start is published to the sink.
//
// Precondition: req.SessionID must be non-empty.
// Postcondition: Returns a snapshot of the new Active battle, or an error
// wrapping ErrSessionBusy, combat.ErrInvalidTeamSize, roster.ErrCardNotFound
// or combat.ErrUnknownAbility. On error no battle is registered.
func (s *Service) StartBattle(ctx context.Context, req StartRequest) (*combat.BattleState, error) {
	if req.SessionID == "" {
		return nil, errors.New("arena: session id is required")
	}
	if req.Paced && s.ticker == nil {
		return nil, errors.New("arena: paced battle requested but no ticker is configured")
	}

	b := &battle{sessionID: req.SessionID, participants: append([]string(nil), req.Participants...)}
	b.mu.Lock()
	defer b.mu.Unlock()

	s.mu.Lock()
	if _, busy := s.battles[req.SessionID]; busy {
		s.mu.Unlock()
		return nil, fmt.Errorf("session %s: %w", req.SessionID, ErrSessionBusy)
	}
	s.battles[req.SessionID] = b
	s.mu.Unlock()

	state, err := s.setup(ctx, b, req)
	if err != nil {
		s.unregister(b)
		return nil, err
	}
	if !s.registered(b) {
		return nil, fmt.Errorf("session %s: %w", req.SessionID, ErrCancelled)
	}

	s.logger.Info("arena battle started",
		zap.String("session", req.SessionID),
		zap.String("battle_id", state.ID),
		zap.Bool("paced", req.Paced),
	)
	if err := s.sink.PublishStart(ctx, req.SessionID, state); err != nil {
		s.presentationFailed("start", b, err)
	}

	// A Cancel racing the publish above either sees started and publishes
	// the cancellation itself, or leaves it to this check.
	s.mu.Lock()
	if s.battles[req.SessionID] != b {
		s.mu.Unlock()
		s.publishCancel(ctx, b)
		return nil, fmt.Errorf("session %s: %w", req.SessionID, ErrCancelled)
	}
	b.started = true
	if req.Paced {
		sessionID := req.SessionID
		s.ticker.RegisterTick(sessionID, func() {
			if _, err := s.Advance(context.Background(), sessionID); err != nil && !errors.Is(err, ErrNoBattle) {
				s.logger.Error("paced advance failed", zap.String("session", sessionID), zap.Error(err))
			}
		})
	}
	s.mu.Unlock()
	return state.Clone(), nil
}

func (s *Service) setup(ctx context.Context, b *battle, req StartRequest) (*combat.BattleState, error) {
	teamA, err := s.provider.Resolve(ctx, combat.TeamA, req.TeamA)
	if err != nil {
		return nil, fmt.Errorf("starting battle for session %s: %w", req.SessionID, err)
	}
	teamB, err := s.provider.Resolve(ctx, combat.TeamB, req.TeamB)
	if err != nil {
		return nil, fmt.Errorf("starting battle for session %s: %w", req.SessionID, err)
	}

	opts := s.engine
	opts.Policy = ai.ByTeam(s.registry.PolicyFor(req.TacticA), s.registry.PolicyFor(req.TacticB))
	engine := combat.NewEngine(opts)
	state, err := engine.Start(s.ids.New(), teamA, teamB)
	if err != nil {
		return nil, fmt.Errorf("starting battle for session %s: %w", req.SessionID, err)
	}
	b.engine = engine
	b.state = state
	return state, nil
}

// Advance processes one turn of the session's battle and publishes the event.
// When the battle ends the final state is published, the result recorded and
// the session freed.
//
// Postcondition: Returns the event, or an error wrapping ErrNoBattle.
func (s *Service) Advance(ctx context.Context, sessionID string) (combat.BattleEvent, error) {
	b := s.lookup(sessionID)
	if b == nil {
		return combat.BattleEvent{}, fmt.Errorf("session %s: %w", sessionID, ErrNoBattle)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == nil || s.lookup(sessionID) != b {
		return combat.BattleEvent{}, fmt.Errorf("session %s: %w", sessionID, ErrNoBattle)
	}

	ev, err := b.engine.Advance(b.state)
	if err != nil {
		return combat.BattleEvent{}, fmt.Errorf("session %s: %w", sessionID, err)
	}
	if err := s.sink.PublishEvent(ctx, sessionID, b.state, ev); err != nil {
		s.presentationFailed("event", b, err)
	}
	if b.state.Ended() {
		s.finish(ctx, b)
	}
	return ev, nil
}

// Run advances the session's battle until it ends or ctx is cancelled.
//
// Postcondition: Returns a snapshot of the Ended battle, or ctx's error with
// the battle still registered.
func (s *Service) Run(ctx context.Context, sessionID string) (*combat.BattleState, error) {
	b := s.lookup(sessionID)
	if b == nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, ErrNoBattle)
	}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if _, err := s.Advance(ctx, sessionID); err != nil {
			return nil, err
		}
		b.mu.Lock()
		ended := b.state.Ended()
		var snapshot *combat.BattleState
		if ended {
			snapshot = b.state.Clone()
		}
		b.mu.Unlock()
		if ended {
			return snapshot, nil
		}
	}
}

// Cancel discards the session's battle without recording it. Once the
// battle's start has been published the cancellation is published too.
//
// Postcondition: Returns false when the session had no battle.
func (s *Service) Cancel(sessionID string) bool {
	s.mu.Lock()
	b, ok := s.battles[sessionID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.battles, sessionID)
	if s.ticker != nil {
		s.ticker.Unregister(sessionID)
	}
	started := b.started
	s.mu.Unlock()
	s.logger.Info("arena battle cancelled", zap.String("session", sessionID))

	if started {
		b.mu.Lock()
		s.publishCancel(context.Background(), b)
		b.mu.Unlock()
	}
	return true
}

// Participants returns the users recorded for the session's battle.
func (s *Service) Participants(sessionID string) ([]string, bool) {
	b := s.lookup(sessionID)
	if b == nil {
		return nil, false
	}
	return append([]string(nil), b.participants...), true
}

// State returns a snapshot of the session's battle.
func (s *Service) State(sessionID string) (*combat.BattleState, bool) {
	b := s.lookup(sessionID)
	if b == nil {
		return nil, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == nil {
		return nil, false
	}
	return b.state.Clone(), true
}

// Sessions returns every session with a registered battle, sorted.
func (s *Service) Sessions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.battles))
	for k := range s.battles {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *Service) lookup(sessionID string) *battle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battles[sessionID]
}

func (s *Service) registered(b *battle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battles[b.sessionID] == b
}

// unregister removes b if it is still the session's battle. The ticker lock
// is only ever taken inside the service lock.
func (s *Service) unregister(b *battle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.battles[b.sessionID] != b {
		return
	}
	delete(s.battles, b.sessionID)
	if s.ticker != nil {
		s.ticker.Unregister(b.sessionID)
	}
}

// finish runs with b.mu held.
func (s *Service) finish(ctx context.Context, b *battle) {
	state := b.state
	s.unregister(b)
	s.logger.Info("arena battle finished",
		zap.String("session", b.sessionID),
		zap.String("battle_id", state.ID),
		zap.String("winner", state.Winner.String()),
		zap.Int("events", len(state.Log)),
	)
	if err := s.sink.PublishEnd(ctx, b.sessionID, state); err != nil {
		s.presentationFailed("end", b, err)
	}
	if s.recorder == nil {
		return
	}
	if err := s.recorder.RecordResult(ctx, Result{
		BattleID:   state.ID,
		SessionID:  b.sessionID,
		Winner:     state.Winner,
		Turns:      len(state.Log),
		Rounds:     state.RoundCounter,
		FinishedAt: s.now(),
		Log:        append([]combat.BattleEvent(nil), state.Log...),
	}); err != nil {
		s.logger.Error("recording battle result",
			zap.String("battle_id", state.ID),
			zap.Error(err),
		)
	}
}

// publishCancel runs with b.mu held.
func (s *Service) publishCancel(ctx context.Context, b *battle) {
	if b.state == nil || b.state.Ended() {
		return
	}
	if err := s.sink.PublishCancel(ctx, b.sessionID, b.state); err != nil {
		s.presentationFailed("cancel", b, err)
	}
}

func (s *Service) presentationFailed(stage string, b *battle, err error) {
	s.logger.Warn("battle presentation failed",
		zap.String("stage", stage),
		zap.String("session", b.sessionID),
		zap.Error(err),
	)
}
