package sink

import (
	"context"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cardclash/internal/game/combat"
)

// LogSink writes battle progress to a zap logger: start and end at Info,
// each event at Info with its message.
type LogSink struct {
	logger *zap.Logger
}

// NewLogSink creates a LogSink.
//
// Precondition: logger must be non-nil.
func NewLogSink(logger *zap.Logger) *LogSink {
	if logger == nil {
		panic("sink.NewLogSink: logger must not be nil")
	}
	return &LogSink{logger: logger}
}

func (l *LogSink) PublishStart(_ context.Context, sessionID string, state *combat.BattleState) error {
	l.logger.Info("battle presented",
		zap.String("session", sessionID),
		zap.String("battle_id", state.ID),
		zap.Strings("turn_order", state.TurnOrder),
	)
	return nil
}

func (l *LogSink) PublishEvent(_ context.Context, sessionID string, state *combat.BattleState, ev combat.BattleEvent) error {
	l.logger.Info(EventLine(ev),
		zap.String("session", sessionID),
		zap.String("battle_id", state.ID),
		zap.Int("round", ev.Round),
	)
	return nil
}

func (l *LogSink) PublishEnd(_ context.Context, sessionID string, state *combat.BattleState) error {
	l.logger.Info(Outcome(state),
		zap.String("session", sessionID),
		zap.String("battle_id", state.ID),
		zap.String("winner", state.Winner.String()),
		zap.Int("events", len(state.Log)),
	)
	return nil
}

func (l *LogSink) PublishCancel(_ context.Context, sessionID string, state *combat.BattleState) error {
	l.logger.Info("battle abandoned",
		zap.String("session", sessionID),
		zap.String("battle_id", state.ID),
		zap.Int("events", len(state.Log)),
	)
	return nil
}
