// Package sink delivers battle progress to presentation layers. Sinks own all
// user-facing formatting; a sink failure never affects the battle itself.
package sink

import (
	"context"
	"errors"

	"github.com/cory-johannsen/cardclash/internal/game/combat"
)

// Sink receives the lifecycle of battles. sessionID identifies where the
// battle is being presented (a Discord channel, a CLI run).
type Sink interface {
	PublishStart(ctx context.Context, sessionID string, state *combat.BattleState) error
	PublishEvent(ctx context.Context, sessionID string, state *combat.BattleState, ev combat.BattleEvent) error
	PublishEnd(ctx context.Context, sessionID string, state *combat.BattleState) error
	// PublishCancel reports a battle abandoned before it ended.
	PublishCancel(ctx context.Context, sessionID string, state *combat.BattleState) error
}

// Nop discards everything.
type Nop struct{}

func (Nop) PublishStart(context.Context, string, *combat.BattleState) error { return nil }
func (Nop) PublishEvent(context.Context, string, *combat.BattleState, combat.BattleEvent) error {
	return nil
}
func (Nop) PublishEnd(context.Context, string, *combat.BattleState) error    { return nil }
func (Nop) PublishCancel(context.Context, string, *combat.BattleState) error { return nil }

type multi []Sink

// Multi fans each publication out to every sink. Every sink is called even
// when an earlier one fails; the failures are joined.
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) PublishStart(ctx context.Context, sessionID string, state *combat.BattleState) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.PublishStart(ctx, sessionID, state))
	}
	return errors.Join(errs...)
}

func (m multi) PublishEvent(ctx context.Context, sessionID string, state *combat.BattleState, ev combat.BattleEvent) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.PublishEvent(ctx, sessionID, state, ev))
	}
	return errors.Join(errs...)
}

func (m multi) PublishEnd(ctx context.Context, sessionID string, state *combat.BattleState) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.PublishEnd(ctx, sessionID, state))
	}
	return errors.Join(errs...)
}

func (m multi) PublishCancel(ctx context.Context, sessionID string, state *combat.BattleState) error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.PublishCancel(ctx, sessionID, state))
	}
	return errors.Join(errs...)
}
