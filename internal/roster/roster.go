//go:generate mockgen -destination=mock/mock_roster.go -package=mockroster -source=roster.go

// Package roster resolves card references into battle-ready combatants.
package roster

import (
	"context"
	"errors"

	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
)

// ErrCardNotFound is returned when a referenced card does not exist.
var ErrCardNotFound = errors.New("roster: card not found")

// CardRef identifies a card owned by a player.
type CardRef struct {
	ID string `yaml:"id" json:"id"`
}

// Refs converts card IDs into references, preserving order.
func Refs(ids ...string) []CardRef {
	out := make([]CardRef, len(ids))
	for i, id := range ids {
		out[i] = CardRef{ID: id}
	}
	return out
}

// Card is a persisted collectible character card.
//
// A zero Stats.HP means the stats derive from the class profile at Level.
// An empty AbilityKey means the ability is assigned at resolution time.
type Card struct {
	ID         string        `yaml:"id"`
	Name       string        `yaml:"name"`
	Series     string        `yaml:"series"`
	Class      ruleset.Class `yaml:"class"`
	Level      int           `yaml:"level"`
	Stats      ruleset.Stats `yaml:"stats"`
	AbilityKey string        `yaml:"ability"`
}

// Store loads cards by ID.
type Store interface {
	// GetCards returns the cards whose IDs are in ids, in any order. Missing
	// IDs are omitted rather than reported.
	GetCards(ctx context.Context, ids []string) ([]Card, error)
}

// Provider resolves a team's card references into combatants.
type Provider interface {
	// Resolve returns one combatant per ref, in ref order.
	Resolve(ctx context.Context, team combat.Team, refs []CardRef) ([]*combat.Combatant, error)
}
