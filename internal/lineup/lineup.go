// Package lineup stores each player's ordered battle lineup of up to five
// cards.
package lineup

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/cardclash/internal/roster"
)

// MaxSize is the largest lineup a player may field.
const MaxSize = 5

var (
	// ErrLineupFull is returned when adding to a lineup that already holds MaxSize cards.
	ErrLineupFull = errors.New("lineup: full")
	// ErrDuplicateCard is returned when a card appears twice in one lineup.
	ErrDuplicateCard = errors.New("lineup: duplicate card")
	// ErrInvalidPosition is returned for a position outside 1..len(lineup).
	ErrInvalidPosition = errors.New("lineup: invalid position")
	// ErrNotFound is returned when a user has no lineup.
	ErrNotFound = errors.New("lineup: not found")
)

// Lineup is a user's ordered list of card IDs. Position 1 is Cards[0].
type Lineup struct {
	UserID string   `json:"user_id"`
	Cards  []string `json:"cards"`
}

// Validate checks size and uniqueness.
func Validate(cards []string) error {
	if len(cards) > MaxSize {
		return fmt.Errorf("%d cards: %w", len(cards), ErrLineupFull)
	}
	seen := make(map[string]bool, len(cards))
	for _, c := range cards {
		if c == "" {
			return fmt.Errorf("empty card id")
		}
		if seen[c] {
			return fmt.Errorf("card %q: %w", c, ErrDuplicateCard)
		}
		seen[c] = true
	}
	return nil
}

// Add appends cardID.
//
// Postcondition: Returns ErrLineupFull or ErrDuplicateCard without modifying l.
func (l *Lineup) Add(cardID string) error {
	if len(l.Cards) >= MaxSize {
		return fmt.Errorf("adding %q: %w", cardID, ErrLineupFull)
	}
	for _, c := range l.Cards {
		if c == cardID {
			return fmt.Errorf("adding %q: %w", cardID, ErrDuplicateCard)
		}
	}
	l.Cards = append(l.Cards, cardID)
	return nil
}

// Remove deletes the card at the 1-based position and returns its ID. Later
// cards shift up one position.
func (l *Lineup) Remove(position int) (string, error) {
	if position < 1 || position > len(l.Cards) {
		return "", fmt.Errorf("position %d of %d: %w", position, len(l.Cards), ErrInvalidPosition)
	}
	id := l.Cards[position-1]
	l.Cards = append(l.Cards[:position-1], l.Cards[position:]...)
	return id, nil
}

// Refs returns the lineup as roster references in position order.
func (l *Lineup) Refs() []roster.CardRef {
	return roster.Refs(l.Cards...)
}
