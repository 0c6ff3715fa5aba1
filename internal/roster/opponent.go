package roster

import (
	"context"

	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
)

// OpponentClasses is the class composition of a generated opponent team.
var OpponentClasses = []ruleset.Class{
	ruleset.ClassTank,
	ruleset.ClassDamage,
	ruleset.ClassDamage,
	ruleset.ClassSupport,
	ruleset.ClassIntel,
}

// Sampler draws random cards to build opponent teams.
type Sampler interface {
	// Sample returns up to n distinct cards.
	Sample(ctx context.Context, n int) ([]Card, error)
}

// BalancedTeam picks up to size cards from pool, first filling the slots of
// OpponentClasses in order and then topping up with the remaining cards in
// pool order. No card is picked twice.
//
// Postcondition: len(result) == min(size, len(pool)).
func BalancedTeam(pool []Card, size int) []CardRef {
	if size <= 0 {
		return nil
	}
	used := make([]bool, len(pool))
	out := make([]CardRef, 0, size)
	for _, class := range OpponentClasses {
		if len(out) == size {
			return out
		}
		for i, c := range pool {
			if !used[i] && c.Class == class {
				used[i] = true
				out = append(out, CardRef{ID: c.ID})
				break
			}
		}
	}
	for i, c := range pool {
		if len(out) == size {
			break
		}
		if !used[i] {
			used[i] = true
			out = append(out, CardRef{ID: c.ID})
		}
	}
	return out
}

// Sample implements Sampler. A FileStore has no randomness of its own, so it
// returns the first n cards in ID order.
func (s *FileStore) Sample(_ context.Context, n int) ([]Card, error) {
	all := s.All()
	if n < len(all) {
		all = all[:n]
	}
	return all, nil
}
