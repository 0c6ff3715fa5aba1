// Package dice provides the randomness abstraction used by the battle engine.
//
// Every random decision in a battle (critical rolls, accuracy checks, the AI's
// ability-use coin flip, default ability assignment) draws from a Source, so a
// battle replayed against an identical Source produces an identical log.
package dice

// Source is the randomness provider for battles.
//
// A single battle draws from its Source sequentially; a Source shared between
// concurrently running battles must be safe for concurrent use.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a random float in [0.0, 1.0).
	Float64() float64
}

// Chance reports whether a draw from src lands under p.
//
// p <= 0 never succeeds and p >= 1 always succeeds; neither consumes a draw.
//
// Postcondition: at most one value is drawn from src.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Pick returns a uniformly chosen element of items, or the zero value when
// items is empty (no draw is consumed in that case).
func Pick[T any](src Source, items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[src.Intn(len(items))]
}
