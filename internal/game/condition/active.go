package condition

import "fmt"

// Effect is one applied status effect.
//
// Magnitude is the stat multiplier for stat-scaling kinds, the reflected
// fraction for Reflect, and the remaining absorb capacity for DamageShield.
type Effect struct {
	Kind           Kind
	Magnitude      float64
	TurnsRemaining int
	AppliedBy      string
	// AppliedOn is the battle turn number the effect was created on. The
	// owner's tick on that same turn leaves the effect untouched.
	AppliedOn int
}

// Ledger is the ordered list of status effects on one combatant.
// Same-kind effects stack as separate entries.
// It is not safe for concurrent use; the caller must serialise access.
type Ledger struct {
	effects []*Effect
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Add appends e to the ledger.
//
// Precondition: e.TurnsRemaining >= 1.
// Postcondition: Has(e.Kind) is true and e is the last entry of All().
func (l *Ledger) Add(e Effect) error {
	if e.TurnsRemaining < 1 {
		return fmt.Errorf("Add: %s turns remaining must be >= 1, got %d", e.Kind, e.TurnsRemaining)
	}
	l.effects = append(l.effects, &e)
	return nil
}

// Tick decrements every effect not applied on turn and evicts effects that
// reach 0, returning the kinds that expired in ledger order.
//
// Postcondition: no remaining effect has TurnsRemaining <= 0.
func (l *Ledger) Tick(turn int) []Kind {
	if len(l.effects) == 0 {
		return nil
	}
	var expired []Kind
	kept := l.effects[:0]
	for _, e := range l.effects {
		if e.AppliedOn != turn {
			e.TurnsRemaining--
		}
		if e.TurnsRemaining <= 0 {
			expired = append(expired, e.Kind)
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(l.effects); i++ {
		l.effects[i] = nil
	}
	l.effects = kept
	return expired
}

// Has reports whether an effect of kind k is active.
func (l *Ledger) Has(k Kind) bool {
	for _, e := range l.effects {
		if e.Kind == k {
			return true
		}
	}
	return false
}

// Count returns the number of active effects of kind k.
func (l *Ledger) Count(k Kind) int {
	n := 0
	for _, e := range l.effects {
		if e.Kind == k {
			n++
		}
	}
	return n
}

// Len returns the number of active effects.
func (l *Ledger) Len() int { return len(l.effects) }

// All returns a copy of the active effects in application order.
func (l *Ledger) All() []Effect {
	out := make([]Effect, 0, len(l.effects))
	for _, e := range l.effects {
		out = append(out, *e)
	}
	return out
}

// Remove deletes the first effect of kind k.
//
// Postcondition: Returns true if an effect was removed.
func (l *Ledger) Remove(k Kind) bool {
	for i, e := range l.effects {
		if e.Kind == k {
			l.effects = append(l.effects[:i], l.effects[i+1:]...)
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	out := &Ledger{effects: make([]*Effect, 0, len(l.effects))}
	for _, e := range l.effects {
		cp := *e
		out.effects = append(out.effects, &cp)
	}
	return out
}
