package condition

// Multiplier folds every active effect that scales stat, in application order.
//
// Postcondition: Returns 1.0 when no effect scales stat.
func (l *Ledger) Multiplier(stat Stat) float64 {
	m := 1.0
	for _, e := range l.effects {
		if s, ok := e.Kind.Scales(); ok && s == stat {
			m *= e.Magnitude
		}
	}
	return m
}

// ReflectRatio returns the strongest active Reflect fraction, or 0.
func (l *Ledger) ReflectRatio() float64 {
	r := 0.0
	for _, e := range l.effects {
		if e.Kind == Reflect && e.Magnitude > r {
			r = e.Magnitude
		}
	}
	return r
}

// Absorb drains active DamageShield capacity, oldest shield first, and
// returns how much of amount was absorbed. Exhausted shields are removed.
//
// Postcondition: 0 <= returned value <= amount.
func (l *Ledger) Absorb(amount int) int {
	if amount <= 0 {
		return 0
	}
	absorbed := 0
	kept := l.effects[:0]
	for _, e := range l.effects {
		if e.Kind == DamageShield && absorbed < amount {
			remaining := float64(amount - absorbed)
			take := e.Magnitude
			if take > remaining {
				take = remaining
			}
			absorbed += int(take)
			e.Magnitude -= float64(int(take))
			if e.Magnitude < 1 {
				continue
			}
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(l.effects); i++ {
		l.effects[i] = nil
	}
	l.effects = kept
	return absorbed
}

// ShieldRemaining returns the total absorb capacity of active shields.
func (l *Ledger) ShieldRemaining() int {
	total := 0.0
	for _, e := range l.effects {
		if e.Kind == DamageShield {
			total += e.Magnitude
		}
	}
	return int(total)
}

// ConsumeRedirect removes the oldest Redirect effect.
//
// Postcondition: Returns true if a Redirect was active and has been consumed.
func (l *Ledger) ConsumeRedirect() bool {
	return l.Remove(Redirect)
}
