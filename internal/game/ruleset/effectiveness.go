package ruleset

var effectiveness = map[Class]map[Class]float64{
	ClassTank:    {ClassDamage: 1.2, ClassSupport: 0.9, ClassIntel: 1.1, ClassTank: 1.0},
	ClassDamage:  {ClassSupport: 1.2, ClassIntel: 1.1, ClassTank: 0.9, ClassDamage: 1.0},
	ClassSupport: {ClassTank: 1.2, ClassDamage: 0.9, ClassIntel: 1.1, ClassSupport: 1.0},
	ClassIntel:   {ClassTank: 1.2, ClassDamage: 1.1, ClassSupport: 0.9, ClassIntel: 1.0},
}

// Effectiveness returns the damage multiplier for attacker hitting defender.
//
// Postcondition: Returns 1.0 when either class is unknown.
func Effectiveness(attacker, defender Class) float64 {
	if row, ok := effectiveness[attacker]; ok {
		if m, ok := row[defender]; ok {
			return m
		}
	}
	return 1.0
}
