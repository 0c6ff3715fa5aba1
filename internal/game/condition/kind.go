// Package condition tracks the timed status effects attached to a combatant.
package condition

import "fmt"

// Kind identifies a status effect.
type Kind int

const (
	AttackBuff Kind = iota + 1
	DefenseBuff
	SpeedBuff
	AttackDebuff
	DefenseDebuff
	SpeedDebuff
	AccuracyDebuff
	Stun
	Reflect
	Redirect
	Immunity
	DamageShield
	ForceTarget
)

var kindNames = map[Kind]string{
	AttackBuff:     "attack_buff",
	DefenseBuff:    "defense_buff",
	SpeedBuff:      "speed_buff",
	AttackDebuff:   "attack_debuff",
	DefenseDebuff:  "defense_debuff",
	SpeedDebuff:    "speed_debuff",
	AccuracyDebuff: "accuracy_debuff",
	Stun:           "stun",
	Reflect:        "reflect",
	Redirect:       "redirect",
	Immunity:       "immunity",
	DamageShield:   "damage_shield",
	ForceTarget:    "force_target",
}

// String returns the snake_case name of the kind.
func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// MarshalText encodes the kind as its name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown condition kind %q", b)
}

// Debuff reports whether k is blocked by Immunity. Stun is not a debuff.
func (k Kind) Debuff() bool {
	switch k {
	case AttackDebuff, DefenseDebuff, SpeedDebuff, AccuracyDebuff:
		return true
	}
	return false
}

// Stat is a combatant stat that status effects can scale.
type Stat int

const (
	StatAttack Stat = iota
	StatDefense
	StatSpeed
	StatAccuracy
)

// String returns the lowercase stat name.
func (s Stat) String() string {
	switch s {
	case StatAttack:
		return "attack"
	case StatDefense:
		return "defense"
	case StatSpeed:
		return "speed"
	case StatAccuracy:
		return "accuracy"
	}
	return "unknown"
}

// Scales reports the stat a kind multiplies, if any.
func (k Kind) Scales() (Stat, bool) {
	switch k {
	case AttackBuff, AttackDebuff:
		return StatAttack, true
	case DefenseBuff, DefenseDebuff:
		return StatDefense, true
	case SpeedBuff, SpeedDebuff:
		return StatSpeed, true
	case AccuracyDebuff:
		return StatAccuracy, true
	}
	return 0, false
}
