// Package ability holds the static catalog of card abilities and the numeric
// parameters of each ability's effect.
package ability

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
)

// DefaultCooldown is the number of the user's own turns an ability stays
// unavailable after use.
const DefaultCooldown = 3

// Category drives the AI's decision whether to use an ability.
type Category string

const (
	CategoryDamage     Category = "damage"
	CategoryControl    Category = "control"
	CategoryBuff       Category = "buff"
	CategoryDebuff     Category = "debuff"
	CategoryHealing    Category = "healing"
	CategoryProtection Category = "protection"
	CategorySpecial    Category = "special"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryDamage, CategoryControl, CategoryBuff, CategoryDebuff,
		CategoryHealing, CategoryProtection, CategorySpecial:
		return true
	}
	return false
}

// EffectKind is the tag of an ability's effect formula.
type EffectKind string

const (
	KindFlatDamage     EffectKind = "flat_damage"
	KindMultiHitDamage EffectKind = "multi_hit_damage"
	KindCriticalDamage EffectKind = "critical_damage"
	KindExecuteDamage  EffectKind = "execute_damage"
	KindRampageDamage  EffectKind = "rampage_damage"
	KindDrainDamage    EffectKind = "drain_damage"
	KindSelfHeal       EffectKind = "self_heal"
	KindTargetHeal     EffectKind = "target_heal"
	KindAttackBuff     EffectKind = "attack_buff"
	KindDefenseBuff    EffectKind = "defense_buff"
	KindSpeedBuff      EffectKind = "speed_buff"
	KindAttackDebuff   EffectKind = "attack_debuff"
	KindDefenseDebuff  EffectKind = "defense_debuff"
	KindSpeedDebuff    EffectKind = "speed_debuff"
	KindAccuracyDebuff EffectKind = "accuracy_debuff"
	KindStun           EffectKind = "stun"
	KindForceTarget    EffectKind = "force_target"
	KindReflect        EffectKind = "reflect"
	KindRedirect       EffectKind = "redirect"
	KindImmunity       EffectKind = "immunity"
	KindDamageShield   EffectKind = "damage_shield"
	KindSacrificeHeal  EffectKind = "sacrifice_heal"
)

// Side is the team relative to the user that an effect lands on.
type Side int

const (
	SideEnemy Side = iota
	SideAlly
	SideSelf
)

// String returns the lowercase name of the side.
func (s Side) String() string {
	switch s {
	case SideAlly:
		return "ally"
	case SideSelf:
		return "self"
	default:
		return "enemy"
	}
}

// ErrUnknownAbility is returned when an ability key is absent from a catalog.
var ErrUnknownAbility = errors.New("unknown ability")

// Effect carries the parameters of one effect formula. Only the fields
// relevant to Kind are read.
type Effect struct {
	Kind           EffectKind `yaml:"kind"`
	Multiplier     float64    `yaml:"multiplier"`
	Hits           int        `yaml:"hits"`
	CritChance     float64    `yaml:"crit_chance"`
	CritMultiplier float64    `yaml:"crit_multiplier"`
	Threshold      float64    `yaml:"threshold"`
	KillBonus      float64    `yaml:"kill_bonus"`
	HealRatio      float64    `yaml:"heal_ratio"`
	Duration       int        `yaml:"duration"`
	Base           float64    `yaml:"base"`
	HPRatio        float64    `yaml:"hp_ratio"`
	SelfCost       float64    `yaml:"self_cost"`
}

// Side returns the side the effect is applied to.
func (e Effect) Side() Side {
	switch e.Kind {
	case KindSelfHeal, KindForceTarget, KindReflect, KindRedirect, KindDamageShield:
		return SideSelf
	case KindTargetHeal, KindAttackBuff, KindDefenseBuff, KindSpeedBuff,
		KindImmunity, KindSacrificeHeal:
		return SideAlly
	default:
		return SideEnemy
	}
}

// Damaging reports whether the effect deals damage to its target.
func (e Effect) Damaging() bool {
	switch e.Kind {
	case KindFlatDamage, KindMultiHitDamage, KindCriticalDamage,
		KindExecuteDamage, KindRampageDamage, KindDrainDamage:
		return true
	}
	return false
}

// Debuff reports whether the effect is a debuff blocked by Immunity.
// Stun is deliberately excluded.
func (e Effect) Debuff() bool {
	switch e.Kind {
	case KindAttackDebuff, KindDefenseDebuff, KindSpeedDebuff, KindAccuracyDebuff:
		return true
	}
	return false
}

// Timed reports whether the effect leaves a status effect with a duration.
func (e Effect) Timed() bool {
	switch e.Kind {
	case KindAttackBuff, KindDefenseBuff, KindSpeedBuff,
		KindAttackDebuff, KindDefenseDebuff, KindSpeedDebuff, KindAccuracyDebuff,
		KindStun, KindForceTarget, KindReflect, KindRedirect, KindImmunity, KindDamageShield:
		return true
	}
	return false
}

// Validate checks that the parameters required by Kind are present and in range.
func (e Effect) Validate() error {
	var errs []error
	positive := func(name string, v float64) {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0 for %s", name, e.Kind))
		}
	}
	unit := func(name string, v float64) {
		if v <= 0 || v > 1 {
			errs = append(errs, fmt.Errorf("%s must be in (0, 1] for %s", name, e.Kind))
		}
	}
	switch e.Kind {
	case KindFlatDamage, KindSelfHeal, KindTargetHeal, KindExecuteDamage, KindRampageDamage:
		positive("multiplier", e.Multiplier)
	case KindMultiHitDamage:
		positive("multiplier", e.Multiplier)
		if e.Hits < 1 {
			errs = append(errs, fmt.Errorf("hits must be >= 1 for %s", e.Kind))
		}
	case KindCriticalDamage:
		positive("crit_multiplier", e.CritMultiplier)
		unit("crit_chance", e.CritChance)
	case KindDrainDamage:
		positive("multiplier", e.Multiplier)
		unit("heal_ratio", e.HealRatio)
	case KindAttackBuff, KindDefenseBuff, KindSpeedBuff,
		KindAttackDebuff, KindDefenseDebuff, KindSpeedDebuff, KindAccuracyDebuff:
		positive("multiplier", e.Multiplier)
	case KindReflect:
		positive("multiplier", e.Multiplier)
	case KindDamageShield:
		if e.Base < 0 || e.HPRatio < 0 || e.Base+e.HPRatio <= 0 {
			errs = append(errs, fmt.Errorf("base or hp_ratio must be > 0 for %s", e.Kind))
		}
	case KindSacrificeHeal:
		if e.SelfCost <= 0 || e.SelfCost >= 1 {
			errs = append(errs, fmt.Errorf("self_cost must be in (0, 1) for %s", e.Kind))
		}
	case KindStun, KindForceTarget, KindRedirect, KindImmunity:
	default:
		errs = append(errs, fmt.Errorf("unknown effect kind %q", e.Kind))
	}
	if e.Kind == KindExecuteDamage {
		unit("threshold", e.Threshold)
	}
	if e.Timed() && e.Duration < 1 {
		errs = append(errs, fmt.Errorf("duration must be >= 1 for %s", e.Kind))
	}
	return errors.Join(errs...)
}

// Definition is the static description of one ability.
type Definition struct {
	Key            string          `yaml:"key"`
	Name           string          `yaml:"name"`
	Description    string          `yaml:"description"`
	Category       Category        `yaml:"category"`
	AllowedClasses []ruleset.Class `yaml:"classes"`
	Cooldown       int             `yaml:"cooldown"`
	Effect         Effect          `yaml:"effect"`
}

// AllowedFor reports whether a card of class c may be assigned this ability.
func (d *Definition) AllowedFor(c ruleset.Class) bool {
	for _, allowed := range d.AllowedClasses {
		if allowed == c {
			return true
		}
	}
	return false
}

// Validate checks the definition and its effect.
//
// Postcondition: Returns nil or an error joining every violation found.
func (d *Definition) Validate() error {
	var errs []error
	if d.Key == "" {
		errs = append(errs, errors.New("key must not be empty"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("name must not be empty"))
	}
	if !d.Category.Valid() {
		errs = append(errs, fmt.Errorf("unknown category %q", d.Category))
	}
	if d.Cooldown != DefaultCooldown {
		errs = append(errs, fmt.Errorf("cooldown must be %d, got %d", DefaultCooldown, d.Cooldown))
	}
	if err := d.Effect.Validate(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("ability %q: %w", d.Key, errors.Join(errs...))
}
