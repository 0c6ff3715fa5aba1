package ability

import "github.com/cory-johannsen/cardclash/internal/game/ruleset"

var (
	damageOnly  = []ruleset.Class{ruleset.ClassDamage}
	tankOnly    = []ruleset.Class{ruleset.ClassTank}
	supportOnly = []ruleset.Class{ruleset.ClassSupport}
	intelOnly   = []ruleset.Class{ruleset.ClassIntel}
)

func defaultDefinitions() []*Definition {
	return []*Definition{
		{Key: "power_strike", Name: "Power Strike", Description: "Deals 150% attack damage",
			Category: CategoryDamage, AllowedClasses: damageOnly,
			Effect: Effect{Kind: KindFlatDamage, Multiplier: 1.5}},
		{Key: "berserker_rage", Name: "Berserker Rage", Description: "3 hits at 60% attack each",
			Category: CategoryDamage, AllowedClasses: damageOnly,
			Effect: Effect{Kind: KindMultiHitDamage, Hits: 3, Multiplier: 0.6}},
		{Key: "critical_strike", Name: "Critical Strike", Description: "200% attack on a 30% roll, otherwise 100%",
			Category: CategoryDamage, AllowedClasses: damageOnly,
			Effect: Effect{Kind: KindCriticalDamage, CritMultiplier: 2.0, CritChance: 0.3}},
		{Key: "life_steal", Name: "Life Steal", Description: "120% attack and heal for 50% of damage dealt",
			Category: CategoryDamage, AllowedClasses: damageOnly,
			Effect: Effect{Kind: KindDrainDamage, Multiplier: 1.2, HealRatio: 0.5}},
		{Key: "execute", Name: "Execute", Description: "100% attack, doubled against targets under 25% HP",
			Category: CategoryDamage, AllowedClasses: damageOnly,
			Effect: Effect{Kind: KindExecuteDamage, Multiplier: 1.0, Threshold: 0.25}},
		{Key: "rampage", Name: "Rampage", Description: "100% attack plus 25% per kill this battle",
			Category: CategoryDamage, AllowedClasses: damageOnly,
			Effect: Effect{Kind: KindRampageDamage, Multiplier: 1.0, KillBonus: 0.25}},

		{Key: "taunt", Name: "Taunt", Description: "Enemies must basic attack this card for 2 turns",
			Category: CategoryControl, AllowedClasses: tankOnly,
			Effect: Effect{Kind: KindForceTarget, Duration: 2}},
		{Key: "shield", Name: "Shield", Description: "+50% defense for 3 turns",
			Category: CategoryBuff, AllowedClasses: tankOnly,
			Effect: Effect{Kind: KindDefenseBuff, Multiplier: 1.5, Duration: 3}},
		{Key: "regenerate", Name: "Regenerate", Description: "Heal 25% of max HP",
			Category: CategoryHealing, AllowedClasses: tankOnly,
			Effect: Effect{Kind: KindSelfHeal, Multiplier: 0.25}},
		{Key: "counter", Name: "Counter", Description: "Reflect 75% of received damage for 2 turns",
			Category: CategorySpecial, AllowedClasses: tankOnly,
			Effect: Effect{Kind: KindReflect, Multiplier: 0.75, Duration: 2}},
		{Key: "guardian", Name: "Guardian", Description: "Redirect the next damage aimed at an ally to self",
			Category: CategorySpecial, AllowedClasses: tankOnly,
			Effect: Effect{Kind: KindRedirect, Duration: 1}},
		{Key: "fortify", Name: "Fortify", Description: "Immunity to debuffs for 3 turns",
			Category: CategoryBuff, AllowedClasses: tankOnly,
			Effect: Effect{Kind: KindImmunity, Duration: 3}},

		{Key: "heal", Name: "Heal", Description: "Restore 40% of target max HP",
			Category: CategoryHealing, AllowedClasses: supportOnly,
			Effect: Effect{Kind: KindTargetHeal, Multiplier: 0.4}},
		{Key: "power_boost", Name: "Power Boost", Description: "+40% attack for 3 turns",
			Category: CategoryBuff, AllowedClasses: supportOnly,
			Effect: Effect{Kind: KindAttackBuff, Multiplier: 1.4, Duration: 3}},
		{Key: "barrier", Name: "Barrier", Description: "Absorb the next 300 + 30% max HP damage",
			Category: CategoryProtection, AllowedClasses: supportOnly,
			Effect: Effect{Kind: KindDamageShield, Base: 300, HPRatio: 0.3, Duration: 3}},
		{Key: "sacrifice", Name: "Sacrifice", Description: "Lose 50% current HP, an ally heals to full",
			Category: CategoryHealing, AllowedClasses: supportOnly,
			Effect: Effect{Kind: KindSacrificeHeal, SelfCost: 0.5}},

		{Key: "stun_lock", Name: "Stun Lock", Description: "Target skips its next turn",
			Category: CategoryControl, AllowedClasses: intelOnly,
			Effect: Effect{Kind: KindStun, Duration: 1}},
		{Key: "freeze", Name: "Freeze", Description: "Target skips its next turn",
			Category: CategoryControl, AllowedClasses: intelOnly,
			Effect: Effect{Kind: KindStun, Duration: 1}},
		{Key: "confuse", Name: "Confuse", Description: "-50% accuracy for 2 turns",
			Category: CategoryDebuff, AllowedClasses: intelOnly,
			Effect: Effect{Kind: KindAccuracyDebuff, Multiplier: 0.5, Duration: 2}},
		{Key: "weaken", Name: "Weaken", Description: "-40% attack for 3 turns",
			Category: CategoryDebuff, AllowedClasses: intelOnly,
			Effect: Effect{Kind: KindAttackDebuff, Multiplier: 0.6, Duration: 3}},
		{Key: "armor_break", Name: "Armor Break", Description: "-50% defense for 3 turns",
			Category: CategoryDebuff, AllowedClasses: intelOnly,
			Effect: Effect{Kind: KindDefenseDebuff, Multiplier: 0.5, Duration: 3}},
		{Key: "slow", Name: "Slow", Description: "-40% speed for 2 turns",
			Category: CategoryDebuff, AllowedClasses: intelOnly,
			Effect: Effect{Kind: KindSpeedDebuff, Multiplier: 0.6, Duration: 2}},
	}
}

// Default returns the built-in catalog of 22 abilities. Every ability has a
// cooldown of DefaultCooldown.
func Default() *Catalog {
	defs := defaultDefinitions()
	for _, d := range defs {
		d.Cooldown = DefaultCooldown
	}
	c, err := NewCatalog(defs...)
	if err != nil {
		panic("ability: invalid built-in catalog: " + err.Error())
	}
	return c
}

// signatures maps well-known characters to their signature ability.
var signatures = map[string]string{
	"Zoro":           "critical_strike",
	"Light Yagami":   "weaken",
	"Naruto Uzumaki": "berserker_rage",
	"Itachi Uchiha":  "stun_lock",
	"Sakura Haruno":  "heal",
	"Goku":           "power_strike",
	"Levi Ackerman":  "critical_strike",
	"Edward Elric":   "armor_break",
	"Makima":         "confuse",
	"Douma":          "freeze",
}

// SignatureFor returns the signature ability key for a character name.
//
// Postcondition: Returns ("", false) when the character has no signature ability.
func SignatureFor(name string) (string, bool) {
	k, ok := signatures[name]
	return k, ok
}
