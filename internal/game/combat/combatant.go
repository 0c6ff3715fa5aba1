package combat

import (
	"fmt"

	"github.com/cory-johannsen/cardclash/internal/game/condition"
	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
)

// Stats is a combatant's unmodified stat block.
type Stats struct {
	Attack  int `json:"attack"`
	Defense int `json:"defense"`
	Speed   int `json:"speed"`
	MaxHP   int `json:"max_hp"`
}

// Combatant is a card's battle-time projection.
//
// Invariant: 0 <= CurrentHP <= Base.MaxHP; IsAlive() == (CurrentHP > 0);
// Kills never decreases; every cooldown value is >= 0.
type Combatant struct {
	ID         string
	Name       string
	Class      ruleset.Class
	Team       Team
	Base       Stats
	CurrentHP  int
	AbilityKey string
	Cooldowns  map[string]int
	Effects    *condition.Ledger
	Kills      int

	// cooldownSetOn records the turn each cooldown was set so the owner's
	// tick on that turn leaves it at its full value.
	cooldownSetOn map[string]int
}

// NewCombatant creates a combatant at full HP with no effects or cooldowns.
//
// Precondition: base.MaxHP > 0.
// Postcondition: CurrentHP == base.MaxHP.
func NewCombatant(id, name string, class ruleset.Class, base Stats, abilityKey string) *Combatant {
	c := &Combatant{
		ID:         id,
		Name:       name,
		Class:      class,
		Base:       base,
		CurrentHP:  base.MaxHP,
		AbilityKey: abilityKey,
	}
	c.init()
	return c
}

func (c *Combatant) init() {
	if c.Cooldowns == nil {
		c.Cooldowns = make(map[string]int)
	}
	if c.cooldownSetOn == nil {
		c.cooldownSetOn = make(map[string]int)
	}
	if c.Effects == nil {
		c.Effects = condition.NewLedger()
	}
	if c.CurrentHP > c.Base.MaxHP {
		c.CurrentHP = c.Base.MaxHP
	}
	if c.CurrentHP < 0 {
		c.CurrentHP = 0
	}
}

// IsAlive reports whether CurrentHP > 0.
func (c *Combatant) IsAlive() bool { return c.CurrentHP > 0 }

// HPRatio returns CurrentHP / MaxHP in [0, 1].
func (c *Combatant) HPRatio() float64 {
	if c.Base.MaxHP <= 0 {
		return 0
	}
	return float64(c.CurrentHP) / float64(c.Base.MaxHP)
}

// Stunned reports whether a Stun effect is active.
func (c *Combatant) Stunned() bool { return c.Effects.Has(condition.Stun) }

// ApplyDamage reduces CurrentHP by amount, flooring at zero, and returns the
// HP actually lost. Dead combatants take no damage.
//
// Precondition: amount >= 0.
// Postcondition: 0 <= CurrentHP and the return value <= amount.
func (c *Combatant) ApplyDamage(amount int) int {
	if amount <= 0 || !c.IsAlive() {
		return 0
	}
	if amount > c.CurrentHP {
		amount = c.CurrentHP
	}
	c.CurrentHP -= amount
	return amount
}

// ApplyHeal raises CurrentHP by amount, capped at MaxHP, and returns the HP
// actually restored. Dead combatants are never revived.
//
// Precondition: amount >= 0.
// Postcondition: CurrentHP <= Base.MaxHP.
func (c *Combatant) ApplyHeal(amount int) int {
	if amount <= 0 || !c.IsAlive() {
		return 0
	}
	if missing := c.Base.MaxHP - c.CurrentHP; amount > missing {
		amount = missing
	}
	c.CurrentHP += amount
	return amount
}

// AddEffect appends e to the combatant's ledger. Debuffs are refused while
// Immunity is active; Stun is not a debuff and always lands.
//
// Postcondition: Returns (false, nil) when the effect was blocked.
func (c *Combatant) AddEffect(e condition.Effect) (bool, error) {
	if e.Kind.Debuff() && c.Effects.Has(condition.Immunity) {
		return false, nil
	}
	if err := c.Effects.Add(e); err != nil {
		return false, err
	}
	return true, nil
}

// Cooldown returns the turns remaining before key can be used again.
func (c *Combatant) Cooldown(key string) int { return c.Cooldowns[key] }

// Ready reports whether the assigned ability is off cooldown.
func (c *Combatant) Ready() bool {
	return c.AbilityKey != "" && c.Cooldown(c.AbilityKey) == 0
}

// SetCooldown puts key on cooldown for turns of the owner's later turns.
//
// Precondition: turns >= 0.
func (c *Combatant) SetCooldown(key string, turns, onTurn int) {
	if turns <= 0 {
		delete(c.Cooldowns, key)
		delete(c.cooldownSetOn, key)
		return
	}
	c.Cooldowns[key] = turns
	c.cooldownSetOn[key] = onTurn
}

// TickEffectsAndCooldowns decrements every cooldown and effect by one,
// except those set on turn, and evicts what reaches zero.
//
// Postcondition: on a combatant with no effects and no cooldowns this is a no-op.
func (c *Combatant) TickEffectsAndCooldowns(turn int) []condition.Kind {
	for key, left := range c.Cooldowns {
		if c.cooldownSetOn[key] == turn {
			continue
		}
		left--
		if left <= 0 {
			delete(c.Cooldowns, key)
			delete(c.cooldownSetOn, key)
			continue
		}
		c.Cooldowns[key] = left
	}
	return c.Effects.Tick(turn)
}

// EffectiveStat folds the active effects scaling stat over its base value.
// Accuracy has a base of 1.0.
func (c *Combatant) EffectiveStat(stat condition.Stat) float64 {
	var base float64
	switch stat {
	case condition.StatAttack:
		base = float64(c.Base.Attack)
	case condition.StatDefense:
		base = float64(c.Base.Defense)
	case condition.StatSpeed:
		base = float64(c.Base.Speed)
	case condition.StatAccuracy:
		base = 1.0
	}
	return base * c.Effects.Multiplier(stat)
}

// Clone returns a deep copy of the combatant.
func (c *Combatant) Clone() *Combatant {
	cp := *c
	cp.Cooldowns = make(map[string]int, len(c.Cooldowns))
	for k, v := range c.Cooldowns {
		cp.Cooldowns[k] = v
	}
	cp.cooldownSetOn = make(map[string]int, len(c.cooldownSetOn))
	for k, v := range c.cooldownSetOn {
		cp.cooldownSetOn[k] = v
	}
	if c.Effects != nil {
		cp.Effects = c.Effects.Clone()
	}
	return &cp
}

// String returns "Name (ID)".
func (c *Combatant) String() string {
	return fmt.Sprintf("%s (%s)", c.Name, c.ID)
}
