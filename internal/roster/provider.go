package roster

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cardclash/internal/game/ability"
	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/game/dice"
	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
)

// StoreProvider is the Provider backed by a card Store.
type StoreProvider struct {
	store    Store
	catalog  *ability.Catalog
	profiles ruleset.Profiles
	src      dice.Source
	logger   *zap.Logger
}

// NewStoreProvider creates a StoreProvider.
//
// Precondition: store, catalog, profiles and src must be non-nil.
// Postcondition: logger defaults to a no-op logger when nil.
func NewStoreProvider(store Store, catalog *ability.Catalog, profiles ruleset.Profiles, src dice.Source, logger *zap.Logger) *StoreProvider {
	if store == nil || catalog == nil || profiles == nil || src == nil {
		panic("roster.NewStoreProvider: store, catalog, profiles and src must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StoreProvider{store: store, catalog: catalog, profiles: profiles, src: src, logger: logger}
}

// Resolve loads every referenced card once and builds a fresh combatant per
// ref. Combatant IDs are "<team><position>-<card id>", so the same card may
// appear on both teams.
//
// Postcondition: Returns len(refs) combatants, or an error wrapping
// combat.ErrInvalidTeamSize, ErrCardNotFound or ability.ErrUnknownAbility.
func (p *StoreProvider) Resolve(ctx context.Context, team combat.Team, refs []CardRef) ([]*combat.Combatant, error) {
	if len(refs) == 0 {
		return nil, fmt.Errorf("resolving team %s: %w", team, combat.ErrInvalidTeamSize)
	}

	ids := make([]string, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, r := range refs {
		if !seen[r.ID] {
			seen[r.ID] = true
			ids = append(ids, r.ID)
		}
	}
	cards, err := p.store.GetCards(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolving team %s: %w", team, err)
	}
	byID := make(map[string]Card, len(cards))
	for _, c := range cards {
		byID[c.ID] = c
	}

	out := make([]*combat.Combatant, len(refs))
	for i, ref := range refs {
		card, ok := byID[ref.ID]
		if !ok {
			return nil, fmt.Errorf("resolving team %s position %d: card %q: %w", team, i+1, ref.ID, ErrCardNotFound)
		}
		c, err := p.combatant(team, i, card)
		if err != nil {
			return nil, fmt.Errorf("resolving team %s position %d: %w", team, i+1, err)
		}
		out[i] = c
	}
	return out, nil
}

func (p *StoreProvider) combatant(team combat.Team, pos int, card Card) (*combat.Combatant, error) {
	stats := card.Stats
	if stats.HP <= 0 {
		prof, ok := p.profiles[card.Class]
		if !ok {
			return nil, fmt.Errorf("card %q: no profile for class %s", card.ID, card.Class)
		}
		stats = prof.StatsAtLevel(card.Level)
	}

	key := card.AbilityKey
	if key == "" {
		key = p.AssignAbility(card)
		p.logger.Debug("ability assigned",
			zap.String("card", card.ID),
			zap.String("class", card.Class.String()),
			zap.String("ability", key),
		)
	}
	if key != "" {
		def, err := p.catalog.Get(key)
		if err != nil {
			return nil, fmt.Errorf("card %q: %w", card.ID, err)
		}
		// Signature abilities may cross class lines; anything else is kept
		// but flagged so the roster can be corrected.
		if sig, _ := ability.SignatureFor(card.Name); !def.AllowedFor(card.Class) && sig != key {
			p.logger.Warn("ability not allowed for class",
				zap.String("card", card.ID),
				zap.String("class", card.Class.String()),
				zap.String("ability", key),
			)
		}
	}

	id := fmt.Sprintf("%s%d-%s", strings.ToLower(team.String()), pos+1, card.ID)
	return combat.NewCombatant(id, card.Name, card.Class, combat.Stats{
		Attack:  stats.Attack,
		Defense: stats.Defense,
		Speed:   stats.Speed,
		MaxHP:   stats.HP,
	}, key), nil
}

// AssignAbility picks the ability for a card that has none: the character's
// signature ability when the catalog knows it, otherwise a uniform pick from
// the class pool.
//
// Postcondition: Returns "" only when the class has no abilities in the catalog.
func (p *StoreProvider) AssignAbility(card Card) string {
	if key, ok := ability.SignatureFor(card.Name); ok && p.catalog.Validate(key) == nil {
		return key
	}
	var pool []string
	if prof, ok := p.profiles[card.Class]; ok {
		for _, k := range prof.Abilities {
			if p.catalog.Validate(k) == nil {
				pool = append(pool, k)
			}
		}
	}
	if len(pool) == 0 {
		for _, d := range p.catalog.ListForClass(card.Class) {
			pool = append(pool, d.Key)
		}
	}
	return dice.Pick(p.src, pool)
}
