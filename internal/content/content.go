// Package content assembles the battle rules, abilities and tactics named by
// the configuration into ready-to-use engine options.
package content

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cardclash/internal/config"
	"github.com/cory-johannsen/cardclash/internal/game/ability"
	"github.com/cory-johannsen/cardclash/internal/game/ai"
	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/game/dice"
	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
	"github.com/cory-johannsen/cardclash/internal/scripting"
)

// Content is the loaded rule set.
type Content struct {
	Catalog  *ability.Catalog
	Profiles ruleset.Profiles
	Model    combat.DamageModel
	// Scripts is nil when no scripts directory is configured.
	Scripts *scripting.Manager
	Tactics []string

	battle config.BattleConfig
	logger *zap.Logger
}

// Load reads abilities, class profiles and tactic scripts.
//
// Precondition: cfg must have passed Validate; logger must be non-nil.
// Postcondition: Returns a Content whose Close must be called, or an error.
func Load(cfg config.Config, logger *zap.Logger) (*Content, error) {
	start := time.Now()
	catalog, err := ability.LoadCatalog(cfg.Content.AbilitiesDir)
	if err != nil {
		return nil, fmt.Errorf("loading abilities: %w", err)
	}
	profiles := ruleset.DefaultProfiles()
	if cfg.Content.ClassesDir != "" {
		if profiles, err = ruleset.LoadProfiles(cfg.Content.ClassesDir); err != nil {
			return nil, fmt.Errorf("loading class profiles: %w", err)
		}
	}
	model, ok := combat.ModelByName(cfg.Battle.DamageModel, cfg.Battle.ClassEffectiveness)
	if !ok {
		return nil, fmt.Errorf("unknown damage model %q", cfg.Battle.DamageModel)
	}

	c := &Content{
		Catalog:  catalog,
		Profiles: profiles,
		Model:    model,
		battle:   cfg.Battle,
		logger:   logger,
	}
	if cfg.Content.ScriptsDir != "" {
		c.Scripts = scripting.NewManager(c.NewSource(0), logger)
		names, err := c.Scripts.LoadAll(cfg.Content.ScriptsDir, cfg.Content.ScriptInstructionLimit)
		if err != nil {
			c.Scripts.Close()
			return nil, fmt.Errorf("loading tactic scripts: %w", err)
		}
		c.Tactics = names
	}
	logger.Info("content loaded",
		zap.Int("abilities", catalog.Len()),
		zap.Int("classes", len(profiles)),
		zap.Strings("tactics", c.Tactics),
		zap.String("damage_model", cfg.Battle.DamageModel),
		zap.Duration("elapsed", time.Since(start)),
	)
	return c, nil
}

// NewSource returns the configured random source. A non-zero offset shifts a
// configured seed so parallel battles draw independent streams; with no seed
// configured the crypto source is used regardless of offset. Draws are logged
// at debug level.
func (c *Content) NewSource(offset uint64) dice.Source {
	var src dice.Source
	if c.battle.Seed == 0 {
		src = dice.NewCryptoSource()
	} else {
		src = dice.NewSeededSource(c.battle.Seed + offset)
	}
	return dice.NewLoggedSource(src, c.logger)
}

// NewRegistry returns a tactic registry whose default is the heuristic
// drawing from src, plus one entry per loaded tactic script.
//
// Postcondition: Registry.Names() includes ai.DefaultTactic and c.Tactics.
func (c *Content) NewRegistry(src dice.Source) (*ai.Registry, error) {
	reg := ai.NewRegistry(ai.NewHeuristic(c.Catalog, src, c.battle.AbilityChance))
	if c.Scripts != nil {
		if err := reg.RegisterScripted(c.Scripts, c.Tactics, c.Catalog, c.logger); err != nil {
			return nil, fmt.Errorf("registering tactics: %w", err)
		}
	}
	return reg, nil
}

// EngineOptions returns engine options drawing from src. The policy is left
// unset for the arena to choose per battle.
func (c *Content) EngineOptions(src dice.Source) combat.Options {
	return combat.Options{
		Catalog:  c.Catalog,
		Model:    c.Model,
		Source:   src,
		Logger:   c.logger,
		MaxTurns: c.battle.MaxTurns,
	}
}

// Close releases the script VMs.
func (c *Content) Close() {
	if c.Scripts != nil {
		c.Scripts.Close()
	}
}
