package ai

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cardclash/internal/game/ability"
	"github.com/cory-johannsen/cardclash/internal/game/combat"
)

// DefaultTactic names the built-in heuristic policy.
const DefaultTactic = "heuristic"

// Registry maps tactic names to policies.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	policies map[string]combat.Policy
	fallback combat.Policy
}

// NewRegistry creates a Registry whose unknown-name lookups resolve to
// fallback, which is also registered as DefaultTactic.
//
// Precondition: fallback must be non-nil.
func NewRegistry(fallback combat.Policy) *Registry {
	if fallback == nil {
		panic("ai.NewRegistry: fallback must not be nil")
	}
	return &Registry{
		policies: map[string]combat.Policy{DefaultTactic: fallback},
		fallback: fallback,
	}
}

// Register adds a policy under name.
//
// Precondition: name must be non-empty and not already registered.
func (r *Registry) Register(name string, p combat.Policy) error {
	if name == "" || p == nil {
		return fmt.Errorf("ai: tactic name and policy are required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.policies[name]; ok {
		return fmt.Errorf("ai: tactic %q already registered", name)
	}
	r.policies[name] = p
	return nil
}

// Lookup returns the policy registered under name.
func (r *Registry) Lookup(name string) (combat.Policy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.policies[name]
	return p, ok
}

// PolicyFor returns the policy for name, or the fallback when name is empty
// or unknown.
//
// Postcondition: Never returns nil.
func (r *Registry) PolicyFor(name string) combat.Policy {
	if p, ok := r.Lookup(name); ok {
		return p
	}
	return r.fallback
}

// Names returns every registered tactic in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.policies))
	for k := range r.policies {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// RegisterScripted registers a ScriptedPolicy for each named tactic VM, each
// falling back to the registry's fallback policy.
//
// Postcondition: Returns the first registration error, leaving earlier
// tactics registered.
func (r *Registry) RegisterScripted(caller ScriptCaller, names []string, catalog *ability.Catalog, logger *zap.Logger) error {
	for _, name := range names {
		if err := r.Register(name, NewScriptedPolicy(caller, name, catalog, r.fallback, logger)); err != nil {
			return err
		}
	}
	return nil
}

// ByTeam returns a policy that delegates to a for Team A actors and to b for
// Team B actors, letting each side play its own tactic.
//
// Precondition: a and b must be non-nil.
func ByTeam(a, b combat.Policy) combat.Policy {
	return combat.PolicyFunc(func(actor *combat.Combatant, state *combat.BattleState) combat.Action {
		if actor.Team == combat.TeamB {
			return b.Decide(actor, state)
		}
		return a.Decide(actor, state)
	})
}
