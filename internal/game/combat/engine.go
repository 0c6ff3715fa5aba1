package combat

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/cardclash/internal/game/ability"
	"github.com/cory-johannsen/cardclash/internal/game/dice"
)

// DefaultMaxTurns is the turn cap after which a battle ends in a draw.
const DefaultMaxTurns = 50

// Options configures an Engine. Zero fields take defaults.
type Options struct {
	// Catalog defaults to ability.Default().
	Catalog *ability.Catalog
	// Policy defaults to BasicAttackPolicy.
	Policy Policy
	// Model defaults to StandardModel.
	Model DamageModel
	// Source defaults to a crypto-backed source.
	Source dice.Source
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
	// MaxTurns defaults to DefaultMaxTurns.
	MaxTurns int
}

// Engine drives battles turn by turn. An Engine holds no per-battle state and
// may drive any number of battles, but each BattleState must be advanced by
// one goroutine at a time.
type Engine struct {
	catalog  *ability.Catalog
	policy   Policy
	resolver *Resolver
	logger   *zap.Logger
	maxTurns int
}

// NewEngine creates an Engine from opts.
//
// Postcondition: Returns a non-nil Engine with every option defaulted.
func NewEngine(opts Options) *Engine {
	if opts.Catalog == nil {
		opts.Catalog = ability.Default()
	}
	if opts.Policy == nil {
		opts.Policy = BasicAttackPolicy{}
	}
	if opts.Model == nil {
		opts.Model = StandardModel{}
	}
	if opts.Source == nil {
		opts.Source = dice.NewCryptoSource()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}
	return &Engine{
		catalog:  opts.Catalog,
		policy:   opts.Policy,
		resolver: NewResolver(opts.Catalog, opts.Model, opts.Source),
		logger:   opts.Logger,
		maxTurns: opts.MaxTurns,
	}
}

// MaxTurns returns the configured turn cap.
func (e *Engine) MaxTurns() int { return e.maxTurns }

// Start validates both rosters and creates the battle state with the first
// round's turn order. The combatants are owned by the returned state.
//
// Precondition: combatant IDs are unique across both teams.
// Postcondition: Returns an Active state with TurnCounter == 1, or an error
// wrapping ErrInvalidTeamSize or ErrUnknownAbility.
func (e *Engine) Start(id string, teamA, teamB []*Combatant) (*BattleState, error) {
	if len(teamA) == 0 || len(teamB) == 0 {
		return nil, fmt.Errorf("starting battle %s: team A has %d, team B has %d: %w",
			id, len(teamA), len(teamB), ErrInvalidTeamSize)
	}
	seen := make(map[string]bool, len(teamA)+len(teamB))
	for team, roster := range map[Team][]*Combatant{TeamA: teamA, TeamB: teamB} {
		for _, c := range roster {
			if c == nil {
				return nil, fmt.Errorf("starting battle %s: nil combatant on team %s", id, team)
			}
			if seen[c.ID] {
				return nil, fmt.Errorf("starting battle %s: duplicate combatant id %q", id, c.ID)
			}
			seen[c.ID] = true
			if c.AbilityKey != "" {
				if err := e.catalog.Validate(c.AbilityKey); err != nil {
					return nil, fmt.Errorf("starting battle %s: combatant %s: %w", id, c.ID, err)
				}
			}
			if c.Base.MaxHP <= 0 {
				return nil, fmt.Errorf("starting battle %s: combatant %s: max hp must be > 0", id, c.ID)
			}
			c.Team = team
			c.init()
		}
	}
	state := &BattleState{
		ID:           id,
		TeamA:        teamA,
		TeamB:        teamB,
		TurnCounter:  1,
		RoundCounter: 1,
		Phase:        PhaseActive,
		Winner:       WinnerNone,
	}
	state.TurnOrder = ComputeTurnOrder(state)
	e.checkEnd(state)
	e.logger.Info("battle started",
		zap.String("battle_id", id),
		zap.Int("team_a", len(teamA)),
		zap.Int("team_b", len(teamB)),
		zap.Strings("turn_order", state.TurnOrder),
	)
	return state, nil
}

// Advance processes exactly one living combatant's turn. Dead combatants
// whose slot comes up are skipped without an event. When the round is
// exhausted the turn order is recomputed from the living combatants.
//
// Postcondition: Returns the appended event, or ErrBattleEnded when the
// battle was already over.
func (e *Engine) Advance(state *BattleState) (BattleEvent, error) {
	if state.Phase == PhaseEnded {
		return BattleEvent{}, ErrBattleEnded
	}
	actor := e.nextActor(state)
	if actor == nil {
		// Unreachable while both teams have a living member.
		e.checkEnd(state)
		return BattleEvent{}, ErrBattleEnded
	}

	action := e.policy.Decide(actor, state)
	if actor.Stunned() {
		action = Action{Kind: ActionSkip}
	}
	ev := e.resolver.Resolve(actor, action, state)
	state.Log = append(state.Log, ev)
	expired := actor.TickEffectsAndCooldowns(state.TurnCounter)

	e.logger.Debug("turn resolved",
		zap.String("battle_id", state.ID),
		zap.Int("turn", ev.Turn),
		zap.Int("round", ev.Round),
		zap.String("actor", ev.ActorID),
		zap.Stringer("action", ev.Kind),
		zap.String("ability", ev.AbilityKey),
		zap.String("target", ev.TargetID),
		zap.Int("damage", ev.Damage),
		zap.Int("healing", ev.Healing),
		zap.Int("expired_effects", len(expired)),
	)

	state.TurnCounter++
	if e.checkEnd(state) {
		e.logger.Info("battle ended",
			zap.String("battle_id", state.ID),
			zap.Stringer("winner", state.Winner),
			zap.Int("turns", len(state.Log)),
			zap.Int("rounds", state.RoundCounter),
		)
	}
	return ev, nil
}

// RunToCompletion advances state until the battle ends.
//
// Postcondition: state.Phase == PhaseEnded and state.Winner != WinnerNone.
func (e *Engine) RunToCompletion(state *BattleState) (*BattleState, error) {
	for state.Phase != PhaseEnded {
		if _, err := e.Advance(state); err != nil {
			return state, err
		}
	}
	return state, nil
}

// nextActor pops turn-order slots until a living combatant is found,
// starting a new round when the current one is exhausted.
func (e *Engine) nextActor(state *BattleState) *Combatant {
	for attempts := 0; attempts <= 2*len(state.TurnOrder)+2; attempts++ {
		if state.TurnIndex >= len(state.TurnOrder) {
			state.TurnOrder = ComputeTurnOrder(state)
			state.TurnIndex = 0
			state.RoundCounter++
			if len(state.TurnOrder) == 0 {
				return nil
			}
		}
		c := state.Combatant(state.TurnOrder[state.TurnIndex])
		state.TurnIndex++
		if c != nil && c.IsAlive() {
			return c
		}
	}
	return nil
}

// checkEnd sets the winner and ends the battle when a team is wiped or the
// turn cap is exceeded. A simultaneous wipe is a draw.
func (e *Engine) checkEnd(state *BattleState) bool {
	aAlive := len(state.Living(TeamA)) > 0
	bAlive := len(state.Living(TeamB)) > 0
	switch {
	case !aAlive && !bAlive:
		state.Winner = WinnerDraw
	case !bAlive:
		state.Winner = WinnerTeamA
	case !aAlive:
		state.Winner = WinnerTeamB
	case state.TurnCounter > e.maxTurns:
		state.Winner = WinnerDraw
	default:
		return false
	}
	state.Phase = PhaseEnded
	return true
}
