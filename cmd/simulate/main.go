// Package main runs offline battles between named teams of a roster file and
// prints the outcome tally.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/cardclash/internal/arena"
	"github.com/cory-johannsen/cardclash/internal/config"
	"github.com/cory-johannsen/cardclash/internal/content"
	"github.com/cory-johannsen/cardclash/internal/game/ai"
	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/observability"
	"github.com/cory-johannsen/cardclash/internal/roster"
)

type tally struct {
	mu     sync.Mutex
	wins   map[combat.Winner]int
	turns  int
	rounds int
}

func (t *tally) add(state *combat.BattleState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.wins[state.Winner]++
	t.turns += len(state.Log)
	t.rounds += state.RoundCounter
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	rosterPath := flag.String("roster", "content/rosters/sample.yaml", "path to roster YAML file")
	teamA := flag.String("a", "", "team A name in the roster (default: first team)")
	teamB := flag.String("b", "", "team B name in the roster (default: second team)")
	tacticA := flag.String("tactic-a", ai.DefaultTactic, "team A tactic")
	tacticB := flag.String("tactic-b", ai.DefaultTactic, "team B tactic")
	n := flag.Int("n", 100, "number of battles")
	seed := flag.Uint64("seed", 0, "base seed; battle i uses seed+i (0 = config seed or crypto)")
	workers := flag.Int("workers", runtime.GOMAXPROCS(0), "battles run concurrently")
	verbose := flag.Bool("v", false, "log every battle event")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *seed != 0 {
		cfg.Battle.Seed = *seed
	}
	if !*verbose {
		cfg.Logging.Level = "warn"
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	rules, err := content.Load(cfg, logger)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	defer rules.Close()

	store, err := roster.LoadFile(*rosterPath)
	if err != nil {
		logger.Fatal("loading roster", zap.Error(err))
	}
	refsA, refsB, err := pickTeams(store, *teamA, *teamB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	results := &tally{wins: make(map[combat.Winner]int)}
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(max(*workers, 1))
	for i := 0; i < *n; i++ {
		g.Go(func() error {
			state, err := simulate(ctx, rules, store, logger, uint64(i), refsA, refsB, *tacticA, *tacticB)
			if err != nil {
				return fmt.Errorf("battle %d: %w", i, err)
			}
			results.add(state)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	total := max(*n, 1)
	fmt.Printf("%d battles in %s\n", *n, time.Since(start).Round(time.Millisecond))
	fmt.Printf("  team A (%s): %d wins\n", *tacticA, results.wins[combat.WinnerTeamA])
	fmt.Printf("  team B (%s): %d wins\n", *tacticB, results.wins[combat.WinnerTeamB])
	fmt.Printf("  draws: %d\n", results.wins[combat.WinnerDraw])
	fmt.Printf("  avg turns: %.1f  avg rounds: %.1f\n",
		float64(results.turns)/float64(total), float64(results.rounds)/float64(total))
}

// simulate runs one battle to completion with its own random stream.
func simulate(ctx context.Context, rules *content.Content, store roster.Store, logger *zap.Logger, offset uint64, a, b []roster.CardRef, tacticA, tacticB string) (*combat.BattleState, error) {
	src := rules.NewSource(offset)
	registry, err := rules.NewRegistry(src)
	if err != nil {
		return nil, err
	}
	svc := arena.NewService(arena.Config{
		Provider: roster.NewStoreProvider(store, rules.Catalog, rules.Profiles, src, logger),
		Registry: registry,
		Engine:   rules.EngineOptions(src),
		Logger:   logger,
	})
	sessionID := fmt.Sprintf("sim-%d", offset)
	if _, err := svc.StartBattle(ctx, arena.StartRequest{
		SessionID: sessionID,
		TeamA:     a,
		TeamB:     b,
		TacticA:   tacticA,
		TacticB:   tacticB,
	}); err != nil {
		return nil, err
	}
	return svc.Run(ctx, sessionID)
}

func pickTeams(store *roster.FileStore, a, b string) ([]roster.CardRef, []roster.CardRef, error) {
	names := store.TeamNames()
	if a == "" || b == "" {
		if len(names) < 2 {
			return nil, nil, fmt.Errorf("roster needs two named teams, has %d", len(names))
		}
		if a == "" {
			a = names[0]
		}
		if b == "" {
			b = names[1]
		}
	}
	refsA, ok := store.Team(a)
	if !ok {
		return nil, nil, fmt.Errorf("unknown team %q (have %v)", a, names)
	}
	refsB, ok := store.Team(b)
	if !ok {
		return nil, nil, fmt.Errorf("unknown team %q (have %v)", b, names)
	}
	return refsA, refsB, nil
}
