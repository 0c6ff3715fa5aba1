// Package main prints recorded battles for a channel, or the full log of one
// battle.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/cory-johannsen/cardclash/internal/config"
	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/sink"
	"github.com/cory-johannsen/cardclash/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	session := flag.String("session", "", "channel ID whose battles are listed")
	battle := flag.String("battle", "", "battle ID whose event log is printed")
	limit := flag.Int("limit", 10, "maximum battles listed")
	flag.Parse()

	if (*session == "") == (*battle == "") {
		fmt.Fprintln(os.Stderr, "usage: history (-session <channel id> [-limit n] | -battle <battle id>)")
		os.Exit(1)
	}
	if *limit <= 0 {
		log.Fatalf("invalid limit %d: must be > 0", *limit)
	}
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}
	defer pool.Close()
	repo := postgres.NewResultRepository(pool.DB())

	if *battle != "" {
		events, err := repo.Log(ctx, *battle)
		if err != nil {
			log.Fatalf("%v", err)
		}
		printLog(os.Stdout, events)
	} else {
		results, err := repo.RecentBySession(ctx, *session, *limit)
		if err != nil {
			log.Fatalf("%v", err)
		}
		printSummaries(os.Stdout, results)
	}
	fmt.Fprintf(os.Stderr, "[%s]\n", time.Since(start).Round(time.Millisecond))
}

func printSummaries(w io.Writer, results []postgres.ResultSummary) {
	if len(results) == 0 {
		fmt.Fprintln(w, "no battles recorded")
		return
	}
	for _, r := range results {
		fmt.Fprintf(w, "%s  %-36s  %-6s  turns=%d rounds=%d\n",
			r.FinishedAt.UTC().Format(time.RFC3339), r.BattleID, r.Winner, r.Turns, r.Rounds)
	}
}

func printLog(w io.Writer, events []combat.BattleEvent) {
	for _, ev := range events {
		fmt.Fprintln(w, sink.EventLine(ev))
	}
}
