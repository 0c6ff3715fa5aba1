// Package main imports the cards of a roster YAML file into the card table.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/cory-johannsen/cardclash/internal/config"
	"github.com/cory-johannsen/cardclash/internal/roster"
	"github.com/cory-johannsen/cardclash/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	source := flag.String("source", "", "path to roster YAML file")
	flag.Parse()

	if *source == "" {
		fmt.Fprintln(os.Stderr, "usage: import-cards -source <roster.yaml> [-config <file>]")
		os.Exit(1)
	}
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: loading config: %v\n", err)
		os.Exit(1)
	}
	store, err := roster.LoadFile(*source)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	start := time.Now()
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: connecting to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	imported, skipped, err := importCards(ctx, postgres.NewCardRepository(pool.DB()), store.All())
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("import complete in %s: %d imported, %d already present\n",
		time.Since(start).Round(time.Millisecond), imported, skipped)
}

type cardCreator interface {
	Create(ctx context.Context, c roster.Card) (roster.Card, error)
}

// importCards creates every card, counting duplicates instead of failing.
func importCards(ctx context.Context, repo cardCreator, cards []roster.Card) (imported, skipped int, err error) {
	for _, c := range cards {
		if _, err := repo.Create(ctx, c); err != nil {
			if errors.Is(err, postgres.ErrCardExists) {
				skipped++
				continue
			}
			return imported, skipped, fmt.Errorf("card %q: %w", c.Name, err)
		}
		imported++
	}
	return imported, skipped, nil
}
