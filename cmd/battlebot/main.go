// Package main runs the Discord battle bot.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cardclash/internal/arena"
	"github.com/cory-johannsen/cardclash/internal/bot"
	"github.com/cory-johannsen/cardclash/internal/config"
	"github.com/cory-johannsen/cardclash/internal/content"
	"github.com/cory-johannsen/cardclash/internal/lineup"
	"github.com/cory-johannsen/cardclash/internal/observability"
	"github.com/cory-johannsen/cardclash/internal/roster"
	"github.com/cory-johannsen/cardclash/internal/server"
	"github.com/cory-johannsen/cardclash/internal/sink"
	discordsink "github.com/cory-johannsen/cardclash/internal/sink/discord"
	"github.com/cory-johannsen/cardclash/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	envFile := flag.String("env", ".env", "optional dotenv file loaded before the config")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil {
		log.Printf("no env file loaded from %s: %v", *envFile, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if err := cfg.Discord.Validate(); err != nil {
		log.Fatalf("discord config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()
	observability.RouteDiscordLogs(logger)

	ctx := context.Background()

	rules, err := content.Load(cfg, logger)
	if err != nil {
		logger.Fatal("loading content", zap.Error(err))
	}
	defer rules.Close()

	// Connect to PostgreSQL for cards and battle history
	dbStart := time.Now()
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("connecting to database", zap.Error(err))
	}
	defer pool.Close()
	logger.Info("database connected",
		zap.String("host", cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	cards := postgres.NewCardRepository(pool.DB())
	results := postgres.NewResultRepository(pool.DB())

	var lineups lineup.Repository
	if cfg.Redis.Enabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Fatal("connecting to redis", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		lineups = lineup.NewRedis(client)
		logger.Info("lineups stored in redis", zap.String("addr", cfg.Redis.Addr))
	} else {
		lineups = lineup.NewInMemory()
		logger.Warn("redis not configured, lineups are kept in memory")
	}

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		logger.Fatal("creating discord session", zap.Error(err))
	}
	session.Identify.Intents = discordgo.IntentsGuilds
	session.LogLevel = observability.DiscordLevel(logger.Level())

	src := rules.NewSource(0)
	registry, err := rules.NewRegistry(src)
	if err != nil {
		logger.Fatal("building tactic registry", zap.Error(err))
	}

	ticker := arena.NewTicker(cfg.Battle.TickInterval)
	svc := arena.NewService(arena.Config{
		Provider: roster.NewStoreProvider(cards, rules.Catalog, rules.Profiles, src, logger),
		Registry: registry,
		Engine:   rules.EngineOptions(src),
		Sink:     sink.Multi(discordsink.New(session, logger), sink.NewLogSink(logger)),
		Recorder: results,
		Ticker:   ticker,
		Logger:   logger,
	})

	handler := bot.New(bot.Config{
		Arena:    svc,
		Lineups:  lineups,
		Cards:    cards,
		Sampler:  cards,
		Catalog:  rules.Catalog,
		TeamSize: cfg.Battle.TeamSize,
		Logger:   logger,
	})
	session.AddHandler(handler.HandleInteraction)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Info("discord ready", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))
	})

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("discord", server.NewContextService(func(ctx context.Context) error {
		if err := session.Open(); err != nil {
			return err
		}
		defer session.Close()
		if err := bot.RegisterCommands(session, cfg.Discord.AppID, cfg.Discord.GuildID, registry.Names()); err != nil {
			return err
		}
		<-ctx.Done()
		return nil
	}))
	lifecycle.Add("arena-ticker", server.NewContextService(func(ctx context.Context) error {
		ticker.Start(ctx)
		<-ctx.Done()
		return nil
	}))

	logger.Info("battle bot initialized",
		zap.Strings("tactics", registry.Names()),
		zap.Duration("tick_interval", ticker.Interval()),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lifecycle.Run(ctx); err != nil {
		logger.Error("battle bot stopped with error", zap.Error(err))
	}
}
