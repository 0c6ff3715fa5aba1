// Package observability provides logging utilities.
package observability

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cory-johannsen/cardclash/internal/config"
)

// NewLogger creates a structured logger from the given logging configuration.
//
// Precondition: cfg.Level must be one of "debug", "info", "warn", "error".
// Precondition: cfg.Format must be "json" or "console".
// Postcondition: Returns a configured zap.Logger or a non-nil error.
func NewLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", cfg.Level, err)
	}

	var zapCfg zap.Config
	switch cfg.Format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// DiscordLevel maps a zap level onto discordgo's log level scale.
func DiscordLevel(level zapcore.Level) int {
	switch {
	case level <= zapcore.DebugLevel:
		return discordgo.LogDebug
	case level == zapcore.InfoLevel:
		return discordgo.LogInformational
	case level == zapcore.WarnLevel:
		return discordgo.LogWarning
	default:
		return discordgo.LogError
	}
}

// DiscordLogFunc returns a function with the signature of discordgo.Logger
// that writes through logger.
func DiscordLogFunc(logger *zap.Logger) func(msgL, caller int, format string, a ...interface{}) {
	l := logger.Named("discordgo").WithOptions(zap.AddCallerSkip(1))
	return func(msgL, _ int, format string, a ...interface{}) {
		msg := fmt.Sprintf(format, a...)
		switch msgL {
		case discordgo.LogError:
			l.Error(msg)
		case discordgo.LogWarning:
			l.Warn(msg)
		case discordgo.LogInformational:
			l.Info(msg)
		default:
			l.Debug(msg)
		}
	}
}

// RouteDiscordLogs sends discordgo's package logging through logger.
//
// Postcondition: discordgo.Logger is replaced for the whole process.
func RouteDiscordLogs(logger *zap.Logger) {
	discordgo.Logger = DiscordLogFunc(logger)
}
