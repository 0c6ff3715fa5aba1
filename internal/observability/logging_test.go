package observability

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/cory-johannsen/cardclash/internal/config"
)

func TestNewLogger_JSON(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "json"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_Console(t *testing.T) {
	cfg := config.LoggingConfig{Level: "debug", Format: "console"}
	logger, err := NewLogger(cfg)
	require.NoError(t, err)
	assert.NotNil(t, logger)
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := config.LoggingConfig{Level: "trace", Format: "json"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := config.LoggingConfig{Level: "info", Format: "xml"}
	_, err := NewLogger(cfg)
	assert.Error(t, err)
}

func TestNewLogger_AllLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := config.LoggingConfig{Level: level, Format: "json"}
		logger, err := NewLogger(cfg)
		require.NoError(t, err, "level %q should be valid", level)
		assert.NotNil(t, logger)
	}
}

func TestDiscordLevel(t *testing.T) {
	assert.Equal(t, discordgo.LogDebug, DiscordLevel(zapcore.DebugLevel))
	assert.Equal(t, discordgo.LogInformational, DiscordLevel(zapcore.InfoLevel))
	assert.Equal(t, discordgo.LogWarning, DiscordLevel(zapcore.WarnLevel))
	assert.Equal(t, discordgo.LogError, DiscordLevel(zapcore.ErrorLevel))
}

func TestDiscordLogFunc_MapsLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	fn := DiscordLogFunc(zap.New(core))

	fn(discordgo.LogError, 0, "gateway %s", "closed")
	fn(discordgo.LogWarning, 0, "rate limited")
	fn(discordgo.LogInformational, 0, "connected")
	fn(discordgo.LogDebug, 0, "heartbeat")

	entries := logs.AllUntimed()
	require.Len(t, entries, 4)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "gateway closed", entries[0].Message)
	assert.Equal(t, "discordgo", entries[0].LoggerName)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, zapcore.InfoLevel, entries[2].Level)
	assert.Equal(t, zapcore.DebugLevel, entries[3].Level)
}
