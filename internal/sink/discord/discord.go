// Package discord presents battles as a single Discord embed per battle that
// is edited in place as turns resolve.
package discord

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/sink"
)

// Embed colours.
const (
	ColorActive = 0x5865F2
	ColorTeamA  = 0x2ECC71
	ColorTeamB  = 0xE74C3C
	ColorDraw   = 0x95A5A6
)

// recentEvents is how many log lines the embed shows.
const recentEvents = 3

// Session is the subset of *discordgo.Session the sink uses.
type Session interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(edit *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Sink implements sink.Sink. The session ID is the Discord channel ID.
type Sink struct {
	session Session
	logger  *zap.Logger

	mu       sync.Mutex
	messages map[string]string // battle ID -> message ID
}

// New creates a Discord sink.
//
// Precondition: session and logger must be non-nil.
func New(session Session, logger *zap.Logger) *Sink {
	if session == nil || logger == nil {
		panic("discord.New: session and logger must not be nil")
	}
	return &Sink{session: session, logger: logger, messages: make(map[string]string)}
}

var _ sink.Sink = (*Sink)(nil)

func (s *Sink) PublishStart(_ context.Context, channelID string, state *combat.BattleState) error {
	msg, err := s.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{BuildEmbed(state)},
	})
	if err != nil {
		return fmt.Errorf("failed to create battle message: %w", err)
	}
	s.mu.Lock()
	s.messages[state.ID] = msg.ID
	s.mu.Unlock()
	return nil
}

func (s *Sink) PublishEvent(_ context.Context, channelID string, state *combat.BattleState, _ combat.BattleEvent) error {
	return s.update(channelID, state, false)
}

func (s *Sink) PublishEnd(_ context.Context, channelID string, state *combat.BattleState) error {
	return s.update(channelID, state, true)
}

// PublishCancel marks the battle's message as forfeited and stops tracking
// it. A battle without a message is left alone.
func (s *Sink) PublishCancel(_ context.Context, channelID string, state *combat.BattleState) error {
	s.mu.Lock()
	messageID, ok := s.messages[state.ID]
	delete(s.messages, state.ID)
	s.mu.Unlock()
	if !ok {
		return nil
	}

	embed := BuildEmbed(state)
	embed.Title = "🏳️ Battle Forfeited"
	embed.Color = ColorDraw
	embeds := []*discordgo.MessageEmbed{embed}
	if _, err := s.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:      messageID,
		Channel: channelID,
		Embeds:  &embeds,
	}); err != nil {
		return fmt.Errorf("failed to update battle message: %w", err)
	}
	return nil
}

// update edits the battle's message, posting a new one when the battle has
// none yet (for example after a failed start).
func (s *Sink) update(channelID string, state *combat.BattleState, final bool) error {
	s.mu.Lock()
	messageID, ok := s.messages[state.ID]
	if final {
		delete(s.messages, state.ID)
	}
	s.mu.Unlock()

	embed := BuildEmbed(state)
	if !ok {
		msg, err := s.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{embed},
		})
		if err != nil {
			return fmt.Errorf("failed to create battle message: %w", err)
		}
		if !final {
			s.mu.Lock()
			s.messages[state.ID] = msg.ID
			s.mu.Unlock()
		}
		return nil
	}

	embeds := []*discordgo.MessageEmbed{embed}
	if _, err := s.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:      messageID,
		Channel: channelID,
		Embeds:  &embeds,
	}); err != nil {
		s.logger.Warn("failed to update battle message",
			zap.String("battle_id", state.ID),
			zap.String("channel", channelID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to update battle message: %w", err)
	}
	return nil
}

// Tracked reports how many battles currently own a message.
func (s *Sink) Tracked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

// BuildEmbed renders the battle: both rosters side by side, the latest
// events and, once ended, the winner.
func BuildEmbed(state *combat.BattleState) *discordgo.MessageEmbed {
	desc := "Battle begins!"
	if ev, ok := state.LastEvent(); ok {
		desc = ev.Message
	}
	embed := &discordgo.MessageEmbed{
		Title:       "⚔️ Strategic Battle",
		Description: fmt.Sprintf("**Turn %d** | %s", state.TurnCounter, desc),
		Color:       ColorActive,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "🔹 Team A", Value: nonEmpty(sink.TeamSummary(state, combat.TeamA)), Inline: true},
			{Name: "🔸 Team B", Value: nonEmpty(sink.TeamSummary(state, combat.TeamB)), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{Text: fmt.Sprintf("Battle %s | Round %d", state.ID, state.RoundCounter)},
	}

	if n := len(state.Log); n > 0 {
		from := n - recentEvents
		if from < 0 {
			from = 0
		}
		lines := make([]string, 0, recentEvents)
		for _, ev := range state.Log[from:] {
			lines = append(lines, sink.EventLine(ev))
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "📜 Battle Log",
			Value: strings.Join(lines, "\n"),
		})
	}

	if state.Ended() {
		embed.Title = "🏁 Battle Over"
		embed.Color = outcomeColor(state.Winner)
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Result",
			Value: sink.Outcome(state),
		})
	}
	return embed
}

func outcomeColor(w combat.Winner) int {
	switch w {
	case combat.WinnerTeamA:
		return ColorTeamA
	case combat.WinnerTeamB:
		return ColorTeamB
	default:
		return ColorDraw
	}
}

func nonEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
