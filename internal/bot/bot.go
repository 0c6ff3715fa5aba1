// Package bot handles the Discord slash commands that manage lineups and
// start battles.
package bot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cardclash/internal/arena"
	"github.com/cory-johannsen/cardclash/internal/game/ability"
	"github.com/cory-johannsen/cardclash/internal/game/combat"
	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
	"github.com/cory-johannsen/cardclash/internal/lineup"
	"github.com/cory-johannsen/cardclash/internal/roster"
)

// samplePool is how many random cards are drawn to compose a generated team.
const samplePool = 20

// Arena is the battle host the bot drives.
type Arena interface {
	StartBattle(ctx context.Context, req arena.StartRequest) (*combat.BattleState, error)
	Cancel(sessionID string) bool
	Participants(sessionID string) ([]string, bool)
}

// Responder is the subset of *discordgo.Session used to answer interactions.
type Responder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
}

// Config wires a Bot.
type Config struct {
	Arena   Arena
	Lineups lineup.Repository
	// Cards names lineup entries in /lineup show; optional.
	Cards roster.Store
	// Sampler supplies generated opponents; without it /battle requires an
	// opponent.
	Sampler  roster.Sampler
	Catalog  *ability.Catalog
	TeamSize int
	// Timeout bounds the work done for one interaction.
	Timeout time.Duration
	Logger  *zap.Logger
}

// Bot dispatches slash commands.
type Bot struct {
	arena    Arena
	lineups  lineup.Repository
	cards    roster.Store
	sampler  roster.Sampler
	catalog  *ability.Catalog
	teamSize int
	timeout  time.Duration
	logger   *zap.Logger
}

// New creates a Bot.
//
// Precondition: cfg.Arena, cfg.Lineups and cfg.Logger must be non-nil.
func New(cfg Config) *Bot {
	if cfg.Arena == nil || cfg.Lineups == nil || cfg.Logger == nil {
		panic("bot.New: arena, lineups and logger must not be nil")
	}
	if cfg.Catalog == nil {
		cfg.Catalog = ability.Default()
	}
	if cfg.TeamSize <= 0 || cfg.TeamSize > lineup.MaxSize {
		cfg.TeamSize = lineup.MaxSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Bot{
		arena:    cfg.Arena,
		lineups:  cfg.Lineups,
		cards:    cfg.Cards,
		sampler:  cfg.Sampler,
		catalog:  cfg.Catalog,
		teamSize: cfg.TeamSize,
		timeout:  cfg.Timeout,
		logger:   cfg.Logger,
	}
}

// HandleInteraction is the discordgo handler for InteractionCreate events.
func (b *Bot) HandleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()
	b.Handle(ctx, s, i)
}

// Handle dispatches one interaction. Non-command interactions are ignored.
func (b *Bot) Handle(ctx context.Context, r Responder, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	data := i.ApplicationCommandData()
	var resp *discordgo.InteractionResponseData
	switch data.Name {
	case CmdBattle:
		resp = b.battle(ctx, i, data.Options)
	case CmdForfeit:
		resp = b.forfeit(i)
	case CmdLineup:
		resp = b.lineup(ctx, i, data.Options)
	case CmdAbilities:
		resp = b.abilities(data.Options)
	default:
		return
	}
	if err := r.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: resp,
	}); err != nil {
		b.logger.Warn("failed to respond to interaction",
			zap.String("command", data.Name),
			zap.Error(err),
		)
	}
}

func (b *Bot) battle(ctx context.Context, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponseData {
	user := userID(i)
	req := arena.StartRequest{SessionID: i.ChannelID, Paced: true}
	var opponent string
	for _, opt := range opts {
		switch opt.Name {
		case OptOpponent:
			opponent = opt.UserValue(nil).ID
		case OptTactic:
			req.TacticA = opt.StringValue()
		case OptOpponentTactic:
			req.TacticB = opt.StringValue()
		}
	}
	if opponent != "" && opponent == user {
		return ephemeral("❌ You cannot battle yourself.")
	}

	ids := []string{user}
	if opponent != "" {
		ids = append(ids, opponent)
	}
	found, err := b.lineups.GetMany(ctx, ids)
	if err != nil {
		return b.failure("loading lineups", err)
	}
	mine, ok := found[user]
	if !ok || len(mine.Cards) == 0 {
		return ephemeral("❌ Your lineup is empty. Add cards with `/lineup add`.")
	}
	req.TeamA = trim(mine.Refs(), b.teamSize)
	req.Participants = ids

	if opponent != "" {
		theirs, ok := found[opponent]
		if !ok || len(theirs.Cards) == 0 {
			return ephemeral(fmt.Sprintf("❌ <@%s> has no lineup.", opponent))
		}
		req.TeamB = trim(theirs.Refs(), b.teamSize)
	} else {
		if b.sampler == nil {
			return ephemeral("❌ Choose an opponent for this battle.")
		}
		pool, err := b.sampler.Sample(ctx, samplePool)
		if err != nil {
			return b.failure("sampling opponent", err)
		}
		req.TeamB = roster.BalancedTeam(pool, b.teamSize)
	}

	state, err := b.arena.StartBattle(ctx, req)
	switch {
	case errors.Is(err, arena.ErrSessionBusy):
		return ephemeral("⚠️ A battle is already running in this channel.")
	case errors.Is(err, roster.ErrCardNotFound):
		return ephemeral("❌ A card in one of the lineups no longer exists.")
	case errors.Is(err, combat.ErrInvalidTeamSize):
		return ephemeral("❌ Both teams need at least one card.")
	case err != nil:
		return b.failure("starting battle", err)
	}
	b.logger.Info("battle requested",
		zap.String("user", user),
		zap.String("opponent", opponent),
		zap.String("battle_id", state.ID),
	)
	against := "a generated team"
	if opponent != "" {
		against = fmt.Sprintf("<@%s>", opponent)
	}
	return &discordgo.InteractionResponseData{
		Content: fmt.Sprintf("⚔️ <@%s> enters the arena against %s! %d vs %d.", user, against, len(state.TeamA), len(state.TeamB)),
	}
}

func (b *Bot) forfeit(i *discordgo.InteractionCreate) *discordgo.InteractionResponseData {
	user := userID(i)
	who, ok := b.arena.Participants(i.ChannelID)
	if !ok {
		return ephemeral("There is no battle in this channel.")
	}
	if !slices.Contains(who, user) {
		b.logger.Info("forfeit refused",
			zap.String("user", user),
			zap.String("session", i.ChannelID),
		)
		return ephemeral("❌ Only a player in this battle can forfeit it.")
	}
	if !b.arena.Cancel(i.ChannelID) {
		return ephemeral("There is no battle in this channel.")
	}
	return &discordgo.InteractionResponseData{Content: fmt.Sprintf("🏳️ <@%s> ended the battle.", user)}
}

func (b *Bot) lineup(ctx context.Context, i *discordgo.InteractionCreate, opts []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponseData {
	if len(opts) == 0 {
		return ephemeral("❌ Choose add, remove, show or clear.")
	}
	user := userID(i)
	sub := opts[0]
	switch sub.Name {
	case "add":
		card := strings.TrimSpace(optionString(sub.Options, OptCard))
		if card == "" {
			return ephemeral("❌ Provide a card ID.")
		}
		if b.cards != nil {
			found, err := b.cards.GetCards(ctx, []string{card})
			if err != nil {
				return b.failure("looking up card", err)
			}
			if len(found) == 0 {
				return ephemeral(fmt.Sprintf("❌ No card with ID `%s`.", card))
			}
		}
		l, err := b.lineups.Add(ctx, user, card)
		switch {
		case errors.Is(err, lineup.ErrLineupFull):
			return ephemeral(fmt.Sprintf("❌ Your lineup already has %d cards.", lineup.MaxSize))
		case errors.Is(err, lineup.ErrDuplicateCard):
			return ephemeral("❌ That card is already in your lineup.")
		case err != nil:
			return b.failure("adding to lineup", err)
		}
		return ephemeral(fmt.Sprintf("✅ Added `%s` at position %d.", card, len(l.Cards)))
	case "remove":
		pos := int(optionInt(sub.Options, OptPosition))
		removed, err := b.lineups.Remove(ctx, user, pos)
		switch {
		case errors.Is(err, lineup.ErrNotFound):
			return ephemeral("Your lineup is empty.")
		case errors.Is(err, lineup.ErrInvalidPosition):
			return ephemeral(fmt.Sprintf("❌ There is no card at position %d.", pos))
		case err != nil:
			return b.failure("removing from lineup", err)
		}
		return ephemeral(fmt.Sprintf("🗑️ Removed `%s`.", removed))
	case "show":
		l, err := b.lineups.Get(ctx, user)
		if errors.Is(err, lineup.ErrNotFound) || (err == nil && len(l.Cards) == 0) {
			return ephemeral("Your lineup is empty. Add cards with `/lineup add`.")
		}
		if err != nil {
			return b.failure("loading lineup", err)
		}
		return &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{b.lineupEmbed(ctx, l)},
			Flags:  discordgo.MessageFlagsEphemeral,
		}
	case "clear":
		if err := b.lineups.Clear(ctx, user); err != nil {
			return b.failure("clearing lineup", err)
		}
		return ephemeral("🧹 Lineup cleared.")
	}
	return ephemeral("❌ Unknown lineup command.")
}

func (b *Bot) lineupEmbed(ctx context.Context, l *lineup.Lineup) *discordgo.MessageEmbed {
	names := map[string]roster.Card{}
	if b.cards != nil {
		cards, err := b.cards.GetCards(ctx, l.Cards)
		if err != nil {
			b.logger.Warn("failed to name lineup cards", zap.Error(err))
		}
		for _, c := range cards {
			names[c.ID] = c
		}
	}
	var sb strings.Builder
	for pos, id := range l.Cards {
		if c, ok := names[id]; ok {
			fmt.Fprintf(&sb, "**%d.** %s (%s) `%s`\n", pos+1, c.Name, c.Class, id)
		} else {
			fmt.Fprintf(&sb, "**%d.** `%s`\n", pos+1, id)
		}
	}
	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("🃏 Lineup (%d/%d)", len(l.Cards), lineup.MaxSize),
		Description: sb.String(),
		Color:       0x5865F2,
	}
}

func (b *Bot) abilities(opts []*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionResponseData {
	defs := b.catalog.All()
	title := "📖 Abilities"
	if name := optionString(opts, OptClass); name != "" {
		class, err := ruleset.ParseClass(name)
		if err != nil {
			return ephemeral(fmt.Sprintf("❌ %v", err))
		}
		defs = b.catalog.ListForClass(class)
		title = fmt.Sprintf("📖 %s Abilities", class)
	}
	fields := make([]*discordgo.MessageEmbedField, 0, len(defs))
	for _, d := range defs {
		// Discord caps an embed at 25 fields.
		if len(fields) == 25 {
			break
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  fmt.Sprintf("%s (cooldown %d)", d.Name, d.Cooldown),
			Value: d.Description,
		})
	}
	return &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{{Title: title, Fields: fields, Color: 0x5865F2}},
		Flags:  discordgo.MessageFlagsEphemeral,
	}
}

func (b *Bot) failure(op string, err error) *discordgo.InteractionResponseData {
	b.logger.Error("command failed", zap.String("op", op), zap.Error(err))
	return ephemeral("❌ Something went wrong. Please try again.")
}

func ephemeral(content string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{Content: content, Flags: discordgo.MessageFlagsEphemeral}
}

// userID returns the invoking user in guilds and in DMs.
func userID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func optionString(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, o := range opts {
		if o.Name == name {
			return o.StringValue()
		}
	}
	return ""
}

func optionInt(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) int64 {
	for _, o := range opts {
		if o.Name == name {
			return o.IntValue()
		}
	}
	return 0
}

func trim(refs []roster.CardRef, n int) []roster.CardRef {
	if len(refs) > n {
		return refs[:n]
	}
	return refs
}
