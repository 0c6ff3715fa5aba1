package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/cory-johannsen/cardclash/internal/game/ruleset"
	"github.com/cory-johannsen/cardclash/internal/lineup"
)

// Command and option names.
const (
	CmdBattle    = "battle"
	CmdForfeit   = "forfeit"
	CmdLineup    = "lineup"
	CmdAbilities = "abilities"

	OptOpponent       = "opponent"
	OptTactic         = "tactic"
	OptOpponentTactic = "opponent_tactic"
	OptCard           = "card"
	OptPosition       = "position"
	OptClass          = "class"
)

// CommandRegistrar is the subset of *discordgo.Session used to install the
// slash commands.
type CommandRegistrar interface {
	ApplicationCommandBulkOverwrite(appID string, guildID string, commands []*discordgo.ApplicationCommand, options ...discordgo.RequestOption) ([]*discordgo.ApplicationCommand, error)
}

// RegisterCommands replaces the application's commands with Commands(tactics).
// An empty guildID registers them globally.
func RegisterCommands(r CommandRegistrar, appID, guildID string, tactics []string) error {
	if _, err := r.ApplicationCommandBulkOverwrite(appID, guildID, Commands(tactics)); err != nil {
		return fmt.Errorf("failed to register commands: %w", err)
	}
	return nil
}

// Commands returns the slash command definitions. tactics become the choices
// of the tactic options.
func Commands(tactics []string) []*discordgo.ApplicationCommand {
	tacticChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(tactics))
	for _, name := range tactics {
		tacticChoices = append(tacticChoices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}
	classChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(ruleset.AllClasses))
	for _, c := range ruleset.AllClasses {
		classChoices = append(classChoices, &discordgo.ApplicationCommandOptionChoice{Name: c.String(), Value: c.String()})
	}
	minPosition := float64(1)

	return []*discordgo.ApplicationCommand{
		{
			Name:        CmdBattle,
			Description: "Start a battle with your lineup in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        OptOpponent,
					Description: "Fight this player's lineup instead of a generated team",
					Required:    false,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptTactic,
					Description: "How your cards decide their moves",
					Required:    false,
					Choices:     tacticChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptOpponentTactic,
					Description: "How the opposing cards decide their moves",
					Required:    false,
					Choices:     tacticChoices,
				},
			},
		},
		{
			Name:        CmdForfeit,
			Description: "Abandon the battle running in this channel",
		},
		{
			Name:        CmdLineup,
			Description: "Manage your battle lineup",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "add",
					Description: "Add a card to your lineup",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        OptCard,
							Description: "Card ID",
							Required:    true,
						},
					},
				},
				{
					Name:        "remove",
					Description: "Remove the card at a lineup position",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        OptPosition,
							Description: "Position to remove",
							Required:    true,
							MinValue:    &minPosition,
							MaxValue:    lineup.MaxSize,
						},
					},
				},
				{
					Name:        "show",
					Description: "Show your lineup",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
				{
					Name:        "clear",
					Description: "Remove every card from your lineup",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
			},
		},
		{
			Name:        CmdAbilities,
			Description: "View available abilities",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        OptClass,
					Description: "Filter by class",
					Required:    false,
					Choices:     classChoices,
				},
			},
		},
	}
}
