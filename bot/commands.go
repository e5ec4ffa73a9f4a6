package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// registerCommands registers all slash commands with Discord. When a guild
// id is configured the commands are registered there, which makes them
// available immediately instead of after global propagation.
func (b *Bot) registerCommands() error {
	minStake := float64(b.cfg.MinStake)

	commands := []*discordgo.ApplicationCommand{
		{
			Name:        "daily",
			Description: "Claim your daily check-in points",
		},
		{
			Name:        "gamble",
			Description: "Wager points on games of chance",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "flip",
					Description: "Flip a coin, double or nothing",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "side",
							Description: "The side you call",
							Required:    true,
							Choices: []*discordgo.ApplicationCommandOptionChoice{
								{Name: "Heads", Value: "heads"},
								{Name: "Tails", Value: "tails"},
							},
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "stake",
							Description: "Points to wager",
							Required:    true,
							MinValue:    &minStake,
							MaxValue:    float64(b.cfg.MaxStake),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "draw",
					Description: "Try the lucky draw",
				},
			},
		},
		{
			Name:        "profile",
			Description: "Show a player's points profile",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Player to look up (defaults to you)",
					Required:    false,
				},
			},
		},
		{
			Name:        "status",
			Description: "Show your remaining daily quotas",
		},
		{
			Name:        "leaderboard",
			Description: "Show the points leaderboard",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "scope",
					Description: "Which standings to show",
					Required:    false,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "All time", Value: "alltime"},
						{Name: "This month", Value: "monthly"},
					},
				},
			},
		},
		{
			Name:        "honoradmin",
			Description: "Administrator operations",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "setbalance",
					Description: "Set a player's balance",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Player to adjust",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "value",
							Description: "New balance in points",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "resetstreak",
					Description: "Reset a player's check-in streak",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Player whose streak to reset",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "wipe",
					Description: "Delete every account (asks for confirmation)",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "export",
					Description: "Export all accounts as a JSON backup",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "import",
					Description: "Import accounts from a JSON backup",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionAttachment,
							Name:        "file",
							Description: "Backup file produced by export",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "snapshot",
					Description: "Seed month-start snapshots from current balances",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "buttons",
					Description: "Post the check-in and lucky draw buttons here",
				},
			},
		},
	}

	for _, cmd := range commands {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.cfg.DiscordGuildID, cmd)
		if err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}

	return nil
}
