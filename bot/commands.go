package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
)

func optMin(value float64) *float64 {
	return &value
}

// commandDefinitions returns every slash command the bot registers
func commandDefinitions() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "crash",
			Description: "Start a crash round others can join",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "bet",
					Description: "Your bet in coins",
					Required:    true,
					MinValue:    optMin(1),
				},
			},
		},
		{
			Name:        "blackjack",
			Description: "Play a hand of blackjack against the dealer",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "bet",
					Description: "Your bet in coins",
					Required:    true,
					MinValue:    optMin(1),
				},
			},
		},
		{
			Name:        "lottery",
			Description: "Pick three numbers and try your luck",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "bet",
					Description: "Your bet in coins",
					Required:    true,
					MinValue:    optMin(1),
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "first",
					Description: "First pick (1-10)",
					Required:    true,
					MinValue:    optMin(1),
					MaxValue:    10,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "second",
					Description: "Second pick (1-10)",
					Required:    true,
					MinValue:    optMin(1),
					MaxValue:    10,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "third",
					Description: "Third pick (1-10)",
					Required:    true,
					MinValue:    optMin(1),
					MaxValue:    10,
				},
			},
		},
		{
			Name:        "minesweeper",
			Description: "Reveal gems and cash out before hitting a mine",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "bet",
					Description: "Your bet in coins",
					Required:    true,
					MinValue:    optMin(1),
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "mines",
					Description: "Number of mines (1-8, default 3)",
					Required:    false,
					MinValue:    optMin(1),
					MaxValue:    8,
				},
			},
		},
		{
			Name:        "balance",
			Description: "Check a coin balance",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to check (defaults to you)",
					Required:    false,
				},
			},
		},
		{
			Name:        "daily",
			Description: "Claim your daily coin bonus",
		},
		{
			Name:        "pay",
			Description: "Send coins to another member",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Who to pay",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "amount",
					Description: "Amount in coins",
					Required:    true,
					MinValue:    optMin(1),
				},
			},
		},
		{
			Name:        "coin-leaderboard",
			Description: "Show the richest members",
		},
		{
			Name:        "coins-admin",
			Description: "Grant or remove coins",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "give",
					Description: "Give coins to a member",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Recipient",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "Amount in coins",
							Required:    true,
							MinValue:    optMin(1),
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "take",
					Description: "Take coins from a member",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "Target",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionInteger,
							Name:        "amount",
							Description: "Amount in coins",
							Required:    true,
							MinValue:    optMin(1),
						},
					},
				},
			},
		},
		{
			Name:        "rank",
			Description: "Show XP and level",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to check (defaults to you)",
					Required:    false,
				},
			},
		},
		{
			Name:        "xp-leaderboard",
			Description: "Show the most active members",
		},
		{
			Name:        "ticket-panel",
			Description: "Post the support ticket panel",
		},
		{
			Name:        "reaction-roles",
			Description: "Manage reaction role bindings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "bind",
					Description: "Bind an emoji on a message to a role",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "message_id",
							Description: "Message to bind on",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "emoji",
							Description: "Emoji members will react with",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role to grant",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "unbind",
					Description: "Remove all bindings from a message",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "message_id",
							Description: "Message to clear",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "List current bindings",
				},
			},
		},
		{
			Name:        "scrim",
			Description: "Organize a scrim",
		},
		{
			Name:        "bot-setup",
			Description: "Configure the bot for this server",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "channel",
					Description: "Bind a channel key",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "key",
							Description: "Channel key, e.g. log_channel",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionChannel,
							Name:        "channel",
							Description: "Channel to bind",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "role",
					Description: "Bind a role key",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "key",
							Description: "Role key, e.g. staff_role",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionRole,
							Name:        "role",
							Description: "Role to bind",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "feature",
					Description: "Toggle a feature",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "name",
							Description: "Feature name, e.g. casino_games",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionBoolean,
							Name:        "enabled",
							Description: "Whether the feature is on",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "setting",
					Description: "Set a tunable value",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "key",
							Description: "Setting key, e.g. crash_max_bet",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "value",
							Description: "New value",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "show",
					Description: "Show the current configuration",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "export",
					Description: "Export the configuration as JSON",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "import",
					Description: "Import a configuration snapshot",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        "snapshot",
							Description: "JSON snapshot to apply",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        "bot-status",
			Description: "Show bot health and host stats",
		},
		{
			Name:        "warn",
			Description: "Warn a member",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to warn",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "reason",
					Description: "Why they're being warned",
					Required:    true,
				},
			},
		},
		{
			Name:        "warnings",
			Description: "List a member's warnings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Member to check",
					Required:    true,
				},
			},
		},
		{
			Name:        "clear-messages",
			Description: "Bulk delete recent messages in this channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "count",
					Description: "How many messages to delete (1-100)",
					Required:    true,
					MinValue:    optMin(1),
					MaxValue:    100,
				},
			},
		},
	}
}

func (b *Bot) registerCommands() error {
	for _, cmd := range commandDefinitions() {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", cmd); err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}
	return nil
}
