package commands

import "github.com/bwmarrin/discordgo"

// GetAllCommands returns every application command the bot registers.
func GetAllCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "token",
			Description: "Manage the personal Discord token used for copying",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "set",
					Description: "Store your token (the response stays private)",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Options: []*discordgo.ApplicationCommandOption{
						{
							Name:        "value",
							Description: "The token to store",
							Type:        discordgo.ApplicationCommandOptionString,
							Required:    true,
						},
					},
				},
				{
					Name:        "clear",
					Description: "Forget your stored token",
					Type:        discordgo.ApplicationCommandOptionSubCommand,
				},
			},
		},
		{
			Name:        "copy",
			Description: "Copy a guild's structure onto another guild",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "source",
					Description: "ID of the guild to copy from",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
				{
					Name:        "target",
					Description: "ID of the guild to copy onto (its structure is destroyed first)",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
			},
		},
		{
			Name:        "backup",
			Description: "Save a guild's structure to a backup file",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "guild",
					Description: "ID of the guild to back up",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
			},
		},
		{
			Name:        "restore",
			Description: "Rebuild a guild from a saved backup file",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        "file",
					Description: "Name of the backup file",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
				{
					Name:        "target",
					Description: "ID of the guild to rebuild (its structure is destroyed first)",
					Type:        discordgo.ApplicationCommandOptionString,
					Required:    true,
				},
			},
		},
		{
			Name:        "status",
			Description: "Check your current or most recent copy run",
		},
		{
			Name:        "ping",
			Description: "Measure bot and API latency",
		},
		{
			Name:        "stats",
			Description: "Show host and runtime statistics",
		},
	}
}
