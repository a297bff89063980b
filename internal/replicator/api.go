package replicator

import (
	"context"

	"guildmirror/internal/models"
)

// GuildAPI is the slice of the dispatcher client the replication engine
// consumes. Tests substitute an in-memory fake.
type GuildAPI interface {
	Guild(ctx context.Context, guildID string) (*models.Guild, error)
	Channels(ctx context.Context, guildID string) ([]models.Channel, error)
	Roles(ctx context.Context, guildID string) ([]models.Role, error)
	Emojis(ctx context.Context, guildID string) ([]models.Emoji, error)
	Stickers(ctx context.Context, guildID string) ([]models.Sticker, error)

	CreateRole(ctx context.Context, guildID string, role models.RoleCreate) (*models.Role, error)
	CreateChannel(ctx context.Context, guildID string, channel models.ChannelCreate) (*models.Channel, error)
	CreateEmoji(ctx context.Context, guildID string, emoji models.EmojiCreate) (*models.Emoji, error)
	CreateSticker(ctx context.Context, guildID string, sticker models.StickerCreate) (*models.Sticker, error)

	DeleteChannel(ctx context.Context, channelID string) error
	DeleteRole(ctx context.Context, guildID, roleID string) error

	Close()
}
