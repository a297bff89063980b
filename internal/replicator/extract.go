package replicator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"guildmirror/internal/models"
)

// Extract captures the full resource graph of a guild, one round trip
// per resource kind. Calls stay sequential: every call shares the run's
// single rate-limit budget, so fanning out would only trade waiting for
// retrying. The guild lookup is the only fatal fetch; missing
// sub-resources degrade to empty slices.
func Extract(ctx context.Context, api GuildAPI, guildID string, log *zap.Logger) (*models.Snapshot, error) {
	guild, err := api.Guild(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("fetch guild %s: %w", guildID, err)
	}

	snap := &models.Snapshot{Guild: *guild}

	if snap.Channels, err = api.Channels(ctx, guildID); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("channel listing failed, continuing with none", zap.String("guild", guildID), zap.Error(err))
		snap.Channels = nil
	}
	if snap.Roles, err = api.Roles(ctx, guildID); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("role listing failed, continuing with none", zap.String("guild", guildID), zap.Error(err))
		snap.Roles = nil
	}
	if snap.Emojis, err = api.Emojis(ctx, guildID); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("emoji listing failed, continuing with none", zap.String("guild", guildID), zap.Error(err))
		snap.Emojis = nil
	}
	if snap.Stickers, err = api.Stickers(ctx, guildID); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn("sticker listing failed, continuing with none", zap.String("guild", guildID), zap.Error(err))
		snap.Stickers = nil
	}

	log.Info("snapshot captured",
		zap.String("guild", guildID),
		zap.String("name", guild.Name),
		zap.Int("channels", len(snap.Channels)),
		zap.Int("roles", len(snap.Roles)),
		zap.Int("emojis", len(snap.Emojis)),
		zap.Int("stickers", len(snap.Stickers)))

	return snap, nil
}
