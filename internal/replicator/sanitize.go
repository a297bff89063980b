package replicator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"guildmirror/internal/models"
)

// Sanitize deletes the target guild's existing structure before the
// rebuild: non-category channels first, then categories (a category must
// outlive its children, some deployments reject deleting a non-empty
// one), then every role but @everyone. Individual delete failures are
// logged and the sweep continues; only a failed listing aborts.
func Sanitize(ctx context.Context, api GuildAPI, guildID string, log *zap.Logger) error {
	channels, err := api.Channels(ctx, guildID)
	if err != nil {
		return fmt.Errorf("list target channels: %w", err)
	}

	for _, ch := range channels {
		if ch.IsCategory() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := api.DeleteChannel(ctx, ch.ID); err != nil {
			log.Warn("channel delete failed", zap.String("channel", ch.ID), zap.String("name", ch.Name), zap.Error(err))
		}
	}
	for _, ch := range channels {
		if !ch.IsCategory() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := api.DeleteChannel(ctx, ch.ID); err != nil {
			log.Warn("category delete failed", zap.String("channel", ch.ID), zap.String("name", ch.Name), zap.Error(err))
		}
	}

	roles, err := api.Roles(ctx, guildID)
	if err != nil {
		return fmt.Errorf("list target roles: %w", err)
	}
	for _, role := range roles {
		if role.Name == models.EveryoneRoleName {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := api.DeleteRole(ctx, guildID, role.ID); err != nil {
			log.Warn("role delete failed", zap.String("role", role.ID), zap.String("name", role.Name), zap.Error(err))
		}
	}

	log.Info("target sanitized", zap.String("guild", guildID),
		zap.Int("channels", len(channels)), zap.Int("roles", len(roles)))
	return nil
}
