package dispatcher

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"

	"guildmirror/internal/models"
)

// Client exposes the typed guild operations the replication engine
// needs on top of Transport. List operations return an error rather
// than silently collapsing failures into empty slices, so callers can
// tell "empty guild" from "fetch failed".
type Client struct {
	transport *Transport
}

func NewClient(token, baseURL string, log *zap.Logger) *Client {
	return &Client{
		transport: NewTransport(token, baseURL, log),
	}
}

// NewClientWithTransport is used by tests that stub the HTTP layer.
func NewClientWithTransport(t *Transport) *Client {
	return &Client{transport: t}
}

func (c *Client) Guild(ctx context.Context, guildID string) (*models.Guild, error) {
	return getOne[models.Guild](ctx, c, "GET", "/guilds/"+guildID)
}

func (c *Client) Channels(ctx context.Context, guildID string) ([]models.Channel, error) {
	return getList[models.Channel](ctx, c, "/guilds/"+guildID+"/channels")
}

func (c *Client) Roles(ctx context.Context, guildID string) ([]models.Role, error) {
	return getList[models.Role](ctx, c, "/guilds/"+guildID+"/roles")
}

func (c *Client) Emojis(ctx context.Context, guildID string) ([]models.Emoji, error) {
	return getList[models.Emoji](ctx, c, "/guilds/"+guildID+"/emojis")
}

func (c *Client) Stickers(ctx context.Context, guildID string) ([]models.Sticker, error) {
	return getList[models.Sticker](ctx, c, "/guilds/"+guildID+"/stickers")
}

func (c *Client) CreateRole(ctx context.Context, guildID string, role models.RoleCreate) (*models.Role, error) {
	return postOne[models.Role](ctx, c, "/guilds/"+guildID+"/roles", role)
}

func (c *Client) CreateChannel(ctx context.Context, guildID string, channel models.ChannelCreate) (*models.Channel, error) {
	return postOne[models.Channel](ctx, c, "/guilds/"+guildID+"/channels", channel)
}

func (c *Client) CreateEmoji(ctx context.Context, guildID string, emoji models.EmojiCreate) (*models.Emoji, error) {
	return postOne[models.Emoji](ctx, c, "/guilds/"+guildID+"/emojis", emoji)
}

func (c *Client) CreateSticker(ctx context.Context, guildID string, sticker models.StickerCreate) (*models.Sticker, error) {
	return postOne[models.Sticker](ctx, c, "/guilds/"+guildID+"/stickers", sticker)
}

func (c *Client) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := c.transport.Do(ctx, "DELETE", "/channels/"+channelID, nil)
	return err
}

func (c *Client) DeleteRole(ctx context.Context, guildID, roleID string) error {
	_, err := c.transport.Do(ctx, "DELETE", "/guilds/"+guildID+"/roles/"+roleID, nil)
	return err
}

func (c *Client) Close() {
	c.transport.Close()
}

func getOne[T any](ctx context.Context, c *Client, method, path string) (*T, error) {
	doc, err := c.transport.Do(ctx, method, path, nil)
	if err != nil {
		return nil, err
	}
	var out T
	if err := sonic.Unmarshal(doc, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &out, nil
}

func getList[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	doc, err := c.transport.Do(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	if len(doc) == 0 {
		return nil, nil
	}
	var out []T
	if err := sonic.Unmarshal(doc, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return out, nil
}

func postOne[T any](ctx context.Context, c *Client, path string, payload any) (*T, error) {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", path, err)
	}
	doc, err := c.transport.Do(ctx, "POST", path, body)
	if err != nil {
		return nil, err
	}
	var out T
	if err := sonic.Unmarshal(doc, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &out, nil
}
