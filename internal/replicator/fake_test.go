package replicator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"guildmirror/internal/models"
)

var errFakeNotFound = errors.New("fake: not found")

// fakeAPI is an in-memory GuildAPI. Creates and deletes mutate its
// state so teardown/rebuild flows can be asserted end to end.
type fakeAPI struct {
	mu       sync.Mutex
	guilds   map[string]models.Guild
	channels map[string][]models.Channel
	roles    map[string][]models.Role
	emojis   map[string][]models.Emoji
	stickers map[string][]models.Sticker

	nextID int

	createdRoles      []models.RoleCreate
	createdChannels   []models.ChannelCreate
	createdChannelIDs []string
	createdEmojis     []models.EmojiCreate
	createdStickers   []models.StickerCreate
	deletedChannels   []string
	deletedRoles      []string
	calls             []string

	failRoleCreate  map[string]error // by role name
	failEmojiCreate map[string]error // by emoji name
	failChannelList error
	blockGuild      chan struct{} // when set, Guild blocks until closed or ctx ends
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		guilds:          make(map[string]models.Guild),
		channels:        make(map[string][]models.Channel),
		roles:           make(map[string][]models.Role),
		emojis:          make(map[string][]models.Emoji),
		stickers:        make(map[string][]models.Sticker),
		failRoleCreate:  make(map[string]error),
		failEmojiCreate: make(map[string]error),
	}
}

func (f *fakeAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeAPI) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeAPI) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s%d", prefix, f.nextID)
}

func (f *fakeAPI) Guild(ctx context.Context, guildID string) (*models.Guild, error) {
	if f.blockGuild != nil {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-f.blockGuild:
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("guild:" + guildID)
	g, ok := f.guilds[guildID]
	if !ok {
		return nil, errFakeNotFound
	}
	out := g
	return &out, nil
}

func (f *fakeAPI) Channels(ctx context.Context, guildID string) ([]models.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("channels:" + guildID)
	if f.failChannelList != nil {
		return nil, f.failChannelList
	}
	return append([]models.Channel(nil), f.channels[guildID]...), nil
}

func (f *fakeAPI) Roles(ctx context.Context, guildID string) ([]models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("roles:" + guildID)
	return append([]models.Role(nil), f.roles[guildID]...), nil
}

func (f *fakeAPI) Emojis(ctx context.Context, guildID string) ([]models.Emoji, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("emojis:" + guildID)
	return append([]models.Emoji(nil), f.emojis[guildID]...), nil
}

func (f *fakeAPI) Stickers(ctx context.Context, guildID string) ([]models.Sticker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("stickers:" + guildID)
	return append([]models.Sticker(nil), f.stickers[guildID]...), nil
}

func (f *fakeAPI) CreateRole(ctx context.Context, guildID string, role models.RoleCreate) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create-role:" + role.Name)
	if err := f.failRoleCreate[role.Name]; err != nil {
		return nil, err
	}
	created := models.Role{
		ID:          f.newID("role"),
		Name:        role.Name,
		Permissions: role.Permissions,
		Color:       role.Color,
		Hoist:       role.Hoist,
		Mentionable: role.Mentionable,
		Position:    len(f.roles[guildID]),
	}
	f.roles[guildID] = append(f.roles[guildID], created)
	f.createdRoles = append(f.createdRoles, role)
	return &created, nil
}

func (f *fakeAPI) CreateChannel(ctx context.Context, guildID string, channel models.ChannelCreate) (*models.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create-channel:" + channel.Name)
	created := models.Channel{
		ID:                   f.newID("chan"),
		Type:                 channel.Type,
		Name:                 channel.Name,
		Topic:                channel.Topic,
		NSFW:                 channel.NSFW,
		RateLimitPerUser:     channel.RateLimitPerUser,
		Position:             channel.Position,
		ParentID:             channel.ParentID,
		PermissionOverwrites: channel.PermissionOverwrites,
		Bitrate:              channel.Bitrate,
		UserLimit:            channel.UserLimit,
	}
	f.channels[guildID] = append(f.channels[guildID], created)
	f.createdChannels = append(f.createdChannels, channel)
	f.createdChannelIDs = append(f.createdChannelIDs, created.ID)
	return &created, nil
}

func (f *fakeAPI) CreateEmoji(ctx context.Context, guildID string, emoji models.EmojiCreate) (*models.Emoji, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create-emoji:" + emoji.Name)
	if err := f.failEmojiCreate[emoji.Name]; err != nil {
		return nil, err
	}
	created := models.Emoji{ID: f.newID("emoji"), Name: emoji.Name, Available: true}
	f.emojis[guildID] = append(f.emojis[guildID], created)
	f.createdEmojis = append(f.createdEmojis, emoji)
	return &created, nil
}

func (f *fakeAPI) CreateSticker(ctx context.Context, guildID string, sticker models.StickerCreate) (*models.Sticker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("create-sticker:" + sticker.Name)
	created := models.Sticker{ID: f.newID("sticker"), Name: sticker.Name}
	f.stickers[guildID] = append(f.stickers[guildID], created)
	f.createdStickers = append(f.createdStickers, sticker)
	return &created, nil
}

func (f *fakeAPI) DeleteChannel(ctx context.Context, channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete-channel:" + channelID)
	f.deletedChannels = append(f.deletedChannels, channelID)
	for guildID, chans := range f.channels {
		for idx, ch := range chans {
			if ch.ID == channelID {
				f.channels[guildID] = append(chans[:idx:idx], chans[idx+1:]...)
				return nil
			}
		}
	}
	return errFakeNotFound
}

func (f *fakeAPI) DeleteRole(ctx context.Context, guildID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("delete-role:" + roleID)
	f.deletedRoles = append(f.deletedRoles, roleID)
	roles := f.roles[guildID]
	for idx, role := range roles {
		if role.ID == roleID {
			f.roles[guildID] = append(roles[:idx:idx], roles[idx+1:]...)
			return nil
		}
	}
	return errFakeNotFound
}

func (f *fakeAPI) Close() {}
