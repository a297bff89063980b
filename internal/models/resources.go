package models

// Discord channel types. Only text, voice and category matter for
// structural replication; everything else is carried through untouched.
const (
	ChannelTypeText     = 0
	ChannelTypeVoice    = 2
	ChannelTypeCategory = 4
)

// Permission overwrite targets.
const (
	OverwriteTypeRole   = 0
	OverwriteTypeMember = 1
)

// EveryoneRoleName is the default role every guild carries. It can never
// be created or deleted, only referenced.
const EveryoneRoleName = "@everyone"

type Guild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Permissions string `json:"permissions"`
	Color       int    `json:"color"`
	Hoist       bool   `json:"hoist"`
	Mentionable bool   `json:"mentionable"`
	Position    int    `json:"position"`
}

// Overwrite is a permission exception on a channel. ID points at a role
// or member of the guild the channel was captured from, so it is only
// meaningful relative to that guild.
type Overwrite struct {
	ID    string `json:"id"`
	Type  int    `json:"type"`
	Allow string `json:"allow"`
	Deny  string `json:"deny"`
}

type Channel struct {
	ID                   string      `json:"id"`
	Type                 int         `json:"type"`
	Name                 string      `json:"name"`
	Topic                string      `json:"topic,omitempty"`
	NSFW                 bool        `json:"nsfw,omitempty"`
	RateLimitPerUser     int         `json:"rate_limit_per_user,omitempty"`
	Position             int         `json:"position"`
	ParentID             string      `json:"parent_id,omitempty"`
	PermissionOverwrites []Overwrite `json:"permission_overwrites,omitempty"`
	Bitrate              int         `json:"bitrate,omitempty"`
	UserLimit            int         `json:"user_limit,omitempty"`
}

func (c *Channel) IsCategory() bool {
	return c.Type == ChannelTypeCategory
}

func (c *Channel) IsVoice() bool {
	return c.Type == ChannelTypeVoice
}

type Emoji struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Available bool   `json:"available"`
}

type Sticker struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Tags        string `json:"tags,omitempty"`
	Image       string `json:"image,omitempty"`
}

// Snapshot is a point-in-time capture of a guild's resource graph.
// It is never mutated once built.
type Snapshot struct {
	Guild    Guild     `json:"guild"`
	Channels []Channel `json:"channels"`
	Roles    []Role    `json:"roles"`
	Emojis   []Emoji   `json:"emojis"`
	Stickers []Sticker `json:"stickers"`
}
