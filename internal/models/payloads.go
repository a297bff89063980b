package models

// Create payloads carry only the fields Discord accepts at creation time.
// Role position in particular is not transferable: the API assigns it by
// creation order.

type RoleCreate struct {
	Name        string `json:"name"`
	Permissions string `json:"permissions"`
	Color       int    `json:"color"`
	Hoist       bool   `json:"hoist"`
	Mentionable bool   `json:"mentionable"`
}

type ChannelCreate struct {
	Name                 string      `json:"name"`
	Type                 int         `json:"type"`
	Topic                string      `json:"topic,omitempty"`
	NSFW                 bool        `json:"nsfw,omitempty"`
	RateLimitPerUser     int         `json:"rate_limit_per_user,omitempty"`
	Position             int         `json:"position"`
	ParentID             string      `json:"parent_id,omitempty"`
	PermissionOverwrites []Overwrite `json:"permission_overwrites"`
	Bitrate              int         `json:"bitrate,omitempty"`
	UserLimit            int         `json:"user_limit,omitempty"`
}

type EmojiCreate struct {
	Name  string   `json:"name"`
	Image string   `json:"image"`
	Roles []string `json:"roles"`
}

// StickerCreate mirrors the upload shape the tool has always used: the
// captured image payload travels in the "file" field of a JSON body.
type StickerCreate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Tags        string `json:"tags"`
	File        string `json:"file"`
}
