package config

import (
	"errors"
	"io/fs"
)

// Environment keys recognized as overrides.
var envKeys = map[string]string{
	"GUILDMIRROR_BOT_TOKEN":          "bot.token",
	"GUILDMIRROR_API_BASE_URL":       "api.base_url",
	"GUILDMIRROR_WEB_ENABLED":        "web.enabled",
	"GUILDMIRROR_WEB_ADDR":           "web.addr",
	"GUILDMIRROR_BACKUP_DIR":         "backup.dir",
	"GUILDMIRROR_REPLICATION_STRICT": "replication.strict",
	"GUILDMIRROR_LOG_LEVEL":          "log.level",
}

// envKeyMapper maps a recognized environment variable onto its config
// path; anything else is skipped.
func envKeyMapper(key string) string {
	return envKeys[key]
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
