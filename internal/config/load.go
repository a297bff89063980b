package config

import (
	"os"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Bot         BotConfig         `koanf:"bot"`
	API         APIConfig         `koanf:"api"`
	Web         WebConfig         `koanf:"web"`
	Backup      BackupConfig      `koanf:"backup"`
	Replication ReplicationConfig `koanf:"replication"`
	Log         LogConfig         `koanf:"log"`
}

type BotConfig struct {
	Token string `koanf:"token"`
}

type APIConfig struct {
	BaseURL string `koanf:"base_url"`
}

type WebConfig struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

type BackupConfig struct {
	Dir string `koanf:"dir"`
}

type ReplicationConfig struct {
	// Strict makes any single entity failure abort the run instead of
	// being logged and skipped.
	Strict bool `koanf:"strict"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// Load reads config.json when present, then lets environment variables
// override it (GUILDMIRROR_BOT_TOKEN and friends). A missing file is
// fine: defaults plus environment carry a usable configuration.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), json.Parser()); err != nil {
			// Only the file being absent is tolerated.
			if !isNotExist(err) {
				return nil, err
			}
		}
	}

	if err := k.Load(env.Provider("GUILDMIRROR_", ".", envKeyMapper), nil); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	if cfg.Bot.Token == "" {
		cfg.Bot.Token = os.Getenv("DISCORD_BOT_TOKEN")
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://discord.com/api/v10",
		},
		Web: WebConfig{
			Enabled: true,
			Addr:    ":5000",
		},
		Backup: BackupConfig{
			Dir: "./backups",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
