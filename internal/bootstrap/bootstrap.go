package bootstrap

import (
	"fmt"

	"go.uber.org/zap"

	"guildmirror/internal/archive"
	"guildmirror/internal/bot"
	"guildmirror/internal/commands"
	"guildmirror/internal/config"
	"guildmirror/internal/logging"
	"guildmirror/internal/replicator"
	"guildmirror/internal/web"
)

// Bootstrap assembles the process: config, logger, archive store, run
// registry, and the two optional front-ends (web, bot).
type Bootstrap struct {
	Config   *config.Config
	Log      *zap.Logger
	Store    *archive.Store
	Registry *replicator.Registry
	Web      *web.Server
	Bot      *bot.Session
}

func New(configPath string) (*Bootstrap, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load failed: %w", err)
	}

	log := logging.New(cfg.Log.Level)

	store, err := archive.NewStore(cfg.Backup.Dir, log)
	if err != nil {
		return nil, fmt.Errorf("archive init failed: %w", err)
	}

	b := &Bootstrap{
		Config:   cfg,
		Log:      log,
		Store:    store,
		Registry: replicator.NewRegistry(log),
	}

	if cfg.Web.Enabled {
		b.Web = web.NewServer(cfg, b.Registry, store, log)
	}

	if cfg.Bot.Token != "" {
		session, err := bot.New(cfg.Bot.Token, log)
		if err != nil {
			return nil, fmt.Errorf("bot init failed: %w", err)
		}
		b.Bot = session
	}

	return b, nil
}

// Start brings the configured front-ends up. The web listener runs in
// its own goroutine; startup errors surface through errCh.
func (b *Bootstrap) Start(errCh chan<- error) error {
	if b.Bot != nil {
		if err := b.Bot.Connect(); err != nil {
			return fmt.Errorf("bot connect failed: %w", err)
		}

		handler := commands.NewHandler(b.Bot, b.Registry, b.Store, b.Config, b.Log)
		if err := handler.Register(); err != nil {
			return fmt.Errorf("command registration failed: %w", err)
		}
	}

	if b.Web != nil {
		go func() {
			if err := b.Web.Listen(b.Config.Web.Addr); err != nil {
				errCh <- fmt.Errorf("web server failed: %w", err)
			}
		}()
		b.Log.Info("web server listening", zap.String("addr", b.Config.Web.Addr))
	}

	if b.Bot == nil && b.Web == nil {
		return fmt.Errorf("nothing to run: web disabled and no bot token configured")
	}

	return nil
}
