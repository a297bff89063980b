package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Session wraps the discordgo session for the command front-end. The
// bot only needs interaction traffic; it never reads guild events.
type Session struct {
	discord *discordgo.Session
	log     *zap.Logger
}

func New(token string, log *zap.Logger) (*Session, error) {
	dg, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create Discord session: %w", err)
	}

	dg.Identify.Intents = discordgo.IntentsGuilds

	return &Session{
		discord: dg,
		log:     log,
	}, nil
}

// Discord returns the underlying discordgo session.
func (s *Session) Discord() *discordgo.Session {
	return s.discord
}

// Connect opens the gateway connection.
func (s *Session) Connect() error {
	if err := s.discord.Open(); err != nil {
		return fmt.Errorf("open Discord connection: %w", err)
	}

	if s.discord.State.User != nil {
		s.log.Info("bot connected",
			zap.String("user", s.discord.State.User.Username),
			zap.String("id", s.discord.State.User.ID))
	}
	return nil
}

func (s *Session) Close() error {
	if s.discord != nil {
		return s.discord.Close()
	}
	return nil
}

// RegisterCommands registers the application commands globally.
func (s *Session) RegisterCommands(commands []*discordgo.ApplicationCommand) error {
	s.log.Info("registering slash commands", zap.Int("count", len(commands)))

	for _, cmd := range commands {
		if _, err := s.discord.ApplicationCommandCreate(s.discord.State.User.ID, "", cmd); err != nil {
			return fmt.Errorf("register command %s: %w", cmd.Name, err)
		}
		s.log.Info("command registered", zap.String("command", cmd.Name))
	}
	return nil
}

// AddHandler adds an event handler to the session.
func (s *Session) AddHandler(handler interface{}) {
	s.discord.AddHandler(handler)
}
