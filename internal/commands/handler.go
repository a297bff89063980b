package commands

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"guildmirror/internal/archive"
	"guildmirror/internal/bot"
	"guildmirror/internal/config"
	"guildmirror/internal/replicator"
)

// Handler routes slash-command interactions. It carries the token vault
// and run registry by reference; nothing here is package-level.
type Handler struct {
	session  *bot.Session
	registry *replicator.Registry
	vault    *TokenVault
	store    *archive.Store
	cfg      *config.Config
	log      *zap.Logger
}

func NewHandler(session *bot.Session, registry *replicator.Registry, store *archive.Store, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{
		session:  session,
		registry: registry,
		vault:    NewTokenVault(),
		store:    store,
		cfg:      cfg,
		log:      log,
	}
}

// Register wires the interaction handler and registers all commands.
func (h *Handler) Register() error {
	h.session.AddHandler(h.handleInteraction)

	if err := h.session.RegisterCommands(GetAllCommands()); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}

	h.log.Info("command handler initialized", zap.Int("commands", len(GetAllCommands())))
	return nil
}

func (h *Handler) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	data := i.ApplicationCommandData()

	var err error
	switch data.Name {
	case "token":
		if len(data.Options) > 0 {
			switch data.Options[0].Name {
			case "set":
				err = h.handleTokenSet(s, i)
			case "clear":
				err = h.handleTokenClear(s, i)
			}
		}
	case "copy":
		err = h.handleCopy(s, i)
	case "backup":
		err = h.handleBackup(s, i)
	case "restore":
		err = h.handleRestore(s, i)
	case "status":
		err = h.handleStatus(s, i)
	case "ping":
		err = handlePing(s, i)
	case "stats":
		err = handleStats(s, i)
	}

	if err != nil {
		h.log.Error("command failed",
			zap.String("command", data.Name),
			zap.Error(err))
	}
}

// interactionUserID resolves the invoking user in both guild and DM
// interactions.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// respondEphemeral answers an interaction with a message only the
// invoking user sees.
func respondEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	return s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
}
