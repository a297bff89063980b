package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"guildmirror/internal/dispatcher"
	"guildmirror/internal/replicator"
)

const backupTimeout = 5 * time.Minute

func (h *Handler) handleBackup(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID := interactionUserID(i)
	if userID == "" {
		return respondEphemeral(s, i, "❌ Could not identify you.")
	}

	token, ok := h.vault.Get(userID)
	if !ok {
		return respondEphemeral(s, i, "❌ Set your token first with `/token set`.")
	}

	guildID := i.ApplicationCommandData().Options[0].StringValue()

	// Extraction takes a while under rate-limit pacing; defer the reply.
	if err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), backupTimeout)
	defer cancel()

	client := dispatcher.NewClient(token, h.cfg.API.BaseURL, h.log)
	defer client.Close()

	snap, err := replicator.Extract(ctx, client, guildID, h.log)
	if err != nil {
		return editResponse(s, i, "❌ Backup failed: "+err.Error())
	}

	path, err := h.store.Save(snap)
	if err != nil {
		return editResponse(s, i, "❌ Could not save the backup: "+err.Error())
	}

	return editResponse(s, i, fmt.Sprintf(
		"✅ Backed up **%s** (%d channels, %d roles) to `%s`.",
		snap.Guild.Name, len(snap.Channels), len(snap.Roles), path))
}

func editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content: &content,
	})
	return err
}
