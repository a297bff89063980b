package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"guildmirror/internal/archive"
	"guildmirror/internal/dispatcher"
	"guildmirror/internal/replicator"
)

func (h *Handler) handleRestore(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID := interactionUserID(i)
	if userID == "" {
		return respondEphemeral(s, i, "❌ Could not identify you.")
	}

	token, ok := h.vault.Get(userID)
	if !ok {
		return respondEphemeral(s, i, "❌ Set your token first with `/token set`.")
	}

	data := i.ApplicationCommandData()
	fileName := data.Options[0].StringValue()
	targetID := data.Options[1].StringValue()

	snap, err := h.store.LoadNamed(fileName)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			return respondEphemeral(s, i, "❌ No backup file with that name.")
		}
		return respondEphemeral(s, i, "❌ Could not read the backup: "+err.Error())
	}

	client := dispatcher.NewClient(token, h.cfg.API.BaseURL, h.log)
	_, err = h.registry.Start(context.Background(), userID, client, snap.Guild.ID, targetID,
		replicator.Options{Strict: h.cfg.Replication.Strict, Snapshot: snap})
	if err != nil {
		client.Close()
		if errors.Is(err, replicator.ErrRunInProgress) {
			return respondEphemeral(s, i, "⚠️ You already have a run in progress. Use `/status` to follow it.")
		}
		return respondEphemeral(s, i, "❌ Could not start the restore: "+err.Error())
	}

	return respondEphemeral(s, i, fmt.Sprintf(
		"🔄 Restoring backup of **%s** onto `%s`. `/status` shows progress.",
		snap.Guild.Name, targetID))
}
