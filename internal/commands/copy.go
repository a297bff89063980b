package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"guildmirror/internal/dispatcher"
	"guildmirror/internal/replicator"
)

func (h *Handler) handleCopy(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID := interactionUserID(i)
	if userID == "" {
		return respondEphemeral(s, i, "❌ Could not identify you.")
	}

	token, ok := h.vault.Get(userID)
	if !ok {
		return respondEphemeral(s, i, "❌ Set your token first with `/token set`.")
	}

	data := i.ApplicationCommandData()
	sourceID := data.Options[0].StringValue()
	targetID := data.Options[1].StringValue()

	if sourceID == targetID {
		return respondEphemeral(s, i, "❌ Source and target guild ids must differ.")
	}

	client := dispatcher.NewClient(token, h.cfg.API.BaseURL, h.log)
	_, err := h.registry.Start(context.Background(), userID, client, sourceID, targetID,
		replicator.Options{Strict: h.cfg.Replication.Strict})
	if err != nil {
		client.Close()
		if errors.Is(err, replicator.ErrRunInProgress) {
			return respondEphemeral(s, i, "⚠️ You already have a copy in progress. Use `/status` to follow it.")
		}
		return respondEphemeral(s, i, "❌ Could not start the copy: "+err.Error())
	}

	return respondEphemeral(s, i, fmt.Sprintf(
		"🔄 Copying guild `%s` onto `%s`. This can take several minutes; `/status` shows progress.",
		sourceID, targetID))
}

func (h *Handler) handleStatus(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID := interactionUserID(i)
	if userID == "" {
		return respondEphemeral(s, i, "❌ Could not identify you.")
	}

	run, ok := h.registry.Get(userID)
	if !ok {
		return respondEphemeral(s, i, "❌ You have no current or recent copy run.")
	}

	st := run.Status()
	if !st.Done {
		return respondEphemeral(s, i, fmt.Sprintf("🔄 Copy in progress, stage: `%s`.", st.Stage))
	}

	switch st.Outcome {
	case replicator.OutcomeSuccess:
		failed := 0
		for _, rep := range run.Report() {
			if rep.Outcome == replicator.EntityFailed {
				failed++
			}
		}
		msg := "✅ " + st.Message
		if failed > 0 {
			msg += fmt.Sprintf(" (%d entities failed, see logs)", failed)
		}
		return respondEphemeral(s, i, msg)
	case replicator.OutcomeCancelled:
		return respondEphemeral(s, i, "⚠️ Your last copy run was cancelled.")
	default:
		return respondEphemeral(s, i, "❌ Your last copy run failed: "+st.Message)
	}
}
