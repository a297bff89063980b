package commands

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// TokenVault keeps each user's personal token in memory for the
// lifetime of the process. Tokens are never logged and never persisted.
type TokenVault struct {
	mu     sync.RWMutex
	tokens map[string]string
}

func NewTokenVault() *TokenVault {
	return &TokenVault{
		tokens: make(map[string]string),
	}
}

func (v *TokenVault) Set(userID, token string) {
	v.mu.Lock()
	v.tokens[userID] = token
	v.mu.Unlock()
}

func (v *TokenVault) Get(userID string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	token, ok := v.tokens[userID]
	return token, ok
}

func (v *TokenVault) Clear(userID string) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.tokens[userID]; !ok {
		return false
	}
	delete(v.tokens, userID)
	return true
}

func (h *Handler) handleTokenSet(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID := interactionUserID(i)
	if userID == "" {
		return respondEphemeral(s, i, "❌ Could not identify you.")
	}

	opts := i.ApplicationCommandData().Options[0].Options
	if len(opts) == 0 {
		return respondEphemeral(s, i, "❌ A token value is required.")
	}

	h.vault.Set(userID, opts[0].StringValue())
	return respondEphemeral(s, i, "✅ Token stored. You can now use `/copy` and `/backup`.")
}

func (h *Handler) handleTokenClear(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	userID := interactionUserID(i)
	if userID == "" {
		return respondEphemeral(s, i, "❌ Could not identify you.")
	}

	if h.vault.Clear(userID) {
		return respondEphemeral(s, i, "✅ Your token has been forgotten.")
	}
	return respondEphemeral(s, i, "❌ No token was stored for you.")
}
