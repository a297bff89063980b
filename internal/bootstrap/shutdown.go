package bootstrap

import (
	"go.uber.org/zap"
)

// Shutdown stops the front-ends and cancels unfinished runs. Target
// guilds are left exactly as far as their runs got; nothing is rolled
// back.
func (b *Bootstrap) Shutdown() {
	b.Log.Info("shutting down")

	b.Registry.CancelAll()

	if b.Web != nil {
		if err := b.Web.Shutdown(); err != nil {
			b.Log.Warn("web shutdown failed", zap.Error(err))
		}
	}

	if b.Bot != nil {
		if err := b.Bot.Close(); err != nil {
			b.Log.Warn("bot shutdown failed", zap.Error(err))
		}
	}

	_ = b.Log.Sync()
}
