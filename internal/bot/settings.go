package bot

import (
	"context"

	"github.com/rs/zerolog"
)

// toggleNotifications flips the booking-hint preference for a chat user.
func (b *Bot) toggleNotifications(ctx context.Context, chatID, userID int64) {
	settings, err := b.db.GetSettings(ctx, userID)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("load settings failed")
		b.sendText(ctx, chatID, "Could not load your settings. Please try again.")
		return
	}

	enabled := !settings.NotificationsEnabled
	if err := b.db.UpsertSettings(ctx, userID, enabled); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Int64("user_id", userID).Msg("save settings failed")
		b.sendText(ctx, chatID, "Could not save your settings. Please try again.")
		return
	}

	if enabled {
		b.sendText(ctx, chatID, "🔔 Booking reminders are on.")
	} else {
		b.sendText(ctx, chatID, "🔕 Booking reminders are off.")
	}
}

// notificationsEnabled reads the hint preference, defaulting to on.
func (b *Bot) notificationsEnabled(ctx context.Context, userID int64) bool {
	settings, err := b.db.GetSettings(ctx, userID)
	if err != nil {
		return true
	}
	return settings.NotificationsEnabled
}
