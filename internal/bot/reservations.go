package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"concierge/internal/metrics"
	"concierge/internal/models"
	"concierge/internal/pricing"
)

func (b *Bot) showMyReservations(ctx context.Context, chatID, userID int64) {
	mgr := b.session(ctx, userID)
	if !mgr.Authenticated() {
		b.sendText(ctx, chatID, "Please /login to see your reservations.")
		return
	}

	client := b.sessions.Client(userID)
	reservations, err := client.MyReservations(ctx)
	if err != nil {
		metrics.IncAPIRequest("reservations_list", "error")
		b.sendText(ctx, chatID, b.userMessage(ctx, err))
		return
	}
	metrics.IncAPIRequest("reservations_list", "ok")

	if len(reservations) == 0 {
		b.sendText(ctx, chatID, "You have no reservations yet. Browse /rooms to book one.")
		return
	}

	for i := range reservations {
		res := &reservations[i]

		msg := tgbotapi.NewMessage(chatID, formatReservation(res))
		msg.ParseMode = "Markdown"

		var buttons []tgbotapi.InlineKeyboardButton
		if res.CanConfirm() {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
				"✅ Confirm", fmt.Sprintf("resconfirm:%d", res.ID)))
		}
		if res.CanCancel() {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(
				"❌ Cancel", fmt.Sprintf("rescancel:%d", res.ID)))
		}
		if len(buttons) > 0 {
			msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons)
		}
		b.send(ctx, msg)
	}
}

func formatReservation(res *models.Reservation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s *Reservation #%d*\n", statusEmoji(res.Status), res.ID)
	fmt.Fprintf(&sb, "🏨 Room %d", res.RoomNumber)
	if res.RoomType != "" {
		fmt.Fprintf(&sb, " (%s)", res.RoomType)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "📅 %s → %s\n", res.CheckInDate, res.CheckOutDate)
	fmt.Fprintf(&sb, "📋 Status: %s\n", res.Status)
	if total, err := pricing.Total(*res); err == nil {
		fmt.Fprintf(&sb, "💵 Total: $%.2f", total)
	}
	return sb.String()
}

func statusEmoji(status models.ReservationStatus) string {
	switch status {
	case models.StatusConfirmed:
		return "✅"
	case models.StatusCancelled:
		return "🚫"
	default:
		return "⏳"
	}
}

func (b *Bot) confirmReservation(ctx context.Context, chatID, userID int64, id int64) {
	client := b.sessions.Client(userID)
	res, err := client.ConfirmReservation(ctx, id)
	if err != nil {
		metrics.IncAPIRequest("reservation_confirm", "error")
		b.sendText(ctx, chatID, b.userMessage(ctx, err))
		return
	}
	metrics.IncAPIRequest("reservation_confirm", "ok")
	metrics.IncReservationAction("confirmed")
	b.sendText(ctx, chatID, fmt.Sprintf("✅ Reservation #%d is confirmed. Enjoy your stay!", res.ID))
}

func (b *Bot) cancelReservation(ctx context.Context, chatID, userID int64, id int64) {
	client := b.sessions.Client(userID)
	res, err := client.CancelReservation(ctx, id)
	if err != nil {
		metrics.IncAPIRequest("reservation_cancel", "error")
		b.sendText(ctx, chatID, b.userMessage(ctx, err))
		return
	}
	metrics.IncAPIRequest("reservation_cancel", "ok")
	metrics.IncReservationAction("cancelled")
	b.sendText(ctx, chatID, fmt.Sprintf("🚫 Reservation #%d has been cancelled.", res.ID))
}
