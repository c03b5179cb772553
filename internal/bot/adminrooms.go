package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"concierge/internal/hotelapi"
	"concierge/internal/metrics"
	"concierge/internal/models"
)

// showRoomAdmin lists the inventory with per-room edit and delete
// buttons plus a create entry.
func (b *Bot) showRoomAdmin(ctx context.Context, chatID, userID int64) {
	if !b.isAdmin(ctx, userID) {
		b.sendText(ctx, chatID, "Room management is for administrators only.")
		return
	}

	client := b.sessions.Client(userID)
	rooms, err := client.SearchRooms(ctx, hotelapi.RoomQuery{})
	if err != nil {
		metrics.IncAPIRequest("rooms_search", "error")
		b.sendText(ctx, chatID, b.userMessage(ctx, err))
		return
	}
	metrics.IncAPIRequest("rooms_search", "ok")

	var text strings.Builder
	text.WriteString("🛠 *Room management*\n\n")
	if len(rooms) == 0 {
		text.WriteString("No rooms yet.\n")
	}

	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, room := range rooms {
		fmt.Fprintf(&text, "*%d* — %s, sleeps %d, $%.2f/night\n",
			room.RoomNumber, room.Type, room.Capacity, room.PricePerNight)
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("✏️ %d", room.RoomNumber), fmt.Sprintf("roomedit:%d", room.ID)),
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("🗑 %d", room.RoomNumber), fmt.Sprintf("roomdel:%d", room.ID)),
		})
	}
	keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardButtonData("➕ Add room", "roomadd"),
	})

	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	b.send(ctx, msg)
}

// startRoomCreate opens the create dialog.
func (b *Bot) startRoomCreate(ctx context.Context, chatID, userID int64) {
	if !b.isAdmin(ctx, userID) {
		b.sendText(ctx, chatID, "Room management is for administrators only.")
		return
	}
	st := b.state.get(userID)
	st.clearDialog()
	st.Step = stepRoomNumber
	b.sendText(ctx, chatID, "New room. What number?")
}

// startRoomEdit opens the price dialog for an existing room.
func (b *Bot) startRoomEdit(ctx context.Context, chatID, userID int64, roomID int64) {
	if !b.isAdmin(ctx, userID) {
		b.sendText(ctx, chatID, "Room management is for administrators only.")
		return
	}
	st := b.state.get(userID)
	st.clearDialog()
	st.Step = stepRoomEditPrice
	st.EditRoomID = roomID
	b.sendText(ctx, chatID, "New price per night (e.g. 120.50):")
}

func (b *Bot) handleRoomAdminInput(ctx context.Context, chatID, userID int64, st *userState, text string) {
	switch st.Step {
	case stepRoomNumber:
		n, err := strconv.Atoi(text)
		if err != nil || n <= 0 {
			b.sendText(ctx, chatID, "The room number must be a positive integer:")
			return
		}
		st.RoomDraft.RoomNumber = n
		st.Step = stepRoomType
		b.sendText(ctx, chatID, "Type? (SINGLE, DOUBLE, SUITE or DELUXE):")

	case stepRoomType:
		t := models.RoomType(strings.ToUpper(text))
		if !t.Valid() {
			b.sendText(ctx, chatID, "Pick one of SINGLE, DOUBLE, SUITE or DELUXE:")
			return
		}
		st.RoomDraft.Type = t
		st.Step = stepRoomCapacity
		b.sendText(ctx, chatID, "How many guests does it sleep?")

	case stepRoomCapacity:
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 {
			b.sendText(ctx, chatID, "Capacity must be at least 1:")
			return
		}
		st.RoomDraft.Capacity = n
		st.Step = stepRoomPrice
		b.sendText(ctx, chatID, "Price per night? (e.g. 120.50):")

	case stepRoomPrice:
		p, err := strconv.ParseFloat(text, 64)
		if err != nil || p < 0 {
			b.sendText(ctx, chatID, "The price must be a non-negative number:")
			return
		}
		st.RoomDraft.PricePerNight = p
		st.Step = stepRoomDescription
		b.sendText(ctx, chatID, "Description? (or '-' for none):")

	case stepRoomDescription:
		if text != "-" {
			st.RoomDraft.Description = text
		}
		st.Step = stepRoomAmenities
		b.sendText(ctx, chatID, "Amenities, comma separated? (or '-' for none):")

	case stepRoomAmenities:
		if text != "-" {
			for _, a := range strings.Split(text, ",") {
				if a = strings.TrimSpace(a); a != "" {
					st.RoomDraft.Amenities = append(st.RoomDraft.Amenities, a)
				}
			}
		}
		b.submitRoomCreate(ctx, chatID, userID, st)

	case stepRoomEditPrice:
		p, err := strconv.ParseFloat(text, 64)
		if err != nil || p < 0 {
			b.sendText(ctx, chatID, "The price must be a non-negative number:")
			return
		}
		roomID := st.EditRoomID
		st.clearDialog()

		client := b.sessions.Client(userID)
		room, err := client.UpdateRoom(ctx, roomID, hotelapi.RoomUpdate{PricePerNight: &p})
		if err != nil {
			metrics.IncAPIRequest("room_update", "error")
			b.sendText(ctx, chatID, b.userMessage(ctx, err))
			return
		}
		metrics.IncAPIRequest("room_update", "ok")
		b.sendText(ctx, chatID, fmt.Sprintf("✏️ Room %d now costs $%.2f/night.", room.RoomNumber, room.PricePerNight))
		b.showRoomAdmin(ctx, chatID, userID)
	}
}

func (b *Bot) submitRoomCreate(ctx context.Context, chatID, userID int64, st *userState) {
	draft := st.RoomDraft
	st.clearDialog()

	if err := draft.Validate(); err != nil {
		b.sendText(ctx, chatID, "That room doesn't add up: "+err.Error()+". Start over with ➕ Add room.")
		return
	}

	client := b.sessions.Client(userID)
	room, err := client.CreateRoom(ctx, draft)
	if err != nil {
		metrics.IncAPIRequest("room_create", "error")
		b.sendText(ctx, chatID, b.userMessage(ctx, err))
		return
	}
	metrics.IncAPIRequest("room_create", "ok")
	b.sendText(ctx, chatID, fmt.Sprintf("➕ Room %d (%s) created.", room.RoomNumber, room.Type))
	b.showRoomAdmin(ctx, chatID, userID)
}

// confirmRoomDelete asks before an irreversible delete.
func (b *Bot) confirmRoomDelete(ctx context.Context, chatID, userID int64, roomID int64) {
	if !b.isAdmin(ctx, userID) {
		b.sendText(ctx, chatID, "Room management is for administrators only.")
		return
	}
	msg := tgbotapi.NewMessage(chatID, "Delete this room? Existing reservations on it will be orphaned.")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", fmt.Sprintf("roomdelyes:%d", roomID)),
			tgbotapi.NewInlineKeyboardButtonData("↩️ Keep it", "roomdelno"),
		),
	)
	b.send(ctx, msg)
}

func (b *Bot) deleteRoom(ctx context.Context, chatID, userID int64, roomID int64) {
	if !b.isAdmin(ctx, userID) {
		b.sendText(ctx, chatID, "Room management is for administrators only.")
		return
	}
	client := b.sessions.Client(userID)
	if err := client.DeleteRoom(ctx, roomID); err != nil {
		metrics.IncAPIRequest("room_delete", "error")
		b.sendText(ctx, chatID, b.userMessage(ctx, err))
		return
	}
	metrics.IncAPIRequest("room_delete", "ok")
	b.sendText(ctx, chatID, "🗑 Room deleted.")
	b.showRoomAdmin(ctx, chatID, userID)
}

// showUserReservations renders one guest's account and reservations.
func (b *Bot) showUserReservations(ctx context.Context, chatID, userID int64, targetID int64) {
	if !b.isAdmin(ctx, userID) {
		b.sendText(ctx, chatID, "User lookups are for administrators only.")
		return
	}

	client := b.sessions.Client(userID)
	user, err := client.User(ctx, targetID)
	if err != nil {
		metrics.IncAPIRequest("user_lookup", "error")
		b.sendText(ctx, chatID, b.userMessage(ctx, err))
		return
	}
	reservations, err := client.UserReservations(ctx, targetID)
	if err != nil {
		metrics.IncAPIRequest("user_lookup", "error")
		b.sendText(ctx, chatID, b.userMessage(ctx, err))
		return
	}
	metrics.IncAPIRequest("user_lookup", "ok")

	var sb strings.Builder
	fmt.Fprintf(&sb, "👤 *%s* (#%d)\n", user.Email, user.ID)
	fmt.Fprintf(&sb, "Role: %s", user.Role)
	if !user.Enabled {
		sb.WriteString(" · disabled")
	}
	sb.WriteString("\n\n")

	if len(reservations) == 0 {
		sb.WriteString("No reservations.")
	} else {
		for i := range reservations {
			sb.WriteString(formatReservation(&reservations[i]))
			sb.WriteString("\n\n")
		}
	}

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = "Markdown"
	b.send(ctx, msg)
}
