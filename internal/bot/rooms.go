package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"concierge/internal/availability"
	"concierge/internal/hotelapi"
	"concierge/internal/metrics"
	"concierge/internal/models"
	"concierge/internal/pricing"
)

// showRooms lists rooms one page at a time. messageID != 0 edits the
// existing listing in place (page navigation). Candidate stay dates
// from the search dialog narrow the listing until the next reset.
func (b *Bot) showRooms(ctx context.Context, chatID, userID int64, page, messageID int) {
	st := b.state.get(userID)
	query := hotelapi.RoomQuery{}
	searching := st.SearchCheckIn.Before(st.SearchCheckOut)
	if searching {
		in, out := st.SearchCheckIn, st.SearchCheckOut
		query.CheckIn = &in
		query.CheckOut = &out
	}

	client := b.sessions.Client(userID)
	rooms, err := client.SearchRooms(ctx, query)
	if err != nil {
		metrics.IncAPIRequest("rooms_search", "error")
		b.sendText(ctx, chatID, b.userMessage(ctx, err))
		return
	}
	metrics.IncAPIRequest("rooms_search", "ok")

	// The backend filters too; re-checking against the returned
	// booked ranges keeps the listing honest when it does not.
	if searching {
		filtered := rooms[:0]
		for _, room := range rooms {
			free, err := availability.IsAvailableForDates(room.BookedDates, st.SearchCheckIn, st.SearchCheckOut)
			if err == nil && free {
				filtered = append(filtered, room)
			}
		}
		rooms = filtered
	}

	if len(rooms) == 0 {
		if searching {
			b.sendText(ctx, chatID, fmt.Sprintf("No rooms free %s. Try other dates with 🔎 Search.", models.DateRange{CheckIn: st.SearchCheckIn, CheckOut: st.SearchCheckOut}))
			return
		}
		b.sendText(ctx, chatID, "No rooms found.")
		return
	}

	totalPages := (len(rooms) + b.roomsPerPage - 1) / b.roomsPerPage
	if page < 0 {
		page = 0
	}
	if page >= totalPages {
		page = totalPages - 1
	}
	st.RoomsPage = page

	startIdx := page * b.roomsPerPage
	endIdx := startIdx + b.roomsPerPage
	if endIdx > len(rooms) {
		endIdx = len(rooms)
	}
	pageRooms := rooms[startIdx:endIdx]

	var text strings.Builder
	text.WriteString("🏨 *Rooms*\n")
	if searching {
		fmt.Fprintf(&text, "Free %s\n", models.DateRange{CheckIn: st.SearchCheckIn, CheckOut: st.SearchCheckOut})
	}
	fmt.Fprintf(&text, "Page %d of %d\n\n", page+1, totalPages)
	for _, room := range pageRooms {
		text.WriteString(formatRoom(room))
		text.WriteString("\n")
	}

	var keyboard [][]tgbotapi.InlineKeyboardButton
	for _, room := range pageRooms {
		if !availability.HasAnyAvailability(room.BookedDates) {
			continue
		}
		btn := tgbotapi.NewInlineKeyboardButtonData(
			fmt.Sprintf("Book room %d", room.RoomNumber),
			fmt.Sprintf("book:%d", room.ID),
		)
		keyboard = append(keyboard, []tgbotapi.InlineKeyboardButton{btn})
	}

	var navButtons []tgbotapi.InlineKeyboardButton
	if page > 0 {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("⬅️ Prev", fmt.Sprintf("roompage:%d", page-1)))
	}
	if endIdx < len(rooms) {
		navButtons = append(navButtons, tgbotapi.NewInlineKeyboardButtonData("Next ➡️", fmt.Sprintf("roompage:%d", page+1)))
	}
	if len(navButtons) > 0 {
		keyboard = append(keyboard, navButtons)
	}

	markup := tgbotapi.NewInlineKeyboardMarkup(keyboard...)
	if messageID != 0 {
		editMsg := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text.String(), markup)
		editMsg.ParseMode = "Markdown"
		b.send(ctx, editMsg)
		return
	}
	msg := tgbotapi.NewMessage(chatID, text.String())
	msg.ReplyMarkup = markup
	msg.ParseMode = "Markdown"
	b.send(ctx, msg)
}

func formatRoom(room models.Room) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Room %d* — %s\n", room.RoomNumber, room.Type)
	fmt.Fprintf(&sb, "   👥 sleeps %d · 💵 $%.2f/night\n", room.Capacity, room.PricePerNight)
	if room.Description != "" {
		fmt.Fprintf(&sb, "   📝 %s\n", room.Description)
	}
	if len(room.Amenities) > 0 {
		fmt.Fprintf(&sb, "   ✨ %s\n", strings.Join(room.Amenities, ", "))
	}
	if len(room.BookedDates) > 0 {
		sb.WriteString("   🚫 booked: ")
		for i, r := range room.BookedDates {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(r.String())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// startBooking opens the date dialog for a room.
func (b *Bot) startBooking(ctx context.Context, chatID, userID int64, roomID int64) {
	mgr := b.session(ctx, userID)
	if !mgr.Authenticated() {
		b.sendText(ctx, chatID, "Please /login before booking a room.")
		return
	}

	room, err := b.findRoom(ctx, userID, roomID)
	if err != nil {
		b.sendText(ctx, chatID, b.userMessage(ctx, err))
		return
	}
	if room == nil {
		b.sendText(ctx, chatID, "That room is no longer listed.")
		return
	}

	st := b.state.get(userID)
	st.Step = stepBookCheckIn
	st.Draft = BookingDraft{
		RoomID:        room.ID,
		RoomNumber:    room.RoomNumber,
		RoomType:      room.Type,
		PricePerNight: room.PricePerNight,
	}

	// Search dates carry straight into the booking.
	if st.SearchCheckIn.Before(st.SearchCheckOut) && !st.SearchCheckIn.Before(models.DateOf(nowFunc())) {
		st.Draft.CheckIn = st.SearchCheckIn
		st.Draft.CheckOut = st.SearchCheckOut
		b.askBookingConfirmation(ctx, chatID, userID, st)
		return
	}

	b.sendText(ctx, chatID, fmt.Sprintf("Booking room %d. Enter the check-in date (YYYY-MM-DD):", room.RoomNumber))
}

func (b *Bot) handleBookingInput(ctx context.Context, chatID, userID int64, st *userState, text string) {
	date, err := models.ParseDate(text)
	if err != nil {
		b.sendText(ctx, chatID, "Please use the YYYY-MM-DD format, e.g. 2026-09-15:")
		return
	}
	today := models.DateOf(nowFunc())

	switch st.Step {
	case stepBookCheckIn:
		if date.Before(today) {
			b.sendText(ctx, chatID, "Check-in can't be in the past. Pick another date:")
			return
		}
		if date.After(models.DateOf(nowFunc().Add(b.maxAdvance))) {
			b.sendText(ctx, chatID, "That's too far ahead to book. Pick an earlier date:")
			return
		}
		st.Draft.CheckIn = date
		st.Step = stepBookCheckOut
		b.sendText(ctx, chatID, "And the check-out date (YYYY-MM-DD):")

	case stepBookCheckOut:
		if !date.After(st.Draft.CheckIn) {
			b.sendText(ctx, chatID, "Check-out must be after check-in. Pick another date:")
			return
		}
		st.Draft.CheckOut = date
		b.askBookingConfirmation(ctx, chatID, userID, st)
	}
}

func (b *Bot) askBookingConfirmation(ctx context.Context, chatID, userID int64, st *userState) {
	draft := st.Draft

	// Fresh availability against current bookings, not the snapshot
	// the listing was rendered from.
	room, err := b.findRoom(ctx, userID, draft.RoomID)
	if err != nil {
		st.clearDialog()
		b.sendText(ctx, chatID, b.userMessage(ctx, err))
		return
	}
	if room == nil {
		st.clearDialog()
		b.sendText(ctx, chatID, "That room is no longer listed.")
		return
	}

	free, err := availability.IsAvailableForDates(room.BookedDates, draft.CheckIn, draft.CheckOut)
	if err != nil || !free {
		st.Step = stepBookCheckIn
		st.Draft.CheckIn = models.Date{}
		st.Draft.CheckOut = models.Date{}
		b.sendText(ctx, chatID, "Room "+fmt.Sprint(room.RoomNumber)+" is taken for those dates. Enter a different check-in date:")
		return
	}

	nights, err := pricing.Nights(draft.CheckIn, draft.CheckOut)
	if err != nil {
		st.clearDialog()
		b.sendText(ctx, chatID, "Those dates don't make a valid stay. Start over with /rooms.")
		return
	}
	total, _ := pricing.Quote(*room, draft.CheckIn, draft.CheckOut)

	// The rate may have changed since the listing was rendered.
	st.Draft.PricePerNight = room.PricePerNight
	draft.PricePerNight = room.PricePerNight

	st.Step = stepBookConfirm
	text := fmt.Sprintf(`📋 *Booking summary*

🏨 Room %d (%s)
📅 %s → %s
🌙 %d night(s) at $%.2f
💵 $%.2f total

Confirm?`,
		draft.RoomNumber, draft.RoomType,
		draft.CheckIn, draft.CheckOut,
		nights, draft.PricePerNight, total,
	)

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Book it", "bookyes"),
			tgbotapi.NewInlineKeyboardButtonData("❌ Cancel", "bookno"),
		),
	)
	b.send(ctx, msg)
}

func (b *Bot) submitBooking(ctx context.Context, chatID, userID int64) {
	st := b.state.get(userID)
	if st.Step != stepBookConfirm || !st.Draft.CheckIn.Before(st.Draft.CheckOut) {
		b.sendText(ctx, chatID, "No booking in progress. Start with /rooms.")
		return
	}
	draft := st.Draft
	page := st.RoomsPage
	st.clearDialog()

	client := b.sessions.Client(userID)
	res, err := client.CreateReservation(ctx, hotelapi.ReservationRequest{
		RoomID:       draft.RoomID,
		CheckInDate:  draft.CheckIn,
		CheckOutDate: draft.CheckOut,
	})
	if err != nil {
		metrics.IncAPIRequest("reservation_create", "error")
		b.sendText(ctx, chatID, b.userMessage(ctx, err))
		return
	}
	metrics.IncAPIRequest("reservation_create", "ok")
	metrics.IncReservationAction("created")

	b.sendText(ctx, chatID, fmt.Sprintf(
		"✅ Reservation #%d created for room %d (%s → %s).",
		res.ID, draft.RoomNumber, draft.CheckIn, draft.CheckOut,
	))
	if b.notificationsEnabled(ctx, userID) {
		b.sendText(ctx, chatID, "⏰ It stays PENDING until you confirm it under 📌 My reservations. Toggle these hints with /notifications.")
	}

	// Back to the page the guest was browsing, with the new booking
	// reflected in the listing.
	b.showRooms(ctx, chatID, userID, page, 0)
}

// cancelBookingDialog drops the draft and returns to the listing page
// the guest came from.
func (b *Bot) cancelBookingDialog(ctx context.Context, chatID, userID int64) {
	st := b.state.get(userID)
	page := st.RoomsPage
	st.clearDialog()
	b.sendText(ctx, chatID, "Booking cancelled.")
	b.showRooms(ctx, chatID, userID, page, 0)
}

// startSearch opens the availability search dialog.
func (b *Bot) startSearch(ctx context.Context, chatID, userID int64) {
	st := b.state.get(userID)
	st.clearDialog()
	st.SearchCheckIn = models.Date{}
	st.SearchCheckOut = models.Date{}
	st.Step = stepSearchCheckIn
	b.sendText(ctx, chatID, "When would you check in? (YYYY-MM-DD):")
}

func (b *Bot) handleSearchInput(ctx context.Context, chatID, userID int64, st *userState, text string) {
	date, err := models.ParseDate(text)
	if err != nil {
		b.sendText(ctx, chatID, "Please use the YYYY-MM-DD format, e.g. 2026-09-15:")
		return
	}
	today := models.DateOf(nowFunc())

	switch st.Step {
	case stepSearchCheckIn:
		if date.Before(today) {
			b.sendText(ctx, chatID, "Check-in can't be in the past. Pick another date:")
			return
		}
		st.SearchCheckIn = date
		st.Step = stepSearchCheckOut
		b.sendText(ctx, chatID, "And check out? (YYYY-MM-DD):")

	case stepSearchCheckOut:
		if !date.After(st.SearchCheckIn) {
			b.sendText(ctx, chatID, "Check-out must be after check-in. Pick another date:")
			return
		}
		st.SearchCheckOut = date
		st.Step = stepNone
		b.showRooms(ctx, chatID, userID, 0, 0)
	}
}

// findRoom fetches the current listing and picks one room out of it.
func (b *Bot) findRoom(ctx context.Context, userID int64, roomID int64) (*models.Room, error) {
	client := b.sessions.Client(userID)
	rooms, err := client.SearchRooms(ctx, hotelapi.RoomQuery{})
	if err != nil {
		return nil, err
	}
	for i := range rooms {
		if rooms[i].ID == roomID {
			return &rooms[i], nil
		}
	}
	return nil, nil
}
