package bot

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"concierge/internal/dashboard"
	"concierge/internal/export"
	"concierge/internal/metrics"
	"concierge/internal/models"
)

// isAdmin re-fetches the identity before checking the role, so a role
// change on the backend takes effect without a re-login. The backend
// still enforces every privileged route; this gate only shapes the UI.
func (b *Bot) isAdmin(ctx context.Context, userID int64) bool {
	mgr := b.session(ctx, userID)
	if mgr.Authenticated() {
		if err := mgr.Refresh(ctx); err != nil {
			zerolog.Ctx(ctx).Debug().Err(err).Int64("user_id", userID).Msg("identity refresh failed")
		}
	}
	return mgr.IsAdmin()
}

func (b *Bot) showAdminOverview(ctx context.Context, chatID, userID int64) {
	if !b.isAdmin(ctx, userID) {
		b.sendText(ctx, chatID, "The admin console is for administrators only.")
		return
	}

	client := b.sessions.Client(userID)
	ov := dashboard.Load(ctx, client)
	if ov.Failed() {
		metrics.IncAPIRequest("admin_overview", "error")
		b.sendText(ctx, chatID, b.userMessage(ctx, ov.UsersErr))
		return
	}
	metrics.IncAPIRequest("admin_overview", "ok")

	var sb strings.Builder
	sb.WriteString("👥 *Admin overview*\n\n")

	if ov.UsersErr != nil {
		sb.WriteString("Users: unavailable\n")
	} else {
		admins, disabled := 0, 0
		for _, u := range ov.Users {
			if u.IsAdmin() {
				admins++
			}
			if !u.Enabled {
				disabled++
			}
		}
		fmt.Fprintf(&sb, "Users: %d (%d admin, %d disabled)\n", len(ov.Users), admins, disabled)
	}

	if ov.RoomsErr != nil {
		sb.WriteString("Rooms: unavailable\n")
	} else {
		byType := map[models.RoomType]int{}
		for _, r := range ov.Rooms {
			byType[r.Type]++
		}
		fmt.Fprintf(&sb, "Rooms: %d", len(ov.Rooms))
		if len(byType) > 0 {
			sb.WriteString(" (")
			first := true
			for _, t := range []models.RoomType{models.RoomSingle, models.RoomDouble, models.RoomSuite, models.RoomDeluxe} {
				if byType[t] == 0 {
					continue
				}
				if !first {
					sb.WriteString(", ")
				}
				fmt.Fprintf(&sb, "%d %s", byType[t], strings.ToLower(string(t)))
				first = false
			}
			sb.WriteString(")")
		}
		sb.WriteString("\n")
	}

	if ov.MyStaysErr != nil {
		sb.WriteString("Your stays: unavailable\n")
	} else {
		active := 0
		for i := range ov.MyStays {
			if ov.MyStays[i].Active() {
				active++
			}
		}
		fmt.Fprintf(&sb, "Your stays: %d (%d active)\n", len(ov.MyStays), active)
	}

	sb.WriteString("\n🛠 Manage rooms edits the inventory, /user <id> shows a guest's reservations, 📊 Export builds the full report.")

	msg := tgbotapi.NewMessage(chatID, sb.String())
	msg.ParseMode = "Markdown"
	b.send(ctx, msg)
}

func (b *Bot) sendExport(ctx context.Context, chatID, userID int64) {
	if !b.isAdmin(ctx, userID) {
		b.sendText(ctx, chatID, "Exports are for administrators only.")
		return
	}

	client := b.sessions.Client(userID)
	ov := dashboard.Load(ctx, client)
	if ov.Failed() {
		b.sendText(ctx, chatID, b.userMessage(ctx, ov.UsersErr))
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReport(&buf, ov.Users, ov.Rooms, ov.MyStays); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("report generation failed")
		b.sendText(ctx, chatID, "Could not build the report. Please try again.")
		return
	}

	name := fmt.Sprintf("hotel-report-%s.xlsx", nowFunc().Format("2006-01-02"))
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: buf.Bytes()})
	doc.Caption = "Hotel report: users, rooms and your reservations."
	b.send(ctx, doc)

	zerolog.Ctx(ctx).Info().
		Int64("user_id", userID).
		Int("size_bytes", buf.Len()).
		Time("generated_at", time.Now()).
		Msg("report exported")
}
