// Package bot is the Telegram front door of the hotel client: dialogs
// for auth and booking, room browsing and the admin console.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"concierge/internal/hotelapi"
	"concierge/internal/session"
	"concierge/internal/store"
)

type telegramClient interface {
	Send(tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	SelfUser() tgbotapi.User
}

type realTelegramClient struct {
	api *tgbotapi.BotAPI
}

func (c *realTelegramClient) Send(msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	return c.api.Send(msg)
}

func (c *realTelegramClient) Request(msg tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return c.api.Request(msg)
}

func (c *realTelegramClient) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return c.api.GetUpdatesChan(cfg)
}

func (c *realTelegramClient) SelfUser() tgbotapi.User {
	return c.api.Self
}

// Options tunes bot behaviour; zero values fall back to defaults.
type Options struct {
	RoomsPerPage int
	SendRate     float64
	SendBurst    int
	MaxAdvance   time.Duration
}

// Bot routes Telegram updates to the session, gateway and evaluator
// layers.
type Bot struct {
	sessions     *session.Registry
	db           *store.DB
	tg           telegramClient
	state        *stateStore
	limiter      *rate.Limiter
	roomsPerPage int
	maxAdvance   time.Duration
	logger       *zerolog.Logger
}

// New connects to Telegram and builds the bot.
func New(token string, sessions *session.Registry, db *store.DB, opts Options, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return newBot(&realTelegramClient{api: api}, sessions, db, opts, logger)
}

// NewWithTelegramClient allows injecting a mocked Telegram client for tests.
func NewWithTelegramClient(tg telegramClient, sessions *session.Registry, db *store.DB, opts Options, logger *zerolog.Logger) (*Bot, error) {
	return newBot(tg, sessions, db, opts, logger)
}

func newBot(tg telegramClient, sessions *session.Registry, db *store.DB, opts Options, logger *zerolog.Logger) (*Bot, error) {
	if tg == nil {
		return nil, fmt.Errorf("telegram client is nil")
	}
	if opts.RoomsPerPage <= 0 {
		opts.RoomsPerPage = 6
	}
	if opts.SendRate <= 0 {
		opts.SendRate = 20.0
	}
	if opts.SendBurst <= 0 {
		opts.SendBurst = 30
	}
	if opts.MaxAdvance <= 0 {
		opts.MaxAdvance = 365 * 24 * time.Hour
	}
	return &Bot{
		sessions:     sessions,
		db:           db,
		tg:           tg,
		state:        newStateStore(),
		limiter:      rate.NewLimiter(rate.Limit(opts.SendRate), opts.SendBurst),
		roomsPerPage: opts.RoomsPerPage,
		maxAdvance:   opts.MaxAdvance,
		logger:       logger,
	}, nil
}

var (
	guestMenu = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🏨 Rooms"),
			tgbotapi.NewKeyboardButton("🔎 Search"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🔑 Log in"),
			tgbotapi.NewKeyboardButton("📝 Register"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("ℹ️ Help"),
		),
	)

	userMenu = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🏨 Rooms"),
			tgbotapi.NewKeyboardButton("🔎 Search"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("📌 My reservations"),
			tgbotapi.NewKeyboardButton("🚪 Log out"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("ℹ️ Help"),
		),
	)

	adminMenu = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🏨 Rooms"),
			tgbotapi.NewKeyboardButton("🔎 Search"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("📌 My reservations"),
			tgbotapi.NewKeyboardButton("👥 Admin"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🛠 Manage rooms"),
			tgbotapi.NewKeyboardButton("📊 Export"),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton("🚪 Log out"),
			tgbotapi.NewKeyboardButton("ℹ️ Help"),
		),
	)
)

// Start polls updates until the context is cancelled. Each chat user
// gets a restored session on first contact.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.tg.GetUpdatesChan(u)
	b.logger.Info().Str("username", b.tg.SelfUser().UserName).Msg("concierge bot authorized")

	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			requestID := uuid.New().String()
			l := b.logger.With().Str("request_id", requestID).Logger()
			updateCtx := l.WithContext(ctx)
			b.handleUpdate(updateCtx, &update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update *tgbotapi.Update) {
	l := zerolog.Ctx(ctx)
	if update.CallbackQuery != nil {
		l.Debug().
			Int64("user_id", update.CallbackQuery.From.ID).
			Str("data", update.CallbackQuery.Data).
			Msg("handling callback query")
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}
	if update.Message != nil {
		l.Debug().
			Int64("user_id", update.Message.From.ID).
			Str("text", update.Message.Text).
			Msg("handling message")
		b.handleMessage(ctx, update.Message)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg == nil || msg.From == nil {
		return
	}
	userID := msg.From.ID
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	// Restores a persisted session on first contact.
	b.session(ctx, userID)

	// Commands interrupt any active dialog.
	if strings.HasPrefix(text, "/") {
		b.state.reset(userID)
		switch {
		case strings.HasPrefix(text, "/start"):
			b.sendMainMenu(ctx, chatID, userID)
		case strings.HasPrefix(text, "/help"):
			b.sendText(ctx, chatID, helpText)
		case strings.HasPrefix(text, "/login"):
			b.startLogin(ctx, chatID, userID)
		case strings.HasPrefix(text, "/register"):
			b.startRegister(ctx, chatID, userID)
		case strings.HasPrefix(text, "/logout"):
			b.handleLogout(ctx, chatID, userID)
		case strings.HasPrefix(text, "/rooms"):
			b.showRooms(ctx, chatID, userID, 0, 0)
		case strings.HasPrefix(text, "/search"):
			b.startSearch(ctx, chatID, userID)
		case strings.HasPrefix(text, "/myreservations"):
			b.showMyReservations(ctx, chatID, userID)
		case strings.HasPrefix(text, "/managerooms"):
			b.showRoomAdmin(ctx, chatID, userID)
		case strings.HasPrefix(text, "/user"):
			b.handleUserCommand(ctx, chatID, userID, text)
		case strings.HasPrefix(text, "/admin"):
			b.showAdminOverview(ctx, chatID, userID)
		case strings.HasPrefix(text, "/export"):
			b.sendExport(ctx, chatID, userID)
		case strings.HasPrefix(text, "/notifications"):
			b.toggleNotifications(ctx, chatID, userID)
		case strings.HasPrefix(text, "/cancel"):
			b.sendText(ctx, chatID, "Cancelled.")
			b.sendMainMenu(ctx, chatID, userID)
		default:
			b.sendText(ctx, chatID, "Unknown command. Try /help.")
		}
		return
	}

	// Menu buttons.
	switch text {
	case "🏨 Rooms":
		b.state.reset(userID)
		b.showRooms(ctx, chatID, userID, 0, 0)
		return
	case "🔎 Search":
		b.startSearch(ctx, chatID, userID)
		return
	case "🛠 Manage rooms":
		b.state.reset(userID)
		b.showRoomAdmin(ctx, chatID, userID)
		return
	case "📌 My reservations":
		b.state.reset(userID)
		b.showMyReservations(ctx, chatID, userID)
		return
	case "🔑 Log in":
		b.startLogin(ctx, chatID, userID)
		return
	case "📝 Register":
		b.startRegister(ctx, chatID, userID)
		return
	case "🚪 Log out":
		b.state.reset(userID)
		b.handleLogout(ctx, chatID, userID)
		return
	case "👥 Admin":
		b.state.reset(userID)
		b.showAdminOverview(ctx, chatID, userID)
		return
	case "📊 Export":
		b.state.reset(userID)
		b.sendExport(ctx, chatID, userID)
		return
	case "ℹ️ Help":
		b.sendText(ctx, chatID, helpText)
		return
	}

	// Free text feeds the active dialog.
	st := b.state.get(userID)
	switch st.Step {
	case stepLoginEmail, stepLoginPassword, stepRegEmail, stepRegPassword, stepVerifyCode:
		b.handleAuthInput(ctx, chatID, userID, st, text)
	case stepBookCheckIn, stepBookCheckOut:
		b.handleBookingInput(ctx, chatID, userID, st, text)
	case stepSearchCheckIn, stepSearchCheckOut:
		b.handleSearchInput(ctx, chatID, userID, st, text)
	case stepRoomNumber, stepRoomType, stepRoomCapacity, stepRoomPrice,
		stepRoomDescription, stepRoomAmenities, stepRoomEditPrice:
		b.handleRoomAdminInput(ctx, chatID, userID, st, text)
	default:
		b.sendMainMenu(ctx, chatID, userID)
	}
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil {
		return
	}
	userID := cb.From.ID
	chatID := cb.Message.Chat.ID
	data := cb.Data

	// Acknowledge to stop the client spinner.
	_, _ = b.tg.Request(tgbotapi.NewCallback(cb.ID, ""))

	switch {
	case strings.HasPrefix(data, "roompage:"):
		page, _ := strconv.Atoi(strings.TrimPrefix(data, "roompage:"))
		b.showRooms(ctx, chatID, userID, page, cb.Message.MessageID)
	case strings.HasPrefix(data, "book:"):
		roomID, _ := strconv.ParseInt(strings.TrimPrefix(data, "book:"), 10, 64)
		b.startBooking(ctx, chatID, userID, roomID)
	case data == "bookyes":
		b.submitBooking(ctx, chatID, userID)
	case data == "bookno":
		b.cancelBookingDialog(ctx, chatID, userID)
	case data == "roomadd":
		b.startRoomCreate(ctx, chatID, userID)
	case strings.HasPrefix(data, "roomedit:"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "roomedit:"), 10, 64)
		b.startRoomEdit(ctx, chatID, userID, id)
	case strings.HasPrefix(data, "roomdel:"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "roomdel:"), 10, 64)
		b.confirmRoomDelete(ctx, chatID, userID, id)
	case strings.HasPrefix(data, "roomdelyes:"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "roomdelyes:"), 10, 64)
		b.deleteRoom(ctx, chatID, userID, id)
	case data == "roomdelno":
		b.sendText(ctx, chatID, "The room stays.")
	case strings.HasPrefix(data, "resconfirm:"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "resconfirm:"), 10, 64)
		b.confirmReservation(ctx, chatID, userID, id)
	case strings.HasPrefix(data, "rescancel:"):
		id, _ := strconv.ParseInt(strings.TrimPrefix(data, "rescancel:"), 10, 64)
		b.cancelReservation(ctx, chatID, userID, id)
	}
}

// handleUserCommand parses "/user <id>" and renders that guest's
// reservations for an admin.
func (b *Bot) handleUserCommand(ctx context.Context, chatID, userID int64, text string) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		b.sendText(ctx, chatID, "Usage: /user <id>")
		return
	}
	targetID, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil || targetID <= 0 {
		b.sendText(ctx, chatID, "Usage: /user <id>")
		return
	}
	b.showUserReservations(ctx, chatID, userID, targetID)
}

// session returns the chat user's session manager, restoring a
// persisted credential on first contact.
func (b *Bot) session(ctx context.Context, userID int64) *session.Manager {
	mgr := b.sessions.ForUser(userID)
	if mgr.State() == session.StateUnauthenticated && mgr.Token() == "" {
		if err := mgr.Restore(ctx); err != nil && !errors.Is(err, hotelapi.ErrUnauthenticated) {
			zerolog.Ctx(ctx).Debug().Err(err).Int64("user_id", userID).Msg("session restore failed")
		}
	}
	return mgr
}

func (b *Bot) sendMainMenu(ctx context.Context, chatID, userID int64) {
	mgr := b.session(ctx, userID)
	msg := tgbotapi.NewMessage(chatID, "Welcome to the hotel desk. What would you like to do?")
	switch {
	case mgr.IsAdmin():
		msg.ReplyMarkup = adminMenu
	case mgr.Authenticated():
		msg.ReplyMarkup = userMenu
	default:
		msg.ReplyMarkup = guestMenu
	}
	b.send(ctx, msg)
}

func (b *Bot) sendText(ctx context.Context, chatID int64, text string) {
	b.send(ctx, tgbotapi.NewMessage(chatID, text))
}

// send pushes a message through the outgoing rate limiter.
func (b *Bot) send(ctx context.Context, msg tgbotapi.Chattable) {
	if err := b.limiter.Wait(ctx); err != nil {
		return
	}
	if _, err := b.tg.Send(msg); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("telegram send failed")
	}
}

// userMessage converts a gateway error into one user-facing line and
// logs the detail. No backend error reaches the chat verbatim.
func (b *Bot) userMessage(ctx context.Context, err error) string {
	l := zerolog.Ctx(ctx)
	switch {
	case errors.Is(err, hotelapi.ErrUnauthenticated):
		l.Info().Err(err).Msg("credential rejected")
		return "Your session has expired. Please log in again."
	case errors.Is(err, hotelapi.ErrForbidden):
		l.Info().Err(err).Msg("operation forbidden")
		return "You don't have access to that. Your account may not be verified yet."
	case errors.Is(err, hotelapi.ErrConflict):
		l.Info().Err(err).Msg("conflict")
		return "That didn't work: the request conflicts with existing data."
	case hotelapi.IsConnectivity(err):
		l.Error().Err(err).Msg("backend unreachable")
		return "The hotel service is unreachable right now. Please try again."
	default:
		l.Error().Err(err).Msg("backend error")
		var apiErr *hotelapi.APIError
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			return "The hotel service said: " + apiErr.Message
		}
		return "Something went wrong. Please try again."
	}
}

const helpText = `I am the hotel concierge bot.

/rooms — browse and book rooms
/search — find rooms free for your dates
/myreservations — manage your reservations
/login — log in with email and password
/register — create an account
/logout — log out
/notifications — toggle booking reminders
/cancel — abort the current dialog

Admins also get /admin, /managerooms, /user <id> and /export.`
