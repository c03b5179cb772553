package bot

import (
	"context"
	"errors"
	"strings"

	"concierge/internal/hotelapi"
)

func (b *Bot) startLogin(ctx context.Context, chatID, userID int64) {
	st := b.state.get(userID)
	st.Step = stepLoginEmail
	st.LoginEmail = ""
	b.sendText(ctx, chatID, "Please enter your email:")
}

func (b *Bot) startRegister(ctx context.Context, chatID, userID int64) {
	st := b.state.get(userID)
	st.Step = stepRegEmail
	st.LoginEmail = ""
	b.sendText(ctx, chatID, "Let's create an account. Please enter your email:")
}

func (b *Bot) handleLogout(ctx context.Context, chatID, userID int64) {
	mgr := b.session(ctx, userID)
	if !mgr.Authenticated() {
		b.sendText(ctx, chatID, "You are not logged in.")
		return
	}
	mgr.Logout(ctx)
	b.sendText(ctx, chatID, "Logged out. See you next time!")
	b.sendMainMenu(ctx, chatID, userID)
}

func (b *Bot) handleAuthInput(ctx context.Context, chatID, userID int64, st *userState, text string) {
	switch st.Step {
	case stepLoginEmail:
		if !looksLikeEmail(text) {
			b.sendText(ctx, chatID, "That doesn't look like an email address. Try again:")
			return
		}
		st.LoginEmail = text
		st.Step = stepLoginPassword
		b.sendText(ctx, chatID, "And your password:")

	case stepLoginPassword:
		b.finishLogin(ctx, chatID, userID, st.LoginEmail, text)

	case stepRegEmail:
		if !looksLikeEmail(text) {
			b.sendText(ctx, chatID, "That doesn't look like an email address. Try again:")
			return
		}
		st.LoginEmail = text
		st.Step = stepRegPassword
		b.sendText(ctx, chatID, "Choose a password (8+ characters):")

	case stepRegPassword:
		if len(text) < 8 {
			b.sendText(ctx, chatID, "Password must be at least 8 characters. Try again:")
			return
		}
		b.finishRegister(ctx, chatID, userID, st, text)

	case stepVerifyCode:
		b.finishVerify(ctx, chatID, userID, st, text)
	}
}

func (b *Bot) finishLogin(ctx context.Context, chatID, userID int64, email, password string) {
	mgr := b.session(ctx, userID)
	b.state.reset(userID)

	if err := mgr.Login(ctx, email, password); err != nil {
		if errors.Is(err, hotelapi.ErrUnauthenticated) {
			b.sendText(ctx, chatID, "Invalid email or password.")
			return
		}
		if errors.Is(err, hotelapi.ErrForbidden) {
			st := b.state.get(userID)
			st.LoginEmail = email
			st.Step = stepVerifyCode
			b.sendText(ctx, chatID, "Your account isn't verified yet. Enter the code from your email, or /cancel:")
			return
		}
		b.sendText(ctx, chatID, b.userMessage(ctx, err))
		return
	}

	identity := mgr.Identity()
	b.sendText(ctx, chatID, "Welcome back, "+identity.Email+"!")
	b.sendMainMenu(ctx, chatID, userID)
}

func (b *Bot) finishRegister(ctx context.Context, chatID, userID int64, st *userState, password string) {
	client := b.sessions.Client(userID)
	email := st.LoginEmail

	if err := client.Register(ctx, email, password); err != nil {
		b.state.reset(userID)
		if errors.Is(err, hotelapi.ErrConflict) {
			b.sendText(ctx, chatID, "An account with that email already exists. Try /login instead.")
			return
		}
		b.sendText(ctx, chatID, b.userMessage(ctx, err))
		return
	}

	st.Step = stepVerifyCode
	b.sendText(ctx, chatID, "Account created. Enter the verification code we emailed you (or 'resend'):")
}

func (b *Bot) finishVerify(ctx context.Context, chatID, userID int64, st *userState, code string) {
	client := b.sessions.Client(userID)
	email := st.LoginEmail

	if strings.EqualFold(code, "resend") {
		if err := client.ResendCode(ctx, email); err != nil {
			b.sendText(ctx, chatID, b.userMessage(ctx, err))
			return
		}
		b.sendText(ctx, chatID, "A new code is on its way. Enter it here:")
		return
	}

	if err := client.Verify(ctx, email, code); err != nil {
		b.sendText(ctx, chatID, "That code didn't work. Try again, or type 'resend' for a new one.")
		return
	}

	b.state.reset(userID)
	b.sendText(ctx, chatID, "✅ Email verified! Use /login to sign in.")
}

// looksLikeEmail is a coarse plausibility check. Real validation is the
// backend's job.
func looksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && strings.Contains(s[at:], ".") && !strings.ContainsAny(s, " \t")
}
