// Package session tracks the authenticated identity for each chat user
// and owns the only mutation entry points: login, logout, restore and
// refresh. Everything else reads immutable snapshots.
package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"concierge/internal/metrics"
	"concierge/internal/models"
)

// State is the authentication state of a session.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
)

// AuthAPI is the slice of the gateway the manager needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (token string, err error)
	Me(ctx context.Context) (models.User, error)
}

// CredentialStore persists the bearer token across restarts.
type CredentialStore interface {
	SaveCredential(ctx context.Context, chatID int64, token, email string) error
	Credential(ctx context.Context, chatID int64) (token, email string, err error)
	DeleteCredential(ctx context.Context, chatID int64) error
}

// Manager holds one user's session. It implements the gateway's
// CredentialSource, so a 401 anywhere evicts the credential and drops
// the session back to unauthenticated.
type Manager struct {
	chatID int64
	api    AuthAPI
	creds  CredentialStore
	logger zerolog.Logger

	mu       sync.Mutex
	state    State
	token    string
	identity *models.User
}

// NewManager creates an unauthenticated session for a chat user.
// Call Restore to pick up a persisted credential.
func NewManager(chatID int64, creds CredentialStore, logger zerolog.Logger) *Manager {
	return &Manager{
		chatID: chatID,
		creds:  creds,
		logger: logger.With().Int64("chat_id", chatID).Str("component", "session").Logger(),
		state:  StateUnauthenticated,
	}
}

// SetAPI binds the gateway client. The client is constructed from the
// manager (it needs a credential source), so binding happens after both
// exist.
func (m *Manager) SetAPI(api AuthAPI) { m.api = api }

// Token returns the current bearer token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// InvalidateToken discards the credential. The gateway calls this on
// every 401 before propagating the error.
func (m *Manager) InvalidateToken() {
	m.mu.Lock()
	hadToken := m.token != ""
	m.token = ""
	m.identity = nil
	m.state = StateUnauthenticated
	m.mu.Unlock()

	if hadToken {
		metrics.IncCredentialEviction()
		m.logger.Info().Msg("credential evicted")
		if err := m.creds.DeleteCredential(context.Background(), m.chatID); err != nil {
			m.logger.Error().Err(err).Msg("failed to delete persisted credential")
		}
	}
}

// State returns the current authentication state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Identity returns a copy of the authenticated identity, or nil.
func (m *Manager) Identity() *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.identity == nil {
		return nil
	}
	snapshot := *m.identity
	return &snapshot
}

// IsAdmin derives the admin capability from the stored identity. It is
// re-evaluated on every call so a role change picked up by Refresh
// takes effect immediately. The backend remains the enforcement point.
func (m *Manager) IsAdmin() bool {
	return m.Identity().IsAdmin()
}

// Authenticated reports whether a verified identity is present.
func (m *Manager) Authenticated() bool {
	return m.State() == StateAuthenticated
}

// Login submits credentials, stores the returned token and fetches the
// identity behind it. Any rejection discards the token and leaves the
// session unauthenticated.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.setAuthenticating("")

	token, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.fail()
		metrics.IncLogin("rejected")
		return err
	}

	m.setAuthenticating(token)

	identity, err := m.api.Me(ctx)
	if err != nil {
		m.fail()
		metrics.IncLogin("identity_failed")
		return err
	}

	m.commit(token, identity)
	metrics.IncLogin("ok")

	if err := m.creds.SaveCredential(ctx, m.chatID, token, identity.Email); err != nil {
		m.logger.Error().Err(err).Msg("failed to persist credential")
	}
	m.logger.Info().Str("email", identity.Email).Msg("logged in")
	return nil
}

// Restore validates a persisted credential against the backend. With no
// persisted credential it is a no-op and the session stays
// unauthenticated.
func (m *Manager) Restore(ctx context.Context) error {
	token, _, err := m.creds.Credential(ctx, m.chatID)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	m.setAuthenticating(token)

	identity, err := m.api.Me(ctx)
	if err != nil {
		// A connectivity failure is not a rejection; keep nothing in
		// memory but leave the persisted credential for the next try.
		m.mu.Lock()
		m.token = ""
		m.identity = nil
		m.state = StateUnauthenticated
		m.mu.Unlock()
		return err
	}

	m.commit(token, identity)
	m.logger.Info().Str("email", identity.Email).Msg("session restored")
	return nil
}

// Refresh re-fetches the identity so role or status corrections take
// effect. A 401 during the fetch evicts the credential via the gateway.
func (m *Manager) Refresh(ctx context.Context) error {
	if !m.Authenticated() {
		return nil
	}
	identity, err := m.api.Me(ctx)
	if err != nil {
		return err
	}
	m.mu.Lock()
	if m.state == StateAuthenticated {
		m.identity = &identity
	}
	m.mu.Unlock()
	return nil
}

// Logout discards the credential and identity.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	m.token = ""
	m.identity = nil
	m.state = StateUnauthenticated
	m.mu.Unlock()

	if err := m.creds.DeleteCredential(ctx, m.chatID); err != nil {
		m.logger.Error().Err(err).Msg("failed to delete persisted credential")
	}
	m.logger.Info().Msg("logged out")
}

func (m *Manager) setAuthenticating(token string) {
	m.mu.Lock()
	m.state = StateAuthenticating
	m.token = token
	m.identity = nil
	m.mu.Unlock()
}

func (m *Manager) fail() {
	m.mu.Lock()
	m.token = ""
	m.identity = nil
	m.state = StateUnauthenticated
	m.mu.Unlock()
}

func (m *Manager) commit(token string, identity models.User) {
	m.mu.Lock()
	m.token = token
	m.identity = &identity
	m.state = StateAuthenticated
	m.mu.Unlock()
}
