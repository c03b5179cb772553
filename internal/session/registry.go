package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"concierge/internal/hotelapi"
	"concierge/internal/models"
	"concierge/internal/store"
)

// Registry hands out one session manager per Telegram chat user, each
// bound to its own credential-scoped view of the shared gateway client.
type Registry struct {
	base   *hotelapi.Client
	db     *store.DB
	logger zerolog.Logger

	mu       sync.Mutex
	managers map[int64]*Manager
}

// NewRegistry creates a registry over the shared gateway client.
func NewRegistry(base *hotelapi.Client, db *store.DB, logger zerolog.Logger) *Registry {
	return &Registry{
		base:     base,
		db:       db,
		logger:   logger,
		managers: make(map[int64]*Manager),
	}
}

// ForUser returns the session manager for a chat user, creating and
// wiring it on first use.
func (r *Registry) ForUser(chatID int64) *Manager {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m, ok := r.managers[chatID]; ok {
		return m
	}

	m := NewManager(chatID, &dbCredentials{db: r.db}, r.logger)
	client := r.base.WithCredentials(m)
	m.SetAPI(&clientAuth{client: client})
	r.managers[chatID] = m
	return m
}

// Client returns the credential-scoped gateway client for a chat user.
func (r *Registry) Client(chatID int64) *hotelapi.Client {
	m := r.ForUser(chatID)
	return r.base.WithCredentials(m)
}

// dbCredentials adapts store.DB to the CredentialStore interface.
type dbCredentials struct {
	db *store.DB
}

func (s *dbCredentials) SaveCredential(ctx context.Context, chatID int64, token, email string) error {
	return s.db.SaveCredential(ctx, chatID, token, email)
}

func (s *dbCredentials) Credential(ctx context.Context, chatID int64) (string, string, error) {
	c, err := s.db.Credential(ctx, chatID)
	if err != nil || c == nil {
		return "", "", err
	}
	return c.Token, c.Email, nil
}

func (s *dbCredentials) DeleteCredential(ctx context.Context, chatID int64) error {
	return s.db.DeleteCredential(ctx, chatID)
}

// clientAuth adapts hotelapi.Client to the AuthAPI interface.
type clientAuth struct {
	client *hotelapi.Client
}

func (a *clientAuth) Login(ctx context.Context, email, password string) (string, error) {
	res, err := a.client.Login(ctx, email, password)
	if err != nil {
		return "", err
	}
	return res.Token, nil
}

func (a *clientAuth) Me(ctx context.Context) (models.User, error) {
	return a.client.Me(ctx)
}
