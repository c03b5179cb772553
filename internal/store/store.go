// Package store persists per-chat client state in SQLite: the bearer
// credential that survives restarts and per-user preferences.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps sql.DB for the concierge bot.
type DB struct {
	*sql.DB
}

// Open opens the database at path and runs migrations.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := createTables(db); err != nil {
		return nil, err
	}
	return &DB{db}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		// Bearer credentials, one row per Telegram chat user.
		`CREATE TABLE IF NOT EXISTS credentials (
			chat_id INTEGER PRIMARY KEY,
			token TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS user_settings (
			chat_id INTEGER PRIMARY KEY,
			notifications_enabled BOOLEAN NOT NULL DEFAULT 1,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration %s: %w", trimSQL(q), err)
		}
	}
	return nil
}

func trimSQL(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 60 {
		return s[:60] + "..."
	}
	return s
}

// Credential is a persisted bearer token.
type Credential struct {
	ChatID    int64
	Token     string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveCredential stores or replaces the credential for a chat user.
func (db *DB) SaveCredential(ctx context.Context, chatID int64, token, email string) error {
	now := time.Now()
	_, err := db.ExecContext(ctx, `
		INSERT INTO credentials (chat_id, token, email, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			token = excluded.token,
			email = excluded.email,
			updated_at = excluded.updated_at`,
		chatID, token, email, now, now)
	return err
}

// Credential returns the stored credential, or nil when none exists.
func (db *DB) Credential(ctx context.Context, chatID int64) (*Credential, error) {
	row := db.QueryRowContext(ctx, `
		SELECT chat_id, token, email, created_at, updated_at
		FROM credentials
		WHERE chat_id = ?`, chatID)

	var c Credential
	err := row.Scan(&c.ChatID, &c.Token, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// DeleteCredential discards the credential for a chat user.
func (db *DB) DeleteCredential(ctx context.Context, chatID int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM credentials WHERE chat_id = ?`, chatID)
	return err
}

// Settings holds per-chat preferences.
type Settings struct {
	ChatID               int64
	NotificationsEnabled bool
}

// GetSettings returns settings for a chat user, defaulting when absent.
func (db *DB) GetSettings(ctx context.Context, chatID int64) (*Settings, error) {
	row := db.QueryRowContext(ctx, `
		SELECT chat_id, notifications_enabled
		FROM user_settings
		WHERE chat_id = ?`, chatID)

	var s Settings
	err := row.Scan(&s.ChatID, &s.NotificationsEnabled)
	if err != nil {
		if err == sql.ErrNoRows {
			return &Settings{ChatID: chatID, NotificationsEnabled: true}, nil
		}
		return nil, err
	}
	return &s, nil
}

// UpsertSettings creates or updates settings for a chat user.
func (db *DB) UpsertSettings(ctx context.Context, chatID int64, notificationsEnabled bool) error {
	now := time.Now()
	_, err := db.ExecContext(ctx, `
		INSERT INTO user_settings (chat_id, notifications_enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET
			notifications_enabled = excluded.notifications_enabled,
			updated_at = excluded.updated_at`,
		chatID, notificationsEnabled, now, now)
	return err
}
