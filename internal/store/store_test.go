package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCredentialRoundTrip(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	got, err := db.Credential(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got, "no credential stored yet")

	require.NoError(t, db.SaveCredential(ctx, 42, "tok-1", "guest@hotel.test"))

	got, err = db.Credential(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(42), got.ChatID)
	assert.Equal(t, "tok-1", got.Token)
	assert.Equal(t, "guest@hotel.test", got.Email)
}

func TestSaveCredentialReplaces(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveCredential(ctx, 42, "tok-1", "guest@hotel.test"))
	require.NoError(t, db.SaveCredential(ctx, 42, "tok-2", "guest@hotel.test"))

	got, err := db.Credential(ctx, 42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tok-2", got.Token)
}

func TestDeleteCredential(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveCredential(ctx, 42, "tok-1", "guest@hotel.test"))
	require.NoError(t, db.DeleteCredential(ctx, 42))

	got, err := db.Credential(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, got)

	// Deleting a missing row is not an error.
	assert.NoError(t, db.DeleteCredential(ctx, 42))
}

func TestCredentialsAreScopedPerChat(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveCredential(ctx, 1, "tok-a", "a@hotel.test"))
	require.NoError(t, db.SaveCredential(ctx, 2, "tok-b", "b@hotel.test"))
	require.NoError(t, db.DeleteCredential(ctx, 1))

	got, err := db.Credential(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tok-b", got.Token)
}

func TestSettingsDefaultAndUpsert(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	s, err := db.GetSettings(ctx, 42)
	require.NoError(t, err)
	assert.True(t, s.NotificationsEnabled, "notifications default to on")

	require.NoError(t, db.UpsertSettings(ctx, 42, false))
	s, err = db.GetSettings(ctx, 42)
	require.NoError(t, err)
	assert.False(t, s.NotificationsEnabled)

	require.NoError(t, db.UpsertSettings(ctx, 42, true))
	s, err = db.GetSettings(ctx, 42)
	require.NoError(t, err)
	assert.True(t, s.NotificationsEnabled)
}
