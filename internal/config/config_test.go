package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
telegram:
  bot_token: "123:abc"
api:
  base_url: "http://hotel.test:8080"
  timeout_seconds: 5
  cache_ttl_seconds: 60
database:
  path: "`+filepath.Join(t.TempDir(), "data", "bot.db")+`"
bot:
  rooms_per_page: 4
  send_rate_per_second: 10
  send_burst: 15
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, "http://hotel.test:8080", cfg.API.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout())
	assert.Equal(t, time.Minute, cfg.CacheTTL())
	assert.Equal(t, 4, cfg.RoomsPerPage())

	rate, burst := cfg.SendRate()
	assert.Equal(t, 10.0, rate)
	assert.Equal(t, 15, burst)
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, `
telegram:
  bot_token: "123:abc"
database:
  path: "`+filepath.Join(dir, "bot.db")+`"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.APITimeout())
	assert.Zero(t, cfg.CacheTTL(), "cache disabled without a TTL")
	assert.Equal(t, 6, cfg.RoomsPerPage())

	rate, burst := cfg.SendRate()
	assert.Equal(t, 20.0, rate)
	assert.Equal(t, 30, burst)
	assert.Equal(t, 365*24*time.Hour, cfg.MaxAdvance())
}

func TestLoad_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_CONCIERGE_TOKEN", "token-from-env")

	path := writeConfig(t, `
telegram:
  bot_token: "${TEST_CONCIERGE_TOKEN}"
database:
  path: "`+filepath.Join(t.TempDir(), "bot.db")+`"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "token-from-env", cfg.Telegram.BotToken)
}

func TestLoad_CreatesDatabaseDir(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "nested", "deep", "bot.db")
	path := writeConfig(t, `
database:
  path: "`+dbPath+`"
`)

	_, err := Load(path)
	require.NoError(t, err)

	info, err := os.Stat(filepath.Dir(dbPath))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
