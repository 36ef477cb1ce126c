package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv resets every variable the loader reads so tests do not
// inherit values from the developer's shell
func clearEnv(t *testing.T) {
	vars := []string{
		"TELEGRAM_BOT_TOKEN", "ADMIN_USER_IDS",
		"WEBHOOK_MODE", "WEBHOOK_URL",
		"USE_MOCK_STORE", "TEXTS_FOLDER_ID",
		"ARCHIVE_MODE", "PHOTOS_FOLDER_ID", "ARCHIVE_CHANNEL_ID",
		"GOOGLE_CREDENTIALS_FILE",
		"CONSENT_BACKEND", "SPREADSHEET_ID", "CONSENT_SHEET",
		"CLICKHOUSE_HOST", "CLICKHOUSE_PORT", "CLICKHOUSE_DATABASE",
		"CLICKHOUSE_USER", "CLICKHOUSE_PASSWORD", "CLICKHOUSE_USE_TLS",
		"SESSION_BACKEND", "REDIS_ADDR",
	}
	for _, v := range vars {
		t.Setenv(v, "")
	}
}

func TestLoadFromEnv_MissingToken(t *testing.T) {
	clearEnv(t)

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
}

func TestLoadFromEnv_MockStoreDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("USE_MOCK_STORE", "true")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "test-token", cfg.TelegramToken)
	assert.True(t, cfg.UseMockStore)
	assert.False(t, cfg.WebhookMode)
	assert.Equal(t, ArchiveModeDrive, cfg.ArchiveMode)
	assert.Equal(t, ConsentBackendOff, cfg.ConsentBackend)
	assert.Equal(t, SessionBackendMemory, cfg.SessionBackend)
}

func TestLoadFromEnv_DriveModeRequiresFolders(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("TEXTS_FOLDER_ID", "texts-folder")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PHOTOS_FOLDER_ID")
}

func TestLoadFromEnv_ChannelMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("USE_MOCK_STORE", "true")
	t.Setenv("ARCHIVE_MODE", "channel")
	t.Setenv("ARCHIVE_CHANNEL_ID", "-1001234567890")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)

	assert.Equal(t, ArchiveModeChannel, cfg.ArchiveMode)
	assert.Equal(t, int64(-1001234567890), cfg.ArchiveChannelID)
}

func TestLoadFromEnv_ChannelModeBadID(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("USE_MOCK_STORE", "true")
	t.Setenv("ARCHIVE_MODE", "channel")
	t.Setenv("ARCHIVE_CHANNEL_ID", "not-a-number")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARCHIVE_CHANNEL_ID")
}

func TestLoadFromEnv_InvalidArchiveMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("USE_MOCK_STORE", "true")
	t.Setenv("ARCHIVE_MODE", "s3")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ARCHIVE_MODE")
}

func TestLoadFromEnv_WebhookModeRequiresURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("USE_MOCK_STORE", "true")
	t.Setenv("WEBHOOK_MODE", "true")

	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "WEBHOOK_URL")
}

func TestLoadFromEnv_AdminUserIDs(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("USE_MOCK_STORE", "true")
	t.Setenv("ADMIN_USER_IDS", "123, 456,789")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, []int64{123, 456, 789}, cfg.AdminUserIDs)
}

func TestLoadFromEnv_SheetsConsent(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("USE_MOCK_STORE", "true")
	t.Setenv("CONSENT_BACKEND", "sheets")
	t.Setenv("SPREADSHEET_ID", "sheet-id")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, ConsentBackendSheets, cfg.ConsentBackend)
	assert.Equal(t, "sheet-id", cfg.SpreadsheetID)
	assert.Equal(t, "Sheet1", cfg.ConsentSheet)
}

func TestLoadFromEnv_ClickHouseConsentDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("USE_MOCK_STORE", "true")
	t.Setenv("CONSENT_BACKEND", "clickhouse")
	t.Setenv("CLICKHOUSE_HOST", "localhost")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.ClickHousePort)
	assert.Equal(t, "default", cfg.ClickHouseDatabase)
	assert.Equal(t, "default", cfg.ClickHouseUser)
	assert.False(t, cfg.ClickHouseUseTLS)
}

func TestLoadFromEnv_RedisSessionDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("TELEGRAM_BOT_TOKEN", "test-token")
	t.Setenv("USE_MOCK_STORE", "true")
	t.Setenv("SESSION_BACKEND", "redis")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, SessionBackendRedis, cfg.SessionBackend)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
}
