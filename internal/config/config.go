package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Archive destination modes
const (
	ArchiveModeDrive   = "drive"
	ArchiveModeChannel = "channel"
)

// Consent log backends
const (
	ConsentBackendSheets     = "sheets"
	ConsentBackendClickHouse = "clickhouse"
	ConsentBackendOff        = "off"
)

// Session store backends
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// Config holds the application configuration
type Config struct {
	TelegramToken string
	AdminUserIDs  []int64

	// Bot mode configuration
	WebhookMode bool   // If true, use webhook mode; if false, use polling mode
	WebhookURL  string // URL for webhook (required if WebhookMode is true)

	// Text source and photo archive
	TextsFolderID    string
	ArchiveMode      string // "drive" or "channel"
	PhotosFolderID   string // required in drive mode
	ArchiveChannelID int64  // required in channel mode

	// Google service-account credentials (Drive and Sheets)
	GoogleCredentialsFile string

	// Consent log configuration
	ConsentBackend string // "sheets", "clickhouse" or "off"
	SpreadsheetID  string
	ConsentSheet   string

	// ClickHouse configuration (consent log backend)
	ClickHouseHost     string
	ClickHousePort     int
	ClickHouseDatabase string
	ClickHouseUser     string
	ClickHousePassword string
	ClickHouseUseTLS   bool

	// Session store configuration
	SessionBackend string // "memory" or "redis"
	RedisAddr      string

	UseMockStore bool
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	config := &Config{}

	// Telegram Bot Token (required)
	config.TelegramToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	if config.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	// Admin User IDs (optional, gate the admin HTTP API)
	if adminIDsStr := os.Getenv("ADMIN_USER_IDS"); adminIDsStr != "" {
		for _, idStr := range strings.Split(adminIDsStr, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(idStr), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid user ID in ADMIN_USER_IDS: %s", idStr)
			}
			config.AdminUserIDs = append(config.AdminUserIDs, id)
		}
	}

	// Bot mode configuration
	config.WebhookMode = os.Getenv("WEBHOOK_MODE") == "true"
	if config.WebhookMode {
		config.WebhookURL = os.Getenv("WEBHOOK_URL")
		if config.WebhookURL == "" {
			return nil, fmt.Errorf("WEBHOOK_URL is required when WEBHOOK_MODE is true")
		}
	}

	// Use in-memory mock file store (default: false, local development only)
	config.UseMockStore = os.Getenv("USE_MOCK_STORE") == "true"

	// Text source folder (required unless mocked)
	config.TextsFolderID = os.Getenv("TEXTS_FOLDER_ID")
	if config.TextsFolderID == "" && !config.UseMockStore {
		return nil, fmt.Errorf("TEXTS_FOLDER_ID is required")
	}

	// Archive destination
	config.ArchiveMode = os.Getenv("ARCHIVE_MODE")
	if config.ArchiveMode == "" {
		config.ArchiveMode = ArchiveModeDrive
	}
	switch config.ArchiveMode {
	case ArchiveModeDrive:
		config.PhotosFolderID = os.Getenv("PHOTOS_FOLDER_ID")
		if config.PhotosFolderID == "" && !config.UseMockStore {
			return nil, fmt.Errorf("PHOTOS_FOLDER_ID is required when ARCHIVE_MODE is drive")
		}
	case ArchiveModeChannel:
		channelStr := os.Getenv("ARCHIVE_CHANNEL_ID")
		if channelStr == "" {
			return nil, fmt.Errorf("ARCHIVE_CHANNEL_ID is required when ARCHIVE_MODE is channel")
		}
		channelID, err := strconv.ParseInt(channelStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ARCHIVE_CHANNEL_ID: %w", err)
		}
		config.ArchiveChannelID = channelID
	default:
		return nil, fmt.Errorf("invalid ARCHIVE_MODE: %s (expected drive or channel)", config.ArchiveMode)
	}

	// Google credentials (required for Drive access and the Sheets consent log)
	config.GoogleCredentialsFile = os.Getenv("GOOGLE_CREDENTIALS_FILE")
	if config.GoogleCredentialsFile == "" && !config.UseMockStore {
		return nil, fmt.Errorf("GOOGLE_CREDENTIALS_FILE is required")
	}

	// Consent log backend (default: off)
	config.ConsentBackend = os.Getenv("CONSENT_BACKEND")
	if config.ConsentBackend == "" {
		config.ConsentBackend = ConsentBackendOff
	}
	switch config.ConsentBackend {
	case ConsentBackendOff:
	case ConsentBackendSheets:
		config.SpreadsheetID = os.Getenv("SPREADSHEET_ID")
		if config.SpreadsheetID == "" {
			return nil, fmt.Errorf("SPREADSHEET_ID is required when CONSENT_BACKEND is sheets")
		}
		config.ConsentSheet = os.Getenv("CONSENT_SHEET")
		if config.ConsentSheet == "" {
			config.ConsentSheet = "Sheet1"
		}
	case ConsentBackendClickHouse:
		config.ClickHouseHost = os.Getenv("CLICKHOUSE_HOST")
		if config.ClickHouseHost == "" {
			return nil, fmt.Errorf("CLICKHOUSE_HOST is required when CONSENT_BACKEND is clickhouse")
		}

		portStr := os.Getenv("CLICKHOUSE_PORT")
		if portStr == "" {
			config.ClickHousePort = 9000 // Default ClickHouse native port
		} else {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return nil, fmt.Errorf("invalid CLICKHOUSE_PORT: %w", err)
			}
			config.ClickHousePort = port
		}

		config.ClickHouseDatabase = os.Getenv("CLICKHOUSE_DATABASE")
		if config.ClickHouseDatabase == "" {
			config.ClickHouseDatabase = "default"
		}

		config.ClickHouseUser = os.Getenv("CLICKHOUSE_USER")
		if config.ClickHouseUser == "" {
			config.ClickHouseUser = "default"
		}

		config.ClickHousePassword = os.Getenv("CLICKHOUSE_PASSWORD")
		// Password is optional, can be empty

		config.ClickHouseUseTLS = os.Getenv("CLICKHOUSE_USE_TLS") == "true"
	default:
		return nil, fmt.Errorf("invalid CONSENT_BACKEND: %s (expected sheets, clickhouse or off)", config.ConsentBackend)
	}

	// Session store backend (default: memory)
	config.SessionBackend = os.Getenv("SESSION_BACKEND")
	if config.SessionBackend == "" {
		config.SessionBackend = SessionBackendMemory
	}
	switch config.SessionBackend {
	case SessionBackendMemory:
	case SessionBackendRedis:
		config.RedisAddr = os.Getenv("REDIS_ADDR")
		if config.RedisAddr == "" {
			config.RedisAddr = "localhost:6379"
		}
	default:
		return nil, fmt.Errorf("invalid SESSION_BACKEND: %s (expected memory or redis)", config.SessionBackend)
	}

	return config, nil
}
