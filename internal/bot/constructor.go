package bot

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"scriptorium/internal/consent"
	"scriptorium/internal/filestore"
	"scriptorium/internal/session"
)

// Options configures optional bot behavior
type Options struct {
	// ArchiveChannelID routes archived photos to a Telegram channel
	// instead of the file store when non-zero
	ArchiveChannelID int64
	// AdminUserIDs may call the admin HTTP API
	AdminUserIDs []int64
}

// NewBot creates a new Telegram bot
func NewBot(token string, files filestore.Store, sessions session.Store, consents consent.Log, opts Options, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		logger.Error("Failed to create bot API", zap.Error(err))
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	adminUsers := make(map[int64]bool)
	for _, id := range opts.AdminUserIDs {
		adminUsers[id] = true
	}

	logger.Info("Bot created", zap.String("bot_username", api.Self.UserName))

	return &Bot{
		api:              api,
		files:            files,
		sessions:         sessions,
		consents:         consents,
		archiveChannelID: opts.ArchiveChannelID,
		states:           make(map[int64]State),
		userLocks:        make(map[int64]*sync.Mutex),
		adminUsers:       adminUsers,
		httpClient:       &http.Client{Timeout: 30 * time.Second},
		logger:           logger,
	}, nil
}

// GetAPI returns the bot API for testing
func (b *Bot) GetAPI() *tgbotapi.BotAPI {
	return b.api
}
