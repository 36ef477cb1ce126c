package bot

import (
	"context"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// handlerTimeout bounds every external call made while handling one
// update; a hung remote call must not stall the conversation forever
const handlerTimeout = 45 * time.Second

const (
	awaitingPhotoText = "Я жду фотографию рукописного текста. Пожалуйста, отправьте фото."
	idleHintText      = "Отправьте /gettext, чтобы получить текст для переписывания."
)

// handleMessage processes a single message
func (b *Bot) handleMessage(message *tgbotapi.Message) {
	// Recover from panics to prevent bot crashes
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleMessage", zap.Any("panic", r))
			msg := tgbotapi.NewMessage(message.Chat.ID, errorText)
			b.sendMessage(msg)
		}
	}()

	if message.From == nil {
		return
	}
	userID := message.From.ID

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	// Handle commands. /start and /gettext replace the current
	// dialogue; an unrecognized command leaves it untouched so a typo
	// does not lose the user's place.
	if message.IsCommand() {
		switch message.Command() {
		case "start":
			b.handleStart(message)
		case "gettext":
			b.handleGetText(ctx, message)
		default:
			msg := tgbotapi.NewMessage(message.Chat.ID, "Неизвестная команда. Отправьте /start, чтобы начать.")
			b.sendMessage(msg)
		}
		return
	}

	// A photo is handled wherever a session exists; the archiver
	// itself rejects users that never requested a text
	if len(message.Photo) > 0 {
		b.handlePhoto(ctx, message)
		return
	}

	// Non-photo, non-command message: re-prompt according to state
	switch b.state(userID) {
	case StateAwaitingPhoto:
		msg := tgbotapi.NewMessage(message.Chat.ID, awaitingPhotoText)
		b.sendMessage(msg)
	case StateAwaitingConsent:
		b.sendConsentPrompt(message.Chat.ID)
	default:
		msg := tgbotapi.NewMessage(message.Chat.ID, idleHintText)
		b.sendMessage(msg)
	}
}

// handleCallbackQuery processes inline keyboard button taps
func (b *Bot) handleCallbackQuery(query *tgbotapi.CallbackQuery) {
	// Recover from panics
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Recovered from panic in handleCallbackQuery", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), handlerTimeout)
	defer cancel()

	// Answer the callback query to remove the loading state
	if b.api != nil {
		callback := tgbotapi.NewCallback(query.ID, "")
		b.api.Request(callback)
	}

	if strings.HasPrefix(query.Data, consentCallbackPrefix) {
		b.handleConsentCallback(ctx, query)
	}
}
