package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"scriptorium/internal/models"
	"scriptorium/internal/retry"
)

const consentCallbackPrefix = "consent:"

const (
	consentPromptText = "Хотите получить уведомление, когда проект будет завершён?"
	consentYesText    = "Спасибо! Мы сообщим вам, когда проект будет готов."
	consentNoText     = "Хорошо, спасибо за участие!"
)

// sendConsentPrompt shows the yes/no opt-in keyboard
func (b *Bot) sendConsentPrompt(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, consentPromptText)
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Да", consentCallbackPrefix+"yes"),
			tgbotapi.NewInlineKeyboardButtonData("Нет", consentCallbackPrefix+"no"),
		),
	)
	b.sendMessage(msg)
}

// handleConsentCallback records an explicit opt-in and closes the
// dialogue. A negative tap writes nothing.
func (b *Bot) handleConsentCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	userID := query.From.ID

	// Telegram omits Message on callbacks against messages too old to
	// reference; without a chat to reply into the tap is ignored
	if query.Message == nil {
		b.logger.Warn("Ignoring stale consent callback", zap.Int64("user_id", userID))
		return
	}
	chatID := query.Message.Chat.ID
	choice := strings.TrimPrefix(query.Data, consentCallbackPrefix)

	if choice != "yes" {
		b.setState(userID, StateIdle)
		b.sendMessage(tgbotapi.NewMessage(chatID, consentNoText))
		return
	}

	if b.consents == nil {
		b.setState(userID, StateIdle)
		return
	}

	rec := models.ConsentRecord{
		DisplayName: displayName(query.From),
		Timestamp:   time.Now().UTC(),
	}

	err := retry.Do(ctx, func() error {
		return b.consents.Append(ctx, rec)
	})
	if err != nil {
		b.logger.Error("Failed to append consent record",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("display_name", rec.DisplayName),
		)
		// Keep the consent state so another tap can retry
		b.sendMessage(tgbotapi.NewMessage(chatID, errorText))
		return
	}

	b.consentsRecorded.Add(1)
	b.logger.Info("Consent recorded",
		zap.Int64("user_id", userID),
		zap.String("display_name", rec.DisplayName),
	)

	b.setState(userID, StateIdle)
	b.sendMessage(tgbotapi.NewMessage(chatID, consentYesText))
}

// displayName returns the contributor's handle, or an id-based
// fallback when no username is set
func displayName(user *tgbotapi.User) string {
	if user.UserName != "" {
		return user.UserName
	}
	return fmt.Sprintf("id_%d", user.ID)
}
