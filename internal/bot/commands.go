package bot

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"scriptorium/internal/filestore"
	"scriptorium/internal/models"
	"scriptorium/internal/retry"
)

const (
	welcomeText = `Привет! Я собираю образцы рукописного текста.

Отправьте /gettext, чтобы получить фрагмент. Перепишите его от руки и пришлите фотографию — я сохраню её в архив проекта.`

	noTextsText     = "К сожалению, сейчас нет доступных текстов. Попробуйте позже."
	photoPromptText = "Перепишите текст от руки и пришлите фотографию."
	errorText       = "Что-то пошло не так. Попробуйте ещё раз."
)

// handleStart resets the dialogue and shows the welcome message
func (b *Bot) handleStart(message *tgbotapi.Message) {
	b.setState(message.From.ID, StateIdle)

	msg := tgbotapi.NewMessage(message.Chat.ID, welcomeText)
	b.sendMessage(msg)
}

// handleGetText issues a random text fragment and opens a submission
func (b *Bot) handleGetText(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	var texts []models.TextFile
	err := retry.Do(ctx, func() error {
		var listErr error
		texts, listErr = b.files.ListTexts(ctx)
		return listErr
	})
	if errors.Is(err, filestore.ErrNoTexts) {
		b.setState(userID, StateIdle)
		msg := tgbotapi.NewMessage(message.Chat.ID, noTextsText)
		b.sendMessage(msg)
		return
	}
	if err != nil {
		b.logger.Error("Failed to list texts",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		msg := tgbotapi.NewMessage(message.Chat.ID, errorText)
		b.sendMessage(msg)
		return
	}

	chosen := ChooseText(texts)

	var content []byte
	err = retry.Do(ctx, func() error {
		var fetchErr error
		content, fetchErr = b.files.Fetch(ctx, chosen.ID)
		return fetchErr
	})
	if err != nil {
		b.logger.Error("Failed to fetch text",
			zap.Error(err),
			zap.String("file_id", chosen.ID),
			zap.Int64("user_id", userID),
		)
		msg := tgbotapi.NewMessage(message.Chat.ID, errorText)
		b.sendMessage(msg)
		return
	}

	code := DeriveCode(chosen.Name)
	if err := b.sessions.Assign(ctx, userID, code); err != nil {
		b.logger.Error("Failed to assign session",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("code", code),
		)
		msg := tgbotapi.NewMessage(message.Chat.ID, errorText)
		b.sendMessage(msg)
		return
	}
	b.setState(userID, StateAwaitingPhoto)

	b.logger.Info("Text issued",
		zap.Int64("user_id", userID),
		zap.String("code", code),
	)

	b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, IssueMessage(string(content), code)))
	b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, photoPromptText))
}
