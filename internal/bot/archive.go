package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"scriptorium/internal/retry"
)

// maxDownloadBytes caps how large a photo the bot is willing to pull
// from Telegram
const maxDownloadBytes = 20 << 20

const (
	noSessionText = "Сначала получите текст командой /gettext."
	archivedText  = "Фото получено, спасибо! Можно прислать ещё одно или взять новый текст: /gettext."
)

// handlePhoto archives a handwriting photo against the user's session
func (b *Bot) handlePhoto(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	sess, ok, err := b.sessions.Lookup(ctx, userID)
	if err != nil {
		b.logger.Error("Failed to look up session",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, errorText))
		return
	}
	if !ok {
		b.setState(userID, StateIdle)
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, noSessionText))
		return
	}

	// The transport offers several resolutions; archive the largest
	photo := message.Photo[len(message.Photo)-1]

	data, err := b.downloadPhoto(ctx, photo.FileID)
	if err != nil {
		b.logger.Error("Failed to download photo from Telegram",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("file_id", photo.FileID),
		)
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, errorText))
		return
	}

	name, err := b.archivePhoto(ctx, userID, sess.AssignedCode, data)
	if err != nil {
		b.logger.Error("Failed to archive photo",
			zap.Error(err),
			zap.Int64("user_id", userID),
			zap.String("code", sess.AssignedCode),
		)
		// Stay in the photo-waiting state so the user can simply resend
		b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, errorText))
		return
	}

	b.logger.Info("Photo archived",
		zap.Int64("user_id", userID),
		zap.String("name", name),
	)

	b.sendMessage(tgbotapi.NewMessage(message.Chat.ID, archivedText))

	if b.consents != nil {
		b.setState(userID, StateAwaitingConsent)
		b.sendConsentPrompt(message.Chat.ID)
		return
	}
	b.setState(userID, StateIdle)
}

// archivePhoto persists one photo under a duplicate-safe name and
// returns that name. The payload is buffered to a temp file which is
// removed whether or not the transfer succeeds.
func (b *Bot) archivePhoto(ctx context.Context, userID int64, code string, data []byte) (string, error) {
	tmpPath := filepath.Join(os.TempDir(), uuid.NewString()+".jpg")
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return "", fmt.Errorf("failed to buffer photo: %w", err)
	}
	defer os.Remove(tmpPath)

	suffix, err := b.nextSuffix(ctx, userID, code)
	if err != nil {
		return "", err
	}
	name := ArchiveName(code, suffix)

	if b.archiveChannelID != 0 {
		err = b.sendToArchiveChannel(name, tmpPath)
	} else {
		err = retry.Do(ctx, func() error {
			f, openErr := os.Open(tmpPath)
			if openErr != nil {
				return openErr
			}
			defer f.Close()
			return b.files.SavePhoto(ctx, name, f)
		})
	}
	if err != nil {
		return "", err
	}

	if _, err := b.sessions.Increment(ctx, userID); err != nil {
		b.logger.Warn("Failed to increment photo counter",
			zap.Error(err),
			zap.Int64("user_id", userID),
		)
	}
	b.photosArchived.Add(1)

	return name, nil
}

// nextSuffix picks the 1-based disambiguator for the next archive
// entry. The file store destination queries the archive itself, which
// survives restarts and multi-instance deployment; the channel
// destination has no listing API and falls back to the session counter.
func (b *Bot) nextSuffix(ctx context.Context, userID int64, code string) (int, error) {
	if b.archiveChannelID != 0 {
		sess, _, err := b.sessions.Lookup(ctx, userID)
		if err != nil {
			return 0, fmt.Errorf("failed to read photo counter: %w", err)
		}
		return sess.PhotoCount + 1, nil
	}

	var count int
	err := retry.Do(ctx, func() error {
		var countErr error
		count, countErr = b.files.CountMatching(ctx, code)
		return countErr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count archive entries: %w", err)
	}
	return count + 1, nil
}

// sendToArchiveChannel posts the photo into the archive channel with
// the archive name as the caption
func (b *Bot) sendToArchiveChannel(name, path string) error {
	if b.api == nil {
		return fmt.Errorf("bot API not initialised")
	}

	msg := tgbotapi.NewPhoto(b.archiveChannelID, tgbotapi.FilePath(path))
	msg.Caption = name
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to post photo to archive channel: %w", err)
	}
	return nil
}

// downloadPhoto fetches the raw photo bytes from the Telegram file API
func (b *Bot) downloadPhoto(ctx context.Context, fileID string) ([]byte, error) {
	if b.api == nil {
		return nil, fmt.Errorf("bot API not initialised")
	}

	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("getFile call: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(b.api.Token), nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download photo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("download status %d: %s", resp.StatusCode, string(body))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read photo data: %w", err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("photo exceeds %d bytes", maxDownloadBytes)
	}
	return data, nil
}
