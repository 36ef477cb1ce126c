package bot

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"scriptorium/internal/filestore"
	"scriptorium/internal/models"
)

// HTTPServer exposes a small admin API over the running bot
type HTTPServer struct {
	bot         *Bot
	webhookMode bool // If false (polling mode), skip authentication for easier local dev
}

// NewHTTPServer creates a new admin HTTP server
func NewHTTPServer(bot *Bot, webhookMode bool) *HTTPServer {
	return &HTTPServer{
		bot:         bot,
		webhookMode: webhookMode,
	}
}

// RegisterRoutes registers admin API routes on the provided mux
func (hs *HTTPServer) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/stats", hs.handleStats)
	mux.HandleFunc("/api/texts", hs.handleTexts)
	mux.HandleFunc("/api/consents", hs.handleConsents)
}

// validateTelegramInitData validates the Telegram Mini App initData
func (hs *HTTPServer) validateTelegramInitData(initData string) (int64, error) {
	if initData == "" {
		return 0, fmt.Errorf("missing initData")
	}

	// Parse the initData
	values, err := url.ParseQuery(initData)
	if err != nil {
		return 0, fmt.Errorf("invalid initData format: %w", err)
	}

	// Extract hash
	hash := values.Get("hash")
	if hash == "" {
		return 0, fmt.Errorf("missing hash in initData")
	}

	// Remove hash from values
	values.Del("hash")

	// Create data-check-string
	var keys []string
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var dataCheckString strings.Builder
	for i, k := range keys {
		if i > 0 {
			dataCheckString.WriteByte('\n')
		}
		dataCheckString.WriteString(k)
		dataCheckString.WriteByte('=')
		dataCheckString.WriteString(values.Get(k))
	}

	// Create secret key
	secretKey := hmac.New(sha256.New, []byte("WebAppData"))
	secretKey.Write([]byte(hs.bot.api.Token))
	secret := secretKey.Sum(nil)

	// Calculate hash
	h := hmac.New(sha256.New, secret)
	h.Write([]byte(dataCheckString.String()))
	calculatedHash := hex.EncodeToString(h.Sum(nil))

	// Verify hash
	if calculatedHash != hash {
		return 0, fmt.Errorf("invalid hash")
	}

	// Check auth_date (data should be recent, within 24 hours)
	authDateStr := values.Get("auth_date")
	if authDateStr == "" {
		return 0, fmt.Errorf("missing auth_date")
	}

	var authDate int64
	fmt.Sscanf(authDateStr, "%d", &authDate)
	if time.Now().Unix()-authDate > 86400 {
		return 0, fmt.Errorf("initData is too old")
	}

	// Extract user ID
	userStr := values.Get("user")
	if userStr == "" {
		return 0, fmt.Errorf("missing user data")
	}

	var userData struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal([]byte(userStr), &userData); err != nil {
		return 0, fmt.Errorf("invalid user data: %w", err)
	}

	// Check if user is an admin
	if !hs.bot.adminUsers[userData.ID] {
		return 0, fmt.Errorf("user is not an admin")
	}

	return userData.ID, nil
}

// authMiddleware validates Telegram Mini App authentication
// In polling mode (webhookMode=false), authentication is skipped for easier local development
func (hs *HTTPServer) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Skip authentication in polling mode (local development)
		if !hs.webhookMode {
			hs.bot.logger.Debug("Skipping authentication (polling mode)",
				zap.String("path", r.URL.Path),
				zap.String("remote_addr", r.RemoteAddr),
			)
			next(w, r)
			return
		}

		// Extract authorization header
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "tma ") {
			hs.bot.logger.Warn("Missing or invalid authorization header")
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}

		initData := strings.TrimPrefix(authHeader, "tma ")

		// Validate initData
		userID, err := hs.validateTelegramInitData(initData)
		if err != nil {
			hs.bot.logger.Warn("Failed to validate initData",
				zap.Error(err),
				zap.String("remote_addr", r.RemoteAddr),
			)
			http.Error(w, `{"error":"Unauthorized"}`, http.StatusUnauthorized)
			return
		}

		hs.bot.logger.Debug("Authenticated request",
			zap.Int64("user_id", userID),
			zap.String("path", r.URL.Path),
		)

		next(w, r)
	}
}

// StatsResponse reports process-level counters
type StatsResponse struct {
	ActiveDialogues  int   `json:"active_dialogues"`
	PhotosArchived   int64 `json:"photos_archived"`
	ConsentsRecorded int64 `json:"consents_recorded"`
}

// handleStats returns process-level counters
func (hs *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	hs.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, `{"error":"Method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}

		resp := StatsResponse{
			ActiveDialogues:  hs.bot.activeStates(),
			PhotosArchived:   hs.bot.photosArchived.Load(),
			ConsentsRecorded: hs.bot.consentsRecorded.Load(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	})(w, r)
}

// TextEntry is one distributable fragment in the source folder
type TextEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// handleTexts returns the list of distributable texts
func (hs *HTTPServer) handleTexts(w http.ResponseWriter, r *http.Request) {
	hs.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, `{"error":"Method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}

		texts, err := hs.bot.files.ListTexts(r.Context())
		if err != nil && !errors.Is(err, filestore.ErrNoTexts) {
			hs.bot.logger.Error("Failed to list texts", zap.Error(err))
			http.Error(w, `{"error":"Failed to fetch texts"}`, http.StatusInternalServerError)
			return
		}

		entries := make([]TextEntry, 0, len(texts))
		for _, t := range texts {
			entries = append(entries, TextEntry{Code: DeriveCode(t.Name), Name: t.Name})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	})(w, r)
}

// consentReader is the read-back capability some consent log backends
// offer. The Sheets backend has no read path; admins view the sheet
// directly.
type consentReader interface {
	Recent(ctx context.Context, limit int) ([]models.ConsentRecord, error)
}

const consentPageSize = 50

// ConsentEntry is one opt-in row as exposed by the admin API
type ConsentEntry struct {
	DisplayName string    `json:"display_name"`
	Timestamp   time.Time `json:"timestamp"`
}

// handleConsents returns the most recent opt-in rows, newest first
func (hs *HTTPServer) handleConsents(w http.ResponseWriter, r *http.Request) {
	hs.authMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, `{"error":"Method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}

		reader, ok := hs.bot.consents.(consentReader)
		if !ok {
			http.Error(w, `{"error":"Consent log is not readable"}`, http.StatusNotFound)
			return
		}

		records, err := reader.Recent(r.Context(), consentPageSize)
		if err != nil {
			hs.bot.logger.Error("Failed to read consent log", zap.Error(err))
			http.Error(w, `{"error":"Failed to fetch consents"}`, http.StatusInternalServerError)
			return
		}

		entries := make([]ConsentEntry, 0, len(records))
		for _, rec := range records {
			entries = append(entries, ConsentEntry{DisplayName: rec.DisplayName, Timestamp: rec.Timestamp})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)
	})(w, r)
}
