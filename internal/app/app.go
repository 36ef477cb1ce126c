package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"scriptorium/internal/bot"
	"scriptorium/internal/config"
	"scriptorium/internal/consent"
	consentch "scriptorium/internal/consent/ch"
	consentsheets "scriptorium/internal/consent/sheets"
	"scriptorium/internal/filestore"
	"scriptorium/internal/filestore/gdrive"
	filestubs "scriptorium/internal/filestore/stubs"
	"scriptorium/internal/session"
	"scriptorium/internal/session/redisstore"
)

// App represents the application
type App struct {
	config   *config.Config
	logger   *zap.Logger
	files    filestore.Store
	sessions session.Store
	consents consent.Log
	bot      *bot.Bot
	server   *http.Server
}

// New creates and initializes a new application instance
func New() (*App, error) {
	// Load .env file if it exists
	envLoaded := godotenv.Load() == nil

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	if !envLoaded {
		logger.Info("No .env file found, using system environment variables")
	}

	// Load configuration from environment variables
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	app := &App{config: cfg, logger: logger}

	logger.Info("Starting Scriptorium bot...")

	if err := app.initFileStore(); err != nil {
		return nil, err
	}
	if err := app.initSessionStore(); err != nil {
		return nil, err
	}
	if err := app.initConsentLog(); err != nil {
		return nil, err
	}
	if err := app.initBot(); err != nil {
		return nil, err
	}
	app.initHTTPServer()

	return app, nil
}

// initFileStore initializes the text source / photo archive store
func (a *App) initFileStore() error {
	if a.config.UseMockStore {
		a.logger.Info("Using in-memory mock file store")
		mock := filestubs.NewMockStore()
		mock.AddText("sample-1", "sample1.txt", "Съешь же ещё этих мягких французских булок, да выпей чаю.")
		mock.AddText("sample-2", "sample2.txt", "В чащах юга жил бы цитрус? Да, но фальшивый экземпляр!")
		a.files = mock
		return nil
	}

	ctx := context.Background()
	store, err := gdrive.New(ctx, a.config.GoogleCredentialsFile, a.config.TextsFolderID, a.config.PhotosFolderID)
	if err != nil {
		return fmt.Errorf("failed to create drive store: %w", err)
	}

	a.logger.Info("Google Drive store ready",
		zap.String("texts_folder", a.config.TextsFolderID),
		zap.String("photos_folder", a.config.PhotosFolderID),
		zap.String("archive_mode", a.config.ArchiveMode),
	)
	a.files = store
	return nil
}

// initSessionStore initializes the contributor session tracker
func (a *App) initSessionStore() error {
	if a.config.SessionBackend == config.SessionBackendRedis {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		store, err := redisstore.New(ctx, a.config.RedisAddr)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.logger.Info("Redis session store ready", zap.String("addr", a.config.RedisAddr))
		a.sessions = store
		return nil
	}

	a.logger.Info("Using in-memory session store")
	a.sessions = session.NewMemoryStore()
	return nil
}

// initConsentLog initializes the consent log backend, if any
func (a *App) initConsentLog() error {
	switch a.config.ConsentBackend {
	case config.ConsentBackendOff:
		a.logger.Info("Consent capture disabled")
		return nil

	case config.ConsentBackendSheets:
		ctx := context.Background()
		log, err := consentsheets.New(ctx, a.config.GoogleCredentialsFile, a.config.SpreadsheetID, a.config.ConsentSheet)
		if err != nil {
			return fmt.Errorf("failed to create sheets consent log: %w", err)
		}
		a.logger.Info("Sheets consent log ready",
			zap.String("spreadsheet_id", a.config.SpreadsheetID),
			zap.String("sheet", a.config.ConsentSheet),
		)
		a.consents = log
		return nil

	case config.ConsentBackendClickHouse:
		tlsStatus := "without TLS"
		if a.config.ClickHouseUseTLS {
			tlsStatus = "with TLS"
		}
		a.logger.Info("Connecting to ClickHouse",
			zap.String("host", a.config.ClickHouseHost),
			zap.Int("port", a.config.ClickHousePort),
			zap.String("database", a.config.ClickHouseDatabase),
			zap.String("user", a.config.ClickHouseUser),
			zap.String("tls", tlsStatus),
		)
		log, err := consentch.New(
			a.config.ClickHouseHost,
			a.config.ClickHousePort,
			a.config.ClickHouseDatabase,
			a.config.ClickHouseUser,
			a.config.ClickHousePassword,
			a.config.ClickHouseUseTLS,
		)
		if err != nil {
			return fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		a.consents = log
		return nil
	}
	return nil
}

// initBot initializes the Telegram bot
func (a *App) initBot() error {
	opts := bot.Options{
		AdminUserIDs: a.config.AdminUserIDs,
	}
	if a.config.ArchiveMode == config.ArchiveModeChannel {
		opts.ArchiveChannelID = a.config.ArchiveChannelID
	}

	telegramBot, err := bot.NewBot(a.config.TelegramToken, a.files, a.sessions, a.consents, opts, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	a.logger.Info("Bot created successfully")

	a.bot = telegramBot
	return nil
}

// initHTTPServer initializes the HTTP server for health checks, the
// webhook endpoint and the admin API
func (a *App) initHTTPServer() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080" // Default port
	}

	mux := http.NewServeMux()

	// Health check endpoint
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	})

	// Root endpoint
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		mode := "polling"
		if a.config.WebhookMode {
			mode = "webhook"
		}
		fmt.Fprintf(w, "Scriptorium bot is running (mode: %s)", mode)
	})

	// Webhook endpoint (only used in webhook mode)
	mux.HandleFunc("/telegram-webhook", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		var update tgbotapi.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			a.logger.Warn("Error decoding webhook update", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		// Process update in background to respond quickly to Telegram
		go a.bot.HandleWebhookUpdate(update)

		w.WriteHeader(http.StatusOK)
	})

	// Admin API
	adminServer := bot.NewHTTPServer(a.bot, a.config.WebhookMode)
	adminServer.RegisterRoutes(mux)

	a.server = &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	// Start HTTP server in background
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("port", port))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()
}

// Run starts the application and blocks until shutdown
func (a *App) Run() error {
	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start bot in appropriate mode
	if a.config.WebhookMode {
		// Webhook mode: configure webhook and wait for HTTP requests
		a.logger.Info("Starting bot in WEBHOOK mode", zap.String("webhook_url", a.config.WebhookURL))
		if err := a.bot.StartWebhook(a.config.WebhookURL); err != nil {
			return fmt.Errorf("failed to setup webhook: %w", err)
		}
	} else {
		// Polling mode: actively poll Telegram servers
		go func() {
			a.logger.Info("Starting bot in POLLING mode...")
			if err := a.bot.Start(); err != nil {
				a.logger.Fatal("Failed to start bot", zap.Error(err))
			}
		}()
	}

	// Wait for interrupt signal
	<-sigChan

	a.logger.Info("Shutting down...")
	return a.Shutdown()
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown() error {
	// Shutdown HTTP server gracefully
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	// Close backends
	if a.consents != nil {
		if err := a.consents.Close(); err != nil {
			a.logger.Warn("Error closing consent log", zap.Error(err))
		}
	}
	if err := a.sessions.Close(); err != nil {
		a.logger.Warn("Error closing session store", zap.Error(err))
	}

	a.logger.Info("Shutdown complete")
	return nil
}
