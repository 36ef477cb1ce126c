package bot

import (
	"net/http"
	"sync"
	"sync/atomic"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"scriptorium/internal/consent"
	"scriptorium/internal/filestore"
	"scriptorium/internal/session"
)

// State identifies where a contributor is in the submission dialogue
type State int

const (
	// StateIdle means no dialogue is in progress
	StateIdle State = iota
	// StateAwaitingPhoto means a text was issued and the bot expects a photo
	StateAwaitingPhoto
	// StateAwaitingConsent means a photo was archived and the bot expects a yes/no tap
	StateAwaitingConsent
)

// Bot represents the Telegram bot wrapper
type Bot struct {
	api      *tgbotapi.BotAPI
	files    filestore.Store
	sessions session.Store
	consents consent.Log // nil when consent capture is disabled

	archiveChannelID int64 // when non-zero, photos go to this channel instead of the file store

	states   map[int64]State
	statesMu sync.RWMutex

	// One lock per user so a slow upload cannot interleave with a
	// concurrent /gettext from the same contributor. Events from
	// different users run concurrently.
	userLocks   map[int64]*sync.Mutex
	userLocksMu sync.Mutex

	adminUsers map[int64]bool

	photosArchived   atomic.Int64
	consentsRecorded atomic.Int64

	httpClient *http.Client
	logger     *zap.Logger
}

// state returns the user's current dialogue state
func (b *Bot) state(userID int64) State {
	b.statesMu.RLock()
	defer b.statesMu.RUnlock()
	return b.states[userID]
}

// setState moves the user to the given dialogue state
func (b *Bot) setState(userID int64, s State) {
	b.statesMu.Lock()
	defer b.statesMu.Unlock()
	if s == StateIdle {
		delete(b.states, userID)
		return
	}
	b.states[userID] = s
}

// activeStates counts users currently mid-dialogue
func (b *Bot) activeStates() int {
	b.statesMu.RLock()
	defer b.statesMu.RUnlock()
	return len(b.states)
}

// lockUser returns the mutex serializing this user's events
func (b *Bot) lockUser(userID int64) *sync.Mutex {
	b.userLocksMu.Lock()
	defer b.userLocksMu.Unlock()

	mu, ok := b.userLocks[userID]
	if !ok {
		mu = &sync.Mutex{}
		b.userLocks[userID] = mu
	}
	return mu
}
