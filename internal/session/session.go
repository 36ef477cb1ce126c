package session

import (
	"context"
	"sync"

	"scriptorium/internal/models"
)

// Store tracks which text code each contributor is currently assigned.
//
// Entries are never deleted: a new Assign overwrites the previous one
// and resets the photo counter. Lookup reports ok=false for users that
// never received a text.
type Store interface {
	Assign(ctx context.Context, userID int64, code string) error
	Lookup(ctx context.Context, userID int64) (models.Session, bool, error)
	Increment(ctx context.Context, userID int64) (int, error)

	Close() error
}

// MemoryStore is the in-process Store used in single-instance
// deployments. All sessions are lost on restart; users mid-flow have
// to request a new text.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]models.Session
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[int64]models.Session),
	}
}

// Assign sets or overwrites the user's session and resets the photo counter
func (s *MemoryStore) Assign(ctx context.Context, userID int64, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[userID] = models.Session{AssignedCode: code}
	return nil
}

// Lookup returns the user's current session, if any
func (s *MemoryStore) Lookup(ctx context.Context, userID int64) (models.Session, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[userID]
	return sess, ok, nil
}

// Increment bumps the user's photo counter and returns the new value
func (s *MemoryStore) Increment(ctx context.Context, userID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.sessions[userID]
	sess.PhotoCount++
	s.sessions[userID] = sess
	return sess.PhotoCount, nil
}

// Close does nothing for the in-memory store
func (s *MemoryStore) Close() error {
	return nil
}
