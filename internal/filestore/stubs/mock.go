package stubs

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"

	"scriptorium/internal/filestore"
	"scriptorium/internal/models"
)

// MockStore is an in-memory implementation of filestore.Store for tests
// and local development
type MockStore struct {
	mu     sync.RWMutex
	texts  map[string]string // file ID -> content
	names  map[string]string // file ID -> name
	photos map[string][]byte // archive name -> bytes

	listCalls int

	// FailUploads makes SavePhoto return this error when set
	FailUploads error
}

// NewMockStore creates an empty mock file store
func NewMockStore() *MockStore {
	return &MockStore{
		texts:  make(map[string]string),
		names:  make(map[string]string),
		photos: make(map[string][]byte),
	}
}

// AddText registers a text file with the given ID, name and content
func (m *MockStore) AddText(id, name, content string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.texts[id] = content
	m.names[id] = name
}

// ListTexts returns all registered text files sorted by name
func (m *MockStore) ListTexts(ctx context.Context) ([]models.TextFile, error) {
	m.mu.Lock()
	m.listCalls++
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	var texts []models.TextFile
	for id, name := range m.names {
		texts = append(texts, models.TextFile{ID: id, Name: name})
	}
	sort.Slice(texts, func(i, j int) bool {
		return texts[i].Name < texts[j].Name
	})

	if len(texts) == 0 {
		return nil, filestore.ErrNoTexts
	}
	return texts, nil
}

// Fetch returns the content of the given text file
func (m *MockStore) Fetch(ctx context.Context, fileID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	content, ok := m.texts[fileID]
	if !ok {
		return nil, filestore.ErrNoTexts
	}
	return []byte(content), nil
}

// CountMatching counts archived photos whose name contains substr
func (m *MockStore) CountMatching(ctx context.Context, substr string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for name := range m.photos {
		if strings.Contains(name, substr) {
			count++
		}
	}
	return count, nil
}

// SavePhoto stores an archive entry in memory
func (m *MockStore) SavePhoto(ctx context.Context, name string, r io.Reader) error {
	if m.FailUploads != nil {
		return m.FailUploads
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.photos[name] = data
	return nil
}

// Photos returns the archived entry names sorted alphabetically
func (m *MockStore) Photos() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name := range m.photos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ListCalls reports how often ListTexts was invoked
func (m *MockStore) ListCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listCalls
}

// Photo returns the stored bytes for an archive entry
func (m *MockStore) Photo(name string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.photos[name]
	return data, ok
}
