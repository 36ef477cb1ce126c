package stubs

import (
	"context"
	"sync"

	"scriptorium/internal/models"
)

// MockLog is an in-memory consent log for tests
type MockLog struct {
	mu      sync.RWMutex
	records []models.ConsentRecord

	// FailAppends makes Append return this error when set
	FailAppends error
}

// NewMockLog creates an empty mock consent log
func NewMockLog() *MockLog {
	return &MockLog{}
}

// Append records one consent row in memory
func (m *MockLog) Append(ctx context.Context, rec models.ConsentRecord) error {
	if m.FailAppends != nil {
		return m.FailAppends
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = append(m.records, rec)
	return nil
}

// Recent returns up to limit rows, newest first
func (m *MockLog) Recent(ctx context.Context, limit int) ([]models.ConsentRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := len(m.records)
	if limit > n {
		limit = n
	}
	out := make([]models.ConsentRecord, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, m.records[i])
	}
	return out, nil
}

// Records returns a copy of all appended rows
func (m *MockLog) Records() []models.ConsentRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.ConsentRecord, len(m.records))
	copy(out, m.records)
	return out
}

// Close does nothing for the mock log
func (m *MockLog) Close() error {
	return nil
}
