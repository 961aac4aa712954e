// mock_store.go - In-memory record store for testing
package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/barcode-generator/backend/internal/models"
	"github.com/barcode-generator/backend/internal/store"
)

// MockRecordStore implements store.RecordStore for testing
type MockRecordStore struct {
	mu      sync.RWMutex
	records map[string]*models.Barcode
	nextID  int

	// InsertErr, when set, makes Insert fail. Used to exercise the
	// orphan-file path in the generate handler.
	InsertErr error
}

// NewMockRecordStore creates an empty in-memory record store
func NewMockRecordStore() *MockRecordStore {
	return &MockRecordStore{
		records: make(map[string]*models.Barcode),
	}
}

func (m *MockRecordStore) Insert(ctx context.Context, rec *models.Barcode) (string, error) {
	if m.InsertErr != nil {
		return "", m.InsertErr
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := fmt.Sprintf("test-id-%d", m.nextID)

	stored := *rec
	stored.ID = id
	m.records[id] = &stored

	rec.ID = id
	return id, nil
}

func (m *MockRecordStore) FindByID(ctx context.Context, id string) (*models.Barcode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[id]
	if !ok {
		return nil, store.ErrNotFound
	}

	cp := *rec
	return &cp, nil
}

func (m *MockRecordStore) IncrementUsage(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok {
		return store.ErrNotFound
	}
	rec.UsageCount++
	return nil
}

func (m *MockRecordStore) Ping(ctx context.Context) error { return nil }

func (m *MockRecordStore) Close(ctx context.Context) error { return nil }

// UsageCount returns the stored usage counter for a record id.
func (m *MockRecordStore) UsageCount(id string) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if rec, ok := m.records[id]; ok {
		return rec.UsageCount
	}
	return 0
}
