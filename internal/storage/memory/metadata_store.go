package memory

import (
	"context"
	"sync"

	"fate-rewards-indexer/internal/domain"
	"fate-rewards-indexer/internal/storage"
)

// MetadataStore is an in-memory implementation of storage.MetadataStore.
type MetadataStore struct {
	mu   sync.RWMutex
	meta *domain.RewardMetadata
}

// NewMetadataStore creates a new in-memory metadata store.
func NewMetadataStore() *MetadataStore {
	return &MetadataStore{}
}

// Get retrieves the singleton. Returns ErrNotFound before first save.
func (s *MetadataStore) Get(_ context.Context) (*domain.RewardMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.meta == nil {
		return nil, storage.ErrNotFound
	}

	cp := *s.meta
	return &cp, nil
}

// Save upserts the singleton.
func (s *MetadataStore) Save(_ context.Context, m *domain.RewardMetadata) error {
	if m == nil || m.ID != domain.MetadataID {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *m
	s.meta = &cp

	return nil
}

// Verify interface compliance at compile time.
var _ storage.MetadataStore = (*MetadataStore)(nil)
