package memory

import (
	"context"
	"sync"

	"fate-rewards-indexer/internal/domain"
	"fate-rewards-indexer/internal/storage"
)

// StartBlockStore is an in-memory implementation of storage.StartBlockStore.
type StartBlockStore struct {
	mu   sync.RWMutex
	data map[string]*domain.StartBlock
}

// NewStartBlockStore creates a new in-memory start-block store.
func NewStartBlockStore() *StartBlockStore {
	return &StartBlockStore{data: make(map[string]*domain.StartBlock)}
}

// Get retrieves the cached start block. Returns ErrNotFound if absent.
func (s *StartBlockStore) Get(_ context.Context, address string) (*domain.StartBlock, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sb, ok := s.data[address]
	if !ok {
		return nil, storage.ErrNotFound
	}

	cp := *sb
	return &cp, nil
}

// Put persists a start block. Last-writer-wins; the value is immutable at
// the source, so concurrent writers converge.
func (s *StartBlockStore) Put(_ context.Context, sb *domain.StartBlock) error {
	if sb == nil || sb.ID == "" || sb.StartBlock == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *sb
	s.data[sb.ID] = &cp

	return nil
}

// Verify interface compliance at compile time.
var _ storage.StartBlockStore = (*StartBlockStore)(nil)
