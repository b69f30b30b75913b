package memory

import (
	"context"
	"math/big"
	"sync"

	"fate-rewards-indexer/internal/storage"
)

// CheckpointStore is an in-memory implementation of storage.CheckpointStore.
type CheckpointStore struct {
	mu   sync.RWMutex
	data map[string]*big.Int
}

// NewCheckpointStore creates a new in-memory checkpoint store.
func NewCheckpointStore() *CheckpointStore {
	return &CheckpointStore{data: make(map[string]*big.Int)}
}

// Get retrieves the last processed block. Returns ErrNotFound if absent.
func (s *CheckpointStore) Get(_ context.Context, contract string) (*big.Int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.data[contract]
	if !ok {
		return nil, storage.ErrNotFound
	}

	return new(big.Int).Set(b), nil
}

// Put upserts the last processed block for a contract.
func (s *CheckpointStore) Put(_ context.Context, contract string, block *big.Int) error {
	if contract == "" || block == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[contract] = new(big.Int).Set(block)

	return nil
}

// Verify interface compliance at compile time.
var _ storage.CheckpointStore = (*CheckpointStore)(nil)
