package memory

import (
	"context"
	"sync"

	"fate-rewards-indexer/internal/domain"
	"fate-rewards-indexer/internal/storage"
)

// TransactionStore is an in-memory implementation of storage.TransactionStore.
type TransactionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Transaction
}

// NewTransactionStore creates a new in-memory transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{data: make(map[string]*domain.Transaction)}
}

// Insert adds a transaction. Returns ErrDuplicateKey if the hash exists.
func (s *TransactionStore) Insert(_ context.Context, tx *domain.Transaction) error {
	if tx == nil || tx.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[tx.ID]; ok {
		return storage.ErrDuplicateKey
	}

	// Store a copy
	cp := *tx
	s.data[tx.ID] = &cp

	return nil
}

// GetByHash retrieves a transaction by hash. Returns ErrNotFound if absent.
func (s *TransactionStore) GetByHash(_ context.Context, hash string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.data[hash]
	if !ok {
		return nil, storage.ErrNotFound
	}

	cp := *tx
	return &cp, nil
}

// Verify interface compliance at compile time.
var _ storage.TransactionStore = (*TransactionStore)(nil)
