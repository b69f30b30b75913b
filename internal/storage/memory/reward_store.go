package memory

import (
	"context"
	"sync"

	"fate-rewards-indexer/internal/domain"
	"fate-rewards-indexer/internal/storage"
)

// RewardByPoolStore is an in-memory implementation of storage.RewardByPoolStore.
type RewardByPoolStore struct {
	mu   sync.RWMutex
	data map[string]*domain.UserEpochTotalLockedRewardByPool
}

// NewRewardByPoolStore creates a new in-memory per-pool aggregate store.
func NewRewardByPoolStore() *RewardByPoolStore {
	return &RewardByPoolStore{data: make(map[string]*domain.UserEpochTotalLockedRewardByPool)}
}

// Get retrieves an aggregate by id. Returns ErrNotFound if absent.
func (s *RewardByPoolStore) Get(_ context.Context, id string) (*domain.UserEpochTotalLockedRewardByPool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	cp := *r
	return &cp, nil
}

// Save upserts an aggregate by id.
func (s *RewardByPoolStore) Save(_ context.Context, r *domain.UserEpochTotalLockedRewardByPool) error {
	if r == nil || r.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	s.data[r.ID] = &cp

	return nil
}

// Verify interface compliance at compile time.
var _ storage.RewardByPoolStore = (*RewardByPoolStore)(nil)

// RewardStore is an in-memory implementation of storage.RewardStore.
type RewardStore struct {
	mu   sync.RWMutex
	data map[string]*domain.UserEpochTotalLockedReward
}

// NewRewardStore creates a new in-memory rollup aggregate store.
func NewRewardStore() *RewardStore {
	return &RewardStore{data: make(map[string]*domain.UserEpochTotalLockedReward)}
}

// Get retrieves an aggregate by id. Returns ErrNotFound if absent.
func (s *RewardStore) Get(_ context.Context, id string) (*domain.UserEpochTotalLockedReward, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	cp := *r
	return &cp, nil
}

// Save upserts an aggregate by id.
func (s *RewardStore) Save(_ context.Context, r *domain.UserEpochTotalLockedReward) error {
	if r == nil || r.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	s.data[r.ID] = &cp

	return nil
}

// Verify interface compliance at compile time.
var _ storage.RewardStore = (*RewardStore)(nil)
