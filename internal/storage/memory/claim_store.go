package memory

import (
	"context"
	"sort"
	"sync"

	"fate-rewards-indexer/internal/domain"
	"fate-rewards-indexer/internal/storage"
)

// ClaimStore is an in-memory implementation of storage.ClaimStore.
type ClaimStore struct {
	mu   sync.RWMutex
	data []*domain.Claim
	keys map[string]bool
}

// NewClaimStore creates a new in-memory claim store.
func NewClaimStore() *ClaimStore {
	return &ClaimStore{
		data: make([]*domain.Claim, 0),
		keys: make(map[string]bool),
	}
}

// Insert adds a claim. Returns ErrDuplicateKey if (txHash, logIndex) exists.
func (s *ClaimStore) Insert(_ context.Context, c *domain.Claim) error {
	if c == nil || c.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.keys[c.ID] {
		return storage.ErrDuplicateKey
	}

	cp := *c
	s.data = append(s.data, &cp)
	s.keys[c.ID] = true

	return nil
}

// GetByID retrieves a claim by id. Returns ErrNotFound if absent.
func (s *ClaimStore) GetByID(_ context.Context, id string) (*domain.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.data {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}

	return nil, storage.ErrNotFound
}

// GetByUser retrieves all claims for a user, ordered by timestamp ASC.
func (s *ClaimStore) GetByUser(_ context.Context, user string) ([]*domain.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Claim
	for _, c := range s.data {
		if c.User == user {
			cp := *c
			result = append(result, &cp)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Timestamp != result[j].Timestamp {
			return result[i].Timestamp < result[j].Timestamp
		}
		return result[i].ID < result[j].ID
	})

	return result, nil
}

// Verify interface compliance at compile time.
var _ storage.ClaimStore = (*ClaimStore)(nil)
