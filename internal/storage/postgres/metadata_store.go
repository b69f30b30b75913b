package postgres

import (
	"context"
	"fmt"

	"fate-rewards-indexer/internal/domain"
	"fate-rewards-indexer/internal/storage"
)

// MetadataStore implements storage.MetadataStore using PostgreSQL.
type MetadataStore struct {
	pool *Pool
}

// NewMetadataStore creates a new MetadataStore.
func NewMetadataStore(pool *Pool) *MetadataStore {
	return &MetadataStore{pool: pool}
}

// Compile-time interface check.
var _ storage.MetadataStore = (*MetadataStore)(nil)

// Get retrieves the singleton. Returns ErrNotFound before first save.
func (s *MetadataStore) Get(ctx context.Context) (*domain.RewardMetadata, error) {
	query := `
		SELECT id, claim_count::text, fate_claimed::text, fate_claimed_usd::text, unique_users::text
		FROM reward_metadata
		WHERE id = $1
	`

	var m domain.RewardMetadata
	var countStr, fateStr, usdStr, usersStr string

	err := s.pool.QueryRow(ctx, query, domain.MetadataID).Scan(
		&m.ID, &countStr, &fateStr, &usdStr, &usersStr,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get reward metadata: %w", err)
	}

	if m.ClaimCount, err = parseBigInt(countStr); err != nil {
		return nil, err
	}
	if m.FateClaimed, err = parseDecimal(fateStr); err != nil {
		return nil, err
	}
	if m.FateClaimedUsd, err = parseDecimal(usdStr); err != nil {
		return nil, err
	}
	if m.NumberOfUniqueUsers, err = parseBigInt(usersStr); err != nil {
		return nil, err
	}
	return &m, nil
}

// Save upserts the singleton.
func (s *MetadataStore) Save(ctx context.Context, m *domain.RewardMetadata) error {
	query := `
		INSERT INTO reward_metadata (id, claim_count, fate_claimed, fate_claimed_usd, unique_users)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			claim_count = EXCLUDED.claim_count,
			fate_claimed = EXCLUDED.fate_claimed,
			fate_claimed_usd = EXCLUDED.fate_claimed_usd,
			unique_users = EXCLUDED.unique_users
	`

	_, err := s.pool.Exec(ctx, query,
		m.ID,
		m.ClaimCount.String(),
		m.FateClaimed.String(),
		m.FateClaimedUsd.String(),
		m.NumberOfUniqueUsers.String(),
	)
	if err != nil {
		return fmt.Errorf("save reward metadata: %w", err)
	}
	return nil
}
