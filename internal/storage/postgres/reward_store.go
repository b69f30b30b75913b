package postgres

import (
	"context"
	"fmt"

	"fate-rewards-indexer/internal/domain"
	"fate-rewards-indexer/internal/storage"
)

// RewardByPoolStore implements storage.RewardByPoolStore using PostgreSQL.
type RewardByPoolStore struct {
	pool *Pool
}

// NewRewardByPoolStore creates a new RewardByPoolStore.
func NewRewardByPoolStore(pool *Pool) *RewardByPoolStore {
	return &RewardByPoolStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RewardByPoolStore = (*RewardByPoolStore)(nil)

// Get retrieves a (user, pool, epoch) aggregate by id.
func (s *RewardByPoolStore) Get(ctx context.Context, id string) (*domain.UserEpochTotalLockedRewardByPool, error) {
	query := `
		SELECT id, user_address, pool_id::text, epoch, amount_fate::text, amount_usd::text
		FROM reward_by_pool
		WHERE id = $1
	`

	var r domain.UserEpochTotalLockedRewardByPool
	var poolStr, fateStr, usdStr string

	err := s.pool.QueryRow(ctx, query, id).Scan(
		&r.ID, &r.User, &poolStr, &r.Epoch, &fateStr, &usdStr,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get reward by pool: %w", err)
	}

	if r.PoolID, err = parseBigInt(poolStr); err != nil {
		return nil, err
	}
	if r.AmountFate, err = parseDecimal(fateStr); err != nil {
		return nil, err
	}
	if r.AmountUSD, err = parseDecimal(usdStr); err != nil {
		return nil, err
	}
	return &r, nil
}

// Save upserts a (user, pool, epoch) aggregate.
func (s *RewardByPoolStore) Save(ctx context.Context, r *domain.UserEpochTotalLockedRewardByPool) error {
	query := `
		INSERT INTO reward_by_pool (id, user_address, pool_id, epoch, amount_fate, amount_usd)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			amount_fate = EXCLUDED.amount_fate,
			amount_usd = EXCLUDED.amount_usd
	`

	_, err := s.pool.Exec(ctx, query,
		r.ID,
		r.User,
		r.PoolID.String(),
		r.Epoch,
		r.AmountFate.String(),
		r.AmountUSD.String(),
	)
	if err != nil {
		return fmt.Errorf("save reward by pool: %w", err)
	}
	return nil
}

// RewardStore implements storage.RewardStore using PostgreSQL.
type RewardStore struct {
	pool *Pool
}

// NewRewardStore creates a new RewardStore.
func NewRewardStore(pool *Pool) *RewardStore {
	return &RewardStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RewardStore = (*RewardStore)(nil)

// Get retrieves a (user, epoch) rollup aggregate by id.
func (s *RewardStore) Get(ctx context.Context, id string) (*domain.UserEpochTotalLockedReward, error) {
	query := `
		SELECT id, user_address, epoch, amount_fate::text, amount_usd::text
		FROM rewards
		WHERE id = $1
	`

	var r domain.UserEpochTotalLockedReward
	var fateStr, usdStr string

	err := s.pool.QueryRow(ctx, query, id).Scan(
		&r.ID, &r.User, &r.Epoch, &fateStr, &usdStr,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get reward: %w", err)
	}

	if r.AmountFate, err = parseDecimal(fateStr); err != nil {
		return nil, err
	}
	if r.AmountUSD, err = parseDecimal(usdStr); err != nil {
		return nil, err
	}
	return &r, nil
}

// Save upserts a (user, epoch) rollup aggregate.
func (s *RewardStore) Save(ctx context.Context, r *domain.UserEpochTotalLockedReward) error {
	query := `
		INSERT INTO rewards (id, user_address, epoch, amount_fate, amount_usd)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			amount_fate = EXCLUDED.amount_fate,
			amount_usd = EXCLUDED.amount_usd
	`

	_, err := s.pool.Exec(ctx, query,
		r.ID,
		r.User,
		r.Epoch,
		r.AmountFate.String(),
		r.AmountUSD.String(),
	)
	if err != nil {
		return fmt.Errorf("save reward: %w", err)
	}
	return nil
}
