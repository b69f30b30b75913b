package postgres

import (
	"context"
	"fmt"
	"math/big"

	"fate-rewards-indexer/internal/storage"
)

// CheckpointStore implements storage.CheckpointStore using PostgreSQL.
type CheckpointStore struct {
	pool *Pool
}

// NewCheckpointStore creates a new CheckpointStore.
func NewCheckpointStore(pool *Pool) *CheckpointStore {
	return &CheckpointStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CheckpointStore = (*CheckpointStore)(nil)

// Get retrieves the last processed block for a contract.
func (s *CheckpointStore) Get(ctx context.Context, contract string) (*big.Int, error) {
	query := `
		SELECT last_block::text
		FROM checkpoints
		WHERE contract = $1
	`

	var blockStr string
	err := s.pool.QueryRow(ctx, query, contract).Scan(&blockStr)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get checkpoint: %w", err)
	}

	return parseBigInt(blockStr)
}

// Put upserts the last processed block for a contract.
func (s *CheckpointStore) Put(ctx context.Context, contract string, block *big.Int) error {
	query := `
		INSERT INTO checkpoints (contract, last_block)
		VALUES ($1, $2)
		ON CONFLICT (contract) DO UPDATE SET last_block = EXCLUDED.last_block
	`

	_, err := s.pool.Exec(ctx, query, contract, block.String())
	if err != nil {
		return fmt.Errorf("put checkpoint: %w", err)
	}
	return nil
}
