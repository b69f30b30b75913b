package postgres

import (
	"context"
	"fmt"

	"fate-rewards-indexer/internal/domain"
	"fate-rewards-indexer/internal/storage"
)

// StartBlockStore implements storage.StartBlockStore using PostgreSQL.
type StartBlockStore struct {
	pool *Pool
}

// NewStartBlockStore creates a new StartBlockStore.
func NewStartBlockStore(pool *Pool) *StartBlockStore {
	return &StartBlockStore{pool: pool}
}

// Compile-time interface check.
var _ storage.StartBlockStore = (*StartBlockStore)(nil)

// Get retrieves the cached start block for a contract address.
func (s *StartBlockStore) Get(ctx context.Context, address string) (*domain.StartBlock, error) {
	query := `
		SELECT id, start_block::text
		FROM start_blocks
		WHERE id = $1
	`

	var sb domain.StartBlock
	var blockStr string

	err := s.pool.QueryRow(ctx, query, address).Scan(&sb.ID, &blockStr)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get start block: %w", err)
	}

	sb.StartBlock, err = parseBigInt(blockStr)
	if err != nil {
		return nil, err
	}
	return &sb, nil
}

// Put persists a start block. The value is immutable per contract, so a
// concurrent duplicate write carries the same value and the upsert is safe.
func (s *StartBlockStore) Put(ctx context.Context, sb *domain.StartBlock) error {
	query := `
		INSERT INTO start_blocks (id, start_block)
		VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET start_block = EXCLUDED.start_block
	`

	_, err := s.pool.Exec(ctx, query, sb.ID, sb.StartBlock.String())
	if err != nil {
		return fmt.Errorf("put start block: %w", err)
	}
	return nil
}
