package postgres

import (
	"context"
	"fmt"

	"fate-rewards-indexer/internal/domain"
	"fate-rewards-indexer/internal/storage"
)

// TransactionStore implements storage.TransactionStore using PostgreSQL.
type TransactionStore struct {
	pool *Pool
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(pool *Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

// Insert adds a transaction. Returns ErrDuplicateKey if the hash exists.
func (s *TransactionStore) Insert(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (id, block_number, block_timestamp)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query,
		tx.ID,
		tx.BlockNumber.String(),
		tx.Timestamp,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByHash retrieves a transaction by hash. Returns ErrNotFound if absent.
func (s *TransactionStore) GetByHash(ctx context.Context, hash string) (*domain.Transaction, error) {
	query := `
		SELECT id, block_number::text, block_timestamp
		FROM transactions
		WHERE id = $1
	`

	var tx domain.Transaction
	var blockStr string

	err := s.pool.QueryRow(ctx, query, hash).Scan(&tx.ID, &blockStr, &tx.Timestamp)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get transaction by hash: %w", err)
	}

	tx.BlockNumber, err = parseBigInt(blockStr)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
