package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"fate-rewards-indexer/internal/domain"
	"fate-rewards-indexer/internal/storage"
)

// ClaimStore implements storage.ClaimStore using PostgreSQL.
type ClaimStore struct {
	pool *Pool
}

// NewClaimStore creates a new ClaimStore.
func NewClaimStore(pool *Pool) *ClaimStore {
	return &ClaimStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ClaimStore = (*ClaimStore)(nil)

// Insert adds a claim. Returns ErrDuplicateKey if (txHash, logIndex) exists.
func (s *ClaimStore) Insert(ctx context.Context, c *domain.Claim) error {
	query := `
		INSERT INTO claims (
			id, block_timestamp, transaction_hash, user_address, pool_id, amount_fate, amount_usd
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		c.ID,
		c.Timestamp,
		c.Transaction,
		c.User,
		c.PoolID.String(),
		c.AmountFate.String(),
		c.AmountUSD.String(),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert claim: %w", err)
	}
	return nil
}

// GetByID retrieves a claim by its txHash-logIndex id.
func (s *ClaimStore) GetByID(ctx context.Context, id string) (*domain.Claim, error) {
	query := `
		SELECT id, block_timestamp, transaction_hash, user_address,
		       pool_id::text, amount_fate::text, amount_usd::text
		FROM claims
		WHERE id = $1
	`

	row := s.pool.QueryRow(ctx, query, id)
	c, err := scanClaim(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get claim by id: %w", err)
	}
	return c, nil
}

// GetByUser retrieves all claims for a user, ordered by timestamp ASC.
func (s *ClaimStore) GetByUser(ctx context.Context, user string) ([]*domain.Claim, error) {
	query := `
		SELECT id, block_timestamp, transaction_hash, user_address,
		       pool_id::text, amount_fate::text, amount_usd::text
		FROM claims
		WHERE user_address = $1
		ORDER BY block_timestamp ASC, id ASC
	`

	rows, err := s.pool.Query(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("get claims by user: %w", err)
	}
	defer rows.Close()

	var claims []*domain.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, fmt.Errorf("scan claim row: %w", err)
		}
		claims = append(claims, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate claim rows: %w", err)
	}
	return claims, nil
}

// scanClaim scans a single row into a Claim.
func scanClaim(row pgx.Row) (*domain.Claim, error) {
	var c domain.Claim
	var poolStr, fateStr, usdStr string

	err := row.Scan(
		&c.ID,
		&c.Timestamp,
		&c.Transaction,
		&c.User,
		&poolStr,
		&fateStr,
		&usdStr,
	)
	if err != nil {
		return nil, err
	}

	if c.PoolID, err = parseBigInt(poolStr); err != nil {
		return nil, err
	}
	if c.AmountFate, err = parseDecimal(fateStr); err != nil {
		return nil, err
	}
	if c.AmountUSD, err = parseDecimal(usdStr); err != nil {
		return nil, err
	}
	return &c, nil
}
