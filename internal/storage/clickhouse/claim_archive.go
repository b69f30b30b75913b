package clickhouse

import (
	"context"
	"fmt"

	"fate-rewards-indexer/internal/domain"
	"fate-rewards-indexer/internal/ledger"
)

// ClaimArchive mirrors every claim into ClickHouse for analytic queries.
// The table is a ReplacingMergeTree keyed by claim id, so redelivered
// claims collapse to one row and inserts stay idempotent.
type ClaimArchive struct {
	conn *Conn
}

// NewClaimArchive creates a new ClaimArchive.
func NewClaimArchive(conn *Conn) *ClaimArchive {
	return &ClaimArchive{conn: conn}
}

// Compile-time interface check.
var _ ledger.ClaimArchiver = (*ClaimArchive)(nil)

// Archive inserts one claim row.
func (a *ClaimArchive) Archive(ctx context.Context, c *domain.Claim) error {
	batch, err := a.conn.PrepareBatch(ctx, `
		INSERT INTO claims (
			id, block_timestamp, transaction_hash, user_address, pool_id, amount_fate, amount_usd
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	err = batch.Append(
		c.ID,
		uint64(c.Timestamp),
		c.Transaction,
		c.User,
		c.PoolID.String(),
		c.AmountFate.String(),
		c.AmountUSD.String(),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByUser retrieves archived claims for a user, ordered by timestamp ASC.
func (a *ClaimArchive) GetByUser(ctx context.Context, user string) ([]*domain.Claim, error) {
	query := `
		SELECT id, block_timestamp, transaction_hash, user_address, pool_id, amount_fate, amount_usd
		FROM claims FINAL
		WHERE user_address = ?
		ORDER BY block_timestamp ASC, id ASC
	`

	rows, err := a.conn.Query(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("get archived claims by user: %w", err)
	}
	defer rows.Close()

	var claims []*domain.Claim
	for rows.Next() {
		var c domain.Claim
		var ts uint64
		var poolStr, fateStr, usdStr string

		err := rows.Scan(&c.ID, &ts, &c.Transaction, &c.User, &poolStr, &fateStr, &usdStr)
		if err != nil {
			return nil, fmt.Errorf("scan archived claim: %w", err)
		}

		c.Timestamp = int64(ts)
		if c.PoolID, err = parseBigInt(poolStr); err != nil {
			return nil, err
		}
		if c.AmountFate, err = parseDecimal(fateStr); err != nil {
			return nil, err
		}
		if c.AmountUSD, err = parseDecimal(usdStr); err != nil {
			return nil, err
		}
		claims = append(claims, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate archived claims: %w", err)
	}
	return claims, nil
}
