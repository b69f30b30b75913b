package storage

import (
	"context"
	"math/big"

	"fate-rewards-indexer/internal/domain"
)

// TransactionStore records distinct on-chain transactions.
type TransactionStore interface {
	// Insert adds a transaction. Returns ErrDuplicateKey if the hash exists;
	// callers treat that as "already recorded", making the write idempotent.
	Insert(ctx context.Context, tx *domain.Transaction) error

	// GetByHash retrieves a transaction by hash. Returns ErrNotFound if absent.
	GetByHash(ctx context.Context, hash string) (*domain.Transaction, error)
}

// StartBlockStore caches per-contract start blocks.
type StartBlockStore interface {
	// Get retrieves the cached start block for a contract address.
	// Returns ErrNotFound if the contract has not been seen yet.
	Get(ctx context.Context, address string) (*domain.StartBlock, error)

	// Put persists a start block. The source value is immutable, so
	// last-writer-wins under a duplicate race is acceptable.
	Put(ctx context.Context, sb *domain.StartBlock) error
}

// ClaimStore is the append-only claim log.
type ClaimStore interface {
	// Insert adds a claim. Returns ErrDuplicateKey if (txHash, logIndex) exists.
	Insert(ctx context.Context, c *domain.Claim) error

	// GetByID retrieves a claim by its txHash-logIndex id. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*domain.Claim, error)

	// GetByUser retrieves all claims for a user, ordered by timestamp ASC.
	GetByUser(ctx context.Context, user string) ([]*domain.Claim, error)
}

// RewardByPoolStore holds (user, pool, epoch) locked-reward aggregates.
type RewardByPoolStore interface {
	// Get retrieves an aggregate by id. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.UserEpochTotalLockedRewardByPool, error)

	// Save upserts an aggregate by id.
	Save(ctx context.Context, r *domain.UserEpochTotalLockedRewardByPool) error
}

// RewardStore holds (user, epoch) locked-reward rollup aggregates.
type RewardStore interface {
	// Get retrieves an aggregate by id. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*domain.UserEpochTotalLockedReward, error)

	// Save upserts an aggregate by id.
	Save(ctx context.Context, r *domain.UserEpochTotalLockedReward) error
}

// MetadataStore holds the RewardMetadata singleton.
type MetadataStore interface {
	// Get retrieves the singleton. Returns ErrNotFound before first save.
	Get(ctx context.Context) (*domain.RewardMetadata, error)

	// Save upserts the singleton.
	Save(ctx context.Context, m *domain.RewardMetadata) error
}

// CheckpointStore tracks the last fully processed block per contract, so a
// restarted indexer resumes without reprocessing finished ranges.
type CheckpointStore interface {
	// Get retrieves the last processed block. Returns ErrNotFound if no
	// checkpoint has been written for the contract.
	Get(ctx context.Context, contract string) (*big.Int, error)

	// Put upserts the last processed block for a contract.
	Put(ctx context.Context, contract string, block *big.Int) error
}
