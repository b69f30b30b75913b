// Package ledger applies controller events to the reward aggregates.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fate-rewards-indexer/internal/domain"
	"fate-rewards-indexer/internal/epoch"
	"fate-rewards-indexer/internal/storage"
)

// PriceSource supplies the reward token's USD price at claim time.
type PriceSource interface {
	FatePriceUSD(ctx context.Context) (decimal.Decimal, error)
}

// ClaimArchiver receives a copy of every new claim for analytic storage.
// Archive failures are logged, not fatal: the primary store is the source
// of truth.
type ClaimArchiver interface {
	Archive(ctx context.Context, c *domain.Claim) error
}

// Handler is the aggregation engine. It assumes events arrive one at a
// time in block order, then log order; a handler invocation either fully
// succeeds or returns an error that must halt the pipeline, since a partial
// update would break the increment-only invariants.
type Handler struct {
	transactions storage.TransactionStore
	claims       storage.ClaimStore
	byPool       storage.RewardByPoolStore
	rewards      storage.RewardStore
	metadata     storage.MetadataStore
	resolver     *epoch.Resolver
	prices       PriceSource
	archiver     ClaimArchiver // optional
	logger       *zap.Logger
}

// Options contains the collaborators for creating a Handler.
type Options struct {
	Transactions storage.TransactionStore
	Claims       storage.ClaimStore
	ByPool       storage.RewardByPoolStore
	Rewards      storage.RewardStore
	Metadata     storage.MetadataStore
	Resolver     *epoch.Resolver
	Prices       PriceSource
	Archiver     ClaimArchiver // may be nil
	Logger       *zap.Logger
}

// NewHandler creates a new ledger handler.
func NewHandler(opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Handler{
		transactions: opts.Transactions,
		claims:       opts.Claims,
		byPool:       opts.ByPool,
		rewards:      opts.Rewards,
		metadata:     opts.Metadata,
		resolver:     opts.Resolver,
		prices:       opts.Prices,
		archiver:     opts.Archiver,
		logger:       logger,
	}
}

// loadOrCreate fetches a record by id or builds a fresh one. The returned
// flag reports whether the record was newly created; it drives the
// unique-user counter.
func loadOrCreate[T any](
	ctx context.Context,
	get func(context.Context, string) (T, error),
	id string,
	create func() T,
) (T, bool, error) {
	record, err := get(ctx, id)
	if err == nil {
		return record, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		var zero T
		return zero, false, fmt.Errorf("load %s: %w", id, err)
	}
	return create(), true, nil
}

// recordTransaction writes the Transaction record for the event, treating a
// duplicate hash as already recorded.
func (h *Handler) recordTransaction(ctx context.Context, meta domain.EventMeta) error {
	tx := &domain.Transaction{
		ID:          meta.TxHash.Hex(),
		BlockNumber: meta.BlockNumber,
		Timestamp:   meta.Timestamp,
	}

	err := h.transactions.Insert(ctx, tx)
	if err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
		return fmt.Errorf("record transaction %s: %w", tx.ID, err)
	}
	return nil
}

// getOrCreateMetadata loads the global singleton, creating the zero value
// before the first event touches it.
func (h *Handler) getOrCreateMetadata(ctx context.Context) (*domain.RewardMetadata, error) {
	meta, err := h.metadata.Get(ctx)
	if err == nil {
		return meta, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load reward metadata: %w", err)
	}
	return domain.NewRewardMetadata(), nil
}

// HandleDeposit establishes the zero baseline for the (user, pool, epoch)
// and (user, epoch) aggregates and tracks unique-user membership. Deposits
// never add monetary value.
func (h *Handler) HandleDeposit(ctx context.Context, ev *domain.DepositEvent) error {
	if err := h.recordTransaction(ctx, ev.EventMeta); err != nil {
		return err
	}

	epochNum, err := h.resolver.Classify(ctx, ev.Contract, ev.BlockNumber)
	if err != nil {
		return err
	}

	byPool, byPoolNew, err := loadOrCreate(ctx, h.byPool.Get,
		domain.RewardByPoolID(ev.User, ev.PoolID, epochNum),
		func() *domain.UserEpochTotalLockedRewardByPool {
			return domain.NewRewardByPool(ev.User, ev.PoolID, epochNum)
		})
	if err != nil {
		return err
	}
	if byPoolNew {
		if err := h.byPool.Save(ctx, byPool); err != nil {
			return fmt.Errorf("save per-pool aggregate %s: %w", byPool.ID, err)
		}
	}

	reward, rewardNew, err := loadOrCreate(ctx, h.rewards.Get,
		domain.RewardID(ev.User, epochNum),
		func() *domain.UserEpochTotalLockedReward {
			return domain.NewReward(ev.User, epochNum)
		})
	if err != nil {
		return err
	}
	if rewardNew {
		if err := h.rewards.Save(ctx, reward); err != nil {
			return fmt.Errorf("save rollup aggregate %s: %w", reward.ID, err)
		}

		meta, err := h.getOrCreateMetadata(ctx)
		if err != nil {
			return err
		}
		meta.NumberOfUniqueUsers = new(big.Int).Add(meta.NumberOfUniqueUsers, domain.OneBI)
		if err := h.metadata.Save(ctx, meta); err != nil {
			return fmt.Errorf("save reward metadata: %w", err)
		}
	}

	h.logger.Debug("deposit processed",
		zap.String("user", domain.AddressID(ev.User)),
		zap.String("pool", ev.PoolID.String()),
		zap.Int32("epoch", epochNum),
		zap.Bool("new_user_epoch", rewardNew))

	return nil
}

// HandleClaim values the claim in USD, applies the epoch's lock policy, and
// folds the locked portion into both aggregates and the raw amounts into
// the global metadata. Redelivery of an already-recorded (txHash, logIndex)
// is a no-op.
func (h *Handler) HandleClaim(ctx context.Context, ev *domain.ClaimRewardsEvent) error {
	if err := h.recordTransaction(ctx, ev.EventMeta); err != nil {
		return err
	}

	claimID := domain.ClaimID(ev.TxHash, ev.LogIndex)
	if _, err := h.claims.GetByID(ctx, claimID); err == nil {
		h.logger.Warn("claim redelivered, skipping", zap.String("claim", claimID))
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("check claim %s: %w", claimID, err)
	}

	price, err := h.prices.FatePriceUSD(ctx)
	if err != nil {
		return fmt.Errorf("price claim %s: %w", claimID, err)
	}

	amountFate := decimal.NewFromBigInt(ev.Amount, -domain.FateDecimals)
	claim := &domain.Claim{
		ID:          claimID,
		Timestamp:   ev.Timestamp,
		Transaction: ev.TxHash.Hex(),
		User:        domain.AddressID(ev.User),
		PoolID:      ev.PoolID,
		AmountFate:  amountFate,
		AmountUSD:   amountFate.Mul(price),
	}

	epochNum, err := h.resolver.Classify(ctx, ev.Contract, ev.BlockNumber)
	if err != nil {
		return err
	}
	policy := epoch.PolicyFor(epochNum)

	lockedFate := policy.Apply(claim.AmountFate)
	lockedUSD := policy.Apply(claim.AmountUSD)

	byPool, _, err := loadOrCreate(ctx, h.byPool.Get,
		domain.RewardByPoolID(ev.User, ev.PoolID, epochNum),
		func() *domain.UserEpochTotalLockedRewardByPool {
			return domain.NewRewardByPool(ev.User, ev.PoolID, epochNum)
		})
	if err != nil {
		return err
	}
	byPool.AmountFate = byPool.AmountFate.Add(lockedFate)
	byPool.AmountUSD = byPool.AmountUSD.Add(lockedUSD)

	reward, rewardNew, err := loadOrCreate(ctx, h.rewards.Get,
		domain.RewardID(ev.User, epochNum),
		func() *domain.UserEpochTotalLockedReward {
			return domain.NewReward(ev.User, epochNum)
		})
	if err != nil {
		return err
	}
	reward.AmountFate = reward.AmountFate.Add(lockedFate)
	reward.AmountUSD = reward.AmountUSD.Add(lockedUSD)

	meta, err := h.getOrCreateMetadata(ctx)
	if err != nil {
		return err
	}
	meta.ClaimCount = new(big.Int).Add(meta.ClaimCount, domain.OneBI)
	meta.FateClaimed = meta.FateClaimed.Add(claim.AmountFate)
	meta.FateClaimedUsd = meta.FateClaimedUsd.Add(claim.AmountUSD)
	if rewardNew {
		meta.NumberOfUniqueUsers = new(big.Int).Add(meta.NumberOfUniqueUsers, domain.OneBI)
	}

	// Persist order mirrors the accounting dependency: metadata, both
	// aggregates, then the immutable claim record last.
	if err := h.metadata.Save(ctx, meta); err != nil {
		return fmt.Errorf("save reward metadata: %w", err)
	}
	if err := h.byPool.Save(ctx, byPool); err != nil {
		return fmt.Errorf("save per-pool aggregate %s: %w", byPool.ID, err)
	}
	if err := h.rewards.Save(ctx, reward); err != nil {
		return fmt.Errorf("save rollup aggregate %s: %w", reward.ID, err)
	}
	if err := h.claims.Insert(ctx, claim); err != nil {
		return fmt.Errorf("insert claim %s: %w", claim.ID, err)
	}

	if h.archiver != nil {
		if err := h.archiver.Archive(ctx, claim); err != nil {
			h.logger.Warn("claim archive failed", zap.String("claim", claim.ID), zap.Error(err))
		}
	}

	h.logger.Debug("claim processed",
		zap.String("claim", claim.ID),
		zap.String("user", claim.User),
		zap.Int32("epoch", epochNum),
		zap.String("amount_fate", claim.AmountFate.String()),
		zap.String("amount_usd", claim.AmountUSD.String()))

	return nil
}
