package epoch

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"fate-rewards-indexer/internal/chain"
	"fate-rewards-indexer/internal/domain"
	"fate-rewards-indexer/internal/storage"
)

// Resolver memoizes each controller's immutable start block and classifies
// event blocks into epochs. The contract read happens at most once per
// distinct address for the lifetime of the store; a duplicate race writes
// the same value twice, which is harmless.
type Resolver struct {
	store  storage.StartBlockStore
	caller chain.Caller
}

// NewResolver creates a resolver over the given cache store and caller.
func NewResolver(store storage.StartBlockStore, caller chain.Caller) *Resolver {
	return &Resolver{store: store, caller: caller}
}

// StartBlock returns the controller's start block, fetching and persisting
// it on first use.
func (r *Resolver) StartBlock(ctx context.Context, contract common.Address) (*big.Int, error) {
	id := domain.AddressID(contract)

	cached, err := r.store.Get(ctx, id)
	if err == nil {
		return cached.StartBlock, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load start block for %s: %w", id, err)
	}

	start, err := r.caller.StartBlock(ctx, contract)
	if err != nil {
		return nil, fmt.Errorf("read start block from %s: %w", id, err)
	}

	if err := r.store.Put(ctx, &domain.StartBlock{ID: id, StartBlock: start}); err != nil {
		return nil, fmt.Errorf("persist start block for %s: %w", id, err)
	}

	return start, nil
}

// Classify resolves the epoch for an event emitted by the given controller
// at the given block.
func (r *Resolver) Classify(ctx context.Context, contract common.Address, blockNumber *big.Int) (int32, error) {
	start, err := r.StartBlock(ctx, contract)
	if err != nil {
		return 0, err
	}

	index, err := WindowIndex(blockNumber, start)
	if err != nil {
		return 0, fmt.Errorf("block %s on %s: %w", blockNumber, domain.AddressID(contract), err)
	}

	return ForIndex(index), nil
}
