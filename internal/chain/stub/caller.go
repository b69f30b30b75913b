// Package stub provides an in-memory chain.Caller for tests.
package stub

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"fate-rewards-indexer/internal/chain"
)

// ErrExecutionReverted mimics a node-side revert on a call to a contract
// that does not exist or has no liquidity pair deployed.
var ErrExecutionReverted = errors.New("execution reverted")

type reserves struct {
	reserve0 *big.Int
	reserve1 *big.Int
}

// Caller is a settable in-memory implementation of chain.Caller.
type Caller struct {
	mu          sync.Mutex
	startBlocks map[common.Address]*big.Int
	pairs       map[common.Address]reserves
	failures    map[common.Address]int // remaining forced failures per pair

	StartBlockCalls  int
	GetReservesCalls int
}

// NewCaller creates an empty stub caller.
func NewCaller() *Caller {
	return &Caller{
		startBlocks: make(map[common.Address]*big.Int),
		pairs:       make(map[common.Address]reserves),
		failures:    make(map[common.Address]int),
	}
}

// SetStartBlock configures the startBlock() result for a controller.
func (c *Caller) SetStartBlock(contract common.Address, block *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startBlocks[contract] = new(big.Int).Set(block)
}

// SetReserves configures the getReserves() result for a pair.
func (c *Caller) SetReserves(pair common.Address, reserve0, reserve1 *big.Int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pairs[pair] = reserves{
		reserve0: new(big.Int).Set(reserve0),
		reserve1: new(big.Int).Set(reserve1),
	}
}

// FailReserves makes the next n GetReserves calls for the pair revert.
func (c *Caller) FailReserves(pair common.Address, n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures[pair] = n
}

// StartBlock returns the configured start block or reverts if unset.
func (c *Caller) StartBlock(_ context.Context, contract common.Address) (*big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.StartBlockCalls++
	b, ok := c.startBlocks[contract]
	if !ok {
		return nil, ErrExecutionReverted
	}
	return new(big.Int).Set(b), nil
}

// GetReserves returns configured reserves, honoring forced failures.
func (c *Caller) GetReserves(_ context.Context, pair common.Address) (*big.Int, *big.Int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.GetReservesCalls++
	if n := c.failures[pair]; n > 0 {
		c.failures[pair] = n - 1
		return nil, nil, ErrExecutionReverted
	}

	r, ok := c.pairs[pair]
	if !ok {
		return nil, nil, ErrExecutionReverted
	}
	return new(big.Int).Set(r.reserve0), new(big.Int).Set(r.reserve1), nil
}

// Verify interface compliance at compile time.
var _ chain.Caller = (*Caller)(nil)
