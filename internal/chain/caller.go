// Package chain provides read-only access to the reward controller and
// liquidity pair contracts.
package chain

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Caller issues read-only contract calls. Both calls may fail when the
// target contract is absent or the node rejects the call; callers decide
// whether that is fatal or a degradation condition.
type Caller interface {
	// StartBlock reads the immutable startBlock() value from a reward controller.
	StartBlock(ctx context.Context, contract common.Address) (*big.Int, error)

	// GetReserves reads the current (reserve0, reserve1) of a UniswapV2-style pair.
	GetReserves(ctx context.Context, pair common.Address) (*big.Int, *big.Int, error)
}
