// Package epoch maps block numbers to lock-policy epochs.
//
// The mapping runs in two stages: a fine-grained window index counts whole
// BlocksPerWeek windows elapsed since the controller's start block, and the
// index is then bucketed into a coarse epoch that selects the lock policy.
package epoch

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"

	"fate-rewards-indexer/internal/domain"
)

// ErrBlockBeforeStart is returned when an event's block number precedes the
// controller's resolved start block. Such an event cannot be bucketed and
// indicates corrupt upstream data.
var ErrBlockBeforeStart = errors.New("event block precedes controller start block")

// Window-index boundaries between epochs.
var (
	epoch1Boundary = big.NewInt(13)
	epoch2Boundary = big.NewInt(21)
)

// WindowIndex returns the number of whole accrual windows between the start
// block and the given block.
func WindowIndex(blockNumber, startBlock *big.Int) (*big.Int, error) {
	diff := new(big.Int).Sub(blockNumber, startBlock)
	if diff.Sign() < 0 {
		return nil, ErrBlockBeforeStart
	}
	return diff.Div(diff, domain.BlocksPerWeek), nil
}

// ForIndex buckets a window index into an epoch: [0,13) is epoch 0,
// [13,21) is epoch 1, everything after is epoch 2.
func ForIndex(index *big.Int) int32 {
	if index.Cmp(epoch1Boundary) < 0 {
		return 0
	}
	if index.Cmp(epoch2Boundary) < 0 {
		return 1
	}
	return 2
}

// LockPolicy is the multiplier/divisor pair applied to a raw claim amount to
// compute the locked portion attributed to aggregates.
type LockPolicy struct {
	Multiplier decimal.Decimal
	Divisor    decimal.Decimal
}

// Apply returns amount × multiplier / divisor.
func (p LockPolicy) Apply(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(p.Multiplier).Div(p.Divisor)
}

var (
	// Epoch 0: 80% locked / 20% claimed, so locked = claimed × 80/20 = 4×.
	policyEpoch0 = LockPolicy{Multiplier: decimal.NewFromInt(4), Divisor: domain.OneBD}
	// Epoch 1: 92% locked / 8% claimed, so locked = claimed × 92/8 = 11.5×.
	policyEpoch1 = LockPolicy{Multiplier: decimal.NewFromInt(115), Divisor: decimal.NewFromInt(10)}
	// Epoch 2+: no further locked accrual tracked.
	policyEpoch2 = LockPolicy{Multiplier: domain.ZeroBD, Divisor: domain.OneBD}
)

// PolicyFor selects the lock policy for an epoch.
func PolicyFor(epoch int32) LockPolicy {
	switch epoch {
	case 0:
		return policyEpoch0
	case 1:
		return policyEpoch1
	default:
		return policyEpoch2
	}
}
