package domain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// UserEpochTotalLockedRewardByPool is the running total of a user's locked
// rewards in one pool during one epoch. Created zero-initialized on first
// touch (deposit or claim), then only ever incremented by claims.
type UserEpochTotalLockedRewardByPool struct {
	ID         string // user-poolId-epoch
	User       string // user address, lowercase hex
	PoolID     *big.Int
	Epoch      int32
	AmountFate decimal.Decimal
	AmountUSD  decimal.Decimal
}

// UserEpochTotalLockedReward is the pool-independent rollup of
// UserEpochTotalLockedRewardByPool for one (user, epoch).
type UserEpochTotalLockedReward struct {
	ID         string // user-epoch
	User       string
	Epoch      int32
	AmountFate decimal.Decimal
	AmountUSD  decimal.Decimal
}

// RewardByPoolID derives the (user, pool, epoch) aggregate id.
func RewardByPoolID(user common.Address, poolID *big.Int, epoch int32) string {
	return fmt.Sprintf("%s-%s-%d", AddressID(user), poolID.String(), epoch)
}

// RewardID derives the (user, epoch) aggregate id.
func RewardID(user common.Address, epoch int32) string {
	return fmt.Sprintf("%s-%d", AddressID(user), epoch)
}

// NewRewardByPool returns a zero-initialized per-pool aggregate.
func NewRewardByPool(user common.Address, poolID *big.Int, epoch int32) *UserEpochTotalLockedRewardByPool {
	return &UserEpochTotalLockedRewardByPool{
		ID:         RewardByPoolID(user, poolID, epoch),
		User:       AddressID(user),
		PoolID:     new(big.Int).Set(poolID),
		Epoch:      epoch,
		AmountFate: ZeroBD,
		AmountUSD:  ZeroBD,
	}
}

// NewReward returns a zero-initialized (user, epoch) rollup aggregate.
func NewReward(user common.Address, epoch int32) *UserEpochTotalLockedReward {
	return &UserEpochTotalLockedReward{
		ID:         RewardID(user, epoch),
		User:       AddressID(user),
		Epoch:      epoch,
		AmountFate: ZeroBD,
		AmountUSD:  ZeroBD,
	}
}
