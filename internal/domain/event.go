package domain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// EventMeta carries the log coordinates shared by every controller event.
type EventMeta struct {
	Contract    common.Address // emitting reward controller
	TxHash      common.Hash    // transaction hash
	TxIndex     uint           // transaction index within the block
	LogIndex    uint           // log index within the block
	BlockNumber *big.Int       // block the event was emitted in
	Timestamp   int64          // block timestamp, unix seconds
}

// DepositEvent is a liquidity deposit into a reward-controller pool.
type DepositEvent struct {
	EventMeta
	User   common.Address
	PoolID *big.Int
	Amount *big.Int // LP token amount, smallest unit (unused by accounting)
}

// ClaimRewardsEvent is a reward claim from a reward-controller pool.
type ClaimRewardsEvent struct {
	EventMeta
	User   common.Address
	PoolID *big.Int
	Amount *big.Int // FATE amount, smallest unit (10^-18)
}

// AddressID renders an address the way record ids expect it: lowercase hex.
func AddressID(a common.Address) string {
	return strings.ToLower(a.Hex())
}

// ClaimID derives the append-only claim record id from the log coordinates.
func ClaimID(txHash common.Hash, logIndex uint) string {
	return fmt.Sprintf("%s-%d", txHash.Hex(), logIndex)
}
