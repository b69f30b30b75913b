package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Claim is the append-only log of reward claims, one per (txHash, logIndex).
// AmountFate is the raw claimed amount in token units (smallest unit divided
// by 10^18); AmountUSD is that amount valued at claim time. Neither carries
// the lock multiplier — the multiplied locked portion lives on the
// aggregates only.
type Claim struct {
	ID          string // txHash-logIndex
	Timestamp   int64
	Transaction string // transaction hash, lowercase hex
	User        string // user address, lowercase hex
	PoolID      *big.Int
	AmountFate  decimal.Decimal
	AmountUSD   decimal.Decimal
}
