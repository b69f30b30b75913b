package domain

import "math/big"

// StartBlock caches the immutable block number at which a reward controller
// began accruing rewards. One record per emitting contract address, created
// on the first event seen from that address and never updated.
type StartBlock struct {
	ID         string // contract address, lowercase hex
	StartBlock *big.Int
}
