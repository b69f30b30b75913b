package domain

import "math/big"

// Transaction records one distinct on-chain transaction that produced at
// least one controller event. Written once per hash regardless of how many
// events the receipt carried; immutable afterwards.
type Transaction struct {
	ID          string   // transaction hash, lowercase hex
	BlockNumber *big.Int
	Timestamp   int64 // block timestamp, unix seconds
}
