package domain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// RewardMetadata is the global accounting singleton. Created lazily on the
// first event; every field is increment-only. FateClaimed/FateClaimedUsd
// track raw claim amounts (not the lock-multiplied portion), so they equal
// the sum over all Claim records.
type RewardMetadata struct {
	ID                  string // always MetadataID
	ClaimCount          *big.Int
	FateClaimed         decimal.Decimal
	FateClaimedUsd      decimal.Decimal
	NumberOfUniqueUsers *big.Int // one per (user, epoch) first-touch
}

// NewRewardMetadata returns the zero-valued singleton.
func NewRewardMetadata() *RewardMetadata {
	return &RewardMetadata{
		ID:                  MetadataID,
		ClaimCount:          big.NewInt(0),
		FateClaimed:         ZeroBD,
		FateClaimedUsd:      ZeroBD,
		NumberOfUniqueUsers: big.NewInt(0),
	}
}
