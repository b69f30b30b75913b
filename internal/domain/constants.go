package domain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Protocol constants shared across the indexer.
var (
	ZeroBI = big.NewInt(0)
	OneBI  = big.NewInt(1)
	TwoBI  = big.NewInt(2)

	ZeroBD = decimal.Zero
	OneBD  = decimal.NewFromInt(1)

	// BlocksPerWeek is the accrual window size: one week of blocks at the
	// deployment chain's ~2s block time.
	BlocksPerWeek = big.NewInt(302400)

	// AddressZero marks a pool that has not been deployed yet.
	AddressZero = common.Address{}
)

const (
	// FateDecimals is the reward token's ERC20 decimal count. Raw claim
	// amounts arrive in the smallest unit and are scaled down by 10^18.
	FateDecimals = 18

	// StableReserveScale aligns a 6-decimal stable reserve with an
	// 18-decimal native reserve (10^12).
	StableReserveScale = 12

	// MetadataID is the fixed id of the RewardMetadata singleton.
	MetadataID = "0"
)
