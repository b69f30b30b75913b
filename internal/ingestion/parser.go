// Package ingestion turns controller logs into ordered ledger events.
package ingestion

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"fate-rewards-indexer/internal/domain"
)

// Event signatures of the reward controller.
var (
	DepositTopic      = crypto.Keccak256Hash([]byte("Deposit(address,uint256,uint256)"))
	ClaimRewardsTopic = crypto.Keccak256Hash([]byte("ClaimRewards(address,uint256,uint256)"))
)

// Parser errors.
var (
	ErrUnknownTopic       = errors.New("log topic is not a controller event")
	ErrInvalidLogFormat   = errors.New("invalid log format: insufficient topics")
	ErrMissingBlockNumber = errors.New("log carries no block number")
)

// parseMeta extracts the shared event coordinates. The block timestamp is
// not part of the log; callers fill it from the header.
func parseMeta(log types.Log) (domain.EventMeta, error) {
	if log.BlockNumber == 0 && log.BlockHash == (common.Hash{}) {
		return domain.EventMeta{}, ErrMissingBlockNumber
	}
	return domain.EventMeta{
		Contract:    log.Address,
		TxHash:      log.TxHash,
		TxIndex:     log.TxIndex,
		LogIndex:    log.Index,
		BlockNumber: new(big.Int).SetUint64(log.BlockNumber),
	}, nil
}

// ParseDeposit decodes a Deposit(user indexed, pid indexed, amount) log.
func ParseDeposit(log types.Log) (*domain.DepositEvent, error) {
	if len(log.Topics) < 3 {
		return nil, ErrInvalidLogFormat
	}

	meta, err := parseMeta(log)
	if err != nil {
		return nil, err
	}

	amount := new(big.Int)
	if len(log.Data) > 0 {
		amount.SetBytes(log.Data)
	}

	return &domain.DepositEvent{
		EventMeta: meta,
		User:      common.BytesToAddress(log.Topics[1].Bytes()),
		PoolID:    new(big.Int).SetBytes(log.Topics[2].Bytes()),
		Amount:    amount,
	}, nil
}

// ParseClaimRewards decodes a ClaimRewards(user indexed, pid indexed, amount) log.
func ParseClaimRewards(log types.Log) (*domain.ClaimRewardsEvent, error) {
	if len(log.Topics) < 3 {
		return nil, ErrInvalidLogFormat
	}

	meta, err := parseMeta(log)
	if err != nil {
		return nil, err
	}

	amount := new(big.Int)
	if len(log.Data) > 0 {
		amount.SetBytes(log.Data)
	}

	return &domain.ClaimRewardsEvent{
		EventMeta: meta,
		User:      common.BytesToAddress(log.Topics[1].Bytes()),
		PoolID:    new(big.Int).SetBytes(log.Topics[2].Bytes()),
		Amount:    amount,
	}, nil
}
