package ingestion

import (
	"errors"
	"sort"

	"github.com/ethereum/go-ethereum/core/types"
)

// ErrInvalidOrdering is returned when logs are not in deterministic order.
var ErrInvalidOrdering = errors.New("logs are not in deterministic order")

// SortLogs orders logs by (blockNumber ASC, txIndex ASC, logIndex ASC),
// the order the chain produced them in.
func SortLogs(logs []types.Log) {
	sort.Slice(logs, func(i, j int) bool {
		return compareLogs(&logs[i], &logs[j]) < 0
	})
}

// ValidateLogOrdering checks that logs are strictly ordered.
// Returns ErrInvalidOrdering if not.
func ValidateLogOrdering(logs []types.Log) error {
	for i := 1; i < len(logs); i++ {
		if compareLogs(&logs[i-1], &logs[i]) >= 0 {
			return ErrInvalidOrdering
		}
	}
	return nil
}

// compareLogs returns:
//   - negative if a < b
//   - zero if a == b
//   - positive if a > b
//
// Order: (blockNumber ASC, txIndex ASC, logIndex ASC)
func compareLogs(a, b *types.Log) int {
	if a.BlockNumber != b.BlockNumber {
		if a.BlockNumber < b.BlockNumber {
			return -1
		}
		return 1
	}
	if a.TxIndex != b.TxIndex {
		if a.TxIndex < b.TxIndex {
			return -1
		}
		return 1
	}
	if a.Index != b.Index {
		if a.Index < b.Index {
			return -1
		}
		return 1
	}
	return 0
}
