package ingestion

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/core/types"
)

func logAt(block uint64, txIndex, logIndex uint) types.Log {
	return types.Log{BlockNumber: block, TxIndex: txIndex, Index: logIndex}
}

func TestSortLogs(t *testing.T) {
	logs := []types.Log{
		logAt(5, 0, 0),
		logAt(3, 2, 1),
		logAt(3, 0, 4),
		logAt(3, 2, 0),
		logAt(1, 9, 9),
	}

	SortLogs(logs)

	want := []types.Log{
		logAt(1, 9, 9),
		logAt(3, 0, 4),
		logAt(3, 2, 0),
		logAt(3, 2, 1),
		logAt(5, 0, 0),
	}

	for i := range want {
		if logs[i].BlockNumber != want[i].BlockNumber ||
			logs[i].TxIndex != want[i].TxIndex ||
			logs[i].Index != want[i].Index {
			t.Errorf("logs[%d] = (%d, %d, %d), want (%d, %d, %d)",
				i, logs[i].BlockNumber, logs[i].TxIndex, logs[i].Index,
				want[i].BlockNumber, want[i].TxIndex, want[i].Index)
		}
	}
}

func TestValidateLogOrdering(t *testing.T) {
	ordered := []types.Log{
		logAt(1, 0, 0),
		logAt(1, 0, 1),
		logAt(1, 1, 0),
		logAt(2, 0, 0),
	}
	if err := ValidateLogOrdering(ordered); err != nil {
		t.Errorf("ValidateLogOrdering() error = %v, want nil", err)
	}

	unordered := []types.Log{
		logAt(2, 0, 0),
		logAt(1, 0, 0),
	}
	if err := ValidateLogOrdering(unordered); !errors.Is(err, ErrInvalidOrdering) {
		t.Errorf("ValidateLogOrdering() error = %v, want ErrInvalidOrdering", err)
	}

	duplicate := []types.Log{
		logAt(1, 0, 0),
		logAt(1, 0, 0),
	}
	if err := ValidateLogOrdering(duplicate); !errors.Is(err, ErrInvalidOrdering) {
		t.Errorf("ValidateLogOrdering() duplicate error = %v, want ErrInvalidOrdering", err)
	}

	if err := ValidateLogOrdering(nil); err != nil {
		t.Errorf("ValidateLogOrdering(nil) error = %v, want nil", err)
	}
}
