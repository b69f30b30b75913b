package epoch

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"fate-rewards-indexer/internal/chain/stub"
	"fate-rewards-indexer/internal/domain"
	"fate-rewards-indexer/internal/storage/memory"
)

func TestWindowIndex(t *testing.T) {
	start := big.NewInt(1_000_000)

	tests := []struct {
		name  string
		block int64
		want  int64
	}{
		{"at start block", 1_000_000, 0},
		{"one block in", 1_000_001, 0},
		{"last block of window 0", 1_000_000 + 302399, 0},
		{"first block of window 1", 1_000_000 + 302400, 1},
		{"window 12", 1_000_000 + 12*302400, 12},
		{"window 13", 1_000_000 + 13*302400, 13},
		{"window 21", 1_000_000 + 21*302400, 21},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WindowIndex(big.NewInt(tt.block), start)
			if err != nil {
				t.Fatalf("WindowIndex failed: %v", err)
			}
			if got.Cmp(big.NewInt(tt.want)) != 0 {
				t.Errorf("WindowIndex = %s, want %d", got, tt.want)
			}
		})
	}
}

func TestWindowIndex_BlockBeforeStart(t *testing.T) {
	_, err := WindowIndex(big.NewInt(999_999), big.NewInt(1_000_000))
	if !errors.Is(err, ErrBlockBeforeStart) {
		t.Errorf("Expected ErrBlockBeforeStart, got %v", err)
	}
}

func TestForIndex_Boundaries(t *testing.T) {
	tests := []struct {
		index int64
		want  int32
	}{
		{0, 0},
		{12, 0},
		{13, 1},
		{20, 1},
		{21, 2},
		{100, 2},
	}

	for _, tt := range tests {
		if got := ForIndex(big.NewInt(tt.index)); got != tt.want {
			t.Errorf("ForIndex(%d) = %d, want %d", tt.index, got, tt.want)
		}
	}
}

func TestPolicyFor_LockedAmounts(t *testing.T) {
	claim := decimal.NewFromInt(100)

	tests := []struct {
		epoch int32
		want  string
	}{
		{0, "400"},    // 100 × 4/1
		{1, "1150"},   // 100 × 115/10
		{2, "0"},      // no locked accrual
		{7, "0"},      // anything past epoch 2 behaves like epoch 2
	}

	for _, tt := range tests {
		got := PolicyFor(tt.epoch).Apply(claim)
		if !got.Equal(decimal.RequireFromString(tt.want)) {
			t.Errorf("epoch %d: locked = %s, want %s", tt.epoch, got, tt.want)
		}
	}
}

func TestResolver_MemoizesStartBlock(t *testing.T) {
	ctx := context.Background()
	controller := common.HexToAddress("0x1111111111111111111111111111111111111111")

	caller := stub.NewCaller()
	caller.SetStartBlock(controller, big.NewInt(2_000_000))

	store := memory.NewStartBlockStore()
	resolver := NewResolver(store, caller)

	for i := 0; i < 3; i++ {
		start, err := resolver.StartBlock(ctx, controller)
		if err != nil {
			t.Fatalf("StartBlock failed: %v", err)
		}
		if start.Cmp(big.NewInt(2_000_000)) != 0 {
			t.Errorf("start = %s, want 2000000", start)
		}
	}

	if caller.StartBlockCalls != 1 {
		t.Errorf("Expected exactly 1 contract read, got %d", caller.StartBlockCalls)
	}

	// The resolved value must be persisted under the address id.
	sb, err := store.Get(ctx, domain.AddressID(controller))
	if err != nil {
		t.Fatalf("Get persisted start block failed: %v", err)
	}
	if sb.StartBlock.Cmp(big.NewInt(2_000_000)) != 0 {
		t.Errorf("persisted start = %s, want 2000000", sb.StartBlock)
	}
}

func TestResolver_Classify(t *testing.T) {
	ctx := context.Background()
	controller := common.HexToAddress("0x2222222222222222222222222222222222222222")

	caller := stub.NewCaller()
	caller.SetStartBlock(controller, big.NewInt(0))

	resolver := NewResolver(memory.NewStartBlockStore(), caller)

	tests := []struct {
		block int64
		want  int32
	}{
		{0, 0},
		{12 * 302400, 0},
		{13 * 302400, 1},
		{20*302400 + 302399, 1},
		{21 * 302400, 2},
	}

	for _, tt := range tests {
		got, err := resolver.Classify(ctx, controller, big.NewInt(tt.block))
		if err != nil {
			t.Fatalf("Classify(%d) failed: %v", tt.block, err)
		}
		if got != tt.want {
			t.Errorf("Classify(%d) = %d, want %d", tt.block, got, tt.want)
		}
	}
}

func TestResolver_Classify_BlockBeforeStart(t *testing.T) {
	ctx := context.Background()
	controller := common.HexToAddress("0x3333333333333333333333333333333333333333")

	caller := stub.NewCaller()
	caller.SetStartBlock(controller, big.NewInt(5_000_000))

	resolver := NewResolver(memory.NewStartBlockStore(), caller)

	_, err := resolver.Classify(ctx, controller, big.NewInt(4_999_999))
	if !errors.Is(err, ErrBlockBeforeStart) {
		t.Errorf("Expected ErrBlockBeforeStart, got %v", err)
	}
}
