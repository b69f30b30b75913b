package ingestion

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func depositLog(user common.Address, pid, amount *big.Int) types.Log {
	return types.Log{
		Address:     common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc"),
		Topics:      []common.Hash{DepositTopic, common.BytesToHash(user.Bytes()), common.BigToHash(pid)},
		Data:        common.BigToHash(amount).Bytes(),
		BlockNumber: 12345,
		BlockHash:   common.HexToHash("0x01"),
		TxHash:      common.HexToHash("0xaaaa"),
		TxIndex:     3,
		Index:       7,
	}
}

func TestParseDeposit(t *testing.T) {
	user := common.HexToAddress("0x1111111111111111111111111111111111111111")
	pid := big.NewInt(4)
	amount := new(big.Int)
	amount.SetString("2500000000000000000", 10)

	ev, err := ParseDeposit(depositLog(user, pid, amount))
	if err != nil {
		t.Fatalf("ParseDeposit() error = %v", err)
	}

	if ev.User != user {
		t.Errorf("User = %s, want %s", ev.User.Hex(), user.Hex())
	}
	if ev.PoolID.Cmp(pid) != 0 {
		t.Errorf("PoolID = %s, want %s", ev.PoolID, pid)
	}
	if ev.Amount.Cmp(amount) != 0 {
		t.Errorf("Amount = %s, want %s", ev.Amount, amount)
	}
	if ev.BlockNumber.Uint64() != 12345 {
		t.Errorf("BlockNumber = %s, want 12345", ev.BlockNumber)
	}
	if ev.TxIndex != 3 || ev.LogIndex != 7 {
		t.Errorf("coordinates = (%d, %d), want (3, 7)", ev.TxIndex, ev.LogIndex)
	}
}

func TestParseClaimRewards(t *testing.T) {
	user := common.HexToAddress("0x2222222222222222222222222222222222222222")
	pid := big.NewInt(0)
	amount := big.NewInt(987654321)

	log := depositLog(user, pid, amount)
	log.Topics[0] = ClaimRewardsTopic

	ev, err := ParseClaimRewards(log)
	if err != nil {
		t.Fatalf("ParseClaimRewards() error = %v", err)
	}

	if ev.User != user {
		t.Errorf("User = %s, want %s", ev.User.Hex(), user.Hex())
	}
	if ev.PoolID.Sign() != 0 {
		t.Errorf("PoolID = %s, want 0", ev.PoolID)
	}
	if ev.Amount.Cmp(amount) != 0 {
		t.Errorf("Amount = %s, want %s", ev.Amount, amount)
	}
}

func TestParseDepositInsufficientTopics(t *testing.T) {
	log := types.Log{
		Topics:      []common.Hash{DepositTopic},
		BlockNumber: 1,
	}

	if _, err := ParseDeposit(log); !errors.Is(err, ErrInvalidLogFormat) {
		t.Errorf("ParseDeposit() error = %v, want ErrInvalidLogFormat", err)
	}
}

func TestParseDepositEmptyData(t *testing.T) {
	user := common.HexToAddress("0x3333333333333333333333333333333333333333")
	log := depositLog(user, big.NewInt(1), big.NewInt(0))
	log.Data = nil

	ev, err := ParseDeposit(log)
	if err != nil {
		t.Fatalf("ParseDeposit() error = %v", err)
	}
	if ev.Amount.Sign() != 0 {
		t.Errorf("Amount = %s, want 0", ev.Amount)
	}
}

func TestParseMissingBlockNumber(t *testing.T) {
	user := common.HexToAddress("0x4444444444444444444444444444444444444444")
	log := depositLog(user, big.NewInt(1), big.NewInt(1))
	log.BlockNumber = 0
	log.BlockHash = common.Hash{}

	if _, err := ParseDeposit(log); !errors.Is(err, ErrMissingBlockNumber) {
		t.Errorf("ParseDeposit() error = %v, want ErrMissingBlockNumber", err)
	}
}

func TestEventTopics(t *testing.T) {
	// Signatures must match the controller ABI exactly.
	if got := DepositTopic.Hex(); got == ClaimRewardsTopic.Hex() {
		t.Fatal("Deposit and ClaimRewards topics collide")
	}
}
