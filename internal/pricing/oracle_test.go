package pricing

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fate-rewards-indexer/internal/chain/stub"
	"fate-rewards-indexer/internal/domain"
	"fate-rewards-indexer/internal/retry"
)

var (
	fatePair = common.HexToAddress("0xdcd307ac265c4cf1fde5ffb7850de1ac03c15303")
	usdcPair = common.HexToAddress("0xe4c5d745896bce117ab741de5df4869de8bbf32f")
	busdPair = common.HexToAddress("0x4444444444444444444444444444444444444444")
)

// testRetryCfg keeps retry delays negligible in tests.
func testRetryCfg() retry.Config {
	return retry.Config{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   1.0,
	}
}

// scaled returns value × 10^exp as a big.Int.
func scaled(value int64, exp int64) *big.Int {
	pow := new(big.Int).Exp(big.NewInt(10), big.NewInt(exp), nil)
	return pow.Mul(pow, big.NewInt(value))
}

func TestNativePriceUSD_SingleUSDCPool(t *testing.T) {
	caller := stub.NewCaller()
	// 2000 USDC (6 decimals) against 1000 native (18 decimals) → 2.0 USD.
	caller.SetReserves(usdcPair, scaled(2000, 6), scaled(1000, 18))

	oracle := NewOracle(caller, fatePair, []StablePool{
		{Name: "USDC", Pair: usdcPair, StableIsToken0: true, StableScale: domain.StableReserveScale},
		{Name: "BUSD"}, // not deployed
		{Name: "USDT"}, // not deployed
	}, testRetryCfg(), zap.NewNop())

	price, err := oracle.NativePriceUSD(context.Background())
	if err != nil {
		t.Fatalf("NativePriceUSD failed: %v", err)
	}
	if !price.Equal(decimal.NewFromInt(2)) {
		t.Errorf("price = %s, want 2", price)
	}

	// Repeated calls with unchanged reserves are deterministic.
	again, err := oracle.NativePriceUSD(context.Background())
	if err != nil {
		t.Fatalf("second NativePriceUSD failed: %v", err)
	}
	if !again.Equal(price) {
		t.Errorf("second call = %s, first = %s", again, price)
	}
}

func TestNativePriceUSD_WeightedTwoPoolBlend(t *testing.T) {
	caller := stub.NewCaller()
	// USDC pool: 3000 USDC / 1000 native → implied price 3, native weight 1000.
	caller.SetReserves(usdcPair, scaled(3000, 6), scaled(1000, 18))
	// BUSD pool (stable is token1, 18 decimals): 3000 native / 6000 BUSD →
	// implied price 2, native weight 3000.
	caller.SetReserves(busdPair, scaled(3000, 18), scaled(6000, 18))

	oracle := NewOracle(caller, fatePair, []StablePool{
		{Name: "USDC", Pair: usdcPair, StableIsToken0: true, StableScale: domain.StableReserveScale},
		{Name: "BUSD", Pair: busdPair, StableIsToken0: false},
	}, testRetryCfg(), zap.NewNop())

	price, err := oracle.NativePriceUSD(context.Background())
	if err != nil {
		t.Fatalf("NativePriceUSD failed: %v", err)
	}

	// 3 × (1000/4000) + 2 × (3000/4000) = 2.25
	if !price.Equal(decimal.RequireFromString("2.25")) {
		t.Errorf("price = %s, want 2.25", price)
	}
}

func TestNativePriceUSD_NoPoolsConfigured(t *testing.T) {
	oracle := NewOracle(stub.NewCaller(), fatePair, []StablePool{
		{Name: "USDC"},
		{Name: "BUSD"},
		{Name: "USDT"},
	}, testRetryCfg(), zap.NewNop())

	price, err := oracle.NativePriceUSD(context.Background())
	if err != nil {
		t.Fatalf("NativePriceUSD failed: %v", err)
	}
	if !price.IsZero() {
		t.Errorf("price = %s, want 0 (unknown)", price)
	}
}

func TestNativePriceUSD_ConfiguredPoolRevertIsUnavailable(t *testing.T) {
	caller := stub.NewCaller()
	// Deployed per config but every read reverts.
	oracle := NewOracle(caller, fatePair, []StablePool{
		{Name: "USDC", Pair: usdcPair, StableIsToken0: true, StableScale: domain.StableReserveScale},
	}, testRetryCfg(), zap.NewNop())

	_, err := oracle.NativePriceUSD(context.Background())
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Errorf("Expected ErrPriceUnavailable, got %v", err)
	}
}

func TestFatePriceUSD(t *testing.T) {
	caller := stub.NewCaller()
	// FATE pair: 1000 FATE / 250 native → 0.25 native per FATE.
	caller.SetReserves(fatePair, scaled(1000, 18), scaled(250, 18))
	// Native worth 2 USD.
	caller.SetReserves(usdcPair, scaled(2000, 6), scaled(1000, 18))

	oracle := NewOracle(caller, fatePair, []StablePool{
		{Name: "USDC", Pair: usdcPair, StableIsToken0: true, StableScale: domain.StableReserveScale},
	}, testRetryCfg(), zap.NewNop())

	price, err := oracle.FatePriceUSD(context.Background())
	if err != nil {
		t.Fatalf("FatePriceUSD failed: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("price = %s, want 0.5", price)
	}
}

func TestFatePriceUSD_RecoversWithinRetryBudget(t *testing.T) {
	caller := stub.NewCaller()
	caller.SetReserves(fatePair, scaled(1000, 18), scaled(250, 18))
	caller.SetReserves(usdcPair, scaled(2000, 6), scaled(1000, 18))
	// First read reverts, the retry succeeds.
	caller.FailReserves(fatePair, 1)

	oracle := NewOracle(caller, fatePair, []StablePool{
		{Name: "USDC", Pair: usdcPair, StableIsToken0: true, StableScale: domain.StableReserveScale},
	}, testRetryCfg(), zap.NewNop())

	price, err := oracle.FatePriceUSD(context.Background())
	if err != nil {
		t.Fatalf("FatePriceUSD failed: %v", err)
	}
	if !price.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("price = %s, want 0.5", price)
	}
}

func TestFatePriceUSD_UnavailableAfterRetries(t *testing.T) {
	caller := stub.NewCaller()
	caller.SetReserves(fatePair, scaled(1000, 18), scaled(250, 18))
	// More failures than the retry budget allows.
	caller.FailReserves(fatePair, 10)

	oracle := NewOracle(caller, fatePair, nil, testRetryCfg(), zap.NewNop())

	_, err := oracle.FatePriceUSD(context.Background())
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Errorf("Expected ErrPriceUnavailable, got %v", err)
	}
}

func TestFatePriceUSD_NoFatePairConfigured(t *testing.T) {
	oracle := NewOracle(stub.NewCaller(), domain.AddressZero, nil, testRetryCfg(), zap.NewNop())

	price, err := oracle.FatePriceUSD(context.Background())
	if err != nil {
		t.Fatalf("FatePriceUSD failed: %v", err)
	}
	if !price.IsZero() {
		t.Errorf("price = %s, want 0 (unknown)", price)
	}
}

func TestFatePriceUSD_EmptyFateReserve(t *testing.T) {
	caller := stub.NewCaller()
	caller.SetReserves(fatePair, big.NewInt(0), scaled(250, 18))

	oracle := NewOracle(caller, fatePair, nil, testRetryCfg(), zap.NewNop())

	_, err := oracle.FatePriceUSD(context.Background())
	if !errors.Is(err, ErrPriceUnavailable) {
		t.Errorf("Expected ErrPriceUnavailable, got %v", err)
	}
}
