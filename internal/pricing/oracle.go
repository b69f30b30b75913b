// Package pricing derives a USD price for the reward token from liquidity
// pool reserves.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fate-rewards-indexer/internal/chain"
	"fate-rewards-indexer/internal/domain"
	"fate-rewards-indexer/internal/retry"
)

// ErrPriceUnavailable is returned when a required reserve read keeps
// failing after bounded retries. Callers must treat it as "price unknown
// right now", never as a zero price.
var ErrPriceUnavailable = errors.New("price unavailable: reserve read failed")

// StablePool describes one stable-asset/native pool used to derive the
// native coin's USD price. A zero Pair address means the pool has not been
// deployed yet and is excluded from the blend.
type StablePool struct {
	Name           string         // e.g. "USDC"
	Pair           common.Address // pair contract, zero if not deployed
	StableIsToken0 bool           // which side of the pair holds the stable asset
	StableScale    int32          // decimal exponent aligning the stable reserve (12 for 6-decimal stables)
}

// Configured reports whether the pool is deployed.
func (p StablePool) Configured() bool {
	return p.Pair != domain.AddressZero
}

// Oracle computes FATE/USD from the FATE/native pair and a liquidity-
// weighted blend of stable/native pairs.
type Oracle struct {
	caller   chain.Caller
	fatePair common.Address // FATE is token0, native coin is token1
	stables  []StablePool
	retryCfg retry.Config
	logger   *zap.Logger
}

// NewOracle creates a price oracle. stables may contain undeployed pools.
func NewOracle(caller chain.Caller, fatePair common.Address, stables []StablePool, retryCfg retry.Config, logger *zap.Logger) *Oracle {
	return &Oracle{
		caller:   caller,
		fatePair: fatePair,
		stables:  stables,
		retryCfg: retryCfg,
		logger:   logger,
	}
}

// getReserves wraps the contract read in a bounded retry. Exhaustion maps
// to ErrPriceUnavailable.
func (o *Oracle) getReserves(ctx context.Context, pair common.Address) (*big.Int, *big.Int, error) {
	var reserve0, reserve1 *big.Int

	op := fmt.Sprintf("getReserves(%s)", pair.Hex())
	err := retry.WithBackoff(ctx, o.retryCfg, o.logger, op, func() error {
		var callErr error
		reserve0, reserve1, callErr = o.caller.GetReserves(ctx, pair)
		return callErr
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
	}

	return reserve0, reserve1, nil
}

// FatePriceUSD returns the reward token's USD price: the FATE/native pair's
// reserve ratio times the native coin's USD price. Returns
// ErrPriceUnavailable when the pair read keeps reverting; returns zero (no
// error) when pricing inputs are legitimately absent, which callers treat
// as "unknown".
func (o *Oracle) FatePriceUSD(ctx context.Context) (decimal.Decimal, error) {
	if o.fatePair == domain.AddressZero {
		return domain.ZeroBD, nil
	}

	reserve0, reserve1, err := o.getReserves(ctx, o.fatePair)
	if err != nil {
		return domain.ZeroBD, err
	}
	if reserve0.Sign() == 0 {
		// Pair exists but holds no FATE: the ratio is undefined.
		return domain.ZeroBD, fmt.Errorf("%w: empty fate reserve in %s", ErrPriceUnavailable, o.fatePair.Hex())
	}

	// FATE is token0, the native coin is token1. Both are 18-decimal, so
	// the raw ratio needs no scale alignment.
	fateNative := decimal.NewFromBigInt(reserve1, 0).Div(decimal.NewFromBigInt(reserve0, 0))

	nativeUSD, err := o.NativePriceUSD(ctx)
	if err != nil {
		return domain.ZeroBD, err
	}

	return fateNative.Mul(nativeUSD), nil
}

// NativePriceUSD blends the implied stable prices of all deployed stable
// pools, weighting each by its share of the total native-side liquidity.
// Zero deployed pools yields zero, meaning "unknown".
func (o *Oracle) NativePriceUSD(ctx context.Context) (decimal.Decimal, error) {
	type quote struct {
		price  decimal.Decimal // stable per native
		native decimal.Decimal // native-side reserve, 18-decimal units
	}

	var quotes []quote
	totalNative := domain.ZeroBD

	for _, pool := range o.stables {
		if !pool.Configured() {
			continue
		}

		reserve0, reserve1, err := o.getReserves(ctx, pool.Pair)
		if err != nil {
			return domain.ZeroBD, fmt.Errorf("stable pool %s: %w", pool.Name, err)
		}

		stableRaw, nativeRaw := reserve0, reserve1
		if !pool.StableIsToken0 {
			stableRaw, nativeRaw = reserve1, reserve0
		}
		if nativeRaw.Sign() == 0 {
			// No native liquidity: the pool carries zero weight either way.
			continue
		}

		stable := decimal.NewFromBigInt(stableRaw, pool.StableScale)
		native := decimal.NewFromBigInt(nativeRaw, 0)

		quotes = append(quotes, quote{price: stable.Div(native), native: native})
		totalNative = totalNative.Add(native)
	}

	if len(quotes) == 0 || totalNative.IsZero() {
		return domain.ZeroBD, nil
	}

	price := domain.ZeroBD
	for _, q := range quotes {
		weight := q.native.Div(totalNative)
		price = price.Add(q.price.Mul(weight))
	}

	return price, nil
}
