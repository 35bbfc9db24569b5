package jit_amm_pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// ObservedSwap is an externally-observed swap outcome (e.g. read back from
// a settlement event) whose exact input amount is unknown but whose
// resulting price and direction are known, and which ResolveSwapInputs
// works backward from.
type ObservedSwap struct {
	ZeroForOne      bool
	SqrtPriceX96    decimal.Decimal
	MaxAmountIn     *big.Int
}

// SwapSolution is the amountSpecified that reproduces an ObservedSwap
// against the pool's current state.
type SwapSolution struct {
	AmountSpecified *big.Int
	Result          SwapResult
}

// ResolveSwapInputs binary-searches for the exact-input amountSpecified
// that would move the pool to the observed sqrt price, without mutating
// the live pool: each trial runs against a fresh Clone() (a "dry run")
// rather than against the live pool.
func (p *Pool) ResolveSwapInputs(recipient common.Address, observed ObservedSwap) (SwapSolution, error) {
	lo := big.NewInt(1)
	hi := new(big.Int).Set(observed.MaxAmountIn)
	if hi.Sign() <= 0 {
		return SwapSolution{}, ErrAmountZero
	}

	// Swap only accepts limits strictly inside (MinSqrtRatio, MaxSqrtRatio).
	sqrtPriceLimitX96 := MinSqrtRatio.Add(OneDec)
	if !observed.ZeroForOne {
		sqrtPriceLimitX96 = MaxSqrtRatio.Sub(OneDec)
	}

	var best *SwapResult
	var bestAmount *big.Int

	for iter := 0; iter < 256 && lo.Cmp(hi) <= 0; iter++ {
		mid := new(big.Int).Add(lo, hi)
		mid.Rsh(mid, 1)
		if mid.Sign() == 0 {
			mid = big.NewInt(1)
		}

		trial := p.Clone()
		res, err := trial.Swap(recipient, observed.ZeroForOne, mid, sqrtPriceLimitX96)
		if err != nil {
			return SwapSolution{}, err
		}

		reached := observed.ZeroForOne && res.SqrtPriceX96.LessThanOrEqual(observed.SqrtPriceX96) ||
			!observed.ZeroForOne && res.SqrtPriceX96.GreaterThanOrEqual(observed.SqrtPriceX96)

		if reached {
			best = &res
			bestAmount = new(big.Int).Set(mid)
			hi = new(big.Int).Sub(mid, big.NewInt(1))
		} else {
			lo = new(big.Int).Add(mid, big.NewInt(1))
		}
	}

	if best == nil {
		return SwapSolution{}, ErrPriceLimitOutOfRange
	}
	return SwapSolution{AmountSpecified: bestAmount, Result: *best}, nil
}
