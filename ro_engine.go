package jit_amm_pool

import (
	"math/big"

	sdkutils "github.com/daoleno/uniswapv3-sdk/utils"
	"github.com/shopspring/decimal"
)

// ROEngine is the seam between the pool façade's swap loop and the
// concentrated-liquidity math, kept as a held collaborator rather than a
// base class the pool inherits from: a pool that embeds or extends its
// range-order engine couples balance accounting to tick math, so this
// keeps them composable instead.
type ROEngine interface {
	GetSqrtRatioAtTick(tick int) (decimal.Decimal, error)
	GetTickAtSqrtRatio(sqrtRatioX96 decimal.Decimal) (int, error)
	ComputeSwapStep(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, amountRemaining decimal.Decimal, feePips int) (sqrtRatioNextX96, amountIn, amountOut, feeAmount decimal.Decimal, err error)
}

// sdkROEngine implements ROEngine on top of daoleno/uniswapv3-sdk/utils.
// The wrapper exists only to convert between decimal.Decimal (the type
// pool state is kept in) and *big.Int (what the SDK functions take).
type sdkROEngine struct{}

func NewSDKROEngine() ROEngine { return sdkROEngine{} }

func (sdkROEngine) GetSqrtRatioAtTick(tick int) (decimal.Decimal, error) {
	v, err := sdkutils.GetSqrtRatioAtTick(tick)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromBigInt(v, 0), nil
}

func (sdkROEngine) GetTickAtSqrtRatio(sqrtRatioX96 decimal.Decimal) (int, error) {
	return sdkutils.GetTickAtSqrtRatio(sqrtRatioX96.BigInt())
}

func (sdkROEngine) ComputeSwapStep(sqrtRatioCurrentX96, sqrtRatioTargetX96, liquidity, amountRemaining decimal.Decimal, feePips int) (decimal.Decimal, decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	sqrtNext, amountIn, amountOut, feeAmount, err := sdkutils.ComputeSwapStep(
		sqrtRatioCurrentX96.BigInt(),
		sqrtRatioTargetX96.BigInt(),
		liquidity.BigInt(),
		amountRemaining.BigInt(),
		feePips,
	)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, decimal.Decimal{}, decimal.Decimal{}, err
	}
	return decimal.NewFromBigInt(sqrtNext, 0),
		decimal.NewFromBigInt(amountIn, 0),
		decimal.NewFromBigInt(amountOut, 0),
		decimal.NewFromBigInt(feeAmount, 0),
		nil
}

// sqrtRatioMaxBig / sqrtRatioMinBig return MaxSqrtRatio / MinSqrtRatio as
// *big.Int, the form the SDK functions take.
func sqrtRatioMaxBig() *big.Int { return MaxSqrtRatio.BigInt() }
func sqrtRatioMinBig() *big.Int { return MinSqrtRatio.BigInt() }
