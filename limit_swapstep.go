package jit_amm_pool

import (
	"math/big"

	"github.com/holiman/uint256"
)

// limitSwapStepResult is the return value of computeLimitSwapStep.
type limitSwapStepResult struct {
	AmountIn                  *uint256.Int
	AmountOut                 *uint256.Int
	FeeAmount                 *uint256.Int
	TickCrossed               bool
	ResultingOneMinusPercSwap D
}

// computeLimitSwapStep computes the result of swapping against a single
// limit-order tick's resting liquidity. amountRemaining follows Uniswap's
// signed convention: positive is exact-input, negative is exact-output.
func computeLimitSwapStep(
	priceX96 *uint256.Int,
	liquidityGross *uint256.Int,
	amountRemaining *big.Int,
	feePips uint32,
	zeroForOne bool,
	oneMinusPercSwap D,
) limitSwapStepResult {
	liquidity := mulFloorU256(liquidityGross, oneMinusPercSwap)

	exactIn := amountRemaining.Sign() >= 0
	feePipsU := uint256.NewInt(uint64(feePips))
	oneInPips := uint256.NewInt(OneInPips)

	var amountIn, amountOut *uint256.Int
	var resulting D

	if exactIn {
		amountRemainingU := absU256(amountRemaining)
		amountRemainingLessFee := mulDiv(amountRemainingU, new(uint256.Int).Sub(oneInPips, feePipsU), oneInPips)

		if zeroForOne {
			amountOut = calcAmount1FromAmount0(amountRemainingLessFee, priceX96, false)
		} else {
			amountOut = calcAmount0FromAmount1(amountRemainingLessFee, priceX96, false)
		}

		if amountOut.Cmp(liquidity) >= 0 {
			if zeroForOne {
				amountIn = calcAmount0FromAmount1(liquidity, priceX96, true)
			} else {
				amountIn = calcAmount1FromAmount0(liquidity, priceX96, true)
			}
			if amountIn.Cmp(amountRemainingLessFee) > 0 {
				panic("jit_amm_pool: limit swap step amountIn exceeds amountRemainingLessFee on cross")
			}
			resulting = ZeroDec
			amountOut = liquidity
		} else {
			amountIn, amountOut, resulting = calculateLimitAmounts(amountOut, liquidity, oneMinusPercSwap, priceX96, zeroForOne)
			if amountIn.Cmp(amountRemainingLessFee) > 0 {
				panic("jit_amm_pool: limit swap step amountIn exceeds amountRemainingLessFee")
			}
			if amountOut.Cmp(liquidity) >= 0 {
				panic("jit_amm_pool: limit swap step amountOut did not stay below tick liquidity")
			}
		}
	} else {
		amountRemainingAbs := absU256(amountRemaining)
		if amountRemainingAbs.Cmp(liquidity) >= 0 {
			resulting = ZeroDec
			amountOut = liquidity
			if zeroForOne {
				amountIn = calcAmount0FromAmount1(amountOut, priceX96, true)
			} else {
				amountIn = calcAmount1FromAmount0(amountOut, priceX96, true)
			}
		} else {
			amountIn, amountOut, resulting = calculateLimitAmounts(amountRemainingAbs, liquidity, oneMinusPercSwap, priceX96, zeroForOne)
			if amountOut.Cmp(liquidity) >= 0 {
				panic("jit_amm_pool: limit swap step amountOut did not stay below tick liquidity (exact-out)")
			}
		}
	}

	tickCrossed := amountOut.Cmp(liquidity) == 0
	if tickCrossed != resulting.IsZero() {
		panic("jit_amm_pool: tickCrossed and resultingOneMinusPercSwap==0 disagree")
	}

	var feeAmount *uint256.Int
	if exactIn && !tickCrossed {
		amountRemainingU := absU256(amountRemaining)
		feeAmount = new(uint256.Int).Sub(amountRemainingU, amountIn)
	} else {
		feeAmount = mulDivRoundingUp(amountIn, feePipsU, new(uint256.Int).Sub(oneInPips, feePipsU))
	}

	return limitSwapStepResult{
		AmountIn:                  amountIn,
		AmountOut:                 amountOut,
		FeeAmount:                 feeAmount,
		TickCrossed:               tickCrossed,
		ResultingOneMinusPercSwap: resulting,
	}
}

// calculateLimitAmounts computes the exact amountIn/amountOut and the
// resulting oneMinusPercSwap for a partial (non-crossing) fill against a
// limit-order tick. The asymmetric rounding here (amountOut floored, but
// amountIn derived from the *ceiling* of amountOut) bounds the
// pool-favoring rounding slack to at most one unit of the output token,
// at the cost of occasionally handing the pool one extra unit.
func calculateLimitAmounts(amountOut, liquidity *uint256.Int, oneMinusPercSwap D, priceX96 *uint256.Int, zeroForOne bool) (*uint256.Int, *uint256.Int, D) {
	division := DivD(u256ToDecimal(amountOut), u256ToDecimal(liquidity), false)
	percSwapDecrease := MulD(oneMinusPercSwap, division)

	resulting := SubDRoundingUp(oneMinusPercSwap, percSwapDecrease)
	if !resulting.IsPositive() {
		panic("jit_amm_pool: resultingOneMinusPercSwap must stay positive")
	}
	if resulting.GreaterThan(OneDec) {
		panic("jit_amm_pool: resultingOneMinusPercSwap must not exceed 1")
	}
	if resulting.GreaterThan(oneMinusPercSwap) {
		panic("jit_amm_pool: resultingOneMinusPercSwap should decrease or stay the same")
	}

	percSwapDecrease = oneMinusPercSwap.Sub(resulting)

	amountOutFinal := amountSwappedFromTickPercentage(percSwapDecrease, oneMinusPercSwap, liquidity)
	amountOutRoundedUp := amountSwappedFromTickPercentageRoundUp(percSwapDecrease, oneMinusPercSwap, liquidity)
	if amountOutRoundedUp.Cmp(amountOutFinal) < 0 {
		panic("jit_amm_pool: amountOutRoundedUp must be >= amountOut")
	}
	diff := new(uint256.Int).Sub(amountOutRoundedUp, amountOutFinal)
	if diff.Uint64() > 1 || !diff.IsUint64() {
		panic("jit_amm_pool: amountOut rounding slack exceeded one unit")
	}

	var amountIn *uint256.Int
	if zeroForOne {
		amountIn = calcAmount0FromAmount1(amountOutRoundedUp, priceX96, true)
	} else {
		amountIn = calcAmount1FromAmount0(amountOutRoundedUp, priceX96, true)
	}

	return amountIn, amountOutFinal, resulting
}

func u256ToDecimal(v *uint256.Int) D {
	return decimalFromBigInt(v.ToBig())
}
