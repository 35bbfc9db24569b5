package jit_amm_pool

import "github.com/holiman/uint256"

// calcAmount1FromAmount0 / calcAmount0FromAmount1 convert an amount of
// one token into the other at a limit-order tick's fixed price, priceX96
// being price = (sqrtPriceAtTick)^2 / 2^96.
//
// Deliberately using the "unsafe" mulDiv variants (wraparound on
// overflow, no panic) rather than the checked ones in fullmath.go: these
// products are allowed to overflow and be implicitly capped by the
// caller rather than treated as a fatal error.
func calcAmount1FromAmount0(amountInToken0 *uint256.Int, priceX96 *uint256.Int, roundUp bool) *uint256.Int {
	if roundUp {
		return unsafeMulDivRoundingUp(amountInToken0, priceX96, Q96)
	}
	return unsafeMulDiv(amountInToken0, priceX96, Q96)
}

func calcAmount0FromAmount1(amountInToken1 *uint256.Int, priceX96 *uint256.Int, roundUp bool) *uint256.Int {
	if roundUp {
		return unsafeMulDivRoundingUp(amountInToken1, Q96, priceX96)
	}
	return unsafeMulDiv(amountInToken1, Q96, priceX96)
}

// amountSwappedFromTickPercentage floors liquidityGross * (percSwapChange /
// oneMinusPercSwap): the amount of a tick's liquidity that was already
// swapped before this call, recovered from the fraction still unswapped.
func amountSwappedFromTickPercentage(percSwapChange, oneMinusPercSwap D, liquidityGross *uint256.Int) *uint256.Int {
	perc := DivD(percSwapChange, oneMinusPercSwap, false)
	return mulFloorU256(liquidityGross, perc)
}

// amountSwappedFromTickPercentageRoundUp is the ceiling twin, used by the
// burn path's "amountSwappedPrevRounding" computation.
func amountSwappedFromTickPercentageRoundUp(percSwapChange, oneMinusPercSwap D, liquidityGross *uint256.Int) *uint256.Int {
	perc := DivD(percSwapChange, oneMinusPercSwap, true)
	return mulCeilU256(liquidityGross, perc)
}

// priceAtTickLO returns price = sqrtPriceX96^2 / 2^96, the LimitOrderTickMath
// getPriceAtTick formula, given the tick's sqrt price in Q96 (as produced
// by the range-order adapter's getSqrtRatioAtTick; limit-order ticks
// share the same tick-to-sqrt-price table as range orders).
func priceAtTickLO(sqrtPriceX96 *uint256.Int) *uint256.Int {
	return mulDiv(sqrtPriceX96, sqrtPriceX96, Q96)
}
