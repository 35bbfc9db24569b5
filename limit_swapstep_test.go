package jit_amm_pool

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
)

// q96PriceOne is priceX96 for price == 1 (token0 and token1 trade 1:1),
// i.e. sqrtPriceX96 == Q96 so priceAtTickLO(Q96) == Q96.
var q96PriceOne = Q96

func TestComputeLimitSwapStepFullCrossExactIn(t *testing.T) {
	liquidityGross := uint256.NewInt(1000)
	// amountRemaining well above the tick's full capacity (1000 at price 1,
	// zero fee) guarantees a full cross.
	step := computeLimitSwapStep(q96PriceOne, liquidityGross, big.NewInt(10_000), 0, true, OneDec)

	assert.True(t, step.TickCrossed)
	assert.True(t, step.ResultingOneMinusPercSwap.IsZero())
	assert.Equal(t, uint64(1000), step.AmountOut.Uint64())
	assert.Equal(t, uint64(1000), step.AmountIn.Uint64())
}

func TestComputeLimitSwapStepPartialFillExactIn(t *testing.T) {
	liquidityGross := uint256.NewInt(1000)
	step := computeLimitSwapStep(q96PriceOne, liquidityGross, big.NewInt(400), 0, true, OneDec)

	assert.False(t, step.TickCrossed)
	assert.True(t, step.ResultingOneMinusPercSwap.IsPositive())
	assert.True(t, step.ResultingOneMinusPercSwap.LessThan(OneDec))
	// amountIn must consume (up to rounding) the amount offered, and
	// amountOut must stay strictly below the tick's total liquidity.
	assert.True(t, step.AmountOut.Cmp(liquidityGross) < 0)
	assert.True(t, step.AmountIn.Cmp(uint256.NewInt(400)) <= 0)
}

func TestComputeLimitSwapStepChargesFeeOnPartialFill(t *testing.T) {
	liquidityGross := uint256.NewInt(1000)
	feePips := uint32(3000) // 0.3%
	step := computeLimitSwapStep(q96PriceOne, liquidityGross, big.NewInt(400), feePips, true, OneDec)

	assert.True(t, step.FeeAmount.Sign() > 0)
	total := new(uint256.Int).Add(step.AmountIn, step.FeeAmount)
	assert.True(t, total.Cmp(uint256.NewInt(400)) <= 0)
}

func TestComputeLimitSwapStepExactOutFullCross(t *testing.T) {
	liquidityGross := uint256.NewInt(1000)
	step := computeLimitSwapStep(q96PriceOne, liquidityGross, big.NewInt(-5000), 0, true, OneDec)

	assert.True(t, step.TickCrossed)
	assert.Equal(t, uint64(1000), step.AmountOut.Uint64())
}

func TestComputeLimitSwapStepExactOutPartial(t *testing.T) {
	liquidityGross := uint256.NewInt(1000)
	step := computeLimitSwapStep(q96PriceOne, liquidityGross, big.NewInt(-300), 0, true, OneDec)

	assert.False(t, step.TickCrossed)
	assert.Equal(t, uint64(300), step.AmountOut.Uint64())
}

func TestComputeLimitSwapStepRespectsPartialOneMinusPercSwap(t *testing.T) {
	liquidityGross := uint256.NewInt(1000)
	oneMinusPercSwap := DivD(OneDec, OneDec.Add(OneDec), false) // 0.5
	step := computeLimitSwapStep(q96PriceOne, liquidityGross, big.NewInt(10_000), 0, true, oneMinusPercSwap)

	// Only half the tick's liquidity (500) is still live, so a full cross
	// consumes exactly that, not the full 1000.
	assert.True(t, step.TickCrossed)
	assert.Equal(t, uint64(500), step.AmountOut.Uint64())
}
