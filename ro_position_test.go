package jit_amm_pool

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRangePositionManagerGetPositionAndInitIfAbsentIsIdempotent(t *testing.T) {
	m := NewRangePositionManager()
	key := RangePositionKey{Owner: owner1, TickLower: -60, TickUpper: 60}

	first := m.GetPositionAndInitIfAbsent(key)
	assert.True(t, first.Liquidity.IsZero())

	first.Liquidity = decimal.NewFromInt(42)
	second := m.GetPositionAndInitIfAbsent(key)
	assert.True(t, second.Liquidity.Equal(decimal.NewFromInt(42)), "second lookup must return the same stored position")
}

func TestRangePositionUpdateAccruesFeesAndLeavesNewLastGrowth(t *testing.T) {
	pos := &RangePosition{
		Liquidity:                decimal.NewFromInt(1000),
		FeeGrowthInside0LastX128: decimal.Zero,
		FeeGrowthInside1LastX128: decimal.Zero,
		TokensOwed0:              decimal.Zero,
		TokensOwed1:              decimal.Zero,
	}

	// feeGrowthInside advances by exactly Q128 on each side, so
	// tokensOwed == liquidity for both tokens.
	err := pos.Update(decimal.Zero, Q128Dec, Q128Dec)
	require.NoError(t, err)

	assert.True(t, pos.TokensOwed0.Equal(decimal.NewFromInt(1000)))
	assert.True(t, pos.TokensOwed1.Equal(decimal.NewFromInt(1000)))
	assert.True(t, pos.FeeGrowthInside0LastX128.Equal(Q128Dec))
	assert.True(t, pos.Liquidity.Equal(decimal.NewFromInt(1000)))
}

func TestRangePositionUpdateMintIncreasesLiquidity(t *testing.T) {
	pos := &RangePosition{
		Liquidity:                decimal.Zero,
		FeeGrowthInside0LastX128: decimal.Zero,
		FeeGrowthInside1LastX128: decimal.Zero,
		TokensOwed0:              decimal.Zero,
		TokensOwed1:              decimal.Zero,
	}

	err := pos.Update(decimal.NewFromInt(500), decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, pos.Liquidity.Equal(decimal.NewFromInt(500)))
	assert.True(t, pos.TokensOwed0.IsZero())
}

func TestRangePositionUpdateRejectsUnderflow(t *testing.T) {
	pos := &RangePosition{Liquidity: decimal.NewFromInt(10)}
	err := pos.Update(decimal.NewFromInt(-11), decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, ErrLiquidityUnderflow)
}

func TestRangePositionUpdateRejectsPokeOnEmptyPosition(t *testing.T) {
	pos := &RangePosition{Liquidity: decimal.Zero}
	err := pos.Update(decimal.Zero, decimal.Zero, decimal.Zero)
	assert.ErrorIs(t, err, ErrPositionNotFound)
}

func TestRangePositionManagerCloneIsIndependent(t *testing.T) {
	m := NewRangePositionManager()
	key := RangePositionKey{Owner: owner2, TickLower: -60, TickUpper: 60}
	pos := m.GetPositionAndInitIfAbsent(key)
	pos.Liquidity = decimal.NewFromInt(100)

	clone := m.clone()
	clonedPos := clone.GetPositionAndInitIfAbsent(key)
	clonedPos.Liquidity = decimal.NewFromInt(999)

	assert.True(t, pos.Liquidity.Equal(decimal.NewFromInt(100)))
	assert.True(t, clonedPos.Liquidity.Equal(decimal.NewFromInt(999)))
}
