package jit_amm_pool

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckTicksRejectsBadOrdering(t *testing.T) {
	pool, err := NewPool(newTestPoolConfig())
	require.NoError(t, err)
	assert.ErrorIs(t, pool.checkTicks(60, 60), ErrTickOrder)
	assert.ErrorIs(t, pool.checkTicks(120, 60), ErrTickOrder)
}

func TestCheckTicksRejectsOutOfBounds(t *testing.T) {
	pool, err := NewPool(newTestPoolConfig())
	require.NoError(t, err)
	assert.ErrorIs(t, pool.checkTicks(MinTick(pool.TickSpacing)-pool.TickSpacing, 60), ErrTickBelowMin)
	assert.ErrorIs(t, pool.checkTicks(-60, MaxTick(pool.TickSpacing)+pool.TickSpacing), ErrTickAboveMax)
}

func TestMintRangeOrderRejectsNonPositiveLiquidity(t *testing.T) {
	pool, err := NewPool(newTestPoolConfig())
	require.NoError(t, err)
	require.NoError(t, pool.Initialize(Q96Dec))

	_, _, err = pool.MintRangeOrder(owner1, -60, 60, decimal.Zero)
	assert.ErrorIs(t, err, ErrAmountZero)
}

func TestMintRangeOrderAboveCurrentTickOnlyNeedsToken0(t *testing.T) {
	pool, err := NewPool(newTestPoolConfig())
	require.NoError(t, err)
	require.NoError(t, pool.Initialize(Q96Dec)) // tick 0

	pool.Ledger.Credit(owner1, pool.Token0, decimal.NewFromInt(1_000_000))

	// tickLower (60) sits entirely above the current tick (0): a position
	// opened there is 100% token0, matching the standard
	// concentrated-liquidity three-way split on tickCurrent vs the range.
	amount0, amount1, err := pool.MintRangeOrder(owner1, 60, 120, decimal.NewFromInt(1_000))
	require.NoError(t, err)
	assert.True(t, amount1.IsZero())
	assert.True(t, amount0.IsPositive())

	// Liquidity sits entirely above the current price, so it must not
	// contribute to the pool's active (in-range) liquidity yet.
	assert.True(t, pool.Liquidity.IsZero())
}

func TestCollectRangeOrderOnUnknownPositionFails(t *testing.T) {
	pool, err := NewPool(newTestPoolConfig())
	require.NoError(t, err)
	require.NoError(t, pool.Initialize(Q96Dec))

	_, _, err = pool.CollectRangeOrder(owner1, owner1, -60, 60, decimal.NewFromInt(100), decimal.NewFromInt(100))
	assert.ErrorIs(t, err, ErrPositionNotFound)
}
