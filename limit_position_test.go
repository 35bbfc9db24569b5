package jit_amm_pool

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimitPositionStoreMintThenFullBurnRoundTrips(t *testing.T) {
	store := newLimitPositionStore()
	key := LimitPositionKey{Owner: owner1, Tick: 60, IsToken0: true}

	pos, created := store.get(key)
	require.True(t, created)

	leftDelta, swappedDelta := store.update(pos, big.NewInt(1000), OneDec, true, Q96, uint256.NewInt(0), created)
	assert.Equal(t, int64(1000), leftDelta.Int64())
	assert.Equal(t, int64(0), swappedDelta.Int64())
	assert.Equal(t, uint64(1000), pos.Liquidity.Uint64())

	// Burn the whole thing back with the tick still entirely unswapped
	// (oneMinusPercSwap == 1): the position must get every unit of token0
	// back as tokensOwed0, and nothing in tokensOwed1.
	leftDelta, swappedDelta = store.update(pos, big.NewInt(-1000), OneDec, true, Q96, uint256.NewInt(0), false)
	assert.Equal(t, int64(-1000), leftDelta.Int64())
	assert.Equal(t, int64(0), swappedDelta.Int64())
	assert.Equal(t, uint64(0), pos.Liquidity.Uint64())
	assert.Equal(t, uint64(1000), pos.TokensOwed0.Uint64())
	assert.Equal(t, uint64(0), pos.TokensOwed1.Uint64())
}

func TestLimitPositionStoreFullCrossBurnPaysOutOppositeToken(t *testing.T) {
	store := newLimitPositionStore()
	key := LimitPositionKey{Owner: owner1, Tick: 60, IsToken0: true}
	pos, created := store.get(key)
	require.True(t, created)

	store.update(pos, big.NewInt(1000), OneDec, true, Q96, uint256.NewInt(0), created)

	// The tick has since been fully swapped away (oneMinusPercSwap == 0):
	// burning must return the deposit entirely as tokensOwed1, converted
	// at the tick's fixed price, and leave tokensOwed0 untouched.
	leftDelta, swappedDelta := store.update(pos, big.NewInt(-1000), ZeroDec, true, Q96, uint256.NewInt(0), false)
	assert.Equal(t, int64(0), leftDelta.Int64())
	assert.Equal(t, int64(1000), swappedDelta.Int64())
	assert.Equal(t, uint64(0), pos.TokensOwed0.Uint64())
	assert.Equal(t, uint64(1000), pos.TokensOwed1.Uint64())
}

func TestLimitPositionStoreFeeAccrualOnPoke(t *testing.T) {
	store := newLimitPositionStore()
	key := LimitPositionKey{Owner: owner1, Tick: 60, IsToken0: true}
	pos, created := store.get(key)
	store.update(pos, big.NewInt(1000), OneDec, true, Q96, uint256.NewInt(0), created)

	// A zero-liquidity-delta "poke" with an advanced feeGrowthInsideX128
	// must only move fees into tokensOwed1 (the opposite token), leaving
	// liquidity and tokensOwed0 alone.
	// feeDelta == Q128 -> tokensOwed = liquidity * Q128 / Q128 == liquidity.
	store.update(pos, big.NewInt(0), OneDec, true, Q96, Q128, false)

	assert.Equal(t, uint64(1000), pos.Liquidity.Uint64())
	assert.Equal(t, uint64(0), pos.TokensOwed0.Uint64())
	assert.Equal(t, uint64(1000), pos.TokensOwed1.Uint64())
}
