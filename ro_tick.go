package jit_amm_pool

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RangeTick is the per-tick state for the concentrated-liquidity (range
// order) side of the pool, matching Uniswap v3's Tick.Info: net/gross
// liquidity and the fee growth accumulated on the far side of the tick,
// used to cross and to compute a position's fee growth inside its range.
type RangeTick struct {
	LiquidityGross     decimal.Decimal
	LiquidityNet       decimal.Decimal // signed
	FeeGrowthOutside0X128 decimal.Decimal
	FeeGrowthOutside1X128 decimal.Decimal
	Initialized        bool
}

// RangeTickManager owns every range-order tick.
type RangeTickManager struct {
	ticks               map[int]*RangeTick
	tickSpacing         int
	maxLiquidityPerTick decimal.Decimal
}

func NewRangeTickManager(tickSpacing int, maxLiquidityPerTick decimal.Decimal) *RangeTickManager {
	return &RangeTickManager{
		ticks:               make(map[int]*RangeTick),
		tickSpacing:         tickSpacing,
		maxLiquidityPerTick: maxLiquidityPerTick,
	}
}

func (m *RangeTickManager) clone() *RangeTickManager {
	out := NewRangeTickManager(m.tickSpacing, m.maxLiquidityPerTick)
	for k, v := range m.ticks {
		cp := *v
		out.ticks[k] = &cp
	}
	return out
}

func (m *RangeTickManager) getOrCreate(tick int) *RangeTick {
	t, ok := m.ticks[tick]
	if !ok {
		t = &RangeTick{
			LiquidityGross:        decimal.Zero,
			LiquidityNet:          decimal.Zero,
			FeeGrowthOutside0X128: decimal.Zero,
			FeeGrowthOutside1X128: decimal.Zero,
		}
		m.ticks[tick] = t
	}
	return t
}

// Update applies a liquidity delta to a tick and reports whether it
// flipped initialized state, matching Tick.update in Uniswap v3.
func (m *RangeTickManager) Update(tick int, tickCurrent int, liquidityDelta decimal.Decimal, feeGrowthGlobal0X128, feeGrowthGlobal1X128 decimal.Decimal, upper bool) (bool, error) {
	info := m.getOrCreate(tick)

	liquidityGrossBefore := info.LiquidityGross
	liquidityGrossAfter := liquidityGrossBefore.Add(liquidityDelta)
	if liquidityGrossAfter.IsNegative() {
		return false, ErrLiquidityUnderflow
	}
	if liquidityGrossAfter.GreaterThan(m.maxLiquidityPerTick) {
		return false, ErrLimitExceeded
	}

	flipped := liquidityGrossBefore.IsZero() != liquidityGrossAfter.IsZero()

	if liquidityGrossBefore.IsZero() {
		if tick <= tickCurrent {
			info.FeeGrowthOutside0X128 = feeGrowthGlobal0X128
			info.FeeGrowthOutside1X128 = feeGrowthGlobal1X128
		}
		info.Initialized = true
	}

	info.LiquidityGross = liquidityGrossAfter
	if upper {
		info.LiquidityNet = info.LiquidityNet.Sub(liquidityDelta)
	} else {
		info.LiquidityNet = info.LiquidityNet.Add(liquidityDelta)
	}

	return flipped, nil
}

// Clear deletes a tick, matching Tick.clear.
func (m *RangeTickManager) Clear(tick int) {
	delete(m.ticks, tick)
}

// Cross flips a tick's outside fee accumulators and returns its signed
// liquidityNet, matching Tick.cross.
func (m *RangeTickManager) Cross(tick int, feeGrowthGlobal0X128, feeGrowthGlobal1X128 decimal.Decimal) decimal.Decimal {
	info := m.getOrCreate(tick)
	info.FeeGrowthOutside0X128 = feeGrowthGlobal0X128.Sub(info.FeeGrowthOutside0X128)
	info.FeeGrowthOutside1X128 = feeGrowthGlobal1X128.Sub(info.FeeGrowthOutside1X128)
	return info.LiquidityNet
}

// GetNextInitializedTick walks the tick spacing grid from tick looking for
// the nearest initialized tick, matching TickBitmap.nextInitializedTickWithinOneWord
// semantics at the level of abstraction this in-memory simulator needs:
// a linear scan over an initialized-tick map rather than a real bitmap.
func (m *RangeTickManager) GetNextInitializedTick(tick int, lte bool) (int, bool) {
	var keys []int
	for k, v := range m.ticks {
		if v.Initialized {
			keys = append(keys, k)
		}
	}
	sort.Ints(keys)

	if lte {
		for i := len(keys) - 1; i >= 0; i-- {
			if keys[i] <= tick {
				return keys[i], true
			}
		}
		return MinTick(m.tickSpacing), false
	}
	for _, k := range keys {
		if k > tick {
			return k, true
		}
	}
	return MaxTick(m.tickSpacing), false
}

// GetFeeGrowthInside computes the fee growth accrued inside [tickLower,
// tickUpper] as of tickCurrent, matching Tick.getFeeGrowthInside.
func (m *RangeTickManager) GetFeeGrowthInside(tickLower, tickUpper, tickCurrent int, feeGrowthGlobal0X128, feeGrowthGlobal1X128 decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	lower := m.getOrCreate(tickLower)
	upper := m.getOrCreate(tickUpper)

	var below0, below1 decimal.Decimal
	if tickCurrent >= tickLower {
		below0, below1 = lower.FeeGrowthOutside0X128, lower.FeeGrowthOutside1X128
	} else {
		below0 = feeGrowthGlobal0X128.Sub(lower.FeeGrowthOutside0X128)
		below1 = feeGrowthGlobal1X128.Sub(lower.FeeGrowthOutside1X128)
	}

	var above0, above1 decimal.Decimal
	if tickCurrent < tickUpper {
		above0, above1 = upper.FeeGrowthOutside0X128, upper.FeeGrowthOutside1X128
	} else {
		above0 = feeGrowthGlobal0X128.Sub(upper.FeeGrowthOutside0X128)
		above1 = feeGrowthGlobal1X128.Sub(upper.FeeGrowthOutside1X128)
	}

	return feeGrowthGlobal0X128.Sub(below0).Sub(above0), feeGrowthGlobal1X128.Sub(below1).Sub(above1)
}

// MinTick / MaxTick are the spacing-aligned range-order tick bounds,
// matching TickMath.MIN_TICK/MAX_TICK rounded to the nearest usable tick
// for a given spacing.
func MinTick(tickSpacing int) int {
	const minTick = -887272
	return (minTick/tickSpacing)*tickSpacing
}

func MaxTick(tickSpacing int) int {
	const maxTick = 887272
	return (maxTick / tickSpacing) * tickSpacing
}

// TickSpacingToMaxLiquidityPerTick mirrors Uniswap v3's
// Tick.tickSpacingToMaxLiquidityPerTick: the max liquidity a single tick
// may hold such that total liquidity across all ticks cannot overflow a
// uint128, used as the RO pool's default MaxLiquidityPerTick.
func TickSpacingToMaxLiquidityPerTick(tickSpacing int) decimal.Decimal {
	minTick := MinTick(tickSpacing)
	maxTick := MaxTick(tickSpacing)
	numTicks := (maxTick-minTick)/tickSpacing + 1
	maxUint128 := decimal.NewFromBigInt(maxUint128Big, 0)
	return maxUint128.Div(decimal.NewFromInt(int64(numTicks))).Truncate(0)
}
