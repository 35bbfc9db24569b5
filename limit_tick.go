package jit_amm_pool

import (
	"math/big"
	"sort"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// LimitTick is a single limit-order tick: the per-tick bookkeeping for a
// pool of resting orders at one price.
type LimitTick struct {
	// LiquidityGross is the total position liquidity referencing this tick.
	LiquidityGross *uint256.Int
	// OneMinusPercSwap is the fraction of this tick's liquidity that has
	// NOT yet been swapped away, in [0, 1]. A freshly created tick starts
	// at 1; it falls to 0 exactly when the tick is fully crossed.
	OneMinusPercSwap D
	// FeeGrowthInsideX128 accumulates fees earned by this tick's resting
	// liquidity, denominated in the token opposite the order's own token,
	// wrapping modulo 2^256 like the range-order fee accumulators.
	FeeGrowthInsideX128 *uint256.Int
	// OwnerPositions lists the owners with a live position at this tick, so
	// a deferred cross-burn (Pool.burnCrossedTicksAndPositions) can find them without
	// needing a reverse index from tick to owner.
	OwnerPositions []common.Address
}

func newLimitTick() *LimitTick {
	return &LimitTick{
		LiquidityGross:      uint256.NewInt(0),
		OneMinusPercSwap:    OneDec,
		FeeGrowthInsideX128: uint256.NewInt(0),
		OwnerPositions:      nil,
	}
}

// LimitTickBook holds every limit-order tick for one side of the pool.
// The pool keeps one book per token (selling token0 vs. selling token1)
// rather than a single map keyed by (tick, side), alongside the shared
// maxLiquidityPerTick cap.
type LimitTickBook struct {
	ticks               map[int]*LimitTick
	maxLiquidityPerTick *uint256.Int
}

func newLimitTickBook(maxLiquidityPerTick *uint256.Int) *LimitTickBook {
	return &LimitTickBook{
		ticks:               make(map[int]*LimitTick),
		maxLiquidityPerTick: maxLiquidityPerTick,
	}
}

func (b *LimitTickBook) get(tick int) (*LimitTick, bool) {
	t, ok := b.ticks[tick]
	return t, ok
}

func (b *LimitTickBook) clone() *LimitTickBook {
	out := newLimitTickBook(b.maxLiquidityPerTick)
	for k, v := range b.ticks {
		owners := make([]common.Address, len(v.OwnerPositions))
		copy(owners, v.OwnerPositions)
		out.ticks[k] = &LimitTick{
			LiquidityGross:      new(uint256.Int).Set(v.LiquidityGross),
			OneMinusPercSwap:    v.OneMinusPercSwap,
			FeeGrowthInsideX128: new(uint256.Int).Set(v.FeeGrowthInsideX128),
			OwnerPositions:      owners,
		}
	}
	return out
}

// update applies liquidityDelta (a u128-range amount carried as *big.Int)
// to tick, creating it if absent, and returns whether it flipped from
// initialized to uninitialized or vice versa.
func (b *LimitTickBook) update(tick int, liquidityDelta *big.Int, created bool, owner common.Address) (bool, error) {
	info, exists := b.ticks[tick]
	if !exists {
		if liquidityDelta.Sign() <= 0 {
			panic("jit_amm_pool: avoid creating an empty limit tick")
		}
		info = newLimitTick()
		b.ticks[tick] = info
	}

	if liquidityDelta.Sign() > 0 && !info.OneMinusPercSwap.IsPositive() {
		panic("jit_amm_pool: minting onto a fully-swapped tick that hasn't been cleared")
	}

	grossBefore := info.LiquidityGross
	grossAfter := addDeltaU256(grossBefore, liquidityDelta)

	if grossAfter.Gt(b.maxLiquidityPerTick) {
		return false, ErrLimitExceeded
	}

	flipped := grossAfter.IsZero() != grossBefore.IsZero()
	info.LiquidityGross = grossAfter

	if liquidityDelta.Sign() > 0 && created {
		for _, o := range info.OwnerPositions {
			if o == owner {
				panic("jit_amm_pool: position already present in tick's owner roster")
			}
		}
		info.OwnerPositions = append(info.OwnerPositions, owner)
	} else {
		found := false
		for _, o := range info.OwnerPositions {
			if o == owner {
				found = true
				break
			}
		}
		if !found {
			panic("jit_amm_pool: position missing from tick's owner roster")
		}
	}

	return flipped, nil
}

// removeOwner drops owner from tick's roster without clearing the rest
// of the tick: the case where a position burns fully but the tick still
// has other positions or gross liquidity resting on it.
func (b *LimitTickBook) removeOwner(tick int, owner common.Address) {
	info := b.ticks[tick]
	for i, o := range info.OwnerPositions {
		if o == owner {
			info.OwnerPositions = append(info.OwnerPositions[:i], info.OwnerPositions[i+1:]...)
			return
		}
	}
}

// clear deletes a tick entirely, matching Tick.clear.
func (b *LimitTickBook) clear(tick int) {
	delete(b.ticks, tick)
}

// nextLimitTick finds the next usable limit-order tick relative to
// currentTick. Only ticks with
// oneMinusPercSwap > 0 are candidates (ticks crossed earlier in the same
// swap still sit in the book awaiting the deferred burn). lte selects
// direction: true looks at or below currentTick (zeroForOne's limit-order
// side), false looks strictly above.
//
// Returns (tick, true) when a usable LO tick was found, or (tick, false)
// with the next-best candidate (possibly stale) so the range-order
// engine still knows where to clip its own step, or (0, false) if the
// book is entirely empty.
func (b *LimitTickBook) nextLimitTick(lte bool, currentTick int) (int, bool) {
	var keys []int
	for k, v := range b.ticks {
		if v.OneMinusPercSwap.IsPositive() {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return 0, false
	}
	sort.Ints(keys)

	if lte {
		// The closest usable tick at or below currentTick is the largest
		// such key, not the smallest key in the whole book: price only
		// crosses the nearer resting orders first as it falls.
		best, found := 0, false
		for _, k := range keys {
			if k <= currentTick {
				best, found = k, true
			} else {
				break
			}
		}
		if found {
			return best, true
		}
		return keys[0], false
	}

	for _, k := range keys {
		if k > currentTick {
			return k, true
		}
	}
	return keys[len(keys)-1], false
}
