package jit_amm_pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// LimitPositionKey identifies a single limit order: an owner resting on one
// tick, on one side of the pool (isToken0 selects which token they're
// selling). A plain comparable struct works as a map key directly since
// common.Address is itself a fixed-size comparable array, with no need
// for a separately computed hash key.
type LimitPositionKey struct {
	Owner    common.Address
	Tick     int
	IsToken0 bool
}

// LimitPosition is one resting limit order.
type LimitPosition struct {
	Liquidity               *uint256.Int
	OneMinusPercSwapMint    D
	TokensOwed0             *uint256.Int
	TokensOwed1             *uint256.Int
	FeeGrowthInsideLastX128 *uint256.Int
}

func newLimitPosition() *LimitPosition {
	return &LimitPosition{
		Liquidity:               uint256.NewInt(0),
		OneMinusPercSwapMint:    OneDec,
		TokensOwed0:             uint256.NewInt(0),
		TokensOwed1:             uint256.NewInt(0),
		FeeGrowthInsideLastX128: uint256.NewInt(0),
	}
}

// LimitPositionStore is the pool-wide map of every resting limit order.
type LimitPositionStore struct {
	positions map[LimitPositionKey]*LimitPosition
}

func newLimitPositionStore() *LimitPositionStore {
	return &LimitPositionStore{positions: make(map[LimitPositionKey]*LimitPosition)}
}

func (s *LimitPositionStore) clone() *LimitPositionStore {
	out := newLimitPositionStore()
	for k, v := range s.positions {
		out.positions[k] = &LimitPosition{
			Liquidity:               new(uint256.Int).Set(v.Liquidity),
			OneMinusPercSwapMint:    v.OneMinusPercSwapMint,
			TokensOwed0:             new(uint256.Int).Set(v.TokensOwed0),
			TokensOwed1:             new(uint256.Int).Set(v.TokensOwed1),
			FeeGrowthInsideLastX128: new(uint256.Int).Set(v.FeeGrowthInsideLastX128),
		}
	}
	return out
}

// get returns the position at key, lazily creating an empty one if
// absent. created reports whether this call just made it.
func (s *LimitPositionStore) get(key LimitPositionKey) (pos *LimitPosition, created bool) {
	if p, ok := s.positions[key]; ok {
		return p, false
	}
	p := newLimitPosition()
	s.positions[key] = p
	return p, true
}

func (s *LimitPositionStore) delete(key LimitPositionKey) {
	delete(s.positions, key)
}

// update applies a liquidity change to pos and returns
// (liquidityLeftDelta, liquiditySwappedDelta). liquidityLeftDelta is
// signed: the minted amount on mint, minus the unswapped input-token share
// removed on burn. liquiditySwappedDelta is zero on mint; on burn it is
// the non-negative amount of the opposite token credited for the swapped
// share. The pool façade routes their absolute values into
// amountBurnt0/1 (or, on mint, asserts liquidityLeftDelta equals the
// minted amount).
//
// liquidityDelta is a u128-range amount carried as *big.Int so a mint
// can't silently wrap at the int64/uint64 boundary. A positive
// liquidityDelta is mint-on-top (or first mint); negative is burn; zero
// is a fee-only poke.
func (s *LimitPositionStore) update(
	pos *LimitPosition,
	liquidityDelta *big.Int,
	oneMinusPercSwap D,
	isToken0 bool,
	priceX96 *uint256.Int,
	feeGrowthInsideX128 *uint256.Int,
	created bool,
) (liquidityLeftDelta, liquiditySwappedDelta *big.Int) {
	if created {
		if liquidityDelta.Sign() <= 0 {
			panic("jit_amm_pool: first mint of a limit position must add liquidity")
		}
		pos.OneMinusPercSwapMint = oneMinusPercSwap
		pos.FeeGrowthInsideLastX128 = new(uint256.Int).Set(feeGrowthInsideX128)
	}

	var liquidityNext *uint256.Int
	if liquidityDelta.Sign() == 0 {
		liquidityNext = pos.Liquidity
	} else {
		liquidityNext = addDeltaU256(pos.Liquidity, liquidityDelta)
	}

	feeDelta := new(uint256.Int).Sub(feeGrowthInsideX128, pos.FeeGrowthInsideLastX128)
	tokensOwed := mulDiv(feeDelta, pos.Liquidity, Q128)
	if tokensOwed.Gt(MaxUint128) {
		tokensOwed = new(uint256.Int).And(tokensOwed, MaxUint128)
	}

	liquidityLeftDelta = big.NewInt(0)
	liquiditySwappedDelta = big.NewInt(0)

	if liquidityDelta.Sign() >= 0 {
		liquidityLeftDelta = new(big.Int).Set(liquidityDelta)

		if liquidityDelta.Sign() > 0 && oneMinusPercSwap.LessThan(pos.OneMinusPercSwapMint) {
			percSwapDecrease := pos.OneMinusPercSwapMint.Sub(oneMinusPercSwap)
			amountSwappedPrev := amountSwappedFromTickPercentage(percSwapDecrease, pos.OneMinusPercSwapMint, pos.Liquidity)

			liquidityNextRat := new(big.Rat).SetInt(liquidityNext.ToBig())
			oneMinusSwapRat := new(big.Rat).Sub(bigRatOne, toRat(oneMinusPercSwap))
			numerator := new(big.Rat).Sub(new(big.Rat).Mul(liquidityNextRat, oneMinusSwapRat), new(big.Rat).SetInt(amountSwappedPrev.ToBig()))
			denominator := new(big.Rat).Sub(liquidityNextRat, new(big.Rat).SetInt(amountSwappedPrev.ToBig()))
			substrahend := fromRat(new(big.Rat).Quo(numerator, denominator), false)

			newOneMinusPercSwapMint := SubDRoundingUp(OneDec, substrahend)

			if !newOneMinusPercSwapMint.LessThan(pos.OneMinusPercSwapMint) {
				panic("jit_amm_pool: mint-on-top recomputed oneMinusPercSwapMint did not decrease")
			}
			if !newOneMinusPercSwapMint.GreaterThan(oneMinusPercSwap) {
				panic("jit_amm_pool: mint-on-top recomputed oneMinusPercSwapMint below current tick state")
			}
			if !newOneMinusPercSwapMint.IsPositive() {
				panic("jit_amm_pool: mint-on-top recomputed oneMinusPercSwapMint is not positive")
			}

			pos.OneMinusPercSwapMint = newOneMinusPercSwapMint
		}
	} else {
		if !pos.OneMinusPercSwapMint.IsPositive() {
			panic("jit_amm_pool: burning a position with no recorded mint percentage")
		}

		percSwapDecrease := pos.OneMinusPercSwapMint.Sub(oneMinusPercSwap)
		amountSwappedPrev := amountSwappedFromTickPercentage(percSwapDecrease, pos.OneMinusPercSwapMint, pos.Liquidity)
		amountSwappedPrevRounding := amountSwappedFromTickPercentageRoundUp(percSwapDecrease, pos.OneMinusPercSwapMint, pos.Liquidity)

		var currentPosition0, currentPosition1 *uint256.Int
		if isToken0 {
			currentPosition0 = addDeltaU256(pos.Liquidity, new(big.Int).Neg(amountSwappedPrevRounding.ToBig()))
			currentPosition1 = calcAmount1FromAmount0(amountSwappedPrev, priceX96, false)
		} else {
			currentPosition1 = addDeltaU256(pos.Liquidity, new(big.Int).Neg(amountSwappedPrevRounding.ToBig()))
			currentPosition0 = calcAmount0FromAmount1(amountSwappedPrev, priceX96, false)
		}

		liquidityToRemove, overflow := uint256.FromBig(new(big.Int).Neg(liquidityDelta))
		if overflow {
			panic("jit_amm_pool: burn amount overflowed 256 bits")
		}

		liquiditySwappedU := mulDiv(liquidityToRemove, amountSwappedPrev, pos.Liquidity)
		liquiditySwappedDelta = new(big.Int).Neg(liquiditySwappedU.ToBig())

		var liquidityLeftU *uint256.Int
		if isToken0 {
			liquidityLeftU = mulDiv(liquidityToRemove, currentPosition0, pos.Liquidity)
		} else {
			liquidityLeftU = mulDiv(liquidityToRemove, currentPosition1, pos.Liquidity)
		}
		liquidityLeftDelta = new(big.Int).Neg(liquidityLeftU.ToBig())

		if currentPosition0.Gt(MaxUint128) {
			currentPosition0 = new(uint256.Int).And(currentPosition0, MaxUint128)
		}
		if currentPosition1.Gt(MaxUint128) {
			currentPosition1 = new(uint256.Int).And(currentPosition1, MaxUint128)
		}

		if isToken0 {
			pos.TokensOwed0 = addU256(pos.TokensOwed0, absU256(liquidityLeftDelta))
			swappedToken1 := calcAmount1FromAmount0(absU256(liquiditySwappedDelta), priceX96, false)
			pos.TokensOwed1 = addU256(pos.TokensOwed1, swappedToken1)
			liquiditySwappedDelta = swappedToken1.ToBig()
		} else {
			swappedToken0 := calcAmount0FromAmount1(absU256(liquiditySwappedDelta), priceX96, false)
			pos.TokensOwed0 = addU256(pos.TokensOwed0, swappedToken0)
			pos.TokensOwed1 = addU256(pos.TokensOwed1, absU256(liquidityLeftDelta))
			liquiditySwappedDelta = swappedToken0.ToBig()
		}
	}

	if liquidityDelta.Sign() != 0 {
		pos.Liquidity = liquidityNext
	}
	pos.FeeGrowthInsideLastX128 = new(uint256.Int).Set(feeGrowthInsideX128)

	if tokensOwed.Sign() > 0 {
		if isToken0 {
			pos.TokensOwed1 = addU256(pos.TokensOwed1, tokensOwed)
		} else {
			pos.TokensOwed0 = addU256(pos.TokensOwed0, tokensOwed)
		}
	}

	return liquidityLeftDelta, liquiditySwappedDelta
}

var bigRatOne = big.NewRat(1, 1)

func addU256(a, b *uint256.Int) *uint256.Int { return new(uint256.Int).Add(a, b) }

func absU256(b *big.Int) *uint256.Int {
	v, overflow := uint256.FromBig(new(big.Int).Abs(b))
	if overflow {
		panic("jit_amm_pool: absU256 overflowed 256 bits")
	}
	return v
}
