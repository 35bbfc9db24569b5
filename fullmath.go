package jit_amm_pool

import (
	"math/big"

	"github.com/holiman/uint256"
)

// mulDiv and mulDivRoundingUp compute floor(a*b/denominator) and
// ceil(a*b/denominator) respectively over a 512-bit intermediate product,
// panicking on denominator==0 or on a result that doesn't fit back into
// 256 bits, matching the contract of Uniswap's FullMath.sol.
//
// uint256.Int.MulDivOverflow already performs the double-width multiply
// internally, so there's no need to hand-roll the 512-bit mulmod dance here;
// it reports overflow instead of silently truncating.
func mulDiv(a, b, denominator *uint256.Int) *uint256.Int {
	if denominator.IsZero() {
		panic("jit_amm_pool: mulDiv denominator is zero")
	}
	result, overflow := new(uint256.Int).MulDivOverflow(a, b, denominator)
	if overflow {
		panic("jit_amm_pool: mulDiv overflowed 256 bits")
	}
	return result
}

func mulDivRoundingUp(a, b, denominator *uint256.Int) *uint256.Int {
	result := mulDiv(a, b, denominator)
	if new(uint256.Int).MulMod(a, b, denominator).Sign() != 0 {
		result = new(uint256.Int).Add(result, uint256.NewInt(1))
	}
	return result
}

// unsafeMulDiv and unsafeMulDivRoundingUp compute the same floor/ceil of
// a*b/denominator but are explicitly allowed to wrap modulo 2^256 rather
// than panic on overflow, because the limit-order amount calculations
// that feed them only ever compare the result against other
// similarly-wrapped quantities, never trust it as an absolute magnitude
// beyond 256 bits. MulDivOverflow still reports the overflow flag; we
// ignore it on purpose here (unlike mulDiv above) and return the wrapped
// low 256 bits.
func unsafeMulDiv(a, b, denominator *uint256.Int) *uint256.Int {
	result, _ := new(uint256.Int).MulDivOverflow(a, b, denominator)
	return result
}

func unsafeMulDivRoundingUp(a, b, denominator *uint256.Int) *uint256.Int {
	result := unsafeMulDiv(a, b, denominator)
	if new(uint256.Int).MulMod(a, b, denominator).Sign() != 0 {
		result = new(uint256.Int).Add(result, uint256.NewInt(1))
	}
	return result
}

// unsafeDivRoundingUp computes ceil(a/b) without any overflow checking.
func unsafeDivRoundingUp(a, b *uint256.Int) *uint256.Int {
	q, r := new(uint256.Int).DivMod(a, b, new(uint256.Int))
	if r.Sign() != 0 {
		q = new(uint256.Int).Add(q, uint256.NewInt(1))
	}
	return q
}

// addDeltaU256 adds a signed liquidity delta (a u128-range quantity
// carried as *big.Int so a mint can't silently wrap at the int64/uint64
// boundary) to an unsigned liquidity value, panicking on underflow
// (liquidityDelta more negative than liquidity) or on a delta whose
// magnitude doesn't fit in 256 bits. Shared by both the range-order and
// limit-order tick update paths.
func addDeltaU256(x *uint256.Int, delta *big.Int) *uint256.Int {
	if delta.Sign() < 0 {
		d, overflow := uint256.FromBig(new(big.Int).Neg(delta))
		if overflow {
			panic("jit_amm_pool: liquidity delta overflowed 256 bits")
		}
		if x.Lt(d) {
			panic("jit_amm_pool: liquidity underflow in addDelta")
		}
		return new(uint256.Int).Sub(x, d)
	}
	d, overflow := uint256.FromBig(delta)
	if overflow {
		panic("jit_amm_pool: liquidity delta overflowed 256 bits")
	}
	return new(uint256.Int).Add(x, d)
}

// addWrap adds two feeGrowth accumulators modulo 2^256. uint256.Int.Add
// already wraps at 2^256 (it's a fixed-width type), which is exactly the
// unchecked wraparound semantics fee growth accumulators rely on:
// overflow here is expected behaviour, not an error condition.
func addWrap(a, b *uint256.Int) *uint256.Int {
	return new(uint256.Int).Add(a, b)
}
