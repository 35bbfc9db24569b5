package jit_amm_pool

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// D is the high-precision decimal used for oneMinusPercSwap /
// oneMinusPercSwapMint. It is always kept in [0, 1] by the callers in
// limit_tick.go / limit_position.go / limit_swapstep.go.
//
// The rounding mode here is never process-global: every operation that
// can lose precision either takes an explicit roundUp bool (DivD, fromRat)
// or has a fixed direction in its name (SubDRoundingUp, mulFloorU256,
// mulCeilU256, floorToU256), and returns a fresh value, so there is
// nothing to "restore on exit" and no reentrancy hazard if two partial
// fills are computed back to back.
type D = decimal.Decimal

// DecimalScale is the number of digits kept after the radix point when a
// division or multiplication result must be truncated to a finite
// decimal. 80 comfortably exceeds the ~39 decimal digits of a uint128
// and gives at least 78 significant digits of headroom.
const DecimalScale = 80

var pow10Scale = new(big.Int).Exp(big.NewInt(10), big.NewInt(DecimalScale), nil)

// decimalFromBigInt renders an integer exactly as a D, with no
// fractional part. Used to bridge uint256-domain quantities (amountOut,
// liquidity) into the decimal domain for the percentage arithmetic in
// swapstep/position.
func decimalFromBigInt(v *big.Int) D {
	return decimal.NewFromBigInt(v, 0)
}

func toRat(d D) *big.Rat {
	r, ok := new(big.Rat).SetString(d.String())
	if !ok {
		panic("jit_amm_pool: decimal value is not a valid rational literal: " + d.String())
	}
	return r
}

// fromRat renders a big.Rat as a D truncated to DecimalScale digits after
// the radix point, rounding toward zero (roundUp=false, "DOWN") or away
// from zero (roundUp=true, "UP"). Both r's numerator and denominator are
// assumed non-negative, which holds for every quantity this package feeds
// through it (fractions of liquidity in [0,1]).
func fromRat(r *big.Rat, roundUp bool) D {
	num := new(big.Int).Mul(r.Num(), pow10Scale)
	q, rem := new(big.Int).QuoRem(num, r.Denom(), new(big.Int))
	if roundUp && rem.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return decimal.NewFromBigInt(q, -DecimalScale)
}

// DivD computes a/b, rounded DOWN (roundUp=false) or UP (roundUp=true) to
// DecimalScale digits. Used for the `perc = percSwapChange /
// oneMinusPercSwap` style ratios in the limit-order swap step.
func DivD(a, b D, roundUp bool) D {
	return fromRat(new(big.Rat).Quo(toRat(a), toRat(b)), roundUp)
}

// MulD multiplies two decimals exactly (shopspring's Mul never loses
// precision, unlike Div).
func MulD(a, b D) D {
	return a.Mul(b)
}

// SubDRoundingUp computes a-b rounded UP. It panics if the result would
// be negative: that is an interior invariant violation, not a
// recoverable error.
func SubDRoundingUp(a, b D) D {
	result := fromRat(new(big.Rat).Sub(toRat(a), toRat(b)), true)
	if result.IsNegative() {
		panic("jit_amm_pool: subD_up produced a negative result (invariant violation)")
	}
	return result
}

// floorToU256 truncates a non-negative decimal toward zero and returns it
// as a uint256.Int, i.e. floor(d).
func floorToU256(d D) *uint256.Int {
	if d.IsNegative() {
		panic("jit_amm_pool: floorToU256 called on a negative decimal")
	}
	bi := d.Truncate(0).BigInt()
	v, overflow := uint256.FromBig(bi)
	if overflow {
		panic("jit_amm_pool: floorToU256 overflowed 256 bits")
	}
	return v
}

// mulFloorU256 computes floor(liquidity * frac) exactly, using big.Rat so
// that no precision is lost before the final truncation. This is the
// "amountSwappedPrev = floor(liquidityGross * perc)" step shared by
// mint-on-top and burn, and by the limit-order swap step.
func mulFloorU256(liquidity *uint256.Int, frac D) *uint256.Int {
	return mulRoundU256(liquidity, frac, false)
}

// mulCeilU256 is the ceiling twin of mulFloorU256.
func mulCeilU256(liquidity *uint256.Int, frac D) *uint256.Int {
	return mulRoundU256(liquidity, frac, true)
}

func mulRoundU256(liquidity *uint256.Int, frac D, roundUp bool) *uint256.Int {
	liqRat := new(big.Rat).SetInt(liquidity.ToBig())
	product := new(big.Rat).Mul(liqRat, toRat(frac))
	num := product.Num()
	den := product.Denom()
	q, rem := new(big.Int).QuoRem(num, den, new(big.Int))
	if roundUp && rem.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	v, overflow := uint256.FromBig(q)
	if overflow {
		panic("jit_amm_pool: mulRoundU256 overflowed 256 bits")
	}
	return v
}
