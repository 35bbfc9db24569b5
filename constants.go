package jit_amm_pool

import (
	"math/big"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// MinTickLO / MaxTickLO bound the limit-order tick domain. The bound is
// symmetric and chosen so that getPriceAtTick(tick) (the squared sqrt
// price) never rounds to zero.
const (
	MinTickLO = -665455
	MaxTickLO = 665455

	// OneInPips is the fee-unit denominator: feePips are hundredths of a
	// basis point.
	OneInPips = 1_000_000
)

var (
	// ZeroDec / OneDec are shared decimal.Decimal constants (pool.go uses
	// ZeroDec pervasively in place of a bare zero literal).
	ZeroDec = decimal.Zero
	OneDec  = decimal.NewFromInt(1)

	// Q96Dec / Q128Dec are the decimal forms of 2^96 / 2^128, used on the
	// range-order side where pool state is kept as decimal.Decimal.
	Q96Dec  = decimal.New(1, 0).Mul(decimalPow2(96))
	Q128Dec = decimal.New(1, 0).Mul(decimalPow2(128))

	// Q96 / Q128 are the uint256 forms used by the LO fixed-point engine
	// (component A/B), where wraparound and wide-product arithmetic is
	// cheaper to reason about as fixed-width integers.
	Q96  = new(uint256.Int).Lsh(uint256.NewInt(1), 96)
	Q128 = new(uint256.Int).Lsh(uint256.NewInt(1), 128)

	maxUint128Big = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	// MaxUint128 is the ceiling for tokensOwed*/liquidity wraparound.
	MaxUint128 = uint256.MustFromBig(maxUint128Big)

	// MinSqrtRatio / MaxSqrtRatio are the canonical Uniswap v3 sqrt-price
	// bounds, used for the swap price-limit checks.
	MinSqrtRatio = decimal.RequireFromString("4295128739")
	MaxSqrtRatio = decimal.RequireFromString("1461446703485210103287273052203988822378723970342")
)

func decimalPow2(n uint) decimal.Decimal {
	v := new(big.Int).Lsh(big.NewInt(1), n)
	return decimal.NewFromBigInt(v, 0)
}

// UnpackProtocolFee splits the packed (p0 | p1<<4) protocol-fee byte
// into its two nibble components.
func UnpackProtocolFee(packed uint8) (p0, p1 uint8) {
	return packed & 0x0F, packed >> 4
}

func validProtocolFeeComponent(p uint8) bool {
	return p == 0 || (p >= 4 && p <= 10)
}
