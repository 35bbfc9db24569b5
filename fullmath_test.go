package jit_amm_pool

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestMulDivExact(t *testing.T) {
	got := mulDiv(u(6), u(7), u(3))
	assert.Equal(t, uint64(14), got.Uint64())
}

func TestMulDivFloors(t *testing.T) {
	got := mulDiv(u(7), u(7), u(10))
	assert.Equal(t, uint64(4), got.Uint64()) // 49/10 = 4.9 -> 4
}

func TestMulDivRoundingUpCeils(t *testing.T) {
	got := mulDivRoundingUp(u(7), u(7), u(10))
	assert.Equal(t, uint64(5), got.Uint64()) // 49/10 = 4.9 -> 5
}

func TestMulDivRoundingUpExactNoBump(t *testing.T) {
	got := mulDivRoundingUp(u(6), u(7), u(3))
	assert.Equal(t, uint64(14), got.Uint64())
}

func TestMulDivPanicsOnOverflow(t *testing.T) {
	max := new(uint256.Int).Not(uint256.NewInt(0))
	assert.Panics(t, func() {
		mulDiv(max, max, u(1))
	})
}

func TestAddDeltaU256Positive(t *testing.T) {
	got := addDeltaU256(u(10), big.NewInt(5))
	assert.Equal(t, uint64(15), got.Uint64())
}

func TestAddDeltaU256Negative(t *testing.T) {
	got := addDeltaU256(u(10), big.NewInt(-4))
	assert.Equal(t, uint64(6), got.Uint64())
}

func TestAddDeltaU256PanicsOnUnderflow(t *testing.T) {
	assert.Panics(t, func() {
		addDeltaU256(u(3), big.NewInt(-4))
	})
}

func TestAddWrapIsCommutativeAndWraps(t *testing.T) {
	maxU := new(uint256.Int).Not(uint256.NewInt(0))
	got := addWrap(maxU, u(2))
	assert.Equal(t, uint64(1), got.Uint64()) // (2^256 - 1) + 2 mod 2^256 == 1

	a, b := u(123), u(456)
	require.Equal(t, addWrap(a, b).Uint64(), addWrap(b, a).Uint64())
}

func TestUnsafeMulDivToleratesOverflow(t *testing.T) {
	max := new(uint256.Int).Not(uint256.NewInt(0))
	// unsafeMulDiv must not panic even though the intermediate product
	// overflows 256 bits; it deliberately wraps rather than errors.
	assert.NotPanics(t, func() {
		unsafeMulDiv(max, max, u(1))
	})
}
