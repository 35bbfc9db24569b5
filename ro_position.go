package jit_amm_pool

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// RangePositionKey identifies one concentrated-liquidity position: an
// owner's stake between two ticks, matching Uniswap v3's
// keccak256(owner, tickLower, tickUpper) position key, simplified here to
// a plain comparable struct (see the design note in limit_position.go on
// ownerless address identifiers).
type RangePositionKey struct {
	Owner      common.Address
	TickLower  int
	TickUpper  int
}

// RangePosition is one concentrated-liquidity position's state, matching
// Uniswap v3's Position.Info.
type RangePosition struct {
	Liquidity                decimal.Decimal
	FeeGrowthInside0LastX128 decimal.Decimal
	FeeGrowthInside1LastX128 decimal.Decimal
	TokensOwed0              decimal.Decimal
	TokensOwed1              decimal.Decimal
}

// RangePositionManager owns every range-order position, keyed by owner
// and tick range.
type RangePositionManager struct {
	positions map[RangePositionKey]*RangePosition
}

func NewRangePositionManager() *RangePositionManager {
	return &RangePositionManager{positions: make(map[RangePositionKey]*RangePosition)}
}

func (m *RangePositionManager) clone() *RangePositionManager {
	out := NewRangePositionManager()
	for k, v := range m.positions {
		cp := *v
		out.positions[k] = &cp
	}
	return out
}

// GetPositionAndInitIfAbsent returns the position at key, creating an
// empty one on first access, matching PositionManager.get.
func (m *RangePositionManager) GetPositionAndInitIfAbsent(key RangePositionKey) *RangePosition {
	p, ok := m.positions[key]
	if !ok {
		p = &RangePosition{
			Liquidity:                decimal.Zero,
			FeeGrowthInside0LastX128: decimal.Zero,
			FeeGrowthInside1LastX128: decimal.Zero,
			TokensOwed0:              decimal.Zero,
			TokensOwed1:              decimal.Zero,
		}
		m.positions[key] = p
	}
	return p
}

// Update applies a liquidity delta and settles accrued fees into
// tokensOwed, matching Position.update.
func (p *RangePosition) Update(liquidityDelta decimal.Decimal, feeGrowthInside0X128, feeGrowthInside1X128 decimal.Decimal) error {
	liquidityNext := p.Liquidity.Add(liquidityDelta)
	if liquidityNext.IsNegative() {
		return ErrLiquidityUnderflow
	}
	if liquidityDelta.IsZero() && p.Liquidity.IsZero() {
		return ErrPositionNotFound
	}

	tokensOwed0 := feeGrowthInside0X128.Sub(p.FeeGrowthInside0LastX128).Mul(p.Liquidity).Div(Q128Dec)
	tokensOwed1 := feeGrowthInside1X128.Sub(p.FeeGrowthInside1LastX128).Mul(p.Liquidity).Div(Q128Dec)

	p.Liquidity = liquidityNext
	p.FeeGrowthInside0LastX128 = feeGrowthInside0X128
	p.FeeGrowthInside1LastX128 = feeGrowthInside1X128

	if tokensOwed0.IsPositive() {
		p.TokensOwed0 = p.TokensOwed0.Add(tokensOwed0)
	}
	if tokensOwed1.IsPositive() {
		p.TokensOwed1 = p.TokensOwed1.Add(tokensOwed1)
	}
	return nil
}
