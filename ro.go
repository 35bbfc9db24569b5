package jit_amm_pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	sdkutils "github.com/daoleno/uniswapv3-sdk/utils"
)

// checkTicks validates a range order's bounds, matching Position.checkTicks.
func (p *Pool) checkTicks(tickLower, tickUpper int) error {
	if tickLower >= tickUpper {
		return ErrTickOrder
	}
	minTick, maxTick := MinTick(p.TickSpacing), MaxTick(p.TickSpacing)
	if tickLower < minTick {
		return ErrTickBelowMin
	}
	if tickUpper > maxTick {
		return ErrTickAboveMax
	}
	return nil
}

// modifyRangePosition is the shared mint/burn path for range orders,
// grounded on CorePool._modifyPosition: updates both tick boundaries, reads
// the fee growth accrued inside the range, and updates the position.
func (p *Pool) modifyRangePosition(owner common.Address, tickLower, tickUpper int, liquidityDelta decimal.Decimal) (*RangePosition, decimal.Decimal, decimal.Decimal, error) {
	if err := p.checkTicks(tickLower, tickUpper); err != nil {
		return nil, decimal.Zero, decimal.Zero, err
	}

	var flippedLower, flippedUpper bool
	if !liquidityDelta.IsZero() {
		var err error
		flippedLower, err = p.RangeTicks.Update(tickLower, p.Tick, liquidityDelta, p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128, false)
		if err != nil {
			return nil, decimal.Zero, decimal.Zero, err
		}
		flippedUpper, err = p.RangeTicks.Update(tickUpper, p.Tick, liquidityDelta, p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128, true)
		if err != nil {
			return nil, decimal.Zero, decimal.Zero, err
		}
	}

	feeGrowthInside0, feeGrowthInside1 := p.RangeTicks.GetFeeGrowthInside(tickLower, tickUpper, p.Tick, p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128)

	key := RangePositionKey{Owner: owner, TickLower: tickLower, TickUpper: tickUpper}
	position := p.RangePositions.GetPositionAndInitIfAbsent(key)
	if err := position.Update(liquidityDelta, feeGrowthInside0, feeGrowthInside1); err != nil {
		return nil, decimal.Zero, decimal.Zero, err
	}

	if liquidityDelta.IsNegative() {
		if flippedLower {
			p.RangeTicks.Clear(tickLower)
		}
		if flippedUpper {
			p.RangeTicks.Clear(tickUpper)
		}
	}

	var amount0, amount1 decimal.Decimal
	if !liquidityDelta.IsZero() {
		var err error
		amount0, amount1, err = p.rangeAmountsForLiquidityDelta(tickLower, tickUpper, liquidityDelta)
		if err != nil {
			return nil, decimal.Zero, decimal.Zero, err
		}
	}

	return position, amount0, amount1, nil
}

// rangeAmountsForLiquidityDelta computes the token0/token1 amounts a
// liquidity delta corresponds to given the pool's current tick, matching
// CorePool._modifyPosition's three-way split on tickCurrent vs
// [tickLower, tickUpper).
func (p *Pool) rangeAmountsForLiquidityDelta(tickLower, tickUpper int, liquidityDelta decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	sqrtRatioA, err := p.Engine.GetSqrtRatioAtTick(tickLower)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	sqrtRatioB, err := p.Engine.GetSqrtRatioAtTick(tickUpper)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	switch {
	case p.Tick < tickLower:
		amount0, err := sdkGetAmount0Delta(sqrtRatioA.BigInt(), sqrtRatioB.BigInt(), liquidityDelta.BigInt())
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		return decimal.NewFromBigInt(amount0, 0), decimal.Zero, nil
	case p.Tick < tickUpper:
		amount0, err := sdkGetAmount0Delta(p.SqrtPriceX96.BigInt(), sqrtRatioB.BigInt(), liquidityDelta.BigInt())
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		amount1, err := sdkGetAmount1Delta(sqrtRatioA.BigInt(), p.SqrtPriceX96.BigInt(), liquidityDelta.BigInt())
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		if liquidityDelta.IsPositive() {
			p.Liquidity = p.Liquidity.Add(liquidityDelta)
		} else {
			p.Liquidity = p.Liquidity.Add(liquidityDelta)
			if p.Liquidity.IsNegative() {
				return decimal.Zero, decimal.Zero, ErrLiquidityUnderflow
			}
		}
		return decimal.NewFromBigInt(amount0, 0), decimal.NewFromBigInt(amount1, 0), nil
	default:
		amount1, err := sdkGetAmount1Delta(sqrtRatioA.BigInt(), sqrtRatioB.BigInt(), liquidityDelta.BigInt())
		if err != nil {
			return decimal.Zero, decimal.Zero, err
		}
		return decimal.Zero, decimal.NewFromBigInt(amount1, 0), nil
	}
}

func sdkGetAmount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int) (*big.Int, error) {
	return sdkutils.GetAmount0Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity, liquidity.Sign() > 0)
}

func sdkGetAmount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity *big.Int) (*big.Int, error) {
	return sdkutils.GetAmount1Delta(sqrtRatioAX96, sqrtRatioBX96, liquidity, liquidity.Sign() > 0)
}

// MintRangeOrder adds concentrated liquidity to [tickLower, tickUpper],
// matching CorePool.Mint.
func (p *Pool) MintRangeOrder(recipient common.Address, tickLower, tickUpper int, liquidity decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if !liquidity.IsPositive() {
		return decimal.Zero, decimal.Zero, ErrAmountZero
	}
	_, amount0, amount1, err := p.modifyRangePosition(recipient, tickLower, tickUpper, liquidity)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	pool := poolAccount(p)
	if amount0.IsPositive() {
		if err := p.Ledger.TransferToken(recipient, pool, p.Token0, amount0); err != nil {
			return decimal.Zero, decimal.Zero, err
		}
	}
	if amount1.IsPositive() {
		if err := p.Ledger.TransferToken(recipient, pool, p.Token1, amount1); err != nil {
			return decimal.Zero, decimal.Zero, err
		}
	}
	p.metrics.recordMint()
	return amount0, amount1, nil
}

// BurnRangeOrder removes concentrated liquidity, crediting the owed token
// balances without transferring them (the owner must call CollectRangeOrder
// to withdraw), matching CorePool.Burn.
func (p *Pool) BurnRangeOrder(owner common.Address, tickLower, tickUpper int, liquidity decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	if !liquidity.IsPositive() {
		return decimal.Zero, decimal.Zero, ErrAmountZero
	}
	position, amount0, amount1, err := p.modifyRangePosition(owner, tickLower, tickUpper, liquidity.Neg())
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	if amount0.IsPositive() {
		position.TokensOwed0 = position.TokensOwed0.Add(amount0)
	}
	if amount1.IsPositive() {
		position.TokensOwed1 = position.TokensOwed1.Add(amount1)
	}
	p.metrics.recordBurn()
	return amount0.Abs(), amount1.Abs(), nil
}

// CollectRangeOrder withdraws owed tokens up to the requested caps,
// matching CorePool.Collect.
func (p *Pool) CollectRangeOrder(recipient common.Address, owner common.Address, tickLower, tickUpper int, amount0Requested, amount1Requested decimal.Decimal) (decimal.Decimal, decimal.Decimal, error) {
	key := RangePositionKey{Owner: owner, TickLower: tickLower, TickUpper: tickUpper}
	position, ok := p.RangePositions.positions[key]
	if !ok {
		return decimal.Zero, decimal.Zero, ErrPositionNotFound
	}

	amount0 := decimalMin(position.TokensOwed0, amount0Requested)
	amount1 := decimalMin(position.TokensOwed1, amount1Requested)

	pool := poolAccount(p)
	if amount0.IsPositive() {
		position.TokensOwed0 = position.TokensOwed0.Sub(amount0)
		if err := p.Ledger.TransferToken(pool, recipient, p.Token0, amount0); err != nil {
			return decimal.Zero, decimal.Zero, err
		}
	}
	if amount1.IsPositive() {
		position.TokensOwed1 = position.TokensOwed1.Sub(amount1)
		if err := p.Ledger.TransferToken(pool, recipient, p.Token1, amount1); err != nil {
			return decimal.Zero, decimal.Zero, err
		}
	}
	return amount0, amount1, nil
}
