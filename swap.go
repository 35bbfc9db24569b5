package jit_amm_pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// swapState threads through the interleaved limit-order/range-order loop.
type swapState struct {
	amountSpecifiedRemaining *big.Int
	amountCalculated         *big.Int
	sqrtPriceX96             decimal.Decimal
	tick                     int
	feeGrowthGlobalX128      decimal.Decimal
	protocolFee              *big.Int
	liquidity                decimal.Decimal
	ticksCrossed             []int
}

// SwapResult is everything Swap reports back.
type SwapResult struct {
	Recipient    common.Address
	Amount0      *big.Int
	Amount1      *big.Int
	SqrtPriceX96 decimal.Decimal
	Liquidity    decimal.Decimal
	Tick         int
}

// maxSwapIterations bounds the interleaved loop so a malformed or
// adversarial tick layout can't spin forever; see ErrSwapNoProgress in
// errors.go.
const maxSwapIterations = 200_000

// Swap executes a range/limit order swap: at each iteration it first
// probes the best-priced resting limit order on the tick directly across
// the pool, then falls through to a range-order step clipped so it never
// swaps through a better limit-order price. Ticks fully crossed during
// the swap are collected in state.ticksCrossed and burned only after the
// final balance transfers, preserving "receive input before paying LPs".
func (p *Pool) Swap(recipient common.Address, zeroForOne bool, amountSpecified *big.Int, sqrtPriceLimitX96 decimal.Decimal) (SwapResult, error) {
	if !p.initialized {
		return SwapResult{}, ErrPoolNotInit
	}
	if amountSpecified.Sign() == 0 {
		return SwapResult{}, ErrAmountSpecifiedZero
	}

	sqrtPriceStart := p.SqrtPriceX96
	if zeroForOne {
		if !(sqrtPriceLimitX96.LessThan(sqrtPriceStart) && sqrtPriceLimitX96.GreaterThan(MinSqrtRatio)) {
			return SwapResult{}, ErrPriceLimitOutOfRange
		}
	} else {
		if !(sqrtPriceLimitX96.GreaterThan(sqrtPriceStart) && sqrtPriceLimitX96.LessThan(MaxSqrtRatio)) {
			return SwapResult{}, ErrPriceLimitOutOfRange
		}
	}

	p0, p1 := UnpackProtocolFee(p.ProtocolFee)
	feeProtocol := p0
	if !zeroForOne {
		feeProtocol = p1
	}

	liquidityStart := p.Liquidity
	exactInput := amountSpecified.Sign() > 0

	// zeroForOne drives price down, so it crosses resting token1 limit
	// orders (single-sided token1 liquidity parked below the current
	// price, converting to token0 as price falls through their tick).
	// oneForZero symmetrically crosses resting token0 orders above price.
	limitBook := p.LimitTicksToken1
	if !zeroForOne {
		limitBook = p.LimitTicksToken0
	}

	state := &swapState{
		amountSpecifiedRemaining: new(big.Int).Set(amountSpecified),
		amountCalculated:         big.NewInt(0),
		sqrtPriceX96:             sqrtPriceStart,
		tick:                     p.Tick,
		protocolFee:              big.NewInt(0),
		liquidity:                liquidityStart,
	}
	if zeroForOne {
		state.feeGrowthGlobalX128 = p.FeeGrowthGlobal0X128
	} else {
		state.feeGrowthGlobalX128 = p.FeeGrowthGlobal1X128
	}

	for iter := 0; state.amountSpecifiedRemaining.Sign() != 0 && !state.sqrtPriceX96.Equal(sqrtPriceLimitX96); iter++ {
		if iter >= maxSwapIterations {
			return SwapResult{}, ErrSwapNoProgress
		}

		// ---- limit order probe ----
		tickNext, limitUsable := limitBook.nextLimitTick(zeroForOne, state.tick)

		if limitUsable {
			crossedNow, shouldBreak, err := p.stepLimitOrder(state, limitBook, tickNext, zeroForOne, exactInput, feeProtocol)
			if err != nil {
				return SwapResult{}, err
			}
			if crossedNow {
				state.ticksCrossed = append(state.ticksCrossed, tickNext)
				if state.amountSpecifiedRemaining.Sign() != 0 {
					continue
				}
			}
			if shouldBreak {
				break
			}
			if crossedNow {
				continue
			}
		}

		// ---- range order step ----
		rangeTickNext, stepInit := p.RangeTicks.GetNextInitializedTick(state.tick, zeroForOne)
		if !stepInit {
			// No initialized range tick is left in this direction: let the
			// step run towards the absolute tick bound instead of stopping at
			// the spacing-aligned fallback, from which no further progress
			// towards sqrtPriceLimitX96 would be possible.
			if zeroForOne {
				rangeTickNext = MinTick(1)
			} else {
				rangeTickNext = MaxTick(1)
			}
		}
		sqrtPriceNextX96, err := p.Engine.GetSqrtRatioAtTick(rangeTickNext)
		if err != nil {
			return SwapResult{}, err
		}

		var nextLOatPrice decimal.Decimal
		if limitUsable {
			nextLOatTick := tickNext
			if zeroForOne {
				nextLOatTick = tickNext - 1
			}
			nextLOatPrice, err = p.Engine.GetSqrtRatioAtTick(nextLOatTick)
			if err != nil {
				return SwapResult{}, err
			}
		} else {
			nextLOatPrice = sqrtPriceLimitX96
		}

		sqrtRatioTargetX96 := sqrtPriceNextX96
		if zeroForOne {
			sqrtRatioTargetX96 = decimalMax(decimalMax(sqrtPriceLimitX96, sqrtPriceNextX96), nextLOatPrice)
		} else {
			sqrtRatioTargetX96 = decimalMin(decimalMin(sqrtPriceLimitX96, sqrtPriceNextX96), nextLOatPrice)
		}

		sqrtPriceAfter, amountIn, amountOut, feeAmount, err := p.Engine.ComputeSwapStep(
			state.sqrtPriceX96, sqrtRatioTargetX96, state.liquidity, decimalFromBigInt(state.amountSpecifiedRemaining), int(p.Fee),
		)
		if err != nil {
			return SwapResult{}, err
		}
		sqrtPriceBefore := state.sqrtPriceX96
		state.sqrtPriceX96 = sqrtPriceAfter

		if exactInput {
			state.amountSpecifiedRemaining.Sub(state.amountSpecifiedRemaining, new(big.Int).Add(amountIn.BigInt(), feeAmount.BigInt()))
			state.amountCalculated.Sub(state.amountCalculated, amountOut.BigInt())
		} else {
			state.amountSpecifiedRemaining.Add(state.amountSpecifiedRemaining, amountOut.BigInt())
			state.amountCalculated.Add(state.amountCalculated, new(big.Int).Add(amountIn.BigInt(), feeAmount.BigInt()))
		}

		if feeProtocol > 0 {
			delta := new(big.Int).Div(feeAmount.BigInt(), big.NewInt(int64(feeProtocol)))
			feeAmount = feeAmount.Sub(decimalFromBigInt(delta))
			state.protocolFee.Add(state.protocolFee, delta)
		}

		if state.liquidity.IsPositive() {
			state.feeGrowthGlobalX128 = addWrapDecimal(state.feeGrowthGlobalX128, feeAmount.Mul(Q128Dec).Div(state.liquidity).Truncate(0))
		}

		if state.sqrtPriceX96.Equal(sqrtPriceNextX96) {
			if stepInit {
				feeGrowthGlobal0, feeGrowthGlobal1 := p.FeeGrowthGlobal0X128, p.FeeGrowthGlobal1X128
				if zeroForOne {
					feeGrowthGlobal0 = state.feeGrowthGlobalX128
				} else {
					feeGrowthGlobal1 = state.feeGrowthGlobalX128
				}
				liquidityNet := p.RangeTicks.Cross(rangeTickNext, feeGrowthGlobal0, feeGrowthGlobal1)
				if zeroForOne {
					liquidityNet = liquidityNet.Neg()
				}
				newLiquidity := state.liquidity.Add(liquidityNet)
				if newLiquidity.IsNegative() {
					return SwapResult{}, ErrLiquidityUnderflow
				}
				state.liquidity = newLiquidity
			}
			if zeroForOne {
				state.tick = rangeTickNext - 1
			} else {
				state.tick = rangeTickNext
			}
		} else if !state.sqrtPriceX96.Equal(sqrtPriceBefore) {
			newTick, terr := p.Engine.GetTickAtSqrtRatio(state.sqrtPriceX96)
			if terr != nil {
				return SwapResult{}, terr
			}
			state.tick = newTick
		}
	}

	if logrus.GetLevel() >= logrus.TraceLevel {
		logrus.Tracef("pool %s swap loop settled at tick=%d ticksCrossed=%v", p.Address, state.tick, state.ticksCrossed)
	}

	p.SqrtPriceX96 = state.sqrtPriceX96
	p.Tick = state.tick
	if !liquidityStart.Equal(state.liquidity) {
		p.Liquidity = state.liquidity
	}

	if zeroForOne {
		p.FeeGrowthGlobal0X128 = state.feeGrowthGlobalX128
		if state.protocolFee.Sign() > 0 {
			p.ProtocolFees0 = p.ProtocolFees0.Add(decimalFromBigInt(state.protocolFee))
			p.metrics.recordProtocolFee0(decimalFromBigInt(state.protocolFee).InexactFloat64())
		}
	} else {
		p.FeeGrowthGlobal1X128 = state.feeGrowthGlobalX128
		if state.protocolFee.Sign() > 0 {
			p.ProtocolFees1 = p.ProtocolFees1.Add(decimalFromBigInt(state.protocolFee))
			p.metrics.recordProtocolFee1(decimalFromBigInt(state.protocolFee).InexactFloat64())
		}
	}

	var amount0, amount1 *big.Int
	remaining := new(big.Int).Sub(amountSpecified, state.amountSpecifiedRemaining)
	if zeroForOne == exactInput {
		amount0, amount1 = remaining, state.amountCalculated
	} else {
		amount0, amount1 = state.amountCalculated, remaining
	}

	if err := p.settleSwapTransfers(recipient, zeroForOne, amount0, amount1); err != nil {
		return SwapResult{}, err
	}

	for _, tick := range state.ticksCrossed {
		if zeroForOne {
			p.burnCrossedTicksAndPositions(false, tick, p.Token1)
		} else {
			p.burnCrossedTicksAndPositions(true, tick, p.Token0)
		}
	}

	p.metrics.recordSwap(len(state.ticksCrossed))

	return SwapResult{
		Recipient:    recipient,
		Amount0:      amount0,
		Amount1:      amount1,
		SqrtPriceX96: state.sqrtPriceX96,
		Liquidity:    state.liquidity,
		Tick:         state.tick,
	}, nil
}

// stepLimitOrder runs one limit-order probe iteration of the swap loop.
// Returns crossedNow (the tick was fully swapped this step) and
// shouldBreak (the swap loop is finished: the specified amount is fully
// consumed, whether or not the tick was crossed this step).
func (p *Pool) stepLimitOrder(state *swapState, book *LimitTickBook, tickNext int, zeroForOne, exactInput bool, feeProtocol uint8) (crossedNow bool, shouldBreak bool, err error) {
	info, _ := book.get(tickNext)
	if !info.OneMinusPercSwap.IsPositive() {
		panic("jit_amm_pool: next limit tick candidate has no remaining liquidity")
	}

	priceX96 := priceAtTickLO(mustSqrtPriceAtTick(p, tickNext))
	step := computeLimitSwapStep(priceX96, info.LiquidityGross, state.amountSpecifiedRemaining, p.Fee, zeroForOne, info.OneMinusPercSwap)

	if info.OneMinusPercSwap.GreaterThan(OneDec) {
		panic("jit_amm_pool: oneMinusPercSwap exceeded 1 before this step")
	}
	info.OneMinusPercSwap = step.ResultingOneMinusPercSwap

	if exactInput {
		state.amountSpecifiedRemaining.Sub(state.amountSpecifiedRemaining, new(big.Int).Add(step.AmountIn.ToBig(), step.FeeAmount.ToBig()))
		state.amountCalculated.Sub(state.amountCalculated, step.AmountOut.ToBig())
	} else {
		state.amountSpecifiedRemaining.Add(state.amountSpecifiedRemaining, step.AmountOut.ToBig())
		state.amountCalculated.Add(state.amountCalculated, new(big.Int).Add(step.AmountIn.ToBig(), step.FeeAmount.ToBig()))
	}

	feeAmount := step.FeeAmount
	if feeProtocol > 0 {
		delta := new(uint256.Int).Div(feeAmount, uint256.NewInt(uint64(feeProtocol)))
		feeAmount = new(uint256.Int).Sub(feeAmount, delta)
		state.protocolFee.Add(state.protocolFee, delta.ToBig())
	}

	feeGrowthDelta := mulDiv(feeAmount, Q128, info.LiquidityGross)
	info.FeeGrowthInsideX128 = addWrap(info.FeeGrowthInsideX128, feeGrowthDelta)

	if step.TickCrossed {
		if !info.OneMinusPercSwap.IsZero() {
			panic("jit_amm_pool: limit tick reported crossed but oneMinusPercSwap != 0")
		}
		return true, state.amountSpecifiedRemaining.Sign() == 0, nil
	}

	if state.amountSpecifiedRemaining.Sign() != 0 {
		panic("jit_amm_pool: partial limit-order fill left amountSpecifiedRemaining non-zero")
	}
	return false, true, nil
}

func decimalMax(a, b decimal.Decimal) decimal.Decimal {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

func decimalMin(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

func addWrapDecimal(a, b decimal.Decimal) decimal.Decimal {
	av, _ := uint256.FromBig(a.BigInt())
	bv, _ := uint256.FromBig(b.BigInt())
	return decimalFromBigInt(addWrap(av, bv).ToBig())
}

// settleSwapTransfers performs the end-of-swap balance transfers: pay out
// any negative leg first, then pull the positive leg, checking balance
// conservation on that pull, so limit-order burns (which read pool
// balances) only run after the swap's own transfers have settled.
func (p *Pool) settleSwapTransfers(recipient common.Address, zeroForOne bool, amount0, amount1 *big.Int) error {
	pool := poolAccount(p)
	if zeroForOne {
		if amount1.Sign() < 0 {
			if err := p.Ledger.TransferToken(pool, recipient, p.Token1, decimalFromBigInt(new(big.Int).Abs(amount1))); err != nil {
				return err
			}
		}
		balanceBefore := p.Ledger.BalanceOf(pool, p.Token0)
		if err := p.Ledger.TransferToken(recipient, pool, p.Token0, decimalFromBigInt(new(big.Int).Abs(amount0))); err != nil {
			return err
		}
		if !balanceBefore.Add(decimalFromBigInt(new(big.Int).Abs(amount0))).Equal(p.Ledger.BalanceOf(pool, p.Token0)) {
			return ErrBalanceMismatch
		}
	} else {
		if amount0.Sign() < 0 {
			if err := p.Ledger.TransferToken(pool, recipient, p.Token0, decimalFromBigInt(new(big.Int).Abs(amount0))); err != nil {
				return err
			}
		}
		balanceBefore := p.Ledger.BalanceOf(pool, p.Token1)
		if err := p.Ledger.TransferToken(recipient, pool, p.Token1, decimalFromBigInt(new(big.Int).Abs(amount1))); err != nil {
			return err
		}
		if !balanceBefore.Add(decimalFromBigInt(new(big.Int).Abs(amount1))).Equal(p.Ledger.BalanceOf(pool, p.Token1)) {
			return ErrBalanceMismatch
		}
	}
	return nil
}
