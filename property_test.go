package jit_amm_pool

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"pgregory.net/rapid"
)

// A limit tick's liquidityGross never goes negative, never exceeds
// maxLiquidityPerTick, and a full burn flips it back to uninitialized,
// for any sequence of mint amounts that individually fit under the cap.
func TestPropertyLimitTickBookLiquidityGrossStaysBounded(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		maxPerTick := uint256.NewInt(uint64(rapid.IntRange(1_000, 1_000_000_000).Draw(t, "maxPerTick")))
		book := newLimitTickBook(maxPerTick)

		amounts := rapid.SliceOfN(rapid.Int64Range(1, 1000), 1, 20).Draw(t, "amounts")

		var total int64
		ownerAdded := false
		for _, amt := range amounts {
			_, err := book.update(60, big.NewInt(amt), !ownerAdded, owner1)
			if err != nil {
				// the draw is allowed to overshoot the cap; that is a
				// CapacityExceeded result, not a bug.
				continue
			}
			ownerAdded = true
			total += amt
			info, ok := book.get(60)
			if !ok {
				t.Fatalf("tick must exist after a successful mint")
			}
			if info.LiquidityGross.Sign() < 0 {
				t.Fatalf("liquidityGross went negative")
			}
			if info.LiquidityGross.Gt(maxPerTick) {
				t.Fatalf("liquidityGross %s exceeded maxLiquidityPerTick %s", info.LiquidityGross, maxPerTick)
			}
			if info.LiquidityGross.Uint64() != uint64(total) {
				t.Fatalf("liquidityGross %d did not match running total %d", info.LiquidityGross.Uint64(), total)
			}
		}

		if total == 0 {
			return
		}
		flipped, err := book.update(60, big.NewInt(-total), false, owner1)
		if err != nil {
			t.Fatalf("full burn of the tracked total must not fail: %v", err)
		}
		if !flipped {
			t.Fatalf("burning every unit of liquidityGross must flip the tick back to uninitialized")
		}
		if info, ok := book.get(60); ok && !info.LiquidityGross.IsZero() {
			t.Fatalf("liquidityGross must be exactly zero after burning the full total")
		}
	})
}

// For a fixed limit order repeatedly partially filled by a sequence of
// exact-input swaps, oneMinusPercSwap is non-increasing, stays within
// [0, 1], and the tick's resting liquidity (liquidityGross *
// oneMinusPercSwap) only ever shrinks.
func TestPropertyLimitSwapStepOneMinusPercSwapIsMonotone(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		liquidityGross := uint256.NewInt(uint64(rapid.IntRange(1_000, 1_000_000_000).Draw(t, "liquidityGross")))
		zeroForOne := rapid.Bool().Draw(t, "zeroForOne")

		oneMinusPercSwap := OneDec
		numSteps := rapid.IntRange(1, 8).Draw(t, "numSteps")

		for i := 0; i < numSteps; i++ {
			if oneMinusPercSwap.IsZero() {
				break
			}
			amountIn := rapid.Int64Range(1, 10_000).Draw(t, "amountIn")

			step := computeLimitSwapStep(Q96, liquidityGross, big.NewInt(amountIn), 0, zeroForOne, oneMinusPercSwap)

			if step.ResultingOneMinusPercSwap.GreaterThan(oneMinusPercSwap) {
				t.Fatalf("oneMinusPercSwap increased from %s to %s", oneMinusPercSwap, step.ResultingOneMinusPercSwap)
			}
			if step.ResultingOneMinusPercSwap.IsNegative() {
				t.Fatalf("oneMinusPercSwap went negative: %s", step.ResultingOneMinusPercSwap)
			}
			if step.ResultingOneMinusPercSwap.GreaterThan(OneDec) {
				t.Fatalf("oneMinusPercSwap exceeded 1: %s", step.ResultingOneMinusPercSwap)
			}
			if step.AmountOut.Cmp(liquidityGross) > 0 {
				t.Fatalf("amountOut %s exceeded liquidityGross %s", step.AmountOut, liquidityGross)
			}

			oneMinusPercSwap = step.ResultingOneMinusPercSwap
			if step.TickCrossed {
				break
			}
		}
	})
}

// Restricted to the no-swap case: minting and then fully burning a limit
// position with the tick's oneMinusPercSwap unchanged throughout must
// return exactly what was put in, with zero slack, for any minted amount.
func TestPropertyLimitPositionMintThenFullBurnIsExact(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		amount := rapid.Int64Range(1, 1_000_000_000).Draw(t, "amount")
		isToken0 := rapid.Bool().Draw(t, "isToken0")

		store := newLimitPositionStore()
		key := LimitPositionKey{Owner: owner1, Tick: 60, IsToken0: isToken0}
		pos, created := store.get(key)

		leftDelta, swappedDelta := store.update(pos, big.NewInt(amount), OneDec, isToken0, Q96, uint256.NewInt(0), created)
		if leftDelta.Int64() != amount {
			t.Fatalf("mint liquidityLeftDelta %d did not equal minted amount %d", leftDelta.Int64(), amount)
		}
		if swappedDelta.Sign() != 0 {
			t.Fatalf("mint liquiditySwappedDelta must be zero, got %d", swappedDelta.Int64())
		}

		leftDelta, swappedDelta = store.update(pos, big.NewInt(-amount), OneDec, isToken0, Q96, uint256.NewInt(0), false)
		if leftDelta.Int64() != -amount {
			t.Fatalf("burn liquidityLeftDelta %d did not equal -%d", leftDelta.Int64(), amount)
		}
		if swappedDelta.Sign() != 0 {
			t.Fatalf("burn liquiditySwappedDelta must be zero when the tick was never swapped, got %d", swappedDelta.Int64())
		}
		if !pos.Liquidity.IsZero() {
			t.Fatalf("position liquidity must be zero after a full burn")
		}

		owed := pos.TokensOwed0
		if !isToken0 {
			owed = pos.TokensOwed1
		}
		if owed.Uint64() != uint64(amount) {
			t.Fatalf("tokensOwed %d did not equal the minted amount %d", owed.Uint64(), amount)
		}
	})
}
