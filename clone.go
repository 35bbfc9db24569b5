package jit_amm_pool

// Clone deep-copies a Pool, including every collaborator's mutable state,
// so callers can explore a hypothetical swap/mint/burn without touching
// the live pool.
func (p *Pool) Clone() *Pool {
	clone := &Pool{
		Address:             p.Address,
		Token0:               p.Token0,
		Token1:               p.Token1,
		Fee:                  p.Fee,
		TickSpacing:          p.TickSpacing,
		MaxLiquidityPerTick:  p.MaxLiquidityPerTick,
		ProtocolFee:          p.ProtocolFee,
		SqrtPriceX96:         p.SqrtPriceX96,
		Tick:                 p.Tick,
		Liquidity:            p.Liquidity,
		FeeGrowthGlobal0X128: p.FeeGrowthGlobal0X128,
		FeeGrowthGlobal1X128: p.FeeGrowthGlobal1X128,
		ProtocolFees0:        p.ProtocolFees0,
		ProtocolFees1:        p.ProtocolFees1,
		RangeTicks:           p.RangeTicks.clone(),
		RangePositions:       p.RangePositions.clone(),
		LimitTicksToken0:     p.LimitTicksToken0.clone(),
		LimitTicksToken1:     p.LimitTicksToken1.clone(),
		LimitPositions:       p.LimitPositions.clone(),
		Ledger:               p.Ledger.clone(),
		Engine:               p.Engine,
		initialized:          p.initialized,
		metrics:              nil, // clones are scratch copies, never wired to prometheus
	}
	return clone
}
