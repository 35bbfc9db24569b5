package jit_amm_pool

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// PoolConfig constructs a Pool: a plain struct, no CLI/flags.
type PoolConfig struct {
	Token0      string
	Token1      string
	Fee         uint32 // feePips, hundredths of a bip
	TickSpacing int
	// ProtocolFee is the packed (p0 | p1<<4) byte; 0 disables it.
	ProtocolFee uint8
	// Registry, if non-nil, wires prometheus instrumentation.
	// Nil is fully supported and records nothing.
	Registry prometheus.Registerer
}

// Pool is the range-order + limit-order pool: a façade tying together
// the RO adapter, the LO tick/position stores, and the interleaved swap
// engine. It deliberately HOLDS its collaborators (ROEngine,
// LimitTickBook, LimitPositionStore, Ledger) rather than extending a
// base "range order pool" type, so the limit-order layer composes on
// top of unmodified range-order math instead of subclassing it.
type Pool struct {
	Address string
	Token0  string
	Token1  string
	Fee     uint32

	TickSpacing         int
	MaxLiquidityPerTick decimal.Decimal
	ProtocolFee         uint8

	SqrtPriceX96 decimal.Decimal
	Tick         int
	Liquidity    decimal.Decimal

	FeeGrowthGlobal0X128 decimal.Decimal
	FeeGrowthGlobal1X128 decimal.Decimal
	ProtocolFees0        decimal.Decimal
	ProtocolFees1        decimal.Decimal

	RangeTicks     *RangeTickManager
	RangePositions *RangePositionManager

	// LO ticks for token0 resting orders and token1 resting orders, kept
	// as two separate books rather than one map keyed by (tick, side).
	LimitTicksToken0 *LimitTickBook
	LimitTicksToken1 *LimitTickBook
	LimitPositions   *LimitPositionStore

	Ledger *InMemoryLedger
	Engine ROEngine

	initialized bool
	metrics     *poolMetrics
}

// NewPool constructs an uninitialized Pool; call Initialize before any
// mint/swap.
func NewPool(cfg PoolConfig) (*Pool, error) {
	if cfg.Token0 == "" || cfg.Token1 == "" {
		return nil, ErrTokenNotInPool
	}
	if cfg.TickSpacing <= 0 {
		return nil, ErrTickOrder
	}
	p0, p1 := UnpackProtocolFee(cfg.ProtocolFee)
	if !validProtocolFeeComponent(p0) || !validProtocolFeeComponent(p1) {
		return nil, ErrBadProtocolFee
	}

	maxLiq := TickSpacingToMaxLiquidityPerTick(cfg.TickSpacing)

	pool := &Pool{
		Token0:              cfg.Token0,
		Token1:               cfg.Token1,
		Fee:                  cfg.Fee,
		TickSpacing:          cfg.TickSpacing,
		MaxLiquidityPerTick:  maxLiq,
		ProtocolFee:          cfg.ProtocolFee,
		FeeGrowthGlobal0X128: decimal.Zero,
		FeeGrowthGlobal1X128: decimal.Zero,
		ProtocolFees0:        decimal.Zero,
		ProtocolFees1:        decimal.Zero,
		RangeTicks:           NewRangeTickManager(cfg.TickSpacing, maxLiq),
		RangePositions:       NewRangePositionManager(),
		LimitTicksToken0:     newLimitTickBook(maxLiquidityU256FromDecimal(maxLiq)),
		LimitTicksToken1:     newLimitTickBook(maxLiquidityU256FromDecimal(maxLiq)),
		LimitPositions:       newLimitPositionStore(),
		Ledger:               NewInMemoryLedger(),
		Engine:               NewSDKROEngine(),
	}
	pool.metrics = newPoolMetrics(cfg.Registry, cfg.Token0+"/"+cfg.Token1)
	return pool, nil
}

func maxLiquidityU256FromDecimal(d decimal.Decimal) *uint256.Int {
	v, overflow := uint256.FromBig(d.BigInt())
	if overflow {
		panic("jit_amm_pool: maxLiquidityPerTick overflowed 256 bits")
	}
	return v
}

// Initialize sets the starting sqrt price and tick, matching CorePool.Initialize.
func (p *Pool) Initialize(sqrtPriceX96 decimal.Decimal) error {
	if p.initialized {
		return ErrAlreadyInit
	}
	tick, err := p.Engine.GetTickAtSqrtRatio(sqrtPriceX96)
	if err != nil {
		return err
	}
	p.SqrtPriceX96 = sqrtPriceX96
	p.Tick = tick
	p.Liquidity = decimal.Zero
	p.initialized = true
	if logrus.GetLevel() >= logrus.DebugLevel {
		logrus.Debugf("pool %s initialized at tick=%d sqrtPriceX96=%s", p.Address, tick, sqrtPriceX96.String())
	}
	return nil
}

func (p *Pool) checkTickLO(tick int) error {
	if tick < MinTickLO {
		return ErrTickBelowMin
	}
	if tick > MaxTickLO {
		return ErrTickAboveMax
	}
	return nil
}

func (p *Pool) tokenIsToken0(token string) (bool, error) {
	switch token {
	case p.Token0:
		return true, nil
	case p.Token1:
		return false, nil
	default:
		return false, ErrTokenNotInPool
	}
}

// poolAccount is the pool's own address used as the counterparty of
// Ledger transfers: deposits and withdrawals move between the trader's
// address and this one rather than vanishing into an implicit balance.
func poolAccount(p *Pool) common.Address {
	return common.HexToAddress(p.Address)
}

// MintLimitOrder creates or adds to a resting limit order at tick, for the
// given token. amount is a u128-range quantity (capped at MaxUint128).
func (p *Pool) MintLimitOrder(recipient common.Address, token string, tick int, amount *uint256.Int) (*uint256.Int, error) {
	if amount == nil || amount.IsZero() {
		return nil, ErrAmountZero
	}
	if amount.Gt(MaxUint128) {
		return nil, ErrAmountOverflow
	}
	isToken0, err := p.tokenIsToken0(token)
	if err != nil {
		return nil, err
	}

	_, liquidityLeftDelta, liquiditySwappedDelta, err := p.modifyPositionLimitOrder(isToken0, recipient, tick, amount.ToBig())
	if err != nil {
		return nil, err
	}
	if liquidityLeftDelta.Cmp(amount.ToBig()) != 0 {
		panic("jit_amm_pool: mint liquidityLeftDelta did not equal the minted amount")
	}
	if liquiditySwappedDelta.Sign() != 0 {
		panic("jit_amm_pool: mint liquiditySwappedDelta must be zero")
	}

	amountIn := new(uint256.Int).Set(amount)
	if err := p.Ledger.TransferToken(recipient, poolAccount(p), token, decimalFromBigInt(amountIn.ToBig())); err != nil {
		return nil, err
	}
	p.metrics.recordMint()
	if logrus.GetLevel() >= logrus.DebugLevel {
		logrus.Debugf("pool %s mintLimitOrder owner=%s token=%s tick=%d amount=%s", p.Address, recipient, token, tick, amount.String())
	}
	return amountIn, nil
}

func (p *Pool) modifyPositionLimitOrder(isToken0 bool, owner common.Address, tick int, liquidityDelta *big.Int) (*LimitPosition, *big.Int, *big.Int, error) {
	if err := p.checkTickLO(tick); err != nil {
		return nil, nil, nil, err
	}
	return p.updatePositionLimitOrder(isToken0, owner, tick, liquidityDelta)
}

func (p *Pool) limitBook(isToken0 bool) *LimitTickBook {
	if isToken0 {
		return p.LimitTicksToken0
	}
	return p.LimitTicksToken1
}

func (p *Pool) updatePositionLimitOrder(isToken0 bool, owner common.Address, tick int, liquidityDelta *big.Int) (*LimitPosition, *big.Int, *big.Int, error) {
	key := LimitPositionKey{Owner: owner, Tick: tick, IsToken0: isToken0}
	position, created := p.LimitPositions.get(key)
	if created && liquidityDelta.Sign() <= 0 {
		panic("jit_amm_pool: newly created limit position must mint")
	}

	book := p.limitBook(isToken0)

	flipped := false
	if liquidityDelta.Sign() != 0 {
		f, err := book.update(tick, liquidityDelta, created, owner)
		if err != nil {
			return nil, nil, nil, err
		}
		flipped = f
	}

	tickInfo, _ := book.get(tick)
	priceX96 := priceAtTickLO(mustSqrtPriceAtTick(p, tick))

	liquidityLeftDelta, liquiditySwappedDelta := p.LimitPositions.update(
		position, liquidityDelta, tickInfo.OneMinusPercSwap, isToken0, priceX96, tickInfo.FeeGrowthInsideX128, created,
	)

	if flipped && tick%p.TickSpacing != 0 {
		panic("jit_amm_pool: flipped limit tick is not spacing-aligned")
	}

	if liquidityDelta.Sign() < 0 {
		if flipped {
			book.clear(tick)
		} else if position.Liquidity.IsZero() {
			book.removeOwner(tick, owner)
		}
	}

	return position, liquidityLeftDelta, liquiditySwappedDelta, nil
}

func mustSqrtPriceAtTick(p *Pool, tick int) *uint256.Int {
	sqrtPrice, err := p.Engine.GetSqrtRatioAtTick(tick)
	if err != nil {
		panic("jit_amm_pool: getSqrtRatioAtTick failed for a tick within the limit-order range: " + err.Error())
	}
	v, overflow := uint256.FromBig(sqrtPrice.BigInt())
	if overflow {
		panic("jit_amm_pool: sqrtPriceX96 overflowed 256 bits")
	}
	return v
}

// BurnLimitOrder removes liquidity from a resting limit order, auto-collecting
// if it fully empties. amount is a u128-range quantity (capped at MaxUint128).
func (p *Pool) BurnLimitOrder(owner common.Address, token string, tick int, amount *uint256.Int) (amountBurnt0, amountBurnt1 *uint256.Int, err error) {
	if amount == nil {
		amount = uint256.NewInt(0)
	}
	if amount.Gt(MaxUint128) {
		return nil, nil, ErrAmountOverflow
	}
	isToken0, err := p.tokenIsToken0(token)
	if err != nil {
		return nil, nil, err
	}
	existing, ok := p.LimitPositions.positions[LimitPositionKey{Owner: owner, Tick: tick, IsToken0: isToken0}]
	if !ok {
		return nil, nil, ErrPositionNotFound
	}
	if amount.Gt(existing.Liquidity) {
		return nil, nil, ErrLiquidityUnderflow
	}

	position, liquidityLeftDelta, liquiditySwappedDelta, err := p.modifyPositionLimitOrder(isToken0, owner, tick, new(big.Int).Neg(amount.ToBig()))
	if err != nil {
		return nil, nil, err
	}
	if amount.IsZero() && (liquidityLeftDelta.Sign() != 0 || liquiditySwappedDelta.Sign() != 0) {
		panic("jit_amm_pool: burning zero liquidity produced non-zero deltas")
	}

	var amt0, amt1 *big.Int
	if isToken0 {
		amt0, amt1 = new(big.Int).Abs(liquidityLeftDelta), new(big.Int).Abs(liquiditySwappedDelta)
	} else {
		amt0, amt1 = new(big.Int).Abs(liquiditySwappedDelta), new(big.Int).Abs(liquidityLeftDelta)
	}

	if position.Liquidity.IsZero() {
		_, _, collected0, collected1, cErr := p.CollectLimitOrder(owner, token, tick, MaxUint128, MaxUint128)
		if cErr != nil {
			return nil, nil, cErr
		}
		p.metrics.recordBurn()
		return collected0, collected1, nil
	}

	amt0u, overflow0 := uint256.FromBig(amt0)
	amt1u, overflow1 := uint256.FromBig(amt1)
	if overflow0 || overflow1 {
		panic("jit_amm_pool: burn amount overflowed 256 bits")
	}
	p.metrics.recordBurn()
	return amt0u, amt1u, nil
}

// CollectLimitOrder pays out owed tokens up to the requested caps.
func (p *Pool) CollectLimitOrder(recipient common.Address, token string, tick int, amount0Requested, amount1Requested *uint256.Int) (common.Address, int, *uint256.Int, *uint256.Int, error) {
	isToken0, err := p.tokenIsToken0(token)
	if err != nil {
		return recipient, tick, nil, nil, err
	}
	key := LimitPositionKey{Owner: recipient, Tick: tick, IsToken0: isToken0}
	position, ok := p.LimitPositions.positions[key]
	if !ok {
		return recipient, tick, nil, nil, ErrPositionNotFound
	}

	amountPos0 := minU256(position.TokensOwed0, amount0Requested)
	amountPos1 := minU256(position.TokensOwed1, amount1Requested)

	if decimalFromBigInt(amountPos0.ToBig()).GreaterThan(p.Ledger.BalanceOf(poolAccount(p), p.Token0)) {
		return recipient, tick, nil, nil, ErrBalanceMismatch
	}
	if decimalFromBigInt(amountPos1.ToBig()).GreaterThan(p.Ledger.BalanceOf(poolAccount(p), p.Token1)) {
		return recipient, tick, nil, nil, ErrBalanceMismatch
	}

	if amountPos0.Sign() > 0 {
		position.TokensOwed0 = new(uint256.Int).Sub(position.TokensOwed0, amountPos0)
		if err := p.Ledger.TransferToken(poolAccount(p), recipient, p.Token0, decimalFromBigInt(amountPos0.ToBig())); err != nil {
			return recipient, tick, nil, nil, err
		}
	}
	if amountPos1.Sign() > 0 {
		position.TokensOwed1 = new(uint256.Int).Sub(position.TokensOwed1, amountPos1)
		if err := p.Ledger.TransferToken(poolAccount(p), recipient, p.Token1, decimalFromBigInt(amountPos1.ToBig())); err != nil {
			return recipient, tick, nil, nil, err
		}
	}

	if position.Liquidity.IsZero() {
		delete(p.LimitPositions.positions, key)
	}

	return recipient, tick, amountPos0, amountPos1, nil
}

func minU256(a, b *uint256.Int) *uint256.Int {
	if a.Cmp(b) > 0 {
		return b
	}
	return a
}

// burnCrossedTicksAndPositions runs the deferred burn for every limit-order
// tick fully crossed during a swap, iterating the tick's owner roster and
// reusing BurnLimitOrder for each position.
func (p *Pool) burnCrossedTicksAndPositions(isToken0 bool, tick int, token string) {
	book := p.limitBook(isToken0)
	info, ok := book.get(tick)
	if !ok {
		return
	}
	if !info.OneMinusPercSwap.IsZero() {
		panic("jit_amm_pool: deferred burn invoked on a tick that was not fully crossed")
	}

	owners := append([]common.Address(nil), info.OwnerPositions...)
	for _, owner := range owners {
		key := LimitPositionKey{Owner: owner, Tick: tick, IsToken0: isToken0}
		position, created := p.LimitPositions.get(key)
		if created {
			panic("jit_amm_pool: deferred burn found a position that didn't already exist")
		}
		if position.Liquidity.IsZero() {
			panic("jit_amm_pool: deferred burn found an already-empty position")
		}
		if _, _, err := p.BurnLimitOrder(owner, token, tick, position.Liquidity); err != nil {
			panic("jit_amm_pool: deferred burn of a crossed limit order failed: " + err.Error())
		}
		if _, stillThere := p.LimitPositions.positions[key]; stillThere {
			panic("jit_amm_pool: deferred burn did not clear the position")
		}
	}
	if _, stillThere := book.get(tick); stillThere {
		panic("jit_amm_pool: deferred burn did not clear the tick")
	}
}
