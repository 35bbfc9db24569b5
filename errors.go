package jit_amm_pool

import "errors"

// Sentinel errors for the pool's public operations. Those that correspond
// to an on-chain revert reason carry its short code as a prefix (TLM, TUM,
// LO, AS, SPL, IIA, LS, POSITION_NOT_FOUND); the rest have a plain message.
var (
	// InputInvalid
	ErrTickBelowMin         = errors.New("TLM: tick below MIN_TICK_LO")
	ErrTickAboveMax         = errors.New("TUM: tick above MAX_TICK_LO")
	ErrAmountZero           = errors.New("mint amount must be greater than zero")
	ErrAmountOverflow       = errors.New("amount exceeds u128 range")
	ErrTokenNotInPool       = errors.New("token is not part of the pool")
	ErrAmountSpecifiedZero  = errors.New("AS: amountSpecified must not be zero")
	ErrPriceLimitOutOfRange = errors.New("SPL: sqrtPriceLimitX96 out of range for swap direction")
	ErrBadProtocolFee       = errors.New("protocol fee component must be 0 or in [4,10]")

	// CapacityExceeded
	ErrLimitExceeded = errors.New("LO: liquidityGross would exceed maxLiquidityPerTick")

	// NotFound
	ErrPositionNotFound = errors.New("POSITION_NOT_FOUND: position does not exist")

	// Logic/Accounting
	ErrLiquidityUnderflow = errors.New("LS: liquidity underflow on burn")
	ErrBalanceMismatch    = errors.New("IIA: balance conservation check failed on swap transfer")

	// misc input validation shared by the range-order adapter
	ErrTickOrder      = errors.New("tickLower must be less than tickUpper")
	ErrPoolNotInit    = errors.New("pool has not been initialized")
	ErrAlreadyInit    = errors.New("pool already initialized")
	ErrSwapNoProgress = errors.New("swap made no progress within iteration budget")
)
