package jit_amm_pool

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Ledger is the external balance-keeping collaborator the pool transfers
// tokens through. Keeping it as an interface (rather than baking balance
// bookkeeping into the pool itself) lets tests substitute a simple
// in-memory account map and lets an on-chain-backed implementation slot
// in without touching swap logic.
type Ledger interface {
	TransferToken(from, to common.Address, token string, amount decimal.Decimal) error
	BalanceOf(account common.Address, token string) decimal.Decimal
}

// InMemoryLedger is a minimal Ledger used by the pool's own balance
// bookkeeping and by tests: plain decimal.Decimal balances keyed by
// token symbol.
type InMemoryLedger struct {
	balances map[common.Address]map[string]decimal.Decimal
}

func NewInMemoryLedger() *InMemoryLedger {
	return &InMemoryLedger{balances: make(map[common.Address]map[string]decimal.Decimal)}
}

func (l *InMemoryLedger) Credit(account common.Address, token string, amount decimal.Decimal) {
	acct, ok := l.balances[account]
	if !ok {
		acct = make(map[string]decimal.Decimal)
		l.balances[account] = acct
	}
	acct[token] = acct[token].Add(amount)
}

func (l *InMemoryLedger) TransferToken(from, to common.Address, token string, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	fromBal := l.BalanceOf(from, token)
	if fromBal.LessThan(amount) {
		return ErrBalanceMismatch
	}
	l.Credit(from, token, amount.Neg())
	l.Credit(to, token, amount)
	return nil
}

func (l *InMemoryLedger) BalanceOf(account common.Address, token string) decimal.Decimal {
	acct, ok := l.balances[account]
	if !ok {
		return decimal.Zero
	}
	return acct[token]
}

func (l *InMemoryLedger) clone() *InMemoryLedger {
	out := NewInMemoryLedger()
	for acct, tokens := range l.balances {
		m := make(map[string]decimal.Decimal, len(tokens))
		for k, v := range tokens {
			m[k] = v
		}
		out.balances[acct] = m
	}
	return out
}
