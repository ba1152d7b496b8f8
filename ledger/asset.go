// Package ledger holds in-memory reference implementations of the fungible
// asset ledger and the share-token ledger the vault settles against.
package ledger

import (
	"context"
	"fmt"
	"sync"

	"cosmossdk.io/math"

	"github.com/bitfsorg/poolvault-go/accounting"
)

type allowanceKey struct {
	owner, spender accounting.Principal
}

// AssetLedger is a balance/allowance ledger for the underlying asset.
type AssetLedger struct {
	mu         sync.Mutex
	balances   map[accounting.Principal]math.Int
	allowances map[allowanceKey]math.Int
}

// NewAssetLedger creates an empty asset ledger.
func NewAssetLedger() *AssetLedger {
	return &AssetLedger{
		balances:   make(map[accounting.Principal]math.Int),
		allowances: make(map[allowanceKey]math.Int),
	}
}

// Mint credits amount to to.
func (l *AssetLedger) Mint(to accounting.Principal, amount math.Int) error {
	if err := checkArgs(amount, to); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	next, err := accounting.CheckedAdd(l.balanceLocked(to), amount)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	l.balances[to] = next
	return nil
}

// Transfer moves amount from from to to.
func (l *AssetLedger) Transfer(from, to accounting.Principal, amount math.Int) error {
	if err := checkArgs(amount, from, to); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transferLocked(from, to, amount)
}

// Approve sets the amount spender may move out of owner's balance.
func (l *AssetLedger) Approve(owner, spender accounting.Principal, amount math.Int) error {
	if err := checkArgs(amount, owner, spender); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowances[allowanceKey{owner, spender}] = amount
	return nil
}

// TransferFrom moves amount from from to to on behalf of spender, consuming
// spender's allowance.
func (l *AssetLedger) TransferFrom(spender, from, to accounting.Principal, amount math.Int) error {
	if err := checkArgs(amount, spender, from, to); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	key := allowanceKey{from, spender}
	allowance := zeroIfMissing(l.allowances, key)
	if allowance.LT(amount) {
		return fmt.Errorf("%w: %s may move %s from %s, need %s", ErrInsufficientAllowance, spender, allowance, from, amount)
	}
	if err := l.transferLocked(from, to, amount); err != nil {
		return err
	}
	l.allowances[key] = allowance.Sub(amount)
	return nil
}

// Balance returns the balance of p.
func (l *AssetLedger) Balance(p accounting.Principal) math.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balanceLocked(p)
}

// Allowance returns how much spender may still move out of owner's balance.
func (l *AssetLedger) Allowance(owner, spender accounting.Principal) math.Int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return zeroIfMissing(l.allowances, allowanceKey{owner, spender})
}

func (l *AssetLedger) balanceLocked(p accounting.Principal) math.Int {
	return zeroIfMissing(l.balances, p)
}

func (l *AssetLedger) transferLocked(from, to accounting.Principal, amount math.Int) error {
	fromBal := l.balanceLocked(from)
	if fromBal.LT(amount) {
		return fmt.Errorf("%w: %s holds %s, need %s", ErrInsufficientBalance, from, fromBal, amount)
	}
	if from == to {
		return nil
	}
	toBal, err := accounting.CheckedAdd(l.balanceLocked(to), amount)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}
	l.balances[from] = fromBal.Sub(amount)
	l.balances[to] = toBal
	return nil
}

// Mover adapts an AssetLedger to the vault's asset-movement capability.
type Mover struct {
	Ledger *AssetLedger
}

// MoveAsset transfers amount from from to to.
func (m Mover) MoveAsset(_ context.Context, from, to accounting.Principal, amount math.Int) error {
	return m.Ledger.Transfer(from, to, amount)
}

func checkArgs(amount math.Int, accounts ...accounting.Principal) error {
	if amount.IsNil() || amount.IsNegative() || !accounting.FitsInt128(amount) {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	for _, a := range accounts {
		if a == "" {
			return ErrEmptyAccount
		}
	}
	return nil
}

func zeroIfMissing[K comparable](m map[K]math.Int, k K) math.Int {
	if v, ok := m[k]; ok {
		return v
	}
	return math.ZeroInt()
}
