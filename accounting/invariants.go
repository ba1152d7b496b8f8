package accounting

import (
	"fmt"

	"cosmossdk.io/math"
)

// CheckInvariants runs CheckBookkeeping and CheckClaimBound against tx.
// It returns nil for an uninitialized store.
func CheckInvariants(tx Tx) error {
	if err := CheckBookkeeping(tx); err != nil {
		return err
	}
	return CheckClaimBound(tx)
}

// CheckBookkeeping verifies the invariants that hold under every policy:
//
//   - raised == sum(deposits) and both raised and repaid are non-negative
//   - every deposit and claim watermark is non-negative
//   - claimed[p] == 0 for every principal while raised == 0
//
// It returns nil for an uninitialized store.
func CheckBookkeeping(tx Tx) error {
	v, ok, err := loadVault(tx)
	if err != nil || !ok {
		return err
	}
	raised, repaid := orZero(v.Raised), orZero(v.Repaid)

	if raised.IsNegative() {
		return fmt.Errorf("%w: raised %s is negative", ErrInvariantViolation, raised)
	}
	if repaid.IsNegative() {
		return fmt.Errorf("%w: repaid %s is negative", ErrInvariantViolation, repaid)
	}

	sum := math.ZeroInt()
	err = tx.ForEachDeposit(func(p Principal, amount math.Int) error {
		if amount.IsNegative() {
			return fmt.Errorf("%w: deposit of %s is negative", ErrInvariantViolation, p)
		}
		sum = sum.Add(amount)
		return nil
	})
	if err != nil {
		return err
	}
	if !sum.Equal(raised) {
		return fmt.Errorf("%w: raised %s != sum of deposits %s", ErrInvariantViolation, raised, sum)
	}

	return tx.ForEachClaimed(func(p Principal, claimed math.Int) error {
		if claimed.IsNegative() {
			return fmt.Errorf("%w: claimed of %s is negative", ErrInvariantViolation, p)
		}
		if raised.IsZero() && !claimed.IsZero() {
			return fmt.Errorf("%w: %s claimed %s while nothing is raised", ErrInvariantViolation, p, claimed)
		}
		return nil
	})
}

// CheckClaimBound verifies claimed[p]*raised <= deposits[p]*repaid for every
// principal. The bound only holds while raised is frozen once claims start:
// a deposit made after a claim dilutes the earlier claimant below its
// watermark.
func CheckClaimBound(tx Tx) error {
	v, ok, err := loadVault(tx)
	if err != nil || !ok {
		return err
	}
	raised, repaid := orZero(v.Raised), orZero(v.Repaid)
	if raised.IsZero() {
		return nil
	}

	return tx.ForEachClaimed(func(p Principal, claimed math.Int) error {
		deposit, err := tx.Deposit(p)
		if err != nil {
			return err
		}
		if claimed.Mul(raised).GT(deposit.Mul(repaid)) {
			return fmt.Errorf("%w: %s claimed %s beyond pro-rata bound", ErrInvariantViolation, p, claimed)
		}
		return nil
	})
}

func loadVault(tx Tx) (*Vault, bool, error) {
	ok, err := tx.Initialized()
	if err != nil || !ok {
		return nil, false, err
	}
	v, err := tx.Vault()
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}
