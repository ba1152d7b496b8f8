package accounting

import (
	"fmt"

	"cosmossdk.io/math"
)

// Entitlement returns floor(deposit * repaid / raised), a depositor's whole
// pro-rata share of the capital repaid so far. It is zero when any input is
// zero. The product is formed in 256-bit space, so 128-bit inputs never
// overflow.
func Entitlement(deposit, raised, repaid math.Int) math.Int {
	deposit, raised, repaid = orZero(deposit), orZero(raised), orZero(repaid)
	if !deposit.IsPositive() || !raised.IsPositive() || !repaid.IsPositive() {
		return math.ZeroInt()
	}
	return deposit.Mul(repaid).Quo(raised)
}

// ClaimableAmount returns the part of the entitlement not yet covered by the
// claim watermark. It never goes negative.
func ClaimableAmount(deposit, claimed, raised, repaid math.Int) math.Int {
	total := Entitlement(deposit, raised, repaid)
	claimed = orZero(claimed)
	if claimed.GTE(total) {
		return math.ZeroInt()
	}
	return total.Sub(claimed)
}

// SettleClaim computes the amount newly claimable by p and advances p's
// claim watermark to the full entitlement in the same transaction. Nothing
// is written when the result is zero.
func SettleClaim(tx Tx, p Principal) (math.Int, error) {
	deposit, err := tx.Deposit(p)
	if err != nil {
		return math.Int{}, fmt.Errorf("accounting: read deposit: %w", err)
	}
	if !deposit.IsPositive() {
		return math.ZeroInt(), nil
	}

	v, err := tx.Vault()
	if err != nil {
		return math.Int{}, err
	}
	if !orZero(v.Raised).IsPositive() || !orZero(v.Repaid).IsPositive() {
		return math.ZeroInt(), nil
	}

	claimed, err := tx.Claimed(p)
	if err != nil {
		return math.Int{}, fmt.Errorf("accounting: read claimed: %w", err)
	}
	toClaim := ClaimableAmount(deposit, claimed, v.Raised, v.Repaid)
	if toClaim.IsZero() {
		return toClaim, nil
	}

	if err := tx.SetClaimed(p, claimed.Add(toClaim)); err != nil {
		return math.Int{}, fmt.Errorf("accounting: write claimed: %w", err)
	}
	return toClaim, nil
}
