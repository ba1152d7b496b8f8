package accounting

import (
	"fmt"
	"math/big"
	"strings"

	"cosmossdk.io/math"
)

var (
	maxInt128 = math.NewIntFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1)))
	minInt128 = math.NewIntFromBigInt(new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127)))
)

// MaxAmount returns the largest representable amount (2^127 - 1).
func MaxAmount() math.Int { return maxInt128 }

// FitsInt128 reports whether x lies within the signed 128-bit range.
func FitsInt128(x math.Int) bool {
	return !x.IsNil() && x.GTE(minInt128) && x.LTE(maxInt128)
}

// CheckedAdd returns a+b, failing when the sum leaves the 128-bit range.
func CheckedAdd(a, b math.Int) (math.Int, error) {
	sum := a.Add(b)
	if !FitsInt128(sum) {
		return math.Int{}, fmt.Errorf("%w: %s + %s", ErrAmountOverflow, a, b)
	}
	return sum, nil
}

// ParseAmount parses a base-10 integer amount.
func ParseAmount(s string) (math.Int, error) {
	v, ok := math.NewIntFromString(strings.TrimSpace(s))
	if !ok {
		return math.Int{}, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !FitsInt128(v) {
		return math.Int{}, fmt.Errorf("%w: %s", ErrAmountOverflow, v)
	}
	return v, nil
}

// orZero maps the nil Int to zero so arithmetic on unset fields is safe.
func orZero(x math.Int) math.Int {
	if x.IsNil() {
		return math.ZeroInt()
	}
	return x
}
