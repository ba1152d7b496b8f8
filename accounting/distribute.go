package accounting

import (
	"sort"

	"cosmossdk.io/math"
)

// Position is one depositor's contribution.
type Position struct {
	Principal Principal `json:"principal"`
	Deposit   math.Int  `json:"deposit"`
}

// Share is a depositor's total entitlement at the current repaid figure.
type Share struct {
	Principal Principal `json:"principal"`
	Deposit   math.Int  `json:"deposit"`
	Amount    math.Int  `json:"amount"`
}

// Distribution is the pro-rata split of repaid capital across all positions.
type Distribution struct {
	Shares      []Share  `json:"shares"`
	Distributed math.Int `json:"distributed"`
	// Dust is the floor-division remainder attributed to nobody.
	Dust math.Int `json:"dust"`
}

// Distribute splits repaid across positions in proportion to their deposits.
// Every share is floored; unlike a remainder-to-last split, nobody receives
// the rounding remainder, which is reported as Dust. Shares are sorted by
// principal.
func Distribute(repaid, raised math.Int, positions []Position) *Distribution {
	repaid, raised = orZero(repaid), orZero(raised)

	sorted := append([]Position(nil), positions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Principal < sorted[j].Principal })

	d := &Distribution{
		Shares:      make([]Share, len(sorted)),
		Distributed: math.ZeroInt(),
	}
	for i, pos := range sorted {
		amt := Entitlement(pos.Deposit, raised, repaid)
		d.Shares[i] = Share{Principal: pos.Principal, Deposit: orZero(pos.Deposit), Amount: amt}
		d.Distributed = d.Distributed.Add(amt)
	}
	d.Dust = repaid.Sub(d.Distributed)
	return d
}

// Positions collects every deposit recorded in tx.
func Positions(tx Tx) ([]Position, error) {
	var out []Position
	err := tx.ForEachDeposit(func(p Principal, amount math.Int) error {
		out = append(out, Position{Principal: p, Deposit: amount})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Principal < out[j].Principal })
	return out, nil
}
