package vault

import (
	"context"

	"cosmossdk.io/math"

	"github.com/bitfsorg/poolvault-go/accounting"
)

// Info is the public summary returned by VaultInfo.
type Info struct {
	State  accounting.State `json:"state"`
	Raised math.Int         `json:"raised"`
	Repaid math.Int         `json:"repaid"`
}

// Position is one principal's standing in the vault.
type Position struct {
	Principal accounting.Principal `json:"principal"`
	Deposit   math.Int             `json:"deposit"`
	Claimed   math.Int             `json:"claimed"`
	Claimable math.Int             `json:"claimable"`
}

// Snapshot is a read-consistent view of the whole vault.
type Snapshot struct {
	Vault        *accounting.Vault              `json:"vault"`
	Positions    []Position                     `json:"positions"`
	Dust         math.Int                       `json:"dust"`
	Installments []accounting.InstallmentStatus `json:"installments"`
}

// VaultInfo returns the current state, raised and repaid totals.
func (c *Controller) VaultInfo(ctx context.Context) (Info, error) {
	var info Info
	err := c.view(ctx, func(tx accounting.Tx) error {
		v, err := tx.Vault()
		if err != nil {
			return err
		}
		info = Info{State: v.State, Raised: v.Raised, Repaid: v.Repaid}
		return nil
	})
	return info, err
}

// Vault returns a copy of the full vault record.
func (c *Controller) Vault(ctx context.Context) (*accounting.Vault, error) {
	var v *accounting.Vault
	err := c.view(ctx, func(tx accounting.Tx) error {
		var err error
		v, err = tx.Vault()
		return err
	})
	return v, err
}

// Position previews what p has deposited, claimed and could claim now.
func (c *Controller) Position(ctx context.Context, p accounting.Principal) (Position, error) {
	var pos Position
	err := c.view(ctx, func(tx accounting.Tx) error {
		v, err := tx.Vault()
		if err != nil {
			return err
		}
		pos, err = positionOf(tx, v, p)
		return err
	})
	return pos, err
}

// Entitlements returns the pro-rata split of the current repaid total.
func (c *Controller) Entitlements(ctx context.Context) (*accounting.Distribution, error) {
	var d *accounting.Distribution
	err := c.view(ctx, func(tx accounting.Tx) error {
		v, err := tx.Vault()
		if err != nil {
			return err
		}
		positions, err := accounting.Positions(tx)
		if err != nil {
			return err
		}
		d = accounting.Distribute(v.Repaid, v.Raised, positions)
		return nil
	})
	return d, err
}

// FundingProgressBps returns raised/cap in basis points. It exceeds 10000
// when deposits overshoot the cap, and a zero cap reads as fully funded.
func (c *Controller) FundingProgressBps(ctx context.Context) (math.Int, error) {
	v, err := c.Vault(ctx)
	if err != nil {
		return math.Int{}, err
	}
	if !v.Cap.IsPositive() {
		return math.NewInt(10000), nil
	}
	return v.Raised.MulRaw(10000).Quo(v.Cap), nil
}

// Installments reports each scheduled installment against the repaid total
// at the controller's current time.
func (c *Controller) Installments(ctx context.Context) ([]accounting.InstallmentStatus, error) {
	v, err := c.Vault(ctx)
	if err != nil {
		return nil, err
	}
	return v.Schedule.Statuses(c.Now(), v.Repaid), nil
}

// Snapshot returns the vault record, every position and the installment
// report from a single read transaction.
func (c *Controller) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap *Snapshot
	err := c.view(ctx, func(tx accounting.Tx) error {
		v, err := tx.Vault()
		if err != nil {
			return err
		}
		deposits, err := accounting.Positions(tx)
		if err != nil {
			return err
		}

		snap = &Snapshot{
			Vault:        v,
			Positions:    make([]Position, 0, len(deposits)),
			Installments: v.Schedule.Statuses(c.Now(), v.Repaid),
		}
		for _, d := range deposits {
			pos, err := positionOf(tx, v, d.Principal)
			if err != nil {
				return err
			}
			snap.Positions = append(snap.Positions, pos)
		}
		snap.Dust = accounting.Distribute(v.Repaid, v.Raised, deposits).Dust
		return nil
	})
	return snap, err
}

func positionOf(tx accounting.Tx, v *accounting.Vault, p accounting.Principal) (Position, error) {
	pos := Position{Principal: p, Deposit: math.ZeroInt(), Claimed: math.ZeroInt(), Claimable: math.ZeroInt()}
	if p == "" {
		return pos, nil
	}
	var err error
	if pos.Deposit, err = tx.Deposit(p); err != nil {
		return pos, err
	}
	if pos.Claimed, err = tx.Claimed(p); err != nil {
		return pos, err
	}
	pos.Claimable = accounting.ClaimableAmount(pos.Deposit, pos.Claimed, v.Raised, v.Repaid)
	return pos, nil
}
