package vault

import (
	"context"
	"fmt"

	"cosmossdk.io/math"

	"github.com/bitfsorg/poolvault-go/accounting"
	"github.com/bitfsorg/poolvault-go/auth"
	"github.com/bitfsorg/poolvault-go/recorder"
)

// transition describes one admin-driven lifecycle step.
type transition struct {
	name string
	from accounting.State
	to   accounting.State

	// guard returns nil when the step may proceed.
	guard func(c *Controller, v *accounting.Vault) error

	// effect moves funds for the step; it runs before commit.
	effect func(ctx context.Context, c *Controller, v *accounting.Vault) error
}

var (
	closeFunding = transition{
		name: "close_funding",
		from: accounting.StateFunding,
		to:   accounting.StateFunded,
		guard: func(c *Controller, v *accounting.Vault) error {
			if v.Raised.GTE(v.Cap) {
				return nil
			}
			if now := c.Now(); now >= v.FundingDeadline() {
				return nil
			}
			return fmt.Errorf("%w: raised %s of cap %s and funding open until %d",
				ErrTransitionGuard, v.Raised, v.Cap, v.FundingDeadline())
		},
	}

	enterRepayment = transition{
		name: "enter_repayment",
		from: accounting.StateFunded,
		to:   accounting.StateRepayment,
		effect: func(ctx context.Context, c *Controller, v *accounting.Vault) error {
			if !v.Raised.IsPositive() {
				return nil
			}
			return c.moveAsset(ctx, c.account, v.Borrower, v.Raised)
		},
	}

	openClaims = transition{
		name: "open_claims",
		from: accounting.StateRepayment,
		to:   accounting.StateClaimable,
		guard: func(_ *Controller, v *accounting.Vault) error {
			total := v.Schedule.Total()
			if v.Repaid.GTE(total) {
				return nil
			}
			return fmt.Errorf("%w: repaid %s of scheduled %s", ErrTransitionGuard, v.Repaid, total)
		},
	}

	closeVault = transition{
		name: "close",
		from: accounting.StateClaimable,
		to:   accounting.StateClosed,
	}
)

// CloseFunding ends the funding phase once the cap is reached or the funding
// window has elapsed.
func (c *Controller) CloseFunding(ctx context.Context, caller auth.Caller) error {
	return c.advance(ctx, caller, closeFunding)
}

// EnterRepayment starts the repayment phase and disburses the raised
// capital to the borrower.
func (c *Controller) EnterRepayment(ctx context.Context, caller auth.Caller) error {
	return c.advance(ctx, caller, enterRepayment)
}

// OpenClaims marks the vault claimable once every scheduled installment
// has been repaid.
func (c *Controller) OpenClaims(ctx context.Context, caller auth.Caller) error {
	return c.advance(ctx, caller, openClaims)
}

// Close retires a claimable vault. Claims remain possible afterwards.
func (c *Controller) Close(ctx context.Context, caller auth.Caller) error {
	return c.advance(ctx, caller, closeVault)
}

// ForcePhase sets the state directly, skipping source-state checks and
// guards. It is an administrative recovery tool.
func (c *Controller) ForcePhase(ctx context.Context, caller auth.Caller, to accounting.State) error {
	if !to.Valid() {
		return fmt.Errorf("%w: %d", accounting.ErrInvalidState, uint8(to))
	}
	return c.advance(ctx, caller, transition{name: "force", to: to})
}

func (c *Controller) advance(ctx context.Context, caller auth.Caller, t transition) error {
	var (
		v    *accounting.Vault
		from accounting.State
	)
	forced := t.name == "force"

	err := c.update(ctx, func(tx accounting.Tx) error {
		var err error
		if v, err = tx.Vault(); err != nil {
			return err
		}
		if err := c.authorize(caller, v.Admin); err != nil {
			return err
		}
		from = v.State
		if !forced && v.State != t.from {
			return fmt.Errorf("%w: %s needs %s, vault is %s", ErrWrongPhase, t.name, t.from, v.State)
		}
		if t.guard != nil {
			if err := t.guard(c, v); err != nil {
				return err
			}
		}
		v.State = t.to
		return tx.PutVault(v)
	}, func() error {
		if t.effect == nil {
			return nil
		}
		return t.effect(ctx, c, v)
	})
	if err != nil {
		c.logger.Warn("transition rejected", "transition", t.name, "error", err)
		return err
	}

	c.logger.Info("vault transition", "transition", t.name, "from", from, "to", t.to)
	amount := math.Int{}
	if t.effect != nil {
		amount = v.Raised
	}
	c.record(ctx, recorder.KindTransition, caller.Principal, amount,
		v, fmt.Sprintf("%s: %s -> %s", t.name, from, t.to))
	return nil
}
