// Package vault implements the pooled-funding vault: depositors fund a cap,
// a single borrower draws the capital and repays it on a schedule, and each
// depositor claims a pro-rata share of everything repaid.
//
// The Controller is the only entry point that mutates vault state. Every
// operation authorizes first, then runs inside one store transaction, so a
// failed call leaves the store exactly as it was.
package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"cosmossdk.io/math"

	"github.com/bitfsorg/poolvault-go/accounting"
	"github.com/bitfsorg/poolvault-go/auth"
	"github.com/bitfsorg/poolvault-go/recorder"
)

// AssetMover moves units of the funding asset between accounts.
type AssetMover interface {
	MoveAsset(ctx context.Context, from, to accounting.Principal, amount math.Int) error
}

// ShareMinter issues vault shares to depositors.
type ShareMinter interface {
	MintShares(ctx context.Context, to accounting.Principal, amount math.Int) error
}

// DefaultVaultAccount is the asset-ledger account that holds pooled funds.
const DefaultVaultAccount accounting.Principal = "vault"

// Controller drives the vault state machine over an accounting.Store.
type Controller struct {
	store   accounting.Store
	auth    auth.Authorizer
	mover   AssetMover  // nil: counters only
	shares  ShareMinter // nil: no share token
	rec     recorder.Recorder
	logger  *slog.Logger
	now     func() time.Time
	policy  Policy
	account accounting.Principal
}

// Option configures a Controller.
type Option func(*Controller)

// WithAuthorizer sets the authorization predicate.
func WithAuthorizer(a auth.Authorizer) Option {
	return func(c *Controller) { c.auth = a }
}

// WithAssetMover routes deposits, repayments, disbursement and claims
// through m.
func WithAssetMover(m AssetMover) Option {
	return func(c *Controller) { c.mover = m }
}

// WithShareMinter mints one share per deposited unit through m.
func WithShareMinter(m ShareMinter) Option {
	return func(c *Controller) { c.shares = m }
}

// WithRecorder journals every successful mutation to r.
func WithRecorder(r recorder.Recorder) Option {
	return func(c *Controller) { c.rec = r }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithPolicy sets the enforcement policy.
func WithPolicy(p Policy) Option {
	return func(c *Controller) { c.policy = p }
}

// WithVaultAccount names the account that holds pooled funds.
func WithVaultAccount(p accounting.Principal) Option {
	return func(c *Controller) { c.account = p }
}

// New returns a Controller over store.
func New(store accounting.Store, opts ...Option) *Controller {
	c := &Controller{
		store:   store,
		auth:    auth.Trusted{},
		rec:     recorder.NewNoopRecorder(),
		logger:  slog.Default(),
		now:     time.Now,
		policy:  DefaultPolicy(),
		account: DefaultVaultAccount,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Policy returns the active enforcement policy.
func (c *Controller) Policy() Policy { return c.policy }

// Account returns the account holding pooled funds.
func (c *Controller) Account() accounting.Principal { return c.account }

// Now returns the controller clock as unix seconds. Times before the epoch
// read as zero.
func (c *Controller) Now() uint64 {
	sec := c.now().Unix()
	if sec < 0 {
		return 0
	}
	return uint64(sec)
}

// InitParams holds the configuration written once by Initialize.
type InitParams struct {
	Admin              accounting.Principal
	Borrower           accounting.Principal
	AssetToken         string
	ShareToken         string
	Cap                math.Int
	InstallmentDates   []uint64
	InstallmentAmounts []math.Int
	FundingDuration    uint64 // seconds
}

// Initialize writes the vault record and enters the funding phase. It fails
// with ErrAlreadyInitialized on a second call.
func (c *Controller) Initialize(ctx context.Context, p InitParams) error {
	var v *accounting.Vault
	err := c.update(ctx, func(tx accounting.Tx) error {
		ok, err := tx.Initialized()
		if err != nil {
			return err
		}
		if ok {
			return ErrAlreadyInitialized
		}

		schedule, err := accounting.NewSchedule(p.InstallmentDates, p.InstallmentAmounts)
		if err != nil {
			return err
		}
		capAmt := p.Cap
		if capAmt.IsNil() {
			capAmt = math.ZeroInt()
		}
		if capAmt.IsNegative() {
			return fmt.Errorf("%w: negative cap %s", ErrInvalidAmount, capAmt)
		}
		if !accounting.FitsInt128(capAmt) {
			return fmt.Errorf("%w: cap %s", ErrAmountOverflow, capAmt)
		}

		v = &accounting.Vault{
			Admin:           p.Admin,
			Borrower:        p.Borrower,
			AssetToken:      p.AssetToken,
			ShareToken:      p.ShareToken,
			Cap:             capAmt,
			Schedule:        schedule,
			FundingDuration: p.FundingDuration,
			FundingStart:    c.Now(),
			Raised:          math.ZeroInt(),
			Repaid:          math.ZeroInt(),
			State:           accounting.StateFunding,
		}
		return tx.PutVault(v)
	}, nil)
	if err != nil {
		c.logger.Warn("initialize rejected", "error", err)
		return err
	}

	c.logger.Info("vault initialized",
		"admin", v.Admin, "borrower", v.Borrower, "asset", v.AssetToken,
		"cap", v.Cap, "installments", len(v.Schedule), "funding_deadline", v.FundingDeadline())
	c.record(ctx, recorder.KindInitialize, v.Admin, v.Cap, v, "")
	return nil
}

// Deposit credits amount to depositor's position and to the raised total.
// The caller must be authorized as depositor and the vault must be funding.
func (c *Controller) Deposit(ctx context.Context, caller auth.Caller, depositor accounting.Principal, amount math.Int) error {
	if err := c.authorize(caller, depositor); err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return err
	}

	var v *accounting.Vault
	err := c.update(ctx, func(tx accounting.Tx) error {
		var err error
		if v, err = tx.Vault(); err != nil {
			return err
		}
		if v.State != accounting.StateFunding {
			return fmt.Errorf("%w: deposit needs %s, vault is %s", ErrWrongPhase, accounting.StateFunding, v.State)
		}

		raised, err := accounting.CheckedAdd(v.Raised, amount)
		if err != nil {
			return err
		}
		if c.policy.EnforceCap && raised.GT(v.Cap) {
			return fmt.Errorf("%w: raised would be %s, cap %s", ErrCapExceeded, raised, v.Cap)
		}

		prev, err := tx.Deposit(depositor)
		if err != nil {
			return err
		}
		next, err := accounting.CheckedAdd(prev, amount)
		if err != nil {
			return err
		}
		if err := tx.SetDeposit(depositor, next); err != nil {
			return err
		}
		v.Raised = raised
		return tx.PutVault(v)
	}, func() error {
		if err := c.moveAsset(ctx, depositor, c.account, amount); err != nil {
			return err
		}
		if c.shares == nil {
			return nil
		}
		if err := c.shares.MintShares(ctx, depositor, amount); err != nil {
			err = fmt.Errorf("%w: %w", ErrShareIssue, err)
			if rerr := c.moveAsset(ctx, c.account, depositor, amount); rerr != nil {
				c.logger.Error("refund after failed share issue", "depositor", depositor, "amount", amount, "error", rerr)
				return errors.Join(err, rerr)
			}
			return err
		}
		return nil
	})
	if err != nil {
		c.logger.Warn("deposit rejected", "depositor", depositor, "amount", amount, "error", err)
		return err
	}

	c.logger.Info("deposit", "depositor", depositor, "amount", amount, "raised", v.Raised)
	c.record(ctx, recorder.KindDeposit, depositor, amount, v, "")
	return nil
}

// Repay adds amount to the repaid total. Only the borrower may repay.
func (c *Controller) Repay(ctx context.Context, caller auth.Caller, payer accounting.Principal, amount math.Int) error {
	if err := c.authorize(caller, payer); err != nil {
		return err
	}
	if err := checkAmount(amount); err != nil {
		return err
	}

	var v *accounting.Vault
	err := c.update(ctx, func(tx accounting.Tx) error {
		var err error
		if v, err = tx.Vault(); err != nil {
			return err
		}
		if payer != v.Borrower {
			return fmt.Errorf("%w: %s is not the borrower", ErrNotAuthorized, payer)
		}
		if c.policy.EnforcePhaseOnRepay && !slices.Contains(repayPhases, v.State) {
			return fmt.Errorf("%w: repay not allowed while %s", ErrWrongPhase, v.State)
		}

		repaid, err := accounting.CheckedAdd(v.Repaid, amount)
		if err != nil {
			return err
		}
		v.Repaid = repaid
		return tx.PutVault(v)
	}, func() error {
		return c.moveAsset(ctx, payer, c.account, amount)
	})
	if err != nil {
		c.logger.Warn("repay rejected", "payer", payer, "amount", amount, "error", err)
		return err
	}

	c.logger.Info("repay", "payer", payer, "amount", amount, "repaid", v.Repaid)
	c.record(ctx, recorder.KindRepay, payer, amount, v, "")
	return nil
}

// Claim pays principal the part of its pro-rata entitlement it has not yet
// claimed and returns that amount. Zero is a valid result and writes
// nothing. Claim performs no authorization: proceeds always go to principal.
func (c *Controller) Claim(ctx context.Context, principal accounting.Principal) (math.Int, error) {
	if principal == "" {
		return math.ZeroInt(), nil
	}

	var (
		v      *accounting.Vault
		amount math.Int
	)
	err := c.update(ctx, func(tx accounting.Tx) error {
		var err error
		if c.policy.EnforcePhaseOnClaim {
			if v, err = tx.Vault(); err != nil {
				return err
			}
			if !slices.Contains(claimPhases, v.State) {
				return fmt.Errorf("%w: claim not allowed while %s", ErrWrongPhase, v.State)
			}
		}
		// A principal without a deposit settles to zero before the vault
		// record is read, so an uninitialized vault is a no-op.
		if amount, err = accounting.SettleClaim(tx, principal); err != nil {
			return err
		}
		if v == nil && amount.IsPositive() {
			v, err = tx.Vault()
		}
		return err
	}, func() error {
		if !amount.IsPositive() {
			return nil
		}
		return c.moveAsset(ctx, c.account, principal, amount)
	})
	if err != nil {
		c.logger.Warn("claim rejected", "principal", principal, "error", err)
		return math.ZeroInt(), err
	}

	if amount.IsPositive() {
		c.logger.Info("claim", "principal", principal, "amount", amount)
		c.record(ctx, recorder.KindClaim, principal, amount, v, "")
	} else {
		c.logger.Debug("claim: nothing to claim", "principal", principal)
	}
	return amount, nil
}

// update runs mutate in a store transaction, checks the invariants when the
// policy asks for it, then runs effect. An error from any step aborts the
// commit.
func (c *Controller) update(ctx context.Context, mutate func(tx accounting.Tx) error, effect func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.store.Update(func(tx accounting.Tx) error {
		if err := mutate(tx); err != nil {
			return err
		}
		if c.policy.VerifyInvariants {
			if err := c.checkInvariants(tx); err != nil {
				c.logger.Error("invariant check failed", "error", err)
				return err
			}
		}
		if effect != nil {
			return effect()
		}
		return nil
	})
}

// checkInvariants always verifies the bookkeeping. The pro-rata claim bound
// holds only when claims are confined to phases after funding: a deposit
// that follows a claim dilutes the claimant.
func (c *Controller) checkInvariants(tx accounting.Tx) error {
	if err := accounting.CheckBookkeeping(tx); err != nil {
		return err
	}
	if c.policy.EnforcePhaseOnClaim {
		return accounting.CheckClaimBound(tx)
	}
	return nil
}

func (c *Controller) view(ctx context.Context, fn func(tx accounting.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.store.View(fn)
}

func (c *Controller) authorize(caller auth.Caller, principal accounting.Principal) error {
	if principal == "" || !c.auth.IsAuthorized(caller, principal) {
		c.logger.Warn("authorization denied", "caller", caller.Principal, "principal", principal)
		return fmt.Errorf("%w: cannot act as %q", ErrNotAuthorized, principal)
	}
	return nil
}

func (c *Controller) moveAsset(ctx context.Context, from, to accounting.Principal, amount math.Int) error {
	if c.mover == nil {
		return nil
	}
	if err := c.mover.MoveAsset(ctx, from, to, amount); err != nil {
		return fmt.Errorf("%w: %s -> %s: %w", ErrAssetMovement, from, to, err)
	}
	return nil
}

func (c *Controller) record(ctx context.Context, kind recorder.Kind, p accounting.Principal, amount math.Int, v *accounting.Vault, note string) {
	evt := recorder.NewEvent(kind)
	evt.Timestamp = c.now().UTC()
	evt.Principal = string(p)
	evt.Note = note
	if !amount.IsNil() {
		evt.Amount = amount.String()
	}
	if v != nil {
		evt.State = v.State.String()
		evt.Raised = v.Raised.String()
		evt.Repaid = v.Repaid.String()
	}
	if err := c.rec.Record(ctx, evt); err != nil {
		c.logger.Error("journal event", "kind", kind, "error", err)
	}
}

func checkAmount(amount math.Int) error {
	if amount.IsNil() || !amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidAmount)
	}
	if !accounting.FitsInt128(amount) {
		return fmt.Errorf("%w: %s", ErrAmountOverflow, amount)
	}
	return nil
}
