package vault

import (
	"github.com/bitfsorg/poolvault-go/accounting"
	"github.com/bitfsorg/poolvault-go/config"
)

// Policy toggles the optional enforcement rules. The zero value accepts
// deposits past the cap and repayments or claims in any phase.
type Policy struct {
	// EnforceCap rejects deposits that would push raised above cap.
	EnforceCap bool

	// EnforcePhaseOnRepay limits repay to the repayment and claimable phases.
	EnforcePhaseOnRepay bool

	// EnforcePhaseOnClaim limits claim to the repayment, claimable and closed phases.
	EnforcePhaseOnClaim bool

	// VerifyInvariants re-checks the accounting invariants before every commit.
	VerifyInvariants bool
}

// DefaultPolicy returns the permissive policy with invariant checking on.
func DefaultPolicy() Policy {
	return Policy{VerifyInvariants: true}
}

// PolicyFromConfig converts the configured policy block.
func PolicyFromConfig(p config.Policy) Policy {
	return Policy{
		EnforceCap:          p.EnforceCap,
		EnforcePhaseOnRepay: p.EnforcePhaseOnRepay,
		EnforcePhaseOnClaim: p.EnforcePhaseOnClaim,
		VerifyInvariants:    p.VerifyInvariants,
	}
}

var (
	repayPhases = []accounting.State{accounting.StateRepayment, accounting.StateClaimable}
	claimPhases = []accounting.State{accounting.StateRepayment, accounting.StateClaimable, accounting.StateClosed}
)
