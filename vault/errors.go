package vault

import (
	"errors"

	"github.com/bitfsorg/poolvault-go/accounting"
)

var (
	// ErrAlreadyInitialized indicates Initialize was called on an existing vault.
	ErrAlreadyInitialized = errors.New("vault: already initialized")

	// ErrWrongPhase indicates the operation is not permitted in the current state.
	ErrWrongPhase = errors.New("vault: operation not allowed in current phase")

	// ErrNotAuthorized indicates the caller may not act as the required principal.
	ErrNotAuthorized = errors.New("vault: caller not authorized")

	// ErrCapExceeded indicates a deposit would push raised above the funding cap.
	ErrCapExceeded = errors.New("vault: deposit exceeds funding cap")

	// ErrTransitionGuard indicates a lifecycle transition's precondition does not hold.
	ErrTransitionGuard = errors.New("vault: transition precondition not met")

	// ErrAssetMovement indicates the asset mover refused a transfer.
	ErrAssetMovement = errors.New("vault: asset movement failed")

	// ErrShareIssue indicates the share minter refused to mint.
	ErrShareIssue = errors.New("vault: share issue failed")
)

// Accounting errors surfaced unchanged by the controller.
var (
	ErrNotInitialized     = accounting.ErrNotInitialized
	ErrScheduleMismatch   = accounting.ErrScheduleMismatch
	ErrInvalidAmount      = accounting.ErrInvalidAmount
	ErrAmountOverflow     = accounting.ErrAmountOverflow
	ErrInvariantViolation = accounting.ErrInvariantViolation
)
