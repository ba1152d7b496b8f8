package accounting

import "errors"

var (
	// ErrNotInitialized indicates the vault record has not been written yet.
	ErrNotInitialized = errors.New("accounting: vault not initialized")

	// ErrScheduleMismatch indicates the installment dates and amounts differ in length.
	ErrScheduleMismatch = errors.New("accounting: installment schedule length mismatch")

	// ErrInvalidSchedule indicates a schedule entry could not be parsed.
	ErrInvalidSchedule = errors.New("accounting: invalid installment schedule")

	// ErrInvalidAmount indicates an amount is malformed or has the wrong sign.
	ErrInvalidAmount = errors.New("accounting: invalid amount")

	// ErrAmountOverflow indicates an amount or running total leaves the signed 128-bit range.
	ErrAmountOverflow = errors.New("accounting: amount exceeds 128-bit range")

	// ErrEmptyPrincipal indicates a principal identity is empty.
	ErrEmptyPrincipal = errors.New("accounting: empty principal")

	// ErrInvalidState indicates an unknown vault state value.
	ErrInvalidState = errors.New("accounting: invalid vault state")

	// ErrNilParam indicates a required parameter is nil.
	ErrNilParam = errors.New("accounting: required parameter is nil")

	// ErrReadOnly indicates a write was attempted inside a read-only transaction.
	ErrReadOnly = errors.New("accounting: write in read-only transaction")

	// ErrInvariantViolation indicates the stored state breaks an accounting invariant.
	ErrInvariantViolation = errors.New("accounting: invariant violated")
)
