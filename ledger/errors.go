package ledger

import "errors"

var (
	// ErrInsufficientBalance indicates the source account cannot cover the amount.
	ErrInsufficientBalance = errors.New("ledger: insufficient balance")

	// ErrInsufficientAllowance indicates the spender's allowance cannot cover the amount.
	ErrInsufficientAllowance = errors.New("ledger: insufficient allowance")

	// ErrInvalidAmount indicates a negative or out-of-range amount.
	ErrInvalidAmount = errors.New("ledger: invalid amount")

	// ErrEmptyAccount indicates an empty account identity.
	ErrEmptyAccount = errors.New("ledger: empty account")
)
