package accounting

import (
	"fmt"

	"cosmossdk.io/math"
)

// Principal identifies an account that can be checked for authorization:
// a depositor, the borrower, the admin or the vault itself.
type Principal string

// State is the vault lifecycle phase.
type State uint8

const (
	StateFunding State = iota
	StateFunded
	StateRepayment
	StateClaimable
	StateClosed
)

var stateNames = [...]string{
	StateFunding:   "funding",
	StateFunded:    "funded",
	StateRepayment: "repay",
	StateClaimable: "claim",
	StateClosed:    "closed",
}

// String returns the short symbol used in storage and logs.
func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// Valid reports whether s is one of the declared phases.
func (s State) Valid() bool { return int(s) < len(stateNames) }

// ParseState converts a short symbol back into a State.
func ParseState(name string) (State, error) {
	for i, n := range stateNames {
		if n == name {
			return State(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidState, name)
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidState, uint8(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(text []byte) error {
	parsed, err := ParseState(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Vault is the singleton record written by initialize.
type Vault struct {
	Admin           Principal `json:"admin"`
	Borrower        Principal `json:"borrower"`
	AssetToken      string    `json:"asset_token"`
	ShareToken      string    `json:"share_token"`
	Cap             math.Int  `json:"cap"`
	Schedule        Schedule  `json:"schedule"`
	FundingDuration uint64    `json:"funding_duration"` // seconds
	FundingStart    uint64    `json:"funding_start"`    // unix seconds at initialize
	Raised          math.Int  `json:"raised"`
	Repaid          math.Int  `json:"repaid"`
	State           State     `json:"state"`
}

// Clone returns a deep copy of the record.
func (v *Vault) Clone() *Vault {
	if v == nil {
		return nil
	}
	c := *v
	c.Schedule = append(Schedule(nil), v.Schedule...)
	return &c
}

// FundingDeadline returns the unix time at which the funding window elapses.
// The result saturates instead of wrapping.
func (v *Vault) FundingDeadline() uint64 {
	end := v.FundingStart + v.FundingDuration
	if end < v.FundingStart {
		return ^uint64(0)
	}
	return end
}
