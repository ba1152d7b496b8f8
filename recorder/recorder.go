// Package recorder journals vault events for audit and analysis.
package recorder

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Kind names a journaled event type.
type Kind string

const (
	KindInitialize           Kind = "initialize"
	KindDeposit              Kind = "deposit"
	KindRepay                Kind = "repay"
	KindClaim                Kind = "claim"
	KindTransition           Kind = "transition"
	KindInstallmentOverdue   Kind = "installment_overdue"
	KindFundingWindowElapsed Kind = "funding_window_elapsed"
	KindCapReached           Kind = "cap_reached"
)

// Event is one journal entry. Amounts are base-10 strings so the journal
// holds full 128-bit values.
type Event struct {
	ID        string
	Kind      Kind
	Principal string
	Amount    string
	State     string // vault state after the event
	Raised    string
	Repaid    string
	Note      string
	Timestamp time.Time
}

// NewEvent returns an event of kind k with a fresh time-ordered ID.
func NewEvent(k Kind) *Event {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return &Event{ID: id.String(), Kind: k, Timestamp: time.Now().UTC()}
}

// Recorder persists vault events.
type Recorder interface {
	Record(ctx context.Context, evt *Event) error
	Close() error
}
