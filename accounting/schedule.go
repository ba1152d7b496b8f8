package accounting

import (
	"fmt"
	"strconv"
	"strings"

	"cosmossdk.io/math"
)

// Installment is one scheduled repayment.
type Installment struct {
	Due    uint64   `json:"due"` // unix seconds
	Amount math.Int `json:"amount"`
}

// Schedule is the ordered installment plan. Cumulative figures follow the
// order given at initialization.
type Schedule []Installment

// NewSchedule zips parallel date and amount sequences into a Schedule.
// The two sequences must have the same length.
func NewSchedule(dates []uint64, amounts []math.Int) (Schedule, error) {
	if len(dates) != len(amounts) {
		return nil, fmt.Errorf("%w: %d dates, %d amounts", ErrScheduleMismatch, len(dates), len(amounts))
	}
	s := make(Schedule, len(dates))
	for i := range dates {
		amt := orZero(amounts[i])
		if amt.IsNegative() {
			return nil, fmt.Errorf("%w: installment %d amount %s is negative", ErrInvalidAmount, i, amt)
		}
		if !FitsInt128(amt) {
			return nil, fmt.Errorf("%w: installment %d", ErrAmountOverflow, i)
		}
		s[i] = Installment{Due: dates[i], Amount: amt}
	}
	return s, nil
}

// ParseSchedule parses comma-separated unix timestamps and amounts,
// e.g. "2000,3000" and "500000,500000".
func ParseSchedule(dates, amounts string) (Schedule, error) {
	dateFields := splitList(dates)
	amountFields := splitList(amounts)

	ds := make([]uint64, len(dateFields))
	for i, f := range dateFields {
		d, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: date %d: %w", ErrInvalidSchedule, i, err)
		}
		ds[i] = d
	}
	as := make([]math.Int, len(amountFields))
	for i, f := range amountFields {
		a, err := ParseAmount(f)
		if err != nil {
			return nil, fmt.Errorf("%w: amount %d: %w", ErrInvalidSchedule, i, err)
		}
		as[i] = a
	}
	return NewSchedule(ds, as)
}

func splitList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// Dates returns the due timestamps in schedule order.
func (s Schedule) Dates() []uint64 {
	out := make([]uint64, len(s))
	for i, in := range s {
		out[i] = in.Due
	}
	return out
}

// Amounts returns the installment amounts in schedule order.
func (s Schedule) Amounts() []math.Int {
	out := make([]math.Int, len(s))
	for i, in := range s {
		out[i] = in.Amount
	}
	return out
}

// Total returns the sum of all installment amounts.
func (s Schedule) Total() math.Int {
	total := math.ZeroInt()
	for _, in := range s {
		total = total.Add(orZero(in.Amount))
	}
	return total
}

// DueBy returns the sum of installments whose due time is at or before ts.
func (s Schedule) DueBy(ts uint64) math.Int {
	total := math.ZeroInt()
	for _, in := range s {
		if in.Due <= ts {
			total = total.Add(orZero(in.Amount))
		}
	}
	return total
}

// InstallmentStatus describes one installment against the repaid total.
type InstallmentStatus struct {
	Index      int      `json:"index"`
	Due        uint64   `json:"due"`
	Amount     math.Int `json:"amount"`
	Cumulative math.Int `json:"cumulative"` // sum of this and all earlier installments
	Covered    bool     `json:"covered"`    // repaid >= Cumulative
	Overdue    bool     `json:"overdue"`    // not covered and Due <= now
}

// Statuses evaluates every installment at time now given the repaid total.
func (s Schedule) Statuses(now uint64, repaid math.Int) []InstallmentStatus {
	repaid = orZero(repaid)
	out := make([]InstallmentStatus, len(s))
	cum := math.ZeroInt()
	for i, in := range s {
		cum = cum.Add(orZero(in.Amount))
		covered := repaid.GTE(cum)
		out[i] = InstallmentStatus{
			Index:      i,
			Due:        in.Due,
			Amount:     orZero(in.Amount),
			Cumulative: cum,
			Covered:    covered,
			Overdue:    !covered && in.Due <= now,
		}
	}
	return out
}

// Next returns the first installment not yet covered by repaid.
func (s Schedule) Next(now uint64, repaid math.Int) (InstallmentStatus, bool) {
	for _, st := range s.Statuses(now, repaid) {
		if !st.Covered {
			return st, true
		}
	}
	return InstallmentStatus{}, false
}
