// Package monitor periodically inspects a vault and reports conditions that
// need an operator: overdue installments, an elapsed funding window and a
// reached cap. It only observes; lifecycle transitions stay with the admin.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"cosmossdk.io/math"
	"github.com/robfig/cron/v3"

	"github.com/bitfsorg/poolvault-go/accounting"
	"github.com/bitfsorg/poolvault-go/recorder"
	"github.com/bitfsorg/poolvault-go/vault"
)

// Finding is one condition observed during a check.
type Finding struct {
	Kind recorder.Kind
	// Key identifies the condition so it is reported once per process.
	Key     string
	Message string
	Amount  math.Int
}

// Report is the outcome of a single check.
type Report struct {
	CheckedAt uint64 // unix seconds on the controller clock
	State     accounting.State
	Raised    math.Int
	Repaid    math.Int
	Findings  []Finding
	// New holds the findings not reported by an earlier check.
	New []Finding
}

// Monitor runs vault checks on a cron schedule.
type Monitor struct {
	Cron     *cron.Cron
	Vault    *vault.Controller
	Recorder recorder.Recorder
	Logger   *slog.Logger
	Ctx      context.Context

	mu   sync.Mutex
	seen map[string]bool
}

// New creates a Monitor. A nil recorder disables journaling and a nil
// logger falls back to slog.Default.
func New(ctx context.Context, ctrl *vault.Controller, rec recorder.Recorder, logger *slog.Logger) *Monitor {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		Cron:     cron.New(cron.WithSeconds()),
		Vault:    ctrl,
		Recorder: rec,
		Logger:   logger,
		Ctx:      ctx,
		seen:     make(map[string]bool),
	}
}

// Register schedules the periodic check. schedule uses the six-field cron
// format with seconds, or a descriptor such as "@every 1m".
func (m *Monitor) Register(schedule string) error {
	if _, err := m.Cron.AddFunc(schedule, m.scheduledCheck); err != nil {
		return fmt.Errorf("monitor: register check %q: %w", schedule, err)
	}
	return nil
}

// Start starts the cron scheduler.
func (m *Monitor) Start() {
	m.Cron.Start()
	m.Logger.Info("vault monitor started")
}

// Stop stops the scheduler and waits for a running check to finish.
func (m *Monitor) Stop() {
	<-m.Cron.Stop().Done()
	m.Logger.Info("vault monitor stopped")
}

func (m *Monitor) scheduledCheck() {
	if _, err := m.CheckNow(m.Ctx); err != nil {
		m.Logger.Error("vault check failed", "error", err)
	}
}

// CheckNow inspects the vault once. New findings are logged at warn level
// and journaled; findings already reported are returned but not repeated.
func (m *Monitor) CheckNow(ctx context.Context) (*Report, error) {
	v, err := m.Vault.Vault(ctx)
	if err != nil {
		return nil, err
	}
	now := m.Vault.Now()

	r := &Report{CheckedAt: now, State: v.State, Raised: v.Raised, Repaid: v.Repaid}
	r.Findings = evaluate(v, now)

	for _, f := range r.Findings {
		if !m.markSeen(f.Key) {
			continue
		}
		r.New = append(r.New, f)
		m.Logger.Warn(f.Message, "kind", f.Kind, "state", v.State, "raised", v.Raised, "repaid", v.Repaid)
		m.journal(ctx, f, v, now)
	}
	m.Logger.Debug("vault check complete", "state", v.State, "findings", len(r.Findings), "new", len(r.New))
	return r, nil
}

// evaluate lists the conditions that hold for v at time now.
func evaluate(v *accounting.Vault, now uint64) []Finding {
	var out []Finding

	if v.State == accounting.StateFunding {
		if v.Cap.IsPositive() && v.Raised.GTE(v.Cap) {
			out = append(out, Finding{
				Kind:    recorder.KindCapReached,
				Key:     "cap_reached",
				Message: fmt.Sprintf("funding cap reached: raised %s of %s", v.Raised, v.Cap),
				Amount:  v.Raised,
			})
		}
		if now >= v.FundingDeadline() {
			out = append(out, Finding{
				Kind:    recorder.KindFundingWindowElapsed,
				Key:     "funding_window_elapsed",
				Message: fmt.Sprintf("funding window elapsed at %d while still funding", v.FundingDeadline()),
				Amount:  v.Raised,
			})
		}
	}

	if v.State == accounting.StateFunding || v.State == accounting.StateClosed {
		return out
	}
	for _, st := range v.Schedule.Statuses(now, v.Repaid) {
		if !st.Overdue {
			continue
		}
		out = append(out, Finding{
			Kind: recorder.KindInstallmentOverdue,
			Key:  fmt.Sprintf("installment_overdue/%d", st.Index),
			Message: fmt.Sprintf("installment %d overdue: due %d, repaid %s of cumulative %s",
				st.Index, st.Due, v.Repaid, st.Cumulative),
			Amount: st.Cumulative.Sub(v.Repaid),
		})
	}
	return out
}

// markSeen records key and reports whether it was new.
func (m *Monitor) markSeen(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.seen[key] {
		return false
	}
	m.seen[key] = true
	return true
}

func (m *Monitor) journal(ctx context.Context, f Finding, v *accounting.Vault, now uint64) {
	evt := recorder.NewEvent(f.Kind)
	evt.Timestamp = time.Unix(int64(now), 0).UTC()
	evt.Principal = string(v.Borrower)
	evt.State = v.State.String()
	evt.Raised = v.Raised.String()
	evt.Repaid = v.Repaid.String()
	evt.Note = f.Message
	if !f.Amount.IsNil() {
		evt.Amount = f.Amount.String()
	}
	if err := m.Recorder.Record(ctx, evt); err != nil {
		m.Logger.Error("journal finding", "kind", f.Kind, "error", err)
	}
}
