package vault

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"cosmossdk.io/math"
	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/poolvault-go/accounting"
	"github.com/bitfsorg/poolvault-go/auth"
	"github.com/bitfsorg/poolvault-go/recorder"
)

const (
	admin    accounting.Principal = "admin"
	borrower accounting.Principal = "borrower"
)

func amt(v int64) math.Int { return math.NewInt(v) }

func assertAmount(t *testing.T, want int64, got math.Int, msgAndArgs ...interface{}) {
	t.Helper()
	require.False(t, got.IsNil(), "amount is nil")
	assert.Equal(t, math.NewInt(want).String(), got.String(), msgAndArgs...)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock(unix int64) *fakeClock { return &fakeClock{now: time.Unix(unix, 0)} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(unix int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = time.Unix(unix, 0)
}

// memRecorder keeps journaled events in memory.
type memRecorder struct {
	mu     sync.Mutex
	events []*recorder.Event
	err    error
}

func (r *memRecorder) Record(_ context.Context, evt *recorder.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.events = append(r.events, evt)
	return nil
}

func (r *memRecorder) Close() error { return nil }

func (r *memRecorder) kinds() []recorder.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recorder.Kind, len(r.events))
	for i, e := range r.events {
		out[i] = e.Kind
	}
	return out
}

type failingMover struct{}

func (failingMover) MoveAsset(context.Context, accounting.Principal, accounting.Principal, math.Int) error {
	return errors.New("ledger offline")
}

type failingMinter struct{}

func (failingMinter) MintShares(context.Context, accounting.Principal, math.Int) error {
	return errors.New("share ledger offline")
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestController returns a controller over a fresh MemStore with its
// clock at unix 1000.
func newTestController(t *testing.T, opts ...Option) (*Controller, *fakeClock) {
	t.Helper()
	clock := newClock(1000)
	base := []Option{WithClock(clock.Now), WithLogger(discardLogger())}
	return New(accounting.NewMemStore(), append(base, opts...)...), clock
}

// defaultParams: cap 1,000,000, two installments of 500,000 due at 2000
// and 3000, funding window of 1000 seconds.
func defaultParams() InitParams {
	return InitParams{
		Admin:              admin,
		Borrower:           borrower,
		AssetToken:         "usdc",
		ShareToken:         "vshare",
		Cap:                amt(1_000_000),
		InstallmentDates:   []uint64{2000, 3000},
		InstallmentAmounts: []math.Int{amt(500_000), amt(500_000)},
		FundingDuration:    1000,
	}
}

func initVault(t *testing.T, c *Controller) {
	t.Helper()
	require.NoError(t, c.Initialize(context.Background(), defaultParams()))
}

func deposit(t *testing.T, c *Controller, p accounting.Principal, v int64) {
	t.Helper()
	require.NoError(t, c.Deposit(context.Background(), auth.As(p), p, amt(v)))
}

func repay(t *testing.T, c *Controller, v int64) {
	t.Helper()
	require.NoError(t, c.Repay(context.Background(), auth.As(borrower), borrower, amt(v)))
}

func claim(t *testing.T, c *Controller, p accounting.Principal) math.Int {
	t.Helper()
	got, err := c.Claim(context.Background(), p)
	require.NoError(t, err)
	return got
}

// toRepayment funds the vault to its cap and walks it into repayment.
func toRepayment(t *testing.T, c *Controller, deposits map[accounting.Principal]int64) {
	t.Helper()
	ctx := context.Background()
	for p, v := range deposits {
		deposit(t, c, p, v)
	}
	require.NoError(t, c.CloseFunding(ctx, auth.As(admin)))
	require.NoError(t, c.EnterRepayment(ctx, auth.As(admin)))
}

func info(t *testing.T, c *Controller) Info {
	t.Helper()
	i, err := c.VaultInfo(context.Background())
	require.NoError(t, err)
	return i
}

// signedCaller returns a caller backed by a fresh key and its principal.
func signedCaller(t *testing.T) (auth.Caller, accounting.Principal) {
	t.Helper()
	priv, err := ec.NewPrivateKey()
	require.NoError(t, err)
	c, err := auth.Sign(priv, []byte("poolvault"))
	require.NoError(t, err)
	return c, c.Principal
}
