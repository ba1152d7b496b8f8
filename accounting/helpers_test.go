package accounting

import (
	"path/filepath"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(v int64) math.Int { return math.NewInt(v) }

func assertAmount(t *testing.T, want int64, got math.Int, msgAndArgs ...interface{}) {
	t.Helper()
	require.False(t, got.IsNil(), "amount is nil")
	assert.Equal(t, math.NewInt(want).String(), got.String(), msgAndArgs...)
}

// storeFactories lists every Store implementation under test.
func storeFactories() []struct {
	name string
	open func(t *testing.T) Store
} {
	return []struct {
		name string
		open func(t *testing.T) Store
	}{
		{"mem", func(t *testing.T) Store { return NewMemStore() }},
		{"bolt", func(t *testing.T) Store {
			s, err := OpenBoltStore(filepath.Join(t.TempDir(), "vault.db"))
			require.NoError(t, err)
			t.Cleanup(func() { _ = s.Close() })
			return s
		}},
	}
}

func testVault() *Vault {
	sched, _ := NewSchedule([]uint64{2000, 3000}, []math.Int{amt(500_000), amt(500_000)})
	return &Vault{
		Admin:           "admin",
		Borrower:        "borrower",
		AssetToken:      "usdc",
		ShareToken:      "vshare",
		Cap:             amt(1_000_000),
		Schedule:        sched,
		FundingDuration: 1000,
		FundingStart:    1000,
		Raised:          math.ZeroInt(),
		Repaid:          math.ZeroInt(),
		State:           StateFunding,
	}
}

// seed writes v and the given deposits, keeping raised consistent.
func seed(t *testing.T, s Store, v *Vault, deposits map[Principal]int64) {
	t.Helper()
	require.NoError(t, s.Update(func(tx Tx) error {
		raised := math.ZeroInt()
		for p, d := range deposits {
			if err := tx.SetDeposit(p, amt(d)); err != nil {
				return err
			}
			raised = raised.Add(amt(d))
		}
		v = v.Clone()
		v.Raised = raised
		return tx.PutVault(v)
	}))
}
