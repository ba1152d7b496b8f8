package accounting

import (
	"errors"
	"path/filepath"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_VaultRoundTrip(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t)

			err := s.View(func(tx Tx) error {
				ok, err := tx.Initialized()
				require.NoError(t, err)
				assert.False(t, ok)
				_, err = tx.Vault()
				return err
			})
			assert.ErrorIs(t, err, ErrNotInitialized)

			want := testVault()
			require.NoError(t, s.Update(func(tx Tx) error { return tx.PutVault(want) }))

			require.NoError(t, s.View(func(tx Tx) error {
				got, err := tx.Vault()
				require.NoError(t, err)
				assert.Equal(t, want.Admin, got.Admin)
				assert.Equal(t, want.Borrower, got.Borrower)
				assert.Equal(t, want.AssetToken, got.AssetToken)
				assert.Equal(t, want.ShareToken, got.ShareToken)
				assertAmount(t, 1_000_000, got.Cap)
				assert.Equal(t, want.Schedule.Dates(), got.Schedule.Dates())
				assertAmount(t, 1_000_000, got.Schedule.Total())
				assert.Equal(t, uint64(1000), got.FundingDuration)
				assert.Equal(t, uint64(1000), got.FundingStart)
				assertAmount(t, 0, got.Raised)
				assert.Equal(t, StateFunding, got.State)
				return nil
			}))
		})
	}
}

func TestStore_MissingEntriesReadZero(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t)
			require.NoError(t, s.View(func(tx Tx) error {
				d, err := tx.Deposit("nobody")
				require.NoError(t, err)
				assertAmount(t, 0, d)
				c, err := tx.Claimed("nobody")
				require.NoError(t, err)
				assertAmount(t, 0, c)
				return nil
			}))
		})
	}
}

func TestStore_UpdateRollsBackOnError(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t)
			seed(t, s, testVault(), map[Principal]int64{"d1": 100})

			boom := errors.New("boom")
			err := s.Update(func(tx Tx) error {
				require.NoError(t, tx.SetDeposit("d1", amt(999)))
				require.NoError(t, tx.SetClaimed("d1", amt(5)))
				v, err := tx.Vault()
				require.NoError(t, err)
				v.Raised = amt(999)
				require.NoError(t, tx.PutVault(v))
				return boom
			})
			assert.ErrorIs(t, err, boom)

			require.NoError(t, s.View(func(tx Tx) error {
				d, _ := tx.Deposit("d1")
				assertAmount(t, 100, d)
				c, _ := tx.Claimed("d1")
				assertAmount(t, 0, c)
				v, err := tx.Vault()
				require.NoError(t, err)
				assertAmount(t, 100, v.Raised)
				return nil
			}))
		})
	}
}

func TestStore_ViewRejectsWrites(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t)
			err := s.View(func(tx Tx) error {
				return tx.SetDeposit("d1", amt(1))
			})
			assert.ErrorIs(t, err, ErrReadOnly)
		})
	}
}

func TestStore_EmptyPrincipal(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t)
			err := s.Update(func(tx Tx) error {
				return tx.SetDeposit("", amt(1))
			})
			assert.ErrorIs(t, err, ErrEmptyPrincipal)
		})
	}
}

func TestStore_ForEach(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t)
			seed(t, s, testVault(), map[Principal]int64{"a": 1, "b": 2, "c": 3})
			require.NoError(t, s.Update(func(tx Tx) error { return tx.SetClaimed("b", amt(1)) }))

			require.NoError(t, s.View(func(tx Tx) error {
				positions, err := Positions(tx)
				require.NoError(t, err)
				require.Len(t, positions, 3)
				assert.Equal(t, Principal("a"), positions[0].Principal)
				assert.Equal(t, Principal("c"), positions[2].Principal)

				claims := map[Principal]string{}
				require.NoError(t, tx.ForEachClaimed(func(p Principal, a math.Int) error {
					claims[p] = a.String()
					return nil
				}))
				assert.Equal(t, map[Principal]string{"b": "1"}, claims)
				return nil
			}))
		})
	}
}

func TestStore_ForEachStopsOnError(t *testing.T) {
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t)
			seed(t, s, testVault(), map[Principal]int64{"a": 1, "b": 2})
			stop := errors.New("stop")
			calls := 0
			err := s.View(func(tx Tx) error {
				return tx.ForEachDeposit(func(Principal, math.Int) error {
					calls++
					return stop
				})
			})
			assert.ErrorIs(t, err, stop)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestBoltStore_Persists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "vault.db")

	s, err := OpenBoltStore(path)
	require.NoError(t, err)
	seed(t, s, testVault(), map[Principal]int64{"d1": 300})
	require.NoError(t, s.Close())

	s, err = OpenBoltStore(path)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.View(func(tx Tx) error {
		v, err := tx.Vault()
		require.NoError(t, err)
		assertAmount(t, 300, v.Raised)
		d, err := tx.Deposit("d1")
		require.NoError(t, err)
		assertAmount(t, 300, d)
		return nil
	}))
}

func TestMemStore_ViewSeesCommittedOnly(t *testing.T) {
	s := NewMemStore()
	seed(t, s, testVault(), map[Principal]int64{"d1": 10})

	// Vault returns a copy; mutating it must not leak into the store.
	require.NoError(t, s.View(func(tx Tx) error {
		v, err := tx.Vault()
		require.NoError(t, err)
		v.Raised = amt(12345)
		v.Schedule[0].Due = 1
		return nil
	}))
	require.NoError(t, s.View(func(tx Tx) error {
		v, err := tx.Vault()
		require.NoError(t, err)
		assertAmount(t, 10, v.Raised)
		assert.Equal(t, uint64(2000), v.Schedule[0].Due)
		return nil
	}))
}
