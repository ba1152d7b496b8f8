package accounting

import (
	"fmt"
	"sync"

	"cosmossdk.io/math"
)

// Store holds the vault record and the per-principal deposit and claim maps.
//
// Each callback runs as one critical section. Update is all-or-nothing: if
// fn returns an error, none of its writes become visible.
type Store interface {
	// View runs fn against a read-only snapshot.
	View(fn func(tx Tx) error) error

	// Update runs fn in a read-write transaction and commits on success.
	Update(fn func(tx Tx) error) error

	// Close releases the underlying resources.
	Close() error
}

// Tx is the access surface available inside a Store transaction.
// Missing map entries read as zero.
type Tx interface {
	// Initialized reports whether a vault record exists.
	Initialized() (bool, error)

	// Vault returns a copy of the vault record, or ErrNotInitialized.
	Vault() (*Vault, error)

	// PutVault writes the vault record.
	PutVault(v *Vault) error

	// Deposit returns the cumulative amount deposited by p.
	Deposit(p Principal) (math.Int, error)

	// SetDeposit overwrites the cumulative deposit of p.
	SetDeposit(p Principal, amount math.Int) error

	// Claimed returns the claim watermark of p.
	Claimed(p Principal) (math.Int, error)

	// SetClaimed overwrites the claim watermark of p.
	SetClaimed(p Principal, amount math.Int) error

	// ForEachDeposit calls fn for every recorded depositor.
	ForEachDeposit(fn func(p Principal, amount math.Int) error) error

	// ForEachClaimed calls fn for every principal with a claim watermark.
	ForEachClaimed(fn func(p Principal, amount math.Int) error) error
}

// memState is the in-memory image of the store.
type memState struct {
	vault    *Vault
	deposits map[Principal]math.Int
	claimed  map[Principal]math.Int
}

func newMemState() *memState {
	return &memState{
		deposits: make(map[Principal]math.Int),
		claimed:  make(map[Principal]math.Int),
	}
}

func (s *memState) clone() *memState {
	c := &memState{
		vault:    s.vault.Clone(),
		deposits: make(map[Principal]math.Int, len(s.deposits)),
		claimed:  make(map[Principal]math.Int, len(s.claimed)),
	}
	for k, v := range s.deposits {
		c.deposits[k] = v
	}
	for k, v := range s.claimed {
		c.claimed[k] = v
	}
	return c
}

// MemStore is an in-memory Store. Updates run on a private copy of the
// state that replaces the live one only when the callback succeeds.
type MemStore struct {
	mu    sync.RWMutex
	state *memState
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{state: newMemState()}
}

// View runs fn against the current state.
func (s *MemStore) View(fn func(tx Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&memTx{st: s.state, readOnly: true})
}

// Update runs fn against a copy and swaps it in on success.
func (s *MemStore) Update(fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(&memTx{st: next}); err != nil {
		return err
	}
	s.state = next
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemStore) Close() error { return nil }

type memTx struct {
	st       *memState
	readOnly bool
}

func (t *memTx) writable() error {
	if t.readOnly {
		return ErrReadOnly
	}
	return nil
}

func (t *memTx) Initialized() (bool, error) { return t.st.vault != nil, nil }

func (t *memTx) Vault() (*Vault, error) {
	if t.st.vault == nil {
		return nil, ErrNotInitialized
	}
	return t.st.vault.Clone(), nil
}

func (t *memTx) PutVault(v *Vault) error {
	if err := t.writable(); err != nil {
		return err
	}
	if v == nil {
		return fmt.Errorf("%w: vault record", ErrNilParam)
	}
	t.st.vault = v.Clone()
	return nil
}

func (t *memTx) Deposit(p Principal) (math.Int, error) {
	return lookup(t.st.deposits, p), nil
}

func (t *memTx) SetDeposit(p Principal, amount math.Int) error {
	if err := t.writable(); err != nil {
		return err
	}
	if p == "" {
		return ErrEmptyPrincipal
	}
	t.st.deposits[p] = amount
	return nil
}

func (t *memTx) Claimed(p Principal) (math.Int, error) {
	return lookup(t.st.claimed, p), nil
}

func (t *memTx) SetClaimed(p Principal, amount math.Int) error {
	if err := t.writable(); err != nil {
		return err
	}
	if p == "" {
		return ErrEmptyPrincipal
	}
	t.st.claimed[p] = amount
	return nil
}

func (t *memTx) ForEachDeposit(fn func(p Principal, amount math.Int) error) error {
	return forEach(t.st.deposits, fn)
}

func (t *memTx) ForEachClaimed(fn func(p Principal, amount math.Int) error) error {
	return forEach(t.st.claimed, fn)
}

func lookup(m map[Principal]math.Int, p Principal) math.Int {
	v, ok := m[p]
	if !ok {
		return math.ZeroInt()
	}
	return orZero(v)
}

func forEach(m map[Principal]math.Int, fn func(p Principal, amount math.Int) error) error {
	for p, v := range m {
		if err := fn(p, orZero(v)); err != nil {
			return err
		}
	}
	return nil
}
