package accounting

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cosmossdk.io/math"
	"go.etcd.io/bbolt"
)

var (
	bucketVault    = []byte("vault")
	bucketDeposits = []byte("deposits")
	bucketClaimed  = []byte("claimed")

	keyRecord = []byte("record")
)

// vaultRecord is the gob image of Vault. Amounts are stored as base-10
// strings because math.Int has no gob encoding.
type vaultRecord struct {
	Admin           string
	Borrower        string
	AssetToken      string
	ShareToken      string
	Cap             string
	Dates           []uint64
	Amounts         []string
	FundingDuration uint64
	FundingStart    uint64
	Raised          string
	Repaid          string
	State           uint8
}

// BoltStore is a Store persisted in a bbolt database.
type BoltStore struct {
	db *bbolt.DB
}

// Compile-time interface check.
var _ Store = (*BoltStore)(nil)

// OpenBoltStore opens or creates the bbolt database at dbPath.
// The parent directory is created if it does not exist.
func OpenBoltStore(dbPath string) (*BoltStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("accounting: create directory: %w", err)
	}
	db, err := bbolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("accounting: open bolt db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketVault, bucketDeposits, bucketClaimed} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %q: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("accounting: create buckets: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error { return s.db.Close() }

// View runs fn inside a bbolt read transaction.
func (s *BoltStore) View(fn func(tx Tx) error) error {
	return s.db.View(func(tx *bbolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

// Update runs fn inside a bbolt write transaction; bbolt rolls back
// every write when fn returns an error.
func (s *BoltStore) Update(fn func(tx Tx) error) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return fn(&boltTx{tx: tx})
	})
}

type boltTx struct {
	tx *bbolt.Tx
}

func (t *boltTx) Initialized() (bool, error) {
	return t.tx.Bucket(bucketVault).Get(keyRecord) != nil, nil
}

func (t *boltTx) Vault() (*Vault, error) {
	data := t.tx.Bucket(bucketVault).Get(keyRecord)
	if data == nil {
		return nil, ErrNotInitialized
	}
	var rec vaultRecord
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
		return nil, fmt.Errorf("boltstore: decode vault: %w", err)
	}
	return rec.toVault()
}

func (t *boltTx) PutVault(v *Vault) error {
	if v == nil {
		return fmt.Errorf("%w: vault record", ErrNilParam)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(newVaultRecord(v)); err != nil {
		return fmt.Errorf("boltstore: encode vault: %w", err)
	}
	if err := t.tx.Bucket(bucketVault).Put(keyRecord, buf.Bytes()); err != nil {
		return t.wrapWrite("put vault", err)
	}
	return nil
}

func (t *boltTx) Deposit(p Principal) (math.Int, error) {
	return t.getAmount(bucketDeposits, p)
}

func (t *boltTx) SetDeposit(p Principal, amount math.Int) error {
	return t.putAmount(bucketDeposits, p, amount)
}

func (t *boltTx) Claimed(p Principal) (math.Int, error) {
	return t.getAmount(bucketClaimed, p)
}

func (t *boltTx) SetClaimed(p Principal, amount math.Int) error {
	return t.putAmount(bucketClaimed, p, amount)
}

func (t *boltTx) ForEachDeposit(fn func(p Principal, amount math.Int) error) error {
	return t.forEach(bucketDeposits, fn)
}

func (t *boltTx) ForEachClaimed(fn func(p Principal, amount math.Int) error) error {
	return t.forEach(bucketClaimed, fn)
}

func (t *boltTx) getAmount(bucket []byte, p Principal) (math.Int, error) {
	data := t.tx.Bucket(bucket).Get([]byte(p))
	if data == nil {
		return math.ZeroInt(), nil
	}
	v, ok := math.NewIntFromString(string(data))
	if !ok {
		return math.Int{}, fmt.Errorf("boltstore: decode %s[%s]: %w", bucket, p, ErrInvalidAmount)
	}
	return v, nil
}

func (t *boltTx) putAmount(bucket []byte, p Principal, amount math.Int) error {
	if p == "" {
		return ErrEmptyPrincipal
	}
	if err := t.tx.Bucket(bucket).Put([]byte(p), []byte(orZero(amount).String())); err != nil {
		return t.wrapWrite(fmt.Sprintf("put %s", bucket), err)
	}
	return nil
}

func (t *boltTx) forEach(bucket []byte, fn func(p Principal, amount math.Int) error) error {
	return t.tx.Bucket(bucket).ForEach(func(k, v []byte) error {
		amt, ok := math.NewIntFromString(string(v))
		if !ok {
			return fmt.Errorf("boltstore: decode %s[%s]: %w", bucket, k, ErrInvalidAmount)
		}
		return fn(Principal(k), amt)
	})
}

func (t *boltTx) wrapWrite(op string, err error) error {
	if errors.Is(err, bbolt.ErrTxNotWritable) {
		return fmt.Errorf("%w: %s", ErrReadOnly, op)
	}
	return fmt.Errorf("boltstore: %s: %w", op, err)
}

func newVaultRecord(v *Vault) vaultRecord {
	rec := vaultRecord{
		Admin:           string(v.Admin),
		Borrower:        string(v.Borrower),
		AssetToken:      v.AssetToken,
		ShareToken:      v.ShareToken,
		Cap:             orZero(v.Cap).String(),
		Dates:           v.Schedule.Dates(),
		Amounts:         make([]string, len(v.Schedule)),
		FundingDuration: v.FundingDuration,
		FundingStart:    v.FundingStart,
		Raised:          orZero(v.Raised).String(),
		Repaid:          orZero(v.Repaid).String(),
		State:           uint8(v.State),
	}
	for i, in := range v.Schedule {
		rec.Amounts[i] = orZero(in.Amount).String()
	}
	return rec
}

func (rec vaultRecord) toVault() (*Vault, error) {
	parse := func(field, s string) (math.Int, error) {
		v, ok := math.NewIntFromString(s)
		if !ok {
			return math.Int{}, fmt.Errorf("boltstore: decode vault %s: %w", field, ErrInvalidAmount)
		}
		return v, nil
	}

	capAmt, err := parse("cap", rec.Cap)
	if err != nil {
		return nil, err
	}
	raised, err := parse("raised", rec.Raised)
	if err != nil {
		return nil, err
	}
	repaid, err := parse("repaid", rec.Repaid)
	if err != nil {
		return nil, err
	}
	amounts := make([]math.Int, len(rec.Amounts))
	for i, s := range rec.Amounts {
		if amounts[i], err = parse("installment", s); err != nil {
			return nil, err
		}
	}
	schedule, err := NewSchedule(rec.Dates, amounts)
	if err != nil {
		return nil, fmt.Errorf("boltstore: decode vault schedule: %w", err)
	}
	state := State(rec.State)
	if !state.Valid() {
		return nil, fmt.Errorf("boltstore: decode vault: %w: %d", ErrInvalidState, rec.State)
	}

	return &Vault{
		Admin:           Principal(rec.Admin),
		Borrower:        Principal(rec.Borrower),
		AssetToken:      rec.AssetToken,
		ShareToken:      rec.ShareToken,
		Cap:             capAmt,
		Schedule:        schedule,
		FundingDuration: rec.FundingDuration,
		FundingStart:    rec.FundingStart,
		Raised:          raised,
		Repaid:          repaid,
		State:           state,
	}, nil
}
