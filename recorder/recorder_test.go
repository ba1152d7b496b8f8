package recorder

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	a := NewEvent(KindDeposit)
	b := NewEvent(KindDeposit)
	assert.Equal(t, KindDeposit, a.Kind)
	assert.NotEqual(t, a.ID, b.ID)
	id, err := uuid.Parse(a.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), id.Version())
	assert.False(t, a.Timestamp.IsZero())
}

func TestSQLiteRecorder_RecordAndRead(t *testing.T) {
	ctx := context.Background()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "journal", "events.db"), nil)
	require.NoError(t, err)
	defer r.Close()

	dep := NewEvent(KindDeposit)
	dep.Principal = "d1"
	dep.Amount = "500000"
	dep.State = "funding"
	dep.Raised = "500000"
	dep.Repaid = "0"
	require.NoError(t, r.Record(ctx, dep))

	rep := NewEvent(KindRepay)
	rep.Principal = "borrower"
	rep.Amount = "170141183460469231731687303715884105727"
	require.NoError(t, r.Record(ctx, rep))

	all, err := r.Events(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, dep.ID, all[0].ID)
	assert.Equal(t, KindDeposit, all[0].Kind)
	assert.Equal(t, "500000", all[0].Amount)
	assert.Equal(t, "funding", all[0].State)
	assert.Equal(t, dep.Timestamp.UnixNano(), all[0].Timestamp.UnixNano())

	repays, err := r.Events(ctx, KindRepay)
	require.NoError(t, err)
	require.Len(t, repays, 1)
	assert.Equal(t, "170141183460469231731687303715884105727", repays[0].Amount)
}

func TestSQLiteRecorder_DuplicateID(t *testing.T) {
	ctx := context.Background()
	r, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "events.db"), nil)
	require.NoError(t, err)
	defer r.Close()

	evt := NewEvent(KindClaim)
	require.NoError(t, r.Record(ctx, evt))
	assert.Error(t, r.Record(ctx, evt))
	assert.Error(t, r.Record(ctx, nil))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.Record(context.Background(), NewEvent(KindRepay)))
	assert.NoError(t, r.Close())
}
