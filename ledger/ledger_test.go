package ledger

import (
	"context"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitfsorg/poolvault-go/accounting"
)

func amt(v int64) math.Int { return math.NewInt(v) }

func TestAssetLedger_MintTransfer(t *testing.T) {
	l := NewAssetLedger()
	require.NoError(t, l.Mint("alice", amt(100)))
	require.NoError(t, l.Transfer("alice", "bob", amt(40)))

	assert.Equal(t, "60", l.Balance("alice").String())
	assert.Equal(t, "40", l.Balance("bob").String())
	assert.Equal(t, "0", l.Balance("carol").String())

	err := l.Transfer("bob", "alice", amt(41))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, "40", l.Balance("bob").String(), "failed transfer leaves balances untouched")
}

func TestAssetLedger_SelfTransfer(t *testing.T) {
	l := NewAssetLedger()
	require.NoError(t, l.Mint("alice", amt(5)))
	require.NoError(t, l.Transfer("alice", "alice", amt(5)))
	assert.Equal(t, "5", l.Balance("alice").String())
}

func TestAssetLedger_TransferFrom(t *testing.T) {
	l := NewAssetLedger()
	require.NoError(t, l.Mint("alice", amt(100)))

	err := l.TransferFrom("vault", "alice", "vault", amt(10))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	require.NoError(t, l.Approve("alice", "vault", amt(30)))
	require.NoError(t, l.TransferFrom("vault", "alice", "vault", amt(20)))
	assert.Equal(t, "10", l.Allowance("alice", "vault").String())
	assert.Equal(t, "80", l.Balance("alice").String())
	assert.Equal(t, "20", l.Balance("vault").String())

	require.NoError(t, l.Approve("alice", "vault", amt(1000)))
	err = l.TransferFrom("vault", "alice", "vault", amt(500))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, "1000", l.Allowance("alice", "vault").String(), "allowance kept on failure")
}

func TestAssetLedger_InvalidArgs(t *testing.T) {
	l := NewAssetLedger()
	assert.ErrorIs(t, l.Mint("alice", amt(-1)), ErrInvalidAmount)
	assert.ErrorIs(t, l.Mint("", amt(1)), ErrEmptyAccount)
	assert.ErrorIs(t, l.Mint("alice", math.Int{}), ErrInvalidAmount)

	require.NoError(t, l.Mint("alice", accounting.MaxAmount()))
	assert.ErrorIs(t, l.Mint("alice", amt(1)), ErrInvalidAmount)
}

func TestMover(t *testing.T) {
	l := NewAssetLedger()
	require.NoError(t, l.Mint("alice", amt(10)))
	m := Mover{Ledger: l}
	require.NoError(t, m.MoveAsset(context.Background(), "alice", "vault", amt(10)))
	assert.Equal(t, "10", l.Balance("vault").String())
	assert.ErrorIs(t, m.MoveAsset(context.Background(), "alice", "vault", amt(1)), ErrInsufficientBalance)
}

func TestShareLedger(t *testing.T) {
	l := NewShareLedger()
	m := Minter{Ledger: l}
	require.NoError(t, m.MintShares(context.Background(), "alice", amt(300)))
	require.NoError(t, l.Mint("bob", amt(200)))
	assert.Equal(t, "500", l.TotalSupply().String())

	require.NoError(t, l.Burn("alice", amt(100)))
	assert.Equal(t, "200", l.BalanceOf("alice").String())
	assert.Equal(t, "400", l.TotalSupply().String())

	assert.ErrorIs(t, l.Burn("bob", amt(201)), ErrInsufficientBalance)
	assert.Equal(t, "0", l.BalanceOf("carol").String())
}
