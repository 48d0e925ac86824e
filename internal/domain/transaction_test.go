package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCashTx(t *testing.T, dir CashDirection) *Transaction {
	t.Helper()
	tx, err := NewTransaction(uuid.New(), CashDetails{Direction: dir}, MustMoney("500", "USD"), time.Now())
	require.NoError(t, err)
	return tx
}

func TestNewTransaction_Defaults(t *testing.T) {
	tx := newCashTx(t, CashIn)
	assert.Equal(t, StatusPending, tx.Status)
	assert.Equal(t, 1, tx.Version)
	assert.False(t, tx.Hidden)
	assert.Equal(t, CategoryCashDeposit, tx.Category())
	assert.NotEqual(t, uuid.Nil, tx.CorrelationID)
}

func TestTransaction_LegalLifecycle(t *testing.T) {
	now := time.Now()
	tx := newCashTx(t, CashIn)

	require.NoError(t, tx.Activate(now))
	assert.Equal(t, StatusActive, tx.Status)
	assert.Equal(t, 2, tx.Version)

	require.NoError(t, tx.MarkCompleted(now.Add(time.Second)))
	assert.Equal(t, StatusCompleted, tx.Status)
	assert.True(t, tx.IsTerminal())
}

func TestTransaction_TerminalStatesRejectFurtherEdges(t *testing.T) {
	now := time.Now()
	for _, terminal := range []func(tx *Transaction) error{
		func(tx *Transaction) error { return tx.MarkCompleted(now) },
		func(tx *Transaction) error { return tx.Cancel(now) },
		func(tx *Transaction) error { return tx.Void(uuid.New(), now) },
	} {
		tx := newCashTx(t, CashIn)
		require.NoError(t, terminal(tx))
		assert.ErrorIs(t, tx.Void(uuid.New(), now.Add(time.Second)), ErrIllegalStateTransition)
		assert.ErrorIs(t, tx.MarkCompleted(now.Add(time.Second)), ErrIllegalStateTransition)
		assert.ErrorIs(t, tx.Cancel(now.Add(time.Second)), ErrIllegalStateTransition)
	}
}

func TestTransaction_ReversedOnlyFromActive(t *testing.T) {
	now := time.Now()

	tx := newCashTx(t, CashIn)
	assert.ErrorIs(t, tx.MarkReversed(uuid.New(), now), ErrIllegalStateTransition)

	require.NoError(t, tx.Activate(now))
	require.NoError(t, tx.MarkReversed(uuid.New(), now.Add(time.Second)))
	assert.Equal(t, StatusReversed, tx.Status)
	assert.True(t, tx.Hidden)
	require.NotNil(t, tx.ReversalTransactionID)
}

func TestTransaction_MonotonicUpdatedAt(t *testing.T) {
	now := time.Now()
	tx := newCashTx(t, CashOut)
	require.NoError(t, tx.Activate(now))

	err := tx.MarkCompleted(now.Add(-time.Minute))
	assert.ErrorIs(t, err, ErrInvalidOperation)
	assert.Equal(t, StatusActive, tx.Status, "failed transition must not change state")
}

func TestTransaction_VoidLinksReversal(t *testing.T) {
	tx := newCashTx(t, CashIn)
	revID := uuid.New()
	require.NoError(t, tx.Void(revID, time.Now()))
	assert.Equal(t, StatusVoided, tx.Status)
	require.NotNil(t, tx.ReversalTransactionID)
	assert.Equal(t, revID, *tx.ReversalTransactionID)
}

func TestTransaction_EnsureVersion(t *testing.T) {
	tx := newCashTx(t, CashIn)
	require.NoError(t, tx.EnsureVersion(1))
	assert.ErrorIs(t, tx.EnsureVersion(7), ErrConflict)
}
