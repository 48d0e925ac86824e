package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoidTransaction_PurchaseRoundTrip(t *testing.T) {
	now := time.Now()
	h := newTestHolding(t)

	// Snapshot pre-purchase state, then buy 10 @ $120.
	preQty, preAvg, preTotal := h.TotalQuantity, h.AverageCostBasis, h.TotalCostBasis
	_, err := h.Increase(MustQuantity("10"), MustMoney("120", "USD"), now)
	require.NoError(t, err)

	original, err := NewTransaction(h.PortfolioID, PurchaseDetails{
		HoldingID:       h.ID,
		AssetIdentifier: h.AssetIdentifier,
		Quantity:        MustQuantity("10"),
		PricePerUnit:    MustMoney("120", "USD"),
	}, MustMoney("1200", "USD"), now)
	require.NoError(t, err)

	reversal, err := VoidTransaction(original, h, nil, "fat-finger order", now.Add(time.Second))
	require.NoError(t, err)

	// Ledger state restored exactly.
	assert.True(t, h.TotalQuantity.Equal(preQty))
	assert.True(t, h.AverageCostBasis.Equal(preAvg))
	assert.True(t, h.TotalCostBasis.Equal(preTotal))

	// Original voided and linked, reversal carries the negated amount.
	assert.Equal(t, StatusVoided, original.Status)
	require.NotNil(t, original.ReversalTransactionID)
	assert.Equal(t, reversal.ID, *original.ReversalTransactionID)
	require.NotNil(t, reversal.ParentTransactionID)
	assert.Equal(t, original.ID, *reversal.ParentTransactionID)
	assert.Equal(t, original.CorrelationID, reversal.CorrelationID)
	assert.True(t, reversal.NetAmount.Equal(MustMoney("-1200", "USD")))

	det, ok := reversal.Details.(ReversalDetails)
	require.True(t, ok)
	assert.Equal(t, CategoryPurchase, det.OriginalCategory)
	assert.Equal(t, "fat-finger order", det.Reason)
}

func TestVoidTransaction_SaleRoundTrip(t *testing.T) {
	now := time.Now()
	h := newTestHolding(t)
	_, err := h.Increase(MustQuantity("10"), MustMoney("120", "USD"), now)
	require.NoError(t, err)

	preQty, preAvg, preTotal := h.TotalQuantity, h.AverageCostBasis, h.TotalCostBasis

	realized, _, err := h.Decrease(MustQuantity("5"), MustMoney("150", "USD"), now)
	require.NoError(t, err)

	original, err := NewTransaction(h.PortfolioID, SaleDetails{
		HoldingID:        h.ID,
		AssetIdentifier:  h.AssetIdentifier,
		Quantity:         MustQuantity("5"),
		PricePerUnit:     MustMoney("150", "USD"),
		SoldCostBasis:    MustMoney("550", "USD"),
		RealizedGainLoss: realized,
	}, MustMoney("750", "USD"), now)
	require.NoError(t, err)

	_, err = VoidTransaction(original, h, nil, "wrong ticker", now.Add(time.Second))
	require.NoError(t, err)

	assert.True(t, h.TotalQuantity.Equal(preQty))
	assert.True(t, h.AverageCostBasis.Equal(preAvg))
	assert.True(t, h.TotalCostBasis.Equal(preTotal))
}

func TestVoidTransaction_CashNeedsNoLedger(t *testing.T) {
	now := time.Now()
	deposit := newCashTx(t, CashIn)

	reversal, err := VoidTransaction(deposit, nil, nil, "duplicate entry", now.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, reversal.NetAmount.Equal(MustMoney("-500", "USD")), "voided deposit acts as a withdrawal")

	withdrawal := newCashTx(t, CashOut)
	reversal, err = VoidTransaction(withdrawal, nil, nil, "duplicate entry", now.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, reversal.NetAmount.Equal(MustMoney("-500", "USD")))
	assert.Equal(t, CategoryCashWithdrawal, reversal.Details.(ReversalDetails).OriginalCategory)
}

func TestVoidTransaction_LiabilityPaymentRestoresBalance(t *testing.T) {
	now := time.Now()
	l, _, err := NewLiability(uuid.New(), "mortgage", MustMoney("250000", "USD"), MustPercentage("0.049"), now)
	require.NoError(t, err)

	_, err = l.ApplyPayment(MustMoney("1500", "USD"), now)
	require.NoError(t, err)
	assert.True(t, l.CurrentBalance.Equal(MustMoney("248500", "USD")))

	original, err := NewTransaction(l.PortfolioID, LiabilityPaymentDetails{
		LiabilityID: l.ID,
		Amount:      MustMoney("1500", "USD"),
	}, MustMoney("1500", "USD"), now)
	require.NoError(t, err)

	reversal, err := VoidTransaction(original, nil, l, "paid wrong account", now.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, l.CurrentBalance.Equal(MustMoney("250000", "USD")))
	assert.True(t, reversal.NetAmount.Equal(MustMoney("-1500", "USD")))
}

func TestVoidTransaction_MissingAggregateIsInvalidState(t *testing.T) {
	now := time.Now()

	purchase, err := NewTransaction(uuid.New(), PurchaseDetails{
		HoldingID:    uuid.New(),
		Quantity:     MustQuantity("1"),
		PricePerUnit: MustMoney("10", "USD"),
	}, MustMoney("10", "USD"), now)
	require.NoError(t, err)

	_, err = VoidTransaction(purchase, nil, nil, "cleanup", now)
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, StatusPending, purchase.Status, "failed compensation must not void the original")

	payment, err := NewTransaction(uuid.New(), LiabilityPaymentDetails{
		LiabilityID: uuid.New(),
		Amount:      MustMoney("10", "USD"),
	}, MustMoney("10", "USD"), now)
	require.NoError(t, err)

	_, err = VoidTransaction(payment, nil, nil, "cleanup", now)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestVoidTransaction_TerminalStatusesRejected(t *testing.T) {
	now := time.Now()
	h := newTestHolding(t)

	for _, setup := range []func(tx *Transaction) error{
		func(tx *Transaction) error { return tx.MarkCompleted(now) },
		func(tx *Transaction) error { return tx.Cancel(now) },
		func(tx *Transaction) error { return tx.Void(uuid.New(), now) },
	} {
		tx, err := NewTransaction(h.PortfolioID, PurchaseDetails{
			HoldingID:    h.ID,
			Quantity:     MustQuantity("1"),
			PricePerUnit: MustMoney("100", "USD"),
		}, MustMoney("100", "USD"), now)
		require.NoError(t, err)
		require.NoError(t, setup(tx))

		versionBefore := h.Version
		_, err = VoidTransaction(tx, h, nil, "too late", now.Add(time.Second))
		assert.ErrorIs(t, err, ErrIllegalStateTransition)
		assert.Equal(t, versionBefore, h.Version, "no ledger mutation on rejected void")
	}
}

func TestVoidTransaction_RequiresReason(t *testing.T) {
	tx := newCashTx(t, CashIn)
	_, err := VoidTransaction(tx, nil, nil, "", time.Now())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestVoidTransaction_UnvoidableCategory(t *testing.T) {
	now := time.Now()
	h := newTestHolding(t)
	tx, err := NewTransaction(h.PortfolioID, SplitDetails{
		HoldingID: h.ID,
		Ratio:     MustQuantity("2").Value(),
	}, ZeroMoney("USD"), now)
	require.NoError(t, err)

	_, err = VoidTransaction(tx, h, nil, "not reversible", now)
	assert.ErrorIs(t, err, ErrInvalidOperation)
}

func TestReverseTransaction_HidesOriginal(t *testing.T) {
	now := time.Now()
	h := newTestHolding(t)
	_, err := h.Increase(MustQuantity("2"), MustMoney("100", "USD"), now)
	require.NoError(t, err)

	original, err := NewTransaction(h.PortfolioID, PurchaseDetails{
		HoldingID:    h.ID,
		Quantity:     MustQuantity("2"),
		PricePerUnit: MustMoney("100", "USD"),
	}, MustMoney("200", "USD"), now)
	require.NoError(t, err)
	require.NoError(t, original.Activate(now))

	reversal, err := ReverseTransaction(original, h, nil, "broker correction", now.Add(time.Second))
	require.NoError(t, err)
	assert.Equal(t, StatusReversed, original.Status)
	assert.True(t, original.Hidden)
	assert.Equal(t, reversal.ID, *original.ReversalTransactionID)
	assert.True(t, h.TotalQuantity.Equal(MustQuantity("10")))

	// PENDING transactions cannot take the REVERSED edge.
	pending := newCashTx(t, CashIn)
	_, err = ReverseTransaction(pending, nil, nil, "broker correction", now)
	assert.ErrorIs(t, err, ErrIllegalStateTransition)
}

func TestVoidTransaction_TimestampMustNotRegress(t *testing.T) {
	now := time.Now()
	tx := newCashTx(t, CashIn)
	_, err := VoidTransaction(tx, nil, nil, "late entry", now.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidOperation)
}
