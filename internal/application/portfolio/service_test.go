package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"folio-backend/internal/domain"
	"folio-backend/internal/infrastructure/persistence"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&persistence.HoldingRecord{},
		&persistence.TransactionRecord{},
		&persistence.LiabilityRecord{},
	))
	return &Service{DB: db}
}

func TestRecordPurchase_OpensThenGrows(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	portfolioID := uuid.New()
	now := time.Now().UTC()

	tr, holding, err := svc.RecordPurchase(ctx, portfolioID, "NASDAQ:AAPL",
		domain.MustQuantity("10"), domain.MustMoney("100", "USD"), now)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusActive, tr.Status)
	assert.True(t, tr.NetAmount.Equal(domain.MustMoney("1000", "USD")))
	assert.True(t, holding.TotalQuantity.Equal(domain.MustQuantity("10")))

	_, holding, err = svc.RecordPurchase(ctx, portfolioID, "NASDAQ:AAPL",
		domain.MustQuantity("10"), domain.MustMoney("120", "USD"), now.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, holding.TotalQuantity.Equal(domain.MustQuantity("20")))
	assert.True(t, holding.AverageCostBasis.Equal(domain.MustMoney("110", "USD")))
	assert.True(t, holding.TotalCostBasis.Equal(domain.MustMoney("2200", "USD")))

	// Persisted state matches the returned aggregate.
	stored, err := svc.GetHolding(ctx, portfolioID, "NASDAQ:AAPL")
	require.NoError(t, err)
	assert.True(t, stored.AverageCostBasis.Equal(domain.MustMoney("110", "USD")))
	assert.Equal(t, holding.Version, stored.Version)
}

func TestRecordSale_RealizesGain(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	portfolioID := uuid.New()
	now := time.Now().UTC()

	_, _, err := svc.RecordPurchase(ctx, portfolioID, "NASDAQ:AAPL",
		domain.MustQuantity("20"), domain.MustMoney("110", "USD"), now)
	require.NoError(t, err)

	tr, holding, err := svc.RecordSale(ctx, portfolioID, "NASDAQ:AAPL",
		domain.MustQuantity("5"), domain.MustMoney("150", "USD"), now.Add(time.Second))
	require.NoError(t, err)

	details := tr.Details.(domain.SaleDetails)
	assert.True(t, details.RealizedGainLoss.Equal(domain.MustMoney("200", "USD")))
	assert.True(t, details.SoldCostBasis.Equal(domain.MustMoney("550", "USD")))
	assert.True(t, holding.TotalQuantity.Equal(domain.MustQuantity("15")))
	assert.True(t, holding.AverageCostBasis.Equal(domain.MustMoney("110", "USD")))
}

func TestRecordSale_InsufficientLeavesNothingWritten(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	portfolioID := uuid.New()
	now := time.Now().UTC()

	_, _, err := svc.RecordPurchase(ctx, portfolioID, "NASDAQ:AAPL",
		domain.MustQuantity("5"), domain.MustMoney("100", "USD"), now)
	require.NoError(t, err)

	_, _, err = svc.RecordSale(ctx, portfolioID, "NASDAQ:AAPL",
		domain.MustQuantity("6"), domain.MustMoney("150", "USD"), now.Add(time.Second))
	assert.ErrorIs(t, err, domain.ErrInsufficientHolding)

	txs, err := svc.ListTransactions(ctx, portfolioID, false)
	require.NoError(t, err)
	require.Len(t, txs, 1, "only the purchase exists")
	assert.Equal(t, domain.CategoryPurchase, txs[0].Category())
}

func TestRecordSale_UnknownHolding(t *testing.T) {
	svc := setupService(t)
	_, _, err := svc.RecordSale(context.Background(), uuid.New(), "NASDAQ:AAPL",
		domain.MustQuantity("1"), domain.MustMoney("100", "USD"), time.Now())
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestRecordSplitAndDividendReinvestment(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	portfolioID := uuid.New()
	now := time.Now().UTC()

	_, _, err := svc.RecordPurchase(ctx, portfolioID, "NYSE:KO",
		domain.MustQuantity("100"), domain.MustMoney("60", "USD"), now)
	require.NoError(t, err)

	_, holding, err := svc.RecordDividendReinvestment(ctx, portfolioID, "NYSE:KO",
		domain.MustQuantity("2"), domain.MustMoney("61", "USD"), now.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, holding.TotalQuantity.Equal(domain.MustQuantity("102")))

	_, holding, err = svc.RecordSplit(ctx, portfolioID, "NYSE:KO",
		decimal.NewFromInt(2), now.Add(2*time.Second))
	require.NoError(t, err)
	assert.True(t, holding.TotalQuantity.Equal(domain.MustQuantity("204")))
	assert.True(t, holding.TotalCostBasis.Equal(domain.MustMoney("6122", "USD")))
}

func TestPreviewCapitalGain_DoesNotMutate(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	portfolioID := uuid.New()
	now := time.Now().UTC()

	_, _, err := svc.RecordPurchase(ctx, portfolioID, "NASDAQ:AAPL",
		domain.MustQuantity("10"), domain.MustMoney("100", "USD"), now)
	require.NoError(t, err)

	gain, err := svc.PreviewCapitalGain(ctx, portfolioID, "NASDAQ:AAPL",
		domain.MustQuantity("4"), domain.MustMoney("130", "USD"))
	require.NoError(t, err)
	assert.True(t, gain.Equal(domain.MustMoney("120", "USD")))

	holding, err := svc.GetHolding(ctx, portfolioID, "NASDAQ:AAPL")
	require.NoError(t, err)
	assert.True(t, holding.TotalQuantity.Equal(domain.MustQuantity("10")))
	assert.Equal(t, 1, holding.Version)
}

func TestVoidTransaction_PurchaseRestoresLedger(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	portfolioID := uuid.New()
	now := time.Now().UTC()

	_, _, err := svc.RecordPurchase(ctx, portfolioID, "NASDAQ:AAPL",
		domain.MustQuantity("10"), domain.MustMoney("100", "USD"), now)
	require.NoError(t, err)

	bad, _, err := svc.RecordPurchase(ctx, portfolioID, "NASDAQ:AAPL",
		domain.MustQuantity("10"), domain.MustMoney("120", "USD"), now.Add(time.Second))
	require.NoError(t, err)

	reversal, err := svc.VoidTransaction(ctx, bad.ID, "fat-finger order", now.Add(2*time.Second))
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryReversal, reversal.Category())
	assert.True(t, reversal.NetAmount.Equal(domain.MustMoney("-1200", "USD")))

	holding, err := svc.GetHolding(ctx, portfolioID, "NASDAQ:AAPL")
	require.NoError(t, err)
	assert.True(t, holding.TotalQuantity.Equal(domain.MustQuantity("10")))
	assert.True(t, holding.AverageCostBasis.Equal(domain.MustMoney("100", "USD")))
	assert.True(t, holding.TotalCostBasis.Equal(domain.MustMoney("1000", "USD")))

	original, err := svc.GetTransaction(ctx, bad.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVoided, original.Status)
	require.NotNil(t, original.ReversalTransactionID)
	assert.Equal(t, reversal.ID, *original.ReversalTransactionID)

	// Voiding twice fails: the original is terminal now.
	_, err = svc.VoidTransaction(ctx, bad.ID, "again", now.Add(3*time.Second))
	assert.ErrorIs(t, err, domain.ErrIllegalStateTransition)
}

func TestReverseTransaction_HidesOriginalInListing(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	portfolioID := uuid.New()
	now := time.Now().UTC()

	_, _, err := svc.RecordPurchase(ctx, portfolioID, "NASDAQ:AAPL",
		domain.MustQuantity("10"), domain.MustMoney("100", "USD"), now)
	require.NoError(t, err)

	sale, _, err := svc.RecordSale(ctx, portfolioID, "NASDAQ:AAPL",
		domain.MustQuantity("5"), domain.MustMoney("150", "USD"), now.Add(time.Second))
	require.NoError(t, err)

	_, err = svc.ReverseTransaction(ctx, sale.ID, "broker correction", now.Add(2*time.Second))
	require.NoError(t, err)

	holding, err := svc.GetHolding(ctx, portfolioID, "NASDAQ:AAPL")
	require.NoError(t, err)
	assert.True(t, holding.TotalQuantity.Equal(domain.MustQuantity("10")))
	assert.True(t, holding.TotalCostBasis.Equal(domain.MustMoney("1000", "USD")))

	visible, err := svc.ListTransactions(ctx, portfolioID, false)
	require.NoError(t, err)
	for _, tx := range visible {
		assert.NotEqual(t, sale.ID, tx.ID, "reversed sale is hidden by default")
	}

	all, err := svc.ListTransactions(ctx, portfolioID, true)
	require.NoError(t, err)
	assert.Len(t, all, len(visible)+1)
}

func TestCashFlow_RecordAndVoid(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	portfolioID := uuid.New()
	now := time.Now().UTC()

	deposit, err := svc.RecordCashDeposit(ctx, portfolioID, domain.MustMoney("5000", "USD"), "initial funding", now)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryCashDeposit, deposit.Category())

	_, err = svc.RecordCashWithdrawal(ctx, portfolioID, domain.MustMoney("0", "USD"), "", now)
	assert.ErrorIs(t, err, domain.ErrValidation)

	reversal, err := svc.VoidTransaction(ctx, deposit.ID, "duplicate entry", now.Add(time.Second))
	require.NoError(t, err)
	assert.True(t, reversal.NetAmount.Equal(domain.MustMoney("-5000", "USD")))
}

func TestLiability_FullCycle(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	portfolioID := uuid.New()
	now := time.Now().UTC()

	liability, draw, err := svc.CreateLiability(ctx, portfolioID, "margin loan",
		domain.MustMoney("10000", "USD"), domain.MustPercentage("0.05"), now)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryLiabilityDraw, draw.Category())

	// 73 days at 5% on 10000 accrues exactly 100.
	accrualTx, liability, err := svc.AccrueLiabilityInterest(ctx, liability.ID, now.Add(73*24*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, accrualTx)
	assert.True(t, liability.CurrentBalance.Equal(domain.MustMoney("10100", "USD")))
	assert.Equal(t, int64(73), accrualTx.Details.(domain.InterestAccrualDetails).Days)

	// A second accrual the same day writes nothing.
	accrualTx, _, err = svc.AccrueLiabilityInterest(ctx, liability.ID, now.Add(73*24*time.Hour))
	require.NoError(t, err)
	assert.Nil(t, accrualTx)

	payment, liability, err := svc.RecordLiabilityPayment(ctx, liability.ID,
		domain.MustMoney("100", "USD"), now.Add(74*24*time.Hour))
	require.NoError(t, err)
	assert.True(t, liability.CurrentBalance.Equal(domain.MustMoney("10000", "USD")))

	_, _, err = svc.RecordLiabilityPayment(ctx, liability.ID,
		domain.MustMoney("20000", "USD"), now.Add(75*24*time.Hour))
	assert.ErrorIs(t, err, domain.ErrInsufficientHolding)

	_, liability, err = svc.IncreaseLiabilityBalance(ctx, liability.ID,
		domain.MustMoney("500", "USD"), now.Add(75*24*time.Hour))
	require.NoError(t, err)
	assert.True(t, liability.CurrentBalance.Equal(domain.MustMoney("10500", "USD")))

	reversal, err := svc.VoidTransaction(ctx, payment.ID, "wrong account", now.Add(76*24*time.Hour))
	require.NoError(t, err)
	assert.True(t, reversal.NetAmount.Equal(domain.MustMoney("-100", "USD")))

	liability, err = svc.GetLiability(ctx, liability.ID)
	require.NoError(t, err)
	assert.True(t, liability.CurrentBalance.Equal(domain.MustMoney("10600", "USD")))

	liabilities, err := svc.ListLiabilities(ctx, portfolioID)
	require.NoError(t, err)
	assert.Len(t, liabilities, 1)
}

func TestOptimisticVersionGuard(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	portfolioID := uuid.New()
	now := time.Now().UTC()

	_, holding, err := svc.RecordPurchase(ctx, portfolioID, "NASDAQ:AAPL",
		domain.MustQuantity("10"), domain.MustMoney("100", "USD"), now)
	require.NoError(t, err)

	// Simulate a concurrent writer bumping the stored version.
	require.NoError(t, svc.DB.Model(&persistence.HoldingRecord{}).
		Where("id = ?", holding.ID).
		Update("version", holding.Version+5).Error)

	stale := domain.ReconstituteHolding(
		holding.ID, holding.PortfolioID, holding.AssetIdentifier,
		holding.TotalQuantity, holding.AverageCostBasis, holding.TotalCostBasis,
		holding.LastTransactionAt, holding.Version,
		holding.CreatedAt, holding.UpdatedAt,
	)
	_, err = stale.Increase(domain.MustQuantity("1"), domain.MustMoney("100", "USD"), now.Add(time.Second))
	require.NoError(t, err)

	err = saveHolding(svc.DB, stale, holding.Version)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestListHoldings(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()
	portfolioID := uuid.New()
	now := time.Now().UTC()

	for _, asset := range []string{"NYSE:KO", "NASDAQ:AAPL", "NASDAQ:MSFT"} {
		_, _, err := svc.RecordPurchase(ctx, portfolioID, asset,
			domain.MustQuantity("1"), domain.MustMoney("50", "USD"), now)
		require.NoError(t, err)
	}

	holdings, err := svc.ListHoldings(ctx, portfolioID)
	require.NoError(t, err)
	require.Len(t, holdings, 3)
	assert.Equal(t, "NASDAQ:AAPL", holdings[0].AssetIdentifier)

	other, err := svc.ListHoldings(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, other)
}
