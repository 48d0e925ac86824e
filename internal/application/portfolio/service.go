package portfolio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"folio-backend/internal/domain"
	"folio-backend/internal/infrastructure/persistence"
)

// Service owns the transactional use cases of the position ledger. Every
// mutation runs inside one database transaction, with optimistic version
// guards on the affected aggregates.
type Service struct {
	DB *gorm.DB
}

// RecordPurchase buys quantity units at pricePerUnit, opening the holding if
// this is the portfolio's first lot of the asset.
func (s *Service) RecordPurchase(ctx context.Context, portfolioID uuid.UUID, assetIdentifier string, quantity domain.Quantity, pricePerUnit domain.Money, at time.Time) (*domain.Transaction, *domain.PositionHolding, error) {
	var (
		holding *domain.PositionHolding
		tr      *domain.Transaction
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, loadedVersion, err := findHolding(tx, portfolioID, assetIdentifier)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if existing == nil {
			opened, _, err := domain.OpenPosition(portfolioID, assetIdentifier, quantity, pricePerUnit, at)
			if err != nil {
				return err
			}
			holding = opened
			if err := tx.Create(persistence.HoldingFromDomain(holding)).Error; err != nil {
				return err
			}
		} else {
			holding = existing
			if _, err := holding.Increase(quantity, pricePerUnit, at); err != nil {
				return err
			}
			if err := saveHolding(tx, holding, loadedVersion); err != nil {
				return err
			}
		}

		tr, err = recordLedgerTransaction(tx, portfolioID, domain.PurchaseDetails{
			HoldingID:       holding.ID,
			AssetIdentifier: assetIdentifier,
			Quantity:        quantity,
			PricePerUnit:    pricePerUnit,
		}, pricePerUnit.MulQuantity(quantity), at)
		return err
	})

	return tr, holding, err
}

// RecordSale sells quantity units at pricePerUnit and realizes the gain or
// loss against the weighted-average cost basis.
func (s *Service) RecordSale(ctx context.Context, portfolioID uuid.UUID, assetIdentifier string, quantity domain.Quantity, pricePerUnit domain.Money, at time.Time) (*domain.Transaction, *domain.PositionHolding, error) {
	var (
		holding *domain.PositionHolding
		tr      *domain.Transaction
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loadedVersion int
		var err error
		holding, loadedVersion, err = mustFindHolding(tx, portfolioID, assetIdentifier)
		if err != nil {
			return err
		}

		realized, ev, err := holding.Decrease(quantity, pricePerUnit, at)
		if err != nil {
			return err
		}
		if err := saveHolding(tx, holding, loadedVersion); err != nil {
			return err
		}

		tr, err = recordLedgerTransaction(tx, portfolioID, domain.SaleDetails{
			HoldingID:        holding.ID,
			AssetIdentifier:  assetIdentifier,
			Quantity:         quantity,
			PricePerUnit:     pricePerUnit,
			SoldCostBasis:    ev.SoldCostBasis,
			RealizedGainLoss: realized,
		}, pricePerUnit.MulQuantity(quantity), at)
		return err
	})

	return tr, holding, err
}

// RecordDividendReinvestment adds shares received from a reinvested
// distribution; cost-basis algebra matches a purchase at the reinvestment
// price.
func (s *Service) RecordDividendReinvestment(ctx context.Context, portfolioID uuid.UUID, assetIdentifier string, sharesReceived domain.Quantity, pricePerShare domain.Money, at time.Time) (*domain.Transaction, *domain.PositionHolding, error) {
	var (
		holding *domain.PositionHolding
		tr      *domain.Transaction
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loadedVersion int
		var err error
		holding, loadedVersion, err = mustFindHolding(tx, portfolioID, assetIdentifier)
		if err != nil {
			return err
		}

		if _, err := holding.ReinvestDividend(sharesReceived, pricePerShare, at); err != nil {
			return err
		}
		if err := saveHolding(tx, holding, loadedVersion); err != nil {
			return err
		}

		tr, err = recordLedgerTransaction(tx, portfolioID, domain.DividendReinvestmentDetails{
			HoldingID:       holding.ID,
			AssetIdentifier: assetIdentifier,
			SharesReceived:  sharesReceived,
			PricePerShare:   pricePerShare,
		}, pricePerShare.MulQuantity(sharesReceived), at)
		return err
	})

	return tr, holding, err
}

// RecordReturnOfCapital reduces the holding's cost basis by a distribution;
// any amount beyond the remaining basis is booked as an excess gain.
func (s *Service) RecordReturnOfCapital(ctx context.Context, portfolioID uuid.UUID, assetIdentifier string, amount domain.Money, at time.Time) (*domain.Transaction, *domain.PositionHolding, error) {
	var (
		holding *domain.PositionHolding
		tr      *domain.Transaction
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loadedVersion int
		var err error
		holding, loadedVersion, err = mustFindHolding(tx, portfolioID, assetIdentifier)
		if err != nil {
			return err
		}

		excess, _, err := holding.ReturnOfCapital(amount, at)
		if err != nil {
			return err
		}
		if err := saveHolding(tx, holding, loadedVersion); err != nil {
			return err
		}

		tr, err = recordLedgerTransaction(tx, portfolioID, domain.ReturnOfCapitalDetails{
			HoldingID:       holding.ID,
			AssetIdentifier: assetIdentifier,
			Amount:          amount,
			ExcessGain:      excess,
		}, amount, at)
		return err
	})

	return tr, holding, err
}

// RecordSplit applies a share split or consolidation to the holding.
func (s *Service) RecordSplit(ctx context.Context, portfolioID uuid.UUID, assetIdentifier string, ratio decimal.Decimal, at time.Time) (*domain.Transaction, *domain.PositionHolding, error) {
	var (
		holding *domain.PositionHolding
		tr      *domain.Transaction
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loadedVersion int
		var err error
		holding, loadedVersion, err = mustFindHolding(tx, portfolioID, assetIdentifier)
		if err != nil {
			return err
		}

		if _, err := holding.Split(ratio, at); err != nil {
			return err
		}
		if err := saveHolding(tx, holding, loadedVersion); err != nil {
			return err
		}

		tr, err = recordLedgerTransaction(tx, portfolioID, domain.SplitDetails{
			HoldingID:       holding.ID,
			AssetIdentifier: assetIdentifier,
			Ratio:           ratio,
		}, domain.ZeroMoney(holding.Currency()), at)
		return err
	})

	return tr, holding, err
}

// PreviewCapitalGain reports the gain a sale would realize without touching
// the ledger.
func (s *Service) PreviewCapitalGain(ctx context.Context, portfolioID uuid.UUID, assetIdentifier string, quantity domain.Quantity, pricePerUnit domain.Money) (domain.Money, error) {
	holding, _, err := mustFindHolding(s.DB.WithContext(ctx), portfolioID, assetIdentifier)
	if err != nil {
		return domain.Money{}, err
	}
	return holding.PreviewCapitalGain(quantity, pricePerUnit)
}

// RecordCashDeposit books money entering the portfolio.
func (s *Service) RecordCashDeposit(ctx context.Context, portfolioID uuid.UUID, amount domain.Money, note string, at time.Time) (*domain.Transaction, error) {
	return s.recordCash(ctx, portfolioID, domain.CashIn, amount, note, at)
}

// RecordCashWithdrawal books money leaving the portfolio.
func (s *Service) RecordCashWithdrawal(ctx context.Context, portfolioID uuid.UUID, amount domain.Money, note string, at time.Time) (*domain.Transaction, error) {
	return s.recordCash(ctx, portfolioID, domain.CashOut, amount, note, at)
}

func (s *Service) recordCash(ctx context.Context, portfolioID uuid.UUID, direction domain.CashDirection, amount domain.Money, note string, at time.Time) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: cash amount must be positive", domain.ErrValidation)
	}

	var tr *domain.Transaction
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		tr, err = recordLedgerTransaction(tx, portfolioID, domain.CashDetails{
			Direction: direction,
			Note:      note,
		}, amount, at)
		return err
	})
	return tr, err
}

// CreateLiability incurs a new liability with a starting balance and annual
// interest rate, booking the draw as a transaction.
func (s *Service) CreateLiability(ctx context.Context, portfolioID uuid.UUID, name string, initialBalance domain.Money, annualRate domain.Percentage, at time.Time) (*domain.Liability, *domain.Transaction, error) {
	var (
		liability *domain.Liability
		tr        *domain.Transaction
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		liability, _, err = domain.NewLiability(portfolioID, name, initialBalance, annualRate, at)
		if err != nil {
			return err
		}
		if err := tx.Create(persistence.LiabilityFromDomain(liability)).Error; err != nil {
			return err
		}

		tr, err = recordLedgerTransaction(tx, portfolioID, domain.LiabilityDrawDetails{
			LiabilityID: liability.ID,
			Amount:      initialBalance,
		}, initialBalance, at)
		return err
	})

	return liability, tr, err
}

// RecordLiabilityPayment pays down a liability balance. Overpayment is
// rejected and nothing is written.
func (s *Service) RecordLiabilityPayment(ctx context.Context, liabilityID uuid.UUID, amount domain.Money, at time.Time) (*domain.Transaction, *domain.Liability, error) {
	var (
		liability *domain.Liability
		tr        *domain.Transaction
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loadedVersion int
		var err error
		liability, loadedVersion, err = mustFindLiability(tx, liabilityID)
		if err != nil {
			return err
		}

		if _, err := liability.ApplyPayment(amount, at); err != nil {
			return err
		}
		if err := saveLiability(tx, liability, loadedVersion); err != nil {
			return err
		}

		tr, err = recordLedgerTransaction(tx, liability.PortfolioID, domain.LiabilityPaymentDetails{
			LiabilityID: liability.ID,
			Amount:      amount,
		}, amount, at)
		return err
	})

	return tr, liability, err
}

// IncreaseLiabilityBalance records a further draw against a liability.
func (s *Service) IncreaseLiabilityBalance(ctx context.Context, liabilityID uuid.UUID, amount domain.Money, at time.Time) (*domain.Transaction, *domain.Liability, error) {
	var (
		liability *domain.Liability
		tr        *domain.Transaction
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loadedVersion int
		var err error
		liability, loadedVersion, err = mustFindLiability(tx, liabilityID)
		if err != nil {
			return err
		}

		if _, err := liability.IncreaseBalance(amount, at); err != nil {
			return err
		}
		if err := saveLiability(tx, liability, loadedVersion); err != nil {
			return err
		}

		tr, err = recordLedgerTransaction(tx, liability.PortfolioID, domain.LiabilityDrawDetails{
			LiabilityID: liability.ID,
			Amount:      amount,
		}, amount, at)
		return err
	})

	return tr, liability, err
}

// AccrueLiabilityInterest capitalizes interest owed since the last accrual
// date. A span of less than one whole day writes nothing and returns nil.
func (s *Service) AccrueLiabilityInterest(ctx context.Context, liabilityID uuid.UUID, now time.Time) (*domain.Transaction, *domain.Liability, error) {
	var (
		liability *domain.Liability
		tr        *domain.Transaction
	)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var loadedVersion int
		var err error
		liability, loadedVersion, err = mustFindLiability(tx, liabilityID)
		if err != nil {
			return err
		}

		accrued, days, _, err := liability.AccrueInterest(now)
		if err != nil {
			return err
		}
		if days == 0 {
			return nil
		}
		if err := saveLiability(tx, liability, loadedVersion); err != nil {
			return err
		}

		tr, err = recordLedgerTransaction(tx, liability.PortfolioID, domain.InterestAccrualDetails{
			LiabilityID: liability.ID,
			Days:        days,
			Accrued:     accrued,
		}, accrued, now)
		return err
	})

	return tr, liability, err
}

// VoidTransaction undoes a PENDING or ACTIVE transaction: its ledger effect
// is inverted, the original is marked VOIDED, and a compensating REVERSAL
// transaction is written, all in one database transaction.
func (s *Service) VoidTransaction(ctx context.Context, transactionID uuid.UUID, reason string, now time.Time) (*domain.Transaction, error) {
	return s.compensate(ctx, transactionID, reason, now, domain.VoidTransaction)
}

// ReverseTransaction undoes an ACTIVE transaction, marking the original
// REVERSED and hiding it from default listings.
func (s *Service) ReverseTransaction(ctx context.Context, transactionID uuid.UUID, reason string, now time.Time) (*domain.Transaction, error) {
	return s.compensate(ctx, transactionID, reason, now, domain.ReverseTransaction)
}

type compensator func(original *domain.Transaction, holding *domain.PositionHolding, liability *domain.Liability, reason string, now time.Time) (*domain.Transaction, error)

func (s *Service) compensate(ctx context.Context, transactionID uuid.UUID, reason string, now time.Time, apply compensator) (*domain.Transaction, error) {
	var reversal *domain.Transaction

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		original, originalVersion, err := mustFindTransaction(tx, transactionID)
		if err != nil {
			return err
		}

		var (
			holding          *domain.PositionHolding
			holdingVersion   int
			liability        *domain.Liability
			liabilityVersion int
		)
		switch d := original.Details.(type) {
		case domain.PurchaseDetails:
			holding, holdingVersion, err = findHoldingByID(tx, d.HoldingID)
		case domain.SaleDetails:
			holding, holdingVersion, err = findHoldingByID(tx, d.HoldingID)
		case domain.LiabilityPaymentDetails:
			liability, liabilityVersion, err = mustFindLiability(tx, d.LiabilityID)
		}
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		reversal, err = apply(original, holding, liability, reason, now)
		if err != nil {
			return err
		}

		if holding != nil {
			if err := saveHolding(tx, holding, holdingVersion); err != nil {
				return err
			}
		}
		if liability != nil {
			if err := saveLiability(tx, liability, liabilityVersion); err != nil {
				return err
			}
		}

		rec, err := persistence.TransactionFromDomain(reversal)
		if err != nil {
			return err
		}
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return saveTransaction(tx, original, originalVersion)
	})

	return reversal, err
}

// GetHolding loads one holding by portfolio and asset.
func (s *Service) GetHolding(ctx context.Context, portfolioID uuid.UUID, assetIdentifier string) (*domain.PositionHolding, error) {
	holding, _, err := mustFindHolding(s.DB.WithContext(ctx), portfolioID, assetIdentifier)
	return holding, err
}

// ListHoldings returns every open holding in a portfolio.
func (s *Service) ListHoldings(ctx context.Context, portfolioID uuid.UUID) ([]*domain.PositionHolding, error) {
	var records []persistence.HoldingRecord
	if err := s.DB.WithContext(ctx).
		Where("portfolio_id = ?", portfolioID).
		Order("asset_identifier asc").
		Find(&records).Error; err != nil {
		return nil, err
	}

	holdings := make([]*domain.PositionHolding, 0, len(records))
	for i := range records {
		h, err := records[i].ToDomain()
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}
	return holdings, nil
}

// GetLiability loads one liability.
func (s *Service) GetLiability(ctx context.Context, liabilityID uuid.UUID) (*domain.Liability, error) {
	liability, _, err := mustFindLiability(s.DB.WithContext(ctx), liabilityID)
	return liability, err
}

// ListLiabilities returns every liability in a portfolio.
func (s *Service) ListLiabilities(ctx context.Context, portfolioID uuid.UUID) ([]*domain.Liability, error) {
	var records []persistence.LiabilityRecord
	if err := s.DB.WithContext(ctx).
		Where("portfolio_id = ?", portfolioID).
		Order("created_at asc").
		Find(&records).Error; err != nil {
		return nil, err
	}

	liabilities := make([]*domain.Liability, 0, len(records))
	for i := range records {
		l, err := records[i].ToDomain()
		if err != nil {
			return nil, err
		}
		liabilities = append(liabilities, l)
	}
	return liabilities, nil
}

// GetTransaction loads one transaction by ID.
func (s *Service) GetTransaction(ctx context.Context, transactionID uuid.UUID) (*domain.Transaction, error) {
	tr, _, err := mustFindTransaction(s.DB.WithContext(ctx), transactionID)
	return tr, err
}

// ListTransactions returns a portfolio's transactions newest first. Reversed
// originals are hidden unless includeHidden is set; their compensating
// reversal entries always appear.
func (s *Service) ListTransactions(ctx context.Context, portfolioID uuid.UUID, includeHidden bool) ([]*domain.Transaction, error) {
	q := s.DB.WithContext(ctx).Where("portfolio_id = ?", portfolioID)
	if !includeHidden {
		q = q.Where("hidden = ?", false)
	}

	var records []persistence.TransactionRecord
	if err := q.Order("created_at desc").Find(&records).Error; err != nil {
		return nil, err
	}

	transactions := make([]*domain.Transaction, 0, len(records))
	for i := range records {
		t, err := records[i].ToDomain()
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, t)
	}
	return transactions, nil
}

// recordLedgerTransaction writes a new transaction in ACTIVE status: settled
// into the ledger, still eligible for void or reversal.
func recordLedgerTransaction(tx *gorm.DB, portfolioID uuid.UUID, details domain.TransactionDetails, netAmount domain.Money, at time.Time) (*domain.Transaction, error) {
	tr, err := domain.NewTransaction(portfolioID, details, netAmount, at)
	if err != nil {
		return nil, err
	}
	if err := tr.Activate(at); err != nil {
		return nil, err
	}

	rec, err := persistence.TransactionFromDomain(tr)
	if err != nil {
		return nil, err
	}
	if err := tx.Create(rec).Error; err != nil {
		return nil, err
	}
	return tr, nil
}

func findHolding(tx *gorm.DB, portfolioID uuid.UUID, assetIdentifier string) (*domain.PositionHolding, int, error) {
	var rec persistence.HoldingRecord
	if err := tx.Where("portfolio_id = ? AND asset_identifier = ?", portfolioID, assetIdentifier).First(&rec).Error; err != nil {
		return nil, 0, err
	}
	h, err := rec.ToDomain()
	if err != nil {
		return nil, 0, err
	}
	return h, h.Version, nil
}

func mustFindHolding(tx *gorm.DB, portfolioID uuid.UUID, assetIdentifier string) (*domain.PositionHolding, int, error) {
	h, version, err := findHolding(tx, portfolioID, assetIdentifier)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, 0, fmt.Errorf("%w: no holding of %s in portfolio %s", domain.ErrInvalidState, assetIdentifier, portfolioID)
	}
	return h, version, err
}

func findHoldingByID(tx *gorm.DB, id uuid.UUID) (*domain.PositionHolding, int, error) {
	var rec persistence.HoldingRecord
	if err := tx.First(&rec, "id = ?", id).Error; err != nil {
		return nil, 0, err
	}
	h, err := rec.ToDomain()
	if err != nil {
		return nil, 0, err
	}
	return h, h.Version, nil
}

func mustFindLiability(tx *gorm.DB, id uuid.UUID) (*domain.Liability, int, error) {
	var rec persistence.LiabilityRecord
	if err := tx.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, fmt.Errorf("%w: liability %s not found", domain.ErrInvalidState, id)
		}
		return nil, 0, err
	}
	l, err := rec.ToDomain()
	if err != nil {
		return nil, 0, err
	}
	return l, l.Version, nil
}

func mustFindTransaction(tx *gorm.DB, id uuid.UUID) (*domain.Transaction, int, error) {
	var rec persistence.TransactionRecord
	if err := tx.First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, fmt.Errorf("%w: transaction %s not found", domain.ErrInvalidState, id)
		}
		return nil, 0, err
	}
	t, err := rec.ToDomain()
	if err != nil {
		return nil, 0, err
	}
	return t, t.Version, nil
}

// saveHolding writes the mutated aggregate back, guarded by the version it
// was loaded at. Zero rows affected means a concurrent writer won.
func saveHolding(tx *gorm.DB, h *domain.PositionHolding, loadedVersion int) error {
	res := tx.Model(&persistence.HoldingRecord{}).
		Where("id = ? AND version = ?", h.ID, loadedVersion).
		Updates(map[string]interface{}{
			"total_quantity":      h.TotalQuantity.Value(),
			"average_cost_basis":  h.AverageCostBasis.Amount(),
			"total_cost_basis":    h.TotalCostBasis.Amount(),
			"last_transaction_at": h.LastTransactionAt,
			"version":             h.Version,
			"updated_at":          h.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: holding %s was modified concurrently", domain.ErrConflict, h.ID)
	}
	return nil
}

func saveLiability(tx *gorm.DB, l *domain.Liability, loadedVersion int) error {
	res := tx.Model(&persistence.LiabilityRecord{}).
		Where("id = ? AND version = ?", l.ID, loadedVersion).
		Updates(map[string]interface{}{
			"current_balance":            l.CurrentBalance.Amount(),
			"annual_interest_rate":       l.AnnualInterestRate.Ratio(),
			"last_interest_accrual_date": l.LastInterestAccrualDate,
			"version":                    l.Version,
			"updated_at":                 l.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: liability %s was modified concurrently", domain.ErrConflict, l.ID)
	}
	return nil
}

func saveTransaction(tx *gorm.DB, t *domain.Transaction, loadedVersion int) error {
	res := tx.Model(&persistence.TransactionRecord{}).
		Where("id = ? AND version = ?", t.ID, loadedVersion).
		Updates(map[string]interface{}{
			"status":                  string(t.Status),
			"reversal_transaction_id": t.ReversalTransactionID,
			"hidden":                  t.Hidden,
			"version":                 t.Version,
			"updated_at":              t.UpdatedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: transaction %s was modified concurrently", domain.ErrConflict, t.ID)
	}
	return nil
}
