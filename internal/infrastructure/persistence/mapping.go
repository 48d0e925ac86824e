package persistence

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"folio-backend/internal/domain"
)

// EncodeDetails serializes a category-specific payload into the JSON column.
// The category lives in its own column, so the envelope holds only the
// payload fields.
func EncodeDetails(details domain.TransactionDetails) (datatypes.JSON, error) {
	raw, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("encode %s details: %w", details.Category(), err)
	}
	return datatypes.JSON(raw), nil
}

func decodeAs[T domain.TransactionDetails](raw datatypes.JSON, category string) (domain.TransactionDetails, error) {
	var d T
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode %s details: %w", category, err)
	}
	return d, nil
}

// DecodeDetails rebuilds the concrete payload from the stored category and
// JSON column. An unknown category is a data defect, not a caller error.
func DecodeDetails(category string, raw datatypes.JSON) (domain.TransactionDetails, error) {
	switch domain.TransactionCategory(category) {
	case domain.CategoryPurchase:
		return decodeAs[domain.PurchaseDetails](raw, category)
	case domain.CategorySale:
		return decodeAs[domain.SaleDetails](raw, category)
	case domain.CategoryDividendReinvestment:
		return decodeAs[domain.DividendReinvestmentDetails](raw, category)
	case domain.CategoryReturnOfCapital:
		return decodeAs[domain.ReturnOfCapitalDetails](raw, category)
	case domain.CategorySplit:
		return decodeAs[domain.SplitDetails](raw, category)
	case domain.CategoryCashDeposit, domain.CategoryCashWithdrawal:
		return decodeAs[domain.CashDetails](raw, category)
	case domain.CategoryLiabilityPayment:
		return decodeAs[domain.LiabilityPaymentDetails](raw, category)
	case domain.CategoryLiabilityDraw:
		return decodeAs[domain.LiabilityDrawDetails](raw, category)
	case domain.CategoryInterestAccrual:
		return decodeAs[domain.InterestAccrualDetails](raw, category)
	case domain.CategoryReversal:
		return decodeAs[domain.ReversalDetails](raw, category)
	default:
		return nil, fmt.Errorf("%w: unknown transaction category %q", domain.ErrInvalidState, category)
	}
}

// HoldingFromDomain flattens a holding aggregate into its record.
func HoldingFromDomain(h *domain.PositionHolding) *HoldingRecord {
	return &HoldingRecord{
		ID:                h.ID,
		PortfolioID:       h.PortfolioID,
		AssetIdentifier:   h.AssetIdentifier,
		TotalQuantity:     h.TotalQuantity.Value(),
		AverageCostBasis:  h.AverageCostBasis.Amount(),
		TotalCostBasis:    h.TotalCostBasis.Amount(),
		Currency:          h.Currency(),
		LastTransactionAt: h.LastTransactionAt,
		Version:           h.Version,
		CreatedAt:         h.CreatedAt,
		UpdatedAt:         h.UpdatedAt,
	}
}

// ToDomain rehydrates the holding aggregate.
func (r *HoldingRecord) ToDomain() (*domain.PositionHolding, error) {
	avg, err := domain.NewMoney(r.AverageCostBasis, r.Currency)
	if err != nil {
		return nil, fmt.Errorf("holding %s: %w", r.ID, err)
	}
	total, err := domain.NewMoney(r.TotalCostBasis, r.Currency)
	if err != nil {
		return nil, fmt.Errorf("holding %s: %w", r.ID, err)
	}
	return domain.ReconstituteHolding(
		r.ID, r.PortfolioID, r.AssetIdentifier,
		domain.NewQuantity(r.TotalQuantity),
		avg, total,
		r.LastTransactionAt, r.Version,
		r.CreatedAt, r.UpdatedAt,
	), nil
}

// TransactionFromDomain flattens a transaction into its record.
func TransactionFromDomain(t *domain.Transaction) (*TransactionRecord, error) {
	details, err := EncodeDetails(t.Details)
	if err != nil {
		return nil, err
	}
	return &TransactionRecord{
		ID:                    t.ID,
		PortfolioID:           t.PortfolioID,
		CorrelationID:         t.CorrelationID,
		ParentTransactionID:   t.ParentTransactionID,
		ReversalTransactionID: t.ReversalTransactionID,
		Category:              string(t.Category()),
		Details:               details,
		NetAmount:             t.NetAmount.Amount(),
		Currency:              t.NetAmount.Currency(),
		Status:                string(t.Status),
		Hidden:                t.Hidden,
		Version:               t.Version,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
	}, nil
}

// ToDomain rehydrates the transaction aggregate.
func (r *TransactionRecord) ToDomain() (*domain.Transaction, error) {
	details, err := DecodeDetails(r.Category, r.Details)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", r.ID, err)
	}
	net, err := domain.NewMoney(r.NetAmount, r.Currency)
	if err != nil {
		return nil, fmt.Errorf("transaction %s: %w", r.ID, err)
	}
	return domain.ReconstituteTransaction(
		r.ID, r.PortfolioID, r.CorrelationID,
		r.ParentTransactionID, r.ReversalTransactionID,
		details, net,
		domain.TransactionStatus(r.Status), r.Hidden,
		r.Version, r.CreatedAt, r.UpdatedAt,
	), nil
}

// LiabilityFromDomain flattens a liability into its record.
func LiabilityFromDomain(l *domain.Liability) *LiabilityRecord {
	return &LiabilityRecord{
		ID:                      l.ID,
		PortfolioID:             l.PortfolioID,
		Name:                    l.Name,
		CurrentBalance:          l.CurrentBalance.Amount(),
		Currency:                l.Currency(),
		AnnualInterestRate:      l.AnnualInterestRate.Ratio(),
		LastInterestAccrualDate: l.LastInterestAccrualDate,
		Version:                 l.Version,
		CreatedAt:               l.CreatedAt,
		UpdatedAt:               l.UpdatedAt,
	}
}

// ToDomain rehydrates the liability aggregate.
func (r *LiabilityRecord) ToDomain() (*domain.Liability, error) {
	balance, err := domain.NewMoney(r.CurrentBalance, r.Currency)
	if err != nil {
		return nil, fmt.Errorf("liability %s: %w", r.ID, err)
	}
	return domain.ReconstituteLiability(
		r.ID, r.PortfolioID, r.Name,
		balance, domain.NewPercentage(r.AnnualInterestRate),
		r.LastInterestAccrualDate, r.Version,
		r.CreatedAt, r.UpdatedAt,
	), nil
}
