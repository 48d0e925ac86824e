package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionCategory partitions transactions by economic meaning; the
// correction engine dispatches compensation on it.
type TransactionCategory string

const (
	CategoryPurchase             TransactionCategory = "PURCHASE"
	CategorySale                 TransactionCategory = "SALE"
	CategoryDividendReinvestment TransactionCategory = "DIVIDEND_REINVESTMENT"
	CategoryReturnOfCapital      TransactionCategory = "RETURN_OF_CAPITAL"
	CategorySplit                TransactionCategory = "SPLIT"
	CategoryCashDeposit          TransactionCategory = "CASH_DEPOSIT"
	CategoryCashWithdrawal       TransactionCategory = "CASH_WITHDRAWAL"
	CategoryLiabilityPayment     TransactionCategory = "LIABILITY_PAYMENT"
	CategoryLiabilityDraw        TransactionCategory = "LIABILITY_DRAW"
	CategoryInterestAccrual      TransactionCategory = "INTEREST_ACCRUAL"
	CategoryReversal             TransactionCategory = "REVERSAL"
)

// TransactionDetails is the category-specific payload of a transaction.
// One concrete type per category; the correction engine switches on the
// concrete type, so dispatch is exhaustive rather than reflective.
type TransactionDetails interface {
	Category() TransactionCategory
}

// PurchaseDetails records an asset purchase (position increase).
type PurchaseDetails struct {
	HoldingID       uuid.UUID `json:"holding_id"`
	AssetIdentifier string    `json:"asset_identifier"`
	Quantity        Quantity  `json:"quantity"`
	PricePerUnit    Money     `json:"price_per_unit"`
}

func (PurchaseDetails) Category() TransactionCategory { return CategoryPurchase }

// SaleDetails records an asset sale. SoldCostBasis is the basis removed from
// the holding at sale time; the reversal path restores exactly this amount.
type SaleDetails struct {
	HoldingID        uuid.UUID `json:"holding_id"`
	AssetIdentifier  string    `json:"asset_identifier"`
	Quantity         Quantity  `json:"quantity"`
	PricePerUnit     Money     `json:"price_per_unit"`
	SoldCostBasis    Money     `json:"sold_cost_basis"`
	RealizedGainLoss Money     `json:"realized_gain_loss"`
}

func (SaleDetails) Category() TransactionCategory { return CategorySale }

// DividendReinvestmentDetails records a distribution taken as new shares.
type DividendReinvestmentDetails struct {
	HoldingID       uuid.UUID `json:"holding_id"`
	AssetIdentifier string    `json:"asset_identifier"`
	SharesReceived  Quantity  `json:"shares_received"`
	PricePerShare   Money     `json:"price_per_share"`
}

func (DividendReinvestmentDetails) Category() TransactionCategory {
	return CategoryDividendReinvestment
}

// ReturnOfCapitalDetails records a basis-reducing distribution.
type ReturnOfCapitalDetails struct {
	HoldingID       uuid.UUID `json:"holding_id"`
	AssetIdentifier string    `json:"asset_identifier"`
	Amount          Money     `json:"amount"`
	ExcessGain      Money     `json:"excess_gain"`
}

func (ReturnOfCapitalDetails) Category() TransactionCategory { return CategoryReturnOfCapital }

// SplitDetails records a share split or consolidation.
type SplitDetails struct {
	HoldingID       uuid.UUID       `json:"holding_id"`
	AssetIdentifier string          `json:"asset_identifier"`
	Ratio           decimal.Decimal `json:"ratio"`
}

func (SplitDetails) Category() TransactionCategory { return CategorySplit }

// CashDirection distinguishes money entering from money leaving.
type CashDirection string

const (
	CashIn  CashDirection = "IN"
	CashOut CashDirection = "OUT"
)

// CashDetails records a portfolio-level deposit or withdrawal.
type CashDetails struct {
	Direction CashDirection `json:"direction"`
	Note      string        `json:"note,omitempty"`
}

func (d CashDetails) Category() TransactionCategory {
	if d.Direction == CashIn {
		return CategoryCashDeposit
	}
	return CategoryCashWithdrawal
}

// LiabilityPaymentDetails records a payment against a liability balance.
type LiabilityPaymentDetails struct {
	LiabilityID uuid.UUID `json:"liability_id"`
	Amount      Money     `json:"amount"`
}

func (LiabilityPaymentDetails) Category() TransactionCategory { return CategoryLiabilityPayment }

// LiabilityDrawDetails records a new draw increasing a liability balance.
type LiabilityDrawDetails struct {
	LiabilityID uuid.UUID `json:"liability_id"`
	Amount      Money     `json:"amount"`
}

func (LiabilityDrawDetails) Category() TransactionCategory { return CategoryLiabilityDraw }

// InterestAccrualDetails records interest added to a liability balance.
type InterestAccrualDetails struct {
	LiabilityID uuid.UUID `json:"liability_id"`
	Days        int64     `json:"days"`
	Accrued     Money     `json:"accrued"`
}

func (InterestAccrualDetails) Category() TransactionCategory { return CategoryInterestAccrual }

// ReversalDetails is the payload of a compensating transaction; it points
// back at what it undid and why.
type ReversalDetails struct {
	OriginalTransactionID uuid.UUID           `json:"original_transaction_id"`
	OriginalCategory      TransactionCategory `json:"original_category"`
	Reason                string              `json:"reason"`
}

func (ReversalDetails) Category() TransactionCategory { return CategoryReversal }
