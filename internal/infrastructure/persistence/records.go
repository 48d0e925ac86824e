package persistence

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HoldingRecord is the persisted shape of a position holding. Monetary
// columns keep the amount and currency side by side; quantities and amounts
// are stored as exact decimals, never floats.
type HoldingRecord struct {
	ID                uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	PortfolioID       uuid.UUID       `gorm:"column:portfolio_id;type:uuid;not null;index:idx_holdings_portfolio_asset,unique" json:"portfolio_id"`
	AssetIdentifier   string          `gorm:"column:asset_identifier;type:varchar(120);not null;index:idx_holdings_portfolio_asset,unique" json:"asset_identifier"`
	TotalQuantity     decimal.Decimal `gorm:"column:total_quantity;type:decimal(30,10);not null" json:"total_quantity"`
	AverageCostBasis  decimal.Decimal `gorm:"column:average_cost_basis;type:decimal(30,10);not null" json:"average_cost_basis"`
	TotalCostBasis    decimal.Decimal `gorm:"column:total_cost_basis;type:decimal(30,10);not null" json:"total_cost_basis"`
	Currency          string          `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	LastTransactionAt time.Time       `gorm:"column:last_transaction_at;not null" json:"last_transaction_at"`
	Version           int             `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (HoldingRecord) TableName() string {
	return "holdings"
}

func (h *HoldingRecord) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// TransactionRecord is the persisted shape of a transaction. The
// category-specific payload travels in a JSON envelope; see EncodeDetails.
type TransactionRecord struct {
	ID                    uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	PortfolioID           uuid.UUID       `gorm:"column:portfolio_id;type:uuid;not null;index" json:"portfolio_id"`
	CorrelationID         uuid.UUID       `gorm:"column:correlation_id;type:uuid;not null;index" json:"correlation_id"`
	ParentTransactionID   *uuid.UUID      `gorm:"column:parent_transaction_id;type:uuid" json:"parent_transaction_id"`
	ReversalTransactionID *uuid.UUID      `gorm:"column:reversal_transaction_id;type:uuid" json:"reversal_transaction_id"`
	Category              string          `gorm:"column:category;type:varchar(40);not null;index" json:"category"`
	Details               datatypes.JSON  `gorm:"column:details;type:jsonb;not null" json:"details"`
	NetAmount             decimal.Decimal `gorm:"column:net_amount;type:decimal(30,10);not null" json:"net_amount"`
	Currency              string          `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	Status                string          `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	Hidden                bool            `gorm:"column:hidden;not null;default:false" json:"hidden"`
	Version               int             `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
	DeletedAt             gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (TransactionRecord) TableName() string {
	return "transactions"
}

func (t *TransactionRecord) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// LiabilityRecord is the persisted shape of a liability.
type LiabilityRecord struct {
	ID                      uuid.UUID       `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	PortfolioID             uuid.UUID       `gorm:"column:portfolio_id;type:uuid;not null;index" json:"portfolio_id"`
	Name                    string          `gorm:"column:name;type:varchar(160);not null" json:"name"`
	CurrentBalance          decimal.Decimal `gorm:"column:current_balance;type:decimal(30,10);not null" json:"current_balance"`
	Currency                string          `gorm:"column:currency;type:varchar(8);not null" json:"currency"`
	AnnualInterestRate      decimal.Decimal `gorm:"column:annual_interest_rate;type:decimal(12,6);not null" json:"annual_interest_rate"`
	LastInterestAccrualDate time.Time       `gorm:"column:last_interest_accrual_date;not null" json:"last_interest_accrual_date"`
	Version                 int             `gorm:"column:version;not null;default:1" json:"version"`
	CreatedAt               time.Time       `json:"createdAt"`
	UpdatedAt               time.Time       `json:"updatedAt"`
	DeletedAt               gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (LiabilityRecord) TableName() string {
	return "liabilities"
}

func (l *LiabilityRecord) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
