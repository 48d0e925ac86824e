package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var daysPerYear = decimal.NewFromInt(365)

// LiabilityEventKind labels what a liability mutation did.
type LiabilityEventKind string

const (
	LiabilityIncurred        LiabilityEventKind = "LIABILITY_INCURRED"
	LiabilityPaymentApplied  LiabilityEventKind = "LIABILITY_PAYMENT_APPLIED"
	LiabilityPaymentReversed LiabilityEventKind = "LIABILITY_PAYMENT_REVERSED"
	LiabilityBalanceIncreased LiabilityEventKind = "LIABILITY_BALANCE_INCREASED"
	LiabilityInterestAccrued LiabilityEventKind = "LIABILITY_INTEREST_ACCRUED"
)

// LiabilityEvent is returned by every liability mutator.
type LiabilityEvent struct {
	Kind        LiabilityEventKind
	LiabilityID uuid.UUID
	PortfolioID uuid.UUID
	Amount      Money
	OccurredAt  time.Time
}

// Liability tracks an outstanding balance with simple daily interest.
type Liability struct {
	ID                      uuid.UUID
	PortfolioID             uuid.UUID
	Name                    string
	CurrentBalance          Money
	AnnualInterestRate      Percentage
	LastInterestAccrualDate time.Time
	CreatedAt               time.Time
	UpdatedAt               time.Time
	Version                 int
}

// NewLiability records a newly incurred liability.
func NewLiability(portfolioID uuid.UUID, name string, initialBalance Money, annualRate Percentage, at time.Time) (*Liability, LiabilityEvent, error) {
	if portfolioID == uuid.Nil {
		return nil, LiabilityEvent{}, fmt.Errorf("%w: portfolio id is required", ErrValidation)
	}
	if name == "" {
		return nil, LiabilityEvent{}, fmt.Errorf("%w: liability name is required", ErrValidation)
	}
	if !initialBalance.IsPositive() {
		return nil, LiabilityEvent{}, fmt.Errorf("%w: initial balance must be positive", ErrValidation)
	}
	if err := requireNonNegativeRate(annualRate, "annual interest rate"); err != nil {
		return nil, LiabilityEvent{}, err
	}

	l := &Liability{
		ID:                      uuid.New(),
		PortfolioID:             portfolioID,
		Name:                    name,
		CurrentBalance:          initialBalance,
		AnnualInterestRate:      annualRate,
		LastInterestAccrualDate: at,
		CreatedAt:               at,
		UpdatedAt:               at,
		Version:                 1,
	}
	return l, LiabilityEvent{
		Kind:        LiabilityIncurred,
		LiabilityID: l.ID,
		PortfolioID: portfolioID,
		Amount:      initialBalance,
		OccurredAt:  at,
	}, nil
}

// ReconstituteLiability rebuilds a liability from persisted fields.
func ReconstituteLiability(
	id, portfolioID uuid.UUID,
	name string,
	balance Money,
	annualRate Percentage,
	lastAccrual time.Time,
	version int,
	createdAt, updatedAt time.Time,
) *Liability {
	return &Liability{
		ID:                      id,
		PortfolioID:             portfolioID,
		Name:                    name,
		CurrentBalance:          balance,
		AnnualInterestRate:      annualRate,
		LastInterestAccrualDate: lastAccrual,
		CreatedAt:               createdAt,
		UpdatedAt:               updatedAt,
		Version:                 version,
	}
}

func (l *Liability) Currency() string { return l.CurrentBalance.Currency() }

// EnsureVersion is the optimistic-concurrency guard.
func (l *Liability) EnsureVersion(expected int) error {
	if expected != l.Version {
		return fmt.Errorf("%w: liability %s at version %d, caller expected %d", ErrConflict, l.ID, l.Version, expected)
	}
	return nil
}

func (l *Liability) touch(at time.Time) {
	l.UpdatedAt = at
	l.Version++
}

func (l *Liability) checkCurrency(m Money) error {
	if m.Currency() != l.Currency() {
		return fmt.Errorf("%w: liability is %s, got %s", ErrCurrencyMismatch, l.Currency(), m.Currency())
	}
	return nil
}

// AccruedInterest computes interest owed since the last accrual date without
// mutating state: balance x (annual rate / 365) x whole days elapsed.
func (l *Liability) AccruedInterest(now time.Time) (Money, int64) {
	days := int64(now.Sub(l.LastInterestAccrualDate).Hours() / 24)
	if days <= 0 {
		return ZeroMoney(l.Currency()), 0
	}
	dailyRate := l.AnnualInterestRate.Ratio().Div(daysPerYear)
	accrued := l.CurrentBalance.Amount().Mul(dailyRate).Mul(decimal.NewFromInt(days))
	m, _ := NewMoney(accrued, l.Currency())
	return m, days
}

// AccrueInterest capitalizes accrued interest into the balance and advances
// the accrual date to now. A zero-day span is a no-op returning zero.
func (l *Liability) AccrueInterest(now time.Time) (Money, int64, LiabilityEvent, error) {
	accrued, days := l.AccruedInterest(now)
	if days <= 0 {
		return accrued, 0, LiabilityEvent{}, nil
	}
	newBalance, err := l.CurrentBalance.Add(accrued)
	if err != nil {
		return Money{}, 0, LiabilityEvent{}, err
	}
	l.CurrentBalance = newBalance
	l.LastInterestAccrualDate = now
	l.touch(now)

	return accrued, days, LiabilityEvent{
		Kind:        LiabilityInterestAccrued,
		LiabilityID: l.ID,
		PortfolioID: l.PortfolioID,
		Amount:      accrued,
		OccurredAt:  now,
	}, nil
}

// ApplyPayment reduces the balance. Overpayment is rejected: a payment above
// the current balance fails ErrInsufficientHolding and changes nothing.
func (l *Liability) ApplyPayment(amount Money, at time.Time) (LiabilityEvent, error) {
	if !amount.IsPositive() {
		return LiabilityEvent{}, fmt.Errorf("%w: payment amount must be positive", ErrValidation)
	}
	if err := l.checkCurrency(amount); err != nil {
		return LiabilityEvent{}, err
	}
	over, err := amount.GreaterThan(l.CurrentBalance)
	if err != nil {
		return LiabilityEvent{}, err
	}
	if over {
		return LiabilityEvent{}, fmt.Errorf("%w: payment %s exceeds balance %s", ErrInsufficientHolding, amount, l.CurrentBalance)
	}

	newBalance, err := l.CurrentBalance.Sub(amount)
	if err != nil {
		return LiabilityEvent{}, err
	}
	l.CurrentBalance = newBalance
	l.touch(at)

	return LiabilityEvent{
		Kind:        LiabilityPaymentApplied,
		LiabilityID: l.ID,
		PortfolioID: l.PortfolioID,
		Amount:      amount,
		OccurredAt:  at,
	}, nil
}

// ReversePaymentEffect restores the balance by a previously paid amount.
func (l *Liability) ReversePaymentEffect(amount Money, at time.Time) (LiabilityEvent, error) {
	if !amount.IsPositive() {
		return LiabilityEvent{}, fmt.Errorf("%w: reverse amount must be positive", ErrValidation)
	}
	if err := l.checkCurrency(amount); err != nil {
		return LiabilityEvent{}, err
	}
	newBalance, err := l.CurrentBalance.Add(amount)
	if err != nil {
		return LiabilityEvent{}, err
	}
	l.CurrentBalance = newBalance
	l.touch(at)

	return LiabilityEvent{
		Kind:        LiabilityPaymentReversed,
		LiabilityID: l.ID,
		PortfolioID: l.PortfolioID,
		Amount:      amount,
		OccurredAt:  at,
	}, nil
}

// IncreaseBalance records a new draw against the liability.
func (l *Liability) IncreaseBalance(amount Money, at time.Time) (LiabilityEvent, error) {
	if !amount.IsPositive() {
		return LiabilityEvent{}, fmt.Errorf("%w: draw amount must be positive", ErrValidation)
	}
	if err := l.checkCurrency(amount); err != nil {
		return LiabilityEvent{}, err
	}
	newBalance, err := l.CurrentBalance.Add(amount)
	if err != nil {
		return LiabilityEvent{}, err
	}
	l.CurrentBalance = newBalance
	l.touch(at)

	return LiabilityEvent{
		Kind:        LiabilityBalanceIncreased,
		LiabilityID: l.ID,
		PortfolioID: l.PortfolioID,
		Amount:      amount,
		OccurredAt:  at,
	}, nil
}
