package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HoldingEventKind labels what a position mutation did.
type HoldingEventKind string

const (
	HoldingOpened      HoldingEventKind = "HOLDING_OPENED"
	HoldingIncreased   HoldingEventKind = "HOLDING_INCREASED"
	HoldingDecreased   HoldingEventKind = "HOLDING_DECREASED"
	DividendReinvested HoldingEventKind = "DIVIDEND_REINVESTED"
	CapitalReturned    HoldingEventKind = "CAPITAL_RETURNED"
	HoldingSplit       HoldingEventKind = "HOLDING_SPLIT"
	HoldingReversed    HoldingEventKind = "HOLDING_REVERSED"
)

// HoldingEvent is returned by every position mutator so callers can record
// the effect (the aggregate keeps no hidden uncommitted-event list).
type HoldingEvent struct {
	Kind             HoldingEventKind
	HoldingID        uuid.UUID
	PortfolioID      uuid.UUID
	Quantity         Quantity
	PricePerUnit     Money
	SoldCostBasis    Money
	RealizedGainLoss Money
	OccurredAt       time.Time
}

// PositionHolding tracks the running quantity and weighted-average cost basis
// for one asset within one portfolio. Invariants, maintained by every mutator:
// TotalQuantity >= 0; AverageCostBasis x TotalQuantity == TotalCostBasis
// within one rounding unit; both cost fields are exact zero when quantity is.
type PositionHolding struct {
	ID                uuid.UUID
	PortfolioID       uuid.UUID
	AssetIdentifier   string
	TotalQuantity     Quantity
	AverageCostBasis  Money
	TotalCostBasis    Money
	CreatedAt         time.Time
	LastTransactionAt time.Time
	UpdatedAt         time.Time
	Version           int
}

// OpenPosition creates a holding from a first purchase.
func OpenPosition(portfolioID uuid.UUID, assetIdentifier string, quantity Quantity, pricePerUnit Money, at time.Time) (*PositionHolding, HoldingEvent, error) {
	if portfolioID == uuid.Nil {
		return nil, HoldingEvent{}, fmt.Errorf("%w: portfolio id is required", ErrValidation)
	}
	if assetIdentifier == "" {
		return nil, HoldingEvent{}, fmt.Errorf("%w: asset identifier is required", ErrValidation)
	}
	if !quantity.IsPositive() {
		return nil, HoldingEvent{}, fmt.Errorf("%w: opening quantity must be positive", ErrValidation)
	}
	if pricePerUnit.IsNegative() {
		return nil, HoldingEvent{}, fmt.Errorf("%w: price per unit cannot be negative", ErrValidation)
	}

	h := &PositionHolding{
		ID:                uuid.New(),
		PortfolioID:       portfolioID,
		AssetIdentifier:   assetIdentifier,
		TotalQuantity:     quantity,
		AverageCostBasis:  pricePerUnit,
		TotalCostBasis:    pricePerUnit.MulQuantity(quantity),
		CreatedAt:         at,
		LastTransactionAt: at,
		UpdatedAt:         at,
		Version:           1,
	}
	return h, HoldingEvent{
		Kind:         HoldingOpened,
		HoldingID:    h.ID,
		PortfolioID:  portfolioID,
		Quantity:     quantity,
		PricePerUnit: pricePerUnit,
		OccurredAt:   at,
	}, nil
}

// ReconstituteHolding rebuilds a holding from persisted field values. The
// round-trip law: a reconstituted holding behaves identically to the one
// that was persisted.
func ReconstituteHolding(
	id, portfolioID uuid.UUID,
	assetIdentifier string,
	quantity Quantity,
	averageCostBasis, totalCostBasis Money,
	lastTransactionAt time.Time,
	version int,
	createdAt, updatedAt time.Time,
) *PositionHolding {
	return &PositionHolding{
		ID:                id,
		PortfolioID:       portfolioID,
		AssetIdentifier:   assetIdentifier,
		TotalQuantity:     quantity,
		AverageCostBasis:  averageCostBasis,
		TotalCostBasis:    totalCostBasis,
		CreatedAt:         createdAt,
		LastTransactionAt: lastTransactionAt,
		UpdatedAt:         updatedAt,
		Version:           version,
	}
}

// Currency is the holding's cost-basis currency.
func (h *PositionHolding) Currency() string { return h.TotalCostBasis.Currency() }

// IsEmpty reports a fully closed position.
func (h *PositionHolding) IsEmpty() bool { return h.TotalQuantity.IsZero() }

// EnsureVersion is the optimistic-concurrency guard: callers pass their
// last-known version; a mismatch is a conflict and nothing may be applied.
func (h *PositionHolding) EnsureVersion(expected int) error {
	if expected != h.Version {
		return fmt.Errorf("%w: holding %s at version %d, caller expected %d", ErrConflict, h.ID, h.Version, expected)
	}
	return nil
}

func (h *PositionHolding) touch(at time.Time) {
	h.LastTransactionAt = at
	h.UpdatedAt = at
	h.Version++
}

func (h *PositionHolding) checkCurrency(m Money) error {
	if m.Currency() != h.Currency() {
		return fmt.Errorf("%w: holding is %s, got %s", ErrCurrencyMismatch, h.Currency(), m.Currency())
	}
	return nil
}

// Increase records an additional purchase at the given per-unit price.
func (h *PositionHolding) Increase(quantity Quantity, pricePerUnit Money, at time.Time) (HoldingEvent, error) {
	return h.acquire(HoldingIncreased, quantity, pricePerUnit, at)
}

// ReinvestDividend treats reinvested distributions as acquiring new shares at
// the reinvestment price; the cost-basis algebra is identical to a purchase.
func (h *PositionHolding) ReinvestDividend(sharesReceived Quantity, pricePerShare Money, at time.Time) (HoldingEvent, error) {
	return h.acquire(DividendReinvested, sharesReceived, pricePerShare, at)
}

func (h *PositionHolding) acquire(kind HoldingEventKind, quantity Quantity, pricePerUnit Money, at time.Time) (HoldingEvent, error) {
	if err := requirePositiveQuantity(quantity); err != nil {
		return HoldingEvent{}, err
	}
	if err := h.checkCurrency(pricePerUnit); err != nil {
		return HoldingEvent{}, err
	}

	cost := pricePerUnit.MulQuantity(quantity)
	newTotalCost, err := h.TotalCostBasis.Add(cost)
	if err != nil {
		return HoldingEvent{}, err
	}
	newQuantity := h.TotalQuantity.Add(quantity)
	newAverage, err := newTotalCost.DivQuantity(newQuantity)
	if err != nil {
		return HoldingEvent{}, err
	}

	h.TotalQuantity = newQuantity
	h.TotalCostBasis = newTotalCost
	h.AverageCostBasis = newAverage
	h.touch(at)

	return HoldingEvent{
		Kind:         kind,
		HoldingID:    h.ID,
		PortfolioID:  h.PortfolioID,
		Quantity:     quantity,
		PricePerUnit: pricePerUnit,
		OccurredAt:   at,
	}, nil
}

// Decrease records a sale and returns the realized gain or loss. The average
// cost basis of the remaining shares is untouched: selling never changes the
// per-unit cost of what you still hold.
func (h *PositionHolding) Decrease(quantity Quantity, salePricePerUnit Money, at time.Time) (Money, HoldingEvent, error) {
	soldCostBasis, realized, err := h.sellEffect(quantity, salePricePerUnit)
	if err != nil {
		return Money{}, HoldingEvent{}, err
	}

	newTotalCost, err := h.TotalCostBasis.Sub(soldCostBasis)
	if err != nil {
		return Money{}, HoldingEvent{}, err
	}
	newQuantity := h.TotalQuantity.Sub(quantity)

	h.TotalQuantity = newQuantity
	h.TotalCostBasis = newTotalCost
	if newQuantity.IsZero() {
		// Force exact zero so residual rounding dust never survives a close-out.
		h.TotalCostBasis = ZeroMoney(h.Currency())
		h.AverageCostBasis = ZeroMoney(h.Currency())
	}
	h.touch(at)

	return realized, HoldingEvent{
		Kind:             HoldingDecreased,
		HoldingID:        h.ID,
		PortfolioID:      h.PortfolioID,
		Quantity:         quantity,
		PricePerUnit:     salePricePerUnit,
		SoldCostBasis:    soldCostBasis,
		RealizedGainLoss: realized,
		OccurredAt:       at,
	}, nil
}

// PreviewCapitalGain computes the gain a sale would realize without mutating
// the holding. It fails exactly the way Decrease would.
func (h *PositionHolding) PreviewCapitalGain(quantity Quantity, salePricePerUnit Money) (Money, error) {
	_, realized, err := h.sellEffect(quantity, salePricePerUnit)
	return realized, err
}

func (h *PositionHolding) sellEffect(quantity Quantity, salePricePerUnit Money) (soldCostBasis, realized Money, err error) {
	if err := requirePositiveQuantity(quantity); err != nil {
		return Money{}, Money{}, err
	}
	if err := h.checkCurrency(salePricePerUnit); err != nil {
		return Money{}, Money{}, err
	}
	if quantity.GreaterThan(h.TotalQuantity) {
		return Money{}, Money{}, fmt.Errorf("%w: cannot sell %s, only %s held", ErrInsufficientHolding, quantity, h.TotalQuantity)
	}

	soldCostBasis = h.AverageCostBasis.MulQuantity(quantity)
	proceeds := salePricePerUnit.MulQuantity(quantity)
	realized, err = proceeds.Sub(soldCostBasis)
	if err != nil {
		return Money{}, Money{}, err
	}
	return soldCostBasis, realized, nil
}

// ReturnOfCapital reduces the total cost basis by a distribution amount. If
// the distribution exceeds the remaining basis, the basis floors at zero and
// the excess is returned as a realized gain.
func (h *PositionHolding) ReturnOfCapital(amount Money, at time.Time) (Money, HoldingEvent, error) {
	if h.IsEmpty() {
		return Money{}, HoldingEvent{}, fmt.Errorf("%w: return of capital on empty position", ErrInvalidOperation)
	}
	if err := h.checkCurrency(amount); err != nil {
		return Money{}, HoldingEvent{}, err
	}
	if amount.IsNegative() {
		return Money{}, HoldingEvent{}, fmt.Errorf("%w: return of capital cannot be negative", ErrValidation)
	}

	newTotalCost, err := h.TotalCostBasis.Sub(amount)
	if err != nil {
		return Money{}, HoldingEvent{}, err
	}
	excessGain := ZeroMoney(h.Currency())
	if newTotalCost.IsNegative() {
		excessGain = newTotalCost.Negate()
		newTotalCost = ZeroMoney(h.Currency())
	}
	newAverage, err := newTotalCost.DivQuantity(h.TotalQuantity)
	if err != nil {
		return Money{}, HoldingEvent{}, err
	}

	h.TotalCostBasis = newTotalCost
	h.AverageCostBasis = newAverage
	h.touch(at)

	return excessGain, HoldingEvent{
		Kind:             CapitalReturned,
		HoldingID:        h.ID,
		PortfolioID:      h.PortfolioID,
		Quantity:         h.TotalQuantity,
		RealizedGainLoss: excessGain,
		OccurredAt:       at,
	}, nil
}

// Split multiplies the share count by the split ratio. Total cost basis is
// unchanged; only the per-unit average moves.
func (h *PositionHolding) Split(ratio decimal.Decimal, at time.Time) (HoldingEvent, error) {
	if !ratio.IsPositive() {
		return HoldingEvent{}, fmt.Errorf("%w: split ratio must be positive", ErrInvalidOperation)
	}
	if h.IsEmpty() {
		return HoldingEvent{}, fmt.Errorf("%w: split on empty position", ErrInvalidOperation)
	}

	newQuantity := h.TotalQuantity.MulRatio(ratio)
	newAverage, err := h.TotalCostBasis.DivQuantity(newQuantity)
	if err != nil {
		return HoldingEvent{}, err
	}

	h.TotalQuantity = newQuantity
	h.AverageCostBasis = newAverage
	h.touch(at)

	return HoldingEvent{
		Kind:         HoldingSplit,
		HoldingID:    h.ID,
		PortfolioID:  h.PortfolioID,
		Quantity:     newQuantity,
		PricePerUnit: newAverage,
		OccurredAt:   at,
	}, nil
}

// ReverseIncrease undoes a prior purchase: the exact quantity and cost that
// were added are removed, restoring the earlier average cost basis.
func (h *PositionHolding) ReverseIncrease(quantity Quantity, pricePerUnit Money, at time.Time) (HoldingEvent, error) {
	if err := requirePositiveQuantity(quantity); err != nil {
		return HoldingEvent{}, err
	}
	if err := h.checkCurrency(pricePerUnit); err != nil {
		return HoldingEvent{}, err
	}
	if quantity.GreaterThan(h.TotalQuantity) {
		return HoldingEvent{}, fmt.Errorf("%w: cannot reverse %s units, only %s held", ErrInsufficientHolding, quantity, h.TotalQuantity)
	}

	cost := pricePerUnit.MulQuantity(quantity)
	newTotalCost, err := h.TotalCostBasis.Sub(cost)
	if err != nil {
		return HoldingEvent{}, err
	}
	newQuantity := h.TotalQuantity.Sub(quantity)

	h.TotalQuantity = newQuantity
	h.TotalCostBasis = newTotalCost
	if newQuantity.IsZero() {
		h.TotalCostBasis = ZeroMoney(h.Currency())
		h.AverageCostBasis = ZeroMoney(h.Currency())
	} else {
		newAverage, err := newTotalCost.DivQuantity(newQuantity)
		if err != nil {
			return HoldingEvent{}, err
		}
		h.AverageCostBasis = newAverage
	}
	h.touch(at)

	return HoldingEvent{
		Kind:         HoldingReversed,
		HoldingID:    h.ID,
		PortfolioID:  h.PortfolioID,
		Quantity:     quantity,
		PricePerUnit: pricePerUnit,
		OccurredAt:   at,
	}, nil
}

// ReverseDecrease undoes a prior sale: the sold quantity comes back along
// with the cost basis that was removed at sale time, so the pre-sale state
// is restored exactly.
func (h *PositionHolding) ReverseDecrease(quantity Quantity, soldCostBasis Money, at time.Time) (HoldingEvent, error) {
	if err := requirePositiveQuantity(quantity); err != nil {
		return HoldingEvent{}, err
	}
	if err := h.checkCurrency(soldCostBasis); err != nil {
		return HoldingEvent{}, err
	}

	newTotalCost, err := h.TotalCostBasis.Add(soldCostBasis)
	if err != nil {
		return HoldingEvent{}, err
	}
	newQuantity := h.TotalQuantity.Add(quantity)
	newAverage, err := newTotalCost.DivQuantity(newQuantity)
	if err != nil {
		return HoldingEvent{}, err
	}

	h.TotalQuantity = newQuantity
	h.TotalCostBasis = newTotalCost
	h.AverageCostBasis = newAverage
	h.touch(at)

	return HoldingEvent{
		Kind:         HoldingReversed,
		HoldingID:    h.ID,
		PortfolioID:  h.PortfolioID,
		Quantity:     quantity,
		OccurredAt:   at,
	}, nil
}

// MarketValue prices the position at a quoted per-unit market price.
func (h *PositionHolding) MarketValue(marketPricePerUnit Money) (Money, error) {
	if err := h.checkCurrency(marketPricePerUnit); err != nil {
		return Money{}, err
	}
	return marketPricePerUnit.MulQuantity(h.TotalQuantity), nil
}

// UnrealizedGainLoss is market value minus remaining cost basis.
func (h *PositionHolding) UnrealizedGainLoss(marketPricePerUnit Money) (Money, error) {
	value, err := h.MarketValue(marketPricePerUnit)
	if err != nil {
		return Money{}, err
	}
	return value.Sub(h.TotalCostBasis)
}
