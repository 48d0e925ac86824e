package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// VoidTransaction undoes a recorded transaction's ledger effect and emits a
// new linked compensating transaction. The original record is never edited;
// it only moves to VOIDED and gains a link to the reversal.
//
// The referenced holding/liability must be supplied by the caller (nil when
// the category touches neither). A category that requires an aggregate the
// caller could not find is a data-integrity violation, not a skip.
//
// The whole compensation is atomic: eligibility is validated before any
// ledger mutation, so either every field change lands or none does.
func VoidTransaction(original *Transaction, holding *PositionHolding, liability *Liability, reason string, now time.Time) (*Transaction, error) {
	return compensate(original, holding, liability, reason, now, false)
}

// ReverseTransaction is the ACTIVE -> REVERSED flavor of compensation: the
// original is additionally hidden from default views. Effect on the ledgers
// is identical to a void.
func ReverseTransaction(original *Transaction, holding *PositionHolding, liability *Liability, reason string, now time.Time) (*Transaction, error) {
	return compensate(original, holding, liability, reason, now, true)
}

func compensate(original *Transaction, holding *PositionHolding, liability *Liability, reason string, now time.Time, markReversed bool) (*Transaction, error) {
	if original == nil {
		return nil, fmt.Errorf("%w: original transaction is required", ErrValidation)
	}
	if reason == "" {
		return nil, fmt.Errorf("%w: a reason is required to undo a transaction", ErrValidation)
	}

	// Validate the lifecycle edge up front so ledger state is never touched
	// for a transaction that cannot legally be undone.
	if markReversed {
		if original.Status != StatusActive {
			return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalStateTransition, original.Status, StatusReversed)
		}
	} else if !original.CanBeVoided() {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalStateTransition, original.Status, StatusVoided)
	}
	if now.Before(original.UpdatedAt) {
		return nil, fmt.Errorf("%w: compensation timestamp %s precedes last update %s", ErrInvalidOperation, now, original.UpdatedAt)
	}

	if err := applyInverseEffect(original, holding, liability, now); err != nil {
		return nil, err
	}

	reversal := &Transaction{
		ID:            uuid.New(),
		PortfolioID:   original.PortfolioID,
		CorrelationID: original.CorrelationID,
		Details: ReversalDetails{
			OriginalTransactionID: original.ID,
			OriginalCategory:      original.Category(),
			Reason:                reason,
		},
		NetAmount: original.NetAmount.Negate(),
		Status:    StatusCompleted,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	parent := original.ID
	reversal.ParentTransactionID = &parent

	// Cannot fail: the edge was validated above.
	if markReversed {
		_ = original.MarkReversed(reversal.ID, now)
	} else {
		_ = original.Void(reversal.ID, now)
	}
	return reversal, nil
}

// applyInverseEffect dispatches the category-specific compensating ledger
// call. The switch is exhaustive over voidable categories; anything else has
// no defined inverse and is rejected before any state changes.
func applyInverseEffect(original *Transaction, holding *PositionHolding, liability *Liability, now time.Time) error {
	switch d := original.Details.(type) {
	case PurchaseDetails:
		if holding == nil {
			return fmt.Errorf("%w: holding %s for voided purchase not found", ErrInvalidState, d.HoldingID)
		}
		_, err := holding.ReverseIncrease(d.Quantity, d.PricePerUnit, now)
		return err

	case SaleDetails:
		if holding == nil {
			return fmt.Errorf("%w: holding %s for voided sale not found", ErrInvalidState, d.HoldingID)
		}
		_, err := holding.ReverseDecrease(d.Quantity, d.SoldCostBasis, now)
		return err

	case CashDetails:
		// No position effect; the negated net amount of the reversal is the
		// compensating deposit/withdrawal.
		return nil

	case LiabilityPaymentDetails:
		if liability == nil {
			return fmt.Errorf("%w: liability %s for voided payment not found", ErrInvalidState, d.LiabilityID)
		}
		_, err := liability.ReversePaymentEffect(d.Amount, now)
		return err

	default:
		return fmt.Errorf("%w: %s transactions cannot be voided", ErrInvalidOperation, original.Category())
	}
}
