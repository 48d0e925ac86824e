package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TransactionStatus is the lifecycle state of a recorded economic event.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusActive    TransactionStatus = "ACTIVE"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusVoided    TransactionStatus = "VOIDED"
	StatusReversed  TransactionStatus = "REVERSED"
	StatusCancelled TransactionStatus = "CANCELLED"
)

// validTransitions is the whole state machine; anything not listed fails
// ErrIllegalStateTransition. COMPLETED, VOIDED, REVERSED and CANCELLED are
// terminal.
var validTransitions = map[TransactionStatus]map[TransactionStatus]bool{
	StatusPending: {
		StatusActive:    true,
		StatusCompleted: true,
		StatusVoided:    true,
		StatusCancelled: true,
	},
	StatusActive: {
		StatusCompleted: true,
		StatusVoided:    true,
		StatusReversed:  true,
		StatusCancelled: true,
	},
	StatusCompleted: {},
	StatusVoided:    {},
	StatusReversed:  {},
	StatusCancelled: {},
}

// Transaction is the immutable record of one economic event plus its mutable
// lifecycle state. Recorded numbers are never edited; corrections happen
// through a new linked transaction (see correction.go).
type Transaction struct {
	ID                    uuid.UUID
	PortfolioID           uuid.UUID
	CorrelationID         uuid.UUID
	ParentTransactionID   *uuid.UUID
	ReversalTransactionID *uuid.UUID
	Details               TransactionDetails
	NetAmount             Money
	Status                TransactionStatus
	Hidden                bool
	Version               int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewTransaction records an economic event in PENDING state.
func NewTransaction(portfolioID uuid.UUID, details TransactionDetails, netAmount Money, at time.Time) (*Transaction, error) {
	if portfolioID == uuid.Nil {
		return nil, fmt.Errorf("%w: portfolio id is required", ErrValidation)
	}
	if details == nil {
		return nil, fmt.Errorf("%w: transaction details are required", ErrValidation)
	}
	if netAmount.Currency() == "" {
		return nil, fmt.Errorf("%w: net amount is required", ErrValidation)
	}
	return &Transaction{
		ID:            uuid.New(),
		PortfolioID:   portfolioID,
		CorrelationID: uuid.New(),
		Details:       details,
		NetAmount:     netAmount,
		Status:        StatusPending,
		Version:       1,
		CreatedAt:     at,
		UpdatedAt:     at,
	}, nil
}

// ReconstituteTransaction rebuilds a transaction from persisted fields.
func ReconstituteTransaction(
	id, portfolioID, correlationID uuid.UUID,
	parentID, reversalID *uuid.UUID,
	details TransactionDetails,
	netAmount Money,
	status TransactionStatus,
	hidden bool,
	version int,
	createdAt, updatedAt time.Time,
) *Transaction {
	return &Transaction{
		ID:                    id,
		PortfolioID:           portfolioID,
		CorrelationID:         correlationID,
		ParentTransactionID:   parentID,
		ReversalTransactionID: reversalID,
		Details:               details,
		NetAmount:             netAmount,
		Status:                status,
		Hidden:                hidden,
		Version:               version,
		CreatedAt:             createdAt,
		UpdatedAt:             updatedAt,
	}
}

func (t *Transaction) Category() TransactionCategory { return t.Details.Category() }

func (t *Transaction) IsTerminal() bool {
	switch t.Status {
	case StatusCompleted, StatusVoided, StatusReversed, StatusCancelled:
		return true
	}
	return false
}

// CanBeVoided reports whether a void is legal from the current status.
func (t *Transaction) CanBeVoided() bool {
	return t.Status == StatusPending || t.Status == StatusActive
}

// EnsureVersion is the optimistic-concurrency guard for lifecycle updates.
func (t *Transaction) EnsureVersion(expected int) error {
	if expected != t.Version {
		return fmt.Errorf("%w: transaction %s at version %d, caller expected %d", ErrConflict, t.ID, t.Version, expected)
	}
	return nil
}

// transition is the single place status edges and the monotonic-timestamp
// rule are enforced.
func (t *Transaction) transition(to TransactionStatus, at time.Time) error {
	if !validTransitions[t.Status][to] {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalStateTransition, t.Status, to)
	}
	if at.Before(t.UpdatedAt) {
		return fmt.Errorf("%w: transition timestamp %s precedes last update %s", ErrInvalidOperation, at, t.UpdatedAt)
	}
	t.Status = to
	t.UpdatedAt = at
	t.Version++
	return nil
}

// Activate moves a pending transaction into ACTIVE.
func (t *Transaction) Activate(at time.Time) error {
	return t.transition(StatusActive, at)
}

// MarkCompleted settles the transaction; no further edges exist.
func (t *Transaction) MarkCompleted(at time.Time) error {
	return t.transition(StatusCompleted, at)
}

// Void marks the transaction VOIDED and links the compensating transaction.
func (t *Transaction) Void(reversalID uuid.UUID, at time.Time) error {
	if err := t.transition(StatusVoided, at); err != nil {
		return err
	}
	t.ReversalTransactionID = &reversalID
	return nil
}

// MarkReversed moves ACTIVE -> REVERSED, hides the transaction from default
// views and links the compensating transaction.
func (t *Transaction) MarkReversed(reversalID uuid.UUID, at time.Time) error {
	if err := t.transition(StatusReversed, at); err != nil {
		return err
	}
	t.Hidden = true
	t.ReversalTransactionID = &reversalID
	return nil
}

// Cancel is the administrative terminal edge.
func (t *Transaction) Cancel(at time.Time) error {
	return t.transition(StatusCancelled, at)
}
