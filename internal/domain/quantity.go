package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quantity is a unit count for an asset position. It carries full decimal
// precision (fractional shares are allowed); only money is scale-normalized.
type Quantity struct {
	value decimal.Decimal
}

func NewQuantity(value decimal.Decimal) Quantity {
	return Quantity{value: value}
}

// MustQuantity parses a fixed decimal string; panics on malformed input.
func MustQuantity(value string) Quantity {
	return Quantity{value: decimal.RequireFromString(value)}
}

func (q Quantity) Value() decimal.Decimal { return q.value }
func (q Quantity) String() string         { return q.value.String() }

func (q Quantity) Add(r Quantity) Quantity { return Quantity{value: q.value.Add(r.value)} }
func (q Quantity) Sub(r Quantity) Quantity { return Quantity{value: q.value.Sub(r.value)} }

// MulRatio scales the quantity, e.g. by a split ratio.
func (q Quantity) MulRatio(ratio decimal.Decimal) Quantity {
	return Quantity{value: q.value.Mul(ratio)}
}

func (q Quantity) IsZero() bool          { return q.value.IsZero() }
func (q Quantity) IsPositive() bool      { return q.value.IsPositive() }
func (q Quantity) Equal(r Quantity) bool { return q.value.Equal(r.value) }

func (q Quantity) GreaterThan(r Quantity) bool { return q.value.GreaterThan(r.value) }

func (q Quantity) MarshalJSON() ([]byte, error) {
	return q.value.MarshalJSON()
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	return q.value.UnmarshalJSON(data)
}

func requirePositiveQuantity(q Quantity) error {
	if !q.IsPositive() {
		return fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidOperation, q)
	}
	return nil
}
