package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// percentageScale bounds stored rate precision (0.056789 = 5.6789%).
const percentageScale = 6

// Percentage is a dimensionless ratio (0.05 = 5%), kept distinct from Money
// so rates can never be added to amounts by accident.
type Percentage struct {
	ratio decimal.Decimal
}

func NewPercentage(ratio decimal.Decimal) Percentage {
	return Percentage{ratio: ratio.RoundBank(percentageScale)}
}

// PercentageFromPercent converts 5.25 (percent) into the 0.0525 ratio form.
func PercentageFromPercent(percent decimal.Decimal) Percentage {
	return NewPercentage(percent.Div(decimal.NewFromInt(100)))
}

// MustPercentage parses a ratio string; panics on malformed input.
func MustPercentage(ratio string) Percentage {
	return NewPercentage(decimal.RequireFromString(ratio))
}

func (p Percentage) Ratio() decimal.Decimal { return p.ratio }

func (p Percentage) ToPercent() decimal.Decimal {
	return p.ratio.Mul(decimal.NewFromInt(100))
}

func (p Percentage) IsNegative() bool { return p.ratio.IsNegative() }
func (p Percentage) IsZero() bool     { return p.ratio.IsZero() }

func (p Percentage) String() string {
	return p.ToPercent().String() + "%"
}

func (p Percentage) MarshalJSON() ([]byte, error) {
	return p.ratio.MarshalJSON()
}

func (p *Percentage) UnmarshalJSON(data []byte) error {
	return p.ratio.UnmarshalJSON(data)
}

func requireNonNegativeRate(p Percentage, what string) error {
	if p.IsNegative() {
		return fmt.Errorf("%w: %s cannot be negative", ErrValidation, what)
	}
	return nil
}
