package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// MoneyScale is the canonical number of fractional digits for all monetary
// amounts. Every Money is normalized to this scale on construction using
// banker's rounding (half-even); divisions re-normalize the same way, so
// cost-basis-per-unit is always derived with one rounding discipline.
const MoneyScale = 4

// Money is a fixed-scale amount tagged with an ISO currency code. Binary
// operations require identical currencies.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// NewMoney builds a Money normalized to MoneyScale.
func NewMoney(amount decimal.Decimal, currency string) (Money, error) {
	if currency == "" {
		return Money{}, fmt.Errorf("%w: currency is required", ErrValidation)
	}
	return Money{amount: amount.RoundBank(MoneyScale), currency: currency}, nil
}

// MustMoney is NewMoney for fixed inputs (tests, constants); panics on error.
func MustMoney(amount string, currency string) Money {
	m, err := NewMoney(decimal.RequireFromString(amount), currency)
	if err != nil {
		panic(err)
	}
	return m
}

// ZeroMoney returns an exact zero in the given currency.
func ZeroMoney(currency string) Money {
	return Money{amount: decimal.Zero.RoundBank(MoneyScale), currency: currency}
}

func (m Money) Amount() decimal.Decimal { return m.amount }
func (m Money) Currency() string        { return m.currency }

func (m Money) String() string {
	return m.amount.StringFixed(MoneyScale) + " " + m.currency
}

func (m Money) sameCurrency(n Money) error {
	if m.currency != n.currency {
		return fmt.Errorf("%w: %s vs %s", ErrCurrencyMismatch, m.currency, n.currency)
	}
	return nil
}

func (m Money) Add(n Money) (Money, error) {
	if err := m.sameCurrency(n); err != nil {
		return Money{}, err
	}
	return NewMoney(m.amount.Add(n.amount), m.currency)
}

func (m Money) Sub(n Money) (Money, error) {
	if err := m.sameCurrency(n); err != nil {
		return Money{}, err
	}
	return NewMoney(m.amount.Sub(n.amount), m.currency)
}

// MulScalar multiplies by a dimensionless factor.
func (m Money) MulScalar(factor decimal.Decimal) Money {
	out, _ := NewMoney(m.amount.Mul(factor), m.currency)
	return out
}

// MulQuantity prices a quantity: per-unit amount times unit count.
func (m Money) MulQuantity(q Quantity) Money {
	return m.MulScalar(q.value)
}

// DivScalar divides by a dimensionless factor, re-normalizing to MoneyScale.
func (m Money) DivScalar(divisor decimal.Decimal) (Money, error) {
	if divisor.IsZero() {
		return Money{}, fmt.Errorf("%w: money division", ErrDivideByZero)
	}
	return NewMoney(m.amount.DivRound(divisor, MoneyScale+2), m.currency)
}

// DivQuantity derives a per-unit amount (e.g. average cost basis).
func (m Money) DivQuantity(q Quantity) (Money, error) {
	return m.DivScalar(q.value)
}

func (m Money) Negate() Money {
	out, _ := NewMoney(m.amount.Neg(), m.currency)
	return out
}

func (m Money) Abs() Money {
	out, _ := NewMoney(m.amount.Abs(), m.currency)
	return out
}

func (m Money) IsZero() bool     { return m.amount.IsZero() }
func (m Money) IsPositive() bool { return m.amount.IsPositive() }
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

func (m Money) Equal(n Money) bool {
	return m.currency == n.currency && m.amount.Equal(n.amount)
}

func (m Money) GreaterThan(n Money) (bool, error) {
	if err := m.sameCurrency(n); err != nil {
		return false, err
	}
	return m.amount.GreaterThan(n.amount), nil
}

func (m Money) LessThan(n Money) (bool, error) {
	if err := m.sameCurrency(n); err != nil {
		return false, err
	}
	return m.amount.LessThan(n.amount), nil
}

type moneyJSON struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(moneyJSON{Amount: m.amount, Currency: m.currency})
}

func (m *Money) UnmarshalJSON(data []byte) error {
	var raw moneyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewMoney(raw.Amount, raw.Currency)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
