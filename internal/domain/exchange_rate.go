package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const exchangeRateScale = 6

// ExchangeRate converts amounts from one currency to another as of a date.
// The rate reads from -> to: 1 unit of From is Rate units of To.
type ExchangeRate struct {
	From  string
	To    string
	Rate  decimal.Decimal
	AsOf  time.Time
}

func NewExchangeRate(from, to string, rate decimal.Decimal, asOf time.Time) (ExchangeRate, error) {
	if from == "" || to == "" {
		return ExchangeRate{}, fmt.Errorf("%w: exchange rate currencies are required", ErrValidation)
	}
	if from == to {
		return ExchangeRate{}, fmt.Errorf("%w: cannot convert %s to itself", ErrValidation, from)
	}
	if !rate.IsPositive() {
		return ExchangeRate{}, fmt.Errorf("%w: exchange rate must be positive", ErrValidation)
	}
	return ExchangeRate{From: from, To: to, Rate: rate.RoundBank(exchangeRateScale), AsOf: asOf}, nil
}

// Convert applies the rate to an amount in the From currency. Used only by
// valuation helpers, never inside ledger mutation math.
func (r ExchangeRate) Convert(m Money) (Money, error) {
	if m.Currency() != r.From {
		return Money{}, fmt.Errorf("%w: rate converts %s, amount is %s", ErrCurrencyMismatch, r.From, m.Currency())
	}
	return NewMoney(m.Amount().Mul(r.Rate), r.To)
}

// Inverse returns the To -> From rate.
func (r ExchangeRate) Inverse() (ExchangeRate, error) {
	inv := decimal.NewFromInt(1).DivRound(r.Rate, exchangeRateScale)
	return NewExchangeRate(r.To, r.From, inv, r.AsOf)
}
