package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "EUR"

// Money is a decimal amount with its ISO currency code. The amount travels as a
// string in JSON so no precision is lost on the way through the cart.
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currencyCode"`
}

func NewMoney(amount string, currency string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("amount %q: %w", amount, ErrInvalidInput)
	}
	return Money{Amount: d, CurrencyCode: currency}, nil
}

func MustMoney(amount string, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

func ZeroMoney(currency string) Money {
	return Money{Amount: decimal.Zero, CurrencyCode: currency}
}

func (m Money) Times(qty int) Money {
	return Money{Amount: m.Amount.Mul(decimal.NewFromInt(int64(qty))), CurrencyCode: m.CurrencyCode}
}

// Plus ignores the currency of o; carts are single currency.
func (m Money) Plus(o Money) Money {
	return Money{Amount: m.Amount.Add(o.Amount), CurrencyCode: m.CurrencyCode}
}

func (m Money) Equal(o Money) bool {
	return m.CurrencyCode == o.CurrencyCode && m.Amount.Equal(o.Amount)
}

func (m Money) String() string {
	return m.Amount.StringFixed(2) + " " + m.CurrencyCode
}
