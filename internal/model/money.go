package model

import (
	"strings"

	"main/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

// Money is an exact-decimal amount in a single currency. It is an immutable
// value type: every operation returns a new Money.
//
// Mixing currencies in arithmetic is a programming error and panics. The
// harness never retries panics; they mean the code is wrong, not the venue.
type Money struct {
	Amount   decimal.Decimal
	Currency string
}

// NewMoney parses an amount string, tolerating comma separators.
func NewMoney(amount, currency string) (Money, error) {
	if currency == "" {
		return Money{}, exception.ErrInvalidCurrency
	}

	amount = strings.ReplaceAll(amount, ",", "")
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, errors.Wrapf(exception.ErrInvalidAmount, "%q", amount)
	}

	return Money{Amount: d, Currency: currency}, nil
}

// MustMoney is NewMoney for amounts known at compile time.
func MustMoney(amount, currency string) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}

	return m
}

func MoneyFromDecimal(amount decimal.Decimal, currency string) Money {
	return Money{Amount: amount, Currency: currency}
}

func ZeroMoney(currency string) Money {
	return Money{Amount: decimal.Zero, Currency: currency}
}

func (m Money) assertSameCurrency(other Money) {
	if m.Currency != other.Currency {
		panic(errors.Wrapf(exception.ErrCurrencyMismatch, "%s vs %s", m.Currency, other.Currency))
	}
}

func (m Money) Add(other Money) Money {
	m.assertSameCurrency(other)
	return Money{Amount: m.Amount.Add(other.Amount), Currency: m.Currency}
}

func (m Money) Sub(other Money) Money {
	m.assertSameCurrency(other)
	return Money{Amount: m.Amount.Sub(other.Amount), Currency: m.Currency}
}

func (m Money) Neg() Money {
	return Money{Amount: m.Amount.Neg(), Currency: m.Currency}
}

func (m Money) Abs() Money {
	return Money{Amount: m.Amount.Abs(), Currency: m.Currency}
}

// MulDec scales the amount by a bare decimal. The factor is intentionally not
// a Money: scaling by another amount of money has no meaning.
func (m Money) MulDec(factor decimal.Decimal) Money {
	return Money{Amount: m.Amount.Mul(factor), Currency: m.Currency}
}

func (m Money) DivDec(divisor decimal.Decimal) Money {
	return Money{Amount: m.Amount.Div(divisor), Currency: m.Currency}
}

// Cmp returns -1, 0 or 1. Panics on mismatched currencies.
func (m Money) Cmp(other Money) int {
	m.assertSameCurrency(other)
	return m.Amount.Cmp(other.Amount)
}

func (m Money) LessThan(other Money) bool {
	return m.Cmp(other) < 0
}

func (m Money) GreaterThan(other Money) bool {
	return m.Cmp(other) > 0
}

func (m Money) Equal(other Money) bool {
	return m.Currency == other.Currency && m.Amount.Equal(other.Amount)
}

func (m Money) IsZero() bool {
	return m.Amount.IsZero()
}

func (m Money) IsNegative() bool {
	return m.Amount.IsNegative()
}

func (m Money) IsPositive() bool {
	return m.Amount.IsPositive()
}

// To converts to another currency via an explicit exchange-rate snapshot.
// The rate is target units per source unit; callers own picking the right
// snapshot (per-trade rates for accounting, live rates for display).
func (m Money) To(currency string, rate decimal.Decimal) Money {
	if currency == m.Currency {
		return m
	}

	if !rate.IsPositive() {
		panic(errors.Wrapf(exception.ErrNoConversionRate, "%s -> %s", m.Currency, currency))
	}

	return Money{Amount: m.Amount.Mul(rate), Currency: currency}
}

// Round half-up to places decimal places; display and reporting only, never
// the accounting path.
func (m Money) Round(places int32) Money {
	return Money{Amount: m.Amount.Round(places), Currency: m.Currency}
}

func (m Money) String() string {
	return m.Currency + " " + m.Amount.String()
}
