package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	testCases := []struct {
		desc     string
		amount   string
		currency string
		expected string
		wantErr  bool
	}{
		{"plain", "100.5", "USD", "100.5", false},
		{"comma separators", "1,234,567.89", "USD", "1234567.89", false},
		{"negative", "-3", "BTC", "-3", false},
		{"garbage", "abc", "USD", "", true},
		{"empty currency", "1", "", "", true},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			m, err := NewMoney(tc.amount, tc.currency)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.expected, m.Amount.String())
			assert.Equal(t, tc.currency, m.Currency)
		})
	}
}

func TestMoneyArithmetic(t *testing.T) {
	a := MustMoney("10", "USD")
	b := MustMoney("4", "USD")

	assert.Equal(t, "6", a.Sub(b).Amount.String())
	assert.Equal(t, "14", a.Add(b).Amount.String())
	assert.Equal(t, "-10", a.Neg().Amount.String())
	assert.Equal(t, "10", a.Neg().Abs().Amount.String())
	assert.Equal(t, "20", a.MulDec(decimal.New(2, 0)).Amount.String())
	assert.True(t, b.LessThan(a))
	assert.True(t, a.GreaterThan(b))
	assert.False(t, a.Equal(b))
}

func TestMoneyCurrencyMismatchPanics(t *testing.T) {
	usd := MustMoney("1", "USD")
	btc := MustMoney("1", "BTC")

	require.Panics(t, func() { usd.Add(btc) })
	require.Panics(t, func() { usd.Sub(btc) })
	require.Panics(t, func() { usd.Cmp(btc) })
}

func TestMoneyTo(t *testing.T) {
	usd := MustMoney("100", "USD")

	cad := usd.To("CAD", decimal.NewFromFloat(1.25))
	assert.Equal(t, "CAD", cad.Currency)
	assert.Equal(t, "125", cad.Amount.String())

	// Same currency ignores the rate.
	same := usd.To("USD", decimal.NewFromFloat(1.25))
	assert.Equal(t, "100", same.Amount.String())
}

func TestBalanceZeroDefault(t *testing.T) {
	b := NewBalance()

	got := b.Get("USD")
	assert.True(t, got.IsZero())
	assert.Equal(t, "USD", got.Currency)

	b.Add(MustMoney("5", "USD"))
	b.Sub(MustMoney("2", "USD"))
	assert.Equal(t, "3", b.Get("USD").Amount.String())

	copied := b.Copy()
	copied.Add(MustMoney("1", "USD"))
	assert.Equal(t, "3", b.Get("USD").Amount.String())
}
