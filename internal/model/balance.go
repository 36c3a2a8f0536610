package model

import "sort"

// Balance maps currency codes to amounts. Absent currencies read as zero, so
// insertion order never matters.
type Balance map[string]Money

func NewBalance(monies ...Money) Balance {
	b := make(Balance, len(monies))
	for _, m := range monies {
		b.Add(m)
	}

	return b
}

// Get returns the held amount, zero for currencies the balance has never seen.
func (b Balance) Get(currency string) Money {
	if m, ok := b[currency]; ok {
		return m
	}

	return ZeroMoney(currency)
}

func (b Balance) Add(m Money) {
	b[m.Currency] = b.Get(m.Currency).Add(m)
}

func (b Balance) Sub(m Money) {
	b[m.Currency] = b.Get(m.Currency).Sub(m)
}

func (b Balance) Set(m Money) {
	b[m.Currency] = m
}

func (b Balance) Copy() Balance {
	out := make(Balance, len(b))
	for currency, m := range b {
		out[currency] = m
	}

	return out
}

// Currencies returns the held currency codes in stable order.
func (b Balance) Currencies() []string {
	out := make([]string, 0, len(b))
	for currency := range b {
		out = append(out, currency)
	}

	sort.Strings(out)

	return out
}

func (b Balance) String() string {
	out := "{"
	for i, currency := range b.Currencies() {
		if i > 0 {
			out += ", "
		}
		out += b[currency].String()
	}

	return out + "}"
}
