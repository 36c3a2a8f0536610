package model

import "main/internal/model/enum"

// Account is our ledger's view of one venue account: a cached multi-currency
// balance plus a cached net position in the volume currency.
//
// The cache is only mutated by completing or cancelling Transactions and by
// accounting for Trades; the auditors exist to prove it still agrees with the
// venue and with a full ledger replay.
type Account struct {
	Name          string
	Balance       Balance
	PositionCache Money
}

func NewAccount(name, volumeCurrency string) *Account {
	return &Account{
		Name:          name,
		Balance:       NewBalance(),
		PositionCache: ZeroMoney(volumeCurrency),
	}
}

// ApplyTrade folds a fill into the cached balance and position.
func (a *Account) ApplyTrade(t *Trade) {
	effect := t.PositionEffect()
	for _, currency := range effect.Currencies() {
		a.Balance.Add(effect.Get(currency))
	}

	if t.Volume.Currency == a.PositionCache.Currency {
		switch t.Side {
		case enum.SideBid:
			a.PositionCache = a.PositionCache.Add(t.Volume)
		case enum.SideAsk:
			a.PositionCache = a.PositionCache.Sub(t.Volume)
		}
	}
}
