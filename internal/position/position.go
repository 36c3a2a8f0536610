// Package position turns raw fill streams into matched round trips and net
// positions. Everything here is pure over its inputs except FastPosition,
// which delegates summing to the ledger store.
package position

import (
	"main/internal/ledger"
	"main/internal/model"
	"main/internal/model/enum"
)

// Delta is the net change a list of fills caused: volume in the volume
// currency, and fiat in the price currency with fees already deducted.
type Delta struct {
	Volume model.Money
	Fiat   model.Money
}

// DeltaOf computes the position delta over trades. For a matched set the
// volume component is zero and the fiat component is the realized profit.
func DeltaOf(trades []*model.Trade, priceCurrency, volumeCurrency string) Delta {
	if priceCurrency == "" {
		priceCurrency = PriceCurrencyFor(trades)
	}

	fiat := model.ZeroMoney(priceCurrency)
	volume := model.ZeroMoney(volumeCurrency)

	for _, t := range trades {
		switch t.Side {
		case enum.SideAsk:
			volume = volume.Sub(t.Volume)
			fiat = fiat.Add(t.PriceInCurrency(priceCurrency))
		case enum.SideBid:
			volume = volume.Add(t.Volume)
			fiat = fiat.Sub(t.PriceInCurrency(priceCurrency))
		}

		fiat = fiat.Sub(t.FeeInCurrency(priceCurrency))
	}

	return Delta{Volume: volume, Fiat: fiat}
}

// PriceCurrencyFor picks the common price currency of a trade list, falling
// back to USD when the list is empty or mixed.
func PriceCurrencyFor(trades []*model.Trade) string {
	if len(trades) == 0 {
		return "USD"
	}

	currency := trades[0].Price.Currency
	for _, t := range trades[1:] {
		if t.Price.Currency != currency {
			return "USD"
		}
	}

	return currency
}

// FastPosition computes net position (bid volume minus ask volume) with
// aggregate sums instead of loading every trade.
func FastPosition(store ledger.Store, f ledger.TradeFilter, volumeCurrency string) (model.Money, error) {
	bid, ask, err := store.VolumeBySide(f)
	if err != nil {
		return model.Money{}, err
	}

	return model.MoneyFromDecimal(bid.Sub(ask), volumeCurrency), nil
}
