package position

import (
	"sort"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

// Split matches a time-ordered stream of fills FIFO into round trips.
//
// matched is a flat list of fills whose net volume is exactly zero; open is
// the residual unmatched volume, all on one side. When a fill is only partly
// consumed it is split into two synthetic fills with price and fee scaled by
// the consumed volume fraction; the residual portion is built by subtraction,
// so the two parts always sum back exactly to the original. Total volume and
// total notional over matched plus open therefore equal the input totals
// exactly, and Split checks that before returning.
//
// Input trades are never mutated; Split works on copies throughout.
func Split(trades []*model.Trade) (matched, open []*model.Trade) {
	if len(trades) == 0 {
		return nil, nil
	}

	priceCurrency := PriceCurrencyFor(trades)
	volumeCurrency := trades[0].Volume.Currency

	totalVolume := model.ZeroMoney(volumeCurrency)
	totalNotional := model.ZeroMoney(priceCurrency)

	sorted := make([]*model.Trade, 0, len(trades))
	for _, t := range trades {
		totalVolume = totalVolume.Add(t.Volume)
		totalNotional = totalNotional.Add(t.PriceInCurrency(priceCurrency))
		sorted = append(sorted, t.Copy())
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TimeCreated.Before(sorted[j].TimeCreated)
	})

	var bids, asks []*model.Trade
	for _, t := range sorted {
		if t.Side == enum.SideBid {
			bids = append(bids, t)
		} else {
			asks = append(asks, t)
		}
	}

	for len(bids) > 0 && len(asks) > 0 {
		// The smaller head becomes active so the opposite head always covers it.
		var active *model.Trade
		var opposite *[]*model.Trade

		if bids[0].Volume.LessThan(asks[0].Volume) {
			active, bids = bids[0], bids[1:]
			opposite = &asks
		} else {
			active, asks = asks[0], asks[1:]
			opposite = &bids
		}

		if active.Volume.IsPositive() {
			matched = append(matched, active)
		}

		volumeToMatch := active.Volume

		for volumeToMatch.IsPositive() {
			match := (*opposite)[0]

			if !match.Volume.GreaterThan(volumeToMatch) {
				// Fully consumed.
				volumeToMatch = volumeToMatch.Sub(match.Volume)
				*opposite = (*opposite)[1:]

				if match.Volume.IsPositive() {
					matched = append(matched, match)
				}

				continue
			}

			// Partially consumed: split into a matched portion scaled by the
			// consumed fraction and a residual built by subtraction.
			fraction := volumeToMatch.Amount.Div(match.Volume.Amount)

			part := match.Copy()
			part.Price = match.Price.MulDec(fraction)
			part.Fee = match.Fee.MulDec(fraction)
			part.Volume = volumeToMatch

			match.Price = match.Price.Sub(part.Price)
			match.Fee = match.Fee.Sub(part.Fee)
			match.Volume = match.Volume.Sub(part.Volume)

			if part.Volume.IsPositive() {
				matched = append(matched, part)
			}

			volumeToMatch = model.ZeroMoney(volumeCurrency)
		}
	}

	open = append(bids, asks...)

	assertConservation(matched, open, totalVolume, totalNotional, priceCurrency, volumeCurrency)

	return matched, open
}

func assertConservation(matched, open []*model.Trade, totalVolume, totalNotional model.Money, priceCurrency, volumeCurrency string) {
	net := DeltaOf(matched, priceCurrency, volumeCurrency)
	if !net.Volume.IsZero() {
		panic(errors.Wrapf(exception.ErrUnmatchedPosition, "net %s", net.Volume))
	}

	newVolume := model.ZeroMoney(volumeCurrency)
	newNotional := model.ZeroMoney(priceCurrency)

	for _, t := range matched {
		newVolume = newVolume.Add(t.Volume)
		newNotional = newNotional.Add(t.PriceInCurrency(priceCurrency))
	}
	for _, t := range open {
		newVolume = newVolume.Add(t.Volume)
		newNotional = newNotional.Add(t.PriceInCurrency(priceCurrency))
	}

	if !newVolume.Equal(totalVolume) || !newNotional.Equal(totalNotional) {
		panic(errors.Wrapf(exception.ErrConservationLoss,
			"volume %s != %s or notional %s != %s",
			newVolume, totalVolume, newNotional, totalNotional))
	}
}
