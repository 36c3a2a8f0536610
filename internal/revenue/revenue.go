// Package revenue computes realized and unrealized profit from ledger fills.
//
// The slow paths replay fills through the FIFO matcher; the period fast
// paths use aggregate sums plus boundary corrections for the positions
// carried across the period edges, and must agree with the replay exactly.
package revenue

import (
	"time"

	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/position"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

// ProfitData summarizes a matched trade set: profit, revenue, fees, and the
// portion of fees charged in the volume currency (tracked separately on top
// of their converted value inside fees).
//
// The matched set must net to zero volume. A violation means the caller
// passed something that never went through the matcher; that is a bug, so
// ProfitData panics.
func ProfitData(matched []*model.Trade, priceCurrency, volumeCurrency string) (profit, revenue, fees, volumeCurrencyFees model.Money) {
	if priceCurrency == "" {
		priceCurrency = position.PriceCurrencyFor(matched)
	}

	netVolume := model.ZeroMoney(volumeCurrency)
	revenue = model.ZeroMoney(priceCurrency)
	fees = model.ZeroMoney(priceCurrency)
	volumeCurrencyFees = model.ZeroMoney(volumeCurrency)

	for _, t := range matched {
		switch t.Side {
		case enum.SideAsk:
			netVolume = netVolume.Sub(t.Volume)
			revenue = revenue.Add(t.PriceInCurrency(priceCurrency))
		case enum.SideBid:
			netVolume = netVolume.Add(t.Volume)
			revenue = revenue.Sub(t.PriceInCurrency(priceCurrency))
		}

		if t.Fee.Currency == volumeCurrency {
			volumeCurrencyFees = volumeCurrencyFees.Add(t.Fee)
		}

		fees = fees.Add(t.FeeInCurrency(priceCurrency))
	}

	if !netVolume.IsZero() {
		panic(errors.Wrapf(exception.ErrUnmatchedPosition, "net %s", netVolume))
	}

	profit = revenue.Sub(fees)

	return profit, revenue, fees, volumeCurrencyFees
}

// RealizedPL is the fiat position delta over a matched set: what we actually
// pocketed, fees included.
func RealizedPL(matched []*model.Trade, priceCurrency, volumeCurrency string) model.Money {
	delta := position.DeltaOf(matched, priceCurrency, volumeCurrency)

	if !delta.Volume.IsZero() {
		panic(errors.Wrapf(exception.ErrUnmatchedPosition, "net %s", delta.Volume))
	}

	return delta.Fiat
}

// OpenPL values the open position against a fundamental-value estimate: the
// notional already paid or received, plus the held volume at fair price.
func OpenPL(openTrades []*model.Trade, fundamentalValue model.Money, volumeCurrency string) model.Money {
	delta := position.DeltaOf(openTrades, fundamentalValue.Currency, volumeCurrency)

	valueOfPosition := fundamentalValue.MulDec(delta.Volume.Amount)

	return delta.Fiat.Add(valueOfPosition)
}

// AllFees totals fees over any trade list (matched or not), plus the exact
// volume-currency fee amount.
func AllFees(trades []*model.Trade, priceCurrency, volumeCurrency string) (fees, volumeCurrencyFees model.Money) {
	if priceCurrency == "" {
		priceCurrency = position.PriceCurrencyFor(trades)
	}

	fees = model.ZeroMoney(priceCurrency)
	volumeCurrencyFees = model.ZeroMoney(volumeCurrency)

	for _, t := range trades {
		if t.Fee.Currency == volumeCurrency {
			volumeCurrencyFees = volumeCurrencyFees.Add(t.Fee)
		}

		fees = fees.Add(t.FeeInCurrency(priceCurrency))
	}

	return fees, volumeCurrencyFees
}

// ProfitUnit is one completed round trip.
type ProfitUnit struct {
	Time    time.Time
	Profit  model.Money
	Revenue model.Money
	Venues  [2]string
}

// ProfitUnits expands a matched set into its round-trip profit steps. The
// matcher emits matched trades strictly in equal-volume pairs, which this
// relies on.
func ProfitUnits(matched []*model.Trade, priceCurrency string) []ProfitUnit {
	if priceCurrency == "" {
		priceCurrency = position.PriceCurrencyFor(matched)
	}

	units := make([]ProfitUnit, 0, len(matched)/2)

	for i := 0; i+1 < len(matched); i += 2 {
		first, second := matched[i], matched[i+1]

		if !first.Volume.Equal(second.Volume) {
			panic(errors.Wrapf(exception.ErrUnmatchedPosition,
				"pair volumes %s vs %s", first.Volume, second.Volume))
		}

		var bid, ask *model.Trade
		switch {
		case first.Side == enum.SideAsk && second.Side == enum.SideBid:
			ask, bid = first, second
		case first.Side == enum.SideBid && second.Side == enum.SideAsk:
			bid, ask = first, second
		default:
			panic(errors.Wrapf(exception.ErrUnmatchedPosition,
				"pair sides %s, %s", first.Side, second.Side))
		}

		rev := ask.PriceInCurrency(priceCurrency).Sub(bid.PriceInCurrency(priceCurrency))
		feeSum := ask.FeeInCurrency(priceCurrency).Add(bid.FeeInCurrency(priceCurrency))

		unitTime := first.TimeCreated
		if second.TimeCreated.After(unitTime) {
			unitTime = second.TimeCreated
		}

		units = append(units, ProfitUnit{
			Time:    unitTime,
			Profit:  rev.Sub(feeSum),
			Revenue: rev,
			Venues:  [2]string{first.Venue, second.Venue},
		})
	}

	return units
}
