package model

import (
	"time"

	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

// Trade is one execution of part or all of an order.
//
// Price is the total notional of the fill, not a unit price: a 0.5 BTC buy at
// 200 USD/BTC carries Price = USD 100. That convention makes splitting a fill
// a plain proportional scale of price, fee and volume.
//
// ExchangeRate and FundamentalValue are snapshots taken from the owning order
// when the fill was accounted, so historical conversions never depend on live
// rates. Trades are never mutated after creation; the position matcher works
// on copies.
type Trade struct {
	UniqueID     string
	Side         enum.Side
	Price        Money
	Fee          Money
	Volume       Money
	Venue        string
	VenueTradeID string
	TimeCreated  time.Time

	// ExchangeRate converts the price currency to the profit currency.
	ExchangeRate     decimal.Decimal
	FundamentalValue Money
}

func NewTrade(side enum.Side, price, fee, volume Money, venue, venueTradeID string) *Trade {
	return &Trade{
		UniqueID:     uuid.NewString(),
		Side:         side,
		Price:        price,
		Fee:          fee,
		Volume:       volume,
		Venue:        venue,
		VenueTradeID: venueTradeID,
		TimeCreated:  time.Now().UTC(),
		ExchangeRate: decimal.New(1, 0),
	}
}

// Copy returns a modifiable copy sharing no state with the original.
func (t *Trade) Copy() *Trade {
	copied := *t
	return &copied
}

// PriceInCurrency converts the fill's notional using the trade's own
// exchange-rate snapshot.
func (t *Trade) PriceInCurrency(currency string) Money {
	return t.Price.To(currency, t.ExchangeRate)
}

// FeeInCurrency converts the fee using the trade's snapshots. Fees charged in
// the volume currency are valued at the fundamental value recorded when the
// fill was accounted.
func (t *Trade) FeeInCurrency(currency string) Money {
	if t.Fee.Currency == currency {
		return t.Fee
	}

	if t.Fee.Currency == t.Volume.Currency {
		if t.FundamentalValue.Currency == "" {
			panic(errors.Wrapf(exception.ErrNoConversionRate,
				"volume-currency fee without fundamental value on trade %s", t.UniqueID))
		}

		inPriceCurrency := t.FundamentalValue.MulDec(t.Fee.Amount)

		return inPriceCurrency.To(currency, t.ExchangeRate)
	}

	return t.Fee.To(currency, t.ExchangeRate)
}

// PositionEffect is the signed balance change this fill caused.
func (t *Trade) PositionEffect() Balance {
	effect := NewBalance()

	switch t.Side {
	case enum.SideBid:
		effect.Add(t.Volume)
		effect.Sub(t.Price)
	case enum.SideAsk:
		effect.Sub(t.Volume)
		effect.Add(t.Price)
	}

	effect.Sub(t.Fee)

	return effect
}
