package model

import (
	"time"

	"main/internal/model/enum"

	"github.com/google/uuid"
)

// Order is a request for liquidity we placed on a venue, and the fills it
// accumulated. A partially filled order stays OPEN; the fill state is implied
// by its trades.
type Order struct {
	UniqueID     string
	Actor        string
	Side         enum.Side
	Venue        string
	VenueOrderID string
	Volume       Money // requested volume
	Price        Money // limit price per volume unit
	Status       enum.OrderStatus
	TimeCreated  time.Time

	// FundamentalValue is our fair-price estimate at creation time, kept so
	// later accounting can value volume-currency fees.
	FundamentalValue Money

	Trades []*Trade
}

func NewOrder(actor string, side enum.Side, volume, price Money, venue string) *Order {
	return &Order{
		UniqueID:    uuid.NewString(),
		Actor:       actor,
		Side:        side,
		Venue:       venue,
		Volume:      volume,
		Price:       price,
		Status:      enum.OrderStatusOpen,
		TimeCreated: time.Now().UTC(),
	}
}

// VolumeFilled sums the order's fills.
func (o *Order) VolumeFilled() Money {
	filled := ZeroMoney(o.Volume.Currency)
	for _, t := range o.Trades {
		filled = filled.Add(t.Volume)
	}

	return filled
}

// AddTrade attaches a fill and stamps it with the order's snapshots.
func (o *Order) AddTrade(t *Trade) {
	t.Venue = o.Venue
	if o.FundamentalValue.Currency != "" {
		t.FundamentalValue = o.FundamentalValue
	}

	o.Trades = append(o.Trades, t)
}
