package venue

import (
	"context"
	"fmt"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"

	"main/internal/errors"

	"github.com/shopspring/decimal"
)

// Sim is a deterministic in-process venue for tests and paper trading.
//
// Resting orders fill in full when the scripted mid price crosses their
// limit; fees are a flat rate on notional, charged in the price currency. It
// serves the same audit surfaces as a real adapter, so the auditors and the
// harness run against it unchanged.
//
// Not safe for concurrent use; the runtime is single threaded.
type Sim struct {
	name           string
	priceCurrency  string
	volumeCurrency string
	feeRate        decimal.Decimal

	balance model.Balance
	mid     model.Money
	seq     int
	orders  []*simOrder // placement order, open and done together

	failure error
}

type simOrder struct {
	order  *model.Order
	open   bool
	filled model.Money
}

var _ Client = (*Sim)(nil)

func NewSim(name, priceCurrency, volumeCurrency string, feeRate decimal.Decimal, initial model.Balance) *Sim {
	return &Sim{
		name:           name,
		priceCurrency:  priceCurrency,
		volumeCurrency: volumeCurrency,
		feeRate:        feeRate,
		balance:        initial.Copy(),
	}
}

func (s *Sim) Name() string { return s.name }

// Fail makes every subsequent call return err, until called with nil.
func (s *Sim) Fail(err error) { s.failure = err }

func (s *Sim) Balance(context.Context) (model.Balance, error) {
	if s.failure != nil {
		return nil, s.failure
	}

	return s.balance.Copy(), nil
}

func (s *Sim) PlaceOrder(_ context.Context, side enum.Side, volume, price model.Money) (string, error) {
	if s.failure != nil {
		return "", s.failure
	}

	if !volume.IsPositive() {
		return "", errors.Wrapf(exception.ErrMinimumOrderSize, "volume %s", volume)
	}

	switch side {
	case enum.SideBid:
		cost := price.MulDec(volume.Amount)
		if s.balance.Get(s.priceCurrency).LessThan(cost) {
			return "", errors.Wrapf(exception.ErrInsufficientFunds, "need %s", cost)
		}
	case enum.SideAsk:
		if s.balance.Get(s.volumeCurrency).LessThan(volume) {
			return "", errors.Wrapf(exception.ErrInsufficientFunds, "need %s", volume)
		}
	}

	s.seq++
	o := model.NewOrder("", side, volume, price, s.name)
	o.VenueOrderID = fmt.Sprintf("%s-%d", s.name, s.seq)

	s.orders = append(s.orders, &simOrder{
		order:  o,
		open:   true,
		filled: model.ZeroMoney(s.volumeCurrency),
	})

	return o.VenueOrderID, nil
}

func (s *Sim) CancelOrder(_ context.Context, venueOrderID string) error {
	if s.failure != nil {
		return s.failure
	}

	for _, so := range s.orders {
		if so.order.VenueOrderID != venueOrderID {
			continue
		}

		if !so.open {
			return errors.Wrapf(exception.ErrCancelNoEffect, "order %s", venueOrderID)
		}

		so.open = false
		so.order.Status = enum.OrderStatusCancelled

		return nil
	}

	return errors.Wrapf(exception.ErrOrderNotFound, "order %s", venueOrderID)
}

func (s *Sim) OpenOrders(context.Context) ([]*model.Order, error) {
	if s.failure != nil {
		return nil, s.failure
	}

	var open []*model.Order
	for _, so := range s.orders {
		if so.open {
			copied := *so.order
			open = append(open, &copied)
		}
	}

	return open, nil
}

func (s *Sim) OrderAuditData(_ context.Context, skipRecent int) (map[string]model.Money, error) {
	if s.failure != nil {
		return nil, s.failure
	}

	cut := len(s.orders) - skipRecent
	if cut < 0 {
		cut = 0
	}

	data := make(map[string]model.Money, cut)
	for _, so := range s.orders[:cut] {
		data[so.order.VenueOrderID] = so.filled
	}

	return data, nil
}

// SetMid moves the scripted mid price and fills every resting order it
// crosses. Returns the fills produced, attached to copies of their orders.
func (s *Sim) SetMid(mid model.Money) []*model.Trade {
	s.mid = mid

	var fills []*model.Trade
	for _, so := range s.orders {
		if !so.open || !s.crosses(so.order) {
			continue
		}

		fills = append(fills, s.fill(so))
	}

	return fills
}

// Mid returns the current scripted mid price.
func (s *Sim) Mid() model.Money { return s.mid }

func (s *Sim) crosses(o *model.Order) bool {
	switch o.Side {
	case enum.SideBid:
		return !s.mid.GreaterThan(o.Price)
	case enum.SideAsk:
		return !s.mid.LessThan(o.Price)
	default:
		return false
	}
}

func (s *Sim) fill(so *simOrder) *model.Trade {
	o := so.order

	notional := o.Price.MulDec(o.Volume.Amount)
	fee := notional.MulDec(s.feeRate)

	t := model.NewTrade(o.Side, notional, fee, o.Volume, s.name, fmt.Sprintf("%s-t%d", o.VenueOrderID, len(o.Trades)+1))
	o.AddTrade(t)

	switch o.Side {
	case enum.SideBid:
		s.balance.Sub(notional)
		s.balance.Add(o.Volume)
	case enum.SideAsk:
		s.balance.Add(notional)
		s.balance.Sub(o.Volume)
	}
	s.balance.Sub(fee)

	so.filled = so.filled.Add(o.Volume)
	so.open = false
	o.Status = enum.OrderStatusFilled

	return t
}

// Deposit credits the venue-side balance directly, the way an on-chain
// deposit arrives outside our order flow.
func (s *Sim) Deposit(amount model.Money) {
	s.balance.Add(amount)
}
