package strategy

import (
	"context"
	"fmt"
	"time"

	"main/internal/ledger"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/venue"
	"main/pkg/exception"

	"main/internal/errors"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"
)

// SimpleMakerConfig tunes the builtin maker.
type SimpleMakerConfig struct {
	// Spread is the half spread as a fraction of fundamental value; quotes
	// land at fv*(1-Spread) and fv*(1+Spread).
	Spread decimal.Decimal
	// Volume is the quote size per side.
	Volume model.Money
	// FeeRate is the venue's taker/maker fee on notional, used to account
	// fills the venue reports only as volume.
	FeeRate decimal.Decimal
	// Delay is the pause between ticks.
	Delay time.Duration
	// MaxTicks stops the strategy after that many ticks; zero runs forever.
	MaxTicks int
}

// SimpleMaker quotes one bid and one ask around a fundamental-value estimate,
// re-quoting every tick. Fills are reconciled from the venue's order audit
// data and written to the ledger before anything else happens in a tick, so
// the books stay audit-clean at every tick boundary.
type SimpleMaker struct {
	client      venue.Client
	store       ledger.Store
	account     *model.Account
	fundamental func(ctx context.Context) (model.Money, error)
	cfg         SimpleMakerConfig

	ticks  int
	quotes map[string]*model.Order
}

var _ Strategy = (*SimpleMaker)(nil)

func NewSimpleMaker(client venue.Client, store ledger.Store, account *model.Account, fundamental func(ctx context.Context) (model.Money, error), cfg SimpleMakerConfig) *SimpleMaker {
	return &SimpleMaker{
		client:      client,
		store:       store,
		account:     account,
		fundamental: fundamental,
		cfg:         cfg,
		quotes:      make(map[string]*model.Order),
	}
}

func (m *SimpleMaker) Name() string { return "simple-maker" }

func (m *SimpleMaker) Tick(ctx context.Context) error {
	if err := m.reconcileFills(ctx); err != nil {
		return err
	}

	if err := m.cancelQuotes(ctx); err != nil {
		return err
	}

	fv, err := m.fundamental(ctx)
	if err != nil {
		return err
	}

	one := decimal.New(1, 0)
	bidPrice := fv.MulDec(one.Sub(m.cfg.Spread))
	askPrice := fv.MulDec(one.Add(m.cfg.Spread))

	if err := m.quote(ctx, enum.SideBid, bidPrice, fv); err != nil {
		return err
	}

	if err := m.quote(ctx, enum.SideAsk, askPrice, fv); err != nil {
		return err
	}

	m.ticks++

	return nil
}

func (m *SimpleMaker) PostTick(tickCount int) {
	if tickCount%100 == 0 {
		logs.Infof("%s tick %d, position %s", m.Name(), tickCount, m.account.PositionCache)
	}
}

// WindDown reconciles outstanding fills and pulls every quote.
func (m *SimpleMaker) WindDown(ctx context.Context) error {
	if err := m.reconcileFills(ctx); err != nil {
		return err
	}

	return m.cancelQuotes(ctx)
}

func (m *SimpleMaker) IsComplete() bool {
	return m.cfg.MaxTicks > 0 && m.ticks >= m.cfg.MaxTicks
}

func (m *SimpleMaker) TickDelay() time.Duration { return m.cfg.Delay }

// reconcileFills accounts any volume the venue reports filled beyond what
// the ledger has for our tracked quotes.
func (m *SimpleMaker) reconcileFills(ctx context.Context) error {
	if len(m.quotes) == 0 {
		return nil
	}

	data, err := m.client.OrderAuditData(ctx, 0)
	if err != nil {
		return err
	}

	for id, o := range m.quotes {
		reported, ok := data[id]
		if !ok {
			continue
		}

		delta := reported.Sub(o.VolumeFilled())
		if !delta.IsPositive() {
			continue
		}

		notional := o.Price.MulDec(delta.Amount)
		fee := notional.MulDec(m.cfg.FeeRate)

		t := model.NewTrade(o.Side, notional, fee, delta, o.Venue,
			fmt.Sprintf("%s-f%d", id, len(o.Trades)+1))
		o.AddTrade(t)
		m.account.ApplyTrade(t)

		if !o.VolumeFilled().LessThan(o.Volume) {
			o.Status = enum.OrderStatusFilled
			delete(m.quotes, id)
		}

		if err := m.store.SaveOrder(o); err != nil {
			return err
		}

		logs.Debugf("%s filled %s on %s at %s", m.Name(), delta, id, o.Price)
	}

	return m.store.SaveAccount(m.account)
}

func (m *SimpleMaker) cancelQuotes(ctx context.Context) error {
	for id, o := range m.quotes {
		err := m.client.CancelOrder(ctx, id)
		if err != nil && !errors.Is(err, exception.ErrCancelNoEffect) {
			return err
		}

		o.Status = enum.OrderStatusCancelled
		if err := m.store.SaveOrder(o); err != nil {
			return err
		}

		delete(m.quotes, id)
	}

	return nil
}

func (m *SimpleMaker) quote(ctx context.Context, side enum.Side, price, fv model.Money) error {
	id, err := m.client.PlaceOrder(ctx, side, m.cfg.Volume, price)
	if err != nil {
		return err
	}

	o := model.NewOrder(m.account.Name, side, m.cfg.Volume, price, m.client.Name())
	o.VenueOrderID = id
	o.FundamentalValue = fv

	if err := m.store.SaveOrder(o); err != nil {
		return err
	}

	m.quotes[id] = o

	return nil
}
