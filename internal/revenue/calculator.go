package revenue

import (
	"fmt"
	"time"

	"main/internal/cache"
	"main/internal/ledger"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/position"
)

// Calculator answers period revenue questions for one actor out of the
// ledger store. Completed-period results are immutable, so they are memoized
// through the cache.
type Calculator struct {
	store ledger.Store
	cache cache.Cache

	actor          string
	priceCurrency  string
	volumeCurrency string
}

func NewCalculator(store ledger.Store, c cache.Cache, actor, priceCurrency, volumeCurrency string) *Calculator {
	if c == nil {
		c = cache.Nop{}
	}

	return &Calculator{
		store:          store,
		cache:          c,
		actor:          actor,
		priceCurrency:  priceCurrency,
		volumeCurrency: volumeCurrency,
	}
}

// PositionAt is the actor's net position from all fills strictly before t.
func (c *Calculator) PositionAt(t time.Time) (model.Money, error) {
	return position.FastPosition(c.store, ledger.TradeFilter{Actor: c.actor, End: t}, c.volumeCurrency)
}

type periodResult struct {
	Revenue model.Money
	Fees    model.Money
	Profit  model.Money
}

// RevenueFeesProfitInPeriod computes matched revenue, fees, and profit for
// [start, end) without loading the period's trades.
//
// It works from aggregate sums, corrected at both edges: the fills that
// opened the position carried into the period count as if they traded inside
// it, and the fills left open at the end are backed out. The result is
// identical to replaying the period through the matcher.
func (c *Calculator) RevenueFeesProfitInPeriod(start, end time.Time) (revenue, fees, profit model.Money, err error) {
	key := fmt.Sprintf("revenue:%s:%s:%d:%d", c.actor, c.priceCurrency, start.Unix(), end.Unix())

	if v, ok := c.cache.Get(key); ok {
		if r, ok := v.(periodResult); ok {
			return r.Revenue, r.Fees, r.Profit, nil
		}
	}

	f := ledger.TradeFilter{Actor: c.actor, Start: start, End: end}

	bids, asks, err := c.store.NotionalBySide(f, c.priceCurrency)
	if err != nil {
		return revenue, fees, profit, err
	}

	fees, err = c.store.FeesInPeriod(f, c.priceCurrency)
	if err != nil {
		return revenue, fees, profit, err
	}

	startOpen, err := c.openTradesAt(start)
	if err != nil {
		return revenue, fees, profit, err
	}

	endOpen, err := c.openTradesAt(end)
	if err != nil {
		return revenue, fees, profit, err
	}

	// Fills that opened the carried-in position trade "into" the period.
	for _, t := range startOpen {
		if t.Side == enum.SideBid {
			bids = bids.Add(t.PriceInCurrency(c.priceCurrency))
		} else {
			asks = asks.Add(t.PriceInCurrency(c.priceCurrency))
		}

		fees = fees.Add(t.FeeInCurrency(c.priceCurrency))
	}

	// Fills still open at the end never matched; back them out.
	for _, t := range endOpen {
		if t.Side == enum.SideBid {
			bids = bids.Sub(t.PriceInCurrency(c.priceCurrency))
		} else {
			asks = asks.Sub(t.PriceInCurrency(c.priceCurrency))
		}

		fees = fees.Sub(t.FeeInCurrency(c.priceCurrency))
	}

	revenue = asks.Sub(bids)
	profit = revenue.Sub(fees)

	if end.Before(time.Now()) {
		c.cache.Set(key, periodResult{Revenue: revenue, Fees: fees, Profit: profit}, 0)
	}

	return revenue, fees, profit, nil
}

// RevenueInPeriod is the matched-revenue component alone.
func (c *Calculator) RevenueInPeriod(start, end time.Time) (model.Money, error) {
	revenue, _, _, err := c.RevenueFeesProfitInPeriod(start, end)

	return revenue, err
}

// MatchedFeesInPeriod is the fee component alone.
func (c *Calculator) MatchedFeesInPeriod(start, end time.Time) (model.Money, error) {
	_, fees, _, err := c.RevenueFeesProfitInPeriod(start, end)

	return fees, err
}

// RevenueFeesProfitInPeriodReplay loads every fill relevant to [start, end)
// and runs it through the matcher. Slow, but first-principles; the fast path
// must agree with it.
func (c *Calculator) RevenueFeesProfitInPeriodReplay(start, end time.Time) (revenue, fees, profit model.Money, err error) {
	startOpen, err := c.openTradesAt(start)
	if err != nil {
		return revenue, fees, profit, err
	}

	periodTrades, err := c.store.TradesInPeriod(ledger.TradeFilter{Actor: c.actor, Start: start, End: end})
	if err != nil {
		return revenue, fees, profit, err
	}

	all := make([]*model.Trade, 0, len(startOpen)+len(periodTrades))
	all = append(all, startOpen...)
	all = append(all, periodTrades...)

	matched, _ := position.Split(all)

	profit, revenue, fees, _ = ProfitData(matched, c.priceCurrency, c.volumeCurrency)

	return revenue, fees, profit, nil
}

func (c *Calculator) openTradesAt(t time.Time) ([]*model.Trade, error) {
	offset, err := c.PositionAt(t)
	if err != nil {
		return nil, err
	}

	return OpenPositionTrades(c.store, c.actor, offset, t)
}
