package ledger

import (
	"sort"
	"time"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
)

// Memory is an in-process Store with the same semantics as the Postgres
// store. It backs tests and the simulated venue; the harness is single
// threaded so no locking is needed.
type Memory struct {
	accounts     map[string]*model.Account
	orders       []*model.Order
	transactions []*model.Transaction
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{accounts: make(map[string]*model.Account)}
}

func (s *Memory) Account(name string) (*model.Account, error) {
	a, ok := s.accounts[name]
	if !ok {
		return nil, exception.ErrAccountNotFound
	}

	return a, nil
}

func (s *Memory) SaveAccount(a *model.Account) error {
	s.accounts[a.Name] = a
	return nil
}

func (s *Memory) SaveOrder(o *model.Order) error {
	for i, existing := range s.orders {
		if existing.UniqueID == o.UniqueID {
			s.orders[i] = o
			return nil
		}
	}

	s.orders = append(s.orders, o)

	return nil
}

func (s *Memory) OrdersByVenueOrderID(venue string, venueOrderIDs []string) ([]*model.Order, error) {
	wanted := make(map[string]bool, len(venueOrderIDs))
	for _, id := range venueOrderIDs {
		wanted[id] = true
	}

	var out []*model.Order
	for _, o := range s.orders {
		if o.Venue == venue && wanted[o.VenueOrderID] {
			out = append(out, o)
		}
	}

	return out, nil
}

func (s *Memory) trades(f TradeFilter) []*model.Trade {
	var out []*model.Trade

	for _, o := range s.orders {
		if f.Actor != "" && o.Actor != f.Actor {
			continue
		}
		if f.Venue != "" && o.Venue != f.Venue {
			continue
		}

		for _, t := range o.Trades {
			if !f.Start.IsZero() && t.TimeCreated.Before(f.Start) {
				continue
			}
			if !f.End.IsZero() && !t.TimeCreated.Before(f.End) {
				continue
			}

			out = append(out, t)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimeCreated.Before(out[j].TimeCreated)
	})

	return out
}

func (s *Memory) TradesBefore(actor string, side enum.Side, cutoff time.Time, exclude []string, limit int) ([]*model.Trade, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	all := s.trades(TradeFilter{Actor: actor, End: cutoff})

	var out []*model.Trade
	for i := len(all) - 1; i >= 0 && len(out) < limit; i-- {
		t := all[i]
		if t.Side == side && !excluded[t.UniqueID] {
			out = append(out, t)
		}
	}

	return out, nil
}

func (s *Memory) TradesInPeriod(f TradeFilter) ([]*model.Trade, error) {
	return s.trades(f), nil
}

func (s *Memory) VolumeBySide(f TradeFilter) (decimal.Decimal, decimal.Decimal, error) {
	bid, ask := decimal.Zero, decimal.Zero

	for _, t := range s.trades(f) {
		switch t.Side {
		case enum.SideBid:
			bid = bid.Add(t.Volume.Amount)
		case enum.SideAsk:
			ask = ask.Add(t.Volume.Amount)
		}
	}

	return bid, ask, nil
}

func (s *Memory) NotionalBySide(f TradeFilter, currency string) (model.Money, model.Money, error) {
	bids, asks := model.ZeroMoney(currency), model.ZeroMoney(currency)

	for _, t := range s.trades(f) {
		switch t.Side {
		case enum.SideBid:
			bids = bids.Add(t.PriceInCurrency(currency))
		case enum.SideAsk:
			asks = asks.Add(t.PriceInCurrency(currency))
		}
	}

	return bids, asks, nil
}

func (s *Memory) FeesInPeriod(f TradeFilter, currency string) (model.Money, error) {
	fees := model.ZeroMoney(currency)

	for _, t := range s.trades(f) {
		fees = fees.Add(t.FeeInCurrency(currency))
	}

	return fees, nil
}

func (s *Memory) SaveTransaction(t *model.Transaction) error {
	for i, existing := range s.transactions {
		if existing.UniqueID == t.UniqueID {
			s.transactions[i] = t
			return nil
		}
	}

	s.transactions = append(s.transactions, t)

	return nil
}

func (s *Memory) PendingDeposits(account *model.Account, currency string) ([]*model.Transaction, error) {
	var out []*model.Transaction

	for _, t := range s.transactions {
		if t.Account != nil && t.Account.Name == account.Name &&
			t.Type == enum.TransactionTypeDeposit &&
			t.Status == enum.TransactionStatusInTransit &&
			t.Amount.Currency == currency {
			t.Account = account
			out = append(out, t)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TimeCreated.Before(out[j].TimeCreated)
	})

	return out, nil
}

func (s *Memory) LedgerBalance(account string) (model.Balance, error) {
	balance := model.NewBalance()

	for _, t := range s.trades(TradeFilter{Actor: account}) {
		effect := t.PositionEffect()
		for _, currency := range effect.Currencies() {
			balance.Add(effect.Get(currency))
		}
	}

	for _, tx := range s.transactions {
		if tx.Account == nil || tx.Account.Name != account {
			continue
		}
		if tx.Status != enum.TransactionStatusCompleted {
			continue
		}

		effect := tx.PositionEffect()
		for _, currency := range effect.Currencies() {
			balance.Add(effect.Get(currency))
		}
	}

	return balance, nil
}

func (s *Memory) Flush() error {
	return nil
}
