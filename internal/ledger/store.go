package ledger

import (
	"time"

	"main/internal/model"
	"main/internal/model/enum"

	"github.com/shopspring/decimal"
)

// TradeFilter narrows trade queries. Zero times mean unbounded; Start is
// inclusive, End exclusive.
type TradeFilter struct {
	Actor string
	Venue string
	Start time.Time
	End   time.Time
}

// Store is the append-only accounting ledger. It is a shared persistent
// resource: other processes (manual-fix tools, bots on other pairs) write to
// it too, so every read after Flush may see new records. The runtime relies
// on status-guarded transactions and periodic audits for consistency, not on
// locks.
type Store interface {
	// Account loads the cached account state, or exception.ErrAccountNotFound.
	Account(name string) (*model.Account, error)
	SaveAccount(a *model.Account) error

	// SaveOrder upserts an order together with its trades.
	SaveOrder(o *model.Order) error
	// OrdersByVenueOrderID returns recorded orders for the venue order ids,
	// trades included. Missing ids are simply absent from the result.
	OrdersByVenueOrderID(venue string, venueOrderIDs []string) ([]*model.Order, error)

	// TradesBefore returns up to limit same-side trades strictly before the
	// cutoff, newest first, skipping the excluded unique ids.
	TradesBefore(actor string, side enum.Side, cutoff time.Time, exclude []string, limit int) ([]*model.Trade, error)
	// TradesInPeriod returns matching trades ordered oldest first.
	TradesInPeriod(f TradeFilter) ([]*model.Trade, error)

	// VolumeBySide sums trade volume per side.
	VolumeBySide(f TradeFilter) (bid, ask decimal.Decimal, err error)
	// NotionalBySide sums trade notional per side, converted into currency
	// via each trade's own exchange-rate snapshot.
	NotionalBySide(f TradeFilter, currency string) (bids, asks model.Money, err error)
	// FeesInPeriod sums all trade fees converted into currency.
	FeesInPeriod(f TradeFilter, currency string) (model.Money, error)

	SaveTransaction(t *model.Transaction) error
	// PendingDeposits returns IN_TRANSIT deposits for the account in the
	// given currency, oldest first. Returned transactions are attached to
	// the passed account so completing one mutates the caller's cache.
	PendingDeposits(account *model.Account, currency string) ([]*model.Transaction, error)

	// LedgerBalance derives the account balance by replaying every trade and
	// completed transaction, ignoring the cache entirely.
	LedgerBalance(account string) (model.Balance, error)

	// Flush commits pending writes and makes other processes' writes visible
	// to subsequent reads. The harness calls this at the end of every
	// iteration.
	Flush() error
}
