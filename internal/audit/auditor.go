package audit

import (
	"context"

	"main/internal/ledger"
	"main/internal/model"
	"main/internal/position"
	"main/internal/venue"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"
)

// Config tunes one account's auditor.
type Config struct {
	// Currencies lists the tracked currencies balance audits cover.
	Currencies []string
	// Tolerances is the per-currency allowed gap between cached and venue
	// balance. Absent currencies get exact-equal.
	Tolerances map[string]decimal.Decimal
	// OrderTolerance is the allowed filled-volume gap per order.
	OrderTolerance decimal.Decimal
	// SkipRecentOrders excludes the newest orders from the order audit.
	SkipRecentOrders int
	// VolumeCurrency is the currency the position cache is held in.
	VolumeCurrency string
	// RecordDrift writes sub-tolerance discrepancies back into the ledger as
	// immediately completed drift transactions.
	RecordDrift bool
}

// Auditor reconciles one account against one venue.
type Auditor struct {
	store   ledger.Store
	client  venue.Client
	account *model.Account
	cfg     Config
}

func New(store ledger.Store, client venue.Client, account *model.Account, cfg Config) *Auditor {
	return &Auditor{
		store:   store,
		client:  client,
		account: account,
		cfg:     cfg,
	}
}

// Full runs every audit in one pass: order fills, balance per tracked
// currency, ledger replay, position cache. The first disagreement wins.
func (a *Auditor) Full(ctx context.Context) error {
	if _, err := a.OrderAudit(ctx); err != nil {
		return err
	}

	venueBalance, err := a.client.Balance(ctx)
	if err != nil {
		return err
	}

	for _, currency := range a.cfg.Currencies {
		if err := a.BalanceAudit(currency, venueBalance, a.cfg.RecordDrift); err != nil {
			return err
		}
	}

	if err := a.LedgerAudit(); err != nil {
		return err
	}

	return a.PositionCacheAudit()
}

// BalanceAudit checks the cached balance for one currency against the
// venue's. On a gap it tries to land a pending deposit of the right size and
// compares again; agreement within tolerance with recordDrift set writes the
// residual back into the ledger so the next audit starts from exact equality.
func (a *Auditor) BalanceAudit(currency string, venueBalance model.Balance, recordDrift bool) error {
	cached := a.account.Balance.Get(currency)
	venueAmount := venueBalance.Get(currency)

	if !a.withinTolerance(currency, cached, venueAmount) {
		landed, err := a.landPendingDeposit(currency, venueAmount.Sub(cached))
		if err != nil {
			return err
		}

		if landed {
			cached = a.account.Balance.Get(currency)
		}

		if !a.withinTolerance(currency, cached, venueAmount) {
			return failf(KindBalance, "%s cached %s != venue %s", currency, cached, venueAmount)
		}
	}

	drift := cached.Sub(venueAmount)
	if recordDrift && !drift.IsZero() {
		if err := a.recordDrift(drift); err != nil {
			return err
		}
	}

	return nil
}

// LedgerAudit proves the cached balance still equals a full replay of every
// trade and completed transaction. Equality is asymmetric: a currency absent
// from one side counts as zero there.
func (a *Auditor) LedgerAudit() error {
	replayed, err := a.store.LedgerBalance(a.account.Name)
	if err != nil {
		return err
	}

	currencies := map[string]struct{}{}
	for _, c := range a.account.Balance.Currencies() {
		currencies[c] = struct{}{}
	}
	for _, c := range replayed.Currencies() {
		currencies[c] = struct{}{}
	}

	for c := range currencies {
		cached := a.account.Balance.Get(c)
		derived := replayed.Get(c)

		if !cached.Equal(derived) {
			return failf(KindLedger, "%s cached %s != replayed %s", c, cached, derived)
		}
	}

	return nil
}

// OrderAudit compares venue-reported filled volume against the ledger for
// every order the venue reports, skipping the configured newest ones. A
// venue order id we never recorded fails immediately; volume mismatches are
// collected across all orders and raised together.
func (a *Auditor) OrderAudit(ctx context.Context) (map[string]model.Money, error) {
	data, err := a.client.OrderAuditData(ctx, a.cfg.SkipRecentOrders)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(data))
	for id := range data {
		ids = append(ids, id)
	}

	orders, err := a.store.OrdersByVenueOrderID(a.client.Name(), ids)
	if err != nil {
		return nil, err
	}

	recorded := make(map[string]model.Money, len(orders))
	for _, o := range orders {
		recorded[o.VenueOrderID] = o.VolumeFilled()
	}

	var mismatches []OrderMismatch
	for id, venueVolume := range data {
		ledgerVolume, ok := recorded[id]
		if !ok {
			return nil, failf(KindOrder, "venue order %s not in ledger", id)
		}

		gap := venueVolume.Sub(ledgerVolume).Abs()
		if gap.Amount.GreaterThan(a.cfg.OrderTolerance) {
			mismatches = append(mismatches, OrderMismatch{
				VenueOrderID: id,
				VenueVolume:  venueVolume,
				LedgerVolume: ledgerVolume,
			})
		}
	}

	if len(mismatches) > 0 {
		return nil, &OrderError{Mismatches: mismatches}
	}

	return recorded, nil
}

// PositionCacheAudit checks the cached net position against the aggregate
// bid-minus-ask sum over the whole trade history.
func (a *Auditor) PositionCacheAudit() error {
	derived, err := position.FastPosition(a.store,
		ledger.TradeFilter{Actor: a.account.Name}, a.cfg.VolumeCurrency)
	if err != nil {
		return err
	}

	if !a.account.PositionCache.Equal(derived) {
		return failf(KindPosition, "cached %s != derived %s", a.account.PositionCache, derived)
	}

	return nil
}

func (a *Auditor) withinTolerance(currency string, cached, venueAmount model.Money) bool {
	gap := cached.Sub(venueAmount).Abs()

	return !gap.Amount.GreaterThan(a.cfg.Tolerances[currency])
}

// landPendingDeposit looks for an in-transit deposit whose amount explains
// the gap and completes it, folding it into the cached balance.
func (a *Auditor) landPendingDeposit(currency string, delta model.Money) (bool, error) {
	if !delta.IsPositive() {
		return false, nil
	}

	pending, err := a.store.PendingDeposits(a.account, currency)
	if err != nil {
		return false, err
	}

	for _, txn := range pending {
		gap := txn.Amount.Sub(delta).Abs()
		if gap.Amount.GreaterThan(a.cfg.Tolerances[currency]) {
			continue
		}

		if err := txn.Complete(); err != nil {
			return false, err
		}

		if err := a.store.SaveTransaction(txn); err != nil {
			return false, err
		}

		if err := a.store.SaveAccount(a.account); err != nil {
			return false, err
		}

		logs.Infof("landed pending deposit %s of %s for %s", txn.UniqueID, txn.Amount, a.account.Name)

		return true, nil
	}

	return false, nil
}

// recordDrift writes an immediately completed drift transaction so the
// cached balance lands exactly on the venue's number.
func (a *Auditor) recordDrift(drift model.Money) error {
	txn := model.NewDriftTransaction(drift, a.account)

	if err := txn.Complete(); err != nil {
		return err
	}

	if err := a.store.SaveTransaction(txn); err != nil {
		return err
	}

	if err := a.store.SaveAccount(a.account); err != nil {
		return err
	}

	logs.Warnf("recorded %s drift on %s", drift, a.account.Name)

	return nil
}
