package ledger

import (
	"testing"
	"time"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOrder(t *testing.T, s *Memory, side enum.Side, price, fee, volume string, at time.Time) *model.Order {
	t.Helper()

	o := model.NewOrder("trader-1", side, model.MustMoney(volume, "BTC"), model.MustMoney("0", "USD"), "simex")
	tr := model.NewTrade(side, model.MustMoney(price, "USD"), model.MustMoney(fee, "USD"),
		model.MustMoney(volume, "BTC"), "simex", "")
	tr.TimeCreated = at
	o.AddTrade(tr)

	require.NoError(t, s.SaveOrder(o))

	return o
}

func TestMemoryAccountRoundTrip(t *testing.T) {
	s := NewMemory()

	_, err := s.Account("missing")
	require.ErrorIs(t, err, exception.ErrAccountNotFound)

	account := model.NewAccount("trader-1", "BTC")
	require.NoError(t, s.SaveAccount(account))

	got, err := s.Account("trader-1")
	require.NoError(t, err)
	assert.Same(t, account, got)
}

func TestMemoryTradesBefore(t *testing.T) {
	s := NewMemory()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	first := seedOrder(t, s, enum.SideBid, "100", "0", "1", base.Add(1*time.Hour))
	seedOrder(t, s, enum.SideAsk, "50", "0", "0.5", base.Add(2*time.Hour))
	second := seedOrder(t, s, enum.SideBid, "200", "0", "2", base.Add(3*time.Hour))
	seedOrder(t, s, enum.SideBid, "300", "0", "3", base.Add(5*time.Hour))

	got, err := s.TradesBefore("trader-1", enum.SideBid, base.Add(4*time.Hour), nil, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)

	// Newest first, asks and the post-cutoff bid excluded.
	assert.Equal(t, "2", got[0].Volume.Amount.String())
	assert.Equal(t, "1", got[1].Volume.Amount.String())

	// Exclusion list and limit.
	got, err = s.TradesBefore("trader-1", enum.SideBid, base.Add(4*time.Hour),
		[]string{second.Trades[0].UniqueID}, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first.Trades[0].UniqueID, got[0].UniqueID)

	got, err = s.TradesBefore("trader-1", enum.SideBid, base.Add(4*time.Hour), nil, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2", got[0].Volume.Amount.String())
}

func TestMemoryPeriodAggregates(t *testing.T) {
	s := NewMemory()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	seedOrder(t, s, enum.SideBid, "100", "1", "1", base.Add(1*time.Hour))
	seedOrder(t, s, enum.SideAsk, "60", "0.5", "0.5", base.Add(2*time.Hour))
	seedOrder(t, s, enum.SideBid, "90", "1", "0.9", base.Add(30*time.Hour))

	f := TradeFilter{Actor: "trader-1", Start: base, End: base.Add(24 * time.Hour)}

	bidVolume, askVolume, err := s.VolumeBySide(f)
	require.NoError(t, err)
	assert.Equal(t, "1", bidVolume.String())
	assert.Equal(t, "0.5", askVolume.String())

	bids, asks, err := s.NotionalBySide(f, "USD")
	require.NoError(t, err)
	assert.Equal(t, "100", bids.Amount.String())
	assert.Equal(t, "60", asks.Amount.String())

	fees, err := s.FeesInPeriod(f, "USD")
	require.NoError(t, err)
	assert.Equal(t, "1.5", fees.Amount.String())
}

func TestMemoryPendingDepositsAttachAccount(t *testing.T) {
	s := NewMemory()

	stored := model.NewAccount("trader-1", "BTC")
	require.NoError(t, s.SaveAccount(stored))

	txn := model.NewTransaction(enum.TransactionTypeDeposit, enum.TransactionStatusInTransit,
		model.MustMoney("50", "USD"), stored, nil)
	require.NoError(t, s.SaveTransaction(txn))

	// A different in-memory copy of the same account, as another process
	// would hold it.
	held := model.NewAccount("trader-1", "BTC")

	pending, err := s.PendingDeposits(held, "USD")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Same(t, held, pending[0].Account)

	require.NoError(t, pending[0].Complete())
	assert.Equal(t, "50", held.Balance.Get("USD").Amount.String())
}

func TestMemoryLedgerBalanceReplay(t *testing.T) {
	s := NewMemory()

	account := model.NewAccount("trader-1", "BTC")
	require.NoError(t, s.SaveAccount(account))

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	seedOrder(t, s, enum.SideBid, "100", "1", "1", base)

	deposit := model.NewTransaction(enum.TransactionTypeDeposit, enum.TransactionStatusInTransit,
		model.MustMoney("500", "USD"), account, nil)
	require.NoError(t, deposit.Complete())
	require.NoError(t, s.SaveTransaction(deposit))

	// In-transit transactions do not count.
	pending := model.NewTransaction(enum.TransactionTypeDeposit, enum.TransactionStatusInTransit,
		model.MustMoney("999", "USD"), account, nil)
	require.NoError(t, s.SaveTransaction(pending))

	balance, err := s.LedgerBalance("trader-1")
	require.NoError(t, err)
	assert.Equal(t, "399", balance.Get("USD").Amount.String())
	assert.Equal(t, "1", balance.Get("BTC").Amount.String())
}
