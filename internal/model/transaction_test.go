package model

import (
	"testing"

	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionCompleteOnce(t *testing.T) {
	account := NewAccount("trader-1", "BTC")
	deposit := NewTransaction(enum.TransactionTypeDeposit, enum.TransactionStatusInTransit,
		MustMoney("100", "USD"), account, nil)

	require.NoError(t, deposit.Complete())
	assert.Equal(t, "100", account.Balance.Get("USD").Amount.String())
	assert.Equal(t, enum.TransactionStatusCompleted, deposit.Status)
	assert.False(t, deposit.TimeCompleted.IsZero())

	// A replayed completion must not double-apply.
	err := deposit.Complete()
	require.ErrorIs(t, err, exception.ErrTransactionNotInTransit)
	assert.Equal(t, "100", account.Balance.Get("USD").Amount.String())
}

func TestTransactionCompleteWithFee(t *testing.T) {
	account := NewAccount("trader-1", "BTC")
	fee := MustMoney("2", "USD")
	withdrawal := NewTransaction(enum.TransactionTypeWithdrawal, enum.TransactionStatusInTransit,
		MustMoney("50", "USD"), account, nil)
	withdrawal.Fee = &fee

	require.NoError(t, withdrawal.Complete())
	assert.Equal(t, "-52", account.Balance.Get("USD").Amount.String())
}

func TestTransactionCancel(t *testing.T) {
	t.Run("in transit is voided", func(t *testing.T) {
		account := NewAccount("trader-1", "BTC")
		txn := NewTransaction(enum.TransactionTypeDeposit, enum.TransactionStatusInTransit,
			MustMoney("10", "USD"), account, nil)

		require.NoError(t, txn.Cancel())
		assert.Equal(t, enum.TransactionStatusCanceled, txn.Status)
		assert.True(t, account.Balance.Get("USD").IsZero())
	})

	t.Run("completed is reversed", func(t *testing.T) {
		account := NewAccount("trader-1", "BTC")
		txn := NewTransaction(enum.TransactionTypeDeposit, enum.TransactionStatusInTransit,
			MustMoney("10", "USD"), account, nil)

		require.NoError(t, txn.Complete())
		require.NoError(t, txn.Cancel())
		assert.True(t, account.Balance.Get("USD").IsZero())
	})

	t.Run("cancelled cannot cancel again", func(t *testing.T) {
		account := NewAccount("trader-1", "BTC")
		txn := NewTransaction(enum.TransactionTypeDeposit, enum.TransactionStatusInTransit,
			MustMoney("10", "USD"), account, nil)

		require.NoError(t, txn.Cancel())
		require.ErrorIs(t, txn.Cancel(), exception.ErrTransactionNotCancelable)
	})
}

func TestDriftTransaction(t *testing.T) {
	account := NewAccount("trader-1", "BTC")
	account.Balance.Set(MustMoney("100.3", "USD"))

	// Cache sits 0.3 above the venue; the drift withdrawal folds it back.
	drift := MustMoney("0.3", "USD")
	txn := NewDriftTransaction(drift, account)

	assert.Equal(t, enum.TransactionTypeWithdrawal, txn.Type)
	assert.True(t, txn.IsDrift())

	require.NoError(t, txn.Complete())
	assert.Equal(t, "100", account.Balance.Get("USD").Amount.String())

	negative := NewDriftTransaction(MustMoney("-1", "USD"), account)
	assert.Equal(t, enum.TransactionTypeDeposit, negative.Type)
	assert.Equal(t, "1", negative.Amount.Amount.String())
}

func TestAccountApplyTrade(t *testing.T) {
	account := NewAccount("trader-1", "BTC")

	buy := NewTrade(enum.SideBid, MustMoney("100", "USD"), MustMoney("1", "USD"),
		MustMoney("0.5", "BTC"), "simex", "t1")
	account.ApplyTrade(buy)

	assert.Equal(t, "-101", account.Balance.Get("USD").Amount.String())
	assert.Equal(t, "0.5", account.Balance.Get("BTC").Amount.String())
	assert.Equal(t, "0.5", account.PositionCache.Amount.String())

	sell := NewTrade(enum.SideAsk, MustMoney("60", "USD"), MustMoney("0.5", "USD"),
		MustMoney("0.25", "BTC"), "simex", "t2")
	account.ApplyTrade(sell)

	assert.Equal(t, "-41.5", account.Balance.Get("USD").Amount.String())
	assert.Equal(t, "0.25", account.Balance.Get("BTC").Amount.String())
	assert.Equal(t, "0.25", account.PositionCache.Amount.String())
}
