package model

import (
	"time"

	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/google/uuid"
)

// Transaction is a deposit to or withdrawal from an account. Its balance
// effect is applied exactly once, guarded by the status transition: Complete
// on anything but IN_TRANSIT is an error, so replays and concurrent fixes
// cannot double-apply.
type Transaction struct {
	UniqueID      string
	Type          enum.TransactionType
	Status        enum.TransactionStatus
	Amount        Money
	Fee           *Money
	Details       map[string]any
	Account       *Account
	TimeCreated   time.Time
	TimeCompleted time.Time
}

func NewTransaction(typ enum.TransactionType, status enum.TransactionStatus, amount Money, account *Account, details map[string]any) *Transaction {
	return &Transaction{
		UniqueID:    uuid.NewString(),
		Type:        typ,
		Status:      status,
		Amount:      amount,
		Details:     details,
		Account:     account,
		TimeCreated: time.Now().UTC(),
	}
}

// NewDriftTransaction builds the in-transit transaction that folds an
// audit-reconciled discrepancy back into the cache: a positive drift (cache
// above venue) becomes a withdrawal, a negative one a deposit. The caller
// completes it immediately.
func NewDriftTransaction(drift Money, account *Account) *Transaction {
	typ := TransactionTypeFor(drift)

	return NewTransaction(typ, enum.TransactionStatusInTransit, drift.Abs(), account, map[string]any{"drift": true})
}

// TransactionTypeFor maps a signed cache-minus-venue drift onto the
// transaction type that cancels it.
func TransactionTypeFor(drift Money) enum.TransactionType {
	if drift.IsPositive() {
		return enum.TransactionTypeWithdrawal
	}

	return enum.TransactionTypeDeposit
}

// Complete transitions IN_TRANSIT -> COMPLETED and applies the amount and fee
// to the account balance.
func (t *Transaction) Complete() error {
	if t.Status != enum.TransactionStatusInTransit {
		return exception.ErrTransactionNotInTransit
	}

	t.Status = enum.TransactionStatusCompleted
	t.TimeCompleted = time.Now().UTC()

	switch t.Type {
	case enum.TransactionTypeDeposit:
		t.Account.Balance.Add(t.Amount)
	case enum.TransactionTypeWithdrawal:
		t.Account.Balance.Sub(t.Amount)
	}

	if t.Fee != nil {
		t.Account.Balance.Sub(*t.Fee)
	}

	return nil
}

// Cancel voids an in-transit transaction, or reverses a completed one.
func (t *Transaction) Cancel() error {
	switch t.Status {
	case enum.TransactionStatusInTransit:
		t.Status = enum.TransactionStatusCanceled
		return nil
	case enum.TransactionStatusCompleted:
		t.Status = enum.TransactionStatusCanceled

		switch t.Type {
		case enum.TransactionTypeDeposit:
			t.Account.Balance.Sub(t.Amount)
		case enum.TransactionTypeWithdrawal:
			t.Account.Balance.Add(t.Amount)
		}

		if t.Fee != nil {
			t.Account.Balance.Add(*t.Fee)
		}

		return nil
	default:
		return exception.ErrTransactionNotCancelable
	}
}

// PositionEffect is the signed balance change of a completed transaction.
func (t *Transaction) PositionEffect() Balance {
	effect := NewBalance()

	switch t.Type {
	case enum.TransactionTypeDeposit:
		effect.Add(t.Amount)
	case enum.TransactionTypeWithdrawal:
		effect.Sub(t.Amount)
	}

	if t.Fee != nil {
		effect.Sub(*t.Fee)
	}

	return effect
}

// IsDrift reports whether this transaction was written by the balance auditor
// to fold reconciled drift back into the cache.
func (t *Transaction) IsDrift() bool {
	drift, ok := t.Details["drift"].(bool)
	return ok && drift
}
