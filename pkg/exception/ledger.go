package exception

import "errors"

var (
	ErrAccountNotFound          = errors.New("ledger: account not found")
	ErrOrderNotRecorded         = errors.New("ledger: order not recorded")
	ErrTransactionNotInTransit  = errors.New("ledger: can only complete an in-transit transaction")
	ErrTransactionNotCancelable = errors.New("ledger: can only cancel an in-transit or completed transaction")
	ErrInsufficientHistory      = errors.New("ledger: not enough trade history to rebuild position")
)
