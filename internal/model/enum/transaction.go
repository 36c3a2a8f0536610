package enum

// TransactionType distinguishes money moving into or out of an account.
type TransactionType uint8

const (
	_transaction_type_beg TransactionType = iota
	TransactionTypeDeposit
	TransactionTypeWithdrawal
	_transaction_type_end
)

func (t TransactionType) IsAvailable() bool {
	return t > _transaction_type_beg && t < _transaction_type_end
}

func (t TransactionType) String() string {
	switch t {
	case TransactionTypeDeposit:
		return "DEPOSIT"
	case TransactionTypeWithdrawal:
		return "WITHDRAWAL"
	default:
		return "UNKNOWN"
	}
}

func ParseTransactionType(s string) TransactionType {
	switch s {
	case "DEPOSIT":
		return TransactionTypeDeposit
	case "WITHDRAWAL":
		return TransactionTypeWithdrawal
	default:
		return _transaction_type_beg
	}
}

// TransactionStatus guards the single application of a transaction's balance
// effect.
type TransactionStatus uint8

const (
	_transaction_status_beg TransactionStatus = iota
	TransactionStatusInTransit
	TransactionStatusCompleted
	TransactionStatusCanceled
	_transaction_status_end
)

func (s TransactionStatus) IsAvailable() bool {
	return s > _transaction_status_beg && s < _transaction_status_end
}

func (s TransactionStatus) String() string {
	switch s {
	case TransactionStatusInTransit:
		return "IN_TRANSIT"
	case TransactionStatusCompleted:
		return "COMPLETED"
	case TransactionStatusCanceled:
		return "CANCELED"
	default:
		return "UNKNOWN"
	}
}

func ParseTransactionStatus(s string) TransactionStatus {
	switch s {
	case "IN_TRANSIT":
		return TransactionStatusInTransit
	case "COMPLETED":
		return TransactionStatusCompleted
	case "CANCELED":
		return TransactionStatusCanceled
	default:
		return _transaction_status_beg
	}
}
