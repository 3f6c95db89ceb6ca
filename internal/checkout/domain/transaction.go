package domain

import "time"

// TransactionStatus is the settlement state of a checkout transaction.
// Once completed is observed it is final; processing may only be followed by
// completed, failed, or continued processing.
type TransactionStatus string

const (
	TransactionPending    TransactionStatus = "pending"
	TransactionProcessing TransactionStatus = "processing"
	TransactionCompleted  TransactionStatus = "completed"
	TransactionFailed     TransactionStatus = "failed"
	TransactionRefunded   TransactionStatus = "refunded"
)

// IsTerminal reports whether no further status change can occur.
func (s TransactionStatus) IsTerminal() bool {
	switch s {
	case TransactionCompleted, TransactionFailed, TransactionRefunded:
		return true
	default:
		return false
	}
}

// Transaction records one purchase attempt as known to the backend.
type Transaction struct {
	ID          string
	ProductID   string
	ProductName string
	Status      TransactionStatus
	Source      EntitlementSource
	Amount      *int64
	Currency    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
