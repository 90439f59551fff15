package repositories

import "context"

// TxFn is a function that runs within a transaction.
type TxFn func(ctx context.Context) error

// TransactionManager runs functions inside a database transaction.
// Stores called with the transaction's context join it automatically.
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
