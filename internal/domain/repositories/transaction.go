package repositories

import "context"

// TxFn runs inside a transaction; returning an error rolls it back.
type TxFn func(ctx context.Context) error

// TransactionManager scopes a unit of work to one database transaction.
// Document updates use this to keep the content write and the version
// append atomic.
type TransactionManager interface {
	// ExecTx begins a transaction, runs fn with it carried in the context,
	// and commits, or rolls back when fn errors.
	ExecTx(ctx context.Context, fn TxFn) error
}
