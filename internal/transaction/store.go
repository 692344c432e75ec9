package transaction

import "context"

// Store exposes read-only projections over the transaction log. Results are
// always ordered by ascending id; transactions are never soft-deleted.
type Store interface {
	Get(ctx context.Context, id int64) (Transaction, error)
	ListAll(ctx context.Context) ([]Transaction, error)
	ListByWallet(ctx context.Context, walletID int64) ([]Transaction, error)
}

// TxStore is the mutating view of the transaction log, only reachable
// inside a unit of work.
type TxStore interface {
	// Create persists a new transaction record with the status already set
	// on it and returns the record with its assigned id.
	Create(ctx context.Context, rec Transaction) (Transaction, error)

	// Get re-reads a record within the unit of work.
	Get(ctx context.Context, id int64) (Transaction, error)

	// SetStatus transitions the record's status. The caller guarantees the
	// transition is legal per the state machine.
	SetStatus(ctx context.Context, id int64, next Status, actor string) error
}
