package wallet

import (
	"context"

	"github.com/atlas-pay/atlas_pay/internal/money"
)

// Store covers wallet reads and the CRUD that does not touch balance.
// Soft-deleted wallets are invisible through Get.
type Store interface {
	Create(ctx context.Context, ownerID int64, actor string) (Wallet, error)
	Get(ctx context.Context, id int64) (Wallet, error)
	List(ctx context.Context) ([]Wallet, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Wallet, error)
	SoftDelete(ctx context.Context, id int64, actor string) error
}

// TxStore is the balance-mutating view of the wallet store, only reachable
// inside a unit of work. LockAndGet must precede ApplyDelta for the same
// wallet within the same unit of work; the lock is released when the unit
// of work commits or aborts.
type TxStore interface {
	// LockAndGet acquires an exclusive lock on the wallet and returns its
	// current state. Absent or soft-deleted wallets yield WalletNotFound.
	LockAndGet(ctx context.Context, id int64) (Wallet, error)

	// ApplyDelta adds delta (possibly negative) to the locked wallet's
	// balance. A resulting negative balance yields InsufficientFunds and
	// leaves the balance untouched.
	ApplyDelta(ctx context.Context, id int64, delta money.Amount) error
}
