package storage

import (
	"context"

	"github.com/atlas-pay/atlas_pay/internal/transaction"
	"github.com/atlas-pay/atlas_pay/internal/wallet"
)

// UnitOfWork groups the mutating store views that share one atomic scope.
// Everything done through it commits or aborts as a whole; wallet locks
// taken inside it are released when it ends.
type UnitOfWork interface {
	Wallets() wallet.TxStore
	Transactions() transaction.TxStore
}

// Runner opens units of work. WithinTx commits when fn returns nil and
// rolls every change back when it returns an error, which is then passed
// through to the caller.
type Runner interface {
	WithinTx(ctx context.Context, fn func(uow UnitOfWork) error) error
}

// Backend bundles the stores and the unit-of-work runner one storage
// implementation provides.
type Backend interface {
	Runner
	WalletStore() wallet.Store
	TransactionStore() transaction.Store
}
