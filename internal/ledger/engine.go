package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atlas-pay/atlas_pay/internal/apperr"
	"github.com/atlas-pay/atlas_pay/internal/notification"
	"github.com/atlas-pay/atlas_pay/internal/storage"
	"github.com/atlas-pay/atlas_pay/internal/transaction"
	"github.com/atlas-pay/atlas_pay/internal/wallet"
)

// Engine is the only component allowed to mutate wallet balances and
// transaction statuses. Every mutation happens inside one unit of work with
// all involved wallets locked in ascending-id order, so concurrent
// operations on the same wallets serialize and opposing transfers cannot
// deadlock.
type Engine struct {
	backend  storage.Backend
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewEngine builds a ledger engine on top of a storage backend. notifier
// may be nil.
func NewEngine(backend storage.Backend, notifier notification.Notifier, logger *slog.Logger) *Engine {
	return &Engine{backend: backend, notifier: notifier, logger: logger}
}

// CreateInput carries a requested transaction. Amount is an exact decimal
// string; Actor is the authenticated user's identifier for audit fields.
type CreateInput struct {
	Type         string
	Amount       string
	FromWalletID int64
	ToWalletID   *int64
	Actor        string
}

// CreateTransaction validates the request, applies the balance effect and
// persists the record, all within one atomic unit of work. On any failure
// nothing is persisted.
func (e *Engine) CreateTransaction(ctx context.Context, in CreateInput) (transaction.Transaction, error) {
	req, err := validateCreate(in)
	if err != nil {
		e.logger.Warn("transaction rejected", slog.String("reason", err.Error()))
		return transaction.Transaction{}, err
	}

	var created transaction.Transaction
	err = e.backend.WithinTx(ctx, func(uow storage.UnitOfWork) error {
		locked, err := lockWallets(ctx, uow, req.walletIDs())
		if err != nil {
			return err
		}

		if req.typ == transaction.TypeTransfer {
			// Sufficiency is checked against the just-locked balance, never
			// a read taken before locking.
			source := locked[req.fromWalletID]
			if source.Balance.Cmp(req.amount) < 0 {
				return apperr.Newf(apperr.KindInsufficientFunds, "wallet %d has insufficient funds", req.fromWalletID)
			}
		}

		switch req.typ {
		case transaction.TypeDeposit:
			if err := uow.Wallets().ApplyDelta(ctx, req.fromWalletID, req.amount); err != nil {
				return err
			}
		case transaction.TypeTransfer:
			if err := uow.Wallets().ApplyDelta(ctx, req.fromWalletID, req.amount.Neg()); err != nil {
				return err
			}
			if err := uow.Wallets().ApplyDelta(ctx, *req.toWalletID, req.amount); err != nil {
				return err
			}
		}

		created, err = uow.Transactions().Create(ctx, transaction.Transaction{
			Type:         req.typ,
			Amount:       req.amount,
			FromWalletID: req.fromWalletID,
			ToWalletID:   req.toWalletID,
			Status:       transaction.StatusCompleted,
			CreatedAt:    time.Now().UTC(),
			CreatedBy:    in.Actor,
		})
		return err
	})
	if err != nil {
		return transaction.Transaction{}, e.fail("create transaction", err)
	}

	e.logger.Info("transaction completed",
		slog.Int64("transaction_id", created.ID),
		slog.String("type", string(created.Type)),
		slog.String("amount", created.Amount.String()),
	)

	if e.notifier != nil && created.Type == transaction.TypeTransfer {
		if dest, err := e.backend.WalletStore().Get(ctx, *created.ToWalletID); err == nil {
			_ = e.notifier.Send(ctx, notification.Message{
				Kind:        notification.KindTransferReceived,
				Destination: dest.OwnerID,
				Body:        fmt.Sprintf("You received %s from wallet %d", created.Amount, created.FromWalletID),
			})
		}
	}

	return created, nil
}

// ReverseTransaction applies the exact inverse balance effect of a
// COMPLETED transaction and marks it REVERSED, atomically. The status is
// re-read under lock inside the unit of work so a transaction can be
// reversed at most once even under racing requests.
func (e *Engine) ReverseTransaction(ctx context.Context, id int64, actor string) (transaction.Transaction, error) {
	rec, err := e.backend.TransactionStore().Get(ctx, id)
	if err != nil {
		return transaction.Transaction{}, e.fail("reverse transaction", err)
	}
	if !rec.Status.CanTransitionTo(transaction.StatusReversed) {
		return transaction.Transaction{}, apperr.Newf(apperr.KindInvalidTransactionState,
			"transaction %d cannot be reversed from status %s", id, rec.Status)
	}

	err = e.backend.WithinTx(ctx, func(uow storage.UnitOfWork) error {
		if _, err := lockWallets(ctx, uow, reversalWalletIDs(rec)); err != nil {
			return err
		}

		current, err := uow.Transactions().Get(ctx, id)
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(transaction.StatusReversed) {
			return apperr.Newf(apperr.KindInvalidTransactionState,
				"transaction %d cannot be reversed from status %s", id, current.Status)
		}

		switch current.Type {
		case transaction.TypeDeposit:
			if err := uow.Wallets().ApplyDelta(ctx, current.FromWalletID, current.Amount.Neg()); err != nil {
				return err
			}
		case transaction.TypeTransfer:
			if err := uow.Wallets().ApplyDelta(ctx, *current.ToWalletID, current.Amount.Neg()); err != nil {
				return err
			}
			if err := uow.Wallets().ApplyDelta(ctx, current.FromWalletID, current.Amount); err != nil {
				return err
			}
		default:
			return apperr.Newf(apperr.KindInvalidTransactionType, "transaction %d has unknown type %s", id, current.Type)
		}

		return uow.Transactions().SetStatus(ctx, id, transaction.StatusReversed, actor)
	})
	if err != nil {
		return transaction.Transaction{}, e.fail("reverse transaction", err)
	}

	e.logger.Info("transaction reversed", slog.Int64("transaction_id", id), slog.String("actor", actor))

	reversed, err := e.backend.TransactionStore().Get(ctx, id)
	if err != nil {
		return transaction.Transaction{}, e.fail("reverse transaction", err)
	}

	if e.notifier != nil {
		if src, err := e.backend.WalletStore().Get(ctx, reversed.FromWalletID); err == nil {
			_ = e.notifier.Send(ctx, notification.Message{
				Kind:        notification.KindTransactionReversed,
				Destination: src.OwnerID,
				Body:        fmt.Sprintf("Transaction %d for %s was reversed", reversed.ID, reversed.Amount),
			})
		}
	}

	return reversed, nil
}

// GetTransaction fetches a transaction by id.
func (e *Engine) GetTransaction(ctx context.Context, id int64) (transaction.Transaction, error) {
	return e.backend.TransactionStore().Get(ctx, id)
}

// ListTransactions returns every transaction ordered by ascending id.
func (e *Engine) ListTransactions(ctx context.Context) ([]transaction.Transaction, error) {
	return e.backend.TransactionStore().ListAll(ctx)
}

// ListTransactionsByWallet returns the transactions initiated from the
// given wallet, ordered by ascending id.
func (e *Engine) ListTransactionsByWallet(ctx context.Context, walletID int64) ([]transaction.Transaction, error) {
	return e.backend.TransactionStore().ListByWallet(ctx, walletID)
}

// lockWallets acquires the wallets in ascending-id order and verifies each
// exists and is not soft-deleted. The fixed order is load-bearing: every
// code path locking more than one wallet must use it or opposing transfers
// can deadlock.
func lockWallets(ctx context.Context, uow storage.UnitOfWork, ids []int64) (map[int64]wallet.Wallet, error) {
	locked := make(map[int64]wallet.Wallet, len(ids))
	for _, id := range ids {
		w, err := uow.Wallets().LockAndGet(ctx, id)
		if err != nil {
			return nil, err
		}
		locked[id] = w
	}
	return locked, nil
}

func reversalWalletIDs(rec transaction.Transaction) []int64 {
	if rec.Type == transaction.TypeTransfer && rec.ToWalletID != nil {
		return sortedPair(rec.FromWalletID, *rec.ToWalletID)
	}
	return []int64{rec.FromWalletID}
}

// fail normalizes errors crossing the engine boundary: typed outcomes pass
// through, anything else becomes an opaque internal failure.
func (e *Engine) fail(op string, err error) error {
	var typed *apperr.Error
	if errors.As(err, &typed) {
		if typed.Kind == apperr.KindInternal || typed.Kind == apperr.KindLockTimeout {
			e.logger.Error(op, slog.Any("error", err))
		}
		return typed
	}
	e.logger.Error(op, slog.Any("error", err))
	return apperr.Internal(err)
}
