package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atlas-pay/atlas_pay/internal/apperr"
	"github.com/atlas-pay/atlas_pay/internal/money"
	"github.com/atlas-pay/atlas_pay/internal/transaction"
)

func TestMemory_RollbackOnError(t *testing.T) {
	m := NewMemory(time.Second)
	ctx := context.Background()

	w, err := m.WalletStore().Create(ctx, 1, "tester")
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	SeedBalance(m, w.ID, money.MustParse("50.00"))

	boom := errors.New("boom")
	err = m.WithinTx(ctx, func(uow UnitOfWork) error {
		if _, err := uow.Wallets().LockAndGet(ctx, w.ID); err != nil {
			return err
		}
		if err := uow.Wallets().ApplyDelta(ctx, w.ID, money.MustParse("25.00")); err != nil {
			return err
		}
		if _, err := uow.Transactions().Create(ctx, transaction.Transaction{
			Type:         transaction.TypeDeposit,
			Amount:       money.MustParse("25.00"),
			FromWalletID: w.ID,
			Status:       transaction.StatusCompleted,
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := m.WalletStore().Get(ctx, w.ID)
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if got.Balance.String() != "50.00" {
		t.Fatalf("balance not rolled back, got %s", got.Balance)
	}
	recs, err := m.TransactionStore().ListAll(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 0 {
		t.Fatalf("created record survived rollback, got %d", len(recs))
	}
}

func TestMemory_UncommittedWritesInvisibleOutsideUnitOfWork(t *testing.T) {
	m := NewMemory(time.Second)
	ctx := context.Background()

	w, err := m.WalletStore().Create(ctx, 1, "tester")
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	SeedBalance(m, w.ID, money.MustParse("50.00"))

	boom := errors.New("boom")
	err = m.WithinTx(ctx, func(uow UnitOfWork) error {
		if _, err := uow.Wallets().LockAndGet(ctx, w.ID); err != nil {
			return err
		}
		if err := uow.Wallets().ApplyDelta(ctx, w.ID, money.MustParse("100.00")); err != nil {
			return err
		}
		if _, err := uow.Transactions().Create(ctx, transaction.Transaction{
			Type:         transaction.TypeDeposit,
			Amount:       money.MustParse("100.00"),
			FromWalletID: w.ID,
			Status:       transaction.StatusCompleted,
		}); err != nil {
			return err
		}

		// A reader outside the unit of work must still see committed state.
		outside, err := m.WalletStore().Get(ctx, w.ID)
		if err != nil {
			t.Fatalf("outside get: %v", err)
		}
		if outside.Balance.String() != "50.00" {
			t.Fatalf("uncommitted balance %s leaked outside the unit of work", outside.Balance)
		}
		recs, err := m.TransactionStore().ListAll(ctx)
		if err != nil {
			t.Fatalf("outside list: %v", err)
		}
		if len(recs) != 0 {
			t.Fatalf("uncommitted record leaked outside the unit of work")
		}

		// The unit of work itself sees its own writes.
		inside, err := uow.Wallets().LockAndGet(ctx, w.ID)
		if err != nil {
			t.Fatalf("inside get: %v", err)
		}
		if inside.Balance.String() != "150.00" {
			t.Fatalf("unit of work lost its own write, balance %s", inside.Balance)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := m.WalletStore().Get(ctx, w.ID)
	if err != nil {
		t.Fatalf("get after abort: %v", err)
	}
	if got.Balance.String() != "50.00" {
		t.Fatalf("balance after abort %s, want 50.00", got.Balance)
	}
}

func TestMemory_StatusRollback(t *testing.T) {
	m := NewMemory(time.Second)
	ctx := context.Background()

	var id int64
	err := m.WithinTx(ctx, func(uow UnitOfWork) error {
		rec, err := uow.Transactions().Create(ctx, transaction.Transaction{
			Type:         transaction.TypeDeposit,
			Amount:       money.MustParse("10.00"),
			FromWalletID: 1,
			Status:       transaction.StatusCompleted,
		})
		id = rec.ID
		return err
	})
	if err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	boom := errors.New("boom")
	err = m.WithinTx(ctx, func(uow UnitOfWork) error {
		if err := uow.Transactions().SetStatus(ctx, id, transaction.StatusReversed, "tester"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	rec, err := m.TransactionStore().Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Status != transaction.StatusCompleted {
		t.Fatalf("status not rolled back, got %s", rec.Status)
	}
}

func TestMemory_LockTimeout(t *testing.T) {
	m := NewMemory(100 * time.Millisecond)
	ctx := context.Background()

	w, err := m.WalletStore().Create(ctx, 1, "tester")
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}

	holding := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = m.WithinTx(ctx, func(uow UnitOfWork) error {
			if _, err := uow.Wallets().LockAndGet(ctx, w.ID); err != nil {
				return err
			}
			close(holding)
			<-release
			return nil
		})
	}()

	<-holding
	err = m.WithinTx(ctx, func(uow UnitOfWork) error {
		_, err := uow.Wallets().LockAndGet(ctx, w.ID)
		return err
	})
	close(release)
	if !apperr.IsKind(err, apperr.KindLockTimeout) {
		t.Fatalf("expected LOCK_TIMEOUT, got %v", err)
	}
}

func TestMemory_LockAndGetReacquireIsIdempotent(t *testing.T) {
	m := NewMemory(100 * time.Millisecond)
	ctx := context.Background()

	w, err := m.WalletStore().Create(ctx, 1, "tester")
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}

	err = m.WithinTx(ctx, func(uow UnitOfWork) error {
		if _, err := uow.Wallets().LockAndGet(ctx, w.ID); err != nil {
			return err
		}
		// A second acquisition within the same unit of work must not block.
		_, err := uow.Wallets().LockAndGet(ctx, w.ID)
		return err
	})
	if err != nil {
		t.Fatalf("reacquire failed: %v", err)
	}
}

func TestMemory_DeletedWalletNotFound(t *testing.T) {
	m := NewMemory(time.Second)
	ctx := context.Background()

	w, err := m.WalletStore().Create(ctx, 1, "tester")
	if err != nil {
		t.Fatalf("create wallet: %v", err)
	}
	if err := m.WalletStore().SoftDelete(ctx, w.ID, "tester"); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if _, err := m.WalletStore().Get(ctx, w.ID); !apperr.IsKind(err, apperr.KindWalletNotFound) {
		t.Fatalf("expected WALLET_NOT_FOUND from Get, got %v", err)
	}

	err = m.WithinTx(ctx, func(uow UnitOfWork) error {
		_, err := uow.Wallets().LockAndGet(ctx, w.ID)
		return err
	})
	if !apperr.IsKind(err, apperr.KindWalletNotFound) {
		t.Fatalf("expected WALLET_NOT_FOUND from LockAndGet, got %v", err)
	}

	wallets, err := m.WalletStore().List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(wallets) != 0 {
		t.Fatalf("deleted wallet still listed")
	}
}

func TestMemory_AscendingIDs(t *testing.T) {
	m := NewMemory(time.Second)
	ctx := context.Background()

	first, _ := m.WalletStore().Create(ctx, 1, "tester")
	second, _ := m.WalletStore().Create(ctx, 2, "tester")
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first.ID, second.ID)
	}
}
