package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/atlas-pay/atlas_pay/internal/apperr"
	"github.com/atlas-pay/atlas_pay/internal/money"
	"github.com/atlas-pay/atlas_pay/internal/transaction"
	"github.com/atlas-pay/atlas_pay/internal/wallet"
)

// Memory is a concurrency-safe in-memory Backend used by unit tests and by
// the server when no database is configured. Per-wallet locks are modeled
// as one-slot channels so acquisition can be bounded by a timeout. A unit
// of work writes into private working copies and publishes them to the
// shared maps only at commit, so readers outside it never observe
// uncommitted state.
type Memory struct {
	mu           sync.Mutex
	wallets      map[int64]wallet.Wallet
	txs          map[int64]transaction.Transaction
	locks        map[int64]chan struct{}
	nextWalletID int64
	nextTxID     int64
	lockTimeout  time.Duration
}

// NewMemory creates an empty in-memory backend.
func NewMemory(lockTimeout time.Duration) *Memory {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &Memory{
		wallets:      make(map[int64]wallet.Wallet),
		txs:          make(map[int64]transaction.Transaction),
		locks:        make(map[int64]chan struct{}),
		nextWalletID: 1,
		nextTxID:     1,
		lockTimeout:  lockTimeout,
	}
}

// WalletStore returns the read/CRUD wallet store view.
func (m *Memory) WalletStore() wallet.Store { return memWalletStore{m} }

// TransactionStore returns the read-only transaction log view.
func (m *Memory) TransactionStore() transaction.Store { return memTxLog{m} }

// WithinTx runs fn against a buffered unit of work. Its writes land in the
// shared maps only when fn returns nil; on error the buffers are discarded
// untouched. Wallet locks are released either way.
func (m *Memory) WithinTx(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := &memUnitOfWork{
		m:       m,
		wallets: make(map[int64]wallet.Wallet),
		txs:     make(map[int64]transaction.Transaction),
	}

	err := fn(uow)
	if err == nil {
		m.mu.Lock()
		uow.commitLocked()
		m.mu.Unlock()
	}

	uow.releaseLocks()
	return err
}

type memUnitOfWork struct {
	m      *Memory
	locked []int64

	// Working copies, keyed by id. Readers outside the unit of work only
	// ever see the shared maps, which commitLocked overwrites in one step.
	wallets map[int64]wallet.Wallet
	txs     map[int64]transaction.Transaction
}

func (u *memUnitOfWork) Wallets() wallet.TxStore           { return u }
func (u *memUnitOfWork) Transactions() transaction.TxStore { return u }

func (u *memUnitOfWork) holds(id int64) bool {
	for _, held := range u.locked {
		if held == id {
			return true
		}
	}
	return false
}

// LockAndGet acquires the wallet's exclusive lock (bounded by the backend
// lock timeout) and returns its current state, reflecting any writes made
// earlier in the same unit of work. The lock stays held until the unit of
// work ends.
func (u *memUnitOfWork) LockAndGet(ctx context.Context, id int64) (wallet.Wallet, error) {
	m := u.m

	m.mu.Lock()
	ch, ok := m.locks[id]
	if !ok {
		ch = make(chan struct{}, 1)
		m.locks[id] = ch
	}
	held := u.holds(id)
	m.mu.Unlock()

	if !held {
		select {
		case ch <- struct{}{}:
			u.locked = append(u.locked, id)
		case <-time.After(m.lockTimeout):
			return wallet.Wallet{}, apperr.Newf(apperr.KindLockTimeout, "wallet %d lock not acquired in time", id)
		case <-ctx.Done():
			return wallet.Wallet{}, apperr.Wrap(apperr.KindInternal, "unit of work canceled", ctx.Err())
		}
	}

	if w, ok := u.wallets[id]; ok {
		return w, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wallets[id]
	if !ok || w.IsDeleted {
		return wallet.Wallet{}, apperr.Newf(apperr.KindWalletNotFound, "wallet %d not found", id)
	}
	return w, nil
}

// ApplyDelta mutates the locked wallet's working copy, refusing a negative
// result. Nothing is visible outside the unit of work until commit.
func (u *memUnitOfWork) ApplyDelta(_ context.Context, id int64, delta money.Amount) error {
	if !u.holds(id) {
		return apperr.Newf(apperr.KindInternal, "wallet %d mutated without a lock", id)
	}

	w, ok := u.wallets[id]
	if !ok {
		m := u.m
		m.mu.Lock()
		w, ok = m.wallets[id]
		m.mu.Unlock()
		if !ok || w.IsDeleted {
			return apperr.Newf(apperr.KindWalletNotFound, "wallet %d not found", id)
		}
	}

	next := w.Balance.Add(delta)
	if next.IsNegative() {
		return apperr.Newf(apperr.KindInsufficientFunds, "wallet %d has insufficient funds", id)
	}

	now := time.Now().UTC()
	w.Balance = next
	w.UpdatedAt = &now
	u.wallets[id] = w
	return nil
}

// Create buffers a transaction record, assigning the next ascending id. An
// aborted unit of work burns the id, like a database sequence would.
func (u *memUnitOfWork) Create(_ context.Context, rec transaction.Transaction) (transaction.Transaction, error) {
	m := u.m
	m.mu.Lock()
	rec.ID = m.nextTxID
	m.nextTxID++
	m.mu.Unlock()

	u.txs[rec.ID] = rec
	return rec, nil
}

// Get re-reads a record within the unit of work, seeing its own writes.
func (u *memUnitOfWork) Get(_ context.Context, id int64) (transaction.Transaction, error) {
	if rec, ok := u.txs[id]; ok {
		return rec, nil
	}

	m := u.m
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.txs[id]
	if !ok {
		return transaction.Transaction{}, apperr.Newf(apperr.KindTransactionNotFound, "transaction %d not found", id)
	}
	return rec, nil
}

// SetStatus transitions a record's status in the unit of work's buffer.
func (u *memUnitOfWork) SetStatus(_ context.Context, id int64, next transaction.Status, actor string) error {
	rec, ok := u.txs[id]
	if !ok {
		m := u.m
		m.mu.Lock()
		rec, ok = m.txs[id]
		m.mu.Unlock()
		if !ok {
			return apperr.Newf(apperr.KindTransactionNotFound, "transaction %d not found", id)
		}
	}

	now := time.Now().UTC()
	rec.Status = next
	rec.UpdatedAt = &now
	rec.UpdatedBy = actor
	u.txs[id] = rec
	return nil
}

// commitLocked publishes every buffered write to the shared maps. Caller
// holds m.mu, so readers see the whole unit of work or none of it.
func (u *memUnitOfWork) commitLocked() {
	for id, w := range u.wallets {
		u.m.wallets[id] = w
	}
	for id, rec := range u.txs {
		u.m.txs[id] = rec
	}
}

func (u *memUnitOfWork) releaseLocks() {
	u.m.mu.Lock()
	defer u.m.mu.Unlock()
	for _, id := range u.locked {
		<-u.m.locks[id]
	}
	u.locked = nil
}

type memWalletStore struct {
	m *Memory
}

func (s memWalletStore) Create(_ context.Context, ownerID int64, actor string) (wallet.Wallet, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()

	w := wallet.Wallet{
		ID:        m.nextWalletID,
		OwnerID:   ownerID,
		Balance:   money.Zero(),
		CreatedAt: time.Now().UTC(),
		CreatedBy: actor,
	}
	m.nextWalletID++
	m.wallets[w.ID] = w
	return w, nil
}

func (s memWalletStore) Get(_ context.Context, id int64) (wallet.Wallet, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.wallets[id]
	if !ok || w.IsDeleted {
		return wallet.Wallet{}, apperr.Newf(apperr.KindWalletNotFound, "wallet %d not found", id)
	}
	return w, nil
}

func (s memWalletStore) List(_ context.Context) ([]wallet.Wallet, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	return s.collectLocked(func(wallet.Wallet) bool { return true }), nil
}

func (s memWalletStore) ListByOwner(_ context.Context, ownerID int64) ([]wallet.Wallet, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	return s.collectLocked(func(w wallet.Wallet) bool { return w.OwnerID == ownerID }), nil
}

func (s memWalletStore) collectLocked(keep func(wallet.Wallet) bool) []wallet.Wallet {
	wallets := []wallet.Wallet{}
	for _, w := range s.m.wallets {
		if !w.IsDeleted && keep(w) {
			wallets = append(wallets, w)
		}
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].ID < wallets[j].ID })
	return wallets
}

func (s memWalletStore) SoftDelete(_ context.Context, id int64, actor string) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.wallets[id]
	if !ok || w.IsDeleted {
		return apperr.Newf(apperr.KindWalletNotFound, "wallet %d not found", id)
	}

	now := time.Now().UTC()
	w.IsDeleted = true
	w.DeletedAt = &now
	w.DeletedBy = actor
	m.wallets[id] = w
	return nil
}

type memTxLog struct {
	m *Memory
}

func (s memTxLog) Get(_ context.Context, id int64) (transaction.Transaction, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.txs[id]
	if !ok {
		return transaction.Transaction{}, apperr.Newf(apperr.KindTransactionNotFound, "transaction %d not found", id)
	}
	return rec, nil
}

func (s memTxLog) ListAll(_ context.Context) ([]transaction.Transaction, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	return s.collectLocked(func(transaction.Transaction) bool { return true }), nil
}

func (s memTxLog) ListByWallet(_ context.Context, walletID int64) ([]transaction.Transaction, error) {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	return s.collectLocked(func(rec transaction.Transaction) bool { return rec.FromWalletID == walletID }), nil
}

func (s memTxLog) collectLocked(keep func(transaction.Transaction) bool) []transaction.Transaction {
	recs := []transaction.Transaction{}
	for _, rec := range s.m.txs {
		if keep(rec) {
			recs = append(recs, rec)
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].ID < recs[j].ID })
	return recs
}
