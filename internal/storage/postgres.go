package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlas-pay/atlas_pay/internal/apperr"
	"github.com/atlas-pay/atlas_pay/internal/transaction"
	"github.com/atlas-pay/atlas_pay/internal/wallet"
)

// pgLockNotAvailable is the SQLSTATE raised when lock_timeout expires.
const pgLockNotAvailable = "55P03"

// Postgres implements Backend on top of a pgx connection pool. Row locks
// (SELECT ... FOR UPDATE) bound by lock_timeout give the per-wallet
// exclusive locks the ledger requires.
type Postgres struct {
	db          *pgxpool.Pool
	lockTimeout time.Duration
}

// NewPostgres builds a Postgres backend. lockTimeout bounds how long a unit
// of work may wait on a wallet row lock before failing with LockTimeout.
func NewPostgres(db *pgxpool.Pool, lockTimeout time.Duration) *Postgres {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &Postgres{db: db, lockTimeout: lockTimeout}
}

// WalletStore returns the read/CRUD wallet store.
func (p *Postgres) WalletStore() wallet.Store {
	return wallet.NewPostgresStore(p.db)
}

// TransactionStore returns the read-only transaction store.
func (p *Postgres) TransactionStore() transaction.Store {
	return transaction.NewPostgresStore(p.db)
}

type pgUnitOfWork struct {
	tx pgx.Tx
}

func (u pgUnitOfWork) Wallets() wallet.TxStore           { return wallet.NewPgTxStore(u.tx) }
func (u pgUnitOfWork) Transactions() transaction.TxStore { return transaction.NewPgTxStore(u.tx) }

// WithinTx runs fn inside a database transaction. Any error aborts the
// transaction so no balance change and no record survive.
func (p *Postgres) WithinTx(ctx context.Context, fn func(uow UnitOfWork) error) error {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "begin unit of work", err)
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if _, err := tx.Exec(ctx, fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", p.lockTimeout.Milliseconds())); err != nil {
		return apperr.Wrap(apperr.KindInternal, "set lock timeout", err)
	}

	if err := fn(pgUnitOfWork{tx: tx}); err != nil {
		return translatePgError(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return apperr.Wrap(apperr.KindInternal, "commit unit of work", err)
	}
	return nil
}

func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgLockNotAvailable {
		return apperr.Wrap(apperr.KindLockTimeout, "wallet lock not acquired in time", err)
	}
	return err
}

// Migrate creates the schema when it does not exist yet. Balances and
// amounts are NUMERIC(20,2); money never touches a float column.
func (p *Postgres) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id BIGSERIAL PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password_hash TEXT NOT NULL,
            role TEXT NOT NULL DEFAULT 'user',
            blocked BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL,
            created_by TEXT NOT NULL DEFAULT '',
            updated_at TIMESTAMPTZ,
            updated_by TEXT NOT NULL DEFAULT '',
            deleted_at TIMESTAMPTZ,
            deleted_by TEXT NOT NULL DEFAULT '',
            is_deleted BOOLEAN NOT NULL DEFAULT FALSE
        )`,
		`CREATE TABLE IF NOT EXISTS wallets (
            id BIGSERIAL PRIMARY KEY,
            owner_id BIGINT NOT NULL REFERENCES users (id),
            balance NUMERIC(20,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
            created_at TIMESTAMPTZ NOT NULL,
            created_by TEXT NOT NULL DEFAULT '',
            updated_at TIMESTAMPTZ,
            updated_by TEXT NOT NULL DEFAULT '',
            deleted_at TIMESTAMPTZ,
            deleted_by TEXT NOT NULL DEFAULT '',
            is_deleted BOOLEAN NOT NULL DEFAULT FALSE
        )`,
		`CREATE TABLE IF NOT EXISTS transactions (
            id BIGSERIAL PRIMARY KEY,
            type TEXT NOT NULL,
            amount NUMERIC(20,2) NOT NULL CHECK (amount > 0),
            from_wallet_id BIGINT NOT NULL REFERENCES wallets (id),
            to_wallet_id BIGINT REFERENCES wallets (id),
            status TEXT NOT NULL,
            reversal_id BIGINT REFERENCES transactions (id),
            created_at TIMESTAMPTZ NOT NULL,
            created_by TEXT NOT NULL DEFAULT '',
            updated_at TIMESTAMPTZ,
            updated_by TEXT NOT NULL DEFAULT '',
            deleted_at TIMESTAMPTZ,
            deleted_by TEXT NOT NULL DEFAULT '',
            is_deleted BOOLEAN NOT NULL DEFAULT FALSE
        )`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_from_wallet ON transactions (from_wallet_id)`,
	}

	for _, stmt := range statements {
		if _, err := p.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
