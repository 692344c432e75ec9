package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atlas-pay/atlas_pay/internal/apperr"
	"github.com/atlas-pay/atlas_pay/internal/money"
)

const walletColumns = `id, owner_id, balance, created_at, created_by, updated_at, updated_by, deleted_at, deleted_by, is_deleted`

// PostgresStore persists wallets in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a wallet store backed by PostgreSQL.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Create inserts a wallet with a zero balance.
func (s *PostgresStore) Create(ctx context.Context, ownerID int64, actor string) (Wallet, error) {
	row := s.db.QueryRow(ctx, `INSERT INTO wallets (owner_id, balance, created_at, created_by)
        VALUES ($1, $2, $3, $4) RETURNING `+walletColumns,
		ownerID, money.Zero().String(), time.Now().UTC(), actor)
	w, err := scanWallet(row)
	if err != nil {
		return Wallet{}, apperr.Wrap(apperr.KindInternal, "create wallet", err)
	}
	return w, nil
}

// Get fetches a wallet, treating soft-deleted rows as absent.
func (s *PostgresStore) Get(ctx context.Context, id int64) (Wallet, error) {
	row := s.db.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1 AND is_deleted = FALSE`, id)
	w, err := scanWallet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, apperr.Newf(apperr.KindWalletNotFound, "wallet %d not found", id)
		}
		return Wallet{}, apperr.Wrap(apperr.KindInternal, "get wallet", err)
	}
	return w, nil
}

// List returns all live wallets ordered by ascending id.
func (s *PostgresStore) List(ctx context.Context) ([]Wallet, error) {
	return s.query(ctx, `SELECT `+walletColumns+` FROM wallets WHERE is_deleted = FALSE ORDER BY id ASC`)
}

// ListByOwner returns the live wallets belonging to one user, ordered by
// ascending id.
func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID int64) ([]Wallet, error) {
	return s.query(ctx, `SELECT `+walletColumns+` FROM wallets WHERE owner_id = $1 AND is_deleted = FALSE ORDER BY id ASC`, ownerID)
}

func (s *PostgresStore) query(ctx context.Context, sql string, args ...any) ([]Wallet, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list wallets", err)
	}
	defer rows.Close()

	wallets := []Wallet{}
	for rows.Next() {
		w, err := scanWallet(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "scan wallet", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list wallets", err)
	}
	return wallets, nil
}

// SoftDelete marks the wallet deleted without removing the row.
func (s *PostgresStore) SoftDelete(ctx context.Context, id int64, actor string) error {
	cmd, err := s.db.Exec(ctx, `UPDATE wallets SET is_deleted = TRUE, deleted_at = $1, deleted_by = $2
        WHERE id = $3 AND is_deleted = FALSE`, time.Now().UTC(), actor, id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "delete wallet", err)
	}
	if cmd.RowsAffected() == 0 {
		return apperr.Newf(apperr.KindWalletNotFound, "wallet %d not found", id)
	}
	return nil
}

// PgTxStore is the unit-of-work view of the wallet table, bound to an open
// pgx transaction. Row locks taken here live until that transaction ends.
type PgTxStore struct {
	tx pgx.Tx
}

// NewPgTxStore wraps a transaction into a TxStore.
func NewPgTxStore(tx pgx.Tx) *PgTxStore {
	return &PgTxStore{tx: tx}
}

// LockAndGet takes a FOR UPDATE row lock and returns the current state.
func (s *PgTxStore) LockAndGet(ctx context.Context, id int64) (Wallet, error) {
	row := s.tx.QueryRow(ctx, `SELECT `+walletColumns+` FROM wallets WHERE id = $1 FOR UPDATE`, id)
	w, err := scanWallet(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, apperr.Newf(apperr.KindWalletNotFound, "wallet %d not found", id)
		}
		return Wallet{}, err
	}
	if w.IsDeleted {
		return Wallet{}, apperr.Newf(apperr.KindWalletNotFound, "wallet %d not found", id)
	}
	return w, nil
}

// ApplyDelta adjusts the locked balance, refusing to let it go negative in
// the same statement that writes it.
func (s *PgTxStore) ApplyDelta(ctx context.Context, id int64, delta money.Amount) error {
	cmd, err := s.tx.Exec(ctx, `UPDATE wallets SET balance = balance + $1, updated_at = $2
        WHERE id = $3 AND balance + $1 >= 0`, delta.Decimal(), time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.Newf(apperr.KindInsufficientFunds, "wallet %d has insufficient funds", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWallet(row rowScanner) (Wallet, error) {
	var (
		w       Wallet
		balance decimal.Decimal
	)
	err := row.Scan(&w.ID, &w.OwnerID, &balance, &w.CreatedAt, &w.CreatedBy,
		&w.UpdatedAt, &w.UpdatedBy, &w.DeletedAt, &w.DeletedBy, &w.IsDeleted)
	if err != nil {
		return Wallet{}, err
	}
	w.Balance = money.FromDecimal(balance)
	return w, nil
}
