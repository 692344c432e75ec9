package transaction

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

const txColumns = `id, type, amount, from_wallet_id, to_wallet_id, status, reversal_id, created_at, created_by, updated_at, updated_by, deleted_at, deleted_by, is_deleted`

// PostgresStore reads the transaction log from PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore builds a transaction store backed by PostgreSQL.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Get fetches a transaction by id.
func (s *PostgresStore) Get(ctx context.Context, id int64) (Transaction, error) {
	row := s.db.QueryRow(ctx, `SELECT `+txColumns+` FROM transactions WHERE id = $1`, id)
	rec, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, apperr.Newf(apperr.KindTransactionNotFound, "transaction %d not found", id)
		}
		return Transaction{}, apperr.Wrap(apperr.KindInternal, "get transaction", err)
	}
	return rec, nil
}

// ListAll returns every transaction ordered by ascending id.
func (s *PostgresStore) ListAll(ctx context.Context) ([]Transaction, error) {
	return s.query(ctx, `SELECT `+txColumns+` FROM transactions ORDER BY id ASC`)
}

// ListByWallet returns transactions whose from_wallet_id matches,
// ordered by ascending id.
func (s *PostgresStore) ListByWallet(ctx context.Context, walletID int64) ([]Transaction, error) {
	return s.query(ctx, `SELECT `+txColumns+` FROM transactions WHERE from_wallet_id = $1 ORDER BY id ASC`, walletID)
}

func (s *PostgresStore) query(ctx context.Context, sql string, args ...any) ([]Transaction, error) {
	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list transactions", err)
	}
	defer rows.Close()

	recs := []Transaction{}
	for rows.Next() {
		rec, err := scanTransaction(rows)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "scan transaction", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "list transactions", err)
	}
	return recs, nil
}

// PgTxStore is the unit-of-work view of the transaction log, bound to an
// open pgx transaction.
type PgTxStore struct {
	tx pgx.Tx
}

// NewPgTxStore wraps a transaction into a TxStore.
func NewPgTxStore(tx pgx.Tx) *PgTxStore {
	return &PgTxStore{tx: tx}
}

// Create inserts the record as part of the enclosing unit of work.
func (s *PgTxStore) Create(ctx context.Context, rec Transaction) (Transaction, error) {
	row := s.tx.QueryRow(ctx, `INSERT INTO transactions (type, amount, from_wallet_id, to_wallet_id, status, created_at, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+txColumns,
		rec.Type, rec.Amount.Decimal(), rec.FromWalletID, rec.ToWalletID, rec.Status, rec.CreatedAt, rec.CreatedBy)
	return scanTransaction(row)
}

// Get re-reads the record within the unit of work.
func (s *PgTxStore) Get(ctx context.Context, id int64) (Transaction, error) {
	row := s.tx.QueryRow(ctx, `SELECT `+txColumns+` FROM transactions WHERE id = $1`, id)
	rec, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, apperr.Newf(apperr.KindTransactionNotFound, "transaction %d not found", id)
		}
		return Transaction{}, err
	}
	return rec, nil
}

// SetStatus transitions the record's status.
func (s *PgTxStore) SetStatus(ctx context.Context, id int64, next Status, actor string) error {
	cmd, err := s.tx.Exec(ctx, `UPDATE transactions SET status = $1, updated_at = $2, updated_by = $3 WHERE id = $4`,
		next, time.Now().UTC(), actor, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.Newf(apperr.KindTransactionNotFound, "transaction %d not found", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (Transaction, error) {
	var (
		rec    Transaction
		amount decimal.Decimal
	)
	err := row.Scan(&rec.ID, &rec.Type, &amount, &rec.FromWalletID, &rec.ToWalletID,
		&rec.Status, &rec.ReversalID, &rec.CreatedAt, &rec.CreatedBy,
		&rec.UpdatedAt, &rec.UpdatedBy, &rec.DeletedAt, &rec.DeletedBy, &rec.IsDeleted)
	if err != nil {
		return Transaction{}, err
	}
	rec.Amount = money.FromDecimal(amount)
	return rec, nil
}
