package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a user does not exist or is soft-deleted.
var ErrNotFound = errors.New("user not found")

// ErrEmailTaken is returned when a user with the same email already exists.
var ErrEmailTaken = errors.New("email already registered")

// Repository persists users.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u User) (User, error)
	SoftDelete(ctx context.Context, id int64, actor string) error
}

const userColumns = `id, name, email, password_hash, role, blocked, created_at, created_by, updated_at, updated_by, deleted_at, deleted_by, is_deleted`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed user repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// pgUniqueViolation is the SQLSTATE raised when the email unique index
// rejects a row.
const pgUniqueViolation = "23505"

// Create inserts a new user. A duplicate email surfaces as ErrEmailTaken,
// matching the in-memory repository.
func (r *PostgresRepository) Create(ctx context.Context, u User) (User, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO users (name, email, password_hash, role, blocked, created_at, created_by)
        VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING `+userColumns,
		u.Name, u.Email, u.PasswordHash, u.Role, u.Blocked, u.CreatedAt, u.CreatedBy)
	created, err := scanUser(row)
	if err != nil {
		return User{}, translateCreateError(err)
	}
	return created, nil
}

func translateCreateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrEmailTaken
	}
	return err
}

// FindByID fetches a live user by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id int64) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND is_deleted = FALSE`, id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// FindByEmail fetches a live user by email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 AND is_deleted = FALSE`, email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return u, nil
}

// List returns all live users ordered by ascending id.
func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE is_deleted = FALSE ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update rewrites mutable profile fields.
func (r *PostgresRepository) Update(ctx context.Context, u User) (User, error) {
	row := r.db.QueryRow(ctx, `UPDATE users SET name = $1, blocked = $2, updated_at = $3, updated_by = $4
        WHERE id = $5 AND is_deleted = FALSE RETURNING `+userColumns,
		u.Name, u.Blocked, time.Now().UTC(), u.UpdatedBy, u.ID)
	updated, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return updated, nil
}

// SoftDelete marks the user deleted.
func (r *PostgresRepository) SoftDelete(ctx context.Context, id int64, actor string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET is_deleted = TRUE, deleted_at = $1, deleted_by = $2
        WHERE id = $3 AND is_deleted = FALSE`, time.Now().UTC(), actor, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Blocked,
		&u.CreatedAt, &u.CreatedBy, &u.UpdatedAt, &u.UpdatedBy,
		&u.DeletedAt, &u.DeletedBy, &u.IsDeleted)
	if err != nil {
		return User{}, err
	}
	return u, nil
}
