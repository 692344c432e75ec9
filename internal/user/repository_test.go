package user

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestTranslateCreateError(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	if !errors.Is(translateCreateError(dup), ErrEmailTaken) {
		t.Fatalf("unique violation not translated to ErrEmailTaken")
	}

	wrapped := fmt.Errorf("insert user: %w", dup)
	if !errors.Is(translateCreateError(wrapped), ErrEmailTaken) {
		t.Fatalf("wrapped unique violation not translated")
	}

	other := &pgconn.PgError{Code: "23503"}
	if errors.Is(translateCreateError(other), ErrEmailTaken) {
		t.Fatalf("foreign key violation misread as duplicate email")
	}

	plain := errors.New("connection reset")
	if got := translateCreateError(plain); got != plain {
		t.Fatalf("unrelated error rewritten: %v", got)
	}
}
