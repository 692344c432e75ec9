package user

import (
	"context"
	"errors"
	"testing"

	"github.com/atlas-pay/atlas_pay/internal/logging"
)

func TestCreateAndAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepository(), logging.Discard())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{
		Name: "Alice", Email: "Alice@Example.com", Password: "s3cret-pass", Actor: "system",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.Email != "alice@example.com" {
		t.Fatalf("email not normalized, got %s", created.Email)
	}
	if created.Role != RoleUser {
		t.Fatalf("expected default role %s, got %s", RoleUser, created.Role)
	}
	if len(created.PasswordHash) == 0 {
		t.Fatalf("password hash not stored")
	}

	authed, err := svc.Authenticate(ctx, "alice@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != created.ID {
		t.Fatalf("expected user %d, got %d", created.ID, authed.ID)
	}

	if _, err := svc.Authenticate(ctx, "alice@example.com", "wrong-pass"); err == nil {
		t.Fatalf("expected invalid credentials error")
	}
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(NewMemoryRepository(), logging.Discard())
	ctx := context.Background()

	cases := []CreateInput{
		{Name: "", Email: "a@b.com", Password: "longenough"},
		{Name: "A", Email: "", Password: "longenough"},
		{Name: "A", Email: "not-an-email", Password: "longenough"},
		{Name: "A", Email: "a@b.com", Password: "short"},
	}
	for _, in := range cases {
		if _, err := svc.Create(ctx, in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", in, err)
		}
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc := NewService(NewMemoryRepository(), logging.Discard())
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{Name: "A", Email: "a@b.com", Password: "longenough"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{Name: "B", Email: "A@B.com", Password: "longenough"}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestBlockedUserCannotAuthenticate(t *testing.T) {
	svc := NewService(NewMemoryRepository(), logging.Discard())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "A", Email: "a@b.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	blocked := true
	if _, err := svc.Update(ctx, created.ID, UpdateInput{Blocked: &blocked, Actor: "admin"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := svc.Authenticate(ctx, "a@b.com", "longenough"); err == nil {
		t.Fatalf("expected blocked user to fail authentication")
	}
}

func TestSoftDeleteHidesUser(t *testing.T) {
	svc := NewService(NewMemoryRepository(), logging.Discard())
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateInput{Name: "A", Email: "a@b.com", Password: "longenough"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.Delete(ctx, created.ID, "admin"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	users, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("deleted user still listed")
	}
}
