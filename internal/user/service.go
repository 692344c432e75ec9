package user

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidInput covers malformed registration or update requests.
var ErrInvalidInput = errors.New("invalid input")

// Service manages user lifecycle. It never touches wallet balances.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a user service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// CreateInput captures data required to register a user.
type CreateInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Actor    string
}

// Create registers a user with a bcrypt-hashed password.
func (s *Service) Create(ctx context.Context, in CreateInput) (User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if in.Name == "" || email == "" || !strings.Contains(email, "@") {
		return User{}, ErrInvalidInput
	}
	if len(in.Password) < 8 {
		return User{}, ErrInvalidInput
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	role := in.Role
	if role == "" {
		role = RoleUser
	}

	created, err := s.repo.Create(ctx, User{
		Name:         in.Name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now().UTC(),
		CreatedBy:    in.Actor,
	})
	if err != nil {
		return User{}, err
	}

	s.logger.Info("user created", slog.Int64("user_id", created.ID), slog.String("email", created.Email))
	return created, nil
}

// Authenticate verifies the email/password pair.
func (s *Service) Authenticate(ctx context.Context, email, password string) (User, error) {
	u, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return User{}, err
	}
	if u.Blocked {
		return User{}, errors.New("user is blocked")
	}
	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return User{}, errors.New("invalid credentials")
	}
	return u, nil
}

// Get fetches a user by id.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns all live users.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// UpdateInput captures mutable profile fields.
type UpdateInput struct {
	Name    string
	Blocked *bool
	Actor   string
}

// Update rewrites profile fields with audit attribution.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (User, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if in.Name != "" {
		current.Name = in.Name
	}
	if in.Blocked != nil {
		current.Blocked = *in.Blocked
	}
	current.UpdatedBy = in.Actor
	return s.repo.Update(ctx, current)
}

// Delete soft-deletes a user.
func (s *Service) Delete(ctx context.Context, id int64, actor string) error {
	if err := s.repo.SoftDelete(ctx, id, actor); err != nil {
		return err
	}
	s.logger.Info("user deleted", slog.Int64("user_id", id), slog.String("actor", actor))
	return nil
}
