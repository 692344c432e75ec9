package wallet

import (
	"context"
	"log/slog"
	"time"

	"github.com/atlas-pay/atlas_pay/internal/money"
)

// Service exposes wallet CRUD. It reads balances but never writes them;
// balance mutation is the ledger engine's job alone.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService builds a wallet service.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Create provisions a wallet with a zero balance for the given owner.
func (s *Service) Create(ctx context.Context, ownerID int64, actor string) (Wallet, error) {
	w, err := s.store.Create(ctx, ownerID, actor)
	if err != nil {
		return Wallet{}, err
	}
	s.logger.Info("wallet created", slog.Int64("wallet_id", w.ID), slog.Int64("owner_id", ownerID))
	return w, nil
}

// Get retrieves a wallet; soft-deleted wallets are invisible.
func (s *Service) Get(ctx context.Context, id int64) (Wallet, error) {
	return s.store.Get(ctx, id)
}

// List returns all live wallets.
func (s *Service) List(ctx context.Context) ([]Wallet, error) {
	return s.store.List(ctx)
}

// ListByOwner returns the live wallets owned by one user. An owner without
// wallets yields an empty list.
func (s *Service) ListByOwner(ctx context.Context, ownerID int64) ([]Wallet, error) {
	return s.store.ListByOwner(ctx, ownerID)
}

// Delete soft-deletes a wallet. Already-recorded transactions keep
// referencing it; it simply stops being usable by the ledger.
func (s *Service) Delete(ctx context.Context, id int64, actor string) error {
	if err := s.store.SoftDelete(ctx, id, actor); err != nil {
		return err
	}
	s.logger.Info("wallet deleted", slog.Int64("wallet_id", id), slog.String("actor", actor))
	return nil
}

// Balance captures a wallet's available funds at a point in time.
type Balance struct {
	WalletID int64        `json:"wallet_id"`
	Amount   money.Amount `json:"balance"`
	AsOf     time.Time    `json:"as_of"`
}

// Balance returns the wallet's current balance.
func (s *Service) Balance(ctx context.Context, id int64) (Balance, error) {
	w, err := s.store.Get(ctx, id)
	if err != nil {
		return Balance{}, err
	}
	return Balance{WalletID: w.ID, Amount: w.Balance, AsOf: time.Now().UTC()}, nil
}
