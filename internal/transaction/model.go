package transaction

import (
	"time"

	"github.com/atlas-pay/atlas_pay/internal/money"
)

// Type distinguishes the two supported money movements.
type Type string

const (
	TypeDeposit  Type = "DEPOSIT"
	TypeTransfer Type = "TRANSFER"
)

// Valid reports whether t is a known transaction type.
func (t Type) Valid() bool {
	return t == TypeDeposit || t == TypeTransfer
}

// Status is the lifecycle state of a transaction. It only ever moves
// forward: PENDING -> COMPLETED -> REVERSED.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusReversed  Status = "REVERSED"
)

// CanTransitionTo reports whether the state machine allows moving from s
// to next.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusPending:
		return next == StatusCompleted
	case StatusCompleted:
		return next == StatusReversed
	default:
		return false
	}
}

// Transaction records a single balance movement. Amount never changes after
// creation; only Status is mutable, and only through the ledger engine.
type Transaction struct {
	ID           int64        `json:"id"`
	Type         Type         `json:"type"`
	Amount       money.Amount `json:"amount"`
	FromWalletID int64        `json:"from_wallet_id"`
	ToWalletID   *int64       `json:"to_wallet_id,omitempty"`
	Status       Status       `json:"status"`
	ReversalID   *int64       `json:"reversal_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	CreatedBy    string       `json:"created_by"`
	UpdatedAt    *time.Time   `json:"updated_at,omitempty"`
	UpdatedBy    string       `json:"updated_by,omitempty"`
	DeletedAt    *time.Time   `json:"deleted_at,omitempty"`
	DeletedBy    string       `json:"deleted_by,omitempty"`
	IsDeleted    bool         `json:"is_deleted"`
}
