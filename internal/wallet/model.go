package wallet

import (
	"time"

	"github.com/atlas-pay/atlas_pay/internal/money"
)

// Wallet is a balance-holding account for one user. Balance is only ever
// written by the ledger engine inside a unit of work; every other component
// treats it as read-only.
type Wallet struct {
	ID        int64        `json:"id"`
	OwnerID   int64        `json:"owner_id"`
	Balance   money.Amount `json:"balance"`
	CreatedAt time.Time    `json:"created_at"`
	CreatedBy string       `json:"created_by"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty"`
	UpdatedBy string       `json:"updated_by,omitempty"`
	DeletedAt *time.Time   `json:"deleted_at,omitempty"`
	DeletedBy string       `json:"deleted_by,omitempty"`
	IsDeleted bool         `json:"is_deleted"`
}
