package ledger

import (
	"github.com/atlas-pay/atlas_pay/internal/apperr"
	"github.com/atlas-pay/atlas_pay/internal/money"
	"github.com/atlas-pay/atlas_pay/internal/transaction"
)

// createRequest is a CreateInput whose shape has been validated.
type createRequest struct {
	typ          transaction.Type
	amount       money.Amount
	fromWalletID int64
	toWalletID   *int64
}

// validateCreate checks everything that can be checked without touching
// storage: type, amount sign and precision, and wallet reference shape.
func validateCreate(in CreateInput) (createRequest, error) {
	typ := transaction.Type(in.Type)
	if !typ.Valid() {
		return createRequest{}, apperr.Newf(apperr.KindInvalidTransactionType, "invalid transaction type %q", in.Type)
	}

	amount, err := money.Parse(in.Amount)
	if err != nil {
		return createRequest{}, err
	}
	if !amount.IsPositive() {
		return createRequest{}, apperr.New(apperr.KindInvalidAmount, "amount must be greater than zero")
	}

	if in.FromWalletID <= 0 {
		return createRequest{}, apperr.New(apperr.KindMissingWalletReference, "from_wallet_id is required")
	}

	switch typ {
	case transaction.TypeDeposit:
		if in.ToWalletID != nil {
			return createRequest{}, apperr.New(apperr.KindMissingWalletReference, "to_wallet_id must be empty for a deposit")
		}
	case transaction.TypeTransfer:
		if in.ToWalletID == nil || *in.ToWalletID <= 0 {
			return createRequest{}, apperr.New(apperr.KindMissingWalletReference, "to_wallet_id is required for a transfer")
		}
		if *in.ToWalletID == in.FromWalletID {
			return createRequest{}, apperr.New(apperr.KindMissingWalletReference, "a transfer needs two distinct wallets")
		}
	}

	return createRequest{typ: typ, amount: amount, fromWalletID: in.FromWalletID, toWalletID: in.ToWalletID}, nil
}

// walletIDs returns the wallets the request touches, in ascending order.
func (r createRequest) walletIDs() []int64 {
	if r.typ == transaction.TypeTransfer {
		return sortedPair(r.fromWalletID, *r.toWalletID)
	}
	return []int64{r.fromWalletID}
}

func sortedPair(a, b int64) []int64 {
	if a < b {
		return []int64{a, b}
	}
	return []int64{b, a}
}
