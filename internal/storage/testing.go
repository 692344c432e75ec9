package storage

import "github.com/atlas-pay/atlas_pay/internal/money"

// SeedBalance is a test helper that sets a wallet's balance directly when
// using the in-memory backend, bypassing the ledger.
func SeedBalance(b Backend, walletID int64, balance money.Amount) {
	mem, ok := b.(*Memory)
	if !ok {
		return
	}
	mem.mu.Lock()
	defer mem.mu.Unlock()
	w, exists := mem.wallets[walletID]
	if !exists {
		return
	}
	w.Balance = balance
	mem.wallets[walletID] = w
}
