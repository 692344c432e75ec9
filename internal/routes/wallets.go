package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlas-pay/atlas_pay/internal/wallet"
)

// RegisterWalletRoutes wires wallet CRUD and balance endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler) {
	r.Post("/wallets", h.Create)
	r.Get("/wallets", h.List)
	r.Get("/wallets/by-owner/:id", h.ListByOwner)
	r.Get("/wallets/:id", h.Get)
	r.Get("/wallets/:id/balance", h.Balance)
	r.Delete("/wallets/:id", h.Delete)
}
