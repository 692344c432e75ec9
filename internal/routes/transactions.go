package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlas-pay/atlas_pay/internal/ledger"
	"github.com/atlas-pay/atlas_pay/internal/middleware"
	"github.com/atlas-pay/atlas_pay/internal/user"
)

// RegisterTransactionRoutes wires the ledger endpoints. Listing every
// transaction is admin-only; everything else needs any authenticated user.
func RegisterTransactionRoutes(r fiber.Router, h *ledger.Handler) {
	r.Post("/transactions", h.Create)
	r.Post("/transactions/reverse/:id", h.Reverse)
	r.Get("/transactions/by-wallet/:id", h.ListByWallet)
	r.Get("/transactions/:id", h.Get)
	r.Get("/transactions", middleware.RequireRole(user.RoleAdmin), h.List)
}
