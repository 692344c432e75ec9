package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlas-pay/atlas_pay/internal/user"
)

// RegisterUserRoutes wires authenticated user CRUD endpoints.
func RegisterUserRoutes(r fiber.Router, h *user.Handler) {
	r.Get("/users", h.List)
	r.Get("/users/:id", h.Get)
	r.Patch("/users/:id", h.Update)
	r.Delete("/users/:id", h.Delete)
}
