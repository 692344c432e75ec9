package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlas-pay/atlas_pay/internal/auth"
)

// RegisterAuthRoutes wires the login endpoint behind the rate limiter.
func RegisterAuthRoutes(r fiber.Router, h *auth.Handler, rateLimit fiber.Handler) {
	r.Post("/auth/login", rateLimit, h.Login)
}
