package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/atlas-pay/atlas_pay/internal/user"
)

// Handler exposes the login endpoint.
type Handler struct {
	users   *user.Service
	service *Service
}

// NewHandler builds an auth HTTP handler.
func NewHandler(users *user.Service, service *Service) *Handler {
	return &Handler{users: users, service: service}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login verifies credentials and returns an access token.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password are required")
	}

	u, err := h.users.Authenticate(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	}

	token, err := h.service.IssueToken(u)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "token issuance failed")
	}
	return c.JSON(token)
}
