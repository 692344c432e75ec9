package wallet

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/atlas-pay/atlas_pay/internal/apperr"
	"github.com/atlas-pay/atlas_pay/internal/middleware"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type createRequest struct {
	OwnerID int64 `json:"owner_id"`
}

// Create provisions a wallet.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if req.OwnerID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "owner_id is required")
	}

	w, err := h.service.Create(c.UserContext(), req.OwnerID, middleware.ActorFromCtx(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(w)
}

// Get returns one wallet.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	w, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(w)
}

// List returns all live wallets.
func (h *Handler) List(c *fiber.Ctx) error {
	wallets, err := h.service.List(c.UserContext())
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(wallets)
}

// ListByOwner returns the wallets belonging to one user.
func (h *Handler) ListByOwner(c *fiber.Ctx) error {
	ownerID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || ownerID <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "invalid owner id")
	}
	wallets, err := h.service.ListByOwner(c.UserContext(), ownerID)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(wallets)
}

// Balance returns the wallet balance as a decimal string.
func (h *Handler) Balance(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	b, err := h.service.Balance(c.UserContext(), id)
	if err != nil {
		return renderError(c, err)
	}
	return c.JSON(b)
}

// Delete soft-deletes a wallet.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), id, middleware.ActorFromCtx(c)); err != nil {
		return renderError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func renderError(c *fiber.Ctx, err error) error {
	return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{
		"code":  apperr.KindOf(err),
		"error": err.Error(),
	})
}
