package ledger

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/atlas-pay/atlas_pay/internal/apperr"
	"github.com/atlas-pay/atlas_pay/internal/middleware"
)

// Handler exposes the ledger engine over HTTP. Amounts cross the wire as
// decimal strings, never as floats.
type Handler struct {
	engine *Engine
}

// NewHandler builds a ledger HTTP handler.
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

type createRequestBody struct {
	Type         string `json:"type"`
	Amount       string `json:"amount"`
	FromWalletID int64  `json:"from_wallet_id"`
	ToWalletID   *int64 `json:"to_wallet_id"`
}

// Create processes a deposit or transfer request.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequestBody
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	rec, err := h.engine.CreateTransaction(c.UserContext(), CreateInput{
		Type:         req.Type,
		Amount:       req.Amount,
		FromWalletID: req.FromWalletID,
		ToWalletID:   req.ToWalletID,
		Actor:        middleware.ActorFromCtx(c),
	})
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// Reverse undoes a completed transaction.
func (h *Handler) Reverse(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	rec, err := h.engine.ReverseTransaction(c.UserContext(), id, middleware.ActorFromCtx(c))
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(rec)
}

// Get returns a single transaction.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	rec, err := h.engine.GetTransaction(c.UserContext(), id)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(rec)
}

// List returns every transaction, ascending by id.
func (h *Handler) List(c *fiber.Ctx) error {
	recs, err := h.engine.ListTransactions(c.UserContext())
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(recs)
}

// ListByWallet returns the transactions initiated from one wallet.
func (h *Handler) ListByWallet(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}

	recs, err := h.engine.ListTransactionsByWallet(c.UserContext(), id)
	if err != nil {
		return renderError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(recs)
}

func paramID(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func renderError(c *fiber.Ctx, err error) error {
	kind := apperr.KindOf(err)
	message := err.Error()
	if kind == apperr.KindInternal {
		message = "internal failure"
	}
	return c.Status(apperr.HTTPStatus(err)).JSON(fiber.Map{
		"code":  kind,
		"error": message,
	})
}
