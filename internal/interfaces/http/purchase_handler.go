package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fatoora-app/invoicing-api/internal/application/dto"
	"github.com/fatoora-app/invoicing-api/internal/application/purchase"
	"github.com/fatoora-app/invoicing-api/internal/domain"
)

// PurchaseHandler handles purchase CRUD.
type PurchaseHandler struct {
	uc *purchase.PurchaseUseCase
}

// NewPurchaseHandler builds the purchase handler.
func NewPurchaseHandler(uc *purchase.PurchaseUseCase) *PurchaseHandler {
	return &PurchaseHandler{uc: uc}
}

// Create godoc
// @Summary      Create a purchase
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PurchaseRequest  true  "purchase data"
// @Success      201   {object}  dto.PurchaseResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/purchases [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	var in dto.PurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.uc.CreatePurchase(c.Context(), in)
	if err != nil {
		return purchaseError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Update a purchase
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        id    path  string               true  "purchase ID"
// @Param        body  body  dto.PurchaseRequest  true  "purchase data"
// @Success      200   {object}  dto.PurchaseResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/purchases/{id} [put]
func (h *PurchaseHandler) Update(c *fiber.Ctx) error {
	var in dto.PurchaseRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.uc.UpdatePurchase(c.Context(), c.Params("id"), in)
	if err != nil {
		return purchaseError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      List purchases
// @Tags         purchases
// @Produce      json
// @Success      200  {array}  dto.PurchaseResponse
// @Router       /api/purchases [get]
func (h *PurchaseHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListPurchases(c.Context())
	if err != nil {
		return purchaseError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Get one purchase
// @Tags         purchases
// @Produce      json
// @Param        id  path  string  true  "purchase ID"
// @Success      200  {object}  dto.PurchaseResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id} [get]
func (h *PurchaseHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetPurchase(c.Context(), c.Params("id"))
	if err != nil {
		return purchaseError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Delete a purchase
// @Tags         purchases
// @Param        id  path  string  true  "purchase ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/purchases/{id} [delete]
func (h *PurchaseHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeletePurchase(c.Context(), c.Params("id")); err != nil {
		return purchaseError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func purchaseError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "purchase not found"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
