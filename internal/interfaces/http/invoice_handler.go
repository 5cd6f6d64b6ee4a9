package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/fatoora-app/invoicing-api/internal/application/billing"
	"github.com/fatoora-app/invoicing-api/internal/application/dto"
	"github.com/fatoora-app/invoicing-api/internal/domain"
	"github.com/fatoora-app/invoicing-api/internal/infrastructure/qr"
	infrazatca "github.com/fatoora-app/invoicing-api/internal/infrastructure/zatca"
	pkgzatca "github.com/fatoora-app/invoicing-api/pkg/zatca"
)

// InvoiceHandler handles invoice finalization and retrieval.
type InvoiceHandler struct {
	uc    *billing.InvoiceUseCase
	pdfUC *billing.PDFUseCase
}

// NewInvoiceHandler builds the invoice handler.
func NewInvoiceHandler(uc *billing.InvoiceUseCase, pdfUC *billing.PDFUseCase) *InvoiceHandler {
	return &InvoiceHandler{uc: uc, pdfUC: pdfUC}
}

// Create godoc
// @Summary      Create and finalize an invoice
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateInvoiceRequest  true  "invoice data"
// @Success      201   {object}  dto.InvoiceResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.uc.CreateInvoice(c.Context(), in)
	if err != nil {
		return invoiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Update godoc
// @Summary      Update an invoice and regenerate its artifacts
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "invoice ID"
// @Param        body  body  dto.CreateInvoiceRequest  true  "invoice data"
// @Success      200   {object}  dto.InvoiceResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) Update(c *fiber.Ctx) error {
	var in dto.CreateInvoiceRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "invalid request body"})
	}
	out, err := h.uc.UpdateInvoice(c.Context(), c.Params("id"), in)
	if err != nil {
		return invoiceError(c, err)
	}
	return c.JSON(out)
}

// List godoc
// @Summary      List invoices
// @Tags         invoices
// @Produce      json
// @Success      200  {array}  dto.InvoiceResponse
// @Router       /api/invoices [get]
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.ListInvoices(c.Context())
	if err != nil {
		return invoiceError(c, err)
	}
	return c.JSON(out)
}

// GetByID godoc
// @Summary      Get one invoice
// @Tags         invoices
// @Produce      json
// @Param        id  path  string  true  "invoice ID"
// @Success      200  {object}  dto.InvoiceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetInvoice(c.Context(), c.Params("id"))
	if err != nil {
		return invoiceError(c, err)
	}
	return c.JSON(out)
}

// Delete godoc
// @Summary      Delete an invoice
// @Tags         invoices
// @Param        id  path  string  true  "invoice ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.DeleteInvoice(c.Context(), c.Params("id")); err != nil {
		return invoiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// DownloadPDF godoc
// @Summary      Download the printable invoice
// @Tags         invoices
// @Produce      application/pdf
// @Param        id  path  string  true  "invoice ID"
// @Success      200  {file}  binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/pdf [get]
func (h *InvoiceHandler) DownloadPDF(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.pdfUC.DownloadInvoicePDF(c.Context(), c.Params("id"))
	if err != nil {
		return invoiceError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}

// Report godoc
// @Summary      Submit the invoice to the reporting API
// @Tags         invoices
// @Produce      json
// @Param        id  path  string  true  "invoice ID"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/invoices/{id}/report [post]
func (h *InvoiceHandler) Report(c *fiber.Ctx) error {
	response, err := h.uc.ReportInvoice(c.Context(), c.Params("id"))
	if err != nil {
		return invoiceError(c, err)
	}
	return c.JSON(fiber.Map{"response": response})
}

// invoiceError maps domain and artifact errors to HTTP responses.
func invoiceError(c *fiber.Ctx, err error) error {
	var encErr *pkgzatca.EncodingError
	var docErr *infrazatca.MalformedDocumentError
	var qrErr *qr.RasterizationError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "invoice not found"})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.As(err, &encErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "QR_ENCODING_FAILED", Message: err.Error()})
	case errors.As(err, &docErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "XML_GENERATION_FAILED", Message: err.Error()})
	case errors.As(err, &qrErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "QR_RASTERIZATION_FAILED", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
