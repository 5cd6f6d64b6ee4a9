package billing

import (
	"context"
	"fmt"

	"github.com/fatoora-app/invoicing-api/internal/domain"
	"github.com/fatoora-app/invoicing-api/internal/domain/repository"
)

// PDFUseCase renders the printable representation of a finalized invoice.
// The PDF embeds the same QR payload as the stored artifact, so an invoice
// without artifacts cannot be downloaded yet.
type PDFUseCase struct {
	invoiceRepo  repository.InvoiceRepository
	settingsRepo repository.SettingsRepository
	generator    InvoicePDFGenerator
}

// NewPDFUseCase builds the use case.
func NewPDFUseCase(
	invoiceRepo repository.InvoiceRepository,
	settingsRepo repository.SettingsRepository,
	generator InvoicePDFGenerator,
) *PDFUseCase {
	return &PDFUseCase{
		invoiceRepo:  invoiceRepo,
		settingsRepo: settingsRepo,
		generator:    generator,
	}
}

// DownloadInvoicePDF loads the invoice and seller profile and generates the
// PDF. Returns the bytes and a suggested filename.
func (uc *PDFUseCase) DownloadInvoicePDF(ctx context.Context, invoiceID string) ([]byte, string, error) {
	inv, err := uc.invoiceRepo.GetByID(invoiceID)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: load invoice: %w", err)
	}
	if inv == nil {
		return nil, "", domain.ErrNotFound
	}
	if inv.QRCodeDataURI == "" {
		return nil, "", fmt.Errorf("%w: invoice has no QR artifact yet", domain.ErrConflict)
	}

	seller, err := uc.settingsRepo.Get()
	if err != nil {
		return nil, "", fmt.Errorf("pdf: load seller profile: %w", err)
	}

	pdfBytes, err := uc.generator.GenerateInvoicePDF(ctx, inv, seller)
	if err != nil {
		return nil, "", fmt.Errorf("pdf: generation failed: %w", err)
	}
	return pdfBytes, fmt.Sprintf("invoice_%s.pdf", inv.Number), nil
}
