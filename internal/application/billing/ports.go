package billing

import (
	"context"

	"github.com/fatoora-app/invoicing-api/internal/domain/entity"
	"github.com/fatoora-app/invoicing-api/internal/domain/repository"
	"github.com/fatoora-app/invoicing-api/internal/infrastructure/qr"
)

// BillingTxRunner runs a function inside a transaction carrying the billing
// repositories. A returned error rolls everything back.
type BillingTxRunner interface {
	RunBilling(ctx context.Context, fn func(
		invoiceRepo repository.InvoiceRepository,
		clientRepo repository.ClientRepository,
	) error) error
}

// QRRasterizer renders a TLV payload into a PNG QR image.
type QRRasterizer interface {
	Rasterize(payload string, opts qr.Options) (*qr.Result, error)
}

// FileStore persists generated artifacts under the public assets directory.
type FileStore interface {
	SaveQRImage(png []byte) (string, error)
}

// ReportingSubmitter submits the invoice XML to the external reporting API.
type ReportingSubmitter interface {
	Configured() bool
	Submit(ctx context.Context, xmlData string) (string, error)
}

// InvoicePDFGenerator renders the printable invoice document.
type InvoicePDFGenerator interface {
	GenerateInvoicePDF(ctx context.Context, invoice *entity.Invoice, seller *entity.SellerProfile) ([]byte, error)
}
