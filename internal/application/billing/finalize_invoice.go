package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fatoora-app/invoicing-api/internal/application/dto"
	"github.com/fatoora-app/invoicing-api/internal/domain"
	"github.com/fatoora-app/invoicing-api/internal/domain/entity"
	"github.com/fatoora-app/invoicing-api/internal/domain/repository"
	"github.com/fatoora-app/invoicing-api/internal/infrastructure/qr"
	infrazatca "github.com/fatoora-app/invoicing-api/internal/infrastructure/zatca"
	"github.com/fatoora-app/invoicing-api/pkg/zatca"
)

// InvoiceUseCase finalizes invoices: it computes the monetary breakdown,
// persists the row and derives the XML document and QR image in a single
// transaction.
type InvoiceUseCase struct {
	txRunner     BillingTxRunner
	invoiceRepo  repository.InvoiceRepository
	clientRepo   repository.ClientRepository
	settingsRepo repository.SettingsRepository
	xmlBuilder   *infrazatca.XMLBuilderService
	rasterizer   QRRasterizer
	files        FileStore
	reporter     ReportingSubmitter

	now func() time.Time
}

// NewInvoiceUseCase builds the use case.
func NewInvoiceUseCase(
	txRunner BillingTxRunner,
	invoiceRepo repository.InvoiceRepository,
	clientRepo repository.ClientRepository,
	settingsRepo repository.SettingsRepository,
	xmlBuilder *infrazatca.XMLBuilderService,
	rasterizer QRRasterizer,
	files FileStore,
	reporter ReportingSubmitter,
) *InvoiceUseCase {
	return &InvoiceUseCase{
		txRunner:     txRunner,
		invoiceRepo:  invoiceRepo,
		clientRepo:   clientRepo,
		settingsRepo: settingsRepo,
		xmlBuilder:   xmlBuilder,
		rasterizer:   rasterizer,
		files:        files,
		reporter:     reporter,
		now:          time.Now,
	}
}

// CreateInvoice validates the request, allocates the invoice number, persists
// the row and derives the artifacts, all inside one transaction. Any failure
// rolls the whole invoice back.
func (uc *InvoiceUseCase) CreateInvoice(ctx context.Context, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one line item is required", domain.ErrInvalidInput)
	}
	if in.ClientID == "" && in.ClientName == "" {
		return nil, fmt.Errorf("%w: a client is required", domain.ErrInvalidInput)
	}

	now := uc.now()
	inv := &entity.Invoice{
		ID:              uuid.New().String(),
		InvoiceType:     defaultString(in.InvoiceType, entity.InvoiceTypeSimplified),
		PaymentType:     defaultString(in.PaymentType, entity.PaymentTypeCash),
		ClientID:        in.ClientID,
		ClientName:      in.ClientName,
		ClientPhone:     in.ClientPhone,
		ClientAddress:   in.ClientAddress,
		ClientVATNumber: in.ClientVATNumber,
		Items:           normalizeItems(in.Items),
		VATRate:         in.VATRate,
		InvoiceDate:     parseDateOr(in.InvoiceDate, now),
		Note:            in.Note,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := validateInvoice(inv); err != nil {
		return nil, err
	}
	inv.Subtotal, inv.VATAmount, inv.Total = computeTotals(inv.Items, inv.VATRate)

	seller, err := uc.settingsRepo.Get()
	if err != nil {
		return nil, fmt.Errorf("load seller profile: %w", err)
	}

	err = uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		clientRepo repository.ClientRepository,
	) error {
		if err := uc.resolveClient(inv, clientRepo, now); err != nil {
			return err
		}

		seq, err := invoiceRepo.NextNumber()
		if err != nil {
			return fmt.Errorf("allocate invoice number: %w", err)
		}
		inv.Number = fmt.Sprintf("INV-%04d", seq)

		if err := invoiceRepo.Create(inv); err != nil {
			return err
		}
		return uc.finalizeArtifacts(inv, seller, invoiceRepo)
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// UpdateInvoice applies the request to an existing invoice, recomputes the
// totals and regenerates the artifacts. The invoice number never changes.
func (uc *InvoiceUseCase) UpdateInvoice(ctx context.Context, id string, in dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one line item is required", domain.ErrInvalidInput)
	}

	now := uc.now()
	inv.InvoiceType = defaultString(in.InvoiceType, inv.InvoiceType)
	inv.PaymentType = defaultString(in.PaymentType, inv.PaymentType)
	inv.ClientID = in.ClientID
	inv.ClientName = in.ClientName
	inv.ClientPhone = in.ClientPhone
	inv.ClientAddress = in.ClientAddress
	inv.ClientVATNumber = in.ClientVATNumber
	inv.Items = normalizeItems(in.Items)
	inv.VATRate = in.VATRate
	inv.InvoiceDate = parseDateOr(in.InvoiceDate, inv.InvoiceDate)
	inv.Note = in.Note
	inv.UpdatedAt = now
	if err := validateInvoice(inv); err != nil {
		return nil, err
	}
	inv.Subtotal, inv.VATAmount, inv.Total = computeTotals(inv.Items, inv.VATRate)

	seller, err := uc.settingsRepo.Get()
	if err != nil {
		return nil, fmt.Errorf("load seller profile: %w", err)
	}

	err = uc.txRunner.RunBilling(ctx, func(
		invoiceRepo repository.InvoiceRepository,
		clientRepo repository.ClientRepository,
	) error {
		if err := uc.resolveClient(inv, clientRepo, now); err != nil {
			return err
		}
		if err := invoiceRepo.Update(inv); err != nil {
			return err
		}
		return uc.finalizeArtifacts(inv, seller, invoiceRepo)
	})
	if err != nil {
		return nil, err
	}
	return toInvoiceResponse(inv), nil
}

// GetInvoice returns one invoice with its artifacts.
func (uc *InvoiceUseCase) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, domain.ErrNotFound
	}
	return toInvoiceResponse(inv), nil
}

// ListInvoices returns all invoices, newest first.
func (uc *InvoiceUseCase) ListInvoices(ctx context.Context) ([]*dto.InvoiceResponse, error) {
	invoices, err := uc.invoiceRepo.List()
	if err != nil {
		return nil, err
	}
	out := make([]*dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv))
	}
	return out, nil
}

// DeleteInvoice removes an invoice.
func (uc *InvoiceUseCase) DeleteInvoice(ctx context.Context, id string) error {
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return err
	}
	if inv == nil {
		return domain.ErrNotFound
	}
	return uc.invoiceRepo.Delete(id)
}

// ReportInvoice submits the stored XML document to the external reporting
// API and records the raw response. Requires the reporting client to be
// configured with device credentials.
func (uc *InvoiceUseCase) ReportInvoice(ctx context.Context, id string) (string, error) {
	if uc.reporter == nil || !uc.reporter.Configured() {
		return "", fmt.Errorf("%w: reporting is not configured", domain.ErrConflict)
	}
	inv, err := uc.invoiceRepo.GetByID(id)
	if err != nil {
		return "", err
	}
	if inv == nil {
		return "", domain.ErrNotFound
	}
	if inv.XMLData == "" {
		return "", fmt.Errorf("%w: invoice has no XML document", domain.ErrConflict)
	}
	response, err := uc.reporter.Submit(ctx, inv.XMLData)
	if err != nil {
		return "", err
	}
	if err := uc.invoiceRepo.UpdateReportingResponse(id, response); err != nil {
		return "", err
	}
	return response, nil
}

// finalizeArtifacts derives the XML document, the TLV QR payload and the PNG
// raster, stores the image and writes both artifacts back onto the invoice
// row. The QR timestamp is the finalization instant, not the invoice date.
func (uc *InvoiceUseCase) finalizeArtifacts(inv *entity.Invoice, seller *entity.SellerProfile, invoiceRepo repository.InvoiceRepository) error {
	xmlBytes, err := uc.xmlBuilder.Build(&infrazatca.BuildContext{Invoice: inv, Seller: seller})
	if err != nil {
		return err
	}

	sellerName, sellerVAT := "", ""
	if seller != nil {
		sellerName = seller.Name
		sellerVAT = seller.VATNumber
	}
	timestamp := uc.now().Format(time.RFC3339)
	payload, err := zatca.Generate(sellerName, sellerVAT, timestamp, inv.Total, inv.VATAmount)
	if err != nil {
		return err
	}

	raster, err := uc.rasterizer.Rasterize(payload, qr.Options{Size: qr.DefaultSize, Margin: qr.DefaultMargin})
	if err != nil {
		return err
	}
	if uc.files != nil {
		if _, err := uc.files.SaveQRImage(raster.PNG); err != nil {
			return err
		}
	}

	inv.XMLData = string(xmlBytes)
	inv.QRCodeDataURI = raster.DataURI
	return invoiceRepo.UpdateArtifacts(inv.ID, inv.XMLData, inv.QRCodeDataURI)
}

// resolveClient fills ClientID: an explicit ID must exist; otherwise the
// client is looked up by name and phone and created when missing.
func (uc *InvoiceUseCase) resolveClient(inv *entity.Invoice, clientRepo repository.ClientRepository, now time.Time) error {
	if inv.ClientID != "" {
		client, err := clientRepo.GetByID(inv.ClientID)
		if err != nil {
			return err
		}
		if client == nil {
			return fmt.Errorf("%w: client %s", domain.ErrNotFound, inv.ClientID)
		}
		if inv.ClientName == "" {
			inv.ClientName = client.Name
		}
		return nil
	}

	client, err := clientRepo.FindByNameAndPhone(inv.ClientName, inv.ClientPhone)
	if err != nil {
		return err
	}
	if client == nil {
		client = &entity.Client{
			ID:        uuid.New().String(),
			Name:      inv.ClientName,
			Phone:     inv.ClientPhone,
			Address:   inv.ClientAddress,
			VATNumber: inv.ClientVATNumber,
			Status:    entity.ClientStatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := clientRepo.Create(client); err != nil {
			return err
		}
	}
	inv.ClientID = client.ID
	return nil
}

// computeTotals sums the line prices and applies the VAT percentage:
// vat = subtotal * rate / 100, total = subtotal + vat.
func computeTotals(items []entity.LineItem, vatRate decimal.Decimal) (subtotal, vatAmount, total decimal.Decimal) {
	for _, item := range items {
		subtotal = subtotal.Add(item.Price)
	}
	vatAmount = subtotal.Mul(vatRate).Div(decimal.NewFromInt(100))
	total = subtotal.Add(vatAmount)
	return subtotal, vatAmount, total
}

func normalizeItems(in []dto.LineItemInput) []entity.LineItem {
	items := make([]entity.LineItem, 0, len(in))
	for _, li := range in {
		items = append(items, entity.LineItem{Name: li.Name, Price: li.Price})
	}
	return items
}

func validateInvoice(inv *entity.Invoice) error {
	switch inv.InvoiceType {
	case entity.InvoiceTypeTax, entity.InvoiceTypeSimplified:
	default:
		return fmt.Errorf("%w: unknown invoice type %q", domain.ErrInvalidInput, inv.InvoiceType)
	}
	switch inv.PaymentType {
	case entity.PaymentTypeCash, entity.PaymentTypeCard, entity.PaymentTypeTransfer, entity.PaymentTypeCredit:
	default:
		return fmt.Errorf("%w: unknown payment type %q", domain.ErrInvalidInput, inv.PaymentType)
	}
	if inv.VATRate.IsNegative() {
		return fmt.Errorf("%w: VAT rate cannot be negative", domain.ErrInvalidInput)
	}
	return nil
}

func toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceResponse {
	items := make([]dto.LineItemResponse, 0, len(inv.Items))
	for _, li := range inv.Items {
		items = append(items, dto.LineItemResponse{Name: li.Name, Price: li.Price})
	}
	return &dto.InvoiceResponse{
		ID:              inv.ID,
		Number:          inv.Number,
		InvoiceType:     inv.InvoiceType,
		PaymentType:     inv.PaymentType,
		ClientID:        inv.ClientID,
		ClientName:      inv.ClientName,
		ClientPhone:     inv.ClientPhone,
		ClientAddress:   inv.ClientAddress,
		ClientVATNumber: inv.ClientVATNumber,
		Items:           items,
		Subtotal:        inv.Subtotal,
		VATRate:         inv.VATRate,
		VATAmount:       inv.VATAmount,
		Total:           inv.Total,
		InvoiceDate:     inv.InvoiceDate.Format("2006-01-02"),
		Note:            inv.Note,
		XMLData:         inv.XMLData,
		QRCodeDataURI:   inv.QRCodeDataURI,
		CreatedAt:       inv.CreatedAt.Format(time.RFC3339),
	}
}

func defaultString(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// parseDateOr parses a YYYY-MM-DD date, falling back when empty or invalid.
func parseDateOr(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fallback
	}
	return t
}
