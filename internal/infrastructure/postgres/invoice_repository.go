package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fatoora-app/invoicing-api/internal/domain/entity"
	"github.com/fatoora-app/invoicing-api/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implements InvoiceRepository (usable with pool or tx).
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository builds the adapter. Pass a pool or a tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

const invoiceColumns = `
	id, number, invoice_type, payment_type, client_id,
	client_name, client_phone, client_address, client_vat_number,
	items, subtotal, vat_rate, vat_amount, total,
	invoice_date, note, xml_data, qr_code, reporting_response,
	created_at, updated_at`

// Create persists the invoice row. Line items are stored as JSONB.
func (r *InvoiceRepo) Create(invoice *entity.Invoice) error {
	if invoice.ID == "" {
		invoice.ID = uuid.New().String()
	}
	items, err := json.Marshal(invoice.Items)
	if err != nil {
		return fmt.Errorf("marshal invoice items: %w", err)
	}
	query := `
		INSERT INTO invoices (` + invoiceColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`
	_, err = r.q.Exec(context.Background(), query,
		invoice.ID, invoice.Number, invoice.InvoiceType, invoice.PaymentType, nullIfEmpty(invoice.ClientID),
		invoice.ClientName, invoice.ClientPhone, invoice.ClientAddress, invoice.ClientVATNumber,
		items, invoice.Subtotal, invoice.VATRate, invoice.VATAmount, invoice.Total,
		invoice.InvoiceDate, invoice.Note, nullIfEmpty(invoice.XMLData), nullIfEmpty(invoice.QRCodeDataURI), nullIfEmpty(invoice.ReportingResponse),
		invoice.CreatedAt, invoice.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("invoice number already exists: %w", err)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}
	return nil
}

// Update rewrites the editable invoice fields. The number is immutable.
func (r *InvoiceRepo) Update(invoice *entity.Invoice) error {
	items, err := json.Marshal(invoice.Items)
	if err != nil {
		return fmt.Errorf("marshal invoice items: %w", err)
	}
	query := `
		UPDATE invoices
		SET invoice_type = $2, payment_type = $3, client_id = $4,
		    client_name = $5, client_phone = $6, client_address = $7, client_vat_number = $8,
		    items = $9, subtotal = $10, vat_rate = $11, vat_amount = $12, total = $13,
		    invoice_date = $14, note = $15, updated_at = $16
		WHERE id = $1`
	_, err = r.q.Exec(context.Background(), query,
		invoice.ID, invoice.InvoiceType, invoice.PaymentType, nullIfEmpty(invoice.ClientID),
		invoice.ClientName, invoice.ClientPhone, invoice.ClientAddress, invoice.ClientVATNumber,
		items, invoice.Subtotal, invoice.VATRate, invoice.VATAmount, invoice.Total,
		invoice.InvoiceDate, invoice.Note, invoice.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update invoice: %w", err)
	}
	return nil
}

// UpdateArtifacts writes the derived XML document and QR data URI.
func (r *InvoiceRepo) UpdateArtifacts(id, xmlData, qrDataURI string) error {
	query := `
		UPDATE invoices
		SET xml_data = $2, qr_code = $3, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, nullIfEmpty(xmlData), nullIfEmpty(qrDataURI))
	if err != nil {
		return fmt.Errorf("update invoice artifacts: %w", err)
	}
	return nil
}

// UpdateReportingResponse stores the raw reporting API response body.
func (r *InvoiceRepo) UpdateReportingResponse(id, response string) error {
	query := `
		UPDATE invoices
		SET reporting_response = $2, updated_at = now()
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query, id, nullIfEmpty(response))
	if err != nil {
		return fmt.Errorf("update reporting response: %w", err)
	}
	return nil
}

// GetByID returns one invoice, or nil when absent.
func (r *InvoiceRepo) GetByID(id string) (*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE id = $1`
	inv, err := scanInvoice(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	return inv, nil
}

// List returns all invoices, newest first.
func (r *InvoiceRepo) List() ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices ORDER BY created_at DESC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()
	var list []*entity.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		list = append(list, inv)
	}
	return list, rows.Err()
}

// Delete removes an invoice by ID.
func (r *InvoiceRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete invoice: %w", err)
	}
	return nil
}

// NextNumber allocates the next value from the invoice number sequence. The
// allocation survives rollbacks of the surrounding transaction, so numbers
// may have gaps but are never reused.
func (r *InvoiceRepo) NextNumber() (int64, error) {
	var seq int64
	err := r.q.QueryRow(context.Background(), `SELECT nextval('invoice_number_seq')`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next invoice number: %w", err)
	}
	return seq, nil
}

func scanInvoice(row pgx.Row) (*entity.Invoice, error) {
	var inv entity.Invoice
	var clientID, xmlData, qrCode, reporting *string
	var items []byte
	err := row.Scan(
		&inv.ID, &inv.Number, &inv.InvoiceType, &inv.PaymentType, &clientID,
		&inv.ClientName, &inv.ClientPhone, &inv.ClientAddress, &inv.ClientVATNumber,
		&items, &inv.Subtotal, &inv.VATRate, &inv.VATAmount, &inv.Total,
		&inv.InvoiceDate, &inv.Note, &xmlData, &qrCode, &reporting,
		&inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &inv.Items); err != nil {
			return nil, fmt.Errorf("unmarshal invoice items: %w", err)
		}
	}
	inv.ClientID = derefStr(clientID)
	inv.XMLData = derefStr(xmlData)
	inv.QRCodeDataURI = derefStr(qrCode)
	inv.ReportingResponse = derefStr(reporting)
	return &inv, nil
}
