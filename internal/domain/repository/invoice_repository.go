package repository

import "github.com/fatoora-app/invoicing-api/internal/domain/entity"

// InvoiceRepository persists invoice rows and their derived artifacts.
// Implementations are usable both with a pool and inside a transaction.
type InvoiceRepository interface {
	Create(invoice *entity.Invoice) error
	Update(invoice *entity.Invoice) error
	// UpdateArtifacts writes the derived XML document and QR data URI back
	// onto an already-persisted invoice row.
	UpdateArtifacts(id, xmlData, qrDataURI string) error
	// UpdateReportingResponse stores the raw body returned by the external
	// reporting API.
	UpdateReportingResponse(id, response string) error
	GetByID(id string) (*entity.Invoice, error)
	List() ([]*entity.Invoice, error)
	Delete(id string) error
	// NextNumber atomically allocates the next invoice sequence value.
	// Safe under concurrent invoice creation; allocated values may leave
	// gaps when the surrounding transaction rolls back.
	NextNumber() (int64, error)
}
