package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice types accepted by the API.
const (
	InvoiceTypeTax        = "tax"        // standard tax invoice
	InvoiceTypeSimplified = "simplified" // retail invoice with embedded QR
)

// Payment types.
const (
	PaymentTypeCash     = "cash"
	PaymentTypeCard     = "card"
	PaymentTypeTransfer = "transfer"
	PaymentTypeCredit   = "credit"
)

// Invoice is the header of a simplified e-invoice. XMLData, QRCodeDataURI and
// ReportingResponse are derived artifacts written back by the finalization
// flow; the structured columns remain the source of truth.
type Invoice struct {
	ID              string
	Number          string // e.g. INV-0042, allocated from a DB sequence
	InvoiceType     string
	PaymentType     string
	ClientID        string // optional reference into clients
	ClientName      string
	ClientPhone     string
	ClientAddress   string
	ClientVATNumber string
	Items           []LineItem
	Subtotal        decimal.Decimal
	VATRate         decimal.Decimal // percentage, e.g. 15
	VATAmount       decimal.Decimal
	Total           decimal.Decimal
	InvoiceDate     time.Time
	Note            string

	XMLData           string // derived: minimal UBL-like XML document
	QRCodeDataURI     string // derived: data:image/png;base64 QR image
	ReportingResponse string // derived: raw body returned by the reporting API

	CreatedAt time.Time
	UpdatedAt time.Time
}

// LineItem is a single priced service line. Legacy payloads carry bare
// service names; those are normalized at the DTO boundary with price zero.
type LineItem struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}
