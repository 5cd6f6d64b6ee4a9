package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Purchase statuses.
const (
	PurchaseStatusPending   = "pending"
	PurchaseStatusCompleted = "completed"
	PurchaseStatusCancelled = "cancelled"
)

// Purchase records a supplier purchase with the same monetary breakdown as
// an invoice (subtotal, VAT at a configurable rate, total).
type Purchase struct {
	ID                string
	Number            string
	SupplierName      string
	SupplierPhone     string
	SupplierEmail     string
	SupplierAddress   string
	SupplierVATNumber string
	Items             []LineItem
	Subtotal          decimal.Decimal
	VATRate           decimal.Decimal
	VATAmount         decimal.Decimal
	Total             decimal.Decimal
	PurchaseDate      time.Time
	Status            string
	Notes             string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
