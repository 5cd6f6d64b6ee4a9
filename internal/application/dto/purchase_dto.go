package dto

import "github.com/shopspring/decimal"

// PurchaseRequest creates or updates a supplier purchase.
type PurchaseRequest struct {
	SupplierName      string          `json:"supplier_name"`
	SupplierPhone     string          `json:"supplier_phone"`
	SupplierEmail     string          `json:"supplier_email"`
	SupplierAddress   string          `json:"supplier_address"`
	SupplierVATNumber string          `json:"supplier_vat_number"`
	Items             []LineItemInput `json:"items"`
	VATRate           decimal.Decimal `json:"vat_rate"`
	PurchaseDate      string          `json:"purchase_date"` // YYYY-MM-DD
	Status            string          `json:"status"`
	Notes             string          `json:"notes"`
}

// PurchaseResponse is the API representation of a purchase.
type PurchaseResponse struct {
	ID                string             `json:"id"`
	Number            string             `json:"purchase_number"`
	SupplierName      string             `json:"supplier_name"`
	SupplierPhone     string             `json:"supplier_phone,omitempty"`
	SupplierEmail     string             `json:"supplier_email,omitempty"`
	SupplierAddress   string             `json:"supplier_address,omitempty"`
	SupplierVATNumber string             `json:"supplier_vat_number,omitempty"`
	Items             []LineItemResponse `json:"items"`
	Subtotal          decimal.Decimal    `json:"subtotal"`
	VATRate           decimal.Decimal    `json:"vat_rate"`
	VATAmount         decimal.Decimal    `json:"vat_amount"`
	Total             decimal.Decimal    `json:"total"`
	PurchaseDate      string             `json:"purchase_date"`
	Status            string             `json:"status"`
	Notes             string             `json:"notes,omitempty"`
	CreatedAt         string             `json:"created_at"`
}
