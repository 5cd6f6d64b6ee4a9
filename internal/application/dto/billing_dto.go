package dto

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// LineItemInput is one service line of an invoice request. Two wire shapes
// are accepted: the current `{"name": "...", "price": ...}` object and the
// legacy bare string (a service name with no price). Both normalize to the
// same struct; the legacy shape gets price zero.
type LineItemInput struct {
	Name  string
	Price decimal.Decimal
}

// lineItemJSON is the object wire shape. `service` is the legacy key for the
// name field; `price` is raw because old clients sent it as a quoted string.
type lineItemJSON struct {
	Name    string          `json:"name"`
	Service string          `json:"service"`
	Price   json.RawMessage `json:"price"`
}

// UnmarshalJSON normalizes both accepted shapes. A price that cannot be
// parsed as a decimal is treated as zero rather than failing the request.
func (li *LineItemInput) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return err
		}
		li.Name = name
		li.Price = decimal.Zero
		return nil
	}

	var obj lineItemJSON
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return err
	}
	li.Name = obj.Name
	if li.Name == "" {
		li.Name = obj.Service
	}
	li.Price = parsePrice(obj.Price)
	return nil
}

// MarshalJSON always emits the object shape.
func (li LineItemInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Name  string          `json:"name"`
		Price decimal.Decimal `json:"price"`
	}{Name: li.Name, Price: li.Price})
}

// parsePrice accepts a JSON number or a quoted numeric string; anything else
// is zero.
func parsePrice(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return decimal.Zero
	}
	s := string(bytes.TrimSpace(raw))
	if len(s) >= 2 && s[0] == '"' {
		var unquoted string
		if err := json.Unmarshal(raw, &unquoted); err != nil {
			return decimal.Zero
		}
		s = unquoted
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// CreateInvoiceRequest is the payload for creating or updating an invoice.
type CreateInvoiceRequest struct {
	InvoiceType     string          `json:"invoice_type"`
	PaymentType     string          `json:"payment_type"`
	ClientID        string          `json:"client_id"`
	ClientName      string          `json:"client"`
	ClientPhone     string          `json:"phone"`
	ClientAddress   string          `json:"address"`
	ClientVATNumber string          `json:"client_vat_number"`
	Items           []LineItemInput `json:"service"`
	VATRate         decimal.Decimal `json:"vat"`          // percentage, e.g. 15
	InvoiceDate     string          `json:"invoice_date"` // YYYY-MM-DD
	Note            string          `json:"note"`
}

// LineItemResponse mirrors one normalized line.
type LineItemResponse struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// InvoiceResponse is the full invoice representation returned by the API.
type InvoiceResponse struct {
	ID              string             `json:"id"`
	Number          string             `json:"invoice_number"`
	InvoiceType     string             `json:"invoice_type"`
	PaymentType     string             `json:"payment_type"`
	ClientID        string             `json:"client_id,omitempty"`
	ClientName      string             `json:"client"`
	ClientPhone     string             `json:"phone,omitempty"`
	ClientAddress   string             `json:"address,omitempty"`
	ClientVATNumber string             `json:"client_vat_number,omitempty"`
	Items           []LineItemResponse `json:"service"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	VATRate         decimal.Decimal    `json:"vat_rate"`
	VATAmount       decimal.Decimal    `json:"vat_amount"`
	Total           decimal.Decimal    `json:"total"`
	InvoiceDate     string             `json:"invoice_date"`
	Note            string             `json:"note,omitempty"`
	XMLData         string             `json:"xml_data,omitempty"`
	QRCodeDataURI   string             `json:"qr_code,omitempty"`
	CreatedAt       string             `json:"created_at"`
}
