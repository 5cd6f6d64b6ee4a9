package entity

import "time"

// SellerProfile is the single-row seller configuration: the identity stamped
// into every QR payload and XML document. It is loaded once per finalization
// and passed explicitly into the encoders, never fetched through a global.
type SellerProfile struct {
	ID        string
	ShopName  string // display name shown on printed invoices
	Name      string // legal name used in QR tag 1 and the XML supplier party
	LogoPath  string
	Phone     string
	Address   string
	Email     string
	VATNumber string
	CreatedAt time.Time
	UpdatedAt time.Time
}
