package dto

// SettingsRequest updates the seller profile.
type SettingsRequest struct {
	ShopName  string `json:"shop_name"`
	Name      string `json:"name"`
	LogoPath  string `json:"logo"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Email     string `json:"email"`
	VATNumber string `json:"vat_number"`
}

// SettingsResponse is the API representation of the seller profile.
type SettingsResponse struct {
	ShopName  string `json:"shop_name"`
	Name      string `json:"name"`
	LogoPath  string `json:"logo,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Address   string `json:"address,omitempty"`
	Email     string `json:"email,omitempty"`
	VATNumber string `json:"vat_number"`
}
