package dto

// ClientRequest creates or updates a client.
type ClientRequest struct {
	Name          string `json:"name"`
	Phone         string `json:"phone"`
	Address       string `json:"address"`
	VATNumber     string `json:"client_vat_number"`
	Email         string `json:"email"`
	CompanyName   string `json:"company_name"`
	ContactPerson string `json:"contact_person"`
	City          string `json:"city"`
	Country       string `json:"country"`
	PostalCode    string `json:"postal_code"`
	Status        string `json:"status"`
	Notes         string `json:"notes"`
}

// ClientResponse is the API representation of a client.
type ClientResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	VATNumber     string `json:"client_vat_number,omitempty"`
	Email         string `json:"email,omitempty"`
	CompanyName   string `json:"company_name,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	City          string `json:"city,omitempty"`
	Country       string `json:"country,omitempty"`
	PostalCode    string `json:"postal_code,omitempty"`
	Status        string `json:"status"`
	Notes         string `json:"notes,omitempty"`
	CreatedAt     string `json:"created_at"`
}
