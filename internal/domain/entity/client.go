package entity

import "time"

// Client statuses.
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
)

// Client is an invoice counterparty.
type Client struct {
	ID            string
	Name          string
	Phone         string
	Address       string
	VATNumber     string
	Email         string
	CompanyName   string
	ContactPerson string
	City          string
	Country       string
	PostalCode    string
	Status        string
	Notes         string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
