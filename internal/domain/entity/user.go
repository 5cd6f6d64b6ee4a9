package entity

import "time"

// User roles.
const (
	RoleAdmin      = "admin"
	RoleAccountant = "accountant"
)

// User is an application account (single-tenant installation).
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
