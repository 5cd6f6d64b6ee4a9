package repository

import "github.com/fatoora-app/invoicing-api/internal/domain/entity"

// ClientRepository persists invoice counterparties.
type ClientRepository interface {
	Create(client *entity.Client) error
	Update(client *entity.Client) error
	GetByID(id string) (*entity.Client, error)
	// FindByNameAndPhone locates an existing client for the invoicing
	// find-or-create path. Returns nil, nil when no match exists.
	FindByNameAndPhone(name, phone string) (*entity.Client, error)
	List() ([]*entity.Client, error)
	Delete(id string) error
}
