package repository

import "github.com/fatoora-app/invoicing-api/internal/domain/entity"

// UserRepository persists application accounts.
type UserRepository interface {
	Create(user *entity.User) error
	FindByEmail(email string) (*entity.User, error)
	GetByID(id string) (*entity.User, error)
}
