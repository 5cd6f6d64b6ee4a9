package repository

import "github.com/fatoora-app/invoicing-api/internal/domain/entity"

// PurchaseRepository persists supplier purchases.
type PurchaseRepository interface {
	Create(purchase *entity.Purchase) error
	Update(purchase *entity.Purchase) error
	GetByID(id string) (*entity.Purchase, error)
	List() ([]*entity.Purchase, error)
	Delete(id string) error
	NextNumber() (int64, error)
}
