package repository

import "github.com/fatoora-app/invoicing-api/internal/domain/entity"

// SettingsRepository reads and writes the single seller profile row.
type SettingsRepository interface {
	// Get returns the seller profile, or nil when none has been configured.
	Get() (*entity.SellerProfile, error)
	// Upsert creates the row on first save and updates it afterwards.
	Upsert(profile *entity.SellerProfile) error
}
