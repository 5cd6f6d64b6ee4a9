package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fatoora-app/invoicing-api/internal/domain/entity"
	"github.com/fatoora-app/invoicing-api/internal/domain/repository"
)

var _ repository.SettingsRepository = (*SettingsRepo)(nil)

// SettingsRepo implements SettingsRepository. The settings table holds at
// most one row.
type SettingsRepo struct {
	q Querier
}

// NewSettingsRepository builds the adapter.
func NewSettingsRepository(q Querier) *SettingsRepo {
	return &SettingsRepo{q: q}
}

// Get returns the seller profile, or nil before the first save.
func (r *SettingsRepo) Get() (*entity.SellerProfile, error) {
	query := `
		SELECT id, shop_name, name, logo_path, phone, address, email, vat_number, created_at, updated_at
		FROM settings LIMIT 1`
	var p entity.SellerProfile
	err := r.q.QueryRow(context.Background(), query).Scan(
		&p.ID, &p.ShopName, &p.Name, &p.LogoPath, &p.Phone, &p.Address, &p.Email, &p.VATNumber,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get settings: %w", err)
	}
	return &p, nil
}

// Upsert creates the row on first save and updates it afterwards.
func (r *SettingsRepo) Upsert(profile *entity.SellerProfile) error {
	if profile.ID == "" {
		profile.ID = uuid.New().String()
	}
	query := `
		INSERT INTO settings (id, shop_name, name, logo_path, phone, address, email, vat_number, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE
		SET shop_name = EXCLUDED.shop_name, name = EXCLUDED.name, logo_path = EXCLUDED.logo_path,
		    phone = EXCLUDED.phone, address = EXCLUDED.address, email = EXCLUDED.email,
		    vat_number = EXCLUDED.vat_number, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(context.Background(), query,
		profile.ID, profile.ShopName, profile.Name, profile.LogoPath, profile.Phone,
		profile.Address, profile.Email, profile.VATNumber, profile.CreatedAt, profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}
