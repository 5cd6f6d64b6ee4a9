// Package settings manages the single-row seller profile.
package settings

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatoora-app/invoicing-api/internal/application/dto"
	"github.com/fatoora-app/invoicing-api/internal/domain"
	"github.com/fatoora-app/invoicing-api/internal/domain/entity"
	"github.com/fatoora-app/invoicing-api/internal/domain/repository"
)

// LogoStore persists the uploaded shop logo and returns its public path.
type LogoStore interface {
	SaveLogo(data []byte, ext string) (string, error)
}

// SettingsUseCase reads and updates the seller profile stamped into every
// invoice artifact.
type SettingsUseCase struct {
	settingsRepo repository.SettingsRepository
	logos        LogoStore
}

// NewSettingsUseCase builds the use case.
func NewSettingsUseCase(settingsRepo repository.SettingsRepository, logos LogoStore) *SettingsUseCase {
	return &SettingsUseCase{settingsRepo: settingsRepo, logos: logos}
}

// GetSettings returns the seller profile, or ErrNotFound before first save.
func (uc *SettingsUseCase) GetSettings(ctx context.Context) (*dto.SettingsResponse, error) {
	profile, err := uc.settingsRepo.Get()
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrNotFound
	}
	return toSettingsResponse(profile), nil
}

// SaveSettings creates or updates the seller profile.
func (uc *SettingsUseCase) SaveSettings(ctx context.Context, in dto.SettingsRequest) (*dto.SettingsResponse, error) {
	if in.Name == "" && in.ShopName == "" {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	profile, err := uc.settingsRepo.Get()
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = &entity.SellerProfile{CreatedAt: now}
	}
	profile.ShopName = in.ShopName
	profile.Name = in.Name
	if in.LogoPath != "" {
		profile.LogoPath = in.LogoPath
	}
	profile.Phone = in.Phone
	profile.Address = in.Address
	profile.Email = in.Email
	profile.VATNumber = in.VATNumber
	profile.UpdatedAt = now
	if err := uc.settingsRepo.Upsert(profile); err != nil {
		return nil, err
	}
	return toSettingsResponse(profile), nil
}

// UploadLogo stores the uploaded image and records its path on the profile.
// The profile must exist before a logo can be attached.
func (uc *SettingsUseCase) UploadLogo(ctx context.Context, data []byte, filename string) (*dto.SettingsResponse, error) {
	if len(data) == 0 {
		return nil, domain.ErrInvalidInput
	}
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp":
	default:
		return nil, domain.ErrInvalidInput
	}
	profile, err := uc.settingsRepo.Get()
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, domain.ErrNotFound
	}
	path, err := uc.logos.SaveLogo(data, ext)
	if err != nil {
		return nil, err
	}
	profile.LogoPath = path
	profile.UpdatedAt = time.Now()
	if err := uc.settingsRepo.Upsert(profile); err != nil {
		return nil, err
	}
	return toSettingsResponse(profile), nil
}

func toSettingsResponse(p *entity.SellerProfile) *dto.SettingsResponse {
	return &dto.SettingsResponse{
		ShopName:  p.ShopName,
		Name:      p.Name,
		LogoPath:  p.LogoPath,
		Phone:     p.Phone,
		Address:   p.Address,
		Email:     p.Email,
		VATNumber: p.VATNumber,
	}
}
