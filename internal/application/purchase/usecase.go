// Package purchase manages supplier purchases, which share the invoice
// monetary breakdown but produce no e-invoicing artifacts.
package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fatoora-app/invoicing-api/internal/application/dto"
	"github.com/fatoora-app/invoicing-api/internal/domain"
	"github.com/fatoora-app/invoicing-api/internal/domain/entity"
	"github.com/fatoora-app/invoicing-api/internal/domain/repository"
)

// PurchaseUseCase implements purchase CRUD.
type PurchaseUseCase struct {
	purchaseRepo repository.PurchaseRepository
}

// NewPurchaseUseCase builds the use case.
func NewPurchaseUseCase(purchaseRepo repository.PurchaseRepository) *PurchaseUseCase {
	return &PurchaseUseCase{purchaseRepo: purchaseRepo}
}

// CreatePurchase validates, computes totals and persists a purchase.
func (uc *PurchaseUseCase) CreatePurchase(ctx context.Context, in dto.PurchaseRequest) (*dto.PurchaseResponse, error) {
	if in.SupplierName == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if in.VATRate.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	now := time.Now()
	seq, err := uc.purchaseRepo.NextNumber()
	if err != nil {
		return nil, fmt.Errorf("allocate purchase number: %w", err)
	}

	p := &entity.Purchase{
		ID:                uuid.New().String(),
		Number:            fmt.Sprintf("PUR-%04d", seq),
		SupplierName:      in.SupplierName,
		SupplierPhone:     in.SupplierPhone,
		SupplierEmail:     in.SupplierEmail,
		SupplierAddress:   in.SupplierAddress,
		SupplierVATNumber: in.SupplierVATNumber,
		Items:             toLineItems(in.Items),
		VATRate:           in.VATRate,
		PurchaseDate:      parseDateOr(in.PurchaseDate, now),
		Status:            defaultStatus(in.Status),
		Notes:             in.Notes,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if !validStatus(p.Status) {
		return nil, domain.ErrInvalidInput
	}
	p.Subtotal, p.VATAmount, p.Total = computeTotals(p.Items, p.VATRate)

	if err := uc.purchaseRepo.Create(p); err != nil {
		return nil, err
	}
	return toPurchaseResponse(p), nil
}

// UpdatePurchase applies the request and recomputes the totals.
func (uc *PurchaseUseCase) UpdatePurchase(ctx context.Context, id string, in dto.PurchaseRequest) (*dto.PurchaseResponse, error) {
	p, err := uc.purchaseRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if in.SupplierName == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	p.SupplierName = in.SupplierName
	p.SupplierPhone = in.SupplierPhone
	p.SupplierEmail = in.SupplierEmail
	p.SupplierAddress = in.SupplierAddress
	p.SupplierVATNumber = in.SupplierVATNumber
	p.Items = toLineItems(in.Items)
	p.VATRate = in.VATRate
	p.PurchaseDate = parseDateOr(in.PurchaseDate, p.PurchaseDate)
	if in.Status != "" {
		if !validStatus(in.Status) {
			return nil, domain.ErrInvalidInput
		}
		p.Status = in.Status
	}
	p.Notes = in.Notes
	p.UpdatedAt = time.Now()
	p.Subtotal, p.VATAmount, p.Total = computeTotals(p.Items, p.VATRate)

	if err := uc.purchaseRepo.Update(p); err != nil {
		return nil, err
	}
	return toPurchaseResponse(p), nil
}

// GetPurchase returns one purchase.
func (uc *PurchaseUseCase) GetPurchase(ctx context.Context, id string) (*dto.PurchaseResponse, error) {
	p, err := uc.purchaseRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return toPurchaseResponse(p), nil
}

// ListPurchases returns all purchases.
func (uc *PurchaseUseCase) ListPurchases(ctx context.Context) ([]*dto.PurchaseResponse, error) {
	purchases, err := uc.purchaseRepo.List()
	if err != nil {
		return nil, err
	}
	out := make([]*dto.PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, toPurchaseResponse(p))
	}
	return out, nil
}

// DeletePurchase removes a purchase.
func (uc *PurchaseUseCase) DeletePurchase(ctx context.Context, id string) error {
	p, err := uc.purchaseRepo.GetByID(id)
	if err != nil {
		return err
	}
	if p == nil {
		return domain.ErrNotFound
	}
	return uc.purchaseRepo.Delete(id)
}

func computeTotals(items []entity.LineItem, vatRate decimal.Decimal) (subtotal, vatAmount, total decimal.Decimal) {
	for _, item := range items {
		subtotal = subtotal.Add(item.Price)
	}
	vatAmount = subtotal.Mul(vatRate).Div(decimal.NewFromInt(100))
	total = subtotal.Add(vatAmount)
	return subtotal, vatAmount, total
}

func toLineItems(in []dto.LineItemInput) []entity.LineItem {
	items := make([]entity.LineItem, 0, len(in))
	for _, li := range in {
		items = append(items, entity.LineItem{Name: li.Name, Price: li.Price})
	}
	return items
}

func validStatus(s string) bool {
	switch s {
	case entity.PurchaseStatusPending, entity.PurchaseStatusCompleted, entity.PurchaseStatusCancelled:
		return true
	}
	return false
}

func defaultStatus(s string) string {
	if s == "" {
		return entity.PurchaseStatusPending
	}
	return s
}

func parseDateOr(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return fallback
	}
	return t
}

func toPurchaseResponse(p *entity.Purchase) *dto.PurchaseResponse {
	items := make([]dto.LineItemResponse, 0, len(p.Items))
	for _, li := range p.Items {
		items = append(items, dto.LineItemResponse{Name: li.Name, Price: li.Price})
	}
	return &dto.PurchaseResponse{
		ID:                p.ID,
		Number:            p.Number,
		SupplierName:      p.SupplierName,
		SupplierPhone:     p.SupplierPhone,
		SupplierEmail:     p.SupplierEmail,
		SupplierAddress:   p.SupplierAddress,
		SupplierVATNumber: p.SupplierVATNumber,
		Items:             items,
		Subtotal:          p.Subtotal,
		VATRate:           p.VATRate,
		VATAmount:         p.VATAmount,
		Total:             p.Total,
		PurchaseDate:      p.PurchaseDate.Format("2006-01-02"),
		Status:            p.Status,
		Notes:             p.Notes,
		CreatedAt:         p.CreatedAt.Format(time.RFC3339),
	}
}
