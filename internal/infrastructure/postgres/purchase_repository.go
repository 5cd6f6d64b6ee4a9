package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fatoora-app/invoicing-api/internal/domain/entity"
	"github.com/fatoora-app/invoicing-api/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo implements PurchaseRepository (usable with pool or tx).
type PurchaseRepo struct {
	q Querier
}

// NewPurchaseRepository builds the adapter. Pass a pool or a tx (Querier).
func NewPurchaseRepository(q Querier) *PurchaseRepo {
	return &PurchaseRepo{q: q}
}

const purchaseColumns = `
	id, number, supplier_name, supplier_phone, supplier_email,
	supplier_address, supplier_vat_number, items,
	subtotal, vat_rate, vat_amount, total,
	purchase_date, status, notes, created_at, updated_at`

// Create persists the purchase row. Line items are stored as JSONB.
func (r *PurchaseRepo) Create(purchase *entity.Purchase) error {
	if purchase.ID == "" {
		purchase.ID = uuid.New().String()
	}
	items, err := json.Marshal(purchase.Items)
	if err != nil {
		return fmt.Errorf("marshal purchase items: %w", err)
	}
	query := `
		INSERT INTO purchases (` + purchaseColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err = r.q.Exec(context.Background(), query,
		purchase.ID, purchase.Number, purchase.SupplierName, purchase.SupplierPhone, purchase.SupplierEmail,
		purchase.SupplierAddress, purchase.SupplierVATNumber, items,
		purchase.Subtotal, purchase.VATRate, purchase.VATAmount, purchase.Total,
		purchase.PurchaseDate, purchase.Status, purchase.Notes, purchase.CreatedAt, purchase.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("purchase number already exists: %w", err)
		}
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

// Update rewrites the editable purchase fields.
func (r *PurchaseRepo) Update(purchase *entity.Purchase) error {
	items, err := json.Marshal(purchase.Items)
	if err != nil {
		return fmt.Errorf("marshal purchase items: %w", err)
	}
	query := `
		UPDATE purchases
		SET supplier_name = $2, supplier_phone = $3, supplier_email = $4,
		    supplier_address = $5, supplier_vat_number = $6, items = $7,
		    subtotal = $8, vat_rate = $9, vat_amount = $10, total = $11,
		    purchase_date = $12, status = $13, notes = $14, updated_at = $15
		WHERE id = $1`
	_, err = r.q.Exec(context.Background(), query,
		purchase.ID, purchase.SupplierName, purchase.SupplierPhone, purchase.SupplierEmail,
		purchase.SupplierAddress, purchase.SupplierVATNumber, items,
		purchase.Subtotal, purchase.VATRate, purchase.VATAmount, purchase.Total,
		purchase.PurchaseDate, purchase.Status, purchase.Notes, purchase.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	return nil
}

// GetByID returns one purchase, or nil when absent.
func (r *PurchaseRepo) GetByID(id string) (*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE id = $1`
	p, err := scanPurchase(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

// List returns all purchases, newest first.
func (r *PurchaseRepo) List() ([]*entity.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases ORDER BY created_at DESC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()
	var list []*entity.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Delete removes a purchase by ID.
func (r *PurchaseRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM purchases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete purchase: %w", err)
	}
	return nil
}

// NextNumber allocates the next value from the purchase number sequence.
func (r *PurchaseRepo) NextNumber() (int64, error) {
	var seq int64
	err := r.q.QueryRow(context.Background(), `SELECT nextval('purchase_number_seq')`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next purchase number: %w", err)
	}
	return seq, nil
}

func scanPurchase(row pgx.Row) (*entity.Purchase, error) {
	var p entity.Purchase
	var items []byte
	err := row.Scan(
		&p.ID, &p.Number, &p.SupplierName, &p.SupplierPhone, &p.SupplierEmail,
		&p.SupplierAddress, &p.SupplierVATNumber, &items,
		&p.Subtotal, &p.VATRate, &p.VATAmount, &p.Total,
		&p.PurchaseDate, &p.Status, &p.Notes, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &p.Items); err != nil {
			return nil, fmt.Errorf("unmarshal purchase items: %w", err)
		}
	}
	return &p, nil
}
