package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"billvox/internal/domain"
	"billvox/internal/port"
)

type productRepo struct {
	db *sqlx.DB
}

// NewProductRepo creates a new PostgreSQL-backed ProductRepository.
func NewProductRepo(db *sqlx.DB) port.ProductRepository {
	return &productRepo{db: db}
}

func (r *productRepo) Create(ctx context.Context, product *domain.InventoryProduct) error {
	product.ID = uuid.New()
	now := time.Now().UTC()
	product.CreatedAt = now
	product.UpdatedAt = now

	query := `INSERT INTO products (id, business_id, sku, name, brand, category, description, unit,
		pricing_mode, gst_rate, mrp, base_price, selling_price, selling_includes_gst,
		stock_qty, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	_, err := r.db.ExecContext(ctx, query,
		product.ID, product.BusinessID, product.SKU, product.Name, product.Brand,
		product.Category, product.Description, product.Unit, product.PricingMode,
		product.GSTRate, product.MRP, product.BasePrice, product.SellingPrice,
		product.SellingIncludesGST, product.StockQty, product.IsActive,
		product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateSKU
		}
		return fmt.Errorf("productRepo.Create: %w", err)
	}
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, businessID, productID uuid.UUID) (*domain.InventoryProduct, error) {
	var product domain.InventoryProduct
	err := r.db.GetContext(ctx, &product,
		"SELECT * FROM products WHERE id = $1 AND business_id = $2", productID, businessID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("productRepo.GetByID: %w", err)
	}
	return &product, nil
}

func (r *productRepo) GetBySKU(ctx context.Context, businessID uuid.UUID, sku string) (*domain.InventoryProduct, error) {
	var product domain.InventoryProduct
	err := r.db.GetContext(ctx, &product,
		"SELECT * FROM products WHERE business_id = $1 AND lower(sku) = lower($2)", businessID, sku)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("productRepo.GetBySKU: %w", err)
	}
	return &product, nil
}

// ListByBusiness returns the full active catalog, the snapshot a voice
// session matches against.
func (r *productRepo) ListByBusiness(ctx context.Context, businessID uuid.UUID) ([]domain.InventoryProduct, error) {
	var products []domain.InventoryProduct
	err := r.db.SelectContext(ctx, &products,
		"SELECT * FROM products WHERE business_id = $1 AND is_active = TRUE ORDER BY name",
		businessID)
	if err != nil {
		return nil, fmt.Errorf("productRepo.ListByBusiness: %w", err)
	}
	return products, nil
}

func (r *productRepo) Update(ctx context.Context, product *domain.InventoryProduct) error {
	product.UpdatedAt = time.Now().UTC()
	query := `UPDATE products SET sku = $1, name = $2, brand = $3, category = $4, description = $5,
		unit = $6, pricing_mode = $7, gst_rate = $8, mrp = $9, base_price = $10,
		selling_price = $11, selling_includes_gst = $12, stock_qty = $13, is_active = $14, updated_at = $15
		WHERE id = $16 AND business_id = $17`
	result, err := r.db.ExecContext(ctx, query,
		product.SKU, product.Name, product.Brand, product.Category, product.Description,
		product.Unit, product.PricingMode, product.GSTRate, product.MRP, product.BasePrice,
		product.SellingPrice, product.SellingIncludesGST, product.StockQty, product.IsActive,
		product.UpdatedAt, product.ID, product.BusinessID)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateSKU
		}
		return fmt.Errorf("productRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AdjustStock applies a signed delta, clamping at zero. Finalize decrements
// sold quantities through this.
func (r *productRepo) AdjustStock(ctx context.Context, businessID, productID uuid.UUID, delta float64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE products SET stock_qty = GREATEST(stock_qty + $1, 0), updated_at = $2
		WHERE id = $3 AND business_id = $4`,
		delta, time.Now().UTC(), productID, businessID)
	if err != nil {
		return fmt.Errorf("productRepo.AdjustStock: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, businessID, productID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE products SET is_active = FALSE, updated_at = $1 WHERE id = $2 AND business_id = $3",
		time.Now().UTC(), productID, businessID)
	if err != nil {
		return fmt.Errorf("productRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
