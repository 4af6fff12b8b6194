package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"billvox/internal/domain"
	"billvox/internal/port"
)

type businessRepo struct {
	db *sqlx.DB
}

// NewBusinessRepo creates a new PostgreSQL-backed BusinessRepository.
func NewBusinessRepo(db *sqlx.DB) port.BusinessRepository {
	return &businessRepo{db: db}
}

func (r *businessRepo) Create(ctx context.Context, business *domain.Business) error {
	business.ID = uuid.New()
	now := time.Now().UTC()
	business.CreatedAt = now
	business.UpdatedAt = now

	query := `INSERT INTO businesses (id, name, slug, gstin, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		business.ID, business.Name, business.Slug, business.GSTIN,
		business.IsActive, business.CreatedAt, business.UpdatedAt)
	if err != nil {
		return fmt.Errorf("businessRepo.Create: %w", err)
	}
	return nil
}

func (r *businessRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Business, error) {
	var business domain.Business
	err := r.db.GetContext(ctx, &business, "SELECT * FROM businesses WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("businessRepo.GetByID: %w", err)
	}
	return &business, nil
}

func (r *businessRepo) GetBySlug(ctx context.Context, slug string) (*domain.Business, error) {
	var business domain.Business
	err := r.db.GetContext(ctx, &business, "SELECT * FROM businesses WHERE slug = $1", slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("businessRepo.GetBySlug: %w", err)
	}
	return &business, nil
}

func (r *businessRepo) Update(ctx context.Context, business *domain.Business) error {
	business.UpdatedAt = time.Now().UTC()
	query := `UPDATE businesses SET name = $1, gstin = $2, is_active = $3, updated_at = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(ctx, query,
		business.Name, business.GSTIN, business.IsActive, business.UpdatedAt, business.ID)
	if err != nil {
		return fmt.Errorf("businessRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
