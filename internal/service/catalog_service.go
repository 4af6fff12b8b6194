package service

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"billvox/internal/domain"
	"billvox/internal/matcher"
	"billvox/internal/port"
)

// CatalogService manages the product catalog and exposes fuzzy matching over
// it.
type CatalogService interface {
	CreateProduct(ctx context.Context, product *domain.InventoryProduct) error
	GetProduct(ctx context.Context, businessID, productID uuid.UUID) (*domain.InventoryProduct, error)
	ListProducts(ctx context.Context, businessID uuid.UUID) ([]domain.InventoryProduct, error)
	UpdateProduct(ctx context.Context, product *domain.InventoryProduct) error
	DeleteProduct(ctx context.Context, businessID, productID uuid.UUID) error
	MatchProducts(ctx context.Context, businessID uuid.UUID, query string) (matcher.Result, error)
	RecordCorrection(ctx context.Context, businessID uuid.UUID, correction domain.MatchCorrection) error
}

type catalogService struct {
	products    port.ProductRepository
	corrections port.CorrectionStore
}

// NewCatalogService creates a new CatalogService implementation.
func NewCatalogService(products port.ProductRepository, corrections port.CorrectionStore) CatalogService {
	return &catalogService{products: products, corrections: corrections}
}

func (s *catalogService) CreateProduct(ctx context.Context, product *domain.InventoryProduct) error {
	if product.PricingMode == "" {
		product.PricingMode = domain.PricingModeSellingSimple
	}
	product.IsActive = true
	if err := s.products.Create(ctx, product); err != nil {
		return fmt.Errorf("catalog.CreateProduct: %w", err)
	}
	return nil
}

func (s *catalogService) GetProduct(ctx context.Context, businessID, productID uuid.UUID) (*domain.InventoryProduct, error) {
	return s.products.GetByID(ctx, businessID, productID)
}

func (s *catalogService) ListProducts(ctx context.Context, businessID uuid.UUID) ([]domain.InventoryProduct, error) {
	return s.products.ListByBusiness(ctx, businessID)
}

func (s *catalogService) UpdateProduct(ctx context.Context, product *domain.InventoryProduct) error {
	if err := s.products.Update(ctx, product); err != nil {
		return fmt.Errorf("catalog.UpdateProduct: %w", err)
	}
	return nil
}

func (s *catalogService) DeleteProduct(ctx context.Context, businessID, productID uuid.UUID) error {
	return s.products.Delete(ctx, businessID, productID)
}

// MatchProducts runs the fuzzy matcher over a fresh inventory snapshot plus
// the business's learned corrections. A failed correction read degrades to
// plain fuzzy matching rather than failing the call.
func (s *catalogService) MatchProducts(ctx context.Context, businessID uuid.UUID, query string) (matcher.Result, error) {
	inventory, err := s.products.ListByBusiness(ctx, businessID)
	if err != nil {
		return matcher.Result{}, fmt.Errorf("catalog.MatchProducts: %w", err)
	}

	corrections, err := s.corrections.List(ctx, businessID)
	if err != nil {
		log.Printf("service.Catalog: listing corrections: %v", err)
		corrections = nil
	}

	return matcher.FindMatchingProducts(query, inventory, corrections, matcher.Options{}), nil
}

func (s *catalogService) RecordCorrection(ctx context.Context, businessID uuid.UUID, correction domain.MatchCorrection) error {
	correction.Query = matcher.NormalizeText(correction.Query)
	if correction.Query == "" {
		return nil
	}
	return s.corrections.Append(ctx, businessID, correction)
}
