package service

import (
	"context"
	"fmt"
	"strings"

	"glamgo/internal/model"
	"glamgo/internal/repository"

	"github.com/rs/zerolog"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// productService implements ProductService.
type productService struct {
	productRepo repository.ProductRepository
	logger      zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, logger zerolog.Logger) ProductService {
	return &productService{
		productRepo: productRepo,
		logger:      logger.With().Str("service", "product").Logger(),
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultPageSize
	}
	if limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

// List retrieves products newest first with pagination and an optional category.
func (s *productService) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	filter.Limit = clampLimit(filter.Limit)
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Category != nil && !filter.Category.Valid() {
		s.logger.Warn().Str("category", string(*filter.Category)).Msg("unknown category")
		return nil, model.ErrInvalidCategory
	}

	products, err := s.productRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error().Err(err).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to list products")
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	s.logger.Debug().
		Int("count", len(products)).
		Int("limit", filter.Limit).
		Int("offset", filter.Offset).
		Msg("retrieved products")

	return products, nil
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrProductNotFound
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", id).Msg("failed to get product by ID")
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	if product == nil {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	return product, nil
}

// Search matches products by name, description or brand. A blank query
// returns no products.
func (s *productService) Search(ctx context.Context, query string, limit int) ([]model.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Product{}, nil
	}

	products, err := s.productRepo.Search(ctx, query, clampLimit(limit))
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("failed to search products")
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	s.logger.Debug().Str("query", query).Int("count", len(products)).Msg("searched products")
	return products, nil
}

// Featured retrieves featured products.
func (s *productService) Featured(ctx context.Context, limit int) ([]model.Product, error) {
	products, err := s.productRepo.Featured(ctx, clampLimit(limit))
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to get featured products")
		return nil, fmt.Errorf("failed to get featured products: %w", err)
	}
	return products, nil
}

// ByVendor retrieves a vendor's products.
func (s *productService) ByVendor(ctx context.Context, vendorID string, limit int) ([]model.Product, error) {
	if vendorID == "" {
		return []model.Product{}, nil
	}

	products, err := s.productRepo.ByVendor(ctx, vendorID, clampLimit(limit))
	if err != nil {
		s.logger.Error().Err(err).Str("vendor_id", vendorID).Msg("failed to get vendor products")
		return nil, fmt.Errorf("failed to get vendor products: %w", err)
	}
	return products, nil
}

// Categories lists the known product categories.
func (s *productService) Categories() []model.Category {
	return model.Categories()
}
