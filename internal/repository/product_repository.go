package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"glamgo/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `
	id, name, description, price, sale_price, image_urls, category, vendor_id, vendor_name,
	stock_quantity, average_rating, review_count, brand, sku, is_featured, created_at, updated_at
`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row rowScanner, p *model.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Price,
		&p.SalePrice,
		&p.ImageURLs,
		&p.Category,
		&p.VendorID,
		&p.VendorName,
		&p.StockQuantity,
		&p.AverageRating,
		&p.ReviewCount,
		&p.Brand,
		&p.SKU,
		&p.IsFeatured,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

// List retrieves products newest first, optionally restricted to a category.
func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) ([]model.Product, error) {
	var category *string
	if filter.Category != nil {
		c := string(*filter.Category)
		category = &c
	}

	query := `
		SELECT` + productColumns + `
		FROM products
		WHERE ($1::text IS NULL OR category = $1)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`

	products, err := r.queryProducts(ctx, query, category, filter.Limit, filter.Offset)
	if err != nil {
		r.logger.Error().Err(err).
			Int("limit", filter.Limit).
			Int("offset", filter.Offset).
			Msg("failed to list products")
		return nil, err
	}

	return products, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id string) (*model.Product, error) {
	query := `SELECT` + productColumns + `FROM products WHERE id = $1`

	var p model.Product
	err := scanProduct(r.pool.QueryRow(ctx, query, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return &p, nil
}

// GetByIDs retrieves multiple products by their IDs.
func (r *productRepository) GetByIDs(ctx context.Context, ids []string) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `
		SELECT` + productColumns + `
		FROM products
		WHERE id = ANY($1)
		ORDER BY name
	`

	products, err := r.queryProducts(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to query products by IDs")
		return nil, err
	}

	return products, nil
}

// Search matches the query case-insensitively against name, description and brand.
func (r *productRepository) Search(ctx context.Context, q string, limit int) ([]model.Product, error) {
	query := `
		SELECT` + productColumns + `
		FROM products
		WHERE name ILIKE $1 OR description ILIKE $1 OR COALESCE(brand, '') ILIKE $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`

	products, err := r.queryProducts(ctx, query, likePattern(q), limit)
	if err != nil {
		r.logger.Error().Err(err).Str("query", q).Msg("failed to search products")
		return nil, err
	}

	return products, nil
}

// Featured retrieves featured products newest first.
func (r *productRepository) Featured(ctx context.Context, limit int) ([]model.Product, error) {
	query := `
		SELECT` + productColumns + `
		FROM products
		WHERE is_featured
		ORDER BY created_at DESC, id
		LIMIT $1
	`

	products, err := r.queryProducts(ctx, query, limit)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query featured products")
		return nil, err
	}

	return products, nil
}

// ByVendor retrieves a vendor's products newest first.
func (r *productRepository) ByVendor(ctx context.Context, vendorID string, limit int) ([]model.Product, error) {
	query := `
		SELECT` + productColumns + `
		FROM products
		WHERE vendor_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`

	products, err := r.queryProducts(ctx, query, vendorID, limit)
	if err != nil {
		r.logger.Error().Err(err).Str("vendor_id", vendorID).Msg("failed to query vendor products")
		return nil, err
	}

	return products, nil
}

// Upsert inserts a product or replaces the existing row with the same ID.
func (r *productRepository) Upsert(ctx context.Context, p *model.Product) error {
	query := `
		INSERT INTO products (
			id, name, description, price, sale_price, image_urls, category, vendor_id, vendor_name,
			stock_quantity, average_rating, review_count, brand, sku, is_featured, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			sale_price = EXCLUDED.sale_price,
			image_urls = EXCLUDED.image_urls,
			category = EXCLUDED.category,
			vendor_id = EXCLUDED.vendor_id,
			vendor_name = EXCLUDED.vendor_name,
			stock_quantity = EXCLUDED.stock_quantity,
			average_rating = EXCLUDED.average_rating,
			review_count = EXCLUDED.review_count,
			brand = EXCLUDED.brand,
			sku = EXCLUDED.sku,
			is_featured = EXCLUDED.is_featured,
			updated_at = EXCLUDED.updated_at
	`

	imageURLs := p.ImageURLs
	if imageURLs == nil {
		imageURLs = []string{}
	}

	_, err := r.pool.Exec(ctx, query,
		p.ID, p.Name, p.Description, p.Price, p.SalePrice, imageURLs, string(p.Category), p.VendorID, p.VendorName,
		p.StockQuantity, p.AverageRating, p.ReviewCount, p.Brand, p.SKU, p.IsFeatured, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("product_id", p.ID).Msg("failed to upsert product")
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	r.logger.Debug().Str("product_id", p.ID).Msg("product upserted")
	return nil
}

// DecrementStock lowers stock within the provided transaction, floored at zero.
func (r *productRepository) DecrementStock(ctx context.Context, tx pgx.Tx, productID string, quantity int) error {
	query := `
		UPDATE products
		SET stock_quantity = GREATEST(stock_quantity - $2, 0), updated_at = NOW()
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, productID, quantity)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("product_id", productID).
			Int("quantity", quantity).
			Msg("failed to decrement stock")
		return fmt.Errorf("failed to decrement stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().Str("product_id", productID).Msg("stock decrement on missing product")
		return model.ErrProductNotFound
	}

	return nil
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// qualifiedProductColumns prefixes every product column with alias.
func qualifiedProductColumns(alias string) string {
	cols := strings.Split(productColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return " " + strings.Join(cols, ", ") + " "
}

// likePattern wraps q for a substring ILIKE match with wildcards escaped.
func likePattern(q string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(q)
	return "%" + escaped + "%"
}
