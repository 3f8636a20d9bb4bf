package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"glamgo/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// cartRepository implements the CartRepository interface using PostgreSQL.
type cartRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewCartRepository creates a new PostgreSQL-backed cart repository.
func NewCartRepository(pool *pgxpool.Pool, logger zerolog.Logger) CartRepository {
	return &cartRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "cart").Logger(),
	}
}

// GetItems retrieves the user's cart lines, joined with current product data, oldest first.
func (r *cartRepository) GetItems(ctx context.Context, userID string) ([]model.CartItem, error) {
	query := `
		SELECT c.id, c.quantity, c.added_at,` + qualifiedProductColumns("p") + `
		FROM cart_items c
		JOIN products p ON p.id = c.product_id
		WHERE c.user_id = $1
		ORDER BY c.added_at, c.id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query cart items")
		return nil, fmt.Errorf("failed to query cart items: %w", err)
	}
	defer rows.Close()

	items := []model.CartItem{}
	for rows.Next() {
		var item model.CartItem
		p := &item.Product
		err := rows.Scan(
			&item.ID, &item.Quantity, &item.AddedAt,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.SalePrice, &p.ImageURLs, &p.Category,
			&p.VendorID, &p.VendorName, &p.StockQuantity, &p.AverageRating, &p.ReviewCount,
			&p.Brand, &p.SKU, &p.IsFeatured, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan cart item row")
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		item.ProductID = p.ID
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating cart item rows")
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}

	return items, nil
}

// AddItem adds quantity to the line for productID, creating it when absent.
// A merge that would take the line above model.MaxItemQuantity leaves it
// unchanged and returns model.ErrQuantityTooLarge.
func (r *cartRepository) AddItem(ctx context.Context, userID, productID string, quantity int) (*model.CartItem, error) {
	if quantity > model.MaxItemQuantity {
		return nil, model.ErrQuantityTooLarge
	}

	query := `
		INSERT INTO cart_items (id, user_id, product_id, quantity, added_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, product_id)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		WHERE cart_items.quantity + EXCLUDED.quantity <= $6
		RETURNING id, product_id, quantity, added_at
	`

	var item model.CartItem
	err := r.pool.QueryRow(ctx, query, uuid.New(), userID, productID, quantity, time.Now(), model.MaxItemQuantity).
		Scan(&item.ID, &item.ProductID, &item.Quantity, &item.AddedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		r.logger.Debug().
			Str("user_id", userID).
			Str("product_id", productID).
			Int("quantity", quantity).
			Msg("cart line would exceed maximum quantity")
		return nil, model.ErrQuantityTooLarge
	}
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("user_id", userID).
			Str("product_id", productID).
			Msg("failed to add cart item")
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}

	r.logger.Debug().
		Str("user_id", userID).
		Str("product_id", productID).
		Int("quantity", item.Quantity).
		Msg("cart item merged")

	return &item, nil
}

// UpdateQuantity sets the quantity of a line.
func (r *cartRepository) UpdateQuantity(ctx context.Context, userID string, itemID uuid.UUID, quantity int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE id = $1 AND user_id = $2`,
		itemID, userID, quantity,
	)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_item_id", itemID.String()).Msg("failed to update cart item")
		return fmt.Errorf("failed to update cart item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	return nil
}

// RemoveItem deletes a line.
func (r *cartRepository) RemoveItem(ctx context.Context, userID string, itemID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("cart_item_id", itemID.String()).Msg("failed to remove cart item")
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrCartItemNotFound
	}

	return nil
}

// Clear deletes every line of the user's cart.
func (r *cartRepository) Clear(ctx context.Context, userID string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// ClearTx deletes every line of the user's cart within the provided transaction.
func (r *cartRepository) ClearTx(ctx context.Context, tx pgx.Tx, userID string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to clear cart in transaction")
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

// ItemCount returns the sum of quantities in the user's cart.
func (r *cartRepository) ItemCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity), 0)::int FROM cart_items WHERE user_id = $1`,
		userID,
	).Scan(&count)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to count cart items")
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return count, nil
}
