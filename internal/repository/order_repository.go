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

const orderColumns = `
	id, order_number, user_id, user_name, user_email, delivery_address, delivery_instructions,
	subtotal, delivery_fee, tax, total, status, payment_status, payment_method,
	created_at, updated_at, estimated_delivery_time, delivered_at
`

// orderRepository implements the OrderRepository interface using PostgreSQL.
type orderRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(pool *pgxpool.Pool, logger zerolog.Logger) OrderRepository {
	return &orderRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "order").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *orderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

// CreateOrder inserts a new order within the provided transaction.
func (r *orderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`

	_, err := tx.Exec(ctx, query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		order.UserName,
		order.UserEmail,
		order.DeliveryAddress,
		order.DeliveryInstructions,
		order.Pricing.Subtotal,
		order.Pricing.DeliveryFee,
		order.Pricing.Tax,
		order.Pricing.Total,
		string(order.Status),
		string(order.PaymentStatus),
		order.PaymentMethod,
		order.CreatedAt,
		order.UpdatedAt,
		order.EstimatedDeliveryTime,
		order.DeliveredAt,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Debug().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Msg("order created successfully")

	return nil
}

// CreateOrderItems inserts multiple order items within the provided transaction.
func (r *orderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	if len(items) == 0 {
		return nil
	}

	query := `
		INSERT INTO order_items (
			id, order_id, position, product_id, product_name, product_image, price, quantity, vendor_id, vendor_name
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	batch := &pgx.Batch{}
	for i, item := range items {
		batch.Queue(query,
			item.ID, item.OrderID, i, item.ProductID, item.ProductName, item.ProductImage,
			item.Price, item.Quantity, item.VendorID, item.VendorName,
		)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(items); i++ {
		_, err := results.Exec()
		if err != nil {
			r.logger.Error().
				Err(err).
				Str("order_id", items[i].OrderID.String()).
				Str("product_id", items[i].ProductID).
				Msg("failed to create order item")
			return fmt.Errorf("failed to create order item: %w", err)
		}
	}

	r.logger.Debug().
		Int("count", len(items)).
		Msg("order items created successfully")

	return nil
}

// AppendStatus records a status history entry within the provided transaction.
func (r *orderRepository) AppendStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, entry model.StatusEntry) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO order_status_history (order_id, status, note, created_at) VALUES ($1, $2, $3, $4)`,
		orderID, string(entry.Status), entry.Note, entry.Timestamp,
	)
	if err != nil {
		r.logger.Error().
			Err(err).
			Str("order_id", orderID.String()).
			Str("status", string(entry.Status)).
			Msg("failed to append status history")
		return fmt.Errorf("failed to append status history: %w", err)
	}
	return nil
}

// SetStatus changes the current status within the provided transaction.
// Moving to delivered also stamps delivered_at.
func (r *orderRepository) SetStatus(ctx context.Context, tx pgx.Tx, orderID uuid.UUID, status model.OrderStatus, at time.Time) error {
	query := `
		UPDATE orders
		SET status = $2,
		    updated_at = $3,
		    delivered_at = CASE WHEN $2 = 'delivered' THEN $3 ELSE delivered_at END
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, orderID, string(status), at)
	if err != nil {
		r.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to update order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return model.ErrOrderNotFound
	}

	return nil
}

// GetByID retrieves an order with its items and status history.
func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT` + orderColumns + `FROM orders WHERE id = $1`

	var order model.Order
	err := scanOrder(r.pool.QueryRow(ctx, query, id), &order)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("order_id", id.String()).Msg("order not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("order_id", id.String()).Msg("failed to query order")
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	orders := []model.Order{order}
	if err := r.attachDetails(ctx, orders); err != nil {
		return nil, err
	}

	return &orders[0], nil
}

// ListByUser retrieves the user's orders newest first, with items and history.
func (r *orderRepository) ListByUser(ctx context.Context, userID string) ([]model.Order, error) {
	query := `SELECT` + orderColumns + `FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Str("user_id", userID).Msg("failed to query orders")
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var order model.Order
		if err := scanOrder(rows, &order); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order row")
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order rows")
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if err := r.attachDetails(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func scanOrder(row rowScanner, o *model.Order) error {
	var status, paymentStatus string
	err := row.Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.UserName,
		&o.UserEmail,
		&o.DeliveryAddress,
		&o.DeliveryInstructions,
		&o.Pricing.Subtotal,
		&o.Pricing.DeliveryFee,
		&o.Pricing.Tax,
		&o.Pricing.Total,
		&status,
		&paymentStatus,
		&o.PaymentMethod,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.EstimatedDeliveryTime,
		&o.DeliveredAt,
	)
	o.Status = model.OrderStatus(status)
	o.PaymentStatus = model.PaymentStatus(paymentStatus)
	return err
}

// attachDetails loads items and status history for all orders in two queries.
func (r *orderRepository) attachDetails(ctx context.Context, orders []model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(orders))
	index := make(map[uuid.UUID]int, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		index[orders[i].ID] = i
		orders[i].Items = []model.OrderItem{}
		orders[i].StatusHistory = []model.StatusEntry{}
	}

	itemRows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, product_name, product_image, price, quantity, vendor_id, vendor_name
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY order_id, position
	`, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("order_count", len(ids)).Msg("failed to query order items")
		return fmt.Errorf("failed to query order items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item model.OrderItem
		err := itemRows.Scan(
			&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.ProductImage,
			&item.Price, &item.Quantity, &item.VendorID, &item.VendorName,
		)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan order item row")
			return fmt.Errorf("failed to scan order item: %w", err)
		}
		o := &orders[index[item.OrderID]]
		o.Items = append(o.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating order item rows")
		return fmt.Errorf("error iterating order items: %w", err)
	}
	itemRows.Close()

	historyRows, err := r.pool.Query(ctx, `
		SELECT order_id, status, note, created_at
		FROM order_status_history
		WHERE order_id = ANY($1)
		ORDER BY order_id, id
	`, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("order_count", len(ids)).Msg("failed to query status history")
		return fmt.Errorf("failed to query status history: %w", err)
	}
	defer historyRows.Close()

	for historyRows.Next() {
		var (
			orderID uuid.UUID
			status  string
			entry   model.StatusEntry
		)
		if err := historyRows.Scan(&orderID, &status, &entry.Note, &entry.Timestamp); err != nil {
			r.logger.Error().Err(err).Msg("failed to scan status history row")
			return fmt.Errorf("failed to scan status history: %w", err)
		}
		entry.Status = model.OrderStatus(status)
		o := &orders[index[orderID]]
		o.StatusHistory = append(o.StatusHistory, entry)
	}
	if err := historyRows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating status history rows")
		return fmt.Errorf("error iterating status history: %w", err)
	}

	return nil
}
