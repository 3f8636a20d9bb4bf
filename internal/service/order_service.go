package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"glamgo/internal/metrics"
	"glamgo/internal/model"
	"glamgo/internal/notifier"
	"glamgo/internal/pricing"
	"glamgo/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const orderPlacedNote = "Order placed"

// orderService implements OrderService.
type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	addressRepo repository.AddressRepository
	productRepo repository.ProductRepository
	notifier    notifier.Notifier
	metrics     *metrics.Metrics
	logger      zerolog.Logger

	now    func() time.Time
	suffix func() int
}

// NewOrderService creates a new order service. m may be nil.
func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	addressRepo repository.AddressRepository,
	productRepo repository.ProductRepository,
	n notifier.Notifier,
	m *metrics.Metrics,
	logger zerolog.Logger,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		addressRepo: addressRepo,
		productRepo: productRepo,
		notifier:    n,
		metrics:     m,
		logger:      logger.With().Str("service", "order").Logger(),
		now:         time.Now,
		suffix:      func() int { return rand.IntN(10000) },
	}
}

// orderNumber formats the human-readable label ORD-YYYYMMDD-NNNN.
func orderNumber(at time.Time, suffix int) string {
	return fmt.Sprintf("ORD-%s-%04d", at.Format("20060102"), suffix%10000)
}

// PlaceOrder turns the caller's cart into an order delivered to the chosen
// address. Nothing is written unless every check passes, and the order,
// its items, the stock decrements and the cart clearing commit together.
func (s *orderService) PlaceOrder(ctx context.Context, identity model.Identity, req *model.PlaceOrderRequest) (order *model.Order, err error) {
	defer func() {
		if err != nil {
			kind := model.KindInternal
			if de, ok := model.AsDomainError(err); ok {
				kind = de.Kind
			}
			s.metrics.OrderPlacementFailed(kind.String())
		}
	}()

	address, items, err := s.validatePlacement(ctx, identity.UserID, req)
	if err != nil {
		return nil, err
	}

	orderPricing, err := pricing.Calculate(pricing.LinesFromCart(items))
	if err != nil {
		s.logger.Warn().Err(err).Str("user_id", identity.UserID).Msg("failed to price cart")
		return nil, err
	}

	now := s.now()
	order = &model.Order{
		ID:                   uuid.New(),
		OrderNumber:          orderNumber(now, s.suffix()),
		UserID:               identity.UserID,
		UserName:             identity.Name,
		UserEmail:            identity.Email,
		DeliveryAddress:      *address,
		DeliveryInstructions: trimOptional(req.DeliveryInstructions),
		Pricing:              orderPricing,
		Status:               model.OrderStatusPending,
		PaymentStatus:        model.PaymentStatusPending,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	order.Items = make([]model.OrderItem, len(items))
	for i, item := range items {
		order.Items[i] = model.OrderItem{
			ID:           uuid.New(),
			OrderID:      order.ID,
			ProductID:    item.ProductID,
			ProductName:  item.Product.Name,
			ProductImage: item.Product.PrimaryImage(),
			Price:        item.Product.Price,
			Quantity:     item.Quantity,
			VendorID:     item.Product.VendorID,
			VendorName:   item.Product.VendorName,
		}
	}

	note := orderPlacedNote
	order.StatusHistory = []model.StatusEntry{
		{Status: model.OrderStatusPending, Timestamp: now, Note: &note},
	}

	if err = s.persist(ctx, order); err != nil {
		return nil, err
	}

	s.metrics.OrderPlaced()
	s.logger.Info().
		Str("order_id", order.ID.String()).
		Str("order_number", order.OrderNumber).
		Str("user_id", order.UserID).
		Int("item_count", len(order.Items)).
		Float64("total", order.Pricing.Total).
		Msg("order placed successfully")

	s.notify(ctx, order)

	return order, nil
}

// validatePlacement checks the request, address, cart and stock without
// writing anything.
func (s *orderService) validatePlacement(ctx context.Context, userID string, req *model.PlaceOrderRequest) (*model.Address, []model.CartItem, error) {
	if req == nil || strings.TrimSpace(req.AddressID) == "" {
		return nil, nil, model.ErrMissingAddress
	}

	addressID, err := uuid.Parse(strings.TrimSpace(req.AddressID))
	if err != nil {
		s.logger.Warn().Str("address_id", req.AddressID).Msg("malformed address id")
		return nil, nil, model.ErrAddressNotFound
	}

	address, err := s.addressRepo.GetByID(ctx, userID, addressID)
	if err != nil {
		s.logger.Error().Err(err).Str("address_id", addressID.String()).Msg("failed to get delivery address")
		return nil, nil, fmt.Errorf("failed to place order: %w", err)
	}
	if address == nil {
		s.logger.Warn().Str("user_id", userID).Str("address_id", addressID.String()).Msg("delivery address not found")
		return nil, nil, model.ErrAddressNotFound
	}

	items, err := s.cartRepo.GetItems(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to get cart items")
		return nil, nil, fmt.Errorf("failed to place order: %w", err)
	}
	if len(items) == 0 {
		s.logger.Warn().Str("user_id", userID).Msg("cannot place order with empty cart")
		return nil, nil, model.ErrEmptyCart
	}

	for _, item := range items {
		if item.Quantity < 1 {
			return nil, nil, model.ErrInvalidQuantity
		}
		if item.Product.ID == "" {
			return nil, nil, model.ErrProductNotFound
		}
		if item.Product.StockQuantity < item.Quantity {
			s.logger.Warn().
				Str("product_id", item.ProductID).
				Int("requested", item.Quantity).
				Int("available", item.Product.StockQuantity).
				Msg("insufficient stock")
			return nil, nil, model.NewInsufficientStockError(item.ProductID, item.Product.Name)
		}
	}

	return address, items, nil
}

// persist writes the order and applies its side effects in one transaction.
func (s *orderService) persist(ctx context.Context, order *model.Order) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to place order: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.CreateOrder(ctx, tx, order); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to create order")
		return fmt.Errorf("failed to create order: %w", err)
	}

	if err = s.orderRepo.CreateOrderItems(ctx, tx, order.Items); err != nil {
		s.logger.Error().
			Err(err).
			Str("order_id", order.ID.String()).
			Int("item_count", len(order.Items)).
			Msg("failed to create order items")
		return fmt.Errorf("failed to create order items: %w", err)
	}

	if err = s.orderRepo.AppendStatus(ctx, tx, order.ID, order.StatusHistory[0]); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to record order status")
		return fmt.Errorf("failed to record order status: %w", err)
	}

	for _, item := range order.Items {
		if err = s.productRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity); err != nil {
			s.logger.Error().
				Err(err).
				Str("order_id", order.ID.String()).
				Str("product_id", item.ProductID).
				Msg("failed to decrement stock")
			if model.IsKind(err, model.KindNotFound) {
				return err
			}
			return fmt.Errorf("failed to decrement stock: %w", err)
		}
	}

	if err = s.cartRepo.ClearTx(ctx, tx, order.UserID); err != nil {
		s.logger.Error().Err(err).Str("user_id", order.UserID).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", order.ID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to place order: %w", err)
	}

	return nil
}

// notify sends the confirmation. Failures are logged and never undo the order.
func (s *orderService) notify(ctx context.Context, order *model.Order) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.OrderPlaced(ctx, order); err != nil {
		s.logger.Warn().
			Err(err).
			Str("order_id", order.ID.String()).
			Msg("failed to send order confirmation")
	}
}

// GetOrder retrieves one of the user's orders. Orders of other users are
// reported as not found.
func (s *orderService) GetOrder(ctx context.Context, userID string, orderID uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to get order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	if order == nil || order.UserID != userID {
		s.logger.Debug().Str("order_id", orderID.String()).Str("user_id", userID).Msg("order not found")
		return nil, model.ErrOrderNotFound
	}

	return order, nil
}

// ListOrders retrieves the user's orders newest first.
func (s *orderService) ListOrders(ctx context.Context, userID string) ([]model.Order, error) {
	orders, err := s.orderRepo.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list orders")
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus moves an order to a new status and records it in the history.
func (s *orderService) UpdateStatus(ctx context.Context, orderID uuid.UUID, req *model.UpdateOrderStatusRequest) (*model.Order, error) {
	if req == nil || !req.Status.Valid() {
		return nil, model.ErrInvalidStatus
	}

	entry := model.StatusEntry{Status: req.Status, Timestamp: s.now(), Note: trimOptional(req.Note)}
	if err := s.applyStatus(ctx, orderID, entry); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("order_id", orderID.String()).
		Str("status", string(req.Status)).
		Msg("order status updated")

	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to reload order")
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, model.ErrOrderNotFound
	}
	return order, nil
}

// applyStatus sets the current status and appends the history entry in one transaction.
func (s *orderService) applyStatus(ctx context.Context, orderID uuid.UUID, entry model.StatusEntry) (err error) {
	tx, err := s.orderRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	// Ensure transaction is rolled back on error
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.orderRepo.SetStatus(ctx, tx, orderID, entry.Status, entry.Timestamp); err != nil {
		if model.IsKind(err, model.KindNotFound) {
			return err
		}
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to set order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if err = s.orderRepo.AppendStatus(ctx, tx, orderID, entry); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to record order status")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Str("order_id", orderID.String()).Msg("failed to commit transaction")
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return nil
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
