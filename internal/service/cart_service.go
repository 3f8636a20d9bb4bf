package service

import (
	"context"
	"fmt"

	"glamgo/internal/metrics"
	"glamgo/internal/model"
	"glamgo/internal/pricing"
	"glamgo/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// cartService implements CartService.
type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewCartService creates a new cart service. m may be nil.
func NewCartService(
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	m *metrics.Metrics,
	logger zerolog.Logger,
) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		metrics:     m,
		logger:      logger.With().Str("service", "cart").Logger(),
	}
}

// GetCart retrieves the cart with current product data and its summary.
func (s *cartService) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	items, err := s.cartRepo.GetItems(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to get cart items")
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	cart := &model.Cart{
		UserID:  userID,
		Items:   items,
		Summary: pricing.Summarize(items),
	}
	for _, item := range items {
		if item.AddedAt.After(cart.UpdatedAt) {
			cart.UpdatedAt = item.AddedAt
		}
	}

	return cart, nil
}

// AddItem adds quantity of a product, merging with an existing line.
func (s *cartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error) {
	if quantity < 1 {
		s.logger.Warn().
			Str("user_id", userID).
			Str("product_id", productID).
			Int("quantity", quantity).
			Msg("invalid quantity")
		return nil, model.ErrInvalidQuantity
	}
	if quantity > model.MaxItemQuantity {
		return nil, model.ErrQuantityTooLarge
	}
	if productID == "" {
		return nil, model.NewValidationError("Product ID is required")
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		s.logger.Error().Err(err).Str("product_id", productID).Msg("failed to get product")
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}
	if product == nil {
		s.logger.Debug().Str("product_id", productID).Msg("product not found")
		return nil, model.ErrProductNotFound
	}

	item, err := s.cartRepo.AddItem(ctx, userID, productID, quantity)
	if err != nil {
		if model.IsKind(err, model.KindValidation) {
			s.logger.Warn().Str("user_id", userID).Str("product_id", productID).Msg("cart line quantity limit reached")
			return nil, err
		}
		s.logger.Error().Err(err).Str("user_id", userID).Str("product_id", productID).Msg("failed to add cart item")
		return nil, fmt.Errorf("failed to add to cart: %w", err)
	}

	s.metrics.CartMutation("add")
	s.logger.Info().
		Str("user_id", userID).
		Str("product_id", productID).
		Int("quantity", item.Quantity).
		Msg("item added to cart")

	return s.GetCart(ctx, userID)
}

// UpdateItemQuantity sets the quantity of a line.
func (s *cartService) UpdateItemQuantity(ctx context.Context, userID string, itemID uuid.UUID, quantity int) (*model.Cart, error) {
	if quantity < 1 {
		s.logger.Warn().
			Str("user_id", userID).
			Str("item_id", itemID.String()).
			Int("quantity", quantity).
			Msg("invalid quantity")
		return nil, model.ErrInvalidQuantity
	}
	if quantity > model.MaxItemQuantity {
		return nil, model.ErrQuantityTooLarge
	}

	if err := s.cartRepo.UpdateQuantity(ctx, userID, itemID, quantity); err != nil {
		if model.IsKind(err, model.KindNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to update cart item")
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}

	s.metrics.CartMutation("update")
	return s.GetCart(ctx, userID)
}

// RemoveItem deletes a line.
func (s *cartService) RemoveItem(ctx context.Context, userID string, itemID uuid.UUID) (*model.Cart, error) {
	if err := s.cartRepo.RemoveItem(ctx, userID, itemID); err != nil {
		if model.IsKind(err, model.KindNotFound) {
			return nil, err
		}
		s.logger.Error().Err(err).Str("item_id", itemID.String()).Msg("failed to remove cart item")
		return nil, fmt.Errorf("failed to remove cart item: %w", err)
	}

	s.metrics.CartMutation("remove")
	return s.GetCart(ctx, userID)
}

// Clear empties the cart.
func (s *cartService) Clear(ctx context.Context, userID string) error {
	if err := s.cartRepo.Clear(ctx, userID); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to clear cart")
		return fmt.Errorf("failed to clear cart: %w", err)
	}

	s.metrics.CartMutation("clear")
	return nil
}

// ItemCount returns the total quantity in the cart.
func (s *cartService) ItemCount(ctx context.Context, userID string) (int, error) {
	count, err := s.cartRepo.ItemCount(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to count cart items")
		return 0, fmt.Errorf("failed to count cart items: %w", err)
	}
	return count, nil
}
